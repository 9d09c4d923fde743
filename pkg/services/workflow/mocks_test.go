package workflow

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/de-tools/revops-pilot/pkg/models/api"
	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/de-tools/revops-pilot/pkg/models/store"
	"github.com/stretchr/testify/mock"
)

type mockDealStore struct {
	mock.Mock
}

func (m *mockDealStore) ListRaw(ctx context.Context, source domain.SourceSystem, table string) ([]domain.RawRecord, error) {
	args := m.Called(ctx, source, table)
	records, _ := args.Get(0).([]domain.RawRecord)
	return records, args.Error(1)
}

func (m *mockDealStore) Seed(ctx context.Context, hubspot []store.HubspotDeal, sheets []store.SheetsDeal) error {
	return m.Called(ctx, hubspot, sheets).Error(0)
}

type mockPipelineStore struct {
	mock.Mock
}

func (m *mockPipelineStore) Replace(ctx context.Context, records []domain.UnifiedRecord) error {
	return m.Called(ctx, records).Error(0)
}

func (m *mockPipelineStore) List(ctx context.Context) ([]domain.UnifiedRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]domain.UnifiedRecord)
	return records, args.Error(1)
}

type mockRunStore struct {
	mock.Mock
}

func (m *mockRunStore) Create(ctx context.Context, run store.Run) error {
	return m.Called(ctx, run).Error(0)
}

func (m *mockRunStore) Finish(ctx context.Context, id string, status string, runErr error, finishedAt time.Time) error {
	return m.Called(ctx, id, status, runErr, finishedAt).Error(0)
}

func (m *mockRunStore) List(ctx context.Context, limit int) ([]store.Run, error) {
	args := m.Called(ctx, limit)
	runs, _ := args.Get(0).([]store.Run)
	return runs, args.Error(1)
}

type mockNarrator struct {
	mock.Mock
}

func (m *mockNarrator) Narrate(ctx context.Context, summary api.DeltaSummary) (string, error) {
	args := m.Called(ctx, summary)
	return args.String(0), args.Error(1)
}

type mockPoster struct {
	mock.Mock
}

func (m *mockPoster) Post(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*RunResult)
	return result, args.Error(1)
}

type bytesOpener struct {
	data     []byte
	location string
}

func (o *bytesOpener) Open(_ context.Context, location string) (io.ReadCloser, error) {
	o.location = location
	return io.NopCloser(bytes.NewReader(o.data)), nil
}
