package summary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/de-tools/revops-pilot/pkg/adapters"
	"github.com/de-tools/revops-pilot/pkg/models/api"
	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/de-tools/revops-pilot/pkg/models/store"
	"github.com/de-tools/revops-pilot/pkg/services/workflow"
	"github.com/rs/zerolog"
)

const (
	defaultInterval = 7 // 7 days ~ 1 week
	defaultClient   = "Acme SaaS"
	defaultRunLimit = 20
)

// Service is the read side of the pipeline
type Service interface {
	Summarize(ctx context.Context, period domain.Period, client string) (domain.DeltaSummary, error)
	Stages(ctx context.Context) ([]domain.StageTotal, error)
	Runs(ctx context.Context, limit int) ([]store.Run, error)
}

type Handler struct {
	svc  Service
	ctrl workflow.Controller
	now  func() time.Time
}

func NewHandler(svc Service, ctrl workflow.Controller) *Handler {
	return &Handler{
		svc:  svc,
		ctrl: ctrl,
		now:  time.Now,
	}
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	period, err := h.period(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	client := r.URL.Query().Get("client")
	if client == "" {
		client = defaultClient
	}

	summary, err := h.svc.Summarize(ctx, period, client)
	if err != nil {
		logger.Error().Err(err).Str("client", client).Msg("failed to summarize pipeline")
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, adapters.MapDeltaSummaryDomainToApi(summary))
}

func (h *Handler) ListStages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totals, err := h.svc.Stages(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list stage totals")
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, adapters.MapStageTotalsDomainToApi(totals))
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(ctx, w, badRequest("invalid 'limit'. Expected a positive integer"))
			return
		}
		limit = n
	}

	runs, err := h.svc.Runs(ctx, limit)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list runs")
		writeError(ctx, w, err)
		return
	}

	response := make([]api.Run, 0, len(runs))
	for _, run := range runs {
		response = append(response, adapters.MapRunStoreToApi(run))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

// StartRun triggers a background run for the period ending today
func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(ctx, w, badRequest("invalid run request body"))
			return
		}
	}
	if req.Client == "" {
		req.Client = defaultClient
	}
	if req.DaysBack == nil {
		days := defaultInterval
		req.DaysBack = &days
	}

	period, err := workflow.PeriodEndingToday(h.now(), *req.DaysBack)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if _, err := h.ctrl.Start(ctx, workflow.RunRequest{
		Client:  req.Client,
		Period:  period,
		Narrate: req.Narrate,
		Post:    req.Post,
	}); err != nil {
		if errors.Is(err, workflow.ErrRunInProgress) {
			writeJSON(ctx, w, http.StatusConflict, api.Error{Class: "conflict", Message: err.Error()})
			return
		}
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusAccepted, api.RunAccepted{
		Client:      req.Client,
		PeriodStart: domain.FormatDate(period.Start),
		PeriodEnd:   domain.FormatDate(period.End),
	})
}

func (h *Handler) period(r *http.Request) (domain.Period, error) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")

	if start == "" && end == "" {
		return workflow.PeriodEndingToday(h.now(), defaultInterval)
	}
	if start == "" || end == "" {
		return domain.Period{}, badRequest("both 'start' and 'end' are required. Expected format: YYYY-MM-DD")
	}
	return domain.ParsePeriod(start, end)
}

type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error { return &requestError{msg: msg} }

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var reqErr *requestError
	status, class := http.StatusInternalServerError, "error"
	switch {
	case errors.As(err, &reqErr):
		status, class = http.StatusBadRequest, "bad request"
	case domain.IsDataQualityError(err):
		status, class = http.StatusBadRequest, "data quality"
	case domain.IsConfigurationError(err):
		class = "configuration"
	}
	writeJSON(ctx, w, status, api.Error{Class: class, Message: err.Error()})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}
