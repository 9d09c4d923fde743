package narrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/de-tools/revops-pilot/pkg/models/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type mockModels struct {
	mock.Mock
}

func (m *mockModels) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, model, contents, config)
	resp, _ := args.Get(0).(*genai.GenerateContentResponse)
	return resp, args.Error(1)
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: string(genai.RoleModel)}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestNarrate_SendsPayloadAndPrompt(t *testing.T) {
	models := new(mockModels)
	n := newNarrator(models, Settings{Prompt: "be brief"})

	summary := api.DeltaSummary{ClientName: "Acme SaaS", PeriodStart: "2024-01-01", PeriodEnd: "2024-01-07"}
	models.On("GenerateContent", mock.Anything, DefaultModel,
		mock.MatchedBy(func(contents []*genai.Content) bool {
			if len(contents) != 1 || len(contents[0].Parts) != 1 {
				return false
			}
			text := contents[0].Parts[0].Text
			return strings.Contains(text, `"client_name":"Acme SaaS"`) && strings.Contains(text, `"period_end":"2024-01-07"`)
		}),
		mock.MatchedBy(func(cfg *genai.GenerateContentConfig) bool {
			return cfg.SystemInstruction.Parts[0].Text == "be brief" && cfg.MaxOutputTokens == DefaultMaxTokens
		}),
	).Return(textResponse("Acme closed ", "two deals."), nil)

	text, err := n.Narrate(context.Background(), summary)
	require.NoError(t, err)
	assert.Equal(t, "Acme closed two deals.", text)
	models.AssertExpectations(t)
}

func TestNarrate_Errors(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		err  error
		want error
	}{
		{name: "api failure", err: errors.New("quota exceeded")},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, want: ErrEmptyResponse},
		{name: "blank text", resp: textResponse("  "), want: ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := new(mockModels)
			models.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tt.resp, tt.err)

			_, err := newNarrator(models, Settings{}).Narrate(context.Background(), api.DeltaSummary{})
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestNewNarrator_Defaults(t *testing.T) {
	n := newNarrator(new(mockModels), Settings{})
	assert.Equal(t, DefaultModel, n.settings.Model)
	assert.Equal(t, DefaultPrompt, n.settings.Prompt)
	assert.EqualValues(t, DefaultMaxTokens, n.settings.MaxTokens)
}

func TestLoadPrompt(t *testing.T) {
	prompt, err := LoadPrompt("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompt, prompt)

	path := filepath.Join(t.TempDir(), "weekly_summary_prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("summarize"), 0o644))
	prompt, err = LoadPrompt(path)
	require.NoError(t, err)
	assert.Equal(t, "summarize", prompt)

	_, err = LoadPrompt(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
