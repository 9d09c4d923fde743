package narrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/de-tools/revops-pilot/pkg/models/api"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const (
	DefaultModel     = "gemini-2.5-flash"
	DefaultMaxTokens = 500
)

// DefaultPrompt is used when no prompt file is configured
const DefaultPrompt = `You are a revenue operations analyst writing the weekly pipeline update for an account team.
You receive a JSON payload with the client name, the reporting period, newly won deals, lost deals,
the top at-risk deals (stalled in proposal or evaluation) and the weighted pipeline change.
Write a short Slack-ready summary: one headline sentence, then bullets for wins, losses and risks.
Mention deal names, owners and amounts. If weighted_pipeline_prev_is_placeholder is true, do not
describe the pipeline change as growth or decline. Do not invent deals that are not in the payload.`

var ErrEmptyResponse = errors.New("model returned no text")

// Narrator turns a summary payload into prose
type Narrator interface {
	Narrate(ctx context.Context, summary api.DeltaSummary) (string, error)
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Settings struct {
	Model     string
	APIKey    string
	Prompt    string
	MaxTokens int32
}

type geminiNarrator struct {
	models   contentGenerator
	settings Settings
}

// NewGeminiNarrator builds a Gemini API client. An empty APIKey lets genai fall back to GEMINI_API_KEY / GOOGLE_API_KEY.
func NewGeminiNarrator(ctx context.Context, settings Settings) (Narrator, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  settings.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newNarrator(cli.Models, settings), nil
}

func newNarrator(models contentGenerator, settings Settings) *geminiNarrator {
	if settings.Model == "" {
		settings.Model = DefaultModel
	}
	if strings.TrimSpace(settings.Prompt) == "" {
		settings.Prompt = DefaultPrompt
	}
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = DefaultMaxTokens
	}
	return &geminiNarrator{models: models, settings: settings}
}

func (n *geminiNarrator) Narrate(ctx context.Context, summary api.DeltaSummary) (string, error) {
	payload, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary payload: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("model", n.settings.Model).
		Int("payload_bytes", len(payload)).
		Msg("requesting pipeline narrative")

	temperature := float32(0.2)
	resp, err := n.models.GenerateContent(ctx, n.settings.Model,
		[]*genai.Content{{Role: string(genai.RoleUser), Parts: []*genai.Part{{Text: string(payload)}}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: n.settings.Prompt}}},
			Temperature:       &temperature,
			MaxOutputTokens:   n.settings.MaxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("generate narrative: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// LoadPrompt reads a prompt file; an empty path yields DefaultPrompt
func LoadPrompt(path string) (string, error) {
	if path == "" {
		return DefaultPrompt, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file: %w", err)
	}
	return string(b), nil
}
