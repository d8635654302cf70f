// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package demographics

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pdiddy/litscope/pkg/types"
)

// AIBackend abstracts the Generative AI API so tests can supply a mock.
// Each implementation classifies a single paper's text and returns the
// structured response.
type AIBackend interface {
	Classify(ctx context.Context, text string) (AIResponse, error)
}

// AIResponse is the fixed output schema the AI backend must produce for
// one paper.
type AIResponse struct {
	// AgeGroups lists matched age buckets: "0-18", "18-65", "65-75", ">75".
	AgeGroups []string `json:"age_groups"`

	// Genders lists matched gender buckets: "male", "female".
	Genders []string `json:"genders"`

	// Pregnancy reports whether the paper covers pregnant populations.
	Pregnancy bool `json:"pregnancy"`

	// Regions lists matched geography buckets: "North America", "Europe",
	// "Asia", "Other".
	Regions []string `json:"regions"`
}

// ModelStrategy classifies papers through an AI backend. Each paper is a
// single backend call; calls are independent of each other.
type ModelStrategy struct {
	backend    AIBackend
	maxRetries int
}

// NewModelStrategy wraps an AI backend as an extraction strategy.
// maxRetries ≤ 0 uses the default of 3.
func NewModelStrategy(backend AIBackend, maxRetries int) *ModelStrategy {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ModelStrategy{backend: backend, maxRetries: maxRetries}
}

// Name returns the strategy identifier.
func (s *ModelStrategy) Name() string { return "model" }

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Extract classifies every paper through the backend. A failure on any
// paper aborts the batch with an error; the caller substitutes neutral
// coverage rather than crashing the run.
func (s *ModelStrategy) Extract(ctx context.Context, papers []types.PaperRecord) ([]types.DemographicSignals, error) {
	signals := make([]types.DemographicSignals, len(papers))
	for i, p := range papers {
		resp, err := s.classifyWithRetry(ctx, p.Title+" "+p.Abstract)
		if err != nil {
			return nil, fmt.Errorf("classifying paper %q: %w", p.ID(), err)
		}
		signals[i] = resp.toSignals()
	}
	return signals, nil
}

// classifyWithRetry calls the backend with exponential backoff.
func (s *ModelStrategy) classifyWithRetry(ctx context.Context, text string) (AIResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return AIResponse{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := s.backend.Classify(ctx, text)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return AIResponse{}, fmt.Errorf("after %d retries: %w", s.maxRetries, lastErr)
}

// toSignals converts a backend response to signals, dropping bucket
// names outside the canonical sets so a sloppy response cannot invent
// buckets downstream.
func (r AIResponse) toSignals() types.DemographicSignals {
	matched := map[types.Dimension][]string{
		types.DimensionAge:       validBuckets(types.DimensionAge, r.AgeGroups),
		types.DimensionGender:    validBuckets(types.DimensionGender, r.Genders),
		types.DimensionGeography: validBuckets(types.DimensionGeography, r.Regions),
	}
	if r.Pregnancy {
		matched[types.DimensionPregnancy] = []string{types.PregnancyPregnant}
	}
	for _, dim := range types.Dimensions {
		if len(matched[dim]) == 0 {
			matched[dim] = []string{types.NotSpecified}
		}
	}
	return types.DemographicSignals{Matched: matched}
}

// validBuckets filters names to the dimension's canonical buckets,
// deduplicated, in canonical order.
func validBuckets(dim types.Dimension, names []string) []string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[strings.TrimSpace(n)] = true
	}
	var out []string
	for _, b := range types.Buckets(dim) {
		if seen[b] {
			out = append(out, b)
		}
	}
	return out
}

const classifyPrompt = `Classify the demographic coverage of this medical paper.
Return strict JSON only, with this exact schema:
{"age_groups": [], "genders": [], "pregnancy": false, "regions": []}
Allowed age_groups: "0-18", "18-65", "65-75", ">75".
Allowed genders: "male", "female".
Allowed regions: "North America", "Europe", "Asia", "Other".
Include a value only when the text clearly covers that population.

Paper text:
%s`

const anthropicSystemPrompt = "You are a medical literature analyst. You classify demographic coverage conservatively and do not invent facts. Return strict JSON only."

// AnthropicBackend classifies papers through the Anthropic Messages API.
type AnthropicBackend struct {
	client anthropic.Client
	model  string
}

// NewAnthropicBackend builds a backend from AI configuration. The API
// key and model must be set.
func NewAnthropicBackend(cfg types.AIConfig) (*AnthropicBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key not configured")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("anthropic model not configured")
	}
	return &AnthropicBackend{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
	}, nil
}

// Classify sends one paper's text to the model and parses the JSON reply.
func (b *AnthropicBackend) Classify(ctx context.Context, text string) (AIResponse, error) {
	msg, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		MaxTokens:   1024,
		System:      []anthropic.TextBlockParam{{Text: anthropicSystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(fmt.Sprintf(classifyPrompt, text)))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return AIResponse{}, fmt.Errorf("anthropic request: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	raw := stripCodeFences(sb.String())
	if raw == "" {
		return AIResponse{}, fmt.Errorf("empty model response")
	}

	var resp AIResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return AIResponse{}, fmt.Errorf("parsing model response: %w", err)
	}
	return resp, nil
}

// stripCodeFences removes a surrounding ``` block if the model wrapped
// its JSON despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if parts := strings.SplitN(s, "\n", 2); len(parts) == 2 {
		s = parts[1]
	}
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
