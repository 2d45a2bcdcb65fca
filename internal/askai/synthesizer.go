package askai

import (
	"context"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"socialdash/internal/llm"
)

// Classification decides whether a result gets a narrative analysis.
type Classification string

const (
	Simple     Classification = "simple"
	Analytical Classification = "analytical"
)

// DefaultTemperature keeps query generation close to deterministic.
const DefaultTemperature = 0.1

// QueryRequest is what the synthesizer produced for a question.
type QueryRequest struct {
	Type Classification `json:"type"`
	SQL  string         `json:"sql"`
}

// Synthesizer turns a question into a QueryRequest with one model call.
type Synthesizer struct {
	client      llm.Client
	temperature float64
	logger      *zap.Logger
}

// NewSynthesizer creates a Synthesizer. A negative temperature means DefaultTemperature.
func NewSynthesizer(client llm.Client, temperature float64, logger *zap.Logger) *Synthesizer {
	if temperature < 0 {
		temperature = DefaultTemperature
	}
	return &Synthesizer{
		client:      client,
		temperature: temperature,
		logger:      logger.Named("synthesizer"),
	}
}

// Synthesize asks the model for a query. Provider errors are returned as-is.
func (s *Synthesizer) Synthesize(ctx context.Context, question string) (QueryRequest, error) {
	raw, err := s.client.Generate(ctx, llm.Request{
		System:      SynthesisSystemPrompt(),
		Prompt:      question,
		Temperature: s.temperature,
	})
	if err != nil {
		return QueryRequest{}, err
	}

	req := ParseSynthesis(raw)
	s.logger.Debug("Synthesized query",
		zap.String("type", string(req.Type)),
		zap.String("sql", req.SQL))
	return req, nil
}

// openingFence matches a fence line with any language tag. A tag only counts
// when the line ends after it, so "```SELECT 1```" keeps its query.
var openingFence = regexp.MustCompile("(?i)^```[a-z0-9_+.#-]*[ \t]*(?:\r?\n|$)")

// StripCodeFences removes a surrounding markdown code fence, if any.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if openingFence.MatchString(text) {
		text = openingFence.ReplaceAllString(text, "")
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// ParseSynthesis interprets raw model output. Output that is not a JSON
// object is taken as a bare simple query.
func ParseSynthesis(raw string) QueryRequest {
	text := StripCodeFences(raw)

	var parsed struct {
		Type *string `json:"type"`
		SQL  *string `json:"sql"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return QueryRequest{Type: Simple, SQL: text}
	}

	if parsed.Type == nil || parsed.SQL == nil {
		req := QueryRequest{Type: Simple, SQL: text}
		if parsed.SQL != nil {
			req.SQL = *parsed.SQL
		}
		return req
	}

	kind := Simple
	if Classification(strings.ToLower(strings.TrimSpace(*parsed.Type))) == Analytical {
		kind = Analytical
	}
	return QueryRequest{Type: kind, SQL: *parsed.SQL}
}
