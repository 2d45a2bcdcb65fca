package askai

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"socialdash/internal/llm"
	"socialdash/internal/models"
)

const (
	// MaxAnalysisRows caps how many rows are sent to the model.
	MaxAnalysisRows = 50

	// AnalysisFallback replaces the narrative when analysis fails.
	AnalysisFallback = "Could not generate analysis, but here is the raw data."

	analysisTemperature = 0.3
)

// Analyzer writes a short narrative answer over a result set.
type Analyzer struct {
	client llm.Client
	logger *zap.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(client llm.Client, logger *zap.Logger) *Analyzer {
	return &Analyzer{client: client, logger: logger.Named("analyzer")}
}

// Analyze makes one model call. Errors are wrapped with ErrAnalysis.
func (a *Analyzer) Analyze(ctx context.Context, question, sql string, rows []models.Row) (string, error) {
	prompt, err := BuildAnalysisPrompt(question, sql, rows)
	if err != nil {
		return "", &Error{Kind: ErrAnalysis, SQL: sql, Cause: err}
	}

	text, err := a.client.Generate(ctx, llm.Request{
		System:      AnalysisSystemPrompt(),
		Prompt:      prompt,
		Temperature: analysisTemperature,
	})
	if err != nil {
		return "", &Error{Kind: ErrAnalysis, SQL: sql, Cause: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &Error{Kind: ErrAnalysis, SQL: sql, Cause: llm.ErrEmptyResponse}
	}
	return text, nil
}
