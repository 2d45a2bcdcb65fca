// Package askai answers natural-language questions about the dashboard data.
//
// A question is turned into SQL by a language model, checked by a textual
// allow-list, executed through a read-only Executor, sanitized for JSON
// clients and, for analytical questions, summarized by a second model call.
package askai

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialdash/internal/llm"
	"socialdash/internal/metrics"
	"socialdash/internal/models"
)

// Executor runs a validated query under read-only credentials.
type Executor interface {
	Execute(ctx context.Context, sql string) ([]models.Row, error)
}

// Response is the answer to one question.
type Response struct {
	Type     Classification `json:"type"`
	SQL      string         `json:"sql"`
	Data     []models.Row   `json:"data"`
	Analysis string         `json:"analysis,omitempty"`
}

// Pipeline wires the synthesizer, validator, executor, sanitizer and analyzer.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	synthesizer *Synthesizer
	analyzer    *Analyzer
	executor    Executor
	logger      *zap.Logger
}

// Options tune a Pipeline.
type Options struct {
	// Temperature for query synthesis; negative means DefaultTemperature.
	Temperature float64
}

// NewPipeline builds a Pipeline that uses client for both model calls.
func NewPipeline(client llm.Client, executor Executor, opts Options, logger *zap.Logger) *Pipeline {
	logger = logger.Named("askai")
	return &Pipeline{
		synthesizer: NewSynthesizer(client, opts.Temperature, logger),
		analyzer:    NewAnalyzer(client, logger),
		executor:    executor,
		logger:      logger,
	}
}

// Answer runs the full chain for question. Analysis failures never fail the
// request; every other failure is an *Error matching one of the Err* kinds.
func (p *Pipeline) Answer(ctx context.Context, question string) (*Response, error) {
	start := time.Now()
	defer func() { metrics.AskDuration.Observe(time.Since(start).Seconds()) }()

	question = strings.TrimSpace(question)
	if question == "" {
		metrics.AskRequests.WithLabelValues("empty_question").Inc()
		return nil, &Error{Kind: ErrEmptyQuestion}
	}

	log := p.logger.With(zap.String("request_id", uuid.NewString()))

	req, err := p.synthesizer.Synthesize(ctx, question)
	if err != nil {
		log.Error("Query synthesis failed", zap.Error(err))
		metrics.AskRequests.WithLabelValues("synthesis_failure").Inc()
		return nil, &Error{Kind: ErrSynthesis, Cause: err}
	}

	if err := Validate(req.SQL); err != nil {
		log.Warn("Rejected generated query", zap.String("sql", req.SQL))
		metrics.AskRequests.WithLabelValues("invalid_query").Inc()
		return nil, err
	}

	rows, err := p.executor.Execute(ctx, req.SQL)
	if err != nil {
		log.Error("Read-only query failed", zap.String("sql", req.SQL), zap.Error(err))
		metrics.AskRequests.WithLabelValues("execution_failure").Inc()
		return nil, &Error{Kind: ErrExecution, SQL: req.SQL, Cause: err}
	}
	metrics.QueryRows.Observe(float64(len(rows)))

	data := Sanitize(rows)
	resp := &Response{Type: req.Type, SQL: req.SQL, Data: data}

	if req.Type == Analytical {
		analysis, err := p.analyzer.Analyze(ctx, question, req.SQL, data)
		if err != nil {
			log.Error("Analysis generation failed", zap.Error(err))
			metrics.AnalysisFallbacks.Inc()
			analysis = AnalysisFallback
		}
		resp.Analysis = analysis
	}

	log.Info("Answered question",
		zap.String("type", string(resp.Type)),
		zap.Int("rows", len(data)),
		zap.Duration("elapsed", time.Since(start)))
	metrics.AskRequests.WithLabelValues("ok").Inc()
	return resp, nil
}
