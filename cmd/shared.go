package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"socialdash/internal/askai"
	"socialdash/internal/llm"
	"socialdash/internal/store"
)

// app holds the services a command needs. Fields stay nil for parts the
// command did not ask for.
type app struct {
	primary  *pgxpool.Pool
	readOnly *pgxpool.Pool
	store    *store.Store
	executor *store.ReadOnlyExecutor
	pipeline *askai.Pipeline
}

type appNeeds struct {
	primary  bool
	readOnly bool
	// llm builds the pipeline; it implies readOnly.
	llm bool
	// optionalLLM logs and continues when the model client cannot be built.
	optionalLLM bool
}

func openApp(ctx context.Context, needs appNeeds) (*app, error) {
	a := &app{}
	db := cfg.Database

	if needs.primary {
		pool, err := store.NewPool(ctx, store.PoolConfig{URL: db.PrimaryDSN(), MaxConnections: db.MaxConnections})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.primary = pool
		a.store = store.New(pool, logger)
	}

	if needs.readOnly || needs.llm {
		pool, err := store.NewPool(ctx, store.PoolConfig{URL: db.ReadOnlyDSN(), MaxConnections: db.MaxConnections, ReadOnly: true})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to connect with read-only credentials: %w", err)
		}
		a.readOnly = pool
		a.executor = store.NewReadOnlyExecutor(pool, logger)
	}

	if needs.llm {
		client, err := llm.NewClient(llm.Config{
			Provider:  cfg.LLM.Provider,
			Model:     cfg.LLM.Model,
			APIKey:    cfg.LLM.APIKey,
			BaseURL:   cfg.LLM.BaseURL,
			MaxTokens: cfg.LLM.MaxTokens,
		}, logger)
		switch {
		case err == nil:
			a.pipeline = askai.NewPipeline(client, a.executor, askai.Options{Temperature: cfg.LLM.Temperature}, logger)
		case needs.optionalLLM:
			logger.Warn("AI querying disabled", zap.Error(err))
		default:
			a.close()
			return nil, fmt.Errorf("failed to create model client: %w", err)
		}
	}

	return a, nil
}

func (a *app) close() {
	if a.primary != nil {
		a.primary.Close()
	}
	if a.readOnly != nil {
		a.readOnly.Close()
	}
}

// fail logs err and returns it wrapped with message, for RunE commands that
// must unwind their deferred cleanup before the process exits.
func fail(err error, message string) error {
	if logger != nil {
		logger.Error(message, zap.Error(err))
	}
	return fmt.Errorf("%s: %w", message, err)
}

// HandleError prints error and exits
func HandleError(err error, message string) {
	if logger != nil {
		logger.Error(message, zap.Error(err))
	}
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, err)
	os.Exit(1)
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Println(string(output))
	return nil
}
