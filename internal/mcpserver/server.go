// Package mcpserver exposes the query assistant as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"socialdash/internal/askai"
)

// Asker answers natural-language questions.
type Asker interface {
	Answer(ctx context.Context, question string) (*askai.Response, error)
}

// Deps are the services the tools call into. Executor may be nil, in which
// case run_query is not registered.
type Deps struct {
	Asker    Asker
	Executor askai.Executor
	Logger   *zap.Logger
}

// NewServer creates an MCP server with the dashboard tools registered.
func NewServer(name, version string, deps Deps) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(true))
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("mcp")

	RegisterSchemaTool(s)
	if deps.Asker != nil {
		RegisterAskTool(s, deps.Asker, logger)
	}
	if deps.Executor != nil {
		RegisterQueryTool(s, deps.Executor, logger)
	}
	return s
}

// ServeStdio serves s over stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// RegisterSchemaTool adds describe_schema, which returns the table layout the
// assistant writes queries against.
func RegisterSchemaTool(s *server.MCPServer) {
	tool := mcp.NewTool(
		"describe_schema",
		mcp.WithDescription("Describes the posts, topics and topic_posts tables"),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(askai.SchemaDescriptor), nil
	})
}

// RegisterAskTool adds ask_database, which runs a question through the full
// pipeline and returns the JSON response.
func RegisterAskTool(s *server.MCPServer, asker Asker, logger *zap.Logger) {
	tool := mcp.NewTool(
		"ask_database",
		mcp.WithDescription("Answers a natural-language question about social media posts and topics. Returns the SQL used, the rows and, for analytical questions, a short analysis."),
		mcp.WithString(
			"question",
			mcp.Required(),
			mcp.Description("The question, e.g. 'Which topics had the highest median impressions last quarter?'"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp, err := asker.Answer(ctx, question)
		if err != nil {
			logger.Warn("ask_database failed", zap.String("question", question), zap.Error(err))
			return mcp.NewToolResultError(toolErrorMessage(err)), nil
		}
		return jsonResult(resp)
	})
}

// RegisterQueryTool adds run_query, which validates and runs caller-supplied
// SQL under the read-only credential.
func RegisterQueryTool(s *server.MCPServer, executor askai.Executor, logger *zap.Logger) {
	tool := mcp.NewTool(
		"run_query",
		mcp.WithDescription("Runs one read-only SQL statement (SELECT, WITH, SHOW, DESCRIBE or EXPLAIN) against the dashboard database"),
		mcp.WithString(
			"sql",
			mcp.Required(),
			mcp.Description("PostgreSQL statement to run"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql, err := req.RequireString("sql")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := askai.Validate(sql); err != nil {
			return mcp.NewToolResultError("only SELECT, WITH, SHOW, DESCRIBE and EXPLAIN statements are allowed"), nil
		}

		rows, err := executor.Execute(ctx, sql)
		if err != nil {
			logger.Warn("run_query failed", zap.String("sql", sql), zap.Error(err))
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}
		return jsonResult(askai.Sanitize(rows))
	})
}

func toolErrorMessage(err error) string {
	switch {
	case errors.Is(err, askai.ErrInvalidQuery):
		return "The AI generated an invalid query: " + askai.SQLOf(err)
	case errors.Is(err, askai.ErrExecution):
		return fmt.Sprintf("Query failed: %s (sql: %s)", askai.CauseMessage(err), askai.SQLOf(err))
	}
	return err.Error()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(body)), nil
}
