package askai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialdash/internal/llm"
	"socialdash/internal/models"
)

type fakeExecutor struct {
	rows  []models.Row
	err   error
	calls []string
}

func (f *fakeExecutor) Execute(ctx context.Context, sql string) ([]models.Row, error) {
	f.calls = append(f.calls, sql)
	return f.rows, f.err
}

func postRows(n int) []models.Row {
	rows := make([]models.Row, n)
	for i := range rows {
		rows[i] = models.NewRow(
			[]string{"post_id", "likes"},
			[]any{int64(7300000000000000000 + i), int32(i)},
		)
	}
	return rows
}

func TestPipeline_SimpleQuestion(t *testing.T) {
	mock := llm.NewMockClient(`{"type":"simple","sql":"SELECT post_id, likes FROM posts ORDER BY likes DESC LIMIT 5"}`)
	exec := &fakeExecutor{rows: postRows(2)}
	p := NewPipeline(mock, exec, Options{Temperature: -1}, zap.NewNop())

	resp, err := p.Answer(context.Background(), "  top posts by likes  ")
	require.NoError(t, err)

	assert.Equal(t, Simple, resp.Type)
	assert.Equal(t, "SELECT post_id, likes FROM posts ORDER BY likes DESC LIMIT 5", resp.SQL)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "7300000000000000000", resp.Data[0].Values[0])
	assert.Empty(t, resp.Analysis)
	assert.Equal(t, 1, mock.Calls(), "simple questions make one model call")
	assert.Equal(t, "top posts by likes", mock.Requests[0].Prompt)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(body), `"analysis"`)
	assert.Contains(t, string(body), `{"post_id":"7300000000000000000","likes":0}`)
}

func TestPipeline_AnalyticalQuestion(t *testing.T) {
	mock := llm.NewMockClient(
		`{"type":"analytical","sql":"SELECT post_id, likes FROM posts"}`,
		"  Your best post has 59 likes.  ",
	)
	exec := &fakeExecutor{rows: postRows(60)}
	p := NewPipeline(mock, exec, Options{Temperature: -1}, zap.NewNop())

	resp, err := p.Answer(context.Background(), "why do some posts do better?")
	require.NoError(t, err)

	assert.Equal(t, Analytical, resp.Type)
	assert.Len(t, resp.Data, 60)
	assert.Equal(t, "Your best post has 59 likes.", resp.Analysis)
	require.Equal(t, 2, mock.Calls())

	prompt := mock.Requests[1].Prompt
	assert.Contains(t, prompt, "why do some posts do better?")
	assert.Contains(t, prompt, "SELECT post_id, likes FROM posts")
	assert.Contains(t, prompt, "Total rows returned: 60")
	assert.Contains(t, prompt, `"7300000000000000049"`, "50th row is included")
	assert.NotContains(t, prompt, `"7300000000000000050"`, "51st row is not")
	assert.Equal(t, AnalysisSystemPrompt(), mock.Requests[1].System)
}

func TestPipeline_AnalysisFailureFallsBack(t *testing.T) {
	mock := &llm.MockClient{Responses: []llm.MockResponse{
		{Text: `{"type":"analytical","sql":"SELECT 1 AS n"}`},
		{Err: errors.New("quota exceeded")},
	}}
	exec := &fakeExecutor{rows: []models.Row{models.NewRow([]string{"n"}, []any{int32(1)})}}
	p := NewPipeline(mock, exec, Options{}, zap.NewNop())

	resp, err := p.Answer(context.Background(), "analyze")
	require.NoError(t, err)
	assert.Equal(t, AnalysisFallback, resp.Analysis)
	assert.Len(t, resp.Data, 1)
}

func TestPipeline_Errors(t *testing.T) {
	testCases := []struct {
		name       string
		question   string
		responses  []llm.MockResponse
		execErr    error
		wantKind   error
		wantSQL    string
		wantLLM    int
		wantExec   int
		wantDetail string
	}{
		{
			name:     "empty question",
			question: "   ",
			wantKind: ErrEmptyQuestion,
		},
		{
			name:      "synthesis failure",
			question:  "q",
			responses: []llm.MockResponse{{Err: errors.New("secret internal detail")}},
			wantKind:  ErrSynthesis,
			wantLLM:   1,
		},
		{
			name:      "invalid query",
			question:  "delete everything",
			responses: []llm.MockResponse{{Text: `{"type":"simple","sql":"DELETE FROM posts"}`}},
			wantKind:  ErrInvalidQuery,
			wantSQL:   "DELETE FROM posts",
			wantLLM:   1,
		},
		{
			name:       "execution failure",
			question:   "q",
			responses:  []llm.MockResponse{{Text: `{"type":"analytical","sql":"SELECT nope FROM posts"}`}},
			execErr:    fmt.Errorf(`column "nope" does not exist`),
			wantKind:   ErrExecution,
			wantSQL:    "SELECT nope FROM posts",
			wantLLM:    1,
			wantExec:   1,
			wantDetail: `column "nope" does not exist`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &llm.MockClient{Responses: tc.responses}
			exec := &fakeExecutor{err: tc.execErr}
			p := NewPipeline(mock, exec, Options{}, zap.NewNop())

			resp, err := p.Answer(context.Background(), tc.question)
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tc.wantKind)
			assert.Equal(t, tc.wantSQL, SQLOf(err))
			assert.Equal(t, tc.wantLLM, mock.Calls())
			assert.Len(t, exec.calls, tc.wantExec)
			if tc.wantDetail != "" {
				assert.Equal(t, tc.wantDetail, CauseMessage(err))
			}
		})
	}
}

func TestPipeline_OffTopicQuestion(t *testing.T) {
	mock := llm.NewMockClient(OffTopicSQL)
	exec := &fakeExecutor{rows: []models.Row{
		models.NewRow([]string{"error"}, []any{"I can only answer questions about the database."}),
	}}
	p := NewPipeline(mock, exec, Options{}, zap.NewNop())

	resp, err := p.Answer(context.Background(), "what's the weather?")
	require.NoError(t, err)
	assert.Equal(t, Simple, resp.Type)
	assert.True(t, strings.HasPrefix(resp.SQL, "SELECT 'I can only answer"))
}

func TestBuildAnalysisPrompt_SmallResult(t *testing.T) {
	prompt, err := BuildAnalysisPrompt("q", "SELECT 1", postRows(3))
	require.NoError(t, err)
	assert.Contains(t, prompt, "Total rows returned: 3")
	assert.Contains(t, prompt, "Rows:")
	assert.NotContains(t, prompt, "Showing the first")
}

func TestBuildAnalysisPrompt_NoRows(t *testing.T) {
	prompt, err := BuildAnalysisPrompt("q", "SELECT 1", nil)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Total rows returned: 0")
	assert.Contains(t, prompt, "[]")
}
