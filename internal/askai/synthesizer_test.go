package askai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialdash/internal/llm"
)

func TestStripCodeFences(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "no fence", in: "  SELECT 1 ", want: "SELECT 1"},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "sql fence", in: "```sql\nSELECT 1\n```", want: "SELECT 1"},
		{name: "uppercase tag", in: "```SQL\nSELECT 1\n```", want: "SELECT 1"},
		{name: "bare fence", in: "```\nSELECT 1\n```", want: "SELECT 1"},
		{name: "keyword right after fence", in: "```SELECT 1```", want: "SELECT 1"},
		{name: "only closing fence", in: "SELECT 1\n```", want: "SELECT 1"},
		{name: "tag sharing a known prefix", in: "```sqlite\nSELECT 1\n```", want: "SELECT 1"},
		{name: "unknown tag", in: "```javascript\nSELECT 1\n```", want: "SELECT 1"},
		{name: "tag with trailing spaces", in: "```postgresql  \r\nSELECT 1\n```", want: "SELECT 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripCodeFences(tc.in))
		})
	}
}

func TestParseSynthesis(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want QueryRequest
	}{
		{
			name: "well formed analytical",
			raw:  `{"type": "analytical", "sql": "SELECT AVG(likes) FROM posts"}`,
			want: QueryRequest{Type: Analytical, SQL: "SELECT AVG(likes) FROM posts"},
		},
		{
			name: "well formed simple in fence",
			raw:  "```json\n{\"type\": \"simple\", \"sql\": \"SELECT * FROM posts LIMIT 5\"}\n```",
			want: QueryRequest{Type: Simple, SQL: "SELECT * FROM posts LIMIT 5"},
		},
		{
			name: "plain sql",
			raw:  "SELECT COUNT(*) FROM posts",
			want: QueryRequest{Type: Simple, SQL: "SELECT COUNT(*) FROM posts"},
		},
		{
			name: "plain sql in sql fence",
			raw:  "```sql\nSELECT 1\n```",
			want: QueryRequest{Type: Simple, SQL: "SELECT 1"},
		},
		{
			name: "plain sql in sqlite fence",
			raw:  "```sqlite\nSELECT 1\n```",
			want: QueryRequest{Type: Simple, SQL: "SELECT 1"},
		},
		{
			name: "missing type keeps sql",
			raw:  `{"sql": "SELECT 2"}`,
			want: QueryRequest{Type: Simple, SQL: "SELECT 2"},
		},
		{
			name: "missing sql falls back to raw text",
			raw:  `{"type": "analytical"}`,
			want: QueryRequest{Type: Simple, SQL: `{"type": "analytical"}`},
		},
		{
			name: "unknown type is simple",
			raw:  `{"type": "chart", "sql": "SELECT 3"}`,
			want: QueryRequest{Type: Simple, SQL: "SELECT 3"},
		},
		{
			name: "json array is raw text",
			raw:  `["SELECT 1"]`,
			want: QueryRequest{Type: Simple, SQL: `["SELECT 1"]`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseSynthesis(tc.raw))
		})
	}
}

func TestSynthesizer_Synthesize(t *testing.T) {
	mock := llm.NewMockClient(`{"type":"simple","sql":"SELECT 1"}`)
	s := NewSynthesizer(mock, -1, zap.NewNop())

	req, err := s.Synthesize(context.Background(), "how many posts?")
	require.NoError(t, err)
	assert.Equal(t, QueryRequest{Type: Simple, SQL: "SELECT 1"}, req)

	require.Len(t, mock.Requests, 1)
	sent := mock.Requests[0]
	assert.Equal(t, "how many posts?", sent.Prompt)
	assert.InDelta(t, 0.1, sent.Temperature, 1e-9)
	assert.True(t, strings.Contains(sent.System, SchemaDescriptor))
	assert.Contains(t, sent.System, OffTopicSQL)
}

func TestSynthesizer_ProviderError(t *testing.T) {
	boom := errors.New("unavailable")
	mock := &llm.MockClient{Responses: []llm.MockResponse{{Err: boom}}}
	s := NewSynthesizer(mock, 0.1, zap.NewNop())

	_, err := s.Synthesize(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, mock.Calls())
}
