package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialdash/internal/askai"
	"socialdash/internal/models"
)

type fakeAsker struct {
	resp *askai.Response
	err  error
	got  []string
}

func (f *fakeAsker) Answer(ctx context.Context, question string) (*askai.Response, error) {
	f.got = append(f.got, question)
	return f.resp, f.err
}

func sampleResponse() *askai.Response {
	return &askai.Response{
		Type: askai.Analytical,
		SQL:  "SELECT t.name, SUM(p.likes) AS likes FROM topics t JOIN topic_posts tp ON tp.topic_id = t.id JOIN posts p ON p.post_id = tp.post_id GROUP BY t.name",
		Data: []models.Row{
			models.NewRow([]string{"name", "likes"}, []any{"ai", int64(80)}),
			models.NewRow([]string{"name", "likes"}, []any{"career", int64(60)}),
		},
		Analysis: "**AI** posts lead on likes.",
	}
}

func sizedModel(asker Asker) model {
	m := initialModel(asker, zap.NewNop(), time.Second)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(model)
}

func TestInitialModel(t *testing.T) {
	m := initialModel(&fakeAsker{}, zap.NewNop(), 0)

	assert.Equal(t, askView, m.currentView)
	assert.True(t, m.input.Focused())
	assert.Nil(t, m.response)
	assert.False(t, m.loading)
	assert.Equal(t, 2*time.Minute, m.timeout)
}

func TestAskViewKeyHandling(t *testing.T) {
	asker := &fakeAsker{resp: sampleResponse()}
	m := sizedModel(asker)

	next, cmd := m.handleAskViewKeys(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	assert.Nil(t, cmd, "empty question does nothing")
	require.Error(t, m.err)

	m.input.SetValue("  which topic gets the most likes?  ")
	next, cmd = m.handleAskViewKeys(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	msg := cmd()
	assert.Equal(t, []string{"which topic gets the most likes?"}, asker.got)

	next, _ = m.Update(msg)
	m = next.(model)
	assert.False(t, m.loading)
	assert.Equal(t, answerView, m.currentView)
	assert.Len(t, m.history.Items(), 1)
	assert.Contains(t, m.View(), "Copy SQL")
}

func TestAskViewTabSwitchesFocus(t *testing.T) {
	m := sizedModel(&fakeAsker{})

	next, _ := m.handleAskViewKeys(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	assert.False(t, m.input.Focused())

	next, _ = m.handleAskViewKeys(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	assert.True(t, m.input.Focused())
}

func TestAnswerErrorStaysOnAskView(t *testing.T) {
	m := sizedModel(&fakeAsker{})
	m.loading = true

	next, _ := m.Update(answerMsg{question: "q", err: &askai.Error{Kind: askai.ErrInvalidQuery, SQL: "DELETE FROM posts"}})
	m = next.(model)

	assert.False(t, m.loading)
	assert.Equal(t, askView, m.currentView)
	assert.Contains(t, m.View(), "invalid query: DELETE FROM posts")
}

func TestAnswerViewCopyAndBack(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	defer func() { writeClipboard = orig }()

	m := sizedModel(&fakeAsker{})
	next, _ := m.Update(answerMsg{question: "q", resp: sampleResponse()})
	m = next.(model)

	next, _ = m.handleAnswerViewKeys(tea.KeyMsg{Type: tea.KeyCtrlY})
	m = next.(model)
	assert.Equal(t, sampleResponse().SQL, copied)
	assert.Equal(t, "SQL copied to clipboard", m.status)

	next, _ = m.handleAnswerViewKeys(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)
	assert.Equal(t, askView, m.currentView)
	assert.True(t, m.input.Focused())
	assert.Empty(t, m.status)
}

func TestAnswerViewCopyFailure(t *testing.T) {
	orig := writeClipboard
	writeClipboard = func(string) error { return errors.New("no clipboard") }
	defer func() { writeClipboard = orig }()

	m := sizedModel(&fakeAsker{})
	next, _ := m.Update(answerMsg{question: "q", resp: sampleResponse()})
	m = next.(model)

	next, _ = m.handleAnswerViewKeys(tea.KeyMsg{Type: tea.KeyCtrlY})
	m = next.(model)
	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "no clipboard")
}

func TestErrorMessage(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{name: "empty", err: &askai.Error{Kind: askai.ErrEmptyQuestion}, want: "No question provided"},
		{name: "execution", err: &askai.Error{Kind: askai.ErrExecution, Cause: errors.New("syntax error")}, want: "Query failed: syntax error"},
		{name: "synthesis", err: &askai.Error{Kind: askai.ErrSynthesis, Cause: errors.New("503")}, want: "Failed to process the question with AI."},
		{name: "other", err: errors.New("boom"), want: "boom"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errorMessage(tc.err))
		})
	}
}

func TestRenderAnswer(t *testing.T) {
	out := renderAnswer("likes by topic", sampleResponse(), 100)

	assert.Contains(t, out, "career")
	assert.Contains(t, out, "likes")
	assert.Contains(t, out, "█")

	empty := renderAnswer("nothing", &askai.Response{Type: askai.Simple, SQL: "SELECT 1 WHERE false"}, 80)
	assert.Contains(t, empty, "No rows returned.")
}

func TestRenderTable_Truncates(t *testing.T) {
	rows := make([]models.Row, 25)
	for i := range rows {
		rows[i] = models.NewRow([]string{"n"}, []any{int64(i)})
	}
	out := renderTable(rows)
	assert.Contains(t, out, "19")
	assert.NotContains(t, out, "24")
}

func TestChartColumns(t *testing.T) {
	testCases := []struct {
		name      string
		row       models.Row
		wantLabel int
		wantValue int
	}{
		{name: "label then value", row: models.NewRow([]string{"name", "likes"}, []any{"ai", int64(3)}), wantLabel: 0, wantValue: 1},
		{name: "id columns skipped", row: models.NewRow([]string{"post_id", "caption", "impressions"}, []any{"7301", "x", int64(9)}), wantLabel: 0, wantValue: 2},
		{name: "numeric id skipped", row: models.NewRow([]string{"id", "avg"}, []any{int64(1), 2.5}), wantLabel: -1, wantValue: 1},
		{name: "nothing numeric", row: models.NewRow([]string{"name"}, []any{"ai"}), wantLabel: 0, wantValue: -1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			label, value := chartColumns(tc.row)
			assert.Equal(t, tc.wantLabel, label)
			assert.Equal(t, tc.wantValue, value)
		})
	}
}

func TestBarChart(t *testing.T) {
	full := BarChart("a", 10, 10, 8, "82")
	assert.Equal(t, 8, strings.Count(full, "█"))
	assert.True(t, strings.HasSuffix(full, " 10"))

	half := BarChart("b", 2.5, 5, 8, "82")
	assert.Equal(t, 4, strings.Count(half, "█"))
	assert.True(t, strings.HasSuffix(half, " 2.50"))

	zero := BarChart("c", 0, 0, 4, "82")
	assert.Equal(t, 4, strings.Count(zero, "░"))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	assert.Equal(t, "▁█", Sparkline([]float64{1, 2}))
	assert.Equal(t, "▅▅", Sparkline([]float64{3, 3}))
}

func TestResultChart_NothingToPlot(t *testing.T) {
	assert.Empty(t, ResultChart(nil, 80))
	assert.Empty(t, ResultChart([]models.Row{models.NewRow([]string{"name"}, []any{"ai"})}, 80))
}
