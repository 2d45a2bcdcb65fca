// Package tui is the terminal chat front end for the query assistant.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"

	"socialdash/internal/askai"
	"socialdash/internal/models"
)

const maxTableRows = 20

// Asker answers natural-language questions.
type Asker interface {
	Answer(ctx context.Context, question string) (*askai.Response, error)
}

// Swapped out in tests.
var writeClipboard = clipboard.WriteAll

type view int

const (
	askView view = iota
	answerView
)

type model struct {
	asker         Asker
	logger        *zap.Logger
	timeout       time.Duration
	currentView   view
	input         textinput.Model
	history       list.Model
	viewport      viewport.Model
	question      string
	response      *askai.Response
	width         int
	height        int
	err           error
	status        string
	loading       bool
	viewportReady bool
}

type questionItem struct {
	question string
	rows     int
	kind     askai.Classification
}

func (i questionItem) Title() string { return i.question }

func (i questionItem) Description() string {
	return fmt.Sprintf("%s | %d rows", i.kind, i.rows)
}

func (i questionItem) FilterValue() string { return i.question }

type answerMsg struct {
	question string
	resp     *askai.Response
	err      error
}

func askQuestion(asker Asker, question string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := asker.Answer(ctx, question)
		return answerMsg{question: question, resp: resp, err: err}
	}
}

func initialModel(asker Asker, logger *zap.Logger, timeout time.Duration) model {
	ti := textinput.New()
	ti.Placeholder = "Ask about your posts, e.g. which topics get the most likes?"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 70

	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Previous questions"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = lipgloss.NewStyle().
		Background(lipgloss.Color("25")).
		Foreground(lipgloss.Color("230")).
		Padding(0, 1)

	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return model{
		asker:       asker,
		logger:      logger,
		timeout:     timeout,
		currentView: askView,
		input:       ti,
		history:     l,
		viewport:    viewport.New(80, 20),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.history.SetSize(msg.Width-4, msg.Height-10)
		// Reserve lines for the scroll indicator, status and help text.
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 5
		m.viewportReady = true
		if m.currentView == answerView {
			m.updateAnswerViewport()
		}
		return m, nil

	case tea.KeyMsg:
		if m.currentView == answerView {
			return m.handleAnswerViewKeys(msg)
		}
		return m.handleAskViewKeys(msg)

	case tea.MouseMsg:
		if m.currentView == answerView {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case answerMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.logger.Error("Question failed", zap.String("question", msg.question), zap.Error(msg.err))
			return m, nil
		}
		m.err = nil
		m.status = ""
		m.question = msg.question
		m.response = msg.resp
		m.history.InsertItem(0, questionItem{question: msg.question, rows: len(msg.resp.Data), kind: msg.resp.Type})
		m.currentView = answerView
		m.updateAnswerViewport()
		m.viewport.GotoTop()
		m.logger.Info("Question answered",
			zap.String("question", msg.question),
			zap.String("type", string(msg.resp.Type)),
			zap.Int("rows", len(msg.resp.Data)))
		return m, nil
	}

	if m.currentView == askView {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

		var listCmd tea.Cmd
		m.history, listCmd = m.history.Update(msg)
		cmds = append(cmds, listCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleAskViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		if m.loading {
			return m, nil
		}
		question := strings.TrimSpace(m.input.Value())
		if !m.input.Focused() {
			if item, ok := m.history.SelectedItem().(questionItem); ok {
				question = item.question
			}
		}
		if question == "" {
			m.err = errors.New("type a question first")
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, askQuestion(m.asker, question, m.timeout)

	case tea.KeyTab:
		if m.input.Focused() {
			m.input.Blur()
		} else {
			m.input.Focus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.input.Focused() {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.history, cmd = m.history.Update(msg)
	}
	return m, cmd
}

func (m model) handleAnswerViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEsc:
		m.currentView = askView
		m.status = ""
		m.err = nil
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyCtrlY:
		if m.response != nil && m.response.SQL != "" {
			if err := writeClipboard(m.response.SQL); err != nil {
				m.err = fmt.Errorf("copy failed: %w", err)
				return m, nil
			}
			m.status = "SQL copied to clipboard"
		}
		return m, nil

	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *model) updateAnswerViewport() {
	if m.response == nil {
		return
	}
	m.viewport.SetContent(renderAnswer(m.question, m.response, m.viewport.Width))
}

func (m model) View() string {
	if m.currentView == answerView {
		return m.answerViewRender()
	}
	return m.askViewRender()
}

func (m model) askViewRender() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("25")).
		MarginBottom(1)
	b.WriteString(headerStyle.Render("📊 Ask your dashboard"))
	b.WriteString("\n\n")

	inputStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("25")).
		Padding(0, 1)
	b.WriteString(inputStyle.Render(m.input.View()))
	b.WriteString("\n")

	if m.loading {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true).Render("⏳ Thinking..."))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("❌ " + errorMessage(m.err)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.history.Items()) > 0 {
		b.WriteString(m.history.View())
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("Enter: Ask | Tab: Switch to history | Esc: Quit"))
	return b.String()
}

func (m model) answerViewRender() string {
	if !m.viewportReady || m.response == nil {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.viewport.TotalLineCount() > m.viewport.Height {
		b.WriteString(helpStyle.Render(fmt.Sprintf("─── %d%% ───", int(m.viewport.ScrollPercent()*100))))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("✓ " + m.status))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("❌ " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓/PgUp/PgDn: Scroll | Ctrl+Y: Copy SQL | Esc: New question | Ctrl+C: Quit"))
	return b.String()
}

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// errorMessage phrases pipeline failures for the terminal.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, askai.ErrEmptyQuestion):
		return "No question provided"
	case errors.Is(err, askai.ErrInvalidQuery):
		return "The AI generated an invalid query: " + askai.SQLOf(err)
	case errors.Is(err, askai.ErrExecution):
		return "Query failed: " + askai.CauseMessage(err)
	case errors.Is(err, askai.ErrSynthesis):
		return "Failed to process the question with AI."
	}
	return err.Error()
}

// renderAnswer lays out the analysis, the SQL, a result table and a chart.
func renderAnswer(question string, resp *askai.Response, width int) string {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", question)
	if resp.Analysis != "" {
		md.WriteString(resp.Analysis)
		md.WriteString("\n\n")
	}
	fmt.Fprintf(&md, "```sql\n%s\n```\n", resp.SQL)

	var b strings.Builder
	rendered, err := renderMarkdown(md.String(), width)
	if err != nil {
		rendered = md.String()
	}
	b.WriteString(rendered)

	if len(resp.Data) == 0 {
		b.WriteString(helpStyle.Render("No rows returned."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(renderTable(resp.Data))
	b.WriteString("\n")
	if len(resp.Data) > maxTableRows {
		b.WriteString(helpStyle.Render(fmt.Sprintf("Showing %d of %d rows.", maxTableRows, len(resp.Data))))
		b.WriteString("\n")
	}
	if chart := ResultChart(resp.Data, width); chart != "" {
		b.WriteString("\n")
		b.WriteString(chart)
	}
	return b.String()
}

// renderMarkdown renders markdown content with glamour for display
// RenderAnswer formats a response the way the chat shows it, for use outside
// the interactive program.
func RenderAnswer(question string, resp *askai.Response, width int) string {
	return renderAnswer(question, resp, width)
}

func renderMarkdown(content string, width int) (string, error) {
	const glamourGutter = 2

	renderWidth := width - glamourGutter
	if renderWidth < 40 {
		renderWidth = 40
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}

func renderTable(rows []models.Row) string {
	n := len(rows)
	if n > maxTableRows {
		n = maxTableRows
	}
	cells := make([][]string, n)
	for i := 0; i < n; i++ {
		cells[i] = make([]string, len(rows[i].Values))
		for j, v := range rows[i].Values {
			if v == nil {
				cells[i][j] = "-"
				continue
			}
			cells[i][j] = truncate(fmt.Sprint(v), 40)
		}
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(rows[0].Columns...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}

// Run starts the full-screen chat and blocks until the user quits.
func Run(asker Asker, logger *zap.Logger, timeout time.Duration) error {
	p := tea.NewProgram(
		initialModel(asker, logger.Named("tui"), timeout),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
