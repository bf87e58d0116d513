package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"analogy/internal/analogy"
	"analogy/internal/domain"
)

// ExplorerPort is the TUI-facing subset of the analogy service.
type ExplorerPort interface {
	Test(a, b, c, expected string) (domain.Result, error)
	Neighbors(token string) ([]domain.Neighbor, error)
	Arithmetic(expr analogy.Expression) ([]domain.Neighbor, error)
}

// Model is the Bubble Tea model for the interactive explorer.
type Model struct {
	service   ExplorerPort
	input     textinput.Model
	viewport  viewport.Model
	neighbors []domain.Neighbor
	modelInfo string
	headline  string
	verdict   string
	status    string
	ready     bool
}

// New creates a new explorer instance. modelInfo describes the loaded
// vocabulary and is shown under the title.
func New(service ExplorerPort, modelInfo string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "word · a:b::c · king - man + woman"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:   service,
		input:     ti,
		viewport:  vp,
		modelInfo: modelInfo,
		status:    "Loaded. Enter a word, a proportion, or word arithmetic.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // title + model info
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderNeighbors())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m = m.runQuery(q)
				m.viewport.SetContent(m.renderNeighbors())
				m.viewport.GotoTop()
				return m, nil
			}
		case "down":
			if len(m.neighbors) > 0 {
				m.viewport.LineDown(1)
				return m, nil
			}
		case "up":
			if len(m.neighbors) > 0 {
				m.viewport.LineUp(1)
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the current neighbor list.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Analogy Explorer")
	info := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.modelInfo)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + info + "\n" + results + "\n" + input + "\n" + status
}

// runQuery dispatches one line of input. "a:b::c" is a proportion,
// anything with +/- is word arithmetic, a bare token lists neighbors.
func (m Model) runQuery(q string) Model {
	fail := func(err error) Model {
		m.status = "Error: " + err.Error()
		m.neighbors = nil
		m.headline = ""
		m.verdict = ""
		return m
	}

	if strings.Contains(q, "::") {
		query, err := analogy.ParseAnalogy(q)
		if err != nil {
			return fail(err)
		}
		res, err := m.service.Test(query.A, query.B, query.C, query.Expected)
		if err != nil {
			return fail(err)
		}
		m.neighbors = res.Neighbors
		m.headline = fmt.Sprintf("%s : %s :: %s : ?", query.A, query.B, query.C)
		m.verdict = ""
		if query.Expected != "" {
			if res.Matched {
				m.verdict = fmt.Sprintf("expected %q ranked #%d", query.Expected, res.Rank)
			} else {
				m.verdict = fmt.Sprintf("expected %q not in the top %d", query.Expected, len(res.Neighbors))
			}
		}
		m.status = fmt.Sprintf("Results for %q", q)
		return m
	}

	expr, err := analogy.ParseExpression(q)
	if err != nil {
		return fail(err)
	}
	if len(expr.Positive) == 1 && len(expr.Negative) == 0 {
		neighbors, err := m.service.Neighbors(expr.Positive[0])
		if err != nil {
			return fail(err)
		}
		m.neighbors = neighbors
		m.headline = fmt.Sprintf("nearest to %q", expr.Positive[0])
	} else {
		neighbors, err := m.service.Arithmetic(expr)
		if err != nil {
			return fail(err)
		}
		m.neighbors = neighbors
		m.headline = expr.String() + " = ?"
	}
	m.verdict = ""
	m.status = fmt.Sprintf("Results for %q", q)
	return m
}

func (m Model) renderNeighbors() string {
	if len(m.neighbors) == 0 {
		return "No results yet."
	}
	var sb strings.Builder
	if m.headline != "" {
		sb.WriteString(m.headline + "\n\n")
	}
	for i, n := range m.neighbors {
		line := fmt.Sprintf("%2d. %-24s %.4f", i+1, n.Token, n.Score)
		if i == 0 {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	if m.verdict != "" {
		sb.WriteString("\n" + m.verdict)
	}
	return sb.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
