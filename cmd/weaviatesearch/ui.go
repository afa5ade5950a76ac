package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/a-h/weaviatesearch/client"
	"github.com/a-h/weaviatesearch/gateway"
	"github.com/a-h/weaviatesearch/models"
	"github.com/a-h/weaviatesearch/render"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

type UICommand struct {
	HostURL   string `help:"The URL of the search host." env:"SEARCH_HOST_URL" default:"http://localhost:9020"`
	HostToken string `help:"The token for the search host." env:"SEARCH_HOST_TOKEN" default:""`
	LogFile   string `help:"The file to write logs to, logs are discarded if empty." env:"LOG_FILE" default:""`
	LogLevel  string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c UICommand) Run(ctx context.Context) (err error) {
	log, closeLog, err := getFileLogger(c.LogFile, c.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()
	return runUI(ctx, log, client.New(c.HostURL, c.HostToken))
}

type searcher interface {
	SearchPost(ctx context.Context, req models.SearchPostRequest) (models.SearchPostResponse, error)
}

func runUI(ctx context.Context, log *slog.Logger, s searcher) (err error) {
	p := tea.NewProgram(newModel(ctx, log, s), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// Dracula color scheme.
var (
	Background  = lipgloss.Color("#282a36")
	CurrentLine = lipgloss.Color("#44475a")
	Foreground  = lipgloss.Color("#f8f8f2")
	Comment     = lipgloss.Color("#6272a4")
	Cyan        = lipgloss.Color("#8be9fd")
	Green       = lipgloss.Color("#50fa7b")
	Pink        = lipgloss.Color("#ff79c6")
	Purple      = lipgloss.Color("#bd93f9")
	Red         = lipgloss.Color("#ff5555")
	Yellow      = lipgloss.Color("#f1fa8c")
)

var (
	headerStyle  = lipgloss.NewStyle().Background(CurrentLine).Foreground(Purple).Bold(true).Padding(0, 1)
	helpStyle    = lipgloss.NewStyle().Foreground(Comment)
	statusStyle  = lipgloss.NewStyle().Foreground(Yellow)
	errorStyle   = lipgloss.NewStyle().Foreground(Red).Bold(true)
	messageStyle = lipgloss.NewStyle().Foreground(Foreground).Italic(true)
	titleStyle   = lipgloss.NewStyle().Foreground(Green).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(Pink).Bold(true)
	valueStyle   = lipgloss.NewStyle().Foreground(Cyan)
	itemStyle    = lipgloss.NewStyle().Padding(0, 1).MarginTop(1).Background(Background)
)

const header = "Weaviate Search"

// Lines used by everything except the viewport.
const chromeHeight = 5

type searchResultMsg struct {
	seq     uint64
	results []models.SearchResult
	err     error
}

type model struct {
	ctx      context.Context
	log      *slog.Logger
	searcher searcher

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int

	tracker render.Tracker
}

func newModel(ctx context.Context, log *slog.Logger, s searcher) model {
	ti := textinput.New()
	ti.Placeholder = "Search for content..."
	ti.Prompt = "┃ "
	ti.CharLimit = 500
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	return model{
		ctx:      ctx,
		log:      log,
		searcher: s,
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		width:    80,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) search(seq uint64, query string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.searcher.SearchPost(m.ctx, models.SearchPostRequest{Query: query})
		return searchResultMsg{seq: seq, results: resp.Results, err: err}
	}
}

func (m model) submit() (tea.Model, tea.Cmd) {
	query := m.input.Value()
	if strings.TrimSpace(query) == "" {
		m.tracker.Reject(&gateway.ValidationError{Reason: "query is empty"})
		m.refresh()
		return m, nil
	}
	seq := m.tracker.Submit()
	m.log.Debug("search submitted", slog.Uint64("seq", seq), slog.Int("queryLength", len(query)))
	m.refresh()
	return m, tea.Batch(m.search(seq, query), m.spinner.Tick)
}

func (m *model) refresh() {
	m.viewport.SetContent(formatResults(render.Render(m.tracker.Status()), m.width))
	m.viewport.GotoTop()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultMsg:
		if !m.tracker.Resolve(msg.seq, msg.results, msg.err) {
			m.log.Debug("ignoring stale search response", slog.Uint64("seq", msg.seq))
			return m, nil
		}
		if msg.err != nil {
			m.log.Error("search failed", slog.Uint64("seq", msg.seq), slog.Any("error", msg.err))
		}
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		if m.tracker.Status().Kind != render.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	default:
		// Cursor blinks.
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m model) statusLine() string {
	dm := render.Render(m.tracker.Status())
	switch {
	case dm.StatusLine != "":
		return m.spinner.View() + " " + statusStyle.Render(dm.StatusLine)
	case dm.Error != "":
		return errorStyle.Render(dm.Error)
	}
	return helpStyle.Render("enter: search • ↑/↓: scroll • esc: quit")
}

func (m model) View() string {
	return fmt.Sprintf("%s\n%s\n%s\n\n%s",
		headerStyle.Render(header),
		m.input.View(),
		m.statusLine(),
		m.viewport.View(),
	)
}

// formatResults renders the list part of the display model. Status and error
// lines are shown above the viewport by statusLine.
func formatResults(dm render.DisplayModel, width int) string {
	if dm.Message != "" {
		return messageStyle.Render(dm.Message)
	}
	if len(dm.Items) == 0 {
		return ""
	}
	wrapAt := max(width-4, 20)
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Search Results:"))
	sb.WriteString("\n")
	for _, item := range dm.Items {
		var lines []string
		for _, f := range item.Fields() {
			line := labelStyle.Render(f.Label+":") + " " + valueStyle.Render(f.Value)
			lines = append(lines, wordwrap.String(line, wrapAt))
		}
		sb.WriteString(itemStyle.Render(strings.Join(lines, "\n")))
		sb.WriteString("\n")
	}
	return sb.String()
}
