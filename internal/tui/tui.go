// Package tui provides a Bubble Tea terminal user interface for domestika-downloader.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/domestika-downloader/internal/config"
	"github.com/handiism/domestika-downloader/internal/pipeline"
	events "github.com/handiism/domestika-downloader/internal/progress"
	"github.com/handiism/domestika-downloader/internal/traverse"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// maxLogs is how many log lines the UI keeps.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   events.Level
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	err       error

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	// runID identifies the current run; messages from older runs are dropped.
	runID    int
	pipeline *pipeline.Pipeline
	eventCh  chan events.Event
	result   *traverse.Result

	// Download progress
	doneVideos   int32
	failedVideos int32
	totalVideos  int32

	// Options
	dryRun     bool
	sequential bool
	verbose    bool

	// newPipeline builds the pipeline for a run; replaced in tests.
	newPipeline func(*config.Settings, events.Func, ...pipeline.Option) (*pipeline.Pipeline, error)

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = "https://www.domestika.org/en/you/courses_lists/1-list"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	if settings.CatalogueURL != "" {
		ti.SetValue(settings.CatalogueURL)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:       StateInput,
		textInput:   ti,
		spinner:     sp,
		progress:    prog,
		settings:    settings,
		logs:        make([]LogEntry, 0),
		ctx:         ctx,
		cancel:      cancel,
		sequential:  settings.Concurrency == traverse.Sequential.String(),
		verbose:     settings.Debug,
		newPipeline: pipeline.New,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries an event emitted by the pipeline.
	ProgressMsg struct {
		RunID int
		Event events.Event
	}

	// StartedMsg is sent once the pipeline has been built.
	StartedMsg struct {
		RunID    int
		Pipeline *pipeline.Pipeline
		Err      error
	}

	// DoneMsg is sent when the run finishes.
	DoneMsg struct {
		RunID  int
		Result *traverse.Result
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateRunning {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && m.textInput.Value() != "" {
				m.state = StateRunning
				m.runID++
				m.eventCh = make(chan events.Event, 64)
				return m, tea.Batch(m.start(), m.waitForEvent(), m.spinner.Tick)
			}

		case "ctrl+r":
			if m.state == StateInput {
				m.dryRun = !m.dryRun
			}

		case "ctrl+t":
			if m.state == StateInput {
				m.sequential = !m.sequential
			}

		case "ctrl+g":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new run; the previous one may still be unwinding
				m.cancel()
				m.runID++
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.result = nil
				m.pipeline = nil
				m.doneVideos, m.failedVideos, m.totalVideos = 0, 0, 0
				m.ctx, m.cancel = context.WithCancel(context.Background())
				return m, m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.RunID != m.runID {
			break
		}
		cmds = append(cmds, m.waitForEvent())
		if msg.Event.Level == events.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case StartedMsg:
		if msg.RunID != m.runID {
			break
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.pipeline = msg.Pipeline
		cmds = append(cmds, m.run(), m.tickProgress())

	case DoneMsg:
		if msg.RunID != m.runID || m.state != StateRunning {
			break
		}
		m.result = msg.Result
		m.updateCounts()
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.pipeline != nil && m.state == StateRunning {
			m.updateCounts()
			cmds = append(cmds, m.progress.SetPercent(m.percent()), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateCounts() {
	if m.pipeline == nil {
		return
	}
	m.doneVideos, m.failedVideos, m.totalVideos = m.pipeline.Progress()
}

func (m Model) percent() float64 {
	if m.totalVideos == 0 {
		return 0
	}
	return float64(m.doneVideos+m.failedVideos) / float64(m.totalVideos)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent forwards the next pipeline event to Update.
func (m Model) waitForEvent() tea.Cmd {
	ch := m.eventCh
	id := m.runID
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ProgressMsg{RunID: id, Event: ev}
	}
}

// runSettings returns a copy of the settings with the UI options applied.
func (m Model) runSettings() *config.Settings {
	s := *m.settings
	s.CatalogueURL = strings.TrimSpace(m.textInput.Value())
	s.Debug = m.verbose
	if m.sequential {
		s.Concurrency = traverse.Sequential.String()
	} else {
		s.Concurrency = traverse.Parallel.String()
	}
	return &s
}

// start builds the pipeline.
func (m Model) start() tea.Cmd {
	settings := m.runSettings()
	ch := m.eventCh
	ctx := m.ctx
	dryRun := m.dryRun
	build := m.newPipeline
	id := m.runID

	return func() tea.Msg {
		onProgress := func(ev events.Event) {
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		}
		p, err := build(settings, onProgress, pipeline.WithDryRun(dryRun))
		if err != nil {
			close(ch)
		}
		return StartedMsg{RunID: id, Pipeline: p, Err: err}
	}
}

// run executes the pipeline in the background.
func (m Model) run() tea.Cmd {
	p := m.pipeline
	ctx := m.ctx
	ch := m.eventCh
	id := m.runID
	return func() tea.Msg {
		result, err := p.Run(ctx)
		close(ch)
		return DoneMsg{RunID: id, Result: result, Err: err}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("Domestika Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download courses from Domestika"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter a Domestika courses list or course URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Dry run, list videos only (ctrl+r)\n", check(m.dryRun)))
	b.WriteString(fmt.Sprintf("  %s One course at a time (ctrl+t)\n", check(m.sequential)))
	b.WriteString(fmt.Sprintf("  %s Verbose output and debug log (ctrl+g)\n", check(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output: %s  Subtitles: en,%s  Tool: %s",
		m.settings.OutputRoot, m.settings.SubtitleLang, m.settings.OSVariant)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	if m.pipeline == nil {
		b.WriteString(subtitleStyle.Render("Loading session..."))
	} else {
		b.WriteString(subtitleStyle.Render("Scraping and downloading..."))
	}
	b.WriteString("\n\n")

	if m.totalVideos > 0 {
		b.WriteString(m.progress.ViewAs(m.percent()))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf("Videos: %d/%d | Failed: %d",
			m.doneVideos, m.totalVideos, m.failedVideos)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	courses, failedCourses := 0, 0
	if m.result != nil {
		courses = len(m.result.Bundles())
		failedCourses = len(m.result.Failed())
	}

	box := boxStyle.Render(fmt.Sprintf(
		"Run Complete!\n\n"+
			"Courses: %d (%d failed)\n"+
			"Videos: %d/%d\n"+
			"Failed videos: %d",
		courses, failedCourses,
		m.doneVideos, m.totalVideos,
		m.failedVideos,
	))
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case events.LevelError:
			style = errorStyle
			prefix = "✗"
		case events.LevelWarning:
			style = warningStyle
			prefix = "!"
		case events.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case events.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+r: dry run • ctrl+t: sequential • ctrl+g: debug • esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
