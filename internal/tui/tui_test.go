package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/domestika-downloader/internal/config"
	"github.com/handiism/domestika-downloader/internal/pipeline"
	events "github.com/handiism/domestika-downloader/internal/progress"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model
}

func TestNewModelUsesSettings(t *testing.T) {
	settings := config.DefaultSettings()
	settings.CatalogueURL = "https://www.domestika.org/en/you/courses_lists/1"
	settings.Concurrency = "sequential"

	m := NewModel(settings)
	if m.state != StateInput {
		t.Errorf("state = %v, want StateInput", m.state)
	}
	if got := m.textInput.Value(); got != settings.CatalogueURL {
		t.Errorf("input = %q, want %q", got, settings.CatalogueURL)
	}
	if !m.sequential {
		t.Error("sequential should follow settings")
	}
}

func TestOptionToggles(t *testing.T) {
	m := NewModel(config.DefaultSettings())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	if !m.dryRun || !m.sequential || !m.verbose {
		t.Fatalf("toggles not applied: dryRun=%v sequential=%v verbose=%v", m.dryRun, m.sequential, m.verbose)
	}

	m.textInput.SetValue("  https://www.domestika.org/en/courses/1-a  ")
	s := m.runSettings()
	if s.Concurrency != "sequential" {
		t.Errorf("Concurrency = %q, want sequential", s.Concurrency)
	}
	if !s.Debug {
		t.Error("Debug should follow the verbose toggle")
	}
	if s.CatalogueURL != "https://www.domestika.org/en/courses/1-a" {
		t.Errorf("CatalogueURL = %q", s.CatalogueURL)
	}
	if m.settings.Debug {
		t.Error("runSettings must not modify the loaded settings")
	}
}

func TestEnterStartsRun(t *testing.T) {
	m := NewModel(config.DefaultSettings())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateInput {
		t.Fatalf("empty input should not start a run, state = %v", m.state)
	}

	m.textInput.SetValue("https://www.domestika.org/en/courses/1-a")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.state != StateRunning {
		t.Fatalf("state = %v, want StateRunning", m.state)
	}
	if cmd == nil {
		t.Fatal("expected a start command")
	}
	if m.eventCh == nil {
		t.Fatal("event channel not created")
	}
}

func TestStartReportsBuildError(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.textInput.SetValue("https://www.domestika.org/en/courses/1-a")
	m.eventCh = make(chan events.Event, 1)
	m.newPipeline = func(s *config.Settings, onProgress events.Func, _ ...pipeline.Option) (*pipeline.Pipeline, error) {
		onProgress.Emit(events.LevelWarning, "no session cookie")
		return nil, errors.New("cookie file missing")
	}

	msg := m.start()()
	started, ok := msg.(StartedMsg)
	if !ok {
		t.Fatalf("start returned %T, want StartedMsg", msg)
	}
	if started.Err == nil {
		t.Fatal("expected build error")
	}

	ev := m.waitForEvent()()
	if pm, ok := ev.(ProgressMsg); !ok || pm.Event.Message != "no session cookie" {
		t.Errorf("first event = %#v, want warning", ev)
	}
	if closed := m.waitForEvent()(); closed != nil {
		t.Errorf("channel should be closed after a failed build, got %#v", closed)
	}

	m.state = StateRunning
	m = update(t, m, started)
	if m.state != StateError {
		t.Errorf("state = %v, want StateError", m.state)
	}
}

func TestProgressMsgFiltersVerbose(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.state = StateRunning
	m.eventCh = make(chan events.Event)

	m = update(t, m, ProgressMsg{Event: events.Event{Message: "hidden", Level: events.LevelVerbose}})
	if len(m.logs) != 0 {
		t.Fatalf("verbose event shown without verbose mode: %v", m.logs)
	}

	m.verbose = true
	m = update(t, m, ProgressMsg{Event: events.Event{Message: "shown", Level: events.LevelVerbose}})
	if len(m.logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(m.logs))
	}
}

func TestLogsAreCapped(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.state = StateRunning
	m.eventCh = make(chan events.Event)

	for i := 0; i < maxLogs+5; i++ {
		m = update(t, m, ProgressMsg{Event: events.Event{Message: fmt.Sprintf("event %d", i), Level: events.LevelInfo}})
	}
	if len(m.logs) != maxLogs {
		t.Fatalf("logs = %d, want %d", len(m.logs), maxLogs)
	}
	if want := fmt.Sprintf("event %d", maxLogs+4); m.logs[len(m.logs)-1].Message != want {
		t.Errorf("last log = %q, want %q", m.logs[len(m.logs)-1].Message, want)
	}
}

func TestDoneMsg(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		cancel  bool
		want    State
		wantErr string
	}{
		{name: "success", want: StateComplete},
		{name: "failure", err: errors.New("all 2 courses failed"), want: StateError, wantErr: "all 2 courses failed"},
		{name: "cancelled", cancel: true, want: StateError, wantErr: "cancelled by user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(config.DefaultSettings())
			m.state = StateRunning
			if tt.cancel {
				m.cancel()
			}

			m = update(t, m, DoneMsg{Err: tt.err})
			if m.state != tt.want {
				t.Errorf("state = %v, want %v", m.state, tt.want)
			}
			if tt.wantErr != "" && (m.err == nil || m.err.Error() != tt.wantErr) {
				t.Errorf("err = %v, want %q", m.err, tt.wantErr)
			}
		})
	}
}

func TestLateMessagesFromCancelledRun(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.textInput.SetValue("https://www.domestika.org/en/courses/1-a")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	oldRun := m.runID
	oldCtx := m.ctx

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != StateError {
		t.Fatalf("state after esc = %v, want StateError", m.state)
	}
	if oldCtx.Err() == nil {
		t.Fatal("esc should cancel the running context")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.state != StateInput {
		t.Fatalf("state after reset = %v, want StateInput", m.state)
	}

	// The cancelled run unwinds after the reset.
	m = update(t, m, StartedMsg{RunID: oldRun})
	if m.pipeline != nil || m.state != StateInput {
		t.Fatalf("late StartedMsg resumed the old run, state = %v", m.state)
	}
	m = update(t, m, DoneMsg{RunID: oldRun, Err: context.Canceled})
	if m.state != StateInput {
		t.Fatalf("late DoneMsg moved the input screen to %v", m.state)
	}
	if m.err != nil {
		t.Errorf("late DoneMsg set err = %v", m.err)
	}

	m.textInput.SetValue("https://www.domestika.org/en/courses/2-b")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.runID == oldRun {
		t.Fatal("a new run should get a new ID")
	}

	m = update(t, m, DoneMsg{RunID: oldRun, Err: context.Canceled})
	m = update(t, m, StartedMsg{RunID: oldRun, Err: errors.New("stale build")})
	m = update(t, m, ProgressMsg{RunID: oldRun, Event: events.Event{Message: "old", Level: events.LevelInfo}})
	if m.state != StateRunning {
		t.Errorf("new run state = %v, want StateRunning", m.state)
	}
	if len(m.logs) != 0 {
		t.Errorf("events from the old run were shown: %v", m.logs)
	}

	m = update(t, m, DoneMsg{RunID: m.runID})
	if m.state != StateComplete {
		t.Errorf("current run DoneMsg: state = %v, want StateComplete", m.state)
	}
}

func TestResetAfterRun(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.state = StateComplete
	m.logs = []LogEntry{{Message: "done", Level: events.LevelSuccess}}
	m.totalVideos = 3

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.state != StateInput {
		t.Fatalf("state = %v, want StateInput", m.state)
	}
	if len(m.logs) != 0 || m.totalVideos != 0 {
		t.Errorf("run state not cleared: logs=%v total=%d", m.logs, m.totalVideos)
	}
	if strings.Contains(m.textInput.Value(), "r") {
		t.Errorf("reset key leaked into input: %q", m.textInput.Value())
	}
	if m.ctx.Err() != nil {
		t.Error("reset should create a fresh context")
	}
}

func TestViewPerState(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	if v := m.View(); !strings.Contains(v, "Enter a Domestika") {
		t.Errorf("input view missing prompt:\n%s", v)
	}

	m.state = StateError
	m.err = errors.New("boom")
	if v := m.View(); !strings.Contains(v, "boom") {
		t.Errorf("error view missing error:\n%s", v)
	}

	m.state = StateComplete
	if v := m.View(); !strings.Contains(v, "Run Complete!") {
		t.Errorf("complete view missing summary:\n%s", v)
	}
}
