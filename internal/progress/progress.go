// Package progress defines the event stream components use to report
// what they are doing. Components never print; callers decide how events
// are rendered (CLI prefixes, TUI log pane).
package progress

import "fmt"

// Level indicates the severity/type of a progress message.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Event represents a progress update.
type Event struct {
	Message string
	Level   Level
}

// Func receives progress events. It may be called from multiple goroutines.
type Func func(Event)

// Emit calls fn with a formatted event. A nil fn is a no-op.
func (fn Func) Emit(level Level, format string, args ...any) {
	if fn == nil {
		return
	}
	fn(Event{Message: fmt.Sprintf(format, args...), Level: level})
}
