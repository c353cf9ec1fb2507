package state

import (
	"time"

	orderopts "github.com/goliatone/go-order-options"
)

// ChangeOutcome classifies the result of one dispatched change.
type ChangeOutcome string

const (
	OutcomeApplied  ChangeOutcome = "applied"
	OutcomeNoop     ChangeOutcome = "noop"
	OutcomeRejected ChangeOutcome = "rejected"
)

// ChangeLog describes one dispatched change for logging.
type ChangeLog struct {
	Ref      Ref
	OptionID string
	Kind     orderopts.Kind
	Event    orderopts.Event
	Outcome  ChangeOutcome
	Duration time.Duration
	Err      error
}

// Logger records form activity.
type Logger interface {
	LogChange(ChangeLog)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(ChangeLog)

// LogChange implements Logger.
func (f LoggerFunc) LogChange(entry ChangeLog) {
	if f != nil {
		f(entry)
	}
}

type noopLogger struct{}

func (noopLogger) LogChange(ChangeLog) {}
