package cli

import (
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-order-options/pkg/state"
	"github.com/goliatone/go-order-options/rules"
)

func ruleLogger(log *logrus.Logger) rules.Logger {
	return rules.LoggerFunc(func(event rules.LogEvent) {
		entry := log.WithFields(logrus.Fields{
			"engine":   event.Engine,
			"expr":     event.Expr,
			"order":    event.OrderID,
			"duration": event.Duration,
		})
		if event.Err != nil {
			entry.WithError(event.Err).Warn("rule evaluation failed")
			return
		}
		entry.WithField("result", event.Result).Debug("rule evaluated")
	})
}

func changeLogger(log *logrus.Logger) state.Logger {
	return state.LoggerFunc(func(change state.ChangeLog) {
		entry := log.WithFields(logrus.Fields{
			"order":   change.Ref.OrderID,
			"option":  change.OptionID,
			"kind":    change.Kind.String(),
			"outcome": string(change.Outcome),
		})
		switch {
		case change.Outcome == state.OutcomeRejected:
			entry.WithError(change.Err).WithField("value", change.Event.Value).Warn("change rejected")
		case change.Err != nil:
			entry.WithError(change.Err).Error("change failed")
		default:
			entry.Debug("change dispatched")
		}
	})
}
