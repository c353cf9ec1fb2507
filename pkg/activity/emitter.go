package activity

import (
	"context"
	"strings"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "orders"

// Config holds the emission defaults of one deployment: the channel, and the
// agency tenant and order definition stamped on events that lack them.
type Config struct {
	Enabled        bool
	Channel        string
	TenantID       string
	DefinitionCode string
}

// Emitter fans out events to hooks while applying Config defaults.
type Emitter struct {
	hooks  Hooks
	config Config
}

// NewEmitter constructs an emitter. It stays disabled when cfg.Enabled is
// false or no non-nil hook is given.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	cfg.Channel = strings.TrimSpace(cfg.Channel)
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	cfg.TenantID = strings.TrimSpace(cfg.TenantID)
	cfg.DefinitionCode = strings.TrimSpace(cfg.DefinitionCode)

	live := make(Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			live = append(live, hook)
		}
	}
	cfg.Enabled = cfg.Enabled && len(live) > 0
	return &Emitter{hooks: live, config: cfg}
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.config.Enabled
}

// Emit applies the configured defaults and forwards event to all hooks.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.config.Channel
	}
	if strings.TrimSpace(event.TenantID) == "" {
		event.TenantID = e.config.TenantID
	}
	if strings.TrimSpace(event.DefinitionCode) == "" {
		event.DefinitionCode = e.config.DefinitionCode
	}
	return e.hooks.Notify(ctx, event)
}
