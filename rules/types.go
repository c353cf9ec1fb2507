// Package rules evaluates catalog rule expressions (such as an option's
// "when" condition) against the selection of an order. Three engines are
// available: expr (default), CEL and JavaScript (goja, behind the js_eval
// build tag).
package rules

import (
	"sync"
	"time"
)

// Context carries the inputs an expression sees. Selection is the raw
// selectedOptions map of the order being built.
type Context struct {
	Selection map[string]any
	Now       *time.Time
	Args      map[string]any
	Metadata  map[string]any
	OrderID   string
}

func (ctx Context) withDefaults() Context {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx Context) withDefaultNow() Context {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx Context) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx Context) withDefaultMaps() Context {
	if ctx.Selection == nil {
		ctx.Selection = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx Context) orderLabel() string {
	if ctx.OrderID != "" {
		return ctx.OrderID
	}
	return "unknown"
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx Context, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx Context) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MapCache is a ProgramCache backed by a plain map. It is not safe for
// concurrent writers.
type MapCache map[string]any

// Get implements ProgramCache.
func (c MapCache) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

// Set implements ProgramCache.
func (c MapCache) Set(key string, value any) {
	c[key] = value
}

// SyncCache is a ProgramCache safe for concurrent use.
type SyncCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewSyncCache returns an empty SyncCache.
func NewSyncCache() *SyncCache {
	return &SyncCache{programs: map[string]any{}}
}

// Get implements ProgramCache.
func (c *SyncCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

// Set implements ProgramCache.
func (c *SyncCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.programs[key] = value
}

// Len reports how many programs are cached.
func (c *SyncCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}
