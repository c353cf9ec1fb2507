package rules

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

// Function represents a callable registered against evaluators.
type Function func(args ...any) (any, error)

// FunctionRegistry stores custom functions keyed by name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("rules: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("rules: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("rules: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("rules: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("rules: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithFunctionRegistry configures an engine to use registry.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *engineConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the engine.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *engineConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// OrderFunctions returns a registry preloaded with helpers for order rules:
//
//	includes(list, id)   reports whether a checkbox list contains id
//	days_between(a, b)   whole days from date a to date b (YYYY-MM-DD)
func OrderFunctions() *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.Register("includes", includes)
	_ = registry.Register("days_between", daysBetween)
	return registry
}

func includes(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("rules: includes expects 2 arguments, got %d", len(args))
	}
	needle := fmt.Sprint(args[1])
	switch list := args[0].(type) {
	case nil:
		return false, nil
	case []string:
		return slices.Contains(list, needle), nil
	case []any:
		for _, item := range list {
			if fmt.Sprint(item) == needle {
				return true, nil
			}
		}
		return false, nil
	default:
		return nil, fmt.Errorf("rules: includes expects a list, got %T", args[0])
	}
}

func daysBetween(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("rules: days_between expects 2 arguments, got %d", len(args))
	}
	from, err := parseDay(args[0])
	if err != nil {
		return nil, err
	}
	to, err := parseDay(args[1])
	if err != nil {
		return nil, err
	}
	return int64(to.Sub(from).Hours() / 24), nil
}

func parseDay(value any) (time.Time, error) {
	switch typed := value.(type) {
	case time.Time:
		return time.Date(typed.Year(), typed.Month(), typed.Day(), 0, 0, 0, 0, time.UTC), nil
	case string:
		parsed, err := time.Parse("2006-01-02", typed)
		if err != nil {
			return time.Time{}, fmt.Errorf("rules: days_between: %w", err)
		}
		return parsed, nil
	default:
		return time.Time{}, fmt.Errorf("rules: days_between expects dates, got %T", value)
	}
}
