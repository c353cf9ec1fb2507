package rules

import (
	"fmt"
	"time"
)

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       Logger
}

// WithEvaluator selects the evaluator an engine delegates to.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *engineConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers the program cache of the default evaluator.
// Engines shared between goroutines need a concurrency-safe cache.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *engineConfig) {
		cfg.programCache = cache
	}
}

// Engine wraps an Evaluator with logging and error annotation. When no
// evaluator is configured NewEngine builds an expr evaluator carrying the
// configured cache (a SyncCache by default) and functions (OrderFunctions by
// default). An Engine is immutable after construction and safe to share
// between goroutines as long as its cache is. Engine itself satisfies
// Evaluator.
type Engine struct {
	cfg engineConfig
}

// NewEngine constructs an Engine.
func NewEngine(opts ...Option) *Engine {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.evaluator == nil {
		cfg.evaluator = defaultEvaluator(cfg)
	}
	return &Engine{cfg: cfg}
}

// Evaluate runs expr against ctx and logs the attempt.
func (e *Engine) Evaluate(ctx Context, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	evaluator, err := e.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	ctx = ctx.withDefaults()
	engine := engineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(engine, expr, ctx.orderLabel(), evalErr)
	e.logger().LogEvaluation(LogEvent{
		Engine:   engine,
		Expr:     expr,
		OrderID:  ctx.orderLabel(),
		Duration: duration,
		Result:   value,
		Err:      evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

// Compile delegates to the resolved evaluator.
func (e *Engine) Compile(expr string, opts ...CompileOption) (CompiledRule, error) {
	evaluator, err := e.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	return evaluator.Compile(expr, opts...)
}

// Condition evaluates expr with ev and requires a boolean result. An empty
// expression is always true.
func Condition(ev Evaluator, ctx Context, expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	if ev == nil {
		return false, ErrNoEvaluator
	}
	value, err := ev.Evaluate(ctx, expr)
	if err != nil {
		return false, err
	}
	result, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q returned %T", ErrNotBoolean, expr, value)
	}
	return result, nil
}

func (e *Engine) resolveEvaluator() (Evaluator, error) {
	if e == nil || e.cfg.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	return e.cfg.evaluator, nil
}

func defaultEvaluator(cfg engineConfig) Evaluator {
	cache := cfg.programCache
	if cache == nil {
		cache = NewSyncCache()
	}
	functions := cfg.functions
	if functions == nil {
		functions = OrderFunctions()
	}
	return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(functions))
}

func (e *Engine) logger() Logger {
	if e.cfg.logger != nil {
		return e.cfg.logger
	}
	return noopLogger{}
}

// ByName builds the evaluator registered under name: "expr" (or empty),
// "cel" or "js". The js engine is only available with the js_eval build tag.
func ByName(name string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	if registry == nil {
		registry = OrderFunctions()
	}
	switch name {
	case "", "expr":
		return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry)), nil
	case "cel":
		return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry)), nil
	case "js":
		evaluator := NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry))
		if evaluator == nil {
			return nil, fmt.Errorf("%w: js engine requires the js_eval build tag", ErrNoEvaluator)
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("rules: unknown engine %q", name)
	}
}

func engineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if jsEvaluatorAvailable() && fmt.Sprintf("%T", e) == "*rules.jsEvaluator" {
			return "js"
		}
		return "custom"
	}
}
