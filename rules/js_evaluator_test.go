//go:build js_eval

package rules

import "testing"

func init() {
	evaluatorFactories = append(evaluatorFactories, evaluatorFactory{
		name: "js",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []JSEvaluatorOption{}
			if cache != nil {
				opts = append(opts, JSWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, JSWithFunctionRegistry(registry))
			}
			return NewJSEvaluator(opts...)
		},
	})
}

func TestJSExposesOrderHelpersDirectly(t *testing.T) {
	evaluator, err := ByName("js", nil, nil)
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	ok, err := Condition(evaluator, Context{Selection: map[string]any{"extras": []any{"guide"}}}, `includes(extras, "guide")`)
	if err != nil || !ok {
		t.Fatalf("expected includes to hold, got %t %v", ok, err)
	}
}
