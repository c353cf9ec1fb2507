package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	orderopts "github.com/goliatone/go-order-options"
	"github.com/goliatone/go-order-options/layering"
	"github.com/goliatone/go-order-options/pkg/activity"
	"github.com/goliatone/go-order-options/pkg/state"
	"github.com/goliatone/go-order-options/pricing"
	"github.com/goliatone/go-order-options/rules"
)

// replayStep is one recorded change: a select with Value, or a checkbox
// toggle when Checked is set.
type replayStep struct {
	Option  string `yaml:"option" json:"option"`
	Value   any    `yaml:"value" json:"value"`
	Checked *bool  `yaml:"checked,omitempty" json:"checked,omitempty"`
}

func (s replayStep) event() orderopts.Event {
	if s.Checked != nil {
		return orderopts.Event{Value: s.Value, Checked: *s.Checked}
	}
	return orderopts.Select(s.Value)
}

type replayResult struct {
	Selection orderopts.Selection `json:"selection"`
	Sources   map[string]string   `json:"sources"`
	Rejected  int                 `json:"rejected"`
	Price     pricing.Breakdown   `json:"price"`
	Total     string              `json:"total"`
}

func (a *app) replayCommand() *cobra.Command {
	var eventsPath string
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply recorded option changes and print the selection and price",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}
			steps, err := loadSteps(eventsPath)
			if err != nil {
				return err
			}
			result, err := a.replay(cmd.Context(), cat, steps)
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		},
	}
	cmd.Flags().StringVar(&eventsPath, "events", "", "JSON or YAML list of {option, value, checked} changes")
	cmd.Flags().String("base", "", "base trip price, for example $1,200")
	_ = a.config.BindPFlag("base_price", cmd.Flags().Lookup("base"))
	cmd.Flags().String("evaluator", "", "rule engine: expr, cel or js")
	_ = a.config.BindPFlag("evaluator", cmd.Flags().Lookup("evaluator"))
	return cmd
}

func (a *app) replay(ctx context.Context, cat *orderopts.Catalog, steps []replayStep) (replayResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	evaluator, err := rules.ByName(a.config.GetString("evaluator"), rules.NewSyncCache(), nil)
	if err != nil {
		return replayResult{}, err
	}
	engine := rules.NewEngine(rules.WithEvaluator(evaluator), rules.WithLogger(ruleLogger(a.log)))

	rejected := &activity.CaptureHook{}
	form := &state.Form{
		Store:   state.NewMemoryStore[orderopts.Selection](),
		Catalog: cat,
		Rules:   engine,
		Emitter: activity.NewEmitter(activity.Hooks{activity.OnlyVerbs(rejected, activity.VerbOptionRejected)}, activity.Config{Enabled: true}),
		Logger:  changeLogger(a.log),
	}
	ref := state.Ref{TripID: "replay", OrderID: "replay"}

	sel, meta, err := form.Mount(ctx, ref)
	if err != nil {
		return replayResult{}, err
	}
	for i, step := range steps {
		sel, meta, err = form.Dispatch(ctx, ref, meta, step.Option, step.event())
		if err != nil {
			return replayResult{}, fmt.Errorf("orderctl: step %d (%s): %w", i, step.Option, err)
		}
	}

	calculator := pricing.Calculator{Catalog: cat, Evaluator: engine, Defaults: true, Context: rules.Context{OrderID: ref.OrderID}}
	breakdown, err := calculator.Total(a.config.GetString("base_price"), sel)
	if err != nil {
		return replayResult{}, err
	}
	stack := layering.SelectionOverDefaults(sel.Map(), cat.Defaults(), meta.SnapshotID)
	return replayResult{
		Selection: sel,
		Sources:   stack.Sources(),
		Rejected:  rejected.Len(),
		Price:     breakdown,
		Total:     pricing.FormatPrice(breakdown.Total),
	}, nil
}

func loadSteps(path string) ([]replayStep, error) {
	if path == "" {
		return nil, fmt.Errorf("orderctl: --events is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("orderctl: read events: %w", err)
	}
	// YAML is a superset of JSON, so one decoder serves both.
	var steps []replayStep
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("orderctl: parse events: %w", err)
	}
	return steps, nil
}
