package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, _, err := run(t, "validate", "--catalog", "testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "catalog ok: 4 options") {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.Contains(out, "transport") || !strings.Contains(out, "(required)") {
		t.Fatalf("expected option listing, got %q", out)
	}
}

func TestValidateRequiresCatalog(t *testing.T) {
	if _, _, err := run(t, "validate"); err == nil || !strings.Contains(err.Error(), "--catalog") {
		t.Fatalf("expected missing catalog error, got %v", err)
	}
}

func TestSchemaCommand(t *testing.T) {
	out, _, err := run(t, "schema", "--catalog", "testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("expected json output: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Fatalf("expected openapi document, got %v", doc["openapi"])
	}

	out, _, err = run(t, "schema", "--catalog", "testdata/catalog.yaml", "--json-schema")
	if err != nil {
		t.Fatalf("schema --json-schema: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("expected json output: %v", err)
	}
	if doc["type"] != "object" {
		t.Fatalf("expected bare selection schema, got %v", doc)
	}
}

func TestReplayCommand(t *testing.T) {
	out, stderr, err := run(t, "replay",
		"--catalog", "testdata/catalog.yaml",
		"--events", "testdata/events.yaml",
		"--base", "$1,000",
	)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	var result struct {
		Selection map[string]any    `json:"selection"`
		Sources   map[string]string `json:"sources"`
		Rejected  int               `json:"rejected"`
		Total     string            `json:"total"`
		Price     struct {
			Total float64 `json:"total"`
		} `json:"price"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if result.Selection["transport"] != "plane" || result.Selection["travellers"] != 2.0 {
		t.Fatalf("unexpected selection %v", result.Selection)
	}
	extras, _ := result.Selection["extras"].([]any)
	if len(extras) != 1 || extras[0] != "guide" {
		t.Fatalf("expected only guide checked, got %v", result.Selection["extras"])
	}
	if result.Sources["travellers"] != "selection" || result.Sources["transport"] != "selection" {
		t.Fatalf("expected chosen values to win over defaults, got %v", result.Sources)
	}
	if result.Rejected != 1 {
		t.Fatalf("expected one rejected change, got %d", result.Rejected)
	}
	// 1000 + plane 400 + guide 100 + 2 travellers * 20
	if result.Price.Total != 1540 || result.Total != "$1,540.00" {
		t.Fatalf("unexpected total %v (%s)", result.Price.Total, result.Total)
	}
	if !strings.Contains(stderr, "change rejected") {
		t.Fatalf("expected rejected change to be logged, got %q", stderr)
	}
}
