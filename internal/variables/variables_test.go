package variables

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/config"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/workflow"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func defWithVars(vars map[string]workflow.VariableSpec) *workflow.Definition {
	return &workflow.Definition{
		Name:         "prd",
		Agent:        "pm",
		Instructions: "Create PRD at {{prd_location}}",
		Variables:    vars,
	}
}

func TestResolve_PriorityOrder(t *testing.T) {
	def := defWithVars(map[string]workflow.VariableSpec{
		"location": {Default: "from-workflow"},
	})

	tests := []struct {
		name     string
		defaults config.Defaults
		params   CallParams
		want     string
	}{
		{
			name:     "global only",
			defaults: config.NewDefaults(map[string]string{"other": "x"}),
			want:     "from-workflow",
		},
		{
			name:     "workflow default beats global",
			defaults: config.NewDefaults(map[string]string{"location": "from-global"}),
			want:     "from-workflow",
		},
		{
			name:     "call parameter beats workflow default",
			defaults: config.NewDefaults(map[string]string{"location": "from-global"}),
			params:   CallParams{Overrides: map[string]string{"location": "from-params"}},
			want:     "from-params",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Resolve(def, tt.defaults, tt.params, testNow)
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if got := m["location"]; got != tt.want {
				t.Errorf("location = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_GlobalDefaultSurvivesWhenUncontested(t *testing.T) {
	def := defWithVars(nil)
	defaults := config.NewDefaults(map[string]string{"output_folder": "docs/output"})

	m, err := Resolve(def, defaults, CallParams{}, testNow)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got := m["output_folder"]; got != "docs/output" {
		t.Errorf("output_folder = %q, want %q", got, "docs/output")
	}
}

func TestResolve_CommonsAlwaysPresent(t *testing.T) {
	def := defWithVars(nil)

	m, err := Resolve(def, config.Defaults{}, CallParams{ProjectRoot: "/work/acme-shop"}, testNow)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	tests := []struct {
		name string
		want string
	}{
		{"date", "2026-03-14"},
		{"timestamp", "2026-03-14T09:30:00Z"},
		{"project_root", "/work/acme-shop"},
		{"project_name", "acme-shop"},
	}
	for _, tt := range tests {
		if got := m[tt.name]; got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestResolve_CommonsAreOverridable(t *testing.T) {
	def := defWithVars(nil)
	params := CallParams{
		ProjectRoot: "/work/acme-shop",
		ProjectName: "Acme Shop",
		Overrides:   map[string]string{"date": "1999-12-31"},
	}

	m, err := Resolve(def, config.Defaults{}, params, testNow)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got := m["date"]; got != "1999-12-31" {
		t.Errorf("date = %q, want override %q", got, "1999-12-31")
	}
	if got := m["project_name"]; got != "Acme Shop" {
		t.Errorf("project_name = %q, want explicit %q", got, "Acme Shop")
	}
}

func TestResolve_EpicAndStoryParams(t *testing.T) {
	def := defWithVars(nil)

	m, err := Resolve(def, config.Defaults{}, CallParams{Epic: "3", Story: "2"}, testNow)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got := m["epic"]; got != "3" {
		t.Errorf("epic = %q, want %q", got, "3")
	}
	if got := m["story"]; got != "2" {
		t.Errorf("story = %q, want %q", got, "2")
	}
}

func TestResolve_Deterministic(t *testing.T) {
	def := defWithVars(map[string]workflow.VariableSpec{
		"prd_location": {Default: "docs/PRD.md"},
	})
	defaults := config.NewDefaults(map[string]string{"team": "core"})
	params := CallParams{Epic: "1", ProjectRoot: "/work/p"}

	first, err := Resolve(def, defaults, params, testNow)
	if err != nil {
		t.Fatalf("first Resolve() error: %v", err)
	}
	second, err := Resolve(def, defaults, params, testNow)
	if err != nil {
		t.Fatalf("second Resolve() error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Resolve() not deterministic (-first +second):\n%s", diff)
	}
}

func TestResolve_WorkflowDefaultScenario(t *testing.T) {
	def := defWithVars(map[string]workflow.VariableSpec{
		"prd_location": {Default: "docs/PRD.md", Required: false},
	})

	m, err := Resolve(def, config.Defaults{}, CallParams{}, testNow)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got := m["prd_location"]; got != "docs/PRD.md" {
		t.Errorf("prd_location = %q, want %q", got, "docs/PRD.md")
	}
}

func TestResolve_MissingRequiredVariable(t *testing.T) {
	def := defWithVars(map[string]workflow.VariableSpec{
		"output_folder": {Required: true},
	})

	m, err := Resolve(def, config.Defaults{}, CallParams{}, testNow)
	if err == nil {
		t.Fatal("Resolve() error = nil, want MissingRequiredVariableError")
	}
	if m != nil {
		t.Errorf("Resolve() mapping = %v, want nil on failure", m)
	}

	var missing *MissingRequiredVariableError
	if !errors.As(err, &missing) {
		t.Fatalf("error type = %T, want *MissingRequiredVariableError", err)
	}
	if missing.Name != "output_folder" {
		t.Errorf("missing.Name = %q, want %q", missing.Name, "output_folder")
	}
	if missing.Workflow != "prd" {
		t.Errorf("missing.Workflow = %q, want %q", missing.Workflow, "prd")
	}
}

func TestResolve_RequiredSatisfiedByAnySource(t *testing.T) {
	def := defWithVars(map[string]workflow.VariableSpec{
		"output_folder": {Required: true},
	})

	tests := []struct {
		name     string
		defaults config.Defaults
		params   CallParams
	}{
		{
			name:     "global default",
			defaults: config.NewDefaults(map[string]string{"output_folder": "docs"}),
		},
		{
			name:   "call parameter",
			params: CallParams{Overrides: map[string]string{"output_folder": "docs"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Resolve(def, tt.defaults, tt.params, testNow); err != nil {
				t.Errorf("Resolve() error: %v", err)
			}
		})
	}
}

func TestMapping_NamesSorted(t *testing.T) {
	m := Mapping{"story": "2", "date": "2026-03-14", "epic": "3"}

	want := []string{"date", "epic", "story"}
	if diff := cmp.Diff(want, m.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}
