package template

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRender_NoPlaceholders(t *testing.T) {
	text := "# Heading\n\nPlain instructions.\n- item one\n- item two\n"

	got, unresolved := Render(text, map[string]string{"unused": "x"})
	if got != text {
		t.Errorf("Render() = %q, want input unchanged %q", got, text)
	}
	if len(unresolved) != 0 {
		t.Errorf("unresolved = %v, want none", unresolved)
	}
}

func TestRender_SubstitutesMappedPlaceholder(t *testing.T) {
	vars := map[string]string{"prd_location": "docs/PRD.md"}

	got, unresolved := Render("Create PRD at {{prd_location}}", vars)
	if want := "Create PRD at docs/PRD.md"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
	if len(unresolved) != 0 {
		t.Errorf("unresolved = %v, want none", unresolved)
	}
}

func TestRender_WhitespaceInsideBraces(t *testing.T) {
	got, _ := Render("epic {{ epic }} story {{story }}", map[string]string{
		"epic":  "3",
		"story": "2",
	})
	if want := "epic 3 story 2"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_NestedValueResolves(t *testing.T) {
	vars := map[string]string{
		"greeting": "Hello {{name}}",
		"name":     "World",
	}

	got, unresolved := Render("{{greeting}}!", vars)
	if want := "Hello World!"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
	if len(unresolved) != 0 {
		t.Errorf("unresolved = %v, want none", unresolved)
	}
}

func TestRender_DepthCapReportsUnresolved(t *testing.T) {
	// c only becomes reachable on a third pass, past the cap.
	vars := map[string]string{
		"a": "{{b}}",
		"b": "{{c}}",
		"c": "too deep",
	}

	got, unresolved := Render("{{a}}", vars)
	if want := "{{c}}"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"c"}, unresolved); diff != "" {
		t.Errorf("unresolved mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_UnmappedLeftVerbatim(t *testing.T) {
	got, unresolved := Render("path: {{missing}} and again {{missing}}", map[string]string{})
	if want := "path: {{missing}} and again {{missing}}"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"missing"}, unresolved); diff != "" {
		t.Errorf("unresolved mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_UnresolvedFirstSeenOrder(t *testing.T) {
	_, unresolved := Render("{{zeta}} then {{alpha}}", map[string]string{})

	want := []string{"zeta", "alpha"}
	if diff := cmp.Diff(want, unresolved); diff != "" {
		t.Errorf("unresolved mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_PreservesSurroundingStructure(t *testing.T) {
	text := "# {{title}}\n\n## Tasks\n1. Write to {{output_folder}}/report.md\n2. Keep `{{code}}` fenced\n"
	vars := map[string]string{
		"title":         "Sprint Plan",
		"output_folder": "docs",
	}

	got, unresolved := Render(text, vars)
	want := "# Sprint Plan\n\n## Tasks\n1. Write to docs/report.md\n2. Keep `{{code}}` fenced\n"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"code"}, unresolved); diff != "" {
		t.Errorf("unresolved mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_SelfReferenceDoesNotLoop(t *testing.T) {
	got, unresolved := Render("{{loop}}", map[string]string{"loop": "{{loop}}"})
	if want := "{{loop}}"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"loop"}, unresolved); diff != "" {
		t.Errorf("unresolved mismatch (-want +got):\n%s", diff)
	}
}
