// Package template renders workflow instruction text.
//
// Placeholders use double-brace syntax ({{name}}). A mapped value may
// itself contain placeholders, resolved by one further substitution
// pass; anything still unresolved after that bound is left verbatim and
// reported through the warning side-channel instead of failing the
// render. Everything that is not a placeholder is preserved byte for
// byte.
package template

import "regexp"

// placeholderPattern matches {{name}} with optional whitespace inside
// the braces.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// maxDepth bounds nested substitution to two passes.
const maxDepth = 2

// Render substitutes every mapped placeholder in text and returns the
// rendered result plus the names of placeholders left unresolved,
// deduplicated in first-seen order. Unresolved placeholders stay in the
// output verbatim so the failure is visible downstream.
func Render(text string, vars map[string]string) (string, []string) {
	out := text
	for pass := 0; pass < maxDepth; pass++ {
		replaced := placeholderPattern.ReplaceAllStringFunc(out, func(match string) string {
			name := placeholderName(match)
			if value, ok := vars[name]; ok {
				return value
			}
			return match
		})
		if replaced == out {
			break
		}
		out = replaced
	}

	var unresolved []string
	seen := map[string]struct{}{}
	for _, match := range placeholderPattern.FindAllStringSubmatch(out, -1) {
		name := match[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unresolved = append(unresolved, name)
	}
	return out, unresolved
}

// placeholderName extracts the variable name from a full {{...}} match.
func placeholderName(match string) string {
	sub := placeholderPattern.FindStringSubmatch(match)
	if len(sub) < 2 {
		return ""
	}
	return sub[1]
}
