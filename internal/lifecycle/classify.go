package lifecycle

import (
	"fmt"
	"strings"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/workflow"
)

// typeRule maps a substring pattern to a document type. Rules are
// evaluated in declaration order; the first match wins.
type typeRule struct {
	pattern string
	docType string
}

// workflowTypeRules classify on the workflow name — the strongest
// signal, since the workflow author controls the intended document
// kind.
var workflowTypeRules = []typeRule{
	{"prd", "product-requirements"},
	{"architect", "architecture"},
	{"story", "story"},
	{"epic", "epic"},
	{"brief", "project-brief"},
	{"qa", "qa-assessment"},
	{"review", "qa-assessment"},
	{"retro", "retrospective"},
}

// pathTypeRules are the fallback tier, matched against the artifact
// path when the workflow name decides nothing.
var pathTypeRules = []typeRule{
	{"prd", "product-requirements"},
	{"architecture", "architecture"},
	{"stories/", "story"},
	{"story", "story"},
	{"epics/", "epic"},
	{"epic", "epic"},
	{"brief", "project-brief"},
	{"qa/", "qa-assessment"},
	{"review", "qa-assessment"},
	{"retro", "retrospective"},
}

// defaultDocType terminates the cascade.
const defaultDocType = "document"

// agentAuthors is the fixed responsible-agent → author lookup. An agent
// id outside this table is a configuration error, surfaced per artifact
// at registration time rather than silently defaulted.
var agentAuthors = map[string]string{
	"pm":        "Product Manager",
	"architect": "Architect",
	"sm":        "Scrum Master",
	"dev":       "Developer",
	"qa":        "QA Engineer",
	"analyst":   "Business Analyst",
	"po":        "Product Owner",
	"ux":        "UX Designer",
}

// Classify infers the document type and author for one artifact
// produced by def. Type inference never fails; an unmapped responsible
// agent does.
func Classify(path string, def *workflow.Definition) (docType, author string, err error) {
	author, ok := agentAuthors[def.Agent]
	if !ok {
		return "", "", fmt.Errorf("workflow %s: agent %q has no author mapping", def.Name, def.Agent)
	}
	return classifyType(path, def.Name), author, nil
}

func classifyType(path, workflowName string) string {
	name := strings.ToLower(workflowName)
	for _, rule := range workflowTypeRules {
		if strings.Contains(name, rule.pattern) {
			return rule.docType
		}
	}
	lowerPath := strings.ToLower(path)
	for _, rule := range pathTypeRules {
		if strings.Contains(lowerPath, rule.pattern) {
			return rule.docType
		}
	}
	return defaultDocType
}
