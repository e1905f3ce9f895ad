package workflow

import (
	"strings"

	"github.com/cognifloe/control-plane/pkg/models"
)

// TerminalStep closes every synthesized step list.
const TerminalStep = "Complete workflow and log metrics"

type triggerRule struct {
	keywords []string
	step     string
}

// Only the first matching trigger fires.
var triggerRules = []triggerRule{
	{[]string{"schedule", "daily", "weekly", "monthly", "every day", "cron", "recurring"}, "Scheduled trigger fires at the configured interval"},
	{[]string{"webhook", "api", "endpoint"}, "Webhook trigger receives the incoming request"},
	{[]string{"email", "inbox", "mail"}, "Monitor inbox for new incoming emails"},
	{[]string{"upload", "file", "attachment", "document"}, "File received and queued for processing"},
}

const genericTrigger = "Initialize workflow and validate input"

type stepPattern struct {
	keyword string
	steps   []string
}

var patternLibrary = []stepPattern{
	{"invoice", []string{
		"Extract invoice fields (vendor, amount, due date)",
		"Match invoice against purchase order",
		"Validate invoice totals and tax",
	}},
	{"email", []string{
		"Parse email body and attachments",
		"Classify email intent and priority",
	}},
	{"approval", []string{
		"Route item to approver",
		"Record approval decision",
	}},
	{"customer", []string{
		"Look up customer record",
		"Update customer profile with new activity",
	}},
	{"data", []string{
		"Clean and normalize incoming data",
		"Validate data against schema rules",
	}},
	{"extract", []string{
		"Extract structured fields from source content",
	}},
	{"feedback", []string{
		"Collect feedback entries",
		"Score feedback sentiment",
	}},
	{"report", []string{
		"Aggregate metrics for the reporting period",
	}},
}

type roleClassifier struct {
	keyword string
	phrase  func(role string) string
}

// First matching classifier wins.
var roleClassifiers = []roleClassifier{
	{"email", func(r string) string { return "Process incoming emails with " + r }},
	{"document", func(r string) string { return "Extract document content with " + r }},
	{"data", func(r string) string { return "Analyze data with " + r }},
	{"api", func(r string) string { return "Call external services via " + r }},
	{"notification", func(r string) string { return "Dispatch notifications via " + r }},
	{"validation", func(r string) string { return "Validate results with " + r }},
	{"report", func(r string) string { return "Generate report sections with " + r }},
	{"security", func(r string) string { return "Run security and compliance checks with " + r }},
	{"sentiment", func(r string) string { return "Score sentiment with " + r }},
	{"crm", func(r string) string { return "Sync records to CRM with " + r }},
}

type closingRule struct {
	keywords []string
	step     string
}

var closingRules = []closingRule{
	{[]string{"report", "summary", "summarize"}, "Compile summary report"},
	{[]string{"notify", "alert", "send"}, "Notify stakeholders of workflow results"},
	{[]string{"save", "store", "database"}, "Persist results to storage"},
}

// stepList appends strings while dropping exact duplicates. The first
// occurrence wins and order is preserved.
type stepList struct {
	steps []string
	seen  map[string]bool
}

func newStepList() *stepList {
	return &stepList{seen: make(map[string]bool)}
}

func (l *stepList) add(step string) {
	if l.seen[step] {
		return
	}
	l.seen[step] = true
	l.steps = append(l.steps, step)
}

// SynthesizeSteps builds the ordered, duplicate-free step list for a
// description and its resolved agents. The last element is always
// TerminalStep.
func SynthesizeSteps(description string, agents []*models.AgentTemplate) []string {
	text := strings.ToLower(description)
	l := newStepList()

	l.add(triggerStep(text))

	for _, p := range patternLibrary {
		if strings.Contains(text, p.keyword) {
			for _, s := range p.steps {
				l.add(s)
			}
		}
	}

	for _, a := range agents {
		l.add(AgentStep(a.Role))
	}

	for _, c := range closingRules {
		if containsAny(text, c.keywords) {
			l.add(c.step)
		}
	}

	l.add(TerminalStep)
	return l.steps
}

// NormalizeSteps applies the same cumulative dedup to an externally produced
// step list and guarantees exactly one TerminalStep, placed last.
func NormalizeSteps(steps []string) []string {
	l := newStepList()
	for _, s := range steps {
		s = strings.TrimSpace(s)
		if s == "" || s == TerminalStep {
			continue
		}
		l.add(s)
	}
	l.add(TerminalStep)
	return l.steps
}

// AgentStep phrases the single step contributed by an agent with the given role.
func AgentStep(role string) string {
	lower := strings.ToLower(role)
	for _, c := range roleClassifiers {
		if strings.Contains(lower, c.keyword) {
			return c.phrase(role)
		}
	}
	return "Execute " + role + " tasks"
}

func triggerStep(text string) string {
	for _, r := range triggerRules {
		if containsAny(text, r.keywords) {
			return r.step
		}
	}
	return genericTrigger
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
