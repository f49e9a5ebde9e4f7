package check

import "sort"

// Kind discriminates the validation issue variants.
type Kind string

const (
	KindSyntaxError     Kind = "syntax_error"
	KindMissingKey      Kind = "missing_key"
	KindMissingVariable Kind = "missing_variable"
)

// Severity of an issue. Syntax errors and missing keys are errors;
// missing variables are warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one declared-vs-actual mismatch or syntax failure found in a
// locale's FTL files.
type Issue struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Locale   string   `json:"locale"`
	File     string   `json:"file"`
	Key      string   `json:"key,omitempty"`
	Variable string   `json:"variable,omitempty"`
	Span     *[2]uint `json:"span,omitempty"`
	Help     string   `json:"help"`
}

// kindRank orders issue kinds for deterministic reporting.
func kindRank(kind Kind) int {
	switch kind {
	case KindSyntaxError:
		return 0
	case KindMissingKey:
		return 1
	default:
		return 2
	}
}

// Sort orders issues by kind rank, then file, key and variable, so
// reports are stable regardless of the parallel completion order that
// produced them.
func Sort(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if kindRank(a.Kind) != kindRank(b.Kind) {
			return kindRank(a.Kind) < kindRank(b.Kind)
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.Variable < b.Variable
	})
}

// Report aggregates all issues of a check run.
type Report struct {
	ErrorCount   int     `json:"error_count"`
	WarningCount int     `json:"warning_count"`
	Issues       []Issue `json:"issues"`
}

// NewReport sorts the issues and tallies severities.
func NewReport(issues []Issue) *Report {
	Sort(issues)
	report := &Report{Issues: issues}
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			report.ErrorCount++
		} else {
			report.WarningCount++
		}
	}
	return report
}

// Clean reports whether the run produced zero diagnostics of any
// severity.
func (r *Report) Clean() bool {
	return r.ErrorCount == 0 && r.WarningCount == 0
}
