// Package lint defines the validation report model shared by plugin
// validation and marketplace verification, the rule set applied to loaded
// plugins, and the text/JSON renderers for reports.
package lint

import (
	"path"
	"sort"
)

// Severity classifies an issue.
type Severity string

// Severities
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding against a plugin or marketplace tree.
type Issue struct {
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

// Report collects issues for one validated root.
type Report struct {
	Root   string  `json:"root"`
	Issues []Issue `json:"issues"`
}

// NewReport creates an empty report for the given root.
func NewReport(root string) *Report {
	return &Report{Root: root}
}

// Add appends an issue.
func (r *Report) Add(severity Severity, rule, p, message string) {
	r.Issues = append(r.Issues, Issue{
		Severity: severity,
		Rule:     rule,
		Path:     p,
		Message:  message,
	})
}

// Merge appends all issues from other, prefixing their paths with dir so a
// marketplace report can absorb per-plugin reports.
func (r *Report) Merge(other *Report, dir string) {
	for _, issue := range other.Issues {
		if dir != "" {
			issue.Path = path.Join(dir, issue.Path)
		}
		r.Issues = append(r.Issues, issue)
	}
}

// Errors returns the number of error-severity issues.
func (r *Report) Errors() int {
	return r.count(SeverityError)
}

// Warnings returns the number of warning-severity issues.
func (r *Report) Warnings() int {
	return r.count(SeverityWarning)
}

func (r *Report) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// Failed reports whether the run should exit non-zero. Warnings fail only in
// strict mode.
func (r *Report) Failed(strict bool) bool {
	if r.Errors() > 0 {
		return true
	}
	return strict && r.Warnings() > 0
}

// Sort orders issues by path, then rule, then message for deterministic
// output.
func (r *Report) Sort() {
	sort.Slice(r.Issues, func(i, j int) bool {
		a, b := r.Issues[i], r.Issues[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Message < b.Message
	})
}
