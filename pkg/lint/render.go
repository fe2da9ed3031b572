package lint

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Format selects a report rendering.
type Format string

// Formats
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s), nil
	default:
		return "", errors.Errorf("invalid format %q: must be text or json", s)
	}
}

// Render writes the report in the requested format.
func (r *Report) Render(w io.Writer, format Format) error {
	if format == FormatJSON {
		return r.renderJSON(w)
	}
	return r.renderText(w)
}

func (r *Report) renderText(w io.Writer) error {
	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)

	for _, issue := range r.Issues {
		label := "error"
		c := errColor
		if issue.Severity == SeverityWarning {
			label = "warning"
			c = warnColor
		}
		c.Fprintf(w, "%s", label)
		fmt.Fprintf(w, " %s: %s (%s)\n", issue.Path, issue.Message, issue.Rule)
	}

	if len(r.Issues) > 0 {
		fmt.Fprintln(w)
	}

	switch {
	case r.Errors() > 0:
		errColor.Fprintf(w, "✗ %s\n", r.summary())
	case r.Warnings() > 0:
		warnColor.Fprintf(w, "⚠ %s\n", r.summary())
	default:
		color.New(color.FgGreen, color.Bold).Fprintf(w, "✓ %s\n", r.summary())
	}

	return nil
}

func (r *Report) summary() string {
	return fmt.Sprintf("%s: %d error(s), %d warning(s)", r.Root, r.Errors(), r.Warnings())
}

func (r *Report) renderJSON(w io.Writer) error {
	type summary struct {
		Errors   int `json:"errors"`
		Warnings int `json:"warnings"`
	}
	type jsonReport struct {
		Root    string  `json:"root"`
		Issues  []Issue `json:"issues"`
		Summary summary `json:"summary"`
	}

	out := jsonReport{
		Root:   r.Root,
		Issues: r.Issues,
		Summary: summary{
			Errors:   r.Errors(),
			Warnings: r.Warnings(),
		},
	}
	if out.Issues == nil {
		out.Issues = []Issue{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error generating JSON output")
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
