package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/tidwall/gjson"
)

var (
	kebabCaseRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	semverRe    = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)
	repoRe      = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
)

// IsKebabCase reports whether s is lowercase kebab-case
// (letters, digits, single hyphens).
func IsKebabCase(s string) bool {
	return kebabCaseRe.MatchString(s)
}

// IsSemver reports whether s is a MAJOR.MINOR.PATCH version with optional
// pre-release and build metadata.
func IsSemver(s string) bool {
	return semverRe.MatchString(s)
}

// Problem is a single validation finding against a manifest. Warning
// problems do not fail validation unless the caller promotes them.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Warning bool   `json:"warning,omitempty"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Field, p.Message)
}

// ProblemsToError folds error-level problems into a single error via
// multierror, returning nil when only warnings (or nothing) remain.
func ProblemsToError(problems []Problem) error {
	var result *multierror.Error
	for _, p := range problems {
		if p.Warning {
			continue
		}
		result = multierror.Append(result, fmt.Errorf("%s", p.String()))
	}
	return result.ErrorOrNil()
}

// requiredPluginKeys maps required plugin manifest keys to their expected
// raw JSON type, checked against the unparsed bytes so a number where a
// string belongs is reported precisely.
var requiredPluginKeys = []struct {
	key  string
	want gjson.Type
}{
	{"name", gjson.String},
	{"description", gjson.String},
	{"version", gjson.String},
}

// ValidatePlugin validates a parsed plugin manifest. When raw is non-nil the
// original bytes are also checked for missing keys, mistyped values, and
// unknown keys.
func ValidatePlugin(m *PluginManifest, raw []byte) []Problem {
	var problems []Problem

	if raw != nil {
		problems = append(problems, rawPluginProblems(raw)...)
	} else {
		for _, field := range []struct{ name, value string }{
			{"name", m.Name},
			{"description", m.Description},
			{"version", m.Version},
		} {
			if field.value == "" {
				problems = append(problems, Problem{Field: field.name, Message: "required key is missing"})
			}
		}
	}

	if m.Name != "" && !IsKebabCase(m.Name) {
		problems = append(problems, Problem{
			Field:   "name",
			Message: fmt.Sprintf("%q is not kebab-case (expected lowercase letters, digits, and hyphens)", m.Name),
		})
	}

	if m.Version != "" && !IsSemver(m.Version) {
		problems = append(problems, Problem{
			Field:   "version",
			Message: fmt.Sprintf("%q is not a semantic version (expected MAJOR.MINOR.PATCH)", m.Version),
		})
	}

	switch {
	case m.Author == nil:
		problems = append(problems, Problem{Field: "author", Message: "required key is missing"})
	case m.Author.Name == "":
		problems = append(problems, Problem{Field: "author.name", Message: "author name cannot be empty"})
	case m.Author.FromString:
		problems = append(problems, Problem{
			Field:   "author",
			Message: "author is a bare string; prefer an object with name/email/url",
			Warning: true,
		})
	}

	for _, field := range []struct{ name, value string }{
		{"homepage", m.Homepage},
		{"repository", m.Repository},
	} {
		if field.value != "" && !isHTTPURL(field.value) {
			problems = append(problems, Problem{
				Field:   field.name,
				Message: fmt.Sprintf("%q does not look like an http(s) URL", field.value),
				Warning: true,
			})
		}
	}

	return problems
}

func rawPluginProblems(raw []byte) []Problem {
	var problems []Problem

	for _, req := range requiredPluginKeys {
		v := gjson.GetBytes(raw, req.key)
		switch {
		case !v.Exists():
			problems = append(problems, Problem{Field: req.key, Message: "required key is missing"})
		case v.Type != req.want:
			problems = append(problems, Problem{
				Field:   req.key,
				Message: fmt.Sprintf("expected a %s, got %s", jsonTypeName(req.want), jsonTypeName(v.Type)),
			})
		case v.Str == "":
			problems = append(problems, Problem{Field: req.key, Message: "value cannot be empty"})
		}
	}

	if !gjson.GetBytes(raw, "author").Exists() {
		problems = append(problems, Problem{Field: "author", Message: "required key is missing"})
	}

	for _, key := range UnknownPluginKeys(raw) {
		problems = append(problems, Problem{
			Field:   key,
			Message: "unknown key (possible typo)",
			Warning: true,
		})
	}

	return problems
}

// ValidateMarketplace validates a parsed marketplace manifest, optionally
// cross-checked against the raw bytes.
func ValidateMarketplace(m *MarketplaceManifest, raw []byte) []Problem {
	var problems []Problem

	if m.Name == "" {
		problems = append(problems, Problem{Field: "name", Message: "required key is missing"})
	} else if !IsKebabCase(m.Name) {
		problems = append(problems, Problem{
			Field:   "name",
			Message: fmt.Sprintf("%q is not kebab-case", m.Name),
		})
	}

	switch {
	case m.Owner == nil:
		problems = append(problems, Problem{Field: "owner", Message: "required key is missing"})
	case m.Owner.Name == "":
		problems = append(problems, Problem{Field: "owner.name", Message: "owner name cannot be empty"})
	}

	if len(m.Plugins) == 0 {
		problems = append(problems, Problem{
			Field:   "plugins",
			Message: "marketplace lists no plugins",
			Warning: true,
		})
	}

	seen := make(map[string]bool)
	for i, entry := range m.Plugins {
		field := fmt.Sprintf("plugins[%d]", i)

		if entry.Name == "" {
			problems = append(problems, Problem{Field: field + ".name", Message: "required key is missing"})
		} else {
			if !IsKebabCase(entry.Name) {
				problems = append(problems, Problem{
					Field:   field + ".name",
					Message: fmt.Sprintf("%q is not kebab-case", entry.Name),
				})
			}
			if seen[entry.Name] {
				problems = append(problems, Problem{
					Field:   field + ".name",
					Message: fmt.Sprintf("duplicate plugin name %q (first entry wins)", entry.Name),
				})
			}
			seen[entry.Name] = true
		}

		if entry.Version != "" && !IsSemver(entry.Version) {
			problems = append(problems, Problem{
				Field:   field + ".version",
				Message: fmt.Sprintf("%q is not a semantic version", entry.Version),
			})
		}

		problems = append(problems, validateSource(field+".source", entry.Source)...)
	}

	if raw != nil {
		for _, key := range UnknownMarketplaceKeys(raw) {
			problems = append(problems, Problem{
				Field:   key,
				Message: "unknown key (possible typo)",
				Warning: true,
			})
		}
	}

	return problems
}

func validateSource(field string, s Source) []Problem {
	var problems []Problem

	switch s.Kind {
	case SourceKindLocal:
		switch {
		case s.Path == "":
			problems = append(problems, Problem{Field: field, Message: "local source path cannot be empty"})
		case strings.HasPrefix(s.Path, "/"):
			problems = append(problems, Problem{Field: field, Message: "local source path must be relative"})
		case pathEscapesRoot(s.Path):
			problems = append(problems, Problem{Field: field, Message: "local source path escapes the marketplace root"})
		}
	case SourceKindGitHub:
		if !repoRe.MatchString(s.Repo) {
			problems = append(problems, Problem{
				Field:   field,
				Message: fmt.Sprintf("github repo %q is not in owner/repo form", s.Repo),
			})
		}
	case SourceKindGit, SourceKindURL:
		if !isHTTPURL(s.URL) && !strings.HasPrefix(s.URL, "git@") {
			problems = append(problems, Problem{
				Field:   field,
				Message: fmt.Sprintf("url %q is not an http(s) or git URL", s.URL),
			})
		}
	}

	return problems
}

// pathEscapesRoot detects "../" traversal after cleaning the path.
func pathEscapesRoot(p string) bool {
	depth := 0
	for _, part := range strings.Split(strings.TrimPrefix(p, "./"), "/") {
		switch part {
		case "", ".":
		case "..":
			depth--
			if depth < 0 {
				return true
			}
		default:
			depth++
		}
	}
	return false
}

// jsonTypeName maps gjson types onto JSON vocabulary for error messages.
func jsonTypeName(t gjson.Type) string {
	switch t {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Null:
		return "null"
	case gjson.JSON:
		return "object or array"
	default:
		return "unknown value"
	}
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
