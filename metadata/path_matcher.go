package metadata

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/grafana/regexp"
)

// PathMatcher matches request paths against a single contract path template.
// It converts templates like "/pets/{petId}" into regex patterns anchored
// below the document's base path and extracts the placeholder values.
type PathMatcher struct {
	// template is the declared path template (e.g., "/pets/{petId}")
	template string

	// expanded is the template prefixed with the normalized base path
	expanded string

	// regex is the compiled pattern for matching
	regex *regexp.Regexp

	// keys are the placeholder names in order of appearance
	keys []string

	subPaths bool
}

// NewPathMatcher creates a PathMatcher for template mounted under basePath.
// When matchSubPaths is true, request paths with extra trailing segments
// below the template also match.
//
// Returns an error if the template is malformed (e.g., unclosed braces).
func NewPathMatcher(basePath, template string, matchSubPaths bool) (*PathMatcher, error) {
	if template == "" {
		return nil, fmt.Errorf("path template cannot be empty")
	}

	expanded := normalizeBasePath(basePath) + strings.TrimPrefix(template, "/")

	var regexBuf strings.Builder
	regexBuf.WriteString("^")

	keys := []string{}

	i := 0
	for i < len(expanded) {
		if expanded[i] != '{' {
			end := strings.IndexByte(expanded[i:], '{')
			if end == -1 {
				end = len(expanded) - i
			}
			literal := expanded[i : i+end]
			if strings.Contains(literal, "}") {
				return nil, fmt.Errorf("unexpected '}' in template %q", template)
			}
			regexBuf.WriteString(regexp.QuoteMeta(literal))
			i += end
			continue
		}

		end := strings.IndexByte(expanded[i:], '}')
		if end == -1 {
			return nil, fmt.Errorf("unclosed path parameter in template %q", template)
		}

		name := expanded[i+1 : i+end]
		if name == "" {
			return nil, fmt.Errorf("empty path parameter in template %q", template)
		}
		if strings.ContainsAny(name, "{/") {
			return nil, fmt.Errorf("invalid path parameter %q in template %q", name, template)
		}
		for _, existing := range keys {
			if existing == name {
				return nil, fmt.Errorf("duplicate path parameter %q in template %q", name, template)
			}
		}

		keys = append(keys, name)
		regexBuf.WriteString("([^/]+?)")
		i += end + 1
	}

	// A pattern already ending in '/' must not demand a second separator.
	pattern := strings.TrimSuffix(regexBuf.String(), "/")
	if pattern == "^" {
		pattern = "^/?"
	}
	if matchSubPaths {
		pattern += "(?:/.*)?$"
	} else {
		pattern += "/?$"
	}

	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile path pattern for template %q: %w", template, err)
	}

	return &PathMatcher{
		template: template,
		expanded: expanded,
		regex:    regex,
		keys:     keys,
		subPaths: matchSubPaths,
	}, nil
}

// normalizeBasePath returns basePath with a leading and a trailing '/'.
// An empty base path is the root.
func normalizeBasePath(basePath string) string {
	if basePath == "" {
		return "/"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath
}

// Match reports whether path matches the template and returns the captured
// placeholder values keyed by name. Captures are percent-decoded; a capture
// that cannot be decoded is kept verbatim.
func (pm *PathMatcher) Match(path string) (map[string]string, bool) {
	matches := pm.regex.FindStringSubmatch(path)
	if matches == nil {
		return nil, false
	}

	// First match is the full string, subsequent matches are capture groups
	if len(matches) != len(pm.keys)+1 {
		return nil, false
	}

	params := make(map[string]string, len(pm.keys))
	for i, name := range pm.keys {
		value := matches[i+1]
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		params[name] = value
	}

	return params, true
}

// Template returns the declared path template.
func (pm *PathMatcher) Template() string {
	return pm.template
}

// Expanded returns the template prefixed with the normalized base path.
func (pm *PathMatcher) Expanded() string {
	return pm.expanded
}

// Keys returns the placeholder names in order of appearance.
// The returned slice must not be modified.
func (pm *PathMatcher) Keys() []string {
	return pm.keys
}

// IsLiteral reports whether the template has no placeholders.
func (pm *PathMatcher) IsLiteral() bool {
	return len(pm.keys) == 0
}

// Literal returns the expanded path of a template without placeholders, or ""
// when the template has any.
func (pm *PathMatcher) Literal() string {
	if !pm.IsLiteral() {
		return ""
	}
	return pm.expanded
}

// MatchesSubPaths reports whether trailing segments below the template match.
func (pm *PathMatcher) MatchesSubPaths() bool {
	return pm.subPaths
}

// Pattern returns the source of the compiled pattern.
func (pm *PathMatcher) Pattern() string {
	return pm.regex.String()
}

// Key returns the identity of the matcher within a cache: the literal path for
// templates without placeholders, otherwise the pattern source.
func (pm *PathMatcher) Key() string {
	if pm.IsLiteral() {
		return pm.expanded
	}
	return pm.regex.String()
}
