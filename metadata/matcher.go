package metadata

import "strings"

// Match is the result of matching a request against the cache.
type Match struct {
	// Entry is the matched cache entry.
	Entry *CacheEntry
	// Operation is nil when the path matched but declares no operation for
	// the request method.
	Operation *OperationEntry
	// Captures holds the decoded placeholder values keyed by name.
	Captures map[string]string
}

// Match finds the entry for a request method and escaped path.
//
// A path equal to the expanded form of a template without placeholders is
// found by direct lookup. Otherwise entries are tried in declaration order and
// the first whose pattern matches wins. A false result means the request is
// not covered by the document.
func (c *Cache) Match(method, path string) (*Match, bool) {
	method = strings.ToLower(method)

	if entry, ok := c.byKey[path]; ok && entry.Matcher.IsLiteral() {
		return &Match{
			Entry:     entry,
			Operation: entry.Operation(method),
			Captures:  map[string]string{},
		}, true
	}

	for _, entry := range c.entries {
		captures, ok := entry.Matcher.Match(path)
		if !ok {
			continue
		}
		return &Match{
			Entry:     entry,
			Operation: entry.Operation(method),
			Captures:  captures,
		}, true
	}

	return nil, false
}
