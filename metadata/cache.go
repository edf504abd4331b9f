package metadata

import (
	"strconv"

	"github.com/erraggy/oasmeta/contract"
	"github.com/erraggy/oasmeta/internal/httputil"
	"github.com/erraggy/oasmeta/oaserrors"
)

// ComposedParameter is an effective parameter of an operation together with
// the location of its declaration inside the document.
type ComposedParameter struct {
	// Path is the provenance of the declaration, e.g.
	// ["paths", "/pets/{id}", "get", "parameters", "0"].
	Path []string
	// Parameter is the declaration itself.
	Parameter *contract.Parameter
}

// OperationEntry is one indexed operation of a cache entry.
type OperationEntry struct {
	Method        string
	Operation     *contract.Operation
	OperationPath []string
	Parameters    []ComposedParameter
}

// CacheEntry is the precompiled form of one declared path.
type CacheEntry struct {
	// APIPath is the declared path template.
	APIPath string
	// Path is the declared path item.
	Path *contract.PathItem
	// Matcher is the compiled template.
	Matcher *PathMatcher
	// Key identifies the entry: the expanded literal path for templates
	// without placeholders, otherwise the compiled pattern source.
	Key string
	// Operations is keyed by lowercase method.
	Operations map[string]*OperationEntry
}

// Operation returns the indexed operation for method, or nil.
func (e *CacheEntry) Operation(method string) *OperationEntry {
	if e == nil {
		return nil
	}
	return e.Operations[method]
}

// Methods returns the methods with an indexed operation, in the fixed method order.
func (e *CacheEntry) Methods() []string {
	methods := make([]string, 0, len(e.Operations))
	for _, m := range httputil.Methods {
		if _, ok := e.Operations[m]; ok {
			methods = append(methods, m)
		}
	}
	return methods
}

// Cache is the read-only index of every declared path of a document.
// It is safe for concurrent use once built.
type Cache struct {
	doc     *contract.Document
	entries []*CacheEntry
	byKey   map[string]*CacheEntry
}

// BuildCache compiles every path of doc, in declaration order, and indexes
// its operations. doc is not modified.
//
// Returns a *oaserrors.ConfigError when doc or its paths are missing, or when
// a path template cannot be compiled.
func BuildCache(doc *contract.Document, opts ...Option) (*Cache, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return buildCache(doc, cfg)
}

func buildCache(doc *contract.Document, cfg *config) (*Cache, error) {
	if doc == nil {
		return nil, &oaserrors.ConfigError{Option: "document", Message: "document is required"}
	}
	if doc.Paths == nil {
		return nil, &oaserrors.ConfigError{Option: "paths", Message: "document must declare a paths object"}
	}

	log := cfg.logger
	c := &Cache{
		doc:     doc,
		entries: make([]*CacheEntry, 0, doc.Paths.Len()),
		byKey:   make(map[string]*CacheEntry, doc.Paths.Len()),
	}

	for _, template := range doc.Paths.Keys() {
		item, _ := doc.Paths.Get(template)
		if item == nil {
			return nil, &oaserrors.ConfigError{Option: "paths", Value: template, Message: "path item must be an object"}
		}

		subPaths := cfg.matchSubPaths
		if v, declared := item.HandleSubPaths(); declared {
			subPaths = v
		}

		matcher, err := NewPathMatcher(doc.BasePath, template, subPaths)
		if err != nil {
			return nil, &oaserrors.ConfigError{Option: "paths", Value: template, Message: "invalid path template", Cause: err}
		}

		key := matcher.Key()
		if prev, dup := c.byKey[key]; dup {
			log.Warn("path template shadowed by an earlier declaration",
				"template", template, "shadowedBy", prev.APIPath, "key", key)
			continue
		}

		entry := &CacheEntry{
			APIPath:    template,
			Path:       item,
			Matcher:    matcher,
			Key:        key,
			Operations: make(map[string]*OperationEntry),
		}

		prefix := []string{"paths", template}
		for _, method := range httputil.Methods {
			op := item.Operation(method)
			if op == nil {
				continue
			}
			entry.Operations[method] = &OperationEntry{
				Method:        method,
				Operation:     op,
				OperationPath: []string{"paths", template, method},
				Parameters:    ComposeParameters(prefix, method, item.Parameters, op.Parameters),
			}
		}

		log.Debug("found path", "template", template, "key", key, "methods", entry.Methods())

		c.entries = append(c.entries, entry)
		c.byKey[key] = entry
	}

	return c, nil
}

// ComposeParameters returns the effective parameters of an operation: the
// operation's own declarations in order, followed by every path-level
// declaration whose (name, in) pair the operation does not redeclare.
// prefix is the provenance of the path item, e.g. ["paths", "/pets"].
func ComposeParameters(prefix []string, method string, pathParams, opParams []*contract.Parameter) []ComposedParameter {
	composed := make([]ComposedParameter, 0, len(opParams)+len(pathParams))
	seen := make(map[string]struct{}, len(opParams))

	for i, p := range opParams {
		if p == nil {
			continue
		}
		composed = append(composed, ComposedParameter{
			Path:      provenance(prefix, method, "parameters", strconv.Itoa(i)),
			Parameter: p,
		})
		seen[p.Key()] = struct{}{}
	}

	for i, p := range pathParams {
		if p == nil {
			continue
		}
		if _, dup := seen[p.Key()]; dup {
			continue
		}
		composed = append(composed, ComposedParameter{
			Path:      provenance(prefix, "parameters", strconv.Itoa(i)),
			Parameter: p,
		})
	}

	return composed
}

func provenance(prefix []string, parts ...string) []string {
	path := make([]string, 0, len(prefix)+len(parts))
	path = append(path, prefix...)
	return append(path, parts...)
}

// Document returns the document the cache was built from.
func (c *Cache) Document() *contract.Document {
	return c.doc
}

// Entries returns the cache entries in declaration order.
// The returned slice must not be modified.
func (c *Cache) Entries() []*CacheEntry {
	return c.entries
}

// Len returns the number of cache entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Lookup returns the entry stored under key.
func (c *Cache) Lookup(key string) (*CacheEntry, bool) {
	e, ok := c.byKey[key]
	return e, ok
}
