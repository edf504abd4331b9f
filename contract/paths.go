package contract

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasmeta/internal/httputil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HandleSubPathsExtension is the path item extension that overrides whether
// requests below the declared template also match it.
const HandleSubPathsExtension = "x-swagger-router-handle-subpaths"

// Paths holds the relative paths to the individual endpoints in declaration order.
type Paths struct {
	keys  []string
	items map[string]*PathItem
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any
}

// NewPaths returns an empty, ready to use Paths.
func NewPaths() *Paths {
	return &Paths{items: make(map[string]*PathItem)}
}

// Set adds or replaces the path item for template. New templates are appended
// after every existing one; replacing keeps the original position.
func (p *Paths) Set(template string, item *PathItem) {
	if p.items == nil {
		p.items = make(map[string]*PathItem)
	}
	if _, exists := p.items[template]; !exists {
		p.keys = append(p.keys, template)
	}
	p.items[template] = item
}

// Get returns the path item declared for template.
func (p *Paths) Get(template string) (*PathItem, bool) {
	if p == nil {
		return nil, false
	}
	item, ok := p.items[template]
	return item, ok
}

// Keys returns the declared templates in document order.
// The returned slice must not be modified.
func (p *Paths) Keys() []string {
	if p == nil {
		return nil
	}
	return p.keys
}

// Len returns the number of declared templates.
func (p *Paths) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// UnmarshalYAML decodes the paths mapping while keeping key order.
// Extension keys go to Extra and are never treated as templates.
func (p *Paths) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("paths must be a mapping, got %s at line %d", nodeKindName(node.Kind), node.Line)
	}

	p.keys = make([]string, 0, len(node.Content)/2)
	p.items = make(map[string]*PathItem, len(node.Content)/2)
	p.Extra = nil

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		template := keyNode.Value

		if strings.HasPrefix(template, "x-") {
			var ext any
			if err := valueNode.Decode(&ext); err != nil {
				return fmt.Errorf("paths extension %q: %w", template, err)
			}
			if p.Extra == nil {
				p.Extra = make(map[string]any)
			}
			p.Extra[template] = ext
			continue
		}

		var item *PathItem
		if !isNullNode(valueNode) {
			if valueNode.Kind != yaml.MappingNode {
				return fmt.Errorf("path %q must be a mapping, got %s at line %d", template, nodeKindName(valueNode.Kind), valueNode.Line)
			}
			item = &PathItem{}
			if err := valueNode.Decode(item); err != nil {
				return fmt.Errorf("path %q: %w", template, err)
			}
		}
		p.Set(template, item)
	}

	return nil
}

// MarshalYAML encodes the paths mapping in declaration order, followed by
// the extensions sorted by name.
func (p *Paths) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, template := range p.keys {
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(p.items[template]); err != nil {
			return nil, fmt.Errorf("path %q: %w", template, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: template},
			valueNode,
		)
	}
	for _, name := range slices.Sorted(maps.Keys(p.Extra)) {
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(p.Extra[name]); err != nil {
			return nil, fmt.Errorf("paths extension %q: %w", name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			valueNode,
		)
	}
	return node, nil
}

// MarshalJSON encodes the paths object in declaration order. Extensions are
// left out, as they are for the other objects.
func (p *Paths) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, template := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(template)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.items[template])
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", template, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// PathItem describes the operations available on a single path
type PathItem struct {
	Get        *Operation   `yaml:"get,omitempty" json:"get,omitempty"`
	Put        *Operation   `yaml:"put,omitempty" json:"put,omitempty"`
	Post       *Operation   `yaml:"post,omitempty" json:"post,omitempty"`
	Delete     *Operation   `yaml:"delete,omitempty" json:"delete,omitempty"`
	Options    *Operation   `yaml:"options,omitempty" json:"options,omitempty"`
	Head       *Operation   `yaml:"head,omitempty" json:"head,omitempty"`
	Patch      *Operation   `yaml:"patch,omitempty" json:"patch,omitempty"`
	Parameters []*Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Operation returns the operation declared for method (case-insensitive),
// or nil when the path item has none.
func (pi *PathItem) Operation(method string) *Operation {
	if pi == nil {
		return nil
	}
	switch strings.ToLower(method) {
	case httputil.MethodGet:
		return pi.Get
	case httputil.MethodPut:
		return pi.Put
	case httputil.MethodPost:
		return pi.Post
	case httputil.MethodDelete:
		return pi.Delete
	case httputil.MethodOptions:
		return pi.Options
	case httputil.MethodHead:
		return pi.Head
	case httputil.MethodPatch:
		return pi.Patch
	default:
		return nil
	}
}

// HandleSubPaths reports the value of the x-swagger-router-handle-subpaths
// extension and whether it was declared as a boolean.
func (pi *PathItem) HandleSubPaths() (value, declared bool) {
	if pi == nil || pi.Extra == nil {
		return false, false
	}
	v, ok := pi.Extra[HandleSubPathsExtension].(bool)
	return v, ok
}

// Operation describes a single API operation on a path
type Operation struct {
	Tags        []string     `yaml:"tags,omitempty" json:"tags,omitempty"`
	Summary     string       `yaml:"summary,omitempty" json:"summary,omitempty"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	OperationID string       `yaml:"operationId,omitempty" json:"operationId,omitempty"`
	Consumes    []string     `yaml:"consumes,omitempty" json:"consumes,omitempty"`
	Produces    []string     `yaml:"produces,omitempty" json:"produces,omitempty"`
	Parameters  []*Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Deprecated  bool         `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	// Security is nil when the operation does not declare it. An empty,
	// non-nil slice explicitly removes the document-level requirements.
	Security  []SecurityRequirement `yaml:"security,omitempty" json:"security,omitempty"`
	Responses map[string]any        `yaml:"responses,omitempty" json:"responses,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

func isNullNode(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func nodeKindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
