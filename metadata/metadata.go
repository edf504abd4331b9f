package metadata

import (
	"context"
	"net/http"

	"github.com/erraggy/oasmeta/contract"
)

// ParamValue is the extracted value of one declared parameter.
type ParamValue struct {
	// Path is the provenance of the declaration inside the document.
	Path []string `json:"path"`
	// Schema is the parameter declaration.
	Schema *contract.Parameter `json:"schema"`
	// OriginalValue is the value as read from the request, nil when absent.
	OriginalValue any `json:"originalValue,omitempty"`
	// Value is OriginalValue converted to the declared type.
	Value any `json:"value,omitempty"`
}

// Metadata describes the part of the document a request matched.
//
// Path-level fields are always set. Operation-level fields (Operation,
// OperationPath, OperationParameters, Security and Params) are only set when
// the path declares an operation for the request method.
type Metadata struct {
	APIPath  string                 `json:"apiPath"`
	Path     *contract.PathItem     `json:"-"`
	Document *contract.Document     `json:"-"`
	Params   map[string]*ParamValue `json:"params"`

	Operation           *contract.Operation            `json:"operation,omitempty"`
	OperationPath       []string                       `json:"operationPath,omitempty"`
	OperationParameters []ComposedParameter            `json:"-"`
	Security            []contract.SecurityRequirement `json:"security,omitempty"`
}

// HasOperation reports whether the request method matched an operation.
func (m *Metadata) HasOperation() bool {
	return m != nil && m.Operation != nil
}

// Param returns the extracted value of the named parameter.
func (m *Metadata) Param(name string) (*ParamValue, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.Params[name]
	return v, ok
}

// Value returns the converted value of the named parameter, or nil.
func (m *Metadata) Value(name string) any {
	if v, ok := m.Param(name); ok {
		return v.Value
	}
	return nil
}

func newMetadata(doc *contract.Document, match *Match) *Metadata {
	md := &Metadata{
		APIPath:  match.Entry.APIPath,
		Path:     match.Entry.Path,
		Document: doc,
		Params:   make(map[string]*ParamValue),
	}

	op := match.Operation
	if op == nil {
		return md
	}

	md.Operation = op.Operation
	md.OperationPath = op.OperationPath
	md.OperationParameters = op.Parameters
	switch {
	case op.Operation.Security != nil:
		md.Security = op.Operation.Security
	case doc.Security != nil:
		md.Security = doc.Security
	default:
		md.Security = []contract.SecurityRequirement{}
	}
	return md
}

type contextKey int

const (
	metadataKey contextKey = iota
	stateKey
)

// NewContext returns a copy of ctx carrying md.
func NewContext(ctx context.Context, md *Metadata) context.Context {
	return context.WithValue(ctx, metadataKey, md)
}

// FromContext returns the metadata attached to ctx, if any.
func FromContext(ctx context.Context) (*Metadata, bool) {
	md, ok := ctx.Value(metadataKey).(*Metadata)
	return md, ok && md != nil
}

// FromRequest returns the metadata attached to r, if any.
func FromRequest(r *http.Request) (*Metadata, bool) {
	return FromContext(r.Context())
}
