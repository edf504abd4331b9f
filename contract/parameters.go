package contract

import "strings"

// Parameter locations.
const (
	InPath     = "path"
	InQuery    = "query"
	InHeader   = "header"
	InBody     = "body"
	InForm     = "form"
	InFormData = "formData"
)

// Primitive and container types understood by the converter.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeFile    = "file"
)

// Collection formats for array parameters carried as a single string.
const (
	CollectionCSV   = "csv"
	CollectionSSV   = "ssv"
	CollectionTSV   = "tsv"
	CollectionPipes = "pipes"
	CollectionMulti = "multi"
)

// Parameter describes a single operation parameter
type Parameter struct {
	Ref         string `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	In          string `yaml:"in,omitempty" json:"in,omitempty"` // "query", "header", "path", "formData", "form", "body"
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool   `yaml:"required,omitempty" json:"required,omitempty"`

	// Body parameters only
	Schema *Schema `yaml:"schema,omitempty" json:"schema,omitempty"`

	// Non-body parameters
	Type             string `yaml:"type,omitempty" json:"type,omitempty"`
	Format           string `yaml:"format,omitempty" json:"format,omitempty"`
	AllowEmptyValue  bool   `yaml:"allowEmptyValue,omitempty" json:"allowEmptyValue,omitempty"`
	Items            *Items `yaml:"items,omitempty" json:"items,omitempty"`
	CollectionFormat string `yaml:"collectionFormat,omitempty" json:"collectionFormat,omitempty"`
	Default          any    `yaml:"default,omitempty" json:"default,omitempty"`
	Enum             []any  `yaml:"enum,omitempty" json:"enum,omitempty"`

	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Items represents the items object for array parameters
type Items struct {
	Type             string         `yaml:"type" json:"type"`
	Format           string         `yaml:"format,omitempty" json:"format,omitempty"`
	Items            *Items         `yaml:"items,omitempty" json:"items,omitempty"`
	CollectionFormat string         `yaml:"collectionFormat,omitempty" json:"collectionFormat,omitempty"`
	Default          any            `yaml:"default,omitempty" json:"default,omitempty"`
	Enum             []any          `yaml:"enum,omitempty" json:"enum,omitempty"`
	Extra            map[string]any `yaml:",inline" json:"-"`
}

// Schema is the subset of a Swagger schema object used for body parameters.
type Schema struct {
	Ref                  string             `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Title                string             `yaml:"title,omitempty" json:"title,omitempty"`
	Description          string             `yaml:"description,omitempty" json:"description,omitempty"`
	Type                 string             `yaml:"type,omitempty" json:"type,omitempty"`
	Format               string             `yaml:"format,omitempty" json:"format,omitempty"`
	Items                *Schema            `yaml:"items,omitempty" json:"items,omitempty"`
	Properties           map[string]*Schema `yaml:"properties,omitempty" json:"properties,omitempty"`
	AdditionalProperties any                `yaml:"additionalProperties,omitempty" json:"additionalProperties,omitempty"`
	Required             []string           `yaml:"required,omitempty" json:"required,omitempty"`
	Default              any                `yaml:"default,omitempty" json:"default,omitempty"`
	Enum                 []any              `yaml:"enum,omitempty" json:"enum,omitempty"`
	Extra                map[string]any     `yaml:",inline" json:"-"`
}

// TypeInfo is the flattened type declaration a value is converted against.
// It is built from a Parameter, an Items object or a body Schema so the
// converter does not care where the declaration came from.
type TypeInfo struct {
	Type             string
	Format           string
	CollectionFormat string
	// Model is the referenced definition name for body schemas declared via $ref.
	Model string
	Items *TypeInfo
}

// IsStructured reports whether values of this type are parsed as structured
// payloads (arrays, objects and named models) rather than raw text.
func (t TypeInfo) IsStructured() bool {
	return t.Type == TypeArray || t.Type == TypeObject || t.Model != ""
}

// IsFile reports whether the declaration is a file upload.
func (t TypeInfo) IsFile() bool {
	return strings.EqualFold(t.Type, TypeFile)
}

// TypeInfo returns the effective type declaration of the parameter. Body
// parameters take their type from the schema. A parameter that declares no
// type at all is treated as an object.
func (p *Parameter) TypeInfo() TypeInfo {
	if p == nil {
		return TypeInfo{Type: TypeObject}
	}
	if p.Type != "" {
		info := TypeInfo{
			Type:             p.Type,
			Format:           p.Format,
			CollectionFormat: p.CollectionFormat,
		}
		if p.Items != nil {
			items := p.Items.TypeInfo()
			info.Items = &items
		}
		return info
	}
	if p.Schema != nil {
		return p.Schema.TypeInfo()
	}
	return TypeInfo{Type: TypeObject}
}

// TypeInfo returns the type declaration for a single array item.
func (it *Items) TypeInfo() TypeInfo {
	if it == nil {
		return TypeInfo{}
	}
	info := TypeInfo{
		Type:             it.Type,
		Format:           it.Format,
		CollectionFormat: it.CollectionFormat,
	}
	if it.Items != nil {
		items := it.Items.TypeInfo()
		info.Items = &items
	}
	return info
}

// TypeInfo returns the type declaration of a schema. A schema with neither
// type nor reference is an object.
func (s *Schema) TypeInfo() TypeInfo {
	if s == nil {
		return TypeInfo{Type: TypeObject}
	}
	info := TypeInfo{Type: s.Type, Format: s.Format}
	if s.Ref != "" {
		info.Model = refName(s.Ref)
	}
	if info.Type == "" {
		info.Type = TypeObject
	}
	if s.Items != nil {
		items := s.Items.TypeInfo()
		info.Items = &items
	}
	return info
}

// Key returns the identity of a parameter within an operation: "in:name".
func (p *Parameter) Key() string {
	return p.In + ":" + p.Name
}

// refName returns the last segment of a local JSON reference.
func refName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
