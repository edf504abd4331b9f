package contract

// Document represents a resolved OpenAPI 2.0 (Swagger) document.
// Reference: https://spec.openapis.org/oas/v2.0.html
type Document struct {
	Swagger     string                `yaml:"swagger" json:"swagger"`
	Info        *Info                 `yaml:"info,omitempty" json:"info,omitempty"`
	Host        string                `yaml:"host,omitempty" json:"host,omitempty"`
	BasePath    string                `yaml:"basePath,omitempty" json:"basePath,omitempty"`
	Schemes     []string              `yaml:"schemes,omitempty" json:"schemes,omitempty"`
	Consumes    []string              `yaml:"consumes,omitempty" json:"consumes,omitempty"`
	Produces    []string              `yaml:"produces,omitempty" json:"produces,omitempty"`
	Paths       *Paths                `yaml:"paths" json:"paths"`
	Definitions map[string]*Schema    `yaml:"definitions,omitempty" json:"definitions,omitempty"`
	Parameters  map[string]*Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Security    []SecurityRequirement `yaml:"security,omitempty" json:"security,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Info provides metadata about the API
type Info struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Version     string `yaml:"version" json:"version"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// SecurityRequirement lists the required security schemes to execute an operation.
// Maps security scheme names to scopes (if applicable).
type SecurityRequirement map[string][]string

// Title returns the document title or an empty string when info is missing.
func (d *Document) Title() string {
	if d == nil || d.Info == nil {
		return ""
	}
	return d.Info.Title
}
