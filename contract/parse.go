package contract

import (
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasmeta/oaserrors"
)

// SupportedVersion is the only swagger version accepted by the parser.
const SupportedVersion = "2.0"

// ParseFile reads and decodes the document stored at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &oaserrors.ParseError{Path: path, Message: "failed to read file", Cause: err}
	}
	return parseBytes(data, path)
}

// ParseReader decodes a document from r.
func ParseReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &oaserrors.ParseError{Path: "ParseReader", Message: "failed to read data", Cause: err}
	}
	return parseBytes(data, "ParseReader")
}

// ParseBytes decodes a YAML or JSON document from data.
func ParseBytes(data []byte) (*Document, error) {
	return parseBytes(data, "ParseBytes")
}

func parseBytes(data []byte, source string) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &oaserrors.ParseError{Path: source, Message: "invalid YAML or JSON", Cause: err}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, &oaserrors.ParseError{Path: source, Message: "document is empty"}
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, &oaserrors.ParseError{
			Path:    source,
			Line:    top.Line,
			Column:  top.Column,
			Message: fmt.Sprintf("document root must be a mapping, got %s", nodeKindName(top.Kind)),
		}
	}

	doc := &Document{}
	if err := top.Decode(doc); err != nil {
		return nil, &oaserrors.ParseError{Path: source, Message: "failed to decode document", Cause: err}
	}

	if doc.Swagger != SupportedVersion {
		if v, ok := doc.Extra["openapi"]; ok {
			return nil, &oaserrors.ParseError{Path: source, Message: fmt.Sprintf("unsupported openapi version %v, only swagger %s documents are accepted", v, SupportedVersion)}
		}
		if doc.Swagger != "" {
			return nil, &oaserrors.ParseError{Path: source, Message: fmt.Sprintf("unsupported swagger version %q", doc.Swagger)}
		}
	}

	return doc, nil
}
