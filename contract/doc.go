// Package contract models a resolved OpenAPI 2.0 (Swagger) document.
//
// The types here cover the parts of the document that request matching and
// parameter extraction depend on: the base path, the ordered set of path
// templates, the per-method operations, their parameter declarations, and
// security requirements. Unknown fields and specification extensions
// ("x-" prefixed keys) are preserved in the Extra maps.
//
// Documents are expected to be fully dereferenced before they reach this
// package's consumers; a parameter or schema carrying a $ref is decoded but
// never followed.
//
// # Quick Start
//
//	doc, err := contract.ParseFile("swagger.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, tpl := range doc.Paths.Keys() {
//		fmt.Println(tpl)
//	}
//
// # Path Order
//
// Paths preserves the key order of the source document. Request matching
// resolves ambiguous templates by declaration order, so decoding goes through
// the yaml.Node tree instead of a plain Go map.
//
// JSON input is accepted as well, since JSON is a subset of YAML.
package contract
