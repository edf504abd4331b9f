// Package metadata attaches per-request metadata derived from an OpenAPI 2.0
// document to incoming HTTP requests.
//
// For every request whose path matches a declared path template, the
// middleware records which template and operation the request invokes and
// the typed values of the parameters that operation declares. Downstream
// handlers, validators and security checks read the result with [FromRequest].
//
// # Features
//
//   - Path templates compiled once into an index with O(1) lookup for templates without placeholders
//   - Declaration-order precedence between templates that match the same path
//   - Effective parameter lists merged from path-level and operation-level declarations
//   - Only the parsers an operation needs are run: query, JSON/urlencoded body, text body, multipart
//   - Values converted to their declared types (integer, number, boolean, array, object, date)
//   - Requests processed twice are parsed once
//
// # Basic Usage
//
//	doc, err := contract.ParseFile("swagger.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mw, err := metadata.New(doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	http.Handle("/", mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	    md, ok := metadata.FromRequest(r)
//	    if !ok {
//	        http.NotFound(w, r)
//	        return
//	    }
//	    id := md.Value("id") // int64 for an integer path parameter
//	    ...
//	})))
//
// # Matching
//
// A request path equal to a template without placeholders (after prefixing
// the document's basePath) is found directly. Otherwise templates are tried in
// the order the document declares them and the first match wins. Unless
// disabled with [WithMatchSubPaths] or a path item's
// x-swagger-router-handle-subpaths extension, a template also matches paths
// with extra trailing segments below it.
//
// Requests that match no template pass through without metadata. Requests
// that match a template but not one of its methods get path-level metadata
// only ([Metadata.HasOperation] is false).
//
// # Conversion
//
// Conversion never rejects a value; that is left to validation. Integer and
// number values that are not numeric become NaN, and other mismatches are
// kept as they arrived. Missing parameters are left nil; defaults are not
// applied.
//
// # Errors
//
// [New] returns a *oaserrors.ConfigError for a missing or malformed document.
// Per request, a malformed body yields a *oaserrors.ParseError and an
// oversized one a *oaserrors.ResourceLimitError; [Middleware.Handler] passes
// them to the configured [ErrorHandler].
//
// # Functional Options
//
//   - [WithLogger]: structured logger (default: discard)
//   - [WithMatchSubPaths]: default sub-path matching (default: true)
//   - [WithMaxBodySize]: limit for JSON, urlencoded and text bodies (default: 100 KiB)
//   - [WithMaxMultipartMemory]: in-memory part of multipart bodies (default: 32 MiB)
//   - [WithErrorHandler]: response for failed requests
//   - [WithRegisterer]: Prometheus registerer (default: private registry)
//   - [WithParsers]: replace built-in parsers
package metadata
