// Package oasmeta attaches OpenAPI 2.0 (Swagger) request metadata to HTTP
// requests.
//
// Given a resolved Swagger document, oasmeta matches each incoming request to
// the path template and operation that describe it, parses the parts of the
// request the operation's parameters need, and converts the raw parameter
// values into typed Go values. The result is stored on the request context for
// downstream handlers.
//
// # Packages
//
//   - contract: decode Swagger documents with path order preserved
//   - metadata: build the operation cache, match requests, run the parameter
//     pipeline and expose the resulting Metadata
//   - oaserrors: the shared error taxonomy and HTTP status mapping
//
// # Quick Start
//
//	doc, err := contract.ParseFile("swagger.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	mw, err := metadata.New(doc)
//	if err != nil {
//		log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//		md, ok := metadata.FromRequest(r)
//		if ok && md.HasOperation() {
//			fmt.Fprintln(w, md.Operation.OperationID, md.Value("id"))
//		}
//	})))
//
// # Command
//
// The oasmeta command (cmd/oasmeta) lists the routes of a document and serves
// a debugging endpoint that echoes the metadata computed for each request.
package oasmeta
