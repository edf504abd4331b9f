package metadata_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/erraggy/oasmeta/contract"
	"github.com/erraggy/oasmeta/metadata"
)

const exampleSpec = `
swagger: "2.0"
info:
  title: Pet Store
  version: "1.0"
basePath: /v1
paths:
  /pets/{petId}:
    get:
      operationId: getPet
      parameters:
        - name: petId
          in: path
          required: true
          type: integer
        - name: fields
          in: query
          type: array
          collectionFormat: pipes
          items:
            type: string
`

func ExampleNew() {
	doc, err := contract.ParseBytes([]byte(exampleSpec))
	if err != nil {
		fmt.Println("Parse error:", err)
		return
	}

	mw, err := metadata.New(doc)
	if err != nil {
		fmt.Println("Middleware error:", err)
		return
	}

	fmt.Println("Indexed paths:", mw.Cache().Len())
	// Output: Indexed paths: 1
}

func ExampleMiddleware_Handler() {
	doc, _ := contract.ParseBytes([]byte(exampleSpec))
	mw, _ := metadata.New(doc)

	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		md, ok := metadata.FromRequest(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Printf("%s %v %v\n", md.Operation.OperationID, md.Value("petId"), md.Value("fields"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/pets/42?fields=name%7Ctag", nil))
	// Output: getPet 42 [name tag]
}

func ExampleConvert() {
	info := contract.TypeInfo{
		Type:             "array",
		CollectionFormat: "csv",
		Items:            &contract.TypeInfo{Type: "integer"},
	}

	fmt.Println(metadata.Convert("1,2,3", info))
	fmt.Println(metadata.Convert("true", contract.TypeInfo{Type: "boolean"}))
	fmt.Println(metadata.Convert("abc", contract.TypeInfo{Type: "integer"}))
	// Output:
	// [1 2 3]
	// true
	// NaN
}

func ExampleCache_Match() {
	doc, _ := contract.ParseBytes([]byte(strings.TrimSpace(`
swagger: "2.0"
paths:
  /a/b:
    get: {}
  /a/{seg}:
    get: {}
`)))
	cache, _ := metadata.BuildCache(doc)

	for _, path := range []string{"/a/b", "/a/c", "/x"} {
		m, ok := cache.Match("GET", path)
		if !ok {
			fmt.Println(path, "-> no match")
			continue
		}
		fmt.Println(path, "->", m.Entry.APIPath)
	}
	// Output:
	// /a/b -> /a/b
	// /a/c -> /a/{seg}
	// /x -> no match
}
