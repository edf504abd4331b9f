package contract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasmeta/oaserrors"
)

const orderedSpec = `
swagger: "2.0"
info:
  title: Ordered
  version: "1"
basePath: /v2
security:
  - apiKey: []
paths:
  /z/{id}:
    get:
      operationId: z
  /a:
    x-swagger-router-handle-subpaths: true
    post:
      operationId: a
      security: []
      parameters:
        - name: body
          in: body
          schema:
            $ref: '#/definitions/Thing'
  /m: ~
definitions:
  Thing:
    type: object
`

func TestParseBytes(t *testing.T) {
	doc, err := ParseBytes([]byte(orderedSpec))
	require.NoError(t, err)

	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "Ordered", doc.Title())
	assert.Equal(t, "/v2", doc.BasePath)
	assert.Equal(t, []SecurityRequirement{{"apiKey": {}}}, doc.Security)

	t.Run("path order is preserved", func(t *testing.T) {
		assert.Equal(t, []string{"/z/{id}", "/a", "/m"}, doc.Paths.Keys())
		assert.Equal(t, 3, doc.Paths.Len())
	})

	t.Run("null path item", func(t *testing.T) {
		item, ok := doc.Paths.Get("/m")
		assert.True(t, ok)
		assert.Nil(t, item)
	})

	t.Run("operations and extensions", func(t *testing.T) {
		item, ok := doc.Paths.Get("/a")
		require.True(t, ok)

		op := item.Operation("POST")
		require.NotNil(t, op)
		assert.Equal(t, "a", op.OperationID)
		assert.Nil(t, item.Operation("get"))
		assert.Nil(t, item.Operation("trace"))

		v, declared := item.HandleSubPaths()
		assert.True(t, declared)
		assert.True(t, v)
	})

	t.Run("explicit empty security", func(t *testing.T) {
		item, _ := doc.Paths.Get("/a")
		assert.NotNil(t, item.Post.Security)
		assert.Empty(t, item.Post.Security)

		z, _ := doc.Paths.Get("/z/{id}")
		assert.Nil(t, z.Get.Security)
	})

	t.Run("body schema reference", func(t *testing.T) {
		item, _ := doc.Paths.Get("/a")
		info := item.Post.Parameters[0].TypeInfo()
		assert.Equal(t, "Thing", info.Model)
		assert.Equal(t, TypeObject, info.Type)
		assert.True(t, info.IsStructured())
	})
}

func TestParseBytesJSON(t *testing.T) {
	doc, err := ParseBytes([]byte(`{"swagger":"2.0","paths":{"/b":{"get":{}},"/a":{}}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"/b", "/a"}, doc.Paths.Keys())
}

func TestParseBytesPathsExtension(t *testing.T) {
	doc, err := ParseBytes([]byte(`{"swagger":"2.0","paths":{"x-vendor":"hello","/a":{}}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"/a"}, doc.Paths.Keys())
	assert.Equal(t, "hello", doc.Paths.Extra["x-vendor"])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"invalid yaml", "swagger: [", "invalid YAML or JSON"},
		{"empty", "", "document is empty"},
		{"sequence root", "- a\n- b\n", "document root must be a mapping, got sequence"},
		{"openapi 3", "openapi: 3.0.0\npaths: {}\n", "unsupported openapi version 3.0.0"},
		{"swagger 1.2", "swagger: \"1.2\"\npaths: {}\n", `unsupported swagger version "1.2"`},
		{"scalar paths", "swagger: \"2.0\"\npaths: 3\n", "failed to decode document"},
		{"scalar path item", "swagger: \"2.0\"\npaths:\n  /a: 3\n", "failed to decode document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, oaserrors.ErrParse))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(orderedSpec), 0o600))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Paths.Len())

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	var perr *oaserrors.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "failed to read file", perr.Message)
}

func TestParseReader(t *testing.T) {
	doc, err := ParseReader(strings.NewReader(orderedSpec))
	require.NoError(t, err)
	assert.Equal(t, "Ordered", doc.Title())
}
