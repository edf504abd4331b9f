// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erraggy/oasmeta/contract"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// PetstoreYAML is a small contract exercising every parameter location.
const PetstoreYAML = `swagger: "2.0"
info:
  title: Petstore
  version: 1.0.0
basePath: /api
security:
  - apiKey: []
paths:
  /pets:
    x-swagger-router-handle-subpaths: false
    parameters:
      - name: limit
        in: query
        type: integer
      - name: X-Trace
        in: header
        type: string
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          type: integer
          format: int32
        - name: tags
          in: query
          type: array
          collectionFormat: csv
          items:
            type: string
    post:
      operationId: createPet
      security: []
      parameters:
        - name: pet
          in: body
          schema:
            $ref: "#/definitions/Pet"
  /pets/{id}:
    x-swagger-router-handle-subpaths: false
    get:
      operationId: getPet
      parameters:
        - name: id
          in: path
          required: true
          type: integer
  /pets/{id}/photo:
    post:
      operationId: uploadPhoto
      consumes:
        - multipart/form-data
      parameters:
        - name: id
          in: path
          type: integer
        - name: caption
          in: formData
          type: string
        - name: photo
          in: formData
          type: file
  /notes:
    put:
      operationId: putNote
      parameters:
        - name: note
          in: body
          schema:
            type: string
  /health: {}
definitions:
  Pet:
    type: object
    properties:
      name:
        type: string
`

// NewPetstore parses PetstoreYAML and fails the test on error.
func NewPetstore(t *testing.T) *contract.Document {
	t.Helper()
	return MustParse(t, PetstoreYAML)
}

// MustParse parses a contract from src and fails the test on error.
func MustParse(t *testing.T, src string) *contract.Document {
	t.Helper()

	doc, err := contract.ParseBytes([]byte(src))
	if err != nil {
		t.Fatalf("Failed to parse contract: %v", err)
	}
	return doc
}

// WriteTempFile writes content to a file named name inside a temporary
// directory and returns its path.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write temporary file: %v", err)
	}

	return tmpFile
}

// NewRequest builds a request with an optional body and Content-Type.
func NewRequest(method, target, contentType string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

// NewJSONRequest builds a request carrying body as application/json.
func NewJSONRequest(method, target, body string) *http.Request {
	return NewRequest(method, target, "application/json", strings.NewReader(body))
}

// MultipartFile is one file part of a multipart request.
type MultipartFile struct {
	Field    string
	Filename string
	Content  string
}

// NewMultipartRequest builds a multipart/form-data request from text fields
// and files.
func NewMultipartRequest(t *testing.T, method, target string, fields map[string]string, files ...MultipartFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("Failed to write field %q: %v", name, err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			t.Fatalf("Failed to create file part %q: %v", f.Field, err)
		}
		if _, err := io.WriteString(part, f.Content); err != nil {
			t.Fatalf("Failed to write file part %q: %v", f.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	return NewRequest(method, target, mw.FormDataContentType(), &buf)
}
