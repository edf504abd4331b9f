package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewPetstore verifies the shared fixture parses and keeps declaration order.
func TestNewPetstore(t *testing.T) {
	doc := NewPetstore(t)

	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "/api", doc.BasePath)
	assert.Equal(t, []string{"/pets", "/pets/{id}", "/pets/{id}/photo", "/notes", "/health"}, doc.Paths.Keys())

	pets, ok := doc.Paths.Get("/pets")
	require.True(t, ok)
	require.NotNil(t, pets.Get)
	assert.Equal(t, "listPets", pets.Get.OperationID)
	assert.NotNil(t, pets.Post.Security, "explicit empty security should decode as non-nil")
	assert.Empty(t, pets.Post.Security)
}

func TestPtr(t *testing.T) {
	p := Ptr(42)
	require.NotNil(t, p)
	assert.Equal(t, 42, *p)
}

func TestWriteTempFile(t *testing.T) {
	path := WriteTempFile(t, "api.yaml", "swagger: \"2.0\"\n")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "swagger: \"2.0\"\n", string(data))
}

func TestNewMultipartRequest(t *testing.T) {
	req := NewMultipartRequest(t, "POST", "/upload", map[string]string{"caption": "hi"},
		MultipartFile{Field: "photo", Filename: "a.png", Content: "png"})

	assert.True(t, strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data; boundary="))
	require.NoError(t, req.ParseMultipartForm(1<<20))
	assert.Equal(t, "hi", req.FormValue("caption"))
	require.Len(t, req.MultipartForm.File["photo"], 1)
	assert.Equal(t, "a.png", req.MultipartForm.File["photo"][0].Filename)
}

func TestNewJSONRequest(t *testing.T) {
	req := NewJSONRequest("POST", "/pets", `{"name":"Rex"}`)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}
