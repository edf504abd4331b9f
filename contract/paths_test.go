package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

func TestPathsSet(t *testing.T) {
	p := NewPaths()
	p.Set("/b", &PathItem{})
	p.Set("/a", &PathItem{})
	replacement := &PathItem{Get: &Operation{OperationID: "again"}}
	p.Set("/b", replacement)

	assert.Equal(t, []string{"/b", "/a"}, p.Keys())
	got, ok := p.Get("/b")
	require.True(t, ok)
	assert.Same(t, replacement, got)

	var zero Paths
	zero.Set("/x", nil)
	assert.Equal(t, 1, zero.Len())

	var nilPaths *Paths
	assert.Nil(t, nilPaths.Keys())
	assert.Zero(t, nilPaths.Len())
	_, ok = nilPaths.Get("/x")
	assert.False(t, ok)
}

func TestPathsMarshalKeepsOrder(t *testing.T) {
	p := NewPaths()
	p.Set("/z", &PathItem{Get: &Operation{OperationID: "z"}})
	p.Set("/a", &PathItem{})

	data, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"/z":{"get":{"operationId":"z"}},"/a":{}}`, string(data))

	out, err := yaml.Marshal(p)
	require.NoError(t, err)

	var back Paths
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, []string{"/z", "/a"}, back.Keys())
}

func TestHandleSubPaths(t *testing.T) {
	tests := []struct {
		name     string
		item     *PathItem
		value    bool
		declared bool
	}{
		{"nil item", nil, false, false},
		{"no extensions", &PathItem{}, false, false},
		{"false", &PathItem{Extra: map[string]any{HandleSubPathsExtension: false}}, false, true},
		{"true", &PathItem{Extra: map[string]any{HandleSubPathsExtension: true}}, true, true},
		{"not a bool", &PathItem{Extra: map[string]any{HandleSubPathsExtension: "yes"}}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, declared := tt.item.HandleSubPaths()
			assert.Equal(t, tt.value, v)
			assert.Equal(t, tt.declared, declared)
		})
	}
}

func TestPathsExtensionsAreNotTemplates(t *testing.T) {
	var p Paths
	require.NoError(t, yaml.Unmarshal([]byte(`
x-vendor: hello
/a: {}
x-other:
  a: 1
/b:
`), &p))

	assert.Equal(t, []string{"/a", "/b"}, p.Keys())
	assert.Equal(t, map[string]any{"x-vendor": "hello", "x-other": map[string]any{"a": 1}}, p.Extra)
	_, ok := p.Get("x-vendor")
	assert.False(t, ok)

	out, err := yaml.Marshal(&p)
	require.NoError(t, err)
	var back Paths
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, []string{"/a", "/b"}, back.Keys())
	assert.Equal(t, p.Extra, back.Extra)

	data, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"/a":{},"/b":null}`, string(data))
}
