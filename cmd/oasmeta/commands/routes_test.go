package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasmeta/internal/testutil"
)

func TestSetupRoutesFlags(t *testing.T) {
	fs, flags := SetupRoutesFlags()

	t.Run("default values", func(t *testing.T) {
		assert.Equal(t, FormatText, flags.Format)
		assert.False(t, flags.Quiet)
		assert.True(t, flags.MatchSubPaths)
		assert.Empty(t, flags.ConfigPath)
	})

	t.Run("parse flags", func(t *testing.T) {
		args := []string{"-o", "yaml", "-q", "--match-sub-paths=false", "-c", "cfg.yaml", "api.yaml"}
		require.NoError(t, fs.Parse(args))

		assert.Equal(t, FormatYAML, flags.Format)
		assert.True(t, flags.Quiet)
		assert.False(t, flags.MatchSubPaths)
		assert.True(t, fs.Changed("match-sub-paths"))
		assert.Equal(t, "cfg.yaml", flags.ConfigPath)
		assert.Equal(t, "api.yaml", fs.Arg(0))
	})
}

func TestRunRoutes(t *testing.T) {
	spec := testutil.WriteTempFile(t, "petstore.yaml", testutil.PetstoreYAML)

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runRoutes(&buf, []string{spec}))

		out := buf.String()
		assert.Contains(t, out, "TEMPLATE")
		assert.Contains(t, out, "/pets/{id}/photo")
		assert.Contains(t, out, "GET, POST")
		assert.Contains(t, out, "/api/pets")
	})

	t.Run("quiet", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runRoutes(&buf, []string{"-q", spec}))

		assert.NotContains(t, buf.String(), "TEMPLATE")
		assert.Contains(t, buf.String(), "/pets\t/api/pets\tfalse\tGET, POST\n")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runRoutes(&buf, []string{"-o", "json", spec}))

		var routes []routeInfo
		require.NoError(t, json.Unmarshal(buf.Bytes(), &routes))
		require.Len(t, routes, 5)

		first := routes[0]
		assert.Equal(t, "/pets", first.Template)
		assert.Equal(t, "/api/pets", first.Key)
		assert.False(t, first.SubPaths)
		require.Len(t, first.Operations, 2)
		assert.Equal(t, "get", first.Operations[0].Method)
		assert.Equal(t, "listPets", first.Operations[0].OperationID)
		assert.Contains(t, first.Operations[0].Parameters, "query:tags")
		assert.Contains(t, first.Operations[0].Parameters, "header:X-Trace")

		assert.Equal(t, "/pets/{id}", routes[1].Template)
		assert.Equal(t, []string{"id"}, routes[1].Captures)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runRoutes(&buf, []string{"--output", "yaml", spec}))
		assert.Contains(t, buf.String(), "template: /pets/{id}")
	})

	t.Run("sub-path flag", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runRoutes(&buf, []string{"-o", "json", "--match-sub-paths=false", spec}))

		var routes []routeInfo
		require.NoError(t, json.Unmarshal(buf.Bytes(), &routes))
		for _, r := range routes {
			assert.False(t, r.SubPaths, r.Template)
		}
	})
}

func TestRunRoutesErrors(t *testing.T) {
	spec := testutil.WriteTempFile(t, "petstore.yaml", testutil.PetstoreYAML)

	tests := []struct {
		name string
		args []string
	}{
		{"no spec", []string{}},
		{"bad format", []string{"-o", "xml", spec}},
		{"too many args", []string{spec, spec}},
		{"missing file", []string{"/does/not/exist.yaml"}},
		{"unknown flag", []string{"--bogus", spec}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Error(t, runRoutes(&buf, tt.args))
		})
	}
}

func TestHandleRoutes_Help(t *testing.T) {
	assert.NoError(t, HandleRoutes([]string{"--help"}))
}
