package metadata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasmeta/contract"
	"github.com/erraggy/oasmeta/internal/testutil"
	"github.com/erraggy/oasmeta/oaserrors"
)

// recordingLogger keeps the messages of Warn calls.
type recordingLogger struct {
	NopLogger
	warnings *[]string
}

func newRecordingLogger() recordingLogger {
	return recordingLogger{warnings: &[]string{}}
}

func (l recordingLogger) Warn(msg string, _ ...any) {
	*l.warnings = append(*l.warnings, msg)
}

func (l recordingLogger) With(_ ...any) Logger { return l }

func TestBuildCache(t *testing.T) {
	doc := testutil.NewPetstore(t)

	cache, err := BuildCache(doc)
	require.NoError(t, err)
	assert.Same(t, doc, cache.Document())
	require.Equal(t, 5, cache.Len())

	var templates []string
	for _, e := range cache.Entries() {
		templates = append(templates, e.APIPath)
	}
	assert.Equal(t, []string{"/pets", "/pets/{id}", "/pets/{id}/photo", "/notes", "/health"}, templates)

	t.Run("literal entries are keyed by expanded path", func(t *testing.T) {
		entry, ok := cache.Lookup("/api/pets")
		require.True(t, ok)
		assert.Equal(t, "/pets", entry.APIPath)
		assert.Equal(t, []string{"get", "post"}, entry.Methods())
	})

	t.Run("parametrized entries are keyed by pattern", func(t *testing.T) {
		entry := cache.Entries()[1]
		assert.Equal(t, entry.Matcher.Pattern(), entry.Key)
		_, ok := cache.Lookup(entry.Key)
		assert.True(t, ok)
	})

	t.Run("operations carry provenance", func(t *testing.T) {
		op := cache.Entries()[1].Operation("get")
		require.NotNil(t, op)
		assert.Equal(t, "getPet", op.Operation.OperationID)
		assert.Equal(t, []string{"paths", "/pets/{id}", "get"}, op.OperationPath)
		require.Len(t, op.Parameters, 1)
		assert.Equal(t, []string{"paths", "/pets/{id}", "get", "parameters", "0"}, op.Parameters[0].Path)
	})

	t.Run("path item without operations", func(t *testing.T) {
		entry := cache.Entries()[4]
		assert.Empty(t, entry.Operations)
		assert.Nil(t, entry.Operation("get"))
	})

	t.Run("sub-path extension overrides the default", func(t *testing.T) {
		assert.False(t, cache.Entries()[0].Matcher.MatchesSubPaths())
		assert.False(t, cache.Entries()[1].Matcher.MatchesSubPaths())
		assert.True(t, cache.Entries()[2].Matcher.MatchesSubPaths())
	})
}

func TestBuildCacheDefaultSubPaths(t *testing.T) {
	doc := testutil.MustParse(t, `swagger: "2.0"
paths:
  /a: {}
  /b:
    x-swagger-router-handle-subpaths: true
`)

	cache, err := BuildCache(doc, WithMatchSubPaths(false))
	require.NoError(t, err)
	assert.False(t, cache.Entries()[0].Matcher.MatchesSubPaths())
	assert.True(t, cache.Entries()[1].Matcher.MatchesSubPaths())
}

func TestBuildCacheDoesNotMutateDocument(t *testing.T) {
	doc := testutil.NewPetstore(t)
	before, err := doc.Paths.MarshalJSON()
	require.NoError(t, err)

	_, err = BuildCache(doc)
	require.NoError(t, err)

	after, err := doc.Paths.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestBuildCacheErrors(t *testing.T) {
	t.Run("nil document", func(t *testing.T) {
		_, err := BuildCache(nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, oaserrors.ErrConfig))
	})

	t.Run("missing paths", func(t *testing.T) {
		_, err := BuildCache(&contract.Document{Swagger: "2.0"})
		require.Error(t, err)
		var cfgErr *oaserrors.ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "paths", cfgErr.Option)
	})

	t.Run("null path item", func(t *testing.T) {
		doc := testutil.MustParse(t, "swagger: \"2.0\"\npaths:\n  /a:\n")
		_, err := BuildCache(doc)
		require.Error(t, err)
		assert.True(t, errors.Is(err, oaserrors.ErrConfig))
	})

	t.Run("invalid template", func(t *testing.T) {
		doc := testutil.MustParse(t, "swagger: \"2.0\"\npaths:\n  /a/{id: {}\n")
		_, err := BuildCache(doc)
		require.Error(t, err)
		assert.True(t, errors.Is(err, oaserrors.ErrConfig))
		assert.Contains(t, err.Error(), "unclosed")
	})

	t.Run("invalid option", func(t *testing.T) {
		_, err := BuildCache(testutil.NewPetstore(t), WithMaxBodySize(0))
		require.Error(t, err)
		assert.True(t, errors.Is(err, oaserrors.ErrConfig))
	})
}

func TestBuildCacheDuplicateKeys(t *testing.T) {
	doc := testutil.MustParse(t, `swagger: "2.0"
paths:
  /a/{x}:
    get:
      operationId: first
  /a/{y}:
    get:
      operationId: second
`)
	logger := newRecordingLogger()

	cache, err := BuildCache(doc, WithLogger(logger))
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())
	assert.Equal(t, "/a/{x}", cache.Entries()[0].APIPath)
	assert.Len(t, *logger.warnings, 1)
}

func TestComposeParameters(t *testing.T) {
	prefix := []string{"paths", "/pets"}

	t.Run("operation declaration wins", func(t *testing.T) {
		opX := &contract.Parameter{Name: "x", In: "query", Type: "integer"}
		pathX := &contract.Parameter{Name: "x", In: "query", Type: "string"}

		composed := ComposeParameters(prefix, "get", []*contract.Parameter{pathX}, []*contract.Parameter{opX})
		require.Len(t, composed, 1)
		assert.Same(t, opX, composed[0].Parameter)
		assert.Equal(t, []string{"paths", "/pets", "get", "parameters", "0"}, composed[0].Path)
	})

	t.Run("same name in another location is kept", func(t *testing.T) {
		opX := &contract.Parameter{Name: "x", In: "query"}
		pathX := &contract.Parameter{Name: "x", In: "header"}

		composed := ComposeParameters(prefix, "get", []*contract.Parameter{pathX}, []*contract.Parameter{opX})
		require.Len(t, composed, 2)
		assert.Same(t, pathX, composed[1].Parameter)
		assert.Equal(t, []string{"paths", "/pets", "parameters", "0"}, composed[1].Path)
	})

	t.Run("operation parameters first then unseen path parameters", func(t *testing.T) {
		a := &contract.Parameter{Name: "a", In: "query"}
		b := &contract.Parameter{Name: "b", In: "query"}
		c := &contract.Parameter{Name: "c", In: "header"}
		d := &contract.Parameter{Name: "d", In: "path"}

		composed := ComposeParameters(prefix, "post",
			[]*contract.Parameter{c, a, d},
			[]*contract.Parameter{b, a})

		var names []string
		for _, cp := range composed {
			names = append(names, cp.Parameter.Name)
		}
		assert.Equal(t, []string{"b", "a", "c", "d"}, names)
		assert.Equal(t, []string{"paths", "/pets", "parameters", "2"}, composed[3].Path)
	})

	t.Run("does not share provenance slices", func(t *testing.T) {
		p := []*contract.Parameter{{Name: "a", In: "query"}, {Name: "b", In: "query"}}
		composed := ComposeParameters(prefix, "get", nil, p)
		composed[0].Path[0] = "changed"
		assert.Equal(t, "paths", composed[1].Path[0])
		assert.Equal(t, "paths", prefix[0])
	})

	t.Run("no parameters", func(t *testing.T) {
		assert.Empty(t, ComposeParameters(prefix, "get", nil, nil))
	})
}
