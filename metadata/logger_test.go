package metadata

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/erraggy/oasmeta/internal/testutil"
)

func newObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapAdapter(zap.New(core)), logs
}

func TestZapAdapterWith(t *testing.T) {
	logger, logs := newObservedLogger()

	logger.With("path", "/pets").Error("boom", "error", "disk full")

	entries := logs.FilterMessage("boom").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, map[string]any{"path": "/pets", "error": "disk full"}, entries[0].ContextMap())
}

// failingParser fails every request with an error that has no HTTP mapping.
type failingParser struct{}

func (failingParser) Kind() ParserKind { return ParserText }

func (failingParser) Parse(*http.Request, *RequestState, *Plan) error {
	return errors.New("decoder exploded")
}

func TestProcessLogsRequestFields(t *testing.T) {
	t.Run("client error at warn", func(t *testing.T) {
		logger, logs := newObservedLogger()
		mw := newPetstoreMiddleware(t, WithLogger(logger))

		_, err := mw.Process(testutil.NewJSONRequest(http.MethodPost, "/api/pets", `[`))
		require.Error(t, err)

		entries := logs.FilterMessage("request parameters could not be parsed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		fields := entries[0].ContextMap()
		assert.Equal(t, http.MethodPost, fields["method"])
		assert.Equal(t, "/api/pets", fields["path"])
		assert.Equal(t, "/pets", fields["template"])
	})

	t.Run("server error at error", func(t *testing.T) {
		logger, logs := newObservedLogger()
		mw := newPetstoreMiddleware(t, WithLogger(logger), WithParsers(failingParser{}))

		_, err := mw.Process(testutil.NewRequest(http.MethodPut, "/api/notes", "text/plain", strings.NewReader("x")))
		require.Error(t, err)

		entries := logs.FilterMessage("request parameters could not be parsed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "/notes", entries[0].ContextMap()["template"])
	})

	t.Run("extracted parameters carry request fields", func(t *testing.T) {
		logger, logs := newObservedLogger()
		mw := newPetstoreMiddleware(t, WithLogger(logger))

		_, err := mw.Process(testutil.NewRequest(http.MethodGet, "/api/pets/4", "", nil))
		require.NoError(t, err)

		entries := logs.FilterMessage("extracted parameter").All()
		require.NotEmpty(t, entries)
		assert.Equal(t, "/api/pets/4", entries[0].ContextMap()["path"])
		assert.Equal(t, "id", entries[0].ContextMap()["name"])
	})
}
