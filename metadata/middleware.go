package metadata

import (
	"net/http"

	"github.com/erraggy/oasmeta/contract"
	"github.com/erraggy/oasmeta/oaserrors"
)

// Middleware attaches Metadata to requests that match a document.
//
// The path index is built once, in New, and is read-only afterwards. A
// Middleware is safe for concurrent use.
type Middleware struct {
	doc      *contract.Document
	cache    *Cache
	pipeline *Pipeline
	metrics  *metrics
	logger   Logger
	onError  ErrorHandler
}

// New builds the path index for doc and returns the middleware serving it.
//
// Returns a *oaserrors.ConfigError when doc is unusable or an option is
// invalid; no request can be processed against a partially built index.
func New(doc *contract.Document, opts ...Option) (*Middleware, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	cache, err := buildCache(doc, cfg)
	if err != nil {
		return nil, err
	}

	m, err := newMetrics(cfg.registerer)
	if err != nil {
		return nil, err
	}
	m.cacheEntries.Set(float64(cache.Len()))

	cfg.logger.Info("metadata middleware initialized",
		"title", doc.Title(), "basePath", doc.BasePath, "paths", cache.Len(), "subPaths", cfg.matchSubPaths)

	return &Middleware{
		doc:      doc,
		cache:    cache,
		pipeline: newPipeline(cfg, m),
		metrics:  m,
		logger:   cfg.logger,
		onError:  cfg.errorHandler,
	}, nil
}

// Cache returns the path index.
func (mw *Middleware) Cache() *Cache {
	return mw.cache
}

// Process matches r and, on a match, returns a request whose context carries
// the Metadata. An unmatched request is returned as is with a nil error.
//
// Processing the returned request again does not re-run its parsers.
//
// A parse failure or a cancelled request context yields an error and no
// metadata.
//
// File parts of a multipart request that did not fit in memory stay on disk
// until the returned request's MultipartForm.RemoveAll is called. Handler
// calls it once the wrapped handler returns.
func (mw *Middleware) Process(r *http.Request) (*http.Request, error) {
	ctx := r.Context()
	if err := ctx.Err(); err != nil {
		return r, err
	}

	match, ok := mw.cache.Match(r.Method, r.URL.EscapedPath())
	if !ok {
		mw.metrics.requests.WithLabelValues(resultUnmatched).Inc()
		return r, nil
	}

	md := newMetadata(mw.doc, match)
	if match.Operation == nil {
		mw.metrics.requests.WithLabelValues(resultPath).Inc()
		return r.WithContext(NewContext(ctx, md)), nil
	}

	state, r := stateFor(r)
	plan := PlanRequest(match.Operation.Parameters, r.Header.Get("Content-Type"), mw.doc.Definitions)

	log := mw.logger.With("method", r.Method, "path", r.URL.Path, "template", match.Entry.APIPath)
	if err := mw.pipeline.Run(ctx, r, state, plan); err != nil {
		mw.metrics.requests.WithLabelValues(resultError).Inc()
		if oaserrors.StatusCode(err) == http.StatusInternalServerError {
			log.Error("request parameters could not be parsed", "error", err)
		} else {
			log.Warn("request parameters could not be parsed", "error", err)
		}
		return r, err
	}
	if err := ctx.Err(); err != nil {
		mw.metrics.requests.WithLabelValues(resultError).Inc()
		return r, err
	}

	mw.pipeline.extract(md, match, r, state, log)
	mw.metrics.requests.WithLabelValues(resultOperation).Inc()

	return r.WithContext(NewContext(r.Context(), md)), nil
}

// Handler wraps next so that every request passes through Process first.
// Requests that fail to process are answered by the configured ErrorHandler
// and do not reach next. Temporary files of a multipart form parsed here are
// removed before Handler returns.
func (mw *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		processed, err := mw.Process(r)
		// net/http only cleans up the form of the request it created.
		if processed.MultipartForm != nil && processed.MultipartForm != r.MultipartForm {
			defer removeMultipartForm(processed, mw.logger)
		}
		if err != nil {
			mw.onError(w, processed, err)
			return
		}
		next.ServeHTTP(w, processed)
	})
}
