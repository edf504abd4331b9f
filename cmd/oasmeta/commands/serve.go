package commands

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/erraggy/oasmeta/internal/config"
	"github.com/erraggy/oasmeta/internal/logging"
	"github.com/erraggy/oasmeta/metadata"
)

// ServeFlags contains flags for the serve command
type ServeFlags struct {
	CommonFlags
	Listen   string
	LogLevel string
}

// SetupServeFlags creates and configures a FlagSet for the serve command.
func SetupServeFlags() (*pflag.FlagSet, *ServeFlags) {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags := &ServeFlags{}

	bindCommonFlags(fs, &flags.CommonFlags)
	fs.StringVarP(&flags.Listen, "listen", "l", "", "listen address (overrides server.listen_addr)")
	fs.StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn, or error")

	fs.Usage = func() {
		Writef(os.Stderr, "Usage: oasmeta serve [flags] [file]\n\n")
		Writef(os.Stderr, "Serve an endpoint that answers every request with the metadata computed for it.\n\n")
		Writef(os.Stderr, "Flags:\n%s", fs.FlagUsages())
		Writef(os.Stderr, "\nEnvironment:\n")
		Writef(os.Stderr, "  Every configuration key can be set as OASMETA_<SECTION>__<KEY>,\n")
		Writef(os.Stderr, "  e.g. OASMETA_SERVER__LISTEN_ADDR=0.0.0.0:8080\n")
		Writef(os.Stderr, "\nExamples:\n")
		Writef(os.Stderr, "  oasmeta serve swagger.yaml\n")
		Writef(os.Stderr, "  oasmeta serve -l :9090 --log-level debug swagger.yaml\n")
	}

	return fs, flags
}

// HandleServe executes the serve command
func HandleServe(args []string) error {
	fs, flags := SetupServeFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return fmt.Errorf("serve command accepts at most one file path")
	}

	cfg, err := loadConfig(fs, &flags.CommonFlags, func(c *config.Config) {
		if flags.Listen != "" {
			c.Server.ListenAddr = flags.Listen
		}
		if flags.LogLevel != "" {
			c.Log.Level = flags.LogLevel
		}
	})
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	zap.ReplaceGlobals(logger)

	doc, err := loadDocument(cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mw, err := metadata.New(doc, append(cfg.MiddlewareOptions(),
		metadata.WithLogger(metadata.NewZapAdapter(logger)),
		metadata.WithRegisterer(reg),
	)...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      NewRouter(mw, reg, cfg.Server.MetricsPath, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("listening", zap.String("addr", cfg.Server.ListenAddr), zap.String("spec", cfg.Spec))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewRouter mounts the metrics endpoint at metricsPath and the metadata
// echo handler, wrapped in mw, on every other path.
func NewRouter(mw *metadata.Middleware, gatherer prometheus.Gatherer, metricsPath string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(logger))

	if metricsPath != "" {
		r.Method(http.MethodGet, metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	r.Handle("/*", mw.Handler(http.HandlerFunc(echo)))
	return r
}

func accessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// EchoResponse is the body written by the serve command.
type EchoResponse struct {
	RequestID     string               `json:"requestId,omitempty"`
	APIPath       string               `json:"apiPath"`
	OperationID   string               `json:"operationId,omitempty"`
	OperationPath []string             `json:"operationPath,omitempty"`
	Security      any                  `json:"security,omitempty"`
	Params        map[string]EchoParam `json:"params,omitempty"`
}

// EchoParam is one extracted parameter.
type EchoParam struct {
	In            string `json:"in"`
	OriginalValue any    `json:"originalValue,omitempty"`
	Value         any    `json:"value,omitempty"`
}

func echo(w http.ResponseWriter, r *http.Request) {
	md, ok := metadata.FromRequest(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no path matches " + r.URL.Path})
		return
	}
	writeJSON(w, http.StatusOK, newEchoResponse(md, middleware.GetReqID(r.Context())))
}

func newEchoResponse(md *metadata.Metadata, requestID string) EchoResponse {
	resp := EchoResponse{
		RequestID: requestID,
		APIPath:   md.APIPath,
	}
	if !md.HasOperation() {
		return resp
	}
	resp.OperationID = md.Operation.OperationID
	resp.OperationPath = md.OperationPath
	resp.Security = md.Security
	resp.Params = make(map[string]EchoParam, len(md.Params))
	for name, p := range md.Params {
		resp.Params[name] = EchoParam{
			In:            p.Schema.In,
			OriginalValue: jsonSafe(p.OriginalValue),
			Value:         jsonSafe(p.Value),
		}
	}
	return resp
}

// jsonSafe replaces values JSON cannot carry: non-finite floats become their
// string form and uploaded files become a summary.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return strconv.FormatFloat(t, 'g', -1, 64)
		}
		return t
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = jsonSafe(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = jsonSafe(e)
		}
		return out
	case *multipart.FileHeader:
		if t == nil {
			return nil
		}
		return map[string]any{
			"filename":    t.Filename,
			"size":        t.Size,
			"contentType": t.Header.Get("Content-Type"),
		}
	default:
		return v
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		zap.L().Error("encoding response", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
