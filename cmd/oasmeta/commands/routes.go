package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/erraggy/oasmeta/metadata"
)

// RoutesFlags contains flags for the routes command
type RoutesFlags struct {
	CommonFlags
	Format string
	Quiet  bool
}

// SetupRoutesFlags creates and configures a FlagSet for the routes command.
func SetupRoutesFlags() (*pflag.FlagSet, *RoutesFlags) {
	fs := pflag.NewFlagSet("routes", pflag.ContinueOnError)
	flags := &RoutesFlags{}

	bindCommonFlags(fs, &flags.CommonFlags)
	fs.StringVarP(&flags.Format, "output", "o", FormatText, "output format: text, json, or yaml")
	fs.BoolVarP(&flags.Quiet, "quiet", "q", false, "omit the table header and separate columns with tabs")

	fs.Usage = func() {
		Writef(os.Stderr, "Usage: oasmeta routes [flags] [file]\n\n")
		Writef(os.Stderr, "List the compiled path templates of a Swagger 2.0 document in match order.\n\n")
		Writef(os.Stderr, "Flags:\n%s", fs.FlagUsages())
		Writef(os.Stderr, "\nExamples:\n")
		Writef(os.Stderr, "  oasmeta routes swagger.yaml\n")
		Writef(os.Stderr, "  oasmeta routes -o yaml --match-sub-paths=false swagger.yaml\n")
		Writef(os.Stderr, "  oasmeta routes -c oasmeta.yaml\n")
	}

	return fs, flags
}

// HandleRoutes executes the routes command
func HandleRoutes(args []string) error {
	return runRoutes(os.Stdout, args)
}

func runRoutes(w io.Writer, args []string) error {
	fs, flags := SetupRoutesFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return fmt.Errorf("routes command accepts at most one file path")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	cfg, err := loadConfig(fs, &flags.CommonFlags)
	if err != nil {
		return err
	}
	doc, err := loadDocument(cfg)
	if err != nil {
		return err
	}
	cache, err := metadata.BuildCache(doc, cfg.MiddlewareOptions()...)
	if err != nil {
		return fmt.Errorf("building routes: %w", err)
	}

	routes := collectRoutes(cache)
	if flags.Format != FormatText {
		return RenderDetail(w, routes, flags.Format)
	}

	headers := []string{"TEMPLATE", "KEY", "SUBPATHS", "METHODS"}
	rows := make([][]string, 0, len(routes))
	for _, r := range routes {
		methods := make([]string, 0, len(r.Operations))
		for _, op := range r.Operations {
			methods = append(methods, strings.ToUpper(op.Method))
		}
		rows = append(rows, []string{r.Template, r.Key, strconv.FormatBool(r.SubPaths), strings.Join(methods, ", ")})
	}
	RenderSummaryTable(w, headers, rows, flags.Quiet)
	return nil
}

type routeInfo struct {
	Template   string           `json:"template" yaml:"template"`
	Key        string           `json:"key" yaml:"key"`
	Captures   []string         `json:"captures,omitempty" yaml:"captures,omitempty"`
	SubPaths   bool             `json:"subPaths" yaml:"subPaths"`
	Operations []routeOperation `json:"operations,omitempty" yaml:"operations,omitempty"`
}

type routeOperation struct {
	Method      string   `json:"method" yaml:"method"`
	OperationID string   `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Parameters  []string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

func collectRoutes(cache *metadata.Cache) []routeInfo {
	routes := make([]routeInfo, 0, cache.Len())
	for _, e := range cache.Entries() {
		ri := routeInfo{
			Template: e.APIPath,
			Key:      e.Key,
			Captures: e.Matcher.Keys(),
			SubPaths: e.Matcher.MatchesSubPaths(),
		}
		for _, m := range e.Methods() {
			op := e.Operation(m)
			ro := routeOperation{Method: m, OperationID: op.Operation.OperationID}
			for _, p := range op.Parameters {
				ro.Parameters = append(ro.Parameters, p.Parameter.Key())
			}
			ri.Operations = append(ri.Operations, ro)
		}
		routes = append(routes, ri)
	}
	return routes
}
