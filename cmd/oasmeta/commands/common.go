// Package commands provides CLI command handlers for oasmeta.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/erraggy/oasmeta/contract"
	"github.com/erraggy/oasmeta/internal/config"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr.
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// CommonFlags are shared by every command that loads a document.
type CommonFlags struct {
	ConfigPath    string
	MatchSubPaths bool
}

func bindCommonFlags(fs *pflag.FlagSet, flags *CommonFlags) {
	fs.StringVarP(&flags.ConfigPath, "config", "c", "", "path to a YAML configuration file")
	fs.BoolVar(&flags.MatchSubPaths, "match-sub-paths", true, "match requests below a path template unless the path overrides it")
}

// loadConfig loads the configuration file named by the flags and applies
// explicitly set flags and the optional positional spec path on top of it.
func loadConfig(fs *pflag.FlagSet, flags *CommonFlags, overrides ...func(*config.Config)) (*config.Config, error) {
	all := []func(*config.Config){func(c *config.Config) {
		if fs.NArg() > 0 {
			c.Spec = fs.Arg(0)
		}
		if fs.Changed("match-sub-paths") {
			c.Middleware.MatchSubPaths = flags.MatchSubPaths
		}
	}}
	return config.Load(flags.ConfigPath, append(all, overrides...)...)
}

// loadDocument parses the document the configuration points at.
func loadDocument(cfg *config.Config) (*contract.Document, error) {
	doc, err := contract.ParseFile(cfg.Spec)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", cfg.Spec, err)
	}
	return doc, nil
}
