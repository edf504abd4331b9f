package main

import (
	"fmt"
	"os"

	"github.com/erraggy/oasmeta"
	"github.com/erraggy/oasmeta/cmd/oasmeta/commands"
)

var commandNames = []string{"routes", "serve", "version", "help"}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	var err error

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("oasmeta %s\n", oasmeta.Version())
		fmt.Println(oasmeta.BuildInfo())
		return
	case "help", "-h", "--help":
		printUsage()
		return
	case "routes":
		err = commands.HandleRoutes(os.Args[2:])
	case "serve":
		err = commands.HandleServe(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if s := suggestCommand(command); s != "" {
			fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n", s)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `oasmeta - Swagger 2.0 request metadata

Usage:
  oasmeta <command> [flags] [file]

Commands:
  routes     List the compiled path templates of a document
  serve      Serve an endpoint that echoes request metadata
  version    Show build information
  help       Show this help message

Run 'oasmeta <command> --help' for command flags.
`)
}

// suggestCommand returns the known command closest to input, or "" when
// none is within an edit distance of 2.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := levenshtein(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
