// Command bonjour-log inspects discovery event logs.
//
// Event logs are written by bonjour-echo when it runs with -event-log. Each
// file is a stream of CBOR records, one per reply, session state change or
// error.
//
// Usage:
//
//	bonjour-log <command> [flags] <file.blog>
//
// Commands:
//
//	view     Print events in human-readable form
//	export   Convert events to JSON lines or CSV
//	filter   Copy matching events to a new log file
//	stats    Summarize sessions, instances and errors
//
// Examples:
//
//	# Show everything
//	bonjour-log view echo.blog
//
//	# Show only browse replies
//	bonjour-log view -op browse -category reply echo.blog
//
//	# Show failures
//	bonjour-log view -errors echo.blog
//
//	# Export to CSV
//	bonjour-log export -format csv -o echo.csv echo.blog
//
//	# Keep the events about one instance
//	bonjour-log filter -name myecho -o myecho.blog echo.blog
//
//	# Summary
//	bonjour-log stats echo.blog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mash-protocol/bonjour-go/cmd/bonjour-log/commands"
)

const usage = `bonjour-log - DNS-SD discovery event log analyzer

Usage:
  bonjour-log <command> [flags] <file.blog>

Commands:
  view     Print events in human-readable form
  export   Convert events to JSON lines or CSV
  filter   Copy matching events to a new log file
  stats    Summarize sessions, instances and errors

Use "bonjour-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// newFlagSet returns a flag set whose usage text starts with summary.
func newFlagSet(name, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "bonjour-log %s - %s\n\nUsage:\n  bonjour-log %s [flags] <file.blog>\n\nFlags:\n",
			name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

// parse parses args and returns the log file path.
func parse(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "Print events in human-readable form")
	op := fs.String("op", "", "Filter by operation (register, browse, resolve)")
	category := fs.String("category", "", "Filter by category (reply, state, error)")
	errorsOnly := fs.Bool("errors", false, "Show only errors and failed replies")
	path := parse(fs, args)

	filter := commands.ViewFilter{ErrorsOnly: *errorsOnly}

	if *op != "" {
		o, err := commands.ParseOperationFlag(*op)
		if err != nil {
			fail(err)
		}
		filter.Operation = &o
	}

	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Convert events to JSON lines or CSV")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := parse(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Copy matching events to a new log file")
	var opts commands.FilterOptions
	fs.StringVar(&opts.Output, "o", "", "Output file (required)")
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Keep events at or after this time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Keep events before this time (RFC3339)")
	fs.StringVar(&opts.Operation, "op", "", "Filter by operation (register, browse, resolve)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (reply, state, error)")
	fs.StringVar(&opts.Name, "name", "", "Filter replies by instance name substring")
	fs.StringVar(&opts.Regtype, "regtype", "", "Filter replies by service type")
	fs.BoolVar(&opts.ErrorsOnly, "errors", false, "Keep only errors and failed replies")
	path := parse(fs, args)

	if opts.Output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunFilter(path, opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Summarize sessions, instances and errors")
	path := parse(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
