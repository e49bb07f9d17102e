package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// browserFlags holds browser launch flags.
type browserFlags struct {
	engine   string
	headless bool
	timeout  string
}

// exportFlags holds all flags for an export run.
type exportFlags struct {
	common  commonFlags
	url     string
	auth    string
	output  string
	browser browserFlags
	version bool

	// changed reports whether a flag was set on the command line, so that
	// flag defaults do not shadow env and config values.
	changed func(name string) bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addBrowserFlags adds browser flags to a FlagSet.
func addBrowserFlags(fs *flag.FlagSet, f *browserFlags) {
	fs.StringVarP(&f.engine, "engine", "e", "", "browser engine: rod, chromedp")
	fs.BoolVar(&f.headless, "headless", false, "hide the browser window")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "export timeout (e.g., 30s, 2m; 0 = none)")
}

// parseExportFlags parses export flags and returns positional args.
// Returns flag.ErrHelp when -h/--help is given; the caller prints usage.
func parseExportFlags(args []string) (*exportFlags, []string, error) {
	fs := flag.NewFlagSet("authpdf", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &exportFlags{}

	// Request flags
	fs.StringVarP(&f.url, "url", "u", "", "page to load (required)")
	fs.StringVarP(&f.auth, "auth", "a", "", "Authorization header value (required)")
	fs.StringVarP(&f.output, "output", "o", defaultOutputPrefix, "output file prefix (.pdf is appended)")
	fs.BoolVar(&f.version, "version", false, "show version information")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)

	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	f.changed = fs.Changed
	return f, fs.Args(), nil
}

// isVerbose scans raw arguments for -v/--verbose before flags are parsed.
func isVerbose(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" || a == "--verbose=true" {
			return true
		}
	}
	return false
}
