package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: authpdf -u <url> -a <auth> [flags]")
	fmt.Fprintln(w, "       authpdf <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export an authenticated web page to PDF with Chrome.")
	fmt.Fprintln(w, "Writes <output>.pdf and debug-screenshot.png to the current directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  doctor     Check the browser environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Request:")
	fmt.Fprintln(w, "  -u, --url <url>           Page to load (required)")
	fmt.Fprintln(w, "  -a, --auth <value>        Authorization header value (required)")
	fmt.Fprintln(w, "  -o, --output <prefix>     Output file prefix (default \"output\")")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "  -e, --engine <name>       Engine: rod (default), chromedp")
	fmt.Fprintln(w, "      --headless            Hide the browser window")
	fmt.Fprintln(w, "  -t, --timeout <d>         Export timeout (default 30s, 0 = none)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
	fmt.Fprintln(w, "  -h, --help                Show this help")
	fmt.Fprintln(w, "      --version             Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  AUTHPDF_URL, AUTHPDF_AUTH, AUTHPDF_OUTPUT, AUTHPDF_CONFIG,")
	fmt.Fprintln(w, "  AUTHPDF_ENGINE, AUTHPDF_TIMEOUT, AUTHPDF_HEADLESS,")
	fmt.Fprintln(w, "  AUTHPDF_BROWSER_BIN, AUTHPDF_NO_SANDBOX")
	fmt.Fprintln(w, "  Precedence: flags > environment > config file > defaults")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: authpdf doctor [--json] [-c <config>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, sandbox, display, and output directory.")
	fmt.Fprintln(w, "browser.bin and browser.noSandbox from the config file are honored.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Machine-readable output")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (or AUTHPDF_CONFIG)")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: authpdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: authpdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
