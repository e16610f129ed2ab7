package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "init":
		return runInit(args[1:])
	case "run":
		return runPipeline(args[1:])
	case "signals":
		return runSignals(args[1:])
	case "runs":
		return runRuns(args[1:])
	case "competitors":
		return runCompetitors(args[1:])
	case "report":
		return runReport(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "lookout CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lookout <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health       Verify database connectivity")
	fmt.Fprintln(os.Stderr, "  init         Seed competitors and signal sources from configuration")
	fmt.Fprintln(os.Stderr, "  run          Collect, classify, and store competitor signals")
	fmt.Fprintln(os.Stderr, "  signals      List recently stored signals")
	fmt.Fprintln(os.Stderr, "  runs         List pipeline executions")
	fmt.Fprintln(os.Stderr, "  competitors  List tracked competitors")
	fmt.Fprintln(os.Stderr, "  report       Render the digest for a recent window")
	fmt.Fprintln(os.Stderr, "  serve        Start the Echo API server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"lookout <command> -h\" for command-specific flags.")
}
