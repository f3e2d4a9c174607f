package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"
)

// Version information - set via ldflags during build
var (
	version   = "0.1.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// isInteractiveTerminalFn allows tests to fake a terminal.
var isInteractiveTerminalFn = isInteractiveTerminal

func main() {
	args := os.Args[1:]
	handled, code := dispatchSubcommand(args)
	if !handled {
		// A bare invocation runs the host with the configured scene.
		code = runCommand(runRunCommand, args)
	}
	os.Exit(code)
}

func dispatchSubcommand(args []string) (bool, int) {
	if len(args) == 0 {
		return false, 0
	}
	switch args[0] {
	case "--version", "-v", "version":
		printVersion()
		return true, 0
	case "--help", "-h", "help":
		printHelp()
		return true, 0
	case "run":
		return true, runCommand(runRunCommand, args[1:])
	case "replay":
		return true, runCommand(func(a []string) error { return runReplayCommand(a, os.Stdout) }, args[1:])
	case "check":
		return true, runCommand(func(a []string) error { return runCheckCommand(a, os.Stdout) }, args[1:])
	}
	if strings.HasPrefix(args[0], "-") {
		return false, 0
	}
	fmt.Fprintf(os.Stderr, "Error: unknown command %q (see userint help)\n", args[0])
	return true, exitConfig
}

func runCommand(handler func([]string) error, args []string) int {
	if err := handler(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCodeForError(err)
	}
	return 0
}

func printHelp() {
	fmt.Println("userint - widget interaction host")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  userint [COMMAND] [FLAGS]")
	fmt.Println()
	fmt.Println("COMMANDS:")
	fmt.Println("  run [--scene file]               Host a scene in the terminal (default)")
	fmt.Println("  replay --scene file <samples>    Replay pointer samples and print the journal as JSONL")
	fmt.Println("  check <scene>                    Validate a scene file")
	fmt.Println("  version                          Show version information")
	fmt.Println("  help                             Show this help")
	fmt.Println()
	fmt.Println("RUN FLAGS:")
	fmt.Println("  --config <path>                  Load configuration from a single file")
	fmt.Println("  --scene <path>                   Scene file (overrides scene.path)")
	fmt.Println("  --metrics <addr>                 Serve /metrics and /events on addr")
	fmt.Println("  --no-watch                       Do not reload the scene when it changes")
	fmt.Println("  --trace                          Export interaction spans")
	fmt.Println()
	fmt.Println("KEYS:")
	fmt.Println("  q, Esc, Ctrl-C                   Quit")
	fmt.Println("  c                                Clear the current choice")
	fmt.Println("  Ctrl-L                           Redraw the screen")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Println("  ~/.userint/config.yaml           User configuration")
	fmt.Println("  ./.userint/config.yaml           Project configuration")
	fmt.Println("  ~/.userint/config.env            Environment overrides (USERINT_*)")
}

func printVersion() {
	fmt.Printf("userint %s\n", version)
	if commit != "unknown" {
		fmt.Printf("  Commit:     %s\n", commit)
	}
	if buildDate != "unknown" {
		fmt.Printf("  Built:      %s\n", buildDate)
	}
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) &&
		term.IsTerminal(int(os.Stdout.Fd()))
}
