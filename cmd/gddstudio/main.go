package main

import (
	"fmt"
	"os"

	"github.com/berkgokcam/gddstudio/internal/config"
	"github.com/berkgokcam/gddstudio/internal/db"
	"github.com/berkgokcam/gddstudio/internal/mcp"
	"github.com/berkgokcam/gddstudio/internal/ollama"
	"github.com/berkgokcam/gddstudio/internal/orchestrate"
	"github.com/berkgokcam/gddstudio/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"new": true, "show": true, "set": true, "instruct": true,
	"generate": true, "chat": true, "clear-chat": true,
	"diagram": true, "models": true,
	"export": true, "import": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___ ___  ___  ___ _            _ _
  / __|   \|   \/ __| |_ _  _ __| (_)___
 | (_ | |) | |) \__ \  _| || / _| | / _ \
  \___|___/|___/|___/\__|\_,_\__,_|_\___/

  Game design documents with a local model

  Usage: gddstudio <command> [options]
         gddstudio --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before state init (no store needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	baseDir, err := config.BaseDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine base directory: %v\n", err)
		os.Exit(1)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	clientID, err := db.ClientID(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to read client identity: %v\n", err)
		os.Exit(1)
	}

	s := store.New(database, clientID)
	if err := s.Restore(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to restore state: %v\n", err)
		os.Exit(1)
	}

	orch := orchestrate.New(s, ollama.NewClient(cfg.OllamaURL), cfg)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(s, orch, cfg)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'gddstudio --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(s, orch, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
