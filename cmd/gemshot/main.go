package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/hpungsan/gemshot/internal/activity"
	"github.com/hpungsan/gemshot/internal/ai"
	"github.com/hpungsan/gemshot/internal/config"
	"github.com/hpungsan/gemshot/internal/db"
	"github.com/hpungsan/gemshot/internal/mcp"
	"github.com/hpungsan/gemshot/internal/ops"
	"github.com/hpungsan/gemshot/internal/platform"
	"github.com/hpungsan/gemshot/internal/registry"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// homeEnv overrides the base directory (~/.gemshot).
const homeEnv = "GEMSHOT_HOME"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"save": true, "route": true, "recover": true,
	"list": true, "show": true, "open": true,
	"registry": true, "config": true, "activity": true,
	"analyze": true, "autofill": true,
	"dashboard": true, "proxy": true, "mcp": true, "run": true,
	"help": true,
}

// appDeps is everything a command needs at run time.
type appDeps struct {
	baseDir string
	env     ops.Env
	db      *sql.DB
	logger  *log.Logger

	// backend builds the AI backend for the current config.
	backend func(cfg *config.Config) ai.Backend

	// opener hands a path to the desktop. Nil disables open.
	opener func(path string) error
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
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
    ____               ____  _           _
   / ___| ___ _ __ ___/ ___|| |__   ___ | |_
  | |  _ / _ \ '_ ' _ \___ \| '_ \ / _ \| __|
  | |_| |  __/ | | | | |__) | | | | (_) | |_
   \____|\___|_| |_| |_|____/|_| |_|\___/ \__|

  Screenshot capture vault

  Usage: gemshot <command> [options]
         gemshot run      start the capture listener
         gemshot --help

  MCP server mode requires piped input.`)
}

// baseDir returns GEMSHOT_HOME, or ~/.gemshot.
func baseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(homeEnv)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".gemshot"), nil
}

// openDeps opens the journal, the registry, and the config store under base.
func openDeps(base string, logger *log.Logger) (*appDeps, error) {
	database, err := db.Init(base)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	reg, err := registry.Open(filepath.Join(base, registry.DataDir))
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	store := config.NewStore(base)
	if _, err := store.Load(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &appDeps{
		baseDir: base,
		env: ops.Env{
			Config:   store,
			Registry: reg,
			Activity: activity.New(logger, database),
		},
		db:      database,
		logger:  logger,
		backend: ai.NewBackend,
		opener:  platform.OpenPath,
	}, nil
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before opening anything
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	base, err := baseDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := activity.NewLogger(os.Stderr)
	deps, err := openDeps(base, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer deps.db.Close()

	if isCLIMode() {
		app := newCLIApp(deps)
		if err := app.Run(os.Args); err != nil {
			deps.db.Close()
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'gemshot --help' for usage.\n")
		deps.db.Close()
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(deps.env, Version, mcp.Options{}); err != nil {
		deps.db.Close()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
