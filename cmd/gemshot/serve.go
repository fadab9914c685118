package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/gemshot/internal/ai"
	"github.com/hpungsan/gemshot/internal/console"
	"github.com/hpungsan/gemshot/internal/errors"
	"github.com/hpungsan/gemshot/internal/instance"
	"github.com/hpungsan/gemshot/internal/mcp"
	"github.com/hpungsan/gemshot/internal/ops"
	"github.com/hpungsan/gemshot/internal/proxy"
	"github.com/hpungsan/gemshot/internal/web"
)

const localhost = "127.0.0.1"

// dashboardCmd creates the dashboard command.
func dashboardCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Serve the capture dashboard on localhost",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: localhost, Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Usage: "Port (default: dashboard_port, then 8765)"},
		},
		Action: func(c *cli.Context) error {
			port, err := dashboardPort(d, c.Int("port"))
			if err != nil {
				return outputError(err)
			}
			srv, err := web.NewServer(d.env, d.db, Version, c.String("bind"), port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if err := web.Run(c.Context, srv, d.logger); err != nil && err != http.ErrServerClosed {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// proxyCmd creates the proxy command.
func proxyCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "proxy",
		Usage: "Serve the AI proxy that holds the Gemini API key",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: localhost, Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: proxy.DefaultPort, Usage: "Port"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := d.env.Config.Load()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			key := ai.APIKey(cfg)
			if key == "" {
				d.logger.Warn("GEMINI_API_KEY not set; requests will fail until it is configured")
			}
			srv := proxy.NewServer(ai.NewGeminiClient(key), d.logger, c.String("bind"), c.Int("port"))
			if err := web.Run(c.Context, srv, d.logger); err != nil && err != http.ErrServerClosed {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the MCP tools over stdio",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "disable-tools", Usage: "Comma-separated tool names to hide"},
			&cli.StringFlag{Name: "disable-types", Usage: "Comma-separated tool types to hide (entry|vault|registry)"},
		},
		Action: func(c *cli.Context) error {
			opts := mcp.Options{
				DisabledTools: splitList(c.String("disable-tools")),
				DisabledTypes: splitList(c.String("disable-types")),
			}
			if unknown := mcp.ValidateDisabledTools(opts.DisabledTools); len(unknown) > 0 {
				return outputError(errors.NewInvalidRequest("unknown tools: " + strings.Join(unknown, ", ")))
			}
			if unknown := mcp.ValidateDisabledTypes(opts.DisabledTypes); len(unknown) > 0 {
				return outputError(errors.NewInvalidRequest("unknown tool types: " + strings.Join(unknown, ", ")))
			}
			if err := mcp.Run(d.env, Version, opts); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// runCmd creates the run command: startup checks, the single-instance
// guard, and the console listener.
func runCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run startup checks and the capture listener",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "vault-root", Usage: "Vault root to use when none is configured"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := d.env.Config.Load()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if _, err := ops.Startup(c.Context, d.env, ops.StartupInput{
				VaultRoot: c.String("vault-root"),
				Prompt:    linePrompt(os.Stdin, os.Stderr),
				APIKey:    ai.APIKey(cfg),
			}); err != nil {
				return outputError(err)
			}

			guard := instance.New(filepath.Join(d.baseDir, instance.FileName))
			replaced, err := guard.Acquire()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			defer func() {
				if err := guard.Release(); err != nil {
					d.logger.Warn("release pid file", "err", err)
				}
			}()
			if replaced > 0 {
				d.logger.Info("replaced previous instance", "pid", replaced)
			}

			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			dash := &lazyDashboard{deps: d, ctx: ctx}
			err = console.Run(ctx, console.New(d.env.Config, d.env.Activity, dash.start))
			cancel()
			dash.wait()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// lazyDashboard starts the dashboard the first time it is asked for and
// reuses it afterwards. Once wait has been called no new server starts.
type lazyDashboard struct {
	deps *appDeps
	ctx  context.Context

	mu      sync.Mutex
	started bool
	stopped bool
	url     string
	err     error
	done    chan struct{}
}

func (l *lazyDashboard) start() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return l.url, l.err
	}
	if l.stopped {
		return "", errors.NewInternal(fmt.Errorf("listener is shutting down"))
	}
	l.started = true

	port, err := dashboardPort(l.deps, 0)
	if err != nil {
		l.err = err
		return "", l.err
	}
	srv, err := web.NewServer(l.deps.env, l.deps.db, Version, localhost, port)
	if err != nil {
		l.err = err
		return "", l.err
	}
	l.url = "http://" + srv.Addr
	done := make(chan struct{})
	l.done = done
	go func() {
		defer close(done)
		if err := web.Run(l.ctx, srv, l.deps.logger); err != nil && err != http.ErrServerClosed {
			l.deps.logger.Error("dashboard stopped", "err", err)
		}
	}()
	return l.url, nil
}

// wait blocks until a started dashboard has shut down.
func (l *lazyDashboard) wait() {
	l.mu.Lock()
	l.stopped = true
	done := l.done
	l.mu.Unlock()
	if done != nil {
		<-done
	}
}

// dashboardPort picks the flag value, then dashboard_port, then the default.
func dashboardPort(d *appDeps, flag int) (int, error) {
	if flag > 0 {
		return flag, nil
	}
	cfg, err := d.env.Config.Load()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	if cfg.DashboardPort > 0 {
		return cfg.DashboardPort, nil
	}
	return web.DefaultPort, nil
}

// linePrompt asks for the vault root on w and reads one line from r.
// An empty answer accepts the suggestion.
func linePrompt(r io.Reader, w io.Writer) func(suggested string) (string, error) {
	return func(suggested string) (string, error) {
		fmt.Fprintf(w, "Vault folder [%s]: ", suggested)
		line, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		if strings.TrimSpace(line) == "" {
			return suggested, nil
		}
		return line, nil
	}
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
