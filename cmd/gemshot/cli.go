package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/gemshot/internal/activity"
	"github.com/hpungsan/gemshot/internal/ai"
	"github.com/hpungsan/gemshot/internal/db"
	"github.com/hpungsan/gemshot/internal/errors"
	"github.com/hpungsan/gemshot/internal/ops"
)

// Activity listing limits
const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// newCLIApp creates the CLI application with all commands.
// d may be nil when only help or version output is needed.
func newCLIApp(d *appDeps) *cli.App {
	app := &cli.App{
		Name:    "gemshot",
		Usage:   "Screenshot capture vault",
		Version: Version,
		Commands: []*cli.Command{
			saveCmd(d),
			routeCmd(d),
			recoverCmd(d),
			listCmd(d),
			showCmd(d),
			openCmd(d),
			registryCmd(d),
			configCmd(d),
			activityCmd(d),
			analyzeCmd(d),
			autofillCmd(d),
			dashboardCmd(d),
			proxyCmd(d),
			mcpCmd(d),
			runCmd(d),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// saveCmd creates the save command.
func saveCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "File a capture into the vault (--notes - reads notes from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Capture title (required)"},
			&cli.StringFlag{Name: "type", Usage: "Nota|Screen|Minuta|Archivo|Task|Hito", Value: "Screen"},
			&cli.StringFlag{Name: "universe", Aliases: []string{"u"}, Usage: "Universe (area) name"},
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project name"},
			&cli.StringFlag{Name: "client", Usage: "Client name"},
			&cli.StringFlag{Name: "role", Usage: "Role name"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
			&cli.StringFlag{Name: "notes", Aliases: []string{"n"}, Usage: "Free-form notes, or - for stdin"},
			&cli.StringFlag{Name: "ai-analysis", Usage: "AI analysis text"},
			&cli.StringFlag{Name: "deadline", Usage: "Deadline (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "related-file", Usage: "Related file path"},
			&cli.StringFlag{Name: "software", Usage: "Software shown in the capture"},
			&cli.StringFlag{Name: "source", Usage: "Source of the capture"},
			&cli.StringFlag{Name: "target", Usage: "Target folder (overrides routing)"},
			&cli.StringFlag{Name: "image", Aliases: []string{"i"}, Usage: "Captured PNG to keep with the note"},
			&cli.StringFlag{Name: "complexity", Usage: "Zen|Med|PRO (default: configured level)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SaveInput{
				Title:           c.String("title"),
				Type:            c.String("type"),
				Universe:        c.String("universe"),
				Project:         c.String("project"),
				Client:          c.String("client"),
				Role:            c.String("role"),
				Tags:            c.String("tags"),
				Notes:           c.String("notes"),
				AIAnalysis:      c.String("ai-analysis"),
				Deadline:        c.String("deadline"),
				RelatedFile:     c.String("related-file"),
				Software:        c.String("software"),
				Source:          c.String("source"),
				TargetOverride:  c.String("target"),
				ImagePath:       c.String("image"),
				KeepImage:       c.String("image") != "",
				ComplexityLevel: c.String("complexity"),
			}

			if input.Notes == "-" {
				if !stdinHasData() {
					return outputError(errors.NewInvalidRequest("notes must be piped via stdin when --notes is -"))
				}
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				input.Notes = text
			}

			output, err := ops.Save(c.Context, d.env, input)
			if err != nil {
				return outputError(err)
			}
			if err := outputJSON(output); err != nil {
				return err
			}
			if !output.Complete() {
				return cli.Exit(fmt.Sprintf("save incomplete: failed steps: %s", strings.Join(failedSteps(output), ", ")), 1)
			}
			return nil
		},
	}
}

// routeCmd creates the route command.
func routeCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "route",
		Usage: "Show the folder a capture would be filed into",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "universe", Aliases: []string{"u"}, Usage: "Universe (area) name"},
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project name"},
			&cli.StringFlag{Name: "target", Usage: "Target folder override"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.RouteFor(d.env, ops.RouteInput{
				Universe:       c.String("universe"),
				Project:        c.String("project"),
				TargetOverride: c.String("target"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// recoverCmd creates the recover command.
func recoverCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:      "recover",
		Usage:     "Find the current location of a moved or renamed note or image",
		ArgsUsage: "[stale-path]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Entry title"},
			&cli.StringFlag{Name: "universe", Aliases: []string{"u"}, Usage: "Universe (area) name"},
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project name"},
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Value: ops.RecoverKindNote, Usage: "note|image"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Recover(d.env, ops.RecoverInput{
				Path:     c.Args().First(),
				Title:    c.String("title"),
				Universe: c.String("universe"),
				Project:  c.String("project"),
				Kind:     c.String("kind"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List captures, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Search title, tags, and notes"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Value: ops.CategoryAll, Usage: "ALL|Nota|Screen|Minuta|Archivo|Task|Hito"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(d.env, ops.ListInput{
				Query:    c.String("query"),
				Category: c.String("category"),
				Limit:    c.Int("limit"),
				Offset:   c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a capture by ID",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("id is required"))
			}
			output, err := ops.Get(d.env, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// openCmd creates the open command.
func openCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "Open a capture's note (or its image) with the default application",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("id is required"))
			}
			if d.opener == nil {
				return outputError(errors.NewInvalidRequest("opening files is not available"))
			}
			output, err := ops.Open(d.env, c.Args().First(), d.opener)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// registryCmd creates the registry command group.
func registryCmd(d *appDeps) *cli.Command {
	collections := strings.Join(ops.Collections, "|")
	return &cli.Command{
		Name:  "registry",
		Usage: "List or extend universes, projects, roles, and clients",
		Subcommands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List a collection",
				ArgsUsage: "<" + collections + ">",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return outputError(errors.NewInvalidRequest("collection is required"))
					}
					collection := strings.ToLower(c.Args().First())
					names, err := ops.ListCollection(d.env, collection)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"collection": collection, "names": names})
				},
			},
			{
				Name:      "add",
				Usage:     "Add a name to a collection",
				ArgsUsage: "<" + collections + "> <name>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 2 {
						return outputError(errors.NewInvalidRequest("collection and name are required"))
					}
					output, err := ops.AddToCollection(c.Context, d.env, c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// configCmd creates the config command group.
func configCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or change settings",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the config (the API key is masked)",
				Action: func(c *cli.Context) error {
					cfg, err := d.env.Config.Load()
					if err != nil {
						return outputError(errors.NewInternal(err))
					}
					shown := *cfg
					shown.GeminiAPIKey = maskKey(shown.GeminiAPIKey)
					return outputJSON(map[string]any{"path": d.env.Config.Path(), "config": shown})
				},
			},
			{
				Name:      "set",
				Usage:     "Set a config key",
				ArgsUsage: "<key> <value>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 2 {
						return outputError(errors.NewInvalidRequest("key and value are required"))
					}
					key, value := c.Args().Get(0), c.Args().Get(1)
					if err := d.env.Config.Set(key, value); err != nil {
						return outputError(asGemError(err))
					}
					d.env.Activity.Event(c.Context, activity.KindConfig, "Config updated", "key", key)
					return outputJSON(map[string]any{"key": key, "updated": true})
				},
			},
			{
				Name:      "set-root",
				Usage:     "Point the vault at an existing folder",
				ArgsUsage: "<path>",
				Action: func(c *cli.Context) error {
					root := ops.CleanPath(c.Args().First())
					if root == "" {
						return outputError(errors.NewInvalidRequest("path is required"))
					}
					if info, err := os.Stat(root); err != nil || !info.IsDir() {
						return outputError(errors.NewInvalidRequest("not a directory: " + root))
					}
					if err := d.env.Config.SetVaultRoot(root); err != nil {
						return outputError(errors.NewInternal(err))
					}
					d.env.Activity.Event(c.Context, activity.KindConfig, "Vault root changed", "root", root)
					paths, err := d.env.Config.Paths()
					if err != nil {
						return outputError(errors.NewInternal(err))
					}
					return outputJSON(paths)
				},
			},
			{
				Name:  "paths",
				Usage: "Print the derived vault folders",
				Action: func(c *cli.Context) error {
					paths, err := d.env.Config.Paths()
					if err != nil {
						return outputError(errors.NewInternal(err))
					}
					return outputJSON(paths)
				},
			},
		},
	}
}

// activityCmd creates the activity command.
func activityCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "activity",
		Usage: "Show recent activity, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "SYSTEM|CONFIG|DATA|SAVE|CAPTURE_START|AI|WARNING"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: defaultActivityLimit, Usage: "Max events to return"},
		},
		Action: func(c *cli.Context) error {
			limit := c.Int("limit")
			if limit <= 0 {
				limit = defaultActivityLimit
			}
			if limit > maxActivityLimit {
				limit = maxActivityLimit
			}
			events, err := db.ListEvents(c.Context, d.db, strings.ToUpper(strings.TrimSpace(c.String("kind"))), limit)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"events": events})
		},
	}
}

// analyzeCmd creates the analyze command.
func analyzeCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Ask the vision model to describe a screenshot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "image", Aliases: []string{"i"}, Required: true, Usage: "PNG to analyze"},
			&cli.StringFlag{Name: "instructions", Usage: "Custom instruction for the model"},
		},
		Action: func(c *cli.Context) error {
			res, err := runAI(c, d, false)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{
				"result":    res.Text,
				"custom":    res.Custom(),
				"formatted": ai.FormatAnalysis(res.Text, res.Instructions),
			})
		},
	}
}

// autofillCmd creates the autofill command.
func autofillCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "autofill",
		Usage: "Ask the vision model to fill the capture form from a screenshot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "image", Aliases: []string{"i"}, Required: true, Usage: "PNG to analyze"},
			&cli.StringFlag{Name: "instructions", Usage: "Custom instruction for the model"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Current title"},
			&cli.StringFlag{Name: "type", Usage: "Current type"},
			&cli.StringFlag{Name: "deadline", Usage: "Current deadline"},
		},
		Action: func(c *cli.Context) error {
			res, err := runAI(c, d, true)
			if err != nil {
				return outputError(err)
			}
			form := ai.Form{
				Title:    c.String("title"),
				Type:     c.String("type"),
				Deadline: c.String("deadline"),
			}
			applyErr := ai.ApplyAutofill(&form, res.Text)
			if err := outputJSON(form); err != nil {
				return err
			}
			if applyErr != nil {
				return outputError(applyErr)
			}
			return nil
		},
	}
}

// runAI reads the image flag and waits for one AI result.
func runAI(c *cli.Context, d *appDeps, smartFill bool) (ai.Result, error) {
	png, err := os.ReadFile(c.String("image"))
	if err != nil {
		if os.IsNotExist(err) {
			return ai.Result{}, errors.NewFileNotFound(c.String("image"))
		}
		return ai.Result{}, errors.NewInternal(err)
	}
	cfg, err := d.env.Config.Load()
	if err != nil {
		return ai.Result{}, errors.NewInternal(err)
	}

	runner := ai.NewRunner(d.backend(cfg), d.env.Activity)
	call := runner.Analyze
	if smartFill {
		call = runner.SmartFill
	}
	ch, err := call(c.Context, png, c.String("instructions"))
	if err != nil {
		return ai.Result{}, err
	}
	res := <-ch
	if res.Err != nil {
		return ai.Result{}, res.Err
	}
	return res, nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if gemErr, ok := err.(*errors.GemError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", gemErr.Code, gemErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// asGemError turns a plain validation error into INVALID_REQUEST.
func asGemError(err error) error {
	if _, ok := err.(*errors.GemError); ok {
		return err
	}
	return errors.NewInvalidRequest(err.Error())
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// maskKey keeps the last four characters of an API key.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func failedSteps(o *ops.SaveOutput) []string {
	var failed []string
	for _, s := range o.Steps {
		if !s.OK {
			failed = append(failed, s.Step)
		}
	}
	return failed
}
