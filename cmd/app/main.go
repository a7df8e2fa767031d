package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/lumina/internal"
	lcli "github.com/starford/lumina/internal/cli"
	"github.com/starford/lumina/internal/kv"
	pkgconfig "github.com/starford/lumina/pkg/config"
)

var version = "dev"

// options loads the config named by the global flags and builds the
// application options shared by every command.
func options(cmd *cli.Command) ([]internal.Option, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cmd.Bool("ephemeral") {
		cfg.Storage.Backend = kv.BackendMemory
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunTUI(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Serve(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, opts...)
}

// withRunner adapts a one-shot note command to a cli action.
func withRunner(fn func(context.Context, *cli.Command, *lcli.Runner) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		return internal.RunCLI(ctx, func(ctx context.Context, r *lcli.Runner) error {
			return fn(ctx, cmd, r)
		}, opts...)
	}
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := cmd.Args().First()
	if v == "" {
		return "", fmt.Errorf("%s: missing %s argument", cmd.Name, name)
	}
	return v, nil
}

func noteCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:    "list",
			Aliases: []string{"ls"},
			Usage:   "List notes, most recently updated first",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Case-insensitive filter on title and content"},
			},
			Action: withRunner(func(_ context.Context, cmd *cli.Command, r *lcli.Runner) error {
				return r.List(cmd.String("query"))
			}),
		},
		{
			Name:      "show",
			Usage:     "Print a note",
			ArgsUsage: "ID",
			Action: withRunner(func(_ context.Context, cmd *cli.Command, r *lcli.Runner) error {
				id, err := requireArg(cmd, "ID")
				if err != nil {
					return err
				}
				return r.Show(id)
			}),
		},
		{
			Name:  "new",
			Usage: "Create a note",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Note title"},
				&cli.StringFlag{Name: "content", Usage: "Note body"},
			},
			Action: withRunner(func(_ context.Context, cmd *cli.Command, r *lcli.Runner) error {
				_, err := r.Create(cmd.String("title"), cmd.String("content"))
				return err
			}),
		},
		{
			Name:      "delete",
			Aliases:   []string{"rm"},
			Usage:     "Delete a note after confirmation",
			ArgsUsage: "ID",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
			},
			Action: withRunner(func(_ context.Context, cmd *cli.Command, r *lcli.Runner) error {
				id, err := requireArg(cmd, "ID")
				if err != nil {
					return err
				}
				_, err = r.Delete(id, cmd.Bool("yes"))
				return err
			}),
		},
		{
			Name:      "transform",
			Usage:     "Run an AI action over a note",
			ArgsUsage: "ID",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "action", Aliases: []string{"a"}, Usage: "summarize, improve, brainstorm, simplify or expand", Required: true},
				&cli.BoolFlag{Name: "apply", Usage: "Append the result to the note"},
			},
			Action: withRunner(func(ctx context.Context, cmd *cli.Command, r *lcli.Runner) error {
				id, err := requireArg(cmd, "ID")
				if err != nil {
					return err
				}
				_, err = r.Transform(ctx, id, cmd.String("action"), cmd.Bool("apply"))
				return err
			}),
		},
		{
			Name:      "import",
			Usage:     "Create notes from Markdown files",
			ArgsUsage: "FILE...",
			Action: withRunner(func(_ context.Context, cmd *cli.Command, r *lcli.Runner) error {
				_, err := r.Import(cmd.Args().Slice()...)
				return err
			}),
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "lumina",
		Usage:   "Local notes with AI writing tools",
		Version: version,
		Action:  runTUI,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "Keep notes in memory only for this run",
			},
		},
		Commands: append([]*cli.Command{
			{
				Name:   "tui",
				Usage:  "Open the terminal UI (default)",
				Action: runTUI,
			},
			{
				Name:   "serve",
				Usage:  "Serve the local HTTP API and change events",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: runMCP,
			},
		}, noteCommands()...),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
