// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/dzshuffled/internal/shared"
	"github.com/urfave/cli/v3"
)

// rootCommand runs a scenario given by name or number, or one of the list/info/edit actions.
func rootCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "dzshuffled",
		Usage:   "Create Deezer playlists of shuffled tracks from your other playlists",
		Version: version,
		Description: "Pass a scenario name or number to create its playlist. Pass -l or -lv to see all scenarios.\n" +
			"Scenarios are read from ~/.config/dzshuffled/config.toml unless --config or " + shared.EnvConfigPath + " is set.",
		ArgsUsage: "[SCENARIO]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   shared.DefaultConfigPath(),
				Sources: cli.EnvVars(shared.EnvConfigPath),
			},
			&cli.BoolFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "Show the numbered list of scenarios",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "With --list, show the options of every scenario",
			},
			&cli.BoolFlag{
				Name:    "info",
				Aliases: []string{"i"},
				Usage:   "Show the options of the selected scenario without running it",
			},
			&cli.BoolFlag{
				Name:    "edit",
				Aliases: []string{"e"},
				Usage:   "Open the configuration file in the configured editor",
			},
			&cli.StringFlag{
				Name:  "editor",
				Usage: "Editor to use with --edit instead of system.editor",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Log debug output and the full error chain",
			},
			&cli.BoolFlag{
				Name:    "silent",
				Aliases: []string{"s"},
				Usage:   "Suppress console output",
			},
		},
		Before:   r.Setup,
		Action:   r.Run,
		Commands: r.register(),
	}
}

// authCommand checks the saved token and authorizes again when Deezer rejects it.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Verify the Deezer token, authorizing in the browser when needed",
		Action: r.Auth,
	}
}

// playlistsCommand lists the playlists in the user's library.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "List playlists in your Deezer library",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output CSV",
			},
		},
		Action: r.Playlists,
	}
}

// tracksCommand prints the tracks of every playlist with the given title.
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "List tracks of the playlists with the given title",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "title",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Tracks,
	}
}

// tuiCommand returns the TUI command for picking and running scenarios interactively.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive scenario picker",
		Action:  r.TUI,
	}
}
