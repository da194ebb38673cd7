package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/dzshuffled/internal/formatter"
	"github.com/desertthunder/dzshuffled/internal/shared"
	"github.com/desertthunder/dzshuffled/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Run is the root action: edit the config, list scenarios, show one scenario or run it.
//
// Without a scenario or --list the help text is shown.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("edit") {
		return r.Edit(ctx, cmd)
	}

	input := cmd.Args().First()
	if cmd.Bool("list") {
		return r.List(ctx, cmd)
	}
	if input == "" {
		return cli.ShowAppHelp(cmd)
	}

	name, err := r.dispatcher.Resolve(input)
	if err != nil {
		return err
	}

	if cmd.Bool("info") {
		return r.Info(ctx, name)
	}
	return r.RunScenario(ctx, name)
}

// List prints scenario names with their numbers, and their options when --verbose is set.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	names := r.dispatcher.List()
	if len(names) == 0 {
		return r.writePlain("%s\n", warnStyle.Render(fmt.Sprintf("No scenarios in %s, add a [pl_...] section.", r.store.Path())))
	}
	return r.writeBytes(formatter.ScenarioList(names, r.store.All(), cmd.Bool("verbose")))
}

// Info prints the number and options of a scenario without running it.
func (r *Runner) Info(ctx context.Context, name string) error {
	index, err := r.dispatcher.IndexByName(name)
	if err != nil {
		return err
	}
	section, err := r.dispatcher.Config(name)
	if err != nil {
		return err
	}

	if err := r.writePlain("%d. ", index); err != nil {
		return err
	}
	return r.writeBytes(formatter.ScenarioInfo(name, section))
}

// Edit opens the configuration file in --editor, falling back to system.editor.
func (r *Runner) Edit(ctx context.Context, cmd *cli.Command) error {
	path := r.store.Path()
	if path == "" {
		return fmt.Errorf("%w: configuration is not backed by a file", shared.ErrMissingConfig)
	}

	editor := cmd.String("editor")
	if editor == "" {
		editor = r.store.Editor()
	}

	r.logger.Debug("editing config", "editor", editor, "path", path)
	return shared.EditFile(editor, path)
}

// RunScenario refreshes the token, then reconciles the scenario's playlist while printing progress.
func (r *Runner) RunScenario(ctx context.Context, name string) error {
	if err := r.ensureToken(ctx); err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "run", shared.GenerateID(), "scenario", name)
	logger.Info("starting scenario")

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			logger.Debug("progress", "phase", update.Phase, "step", update.Step, "total", update.Total)
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.dispatcher.Exec(ctx, name, progress)
	close(progress)
	<-done

	if err != nil {
		logger.Error("scenario failed", "error", err)
		return err
	}

	logger.Info("scenario complete", "playlist", result.PlaylistID, "added", result.Added)
	r.writePlain("\n%s\n", okStyle.Render(fmt.Sprintf("✓ %s complete", name)))
	return r.writeBytes(formatter.ResultToText(result))
}
