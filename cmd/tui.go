package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/dzshuffled/internal/shared"
	"github.com/desertthunder/dzshuffled/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive scenario picker.
//
// The token is checked before the terminal is taken over so a browser authorization can still print to the console.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureToken(ctx); err != nil {
		return err
	}

	logPath := filepath.Join(os.TempDir(), "dzshuffled-tui.log")
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	if err := r.SetLogger(fileLogger); err != nil {
		return err
	}

	if err := ui.Run(ctx, r.dispatcher, r.library); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
