package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// Auth verifies the saved token, authorizes again when Deezer rejects it and prints the authorized user.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	r.logger.Debug("checking token")

	if err := r.ensureToken(ctx); err != nil {
		return err
	}

	user, err := r.auth.User(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch user: %w", err)
	}

	r.writePlain("%s\n", okStyle.Render("✓ Token is valid"))
	r.writePlain("User: %s (ID: %d)\n", user.Name, user.ID)
	if user.Link != "" {
		r.writePlain("Profile: %s\n", user.Link)
	}
	return nil
}
