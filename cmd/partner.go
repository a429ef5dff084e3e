package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/dailydrive/internal/formatter"
	"github.com/desertthunder/dailydrive/internal/models"
	"github.com/desertthunder/dailydrive/internal/shared"
	"github.com/desertthunder/dailydrive/internal/ui"
)

// PartnerPlaylist fetches a whole playlist through the partner API and prints or saves it.
func (r *Runner) PartnerPlaylist(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if id == "" {
		id = r.config.Drive.SourcePlaylistID
	}
	if id == "" {
		return fmt.Errorf("%w: --id or drive.source_playlist_id", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	sess, err := r.session(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("fetching playlist", "id", id)
	var playlist *models.Playlist
	err = r.spin(ctx, "Fetching playlist...", func(ctx context.Context) error {
		var err error
		playlist, err = r.partner.Playlist(ctx, sess, id)
		return err
	})
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		files, err := formatter.WriteFile(r.httpClient, playlist, format, output, func(err error) {
			r.logger.Warn("failed to save cover image", "error", err)
		})
		if err != nil {
			return err
		}
		for _, f := range files {
			r.writeLine(ui.Success("Wrote %s", f))
		}
		return nil
	}

	return formatter.Write(r.output, playlist, format)
}

// PartnerProfile prints the signed-in user's profile.
func (r *Runner) PartnerProfile(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.session(ctx)
	if err != nil {
		return err
	}

	profile := r.partner.Profile(ctx, sess)
	if profile == nil {
		return fmt.Errorf("%w: profile unavailable (anonymous session or malformed response)", shared.ErrNotAuthenticated)
	}
	return r.writeJSON(profile, cmd.Bool("pretty"))
}

// PartnerAccount prints the account's plan and market attributes.
func (r *Runner) PartnerAccount(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.session(ctx)
	if err != nil {
		return err
	}

	attrs := r.partner.AccountAttributes(ctx, sess)
	if attrs == nil {
		return fmt.Errorf("%w: account attributes unavailable (anonymous session or malformed response)", shared.ErrNotAuthenticated)
	}
	return r.writeJSON(attrs, cmd.Bool("pretty"))
}
