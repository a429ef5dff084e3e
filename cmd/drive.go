package main

import (
	"context"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/dailydrive/internal/tasks"
	"github.com/desertthunder/dailydrive/internal/ui"
)

// DriveUpdate rebuilds the target playlist from the source playlist and fresh show episodes.
func (r *Runner) DriveUpdate(ctx context.Context, cmd *cli.Command) error {
	opts := tasks.DriveOptsFromConfig(r.config.Drive)
	if v := cmd.String("source"); v != "" {
		opts.SourcePlaylistID = v
	}
	if v := cmd.String("target"); v != "" {
		opts.TargetPlaylistID = v
	}
	if shows := cmd.StringSlice("show"); len(shows) > 0 {
		opts.Shows = shows
	}
	opts.DryRun = cmd.Bool("dry-run")

	if err := r.requireWebAPI(); err != nil {
		return err
	}

	sess, err := r.session(ctx)
	if err != nil {
		return err
	}

	var recorder tasks.RunRecorder
	if r.runs != nil {
		recorder = r.runs
	} else {
		r.logger.Debug("run history disabled")
	}
	engine := tasks.NewDriveEngine(r.partner, r.webapi, r.webapi, recorder, r.logger)

	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Info(ui.Progress(update))
		}
	}()

	result, err := engine.Update(ctx, sess, opts, progress)
	close(progress)
	wg.Wait()
	if err != nil {
		return err
	}

	return r.writePlain("%s", ui.DriveSummary(result, opts.DryRun))
}
