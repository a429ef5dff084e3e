package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/dailydrive/internal/formatter"
	"github.com/desertthunder/dailydrive/internal/models"
	"github.com/desertthunder/dailydrive/internal/shared"
	"github.com/desertthunder/dailydrive/internal/ui"
)

func (r *Runner) requireHistory() error {
	if r.runs == nil {
		return fmt.Errorf("%w: history database missing, run `dailydrive setup database`", shared.ErrServiceUnavailable)
	}
	return nil
}

// HistoryList prints the most recent drive updates.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireHistory(); err != nil {
		return err
	}

	runs, err := r.runs.List(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(runs, true)
	case cmd.Bool("plain") || len(runs) == 0:
		return r.writePlain("%s", formatter.RunsToText(runs))
	default:
		return r.writeLine(ui.RunTable(runs))
	}
}

// HistoryShow prints one run with the URIs it wrote. The argument is a run ID or a sequence number ("7" or "#7").
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireHistory(); err != nil {
		return err
	}

	ref := strings.TrimPrefix(strings.TrimSpace(cmd.StringArg("run")), "#")
	if ref == "" {
		return fmt.Errorf("%w: run id or number", shared.ErrMissingArgument)
	}

	var (
		run *models.Run
		err error
	)
	if seq, convErr := strconv.Atoi(ref); convErr == nil {
		run, err = r.runs.GetBySequence(ctx, seq)
	} else {
		run, err = r.runs.Get(ctx, ref)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(run, true)
	}
	return r.writePlain("%s", formatter.RunToText(run))
}
