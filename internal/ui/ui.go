package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/desertthunder/dailydrive/internal/models"
	"github.com/desertthunder/dailydrive/internal/tasks"
)

// Title renders a section heading.
func Title(s string) string { return styles.title.Render(s) }

// Success renders a line prefixed with a check mark.
func Success(format string, args ...any) string {
	return styles.ok.Render("✓ ") + fmt.Sprintf(format, args...)
}

// Failure renders a line prefixed with a cross.
func Failure(format string, args ...any) string {
	return styles.err.Render("✗ ") + fmt.Sprintf(format, args...)
}

// Warning renders a line prefixed with a warning sign.
func Warning(format string, args ...any) string {
	return styles.warn.Render("⚠ " + fmt.Sprintf(format, args...))
}

// Hint renders de-emphasized help text.
func Hint(format string, args ...any) string {
	return styles.help.Render(fmt.Sprintf(format, args...))
}

// Header renders a title between two rules as wide as the title.
func Header(title string) string {
	rule := strings.Repeat("═", max(lipgloss.Width(title), 39))
	return rule + "\n" + Title(title) + "\n" + rule
}

// Progress renders a drive update progress event as "[step/total] message".
func Progress(update tasks.ProgressUpdate) string {
	counter := styles.help.Render(fmt.Sprintf("[%d/%d]", update.Step, update.Total))
	return fmt.Sprintf("%s %s", counter, update.Message)
}

// RunTable renders run history as a bordered table, newest first as given.
func RunTable(runs []*models.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			"#" + strconv.Itoa(run.Sequence),
			run.CreatedAt.Local().Format(time.DateTime),
			run.TargetPlaylistID,
			strconv.Itoa(run.TrackCount),
			strconv.Itoa(run.EpisodeCount),
			run.ID,
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.help).
		Headers("RUN", "CREATED", "TARGET", "TRACKS", "EPISODES", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.title.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}

// DriveSummary describes a finished drive update in a few lines.
func DriveSummary(result *tasks.DriveResult, dryRun bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", Header("Daily Drive"))
	if result.Source != nil {
		fmt.Fprintf(&b, "Source:   %s (%d items)\n", result.Source.Name, len(result.Source.Tracks))
	}
	fmt.Fprintf(&b, "Music:    %d tracks\n", len(result.Tracks))
	fmt.Fprintf(&b, "Episodes: %d\n", len(result.Episodes))
	for _, ep := range result.Episodes {
		fmt.Fprintf(&b, "  • %s %s\n", ep.Name, Hint("(%s)", ep.ReleaseDate.Format(time.DateOnly)))
	}

	switch {
	case dryRun:
		fmt.Fprintf(&b, "%s\n", Warning("dry run: %d items not written", len(result.URIs)))
	case result.Run != nil:
		fmt.Fprintf(&b, "%s\n", Success("wrote %d items to %s (snapshot %s)", len(result.URIs), result.Run.TargetPlaylistID, result.Run.SnapshotID))
	}
	return b.String()
}
