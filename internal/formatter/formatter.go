// package formatter renders playlists and drive runs as CSV, Markdown, JSON or plain text.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/dailydrive/internal/models"
	"github.com/desertthunder/dailydrive/internal/shared"
)

// Format names an output format accepted by [Render].
type Format string

const (
	Text     Format = "text"
	JSON     Format = "json"
	Markdown Format = "markdown"
	CSV      Format = "csv"
)

// ParseFormat validates a user-supplied format name. An empty name selects [Text].
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return Text, nil
	case Text, JSON, Markdown, CSV:
		return f, nil
	case "md":
		return Markdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, json, markdown or csv)", shared.ErrInvalidArgument, name)
	}
}

// CSVHeaders are the columns written by [PlaylistToCSV].
var CSVHeaders = []string{"position", "kind", "title", "artists", "album", "duration", "uri", "added_at"}

// Render converts a playlist to the given format.
func Render(playlist *models.Playlist, format Format) ([]byte, error) {
	switch format {
	case Text, "":
		return PlaylistToText(playlist)
	case JSON:
		return shared.MarshalJSON(playlist, true)
	case Markdown:
		return PlaylistToMarkdown(playlist, "")
	case CSV:
		return PlaylistToCSV(playlist)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// Write renders playlist and writes it to w.
func Write(w io.Writer, playlist *models.Playlist, format Format) error {
	data, err := Render(playlist, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s output: %w", format, err)
	}
	return nil
}

func albumName(t models.Track) string {
	if t.Album == nil {
		return ""
	}
	return t.Album.Name
}

// PlaylistToCSV writes one row per playlist item under [CSVHeaders].
func PlaylistToCSV(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(CSVHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, item := range playlist.Tracks {
		track := item.Track
		record := []string{
			strconv.Itoa(i + 1),
			track.Kind.String(),
			track.Name,
			strings.Join(track.ArtistNames(), "; "),
			albumName(track),
			shared.FormatDuration(track.DurationMS),
			track.URI,
			item.AddedAt,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PlaylistToMarkdown renders a playlist document with an optional cover image link.
func PlaylistToMarkdown(playlist *models.Playlist, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", playlist.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if playlist.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", playlist.Description)
	}

	if playlist.Owner != nil && playlist.Owner.Name != "" {
		fmt.Fprintf(&buf, "**Owner**: %s\n", playlist.Owner.Name)
	}
	fmt.Fprintf(&buf, "**Items**: %d\n", len(playlist.Tracks))
	fmt.Fprintf(&buf, "**Followers**: %d\n", playlist.Followers)
	fmt.Fprintf(&buf, "**Visibility**: %s\n\n", shared.VisibilityString(playlist.Public))

	buf.WriteString("## Tracks\n\n")
	for i, item := range playlist.Tracks {
		track := item.Track
		duration := shared.FormatDuration(track.DurationMS)
		if track.IsEpisode() {
			fmt.Fprintf(&buf, "%d. [episode] %s [%s]\n", i+1, track.Name, duration)
			continue
		}
		albumPart := ""
		if name := albumName(track); name != "" {
			albumPart = fmt.Sprintf(" (%s)", name)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, strings.Join(track.ArtistNames(), ", "), track.Name, albumPart, duration)
	}

	return buf.Bytes(), nil
}

// PlaylistToText renders a playlist as a numbered plain text list.
func PlaylistToText(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", playlist.Name)
	if playlist.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", playlist.Description)
	}
	fmt.Fprintf(&buf, "Items: %d\n\n", len(playlist.Tracks))

	for i, item := range playlist.Tracks {
		track := item.Track
		if track.IsEpisode() {
			fmt.Fprintf(&buf, "%d. [episode] %s\n", i+1, track.Name)
			continue
		}
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, strings.Join(track.ArtistNames(), ", "), track.Name)
	}

	return buf.Bytes(), nil
}

// RunToText renders a recorded drive update with its written URIs.
func RunToText(run *models.Run) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Run #%d (%s)\n", run.Sequence, run.ID)
	fmt.Fprintf(&buf, "Created: %s\n", run.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(&buf, "Source: %s\n", run.SourcePlaylistID)
	fmt.Fprintf(&buf, "Target: %s\n", run.TargetPlaylistID)
	fmt.Fprintf(&buf, "Tracks: %d, Episodes: %d\n", run.TrackCount, run.EpisodeCount)
	if run.SnapshotID != "" {
		fmt.Fprintf(&buf, "Snapshot: %s\n", run.SnapshotID)
	}

	if len(run.URIs) > 0 {
		buf.WriteString("\n")
		for i, uri := range run.URIs {
			fmt.Fprintf(&buf, "%3d. %s\n", i+1, uri)
		}
	}

	return buf.Bytes()
}

// RunsToText renders one summary line per run.
func RunsToText(runs []*models.Run) []byte {
	var buf bytes.Buffer
	if len(runs) == 0 {
		buf.WriteString("No runs recorded.\n")
		return buf.Bytes()
	}
	for _, run := range runs {
		fmt.Fprintf(&buf, "#%-4d %s  %s -> %s  %d tracks, %d episodes  %s\n",
			run.Sequence,
			run.CreatedAt.Local().Format(time.DateTime),
			run.SourcePlaylistID,
			run.TargetPlaylistID,
			run.TrackCount,
			run.EpisodeCount,
			run.ID,
		)
	}
	return buf.Bytes()
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty image URL", shared.ErrMissingArgument)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownExportResult contains information about files created by [WriteMarkdownExport]
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport writes {dir}/README.md and, when the playlist has images, {dir}/cover.jpg.
//
// Directory name defaults to the playlist ID. A failed cover download is reported through warn and skipped.
func WriteMarkdownExport(client *http.Client, playlist *models.Playlist, outputDir string, warn func(error)) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = playlist.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	var coverImageFilename string
	if len(playlist.Images) > 0 {
		imageData, err := DownloadImage(client, playlist.Images[0].URL)
		if err == nil {
			coverPath := filepath.Join(outputDir, "cover.jpg")
			if err = os.WriteFile(coverPath, imageData, 0644); err == nil {
				coverImageFilename = "cover.jpg"
				result.CoverImage = coverPath
				result.Files = append(result.Files, coverPath)
			}
		}
		if err != nil && warn != nil {
			warn(err)
		}
	}

	mdData, err := PlaylistToMarkdown(playlist, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}

// WriteFile renders playlist to path. Markdown output is written as a directory export rooted at path.
func WriteFile(client *http.Client, playlist *models.Playlist, format Format, path string, warn func(error)) ([]string, error) {
	if format == Markdown {
		result, err := WriteMarkdownExport(client, playlist, path, warn)
		if err != nil {
			return nil, err
		}
		return result.Files, nil
	}

	data, err := Render(playlist, format)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return []string{path}, nil
}
