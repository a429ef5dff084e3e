// Package tasks rebuilds a personal copy of the Daily Drive playlist.
//
// # Drive Update
//
// [DriveEngine.Update] runs the whole pipeline:
//
//  1. Fetches the source playlist through the partner API ([PlaylistFetcher])
//  2. Keeps its music tracks ([MusicTracks])
//  3. Lists each configured show's newest episodes ([EpisodeSource]) and keeps the fresh ones ([RecentEpisodes])
//  4. Inserts episodes at positions 0, 5, 11, ... ([Interleave])
//  5. Replaces the target playlist ([PlaylistWriter]) and records the run ([RunRecorder])
//
// A dry run stops after step 4.
//
// # Progress Reporting
//
// Updates are sent on an optional channel with select/default so a slow reader never blocks the run.
package tasks
