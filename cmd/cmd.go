// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles configuration and database initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and history database",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config file to --config",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the history database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles Web API authorization and credential checks.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize the Web API and check credentials",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize with Spotify using OAuth2 and save tokens to the config file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check the partner session and the Web API token",
				Action: r.AuthStatus,
			},
		},
	}
}

// partnerCommand handles reads through the web player's partner API.
func partnerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "partner",
		Aliases: []string{"p"},
		Usage:   "Read playlists and account data through the partner API",
		Commands: []*cli.Command{
			{
				Name:  "playlist",
				Usage: "Fetch every item of a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Playlist ID (defaults to drive.source_playlist_id)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, json, markdown or csv",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (a directory for markdown)",
					},
				},
				Action: r.PartnerPlaylist,
			},
			{
				Name:  "profile",
				Usage: "Show the signed-in user's profile",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.PartnerProfile,
			},
			{
				Name:  "account",
				Usage: "Show the account's plan and market attributes",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.PartnerAccount,
			},
		},
	}
}

// driveCommand rebuilds the personal Daily Drive.
func driveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "drive",
		Usage: "Rebuild your Daily Drive playlist",
		Commands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Interleave fresh show episodes into the source playlist's music and write the target",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Usage: "Source playlist ID (defaults to drive.source_playlist_id)",
					},
					&cli.StringFlag{
						Name:  "target",
						Usage: "Target playlist ID (defaults to drive.target_playlist_id)",
					},
					&cli.StringSliceFlag{
						Name:  "show",
						Usage: "Show ID to pull episodes from, repeatable (defaults to drive.shows)",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Build the playlist without writing it",
					},
				},
				Action: r.DriveUpdate,
			},
		},
	}
}

// historyCommand reads the run history.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect past drive updates",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent runs, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "plain",
						Usage: "One line per run instead of a table",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a run and the items it wrote",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "run",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}
