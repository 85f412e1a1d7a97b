// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/phono/internal/formatter"
	"github.com/urfave/cli/v3"
)

// setupCommand creates the config file and the catalog database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the configuration file and initialize the catalog database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
		},
		Action: r.Setup,
	}
}

// songCommand manages the song catalog
func songCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "song",
		Aliases: []string{"songs"},
		Usage:   "Manage catalog songs",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a song by local path or http(s) URL",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Song title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Local file path or http(s) URL",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "author",
						Aliases: []string{"a"},
						Usage:   "Artist",
					},
					&cli.StringFlag{
						Name:  "style",
						Usage: "Genre or style",
					},
				},
				Action: r.SongAdd,
			},
			{
				Name:  "list",
				Usage: "List catalog songs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "author",
						Usage: "Only songs by this artist",
					},
					&cli.StringFlag{
						Name:  "style",
						Usage: "Only songs of this style",
					},
					&cli.BoolFlag{
						Name:  "remote",
						Usage: "Only songs with an http(s) source",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SongList,
			},
			{
				Name:  "show",
				Usage: "Show one song",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.SongShow,
			},
			{
				Name:  "remove",
				Usage: "Remove a song from the catalog",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.SongRemove,
			},
		},
	}
}

// playlistCommand manages playlists and their exports
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage playlists",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an empty playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Playlist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Playlist description",
					},
					&cli.StringFlag{
						Name:  "user",
						Usage: "Owner email",
					},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:  "add",
				Usage: "Append songs to a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "song",
						Aliases:  []string{"s"},
						Usage:    "Song ID (repeatable)",
						Required: true,
					},
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a song from a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "song",
						Aliases:  []string{"s"},
						Usage:    "Song ID",
						Required: true,
					},
				},
				Action: r.PlaylistRemove,
			},
			{
				Name:  "list",
				Usage: "List playlists",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "user",
						Usage: "Only playlists owned by this email",
					},
				},
				Action: r.PlaylistList,
			},
			{
				Name:  "show",
				Usage: "Show a playlist and its songs",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistShow,
			},
			{
				Name:      "export",
				Usage:     "Export playlists to files (all playlists when no ID is given)",
				ArgsUsage: "[ID...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown or txt",
						Value:   formatter.FormatJSON,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: phono_export_{timestamp})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers",
						Value: 4,
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// userCommand manages listeners
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "user",
		Aliases: []string{"users"},
		Usage:   "Manage listeners",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Register a listener",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Display name",
					},
				},
				Action: r.UserAdd,
			},
			{
				Name:   "list",
				Usage:  "List listeners",
				Action: r.UserList,
			},
		},
	}
}

// playCommand starts playback in the now-playing screen or headless
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a playlist or a selection of songs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Playlist ID to load",
			},
			&cli.StringSliceFlag{
				Name:    "song",
				Aliases: []string{"s"},
				Usage:   "Song ID to play as an ad-hoc selection (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "shuffle",
				Usage: "Shuffle the queue (default from player.shuffle)",
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Record recent plays for this email",
			},
			&cli.IntFlag{
				Name:  "volume",
				Usage: "Volume percent, overrides player.volume",
				Value: -1,
			},
			&cli.BoolFlag{
				Name:  "headless",
				Usage: "Print progress instead of opening the now-playing screen",
			},
		},
		Action: r.Play,
	}
}

// cacheCommand inspects and warms the remote media cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and warm the remote media cache",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List cached songs",
				Action: r.CacheList,
			},
			{
				Name:      "warm",
				Usage:     "Download remote songs ahead of playback (every remote song when no playlist is given)",
				ArgsUsage: "[PLAYLIST_ID...]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent downloads (default: cache.workers)",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Downloads started per second (default: cache.requests_per_second)",
						Value: -1,
					},
				},
				Action: r.CacheWarm,
			},
			{
				Name:   "clear",
				Usage:  "Delete every cached file",
				Action: r.CacheClear,
			},
		},
	}
}

// recentCommand lists recently played songs
func recentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "Show recently played songs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Listener email (anonymous plays when omitted)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of plays to show",
				Value: 20,
			},
		},
		Action: r.Recent,
	}
}
