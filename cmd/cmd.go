// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func loginFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "login-method",
			Usage: "Login method when no cached session works (qr_code, phone)",
		},
		&cli.StringFlag{
			Name:  "phone",
			Usage: "Phone number for the phone login method",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level override (debug, info, warn, error)",
		},
	}
}

// sweepCommand runs the full pipeline: login, scan, confirm, mutate.
func sweepCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Scan liked songs and move VIP-only tracks into the target playlist",
		Flags: append([]cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Preview the sweep without mutating anything",
			},
			&cli.Int64Flag{
				Name:  "playlist-id",
				Usage: "Existing target playlist id (0 means find-or-create by name)",
			},
			&cli.StringFlag{
				Name:  "playlist-name",
				Usage: "Target playlist name for find-or-create",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		}, loginFlags()...),
		Action: r.Sweep,
	}
}

// scanCommand lists VIP-only liked tracks without mutating anything.
func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "List VIP-only tracks in liked songs",
		Flags: append([]cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the VIP track list to a CSV file",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum rows to print (0 prints all)",
				Value: 20,
			},
		}, loginFlags()...),
		Action: r.Scan,
	}
}

// authCommand handles session management
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Session management",
		Commands: []*cli.Command{
			{
				Name:   "qr",
				Usage:  "Log in by scanning a QR code with the mobile app",
				Flags:  append([]cli.Flag{configFlag()}, loginFlags()...),
				Action: r.AuthQR,
			},
			{
				Name:   "phone",
				Usage:  "Log in with a phone number and one-time code",
				Flags:  append([]cli.Flag{configFlag()}, loginFlags()...),
				Action: r.AuthPhone,
			},
			{
				Name:  "import",
				Usage: "Import a session from a browser-copied cURL command",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "File containing the cURL command",
						Required: true,
					},
				},
				Action: r.AuthImport,
			},
			{
				Name:   "status",
				Usage:  "Probe the cached session and print the identity",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// configCommand handles configuration file management
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write an example config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Where to write the config file",
						Value:   "config.toml",
					},
				},
				Action: r.ConfigInit,
			},
		},
	}
}

// tuiCommand runs the sweep with a live progress view.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Run the sweep with a live terminal progress view",
		Flags: append([]cli.Flag{
			configFlag(),
			&cli.Int64Flag{
				Name:  "playlist-id",
				Usage: "Existing target playlist id (0 means find-or-create by name)",
			},
			&cli.StringFlag{
				Name:  "playlist-name",
				Usage: "Target playlist name for find-or-create",
			},
		}, loginFlags()...),
		Action: r.TUI,
	}
}
