package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/ncmkit/vipsweep/internal/auth"
	"github.com/ncmkit/vipsweep/internal/models"
	"github.com/ncmkit/vipsweep/internal/mutator"
	"github.com/ncmkit/vipsweep/internal/netease"
	"github.com/ncmkit/vipsweep/internal/scanner"
	"github.com/ncmkit/vipsweep/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	logger *log.Logger
	output io.Writer
	input  io.Reader

	// logWriter is the base destination for run logs, normally stderr.
	// The TUI points it at a file so the alternate screen stays clean.
	logWriter io.Writer

	// newClient is swapped in tests to avoid real network clients.
	newClient func(cfg shared.APIConfig, logger *log.Logger) (apiClient, error)
}

// apiClient is the full client surface the pipeline consumes.
type apiClient interface {
	auth.API
	scanner.API
	mutator.API
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger *log.Logger
	Output io.Writer
	Input  io.Reader
}

// NewRunner creates a new Runner with the provided dependencies.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		logger:    opts.Logger,
		output:    opts.Output,
		input:     opts.Input,
		logWriter: os.Stderr,
		newClient: func(cfg shared.APIConfig, logger *log.Logger) (apiClient, error) {
			return netease.NewClient(cfg, logger)
		},
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		sweepCommand, scanCommand, authCommand, configCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// resolveConfig loads the config file named by --config (built-in defaults
// when it does not exist, which is tolerated) and applies flag and
// environment overrides.
func (r *Runner) resolveConfig(cmd *cli.Command) (*shared.Config, error) {
	path := cmd.String("config")
	cfg := shared.DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		loaded, err := shared.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	if phone := os.Getenv("VIPSWEEP_PHONE"); phone != "" && cfg.Auth.Phone == "" {
		cfg.Auth.Phone = phone
	}
	if cache := os.Getenv("VIPSWEEP_CACHE_FILE"); cache != "" {
		cfg.Auth.CacheFile = cache
	}

	if cmd.IsSet("login-method") {
		cfg.Auth.LoginMethod = cmd.String("login-method")
	}
	if cmd.IsSet("phone") {
		cfg.Auth.Phone = cmd.String("phone")
	}
	if cmd.IsSet("playlist-id") {
		cfg.Playlist.VIPPlaylistID = cmd.Int64("playlist-id")
	}
	if cmd.IsSet("playlist-name") {
		cfg.Playlist.VIPPlaylistName = cmd.String("playlist-name")
	}
	if cmd.IsSet("dry-run") {
		cfg.Settings.DryRun = cmd.Bool("dry-run")
	}
	if cmd.IsSet("log-level") {
		cfg.Logging.Level = cmd.String("log-level")
	}

	return cfg, nil
}

// setupLogger applies the configured level, attaches a run correlation id,
// and tees output into a log file when logging.save_to_file is set.
func (r *Runner) setupLogger(cfg *shared.Config) *log.Logger {
	w := r.logWriter
	if cfg.Logging.SaveToFile {
		if f, path, err := shared.OpenLogFile(""); err == nil {
			w = io.MultiWriter(w, f)
			r.logger.Debug("logging to file", "path", path)
		} else {
			r.logger.Warn("could not open log file", "err", err)
		}
	}

	logger := shared.NewLogger(w)
	if err := shared.SetLogLevel(logger, cfg.Logging.Level); err != nil {
		logger.Warn("invalid log level, using info", "level", cfg.Logging.Level)
	}

	return shared.WithLogger(logger, "run", shared.GenerateID()[:8])
}

// pipeline bundles the constructed collaborators for one run.
type pipeline struct {
	client  apiClient
	auth    *auth.Authenticator
	scanner *scanner.Scanner
	retry   shared.RetryPolicy
	logger  *log.Logger
}

// buildPipeline wires client, authenticator, and scanner from config. The
// mutator is built later, once the authenticated user id is known.
func (r *Runner) buildPipeline(cfg *shared.Config) (*pipeline, error) {
	logger := r.setupLogger(cfg)

	client, err := r.newClient(cfg.API, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	store := auth.NewSessionStore(cfg.Auth.CacheFile)
	authenticator := auth.NewAuthenticator(auth.Opts{
		Client:      client,
		Store:       store,
		Logger:      logger,
		Output:      r.output,
		Input:       r.input,
		OpenBrowser: cfg.Auth.OpenBrowser,
	})

	retry := shared.PolicyFromConfig(cfg.Retry)

	return &pipeline{
		client:  client,
		auth:    authenticator,
		scanner: scanner.NewScanner(client, logger, retry),
		retry:   retry,
		logger:  logger,
	}, nil
}

// newMutator builds the mutator acting as the authenticated user.
func (p *pipeline) newMutator(cfg *shared.Config, userID int64) *mutator.Mutator {
	return mutator.NewMutator(p.client, userID, p.logger, mutator.ConfigFrom(cfg.Settings, cfg.Pacing), p.retry)
}

// login runs the configured authentication flow and returns the identity.
func (p *pipeline) login(ctx context.Context, cfg *shared.Config) (*models.UserProfile, error) {
	return p.auth.Login(ctx, cfg.Auth.LoginMethod, cfg.Auth.Phone)
}
