package main

import (
	"context"
	"fmt"

	"github.com/ncmkit/vipsweep/internal/auth"
	"github.com/ncmkit/vipsweep/internal/formatter"
	"github.com/ncmkit/vipsweep/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthQR logs in via QR code and caches the session.
func (r *Runner) AuthQR(ctx context.Context, cmd *cli.Command) error {
	return r.authenticate(ctx, cmd, auth.MethodQRCode)
}

// AuthPhone logs in with a phone number and one-time code.
func (r *Runner) AuthPhone(ctx context.Context, cmd *cli.Command) error {
	return r.authenticate(ctx, cmd, auth.MethodPhone)
}

func (r *Runner) authenticate(ctx context.Context, cmd *cli.Command, method string) error {
	cfg, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Auth.LoginMethod = method

	if method == auth.MethodPhone && cfg.Auth.Phone == "" {
		return fmt.Errorf("%w: phone number (--phone or auth.phone)", shared.ErrMissingArgument)
	}

	p, err := r.buildPipeline(cfg)
	if err != nil {
		return err
	}

	profile, err := p.login(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(r.output, "Logged in.")
	formatter.UserTable(r.output, profile)
	return nil
}

// AuthImport seeds the session from a browser-copied cURL command.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	p, err := r.buildPipeline(cfg)
	if err != nil {
		return err
	}

	profile, err := p.auth.ImportFromCurl(ctx, cmd.String("file"))
	if err != nil {
		return err
	}

	fmt.Fprintln(r.output, "Session imported.")
	formatter.UserTable(r.output, profile)
	return nil
}

// AuthStatus probes the cached session and prints the identity behind it.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	p, err := r.buildPipeline(cfg)
	if err != nil {
		return err
	}

	profile, err := p.auth.Status(ctx)
	if err != nil {
		return fmt.Errorf("no usable session: %w", err)
	}

	formatter.UserTable(r.output, profile)
	return nil
}
