package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/dailydrive/internal/server"
	"github.com/desertthunder/dailydrive/internal/services"
	"github.com/desertthunder/dailydrive/internal/shared"
	"github.com/desertthunder/dailydrive/internal/ui"
)

const authTimeout = 2 * time.Minute

// AuthLogin runs the Web API authorization code flow and saves the tokens to the config file.
//
// Starts a local HTTP server on the redirect address, opens the browser for consent and waits for the callback.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	conf, err := services.NewOAuthConfig(creds)
	if err != nil {
		return err
	}

	callbackPath := "/callback"
	if u, err := url.Parse(creds.RedirectURI); err == nil && u.Path != "" {
		callbackPath = u.Path
	}

	state, err := shared.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state token: %w", err)
	}

	handler := server.NewOAuthHandler(conf, state, callbackPath)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	addr := r.config.Server.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	serveCtx, stop := context.WithCancel(ctx)
	defer stop()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(serveCtx, ln, router)
	}()
	r.logger.Debug("callback server listening", "addr", addr, "path", callbackPath)

	authURL := handler.AuthCodeURL()
	r.writeLine(ui.Hint("→ Opening browser for Spotify authorization..."))
	if !cmd.Bool("no-browser") {
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("failed to open browser automatically", "error", err)
			r.writeLine(ui.Warning("Could not open browser automatically."))
		}
	}
	r.writePlain("Open this URL if the browser did not start:\n%s\n\n", authURL)

	waitCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()
	token, err := handler.Wait(waitCtx)

	stop()
	if shutdownErr := <-serveErr; shutdownErr != nil {
		r.logger.Warn("error shutting down callback server", "error", shutdownErr)
	}
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	r.config.Credentials.Spotify.Update(token)
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writeLine(ui.Success("Authorization successful"))
	r.writeLine(ui.Success("Tokens saved to %s", r.configPath))
	return nil
}

// AuthStatus checks both credentials: the partner session from cookies and the saved Web API token.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.writeLine(ui.Header("Authentication"))

	healthy := true

	if cookieFile := r.config.Partner.CookieFile; cookieFile != "" {
		if _, err := os.Stat(cookieFile); err != nil {
			r.writeLine(ui.Warning("Cookie file %s not found", cookieFile))
		}
	}

	sess, err := r.session(ctx)
	switch {
	case err != nil:
		healthy = false
		r.writeLine(ui.Failure("Partner API: %v", err))
	default:
		if profile := r.partner.Profile(ctx, sess); profile != nil && profile.Name != "" {
			r.writeLine(ui.Success("Partner API: signed in as %s", profile.Name))
		} else {
			r.writeLine(ui.Success("Partner API: anonymous session"))
		}
	}

	if err := r.requireWebAPI(); err != nil {
		healthy = false
		r.writeLine(ui.Failure("Web API: not logged in (run `dailydrive auth login`)"))
	} else if user, err := r.webapi.CurrentUser(ctx); err != nil {
		healthy = false
		r.writeLine(ui.Failure("Web API: %v", err))
	} else {
		r.writeLine(ui.Success("Web API: authorized as %s", user))
	}

	if !healthy {
		return fmt.Errorf("%w: one or more credentials are not usable", shared.ErrNotAuthenticated)
	}
	return nil
}
