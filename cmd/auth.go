package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
	"tunesync/internal/server"
	"tunesync/internal/services"
	"tunesync/internal/shared"
)

const authTimeout = 2 * time.Minute

// AuthLogin runs the browser-based OAuth2 flow and stores the token in the
// config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	remote, err := r.requireRemote()
	if err != nil {
		return err
	}

	oauthSvc, ok := remote.(services.OAuthService)
	if !ok {
		return fmt.Errorf("%w: %s does not support OAuth login", shared.ErrNotImplemented, remote.Name())
	}

	token, err := r.doOAuth(ctx, oauthSvc, config.Credentials.Spotify.RedirectURI)
	if err != nil {
		return err
	}

	oauthSvc.UseToken(ctx, token)

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return err
	}
	if err := shared.SaveConfig(configPath, config); err != nil {
		return err
	}
	r.config = config

	r.logger.Info("token saved", "path", configPath)
	return r.writePlain("✓ Authenticated with %s\n", remote.Name())
}

// AuthStatus reports the stored token state and verifies it against the API.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	if !config.Credentials.Spotify.Authenticated() {
		return r.writePlain("✗ Not authenticated. Run `auth login` first.\n")
	}

	r.writePlain("✓ Token stored")
	if config.Credentials.Spotify.Expiry != "" {
		r.writePlain(" (expires %s)", config.Credentials.Spotify.Expiry)
	}
	r.writePlain("\n")

	remote, err := r.requireRemote()
	if err != nil {
		return err
	}

	spotify, ok := remote.(*services.SpotifyService)
	if !ok {
		return nil
	}

	if err := spotify.Authenticate(ctx, config.Credentials.Spotify.Map()); err != nil {
		return err
	}

	profile, err := spotify.UserProfile(ctx)
	if err != nil {
		return r.writePlain("✗ Token rejected: %v\n", err)
	}

	return r.writePlain("✓ Logged in as %s (%s)\n", profile.DisplayName, profile.ID)
}

// doOAuth executes the OAuth2 authorization flow with a loopback HTTP server.
func (r *Runner) doOAuth(ctx context.Context, oauthSvc services.OAuthService, redirectURI string) (*oauth2.Token, error) {
	state := shared.GenerateID()

	addr, err := listenAddr(redirectURI)
	if err != nil {
		return nil, err
	}

	callback := server.NewCallbackServer(addr, oauthSvc.GetOAuthConfig(), state)
	callback.Start()

	authURL := oauthSvc.GetAuthURL(state)

	r.writePlain("→ Opening browser for %s authorization...\n", oauthSvc.Name())
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%v timeout)...\n", authTimeout)

	return callback.Wait(ctx, authTimeout)
}

// listenAddr extracts the host:port the callback server should bind from the
// configured redirect URI.
func listenAddr(redirectURI string) (string, error) {
	if redirectURI == "" {
		return "localhost:8080", nil
	}

	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: bad redirect_uri: %v", shared.ErrInvalidConfig, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: redirect_uri has no host", shared.ErrInvalidConfig)
	}

	return u.Host, nil
}
