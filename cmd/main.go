package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"tunesync/internal/repositories"
	"tunesync/internal/services"
	"tunesync/internal/shared"
)

// loadConfigOrDefault loads the config file when present. A malformed file
// is reported and the defaults are used so read-only commands still work.
func loadConfigOrDefault(path string, logger *log.Logger) *shared.Config {
	if _, err := os.Stat(path); err != nil {
		return shared.DefaultConfig()
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		logger.Warn("config file unreadable, using defaults", "path", path, "error", err)
		return shared.DefaultConfig()
	}

	return config
}

// newRemote builds the Spotify client when credentials are configured.
// Commands that need it surface a uniform error when it is absent.
func newRemote(config *shared.Config, logger *log.Logger) services.RemoteSource {
	spotify := config.Credentials.Spotify
	if spotify.ClientID == "" || spotify.ClientSecret == "" {
		return nil
	}

	svc, err := services.NewSpotifyService(spotify.Map())
	if err != nil {
		logger.Warn("spotify client unavailable", "error", err)
		return nil
	}

	return svc
}

func main() {
	logger := shared.NewLogger(nil)

	config := loadConfigOrDefault("config.toml", logger)
	remote := newRemote(config, logger)

	osascript := config.Bridge.OsascriptBin
	if osascript == "" {
		osascript = "osascript"
	}
	local := services.NewAppleMusicService(osascript)

	var adder services.Adder
	if config.Bridge.AddScript != "" {
		adder = services.NewShellAdder(config.Bridge.AddScript)
	}

	var audit *repositories.AuditLog
	if config.Audit.Path != "" {
		if _, err := os.Stat(config.Audit.Path); err == nil {
			if db, err := shared.NewDatabase(config.Audit.Path); err == nil {
				shared.ConfigureDatabase(db, config.Audit.MaxOpenConns, config.Audit.MaxIdleConns)
				audit = repositories.NewAuditLog(db)
			} else {
				logger.Warn("audit database unavailable", "path", config.Audit.Path, "error", err)
			}
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Remote: remote,
		Local:  local,
		Adder:  adder,
		Audit:  audit,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "tunesync",
		Usage:    "Reconcile a local music library against a streaming playlist",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
