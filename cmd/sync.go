package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"tunesync/internal/formatter"
	"tunesync/internal/shared"
	"tunesync/internal/tasks"
	"tunesync/internal/ui"
)

// Sync reconciles a named local playlist and library against its remote
// counterpart.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	playlist := strings.TrimSpace(cmd.StringArg("playlist"))
	if playlist == "" {
		return fmt.Errorf("%w: expected a playlist name", shared.ErrMalformedInput)
	}

	remote, err := r.requireRemote()
	if err != nil {
		return err
	}

	if err := remote.Authenticate(ctx, r.config.Credentials.Spotify.Map()); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}

	prompter := ui.NewTerminalPrompter(r.input, r.output, r.logger)
	prompter.AssumeYes = cmd.Bool("yes")

	var audit tasks.Auditor
	if r.audit != nil {
		audit = r.audit
	}

	engine := tasks.NewEngine(tasks.EngineOpts{
		Remote:   remote,
		Local:    r.local,
		Adder:    r.adder,
		Prompter: prompter,
		Audit:    audit,
		Weights:  r.config.Matching,
		Logger:   r.logger,
	})

	r.logger.Info("sync requested", "playlist", playlist, "dry_run", cmd.Bool("dry-run"))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			r.writePlain("→ %s\n", update.Message)
		}
	}()

	result, err := engine.Run(ctx, progressCh, playlist, tasks.RunOpts{DryRun: cmd.Bool("dry-run")})

	// The drain goroutine shares r.output with the report below; wait for
	// it to finish before writing anything else.
	close(progressCh)
	<-drained

	if err != nil {
		return err
	}

	return r.writeReport(cmd, result)
}

// writeReport renders a run result in the requested format, to stdout or to
// the file named by --output.
func (r *Runner) writeReport(cmd *cli.Command, result *tasks.RunResult) error {
	var data []byte
	var err error

	switch format := cmd.String("format"); format {
	case "", "text":
		data = formatter.ReportToText(result)
	case "markdown", "md":
		data = formatter.ReportToMarkdown(result)
	case "csv":
		data, err = formatter.ReportToCSV(result)
		if err != nil {
			return fmt.Errorf("failed to render CSV report: %w", err)
		}
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}

	if outputFile := cmd.String("output"); outputFile != "" {
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return r.writePlain("✓ Report written to %s\n", outputFile)
	}

	_, err = r.output.Write(data)
	return err
}
