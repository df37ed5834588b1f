package services

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"tunesync/internal/errs"
)

// ShellAdder implements [Adder] by invoking the out-of-band helper script
// with the track title and playlist name as positional arguments.
type ShellAdder struct {
	Script string
}

// NewShellAdder creates a ShellAdder for the given helper script path.
func NewShellAdder(script string) *ShellAdder {
	return &ShellAdder{Script: script}
}

// Add runs the helper. A non-zero exit is reported as a collaborator
// failure; the caller decides whether to surface it, but it is never
// retried here.
func (s *ShellAdder) Add(ctx context.Context, title, playlist string) error {
	if s.Script == "" {
		return fmt.Errorf("%w: no add helper configured", errs.ErrCollaborator)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Script, title, playlist)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s %q %q: %v (%s)", errs.ErrCollaborator, s.Script, title, playlist, err, bytes.TrimSpace(stderr.Bytes()))
	}

	return nil
}
