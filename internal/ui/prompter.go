package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"tunesync/internal/match"
	"tunesync/internal/selection"
	"tunesync/internal/services"
	"tunesync/internal/shared"
)

// TerminalPrompter implements the engine's confirmation and candidate-menu
// strategy over plain line-oriented terminal I/O.
type TerminalPrompter struct {
	in     *bufio.Scanner
	out    io.Writer
	logger *log.Logger
	// AssumeYes answers every confirmation affirmatively; candidate menus
	// still require an explicit selection and are never auto-picked.
	AssumeYes bool
}

// NewTerminalPrompter creates a prompter reading from in and writing to out.
func NewTerminalPrompter(in io.Reader, out io.Writer, logger *log.Logger) *TerminalPrompter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TerminalPrompter{
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
}

// ConfirmAdd gates inserting a track into the local playlist.
func (p *TerminalPrompter) ConfirmAdd(track services.Track, playlist string) bool {
	return p.confirm(fmt.Sprintf("Add %q to playlist %q?", track.Title, playlist))
}

// ConfirmRemove gates processing a track that is no longer in the remote
// playlist.
func (p *TerminalPrompter) ConfirmRemove(track services.Track, playlist string) bool {
	return p.confirm(fmt.Sprintf("%q is no longer in the remote playlist. Remove it from %q?", track.Title, playlist))
}

// ConfirmDelete gates the deletion of one concrete library track.
func (p *TerminalPrompter) ConfirmDelete(cand match.Candidate) bool {
	return p.confirm(fmt.Sprintf(
		"%s Delete %q by %q (%s) from the library?",
		styles.warn.Render(fmt.Sprintf("[score %d]", cand.Score)),
		cand.Track.Title, cand.Track.Artist, cand.Track.Album,
	))
}

// ChooseCandidates renders a numbered candidate menu and parses the
// operator's selection expression. Invalid tokens are reported and skipped;
// an empty selection skips the entry.
func (p *TerminalPrompter) ChooseCandidates(track services.Track, cands []match.Candidate) []int {
	fmt.Fprintln(p.out, styles.title.Render(fmt.Sprintf("Multiple library matches for %q:", track.Title)))
	for i, cand := range cands {
		fmt.Fprintf(p.out, "%d. %s - %s (%s) [score %d, %s]\n",
			i+1, cand.Track.Artist, cand.Track.Title, cand.Track.Album,
			cand.Score, shared.FormatDuration(cand.Track.Duration))
	}
	fmt.Fprint(p.out, styles.help.Render("Select tracks to delete (e.g. 1,3-4), empty to skip: "))

	if !p.in.Scan() {
		return nil
	}

	indices, skipped := selection.Parse(p.in.Text(), len(cands))
	for _, err := range skipped {
		fmt.Fprintln(p.out, styles.err.Render(err.Error()))
	}

	return indices
}

func (p *TerminalPrompter) confirm(prompt string) bool {
	if p.AssumeYes {
		p.logger.Debug("auto-confirmed", "prompt", prompt)
		return true
	}

	fmt.Fprintf(p.out, "%s (yes/no): ", prompt)
	if !p.in.Scan() {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(p.in.Text()))
	return answer == "yes" || answer == "y"
}
