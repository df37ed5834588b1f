package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"tunesync/internal/services"
	"tunesync/internal/shared"
)

// pickerModel is a single-view bubbletea model that lets the operator browse
// remote playlists and select the one to reconcile.
type pickerModel struct {
	list   list.Model
	keys   keyMap
	chosen *services.Playlist
}

func newPickerModel(playlists []services.Playlist) pickerModel {
	l := list.New(playlistItems(playlists), list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select a playlist to sync"
	l.SetShowStatusBar(false)

	return pickerModel{list: l, keys: newKeyMap()}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.list.SelectedItem().(playlistItem); ok {
				pl := item.playlist
				m.chosen = &pl
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return m.list.View()
}

// PickPlaylist runs the interactive playlist picker and returns the chosen
// playlist. Returns ErrPlaylistNotFound when the operator quits without
// selecting.
func PickPlaylist(playlists []services.Playlist) (*services.Playlist, error) {
	if len(playlists) == 0 {
		return nil, fmt.Errorf("%w: no playlists to choose from", shared.ErrPlaylistNotFound)
	}

	program := tea.NewProgram(newPickerModel(playlists), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("playlist picker failed: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || m.chosen == nil {
		return nil, fmt.Errorf("%w: no playlist selected", shared.ErrPlaylistNotFound)
	}

	return m.chosen, nil
}
