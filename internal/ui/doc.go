// Package ui implements the interactive terminal layer.
//
// Two pieces live here:
//
//  1. [PickPlaylist] : a bubbletea list view for browsing and selecting the
//     remote playlist to reconcile, using vim-style bindings (j/k, enter, q).
//  2. [TerminalPrompter] : the [tasks.Prompter] implementation. It renders
//     confirmation gates and numbered candidate menus with lipgloss styling
//     and feeds the operator's index expression through the selection parser.
package ui
