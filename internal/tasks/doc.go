// Package tasks orchestrates playlist reconciliation between a remote
// streaming catalog and the local media library, with real-time progress
// reporting.
//
// # Core Operations
//
// A run works in three stages:
//
//  1. [Diff] : Coarse structural diff of the two playlist snapshots
//     - Exact, case-sensitive title-set comparison
//     - Produces the to-add and to-remove sets
//
//  2. [Planner.Plan] : Fine reconciliation of the diff's output
//     - To-add entries probed against the full library with the
//       exact-then-fuzzy "<title> - <artist>" scan
//     - To-remove entries matched library-wide with the weighted
//       multi-field score; multiple accepted candidates always require an
//       explicit external selection
//
//  3. [Engine.Run] : Applies the plan through the owning collaborators
//     - Adds routed through the out-of-band playlist helper
//     - Playlist removal and library deletion as independent sequential
//       steps, each behind the confirmation gate
//     - Partial failures counted, never escalated to abort the run
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and
// optional data for advanced UI rendering. Updates use select with default
// to prevent blocking.
//
// # Implementation
//
// [Engine] implements [SyncEngine] with dependencies on:
//   - [services.RemoteSource] : the streaming catalog (Spotify)
//   - [services.LocalSource] : the media-library scripting bridge
//   - [services.Adder] : the shell-level playlist add helper
//   - [Prompter] : confirmation and candidate-selection strategy
//   - [Auditor] : optional destructive-action audit log
package tasks
