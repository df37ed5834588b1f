package shared

import "tunesync/internal/errs"

// Sentinel errors, re-exported from [errs] so call sites above the service
// layer keep a single import. Each alias is the same value, so errors.Is
// matches across either name.
var (
	ErrNotImplemented = errs.ErrNotImplemented

	// Configuration errors
	ErrMissingConfig      = errs.ErrMissingConfig
	ErrInvalidConfig      = errs.ErrInvalidConfig
	ErrMissingCredentials = errs.ErrMissingCredentials

	// Authentication errors
	ErrAuthFailed       = errs.ErrAuthFailed
	ErrNotAuthenticated = errs.ErrNotAuthenticated
	ErrTimeout          = errs.ErrTimeout

	// Catalog and collaborator errors
	ErrAPIRequest       = errs.ErrAPIRequest
	ErrCollaborator     = errs.ErrCollaborator
	ErrPlaylistNotFound = errs.ErrPlaylistNotFound
	ErrTrackNotFound    = errs.ErrTrackNotFound

	// Input validation errors
	ErrMalformedInput = errs.ErrMalformedInput
	ErrOutOfRange     = errs.ErrOutOfRange
	ErrInvalidFlag    = errs.ErrInvalidFlag
)
