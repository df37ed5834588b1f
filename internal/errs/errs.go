// package errs defines the sentinel error values the rest of the module
// classifies failures with via [errors.Is]. It imports nothing internal, so
// any layer can wrap these sentinels without pulling in another layer.
package errs

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Catalog and collaborator errors
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrCollaborator     = fmt.Errorf("collaborator call failed")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrTrackNotFound    = fmt.Errorf("track not found")

	// Input validation errors
	ErrMalformedInput = fmt.Errorf("malformed input")
	ErrOutOfRange     = fmt.Errorf("selection out of range")
	ErrInvalidFlag    = fmt.Errorf("invalid flag value")
)
