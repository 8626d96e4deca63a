package journal

import "errors"

// Sentinel errors shared across the store, adapters and the orchestrator.
// Callers match with errors.Is; producers wrap with fmt.Errorf("...: %w", err).
var (
	// ErrNotFound reports that a referenced record is absent from the store.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable reports that the persistence backend is
	// inaccessible. Fatal for the attempted operation; never retried.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrMissingCredential reports that neither a provider API key nor an
	// active subscription session is available. Raised synchronously before
	// any network call.
	ErrMissingCredential = errors.New("no API key configured and no active subscription")

	// ErrUnknownLens reports a lens identifier with no registered template.
	ErrUnknownLens = errors.New("unknown lens")

	// ErrStreamActive reports an interpret or follow-up call while a stream
	// is already in flight on the same session.
	ErrStreamActive = errors.New("interpretation already in progress")
)
