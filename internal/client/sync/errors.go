package sync

import "errors"

var (
	// ErrOffline is returned by SyncNow when there is no connectivity
	ErrOffline = errors.New("offline")

	// ErrSyncInProgress is returned by SyncNow when another pass is running
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrUnauthorized aborts a pass when the server rejects the credentials
	ErrUnauthorized = errors.New("remote rejected credentials")

	// ErrPushInterrupted means push stopped on a transient failure.
	// The failed item and everything after it stay queued.
	ErrPushInterrupted = errors.New("push interrupted by transient failure")

	// ErrUnknownAction marks a queue item the engine cannot replay
	ErrUnknownAction = errors.New("unknown queue action")
)
