package cleanup

import "context"

// RunRequest is the (empty) request for a manual pipeline run.
type RunRequest struct{}

// CleanupPort defines the interface for cleanup operations (hexagonal port).
type CleanupPort interface {
	Run(ctx context.Context) (*Result, error)
}
