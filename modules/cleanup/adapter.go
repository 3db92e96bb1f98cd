package cleanup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// cleanupAdapter wraps ServiceContainer for type-safe cross-module communication.
type cleanupAdapter struct {
	container mono.ServiceContainer
}

// NewCleanupAdapter creates a new adapter for cleanup services.
func NewCleanupAdapter(container mono.ServiceContainer) CleanupPort {
	if container == nil {
		panic("cleanup adapter requires non-nil ServiceContainer")
	}
	return &cleanupAdapter{container: container}
}

// Run triggers a pipeline run via the run service. Errors cross the service
// boundary as strings, so the busy sentinel is restored by message match.
func (a *cleanupAdapter) Run(ctx context.Context) (*Result, error) {
	req := RunRequest{}
	var resp Result
	if err := helper.CallRequestReplyService(
		ctx, a.container, "run", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		if strings.Contains(err.Error(), ErrPipelineRunning.Error()) {
			return nil, ErrPipelineRunning
		}
		return nil, fmt.Errorf("run service call failed: %w", err)
	}
	return &resp, nil
}
