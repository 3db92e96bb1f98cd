package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// historyAdapter wraps ServiceContainer for type-safe cross-module communication.
type historyAdapter struct {
	container mono.ServiceContainer
}

// NewHistoryAdapter creates a new adapter for history services.
func NewHistoryAdapter(container mono.ServiceContainer) HistoryPort {
	if container == nil {
		panic("history adapter requires non-nil ServiceContainer")
	}
	return &historyAdapter{container: container}
}

// Heatmap fetches a user's completion heatmap via the heatmap service.
func (a *historyAdapter) Heatmap(ctx context.Context, userID, teamID string) (*HeatmapResponse, error) {
	req := HeatmapRequest{UserID: userID, TeamID: teamID}
	var resp HeatmapResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "heatmap", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("heatmap service call failed: %w", err)
	}
	return &resp, nil
}
