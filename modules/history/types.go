package history

import (
	"context"
	"time"
)

// HeatmapRequest is the request for a user's completion heatmap.
type HeatmapRequest struct {
	UserID string `json:"user_id"`
	TeamID string `json:"team_id,omitempty"`
}

// HeatmapEntry is one calendar day with its completion count.
type HeatmapEntry struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// HeatmapResponse is the response for the heatmap service. Entries are sorted
// by day ascending. Cached reports whether the response was served from the
// cache layer.
type HeatmapResponse struct {
	UserID  string         `json:"user_id"`
	Entries []HeatmapEntry `json:"entries"`
	Cached  bool           `json:"cached"`
}

// HistoryPort defines the interface for history operations (hexagonal port).
type HistoryPort interface {
	Heatmap(ctx context.Context, userID, teamID string) (*HeatmapResponse, error)
}
