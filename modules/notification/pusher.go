package notification

import (
	"context"
	"log"
)

// Push is one device push payload.
type Push struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Pusher delivers pushes to a user's devices. Delivery is best effort; a
// failed or not-ready pusher never blocks the in-app notification record.
type Pusher interface {
	Init() error
	IsReady() bool
	Push(ctx context.Context, userID string, p Push) error
}

// LogPusher is the default Pusher. It writes deliveries to the log, which is
// all a deployment without a push provider needs.
type LogPusher struct {
	ready bool
}

// NewLogPusher creates a LogPusher.
func NewLogPusher() *LogPusher {
	return &LogPusher{}
}

// Init marks the pusher ready.
func (p *LogPusher) Init() error {
	p.ready = true
	return nil
}

// IsReady reports whether Init has run.
func (p *LogPusher) IsReady() bool {
	return p.ready
}

// Push logs the delivery.
func (p *LogPusher) Push(_ context.Context, userID string, push Push) error {
	log.Printf("[notification] Push to %s: %s / %s", userID, push.Title, push.Body)
	return nil
}
