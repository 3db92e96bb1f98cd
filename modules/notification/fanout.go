package notification

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	domain "github.com/FahimSaki/Momentum/domain/notification"
)

const (
	fanoutConcurrency = 8
	pushTimeout       = 5 * time.Second
)

// fanout persists an in-app notification per recipient and pushes to each
// recipient's devices with bounded concurrency. All recipients are attempted
// even when some fail; failures are collected and logged, never returned, so
// notification trouble cannot fail the triggering operation.
func (m *NotificationModule) fanout(ctx context.Context, recipients []string, n domain.Notification) {
	var (
		mu       sync.Mutex
		failures []string
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fanoutConcurrency)

	for _, recipient := range recipients {
		g.Go(func() error {
			record := n
			record.ID = uuid.New().String()
			record.RecipientID = recipient

			if err := m.store.Create(ctx, &record); err != nil {
				log.Printf("[notification] Failed to persist notification for %s: %v", recipient, err)
				mu.Lock()
				failures = append(failures, recipient)
				mu.Unlock()
				return nil
			}

			if !m.pusher.IsReady() {
				return nil
			}

			pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
			defer cancel()
			err := m.pusher.Push(pushCtx, recipient, Push{
				Title: n.Title,
				Body:  n.Message,
				Data:  map[string]string{"task_id": n.TaskID, "type": string(n.Type)},
			})
			if err != nil {
				log.Printf("[notification] Push delivery failed for %s: %v", recipient, err)
			}
			return nil
		})
	}

	_ = g.Wait()

	if len(failures) > 0 {
		log.Printf("[notification] Fan-out finished with %d/%d failures: %v",
			len(failures), len(recipients), failures)
	}
}

// excluding filters id out of recipients. Actors never get notified about
// their own actions.
func excluding(recipients []string, id string) []string {
	out := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r != id {
			out = append(out, r)
		}
	}
	return out
}
