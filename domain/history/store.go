package history

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store provides access to completion-history storage.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new history store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// MergeDays unions days into the record for (userID, taskName), creating the
// record lazily on first merge. The operation is idempotent: recording the
// same date twice never creates a duplicate.
func (s *Store) MergeDays(ctx context.Context, userID, taskName, teamID string, days []time.Time) error {
	if len(days) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec Record
		err := tx.Where("user_id = ? AND task_name = ?", userID, taskName).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = Record{
				ID:       uuid.New().String(),
				UserID:   userID,
				TaskName: taskName,
				TeamID:   teamID,
			}
			rec.MergeDays(days)
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("failed to create history record: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load history record: %w", err)
		}

		rec.MergeDays(days)
		if rec.TeamID == "" {
			rec.TeamID = teamID
		}
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to update history record: %w", err)
		}
		return nil
	})
}

// Preserve merges days into the history record of every assignee. Per-assignee
// failures are logged and collected but never stop the remaining merges; the
// joined error is returned so callers can surface it without treating it as
// fatal.
func (s *Store) Preserve(ctx context.Context, assignees []string, taskName, teamID string, days []time.Time) error {
	if len(days) == 0 {
		return nil
	}

	var errs []error
	for _, userID := range assignees {
		if err := s.MergeDays(ctx, userID, taskName, teamID, days); err != nil {
			log.Printf("[history] Failed to preserve %q for user %s: %v", taskName, userID, err)
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
		}
	}
	return errors.Join(errs...)
}

// FindByUser retrieves a user's history records, most recent first.
func (s *Store) FindByUser(ctx context.Context, userID string) ([]*Record, error) {
	var records []*Record
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return records, nil
}

// FindByTeam retrieves history records tagged with a team.
func (s *Store) FindByTeam(ctx context.Context, teamID string) ([]*Record, error) {
	var records []*Record
	err := s.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list team history: %w", err)
	}
	return records, nil
}
