package team

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrTeamNotFound indicates the team was not found.
var ErrTeamNotFound = errors.New("team not found")

// Store provides access to team and user storage.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new team store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// UserExists reports whether a user with the given ID exists.
func (s *Store) UserExists(ctx context.Context, userID string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return n > 0, nil
}

// FindTeam retrieves a team by ID.
func (s *Store) FindTeam(ctx context.Context, teamID string) (*Team, error) {
	var t Team
	if err := s.db.WithContext(ctx).First(&t, "id = ?", teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return &t, nil
}

// MemberRole returns userID's role in the team. found is false when the user
// is not a member.
func (s *Store) MemberRole(ctx context.Context, teamID, userID string) (role Role, found bool, err error) {
	t, err := s.FindTeam(ctx, teamID)
	if err != nil {
		return "", false, err
	}
	role, found = t.MemberRole(userID)
	return role, found, nil
}

// Seed inserts demo users and a demo team when the tables are empty. Account
// provisioning is an external concern; the seed keeps a fresh checkout usable.
func (s *Store) Seed(ctx context.Context) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&User{}).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	now := time.Now().UTC()
	users := []User{
		{ID: "user-1", Name: "Alice Johnson", Email: "alice@example.com"},
		{ID: "user-2", Name: "Bob Smith", Email: "bob@example.com"},
		{ID: "user-3", Name: "Charlie Brown", Email: "charlie@example.com"},
	}
	if err := s.db.WithContext(ctx).Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	demo := Team{
		ID:      "team-1",
		Name:    "Demo Team",
		OwnerID: "user-1",
		Members: []Member{
			{UserID: "user-1", Role: RoleOwner, JoinedAt: now},
			{UserID: "user-2", Role: RoleAdmin, JoinedAt: now, InvitedBy: "user-1"},
			{UserID: "user-3", Role: RoleMember, JoinedAt: now, InvitedBy: "user-1"},
		},
	}
	if err := s.db.WithContext(ctx).Create(&demo).Error; err != nil {
		return fmt.Errorf("failed to seed team: %w", err)
	}
	return nil
}
