package team

import (
	"context"

	domain "github.com/FahimSaki/Momentum/domain/team"
)

// ValidateUserRequest is the request for validating a user.
type ValidateUserRequest struct {
	UserID string `json:"user_id"`
}

// ValidateUserResponse is the response for validating a user.
type ValidateUserResponse struct {
	Valid bool `json:"valid"`
}

// MemberRoleRequest is the request for looking up a member's role.
type MemberRoleRequest struct {
	TeamID string `json:"team_id"`
	UserID string `json:"user_id"`
}

// MemberRoleResponse is the response for a role lookup.
type MemberRoleResponse struct {
	Role   domain.Role `json:"role,omitempty"`
	Member bool        `json:"member"`
}

// ListMembersRequest is the request for listing a team's members.
type ListMembersRequest struct {
	TeamID string `json:"team_id"`
}

// ListMembersResponse is the response for listing a team's members.
type ListMembersResponse struct {
	MemberIDs []string `json:"member_ids"`
}

// TeamPort defines the membership lookups the task core consumes for
// authorization (hexagonal port).
type TeamPort interface {
	ValidateUser(ctx context.Context, userID string) (bool, error)
	MemberRole(ctx context.Context, teamID, userID string) (domain.Role, bool, error)
	ListMembers(ctx context.Context, teamID string) ([]string, error)
}
