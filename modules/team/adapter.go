package team

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/FahimSaki/Momentum/domain/team"
)

// teamAdapter wraps ServiceContainer for type-safe cross-module communication.
type teamAdapter struct {
	container mono.ServiceContainer
}

// NewTeamAdapter creates a new adapter for team services.
func NewTeamAdapter(container mono.ServiceContainer) TeamPort {
	if container == nil {
		panic("team adapter requires non-nil ServiceContainer")
	}
	return &teamAdapter{container: container}
}

// ValidateUser checks whether a user exists via the validate-user service.
func (a *teamAdapter) ValidateUser(ctx context.Context, userID string) (bool, error) {
	req := ValidateUserRequest{UserID: userID}
	var resp ValidateUserResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "validate-user", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return false, fmt.Errorf("validate-user service call failed: %w", err)
	}
	return resp.Valid, nil
}

// MemberRole looks up a member's role via the member-role service.
func (a *teamAdapter) MemberRole(ctx context.Context, teamID, userID string) (domain.Role, bool, error) {
	req := MemberRoleRequest{TeamID: teamID, UserID: userID}
	var resp MemberRoleResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "member-role", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return "", false, fmt.Errorf("member-role service call failed: %w", err)
	}
	return resp.Role, resp.Member, nil
}

// ListMembers lists a team's member IDs via the list-members service.
func (a *teamAdapter) ListMembers(ctx context.Context, teamID string) ([]string, error) {
	req := ListMembersRequest{TeamID: teamID}
	var resp ListMembersResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-members", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-members service call failed: %w", err)
	}
	return resp.MemberIDs, nil
}
