// Package team exposes membership lookups as request-reply services. It is
// the collaborator boundary for everything this service does not own: account
// provisioning, invitations and role management happen elsewhere.
package team

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/FahimSaki/Momentum/domain/team"
)

// TeamModule provides team membership services.
type TeamModule struct {
	store *domain.Store
}

// Compile-time interface checks.
var _ mono.Module = (*TeamModule)(nil)
var _ mono.ServiceProviderModule = (*TeamModule)(nil)

// NewModule creates a new TeamModule backed by the shared store.
func NewModule(store *domain.Store) *TeamModule {
	return &TeamModule{store: store}
}

// Name returns the module name.
func (m *TeamModule) Name() string {
	return "team"
}

// RegisterServices registers request-reply services in the service container.
func (m *TeamModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-user", json.Unmarshal, json.Marshal, m.validateUser,
	); err != nil {
		return fmt.Errorf("failed to register validate-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "member-role", json.Unmarshal, json.Marshal, m.memberRole,
	); err != nil {
		return fmt.Errorf("failed to register member-role service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-members", json.Unmarshal, json.Marshal, m.listMembers,
	); err != nil {
		return fmt.Errorf("failed to register list-members service: %w", err)
	}

	log.Printf("[team] Registered services: validate-user, member-role, list-members")
	return nil
}

// validateUser handles the validate-user service request.
func (m *TeamModule) validateUser(ctx context.Context, req ValidateUserRequest, _ *mono.Msg) (ValidateUserResponse, error) {
	exists, err := m.store.UserExists(ctx, req.UserID)
	if err != nil {
		return ValidateUserResponse{}, err
	}
	return ValidateUserResponse{Valid: exists}, nil
}

// memberRole handles the member-role service request. A missing team is
// reported as a non-member rather than an error so callers can treat both the
// same way.
func (m *TeamModule) memberRole(ctx context.Context, req MemberRoleRequest, _ *mono.Msg) (MemberRoleResponse, error) {
	role, member, err := m.store.MemberRole(ctx, req.TeamID, req.UserID)
	if errors.Is(err, domain.ErrTeamNotFound) {
		return MemberRoleResponse{Member: false}, nil
	}
	if err != nil {
		return MemberRoleResponse{}, err
	}
	return MemberRoleResponse{Role: role, Member: member}, nil
}

// listMembers handles the list-members service request.
func (m *TeamModule) listMembers(ctx context.Context, req ListMembersRequest, _ *mono.Msg) (ListMembersResponse, error) {
	t, err := m.store.FindTeam(ctx, req.TeamID)
	if err != nil {
		return ListMembersResponse{}, err
	}
	return ListMembersResponse{MemberIDs: t.MemberIDs()}, nil
}

// Start seeds demo membership data when the store is empty.
func (m *TeamModule) Start(ctx context.Context) error {
	if err := m.store.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed team data: %w", err)
	}
	log.Println("[team] Module started")
	return nil
}

// Stop shuts down the module.
func (m *TeamModule) Stop(_ context.Context) error {
	log.Println("[team] Module stopped")
	return nil
}
