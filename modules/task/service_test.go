package task

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	historydomain "github.com/FahimSaki/Momentum/domain/history"
	domain "github.com/FahimSaki/Momentum/domain/task"
	teamdomain "github.com/FahimSaki/Momentum/domain/team"
)

// fakeTeamPort is an in-memory TeamPort for service tests.
type fakeTeamPort struct {
	users   map[string]bool
	roles   map[string]teamdomain.Role // "teamID/userID" -> role
	members map[string][]string
}

func newFakeTeamPort() *fakeTeamPort {
	return &fakeTeamPort{
		users: map[string]bool{"user-1": true, "user-2": true, "user-3": true},
		roles: map[string]teamdomain.Role{
			"team-1/user-1": teamdomain.RoleOwner,
			"team-1/user-2": teamdomain.RoleMember,
		},
		members: map[string][]string{"team-1": {"user-1", "user-2"}},
	}
}

func (f *fakeTeamPort) ValidateUser(_ context.Context, userID string) (bool, error) {
	return f.users[userID], nil
}

func (f *fakeTeamPort) MemberRole(_ context.Context, teamID, userID string) (teamdomain.Role, bool, error) {
	role, ok := f.roles[teamID+"/"+userID]
	return role, ok, nil
}

func (f *fakeTeamPort) ListMembers(_ context.Context, teamID string) ([]string, error) {
	return f.members[teamID], nil
}

// setupTestModule wires a TaskModule against an in-memory database, a fake
// team port and a fixed clock. Events are not published (nil bus).
func setupTestModule(t *testing.T, now time.Time) *TaskModule {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.Task{}, &historydomain.Record{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	m := NewModule(domain.NewStore(db), historydomain.NewStore(db))
	m.teamPort = newFakeTeamPort()
	m.now = func() time.Time { return now }
	return m
}

func createTestTask(t *testing.T, m *TaskModule, req CreateTaskRequest) TaskResponse {
	t.Helper()
	resp, err := m.createTask(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("createTask() error = %v", err)
	}
	return resp
}

func TestCreateTask(t *testing.T) {
	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)

	t.Run("defaults assignee to creator", func(t *testing.T) {
		m := setupTestModule(t, now)

		resp := createTestTask(t, m, CreateTaskRequest{ActorID: "user-1", Name: "Water plants"})
		if len(resp.AssignedTo) != 1 || resp.AssignedTo[0] != "user-1" {
			t.Errorf("expected creator as default assignee, got %v", resp.AssignedTo)
		}
		if resp.Priority != string(domain.PriorityMedium) {
			t.Errorf("expected default priority medium, got %q", resp.Priority)
		}
		if resp.AssignmentType != string(domain.AssignIndividual) {
			t.Errorf("expected default assignment type individual, got %q", resp.AssignmentType)
		}
	})

	t.Run("team assignment expands to all members", func(t *testing.T) {
		m := setupTestModule(t, now)

		resp := createTestTask(t, m, CreateTaskRequest{
			ActorID: "user-1", Name: "Standup", TeamID: "team-1",
			AssignmentType: string(domain.AssignTeam),
		})
		if len(resp.AssignedTo) != 2 {
			t.Errorf("expected both team members assigned, got %v", resp.AssignedTo)
		}
	})

	t.Run("rejects blank name", func(t *testing.T) {
		m := setupTestModule(t, now)

		_, err := m.createTask(context.Background(), CreateTaskRequest{ActorID: "user-1", Name: "  "}, nil)
		if !errors.Is(err, domain.ErrNameRequired) {
			t.Errorf("createTask() error = %v, want ErrNameRequired", err)
		}
	})

	t.Run("rejects unknown assignee", func(t *testing.T) {
		m := setupTestModule(t, now)

		_, err := m.createTask(context.Background(), CreateTaskRequest{
			ActorID: "user-1", Name: "Task", AssignedTo: []string{"ghost"},
		}, nil)
		if err == nil || !strings.Contains(err.Error(), "unknown assignee") {
			t.Errorf("createTask() error = %v, want unknown assignee", err)
		}
	})

	t.Run("rejects assignee outside the team", func(t *testing.T) {
		m := setupTestModule(t, now)

		_, err := m.createTask(context.Background(), CreateTaskRequest{
			ActorID: "user-1", Name: "Task", TeamID: "team-1",
			AssignedTo: []string{"user-3"},
		}, nil)
		if !errors.Is(err, domain.ErrInvalidAssignment) {
			t.Errorf("createTask() error = %v, want ErrInvalidAssignment", err)
		}
	})

	t.Run("rejects non-member creating into team", func(t *testing.T) {
		m := setupTestModule(t, now)

		_, err := m.createTask(context.Background(), CreateTaskRequest{
			ActorID: "user-3", Name: "Task", TeamID: "team-1",
		}, nil)
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("createTask() error = %v, want ErrForbidden", err)
		}
	})
}

func TestToggleComplete(t *testing.T) {
	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)

	t.Run("complete then uncomplete", func(t *testing.T) {
		m := setupTestModule(t, now)
		created := createTestTask(t, m, CreateTaskRequest{ActorID: "user-1", Name: "Water plants"})

		resp, err := m.toggleComplete(context.Background(), ToggleCompleteRequest{
			TaskID: created.ID, ActorID: "user-1", Completed: true,
		}, nil)
		if err != nil {
			t.Fatalf("toggleComplete() error = %v", err)
		}
		if !resp.IsArchived {
			t.Error("expected task archived after completion")
		}

		resp, err = m.toggleComplete(context.Background(), ToggleCompleteRequest{
			TaskID: created.ID, ActorID: "user-1", Completed: false,
		}, nil)
		if err != nil {
			t.Fatalf("toggleComplete() error = %v", err)
		}
		if resp.IsArchived {
			t.Error("expected task active after uncompletion")
		}
		if len(resp.CompletedDays) != 0 {
			t.Errorf("expected no completion days, got %v", resp.CompletedDays)
		}
	})

	t.Run("non-assignee is rejected", func(t *testing.T) {
		m := setupTestModule(t, now)
		created := createTestTask(t, m, CreateTaskRequest{ActorID: "user-1", Name: "Water plants"})

		_, err := m.toggleComplete(context.Background(), ToggleCompleteRequest{
			TaskID: created.ID, ActorID: "user-2", Completed: true,
		}, nil)
		if !errors.Is(err, domain.ErrNotAssignee) {
			t.Errorf("toggleComplete() error = %v, want ErrNotAssignee", err)
		}
	})
}

func TestUpdateTask(t *testing.T) {
	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)

	t.Run("assignee may edit basic fields", func(t *testing.T) {
		m := setupTestModule(t, now)
		created := createTestTask(t, m, CreateTaskRequest{
			ActorID: "user-1", Name: "Standup", TeamID: "team-1",
			AssignedTo: []string{"user-2"},
		})

		newDesc := "every morning"
		resp, err := m.updateTask(context.Background(), UpdateTaskRequest{
			TaskID: created.ID, ActorID: "user-2", Description: &newDesc,
		}, nil)
		if err != nil {
			t.Fatalf("updateTask() error = %v", err)
		}
		if resp.Description != newDesc {
			t.Errorf("expected description %q, got %q", newDesc, resp.Description)
		}
	})

	t.Run("assignee may not reassign", func(t *testing.T) {
		m := setupTestModule(t, now)
		created := createTestTask(t, m, CreateTaskRequest{
			ActorID: "user-1", Name: "Standup", TeamID: "team-1",
			AssignedTo: []string{"user-2"},
		})

		assignees := []string{"user-1"}
		_, err := m.updateTask(context.Background(), UpdateTaskRequest{
			TaskID: created.ID, ActorID: "user-2", AssignedTo: &assignees,
		}, nil)
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("updateTask() error = %v, want ErrForbidden", err)
		}
	})

	t.Run("team owner may reassign", func(t *testing.T) {
		m := setupTestModule(t, now)
		created := createTestTask(t, m, CreateTaskRequest{
			ActorID: "user-2", Name: "Standup", TeamID: "team-1",
		})

		assignees := []string{"user-1", "user-2"}
		resp, err := m.updateTask(context.Background(), UpdateTaskRequest{
			TaskID: created.ID, ActorID: "user-1", AssignedTo: &assignees,
		}, nil)
		if err != nil {
			t.Fatalf("updateTask() error = %v", err)
		}
		if len(resp.AssignedTo) != 2 {
			t.Errorf("expected 2 assignees, got %v", resp.AssignedTo)
		}
	})

	t.Run("outsider may not edit", func(t *testing.T) {
		m := setupTestModule(t, now)
		created := createTestTask(t, m, CreateTaskRequest{ActorID: "user-1", Name: "Water plants"})

		name := "hijacked"
		_, err := m.updateTask(context.Background(), UpdateTaskRequest{
			TaskID: created.ID, ActorID: "user-3", Name: &name,
		}, nil)
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("updateTask() error = %v, want ErrForbidden", err)
		}
	})

	t.Run("unknown assignee rejected on reassign", func(t *testing.T) {
		m := setupTestModule(t, now)
		created := createTestTask(t, m, CreateTaskRequest{ActorID: "user-1", Name: "Water plants"})

		assignees := []string{"ghost"}
		_, err := m.updateTask(context.Background(), UpdateTaskRequest{
			TaskID: created.ID, ActorID: "user-1", AssignedTo: &assignees,
		}, nil)
		if err == nil || !strings.Contains(err.Error(), "unknown assignee") {
			t.Errorf("updateTask() error = %v, want unknown assignee", err)
		}
	})

	t.Run("reassignment outside the team rejected", func(t *testing.T) {
		m := setupTestModule(t, now)
		created := createTestTask(t, m, CreateTaskRequest{
			ActorID: "user-1", Name: "Standup", TeamID: "team-1",
			AssignedTo: []string{"user-2"},
		})

		// user-3 exists but is not a team-1 member.
		assignees := []string{"user-3"}
		_, err := m.updateTask(context.Background(), UpdateTaskRequest{
			TaskID: created.ID, ActorID: "user-1", AssignedTo: &assignees,
		}, nil)
		if !errors.Is(err, domain.ErrInvalidAssignment) {
			t.Errorf("updateTask() error = %v, want ErrInvalidAssignment", err)
		}
	})
}

func TestDeleteTask(t *testing.T) {
	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)

	t.Run("creator deletes and history survives", func(t *testing.T) {
		m := setupTestModule(t, now)
		created := createTestTask(t, m, CreateTaskRequest{ActorID: "user-1", Name: "Water plants"})

		if _, err := m.toggleComplete(context.Background(), ToggleCompleteRequest{
			TaskID: created.ID, ActorID: "user-1", Completed: true,
		}, nil); err != nil {
			t.Fatalf("toggleComplete() error = %v", err)
		}

		if _, err := m.deleteTask(context.Background(), DeleteTaskRequest{
			TaskID: created.ID, ActorID: "user-1",
		}, nil); err != nil {
			t.Fatalf("deleteTask() error = %v", err)
		}

		if _, err := m.getTask(context.Background(), GetTaskRequest{TaskID: created.ID, ActorID: "user-1"}, nil); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("getTask() after delete error = %v, want ErrNotFound", err)
		}

		records, err := m.history.FindByUser(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("FindByUser() error = %v", err)
		}
		if len(records) != 1 || len(records[0].CompletedDays) != 1 {
			t.Errorf("expected completion day preserved in history, got %v", records)
		}
	})

	t.Run("plain member may not delete", func(t *testing.T) {
		m := setupTestModule(t, now)
		created := createTestTask(t, m, CreateTaskRequest{
			ActorID: "user-1", Name: "Standup", TeamID: "team-1",
			AssignedTo: []string{"user-2"},
		})

		_, err := m.deleteTask(context.Background(), DeleteTaskRequest{
			TaskID: created.ID, ActorID: "user-2",
		}, nil)
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("deleteTask() error = %v, want ErrForbidden", err)
		}
	})
}

func TestStats(t *testing.T) {
	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	m := setupTestModule(t, now)

	overdue := now.Add(-72 * time.Hour)
	upcoming := now.Add(48 * time.Hour)

	createTestTask(t, m, CreateTaskRequest{ActorID: "user-1", Name: "Overdue", DueDate: &overdue})
	createTestTask(t, m, CreateTaskRequest{ActorID: "user-1", Name: "Upcoming", DueDate: &upcoming})
	done := createTestTask(t, m, CreateTaskRequest{ActorID: "user-1", Name: "Done today"})

	if _, err := m.toggleComplete(context.Background(), ToggleCompleteRequest{
		TaskID: done.ID, ActorID: "user-1", Completed: true,
	}, nil); err != nil {
		t.Fatalf("toggleComplete() error = %v", err)
	}

	stats, err := m.stats(context.Background(), StatsRequest{ActorID: "user-1"}, nil)
	if err != nil {
		t.Fatalf("stats() error = %v", err)
	}
	if stats.TotalTasks != 2 {
		t.Errorf("TotalTasks = %d, want 2 (archived task excluded)", stats.TotalTasks)
	}
	if stats.CompletedToday != 1 {
		t.Errorf("CompletedToday = %d, want 1", stats.CompletedToday)
	}
	if stats.OverdueTasks != 1 {
		t.Errorf("OverdueTasks = %d, want 1", stats.OverdueTasks)
	}
	if stats.UpcomingTasks != 1 {
		t.Errorf("UpcomingTasks = %d, want 1", stats.UpcomingTasks)
	}
}
