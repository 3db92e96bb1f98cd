package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/FahimSaki/Momentum/modules/notification"
	"github.com/FahimSaki/Momentum/modules/task"
)

// CreateTaskBody is the JSON body for task creation.
type CreateTaskBody struct {
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	AssignedTo     []string   `json:"assigned_to"`
	TeamID         string     `json:"team_id"`
	Priority       string     `json:"priority"`
	DueDate        *time.Time `json:"due_date"`
	Tags           []string   `json:"tags"`
	AssignmentType string     `json:"assignment_type"`
}

// UpdateTaskBody is the JSON body for task edits. Absent fields are left
// untouched.
type UpdateTaskBody struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Tags        *[]string  `json:"tags"`
	AssignedTo  *[]string  `json:"assigned_to"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// ToggleCompleteBody is the JSON body for the completion toggle.
type ToggleCompleteBody struct {
	Completed bool `json:"completed"`
}

func (m *APIModule) createTask(c *fiber.Ctx) error {
	var body CreateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "bad_request", Message: "invalid request body",
		})
	}

	resp, err := m.tasks.CreateTask(c.Context(), &task.CreateTaskRequest{
		ActorID:        actorID(c),
		Name:           body.Name,
		Description:    body.Description,
		AssignedTo:     body.AssignedTo,
		TeamID:         body.TeamID,
		Priority:       body.Priority,
		DueDate:        body.DueDate,
		Tags:           body.Tags,
		AssignmentType: body.AssignmentType,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (m *APIModule) getTask(c *fiber.Ctx) error {
	resp, err := m.tasks.GetTask(c.Context(), c.Params("id"), actorID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (m *APIModule) listTasks(c *fiber.Ctx) error {
	resp, err := m.tasks.ListTasks(c.Context(), &task.ListTasksRequest{
		ActorID: actorID(c),
		TeamID:  c.Query("team_id"),
		Kind:    c.Query("kind"),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (m *APIModule) updateTask(c *fiber.Ctx) error {
	var body UpdateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "bad_request", Message: "invalid request body",
		})
	}

	resp, err := m.tasks.UpdateTask(c.Context(), &task.UpdateTaskRequest{
		TaskID:      c.Params("id"),
		ActorID:     actorID(c),
		Name:        body.Name,
		Description: body.Description,
		Tags:        body.Tags,
		AssignedTo:  body.AssignedTo,
		Priority:    body.Priority,
		DueDate:     body.DueDate,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	if err := m.tasks.DeleteTask(c.Context(), c.Params("id"), actorID(c)); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (m *APIModule) toggleComplete(c *fiber.Ctx) error {
	var body ToggleCompleteBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "bad_request", Message: "invalid request body",
		})
	}

	resp, err := m.tasks.ToggleComplete(c.Context(), &task.ToggleCompleteRequest{
		TaskID:    c.Params("id"),
		ActorID:   actorID(c),
		Completed: body.Completed,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (m *APIModule) taskStats(c *fiber.Ctx) error {
	resp, err := m.tasks.Stats(c.Context(), actorID(c), c.Query("team_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (m *APIModule) heatmap(c *fiber.Ctx) error {
	resp, err := m.heatmaps.Heatmap(c.Context(), actorID(c), c.Query("team_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (m *APIModule) listNotifications(c *fiber.Ctx) error {
	resp, err := m.notifications.List(c.Context(), &notification.ListRequest{
		RecipientID: actorID(c),
		UnreadOnly:  c.QueryBool("unread_only"),
		Limit:       c.QueryInt("limit"),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (m *APIModule) markNotificationRead(c *fiber.Ctx) error {
	if err := m.notifications.MarkRead(c.Context(), actorID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"updated": true})
}

func (m *APIModule) runCleanup(c *fiber.Ctx) error {
	result, err := m.cleanups.Run(c.Context())
	if err != nil {
		return fail(c, err)
	}
	// A failed run is reported as the structured result, not a success.
	if result.Status == "failed" {
		return c.Status(fiber.StatusInternalServerError).JSON(result)
	}
	return c.JSON(result)
}
