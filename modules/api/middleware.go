package api

import "github.com/gofiber/fiber/v2"

// ActorHeader carries the acting user's ID. Authentication happens upstream
// at the edge proxy; by the time a request reaches this service the header is
// trusted.
const ActorHeader = "X-User-ID"

const actorLocalsKey = "actorID"

// RequireActor rejects requests without an acting user.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := c.Get(ActorHeader)
		if actor == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "missing " + ActorHeader + " header",
			})
		}
		c.Locals(actorLocalsKey, actor)
		return c.Next()
	}
}

// actorID returns the acting user set by RequireActor.
func actorID(c *fiber.Ctx) string {
	actor, _ := c.Locals(actorLocalsKey).(string)
	return actor
}
