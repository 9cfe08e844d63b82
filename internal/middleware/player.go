package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"
)

// EnsurePlayerID reads the caller's player ID from the X-Player-ID header or
// the playerId query parameter. Identity itself is managed elsewhere.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("playerID") != nil {
			return c.Next()
		}

		playerID := c.Get("X-Player-ID")
		if playerID == "" {
			playerID = c.Query("playerId")
		}

		if playerID == "" {
			log.Debug().Str("path", c.Path()).Msg("request without player ID")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		}

		// Locals outlive the request buffer the header points into.
		c.Locals("playerID", utils.CopyString(playerID))
		return c.Next()
	}
}
