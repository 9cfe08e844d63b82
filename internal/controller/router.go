package controller

import (
	"strings"
	"time"

	"github.com/benbeisheim/dama-backend/internal/middleware"
	"github.com/benbeisheim/dama-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"
)

// NewApp wires the REST and websocket routes for gameService.
func NewApp(gameService *service.GameService, allowedOrigins []string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "dama",
		DisableStartupMessage: true,
		// Player and game IDs are kept for the life of a room.
		Immutable:             true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOrigins, ", "),
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Debug().Str("method", c.Method()).Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).Dur("took", time.Since(start)).Msg("request")
		return err
	})

	gameController := NewGameController(gameService)
	wsController := NewWebSocketController(gameService)

	wsConfig := websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         allowedOrigins,
	}
	// The upgrade check runs per route so it can read :gameId.
	wsRoutes := app.Group("/ws", middleware.EnsurePlayerID())
	wsRoutes.Get("/matchmaking", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleMatchmaking, wsConfig))
	wsRoutes.Get("/game/:gameId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, wsConfig))

	api := app.Group("/api", middleware.EnsurePlayerID())
	gameController.Register(api.Group("/game"))

	return app
}
