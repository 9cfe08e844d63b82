package controller

import (
	"github.com/benbeisheim/dama-backend/internal/model"
	"github.com/benbeisheim/dama-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// Register mounts the game routes on router.
func (gc *GameController) Register(router fiber.Router) {
	router.Post("/matchmaking/join", gc.JoinMatchmaking)
	router.Post("/matchmaking/leave", gc.LeaveMatchmaking)
	router.Post("/create", gc.CreateGame)
	router.Get("/rooms", gc.ListRooms)
	router.Post("/join/:gameId", gc.JoinGame)
	router.Get("/:gameId", gc.GetGameState)
	router.Get("/:gameId/moves", gc.GetLegalMoves)
	router.Post("/:gameId/move", gc.MakeMove)
	router.Post("/:gameId/leave", gc.LeaveGame)
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	gameID, side, err := gc.gameService.CreateGame(playerID)
	if err != nil {
		log.Error().Err(err).Str("player", playerID).Msg("create game failed")
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
		"player":  side,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	side, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"player":  side,
	})
}

func (gc *GameController) LeaveGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.LeaveGame(gameID, playerID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game closed",
	})
}

func (gc *GameController) ListRooms(c *fiber.Ctx) error {
	return c.JSON(gc.gameService.OpenRooms())
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) GetLegalMoves(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), playerID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(moves)
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	var req model.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move payload: " + err.Error(),
		})
	}

	state, err := gc.gameService.HandleMove(gameID, playerID, req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.JoinMatchmaking(playerID); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	if !gc.gameService.LeaveMatchmaking(playerID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "player not in queue",
		})
	}
	return c.JSON(fiber.Map{
		"status": "left",
	})
}
