package service

import (
	"fmt"

	"github.com/benbeisheim/dama-backend/internal/model"
	"github.com/benbeisheim/dama-backend/internal/ws"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

// CreateGame opens a room and seats its creator as Player1.
func (gs *GameService) CreateGame(creatorID string) (string, model.Player, error) {
	gameID := uuid.New().String()

	game, err := gs.gameManager.CreateGame(gameID)
	if err != nil {
		return "", model.NoPlayer, fmt.Errorf("failed to create game: %w", err)
	}
	side, err := game.AddPlayer(creatorID)
	if err != nil {
		return "", model.NoPlayer, fmt.Errorf("failed to seat creator: %w", err)
	}
	log.Info().Str("game", gameID).Str("creator", creatorID).Msg("game created")
	return gameID, side, nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.Player, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.NoPlayer, err
	}
	return game.AddPlayer(playerID)
}

func (gs *GameService) LeaveGame(gameID string, playerID string) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Leave(playerID)
}

func (gs *GameService) OpenRooms() []model.RoomSummary {
	return gs.gameManager.OpenRooms()
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gs *GameService) LegalMoves(gameID string, playerID string) (model.MoveSet, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.MoveSet{}, err
	}
	return game.LegalMovesFor(playerID)
}

func (gs *GameService) HandleMove(gameID string, playerID string, req model.MoveRequest) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	state, err := game.MakeMove(playerID, req)
	if err != nil {
		log.Debug().Err(err).Str("game", gameID).Str("player", playerID).Msg("move rejected")
		return model.GameState{}, err
	}
	return state, nil
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan ws.MatchFoundPayload) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan ws.MatchFoundPayload) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}
