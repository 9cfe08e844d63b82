package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/benbeisheim/dama-backend/internal/model"
	"github.com/benbeisheim/dama-backend/internal/service"
	"github.com/benbeisheim/dama-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"
)

// lockedConn serializes writes: the read loop and the game's broadcasts
// both write to the same socket.
type lockedConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (l *lockedConn) WriteJSON(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Conn.WriteJSON(v)
}

func (l *lockedConn) WriteMessage(messageType int, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Conn.WriteMessage(messageType, data)
}

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID, _ := c.Locals("wsGameID").(string)
	playerID, _ := c.Locals("wsPlayerID").(string)
	conn := &lockedConn{Conn: c}

	if gameID == "" {
		wsc.sendError(conn, errors.New("game ID is required"))
		c.Close()
		return
	}
	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
		log.Warn().Err(err).Str("game", gameID).Str("player", playerID).Msg("failed to register connection")
		wsc.sendError(conn, err)
		c.Close()
		return
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("game", gameID).Str("player", playerID).Msg("read error")
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debug().Err(err).Msg("parse error")
			wsc.sendError(conn, fmt.Errorf("invalid message: %w", err))
			continue
		}

		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			wsc.sendError(conn, err)
		}
	}

	wsc.gameService.UnregisterConnection(gameID, playerID, conn)
}

// Accepted moves are not echoed here: the game broadcasts the new state to
// every connection, this one included.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var req model.MoveRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		_, err := wsc.gameService.HandleMove(gameID, playerID, req)
		return err
	case ws.MessageTypeLeave:
		return wsc.gameService.LeaveGame(gameID, playerID)
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking queues the player, keeps the socket open until they are
// paired and then sends the matchFound event. The channel is registered
// before queueing so a match can never be made without a listener.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals("wsPlayerID").(string)

	ch := make(chan ws.MatchFoundPayload, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, ch)
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)

	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil && !errors.Is(err, model.ErrAlreadyQueued) {
		wsc.sendError(c, err)
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if !ok {
			return
		}
		msg, err := ws.NewMessage(ws.MessageTypeMatchFound, event)
		if err != nil {
			log.Error().Err(err).Msg("failed to encode match event")
			return
		}
		if err := c.WriteJSON(msg); err != nil {
			log.Warn().Err(err).Str("player", playerID).Msg("failed to send match event")
		}
	case <-closed:
		wsc.gameService.LeaveMatchmaking(playerID)
	}
}

func (wsc *WebSocketController) sendError(c model.Conn, err error) {
	msg, encErr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{
		Error:   err.Error(),
		Refresh: needsRefresh(err),
	})
	if encErr != nil {
		return
	}
	c.WriteJSON(msg)
}
