package model

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/benbeisheim/dama-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"
)

type RoomStatus string

const (
	RoomWaiting RoomStatus = "waiting"
	RoomPlaying RoomStatus = "playing"
	RoomClosed  RoomStatus = "closed"
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex

	// sendMu orders broadcasts; sent is the newest version written.
	sendMu sync.Mutex
	sent   int
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game is one room: two seats, the authoritative turn state and the
// observers that receive every committed update.
type Game struct {
	ID          string
	CreatedAt   time.Time
	mu          sync.Mutex
	rules       Rules
	turn        TurnState
	version     int
	status      RoomStatus
	seats       [2]Seat
	lastMove    *Move
	connections *GameConnections
}

// GameState is the snapshot sent to clients. Version increases with every
// accepted move or chain step; a move must quote the version it was
// computed against.
type GameState struct {
	Board      Board          `json:"board"`
	Turn       Player         `json:"turn"`
	Phase      Phase          `json:"phase"`
	Pending    *ChainProgress `json:"pending"`
	Version    int            `json:"version"`
	Status     RoomStatus     `json:"status"`
	LegalMoves MoveSet        `json:"legalMoves"`
	LastMove   *Move          `json:"lastMove"`
	Rules      Rules          `json:"rules"`
	Players    struct {
		One ClientSeat `json:"player1"`
		Two ClientSeat `json:"player2"`
	} `json:"players"`
}

// MoveRequest is a move submitted by a client. With Stepwise set only the
// next jump of a capture chain is played so clients can show each landing.
type MoveRequest struct {
	Move     Move `json:"move"`
	Version  int  `json:"version"`
	Stepwise bool `json:"stepwise"`
}

type RoomSummary struct {
	ID        string     `json:"id"`
	Creator   string     `json:"creator"`
	Status    RoomStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

func NewGame(id string, rules Rules) *Game {
	return &Game{
		ID:          id,
		CreatedAt:   time.Now(),
		rules:       rules,
		turn:        NewTurnState(),
		status:      RoomWaiting,
		seats:       [2]Seat{{Side: Player1}, {Side: Player2}},
		connections: NewGameConnections(),
	}
}

// AddPlayer seats playerID. The creator plays Player1, the second player
// Player2, and the game starts once both seats are taken.
func (g *Game) AddPlayer(playerID string) (Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status == RoomClosed {
		return NoPlayer, ErrGameClosed
	}
	if seat, ok := g.seatOf(playerID); ok {
		return seat.Side, nil
	}
	for i := range g.seats {
		if !g.seats[i].Taken() {
			g.seats[i].PlayerID = playerID
			g.seats[i].JoinedAt = time.Now()
			if g.seats[0].Taken() && g.seats[1].Taken() {
				g.status = RoomPlaying
			}
			log.Info().Str("game", g.ID).Str("player", playerID).Stringer("side", g.seats[i].Side).Msg("player seated")
			return g.seats[i].Side, nil
		}
	}
	return NoPlayer, ErrGameFull
}

// Leave closes the room. Moves are rejected afterwards.
func (g *Game) Leave(playerID string) error {
	g.mu.Lock()
	if _, ok := g.seatOf(playerID); !ok {
		g.mu.Unlock()
		return ErrNotInGame
	}
	g.status = RoomClosed
	g.version++
	state := g.snapshot()
	g.mu.Unlock()

	go g.broadcastState(state)
	return nil
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.snapshot()
}

func (g *Game) Status() RoomStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *Game) Summary() RoomSummary {
	g.mu.Lock()
	defer g.mu.Unlock()
	return RoomSummary{
		ID:        g.ID,
		Creator:   g.seats[0].PlayerID,
		Status:    g.status,
		CreatedAt: g.CreatedAt,
	}
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.seatOf(playerID)
	return ok
}

func (g *Game) seatOf(playerID string) (Seat, bool) {
	for _, s := range g.seats {
		if s.Taken() && s.PlayerID == playerID {
			return s, true
		}
	}
	return Seat{}, false
}

func (g *Game) canSpectate() bool {
	return g.status != RoomClosed
}

// MakeMove validates the submission against the room and hands it to the
// engine. Conflicting submissions are rejected, never merged: the caller
// must refetch the state and resubmit.
func (g *Game) MakeMove(playerID string, req MoveRequest) (GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.status {
	case RoomWaiting:
		return GameState{}, ErrGameNotStarted
	case RoomClosed:
		return GameState{}, ErrGameClosed
	}
	seat, ok := g.seatOf(playerID)
	if !ok {
		return GameState{}, ErrNotInGame
	}
	if req.Version != g.version {
		return GameState{}, ErrStaleState
	}

	var (
		out Outcome
		err error
	)
	if req.Stepwise {
		out, err = g.turn.Apply(seat.Side, req.Move, g.rules)
	} else {
		out, err = g.turn.Commit(seat.Side, req.Move, g.rules)
	}
	if err != nil {
		return GameState{}, err
	}

	g.turn = out.State
	g.version++
	move := req.Move
	g.lastMove = &move
	log.Debug().Str("game", g.ID).Stringer("side", seat.Side).Stringer("move", move).
		Int("captured", len(out.Captured)).Bool("chainContinues", out.ChainContinues).Msg("move applied")

	state := g.snapshot()
	go g.broadcastState(state)
	return state, nil
}

// LegalMovesFor returns the moves playerID may submit right now. It is empty
// when it is not that player's turn.
func (g *Game) LegalMovesFor(playerID string) (MoveSet, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	seat, ok := g.seatOf(playerID)
	if !ok {
		return MoveSet{}, ErrNotInGame
	}
	if g.status != RoomPlaying {
		return MoveSet{Kind: MoveSlide, Moves: []Move{}}, nil
	}
	return g.turn.LegalMoves(seat.Side, g.rules), nil
}

func (g *Game) snapshot() GameState {
	state := GameState{
		Board:    g.turn.Board,
		Turn:     g.turn.ToMove,
		Phase:    g.turn.Phase(),
		Pending:  g.turn.Pending,
		Version:  g.version,
		Status:   g.status,
		LastMove: g.lastMove,
		Rules:    g.rules,
	}
	state.Players.One = g.seats[0].client()
	state.Players.Two = g.seats[1].client()
	state.LegalMoves = g.turn.LegalMoves(g.turn.ToMove, g.rules)
	return state
}

func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	isAuthorized := g.canSpectate()
	if _, ok := g.seatOf(playerID); ok {
		isAuthorized = true
	}
	state := g.snapshot()
	g.mu.Unlock()

	if !isAuthorized {
		return ErrGameClosed
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// Keep the healthy connection and reject the duplicate.
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		conn.Close()
		return nil
	}

	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Debug().Str("game", g.ID).Str("player", playerID).Msg("connection registered")

	go g.broadcastState(state)
	return nil
}

// UnregisterConnection drops playerID's observer, but only if conn is still
// the registered one.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
		log.Debug().Str("game", g.ID).Str("player", playerID).Msg("connection unregistered")
	}
}

// broadcastState writes state to every connection. Broadcasts run one at a
// time per game and a snapshot older than one already sent is dropped, so
// clients never see the version go backwards.
func (g *Game) broadcastState(state GameState) {
	g.connections.sendMu.Lock()
	defer g.connections.sendMu.Unlock()
	if state.Version < g.connections.sent {
		log.Debug().Str("game", g.ID).Int("version", state.Version).Msg("dropping outdated state")
		return
	}
	g.connections.sent = state.Version

	payload, err := json.Marshal(state)
	if err != nil {
		log.Error().Err(err).Str("game", g.ID).Msg("failed to marshal state")
		return
	}

	g.connections.mu.RLock()
	activeConnections := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		activeConnections[playerID] = conn
	}
	g.connections.mu.RUnlock()

	for playerID, conn := range activeConnections {
		if err := conn.WriteJSON(ws.Message{
			Type:    ws.MessageTypeGameState,
			Payload: json.RawMessage(payload),
		}); err != nil {
			log.Warn().Err(err).Str("game", g.ID).Str("player", playerID).Msg("failed to send state, dropping connection")
			g.UnregisterConnection(playerID, conn)
		}
	}
}
