// service/game_manager.go
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbeisheim/dama-backend/internal/model"
	"github.com/benbeisheim/dama-backend/internal/ws"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan ws.MatchFoundPayload
	rules            model.Rules
	mu               sync.RWMutex
}

func NewGameManager(rules model.Rules) *GameManager {
	return &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan ws.MatchFoundPayload),
		rules:            rules,
	}
}

// Run pairs queued players and sweeps closed games every interval until
// ctx is done.
func (gm *GameManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for gm.matchOnce() {
			}
			if n := gm.RemoveClosed(); n > 0 {
				log.Debug().Int("removed", n).Msg("swept closed games")
			}
		}
	}
}

// matchOnce creates a game for the two longest-waiting players and notifies
// them. It reports whether a pair was found.
func (gm *GameManager) matchOnce() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	first, second, ok := gm.queue.NextPair()
	if !ok {
		return false
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID, gm.rules)
	players := []model.QueuedPlayer{first, second}
	events := make([]ws.MatchFoundPayload, 0, len(players))
	for _, p := range players {
		side, err := game.AddPlayer(p.PlayerID)
		if err != nil {
			log.Error().Err(err).Str("game", gameID).Str("player", p.PlayerID).Msg("failed to seat matched player")
			return true
		}
		events = append(events, ws.MatchFoundPayload{GameID: gameID, Player: int(side)})
	}
	gm.games[gameID] = game
	for i, p := range players {
		gm.notifyMatch(p.PlayerID, events[i])
	}
	log.Info().Str("game", gameID).Str("player1", first.PlayerID).Str("player2", second.PlayerID).Msg("match found")
	return true
}

// notifyMatch sends the event and retires the player's channel. Callers
// hold gm.mu.
func (gm *GameManager) notifyMatch(playerID string, event ws.MatchFoundPayload) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		log.Warn().Str("player", playerID).Msg("no matchmaking channel registered")
		return
	}
	select {
	case ch <- event:
	default:
		log.Warn().Str("player", playerID).Msg("matchmaking channel full")
	}
	delete(gm.matchingChannels, playerID)
	close(ch)
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan ws.MatchFoundPayload) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, ok := gm.matchingChannels[playerID]; ok {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets ch without closing it; the creator
// owns it.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan ws.MatchFoundPayload) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) CreateGame(gameID string) (*model.Game, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return nil, ErrGameExists
	}

	game := model.NewGame(gameID, gm.rules)
	gm.games[gameID] = game
	return game, nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}

	return game, nil
}

// OpenRooms lists games still waiting for an opponent, oldest first.
func (gm *GameManager) OpenRooms() []model.RoomSummary {
	gm.mu.RLock()
	games := maps.Values(gm.games)
	gm.mu.RUnlock()

	rooms := []model.RoomSummary{}
	for _, g := range games {
		if s := g.Summary(); s.Status == model.RoomWaiting {
			rooms = append(rooms, s)
		}
	}
	slices.SortFunc(rooms, func(a, b model.RoomSummary) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return rooms
}

// RemoveClosed drops closed games from the directory and returns how many
// were removed.
func (gm *GameManager) RemoveClosed() int {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	n := 0
	for id, g := range gm.games {
		if g.Status() == model.RoomClosed {
			delete(gm.games, id)
			n++
		}
	}
	return n
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	return gm.queue.AddPlayer(playerID)
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.RemovePlayer(playerID)
}
