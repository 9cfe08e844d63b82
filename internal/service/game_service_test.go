package service

import (
	"context"
	"testing"
	"time"

	"github.com/benbeisheim/dama-backend/internal/model"
	"github.com/benbeisheim/dama-backend/internal/ws"
	"github.com/stretchr/testify/require"
)

func newService() (*GameService, *GameManager) {
	gm := NewGameManager(model.DefaultRules())
	return NewGameService(gm), gm
}

func TestCreateAndJoinGame(t *testing.T) {
	gs, _ := newService()

	gameID, side, err := gs.CreateGame("alice")
	require.NoError(t, err)
	require.NotEmpty(t, gameID)
	require.Equal(t, model.Player1, side)

	rooms := gs.OpenRooms()
	require.Len(t, rooms, 1)
	require.Equal(t, gameID, rooms[0].ID)
	require.Equal(t, "alice", rooms[0].Creator)

	side, err = gs.JoinGame(gameID, "bob")
	require.NoError(t, err)
	require.Equal(t, model.Player2, side)
	require.Empty(t, gs.OpenRooms(), "a full room is no longer listed")

	_, err = gs.JoinGame(gameID, "carol")
	require.ErrorIs(t, err, model.ErrGameFull)

	_, err = gs.JoinGame("missing", "bob")
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestHandleMove(t *testing.T) {
	gs, _ := newService()
	gameID, _, err := gs.CreateGame("alice")
	require.NoError(t, err)

	move := model.MoveRequest{Move: model.Slide(model.Position{Row: 2, Col: 2}, model.Position{Row: 3, Col: 3})}
	_, err = gs.HandleMove(gameID, "alice", move)
	require.ErrorIs(t, err, model.ErrGameNotStarted)

	_, err = gs.JoinGame(gameID, "bob")
	require.NoError(t, err)

	state, err := gs.HandleMove(gameID, "alice", move)
	require.NoError(t, err)
	require.Equal(t, 1, state.Version)
	require.Equal(t, model.Player2, state.Turn)

	moves, err := gs.LegalMoves(gameID, "bob")
	require.NoError(t, err)
	require.Len(t, moves.Moves, 7)

	fetched, err := gs.GetGameState(gameID)
	require.NoError(t, err)
	require.Equal(t, state.Version, fetched.Version)
	require.Equal(t, state.Board, fetched.Board)

	_, err = gs.HandleMove("missing", "alice", move)
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestLeaveGameAndSweep(t *testing.T) {
	gs, gm := newService()
	gameID, _, err := gs.CreateGame("alice")
	require.NoError(t, err)
	otherID, _, err := gs.CreateGame("carol")
	require.NoError(t, err)

	require.ErrorIs(t, gs.LeaveGame(gameID, "bob"), model.ErrNotInGame)
	require.NoError(t, gs.LeaveGame(gameID, "alice"))

	rooms := gs.OpenRooms()
	require.Len(t, rooms, 1)
	require.Equal(t, otherID, rooms[0].ID)

	require.Equal(t, 1, gm.RemoveClosed())
	_, err = gm.GetGame(gameID)
	require.ErrorIs(t, err, ErrGameNotFound)
	_, err = gm.GetGame(otherID)
	require.NoError(t, err)
}

func TestCreateGameRejectsDuplicateID(t *testing.T) {
	_, gm := newService()
	_, err := gm.CreateGame("g1")
	require.NoError(t, err)
	_, err = gm.CreateGame("g1")
	require.ErrorIs(t, err, ErrGameExists)
}

func TestMatchmaking(t *testing.T) {
	gs, gm := newService()

	aliceCh := make(chan ws.MatchFoundPayload, 1)
	bobCh := make(chan ws.MatchFoundPayload, 1)
	gs.RegisterMatchmakingChannel("alice", aliceCh)
	gs.RegisterMatchmakingChannel("bob", bobCh)

	require.NoError(t, gs.JoinMatchmaking("alice"))
	require.ErrorIs(t, gs.JoinMatchmaking("alice"), model.ErrAlreadyQueued)
	require.False(t, gm.matchOnce(), "one player is not a match")

	require.NoError(t, gs.JoinMatchmaking("bob"))
	require.True(t, gm.matchOnce())
	require.False(t, gm.matchOnce())

	alice, ok := <-aliceCh
	require.True(t, ok)
	bob, ok := <-bobCh
	require.True(t, ok)
	require.Equal(t, alice.GameID, bob.GameID)
	require.Equal(t, int(model.Player1), alice.Player)
	require.Equal(t, int(model.Player2), bob.Player)

	// channels are retired after the event
	_, ok = <-aliceCh
	require.False(t, ok)

	state, err := gs.GetGameState(alice.GameID)
	require.NoError(t, err)
	require.Equal(t, model.RoomPlaying, state.Status)
	require.Equal(t, "alice", state.Players.One.ID)
	require.Equal(t, "bob", state.Players.Two.ID)
}

func TestLeaveMatchmaking(t *testing.T) {
	gs, gm := newService()

	require.NoError(t, gs.JoinMatchmaking("alice"))
	require.True(t, gs.LeaveMatchmaking("alice"))
	require.False(t, gs.LeaveMatchmaking("alice"))
	require.NoError(t, gs.JoinMatchmaking("bob"))
	require.False(t, gm.matchOnce())
}

func TestRegisterMatchmakingChannelReplacesOld(t *testing.T) {
	gs, gm := newService()

	old := make(chan ws.MatchFoundPayload, 1)
	gs.RegisterMatchmakingChannel("alice", old)
	current := make(chan ws.MatchFoundPayload, 1)
	gs.RegisterMatchmakingChannel("alice", current)

	_, ok := <-old
	require.False(t, ok, "the replaced channel is closed")

	// unregistering a stale channel leaves the current one in place
	gs.UnregisterMatchmakingChannel("alice", old)
	gm.mu.RLock()
	require.Equal(t, current, gm.matchingChannels["alice"])
	gm.mu.RUnlock()

	gs.UnregisterMatchmakingChannel("alice", current)
	gm.mu.RLock()
	require.NotContains(t, gm.matchingChannels, "alice")
	gm.mu.RUnlock()
}

func TestRunPairsQueuedPlayers(t *testing.T) {
	gs, _ := newService()
	ch := make(chan ws.MatchFoundPayload, 1)
	gs.RegisterMatchmakingChannel("bob", ch)
	require.NoError(t, gs.JoinMatchmaking("alice"))
	require.NoError(t, gs.JoinMatchmaking("bob"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gs.gameManager.Run(ctx, 5*time.Millisecond)

	select {
	case event := <-ch:
		require.Equal(t, int(model.Player2), event.Player)
		require.NotEmpty(t, event.GameID)
	case <-time.After(time.Second):
		t.Fatal("no match event")
	}
}

func TestMatchEventsPointAtStoredGame(t *testing.T) {
	gs, gm := newService()
	chans := map[string]chan ws.MatchFoundPayload{}
	for _, id := range []string{"alice", "bob"} {
		chans[id] = make(chan ws.MatchFoundPayload, 1)
		gs.RegisterMatchmakingChannel(id, chans[id])
		require.NoError(t, gs.JoinMatchmaking(id))
	}

	require.True(t, gm.matchOnce())
	for id, ch := range chans {
		event := <-ch
		game, err := gm.GetGame(event.GameID)
		require.NoError(t, err, id)
		require.True(t, game.IsPlayerInGame(id))
	}
}

func TestOpenRoomsOldestFirst(t *testing.T) {
	gs, gm := newService()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"b", "c", "a"} {
		game, err := gm.CreateGame(id)
		require.NoError(t, err)
		_, err = game.AddPlayer("creator-" + id)
		require.NoError(t, err)
		game.CreatedAt = base.Add(time.Duration([]int{2, 3, 1}[i]) * time.Minute)
	}

	var ids []string
	for _, r := range gs.OpenRooms() {
		ids = append(ids, r.ID)
	}
	require.Equal(t, []string{"a", "b", "c"}, ids)
}
