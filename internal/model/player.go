package model

import "time"

// Seat binds a connected player ID to one side of the board.
type Seat struct {
	PlayerID string
	Side     Player
	JoinedAt time.Time
}

func (s Seat) Taken() bool {
	return s.PlayerID != ""
}

type ClientSeat struct {
	ID   string `json:"id"`
	Side Player `json:"player"`
}

func (s Seat) client() ClientSeat {
	return ClientSeat{ID: s.PlayerID, Side: s.Side}
}
