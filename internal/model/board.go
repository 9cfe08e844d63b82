package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	BoardSize = 8
	// PiecesPerSide is the starting piece count, three ranks of playable cells.
	PiecesPerSide = 12
)

type Player int

const (
	NoPlayer Player = 0
	Player1  Player = 1
	Player2  Player = 2
)

func (p Player) Opponent() Player {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	return NoPlayer
}

func (p Player) Valid() bool {
	return p == Player1 || p == Player2
}

func (p Player) String() string {
	switch p {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	}
	return "none"
}

// promotionRow is the opponent's back rank.
func (p Player) promotionRow() int {
	if p == Player1 {
		return BoardSize - 1
	}
	return 0
}

type Piece struct {
	Owner    Player `json:"player"`
	Promoted bool   `json:"king"`
}

// Cell is either empty or holds exactly one piece. The zero value is empty.
type Cell struct {
	occupied bool
	piece    Piece
}

func EmptyCell() Cell {
	return Cell{}
}

func Occupied(p Piece) Cell {
	return Cell{occupied: true, piece: p}
}

func (c Cell) Piece() (Piece, bool) {
	return c.piece, c.occupied
}

func (c Cell) IsEmpty() bool {
	return !c.occupied
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.occupied {
		return []byte("null"), nil
	}
	return json.Marshal(c.piece)
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = EmptyCell()
		return nil
	}
	var p Piece
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if !p.Owner.Valid() {
		return fmt.Errorf("%w: unknown player %d", ErrInvalidPosition, p.Owner)
	}
	*c = Occupied(p)
	return nil
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

// Playable reports whether p is an in-bounds cell of the playing parity.
func (p Position) Playable() bool {
	return p.InBounds() && (p.Row+p.Col)%2 == 0
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Board is a value: assigning or passing it copies the whole grid.
type Board struct {
	cells [BoardSize][BoardSize]Cell
}

func EmptyBoard() Board {
	return Board{}
}

// NewBoard returns the starting position.
func NewBoard() Board {
	var b Board
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			pos := Position{Row: row, Col: col}
			if !pos.Playable() {
				continue
			}
			switch {
			case row < 3:
				b.cells[row][col] = Occupied(Piece{Owner: Player1})
			case row >= BoardSize-3:
				b.cells[row][col] = Occupied(Piece{Owner: Player2})
			}
		}
	}
	return b
}

func (b Board) Cell(pos Position) Cell {
	if !pos.InBounds() {
		return EmptyCell()
	}
	return b.cells[pos.Row][pos.Col]
}

func (b Board) PieceAt(pos Position) (Piece, bool) {
	return b.Cell(pos).Piece()
}

func (b Board) IsEmptyAt(pos Position) bool {
	return pos.InBounds() && b.cells[pos.Row][pos.Col].IsEmpty()
}

func (b Board) WithPiece(pos Position, p Piece) Board {
	if pos.InBounds() {
		b.cells[pos.Row][pos.Col] = Occupied(p)
	}
	return b
}

func (b Board) WithPieceRemoved(pos Position) Board {
	if pos.InBounds() {
		b.cells[pos.Row][pos.Col] = EmptyCell()
	}
	return b
}

func (b Board) WithPieceMoved(from, to Position) Board {
	p, ok := b.PieceAt(from)
	if !ok {
		return b
	}
	return b.WithPieceRemoved(from).WithPiece(to, p)
}

func (b Board) Count(player Player) int {
	n := 0
	b.each(func(_ Position, p Piece) {
		if p.Owner == player {
			n++
		}
	})
	return n
}

func (b Board) each(fn func(Position, Piece)) {
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if p, ok := b.cells[row][col].Piece(); ok {
				fn(Position{Row: row, Col: col}, p)
			}
		}
	}
}

// Validate rejects boards the engine could never have produced.
func (b Board) Validate() error {
	total := 0
	counts := map[Player]int{}
	var err error
	b.each(func(pos Position, p Piece) {
		if err != nil {
			return
		}
		if !pos.Playable() {
			err = fmt.Errorf("%w: piece on non-playable cell %s", ErrInvalidPosition, pos)
			return
		}
		if !p.Owner.Valid() {
			err = fmt.Errorf("%w: unknown owner at %s", ErrInvalidPosition, pos)
			return
		}
		counts[p.Owner]++
		total++
	})
	if err != nil {
		return err
	}
	if total == 0 {
		return fmt.Errorf("%w: empty board", ErrInvalidPosition)
	}
	for _, player := range []Player{Player1, Player2} {
		if counts[player] > PiecesPerSide {
			return fmt.Errorf("%w: %s has %d pieces", ErrInvalidPosition, player, counts[player])
		}
	}
	return nil
}

func (b Board) MarshalJSON() ([]byte, error) {
	rows := make([][]Cell, BoardSize)
	for row := range rows {
		rows[row] = b.cells[row][:]
	}
	return json.Marshal(rows)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]Cell
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}
	if len(rows) != BoardSize {
		return fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidPosition, BoardSize, len(rows))
	}
	var out Board
	for row, cells := range rows {
		if len(cells) != BoardSize {
			return fmt.Errorf("%w: row %d has %d cells", ErrInvalidPosition, row, len(cells))
		}
		copy(out.cells[row][:], cells)
	}
	*b = out
	return nil
}

// String renders the board with row 7 on top. Player1 is x, Player2 is o,
// kings are upper case.
func (b Board) String() string {
	var sb strings.Builder
	for row := BoardSize - 1; row >= 0; row-- {
		fmt.Fprintf(&sb, "%d ", row)
		for col := 0; col < BoardSize; col++ {
			p, ok := b.cells[row][col].Piece()
			switch {
			case !ok:
				sb.WriteByte('.')
			case p.Owner == Player1 && p.Promoted:
				sb.WriteByte('X')
			case p.Owner == Player1:
				sb.WriteByte('x')
			case p.Promoted:
				sb.WriteByte('O')
			default:
				sb.WriteByte('o')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  01234567\n")
	return sb.String()
}
