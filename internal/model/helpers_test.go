package model

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

func pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

var (
	man1  = Piece{Owner: Player1}
	man2  = Piece{Owner: Player2}
	king1 = Piece{Owner: Player1, Promoted: true}
	king2 = Piece{Owner: Player2, Promoted: true}
)

func boardWith(pieces map[Position]Piece) Board {
	b := EmptyBoard()
	for p, piece := range pieces {
		b = b.WithPiece(p, piece)
	}
	return b
}

func step(fromRow, fromCol, overRow, overCol, toRow, toCol int) CaptureStep {
	return CaptureStep{From: pos(fromRow, fromCol), Over: pos(overRow, overCol), To: pos(toRow, toCol)}
}

func requireValidChain(t *testing.T, b Board, chain CaptureChain) {
	t.Helper()
	require.NotEmpty(t, chain)
	seen := map[Position]bool{}
	for i, s := range chain {
		if i > 0 {
			require.Equal(t, chain[i-1].To, s.From, "chain is not contiguous: %s", spew.Sdump(chain))
		}
		require.False(t, seen[s.Over], "piece at %s jumped twice:\n%s", s.Over, b)
		seen[s.Over] = true
		require.True(t, s.To.Playable(), "landing %s off parity", s.To)
	}
}

func destinations(moves []Move) []Position {
	out := make([]Position, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.To)
	}
	return out
}
