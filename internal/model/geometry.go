package model

// Direction is a unit diagonal step.
type Direction struct {
	DRow int
	DCol int
}

var diagonals = [4]Direction{{1, -1}, {1, 1}, {-1, -1}, {-1, 1}}

func (p Position) Step(d Direction, n int) Position {
	return Position{Row: p.Row + d.DRow*n, Col: p.Col + d.DCol*n}
}

// forward returns the row direction a regular piece of the player advances in.
func forward(player Player) int {
	if player == Player1 {
		return 1
	}
	return -1
}

// directionsFor lists the diagonals a piece may move or capture along.
func directionsFor(p Piece) []Direction {
	if p.Promoted {
		return diagonals[:]
	}
	f := forward(p.Owner)
	return []Direction{{f, -1}, {f, 1}}
}
