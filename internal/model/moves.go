package model

import (
	"encoding/json"
	"fmt"
)

type MoveKind string

const (
	MoveSlide   MoveKind = "slide"
	MoveCapture MoveKind = "capture"
)

// Move is either a slide (From, To) or a capture chain starting at From.
type Move struct {
	Kind  MoveKind     `json:"kind"`
	From  Position     `json:"from"`
	To    Position     `json:"to"`
	Chain CaptureChain `json:"chain,omitempty"`
}

func Slide(from, to Position) Move {
	return Move{Kind: MoveSlide, From: from, To: to}
}

func Capture(chain CaptureChain) Move {
	return Move{Kind: MoveCapture, From: chain.Origin(), To: chain.Destination(), Chain: chain}
}

func (m Move) Equal(other Move) bool {
	if m.Kind != other.Kind || m.From != other.From || m.To != other.To {
		return false
	}
	return m.Kind != MoveCapture || m.Chain.Equal(other.Chain)
}

// Captures is the number of pieces the move removes.
func (m Move) Captures() int {
	if m.Kind != MoveCapture {
		return 0
	}
	return len(m.Chain)
}

func (m Move) String() string {
	if m.Kind == MoveCapture {
		s := m.From.String()
		for _, step := range m.Chain {
			s += "x" + step.To.String()
		}
		return s
	}
	return fmt.Sprintf("%s-%s", m.From, m.To)
}

// UnmarshalJSON rejects moves whose shape does not match their kind.
func (m *Move) UnmarshalJSON(data []byte) error {
	type rawMove Move
	var raw rawMove
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case MoveSlide:
		raw.Chain = nil
	case MoveCapture:
		if len(raw.Chain) == 0 {
			return fmt.Errorf("%w: capture without steps", ErrIllegalMove)
		}
		raw.From, raw.To = raw.Chain.Origin(), raw.Chain.Destination()
	default:
		return fmt.Errorf("%w: unknown move kind %q", ErrIllegalMove, raw.Kind)
	}
	*m = Move(raw)
	return nil
}

// MoveSet is the homogeneous set of legal moves for one turn: either every
// maximal capture chain or, when no capture exists, every slide.
type MoveSet struct {
	Kind  MoveKind `json:"kind"`
	Max   int      `json:"maxCaptures"`
	Moves []Move   `json:"moves"`
}

func (s MoveSet) Empty() bool {
	return len(s.Moves) == 0
}

func (s MoveSet) Contains(m Move) bool {
	for _, legal := range s.Moves {
		if legal.Equal(m) {
			return true
		}
	}
	return false
}

// From returns the legal moves of the piece at pos.
func (s MoveSet) From(pos Position) []Move {
	var out []Move
	for _, m := range s.Moves {
		if m.From == pos {
			out = append(out, m)
		}
	}
	return out
}

// Origins lists the squares holding a piece that can move, in board order.
func (s MoveSet) Origins() []Position {
	var out []Position
	seen := map[Position]bool{}
	for _, m := range s.Moves {
		if !seen[m.From] {
			seen[m.From] = true
			out = append(out, m.From)
		}
	}
	return out
}

// LegalMoves applies the majority-capture rule: if any piece of player can
// capture, only chains of the longest length found across all of the
// player's pieces are legal. Otherwise every slide is legal.
func LegalMoves(b Board, player Player, rules Rules) MoveSet {
	best := 0
	var captures []Move
	b.each(func(pos Position, p Piece) {
		if p.Owner != player {
			return
		}
		chains := CaptureChains(b, pos, rules)
		n := longest(chains)
		if n == 0 || n < best {
			return
		}
		if n > best {
			best = n
			captures = captures[:0]
		}
		for _, c := range chains {
			if len(c) == best {
				captures = append(captures, Capture(c))
			}
		}
	})
	if best > 0 {
		return MoveSet{Kind: MoveCapture, Max: best, Moves: captures}
	}

	slides := []Move{}
	b.each(func(pos Position, p Piece) {
		if p.Owner == player {
			slides = append(slides, slidesFrom(b, pos, p, rules)...)
		}
	})
	return MoveSet{Kind: MoveSlide, Moves: slides}
}

func slidesFrom(b Board, from Position, p Piece, rules Rules) []Move {
	var out []Move
	for _, dir := range directionsFor(p) {
		for to := from.Step(dir, 1); b.IsEmptyAt(to); to = to.Step(dir, 1) {
			out = append(out, Slide(from, to))
			if !p.Promoted || !rules.FlyingKingSlides {
				break
			}
		}
	}
	return out
}
