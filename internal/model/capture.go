package model

import "golang.org/x/exp/slices"

// CaptureStep is a single jump that removes the piece at Over.
type CaptureStep struct {
	From Position `json:"from"`
	Over Position `json:"over"`
	To   Position `json:"to"`
}

// CaptureChain is an ordered, non-empty run of jumps played as one move.
type CaptureChain []CaptureStep

func (c CaptureChain) Origin() Position {
	return c[0].From
}

func (c CaptureChain) Destination() Position {
	return c[len(c)-1].To
}

func (c CaptureChain) Equal(other CaptureChain) bool {
	return slices.Equal(c, other)
}

// jumpedSet is a bitmask of squares already jumped over in the current
// chain. It is a value, so every recursive branch gets its own copy.
type jumpedSet uint64

func (s jumpedSet) has(p Position) bool {
	return s&(1<<uint(p.Row*BoardSize+p.Col)) != 0
}

func (s jumpedSet) with(p Position) jumpedSet {
	return s | 1<<uint(p.Row*BoardSize+p.Col)
}

// CaptureChains enumerates every capture chain available to the piece at
// pos. An empty result means the piece has no capture.
//
// The moving piece is lifted off its origin for the search so a king may
// fly back across it. Jumped pieces stay on the board until the chain
// commits: they block rays and can never be jumped a second time.
func CaptureChains(b Board, pos Position, rules Rules) []CaptureChain {
	piece, ok := b.PieceAt(pos)
	if !ok {
		return nil
	}
	return searchCaptures(b.WithPieceRemoved(pos), pos, piece, 0, rules)
}

func searchCaptures(b Board, from Position, piece Piece, jumped jumpedSet, rules Rules) []CaptureChain {
	var chains []CaptureChain
	for _, dir := range directionsFor(piece) {
		if piece.Promoted {
			chains = append(chains, flyingCaptures(b, from, dir, piece, jumped, rules)...)
			continue
		}
		over, to := from.Step(dir, 1), from.Step(dir, 2)
		if !to.InBounds() || !b.IsEmptyAt(to) || !isOpponentAt(b, over, piece.Owner) || jumped.has(over) {
			continue
		}
		chains = append(chains, continueFrom(b, CaptureStep{From: from, Over: over, To: to}, piece, jumped, rules)...)
	}
	return chains
}

// flyingCaptures scans one ray for a king: empty cells are skipped, the
// first occupied cell must be an unjumped opponent, and every empty cell
// behind it is a separate landing.
func flyingCaptures(b Board, from Position, dir Direction, piece Piece, jumped jumpedSet, rules Rules) []CaptureChain {
	over := from.Step(dir, 1)
	for b.IsEmptyAt(over) {
		over = over.Step(dir, 1)
	}
	if !isOpponentAt(b, over, piece.Owner) || jumped.has(over) {
		return nil
	}
	var chains []CaptureChain
	for to := over.Step(dir, 1); b.IsEmptyAt(to); to = to.Step(dir, 1) {
		chains = append(chains, continueFrom(b, CaptureStep{From: from, Over: over, To: to}, piece, jumped, rules)...)
	}
	return chains
}

// continueFrom prepends step to every chain that can follow from its landing
// square, or returns it alone when none can.
func continueFrom(b Board, step CaptureStep, piece Piece, jumped jumpedSet, rules Rules) []CaptureChain {
	if rules.PromoteMidChain && !piece.Promoted && step.To.Row == piece.Owner.promotionRow() {
		piece.Promoted = true
	}
	next := searchCaptures(b, step.To, piece, jumped.with(step.Over), rules)
	if len(next) == 0 {
		return []CaptureChain{{step}}
	}
	chains := make([]CaptureChain, 0, len(next))
	for _, tail := range next {
		chain := make(CaptureChain, 0, len(tail)+1)
		chain = append(chain, step)
		chains = append(chains, append(chain, tail...))
	}
	return chains
}

func isOpponentAt(b Board, pos Position, player Player) bool {
	p, ok := b.PieceAt(pos)
	return ok && p.Owner != player
}

func longest(chains []CaptureChain) int {
	n := 0
	for _, c := range chains {
		if len(c) > n {
			n = len(c)
		}
	}
	return n
}
