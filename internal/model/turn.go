package model

import "golang.org/x/exp/slices"

type Phase string

const (
	AwaitingSelection Phase = "awaitingSelection"
	ChainInProgress   Phase = "chainInProgress"
	TurnComplete      Phase = "turnComplete"
)

// ChainProgress is a capture chain that has been started but not finished.
// Piece is where the capturing piece currently stands.
type ChainProgress struct {
	Piece     Position     `json:"piece"`
	Remaining CaptureChain `json:"remaining"`
}

// TurnState is a position together with whose turn it is. It is a value;
// every transition returns a new one.
type TurnState struct {
	Board   Board          `json:"board"`
	ToMove  Player         `json:"toMove"`
	Pending *ChainProgress `json:"pending"`
}

// Outcome is the result of an accepted move or chain step.
type Outcome struct {
	State          TurnState  `json:"state"`
	Board          Board      `json:"board"`
	NextPlayer     Player     `json:"nextPlayer"`
	ChainContinues bool       `json:"chainContinues"`
	Phase          Phase      `json:"phase"`
	Captured       []Position `json:"captured"`
	Promoted       bool       `json:"promoted"`
}

func NewTurnState() TurnState {
	return TurnState{Board: NewBoard(), ToMove: Player1}
}

func (s TurnState) Phase() Phase {
	if s.Pending != nil {
		return ChainInProgress
	}
	return AwaitingSelection
}

// Continuation is the only move accepted while a chain is in progress.
func (s TurnState) Continuation() (Move, bool) {
	if s.Pending == nil || len(s.Pending.Remaining) == 0 {
		return Move{}, false
	}
	return Capture(s.Pending.Remaining), true
}

// LegalMoves returns the moves player may submit in this state.
func (s TurnState) LegalMoves(player Player, rules Rules) MoveSet {
	if player != s.ToMove {
		return MoveSet{Kind: MoveSlide, Moves: []Move{}}
	}
	if next, ok := s.Continuation(); ok {
		return MoveSet{Kind: MoveCapture, Max: len(next.Chain), Moves: []Move{next}}
	}
	return LegalMoves(s.Board, player, rules)
}

// Apply plays one step of move for player. Slides and the last step of a
// chain complete the turn. Any earlier chain step keeps the turn with
// player, and the rest of that same chain becomes the only legal move.
func (s TurnState) Apply(player Player, move Move, rules Rules) (Outcome, error) {
	if err := s.check(player, move, rules); err != nil {
		return Outcome{}, err
	}

	piece, _ := s.Board.PieceAt(move.From)
	next := TurnState{ToMove: s.ToMove}
	out := Outcome{}

	var to Position
	switch move.Kind {
	case MoveSlide:
		to = move.To
		next.Board = s.Board.WithPieceMoved(move.From, to)
	case MoveCapture:
		step := move.Chain[0]
		to = step.To
		next.Board = s.Board.WithPieceRemoved(step.Over).WithPieceMoved(step.From, to)
		out.Captured = []Position{step.Over}
		if rest := move.Chain[1:]; len(rest) > 0 {
			next.Pending = &ChainProgress{Piece: to, Remaining: slices.Clone(rest)}
		}
	}

	if !piece.Promoted && to.Row == piece.Owner.promotionRow() {
		piece.Promoted = true
		next.Board = next.Board.WithPiece(to, piece)
		out.Promoted = true
	}

	if next.Pending == nil {
		next.ToMove = s.ToMove.Opponent()
		out.Phase = TurnComplete
	} else {
		out.ChainContinues = true
		out.Phase = ChainInProgress
	}
	out.State = next
	out.Board = next.Board
	out.NextPlayer = next.ToMove
	return out, nil
}

// Commit plays the whole of move at once.
func (s TurnState) Commit(player Player, move Move, rules Rules) (Outcome, error) {
	out, err := s.Apply(player, move, rules)
	if err != nil {
		return Outcome{}, err
	}
	captured, promoted := out.Captured, out.Promoted
	for out.ChainContinues {
		cont, _ := out.State.Continuation()
		if out, err = out.State.Apply(player, cont, rules); err != nil {
			return Outcome{}, err
		}
		captured = append(captured, out.Captured...)
		promoted = promoted || out.Promoted
	}
	out.Captured, out.Promoted = captured, promoted
	return out, nil
}

// ApplyMove is the stateless form of Commit.
func ApplyMove(b Board, toMove, player Player, move Move, rules Rules) (Outcome, error) {
	return TurnState{Board: b, ToMove: toMove}.Commit(player, move, rules)
}

func (s TurnState) check(player Player, move Move, rules Rules) error {
	if err := s.Board.Validate(); err != nil {
		return moveError("apply", nil, err)
	}
	if !s.ToMove.Valid() {
		return moveError("apply", nil, ErrInvalidPosition)
	}
	if player != s.ToMove {
		return moveError("apply", nil, ErrNotYourTurn)
	}
	from := move.From
	if !from.InBounds() {
		return moveError("apply", &from, ErrInvalidPosition)
	}
	if _, ok := s.Board.PieceAt(from); !ok {
		return moveError("apply", &from, ErrInvalidPosition)
	}
	if s.Pending != nil {
		want, _ := s.Continuation()
		if !move.Equal(want) {
			return moveError("continue chain", &from, ErrIllegalMove)
		}
		return nil
	}
	if !LegalMoves(s.Board, player, rules).Contains(move) {
		return moveError("apply", &from, ErrIllegalMove)
	}
	return nil
}
