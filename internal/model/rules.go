package model

// Rules holds the rule variations the engine can be configured with.
type Rules struct {
	// PromoteMidChain lets a piece that reaches the far rank in the middle of
	// a capture chain keep capturing with king movement for the rest of it.
	// When false the chain ends on the promotion square and the piece moves
	// as a king from its next turn.
	PromoteMidChain bool `json:"promoteMidChain"`
	// FlyingKingSlides lets kings slide any distance along an empty
	// diagonal instead of a single step.
	FlyingKingSlides bool `json:"flyingKingSlides"`
}

func DefaultRules() Rules {
	return Rules{}
}
