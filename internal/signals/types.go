package signals

// Signals is the structured result of running the extractor over one post's
// text. Absent signals leave the corresponding pointer nil.
type Signals struct {
	Brand       *string
	ProductHint string

	OldSize *float64
	NewSize *float64
	OldUnit *string
	NewUnit *string

	OldPrice *float64
	NewPrice *float64

	// ExplicitFromTo is set only when a directional phrase or arrow notation
	// matched, never when a size pair was inferred from bare unit mentions.
	// When set, OldSize > NewSize holds in the same unit.
	ExplicitFromTo bool

	// FieldsFound is a weighted count of independently matched signal groups:
	// brand 1, explicit size pair 2, inferred size pair 1, price pair 1.
	FieldsFound int
}

type Tier string

const (
	TierAuto    Tier = "auto"
	TierReview  Tier = "review"
	TierDiscard Tier = "discard"
)

const (
	tierAutoThreshold   = 3
	tierReviewThreshold = 1
)

// ClassifyTier assigns a confidence tier. The decision is strict and ordered;
// a tier is never revisited once assigned.
func ClassifyTier(s Signals) Tier {
	if s.FieldsFound >= tierAutoThreshold && s.Brand != nil && s.ExplicitFromTo {
		return TierAuto
	}
	if s.FieldsFound >= tierReviewThreshold {
		return TierReview
	}
	return TierDiscard
}
