package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		name string
		sig  Signals
		want Tier
	}{
		{
			name: "auto needs all three conditions",
			sig:  Signals{FieldsFound: 3, Brand: strPtr("Tropicana"), ExplicitFromTo: true},
			want: TierAuto,
		},
		{
			name: "three fields without brand is review",
			sig:  Signals{FieldsFound: 3, ExplicitFromTo: true},
			want: TierReview,
		},
		{
			name: "three fields without explicit flag is review",
			sig:  Signals{FieldsFound: 3, Brand: strPtr("Tropicana")},
			want: TierReview,
		},
		{
			name: "two fields is review even with brand and flag",
			sig:  Signals{FieldsFound: 2, Brand: strPtr("Tropicana"), ExplicitFromTo: true},
			want: TierReview,
		},
		{
			name: "one field is review",
			sig:  Signals{FieldsFound: 1},
			want: TierReview,
		},
		{
			name: "nothing found is discard",
			sig:  Signals{},
			want: TierDiscard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTier(tt.sig))
		})
	}
}

// Increasing FieldsFound while brand and the explicit flag stay set never
// demotes the tier.
func TestClassifyTierMonotonic(t *testing.T) {
	rank := map[Tier]int{TierDiscard: 0, TierReview: 1, TierAuto: 2}

	prev := TierDiscard
	for fields := 0; fields <= 6; fields++ {
		tier := ClassifyTier(Signals{
			FieldsFound:    fields,
			Brand:          strPtr("Tropicana"),
			ExplicitFromTo: true,
		})
		assert.GreaterOrEqual(t, rank[tier], rank[prev], "fields_found=%d", fields)
		prev = tier
	}
}
