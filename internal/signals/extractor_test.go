package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullcarts/shrinktrack/internal/lexicon"
)

func newTestExtractor() *Extractor {
	return NewExtractor(lexicon.Default())
}

func TestExtractExplicitFromTo(t *testing.T) {
	e := newTestExtractor()

	s := e.Extract("The box went from 52oz to 46oz overnight")

	require.NotNil(t, s.OldSize)
	require.NotNil(t, s.NewSize)
	assert.Equal(t, 52.0, *s.OldSize)
	assert.Equal(t, 46.0, *s.NewSize)
	require.NotNil(t, s.OldUnit)
	require.NotNil(t, s.NewUnit)
	assert.Equal(t, "oz", *s.OldUnit)
	assert.Equal(t, "oz", *s.NewUnit)
	assert.True(t, s.ExplicitFromTo)
	assert.Equal(t, 2, s.FieldsFound)
}

func TestExtractExplicitSelfCorrectsDirection(t *testing.T) {
	e := newTestExtractor()

	// Written backwards: the larger value trails, direction resolves by
	// magnitude, not textual order.
	s := e.Extract("was 46oz now 64oz... wait, other way around")

	require.NotNil(t, s.OldSize)
	require.NotNil(t, s.NewSize)
	assert.Equal(t, 64.0, *s.OldSize)
	assert.Equal(t, 46.0, *s.NewSize)
	assert.True(t, s.ExplicitFromTo)
}

func TestExtractArrowForm(t *testing.T) {
	e := newTestExtractor()

	s := e.Extract("Cereal downsized: 18oz -> 15.4oz, same box")

	require.NotNil(t, s.OldSize)
	require.NotNil(t, s.NewSize)
	assert.Equal(t, 18.0, *s.OldSize)
	assert.Equal(t, 15.4, *s.NewSize)
	assert.True(t, s.ExplicitFromTo)
}

func TestExtractExplicitInheritsFirstUnit(t *testing.T) {
	e := newTestExtractor()

	s := e.Extract("went from 52oz to 46")

	require.NotNil(t, s.NewUnit)
	assert.Equal(t, "oz", *s.NewUnit)
	assert.True(t, s.ExplicitFromTo)
}

func TestExtractImplicitPair(t *testing.T) {
	e := newTestExtractor()

	// No directional cue, larger number trails: magnitude decides.
	s := e.Extract("40oz now 64oz")

	require.NotNil(t, s.OldSize)
	require.NotNil(t, s.NewSize)
	assert.Equal(t, 64.0, *s.OldSize)
	assert.Equal(t, 40.0, *s.NewSize)
	assert.False(t, s.ExplicitFromTo)
	assert.Equal(t, 1, s.FieldsFound)
}

func TestExtractSingleMention(t *testing.T) {
	e := newTestExtractor()

	s := e.Extract("The jug is 64oz")

	assert.Nil(t, s.OldSize)
	require.NotNil(t, s.NewSize)
	assert.Equal(t, 64.0, *s.NewSize)
	assert.False(t, s.ExplicitFromTo)
	assert.Equal(t, 0, s.FieldsFound)
}

func TestExtractMismatchedUnitsSuppressed(t *testing.T) {
	e := newTestExtractor()

	// A mismatched-unit pair must never be reported as a change.
	s := e.Extract("bought the 12oz bag but the label says 12g protein")

	assert.Nil(t, s.OldSize)
	assert.Nil(t, s.NewSize)
	assert.Equal(t, 0, s.FieldsFound)
}

func TestExtractEqualValuesSuppressed(t *testing.T) {
	e := newTestExtractor()

	s := e.Extract("still 12oz here and 12oz there")

	assert.Nil(t, s.OldSize)
	assert.Nil(t, s.NewSize)
}

func TestExtractPrices(t *testing.T) {
	e := newTestExtractor()

	t.Run("pair", func(t *testing.T) {
		s := e.Extract("used to cost $3.99 and now it's $4.99")
		require.NotNil(t, s.OldPrice)
		require.NotNil(t, s.NewPrice)
		assert.Equal(t, 3.99, *s.OldPrice)
		assert.Equal(t, 4.99, *s.NewPrice)
		assert.Equal(t, 1, s.FieldsFound)
	})

	t.Run("single", func(t *testing.T) {
		s := e.Extract("still $4.99 though")
		assert.Nil(t, s.OldPrice)
		require.NotNil(t, s.NewPrice)
		assert.Equal(t, 4.99, *s.NewPrice)
	})
}

func TestExtractBrand(t *testing.T) {
	e := newTestExtractor()

	s := e.Extract("Tropicana pulled a fast one")

	require.NotNil(t, s.Brand)
	assert.Equal(t, "Tropicana", *s.Brand)
	assert.Equal(t, 1, s.FieldsFound)
}

func TestExtractProductHint(t *testing.T) {
	e := newTestExtractor()

	t.Run("first line only", func(t *testing.T) {
		s := e.Extract("Tropicana OJ shrank\nLong body text here")
		assert.Equal(t, "Tropicana OJ shrank", s.ProductHint)
	})

	t.Run("moderator tags stripped", func(t *testing.T) {
		s := e.Extract("[Discussion] Is this shrinkflation?\nbody")
		assert.Equal(t, "Is this shrinkflation?", s.ProductHint)
	})

	t.Run("truncated to 120", func(t *testing.T) {
		long := ""
		for i := 0; i < 30; i++ {
			long += "abcde"
		}
		s := e.Extract(long)
		assert.Len(t, []rune(s.ProductHint), 120)
	})
}

func TestExtractNeverPanicsOnJunk(t *testing.T) {
	e := newTestExtractor()

	for _, text := range []string{"", "\n\n\n", "$$$ oz oz oz", "from to", "9999999999999999999999oz to 1oz"} {
		assert.NotPanics(t, func() { e.Extract(text) })
	}
}

func TestExtractEndToEndScenario(t *testing.T) {
	e := newTestExtractor()

	s := e.Extract("Tropicana OJ went from 52oz to 46oz, same price!\n")

	require.NotNil(t, s.Brand)
	assert.Equal(t, "Tropicana", *s.Brand)
	require.NotNil(t, s.OldSize)
	require.NotNil(t, s.NewSize)
	assert.Equal(t, 52.0, *s.OldSize)
	assert.Equal(t, 46.0, *s.NewSize)
	assert.Equal(t, "oz", *s.OldUnit)
	assert.Equal(t, "oz", *s.NewUnit)
	assert.True(t, s.ExplicitFromTo)
	assert.Equal(t, 3, s.FieldsFound)
	assert.Equal(t, TierAuto, ClassifyTier(s))
}
