package signals

import (
	"strconv"
	"strings"

	"github.com/fullcarts/shrinktrack/internal/lexicon"
)

// Extractor turns raw post text into Signals. Extraction is total: malformed
// input degrades to fewer populated fields, never an error.
type Extractor struct {
	lex *lexicon.Lexicon
}

func NewExtractor(lex *lexicon.Lexicon) *Extractor {
	return &Extractor{lex: lex}
}

const productHintMaxLen = 120

func (e *Extractor) Extract(text string) Signals {
	var s Signals

	if brand, ok := e.lex.MatchBrand(text); ok {
		s.Brand = &brand
		s.FieldsFound++
	}

	e.extractExplicitSize(text, &s)
	if !s.ExplicitFromTo {
		e.extractImplicitSize(text, &s)
	}

	e.extractPrices(text, &s)

	s.ProductHint = e.productHint(text)

	return s
}

// extractExplicitSize tries the directional cue-word pattern, then the
// arrow/versus form. A missing second unit inherits the first. Direction is
// resolved by magnitude, so mis-ordered human phrasing is self-correcting.
func (e *Extractor) extractExplicitSize(text string, s *Signals) {
	m := e.lex.FromToPattern.FindStringSubmatch(text)
	if m == nil {
		m = e.lex.ArrowPattern.FindStringSubmatch(text)
	}
	if m == nil {
		return
	}

	oldVal, err1 := strconv.ParseFloat(m[1], 64)
	newVal, err2 := strconv.ParseFloat(m[3], 64)
	if err1 != nil || err2 != nil || oldVal == newVal {
		return
	}

	oldUnit := lexicon.NormalizeUnit(m[2])
	newUnit := m[4]
	if newUnit == "" {
		newUnit = oldUnit
	} else {
		newUnit = lexicon.NormalizeUnit(newUnit)
	}

	if newVal > oldVal {
		oldVal, newVal = newVal, oldVal
		oldUnit, newUnit = newUnit, oldUnit
	}

	s.OldSize = &oldVal
	s.NewSize = &newVal
	s.OldUnit = &oldUnit
	s.NewUnit = &newUnit
	s.ExplicitFromTo = true
	s.FieldsFound += 2
}

// extractImplicitSize falls back to bare unit mentions: first and last become
// the endpoints. A pair with mismatched units or equal values is never
// reported as a change. A single mention records only the new size.
func (e *Extractor) extractImplicitSize(text string, s *Signals) {
	mentions := e.lex.SizePattern.FindAllStringSubmatch(text, -1)

	switch {
	case len(mentions) >= 2:
		first, err1 := strconv.ParseFloat(mentions[0][1], 64)
		last, err2 := strconv.ParseFloat(mentions[len(mentions)-1][1], 64)
		if err1 != nil || err2 != nil {
			return
		}
		firstUnit := lexicon.NormalizeUnit(mentions[0][2])
		lastUnit := lexicon.NormalizeUnit(mentions[len(mentions)-1][2])
		if first == last || firstUnit != lastUnit {
			return
		}
		oldVal, newVal := first, last
		if newVal > oldVal {
			oldVal, newVal = newVal, oldVal
		}
		s.OldSize = &oldVal
		s.NewSize = &newVal
		s.OldUnit = &firstUnit
		s.NewUnit = &lastUnit
		s.FieldsFound++
	case len(mentions) == 1:
		val, err := strconv.ParseFloat(mentions[0][1], 64)
		if err != nil {
			return
		}
		unit := lexicon.NormalizeUnit(mentions[0][2])
		s.NewSize = &val
		s.NewUnit = &unit
	}
}

func (e *Extractor) extractPrices(text string, s *Signals) {
	prices := e.lex.PricePattern.FindAllStringSubmatch(text, -1)

	switch {
	case len(prices) >= 2:
		first, err1 := strconv.ParseFloat(prices[0][1], 64)
		last, err2 := strconv.ParseFloat(prices[len(prices)-1][1], 64)
		if err1 != nil || err2 != nil {
			return
		}
		s.OldPrice = &first
		s.NewPrice = &last
		s.FieldsFound++
	case len(prices) == 1:
		val, err := strconv.ParseFloat(prices[0][1], 64)
		if err != nil {
			return
		}
		s.NewPrice = &val
	}
}

func (e *Extractor) productHint(text string) string {
	firstLine, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	if r := []rune(firstLine); len(r) > productHintMaxLen {
		firstLine = string(r[:productHintMaxLen])
	}
	return e.lex.StripTags(firstLine)
}
