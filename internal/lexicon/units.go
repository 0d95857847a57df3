package lexicon

import "strings"

// Canonical unit codes: oz, fl oz, lb, g, kg, ml, l, ct, sheets, rolls, pt,
// qt, gal, sq ft. Tokens already in canonical form pass through the synonym
// lookup unchanged.
var unitSynonyms = map[string]string{
	"ounce":  "oz",
	"fl oz":  "fl oz",
	"fl. oz": "fl oz",
	"fl.oz":  "fl oz",
	"floz":   "fl oz",
	"pound":  "lb",
	"gram":   "g",
	"liter":  "l",
	"pint":   "pt",
	"quart":  "qt",
	"gallon": "gal",
	"sheet":  "sheets",
	"roll":   "rolls",
	"piece":  "ct",
	"count":  "ct",
	"sq ft":  "sq ft",
	"sq. ft": "sq ft",
	"sq.ft":  "sq ft",
	"sqft":   "sq ft",
}

// NormalizeUnit canonicalizes a free-form unit token. It is pure and total:
// an empty token defaults to "oz" and unknown tokens pass through unchanged.
func NormalizeUnit(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	if u == "" {
		return "oz"
	}
	u = strings.Join(strings.Fields(u), " ")
	if u != "s" {
		u = strings.TrimSuffix(u, "s")
	}
	if canonical, ok := unitSynonyms[u]; ok {
		return canonical
	}
	return u
}
