package lexicon

import (
	"regexp"
	"strings"
)

// Lexicon holds the static domain knowledge the extractor matches against.
// Brand and category lists are scanned in order and the first hit wins, so
// longer or more specific entries must precede the generic ones they contain
// (e.g. "heinz ketchup" before "heinz").
type Lexicon struct {
	Brands     []string
	Categories []Category

	SizePattern      *regexp.Regexp
	PricePattern     *regexp.Regexp
	FromToPattern    *regexp.Regexp
	ArrowPattern     *regexp.Regexp
	RelevancePattern *regexp.Regexp

	tagPatterns []*regexp.Regexp
}

type Category struct {
	Name    string
	Pattern *regexp.Regexp
}

const unitAlternation = `oz|fl\.?\s*oz|ounce[s]?|lb[s]?|pound[s]?|g|gram[s]?|kg|ml|liter[s]?|l|ct|count|pack|piece[s]?|sheet[s]?|roll[s]?|sq\.?\s*ft|pt|pint[s]?|qt|quart[s]?|gal|gallon[s]?`

func Default() *Lexicon {
	return &Lexicon{
		Brands: []string{
			"tropicana", "lays", "lay's", "doritos", "gatorade", "pepsi", "coca-cola", "coke",
			"hellmann's", "hellmanns", "unilever", "general mills", "cheerios", "nature valley",
			"tide", "dawn", "bounty", "charmin", "folgers", "maxwell house", "starbucks",
			"oreo", "nabisco", "mondelez", "campbell's", "campbells", "kraft",
			"heinz ketchup", "heinz", "kellogg's", "kelloggs", "special k", "frosted flakes",
			"quaker", "pepsico", "post", "planters", "skippy", "jif", "peanut butter",
			"trader joe's", "trader joes", "costco", "kirkland", "whole foods", "365",
			"ben & jerry's", "haagen-dazs", "breyers", "blue bell",
			"tyson", "perdue", "oscar mayer", "ball park", "hebrew national",
			"minute maid", "simply orange", "florida's natural",
			"colgate", "crest", "oral-b", "listerine",
			"febreze", "glad", "ziploc", "scotch-brite",
			"stouffer's", "lean cuisine", "marie callender's",
			"progresso", "amy's", "annie's", "horizon",
			"tostitos", "ruffles", "cheetos", "fritos", "sun chips",
			"pringles", "wheat thins", "triscuit", "ritz", "goldfish",
			"hershey", "reese's", "kit kat", "snickers", "m&m's", "twix",
			"nestle", "nescafe", "coffee mate", "dreyer's", "edy's",
			"tillamook", "chobani", "yoplait", "dannon", "oikos",
			"jimmy dean", "johnsonville", "hillshire",
			"goya", "old el paso", "taco bell", "mission",
			"barilla", "ragu", "prego", "classico", "bertolli",
			"hidden valley", "ranch", "french's", "grey poupon",
			"velveeta", "philadelphia", "sargento", "borden",
			"totino's", "digiorno", "red baron", "tombstone",
			"hot pockets", "hot pocket", "bagel bites",
			"frito-lay", "frito lay", "pepperidge farm",
			"smucker's", "smuckers", "welch's", "welchs",
			"aunt jemima", "pearl milling", "mrs butterworth",
			"wonder bread", "sara lee", "arnold", "dave's killer bread",
			"thomas'", "thomas", "entenmann's", "entenmanns",
			"little debbie", "hostess", "drake's",
			"scott", "cottonelle", "viva", "kleenex", "puffs",
			"huggies", "pampers", "luvs",
			"downy", "gain", "arm & hammer", "oxiclean",
			"clorox", "lysol", "pine-sol", "mr clean",
			"dial", "irish spring", "dove", "ivory", "olay",
			"pantene", "head & shoulders", "suave", "tresemme",
			"toblerone", "cadbury", "lindt", "ghirardelli", "godiva",
		},
		Categories: []Category{
			{"Beverages", regexp.MustCompile(`(?i)juice|soda|water|drink|coffee|tea|milk|creamer|gatorade|powerade|lemonade|beer|wine|energy drink`)},
			{"Snacks", regexp.MustCompile(`(?i)chip[s]?|cookie|cracker|pretzel|popcorn|candy|chocolate|gum|snack|goldfish|cheeto|dorito|frito|pringles|oreo|ritz|wheat thin`)},
			{"Cereal", regexp.MustCompile(`(?i)cereal|oat|granola|cheerio|frosted flake|special k|raisin bran`)},
			{"Paper Goods", regexp.MustCompile(`(?i)paper towel|toilet paper|tissue|napkin|bounty|charmin|scott|cottonelle|kleenex`)},
			{"Household", regexp.MustCompile(`(?i)soap|shampoo|conditioner|detergent|cleaner|dish|laundry|tide|dawn|lysol|clorox|toothpaste|deodorant`)},
			{"Frozen", regexp.MustCompile(`(?i)ice cream|frozen|pizza|bagel bite|hot pocket|totino|digiorno|stouffer|lean cuisine`)},
			{"Bakery", regexp.MustCompile(`(?i)bread|bagel|muffin|roll|bun|tortilla|wrap|pita|croissant|english muffin`)},
			{"Dairy", regexp.MustCompile(`(?i)yogurt|cheese|butter|cream cheese|sour cream|cottage cheese|milk|egg`)},
			{"Pantry", regexp.MustCompile(`(?i)sauce|ketchup|mustard|mayo|dressing|salsa|soup|broth|pasta|rice|bean|canned`)},
			{"Meat", regexp.MustCompile(`(?i)chicken|beef|pork|turkey|bacon|sausage|hot dog|deli|meat|fish|shrimp|salmon`)},
			{"Spreads", regexp.MustCompile(`(?i)peanut butter|jam|jelly|honey|syrup|spread|nutella`)},
		},
		SizePattern:  regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(` + unitAlternation + `)`),
		PricePattern: regexp.MustCompile(`\$\s*(\d+(?:\.\d{1,2})?)`),
		FromToPattern: regexp.MustCompile(
			`(?i)(?:went from|from|was|used to be|previously|old[:]?|originally|started at)\s+` +
				`(\d+(?:\.\d+)?)\s*(` + unitAlternation + `)?` +
				`\s*(?:to|now|→|->|-->|–|—|-|down to|reduced to|shrunk to|changed to)\s*` +
				`(\d+(?:\.\d+)?)\s*(` + unitAlternation + `)?`),
		ArrowPattern: regexp.MustCompile(
			`(?i)(\d+(?:\.\d+)?)\s*(oz|fl\.?\s*oz|g|gram[s]?|ml|lb[s]?|ct|count|sheet[s]?|roll[s]?)` +
				`\s*(?:→|->|-->|⟶|to|vs\.?|versus|down to)\s*` +
				`(\d+(?:\.\d+)?)\s*(oz|fl\.?\s*oz|g|gram[s]?|ml|lb[s]?|ct|count|sheet[s]?|roll[s]?)?`),
		RelevancePattern: regexp.MustCompile(
			`(?i)\b(shrinkflation|shrunk|smaller|reduced|less|shrank|downsized|downsizing|` +
				`size cut|weight cut|ounces less|fewer ounces|net weight|same price|price increase|` +
				`got smaller|getting smaller|they reduced|they cut|less product|rip[- ]?off|` +
				`same box|same package|smaller amount|used to be|went from|half the size|` +
				`thin[n]?er|narrower|shorter|lighter|watered down|diluted|` +
				`fewer count|less sheets|less rolls|family size|not as big|getting ripped off)\b`),
		tagPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\[?META\]?\s*`),
			regexp.MustCompile(`(?i)^\[?Discussion\]?\s*`),
		},
	}
}

// MatchBrand returns the first brand that occurs as a substring of the
// lowercased text, title-cased for display.
func (l *Lexicon) MatchBrand(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, b := range l.Brands {
		if strings.Contains(lower, b) {
			return titleCase(b), true
		}
	}
	return "", false
}

// GuessCategory matches text against the ordered taxonomy; first match wins,
// so list order encodes priority among overlapping keyword sets.
func (l *Lexicon) GuessCategory(text string) string {
	for _, c := range l.Categories {
		if c.Pattern.MatchString(text) {
			return c.Name
		}
	}
	return "Other"
}

// Relevant reports whether the text mentions any topical shrinkflation keyword.
func (l *Lexicon) Relevant(text string) bool {
	return l.RelevancePattern.MatchString(text)
}

// StripTags removes leading moderator tags like [META] or [Discussion].
func (l *Lexicon) StripTags(line string) string {
	for _, p := range l.tagPatterns {
		line = p.ReplaceAllString(line, "")
	}
	return strings.TrimSpace(line)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}
