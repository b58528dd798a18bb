package dish

import (
	"regexp"
	"strings"

	"lunch-menu-planner/internal/textnorm"
)

// Rule maps a name pattern to a value. Patterns are written in lower case,
// usually with Czech accents; each rule also compiles a folded twin so names
// typed without diacritics match the same way.
type Rule[T any] struct {
	Name    string
	Pattern string
	Value   T

	accented *regexp.Regexp
	folded   *regexp.Regexp
}

// NewRule compiles pattern and panics on a malformed expression. Rule tables
// are package-level values, so a bad pattern fails at init.
func NewRule[T any](name, pattern string, value T) Rule[T] {
	return Rule[T]{
		Name:     name,
		Pattern:  pattern,
		Value:    value,
		accented: regexp.MustCompile(pattern),
		folded:   regexp.MustCompile(textnorm.Fold(pattern)),
	}
}

// Match reports whether the rule fires for the given text.
func (r Rule[T]) Match(t Text) bool {
	return r.accented.MatchString(t.Lower) || r.folded.MatchString(t.Folded)
}

// RuleTable is an ordered list of rules evaluated first-match-wins.
type RuleTable[T any] []Rule[T]

// First returns the value and name of the first matching rule.
func (rt RuleTable[T]) First(t Text) (T, string, bool) {
	for _, r := range rt {
		if r.Match(t) {
			return r.Value, r.Name, true
		}
	}
	var zero T
	return zero, "", false
}

// FirstWhere is First restricted to rules whose value passes keep.
func (rt RuleTable[T]) FirstWhere(t Text, keep func(T) bool) (T, bool) {
	for _, r := range rt {
		if keep(r.Value) && r.Match(t) {
			return r.Value, true
		}
	}
	var zero T
	return zero, false
}

// Text holds the two lower-cased forms every rule is matched against.
type Text struct {
	Lower  string
	Folded string
}

// NewText prepares a dish name for rule matching.
func NewText(name string) Text {
	return Text{
		Lower:  strings.ToLower(name),
		Folded: textnorm.Fold(name),
	}
}

// ProteinRules is evaluated in order. Meat rules precede the vegetarian ones
// so a dish naming both a vegetable and a meat is never vegetarian. Fish sits
// before the generic smoked rule so smoked salmon stays fish; the cheese
// schnitzel exception precedes the generic schnitzel rule. Duck and goose
// count as poultry; lamb, rabbit and game have no protein class of their own
// and map to mixed.
var ProteinRules = RuleTable[Protein]{
	NewRule("chicken", `kuř(e|ecí|etě|ec|át)|drůbež|krůt|kachn|kachen|\bhus(a|í|i|u|y|ou)\b|chicken|turkey|poultry|duck|goose`, ProteinChicken),
	NewRule("pork", `vepř|bůček|šunk|klobás|slanin|salám|prosciutt|kotlet|krkovic|pork|bacon|\bham\b|sausage|salami`, ProteinPork),
	NewRule("fish", `ryb|losos|tresk|kapr|tilapi|pangas|tuňák|pstruh|krevet|fish|salmon|\bcod\b|carp|tuna|trout|shrimp|prawn`, ProteinFish),
	NewRule("smoked", `uzen|smoked`, ProteinPork),
	NewRule("beef", `hověz|guláš|svíčková|roštěn|steak|beef|goulash|hamburger|cheeseburger`, ProteinBeef),
	NewRule("game", `jehně|králí|králič|zvěřin|srnč|jelen|divoč|lamb|rabbit|venison`, ProteinMixed),
	NewRule("cheese-schnitzel", `sýrový řízek|smažený sýr|fried cheese|cheese schnitzel`, ProteinVege),
	NewRule("schnitzel", `řízek|holandský|vídeňský|schnitzel`, ProteinPork),
	NewRule("vege-explicit", `tvaroh|tofu|vege|vegetarián|vegan|plack|palačin|omelet|pancake|cottage`, ProteinVege),
	NewRule("vege-cheese", `sýr.*salát|sýrov|mozzarell|ricott|halloumi|\bcheese\b`, ProteinVege),
	NewRule("vege-vegetable", `zelenin|špenát|houb|těstovin|noky|gnocchi|gnochi|rizoto|risotto|vegetable|spinach|mushroom|pasta`, ProteinVege),
	NewRule("vege-legume", `čočk|fazol|cizrn|lentil|bean|chickpea`, ProteinVege),
}

// MeatIndicators is the broader meat pattern set. When it matches, vegetarian
// protein rules are skipped entirely.
var MeatIndicators = NewRule("meat", `uzen|slanin|šunk|klobás|salám|prosciutt|maso|masem|řízek|bůček|vepř|hověz|kuř|krůt|drůbež|kachn|kachen|\bhus(a|í|i|u|y|ou)\b|jehně|králí|králič|zvěřin|srnč|jelen|divoč|ryb|losos|kapr|tresk|krevet|smoked|bacon|\bham\b|sausage|salami|meat|schnitzel|pork|beef|chicken|turkey|duck|goose|lamb|rabbit|venison|fish|salmon|\bcod\b|carp|tuna|shrimp|prawn|hamburger|cheeseburger`, true)

// HeavinessRules: light indicators win over heavy ones.
var HeavinessRules = RuleTable[Heaviness]{
	NewRule("light", `salát|polévk|lehk|zelenin|svěží|salad|soup|\blight\b|vegetable|fresh`, HeavinessLight),
	NewRule("heavy", `guláš|svíčková|řízek|pečen|smažen|knedlík|omáčk|bůček|klobás|uzen|goulash|schnitzel|roast|fried|dumpling|sauce|pork belly|sausage|smoked`, HeavinessHeavy),
}

// SeasonRules: summer indicators win over winter ones.
var SeasonRules = RuleTable[Season]{
	NewRule("summer", `gril|salát|lehk|svěží|rajčat|okurk|meloun|grill|salad|\blight\b|fresh|tomato|cucumber|melon`, SeasonSummer),
	NewRule("winter", `guláš|svíčková|pečen|zim|hork|tepl|svařen|punč|goulash|roast|winter|\bhot\b|warm|mulled|punch`, SeasonWinter),
}

// BaseRules maps structural patterns to a canonical dish base. Two dishes
// with the same base are variants of one preparation.
var BaseRules = RuleTable[string]{
	NewRule("noky", `\b(gnocchi|gnochi|noky|noků|nokami)\b|potato dumpling`, "noky"),
	NewRule("penne", `\bpenne\b`, "penne"),
	NewRule("spaghetti", `\bspaghetti\b|\bšpaget`, "spaghetti"),
	NewRule("tagliatelle", `\btagliatell`, "tagliatelle"),
	NewRule("lasagne", `\blasagn|\blasaň`, "lasagne"),
	NewRule("risotto", `\brisott|\brizot`, "risotto"),
	NewRule("tortilla", `\btortill`, "tortilla"),
	NewRule("burger", `burger`, "burger"),
	NewRule("kuskus", `\bkuskus|\bcouscous`, "kuskus"),
	NewRule("halušky", `\bhalušk`, "halušky"),
	NewRule("pirohy", `\bpiroh|\bpierogi`, "pirohy"),
	NewRule("strapačky", `\bstrapačk|\bcmund`, "strapačky"),
	NewRule("zapečené těstoviny", `zapečené těstoviny|pasta bake|baked pasta`, "zapečené těstoviny"),
	NewRule("minestrone", `\bminestr`, "minestrone"),
}

var (
	soupCategory      = NewRule("soup", `polévk|soup`, true)
	lunchMenuCategory = NewRule("lunch-menu", `obědové menu|lunch menu`, true)
)

// IsSoupCategory reports whether a raw source category denotes soups.
func IsSoupCategory(category string) bool {
	return soupCategory.Match(NewText(category))
}

// IsLunchMenuCategory reports whether a raw source category holds lunch mains.
func IsLunchMenuCategory(category string) bool {
	return lunchMenuCategory.Match(NewText(category))
}
