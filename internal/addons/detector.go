// Package addons classifies unstructured option labels into the fixed
// fulfilment taxonomy and sums their quantities.
package addons

import (
	"regexp"
	"strings"

	"github.com/angelmondragon/crawlops-backend/internal/payload"
)

// Category is one fulfilment bucket.
type Category string

const (
	CategoryTShirts   Category = "tshirts"
	CategoryCocktails Category = "cocktails"
	CategoryPhotos    Category = "photos"
)

// Categories lists, in match priority, the whole-word keywords of each category.
var Categories = []struct {
	Category Category
	Keywords []string
}{
	{Category: CategoryTShirts, Keywords: []string{"tshirt", "tshirts", "shirt", "shirts", "tee", "tees"}},
	{Category: CategoryCocktails, Keywords: []string{"cocktail", "cocktails", "drink", "drinks"}},
	{Category: CategoryPhotos, Keywords: []string{"photo", "photos", "picture", "pictures", "photography"}},
}

// genericLabels carry no meaning of their own; the option value is tested instead.
var genericLabels = map[string]struct{}{
	"":          {},
	"option":    {},
	"options":   {},
	"selection": {},
	"selected":  {},
	"choice":    {},
	"choices":   {},
	"extra":     {},
	"extras":    {},
	"addon":     {},
	"addons":    {},
	"add on":    {},
	"add ons":   {},
	"item":      {},
	"items":     {},
	"value":     {},
	"variant":   {},
	"package":   {},
	"upgrade":   {},
}

// Extras holds summed add-on quantities.
type Extras struct {
	TShirts   int `json:"tshirts"`
	Cocktails int `json:"cocktails"`
	Photos    int `json:"photos"`
}

// Add returns the elementwise sum of e and other.
func (e Extras) Add(other Extras) Extras {
	return Extras{
		TShirts:   e.TShirts + other.TShirts,
		Cocktails: e.Cocktails + other.Cocktails,
		Photos:    e.Photos + other.Photos,
	}
}

// IsZero reports whether no add-on was counted.
func (e Extras) IsZero() bool {
	return e == Extras{}
}

func (e *Extras) add(category Category, n int) {
	switch category {
	case CategoryTShirts:
		e.TShirts += n
	case CategoryCocktails:
		e.Cocktails += n
	case CategoryPhotos:
		e.Photos += n
	}
}

var (
	tshirtFold = regexp.MustCompile(`\bt[\s-]?shirt`)
	nonWord    = regexp.MustCompile(`[^a-z0-9]+`)
	valueSplit = regexp.MustCompile(`(?i)\s*(?:[,;+&/|]|\band\b)\s*`)
)

// Detect classifies each option and sums the matched quantities. A labelled
// option counts toward one category; a generic option's value may list several
// ("2 cocktails, 1 t-shirt"). Unrecognised options are ignored.
func Detect(options []payload.Option) Extras {
	var out Extras
	for _, opt := range options {
		out = out.Add(detectOption(opt))
	}
	return out
}

func detectOption(opt payload.Option) Extras {
	var out Extras
	if category, ok := Classify(opt.Label); ok {
		out.add(category, quantity(opt.Value))
		return out
	}
	if !isGeneric(opt.Label) {
		return out
	}
	for _, part := range valueSplit.Split(payload.String(opt.Value), -1) {
		found := categoriesIn(part)
		// One segment naming two categories has no reliable pairing.
		if len(found) != 1 {
			continue
		}
		// A selected sub-option with no count stands for one unit.
		n := 1
		if v, ok := payload.FirstInt(part); ok {
			n = clamp(v)
		}
		out.add(found[0], n)
	}
	return out
}

// Classify returns the first category, in table order, whose keyword appears
// as a whole word in text.
func Classify(text string) (Category, bool) {
	found := categoriesIn(text)
	if len(found) == 0 {
		return "", false
	}
	return found[0], true
}

// categoriesIn lists every category named in text, in table order.
func categoriesIn(text string) []Category {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	var out []Category
	for _, entry := range Categories {
		for _, keyword := range entry.Keywords {
			if _, ok := tokens[keyword]; ok {
				out = append(out, entry.Category)
				break
			}
		}
	}
	return out
}

func tokenize(text string) map[string]struct{} {
	lower := strings.ToLower(text)
	lower = tshirtFold.ReplaceAllString(lower, "tshirt")
	out := make(map[string]struct{})
	for _, token := range nonWord.Split(lower, -1) {
		if token != "" {
			out[token] = struct{}{}
		}
	}
	return out
}

func isGeneric(label string) bool {
	clean := strings.Trim(nonWord.ReplaceAllString(strings.ToLower(label), " "), " ")
	_, ok := genericLabels[clean]
	return ok
}

// quantity reads label-matched values: numbers as-is, strings by their first
// embedded integer, anything else zero.
func quantity(value any) int {
	if n, ok := payload.Int(value); ok {
		return clamp(n)
	}
	return 0
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
