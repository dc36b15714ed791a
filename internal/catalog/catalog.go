// Package catalog maps noisy channel product names onto canonical product keys.
package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Entry is one canonical product. A name matches when every token of any
// one of its Match phrases is present.
type Entry struct {
	ID    string
	Label string
	Match [][]string
}

// Source records which rule produced an Identity.
type Source string

const (
	SourceCatalog   Source = "catalog"
	SourceProductID Source = "product_id"
	SourceSynthetic Source = "synthetic"
)

// Identity is the grouping key and display label of a product.
type Identity struct {
	ID     string
	Name   string
	Source Source
}

// Lookup carries the raw product fields of one order.
type Lookup struct {
	Name      string
	Variant   string
	ProductID string
	Platform  string
	BookingID string
}

// Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	entries []Entry
}

// DefaultEntries is the product line sold across all channels. Order matters:
// more specific products come first.
var DefaultEntries = []Entry{
	{ID: "vip-pub-crawl", Label: "VIP Pub Crawl", Match: [][]string{{"vip", "pub", "crawl"}, {"vip", "bar", "crawl"}}},
	{ID: "boat-party", Label: "Boat Party", Match: [][]string{{"boat", "party"}, {"party", "boat"}, {"river", "cruise", "party"}}},
	{ID: "vodka-tasting", Label: "Vodka Tasting", Match: [][]string{{"vodka", "tasting"}}},
	{ID: "karaoke-night", Label: "Karaoke Night", Match: [][]string{{"karaoke"}}},
	{ID: "pub-crawl", Label: "Pub Crawl", Match: [][]string{{"pub", "crawl"}, {"bar", "crawl"}, {"pubcrawl"}, {"nightlife", "tour"}}},
}

// New validates entries and builds a catalog.
func New(entries []Entry) (*Catalog, error) {
	seen := make(map[string]struct{}, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.ID) == "" {
			return nil, fmt.Errorf("catalog: entry %q missing id", e.Label)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate id %q", e.ID)
		}
		if len(e.Match) == 0 {
			return nil, fmt.Errorf("catalog: entry %q has no match phrases", e.ID)
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return &Catalog{entries: out}, nil
}

// Default returns the catalog built from DefaultEntries.
func Default() *Catalog {
	c, err := New(DefaultEntries)
	if err != nil {
		panic(err)
	}
	return c
}

// Canonicalize resolves a product identity: a catalog match on the cleaned
// name, then the raw numeric product id, then a synthetic platform-booking key.
// It always returns a non-empty ID.
func (c *Catalog) Canonicalize(in Lookup) Identity {
	display := CleanName(in.Name)
	tokens := tokenSet(fold(display + " " + in.Variant))
	for _, e := range c.entries {
		if matches(e, tokens) {
			return Identity{ID: e.ID, Name: e.Label, Source: SourceCatalog}
		}
	}

	if id, ok := numericProductID(in.ProductID); ok {
		name := display
		if name == "" {
			name = "Product " + id
		}
		return Identity{ID: id, Name: name, Source: SourceProductID}
	}

	platform := strings.ToLower(strings.TrimSpace(in.Platform))
	if platform == "" {
		platform = "unknown"
	}
	booking := strings.TrimSpace(in.BookingID)
	if booking == "" {
		booking = "unknown"
	}
	name := display
	if name == "" {
		name = "Unknown product"
	}
	return Identity{ID: platform + "-" + booking, Name: name, Source: SourceSynthetic}
}

func matches(e Entry, tokens map[string]struct{}) bool {
	for _, phrase := range e.Match {
		all := len(phrase) > 0
		for _, word := range phrase {
			if _, ok := tokens[word]; !ok {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

var (
	bracketed     = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|\{[^}]*\}`)
	channelTokens = regexp.MustCompile(`(?i)\b(?:getyourguide|get your guide|gyg|viator|airbnb experiences?|airbnb|hostelworld|tripadvisor|booking\.com|ticket|tickets)\b`)
	separators    = regexp.MustCompile(`\s*[|•·–—]\s*|\s+-\s+`)
	spaces        = regexp.MustCompile(`\s+`)
	nonWordRun    = regexp.MustCompile(`[^a-z0-9]+`)
	gidPrefix     = regexp.MustCompile(`^gid://[^/]+/[^/]+/`)
	digitsOnly    = regexp.MustCompile(`^\d+$`)
)

// CleanName strips channel decoration from a product name for display:
// bracketed notes, channel names and separator-joined suffixes.
func CleanName(name string) string {
	s := bracketed.ReplaceAllString(name, " ")
	s = channelTokens.ReplaceAllString(s, " ")
	parts := separators.Split(s, -1)
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(spaces.ReplaceAllString(p, " "), " :,-")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " - ")
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ReplaceAll(strings.ToLower(out), "ł", "l")
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, token := range nonWordRun.Split(s, -1) {
		if token != "" {
			out[token] = struct{}{}
		}
	}
	return out
}

func numericProductID(raw string) (string, bool) {
	s := gidPrefix.ReplaceAllString(strings.TrimSpace(raw), "")
	if digitsOnly.MatchString(s) {
		return s, true
	}
	return "", false
}
