// Package party derives a men/women headcount from option labels and free
// text, reconciled against independently reported party totals.
package party

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/angelmondragon/crawlops-backend/internal/addons"
	"github.com/angelmondragon/crawlops-backend/internal/payload"
	"github.com/angelmondragon/crawlops-backend/pkg/enums"
)

// Input carries everything the extractor reads from one booking.
type Input struct {
	Options []payload.Option
	// Totals are independently reported party sizes in priority order; the
	// first non-nil, non-negative value is trusted.
	Totals []*int
	Status enums.BookingStatus
}

// Breakdown is the reconciled headcount.
type Breakdown struct {
	Men   int `json:"men"`
	Women int `json:"women"`
	// Gendered is true when at least one option carried a men/women signal.
	Gendered bool `json:"gendered"`
	// Rescaled is true when the extracted pair was adjusted to a trusted total.
	Rescaled bool `json:"rescaled"`
}

// Total returns Men + Women.
func (b Breakdown) Total() int {
	return b.Men + b.Women
}

var (
	tokenSplit = regexp.MustCompile(`[^a-z]+`)

	menWords   = `men|man|males?|boys?|gents?|guys?`
	womenWords = `women|woman|females?|girls?|lady|ladies`

	menCountFirst   = regexp.MustCompile(`(?i)\b(\d+)\s*(?:x\s*)?(?:` + menWords + `)\b`)
	womenCountFirst = regexp.MustCompile(`(?i)\b(\d+)\s*(?:x\s*)?(?:` + womenWords + `)\b`)
	menCountAfter   = regexp.MustCompile(`(?i)\b(?:` + menWords + `)\s*[:=x]\s*(\d+)\b`)
	womenCountAfter = regexp.MustCompile(`(?i)\b(?:` + womenWords + `)\s*[:=x]\s*(\d+)\b`)
)

// Extract returns a breakdown whose sum equals the trusted total whenever one
// is present. Rebooked bookings always yield zero.
func Extract(in Input) Breakdown {
	if in.Status == enums.BookingStatusRebooked {
		return Breakdown{}
	}

	men, women, gendered := scan(in.Options)
	total, hasTotal := trustedTotal(in.Totals)

	switch {
	case !hasTotal:
		return Breakdown{Men: men, Women: women, Gendered: gendered}
	case !gendered || men+women == 0:
		return assignPrimary(total, gendered)
	case men+women == total:
		return Breakdown{Men: men, Women: women, Gendered: true}
	default:
		m, w := Rescale(men, women, total)
		return Breakdown{Men: m, Women: w, Gendered: true, Rescaled: true}
	}
}

func assignPrimary(total int, gendered bool) Breakdown {
	b := Breakdown{Gendered: gendered, Rescaled: gendered && total > 0}
	if PrimaryBucket == BucketWomen {
		b.Women = total
	} else {
		b.Men = total
	}
	return b
}

// Rescale distributes total across a men/women pair proportionally using the
// largest-remainder rule. Ties in the fractional part go to the primary
// bucket. The result always sums to total exactly.
func Rescale(men, women, total int) (int, int) {
	if total <= 0 {
		return 0, 0
	}
	if men < 0 {
		men = 0
	}
	if women < 0 {
		women = 0
	}
	sum := men + women
	if sum == 0 {
		if PrimaryBucket == BucketWomen {
			return 0, total
		}
		return total, 0
	}

	// Integer arithmetic keeps the remainders exact.
	menFloor, menRem := (men*total)/sum, (men*total)%sum
	womenFloor, womenRem := (women*total)/sum, (women*total)%sum
	leftover := total - menFloor - womenFloor

	for leftover > 0 {
		menFirst := menRem > womenRem || (menRem == womenRem && PrimaryBucket == BucketMen)
		if menFirst {
			menFloor++
			menRem = -1
		} else {
			womenFloor++
			womenRem = -1
		}
		leftover--
	}
	return menFloor, womenFloor
}

func trustedTotal(totals []*int) (int, bool) {
	for _, t := range totals {
		if t != nil && *t >= 0 {
			return *t, true
		}
	}
	return 0, false
}

// scan walks options and returns the summed bucket counts. Add-on options
// ("Men's T-Shirt", "Drinks for ladies") are merchandise, not people.
func scan(options []payload.Option) (men, women int, gendered bool) {
	for _, opt := range options {
		if _, isAddOn := addons.Classify(opt.Label); isAddOn {
			continue
		}
		bucket, ok := classify(opt.Label)
		if ok {
			n := labelledCount(opt, bucket)
			gendered = true
			if bucket == BucketMen {
				men += n
			} else {
				women += n
			}
			continue
		}
		text := strings.TrimSpace(opt.Label + " " + payload.String(opt.Value))
		if _, isAddOn := addons.Classify(text); isAddOn {
			continue
		}
		m, w, found := freeText(text)
		if found {
			gendered = true
			men += m
			women += w
		}
	}
	return men, women, gendered
}

// classify matches a label's tokens against the bucket tables. Labels that
// hit both buckets ("Men/Women") are ambiguous and left to free text.
func classify(label string) (Bucket, bool) {
	var found Bucket
	for _, token := range tokenSplit.Split(strings.ToLower(label), -1) {
		bucket, ok := bucketByToken[token]
		if !ok {
			continue
		}
		if found != "" && found != bucket {
			return "", false
		}
		found = bucket
	}
	return found, found != ""
}

// labelledCount prefers the option value; a label such as "3 men" is read
// only through the free-text patterns so "Female (18+)" does not count 18.
func labelledCount(opt payload.Option, bucket Bucket) int {
	if n, ok := payload.Int(opt.Value); ok {
		return clamp(n)
	}
	men, women, _ := freeText(opt.Label)
	if bucket == BucketMen {
		return men
	}
	return women
}

// freeText scans "3 men", "2x women", "men: 4" style descriptions.
func freeText(text string) (men, women int, found bool) {
	if text == "" {
		return 0, 0, false
	}
	for _, pattern := range []*regexp.Regexp{menCountFirst, menCountAfter} {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			n, _ := strconv.Atoi(m[1])
			men += clamp(n)
			found = true
		}
	}
	for _, pattern := range []*regexp.Regexp{womenCountFirst, womenCountAfter} {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			n, _ := strconv.Atoi(m[1])
			women += clamp(n)
			found = true
		}
	}
	return men, women, found
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
