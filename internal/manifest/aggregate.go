// Package manifest groups unified orders into the nightly operational view.
package manifest

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/crawlops-backend/internal/addons"
	"github.com/angelmondragon/crawlops-backend/internal/orders"
	"github.com/angelmondragon/crawlops-backend/pkg/enums"
)

const (
	dateLayout = "2006-01-02"
	slotLayout = "15:04"

	unknownPlatform = "unknown"
)

// StatusCounts is a histogram over every known booking status.
type StatusCounts map[enums.BookingStatus]int

func newStatusCounts() StatusCounts {
	out := make(StatusCounts, len(enums.BookingStatuses()))
	for _, s := range enums.BookingStatuses() {
		out[s] = 0
	}
	return out
}

func (s StatusCounts) add(status enums.BookingStatus, n int) {
	if !status.IsValid() {
		status = enums.BookingStatusUnknown
	}
	s[status] += n
}

// PlatformRollup is the per-channel share of a group or of the whole manifest.
type PlatformRollup struct {
	Platform string                     `json:"platform"`
	Orders   int                        `json:"orders"`
	People   int                        `json:"people"`
	Men      int                        `json:"men"`
	Women    int                        `json:"women"`
	Extras   addons.Extras              `json:"extras"`
	Amounts  map[string]decimal.Decimal `json:"amounts"`
}

func (p *PlatformRollup) merge(other PlatformRollup) {
	p.Orders += other.Orders
	p.People += other.People
	p.Men += other.Men
	p.Women += other.Women
	p.Extras = p.Extras.Add(other.Extras)
	for currency, amount := range other.Amounts {
		p.Amounts[currency] = p.Amounts[currency].Add(amount)
	}
}

// Group is every order sharing a product, local date and local timeslot.
type Group struct {
	ProductID         string                `json:"product_id"`
	ProductName       string                `json:"product_name"`
	Date              string                `json:"date"`
	Timeslot          string                `json:"timeslot"`
	TotalPeople       int                   `json:"total_people"`
	Men               int                   `json:"men"`
	Women             int                   `json:"women"`
	Extras            addons.Extras         `json:"extras"`
	StatusCounts      StatusCounts          `json:"status_counts"`
	PlatformBreakdown []PlatformRollup      `json:"platform_breakdown"`
	Orders            []orders.UnifiedOrder `json:"orders"`
}

// Summary folds every group of a manifest.
type Summary struct {
	Groups            int              `json:"groups"`
	Orders            int              `json:"orders"`
	TotalPeople       int              `json:"total_people"`
	Men               int              `json:"men"`
	Women             int              `json:"women"`
	Extras            addons.Extras    `json:"extras"`
	StatusCounts      StatusCounts     `json:"status_counts"`
	PlatformBreakdown []PlatformRollup `json:"platform_breakdown"`
}

// Manifest is the grouped operational view.
type Manifest struct {
	Groups  []Group `json:"groups"`
	Summary Summary `json:"summary"`
}

// Filter narrows the orders before grouping. Empty fields match everything.
type Filter struct {
	ProductID string
	Platform  string
}

// Apply returns the orders matching f. Platform matching ignores case.
func (f Filter) Apply(list []orders.UnifiedOrder) []orders.UnifiedOrder {
	productID := strings.TrimSpace(f.ProductID)
	platform := enums.Platform(f.Platform).Key()
	if productID == "" && platform == "" {
		return list
	}
	out := make([]orders.UnifiedOrder, 0, len(list))
	for _, o := range list {
		if productID != "" && o.ProductID != productID {
			continue
		}
		if platform != "" && platformKey(o.Platform) != platform {
			continue
		}
		out = append(out, o)
	}
	return out
}

type groupKey struct {
	productID string
	date      string
	slot      string
}

type placed struct {
	order orders.UnifiedOrder
	key   groupKey
}

// Aggregate groups orders by (product, local date, local timeslot). Date and
// timeslot are recomputed from each order's pickup instant in loc, so orders
// in the same local minute merge whatever their stored labels say. A nil loc
// is treated as UTC. The input slice is not modified.
func Aggregate(loc *time.Location, list []orders.UnifiedOrder) Manifest {
	if loc == nil {
		loc = time.UTC
	}

	items := make([]placed, 0, len(list))
	for _, o := range list {
		items = append(items, placed{order: o, key: displayKey(loc, o)})
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.key.date != b.key.date {
			return a.key.date < b.key.date
		}
		if a.key.slot != b.key.slot {
			return slotLess(a.key.slot, b.key.slot)
		}
		return orderLess(a.order, b.order)
	})

	index := make(map[groupKey]int)
	var groups []*groupBuilder
	for _, item := range items {
		i, ok := index[item.key]
		if !ok {
			i = len(groups)
			index[item.key] = i
			groups = append(groups, newGroupBuilder(item.key, item.order.ProductName))
		}
		groups[i].add(item.order)
	}

	out := Manifest{Groups: make([]Group, 0, len(groups))}
	for _, g := range groups {
		out.Groups = append(out.Groups, g.build())
	}
	sort.SliceStable(out.Groups, func(i, j int) bool {
		a, b := out.Groups[i], out.Groups[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Timeslot != b.Timeslot {
			return slotLess(a.Timeslot, b.Timeslot)
		}
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		return a.ProductID < b.ProductID
	})

	out.Summary = summarize(out.Groups)
	return out
}

func displayKey(loc *time.Location, o orders.UnifiedOrder) groupKey {
	if o.PickupDateTime != nil {
		local := o.PickupDateTime.In(loc)
		return groupKey{productID: o.ProductID, date: local.Format(dateLayout), slot: local.Format(slotLayout)}
	}
	slot := o.Timeslot
	if slot == "" {
		slot = orders.NoTimeslot
	}
	return groupKey{productID: o.ProductID, date: o.Date, slot: slot}
}

// slotLess orders timed slots chronologically and untimed slots last.
func slotLess(a, b string) bool {
	if a == orders.NoTimeslot || b == orders.NoTimeslot {
		return b == orders.NoTimeslot && a != orders.NoTimeslot
	}
	return a < b
}

func orderLess(a, b orders.UnifiedOrder) bool {
	switch {
	case a.PickupDateTime != nil && b.PickupDateTime != nil:
		if !a.PickupDateTime.Equal(*b.PickupDateTime) {
			return a.PickupDateTime.Before(*b.PickupDateTime)
		}
	case a.PickupDateTime != nil:
		return true
	case b.PickupDateTime != nil:
		return false
	}
	return a.ID < b.ID
}

type groupBuilder struct {
	group     Group
	platforms *rollups
}

func newGroupBuilder(key groupKey, productName string) *groupBuilder {
	return &groupBuilder{
		group: Group{
			ProductID:    key.productID,
			ProductName:  productName,
			Date:         key.date,
			Timeslot:     key.slot,
			StatusCounts: newStatusCounts(),
		},
		platforms: newRollups(),
	}
}

func (g *groupBuilder) add(o orders.UnifiedOrder) {
	g.group.Men += o.MenCount
	g.group.Women += o.WomenCount
	g.group.TotalPeople += o.MenCount + o.WomenCount
	g.group.Extras = g.group.Extras.Add(o.Extras)
	g.group.StatusCounts.add(o.Status, 1)
	g.group.Orders = append(g.group.Orders, o)
	g.platforms.add(o.Platform, rollupOf(o))
}

func (g *groupBuilder) build() Group {
	g.group.PlatformBreakdown = g.platforms.list()
	return g.group
}

func rollupOf(o orders.UnifiedOrder) PlatformRollup {
	r := PlatformRollup{
		Orders:  1,
		People:  o.MenCount + o.WomenCount,
		Men:     o.MenCount,
		Women:   o.WomenCount,
		Extras:  o.Extras,
		Amounts: map[string]decimal.Decimal{},
	}
	if !o.Amount.IsZero() {
		r.Amounts[strings.ToUpper(strings.TrimSpace(o.Currency))] = o.Amount
	}
	return r
}

// rollups merges channel entries by lower-cased key, keeping the first label seen.
type rollups struct {
	byKey map[string]*PlatformRollup
	keys  []string
}

func newRollups() *rollups {
	return &rollups{byKey: make(map[string]*PlatformRollup)}
}

func (r *rollups) add(label string, entry PlatformRollup) {
	key := platformKey(label)
	existing, ok := r.byKey[key]
	if !ok {
		label = strings.TrimSpace(label)
		if label == "" {
			label = unknownPlatform
		}
		existing = &PlatformRollup{Platform: label, Amounts: map[string]decimal.Decimal{}}
		r.byKey[key] = existing
		r.keys = append(r.keys, key)
	}
	existing.merge(entry)
}

func (r *rollups) list() []PlatformRollup {
	keys := append([]string(nil), r.keys...)
	sort.Strings(keys)
	out := make([]PlatformRollup, 0, len(keys))
	for _, key := range keys {
		out = append(out, *r.byKey[key])
	}
	return out
}

func platformKey(label string) string {
	key := enums.Platform(label).Key()
	if key == "" {
		return unknownPlatform
	}
	return key
}

func summarize(groups []Group) Summary {
	s := Summary{Groups: len(groups), StatusCounts: newStatusCounts()}
	platforms := newRollups()
	for _, g := range groups {
		s.Orders += len(g.Orders)
		s.TotalPeople += g.TotalPeople
		s.Men += g.Men
		s.Women += g.Women
		s.Extras = s.Extras.Add(g.Extras)
		for status, n := range g.StatusCounts {
			s.StatusCounts.add(status, n)
		}
		for _, p := range g.PlatformBreakdown {
			platforms.add(p.Platform, p)
		}
	}
	s.PlatformBreakdown = platforms.list()
	return s
}
