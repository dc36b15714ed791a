package orders

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/crawlops-backend/internal/addons"
	"github.com/angelmondragon/crawlops-backend/internal/catalog"
	"github.com/angelmondragon/crawlops-backend/internal/payload"
	"github.com/angelmondragon/crawlops-backend/internal/pickup"
	"github.com/angelmondragon/crawlops-backend/pkg/enums"
)

// FromStorefront converts one line item of a raw storefront order. A nil
// lineItem treats the order itself as the purchased item. It returns nil when
// no pickup moment can be resolved; neither payload is modified.
func (t *Transformer) FromStorefront(order, lineItem payload.Payload) *UnifiedOrder {
	return t.build(t.storefrontSource(order, lineItem, addons.Extras{}))
}

// FromStorefrontOrder converts every tour line item of an order. Line items
// that are themselves add-ons (a T-shirt sold separately) are folded into the
// extras of the first resolved tour item instead of becoming orders.
func (t *Transformer) FromStorefrontOrder(order payload.Payload) []UnifiedOrder {
	result := t.previewStorefront(order)
	return result.Orders
}

func (t *Transformer) previewStorefront(order payload.Payload) PreviewResult {
	items := order.Objects("line_items")
	if len(items) == 0 {
		if o := t.FromStorefront(order, nil); o != nil {
			return PreviewResult{Orders: []UnifiedOrder{*o}}
		}
		return PreviewResult{Orders: []UnifiedOrder{}, Skipped: []string{storefrontOrderID(order)}}
	}

	var tours []payload.Payload
	var bundled addons.Extras
	for _, item := range items {
		if extras, ok := t.addOnLineItem(item); ok {
			bundled = bundled.Add(extras)
			continue
		}
		tours = append(tours, item)
	}

	result := PreviewResult{Orders: make([]UnifiedOrder, 0, len(tours))}
	for _, item := range tours {
		src := t.storefrontSource(order, item, bundled)
		o := t.build(src)
		if o == nil {
			result.Skipped = append(result.Skipped, src.id)
			continue
		}
		// A rebooked item carries no extras; keep them for the next tour.
		if o.Status != enums.BookingStatusRebooked {
			bundled = addons.Extras{}
		}
		result.Orders = append(result.Orders, *o)
	}
	return result
}

// addOnLineItem reports whether a line item is a standalone add-on purchase
// and returns its extras.
func (t *Transformer) addOnLineItem(item payload.Payload) (addons.Extras, bool) {
	title := item.FirstStr("title", "name")
	category, ok := addons.Classify(title)
	if !ok {
		return addons.Extras{}, false
	}
	if t.catalog.Canonicalize(catalog.Lookup{Name: title}).Source == catalog.SourceCatalog {
		return addons.Extras{}, false
	}
	qty, ok := item.Int("quantity")
	if !ok || qty < 0 {
		qty = 1
	}
	return addons.Detect([]payload.Option{{Label: string(category), Value: qty}}), true
}

func (t *Transformer) storefrontSource(order, lineItem payload.Payload, bundled addons.Extras) source {
	properties := lineItem.Options("properties")
	notes := order.Options("note_attributes")

	var candidates []pickup.Candidate
	candidates = append(candidates, fieldCandidates("order.", order)...)
	candidates = append(candidates, fieldCandidates("line_item.", lineItem)...)
	candidates = append(candidates, optionCandidates("properties.", properties)...)
	candidates = append(candidates, optionCandidates("note_attributes.", notes)...)

	options := make([]payload.Option, 0, len(properties)+len(notes))
	options = append(options, properties...)
	options = append(options, notes...)

	orderID := storefrontOrderID(order)
	id := "storefront-" + orderID
	if itemID := lineItem.Str("id"); itemID != "" {
		id += "-" + itemID
	}
	bookingID := firstNonEmpty(order.Str("name"), orderID)

	item := lineItem
	if item == nil {
		item = order
	}
	var totals []*int
	qty, hasQty := item.Int("quantity")
	if hasQty {
		totals = append(totals, intPtr(qty))
	}

	amount := decimal.Zero
	if price, ok := payload.Decimal(item.Raw("price")); ok {
		amount = price
		if hasQty && lineItem != nil {
			amount = price.Mul(decimal.NewFromInt(int64(qty)))
		}
	} else if total, ok := payload.Decimal(order.Raw("total_price")); ok && lineItem == nil {
		amount = total
	}

	return source{
		id:         id,
		bookingID:  bookingID,
		platform:   string(enums.PlatformStorefront),
		customer:   storefrontCustomer(order),
		status:     lineItemStatus(order, lineItem),
		candidates: candidates,
		options:    options,
		totals:     totals,
		product: catalog.Lookup{
			Name:      item.FirstStr("title", "name", "product_title"),
			Variant:   item.Str("variant_title"),
			ProductID: item.Str("product_id"),
			Platform:  string(enums.PlatformStorefront),
			BookingID: bookingID,
		},
		amount:   amount,
		currency: order.FirstStr("currency", "presentment_currency"),
		extras:   bundled,
	}
}

func storefrontOrderID(order payload.Payload) string {
	return firstNonEmpty(order.Str("id"), order.Str("order_number"), "unknown")
}

func storefrontCustomer(order payload.Payload) string {
	customer := order.Map("customer")
	full := strings.TrimSpace(customer.Str("first_name") + " " + customer.Str("last_name"))
	return firstNonEmpty(
		full,
		order.Map("billing_address").Str("name"),
		order.Map("shipping_address").Str("name"),
		order.FirstStr("email", "contact_email"),
	)
}

// lineItemStatus lets a recognised per-item status (one tour of a multi-tour
// order moved to another night) override the order status.
func lineItemStatus(order, lineItem payload.Payload) enums.BookingStatus {
	if raw := lineItem.Str("status"); raw != "" {
		if status := enums.NormalizeBookingStatus(raw); status != enums.BookingStatusUnknown {
			return status
		}
	}
	return storefrontStatus(order)
}

// storefrontStatus maps commerce order state onto a booking status. An
// explicit recognised status wins, then cancellation, fulfilment and payment.
func storefrontStatus(order payload.Payload) enums.BookingStatus {
	if raw := order.Str("status"); raw != "" {
		if status := enums.NormalizeBookingStatus(raw); status != enums.BookingStatusUnknown {
			return status
		}
	}
	if order.Str("cancelled_at") != "" || order.Str("cancel_reason") != "" {
		return enums.BookingStatusCancelled
	}
	if strings.EqualFold(order.Str("fulfillment_status"), "fulfilled") {
		return enums.BookingStatusCompleted
	}
	switch strings.ToLower(order.Str("financial_status")) {
	case "refunded", "voided":
		return enums.BookingStatusCancelled
	case "paid", "partially_refunded":
		return enums.BookingStatusConfirmed
	default:
		return enums.BookingStatusPending
	}
}
