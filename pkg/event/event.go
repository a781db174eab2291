package event

import (
	"strconv"

	"github.com/cuemby/relay/pkg/wire"
)

// Event is the tagged event union of spec.md §3. It is the wire
// representation verbatim: the core never needs a separate in-memory shape.
type Event = wire.Event

// NumericFields is the set of field names coerced to float64 for comparison
// (spec §4.2). Windowed base fields are always drawn from this set.
var NumericFields = map[string]bool{
	"price":         true,
	"stock_level":   true,
	"rating":        true,
	"quantity":      true,
	"view_duration": true,
}

// Value is one extracted field: its string representation (used for
// string-typed comparisons and lexicographic ordering) plus, when the field
// is numeric, its float64 value.
type Value struct {
	Raw       string
	Numeric   float64
	IsNumeric bool
}

// Extract resolves fieldName against the event's populated variant. It
// returns ok=false when the field is not defined for the event's variant
// (spec §3's "matcher returns no match when a predicate names a field
// absent from the current variant").
func Extract(e *Event, fieldName string) (Value, bool) {
	switch e.Type {
	case wire.EventTypePurchase:
		if e.Purchase == nil {
			return Value{}, false
		}
		return extractPurchase(e.Purchase, fieldName)
	case wire.EventTypeProductView:
		if e.View == nil {
			return Value{}, false
		}
		return extractProductView(e.View, fieldName)
	case wire.EventTypeInventoryUpdate:
		if e.Inventory == nil {
			return Value{}, false
		}
		return extractInventoryUpdate(e.Inventory, fieldName)
	case wire.EventTypeUserRating:
		if e.Rating == nil {
			return Value{}, false
		}
		return extractUserRating(e.Rating, fieldName)
	default:
		return Value{}, false
	}
}

// ExtractNumeric resolves a base (non-prefixed) field name to a float64,
// used by the window manager to sample windowed conditions (spec §4.2).
// It returns ok=false both when the field is absent and when it does not
// coerce to a number.
func ExtractNumeric(e *Event, baseField string) (float64, bool) {
	v, ok := Extract(e, baseField)
	if !ok || !v.IsNumeric {
		return 0, false
	}
	return v.Numeric, true
}

func extractPurchase(p *wire.Purchase, field string) (Value, bool) {
	switch field {
	case "user_id":
		return Value{Raw: p.UserID}, true
	case "product_id":
		return Value{Raw: p.ProductID}, true
	case "category":
		return Value{Raw: p.Category}, true
	case "price":
		return Value{Raw: formatFloat(p.Price), Numeric: p.Price, IsNumeric: true}, true
	case "quantity":
		return Value{Raw: strconv.FormatInt(p.Quantity, 10), Numeric: float64(p.Quantity), IsNumeric: true}, true
	case "warehouse_id":
		return Value{Raw: p.WarehouseID}, true
	default:
		return Value{}, false
	}
}

func extractProductView(v *wire.ProductView, field string) (Value, bool) {
	switch field {
	case "user_id":
		return Value{Raw: v.UserID}, true
	case "product_id":
		return Value{Raw: v.ProductID}, true
	case "category":
		return Value{Raw: v.Category}, true
	case "view_duration":
		return Value{Raw: strconv.FormatInt(v.ViewDuration, 10), Numeric: float64(v.ViewDuration), IsNumeric: true}, true
	case "source":
		return Value{Raw: v.Source}, true
	default:
		return Value{}, false
	}
}

func extractInventoryUpdate(u *wire.InventoryUpdate, field string) (Value, bool) {
	switch field {
	case "product_id":
		return Value{Raw: u.ProductID}, true
	case "category":
		return Value{Raw: u.Category}, true
	case "stock_level":
		return Value{Raw: strconv.FormatInt(u.StockLevel, 10), Numeric: float64(u.StockLevel), IsNumeric: true}, true
	case "warehouse_id":
		return Value{Raw: u.WarehouseID}, true
	case "operation":
		return Value{Raw: u.Operation}, true
	default:
		return Value{}, false
	}
}

func extractUserRating(r *wire.UserRating, field string) (Value, bool) {
	switch field {
	case "user_id":
		return Value{Raw: r.UserID}, true
	case "product_id":
		return Value{Raw: r.ProductID}, true
	case "category":
		return Value{Raw: r.Category}, true
	case "rating":
		return Value{Raw: formatFloat(r.Rating), Numeric: r.Rating, IsNumeric: true}, true
	case "review_text":
		return Value{Raw: r.ReviewText}, true
	default:
		return Value{}, false
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
