package event

import (
	"testing"

	"github.com/cuemby/relay/pkg/wire"
	"github.com/stretchr/testify/require"
)

func purchaseEvent() *Event {
	return &Event{
		EventID:   "evt-1",
		Timestamp: 1700000000000,
		Type:      wire.EventTypePurchase,
		Purchase: &wire.Purchase{
			UserID:      "user-1",
			ProductID:   "prod-1",
			Category:    "Electronics",
			Price:       750.0,
			Quantity:    2,
			WarehouseID: "wh-1",
		},
	}
}

func TestExtractKnownField(t *testing.T) {
	e := purchaseEvent()

	v, ok := Extract(e, "category")
	require.True(t, ok)
	require.Equal(t, "Electronics", v.Raw)
	require.False(t, v.IsNumeric)

	v, ok = Extract(e, "price")
	require.True(t, ok)
	require.True(t, v.IsNumeric)
	require.Equal(t, 750.0, v.Numeric)
}

func TestExtractFieldAbsentFromVariant(t *testing.T) {
	e := purchaseEvent()

	_, ok := Extract(e, "view_duration") // belongs to ProductView
	require.False(t, ok)

	_, ok = Extract(e, "rating") // belongs to UserRating
	require.False(t, ok)
}

func TestExtractUnknownEventType(t *testing.T) {
	e := &Event{Type: wire.EventType(99)}
	_, ok := Extract(e, "category")
	require.False(t, ok)
}

func TestExtractNumeric(t *testing.T) {
	e := purchaseEvent()

	v, ok := ExtractNumeric(e, "price")
	require.True(t, ok)
	require.Equal(t, 750.0, v)

	_, ok = ExtractNumeric(e, "category")
	require.False(t, ok)

	_, ok = ExtractNumeric(e, "nonexistent")
	require.False(t, ok)
}

func TestExtractAllVariants(t *testing.T) {
	view := &Event{
		Type: wire.EventTypeProductView,
		View: &wire.ProductView{UserID: "u", ProductID: "p", Category: "c", ViewDuration: 30, Source: "search"},
	}
	v, ok := Extract(view, "view_duration")
	require.True(t, ok)
	require.Equal(t, float64(30), v.Numeric)

	inv := &Event{
		Type:      wire.EventTypeInventoryUpdate,
		Inventory: &wire.InventoryUpdate{ProductID: "p", Category: "c", StockLevel: 10, WarehouseID: "w", Operation: "restock"},
	}
	v, ok = Extract(inv, "stock_level")
	require.True(t, ok)
	require.Equal(t, float64(10), v.Numeric)

	rating := &Event{
		Type:   wire.EventTypeUserRating,
		Rating: &wire.UserRating{UserID: "u", ProductID: "p", Category: "c", Rating: 4.5, ReviewText: "great"},
	}
	v, ok = Extract(rating, "rating")
	require.True(t, ok)
	require.Equal(t, 4.5, v.Numeric)
}
