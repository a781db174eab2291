package matcher

import (
	"testing"

	"github.com/cuemby/relay/pkg/condition"
	"github.com/cuemby/relay/pkg/event"
	"github.com/cuemby/relay/pkg/window"
	"github.com/cuemby/relay/pkg/wire"
	"github.com/stretchr/testify/require"
)

func purchase(id, category string, price float64) *event.Event {
	return &event.Event{
		EventID:   id,
		Timestamp: 1700000000000,
		Type:      wire.EventTypePurchase,
		Purchase: &wire.Purchase{
			UserID:    "user-1",
			ProductID: "prod-1",
			Category:  category,
			Price:     price,
			Quantity:  1,
		},
	}
}

func rating(category string, value float64) *event.Event {
	return &event.Event{
		Type: wire.EventTypeUserRating,
		Rating: &wire.UserRating{
			UserID:    "user-1",
			ProductID: "prod-1",
			Category:  category,
			Rating:    value,
		},
	}
}

// S1: simple equality match.
func TestMatchSimpleEquality(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&Subscription{
		ID:           "S1",
		SubscriberID: "sub-1",
		Kind:         wire.KindSimple,
		Conditions:   []condition.Condition{condition.New("category", wire.OpEqual, "Electronics", false)},
	}))

	e := purchase("evt-1", "Electronics", 750.0)
	matches := r.Match(e)

	require.Len(t, matches, 1)
	require.Equal(t, "S1", matches[0].SubscriptionID)
	require.NotNil(t, matches[0].Simple)
	require.Equal(t, "evt-1", matches[0].Simple.MatchedEvent.EventID)
}

// S2: numeric coercion.
func TestMatchNumericCoercion(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&Subscription{
		ID:           "S2",
		SubscriberID: "sub-1",
		Kind:         wire.KindSimple,
		Conditions:   []condition.Condition{condition.New("price", wire.OpGreaterThan, "500.0", false)},
	}))

	require.Empty(t, r.Match(purchase("e1", "x", 499.99)))
	require.Empty(t, r.Match(purchase("e2", "x", 500.0)))
	require.Len(t, r.Match(purchase("e3", "x", 500.01)), 1)
}

// S3: AND semantics.
func TestMatchANDSemantics(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&Subscription{
		ID:           "S3",
		SubscriberID: "sub-1",
		Kind:         wire.KindSimple,
		Conditions: []condition.Condition{
			condition.New("category", wire.OpEqual, "Electronics", false),
			condition.New("price", wire.OpGreaterThan, "100", false),
		},
	}))

	require.Empty(t, r.Match(purchase("e1", "Electronics", 50)))
	require.Empty(t, r.Match(purchase("e2", "Clothing", 500)))
	require.Len(t, r.Match(purchase("e3", "Electronics", 500)), 1)
}

// S4: tumbling window.
func TestMatchTumblingWindow(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&Subscription{
		ID:           "S4",
		SubscriberID: "sub-1",
		Kind:         wire.KindComplex,
		Conditions: []condition.Condition{
			condition.New("category", wire.OpEqual, "Electronics", false),
			condition.New("avg_rating", wire.OpGreaterThan, "3.0", true),
		},
		WindowConfig: &WindowConfig{WindowSize: 5, AggregationType: window.Avg},
	}))

	var matches []Match
	for _, v := range []float64{4.0, 4.1, 4.2, 4.3, 4.4} {
		matches = append(matches, r.Match(rating("Electronics", v))...)
	}

	require.Len(t, matches, 1)
	require.Equal(t, "avg_rating", matches[0].Complex.FieldName)
	require.InDelta(t, 4.2, matches[0].Complex.AggregatedValue, 0.01)
	require.Equal(t, 5, matches[0].Complex.WindowSize)
	require.Equal(t, "Electronics", matches[0].Complex.Category)

	// sixth rating: buffer has one sample, below capacity, no notification.
	require.Empty(t, r.Match(rating("Electronics", 4.5)))
}

// S5: sampling gate.
func TestMatchSamplingGate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&Subscription{
		ID:           "S4",
		SubscriberID: "sub-1",
		Kind:         wire.KindComplex,
		Conditions: []condition.Condition{
			condition.New("category", wire.OpEqual, "Electronics", false),
			condition.New("avg_rating", wire.OpGreaterThan, "3.0", true),
		},
		WindowConfig: &WindowConfig{WindowSize: 5, AggregationType: window.Avg},
	}))

	for i := 0; i < 5; i++ {
		require.Empty(t, r.Match(rating("Clothing", 5.0)))
	}

	var matches []Match
	for i := 0; i < 5; i++ {
		matches = append(matches, r.Match(rating("Electronics", 1.0))...)
	}
	require.Empty(t, matches)
}

// S6: remove mid-stream.
func TestMatchRemoveMidStream(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&Subscription{
		ID:           "S1",
		SubscriberID: "sub-1",
		Kind:         wire.KindSimple,
		Conditions:   []condition.Condition{condition.New("category", wire.OpEqual, "Electronics", false)},
	}))

	require.Len(t, r.Match(purchase("e1", "Electronics", 1)), 1)

	r.Remove("S1")

	require.Empty(t, r.Match(purchase("e2", "Electronics", 1)))
	_, _, total := r.Stats()
	require.Equal(t, 0, total)
}

func TestAddRejectsEmptyConditions(t *testing.T) {
	r := NewRegistry()
	err := r.Add(&Subscription{ID: "x", Kind: wire.KindSimple})
	require.Error(t, err)
	var invalid *InvalidSubscriptionError
	require.ErrorAs(t, err, &invalid)
}

func TestAddRejectsComplexWithoutWindowedCondition(t *testing.T) {
	r := NewRegistry()
	err := r.Add(&Subscription{
		ID:         "x",
		Kind:       wire.KindComplex,
		Conditions: []condition.Condition{condition.New("category", wire.OpEqual, "Electronics", false)},
	})
	require.Error(t, err)
}

func TestAddRejectsNonPositiveWindowSize(t *testing.T) {
	r := NewRegistry()
	err := r.Add(&Subscription{
		ID:           "x",
		Kind:         wire.KindComplex,
		Conditions:   []condition.Condition{condition.New("avg_price", wire.OpGreaterThan, "1", true)},
		WindowConfig: &WindowConfig{WindowSize: 0, AggregationType: window.Avg},
	})
	require.Error(t, err)
}

func TestAddRejectsUnrecognizedAggregation(t *testing.T) {
	r := NewRegistry()
	err := r.Add(&Subscription{
		ID:           "x",
		Kind:         wire.KindComplex,
		Conditions:   []condition.Condition{condition.New("avg_price", wire.OpGreaterThan, "1", true)},
		WindowConfig: &WindowConfig{WindowSize: 3, AggregationType: "median"},
	})
	require.Error(t, err)
}

func TestAddRemoveRoundTripLeavesRegistryEmpty(t *testing.T) {
	r := NewRegistry()
	sub := &Subscription{
		ID:         "x",
		Kind:       wire.KindSimple,
		Conditions: []condition.Condition{condition.New("category", wire.OpEqual, "Electronics", false)},
	}
	require.NoError(t, r.Add(sub))
	r.Remove(sub.ID)

	simple, complexCount, total := r.Stats()
	require.Zero(t, simple)
	require.Zero(t, complexCount)
	require.Zero(t, total)
}

func TestRemoveNonexistentIsNoop(t *testing.T) {
	r := NewRegistry()
	require.NotPanics(t, func() { r.Remove("nope") })
}

func TestWindowOfSizeOneFiresImmediately(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&Subscription{
		ID:           "x",
		Kind:         wire.KindComplex,
		Conditions:   []condition.Condition{condition.New("avg_rating", wire.OpGreaterThan, "0", true)},
		WindowConfig: &WindowConfig{WindowSize: 1, AggregationType: window.Avg},
	}))

	matches := r.Match(rating("Electronics", 5.0))
	require.Len(t, matches, 1)
}

func TestMatchFieldAbsentFromVariantYieldsNoMatch(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&Subscription{
		ID:         "x",
		Kind:       wire.KindSimple,
		Conditions: []condition.Condition{condition.New("view_duration", wire.OpGreaterThan, "10", false)},
	}))

	require.Empty(t, r.Match(purchase("e1", "Electronics", 100)))
}
