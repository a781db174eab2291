// Package matcher implements spec.md §4.2's Subscription Matcher: the
// registry of subscriptions and the per-event matching algorithm, including
// the windowed sampling gate.
package matcher

import (
	"fmt"
	"sync"

	"github.com/cuemby/relay/pkg/condition"
	"github.com/cuemby/relay/pkg/event"
	"github.com/cuemby/relay/pkg/log"
	"github.com/cuemby/relay/pkg/metrics"
	"github.com/cuemby/relay/pkg/window"
	"github.com/cuemby/relay/pkg/wire"
	"github.com/rs/zerolog"
)

// InvalidSubscriptionError reports a structural violation caught at
// Add time (spec §7's InvalidSubscription kind). The registry is left
// unchanged when this is returned.
type InvalidSubscriptionError struct {
	Reason string
}

func (e *InvalidSubscriptionError) Error() string {
	return fmt.Sprintf("invalid subscription: %s", e.Reason)
}

// WindowConfig is the aggregation parameters a Complex subscription
// carries for all of its windowed conditions (spec §3).
type WindowConfig struct {
	WindowSize      int
	AggregationType string
}

// Subscription is spec.md §3's Subscription: a subscriber-addressed
// AND-conjunction of conditions, optionally backed by a window config when
// any condition is windowed.
type Subscription struct {
	ID           string
	SubscriberID string
	Kind         wire.SubscriptionKind
	Conditions   []condition.Condition
	WindowConfig *WindowConfig
}

// Match is one unstamped match produced by Match: the broker is
// responsible for turning this into a stamped wire.Notification (spec
// §4.3 assigns notification_id/timestamp to the broker, not the matcher).
type Match struct {
	SubscriptionID string
	SubscriberID   string
	Kind           wire.SubscriptionKind
	Simple         *wire.SimpleNotification
	Complex        *wire.ComplexNotification
}

var recognizedAggregations = map[string]bool{
	window.Avg: true, window.Max: true, window.Min: true, window.Sum: true,
}

// Registry holds every live subscription and the window state attached to
// complex ones. A single mutex covers both, matching spec §5's atomicity
// rule for registry mutation versus per-event matching.
type Registry struct {
	mu sync.RWMutex

	simple      map[string]*Subscription
	simpleOrder []string

	complex      map[string]*Subscription
	complexOrder []string

	windows map[string]map[string]*window.Manager

	log zerolog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		simple:  make(map[string]*Subscription),
		complex: make(map[string]*Subscription),
		windows: make(map[string]map[string]*window.Manager),
		log:     log.WithComponent("matcher"),
	}
}

// Add validates and inserts sub. Validation failures return
// *InvalidSubscriptionError and leave the registry untouched.
func (r *Registry) Add(sub *Subscription) error {
	if len(sub.Conditions) == 0 {
		return &InvalidSubscriptionError{Reason: "conditions list is empty"}
	}

	switch sub.Kind {
	case wire.KindSimple:
		for _, c := range sub.Conditions {
			if c.IsWindowed {
				return &InvalidSubscriptionError{Reason: "simple subscription contains a windowed condition"}
			}
		}
		if sub.WindowConfig != nil {
			return &InvalidSubscriptionError{Reason: "simple subscription must not carry a window_config"}
		}
	case wire.KindComplex:
		windowed := windowedConditions(sub.Conditions)
		if len(windowed) == 0 {
			return &InvalidSubscriptionError{Reason: "complex subscription has no windowed condition"}
		}
		if sub.WindowConfig == nil {
			return &InvalidSubscriptionError{Reason: "complex subscription missing window_config"}
		}
		if sub.WindowConfig.WindowSize <= 0 {
			return &InvalidSubscriptionError{Reason: "window_size must be positive"}
		}
		if !recognizedAggregations[sub.WindowConfig.AggregationType] {
			return &InvalidSubscriptionError{Reason: fmt.Sprintf("unrecognized aggregation type %q", sub.WindowConfig.AggregationType)}
		}
	default:
		return &InvalidSubscriptionError{Reason: "unrecognized subscription kind"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch sub.Kind {
	case wire.KindSimple:
		r.simple[sub.ID] = sub
		r.simpleOrder = append(r.simpleOrder, sub.ID)
	case wire.KindComplex:
		r.complex[sub.ID] = sub
		r.complexOrder = append(r.complexOrder, sub.ID)

		perField := make(map[string]*window.Manager)
		for _, c := range windowedConditions(sub.Conditions) {
			perField[c.FieldName] = window.NewManager(sub.WindowConfig.WindowSize, sub.WindowConfig.AggregationType)
		}
		r.windows[sub.ID] = perField
	}

	r.log.Info().
		Str("subscription_id", sub.ID).
		Str("subscriber_id", sub.SubscriberID).
		Str("kind", sub.Kind.String()).
		Msg("subscription added")
	return nil
}

// Remove deletes a subscription and its window state. Absence is a no-op
// (spec §4.2).
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.simple[id]; ok {
		delete(r.simple, id)
		r.simpleOrder = removeString(r.simpleOrder, id)
		r.log.Info().Str("subscription_id", id).Str("kind", "SIMPLE").Msg("subscription removed")
		return
	}
	if _, ok := r.complex[id]; ok {
		delete(r.complex, id)
		r.complexOrder = removeString(r.complexOrder, id)
		delete(r.windows, id)
		r.log.Info().Str("subscription_id", id).Str("kind", "COMPLEX").Msg("subscription removed")
	}
}

// Match evaluates event against every subscription and returns the ordered
// set of matches: all simple matches in registry order, then all complex
// matches in registry order (windowed conditions within a subscription in
// declaration order).
func (r *Registry) Match(e *event.Event) []Match {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Match

	for _, id := range r.simpleOrder {
		sub, ok := r.simple[id]
		if !ok {
			continue
		}
		if evalAll(e, sub.Conditions) {
			out = append(out, Match{
				SubscriptionID: sub.ID,
				SubscriberID:   sub.SubscriberID,
				Kind:           wire.KindSimple,
				Simple:         &wire.SimpleNotification{MatchedEvent: *e},
			})
		}
	}

	for _, id := range r.complexOrder {
		sub, ok := r.complex[id]
		if !ok {
			continue
		}

		nonWindowed := nonWindowedConditions(sub.Conditions)
		if !evalAll(e, nonWindowed) {
			continue
		}

		category := extractCategory(sub.Conditions)

		for _, cond := range sub.Conditions {
			if !cond.IsWindowed {
				continue
			}

			base := condition.BaseField(cond.FieldName)
			v, ok := event.ExtractNumeric(e, base)
			if !ok {
				continue
			}

			wm := r.windows[sub.ID][cond.FieldName]
			if wm == nil {
				continue
			}

			fired, agg := wm.Add(v)
			if !fired {
				continue
			}
			metrics.WindowFiresTotal.WithLabelValues(sub.WindowConfig.AggregationType).Inc()
			if !condition.EvaluateWindowed(agg, cond) {
				continue
			}

			out = append(out, Match{
				SubscriptionID: sub.ID,
				SubscriberID:   sub.SubscriberID,
				Kind:           wire.KindComplex,
				Complex: &wire.ComplexNotification{
					Category:        category,
					FieldName:       cond.FieldName,
					AggregatedValue: agg,
					WindowSize:      sub.WindowConfig.WindowSize,
					ConditionMet:    true,
				},
			})
		}
	}

	return out
}

// Stats reports the current subscription counts.
func (r *Registry) Stats() (simpleCount, complexCount, total int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.simple), len(r.complex), len(r.simple) + len(r.complex)
}

// RegistryCounts satisfies metrics.Source.
func (r *Registry) RegistryCounts() (simple, complex int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.simple), len(r.complex)
}

func evalAll(e *event.Event, conds []condition.Condition) bool {
	for _, c := range conds {
		v, ok := event.Extract(e, c.FieldName)
		if !condition.Evaluate(v, ok, c) {
			return false
		}
	}
	return true
}

func windowedConditions(conds []condition.Condition) []condition.Condition {
	var out []condition.Condition
	for _, c := range conds {
		if c.IsWindowed {
			out = append(out, c)
		}
	}
	return out
}

func nonWindowedConditions(conds []condition.Condition) []condition.Condition {
	var out []condition.Condition
	for _, c := range conds {
		if !c.IsWindowed {
			out = append(out, c)
		}
	}
	return out
}

// extractCategory returns the value of the first EQUAL condition on
// "category", or "unknown" (spec §4.2).
func extractCategory(conds []condition.Condition) string {
	for _, c := range conds {
		if c.FieldName == "category" && c.Operator == wire.OpEqual {
			return c.Value
		}
	}
	return "unknown"
}

func removeString(s []string, target string) []string {
	out := s[:0]
	for _, v := range s {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
