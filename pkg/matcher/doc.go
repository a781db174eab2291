/*
Package matcher implements spec.md §4.2's Subscription Matcher: the
registry of Simple and Complex subscriptions, their window state, and the
per-event matching algorithm.

    Registry
    ├── simple  map[id]*Subscription        (AND-conjunction, no window)
    ├── complex map[id]*Subscription        (AND-conjunction + windowed gate)
    └── windows map[id]map[field]*window.Manager

Match(event) evaluates every simple subscription first, in registry order,
then every complex subscription in registry order. A complex subscription's
non-windowed conditions act as a sampling gate (spec §4.2): only events that
pass the gate advance its window managers at all, so an always-failing gate
leaves window state untouched indefinitely.

One sync.RWMutex covers both the subscription maps and the window state,
per spec §5's atomicity rule: a match observes either a fully registered
subscription or none of it, never a partial edit. Integration point:
pkg/broker owns one Registry per broker instance and calls Add/Remove from
its control worker and Match from its ingress worker.
*/
package matcher
