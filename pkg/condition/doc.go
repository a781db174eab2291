// Package condition evaluates spec.md §3/§4.2 filter predicates against
// extracted event values, including the windowed-threshold comparison used
// once a window manager fires an aggregate.
package condition
