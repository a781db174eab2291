/*
Package window implements the tumbling window manager of spec.md §4.1: a
fixed-size buffer keyed per (subscription, field) by the caller, one per
windowed condition. Every Add call appends a sample; once the buffer reaches
capacity the manager computes avg/max/min/sum over the full buffer, clears
it, and reports the fired aggregate. An unrecognized aggregation name is not
an error here — it silently degrades to avg, per spec §4.1's explicit
override of the more permissive behavior floated in its open questions.

Integration point: pkg/matcher owns one Manager per (subscription ID, field
name) pair and feeds it from pkg/event-extracted numeric values before
asking pkg/condition to evaluate the fired aggregate.
*/
package window
