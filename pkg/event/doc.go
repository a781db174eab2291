/*
Package event implements spec.md §3's Event model: the four tagged
variants (Purchase, ProductView, InventoryUpdate, UserRating) and field
extraction over them.

Rather than per-variant attribute access keyed by a string, as the source
implementation did (spec §9's design note), extraction here is a dense
switch per variant (extractPurchase, extractProductView, ...) indexed by
field name. A field name absent from the event's current variant yields
ok=false, which pkg/condition treats as "never matches" rather than an
error — exactly the tolerance spec §3 and §9 call for.

Event itself is a type alias for wire.Event: the core has no reason to
maintain a second in-memory representation distinct from the wire shape.
*/
package event
