/*
Package wire defines the binary-serialization-friendly tagged structures
described in spec.md §6: the Event and Notification payloads, the
BrokerMessage envelope, and the stable ordinal tables (EventType, Operator,
SubscriptionKind) that pkg/event and pkg/condition both depend on so the
ordinals cannot drift between packages.

Serialization uses github.com/vmihailenco/msgpack/v5 rather than a
hand-written codec: msgpack is a compact, schema-evolution-friendly binary
format well suited to the "binary-serialization-friendly" wording of the
spec, and it lets MarshalBinary/UnmarshalBinary satisfy the
encoding.BinaryMarshaler/BinaryUnmarshaler standard interfaces.

Wire framing (sockets, topic multiplexing) is out of scope per spec §1;
this package only defines the payload shapes a transport would carry.
*/
package wire
