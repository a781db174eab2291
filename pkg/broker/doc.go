/*
Package broker implements spec.md §4.3's Broker Dataplane: the component
that owns a matcher.Registry and wires it to ingress, egress, control, and
heartbeat collaborators.

    Ingress.Events() ──► ingressLoop ──► OnEvent ──► matcher.Match ──► Egress.Send
    Control.Requests() ─► controlLoop ─► OnControl ─► matcher.Add/Remove
    (ticker)           ──► heartbeatLoop ──► HeartbeatSink.Send

Transport (sockets, framing, topic routing) is explicitly out of scope
(spec §1): Broker only depends on the four collaborator interfaces above,
matching the "no process-wide singletons, explicit construction and
teardown" design note of spec §9. pkg/broker/inmemory.go supplies
channel-backed implementations of all four, sufficient for tests and for
embedding the broker in a single process without a transport layer.

Start launches three goroutines; Stop closes a shared done channel and
waits up to Config.ShutdownGrace (default 1s) for them to exit, per the
bounded grace period required by spec §5.
*/
package broker
