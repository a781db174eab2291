package broker

import (
	"errors"
	"sync"

	"github.com/cuemby/relay/pkg/event"
	"github.com/cuemby/relay/pkg/wire"
)

// InMemoryIngress is a channel-backed Ingress, suitable for tests and for
// embedding the broker directly in a process that produces events itself.
type InMemoryIngress struct {
	ch chan *event.Event
}

// NewInMemoryIngress creates an ingress with the given channel capacity.
func NewInMemoryIngress(capacity int) *InMemoryIngress {
	return &InMemoryIngress{ch: make(chan *event.Event, capacity)}
}

func (i *InMemoryIngress) Events() <-chan *event.Event { return i.ch }

// Publish enqueues an event. It blocks if the channel is full.
func (i *InMemoryIngress) Publish(e *event.Event) { i.ch <- e }

// Close signals no further events will arrive.
func (i *InMemoryIngress) Close() { close(i.ch) }

// InMemoryEgress records every dispatched message per subscriber, for
// tests to assert against, and optionally drops messages for a configured
// subscriber to exercise the back-pressure path.
type InMemoryEgress struct {
	mu       sync.Mutex
	messages map[string][]*wire.BrokerMessage
	drop     map[string]bool
}

// NewInMemoryEgress creates an empty egress recorder.
func NewInMemoryEgress() *InMemoryEgress {
	return &InMemoryEgress{
		messages: make(map[string][]*wire.BrokerMessage),
		drop:     make(map[string]bool),
	}
}

// DropFor makes Send fail for subscriberID, simulating an egress collaborator
// that cannot accept a notification (spec §5's back-pressure clause).
func (e *InMemoryEgress) DropFor(subscriberID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drop[subscriberID] = true
}

func (e *InMemoryEgress) Send(subscriberID, address string, msg *wire.BrokerMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.drop[subscriberID] {
		return errors.New("egress: subscriber unavailable")
	}
	e.messages[subscriberID] = append(e.messages[subscriberID], msg)
	return nil
}

// Messages returns every message recorded for subscriberID, in send order.
func (e *InMemoryEgress) Messages(subscriberID string) []*wire.BrokerMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*wire.BrokerMessage(nil), e.messages[subscriberID]...)
}

// InMemoryControl is a channel-backed Control, used by tests to drive
// OnControl indirectly through Start/Stop, and by callers embedding the
// broker without a textual transport.
type InMemoryControl struct {
	ch chan Envelope
}

// NewInMemoryControl creates a control channel with the given capacity.
func NewInMemoryControl(capacity int) *InMemoryControl {
	return &InMemoryControl{ch: make(chan Envelope, capacity)}
}

func (c *InMemoryControl) Requests() <-chan Envelope { return c.ch }

// Do submits req and blocks for its Response.
func (c *InMemoryControl) Do(req Request) Response {
	reply := make(chan Response, 1)
	c.ch <- Envelope{Request: req, Reply: reply}
	return <-reply
}

// Close signals no further control requests will arrive.
func (c *InMemoryControl) Close() { close(c.ch) }

// InMemoryHeartbeatSink records every heartbeat it receives.
type InMemoryHeartbeatSink struct {
	mu         sync.Mutex
	heartbeats []*wire.BrokerHeartbeat
}

// NewInMemoryHeartbeatSink creates an empty heartbeat recorder.
func NewInMemoryHeartbeatSink() *InMemoryHeartbeatSink {
	return &InMemoryHeartbeatSink{}
}

func (s *InMemoryHeartbeatSink) Send(hb *wire.BrokerHeartbeat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heartbeats = append(s.heartbeats, hb)
	return nil
}

// Heartbeats returns every heartbeat received so far, in arrival order.
func (s *InMemoryHeartbeatSink) Heartbeats() []*wire.BrokerHeartbeat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*wire.BrokerHeartbeat(nil), s.heartbeats...)
}
