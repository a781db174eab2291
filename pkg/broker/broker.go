// Package broker implements spec.md §4.3's Broker Dataplane: it wires the
// matcher into ingress/egress/control collaborators, stamps and dispatches
// notifications, serves the control plane, and emits heartbeats.
package broker

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cuemby/relay/pkg/condition"
	"github.com/cuemby/relay/pkg/event"
	"github.com/cuemby/relay/pkg/log"
	"github.com/cuemby/relay/pkg/matcher"
	"github.com/cuemby/relay/pkg/metrics"
	"github.com/cuemby/relay/pkg/wire"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config configures one Broker instance (spec §6).
type Config struct {
	BrokerID string

	// Opaque, transport-interpreted endpoints (spec §6). The core never
	// parses these; it only stores them in its Config.
	IngressEndpoint string
	EgressEndpoint  string
	ControlEndpoint string

	HeartbeatInterval time.Duration
	ShutdownGrace     time.Duration
}

func (c Config) withDefaults() Config {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 5 * time.Second
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = time.Second
	}
	return c
}

// Ingress delivers parsed events one at a time (spec §1: transport is out
// of scope, only the consumed interface is specified).
type Ingress interface {
	Events() <-chan *event.Event
}

// Egress dispatches a stamped wire message to the subscriber addressed by
// subscriberID. address is the opaque string remembered from Subscribe.
type Egress interface {
	Send(subscriberID, address string, msg *wire.BrokerMessage) error
}

// Envelope pairs a control Request with the channel its Response must be
// written to, modeling the synchronous request/reply protocol of spec §6.
type Envelope struct {
	Request Request
	Reply   chan<- Response
}

// Control supplies the broker's control worker with subscribe/unsubscribe/
// status requests.
type Control interface {
	Requests() <-chan Envelope
}

// HeartbeatSink receives one BrokerHeartbeat every HeartbeatInterval.
type HeartbeatSink interface {
	Send(hb *wire.BrokerHeartbeat) error
}

// Request is a control-plane request (spec §4.3). Exactly one of
// Subscribe/Unsubscribe/Status should be set. When none is set, OnControl
// treats it as the "unknown variant" case; when several are set, the first
// non-nil one in the order Subscribe, Unsubscribe, Status is handled.
type Request struct {
	Subscribe   *SubscribeRequest
	Unsubscribe *UnsubscribeRequest
	Status      *StatusRequest
}

// SubscribeRequest carries a wire-encoded Subscription plus a
// transport-opaque delivery address.
type SubscribeRequest struct {
	Subscription wire.Subscription
	Address      string
}

// UnsubscribeRequest names the subscription to remove.
type UnsubscribeRequest struct {
	SubscriptionID string
}

// StatusRequest has no fields; its presence selects the Status operation.
type StatusRequest struct{}

// Response is a control-plane reply (spec §6): status is "success" or
// "error"; Message and Statistics are populated according to the request.
type Response struct {
	Status         string
	Message        string
	SubscriptionID string
	Statistics     *Statistics
}

// Statistics is the broker-wide counters snapshot returned by Status and
// Stats (spec §4.3, §5).
type Statistics struct {
	SimpleCount          int
	ComplexCount         int
	Total                int
	EventsProcessed      int64
	NotificationsSent    int64
	NotificationsDropped int64
	UptimeSeconds        float64
}

// Broker is spec.md §4.3's dataplane: an explicitly constructed value with
// no process-wide singleton state (spec §9's "Global mutable broker
// state" design note).
type Broker struct {
	cfg      Config
	registry *matcher.Registry

	ingress       Ingress
	egress        Egress
	control       Control
	heartbeatSink HeartbeatSink

	addrMu    sync.RWMutex
	addresses map[string]string // subscriber_id -> address

	eventsProcessed      atomic.Int64
	notificationsSent    atomic.Int64
	notificationsDropped atomic.Int64

	startTime time.Time
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once

	log zerolog.Logger
}

// NewBroker constructs a Broker wired to its collaborators. BrokerID must
// be non-empty (spec §6).
func NewBroker(cfg Config, ingress Ingress, egress Egress, control Control, heartbeatSink HeartbeatSink) (*Broker, error) {
	if cfg.BrokerID == "" {
		return nil, fmt.Errorf("broker: broker_id must not be empty")
	}

	return &Broker{
		cfg:           cfg.withDefaults(),
		registry:      matcher.NewRegistry(),
		ingress:       ingress,
		egress:        egress,
		control:       control,
		heartbeatSink: heartbeatSink,
		addresses:     make(map[string]string),
		done:          make(chan struct{}),
		log:           log.WithBrokerID(cfg.BrokerID),
	}, nil
}

// Start launches the ingress, control, and heartbeat workers (spec §5).
// It does not block.
func (b *Broker) Start() {
	b.startTime = time.Now()
	b.wg.Add(3)
	go b.ingressLoop()
	go b.controlLoop()
	go b.heartbeatLoop()
	metrics.RegisterComponent("matcher", true, "registry accepting subscriptions")
	metrics.RegisterComponent("broker", true, "dataplane workers running")
	b.log.Info().Msg("broker started")
}

// Stop signals every worker to drain and waits up to the configured grace
// period (default 1s) for them to exit. Stop is idempotent.
func (b *Broker) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
	})

	waited := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-time.After(b.cfg.ShutdownGrace):
		b.log.Warn().Msg("broker stop exceeded grace period")
	}

	metrics.UpdateComponent("broker", false, "stopped")
}

func (b *Broker) ingressLoop() {
	defer b.wg.Done()
	for {
		select {
		case e, ok := <-b.ingress.Events():
			if !ok {
				return
			}
			b.OnEvent(e)
		case <-b.done:
			return
		}
	}
}

func (b *Broker) controlLoop() {
	defer b.wg.Done()
	for {
		select {
		case env, ok := <-b.control.Requests():
			if !ok {
				return
			}
			resp := b.OnControl(env.Request)
			select {
			case env.Reply <- resp:
			case <-b.done:
				return
			}
		case <-b.done:
			return
		}
	}
}

func (b *Broker) heartbeatLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.emitHeartbeat()
		case <-b.done:
			return
		}
	}
}

func (b *Broker) emitHeartbeat() {
	_, _, total := b.registry.Stats()
	hb := &wire.BrokerHeartbeat{
		BrokerID:            b.cfg.BrokerID,
		Status:              "healthy",
		ActiveSubscriptions: total,
		ProcessedEvents:     b.eventsProcessed.Load(),
	}
	if err := b.heartbeatSink.Send(hb); err != nil {
		b.log.Warn().Err(err).Msg("heartbeat dispatch failed")
	}
	metrics.HeartbeatsSentTotal.Inc()
}

// OnEvent feeds event into the matcher and dispatches every resulting
// notification (spec §4.3). A failure dispatching one notification never
// prevents dispatch of its siblings.
func (b *Broker) OnEvent(e *event.Event) {
	if e == nil {
		b.log.Warn().Msg("dropped nil event")
		metrics.EventsDroppedTotal.WithLabelValues("decode_error").Inc()
		return
	}

	timer := metrics.NewTimer()
	matches := b.registry.Match(e)
	timer.ObserveDuration(metrics.MatchLatency)

	b.eventsProcessed.Add(1)
	metrics.EventsProcessedTotal.Inc()

	now := time.Now().UnixMilli()
	for _, m := range matches {
		notif := b.stamp(m, now)
		b.dispatch(m.SubscriberID, notif)
	}
}

func (b *Broker) stamp(m matcher.Match, nowMs int64) *wire.Notification {
	prefix := "notif_"
	if m.Kind == wire.KindComplex {
		prefix = "complex_notif_"
	}

	return &wire.Notification{
		NotificationID: prefix + strconv.FormatInt(nowMs, 10) + "_" + m.SubscriptionID,
		SubscriptionID: m.SubscriptionID,
		SubscriberID:   m.SubscriberID,
		TimestampMs:    nowMs,
		Simple:         m.Simple,
		Complex:        m.Complex,
	}
}

func (b *Broker) dispatch(subscriberID string, notif *wire.Notification) {
	kind := "simple"
	if notif.Complex != nil {
		kind = "complex"
	}

	msg := &wire.BrokerMessage{
		MessageID:           notif.NotificationID,
		Timestamp:           notif.TimestampMs,
		Type:                wire.MessageTypeNotification,
		NotificationPayload: notif,
	}

	b.addrMu.RLock()
	address := b.addresses[subscriberID]
	b.addrMu.RUnlock()

	if err := b.egress.Send(subscriberID, address, msg); err != nil {
		log.WithSubscriberID(subscriberID).Warn().Err(err).Msg("notification dispatch failed")
		b.notificationsDropped.Add(1)
		metrics.NotificationsDroppedTotal.Inc()
		return
	}

	b.notificationsSent.Add(1)
	metrics.NotificationsSentTotal.WithLabelValues(kind).Inc()
}

// OnControl handles one control-plane request and returns its response
// (spec §4.3). It never blocks on I/O.
func (b *Broker) OnControl(req Request) Response {
	switch {
	case req.Subscribe != nil:
		return b.handleSubscribe(req.Subscribe)
	case req.Unsubscribe != nil:
		return b.handleUnsubscribe(req.Unsubscribe)
	case req.Status != nil:
		return b.handleStatus()
	default:
		metrics.ControlRequestsTotal.WithLabelValues("unknown", "error").Inc()
		return Response{Status: "error", Message: "Unknown request type"}
	}
}

func (b *Broker) handleSubscribe(req *SubscribeRequest) Response {
	sub, err := fromWireSubscription(req.Subscription)
	if err != nil {
		metrics.ControlRequestsTotal.WithLabelValues("subscribe", "error").Inc()
		return Response{Status: "error", Message: err.Error()}
	}

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	if err := b.registry.Add(sub); err != nil {
		metrics.ControlRequestsTotal.WithLabelValues("subscribe", "error").Inc()
		return Response{Status: "error", Message: err.Error()}
	}

	if sub.SubscriberID != "" {
		b.addrMu.Lock()
		b.addresses[sub.SubscriberID] = req.Address
		b.addrMu.Unlock()
	}

	log.WithSubscriptionID(sub.ID).Info().Str("subscriber_id", sub.SubscriberID).Msg("subscription registered")

	metrics.ControlRequestsTotal.WithLabelValues("subscribe", "success").Inc()
	return Response{Status: "success", Message: "subscribed", SubscriptionID: sub.ID}
}

func (b *Broker) handleUnsubscribe(req *UnsubscribeRequest) Response {
	b.registry.Remove(req.SubscriptionID)
	metrics.ControlRequestsTotal.WithLabelValues("unsubscribe", "success").Inc()
	return Response{Status: "success", Message: "unsubscribed"}
}

func (b *Broker) handleStatus() Response {
	metrics.ControlRequestsTotal.WithLabelValues("status", "success").Inc()
	stats := b.Stats()
	return Response{Status: "success", Statistics: &stats}
}

// Stats returns the broker-wide counters (spec §4.3, §5). Counters are
// eventually consistent but monotonically non-decreasing.
func (b *Broker) Stats() Statistics {
	simple, complexCount, total := b.registry.Stats()
	return Statistics{
		SimpleCount:          simple,
		ComplexCount:         complexCount,
		Total:                total,
		EventsProcessed:      b.eventsProcessed.Load(),
		NotificationsSent:    b.notificationsSent.Load(),
		NotificationsDropped: b.notificationsDropped.Load(),
		UptimeSeconds:        time.Since(b.startTime).Seconds(),
	}
}

// RegistryCounts satisfies metrics.Source.
func (b *Broker) RegistryCounts() (simple, complex int) {
	return b.registry.RegistryCounts()
}

func fromWireSubscription(ws wire.Subscription) (*matcher.Subscription, error) {
	if len(ws.Conditions) == 0 {
		return nil, &matcher.InvalidSubscriptionError{Reason: "conditions list is empty"}
	}

	conds := make([]condition.Condition, 0, len(ws.Conditions))
	for _, wc := range ws.Conditions {
		conds = append(conds, condition.New(wc.FieldName, wc.Operator, wc.Value, wc.IsWindowed))
	}

	sub := &matcher.Subscription{
		ID:           ws.SubscriptionID,
		SubscriberID: ws.SubscriberID,
		Kind:         ws.Kind,
		Conditions:   conds,
	}

	if ws.WindowConfig != nil {
		sub.WindowConfig = &matcher.WindowConfig{
			WindowSize:      ws.WindowConfig.WindowSize,
			AggregationType: ws.WindowConfig.AggregationType,
		}
	}

	return sub, nil
}
