package wire

import "github.com/vmihailenco/msgpack/v5"

// Event is the wire representation of spec.md §3's tagged Event union: one
// variant payload is populated according to Type, the rest are left zero.
// Field extraction (pkg/event) and condition evaluation (pkg/condition)
// both read from this shape.
type Event struct {
	EventID   string           `msgpack:"event_id"`
	Timestamp int64            `msgpack:"timestamp"`
	Type      EventType        `msgpack:"type"`
	Purchase  *Purchase        `msgpack:"purchase,omitempty"`
	View      *ProductView     `msgpack:"product_view,omitempty"`
	Inventory *InventoryUpdate `msgpack:"inventory_update,omitempty"`
	Rating    *UserRating      `msgpack:"user_rating,omitempty"`
}

// Purchase is the Purchase event variant's fields.
type Purchase struct {
	UserID      string  `msgpack:"user_id"`
	ProductID   string  `msgpack:"product_id"`
	Category    string  `msgpack:"category"`
	Price       float64 `msgpack:"price"`
	Quantity    int64   `msgpack:"quantity"`
	WarehouseID string  `msgpack:"warehouse_id"`
}

// ProductView is the ProductView event variant's fields.
type ProductView struct {
	UserID       string `msgpack:"user_id"`
	ProductID    string `msgpack:"product_id"`
	Category     string `msgpack:"category"`
	ViewDuration int64  `msgpack:"view_duration"`
	Source       string `msgpack:"source"`
}

// InventoryUpdate is the InventoryUpdate event variant's fields.
type InventoryUpdate struct {
	ProductID   string `msgpack:"product_id"`
	Category    string `msgpack:"category"`
	StockLevel  int64  `msgpack:"stock_level"`
	WarehouseID string `msgpack:"warehouse_id"`
	Operation   string `msgpack:"operation"`
}

// UserRating is the UserRating event variant's fields.
type UserRating struct {
	UserID     string  `msgpack:"user_id"`
	ProductID  string  `msgpack:"product_id"`
	Category   string  `msgpack:"category"`
	Rating     float64 `msgpack:"rating"`
	ReviewText string  `msgpack:"review_text"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (e *Event) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal(e)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (e *Event) UnmarshalBinary(data []byte) error {
	return msgpack.Unmarshal(data, e)
}

// SimpleNotification wraps the event that satisfied a Simple subscription.
type SimpleNotification struct {
	MatchedEvent Event `msgpack:"matched_event"`
}

// ComplexNotification wraps the result of a fired, threshold-satisfying
// windowed condition.
type ComplexNotification struct {
	Category        string  `msgpack:"category"`
	FieldName       string  `msgpack:"field_name"`
	AggregatedValue float64 `msgpack:"aggregated_value"`
	WindowSize      int     `msgpack:"window_size"`
	ConditionMet    bool    `msgpack:"condition_met"`
}

// Notification is the dispatch artifact produced by a match, addressed by
// SubscriberID. Exactly one of Simple/Complex is populated.
type Notification struct {
	NotificationID string               `msgpack:"notification_id"`
	SubscriptionID string               `msgpack:"subscription_id"`
	SubscriberID   string               `msgpack:"subscriber_id"`
	TimestampMs    int64                `msgpack:"timestamp_ms"`
	Simple         *SimpleNotification  `msgpack:"simple,omitempty"`
	Complex        *ComplexNotification `msgpack:"complex,omitempty"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (n *Notification) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal(n)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (n *Notification) UnmarshalBinary(data []byte) error {
	return msgpack.Unmarshal(data, n)
}

// Condition is the wire form of spec.md §3's filter condition.
type Condition struct {
	FieldName  string   `msgpack:"field_name"`
	Operator   Operator `msgpack:"operator"`
	Value      string   `msgpack:"value"`
	IsWindowed bool     `msgpack:"is_windowed"`
}

// WindowConfig is the wire form of a Complex subscription's window
// parameters.
type WindowConfig struct {
	WindowSize      int    `msgpack:"window_size"`
	AggregationType string `msgpack:"aggregation_type"`
}

// Subscription is the binary payload of a Subscribe control request (spec
// §6). SubscriptionID may be empty, in which case the broker assigns one.
type Subscription struct {
	SubscriptionID string           `msgpack:"subscription_id"`
	SubscriberID   string           `msgpack:"subscriber_id"`
	Kind           SubscriptionKind `msgpack:"kind"`
	Conditions     []Condition      `msgpack:"conditions"`
	WindowConfig   *WindowConfig    `msgpack:"window_config,omitempty"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Subscription) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal(s)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Subscription) UnmarshalBinary(data []byte) error {
	return msgpack.Unmarshal(data, s)
}

// BrokerHeartbeat is emitted by the broker's heartbeat worker every 5s
// (spec §4.3); the core neither persists nor consumes its own heartbeats.
type BrokerHeartbeat struct {
	BrokerID            string `msgpack:"broker_id"`
	Status              string `msgpack:"status"`
	ActiveSubscriptions int    `msgpack:"active_subscriptions"`
	ProcessedEvents     int64  `msgpack:"processed_events"`
}

// BrokerMessage is the ingress/egress envelope of spec §6. Exactly one of
// EventPayload/NotificationPayload/HeartbeatPayload is populated according
// to Type.
type BrokerMessage struct {
	MessageID           string           `msgpack:"message_id"`
	Timestamp           int64            `msgpack:"timestamp"`
	Type                MessageType      `msgpack:"type"`
	EventPayload        *Event           `msgpack:"event,omitempty"`
	NotificationPayload *Notification    `msgpack:"notification,omitempty"`
	HeartbeatPayload    *BrokerHeartbeat `msgpack:"heartbeat,omitempty"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *BrokerMessage) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal(m)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *BrokerMessage) UnmarshalBinary(data []byte) error {
	return msgpack.Unmarshal(data, m)
}
