/*
Package log provides structured logging for relay using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-scoped child loggers, a configurable level, and helper
functions for the common logging patterns used across the broker dataplane
and matcher.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout or custom writer          │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("matcher")                 │          │
	│  │  - WithBrokerID("broker-1")                 │          │
	│  │  - WithSubscriptionID("sub-abc")             │          │
	│  │  - WithSubscriberID("subscriber-xyz")        │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Usage

Initializing the logger:

	import "github.com/cuemby/relay/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Simple logging:

	log.Info("broker started")
	log.Debug("evaluating condition")
	log.Warn("egress buffer near capacity")
	log.Error("failed to dispatch notification")

Structured logging:

	log.WithComponent("broker").Info().
		Str("subscription_id", subID).
		Int("notification_count", len(notifications)).
		Msg("dispatched notifications")

# Integration Points

  - pkg/broker: logs broker start, dropped events, failed heartbeat
    dispatches, and stop-grace overruns with WithBrokerID(broker_id); logs
    subscription registrations with WithSubscriptionID and failed
    notification dispatches with WithSubscriberID. Rejected control-plane
    requests are answered with an error response and are not logged.
  - pkg/matcher: logs subscription add/remove with WithComponent("matcher").
*/
package log
