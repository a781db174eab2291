/*
Package metrics provides Prometheus metrics collection and exposition for relay.

The metrics package defines and registers all broker metrics using the
Prometheus client library, giving observability into subscription registry
size, dataplane throughput, matching latency, and window fire rates. Metrics
are exposed via an HTTP endpoint for scraping by Prometheus servers, and a
small health-check registry backs /healthz and /readyz.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Metric Types                   │          │
	│  │                                              │          │
	│  │  Gauge: subscription counts by kind          │          │
	│  │  Counter: events/notifications/drops,        │          │
	│  │           window fires                       │          │
	│  │  Histogram: match latency                    │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Metrics Catalog

relay_subscriptions_total{kind}:
  - Gauge, updated by Collector every 15s from broker.RegistryCounts
  - kind ∈ {simple, complex}

relay_events_processed_total:
  - Counter, incremented once per event handed to the matcher

relay_notifications_sent_total{kind}:
  - Counter, incremented once per dispatched notification
  - kind ∈ {simple, complex}

relay_notifications_dropped_total:
  - Counter, incremented when egress cannot accept a notification

relay_events_dropped_total{reason}:
  - Counter, incremented on the ingress path for malformed events
  - reason ∈ {decode_error, ...}

relay_match_latency_seconds:
  - Histogram of Registry.Match wall-clock duration per event

relay_window_fires_total{aggregation}:
  - Counter, incremented each time a tumbling window reaches capacity
  - aggregation ∈ {avg, max, min, sum}

relay_control_requests_total{type, status}:
  - Counter of control-plane requests
  - type ∈ {subscribe, unsubscribe, status}; status ∈ {success, error}

relay_heartbeats_sent_total:
  - Counter, incremented once per heartbeat tick

# Usage

Registering and scraping:

	import "github.com/cuemby/relay/pkg/metrics"

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", metrics.HealthHandler())
	mux.HandleFunc("/readyz", metrics.ReadyHandler())

Collecting registry gauges from a running broker:

	collector := metrics.NewCollector(brk) // brk satisfies metrics.Source
	collector.Start()
	defer collector.Stop()

Timing an operation:

	timer := metrics.NewTimer()
	registry.Match(event)
	timer.ObserveDuration(metrics.MatchLatency)

# Integration Points

  - pkg/broker: increments the dataplane and control-plane counters, times
    Registry.Match with a Timer, and implements metrics.Source for the
    Collector.
  - pkg/matcher: increments relay_window_fires_total each time a tumbling
    window reaches capacity.

# Health and readiness

RegisterComponent/UpdateComponent track component health by name; the
broker registers "matcher" and "broker" at startup and marks "broker"
unhealthy on Stop. GetReadiness treats both as critical — /readyz returns
503 until both report healthy.
*/
package metrics
