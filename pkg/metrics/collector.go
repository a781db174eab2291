package metrics

import "time"

// Source is the subset of broker state the collector needs to poll. It is
// satisfied by *broker.Broker without this package importing broker (which
// itself imports metrics), matching the teacher's collector-takes-a-handle
// shape but inverted to avoid an import cycle.
type Source interface {
	// RegistryCounts returns the current simple and complex subscription
	// counts, as tracked by the matcher registry.
	RegistryCounts() (simple, complex int)
}

// Collector periodically samples broker/matcher state into the package's
// Prometheus gauges.
type Collector struct {
	source Source
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector for the given source.
func NewCollector(source Source) *Collector {
	return &Collector{
		source: source,
		stopCh: make(chan struct{}),
	}
}

// Start begins periodic collection.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	simple, complex := c.source.RegistryCounts()
	SubscriptionsTotal.WithLabelValues("simple").Set(float64(simple))
	SubscriptionsTotal.WithLabelValues("complex").Set(float64(complex))
}
