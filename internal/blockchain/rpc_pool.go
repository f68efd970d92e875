// internal/blockchain/rpc_pool.go
package blockchain

import (
	"time"
)

func (e *endpoint) setActive(state bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.active = state
}

func (e *endpoint) isActive() bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.active
}

func (e *endpoint) updateMetrics(success bool, latency time.Duration) {
	e.metrics.mutex.Lock()
	defer e.metrics.mutex.Unlock()

	if success {
		e.metrics.successCount++
	} else {
		e.metrics.errorCount++
	}

	// Скользящее среднее
	e.metrics.latency = (e.metrics.latency + latency) / 2
}

func (e *endpoint) stats() EndpointStats {
	e.metrics.mutex.RLock()
	defer e.metrics.mutex.RUnlock()
	return EndpointStats{
		URL:          e.url,
		Active:       e.isActive(),
		SuccessCount: e.metrics.successCount,
		ErrorCount:   e.metrics.errorCount,
		AvgLatency:   e.metrics.latency,
	}
}

// getNextEndpoint returns the next active node in round-robin order,
// or nil when every node has been marked inactive.
func (c *Client) getNextEndpoint() *endpoint {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	initialIndex := c.currIndex
	for {
		c.currIndex = (c.currIndex + 1) % len(c.endpoints)
		if c.endpoints[c.currIndex].isActive() {
			return c.endpoints[c.currIndex]
		}
		if c.currIndex == initialIndex {
			return nil
		}
	}
}

func (c *Client) hasActiveEndpoints() bool {
	for _, e := range c.endpoints {
		if e.isActive() {
			return true
		}
	}
	return false
}

// Stats snapshots every endpoint in the pool.
func (c *Client) Stats() []EndpointStats {
	stats := make([]EndpointStats, 0, len(c.endpoints))
	for _, e := range c.endpoints {
		stats = append(stats, e.stats())
	}
	return stats
}
