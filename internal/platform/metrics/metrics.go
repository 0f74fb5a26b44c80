package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	debitsEmitted   uint64
	paidNoops       uint64
	auditFailures   uint64
	outboxPublished uint64
	outboxFailures  uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) DebitEmitted() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.debitsEmitted, 1)
}

// PaidNoop counts transitions to Paid that were absorbed by the idempotency guard.
func (c *Collector) PaidNoop() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.paidNoops, 1)
}

func (c *Collector) AuditFailure() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.auditFailures, 1)
}

func (c *Collector) OutboxPublished(ok bool) {
	if c == nil {
		return
	}
	if ok {
		atomic.AddUint64(&c.outboxPublished, 1)
		return
	}
	atomic.AddUint64(&c.outboxFailures, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":        total,
		"errorsTotal":          atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal":     atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":        avg,
		"totalDurationMs":      totalMs,
		"debitsEmittedTotal":   atomic.LoadUint64(&c.debitsEmitted),
		"paidNoopsTotal":       atomic.LoadUint64(&c.paidNoops),
		"auditFailuresTotal":   atomic.LoadUint64(&c.auditFailures),
		"outboxPublishedTotal": atomic.LoadUint64(&c.outboxPublished),
		"outboxFailuresTotal":  atomic.LoadUint64(&c.outboxFailures),
	}
}
