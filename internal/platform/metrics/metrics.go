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

	signaturesTotal   uint64
	rejectionsTotal   uint64
	calibrationsTotal uint64
	remindersTotal    uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) IncSignature()   { atomic.AddUint64(&c.signaturesTotal, 1) }
func (c *Collector) IncRejection()   { atomic.AddUint64(&c.rejectionsTotal, 1) }
func (c *Collector) IncCalibration() { atomic.AddUint64(&c.calibrationsTotal, 1) }
func (c *Collector) IncReminder()    { atomic.AddUint64(&c.remindersTotal, 1) }

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":     total,
		"errorsTotal":       errs,
		"rateLimitedTotal":  limited,
		"avgDurationMs":     avg,
		"totalDurationMs":   totalMs,
		"signaturesTotal":   atomic.LoadUint64(&c.signaturesTotal),
		"rejectionsTotal":   atomic.LoadUint64(&c.rejectionsTotal),
		"calibrationsTotal": atomic.LoadUint64(&c.calibrationsTotal),
		"remindersTotal":    atomic.LoadUint64(&c.remindersTotal),
	}
}
