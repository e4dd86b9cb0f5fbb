package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests     uint64
	errorRequests     uint64
	totalDurationMs   uint64
	calculationsTotal uint64
	historyFailures   uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordCalculation(historyFailed bool) {
	atomic.AddUint64(&c.calculationsTotal, 1)
	if historyFailed {
		atomic.AddUint64(&c.historyFailures, 1)
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	calcs := atomic.LoadUint64(&c.calculationsTotal)
	histFails := atomic.LoadUint64(&c.historyFailures)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":        total,
		"errorsTotal":          errs,
		"avgDurationMs":        avg,
		"totalDurationMs":      totalMs,
		"calculationsTotal":    calcs,
		"historyWriteFailures": histFails,
	}
}
