// Package debug logs runtime and process statistics when debug mode is on.
package debug

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Sample is one round of runtime and process measurements.
type Sample struct {
	Goroutines uint64
	HeapAlloc  uint64
	StackInuse uint64
	RSS        uint64 // 0 when the process query failed
	CPUPercent float64
}

// Collector reads samples for the current process.
type Collector struct {
	proc    *process.Process
	samples []metrics.Sample
}

// NewCollector returns a collector. Process figures are omitted when the
// process handle cannot be opened.
func NewCollector() *Collector {
	c := &Collector{samples: []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		c.proc = p
	}
	return c
}

// Read takes one sample.
func (c *Collector) Read() Sample {
	metrics.Read(c.samples)
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s := Sample{HeapAlloc: ms.HeapAlloc, StackInuse: ms.StackInuse}
	if c.samples[0].Value.Kind() == metrics.KindUint64 {
		s.Goroutines = c.samples[0].Value.Uint64()
	}
	if c.proc != nil {
		if mi, err := c.proc.MemoryInfo(); err == nil && mi != nil {
			s.RSS = mi.RSS
		}
		if cpu, err := c.proc.CPUPercent(); err == nil {
			s.CPUPercent = cpu
		}
	}
	return s
}

// StartStatsLogger logs a sample every interval until ctx is done. extra, when
// non-nil, contributes additional attributes (e.g. capture loop counters).
func StartStatsLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, extra func() []any) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		return
	}
	c := NewCollector()
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			s := c.Read()
			attrs := []any{
				slog.Uint64("goroutines", s.Goroutines),
				slog.Uint64("heap_alloc", s.HeapAlloc),
				slog.Uint64("stack_inuse", s.StackInuse),
				slog.Uint64("rss", s.RSS),
				slog.Float64("cpu_percent", s.CPUPercent),
			}
			if extra != nil {
				attrs = append(attrs, extra()...)
			}
			logger.Debug("process.stats", attrs...)
		}
	}()
}
