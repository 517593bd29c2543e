package coordinator

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"teamresumes/agent-engine/pkg/types"
)

// stepDurations aggregates per-step wall time for one workflow run.
// Millisecond resolution, one hour ceiling. Safe for concurrent use;
// parallel batches record from multiple goroutines.
type stepDurations struct {
	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

func newStepDurations() *stepDurations {
	return &stepDurations{hist: hdrhistogram.New(1, 3_600_000, 3)}
}

func (d *stepDurations) record(elapsed time.Duration) {
	ms := elapsed.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	d.mu.Lock()
	_ = d.hist.RecordValue(ms)
	d.mu.Unlock()
}

func (d *stepDurations) summary() *types.DurationSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hist.TotalCount() == 0 {
		return nil
	}
	return &types.DurationSummary{
		Count:      d.hist.TotalCount(),
		P50Millis:  d.hist.ValueAtQuantile(50),
		P95Millis:  d.hist.ValueAtQuantile(95),
		P99Millis:  d.hist.ValueAtQuantile(99),
		MaxMillis:  d.hist.Max(),
	}
}
