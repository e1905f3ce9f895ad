package diagnostics_test

import (
	"testing"

	"github.com/cognifloe/control-plane/internal/diagnostics"
)

func TestCollect(t *testing.T) {
	c := diagnostics.NewCollector()
	first := c.Collect()
	second := c.Collect()

	for _, m := range []diagnostics.SystemMetrics{first, second} {
		if m.MemPercent < 0 || m.MemPercent > 100 {
			t.Errorf("MemPercent = %v, out of range", m.MemPercent)
		}
		if m.CPUPercent < 0 || m.CPUPercent > 100 {
			t.Errorf("CPUPercent = %v, out of range", m.CPUPercent)
		}
		if m.CollectLatencyMs < 0 {
			t.Errorf("CollectLatencyMs = %v, want >= 0", m.CollectLatencyMs)
		}
	}
	if first.CPUPercent != 0 {
		t.Errorf("first CPUPercent = %v, want 0", first.CPUPercent)
	}
}
