package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpecs(t *testing.T) {
	m := NewHostMonitor(nil)

	specs := m.Specs(context.Background())
	assert.NotEmpty(t, specs.CPUModel)
	assert.Positive(t, specs.LogicalCores)

	assert.Equal(t, specs, m.Specs(context.Background()))
}

func TestStats(t *testing.T) {
	m := NewHostMonitor(nil)
	m.sampleWindow = 50 * time.Millisecond

	stats, err := m.Stats(context.Background())
	if err != nil {
		t.Skipf("host stats unavailable: %v", err)
	}
	assert.GreaterOrEqual(t, stats.RAMPercent, 0.0)
	assert.LessOrEqual(t, stats.RAMPercent, 100.0)
	assert.GreaterOrEqual(t, stats.CPUPercent, 0.0)
	assert.Equal(t, stats.CPUPercent > busyCPUPercent || stats.RAMPercent > busyRAMPercent, stats.IsBusy)
}
