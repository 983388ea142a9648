package monitor

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Busy thresholds. Above these a transcode will compete hard for the host.
const (
	busyCPUPercent = 80.0
	busyRAMPercent = 90.0
)

// HostSpecs is hardware info that doesn't change at runtime.
type HostSpecs struct {
	CPUModel     string
	LogicalCores int
}

// HostStats is a point-in-time load sample.
type HostStats struct {
	CPUPercent float64
	RAMPercent float64
	IsBusy     bool
}

type HostMonitor struct {
	logger hclog.Logger
	once   sync.Once
	specs  HostSpecs

	// sampleWindow is how long CPU usage is measured for.
	sampleWindow time.Duration
}

func NewHostMonitor(logger hclog.Logger) *HostMonitor {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &HostMonitor{
		logger:       logger,
		sampleWindow: 500 * time.Millisecond,
	}
}

// Specs runs once; CPU counts don't change while we're running.
func (m *HostMonitor) Specs(ctx context.Context) HostSpecs {
	m.once.Do(func() {
		m.specs = HostSpecs{CPUModel: "Unknown CPU", LogicalCores: runtime.NumCPU()}

		if info, err := cpu.InfoWithContext(ctx); err != nil {
			m.logger.Debug("cpu info unavailable", "error", err)
		} else if len(info) > 0 && info[0].ModelName != "" {
			m.specs.CPUModel = info[0].ModelName
		}

		if n, err := cpu.CountsWithContext(ctx, true); err != nil {
			m.logger.Debug("cpu count unavailable, using runtime.NumCPU", "error", err)
		} else if n > 0 {
			m.specs.LogicalCores = n
		}
	})
	return m.specs
}

// Stats gathers real-time CPU and RAM usage.
func (m *HostMonitor) Stats(ctx context.Context) (HostStats, error) {
	stats := HostStats{}

	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to get mem stats: %w", err)
	}
	stats.RAMPercent = v.UsedPercent

	cpuPct, err := cpu.PercentWithContext(ctx, m.sampleWindow, false)
	if err != nil {
		return stats, fmt.Errorf("failed to get cpu stats: %w", err)
	}
	if len(cpuPct) > 0 {
		stats.CPUPercent = cpuPct[0]
	}

	stats.IsBusy = stats.CPUPercent > busyCPUPercent || stats.RAMPercent > busyRAMPercent
	return stats, nil
}
