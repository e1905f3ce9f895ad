// Package diagnostics collects best-effort host and process resource usage
// for the model health endpoint.
package diagnostics

import (
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// SystemMetrics is a point-in-time resource snapshot. Fields that could not
// be read are left at zero.
type SystemMetrics struct {
	CollectLatencyMs float64 `json:"collectLatencyMs"`
	ProcessMemoryMB  float64 `json:"processMemoryMb"`
	MemTotalMB       float64 `json:"memTotalMb"`
	MemUsedMB        float64 `json:"memUsedMb"`
	MemPercent       float64 `json:"memPercent"`
	CPUPercent       float64 `json:"cpuPercent"`
	LoadAvg1         float64 `json:"loadAvg1"`
	LoadAvg5         float64 `json:"loadAvg5"`
	LoadAvg15        float64 `json:"loadAvg15"`
}

// Collector gathers SystemMetrics. CPU usage is computed from the delta
// between consecutive calls, so the first call reports 0.
type Collector struct {
	mu           sync.Mutex
	lastCPUTotal float64
	lastCPUIdle  float64
	proc         *process.Process
}

// NewCollector creates a collector for the current process.
func NewCollector() *Collector {
	c := &Collector{}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		c.proc = p
	}
	return c
}

// Collect reads the current metrics.
func (c *Collector) Collect() SystemMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	var m SystemMetrics

	if c.proc != nil {
		if info, err := c.proc.MemoryInfo(); err == nil {
			m.ProcessMemoryMB = float64(info.RSS) / 1024 / 1024
		}
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		m.MemTotalMB = float64(vm.Total) / 1024 / 1024
		m.MemUsedMB = float64(vm.Used) / 1024 / 1024
		m.MemPercent = vm.UsedPercent
	}

	if times, err := cpu.Times(false); err == nil && len(times) > 0 {
		t := times[0]
		total := t.User + t.Nice + t.System + t.Idle + t.Iowait + t.Irq + t.Softirq + t.Steal
		idle := t.Idle + t.Iowait
		if c.lastCPUTotal > 0 {
			if dt := total - c.lastCPUTotal; dt > 0 {
				m.CPUPercent = (1 - (idle-c.lastCPUIdle)/dt) * 100
			}
		}
		c.lastCPUTotal = total
		c.lastCPUIdle = idle
	}

	if avg, err := load.Avg(); err == nil {
		m.LoadAvg1 = avg.Load1
		m.LoadAvg5 = avg.Load5
		m.LoadAvg15 = avg.Load15
	}

	m.CollectLatencyMs = float64(time.Since(start).Microseconds()) / 1000
	return m
}
