package rslimiter

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceUsage is a point-in-time snapshot of process and system resources.
type ResourceUsage struct {
	AllocMB              int64   // memory currently allocated by the application
	SysMB                int64   // memory obtained from the OS by the Go runtime
	Goroutines           int     // number of goroutines
	GCCount              int64   // completed GC cycles
	SystemMemUsedPercent float64 // system-wide memory usage
	CPUUsagePercent      float64 // system-wide CPU usage
}

// GetResourceUsage collects current resource usage statistics.
func GetResourceUsage() ResourceUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	usage := ResourceUsage{
		AllocMB:    int64(m.Alloc / 1024 / 1024),
		SysMB:      int64(m.Sys / 1024 / 1024),
		Goroutines: runtime.NumGoroutine(),
		GCCount:    int64(m.NumGC),
	}

	if vmStat, err := mem.VirtualMemory(); err == nil {
		usage.SystemMemUsedPercent = vmStat.UsedPercent
	}

	if cpuPercents, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercents) > 0 {
		usage.CPUUsagePercent = cpuPercents[0]
	}

	return usage
}
