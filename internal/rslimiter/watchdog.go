package rslimiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aleister1102/alistmover/internal/config"

	"github.com/rs/zerolog"
)

// Watchdog periodically samples process and system resource usage and
// triggers the shutdown callback when a configured threshold is exceeded.
// A long-running mover should step aside rather than starve the host.
type Watchdog struct {
	cfg              config.ResourceLimiterConfig
	logger           zerolog.Logger
	checkInterval    time.Duration
	memoryWarnMB     int64
	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	mu               sync.RWMutex
	isRunning        bool
	shutdownCallback func()
}

// NewWatchdog creates a resource watchdog from configuration.
func NewWatchdog(cfg config.ResourceLimiterConfig, logger zerolog.Logger) *Watchdog {
	ctx, cancel := context.WithCancel(context.Background())

	checkSeconds := cfg.CheckIntervalSeconds
	if checkSeconds < 1 {
		checkSeconds = 30
	}
	memoryThreshold := cfg.MemoryThreshold
	if memoryThreshold <= 0 {
		memoryThreshold = 0.8
	}

	return &Watchdog{
		cfg:           cfg,
		logger:        logger.With().Str("component", "ResourceWatchdog").Logger(),
		checkInterval: time.Duration(checkSeconds) * time.Second,
		memoryWarnMB:  int64(float64(cfg.MaxMemoryMB) * memoryThreshold),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// SetShutdownCallback sets the function called when a hard limit is exceeded.
func (w *Watchdog) SetShutdownCallback(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.shutdownCallback = callback
}

// Start begins the sampling loop. Disabled configs make Start a no-op.
func (w *Watchdog) Start() {
	if !w.cfg.Enabled {
		w.logger.Debug().Msg("Resource watchdog disabled by configuration")
		return
	}

	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop()

	w.logger.Info().
		Int64("max_memory_mb", w.cfg.MaxMemoryMB).
		Int("max_goroutines", w.cfg.MaxGoroutines).
		Dur("check_interval", w.checkInterval).
		Msg("Resource watchdog started")
}

// Stop terminates the sampling loop and waits for it to exit.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
	w.logger.Info().Msg("Resource watchdog stopped")
}

func (w *Watchdog) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *Watchdog) check() {
	usage := GetResourceUsage()

	if usage.AllocMB > w.memoryWarnMB && w.memoryWarnMB > 0 {
		w.logger.Warn().
			Int64("current_mb", usage.AllocMB).
			Int64("warn_mb", w.memoryWarnMB).
			Int64("limit_mb", w.cfg.MaxMemoryMB).
			Msg("Memory usage approaching limit")
	}

	if exceeded, reason := w.exceededLimit(usage); exceeded {
		w.logger.Error().
			Str("reason", reason).
			Int64("alloc_mb", usage.AllocMB).
			Int("goroutines", usage.Goroutines).
			Float64("system_mem_percent", usage.SystemMemUsedPercent).
			Float64("cpu_percent", usage.CPUUsagePercent).
			Msg("Resource limits exceeded, triggering graceful shutdown")
		w.triggerShutdown()
		return
	}

	w.logger.Debug().
		Int64("alloc_mb", usage.AllocMB).
		Int64("sys_mb", usage.SysMB).
		Int("goroutines", usage.Goroutines).
		Int64("gc_count", usage.GCCount).
		Float64("system_mem_percent", usage.SystemMemUsedPercent).
		Float64("cpu_percent", usage.CPUUsagePercent).
		Msg("Current resource usage")
}

// exceededLimit evaluates each configured hard limit against the snapshot.
func (w *Watchdog) exceededLimit(usage ResourceUsage) (bool, string) {
	if w.cfg.MaxMemoryMB > 0 && usage.AllocMB > w.cfg.MaxMemoryMB {
		return true, fmt.Sprintf("application memory %dMB exceeds limit %dMB", usage.AllocMB, w.cfg.MaxMemoryMB)
	}
	if w.cfg.MaxGoroutines > 0 && usage.Goroutines > w.cfg.MaxGoroutines {
		return true, fmt.Sprintf("goroutine count %d exceeds limit %d", usage.Goroutines, w.cfg.MaxGoroutines)
	}
	if w.cfg.SystemMemThreshold > 0 && usage.SystemMemUsedPercent/100.0 > w.cfg.SystemMemThreshold {
		return true, fmt.Sprintf("system memory usage %.1f%% exceeds threshold %.0f%%", usage.SystemMemUsedPercent, w.cfg.SystemMemThreshold*100)
	}
	if w.cfg.CPUThreshold > 0 && usage.CPUUsagePercent/100.0 > w.cfg.CPUThreshold {
		return true, fmt.Sprintf("CPU usage %.1f%% exceeds threshold %.0f%%", usage.CPUUsagePercent, w.cfg.CPUThreshold*100)
	}
	return false, ""
}

func (w *Watchdog) triggerShutdown() {
	w.mu.RLock()
	callback := w.shutdownCallback
	w.mu.RUnlock()

	if callback != nil {
		callback()
	} else {
		w.logger.Warn().Msg("No shutdown callback set, cannot trigger graceful shutdown")
	}
}
