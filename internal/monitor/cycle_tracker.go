package monitor

import (
	"sync"

	"github.com/aleister1102/alistmover/internal/models"
)

// CycleTracker counts polling cycles and transfer outcomes across a run.
type CycleTracker struct {
	mutex        sync.RWMutex
	maxCycles    int
	currentCycle int

	filesCopied  int
	filesDeleted int
	errors       int
}

// NewCycleTracker creates a new CycleTracker. maxCycles of 0 means run
// indefinitely.
func NewCycleTracker(maxCycles int) *CycleTracker {
	return &CycleTracker{
		maxCycles: maxCycles,
	}
}

// StartCycle begins a new cycle and increments the cycle counter.
func (ct *CycleTracker) StartCycle() int {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	ct.currentCycle++
	return ct.currentCycle
}

// ShouldContinue returns false once the maximum number of cycles is reached.
func (ct *CycleTracker) ShouldContinue() bool {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()

	if ct.maxCycles == 0 {
		return true
	}
	return ct.currentCycle < ct.maxCycles
}

// RecordCopy counts a verified copy, and the source delete when it happened.
func (ct *CycleTracker) RecordCopy(sourceDeleted bool) {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	ct.filesCopied++
	if sourceDeleted {
		ct.filesDeleted++
	}
}

// RecordError counts one failed operation.
func (ct *CycleTracker) RecordError() {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	ct.errors++
}

// Stats returns a snapshot of the run counters.
func (ct *CycleTracker) Stats() models.MonitorStats {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()

	return models.MonitorStats{
		Cycles:       ct.currentCycle,
		FilesCopied:  ct.filesCopied,
		FilesDeleted: ct.filesDeleted,
		Errors:       ct.errors,
	}
}
