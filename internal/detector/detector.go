package detector

import (
	"time"

	"github.com/aleister1102/alistmover/internal/models"
	"github.com/rs/zerolog"
)

// Classification is the verdict for one observed path in one cycle.
type Classification string

const (
	// Growing means there is not yet enough evidence the file stopped
	// changing; it is skipped this cycle and re-evaluated on the next.
	Growing Classification = "GROWING"
	// Stable means the size held across enough consecutive cycles and the
	// entry is safe to transfer.
	Stable Classification = "STABLE"
)

// observation is one per-cycle snapshot of an entry's size.
type observation struct {
	size   int64
	cycle  uint64
	seenAt time.Time
}

// pathHistory is the rolling per-path memory the detector keeps between
// cycles. Purely in-memory: losing it after a restart only delays detection.
type pathHistory struct {
	observations []observation
	missedPolls  int
}

// Detector decides whether a remote entry has finished being written by
// requiring its size to stay identical across consecutive poll cycles.
type Detector struct {
	stablePolls int
	logger      zerolog.Logger

	cycle     uint64
	histories map[string]*pathHistory
}

// NewDetector creates a detector requiring stablePolls consecutive
// equal-size observations (clamped to a minimum of 2: a single observation
// can never prove stability).
func NewDetector(stablePolls int, logger zerolog.Logger) *Detector {
	if stablePolls < 2 {
		stablePolls = 2
	}
	return &Detector{
		stablePolls: stablePolls,
		logger:      logger.With().Str("component", "CompletenessDetector").Logger(),
		histories:   make(map[string]*pathHistory),
	}
}

// BeginCycle advances the detector to a new poll cycle. Observations within
// one cycle never count twice toward stability.
func (d *Detector) BeginCycle() {
	d.cycle++
}

// Observe records a snapshot of entry for the current cycle and classifies
// it. Entries with size zero are never stable.
func (d *Detector) Observe(entry models.RemoteEntry) Classification {
	h, exists := d.histories[entry.Path]
	if !exists {
		h = &pathHistory{}
		d.histories[entry.Path] = h
		d.logger.Debug().Str("path", entry.Path).Int64("size", entry.Size).Msg("Tracking new entry")
	}
	h.missedPolls = 0

	// At most one observation per cycle counts
	if n := len(h.observations); n > 0 && h.observations[n-1].cycle == d.cycle {
		h.observations[n-1].size = entry.Size
		h.observations[n-1].seenAt = time.Now()
	} else {
		h.observations = append(h.observations, observation{
			size:   entry.Size,
			cycle:  d.cycle,
			seenAt: time.Now(),
		})
		if len(h.observations) > d.stablePolls {
			h.observations = h.observations[len(h.observations)-d.stablePolls:]
		}
	}

	return d.classify(entry.Path, h)
}

// classify applies the size-equality rule over the rolling window.
func (d *Detector) classify(path string, h *pathHistory) Classification {
	if len(h.observations) < d.stablePolls {
		return Growing
	}

	size := h.observations[0].size
	if size <= 0 {
		return Growing
	}
	for _, obs := range h.observations[1:] {
		if obs.size != size {
			return Growing
		}
	}

	d.logger.Debug().Str("path", path).Int64("size", size).Int("samples", len(h.observations)).Msg("Entry classified stable")
	return Stable
}

// SweepMissing reconciles tracked paths against the set present in the
// latest listing. A path missing from two consecutive listings is treated as
// externally deleted: its history is dropped and it is reported vanished.
func (d *Detector) SweepMissing(present map[string]struct{}) []string {
	var vanished []string
	for path, h := range d.histories {
		if _, ok := present[path]; ok {
			continue
		}
		h.missedPolls++
		if h.missedPolls >= 2 {
			delete(d.histories, path)
			vanished = append(vanished, path)
			d.logger.Info().Str("path", path).Msg("Tracked entry vanished from listing, discarding history")
		}
	}
	return vanished
}

// Forget drops the history for a path, called after a successful transfer.
func (d *Detector) Forget(path string) {
	delete(d.histories, path)
}

// TrackedCount returns the number of paths with live histories.
func (d *Detector) TrackedCount() int {
	return len(d.histories)
}
