package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/aleister1102/alistmover/internal/config"
	"github.com/aleister1102/alistmover/internal/detector"
	"github.com/aleister1102/alistmover/internal/errorwrapper"
	"github.com/aleister1102/alistmover/internal/ledger"
	"github.com/aleister1102/alistmover/internal/models"
	"github.com/aleister1102/alistmover/internal/notifier"

	"github.com/rs/zerolog"
)

// RemoteLister lists entries of a remote directory.
type RemoteLister interface {
	ListDirectory(ctx context.Context, dirPath string) ([]models.RemoteEntry, error)
}

// FileTransferrer moves one stable entry from source to destination.
type FileTransferrer interface {
	Transfer(ctx context.Context, entry models.RemoteEntry) models.TransferResult
}

// TransferLedger is the durable processed-file record the loop consults
// before transferring and appends to afterwards.
type TransferLedger interface {
	Has(identity string) bool
	Record(rec models.LedgerRecord) error
}

// MonitoringService runs the polling loop: list the source directory,
// classify each file, transfer the stable unprocessed ones, and report every
// transition. Cycles are strictly sequential; a new cycle never starts while
// a transfer is in flight.
type MonitoringService struct {
	cfg           config.MonitorConfig
	lister        RemoteLister
	engine        FileTransferrer
	ledgerStore   TransferLedger
	detector      *detector.Detector
	tracker       *CycleTracker
	notifications *notifier.NotificationHelper
	logger        zerolog.Logger

	interval time.Duration
}

// NewMonitoringService creates a new instance of MonitoringService.
func NewMonitoringService(
	cfg config.MonitorConfig,
	lister RemoteLister,
	engine FileTransferrer,
	ledgerStore TransferLedger,
	notifications *notifier.NotificationHelper,
	baseLogger zerolog.Logger,
) *MonitoringService {
	instanceLogger := baseLogger.With().Str("component", "MonitoringService").Logger()

	intervalSeconds := cfg.CheckIntervalSeconds
	if intervalSeconds < 1 {
		intervalSeconds = 60
	}

	return &MonitoringService{
		cfg:           cfg,
		lister:        lister,
		engine:        engine,
		ledgerStore:   ledgerStore,
		detector:      detector.NewDetector(cfg.StablePolls, instanceLogger),
		tracker:       NewCycleTracker(cfg.MaxCycles),
		notifications: notifications,
		logger:        instanceLogger,
		interval:      time.Duration(intervalSeconds) * time.Second,
	}
}

// Run executes polling cycles until the context is cancelled or the
// configured cycle limit is reached. It always sends the stopped
// notification with the final counters before returning.
func (s *MonitoringService) Run(ctx context.Context) error {
	s.logger.Info().
		Str("source", s.cfg.SourcePath).
		Str("dest", s.cfg.DestPath).
		Dur("interval", s.interval).
		Bool("delete_source", s.cfg.DeleteSource).
		Msg("Starting monitoring loop")

	s.notify(ctx, models.NotificationEvent{
		Kind:      models.EventStartup,
		Timestamp: time.Now(),
		Detail: fmt.Sprintf("**Source:** `%s`\n**Destination:** `%s`\n**Interval:** %s\n**Delete source:** %t",
			s.cfg.SourcePath, s.cfg.DestPath, s.interval, s.cfg.DeleteSource),
	})

	defer func() {
		stats := s.tracker.Stats()
		s.logger.Info().
			Int("cycles", stats.Cycles).
			Int("files_copied", stats.FilesCopied).
			Int("files_deleted", stats.FilesDeleted).
			Int("errors", stats.Errors).
			Msg("Monitoring loop stopped")

		// Shutdown notification uses a fresh context: the loop context is
		// already cancelled by the time we get here.
		notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.notify(notifyCtx, models.NotificationEvent{
			Kind:      models.EventStopped,
			Timestamp: time.Now(),
			Stats:     &stats,
		})
	}()

	for s.tracker.ShouldContinue() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := s.runCycle(ctx); err != nil {
			return err
		}

		if !s.tracker.ShouldContinue() {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.interval):
		}
	}

	return nil
}

// runCycle performs one list-classify-transfer pass. A transient listing
// failure aborts only this cycle; tracked state and the ledger survive for
// the next. An authentication failure is returned to stop the loop: the
// client has already spent its one re-login by the time the error surfaces
// here, so the credentials are gone for good.
func (s *MonitoringService) runCycle(ctx context.Context) error {
	cycle := s.tracker.StartCycle()
	cycleLogger := s.logger.With().Int("cycle", cycle).Logger()

	entries, err := s.lister.ListDirectory(ctx, s.cfg.SourcePath)
	if err != nil {
		cycleLogger.Error().Err(err).Str("path", s.cfg.SourcePath).Msg("Source listing failed, skipping cycle")
		s.tracker.RecordError()
		s.notify(ctx, models.NotificationEvent{
			Kind:      models.EventError,
			Path:      s.cfg.SourcePath,
			Timestamp: time.Now(),
			Detail:    fmt.Sprintf("source listing failed: %v", err),
		})
		if errorwrapper.IsAuthError(err) {
			cycleLogger.Error().Msg("Credentials no longer accepted, stopping monitor")
			return errorwrapper.WrapError(err, "source listing unauthorized")
		}
		return nil
	}

	s.detector.BeginCycle()
	present := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if entry.IsDirectory {
			continue
		}
		present[entry.Path] = struct{}{}

		if ctx.Err() != nil {
			return nil
		}

		switch s.detector.Observe(entry) {
		case detector.Stable:
			s.handleStable(ctx, cycleLogger, entry)
		case detector.Growing:
			cycleLogger.Debug().Str("path", entry.Path).Int64("size", entry.Size).Msg("File still growing or unconfirmed")
			s.notify(ctx, models.NotificationEvent{
				Kind:      models.EventWaiting,
				Path:      entry.Path,
				Size:      entry.Size,
				Timestamp: time.Now(),
			})
		}
	}

	for _, vanished := range s.detector.SweepMissing(present) {
		cycleLogger.Warn().Str("path", vanished).Msg("Tracked file vanished from source before transfer")
		s.notify(ctx, models.NotificationEvent{
			Kind:      models.EventWarning,
			Path:      vanished,
			Timestamp: time.Now(),
			Detail:    "file disappeared from source before it could be transferred",
		})
	}

	cycleLogger.Debug().Int("entries", len(entries)).Int("tracked", s.detector.TrackedCount()).Msg("Cycle complete")
	return nil
}

// handleStable transfers one stable entry unless the ledger already holds a
// success for its identity.
func (s *MonitoringService) handleStable(ctx context.Context, cycleLogger zerolog.Logger, entry models.RemoteEntry) {
	identity := ledger.ComputeIdentity(entry.Path, entry.Size)
	if s.ledgerStore.Has(identity) {
		cycleLogger.Debug().Str("path", entry.Path).Str("identity", identity).Msg("Already transferred, skipping")
		s.detector.Forget(entry.Path)
		return
	}

	result := s.engine.Transfer(ctx, entry)

	if err := s.ledgerStore.Record(models.LedgerRecord{
		Identity:      identity,
		SourcePath:    result.SourcePath,
		DestPath:      result.DestPath,
		Size:          result.Size,
		Outcome:       result.Outcome,
		Detail:        result.Detail,
		TransferredAt: time.Now(),
	}); err != nil {
		cycleLogger.Error().Err(err).Str("path", entry.Path).Msg("Failed to record transfer outcome")
	}

	if result.Succeeded() {
		s.detector.Forget(entry.Path)
		s.tracker.RecordCopy(s.cfg.DeleteSource && !result.DeleteFailed)
		s.notify(ctx, models.NotificationEvent{
			Kind:      models.EventSuccess,
			Path:      entry.Path,
			Size:      entry.Size,
			Timestamp: time.Now(),
			Detail:    result.Detail,
		})
		return
	}

	cycleLogger.Error().Err(result.Err).Str("path", entry.Path).Str("reason", string(result.Reason)).Msg("Transfer failed")
	s.tracker.RecordError()

	// A failed entry must re-prove stability before the next attempt.
	s.detector.Forget(entry.Path)

	s.notify(ctx, models.NotificationEvent{
		Kind:      models.EventError,
		Path:      entry.Path,
		Size:      entry.Size,
		Timestamp: time.Now(),
		Detail:    result.Detail,
	})
}

// Stats returns the run counters accumulated so far.
func (s *MonitoringService) Stats() models.MonitorStats {
	return s.tracker.Stats()
}

func (s *MonitoringService) notify(ctx context.Context, event models.NotificationEvent) {
	if s.notifications != nil {
		s.notifications.Dispatch(ctx, event)
	}
}
