package transfer

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aleister1102/alistmover/internal/config"
	"github.com/aleister1102/alistmover/internal/errorwrapper"
	"github.com/aleister1102/alistmover/internal/models"
	"github.com/aleister1102/alistmover/internal/notifier"

	"github.com/rs/zerolog"
)

// DirectoryClient is the subset of the alist client the transfer engine needs.
type DirectoryClient interface {
	ListDirectory(ctx context.Context, dirPath string) ([]models.RemoteEntry, error)
	CopyEntry(ctx context.Context, srcDir, dstDir, name string) error
	DeleteEntry(ctx context.Context, dir, name string) error
}

// Engine moves one stable file from the source directory to the destination:
// request the copy, poll the destination until the entry appears (copies are
// asynchronous server-side), verify the size matches, then optionally delete
// the source. A failed delete never demotes a completed copy.
type Engine struct {
	client        DirectoryClient
	cfg           config.MonitorConfig
	notifications *notifier.NotificationHelper
	logger        zerolog.Logger

	waitAttempts int
	waitInterval time.Duration
}

// NewEngine creates a transfer engine bound to one source/destination pair.
func NewEngine(client DirectoryClient, cfg config.MonitorConfig, notifications *notifier.NotificationHelper, logger zerolog.Logger) *Engine {
	waitAttempts := cfg.CopyWaitAttempts
	if waitAttempts < 1 {
		waitAttempts = 1
	}
	waitSeconds := cfg.CopyWaitSeconds
	if waitSeconds < 1 {
		waitSeconds = 1
	}

	return &Engine{
		client:        client,
		cfg:           cfg,
		notifications: notifications,
		logger:        logger.With().Str("component", "TransferEngine").Logger(),
		waitAttempts:  waitAttempts,
		waitInterval:  time.Duration(waitSeconds) * time.Second,
	}
}

// Transfer executes the copy-verify-delete sequence for a single entry and
// reports the terminal result. The caller records the result in the ledger
// and emits success/error notifications.
func (e *Engine) Transfer(ctx context.Context, entry models.RemoteEntry) models.TransferResult {
	result := models.TransferResult{
		SourcePath: entry.Path,
		DestPath:   path.Join(e.cfg.DestPath, entry.Name),
		Size:       entry.Size,
	}

	e.logger.Info().Str("name", entry.Name).Int64("size", entry.Size).Msg("Starting transfer")
	e.notify(ctx, models.NotificationEvent{
		Kind:      models.EventCopy,
		Path:      entry.Path,
		Size:      entry.Size,
		Timestamp: time.Now(),
	})

	if err := e.client.CopyEntry(ctx, e.cfg.SourcePath, e.cfg.DestPath, entry.Name); err != nil {
		result.Outcome = models.TransferFailed
		result.Reason = models.FailureCopyRequest
		result.Detail = fmt.Sprintf("copy request failed: %v", err)
		result.Err = err
		return result
	}

	destSize, err := e.waitForDestination(ctx, entry.Name)
	if err != nil {
		result.Outcome = models.TransferFailed
		result.Reason = models.FailureCopyTimeout
		result.Detail = fmt.Sprintf("file did not appear at destination: %v", err)
		result.Err = err
		return result
	}

	if destSize != entry.Size {
		err := errorwrapper.WrapError(errorwrapper.ErrIntegrityMismatch,
			fmt.Sprintf("source %d bytes, destination %d bytes", entry.Size, destSize))
		result.Outcome = models.TransferFailed
		result.Reason = models.FailureIntegrityMismatch
		result.Detail = fmt.Sprintf("size mismatch after copy: source=%d dest=%d", entry.Size, destSize)
		result.Err = err
		return result
	}

	result.Outcome = models.TransferSuccess
	e.logger.Info().Str("name", entry.Name).Str("dest", result.DestPath).Msg("Copy verified at destination")

	if e.cfg.DeleteSource {
		if err := e.deleteSource(ctx, entry.Name); err != nil {
			result.DeleteFailed = true
			result.Detail = fmt.Sprintf("source delete failed: %v", err)
			e.logger.Warn().Err(err).Str("name", entry.Name).Msg("Source delete failed after successful copy")
			e.notify(ctx, models.NotificationEvent{
				Kind:      models.EventWarning,
				Path:      entry.Path,
				Size:      entry.Size,
				Timestamp: time.Now(),
				Detail:    result.Detail,
			})
		} else {
			e.notify(ctx, models.NotificationEvent{
				Kind:      models.EventDelete,
				Path:      entry.Path,
				Size:      entry.Size,
				Timestamp: time.Now(),
			})
		}
	}

	return result
}

// waitForDestination polls the destination listing until the named entry
// appears, returning its reported size. The first check runs immediately.
func (e *Engine) waitForDestination(ctx context.Context, name string) (int64, error) {
	for attempt := 1; attempt <= e.waitAttempts; attempt++ {
		entries, err := e.client.ListDirectory(ctx, e.cfg.DestPath)
		if err != nil {
			e.logger.Warn().Err(err).Int("attempt", attempt).Msg("Destination listing failed while waiting for copy")
		} else {
			for _, entry := range entries {
				if entry.Name == name && !entry.IsDirectory {
					return entry.Size, nil
				}
			}
		}

		if attempt == e.waitAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(e.waitInterval):
		}
	}

	return 0, errorwrapper.WrapError(errorwrapper.ErrTimeout,
		fmt.Sprintf("%q not found at destination after %d checks", name, e.waitAttempts))
}

// deleteSource removes the entry from the source directory and verifies it is
// gone from a fresh listing.
func (e *Engine) deleteSource(ctx context.Context, name string) error {
	if err := e.client.DeleteEntry(ctx, e.cfg.SourcePath, name); err != nil {
		return err
	}

	entries, err := e.client.ListDirectory(ctx, e.cfg.SourcePath)
	if err != nil {
		// The delete request was accepted; an unverifiable listing is not
		// treated as a delete failure.
		e.logger.Warn().Err(err).Str("name", name).Msg("Could not verify source deletion")
		return nil
	}
	for _, entry := range entries {
		if entry.Name == name {
			return fmt.Errorf("%q still present in source after delete", name)
		}
	}

	e.logger.Info().Str("name", name).Msg("Source entry deleted")
	return nil
}

func (e *Engine) notify(ctx context.Context, event models.NotificationEvent) {
	if e.notifications != nil {
		e.notifications.Dispatch(ctx, event)
	}
}
