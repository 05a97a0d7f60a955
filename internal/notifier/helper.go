package notifier

import (
	"context"
	"time"

	"github.com/aleister1102/alistmover/internal/config"
	"github.com/aleister1102/alistmover/internal/models"

	"github.com/rs/zerolog"
)

// NotificationHelper provides a high-level interface for sending monitor
// lifecycle notifications. Delivery failures are logged and swallowed so
// the monitor loop never stalls on the notification sink.
type NotificationHelper struct {
	discordNotifier *DiscordNotifier
	cfg             config.NotificationConfig
	logger          zerolog.Logger
	sendTimeout     time.Duration
}

// NewNotificationHelper creates a new NotificationHelper.
func NewNotificationHelper(dn *DiscordNotifier, cfg config.NotificationConfig, logger zerolog.Logger) *NotificationHelper {
	timeoutSeconds := cfg.TimeoutSeconds
	if timeoutSeconds < 1 {
		timeoutSeconds = 20
	}

	return &NotificationHelper{
		discordNotifier: dn,
		cfg:             cfg,
		logger:          logger.With().Str("module", "NotificationHelper").Logger(),
		sendTimeout:     time.Duration(timeoutSeconds) * time.Second,
	}
}

// Dispatch sends a notification for the given event if the event kind is
// enabled by configuration. It never returns an error to the caller.
func (nh *NotificationHelper) Dispatch(ctx context.Context, event models.NotificationEvent) {
	if !nh.canSend() || !nh.shouldNotify(event.Kind) {
		return
	}

	// Bound every send so a slow webhook cannot stall the monitor loop.
	sendCtx, cancel := context.WithTimeout(ctx, nh.sendTimeout)
	defer cancel()

	payload := FormatEventMessage(event, nh.cfg)
	if err := nh.discordNotifier.SendNotification(sendCtx, nh.cfg.DiscordWebhookURL, payload); err != nil {
		nh.logger.Error().Err(err).Str("event_kind", string(event.Kind)).Str("path", event.Path).Msg("Failed to send notification")
	}
}

// canSend checks whether the notification sink is usable at all.
func (nh *NotificationHelper) canSend() bool {
	return nh.discordNotifier != nil && nh.cfg.DiscordWebhookURL != ""
}

// shouldNotify applies the per-kind configuration gates. Lifecycle events
// (startup, stopped, success, warning) are always reported when a webhook
// is configured.
func (nh *NotificationHelper) shouldNotify(kind models.EventKind) bool {
	switch kind {
	case models.EventCopy:
		return nh.cfg.NotifyOnCopy
	case models.EventDelete:
		return nh.cfg.NotifyOnDelete
	case models.EventError:
		return nh.cfg.NotifyOnError
	case models.EventWaiting:
		return nh.cfg.NotifyOnWaiting
	default:
		return true
	}
}
