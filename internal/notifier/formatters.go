package notifier

import (
	"fmt"
	"time"

	"github.com/aleister1102/alistmover/internal/config"
	"github.com/aleister1102/alistmover/internal/models"
)

// FormatEventMessage builds the Discord payload for a single monitor event.
func FormatEventMessage(event models.NotificationEvent, cfg config.NotificationConfig) models.DiscordMessagePayload {
	switch event.Kind {
	case models.EventStartup:
		return formatStartupMessage(event, cfg)
	case models.EventStopped:
		return formatStoppedMessage(event, cfg)
	case models.EventError:
		return formatErrorMessage(event, cfg)
	default:
		return formatFileEventMessage(event, cfg)
	}
}

// eventPresentation maps an event kind to its title and embed color.
func eventPresentation(kind models.EventKind) (string, int) {
	switch kind {
	case models.EventCopy:
		return "📋 Copy Started", InfoEmbedColor
	case models.EventDelete:
		return "🗑️ Source Deleted", MonitorEmbedColor
	case models.EventWaiting:
		return "⏳ Waiting for Download", WarningEmbedColor
	case models.EventSuccess:
		return "✅ Transfer Complete", SuccessEmbedColor
	case models.EventWarning:
		return "⚠️ Warning", WarningEmbedColor
	default:
		return "ℹ️ Monitor Event", DefaultEmbedColor
	}
}

// formatFileEventMessage formats copy, delete, waiting, success, and warning events.
func formatFileEventMessage(event models.NotificationEvent, cfg config.NotificationConfig) models.DiscordMessagePayload {
	title, color := eventPresentation(event.Kind)

	embedBuilder := NewDiscordEmbedBuilder().
		WithTitle(title).
		WithColor(color).
		WithTimestamp(eventTimestamp(event)).
		WithFooter(footerText, "")

	if event.Path != "" {
		embedBuilder.AddField("📁 File", fmt.Sprintf("`%s`", event.Path), false)
	}
	if event.Size > 0 {
		embedBuilder.AddField("📦 Size", formatBytes(event.Size), true)
	}
	if event.Detail != "" {
		embedBuilder.AddField("📝 Detail", truncateString(event.Detail, MaxDetailLength), false)
	}

	return buildStandardPayload(embedBuilder.Build())
}

// formatStartupMessage formats the monitoring-started announcement.
func formatStartupMessage(event models.NotificationEvent, cfg config.NotificationConfig) models.DiscordMessagePayload {
	embed := NewDiscordEmbedBuilder().
		WithTitle("🚀 Monitoring Started").
		WithDescription(event.Detail).
		WithColor(MonitorEmbedColor).
		WithTimestamp(eventTimestamp(event)).
		WithFooter(footerText, "").
		Build()

	return buildStandardPayload(embed)
}

// formatStoppedMessage formats the shutdown summary with run counters.
func formatStoppedMessage(event models.NotificationEvent, cfg config.NotificationConfig) models.DiscordMessagePayload {
	embedBuilder := NewDiscordEmbedBuilder().
		WithTitle("🛑 Monitoring Stopped").
		WithColor(StoppedEmbedColor).
		WithTimestamp(eventTimestamp(event)).
		WithFooter(footerText, "")

	if event.Detail != "" {
		embedBuilder.WithDescription(event.Detail)
	}
	if event.Stats != nil {
		embedBuilder.AddField("🔄 Cycles", fmt.Sprintf("%d", event.Stats.Cycles), true)
		embedBuilder.AddField("📋 Copied", fmt.Sprintf("%d", event.Stats.FilesCopied), true)
		embedBuilder.AddField("🗑️ Deleted", fmt.Sprintf("%d", event.Stats.FilesDeleted), true)
		embedBuilder.AddField("❌ Errors", fmt.Sprintf("%d", event.Stats.Errors), true)
	}

	return buildStandardPayload(embedBuilder.Build())
}

// formatErrorMessage formats error events, mentioning configured roles.
func formatErrorMessage(event models.NotificationEvent, cfg config.NotificationConfig) models.DiscordMessagePayload {
	embedBuilder := NewDiscordEmbedBuilder().
		WithTitle("❌ Error").
		WithColor(ErrorEmbedColor).
		WithTimestamp(eventTimestamp(event)).
		WithFooter(footerText, "")

	if event.Path != "" {
		embedBuilder.AddField("📁 File", fmt.Sprintf("`%s`", event.Path), false)
	}
	if event.Detail != "" {
		embedBuilder.AddField("📝 Detail", truncateString(event.Detail, MaxDetailLength), false)
	}

	content := buildMentions(cfg.MentionRoleIDs)
	return buildStandardPayloadWithMentions(embedBuilder.Build(), cfg, content)
}

func eventTimestamp(event models.NotificationEvent) time.Time {
	if event.Timestamp.IsZero() {
		return time.Now()
	}
	return event.Timestamp
}

// buildStandardPayload wraps an embed into the standard message payload.
func buildStandardPayload(embed models.DiscordEmbed) models.DiscordMessagePayload {
	return NewDiscordMessagePayloadBuilder().
		WithUsername(DiscordUsername).
		AddEmbed(embed).
		Build()
}

// buildStandardPayloadWithMentions wraps an embed and prepends role mentions.
func buildStandardPayloadWithMentions(embed models.DiscordEmbed, cfg config.NotificationConfig, content string) models.DiscordMessagePayload {
	builder := NewDiscordMessagePayloadBuilder().
		WithUsername(DiscordUsername).
		AddEmbed(embed)

	if content != "" {
		builder.WithContent(content).
			WithAllowedMentions(models.AllowedMentions{Roles: cfg.MentionRoleIDs})
	}

	return builder.Build()
}
