package models

import "time"

// EventKind classifies lifecycle events emitted by the monitor loop.
type EventKind string

const (
	EventStartup EventKind = "startup"
	EventCopy    EventKind = "copy"
	EventDelete  EventKind = "delete"
	EventWaiting EventKind = "waiting"
	EventSuccess EventKind = "success"
	EventError   EventKind = "error"
	EventWarning EventKind = "warning"
	EventStopped EventKind = "stopped"
)

// NotificationEvent is one lifecycle transition reported to the notification
// sink. Delivery is best-effort and must never block the monitor loop.
type NotificationEvent struct {
	Kind      EventKind
	Path      string
	Size      int64
	Timestamp time.Time
	Detail    string

	// Stats is only populated for startup/stopped events.
	Stats *MonitorStats
}

// MonitorStats holds cumulative counters for a monitoring run.
type MonitorStats struct {
	Cycles       int
	FilesCopied  int
	FilesDeleted int
	Errors       int
}

// DiscordMessagePayload represents the JSON payload sent to a Discord webhook.
type DiscordMessagePayload struct {
	Content         string           `json:"content,omitempty"`
	Username        string           `json:"username,omitempty"`
	AvatarURL       string           `json:"avatar_url,omitempty"`
	Embeds          []DiscordEmbed   `json:"embeds,omitempty"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
}

// AllowedMentions specifies how mentions should be handled in a message.
type AllowedMentions struct {
	Parse []string `json:"parse,omitempty"`
	Roles []string `json:"roles,omitempty"`
	Users []string `json:"users,omitempty"`
}

// DiscordEmbed represents a Discord embed object.
type DiscordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	URL         string              `json:"url,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"` // ISO8601 timestamp
	Color       int                 `json:"color,omitempty"`
	Footer      *DiscordEmbedFooter `json:"footer,omitempty"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
}

// DiscordEmbedFooter represents the footer of an embed.
type DiscordEmbedFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

// DiscordEmbedField represents a field in an embed.
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}
