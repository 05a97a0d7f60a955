package config

// NotificationConfig defines configuration for Discord webhook notifications
type NotificationConfig struct {
	DiscordWebhookURL string   `json:"discord_webhook,omitempty" yaml:"discord_webhook,omitempty" validate:"omitempty,url"`
	MentionRoleIDs    []string `json:"mention_role_ids,omitempty" yaml:"mention_role_ids,omitempty"`
	NotifyOnCopy      bool     `json:"notify_on_copy" yaml:"notify_on_copy"`
	NotifyOnDelete    bool     `json:"notify_on_delete" yaml:"notify_on_delete"`
	NotifyOnError     bool     `json:"notify_on_error" yaml:"notify_on_error"`
	NotifyOnWaiting   bool     `json:"notify_on_waiting" yaml:"notify_on_waiting"`

	RetryAttempts     int `json:"retry_attempts,omitempty" yaml:"retry_attempts,omitempty" validate:"omitempty,min=0"`
	RetryDelaySeconds int `json:"retry_delay_seconds,omitempty" yaml:"retry_delay_seconds,omitempty" validate:"omitempty,min=1"`
	TimeoutSeconds    int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		DiscordWebhookURL: "",
		MentionRoleIDs:    []string{},
		NotifyOnCopy:      true,
		NotifyOnDelete:    true,
		NotifyOnError:     true,
		NotifyOnWaiting:   false,
		RetryAttempts:     2,
		RetryDelaySeconds: 5,
		TimeoutSeconds:    20,
	}
}
