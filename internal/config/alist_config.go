package config

// AlistConfig defines how to reach and authenticate against the alist server
type AlistConfig struct {
	URL      string `json:"url" yaml:"url" validate:"required,url"`
	Token    string `json:"token,omitempty" yaml:"token,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	HTTPTimeoutSeconds int  `json:"http_timeout_seconds,omitempty" yaml:"http_timeout_seconds,omitempty" validate:"omitempty,min=1"`
	InsecureSkipVerify bool `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`

	MaxRetries       int `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"omitempty,min=0"`
	RetryBaseDelayMs int `json:"retry_base_delay_ms,omitempty" yaml:"retry_base_delay_ms,omitempty" validate:"omitempty,min=1"`
	RetryMaxDelayMs  int `json:"retry_max_delay_ms,omitempty" yaml:"retry_max_delay_ms,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultAlistConfig creates default alist client configuration
func NewDefaultAlistConfig() AlistConfig {
	return AlistConfig{
		URL:                "",
		HTTPTimeoutSeconds: 30,
		InsecureSkipVerify: false,
		MaxRetries:         3,
		RetryBaseDelayMs:   1000,
		RetryMaxDelayMs:    15000,
	}
}

// HasCredentials reports whether either a static token or a username/password
// pair is configured.
func (c AlistConfig) HasCredentials() bool {
	return c.Token != "" || (c.Username != "" && c.Password != "")
}
