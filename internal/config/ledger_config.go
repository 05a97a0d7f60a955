package config

// LedgerConfig defines where the processed-file ledger is persisted
type LedgerConfig struct {
	DatabasePath string `json:"database_path,omitempty" yaml:"database_path,omitempty"`
}

// NewDefaultLedgerConfig creates default ledger configuration
func NewDefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		DatabasePath: "data/ledger.db",
	}
}
