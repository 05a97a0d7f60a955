package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aleister1102/alistmover/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Ledger is the durable record of entries already transferred. It is
// consulted before and updated after every transfer so re-polling never
// causes duplicate transfers across restarts.
type Ledger struct {
	db     *sql.DB
	logger zerolog.Logger

	mu    sync.RWMutex
	cache map[string]struct{} // identities with a success row, rebuilt at startup
}

// NewLedger opens (creating if necessary) the ledger database, ensures the
// schema, and rebuilds the in-memory cache from it.
func NewLedger(dataSourceName string, logger zerolog.Logger) (*Ledger, error) {
	ledgerLogger := logger.With().Str("component", "ProcessedFileLedger").Logger()
	ledgerLogger.Info().Str("db_path", dataSourceName).Msg("Initializing ledger database")

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}

	l := &Ledger{
		db:     dbInstance,
		logger: ledgerLogger,
		cache:  make(map[string]struct{}),
	}

	if err := l.initSchema(); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}
	if err := l.loadCache(); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to load ledger cache: %w", err)
	}

	ledgerLogger.Info().Int("known_identities", len(l.cache)).Msg("Ledger initialized")
	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// initSchema creates the transfer_history table if it doesn't already exist.
func (l *Ledger) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS transfer_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		identity TEXT NOT NULL UNIQUE,
		source_path TEXT NOT NULL,
		dest_path TEXT,
		size INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		detail TEXT,
		transferred_at DATETIME NOT NULL
	);
	`
	_, err := l.db.Exec(query)
	if err != nil {
		l.logger.Error().Err(err).Msg("Failed to initialize ledger schema")
		return err
	}
	return nil
}

// loadCache rebuilds the in-memory identity set from successful transfers.
func (l *Ledger) loadCache() error {
	rows, err := l.db.Query(`SELECT identity FROM transfer_history WHERE outcome = ?`, string(models.TransferSuccess))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var identity string
		if err := rows.Scan(&identity); err != nil {
			return err
		}
		l.cache[identity] = struct{}{}
	}
	return rows.Err()
}

// Has reports whether identity has already been transferred successfully.
func (l *Ledger) Has(identity string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.cache[identity]
	return ok
}

// Record persists the outcome for identity. The upsert keeps one row per
// identity: a later success replaces an earlier failed attempt, but a
// recorded success is never overwritten.
func (l *Ledger) Record(rec models.LedgerRecord) error {
	query := `INSERT INTO transfer_history
		(identity, source_path, dest_path, size, outcome, detail, transferred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			dest_path = excluded.dest_path,
			outcome = excluded.outcome,
			detail = excluded.detail,
			transferred_at = excluded.transferred_at
		WHERE transfer_history.outcome != 'SUCCESS'`

	_, err := l.db.Exec(query,
		rec.Identity,
		rec.SourcePath,
		rec.DestPath,
		rec.Size,
		string(rec.Outcome),
		sql.NullString{String: rec.Detail, Valid: rec.Detail != ""},
		rec.TransferredAt,
	)
	if err != nil {
		l.logger.Error().Err(err).Str("identity", rec.Identity).Msg("Failed to record transfer in ledger")
		return fmt.Errorf("failed to insert ledger record for %s: %w", rec.Identity, err)
	}

	if rec.Outcome == models.TransferSuccess {
		l.mu.Lock()
		l.cache[rec.Identity] = struct{}{}
		l.mu.Unlock()
	}

	l.logger.Info().
		Str("identity", rec.Identity).
		Str("source_path", rec.SourcePath).
		Str("outcome", string(rec.Outcome)).
		Msg("Recorded transfer in ledger")
	return nil
}

// Count returns the number of successfully transferred identities known.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}
