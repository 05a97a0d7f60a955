package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/alistmover/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T, path string) *Ledger {
	t.Helper()
	l, err := NewLedger(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func successRecord(identity string) models.LedgerRecord {
	return models.LedgerRecord{
		Identity:      identity,
		SourcePath:    "/downloads/a.mp4",
		DestPath:      "/media/a.mp4",
		Size:          1000,
		Outcome:       models.TransferSuccess,
		TransferredAt: time.Now(),
	}
}

func TestComputeIdentity_Deterministic(t *testing.T) {
	a := ComputeIdentity("/downloads/a.mp4", 1000)
	b := ComputeIdentity("/downloads/a.mp4", 1000)
	assert.Equal(t, a, b)
	assert.Len(t, a, identityHashLength)

	// Different size or path yields a different identity
	assert.NotEqual(t, a, ComputeIdentity("/downloads/a.mp4", 1001))
	assert.NotEqual(t, a, ComputeIdentity("/downloads/b.mp4", 1000))
}

func TestLedger_HasAndRecord(t *testing.T) {
	l := newTestLedger(t, filepath.Join(t.TempDir(), "ledger.db"))

	identity := ComputeIdentity("/downloads/a.mp4", 1000)
	assert.False(t, l.Has(identity))

	require.NoError(t, l.Record(successRecord(identity)))
	assert.True(t, l.Has(identity))
	assert.Equal(t, 1, l.Count())
}

func TestLedger_SurvivesRestart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	identity := ComputeIdentity("/downloads/a.mp4", 1000)

	l := newTestLedger(t, dbPath)
	require.NoError(t, l.Record(successRecord(identity)))
	require.NoError(t, l.Close())

	// A fresh instance pointing at the same file rebuilds the cache
	reopened := newTestLedger(t, dbPath)
	assert.True(t, reopened.Has(identity))
	assert.Equal(t, 1, reopened.Count())
}

func TestLedger_DuplicateRecordIsIgnored(t *testing.T) {
	l := newTestLedger(t, filepath.Join(t.TempDir(), "ledger.db"))

	identity := ComputeIdentity("/downloads/a.mp4", 1000)
	require.NoError(t, l.Record(successRecord(identity)))
	require.NoError(t, l.Record(successRecord(identity)))

	assert.Equal(t, 1, l.Count())
}

func TestLedger_DeleteFailedAnnotationKeptOnSuccess(t *testing.T) {
	l := newTestLedger(t, filepath.Join(t.TempDir(), "ledger.db"))

	rec := successRecord(ComputeIdentity("/downloads/a.mp4", 1000))
	rec.Detail = "source delete failed: storage error"
	require.NoError(t, l.Record(rec))

	assert.True(t, l.Has(rec.Identity))
}

func TestLedger_SuccessAfterFailureIsDurable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	identity := ComputeIdentity("/downloads/a.mp4", 1000)

	l := newTestLedger(t, dbPath)
	failed := successRecord(identity)
	failed.Outcome = models.TransferFailed
	require.NoError(t, l.Record(failed))
	require.NoError(t, l.Record(successRecord(identity)))
	require.NoError(t, l.Close())

	// The success must replace the failed row, not be swallowed by it
	reopened := newTestLedger(t, dbPath)
	assert.True(t, reopened.Has(identity))
}

func TestLedger_FailedOutcomeNotCached(t *testing.T) {
	l := newTestLedger(t, filepath.Join(t.TempDir(), "ledger.db"))

	rec := successRecord(ComputeIdentity("/downloads/bad.mp4", 500))
	rec.Outcome = models.TransferFailed
	require.NoError(t, l.Record(rec))

	// Failed attempts must not block a retry on the next cycle
	assert.False(t, l.Has(rec.Identity))
}

func TestLedger_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "ledger.db")
	l := newTestLedger(t, dbPath)
	assert.Equal(t, 0, l.Count())
}
