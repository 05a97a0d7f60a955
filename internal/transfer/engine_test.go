package transfer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aleister1102/alistmover/internal/config"
	"github.com/aleister1102/alistmover/internal/errorwrapper"
	"github.com/aleister1102/alistmover/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient scripts the remote directory state for engine tests.
type fakeClient struct {
	sourceEntries []models.RemoteEntry
	destEntries   []models.RemoteEntry

	copyErr   error
	deleteErr error
	listErr   error

	// destAppearsAfter delays the destination entry by this many list calls.
	destAppearsAfter int
	destListCalls    int

	copyCalls   int
	deleteCalls int

	// deleteRemovesSource controls whether a delete actually clears the
	// source listing, letting tests simulate a delete that silently fails.
	deleteRemovesSource bool
}

func (f *fakeClient) ListDirectory(_ context.Context, dirPath string) ([]models.RemoteEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if dirPath == "/dest" {
		f.destListCalls++
		if f.destListCalls <= f.destAppearsAfter {
			return nil, nil
		}
		return f.destEntries, nil
	}
	return f.sourceEntries, nil
}

func (f *fakeClient) CopyEntry(_ context.Context, _, _, _ string) error {
	f.copyCalls++
	return f.copyErr
}

func (f *fakeClient) DeleteEntry(_ context.Context, _, name string) error {
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if f.deleteRemovesSource {
		var kept []models.RemoteEntry
		for _, entry := range f.sourceEntries {
			if entry.Name != name {
				kept = append(kept, entry)
			}
		}
		f.sourceEntries = kept
	}
	return nil
}

func testConfig() config.MonitorConfig {
	cfg := config.NewDefaultMonitorConfig()
	cfg.SourcePath = "/downloads"
	cfg.DestPath = "/dest"
	cfg.CopyWaitAttempts = 3
	cfg.CopyWaitSeconds = 1
	return cfg
}

func newTestEngine(client DirectoryClient, cfg config.MonitorConfig) *Engine {
	e := NewEngine(client, cfg, nil, zerolog.Nop())
	e.waitInterval = time.Millisecond
	return e
}

func sourceEntry() models.RemoteEntry {
	return models.RemoteEntry{
		Path: "/downloads/video.mp4",
		Name: "video.mp4",
		Size: 4096,
	}
}

func TestTransfer_SuccessWithDelete(t *testing.T) {
	client := &fakeClient{
		sourceEntries:       []models.RemoteEntry{sourceEntry()},
		destEntries:         []models.RemoteEntry{{Name: "video.mp4", Size: 4096}},
		deleteRemovesSource: true,
	}

	result := newTestEngine(client, testConfig()).Transfer(context.Background(), sourceEntry())

	require.True(t, result.Succeeded())
	assert.Equal(t, "/dest/video.mp4", result.DestPath)
	assert.False(t, result.DeleteFailed)
	assert.Equal(t, 1, client.copyCalls)
	assert.Equal(t, 1, client.deleteCalls)
}

func TestTransfer_SuccessWithoutDelete(t *testing.T) {
	client := &fakeClient{
		destEntries: []models.RemoteEntry{{Name: "video.mp4", Size: 4096}},
	}
	cfg := testConfig()
	cfg.DeleteSource = false

	result := newTestEngine(client, cfg).Transfer(context.Background(), sourceEntry())

	require.True(t, result.Succeeded())
	assert.Equal(t, 0, client.deleteCalls)
}

func TestTransfer_CopyRequestFailure(t *testing.T) {
	client := &fakeClient{copyErr: errors.New("storage offline")}

	result := newTestEngine(client, testConfig()).Transfer(context.Background(), sourceEntry())

	require.False(t, result.Succeeded())
	assert.Equal(t, models.FailureCopyRequest, result.Reason)
	assert.Equal(t, 0, client.deleteCalls)
}

func TestTransfer_DestinationNeverAppears(t *testing.T) {
	client := &fakeClient{destAppearsAfter: 100}

	result := newTestEngine(client, testConfig()).Transfer(context.Background(), sourceEntry())

	require.False(t, result.Succeeded())
	assert.Equal(t, models.FailureCopyTimeout, result.Reason)
	assert.ErrorIs(t, result.Err, errorwrapper.ErrTimeout)
	assert.Equal(t, 3, client.destListCalls)
	assert.Equal(t, 0, client.deleteCalls)
}

func TestTransfer_DestinationAppearsAfterPolling(t *testing.T) {
	client := &fakeClient{
		destEntries:      []models.RemoteEntry{{Name: "video.mp4", Size: 4096}},
		destAppearsAfter: 2,
	}
	cfg := testConfig()
	cfg.DeleteSource = false

	result := newTestEngine(client, cfg).Transfer(context.Background(), sourceEntry())

	require.True(t, result.Succeeded())
	assert.Equal(t, 3, client.destListCalls)
}

func TestTransfer_IntegrityMismatch(t *testing.T) {
	client := &fakeClient{
		destEntries: []models.RemoteEntry{{Name: "video.mp4", Size: 1024}},
	}

	result := newTestEngine(client, testConfig()).Transfer(context.Background(), sourceEntry())

	require.False(t, result.Succeeded())
	assert.Equal(t, models.FailureIntegrityMismatch, result.Reason)
	assert.ErrorIs(t, result.Err, errorwrapper.ErrIntegrityMismatch)
	assert.Contains(t, result.Detail, "source=4096")
	assert.Contains(t, result.Detail, "dest=1024")
	assert.Equal(t, 0, client.deleteCalls)
}

func TestTransfer_DeleteFailureDoesNotDemoteSuccess(t *testing.T) {
	client := &fakeClient{
		destEntries: []models.RemoteEntry{{Name: "video.mp4", Size: 4096}},
		deleteErr:   errors.New("permission denied"),
	}

	result := newTestEngine(client, testConfig()).Transfer(context.Background(), sourceEntry())

	require.True(t, result.Succeeded())
	assert.True(t, result.DeleteFailed)
	assert.Contains(t, result.Detail, "source delete failed")
}

func TestTransfer_DeleteVerifyStillPresent(t *testing.T) {
	client := &fakeClient{
		sourceEntries: []models.RemoteEntry{sourceEntry()},
		destEntries:   []models.RemoteEntry{{Name: "video.mp4", Size: 4096}},
		// deleteRemovesSource is false: the entry survives the delete call
	}

	result := newTestEngine(client, testConfig()).Transfer(context.Background(), sourceEntry())

	require.True(t, result.Succeeded())
	assert.True(t, result.DeleteFailed)
	assert.Contains(t, result.Detail, "still present")
}

func TestTransfer_CancelledDuringDestinationWait(t *testing.T) {
	client := &fakeClient{destAppearsAfter: 100}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newTestEngine(client, testConfig()).Transfer(ctx, sourceEntry())

	require.False(t, result.Succeeded())
	assert.Equal(t, models.FailureCopyTimeout, result.Reason)
}

func TestTransfer_DirectoryAtDestinationDoesNotCount(t *testing.T) {
	client := &fakeClient{
		destEntries: []models.RemoteEntry{{Name: "video.mp4", Size: 4096, IsDirectory: true}},
	}

	result := newTestEngine(client, testConfig()).Transfer(context.Background(), sourceEntry())

	require.False(t, result.Succeeded())
	assert.Equal(t, models.FailureCopyTimeout, result.Reason)
}
