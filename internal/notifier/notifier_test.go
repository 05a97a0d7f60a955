package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/alistmover/internal/config"
	"github.com/aleister1102/alistmover/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhookSink(t *testing.T, status int, capture *models.DiscordMessagePayload) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if capture != nil {
			require.NoError(t, json.Unmarshal(body, capture))
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestNotifier(t *testing.T) *DiscordNotifier {
	t.Helper()
	dn, err := NewDiscordNotifier(zerolog.Nop(), &http.Client{Timeout: 5 * time.Second}, 1, 10*time.Millisecond)
	require.NoError(t, err)
	return dn
}

func TestSendNotification_Success(t *testing.T) {
	var captured models.DiscordMessagePayload
	server := newWebhookSink(t, http.StatusNoContent, &captured)

	dn := newTestNotifier(t)
	payload := FormatEventMessage(models.NotificationEvent{
		Kind: models.EventSuccess,
		Path: "/downloads/video.mp4",
		Size: 2048,
	}, config.NewDefaultNotificationConfig())

	err := dn.SendNotification(context.Background(), server.URL, payload)
	require.NoError(t, err)

	assert.Equal(t, DiscordUsername, captured.Username)
	require.Len(t, captured.Embeds, 1)
	assert.Equal(t, "✅ Transfer Complete", captured.Embeds[0].Title)
	assert.Equal(t, SuccessEmbedColor, captured.Embeds[0].Color)
}

func TestSendNotification_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	dn := newTestNotifier(t)
	err := dn.SendNotification(context.Background(), server.URL, models.DiscordMessagePayload{Content: "ping"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSendNotification_FailsAfterAllAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	dn := newTestNotifier(t)
	err := dn.SendNotification(context.Background(), server.URL, models.DiscordMessagePayload{Content: "ping"})
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSendNotification_EmptyURLIsNoOp(t *testing.T) {
	dn := newTestNotifier(t)
	err := dn.SendNotification(context.Background(), "", models.DiscordMessagePayload{Content: "ping"})
	assert.NoError(t, err)
}

func TestFormatEventMessage_ErrorIncludesMentions(t *testing.T) {
	cfg := config.NewDefaultNotificationConfig()
	cfg.MentionRoleIDs = []string{"123", "456"}

	payload := FormatEventMessage(models.NotificationEvent{
		Kind:   models.EventError,
		Path:   "/downloads/broken.mkv",
		Detail: "copy request rejected",
	}, cfg)

	assert.Equal(t, "<@&123> <@&456>", payload.Content)
	require.NotNil(t, payload.AllowedMentions)
	assert.Equal(t, []string{"123", "456"}, payload.AllowedMentions.Roles)
	require.Len(t, payload.Embeds, 1)
	assert.Equal(t, ErrorEmbedColor, payload.Embeds[0].Color)
}

func TestFormatEventMessage_StoppedIncludesStats(t *testing.T) {
	payload := FormatEventMessage(models.NotificationEvent{
		Kind: models.EventStopped,
		Stats: &models.MonitorStats{
			Cycles:       7,
			FilesCopied:  3,
			FilesDeleted: 2,
			Errors:       1,
		},
	}, config.NewDefaultNotificationConfig())

	require.Len(t, payload.Embeds, 1)
	embed := payload.Embeds[0]
	assert.Equal(t, "🛑 Monitoring Stopped", embed.Title)
	require.Len(t, embed.Fields, 4)
	assert.Equal(t, "7", embed.Fields[0].Value)
	assert.Equal(t, "3", embed.Fields[1].Value)
}

func TestNotificationHelper_GatesDisabledKinds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	cfg := config.NewDefaultNotificationConfig()
	cfg.DiscordWebhookURL = server.URL
	cfg.NotifyOnWaiting = false

	helper := NewNotificationHelper(newTestNotifier(t), cfg, zerolog.Nop())
	helper.Dispatch(context.Background(), models.NotificationEvent{Kind: models.EventWaiting, Path: "/downloads/partial.iso"})
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	helper.Dispatch(context.Background(), models.NotificationEvent{Kind: models.EventCopy, Path: "/downloads/done.iso"})
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNotificationHelper_SendTimeoutBoundsSlowWebhook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	dn, err := NewDiscordNotifier(zerolog.Nop(), server.Client(), 0, time.Millisecond)
	require.NoError(t, err)

	cfg := config.NewDefaultNotificationConfig()
	cfg.DiscordWebhookURL = server.URL
	helper := NewNotificationHelper(dn, cfg, zerolog.Nop())
	helper.sendTimeout = 50 * time.Millisecond

	start := time.Now()
	helper.Dispatch(context.Background(), models.NotificationEvent{Kind: models.EventSuccess, Path: "/downloads/slow.bin"})
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestNotificationHelper_TimeoutFromConfig(t *testing.T) {
	cfg := config.NewDefaultNotificationConfig()
	cfg.TimeoutSeconds = 7
	helper := NewNotificationHelper(newTestNotifier(t), cfg, zerolog.Nop())
	assert.Equal(t, 7*time.Second, helper.sendTimeout)

	cfg.TimeoutSeconds = 0
	helper = NewNotificationHelper(newTestNotifier(t), cfg, zerolog.Nop())
	assert.Equal(t, 20*time.Second, helper.sendTimeout)
}

func TestNotificationHelper_NoWebhookConfigured(t *testing.T) {
	cfg := config.NewDefaultNotificationConfig()
	helper := NewNotificationHelper(newTestNotifier(t), cfg, zerolog.Nop())

	// Must not panic or block without a configured sink
	helper.Dispatch(context.Background(), models.NotificationEvent{Kind: models.EventSuccess})
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.00 KB", formatBytes(1024))
	assert.Equal(t, "1.50 MB", formatBytes(1536*1024))
}
