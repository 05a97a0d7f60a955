package alist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aleister1102/alistmover/internal/errorwrapper"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL string, cfg ClientConfig) *Client {
	t.Helper()
	cfg.BaseURL = serverURL
	client, err := NewClient(cfg, &http.Client{}, nil, zerolog.Nop())
	require.NoError(t, err)
	return client
}

func envelopeResponse(w http.ResponseWriter, code int, message string, data any) {
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"message": message,
		"data":    json.RawMessage(raw),
	})
}

func TestClient_ListDirectory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/fs/list", r.URL.Path)
		require.Equal(t, "test-token", r.Header.Get("Authorization"))

		var req listRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "/downloads", req.Path)
		assert.True(t, req.Refresh)

		envelopeResponse(w, 200, "success", listData{
			Content: []listEntry{
				{Name: "movie.mp4", Size: 1000, IsDir: false, Modified: "2026-08-01T10:00:00Z"},
				{Name: "subs", Size: 0, IsDir: true},
			},
			Total: 2,
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientConfig{Token: "test-token"})

	entries, err := client.ListDirectory(context.Background(), "/downloads")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "/downloads/movie.mp4", entries[0].Path)
	assert.Equal(t, "movie.mp4", entries[0].Name)
	assert.Equal(t, int64(1000), entries[0].Size)
	assert.False(t, entries[0].IsDirectory)
	assert.False(t, entries[0].ModifiedAt.IsZero())

	assert.True(t, entries[1].IsDirectory)
}

func TestClient_ListDirectory_EnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// alist reports failures with HTTP 200 and a non-200 envelope code
		envelopeResponse(w, 500, "storage not found", nil)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientConfig{Token: "test-token"})

	_, err := client.ListDirectory(context.Background(), "/missing")
	require.Error(t, err)

	var apiErr *errorwrapper.RemoteAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Code)
}

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "admin", req.Username)

		envelopeResponse(w, 200, "success", loginData{Token: "fresh-token"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientConfig{Username: "admin", Password: "secret"})

	require.NoError(t, client.Login(context.Background()))
	assert.Equal(t, "fresh-token", client.token)
}

func TestClient_Login_BadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelopeResponse(w, 400, "username or password is incorrect", nil)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientConfig{Username: "admin", Password: "wrong"})

	err := client.Login(context.Background())
	assert.ErrorIs(t, err, errorwrapper.ErrAuthenticationFailed)
}

func TestClient_ReauthenticatesOnce(t *testing.T) {
	listCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/fs/list":
			listCalls++
			if r.Header.Get("Authorization") != "fresh-token" {
				envelopeResponse(w, 401, "token is expired", nil)
				return
			}
			envelopeResponse(w, 200, "success", listData{Content: []listEntry{{Name: "a.mp4", Size: 10}}})
		case "/api/auth/login":
			envelopeResponse(w, 200, "success", loginData{Token: "fresh-token"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientConfig{
		Token:    "stale-token",
		Username: "admin",
		Password: "secret",
	})

	entries, err := client.ListDirectory(context.Background(), "/downloads")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 2, listCalls)
}

func TestClient_CopyAndDeletePayloads(t *testing.T) {
	var copied copyRequest
	var removed removeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/fs/copy":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&copied))
		case "/api/fs/remove":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&removed))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		envelopeResponse(w, 200, "success", nil)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientConfig{Token: "test-token"})

	require.NoError(t, client.CopyEntry(context.Background(), "/downloads", "/media", "movie.mp4"))
	assert.Equal(t, copyRequest{SrcDir: "/downloads", DstDir: "/media", Names: []string{"movie.mp4"}}, copied)

	require.NoError(t, client.DeleteEntry(context.Background(), "/downloads", "movie.mp4"))
	assert.Equal(t, removeRequest{Dir: "/downloads", Names: []string{"movie.mp4"}}, removed)
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "http://alist.local"}, nil, nil, zerolog.Nop())
	assert.ErrorIs(t, err, errorwrapper.ErrAuthenticationFailed)
}
