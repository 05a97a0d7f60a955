package alist

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/alistmover/internal/errorwrapper"
	"github.com/aleister1102/alistmover/internal/httpclient"
	"github.com/aleister1102/alistmover/internal/models"
	"github.com/rs/zerolog"
)

// ClientConfig holds connection and credential settings for an alist server.
type ClientConfig struct {
	BaseURL  string
	Token    string
	Username string
	Password string
}

// Client talks to the alist fs API: listing, copying and removing entries.
// It authenticates with a static token or a username/password login, and
// re-authenticates once when a request comes back unauthorized mid-run.
type Client struct {
	cfg          ClientConfig
	httpClient   *http.Client
	retryHandler *httpclient.RetryHandler
	logger       zerolog.Logger

	mu    sync.Mutex
	token string
}

// NewClient creates a new alist API client.
func NewClient(cfg ClientConfig, httpClient *http.Client, retryHandler *httpclient.RetryHandler, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errorwrapper.NewValidationError("base_url", cfg.BaseURL, "alist base URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, errorwrapper.WrapError(err, "invalid alist base URL")
	}
	if cfg.Token == "" && (cfg.Username == "" || cfg.Password == "") {
		return nil, errorwrapper.WrapError(errorwrapper.ErrAuthenticationFailed, "no token and no username/password configured")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:          cfg,
		httpClient:   httpClient,
		retryHandler: retryHandler,
		logger:       logger.With().Str("component", "AlistClient").Logger(),
		token:        cfg.Token,
	}, nil
}

// Login exchanges the configured username/password for a token. Called at
// startup when no static token is configured, and once more mid-run when a
// request comes back unauthorized.
func (c *Client) Login(ctx context.Context) error {
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return errorwrapper.WrapError(errorwrapper.ErrAuthenticationFailed, "username or password not configured")
	}

	envelope, err := c.post(ctx, loginEndpoint, loginRequest{
		Username: c.cfg.Username,
		Password: c.cfg.Password,
	}, "")
	if err != nil {
		return errorwrapper.WrapError(errorwrapper.ErrAuthenticationFailed, err.Error())
	}

	var data loginData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return errorwrapper.WrapError(err, "failed to decode login response")
	}
	if data.Token == "" {
		return errorwrapper.WrapError(errorwrapper.ErrAuthenticationFailed, "login succeeded but no token returned")
	}

	c.mu.Lock()
	c.token = data.Token
	c.mu.Unlock()

	c.logger.Info().Msg("Authenticated against alist server")
	return nil
}

// ListDirectory lists the files directly under dirPath. Directories are
// included in the result; callers decide whether to skip them.
func (c *Client) ListDirectory(ctx context.Context, dirPath string) ([]models.RemoteEntry, error) {
	var entries []models.RemoteEntry

	op := func(ctx context.Context) error {
		envelope, err := c.postAuthed(ctx, listEndpoint, listRequest{
			Path:     dirPath,
			Password: "",
			Page:     1,
			PerPage:  0,
			Refresh:  true,
		})
		if err != nil {
			return err
		}

		var data listData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return errorwrapper.WrapError(err, "failed to decode listing response")
		}

		entries = entries[:0]
		for _, item := range data.Content {
			entries = append(entries, models.RemoteEntry{
				Path:        path.Join(dirPath, item.Name),
				Name:        item.Name,
				Size:        item.Size,
				ModifiedAt:  parseModified(item.Modified),
				IsDirectory: item.IsDir,
			})
		}
		return nil
	}

	var err error
	if c.retryHandler != nil {
		err = c.retryHandler.Execute(ctx, "list "+dirPath, op)
	} else {
		err = op(ctx)
	}
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("path", dirPath).Int("entries", len(entries)).Msg("Listed remote directory")
	return entries, nil
}

// CopyEntry asks the server to copy name from srcDir to dstDir. The copy is
// performed asynchronously server-side; callers must poll the destination
// listing for completion.
func (c *Client) CopyEntry(ctx context.Context, srcDir, dstDir, name string) error {
	op := func(ctx context.Context) error {
		_, err := c.postAuthed(ctx, copyEndpoint, copyRequest{
			SrcDir: srcDir,
			DstDir: dstDir,
			Names:  []string{name},
		})
		return err
	}

	var err error
	if c.retryHandler != nil {
		err = c.retryHandler.Execute(ctx, "copy "+name, op)
	} else {
		err = op(ctx)
	}
	if err != nil {
		return err
	}

	c.logger.Info().Str("name", name).Str("src_dir", srcDir).Str("dst_dir", dstDir).Msg("Copy request accepted")
	return nil
}

// DeleteEntry removes name from dir.
func (c *Client) DeleteEntry(ctx context.Context, dir, name string) error {
	op := func(ctx context.Context) error {
		_, err := c.postAuthed(ctx, removeEndpoint, removeRequest{
			Dir:   dir,
			Names: []string{name},
		})
		return err
	}

	var err error
	if c.retryHandler != nil {
		err = c.retryHandler.Execute(ctx, "remove "+name, op)
	} else {
		err = op(ctx)
	}
	if err != nil {
		return err
	}

	c.logger.Info().Str("name", name).Str("dir", dir).Msg("Delete request accepted")
	return nil
}

// postAuthed sends an authenticated request and re-authenticates exactly once
// when the server reports the token invalid.
func (c *Client) postAuthed(ctx context.Context, endpoint string, payload any) (*apiEnvelope, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	envelope, err := c.post(ctx, endpoint, payload, token)
	if err == nil || !errorwrapper.IsAuthError(err) {
		return envelope, err
	}

	if c.cfg.Username == "" || c.cfg.Password == "" {
		return nil, err
	}

	c.logger.Warn().Str("endpoint", endpoint).Msg("Token rejected, attempting re-authentication")
	if loginErr := c.Login(ctx); loginErr != nil {
		return nil, loginErr
	}

	c.mu.Lock()
	token = c.token
	c.mu.Unlock()

	return c.post(ctx, endpoint, payload, token)
}

// post issues one JSON POST and decodes the alist response envelope.
func (c *Client) post(ctx context.Context, endpoint string, payload any, token string) (*apiEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to marshal request payload")
	}

	fullURL := c.cfg.BaseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errorwrapper.NewNetworkError(fullURL, "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errorwrapper.NewNetworkError(fullURL, "failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorwrapper.NewRemoteAPIError(endpoint, resp.StatusCode, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to decode response envelope")
	}
	if envelope.Code != 200 {
		return nil, errorwrapper.NewRemoteAPIError(endpoint, resp.StatusCode, envelope.Code, envelope.Message)
	}

	return &envelope, nil
}

// parseModified parses the timestamp format alist reports; a zero time is
// returned for anything unparseable since completeness detection relies on
// size, not mtime.
func parseModified(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999Z07:00", value); err == nil {
		return t
	}
	return time.Time{}
}
