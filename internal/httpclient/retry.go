package httpclient

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/aleister1102/alistmover/internal/errorwrapper"
	"github.com/rs/zerolog"
)

// RetryHandler retries transient failures with exponential backoff
type RetryHandler struct {
	maxRetries       int
	baseDelay        time.Duration
	maxDelay         time.Duration
	enableJitter     bool
	retryStatusCodes map[int]bool
	logger           zerolog.Logger
}

// RetryHandlerConfig configuration for retry handler
type RetryHandlerConfig struct {
	MaxRetries       int           `json:"max_retries"`
	BaseDelay        time.Duration `json:"base_delay"`
	MaxDelay         time.Duration `json:"max_delay"`
	EnableJitter     bool          `json:"enable_jitter"`
	RetryStatusCodes []int         `json:"retry_status_codes"`
}

// DefaultRetryHandlerConfig returns the retry policy used against the alist API:
// a handful of attempts, exponential backoff, retry on gateway/availability errors.
func DefaultRetryHandlerConfig() RetryHandlerConfig {
	return RetryHandlerConfig{
		MaxRetries:       3,
		BaseDelay:        1 * time.Second,
		MaxDelay:         15 * time.Second,
		EnableJitter:     true,
		RetryStatusCodes: []int{429, 500, 502, 503, 504},
	}
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(config RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	statusCodeMap := make(map[int]bool)
	for _, code := range config.RetryStatusCodes {
		statusCodeMap[code] = true
	}

	return &RetryHandler{
		maxRetries:       config.MaxRetries,
		baseDelay:        config.BaseDelay,
		maxDelay:         config.MaxDelay,
		enableJitter:     config.EnableJitter,
		retryStatusCodes: statusCodeMap,
		logger:           logger.With().Str("component", "RetryHandler").Logger(),
	}
}

// ShouldRetry determines if an error is transient and the attempt budget allows
// another try.
func (rh *RetryHandler) ShouldRetry(err error, attempt int) bool {
	if attempt >= rh.maxRetries {
		return false
	}
	return rh.isTransient(err)
}

// isTransient classifies an error as retriable
func (rh *RetryHandler) isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errorwrapper.ErrNetworkFailure) || errors.Is(err, errorwrapper.ErrTimeout) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr *errorwrapper.NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr *errorwrapper.RemoteAPIError
	if errors.As(err, &apiErr) {
		return rh.retryStatusCodes[apiErr.StatusCode] || rh.retryStatusCodes[apiErr.Code]
	}
	return false
}

// CalculateDelay calculates the delay for the next retry attempt using exponential backoff
func (rh *RetryHandler) CalculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return rh.baseDelay
	}

	// Exponential backoff: baseDelay * 2^attempt
	delay := rh.baseDelay * time.Duration(math.Pow(2, float64(attempt)))

	// Cap at max delay
	if delay > rh.maxDelay {
		delay = rh.maxDelay
	}

	// Add jitter to prevent thundering herd
	if rh.enableJitter && delay.Milliseconds() >= 10 {
		jitter := time.Duration(rand.Intn(int(delay.Milliseconds()/10))) * time.Millisecond
		delay += jitter
	}

	return delay
}

// WaitForRetry waits for the calculated delay before retrying
func (rh *RetryHandler) WaitForRetry(ctx context.Context, attempt int, operation string) error {
	delay := rh.CalculateDelay(attempt)

	rh.logger.Warn().
		Str("operation", operation).
		Int("attempt", attempt+1).
		Int("max_retries", rh.maxRetries).
		Dur("delay", delay).
		Msg("Transient failure, waiting before retry")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// Execute runs fn until it succeeds, fails non-transiently, or the retry
// budget is exhausted. The last error is returned.
func (rh *RetryHandler) Execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= rh.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !rh.ShouldRetry(lastErr, attempt) {
			return lastErr
		}

		if err := rh.WaitForRetry(ctx, attempt, operation); err != nil {
			return err
		}
	}

	return lastErr
}
