package gateway

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRetriesExhausted   = errors.New("retries exhausted")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrFatalConfig        = errors.New("provider rejected configuration")
	ErrTemporarilyBlocked = errors.New("provider temporarily unavailable")
	ErrNoIdentity         = errors.New("no acting identity in context")
	ErrClosed             = errors.New("gateway closed")
)

// Tier is the severity of a block record.
type Tier string

const (
	TierQuota     Tier = "quota"
	TierFatal     Tier = "fatal"
	TierTransient Tier = "transient"
)

// BlockedError is returned while a provider is blocked for the calling
// credential, and by the call that caused the block.
type BlockedError struct {
	Until    time.Time
	Provider string
	Tier     Tier
	Reason   string
}

func (e *BlockedError) Error() string {
	msg := fmt.Sprintf("%s blocked (%s) until %s", e.Provider, e.Tier, e.Until.UTC().Format(time.RFC3339))
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *BlockedError) Is(target error) bool {
	switch target {
	case ErrQuotaExceeded:
		return e.Tier == TierQuota
	case ErrFatalConfig:
		return e.Tier == TierFatal
	case ErrTemporarilyBlocked:
		return e.Tier == TierTransient
	}
	return false
}

// HTTPError is a non-retryable, non-blocking failure response.
type HTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsQuota reports whether err means the provider quota is spent.
func IsQuota(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// IsFatal reports whether err means the provider rejected our configuration.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatalConfig)
}
