// Package gateway serializes, rate limits, retries and caches calls to one
// external HTTP provider.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/cesargomez89/cratedigger/internal/constants"
	"github.com/cesargomez89/cratedigger/internal/logger"
)

const maxBodyBytes = 8 << 20

type Cache interface {
	GetCache(key string) ([]byte, error)
	SetCache(key string, data []byte, ttl time.Duration) error
}

// Options configures one provider gateway.
type Options struct {
	HTTPClient  *http.Client
	Classify    Classifier
	Clock       Clock
	Cache       Cache
	Logger      *logger.Logger
	Name        string
	Credential  string
	MinGap      time.Duration
	BackoffBase time.Duration
	MaxAttempts int
	BlockTTLs   map[Tier]time.Duration
}

// Request is one logical provider request. A positive CacheTTL enables the
// response cache for GET requests. A positive MaxBytes caps how much of the
// response body is read, and so what gets cached.
type Request struct {
	Header   http.Header
	Query    url.Values
	Method   string
	URL      string
	Body     []byte
	CacheTTL time.Duration
	MaxBytes int64
}

type Response struct {
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
	StatusCode int         `json:"status_code"`
	Cached     bool        `json:"-"`
}

type task struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
}

type blockRecord struct {
	Until  time.Time `json:"until"`
	Tier   Tier      `json:"tier"`
	Reason string    `json:"reason"`
}

// Gateway owns a single worker goroutine per provider. Tasks run one at a
// time, each dispatched no sooner than MinGap after the previous dispatch.
type Gateway struct {
	opts        Options
	limiter     *rate.Limiter
	tasks       chan task
	done        chan struct{}
	closeOnce   sync.Once
	fingerprint string
	logger      *logger.Logger
}

func New(opts Options) *Gateway {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: constants.DefaultHTTPTimeout}
	}
	if opts.Classify == nil {
		opts.Classify = DefaultClassifier
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = constants.DefaultRetryBase
	}
	if opts.BlockTTLs == nil {
		opts.BlockTTLs = map[Tier]time.Duration{
			TierQuota:     constants.BlockQuota,
			TierFatal:     constants.BlockFatal,
			TierTransient: constants.BlockTransient,
		}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	limit := rate.Inf
	if opts.MinGap > 0 {
		limit = rate.Every(opts.MinGap)
	}

	g := &Gateway{
		opts:        opts,
		limiter:     rate.NewLimiter(limit, 1),
		tasks:       make(chan task),
		done:        make(chan struct{}),
		fingerprint: Fingerprint(opts.Credential),
		logger:      opts.Logger.WithComponent("gateway").WithProvider(opts.Name),
	}
	go g.run()
	return g
}

func (g *Gateway) Name() string {
	return g.opts.Name
}

// Close stops the worker. Pending and later calls fail with ErrClosed.
func (g *Gateway) Close() {
	g.closeOnce.Do(func() { close(g.done) })
}

func (g *Gateway) run() {
	for {
		select {
		case <-g.done:
			return
		case t := <-g.tasks:
			t.result <- g.execute(t)
		}
	}
}

func (g *Gateway) execute(t task) error {
	if err := t.ctx.Err(); err != nil {
		return err
	}

	now := g.opts.Clock.Now()
	r := g.limiter.ReserveN(now, 1)
	if delay := ceilMillis(r.DelayFrom(now)); delay > 0 {
		if err := g.opts.Clock.Sleep(t.ctx, delay); err != nil {
			r.CancelAt(g.opts.Clock.Now())
			return err
		}
	}
	return t.fn(t.ctx)
}

// Call runs fn on the provider queue. fn starts only after the previous task
// finished and the minimum gap since the previous dispatch elapsed.
func (g *Gateway) Call(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case <-g.done:
		return ErrClosed
	default:
	}

	t := task{ctx: ctx, fn: fn, result: make(chan error, 1)}

	select {
	case <-g.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case g.tasks <- t:
	}

	select {
	case <-g.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case err := <-t.result:
		return err
	}
}

// Do performs a logical request: response cache, block check, then up to
// MaxAttempts queued network attempts with exponential backoff.
func (g *Gateway) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	cacheKey := ""
	if req.CacheTTL > 0 && req.Method == http.MethodGet && g.opts.Cache != nil {
		identity, ok := IdentityFrom(ctx)
		if !ok {
			return nil, fmt.Errorf("%s: %w", g.opts.Name, ErrNoIdentity)
		}
		cacheKey = CacheKey(g.opts.Name, req.Method, req.URL, req.Query, identity)
		if resp := g.cached(cacheKey); resp != nil {
			return resp, nil
		}
	}

	if err := g.Blocked(); err != nil {
		return nil, err
	}

	var lastErr error
	var lastDelay time.Duration
	for attempt := 0; attempt < g.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := g.backoff(attempt-1, lastErr)
			if delay <= lastDelay {
				delay = lastDelay + g.opts.BackoffBase
			}
			lastDelay = delay
			g.logger.Debug("Retrying request", "attempt", attempt+1, "delay", delay, "error", lastErr)
			if err := g.opts.Clock.Sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		resp, err := g.roundTrip(ctx, req)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrClosed) {
				return nil, err
			}
			lastErr = err
			continue
		}

		class := g.opts.Classify(resp)
		switch class.Outcome {
		case OutcomeOK:
			if cacheKey != "" {
				g.store(cacheKey, resp, req.CacheTTL)
			}
			return resp, nil
		case OutcomeQuota:
			return nil, g.block(TierQuota, class.Reason)
		case OutcomeFatal:
			return nil, g.block(TierFatal, class.Reason)
		case OutcomeTransient:
			lastErr = &retryableError{status: resp.StatusCode, retryAfter: parseRetryAfter(resp.Header, g.opts.Clock.Now()), reason: class.Reason}
			continue
		default:
			return nil, &HTTPError{Provider: g.opts.Name, StatusCode: resp.StatusCode, Body: snippet(resp.Body)}
		}
	}

	_ = g.block(TierTransient, fmt.Sprint(lastErr))
	g.logger.Warn("Retries exhausted", "attempts", g.opts.MaxAttempts, "error", lastErr)
	return nil, fmt.Errorf("%s after %d attempts: %w (last: %v)", g.opts.Name, g.opts.MaxAttempts, ErrRetriesExhausted, lastErr)
}

// Blocked returns the active block for this credential, if any.
func (g *Gateway) Blocked() error {
	if g.opts.Cache == nil {
		return nil
	}
	data, err := g.opts.Cache.GetCache(blockKey(g.opts.Name, g.fingerprint))
	if err != nil || data == nil {
		return nil
	}
	var rec blockRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}
	if !g.opts.Clock.Now().Before(rec.Until) {
		return nil
	}
	return &BlockedError{Provider: g.opts.Name, Tier: rec.Tier, Reason: rec.Reason, Until: rec.Until}
}

func (g *Gateway) block(tier Tier, reason string) error {
	ttl := g.opts.BlockTTLs[tier]
	rec := blockRecord{Tier: tier, Reason: reason, Until: g.opts.Clock.Now().Add(ttl)}
	blocked := &BlockedError{Provider: g.opts.Name, Tier: tier, Reason: reason, Until: rec.Until}
	g.logger.Warn("Provider blocked", "tier", tier, "until", rec.Until, "reason", reason)

	if g.opts.Cache == nil || ttl <= 0 {
		return blocked
	}
	data, err := json.Marshal(rec)
	if err == nil {
		if err := g.opts.Cache.SetCache(blockKey(g.opts.Name, g.fingerprint), data, ttl); err != nil {
			g.logger.Error("Failed to persist block record", "error", err)
		}
	}
	return blocked
}

func (g *Gateway) cached(key string) *Response {
	data, err := g.opts.Cache.GetCache(key)
	if err != nil {
		g.logger.Warn("Cache read failed", "key", key, "error", err)
		return nil
	}
	if data == nil {
		return nil
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil
	}
	resp.Cached = true
	return &resp
}

func (g *Gateway) store(key string, resp *Response, ttl time.Duration) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := g.opts.Cache.SetCache(key, data, ttl); err != nil {
		g.logger.Warn("Cache write failed", "key", key, "error", err)
	}
}

func (g *Gateway) roundTrip(ctx context.Context, req Request) (*Response, error) {
	var out *Response
	err := g.Call(ctx, func(ctx context.Context) error {
		u, err := url.Parse(req.URL)
		if err != nil {
			return fmt.Errorf("invalid url %q: %w", req.URL, err)
		}
		if len(req.Query) > 0 {
			q := u.Query()
			for k, vs := range req.Query {
				for _, v := range vs {
					q.Add(k, v)
				}
			}
			u.RawQuery = q.Encode()
		}

		var body io.Reader
		if req.Body != nil {
			body = bytes.NewReader(req.Body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
		if err != nil {
			return err
		}
		for k, vs := range req.Header {
			for _, v := range vs {
				httpReq.Header.Add(k, v)
			}
		}

		resp, err := g.opts.HTTPClient.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close() //nolint:errcheck // deferred cleanup

		limit := int64(maxBodyBytes)
		if req.MaxBytes > 0 && req.MaxBytes < limit {
			limit = req.MaxBytes
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		out = &Response{StatusCode: resp.StatusCode, Header: resp.Header.Clone(), Body: data}
		return nil
	})
	return out, err
}

// backoff returns base*2^attempt, or the server's Retry-After when longer.
func (g *Gateway) backoff(attempt int, lastErr error) time.Duration {
	delay := g.opts.BackoffBase << uint(attempt)
	var re *retryableError
	if errors.As(lastErr, &re) && re.retryAfter > delay {
		delay = re.retryAfter
	}
	return delay
}

type retryableError struct {
	reason     string
	status     int
	retryAfter time.Duration
}

func (e *retryableError) Error() string {
	if e.reason != "" {
		return fmt.Sprintf("status %d: %s", e.status, e.reason)
	}
	return fmt.Sprintf("status %d", e.status)
}

// parseRetryAfter reads a Retry-After header and returns the duration to wait.
func parseRetryAfter(h http.Header, now time.Time) time.Duration {
	ra := h.Get("Retry-After")
	if ra == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(ra); err == nil {
		return t.Sub(now)
	}
	return 0
}

// ceilMillis rounds up to whole milliseconds so float drift in the limiter
// never shortens a gap.
func ceilMillis(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return (d + time.Millisecond - 1).Truncate(time.Millisecond)
}

func snippet(body []byte) string {
	const limit = 300
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
