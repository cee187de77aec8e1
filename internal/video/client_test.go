package video

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/cratedigger/internal/gateway"
)

type memCache map[string][]byte

func (m memCache) GetCache(key string) ([]byte, error) { return m[key], nil }

func (m memCache) SetCache(key string, data []byte, ttl time.Duration) error {
	m[key] = data
	return nil
}

type instantClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *instantClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *instantClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return ctx.Err()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts := GatewayOptions("test-key")
	opts.Cache = memCache{}
	opts.Clock = &instantClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	gw := gateway.New(opts)
	t.Cleanup(gw.Close)
	return NewClient(gw, srv.URL, "test-key")
}

func ownerCtx() context.Context {
	return gateway.WithIdentity(context.Background(), "owner")
}

func TestSearch(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Artist Night Drive", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "video", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`{"items":[
			{"id":{"kind":"youtube#video","videoId":"abcdefghijk"},"snippet":{"title":"Artist - Night Drive &amp; More","channelTitle":"Label&#39;s Channel"}},
			{"id":{"kind":"youtube#channel"},"snippet":{"title":"A channel"}}
		]}`))
	})

	results, err := client.Search(ownerCtx(), "Artist Night Drive")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "abcdefghijk", results[0].VideoID)
	assert.Equal(t, "Artist - Night Drive & More", results[0].Title)
	assert.Equal(t, "Label's Channel", results[0].Channel)

	// Cached for the same identity
	_, err = client.Search(ownerCtx(), "Artist Night Drive")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	results, err := client.Search(ownerCtx(), "   ")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_QuotaExceeded(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quota","errors":[{"reason":"quotaExceeded","domain":"youtube.quota"}]}}`))
	})

	_, err := client.Search(ownerCtx(), "one")
	assert.True(t, gateway.IsQuota(err))

	_, err = client.Search(ownerCtx(), "two")
	assert.True(t, gateway.IsQuota(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClassify(t *testing.T) {
	body := func(reason string) []byte {
		return []byte(`{"error":{"code":403,"errors":[{"reason":"` + reason + `"}]}}`)
	}

	tests := []struct {
		name   string
		status int
		body   []byte
		want   gateway.Outcome
	}{
		{"ok", 200, []byte(`{}`), gateway.OutcomeOK},
		{"quota", 403, body("quotaExceeded"), gateway.OutcomeQuota},
		{"daily limit", 403, body("dailyLimitExceeded"), gateway.OutcomeQuota},
		{"rate limit", 403, body("rateLimitExceeded"), gateway.OutcomeTransient},
		{"user rate limit", 403, body("userRateLimitExceeded"), gateway.OutcomeTransient},
		{"key invalid", 400, body("keyInvalid"), gateway.OutcomeFatal},
		{"access not configured", 403, body("accessNotConfigured"), gateway.OutcomeFatal},
		{"bare 429", 429, nil, gateway.OutcomeTransient},
		{"bare 503", 503, nil, gateway.OutcomeTransient},
		{"bare 401", 401, nil, gateway.OutcomeFatal},
		{"bad request", 400, body("invalidParameter"), gateway.OutcomeFailed},
		{"not found", 404, nil, gateway.OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(&gateway.Response{StatusCode: tt.status, Body: tt.body})
			assert.Equal(t, tt.want, got.Outcome)
		})
	}
}

func TestScoreMatch(t *testing.T) {
	assert.Equal(t, 3, ScoreMatch("Artist Night Drive", "Artist - Night Drive"))
	assert.Equal(t, 1, ScoreMatch("Artist Night Drive", "Artist - Night Drive (Full Album)"))
	assert.Equal(t, 0, ScoreMatch("Artist Night Drive", "Something else"))
	assert.Equal(t, -2, ScoreMatch("Artist", "Continuous Mix"))
}

func TestLooksLongForm(t *testing.T) {
	assert.True(t, LooksLongForm("Label Sampler [FULL ALBUM]"))
	assert.True(t, LooksLongForm("Artist - Title (Full EP Stream)"))
	assert.False(t, LooksLongForm("Artist - Full Moon"))
}

func TestExtractVideoID(t *testing.T) {
	tests := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":         "dQw4w9WgXcQ",
		"http://youtube.com/watch?feature=share&v=dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?t=10":                   "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":           "dQw4w9WgXcQ",
		"//www.youtube-nocookie.com/embed/dQw4w9WgXcQ?rel=0":  "dQw4w9WgXcQ",
		"https://m.youtube.com/shorts/dQw4w9WgXcQ":            "dQw4w9WgXcQ",
		"dQw4w9WgXcQ":                                         "dQw4w9WgXcQ",
		"https://vimeo.com/12345":                             "",
		"https://www.youtube.com/watch?v=short":               "",
		"not a url":                                           "",
	}

	for raw, want := range tests {
		assert.Equal(t, want, ExtractVideoID(raw), raw)
	}
}
