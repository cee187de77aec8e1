// Package video searches a YouTube-compatible Data API through a gateway.
package video

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/cesargomez89/cratedigger/internal/constants"
	"github.com/cesargomez89/cratedigger/internal/gateway"
)

type Result struct {
	VideoID    string `json:"video_id"`
	Title      string `json:"title"`
	Channel    string `json:"channel"`
	Embeddable bool   `json:"embeddable"`
}

// Searcher is the single operation the match cascade needs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

var _ Searcher = (*Client)(nil)

type Client struct {
	gw         *gateway.Gateway
	baseURL    string
	apiKey     string
	maxResults int
}

func NewClient(gw *gateway.Gateway, baseURL, apiKey string) *Client {
	return &Client{
		gw:         gw,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		maxResults: constants.MaxSearchResults,
	}
}

// GatewayOptions returns the gateway settings for the video provider. The
// caller fills in Cache, Clock and Logger.
func GatewayOptions(apiKey string) gateway.Options {
	return gateway.Options{
		Name:        constants.ProviderVideo,
		Credential:  apiKey,
		MinGap:      constants.VideoMinGap,
		MaxAttempts: constants.VideoMaxAttempts,
		BackoffBase: constants.DefaultRetryBase,
		Classify:    Classify,
	}
}

type searchResponse struct {
	Items []struct {
		ID struct {
			Kind    string `json:"kind"`
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search returns candidates in provider relevance order.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	resp, err := c.gw.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/search",
		Query: url.Values{
			"part":            {"snippet"},
			"type":            {"video"},
			"videoEmbeddable": {"true"},
			"maxResults":      {strconv.Itoa(c.maxResults)},
			"q":               {query},
			"key":             {c.apiKey},
		},
		CacheTTL: constants.TTLVideoSearch,
	})
	if err != nil {
		return nil, fmt.Errorf("video search %q: %w", query, err)
	}

	var body searchResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]Result, 0, len(body.Items))
	for _, item := range body.Items {
		if item.ID.VideoID == "" {
			continue
		}
		results = append(results, Result{
			VideoID:    item.ID.VideoID,
			Title:      html.UnescapeString(item.Snippet.Title),
			Channel:    html.UnescapeString(item.Snippet.ChannelTitle),
			Embeddable: true,
		})
	}
	return results, nil
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
			Domain string `json:"domain"`
		} `json:"errors"`
	} `json:"error"`
}

// Classify maps Data API error reasons onto gateway outcomes.
func Classify(resp *gateway.Response) gateway.Classification {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return gateway.Classification{Outcome: gateway.OutcomeOK}
	}

	var body apiError
	_ = json.Unmarshal(resp.Body, &body)
	reasons := make([]string, 0, len(body.Error.Errors))
	for _, e := range body.Error.Errors {
		reasons = append(reasons, e.Reason)
	}
	reason := strings.Join(reasons, ",")
	if reason == "" {
		reason = body.Error.Message
	}

	for _, r := range reasons {
		switch r {
		case "quotaExceeded", "dailyLimitExceeded":
			return gateway.Classification{Outcome: gateway.OutcomeQuota, Reason: reason}
		case "rateLimitExceeded", "userRateLimitExceeded":
			return gateway.Classification{Outcome: gateway.OutcomeTransient, Reason: reason}
		case "keyInvalid", "keyExpired", "accessNotConfigured", "ipRefererBlocked", "forbidden":
			return gateway.Classification{Outcome: gateway.OutcomeFatal, Reason: reason}
		}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return gateway.Classification{Outcome: gateway.OutcomeTransient, Reason: reason}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return gateway.Classification{Outcome: gateway.OutcomeFatal, Reason: reason}
	default:
		return gateway.Classification{Outcome: gateway.OutcomeFailed, Reason: reason}
	}
}
