package storefront

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/cesargomez89/cratedigger/internal/constants"
	"github.com/cesargomez89/cratedigger/internal/gateway"
	"github.com/cesargomez89/cratedigger/internal/video"
)

// Entry is one embedded video found on a storefront page, with the title
// the page shows next to it.
type Entry struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
}

// PageScraper is what the match cascade needs from a storefront.
type PageScraper interface {
	Scrape(ctx context.Context, pageURL string) ([]Entry, error)
}

var _ PageScraper = (*Scraper)(nil)

type Scraper struct {
	gw       *gateway.Gateway
	maxBytes int64
}

func NewScraper(gw *gateway.Gateway) *Scraper {
	return &Scraper{gw: gw, maxBytes: constants.DefaultStorefrontMaxBytes}
}

// GatewayOptions returns the gateway settings for storefront pages. Every
// shop shares one anonymous gateway, so nothing a single shop answers may
// block the rest: no tier carries a block TTL.
func GatewayOptions() gateway.Options {
	return gateway.Options{
		Name:        constants.ProviderStorefront,
		Classify:    Classify,
		MinGap:      constants.StorefrontMinGap,
		MaxAttempts: constants.StorefrontMaxAttempts,
		BackoffBase: constants.DefaultRetryBase,
		BlockTTLs:   map[gateway.Tier]time.Duration{},
	}
}

// Classify retries 429 and 5xx; any other non-2xx answer fails that page
// only.
func Classify(resp *gateway.Response) gateway.Classification {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return gateway.Classification{Outcome: gateway.OutcomeOK}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return gateway.Classification{Outcome: gateway.OutcomeTransient, Reason: http.StatusText(resp.StatusCode)}
	default:
		return gateway.Classification{Outcome: gateway.OutcomeFailed, Reason: http.StatusText(resp.StatusCode)}
	}
}

func (s *Scraper) Scrape(ctx context.Context, pageURL string) ([]Entry, error) {
	resp, err := s.gw.Do(ctx, gateway.Request{
		Method:   http.MethodGet,
		URL:      pageURL,
		Header:   http.Header{"User-Agent": {constants.DefaultUserAgent}},
		CacheTTL: constants.TTLStorefront,
		MaxBytes: s.maxBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("storefront %s: %w", pageURL, err)
	}
	return ParsePage(resp.Body)
}

// ParsePage extracts video entries from storefront HTML. It recognises
// embedded player iframes, links to video pages and elements carrying
// data-video-id attributes. Entries are deduplicated by video id in
// document order.
func ParsePage(body []byte) ([]Entry, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse storefront page: %w", err)
	}

	var entries []Entry
	seen := make(map[string]bool)
	add := func(id, title string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		entries = append(entries, Entry{VideoID: id, Title: strings.Join(strings.Fields(title), " ")})
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case attr(n, "data-video-id") != "":
				title := attr(n, "data-title")
				if title == "" {
					title = text(n)
				}
				add(video.ExtractVideoID(attr(n, "data-video-id")), title)
			case n.Data == "iframe":
				add(video.ExtractVideoID(attr(n, "src")), attr(n, "title"))
			case n.Data == "a":
				title := text(n)
				if title == "" {
					title = attr(n, "title")
				}
				add(video.ExtractVideoID(attr(n, "href")), title)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return entries, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
