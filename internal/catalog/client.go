// Package catalog talks to a Discogs-compatible release catalog through a
// rate-limited gateway.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/cesargomez89/cratedigger/internal/constants"
	"github.com/cesargomez89/cratedigger/internal/domain"
	"github.com/cesargomez89/cratedigger/internal/gateway"
)

var ErrNotFound = errors.New("catalog: not found")

const (
	AuthDiscogs = "discogs"
	AuthBearer  = "bearer"
)

// Auth describes how requests are signed.
type Auth struct {
	Kind      string
	Token     string
	UserAgent string
}

type Client struct {
	gw      *gateway.Gateway
	baseURL string
	auth    Auth
}

func NewClient(gw *gateway.Gateway, baseURL string, auth Auth) *Client {
	if auth.UserAgent == "" {
		auth.UserAgent = constants.DefaultUserAgent
	}
	return &Client{
		gw:      gw,
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    auth,
	}
}

// NewHTTPClient returns the transport for the given auth. Bearer tokens are
// attached by an oauth2 transport; personal tokens go in a header per request.
func NewHTTPClient(ctx context.Context, auth Auth) *http.Client {
	if auth.Kind == AuthBearer && auth.Token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: constants.DefaultHTTPTimeout})
		client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: auth.Token,
			TokenType:   "Bearer",
		}))
		client.Timeout = constants.DefaultHTTPTimeout
		return client
	}
	return &http.Client{Timeout: constants.DefaultHTTPTimeout}
}

// GatewayOptions returns the gateway settings for the catalog provider. The
// caller fills in Cache, Clock and Logger.
func GatewayOptions(ctx context.Context, auth Auth) gateway.Options {
	return gateway.Options{
		Name:        constants.ProviderCatalog,
		Credential:  auth.Token,
		HTTPClient:  NewHTTPClient(ctx, auth),
		MinGap:      constants.CatalogMinGap,
		MaxAttempts: constants.CatalogMaxAttempts,
		BackoffBase: constants.DefaultRetryBase,
		Classify:    Classify,
	}
}

// Classify treats rejected credentials as fatal and throttling or server
// errors as transient.
func Classify(resp *gateway.Response) gateway.Classification {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(resp.Body, &body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return gateway.Classification{Outcome: gateway.OutcomeOK}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return gateway.Classification{Outcome: gateway.OutcomeTransient, Reason: body.Message}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return gateway.Classification{Outcome: gateway.OutcomeFatal, Reason: body.Message}
	default:
		return gateway.Classification{Outcome: gateway.OutcomeFailed, Reason: body.Message}
	}
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("User-Agent", c.auth.UserAgent)
	h.Set("Accept", "application/json")
	if c.auth.Kind != AuthBearer && c.auth.Token != "" {
		h.Set("Authorization", "Discogs token="+c.auth.Token)
	}
	return h
}

func (c *Client) get(ctx context.Context, path string, query url.Values, ttl time.Duration, v interface{}) error {
	resp, err := c.gw.Do(ctx, gateway.Request{
		Method:   http.MethodGet,
		URL:      c.baseURL + path,
		Query:    query,
		Header:   c.header(),
		CacheTTL: ttl,
	})
	if err != nil {
		if gateway.StatusCode(err) == http.StatusNotFound {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) LabelReleases(ctx context.Context, labelID string, page, perPage int) (*domain.LabelPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = constants.DefaultPageSize
	}
	var resp APILabelReleasesResponse
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	if err := c.get(ctx, "/labels/"+url.PathEscape(labelID)+"/releases", query, constants.TTLLabelPage, &resp); err != nil {
		return nil, err
	}
	out := resp.ToDomain()
	if out.Page == 0 {
		out.Page = page
	}
	if out.Pages == 0 {
		out.Pages = out.Page
	}
	return out, nil
}

func (c *Client) Release(ctx context.Context, releaseID string) (*domain.ReleaseDetail, error) {
	var resp APIReleaseResponse
	if err := c.get(ctx, "/releases/"+url.PathEscape(releaseID), nil, constants.TTLReleaseDetail, &resp); err != nil {
		return nil, err
	}
	detail := resp.ToDomain()
	if detail.ID == "" {
		detail.ID = releaseID
	}
	return detail, nil
}

func (c *Client) Identity(ctx context.Context) (*domain.Identity, error) {
	var resp APIIdentityResponse
	if err := c.get(ctx, "/oauth/identity", nil, constants.TTLIdentity, &resp); err != nil {
		return nil, err
	}
	if resp.Username == "" {
		return nil, fmt.Errorf("identity: %w", ErrNotFound)
	}
	return resp.ToDomain(), nil
}

func (c *Client) Wantlist(ctx context.Context, page int) (*domain.WantlistPage, error) {
	if page < 1 {
		page = 1
	}
	identity, err := c.Identity(ctx)
	if err != nil {
		return nil, err
	}
	var resp APIWantlistResponse
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(constants.DefaultPageSize)},
	}
	if err := c.get(ctx, "/users/"+url.PathEscape(identity.Username)+"/wants", query, constants.TTLWantlist, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// SetWishlist adds or removes a release from the account's wantlist.
// Removing a release that is not listed is not an error.
func (c *Client) SetWishlist(ctx context.Context, releaseID string, enabled bool) error {
	identity, err := c.Identity(ctx)
	if err != nil {
		return err
	}
	method := http.MethodPut
	if !enabled {
		method = http.MethodDelete
	}
	_, err = c.gw.Do(ctx, gateway.Request{
		Method: method,
		URL:    c.baseURL + "/users/" + url.PathEscape(identity.Username) + "/wants/" + url.PathEscape(releaseID),
		Header: c.header(),
	})
	if err != nil {
		if !enabled && gateway.StatusCode(err) == http.StatusNotFound {
			return nil
		}
		if gateway.StatusCode(err) == http.StatusNotFound {
			return fmt.Errorf("release %s: %w", releaseID, ErrNotFound)
		}
		return fmt.Errorf("set wishlist %s: %w", releaseID, err)
	}
	return nil
}
