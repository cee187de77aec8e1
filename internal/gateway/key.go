package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

type identityKey struct{}

// WithIdentity attaches the acting tenant to ctx. Cached gateway requests
// require it so responses are never shared across tenants.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey{}).(string)
	return id, ok && id != ""
}

// Fingerprint identifies a credential without storing it.
func Fingerprint(credential string) string {
	if credential == "" {
		return "anonymous"
	}
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])[:12]
}

// secretParams never take part in cache keys.
var secretParams = map[string]bool{
	"key":          true,
	"token":        true,
	"access_token": true,
	"api_key":      true,
}

// CacheKey builds the response cache key for a request. Query parameters
// are sorted and credentials dropped so equivalent requests share a key.
func CacheKey(provider, method, rawURL string, query url.Values, identity string) string {
	u, err := url.Parse(rawURL)
	target := rawURL
	merged := url.Values{}
	if err == nil {
		target = u.Host + u.Path
		for k, vs := range u.Query() {
			merged[k] = append(merged[k], vs...)
		}
	}
	for k, vs := range query {
		merged[k] = append(merged[k], vs...)
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		if secretParams[strings.ToLower(k)] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("gw:")
	b.WriteString(provider)
	b.WriteByte(':')
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(':')
	b.WriteString(target)
	for i, k := range keys {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		vs := append([]string(nil), merged[k]...)
		sort.Strings(vs)
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(strings.Join(vs, ",")))
	}
	b.WriteString("@")
	b.WriteString(identity)
	return b.String()
}

func blockKey(provider, fingerprint string) string {
	return "gw:block:" + provider + ":" + fingerprint
}
