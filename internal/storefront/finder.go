// Package storefront finds and scrapes a release's storefront page for
// embedded video links.
package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cesargomez89/cratedigger/internal/domain"
)

// LinkFinder returns at most one storefront page for a release.
type LinkFinder interface {
	FindPage(ctx context.Context, release *domain.ReleaseDetail) (string, bool)
}

// NopFinder never finds a page.
type NopFinder struct{}

func (NopFinder) FindPage(context.Context, *domain.ReleaseDetail) (string, bool) {
	return "", false
}

// MapFinder looks pages up by release id, falling back to catalog number.
type MapFinder map[string]string

func (m MapFinder) FindPage(_ context.Context, release *domain.ReleaseDetail) (string, bool) {
	if release == nil {
		return "", false
	}
	if u, ok := m[release.ID]; ok && u != "" {
		return u, true
	}
	if cat := strings.TrimSpace(release.CatalogNumber); cat != "" {
		if u, ok := m[strings.ToUpper(cat)]; ok && u != "" {
			return u, true
		}
	}
	return "", false
}

// LoadMapFinder reads a JSON object of release id (or catalog number) to
// page URL. An empty path yields a NopFinder.
func LoadMapFinder(path string) (LinkFinder, error) {
	if path == "" {
		return NopFinder{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read storefront links: %w", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse storefront links: %w", err)
	}
	m := make(MapFinder, len(raw))
	for k, v := range raw {
		key := strings.TrimSpace(k)
		m[key] = v
		m[strings.ToUpper(key)] = v
	}
	return m, nil
}
