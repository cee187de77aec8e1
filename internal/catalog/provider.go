package catalog

import (
	"context"

	"github.com/cesargomez89/cratedigger/internal/domain"
)

type Provider interface {
	LabelReleases(ctx context.Context, labelID string, page, perPage int) (*domain.LabelPage, error)
	Release(ctx context.Context, releaseID string) (*domain.ReleaseDetail, error)
	SetWishlist(ctx context.Context, releaseID string, enabled bool) error
	Identity(ctx context.Context) (*domain.Identity, error)
	Wantlist(ctx context.Context, page int) (*domain.WantlistPage, error)
}

var _ Provider = (*Client)(nil)
