package app

import (
	"context"
	"fmt"

	"github.com/cesargomez89/cratedigger/internal/catalog"
	"github.com/cesargomez89/cratedigger/internal/config"
	"github.com/cesargomez89/cratedigger/internal/gateway"
	"github.com/cesargomez89/cratedigger/internal/logger"
	"github.com/cesargomez89/cratedigger/internal/match"
	"github.com/cesargomez89/cratedigger/internal/store"
	"github.com/cesargomez89/cratedigger/internal/storefront"
	"github.com/cesargomez89/cratedigger/internal/video"
)

// Runtime is the fully wired service graph shared by the server and the CLI.
type Runtime struct {
	DB       *store.DB
	Catalog  *catalog.Client
	Labels   *LabelService
	Crawler  *Crawler
	Playback *PlaybackService
	gateways []*gateway.Gateway
}

func NewRuntime(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Runtime, error) {
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	finder, err := storefront.LoadMapFinder(cfg.StorefrontLinks)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load storefront links: %w", err)
	}

	rt := &Runtime{DB: db}
	newGateway := func(opts gateway.Options) *gateway.Gateway {
		opts.Cache = db
		opts.Logger = log
		gw := gateway.New(opts)
		rt.gateways = append(rt.gateways, gw)
		return gw
	}

	auth := catalog.Auth{Kind: cfg.CatalogAuth, Token: cfg.CatalogToken, UserAgent: cfg.UserAgent}
	rt.Catalog = catalog.NewClient(newGateway(catalog.GatewayOptions(ctx, auth)), cfg.CatalogURL, auth)
	videos := video.NewClient(newGateway(video.GatewayOptions(cfg.VideoAPIKey)), cfg.VideoURL, cfg.VideoAPIKey)
	scraper := storefront.NewScraper(newGateway(storefront.GatewayOptions()))

	cascade := match.NewCascade(videos, finder, scraper, log)
	rt.Labels = NewLabelService(db, log)
	rt.Crawler = NewCrawler(db, rt.Catalog, cascade, NewEscalator(videos), log)
	rt.Playback = NewPlaybackService(db, rt.Catalog, videos, log)
	return rt, nil
}

// Close stops every gateway worker and closes the database.
func (rt *Runtime) Close() error {
	for _, gw := range rt.gateways {
		gw.Close()
	}
	return rt.DB.Close()
}
