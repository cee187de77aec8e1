package match

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cesargomez89/cratedigger/internal/constants"
	"github.com/cesargomez89/cratedigger/internal/domain"
	"github.com/cesargomez89/cratedigger/internal/gateway"
	"github.com/cesargomez89/cratedigger/internal/logger"
	"github.com/cesargomez89/cratedigger/internal/storefront"
	"github.com/cesargomez89/cratedigger/internal/video"
)

// Result holds the cascade output for one release, aligned with the input
// tracks.
type Result struct {
	Candidates [][]domain.Candidate
	Errors     []error
}

// Matched counts tracks with at least one candidate.
func (r *Result) Matched() int {
	n := 0
	for _, c := range r.Candidates {
		if len(c) > 0 {
			n++
		}
	}
	return n
}

// Weak counts tracks left without a candidate.
func (r *Result) Weak() int {
	return len(r.Candidates) - r.Matched()
}

// ErrorSummary joins the per-track errors, or returns "" when there are none.
func (r *Result) ErrorSummary() string {
	var parts []string
	for _, err := range r.Errors {
		if err != nil {
			parts = append(parts, err.Error())
		}
	}
	return strings.Join(parts, "; ")
}

type Cascade struct {
	videos  video.Searcher
	finder  storefront.LinkFinder
	scraper storefront.PageScraper
	logger  *logger.Logger
}

func NewCascade(videos video.Searcher, finder storefront.LinkFinder, scraper storefront.PageScraper, log *logger.Logger) *Cascade {
	if finder == nil {
		finder = storefront.NopFinder{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Cascade{
		videos:  videos,
		finder:  finder,
		scraper: scraper,
		logger:  log.WithComponent("cascade"),
	}
}

// Run matches every track of a release. Each track stops at the first
// source that yields a candidate: catalog-embedded videos, then the
// storefront page, then keyword search. Quota and fatal provider errors abort
// the run; anything else is recorded against the track.
func (c *Cascade) Run(ctx context.Context, detail *domain.ReleaseDetail, tracks []domain.Track) (*Result, error) {
	res := &Result{
		Candidates: make([][]domain.Candidate, len(tracks)),
		Errors:     make([]error, len(tracks)),
	}
	if len(tracks) == 0 {
		return res, nil
	}
	log := c.logger.WithRelease(detail.ID, detail.Title)

	titles := make([]string, len(tracks))
	for i, t := range tracks {
		titles[i] = t.Title
	}

	for _, p := range c.catalogPairs(detail, titles) {
		v := detail.Videos[p.Candidate]
		res.Candidates[p.Track] = append(res.Candidates[p.Track], domain.Candidate{
			VideoID:    v.VideoID,
			Title:      v.Title,
			Source:     domain.SourceCatalog,
			Score:      p.Score,
			Embeddable: v.Embeddable,
		})
	}

	if res.Weak() > 0 {
		c.storefrontStage(ctx, log, detail, titles, res)
	}

	for i, t := range tracks {
		if len(res.Candidates[i]) > 0 {
			continue
		}
		cands, err := SearchTrack(ctx, c.videos, t, detail.LabelName, detail.CatalogNumber)
		if err != nil {
			if Aborts(err) || ctx.Err() != nil {
				return nil, err
			}
			log.Warn("Track search failed", "track_id", t.ID, "error", err)
			res.Errors[i] = fmt.Errorf("%s: %w", t.Title, err)
			continue
		}
		res.Candidates[i] = cands
	}

	log.Debug("Cascade finished", "tracks", len(tracks), "matched", res.Matched())
	return res, nil
}

func (c *Cascade) catalogPairs(detail *domain.ReleaseDetail, titles []string) []Pair {
	var pairs []Pair
	for ti, title := range titles {
		for vi, v := range detail.Videos {
			if v.VideoID == "" {
				continue
			}
			pairs = append(pairs, Pair{Track: ti, Candidate: vi, Score: ScoreTitle(title, v.Title)})
		}
	}
	return AssignGreedy(pairs, constants.CatalogScoreThreshold)
}

func (c *Cascade) storefrontStage(ctx context.Context, log *logger.Logger, detail *domain.ReleaseDetail, titles []string, res *Result) {
	if c.scraper == nil {
		return
	}
	pageURL, ok := c.finder.FindPage(ctx, detail)
	if !ok {
		return
	}
	entries, err := c.scraper.Scrape(ctx, pageURL)
	if err != nil {
		log.Warn("Storefront scrape failed", "url", pageURL, "error", err)
		return
	}

	open := make([]string, len(titles))
	for i, title := range titles {
		if len(res.Candidates[i]) == 0 {
			open[i] = title
		}
	}
	for _, e := range entries {
		idx, _ := BestTrack(open, e.Title, constants.CatalogScoreThreshold)
		if idx < 0 {
			continue
		}
		res.Candidates[idx] = append(res.Candidates[idx], domain.Candidate{
			VideoID:    e.VideoID,
			Title:      e.Title,
			Source:     domain.SourceStorefront,
			Score:      constants.StorefrontScore,
			Embeddable: true,
		})
	}
}

// TrackQuery builds the keyword query for a track.
func TrackQuery(track domain.Track, labelName, catalogNumber string) string {
	parts := []string{track.Artist, track.Title, labelName, catalogNumber}
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// SearchTrack runs a keyword search for one track and returns positively
// scored results, best first.
func SearchTrack(ctx context.Context, videos video.Searcher, track domain.Track, labelName, catalogNumber string) ([]domain.Candidate, error) {
	if videos == nil {
		return nil, nil
	}
	query := TrackQuery(track, labelName, catalogNumber)
	results, err := videos.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	var cands []domain.Candidate
	for _, r := range results {
		score := video.ScoreMatch(query, r.Title)
		if score <= 0 {
			continue
		}
		cands = append(cands, domain.Candidate{
			VideoID:    r.VideoID,
			Title:      r.Title,
			Channel:    r.Channel,
			Source:     domain.SourceSearch,
			Score:      score,
			Embeddable: r.Embeddable,
		})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})
	return domain.DedupCandidates(cands), nil
}

// ReleaseVideoCandidates offers every embedded catalog video of a release as
// a low-confidence candidate.
func ReleaseVideoCandidates(detail *domain.ReleaseDetail) []domain.Candidate {
	var cands []domain.Candidate
	for _, v := range detail.Videos {
		cands = append(cands, domain.Candidate{
			VideoID:    v.VideoID,
			Title:      v.Title,
			Source:     domain.SourceReleaseVideo,
			Score:      constants.ReleaseVideoScore,
			Embeddable: v.Embeddable,
		})
	}
	return domain.DedupCandidates(cands)
}

// Aborts reports whether err must stop matching instead of being recorded
// as a weak track: quota exhaustion or a fatal credential problem.
func Aborts(err error) bool {
	return gateway.IsQuota(err) || gateway.IsFatal(err)
}
