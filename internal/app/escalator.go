package app

import (
	"context"
	"math"
	"strings"

	"github.com/cesargomez89/cratedigger/internal/constants"
	"github.com/cesargomez89/cratedigger/internal/domain"
	"github.com/cesargomez89/cratedigger/internal/match"
	"github.com/cesargomez89/cratedigger/internal/video"
)

// LooksWeak reports whether enough tracks went unmatched that the release
// deserves a release-level fallback video.
func LooksWeak(total, weak int) bool {
	if total <= 0 {
		return false
	}
	need := int(math.Ceil(float64(total) * constants.WeakRatio))
	if need < constants.WeakMinimum {
		need = constants.WeakMinimum
	}
	return weak >= need
}

// Escalator looks for a single video covering the whole release.
type Escalator struct {
	videos video.Searcher
}

func NewEscalator(videos video.Searcher) *Escalator {
	return &Escalator{videos: videos}
}

// Fallback returns an embedded catalog video when the release has one,
// otherwise the first "<artist> <title> full album" search result. It
// returns nil when neither source has anything.
func (e *Escalator) Fallback(ctx context.Context, detail *domain.ReleaseDetail) (*domain.Candidate, error) {
	if cands := match.ReleaseVideoCandidates(detail); len(cands) > 0 {
		c := cands[0]
		c.Source = domain.SourceReleaseFallback
		return &c, nil
	}
	if e.videos == nil {
		return nil, nil
	}

	query := strings.TrimSpace(strings.Join([]string{detail.Artist, detail.Title, "full album"}, " "))
	results, err := e.videos.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	r := results[0]
	return &domain.Candidate{
		VideoID:    r.VideoID,
		Title:      r.Title,
		Channel:    r.Channel,
		Source:     domain.SourceReleaseFallback,
		Score:      constants.ReleaseVideoScore,
		Embeddable: r.Embeddable,
	}, nil
}
