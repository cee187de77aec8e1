package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cesargomez89/cratedigger/internal/catalog"
	"github.com/cesargomez89/cratedigger/internal/constants"
	"github.com/cesargomez89/cratedigger/internal/domain"
	"github.com/cesargomez89/cratedigger/internal/gateway"
	"github.com/cesargomez89/cratedigger/internal/logger"
	"github.com/cesargomez89/cratedigger/internal/match"
	"github.com/cesargomez89/cratedigger/internal/store"
)

type StepOutcome string

const (
	OutcomeNotFound       StepOutcome = "not_found"
	OutcomeInactive       StepOutcome = "inactive"
	OutcomeFetchedPage    StepOutcome = "fetched_page"
	OutcomeProcessed      StepOutcome = "processed_release"
	OutcomeSkippedRelease StepOutcome = "skipped_release"
	OutcomeComplete       StepOutcome = "complete"
	OutcomeError          StepOutcome = "error"
	OutcomeBusy           StepOutcome = "busy"
)

// StepResult reports what one AdvanceLabel call did.
type StepResult struct {
	Done    bool        `json:"done"`
	Message string      `json:"message"`
	Outcome StepOutcome `json:"outcome"`
}

// Crawler advances one label by a single unit of work per call: one
// release detail or one listing page.
type Crawler struct {
	Repo      *store.DB
	Catalog   catalog.Provider
	Cascade   *match.Cascade
	Escalator *Escalator
	Logger    *logger.Logger
	PageSize  int

	inflight sync.Map // owner/label -> struct{}
}

func NewCrawler(repo *store.DB, cat catalog.Provider, cascade *match.Cascade, escalator *Escalator, log *logger.Logger) *Crawler {
	return &Crawler{
		Repo:      repo,
		Catalog:   cat,
		Cascade:   cascade,
		Escalator: escalator,
		Logger:    log.WithComponent("crawler"),
		PageSize:  constants.DefaultPageSize,
	}
}

// AdvanceLabel performs one step for the label. Failures are recorded on
// the label and reported in the result; the returned error is non-nil only
// when the failure was a quota or fatal provider error, or when the failure
// itself could not be recorded. At most one step per label runs at a time;
// an overlapping call returns a busy result without doing any work.
func (c *Crawler) AdvanceLabel(ctx context.Context, ownerID, labelID string) (*StepResult, error) {
	key := ownerID + "/" + labelID
	if _, running := c.inflight.LoadOrStore(key, struct{}{}); running {
		return &StepResult{Done: false, Message: "step already in progress", Outcome: OutcomeBusy}, nil
	}
	defer c.inflight.Delete(key)

	scope := c.Repo.Scope(ownerID)
	ctx = gateway.WithIdentity(ctx, ownerID)
	log := c.Logger.WithLabel(ownerID, labelID)

	label, err := scope.GetLabel(labelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get label: %w", err)
	}
	if label == nil {
		return &StepResult{Done: true, Message: "label not found", Outcome: OutcomeNotFound}, nil
	}
	if held(label) {
		return &StepResult{Done: true, Message: "label inactive", Outcome: OutcomeInactive}, nil
	}
	if label.Status == domain.LabelStatusComplete {
		return &StepResult{Done: true, Message: "complete", Outcome: OutcomeComplete}, nil
	}

	result, err := c.step(ctx, scope, label, log)
	if err == nil {
		return result, nil
	}

	log.Error("Step failed", "error", err)
	if recErr := c.recordFailure(context.WithoutCancel(ctx), scope, labelID, err); recErr != nil {
		return nil, fmt.Errorf("failed to record step failure (%v): %w", err, recErr)
	}
	result = &StepResult{Done: false, Message: "error: " + err.Error(), Outcome: OutcomeError}
	if match.Aborts(err) {
		return result, err
	}
	return result, nil
}

func (c *Crawler) step(ctx context.Context, scope *store.Scope, label *domain.Label, log *logger.Logger) (*StepResult, error) {
	release, err := scope.NextPendingRelease(label.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending release: %w", err)
	}
	if release != nil {
		return c.processRelease(ctx, scope, label, release, log)
	}

	if label.HasMorePages() {
		return c.fetchPage(ctx, scope, label, log)
	}

	err = scope.RunInTx(ctx, func(tx *store.Scope) error {
		return commitLabel(tx, label.ID, domain.LabelStatusComplete, nil)
	})
	if err != nil {
		return nil, err
	}
	log.Info("Label complete", "pages", label.TotalPages)
	return &StepResult{Done: true, Message: "complete", Outcome: OutcomeComplete}, nil
}

func (c *Crawler) fetchPage(ctx context.Context, scope *store.Scope, label *domain.Label, log *logger.Logger) (*StepResult, error) {
	pageNum := label.CurrentPage
	if pageNum < 1 {
		pageNum = 1
	}
	page, err := c.Catalog.LabelReleases(ctx, label.ID, pageNum, c.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", pageNum, err)
	}

	releases := make([]*domain.Release, 0, len(page.Releases))
	for i, r := range page.Releases {
		releases = append(releases, &domain.Release{
			ID:            r.ID,
			LabelID:       label.ID,
			Title:         r.Title,
			Artist:        r.Artist,
			CatalogNumber: r.CatalogNumber,
			ArtworkURL:    r.ArtworkURL,
			Year:          r.Year,
			Status:        domain.ReleaseStatusPending,
			ReleaseOrder:  domain.ReleaseOrder(pageNum, i, c.PageSize),
		})
	}

	inserted := 0
	err = scope.RunInTx(ctx, func(tx *store.Scope) error {
		n, err := tx.InsertReleases(releases)
		if err != nil {
			return err
		}
		inserted = n
		return commitLabel(tx, label.ID, domain.LabelStatusProcessing, func(l *domain.Label) {
			l.CurrentPage = pageNum + 1
			l.TotalPages = page.Pages
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info("Fetched label page", "page", pageNum, "pages", page.Pages, "new_releases", inserted)
	return &StepResult{
		Done:    false,
		Message: fmt.Sprintf("fetching: page %d/%d, %d new releases", pageNum, page.Pages, inserted),
		Outcome: OutcomeFetchedPage,
	}, nil
}

func (c *Crawler) processRelease(ctx context.Context, scope *store.Scope, label *domain.Label, release *domain.Release, log *logger.Logger) (*StepResult, error) {
	log = log.WithRelease(release.ID, release.Title)

	detail, err := c.Catalog.Release(ctx, release.ID)
	if errors.Is(err, catalog.ErrNotFound) {
		return c.skipRelease(ctx, scope, release, log)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release %s: %w", release.ID, err)
	}

	tracks := detail.BuildTracks(scope.OwnerID())
	res, err := c.Cascade.Run(ctx, detail, tracks)
	if err != nil {
		return nil, fmt.Errorf("matching release %s: %w", release.ID, err)
	}

	var fallback *domain.Candidate
	if LooksWeak(len(tracks), res.Weak()) && c.Escalator != nil {
		fallback, err = c.Escalator.Fallback(ctx, detail)
		if err != nil {
			if match.Aborts(err) {
				return nil, fmt.Errorf("fallback for release %s: %w", release.ID, err)
			}
			log.Warn("Release fallback search failed", "error", err)
			fallback = nil
		}
	}

	nextRelease, err := release.Status.Transition(domain.ReleaseStatusFetched)
	if err != nil {
		return nil, err
	}

	matched := res.Matched()
	queued := 0
	err = scope.RunInTx(ctx, func(tx *store.Scope) error {
		if err := tx.ReplaceTracks(ctx, release.ID, tracks); err != nil {
			return err
		}
		for i, t := range tracks {
			if len(res.Candidates[i]) == 0 {
				continue
			}
			matches, err := tx.ReplaceMatches(ctx, t.ID, res.Candidates[i])
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				continue
			}
			top := matches[0]
			_, inserted, err := tx.EnqueueItem(&domain.QueueItem{
				TrackID:   strPtr(t.ID),
				ReleaseID: strPtr(release.ID),
				LabelID:   strPtr(label.ID),
				VideoID:   top.VideoID,
				Title:     displayTitle(t.Artist, t.Title),
				Source:    top.Source,
			})
			if err != nil {
				return err
			}
			if inserted {
				queued++
			}
		}

		if fallback != nil {
			pending, err := tx.PendingReleaseItem(release.ID)
			if err != nil {
				return err
			}
			if pending == nil {
				if _, _, err := tx.EnqueueItem(&domain.QueueItem{
					ReleaseID: strPtr(release.ID),
					LabelID:   strPtr(label.ID),
					VideoID:   fallback.VideoID,
					Title:     displayTitle(detail.Artist, detail.Title),
					Source:    domain.SourceReleaseFallback,
				}); err != nil {
					return err
				}
				log.Info("Queued release fallback", "video_id", fallback.VideoID)
			}
		}

		applyDetail(release, detail)
		release.Status = nextRelease
		release.MatchConfidence = 0
		if len(tracks) > 0 {
			release.MatchConfidence = float64(matched) / float64(len(tracks))
		}
		release.YoutubeMatched = matched > 0
		release.ProcessingError = nil
		if summary := res.ErrorSummary(); summary != "" {
			release.ProcessingError = strPtr(truncate(summary, constants.MaxLastErrorLength))
		}
		if err := tx.UpdateRelease(release); err != nil {
			return err
		}

		return commitLabel(tx, label.ID, domain.LabelStatusProcessing, nil)
	})
	if err != nil {
		return nil, err
	}

	log.Info("Processed release", "tracks", len(tracks), "matched", matched, "queued", queued)
	return &StepResult{
		Done:    false,
		Message: fmt.Sprintf("processed release %s: %d/%d tracks matched", release.ID, matched, len(tracks)),
		Outcome: OutcomeProcessed,
	}, nil
}

// skipRelease marks a release the catalog no longer knows as failed so the
// crawl moves past it.
func (c *Crawler) skipRelease(ctx context.Context, scope *store.Scope, release *domain.Release, log *logger.Logger) (*StepResult, error) {
	next, err := release.Status.Transition(domain.ReleaseStatusFailed)
	if err != nil {
		return nil, err
	}
	err = scope.RunInTx(ctx, func(tx *store.Scope) error {
		release.Status = next
		release.ProcessingError = strPtr("release not found in catalog")
		if err := tx.UpdateRelease(release); err != nil {
			return err
		}
		return commitLabel(tx, release.LabelID, domain.LabelStatusProcessing, nil)
	})
	if err != nil {
		return nil, err
	}
	log.Warn("Release not found, skipped")
	return &StepResult{
		Done:    false,
		Message: fmt.Sprintf("skipped release %s: not found", release.ID),
		Outcome: OutcomeSkippedRelease,
	}, nil
}

// commitLabel re-reads the label inside tx and saves its crawl state, moving
// it to next. A label paused or deactivated while the step ran keeps its
// status; only the cursor changes in fn are applied.
func commitLabel(tx *store.Scope, labelID string, next domain.LabelStatus, fn func(*domain.Label)) error {
	label, err := tx.GetLabel(labelID)
	if err != nil {
		return err
	}
	if label == nil {
		return fmt.Errorf("label %s: %w", labelID, store.ErrNotFound)
	}
	if !held(label) {
		status, err := label.Status.Transition(next)
		if err != nil {
			return err
		}
		label.Status = status
	}
	label.LastError = nil
	if fn != nil {
		fn(label)
	}
	return tx.SaveCrawlState(label)
}

func (c *Crawler) recordFailure(ctx context.Context, scope *store.Scope, labelID string, cause error) error {
	return scope.RunInTx(ctx, func(tx *store.Scope) error {
		label, err := tx.GetLabel(labelID)
		if err != nil {
			return err
		}
		if label == nil {
			return nil
		}
		if !held(label) {
			next, err := label.Status.Transition(domain.LabelStatusError)
			if err != nil {
				return err
			}
			label.Status = next
			label.RetryCount++
		}
		label.LastError = strPtr(truncate(cause.Error(), constants.MaxLastErrorLength))
		return tx.SaveCrawlState(label)
	})
}

// held reports whether an operator has taken the label out of the crawl.
func held(label *domain.Label) bool {
	return !label.Active || label.Status == domain.LabelStatusPaused
}

func applyDetail(release *domain.Release, detail *domain.ReleaseDetail) {
	if detail.Title != "" {
		release.Title = detail.Title
	}
	if detail.Artist != "" {
		release.Artist = detail.Artist
	}
	if detail.CatalogNumber != "" {
		release.CatalogNumber = detail.CatalogNumber
	}
	if detail.ArtworkURL != "" {
		release.ArtworkURL = detail.ArtworkURL
	}
	if detail.Year > 0 {
		release.Year = detail.Year
	}
	release.Genres = detail.Genres
	release.Styles = detail.Styles
	release.Contributors = detail.Contributors
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func displayTitle(artist, title string) string {
	if artist == "" {
		return title
	}
	return artist + " - " + title
}

func strPtr(s string) *string {
	return &s
}
