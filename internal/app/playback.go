package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/cesargomez89/cratedigger/internal/catalog"
	"github.com/cesargomez89/cratedigger/internal/domain"
	"github.com/cesargomez89/cratedigger/internal/gateway"
	"github.com/cesargomez89/cratedigger/internal/logger"
	"github.com/cesargomez89/cratedigger/internal/match"
	"github.com/cesargomez89/cratedigger/internal/store"
	"github.com/cesargomez89/cratedigger/internal/video"
)

// EnqueueReason explains why an on-demand enqueue produced no item.
type EnqueueReason string

const (
	ReasonNoMatch       EnqueueReason = "no_match"
	ReasonQuotaExceeded EnqueueReason = "quota_exceeded"
	ReasonNotFound      EnqueueReason = "not_found"
)

type EnqueueResult struct {
	Item    *domain.QueueItem `json:"item,omitempty"`
	Reason  EnqueueReason     `json:"reason,omitempty"`
	Created bool              `json:"created"`
}

type PlaybackService struct {
	Repo    *store.DB
	Catalog catalog.Provider
	Videos  video.Searcher
	Logger  *logger.Logger
}

func NewPlaybackService(repo *store.DB, cat catalog.Provider, videos video.Searcher, log *logger.Logger) *PlaybackService {
	return &PlaybackService{
		Repo:    repo,
		Catalog: cat,
		Videos:  videos,
		Logger:  log.WithComponent("playback"),
	}
}

// ChooseMatch makes matchID the chosen video for the track.
func (s *PlaybackService) ChooseMatch(ctx context.Context, ownerID, trackID, matchID string) (*domain.VideoMatch, error) {
	scope := s.Repo.Scope(ownerID)
	if err := scope.ChooseMatch(ctx, trackID, matchID); err != nil {
		return nil, err
	}
	s.Logger.Info("Match chosen", "owner_id", ownerID, "track_id", trackID, "match_id", matchID)
	return scope.GetMatch(trackID, matchID)
}

func (s *PlaybackService) ListMatches(ownerID, trackID string) ([]*domain.VideoMatch, error) {
	return s.Repo.Scope(ownerID).ListMatches(trackID)
}

// EnqueueTrack queues a track for playback. An explicit matchID wins;
// otherwise the chosen match, then a fresh keyword search, then any
// embedded catalog video of the release.
func (s *PlaybackService) EnqueueTrack(ctx context.Context, ownerID, trackID, matchID string) (*EnqueueResult, error) {
	scope := s.Repo.Scope(ownerID)
	ctx = gateway.WithIdentity(ctx, ownerID)

	track, err := scope.GetTrack(trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	if track == nil {
		return &EnqueueResult{Reason: ReasonNotFound}, nil
	}
	log := s.Logger.WithTrack(track.ID, track.Title)

	if matchID != "" {
		m, err := scope.GetMatch(trackID, matchID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return &EnqueueResult{Reason: ReasonNotFound}, nil
		}
		if err := scope.ChooseMatch(ctx, trackID, matchID); err != nil {
			return nil, err
		}
		return s.enqueue(scope, track, m.VideoID, domain.SourceManual)
	}

	chosen, err := scope.GetChosenMatch(trackID)
	if err != nil {
		return nil, err
	}
	if chosen != nil {
		return s.enqueue(scope, track, chosen.VideoID, chosen.Source)
	}

	release, err := scope.GetRelease(track.ReleaseID)
	if err != nil {
		return nil, err
	}
	labelName, catalogNumber := "", ""
	if release != nil {
		catalogNumber = release.CatalogNumber
		if label, err := scope.GetLabel(release.LabelID); err == nil && label != nil {
			labelName = label.Name
		}
	}

	cands, err := match.SearchTrack(ctx, s.Videos, *track, labelName, catalogNumber)
	switch {
	case gateway.IsQuota(err):
		log.Warn("Search quota exhausted")
		return &EnqueueResult{Reason: ReasonQuotaExceeded}, nil
	case gateway.IsFatal(err):
		return nil, err
	case err != nil:
		log.Warn("On-demand search failed", "error", err)
	case len(cands) > 0:
		return s.persistAndEnqueue(ctx, scope, track, cands)
	}

	if s.Catalog != nil {
		detail, err := s.Catalog.Release(ctx, track.ReleaseID)
		switch {
		case gateway.IsQuota(err):
			return &EnqueueResult{Reason: ReasonQuotaExceeded}, nil
		case errors.Is(err, catalog.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			if cands := match.ReleaseVideoCandidates(detail); len(cands) > 0 {
				return s.persistAndEnqueue(ctx, scope, track, cands)
			}
		}
	}

	log.Info("No match for track")
	return &EnqueueResult{Reason: ReasonNoMatch}, nil
}

func (s *PlaybackService) persistAndEnqueue(ctx context.Context, scope *store.Scope, track *domain.Track, cands []domain.Candidate) (*EnqueueResult, error) {
	var result *EnqueueResult
	err := scope.RunInTx(ctx, func(tx *store.Scope) error {
		matches, err := tx.ReplaceMatches(ctx, track.ID, cands)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			result = &EnqueueResult{Reason: ReasonNoMatch}
			return nil
		}
		result, err = s.enqueue(tx, track, matches[0].VideoID, matches[0].Source)
		return err
	})
	return result, err
}

func (s *PlaybackService) enqueue(scope *store.Scope, track *domain.Track, videoID string, source domain.MatchSource) (*EnqueueResult, error) {
	release, err := scope.GetRelease(track.ReleaseID)
	if err != nil {
		return nil, err
	}
	item := &domain.QueueItem{
		TrackID:   strPtr(track.ID),
		ReleaseID: strPtr(track.ReleaseID),
		VideoID:   videoID,
		Title:     displayTitle(track.Artist, track.Title),
		Source:    source,
	}
	if release != nil {
		item.LabelID = strPtr(release.LabelID)
	}

	existing, inserted, err := scope.EnqueueItem(item)
	if err != nil {
		return nil, err
	}
	if inserted {
		s.Logger.Info("Track queued", "owner_id", scope.OwnerID(), "track_id", track.ID, "video_id", videoID, "source", source)
	}
	return &EnqueueResult{Item: existing, Created: inserted}, nil
}

func (s *PlaybackService) ListQueue(ownerID string, status domain.QueueStatus, limit int) ([]*domain.QueueItem, error) {
	if status == "" {
		status = domain.QueueStatusPending
	}
	return s.Repo.Scope(ownerID).ListQueue(status, limit)
}

func (s *PlaybackService) MarkPlayed(ctx context.Context, ownerID, itemID string) (*domain.QueueItem, error) {
	return s.Repo.Scope(ownerID).MarkPlayed(ctx, itemID)
}
