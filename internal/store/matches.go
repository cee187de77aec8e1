package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/cratedigger/internal/domain"
)

const matchColumns = `owner_id, id, track_id, video_id, title, channel, source, score, match_rank, embeddable, chosen, fetched_at`

// ReplaceMatches swaps a track's candidate set for the given ranked list.
// Candidates are deduplicated by video id and the first one is chosen.
func (s *Scope) ReplaceMatches(ctx context.Context, trackID string, candidates []domain.Candidate) ([]*domain.VideoMatch, error) {
	candidates = domain.DedupCandidates(candidates)
	now := time.Now().UTC()

	matches := make([]*domain.VideoMatch, 0, len(candidates))
	err := s.RunInTx(ctx, func(tx *Scope) error {
		if _, err := tx.db.Exec(`DELETE FROM video_matches WHERE owner_id = ? AND track_id = ?`, s.owner, trackID); err != nil {
			return fmt.Errorf("failed to delete matches: %w", err)
		}

		query := `INSERT INTO video_matches (` + matchColumns + `)
			VALUES (:owner_id, :id, :track_id, :video_id, :title, :channel, :source, :score, :match_rank, :embeddable, :chosen, :fetched_at)`
		for i, c := range candidates {
			m := &domain.VideoMatch{
				FetchedAt:  now,
				OwnerID:    s.owner,
				ID:         uuid.New().String(),
				TrackID:    trackID,
				VideoID:    c.VideoID,
				Title:      c.Title,
				Channel:    c.Channel,
				Source:     c.Source,
				Score:      c.Score,
				Rank:       i,
				Embeddable: c.Embeddable,
				Chosen:     i == 0,
			}
			if _, err := tx.db.NamedExec(query, m); err != nil {
				return fmt.Errorf("failed to insert match: %w", err)
			}
			matches = append(matches, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *Scope) ListMatches(trackID string) ([]*domain.VideoMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM video_matches WHERE owner_id = ? AND track_id = ? ORDER BY match_rank ASC`

	var matches []*domain.VideoMatch
	err := s.db.Select(&matches, query, s.owner, trackID)
	return matches, err
}

func (s *Scope) GetMatch(trackID, matchID string) (*domain.VideoMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM video_matches WHERE owner_id = ? AND track_id = ? AND id = ?`

	match := &domain.VideoMatch{}
	err := s.db.Get(match, query, s.owner, trackID, matchID)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (s *Scope) GetChosenMatch(trackID string) (*domain.VideoMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM video_matches WHERE owner_id = ? AND track_id = ? AND chosen = 1`

	match := &domain.VideoMatch{}
	err := s.db.Get(match, query, s.owner, trackID)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return match, nil
}

// ChooseMatch makes matchID the track's chosen match, un-choosing the
// previous one in the same transaction.
func (s *Scope) ChooseMatch(ctx context.Context, trackID, matchID string) error {
	return s.RunInTx(ctx, func(tx *Scope) error {
		match, err := tx.GetMatch(trackID, matchID)
		if err != nil {
			return err
		}
		if match == nil {
			return fmt.Errorf("match %s for track %s: %w", matchID, trackID, ErrNotFound)
		}
		if match.Chosen {
			return nil
		}

		if _, err := tx.db.Exec(`UPDATE video_matches SET chosen = 0 WHERE owner_id = ? AND track_id = ? AND chosen = 1`,
			s.owner, trackID); err != nil {
			return fmt.Errorf("failed to clear chosen match: %w", err)
		}
		if _, err := tx.db.Exec(`UPDATE video_matches SET chosen = 1 WHERE owner_id = ? AND id = ?`,
			s.owner, matchID); err != nil {
			return fmt.Errorf("failed to choose match: %w", err)
		}
		return nil
	})
}
