package store

import (
	"context"
	"fmt"

	"github.com/cesargomez89/cratedigger/internal/domain"
)

const trackColumns = `owner_id, id, release_id, track_index, position, title, duration, artist, listened, saved`

// ReplaceTracks deletes a release's tracks (and their matches) and inserts
// the given set. Listened/saved flags survive for tracks whose id is kept.
func (s *Scope) ReplaceTracks(ctx context.Context, releaseID string, tracks []domain.Track) error {
	return s.RunInTx(ctx, func(tx *Scope) error {
		existing, err := tx.ListTracks(releaseID)
		if err != nil {
			return err
		}
		flags := make(map[string]*domain.Track, len(existing))
		for _, t := range existing {
			flags[t.ID] = t
		}

		if _, err := tx.db.Exec(`DELETE FROM video_matches WHERE owner_id = ? AND track_id IN
			(SELECT id FROM tracks WHERE owner_id = ? AND release_id = ?)`, s.owner, s.owner, releaseID); err != nil {
			return fmt.Errorf("failed to delete matches: %w", err)
		}
		if _, err := tx.db.Exec(`DELETE FROM tracks WHERE owner_id = ? AND release_id = ?`, s.owner, releaseID); err != nil {
			return fmt.Errorf("failed to delete tracks: %w", err)
		}

		query := `INSERT INTO tracks (` + trackColumns + `)
			VALUES (:owner_id, :id, :release_id, :track_index, :position, :title, :duration, :artist, :listened, :saved)`
		for i := range tracks {
			t := tracks[i]
			t.OwnerID = s.owner
			t.ReleaseID = releaseID
			if old, ok := flags[t.ID]; ok {
				t.Listened = old.Listened
				t.Saved = old.Saved
			}
			if _, err := tx.db.NamedExec(query, &t); err != nil {
				return fmt.Errorf("failed to insert track %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

func (s *Scope) ListTracks(releaseID string) ([]*domain.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE owner_id = ? AND release_id = ? ORDER BY track_index ASC`

	var tracks []*domain.Track
	err := s.db.Select(&tracks, query, s.owner, releaseID)
	return tracks, err
}

func (s *Scope) GetTrack(id string) (*domain.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE owner_id = ? AND id = ?`

	track := &domain.Track{}
	err := s.db.Get(track, query, s.owner, id)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return track, nil
}

func (s *Scope) SetTrackFlags(id string, listened, saved bool) error {
	res, err := s.db.Exec(`UPDATE tracks SET listened = ?, saved = ? WHERE owner_id = ? AND id = ?`,
		listened, saved, s.owner, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("track %s: %w", id, ErrNotFound)
	}
	return nil
}
