package store

import (
	"fmt"
	"time"

	"github.com/cesargomez89/cratedigger/internal/domain"
)

const releaseColumns = `owner_id, id, label_id, title, artist, catalog_number, artwork_url, year, status,
	genres, styles, contributors, release_order, match_confidence, youtube_matched, processing_error,
	created_at, updated_at`

// InsertReleases adds listing rows that are not yet known. Existing rows
// are left untouched. It returns how many rows were new.
func (s *Scope) InsertReleases(releases []*domain.Release) (int, error) {
	query := `INSERT OR IGNORE INTO releases (` + releaseColumns + `)
		VALUES (:owner_id, :id, :label_id, :title, :artist, :catalog_number, :artwork_url, :year, :status,
			:genres, :styles, :contributors, :release_order, :match_confidence, :youtube_matched, :processing_error,
			:created_at, :updated_at)`

	now := time.Now().UTC()
	inserted := 0
	for _, r := range releases {
		r.OwnerID = s.owner
		if r.Status == "" {
			r.Status = domain.ReleaseStatusPending
		}
		r.CreatedAt = now
		r.UpdatedAt = now

		res, err := s.db.NamedExec(query, r)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert release %s: %w", r.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (s *Scope) GetRelease(id string) (*domain.Release, error) {
	query := `SELECT ` + releaseColumns + ` FROM releases WHERE owner_id = ? AND id = ?`

	release := &domain.Release{}
	err := s.db.Get(release, query, s.owner, id)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return release, nil
}

// NextPendingRelease returns the label's oldest release whose details have
// not been processed yet.
func (s *Scope) NextPendingRelease(labelID string) (*domain.Release, error) {
	query := `SELECT ` + releaseColumns + ` FROM releases
		WHERE owner_id = ? AND label_id = ? AND status = ?
		ORDER BY release_order ASC, created_at ASC LIMIT 1`

	release := &domain.Release{}
	err := s.db.Get(release, query, s.owner, labelID, domain.ReleaseStatusPending)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return release, nil
}

func (s *Scope) CountReleases(labelID string, status domain.ReleaseStatus) (int, error) {
	var n int
	err := s.db.Get(&n, `SELECT COUNT(*) FROM releases WHERE owner_id = ? AND label_id = ? AND status = ?`,
		s.owner, labelID, status)
	return n, err
}

// UpdateRelease persists detail metadata, status and match summary.
func (s *Scope) UpdateRelease(release *domain.Release) error {
	release.OwnerID = s.owner
	release.UpdatedAt = time.Now().UTC()

	query := `UPDATE releases SET
		title = :title, artist = :artist, catalog_number = :catalog_number, artwork_url = :artwork_url,
		year = :year, status = :status, genres = :genres, styles = :styles, contributors = :contributors,
		match_confidence = :match_confidence, youtube_matched = :youtube_matched,
		processing_error = :processing_error, updated_at = :updated_at
	WHERE owner_id = :owner_id AND id = :id`

	res, err := s.db.NamedExec(query, release)
	if err != nil {
		return fmt.Errorf("failed to update release: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("release %s: %w", release.ID, ErrNotFound)
	}
	return nil
}
