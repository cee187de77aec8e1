package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cesargomez89/cratedigger/internal/domain"
)

const labelColumns = `owner_id, id, name, source_url, active, status, current_page, total_pages,
	retry_count, last_error, created_at, updated_at`

func (s *Scope) CreateLabel(label *domain.Label) error {
	now := time.Now().UTC()
	label.OwnerID = s.owner
	label.CreatedAt = now
	label.UpdatedAt = now

	query := `INSERT OR IGNORE INTO labels (` + labelColumns + `)
		VALUES (:owner_id, :id, :name, :source_url, :active, :status, :current_page, :total_pages,
			:retry_count, :last_error, :created_at, :updated_at)`

	res, err := s.db.NamedExec(query, label)
	if err != nil {
		return fmt.Errorf("failed to create label: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("label %s: %w", label.ID, ErrConflict)
	}
	return nil
}

func (s *Scope) GetLabel(id string) (*domain.Label, error) {
	query := `SELECT ` + labelColumns + ` FROM labels WHERE owner_id = ? AND id = ?`

	label := &domain.Label{}
	err := s.db.Get(label, query, s.owner, id)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return label, nil
}

func (s *Scope) ListLabels() ([]*domain.Label, error) {
	query := `SELECT ` + labelColumns + ` FROM labels WHERE owner_id = ? ORDER BY created_at ASC, id ASC`

	var labels []*domain.Label
	err := s.db.Select(&labels, query, s.owner)
	return labels, err
}

// UpdateLabel persists the mutable label fields. The page cursor is clamped
// so it can never move backwards.
func (s *Scope) UpdateLabel(label *domain.Label) error {
	label.OwnerID = s.owner
	label.UpdatedAt = time.Now().UTC()

	query := `UPDATE labels SET
		name = :name, source_url = :source_url, active = :active, status = :status,
		current_page = MAX(current_page, :current_page), total_pages = :total_pages,
		retry_count = :retry_count, last_error = :last_error, updated_at = :updated_at
	WHERE owner_id = :owner_id AND id = :id`

	res, err := s.db.NamedExec(query, label)
	if err != nil {
		return fmt.Errorf("failed to update label: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("label %s: %w", label.ID, ErrNotFound)
	}
	return nil
}

// SaveCrawlState writes only the columns the crawler owns. Name, source URL
// and the active flag are left as stored.
func (s *Scope) SaveCrawlState(label *domain.Label) error {
	label.OwnerID = s.owner
	label.UpdatedAt = time.Now().UTC()

	query := `UPDATE labels SET
		status = :status, current_page = MAX(current_page, :current_page), total_pages = :total_pages,
		retry_count = :retry_count, last_error = :last_error, updated_at = :updated_at
	WHERE owner_id = :owner_id AND id = :id`

	res, err := s.db.NamedExec(query, label)
	if err != nil {
		return fmt.Errorf("failed to save crawl state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("label %s: %w", label.ID, ErrNotFound)
	}
	return nil
}

// DeleteLabel removes a label together with its releases, tracks, matches
// and queue items.
func (s *Scope) DeleteLabel(ctx context.Context, id string) error {
	return s.RunInTx(ctx, func(tx *Scope) error {
		releaseIDs := `SELECT id FROM releases WHERE owner_id = ? AND label_id = ?`
		trackIDs := `SELECT id FROM tracks WHERE owner_id = ? AND release_id IN (` + releaseIDs + `)`

		stmts := []struct {
			query string
			args  []interface{}
		}{
			{`DELETE FROM queue_items WHERE owner_id = ? AND (label_id = ? OR release_id IN (` + releaseIDs + `))`,
				[]interface{}{s.owner, id, s.owner, id}},
			{`DELETE FROM video_matches WHERE owner_id = ? AND track_id IN (` + trackIDs + `)`,
				[]interface{}{s.owner, s.owner, s.owner, id}},
			{`DELETE FROM tracks WHERE owner_id = ? AND release_id IN (` + releaseIDs + `)`,
				[]interface{}{s.owner, s.owner, id}},
			{`DELETE FROM releases WHERE owner_id = ? AND label_id = ?`,
				[]interface{}{s.owner, id}},
		}
		for _, st := range stmts {
			if _, err := tx.db.Exec(st.query, st.args...); err != nil {
				return fmt.Errorf("failed to delete label children: %w", err)
			}
		}

		res, err := tx.db.Exec(`DELETE FROM labels WHERE owner_id = ? AND id = ?`, s.owner, id)
		if err != nil {
			return fmt.Errorf("failed to delete label: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("label %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// ListCrawlableLabels returns active queued/processing labels across all
// owners, least recently touched first.
func (db *DB) ListCrawlableLabels(limit int) ([]*domain.Label, error) {
	query := `SELECT ` + labelColumns + ` FROM labels
		WHERE active = 1 AND status IN ('queued', 'processing')
		ORDER BY updated_at ASC, owner_id ASC, id ASC LIMIT ?`

	var labels []*domain.Label
	err := db.Select(&labels, query, limit)
	return labels, err
}

// ListErroredLabels returns labels in the error state across all owners.
func (db *DB) ListErroredLabels() ([]*domain.Label, error) {
	query := `SELECT ` + labelColumns + ` FROM labels WHERE status = 'error' ORDER BY updated_at ASC`

	var labels []*domain.Label
	err := db.Select(&labels, query)
	return labels, err
}
