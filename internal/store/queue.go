package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/cratedigger/internal/domain"
)

const queueColumns = `owner_id, id, video_id, title, track_id, release_id, label_id, source, priority, status, added_at`

// EnqueueItem inserts a pending queue item. When an equivalent pending item
// already exists (same track and video, or same release for release-level
// items) nothing is written, the existing item is returned and inserted is false.
func (s *Scope) EnqueueItem(item *domain.QueueItem) (existing *domain.QueueItem, inserted bool, err error) {
	item.OwnerID = s.owner
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.Status = domain.QueueStatusPending
	if item.Priority == 0 {
		item.Priority = item.Source.Priority()
	}
	item.AddedAt = time.Now().UTC()

	query := `INSERT OR IGNORE INTO queue_items (` + queueColumns + `)
		VALUES (:owner_id, :id, :video_id, :title, :track_id, :release_id, :label_id, :source, :priority, :status, :added_at)`

	res, err := s.db.NamedExec(query, item)
	if err != nil {
		return nil, false, fmt.Errorf("failed to enqueue: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if n > 0 {
		return item, true, nil
	}

	if item.TrackID != nil {
		existing, err = s.findPendingTrackItem(*item.TrackID, item.VideoID)
	} else if item.ReleaseID != nil {
		existing, err = s.PendingReleaseItem(*item.ReleaseID)
	}
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *Scope) findPendingTrackItem(trackID, videoID string) (*domain.QueueItem, error) {
	query := `SELECT ` + queueColumns + ` FROM queue_items
		WHERE owner_id = ? AND track_id = ? AND video_id = ? AND status = 'pending'`

	item := &domain.QueueItem{}
	err := s.db.Get(item, query, s.owner, trackID, videoID)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// PendingReleaseItem returns the pending release-level item (no track) for
// a release, if any.
func (s *Scope) PendingReleaseItem(releaseID string) (*domain.QueueItem, error) {
	query := `SELECT ` + queueColumns + ` FROM queue_items
		WHERE owner_id = ? AND release_id = ? AND track_id IS NULL AND status = 'pending'`

	item := &domain.QueueItem{}
	err := s.db.Get(item, query, s.owner, releaseID)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Scope) GetQueueItem(id string) (*domain.QueueItem, error) {
	query := `SELECT ` + queueColumns + ` FROM queue_items WHERE owner_id = ? AND id = ?`

	item := &domain.QueueItem{}
	err := s.db.Get(item, query, s.owner, id)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListQueue returns items with the given status, highest priority first.
func (s *Scope) ListQueue(status domain.QueueStatus, limit int) ([]*domain.QueueItem, error) {
	query := `SELECT ` + queueColumns + ` FROM queue_items
		WHERE owner_id = ? AND status = ?
		ORDER BY priority DESC, added_at ASC, rowid ASC LIMIT ?`

	var items []*domain.QueueItem
	err := s.db.Select(&items, query, s.owner, status, limit)
	return items, err
}

func (s *Scope) MarkPlayed(ctx context.Context, id string) (*domain.QueueItem, error) {
	var out *domain.QueueItem
	err := s.RunInTx(ctx, func(tx *Scope) error {
		item, err := tx.GetQueueItem(id)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("queue item %s: %w", id, ErrNotFound)
		}
		next, err := item.Status.Transition(domain.QueueStatusPlayed)
		if err != nil {
			return err
		}
		if _, err := tx.db.Exec(`UPDATE queue_items SET status = ? WHERE owner_id = ? AND id = ?`, next, s.owner, id); err != nil {
			return fmt.Errorf("failed to mark played: %w", err)
		}
		item.Status = next
		out = item
		return nil
	})
	return out, err
}
