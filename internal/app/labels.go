package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cesargomez89/cratedigger/internal/domain"
	"github.com/cesargomez89/cratedigger/internal/logger"
	"github.com/cesargomez89/cratedigger/internal/store"
)

var ErrInvalidInput = errors.New("invalid input")

type LabelService struct {
	Repo   *store.DB
	Logger *logger.Logger
}

func NewLabelService(repo *store.DB, log *logger.Logger) *LabelService {
	return &LabelService{Repo: repo, Logger: log.WithComponent("labels")}
}

// CreateLabel starts following a catalog label. The crawl begins at page 1.
func (s *LabelService) CreateLabel(ownerID, id, name, sourceURL string) (*domain.Label, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("label id is required: %w", ErrInvalidInput)
	}
	label := &domain.Label{
		ID:          id,
		Name:        strings.TrimSpace(name),
		SourceURL:   strings.TrimSpace(sourceURL),
		Status:      domain.LabelStatusQueued,
		CurrentPage: 1,
		TotalPages:  1,
		Active:      true,
	}
	if err := s.Repo.Scope(ownerID).CreateLabel(label); err != nil {
		return nil, err
	}
	s.Logger.WithLabel(ownerID, id).Info("Label created", "name", label.Name)
	return label, nil
}

func (s *LabelService) ListLabels(ownerID string) ([]*domain.Label, error) {
	return s.Repo.Scope(ownerID).ListLabels()
}

func (s *LabelService) GetLabel(ownerID, id string) (*domain.Label, error) {
	return s.Repo.Scope(ownerID).GetLabel(id)
}

func (s *LabelService) DeleteLabel(ctx context.Context, ownerID, id string) error {
	if err := s.Repo.Scope(ownerID).DeleteLabel(ctx, id); err != nil {
		return err
	}
	s.Logger.WithLabel(ownerID, id).Info("Label deleted")
	return nil
}

// RetryLabel clears the error state so the poller picks the label up again.
// Only a label in the error state can be retried; a paused label is resumed
// with ActivateLabel instead.
func (s *LabelService) RetryLabel(ownerID, id string) (*domain.Label, error) {
	return s.update(ownerID, id, resetForRetry)
}

// ActivateLabel resumes crawling from the saved page cursor.
func (s *LabelService) ActivateLabel(ownerID, id string) (*domain.Label, error) {
	return s.update(ownerID, id, func(label *domain.Label) error {
		label.Active = true
		if label.Status != domain.LabelStatusPaused {
			return nil
		}
		next, err := label.Status.Transition(domain.LabelStatusQueued)
		if err != nil {
			return err
		}
		label.Status = next
		return nil
	})
}

// DeactivateLabel pauses crawling. A step already in flight still finishes.
func (s *LabelService) DeactivateLabel(ownerID, id string) (*domain.Label, error) {
	return s.update(ownerID, id, func(label *domain.Label) error {
		next, err := label.Status.Transition(domain.LabelStatusPaused)
		if err != nil {
			return err
		}
		label.Status = next
		label.Active = false
		return nil
	})
}

// RequeueErrored resets labels that have been in the error state for at
// least cooldown, across all owners. It returns how many were reset.
func (s *LabelService) RequeueErrored(cooldown time.Duration, now time.Time) (int, error) {
	labels, err := s.Repo.ListErroredLabels()
	if err != nil {
		return 0, fmt.Errorf("failed to list errored labels: %w", err)
	}

	n := 0
	for _, label := range labels {
		if now.Sub(label.UpdatedAt) < cooldown {
			continue
		}
		_, err := s.update(label.OwnerID, label.ID, resetForRetry)
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidTransition) {
				s.Logger.WithLabel(label.OwnerID, label.ID).Error("Failed to requeue label", "error", err)
			}
			continue
		}
		s.Logger.WithLabel(label.OwnerID, label.ID).Info("Label requeued after error")
		n++
	}
	return n, nil
}

func (s *LabelService) update(ownerID, id string, fn func(label *domain.Label) error) (*domain.Label, error) {
	var label *domain.Label
	err := s.Repo.Scope(ownerID).RunInTx(context.Background(), func(tx *store.Scope) error {
		var err error
		label, err = tx.GetLabel(id)
		if err != nil {
			return fmt.Errorf("failed to get label: %w", err)
		}
		if label == nil {
			return fmt.Errorf("label %s: %w", id, store.ErrNotFound)
		}
		if err := fn(label); err != nil {
			return err
		}
		return tx.UpdateLabel(label)
	})
	if err != nil {
		return nil, err
	}
	s.Logger.WithLabel(ownerID, id).Info("Label updated", "status", label.Status, "active", label.Active)
	return label, nil
}

func resetForRetry(label *domain.Label) error {
	if label.Status != domain.LabelStatusError {
		return fmt.Errorf("label %s is %s: %w", label.ID, label.Status, domain.ErrInvalidTransition)
	}
	next, err := label.Status.Transition(domain.LabelStatusQueued)
	if err != nil {
		return err
	}
	label.Status = next
	label.RetryCount = 0
	label.LastError = nil
	return nil
}
