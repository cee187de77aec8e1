package domain

import (
	"errors"
	"fmt"

	"github.com/cesargomez89/cratedigger/internal/constants"
)

var ErrInvalidTransition = errors.New("invalid status transition")

var labelTransitions = map[LabelStatus][]LabelStatus{
	LabelStatusQueued:     {LabelStatusProcessing, LabelStatusComplete, LabelStatusError, LabelStatusPaused},
	LabelStatusProcessing: {LabelStatusProcessing, LabelStatusComplete, LabelStatusError, LabelStatusPaused},
	LabelStatusPaused:     {LabelStatusQueued, LabelStatusPaused},
	LabelStatusError:      {LabelStatusQueued, LabelStatusProcessing, LabelStatusComplete, LabelStatusError, LabelStatusPaused},
	LabelStatusComplete:   {LabelStatusQueued, LabelStatusComplete, LabelStatusPaused},
}

var releaseTransitions = map[ReleaseStatus][]ReleaseStatus{
	ReleaseStatusPending: {ReleaseStatusFetched, ReleaseStatusFailed},
	ReleaseStatusFetched: {ReleaseStatusFetched, ReleaseStatusPending},
	ReleaseStatusFailed:  {ReleaseStatusPending},
}

var queueTransitions = map[QueueStatus][]QueueStatus{
	QueueStatusPending: {QueueStatusPlayed},
}

func allowed[S ~string](table map[S][]S, from, to S) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s LabelStatus) Valid() bool {
	_, ok := labelTransitions[s]
	return ok
}

// CanTransition reports whether a label may move from s to next.
func (s LabelStatus) CanTransition(next LabelStatus) bool {
	return allowed(labelTransitions, s, next)
}

// Transition returns next, or ErrInvalidTransition when the move is not in the table.
func (s LabelStatus) Transition(next LabelStatus) (LabelStatus, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("label %s -> %s: %w", s, next, ErrInvalidTransition)
	}
	return next, nil
}

func (s ReleaseStatus) Valid() bool {
	_, ok := releaseTransitions[s]
	return ok
}

func (s ReleaseStatus) CanTransition(next ReleaseStatus) bool {
	return allowed(releaseTransitions, s, next)
}

func (s ReleaseStatus) Transition(next ReleaseStatus) (ReleaseStatus, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("release %s -> %s: %w", s, next, ErrInvalidTransition)
	}
	return next, nil
}

func (s QueueStatus) Valid() bool {
	return s == QueueStatusPending || s == QueueStatusPlayed
}

func (s QueueStatus) CanTransition(next QueueStatus) bool {
	return allowed(queueTransitions, s, next)
}

func (s QueueStatus) Transition(next QueueStatus) (QueueStatus, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("queue item %s -> %s: %w", s, next, ErrInvalidTransition)
	}
	return next, nil
}

// Priority is the playback queue priority of items from this source.
func (s MatchSource) Priority() int {
	switch s {
	case SourceManual:
		return constants.PriorityManual
	case SourceCatalog:
		return constants.PriorityCatalog
	case SourceStorefront:
		return constants.PriorityStorefront
	case SourceSearch:
		return constants.PrioritySearch
	case SourceReleaseVideo:
		return constants.PriorityReleaseVideo
	case SourceReleaseFallback:
		return constants.PriorityReleaseFallback
	default:
		return 0
	}
}
