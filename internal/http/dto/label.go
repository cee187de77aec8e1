package dto

import (
	"time"

	"github.com/cesargomez89/cratedigger/internal/domain"
)

type CreateLabelRequest struct {
	SourceURL *string `json:"source_url"`
	ID        string  `json:"id"`
	Name      string  `json:"name"`
}

func (r *CreateLabelRequest) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateID("id", r.ID)...)
	errs = append(errs, validateName(r.Name)...)
	errs = append(errs, validateURL(r.SourceURL)...)
	return errs
}

func (r *CreateLabelRequest) URL() string {
	if r.SourceURL == nil {
		return ""
	}
	return *r.SourceURL
}

type LabelResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	SourceURL   string  `json:"source_url,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	LastError   string  `json:"last_error,omitempty"`
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"total_pages"`
	RetryCount  int     `json:"retry_count"`
	Progress    float64 `json:"progress"`
	Active      bool    `json:"active"`
}

func NewLabelResponse(l *domain.Label) LabelResponse {
	resp := LabelResponse{
		ID:          l.ID,
		Name:        l.Name,
		SourceURL:   l.SourceURL,
		Status:      string(l.Status),
		CurrentPage: l.CurrentPage,
		TotalPages:  l.TotalPages,
		RetryCount:  l.RetryCount,
		Active:      l.Active,
		Progress:    pageProgress(l),
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   l.UpdatedAt.Format(time.RFC3339),
	}
	if l.LastError != nil {
		resp.LastError = *l.LastError
	}
	return resp
}

func NewLabelResponses(labels []*domain.Label) []LabelResponse {
	out := make([]LabelResponse, 0, len(labels))
	for _, l := range labels {
		out = append(out, NewLabelResponse(l))
	}
	return out
}

// pageProgress is the share of catalog pages fetched so far, in percent.
func pageProgress(l *domain.Label) float64 {
	if l.Status == domain.LabelStatusComplete {
		return 100
	}
	if l.TotalPages < 1 {
		return 0
	}
	done := l.CurrentPage - 1
	if done < 0 {
		done = 0
	}
	if done > l.TotalPages {
		done = l.TotalPages
	}
	return float64(done) * 100 / float64(l.TotalPages)
}
