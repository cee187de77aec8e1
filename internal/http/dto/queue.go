package dto

type EnqueueRequest struct {
	MatchID string `json:"match_id"`
}

type WishlistRequest struct {
	Enabled *bool `json:"enabled"`
}

func (r *WishlistRequest) Validate() []ValidationError {
	if r.Enabled == nil {
		return []ValidationError{{Field: "enabled", Message: "is required"}}
	}
	return nil
}

type QueueQuery struct {
	Status string
	Limit  int
}

func (q *QueueQuery) Validate() []ValidationError {
	return validateQueueStatus(q.Status)
}

type ReasonResponse struct {
	Reason string `json:"reason"`
}

type ErrorResponse struct {
	Fields map[string]string `json:"fields,omitempty"`
	Error  string            `json:"error"`
}
