package httpapp

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/cratedigger/internal/app"
	"github.com/cesargomez89/cratedigger/internal/domain"
	"github.com/cesargomez89/cratedigger/internal/gateway"
	"github.com/cesargomez89/cratedigger/internal/http/dto"
)

func (h *Handler) ListLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := h.Labels.ListLabels(h.owner(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewLabelResponses(labels))
}

func (h *Handler) CreateLabel(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLabelRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}

	label, err := h.Labels.CreateLabel(h.owner(r), strings.TrimSpace(req.ID), req.Name, req.URL())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, dto.NewLabelResponse(label))
}

func (h *Handler) GetLabel(w http.ResponseWriter, r *http.Request) {
	label, err := h.Labels.GetLabel(h.owner(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if label == nil {
		h.writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "label not found"})
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewLabelResponse(label))
}

func (h *Handler) DeleteLabel(w http.ResponseWriter, r *http.Request) {
	if err := h.Labels.DeleteLabel(r.Context(), h.owner(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdvanceLabel(w http.ResponseWriter, r *http.Request) {
	res, err := h.Crawler.AdvanceLabel(r.Context(), h.owner(r), chi.URLParam(r, "id"))
	if err != nil {
		if res == nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, statusFor(err), res)
		return
	}
	if res.Outcome == app.OutcomeBusy {
		h.writeJSON(w, http.StatusConflict, res)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) RetryLabel(w http.ResponseWriter, r *http.Request) {
	h.labelAction(w, r, h.Labels.RetryLabel)
}

func (h *Handler) ActivateLabel(w http.ResponseWriter, r *http.Request) {
	h.labelAction(w, r, h.Labels.ActivateLabel)
}

func (h *Handler) DeactivateLabel(w http.ResponseWriter, r *http.Request) {
	h.labelAction(w, r, h.Labels.DeactivateLabel)
}

func (h *Handler) labelAction(w http.ResponseWriter, r *http.Request, fn func(ownerID, id string) (*domain.Label, error)) {
	label, err := fn(h.owner(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewLabelResponse(label))
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.Playback.ListMatches(h.owner(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if matches == nil {
		matches = []*domain.VideoMatch{}
	}
	h.writeJSON(w, http.StatusOK, matches)
}

func (h *Handler) ChooseMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.Playback.ChooseMatch(r.Context(), h.owner(r), chi.URLParam(r, "id"), chi.URLParam(r, "matchID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

func (h *Handler) EnqueueTrack(w http.ResponseWriter, r *http.Request) {
	var req dto.EnqueueRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	res, err := h.Playback.EnqueueTrack(r.Context(), h.owner(r), chi.URLParam(r, "id"), strings.TrimSpace(req.MatchID))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	switch {
	case res.Item != nil && res.Created:
		h.writeJSON(w, http.StatusCreated, res.Item)
	case res.Item != nil:
		h.writeJSON(w, http.StatusOK, res.Item)
	case res.Reason == app.ReasonNotFound:
		h.writeJSON(w, http.StatusNotFound, dto.ReasonResponse{Reason: string(res.Reason)})
	case res.Reason == app.ReasonQuotaExceeded:
		h.writeJSON(w, http.StatusTooManyRequests, dto.ReasonResponse{Reason: string(res.Reason)})
	default:
		h.writeJSON(w, http.StatusOK, dto.ReasonResponse{Reason: string(res.Reason)})
	}
}

func (h *Handler) ListQueue(w http.ResponseWriter, r *http.Request) {
	q := dto.QueueQuery{
		Status: r.URL.Query().Get("status"),
		Limit:  queryInt(r, "limit", 50),
	}
	if errs := q.Validate(); len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}

	items, err := h.Playback.ListQueue(h.owner(r), domain.QueueStatus(q.Status), q.Limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []*domain.QueueItem{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) MarkPlayed(w http.ResponseWriter, r *http.Request) {
	item, err := h.Playback.MarkPlayed(r.Context(), h.owner(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

func (h *Handler) SetWishlist(w http.ResponseWriter, r *http.Request) {
	var req dto.WishlistRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}

	ctx := gateway.WithIdentity(r.Context(), h.owner(r))
	id := chi.URLParam(r, "id")
	if err := h.Catalog.SetWishlist(ctx, id, *req.Enabled); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"release_id": id, "enabled": *req.Enabled})
}

func (h *Handler) Identity(w http.ResponseWriter, r *http.Request) {
	ident, err := h.Catalog.Identity(gateway.WithIdentity(r.Context(), h.owner(r)))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ident)
}

func (h *Handler) Wantlist(w http.ResponseWriter, r *http.Request) {
	page, err := h.Catalog.Wantlist(gateway.WithIdentity(r.Context(), h.owner(r)), queryInt(r, "page", 1))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewWantlistResponse(page))
}
