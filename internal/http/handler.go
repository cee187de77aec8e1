package httpapp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/cratedigger/internal/app"
	"github.com/cesargomez89/cratedigger/internal/catalog"
	"github.com/cesargomez89/cratedigger/internal/constants"
	"github.com/cesargomez89/cratedigger/internal/domain"
	"github.com/cesargomez89/cratedigger/internal/gateway"
	"github.com/cesargomez89/cratedigger/internal/http/dto"
	"github.com/cesargomez89/cratedigger/internal/logger"
	"github.com/cesargomez89/cratedigger/internal/store"
)

// OwnerHeader carries the caller's owner id.
const OwnerHeader = constants.HeaderOwnerID

type Handler struct {
	Labels       *app.LabelService
	Crawler      *app.Crawler
	Playback     *app.PlaybackService
	Catalog      catalog.Provider
	Logger       *logger.Logger
	DefaultOwner string
}

func NewHandler(labels *app.LabelService, crawler *app.Crawler, playback *app.PlaybackService, cat catalog.Provider, defaultOwner string, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		Labels:       labels,
		Crawler:      crawler,
		Playback:     playback,
		Catalog:      cat,
		DefaultOwner: defaultOwner,
		Logger:       log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/labels", h.ListLabels)
		r.Post("/labels", h.CreateLabel)
		r.Get("/labels/{id}", h.GetLabel)
		r.Delete("/labels/{id}", h.DeleteLabel)
		r.Post("/labels/{id}/advance", h.AdvanceLabel)
		r.Post("/labels/{id}/retry", h.RetryLabel)
		r.Post("/labels/{id}/activate", h.ActivateLabel)
		r.Post("/labels/{id}/deactivate", h.DeactivateLabel)

		r.Get("/tracks/{id}/matches", h.ListMatches)
		r.Post("/tracks/{id}/matches/{matchID}/choose", h.ChooseMatch)
		r.Post("/tracks/{id}/enqueue", h.EnqueueTrack)

		r.Get("/queue", h.ListQueue)
		r.Post("/queue/{id}/played", h.MarkPlayed)

		r.Post("/releases/{id}/wishlist", h.SetWishlist)
		r.Get("/catalog/identity", h.Identity)
		r.Get("/catalog/wantlist", h.Wantlist)
	})
}

func (h *Handler) owner(r *http.Request) string {
	if owner := strings.TrimSpace(r.Header.Get(OwnerHeader)); owner != "" {
		return owner
	}
	return h.DefaultOwner
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	h.writeJSON(w, status, dto.ErrorResponse{Error: err.Error()})
}

func (h *Handler) writeValidation(w http.ResponseWriter, errs []dto.ValidationError) {
	h.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
		Error:  dto.ToResponse(errs),
		Fields: dto.ToMap(errs),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, app.ErrInvalidInput):
		return http.StatusBadRequest
	case gateway.IsQuota(err):
		return http.StatusTooManyRequests
	case gateway.IsFatal(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
