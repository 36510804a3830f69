// Package handler contains the HTTP handlers of the HypeShelf API.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the request (path params, query string, JSON body)
//  2. Call the service layer
//  3. Write the response (status code, JSON body)
//
// Handlers hold no business rules. Who may do what is decided in the
// service package; handlers only translate its results into HTTP.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/hypeshelf/internal/service"
)

// RecommendationHandler serves the recommendation endpoints.
type RecommendationHandler struct {
	svc    *service.RecommendationService
	logger *slog.Logger
}

// NewRecommendationHandler creates a RecommendationHandler.
func NewRecommendationHandler(svc *service.RecommendationService, logger *slog.Logger) *RecommendationHandler {
	return &RecommendationHandler{svc: svc, logger: logger}
}

// Register mounts the recommendation routes on r.
func (h *RecommendationHandler) Register(r chi.Router) {
	r.Get("/recommendations/public", h.HandleListPublic)
	r.Get("/recommendations", h.HandleListAll)
	r.Post("/recommendations", h.HandleCreate)
	r.Delete("/recommendations/{id}", h.HandleRemove)
	r.Post("/recommendations/{id}/staff-pick", h.HandleToggleStaffPick)
}

// createRecommendationRequest is the create payload. There is no author
// field: the author is always the verified caller.
type createRecommendationRequest struct {
	Title string `json:"title"`
	Genre string `json:"genre"`
	Link  string `json:"link"`
	Blurb string `json:"blurb"`
}

type createRecommendationResponse struct {
	ID string `json:"id"`
}

// HandleListPublic returns the landing page list.
//
// HTTP: GET /api/recommendations/public
func (h *RecommendationHandler) HandleListPublic(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.ListPublic(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// HandleListAll returns every recommendation, optionally filtered.
//
// HTTP: GET /api/recommendations?genre=horror&author=bob
// genre=all (or no genre) disables the genre filter.
func (h *RecommendationHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	recs, err := h.svc.ListAll(r.Context(), service.ListFilter{
		Genre:  q.Get("genre"),
		Author: q.Get("author"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// HandleCreate stores a new recommendation by the caller.
//
// HTTP: POST /api/recommendations
// REQUEST BODY: {"title": "...", "genre": "...", "link": "...", "blurb": "..."}
// RESPONSE: 201 {"id": "..."}
func (h *RecommendationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRecommendationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		// A caller who may not create learns that before anything about the body.
		if authErr := h.svc.AuthorizeCreate(r.Context()); authErr != nil {
			err = authErr
		}
		writeError(w, h.logger, err)
		return
	}

	id, err := h.svc.Create(r.Context(), service.CreateInput{
		Title: req.Title,
		Genre: req.Genre,
		Link:  req.Link,
		Blurb: req.Blurb,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, createRecommendationResponse{ID: id})
}

// HandleRemove deletes a recommendation.
//
// HTTP: DELETE /api/recommendations/{id}
func (h *RecommendationHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleStaffPick flips the staff-pick flag of a recommendation.
//
// HTTP: POST /api/recommendations/{id}/staff-pick
func (h *RecommendationHandler) HandleToggleStaffPick(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ToggleStaffPick(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
