package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/hypeshelf/internal/model"
	"github.com/sakif/hypeshelf/internal/service"
)

// RoleHandler serves role lookup and assignment.
type RoleHandler struct {
	svc    *service.RoleService
	logger *slog.Logger
}

// NewRoleHandler creates a RoleHandler.
func NewRoleHandler(svc *service.RoleService, logger *slog.Logger) *RoleHandler {
	return &RoleHandler{svc: svc, logger: logger}
}

// Register mounts the role routes on r.
func (h *RoleHandler) Register(r chi.Router) {
	r.Get("/me/role", h.HandleGetMyRole)
	r.Put("/users/{userId}/role", h.HandleSetRole)
}

// roleResponse encodes a nil role as {"role": null}.
type roleResponse struct {
	Role *model.Role `json:"role"`
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// HandleGetMyRole returns the caller's role, or null when anonymous.
//
// HTTP: GET /api/me/role
func (h *RoleHandler) HandleGetMyRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.svc.GetMyRole(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, roleResponse{Role: role})
}

// HandleSetRole assigns a role to a user.
//
// HTTP: PUT /api/users/{userId}/role
// REQUEST BODY: {"role": "admin" | "user"}
func (h *RoleHandler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if authErr := h.svc.AuthorizeSetRole(r.Context()); authErr != nil {
			err = authErr
		}
		writeError(w, h.logger, err)
		return
	}

	if err := h.svc.SetRole(r.Context(), chi.URLParam(r, "userId"), model.Role(req.Role)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
