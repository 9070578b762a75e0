// Package models serves the model catalog.
package models

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parleychat/parley/internal/model/catalog"
	"github.com/parleychat/parley/pkg/utils"
)

// Handler lists the selectable chat models.
type Handler struct {
	catalog catalog.Store
}

func New(c catalog.Store) *Handler {
	return &Handler{catalog: c}
}

// RegisterRoutes mounts the catalog endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/models", h.handleListModels)
}

func (h *Handler) handleListModels(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"models": h.catalog.List(),
	})
}
