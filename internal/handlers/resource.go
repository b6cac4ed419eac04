package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studyplanner-backend/internal/events"
	"studyplanner-backend/internal/models"
	"studyplanner-backend/internal/repository"
	"studyplanner-backend/internal/services"
)

type ResourceHandler struct {
	repo      *repository.ResourceRepo
	publisher *events.Publisher
}

func NewResourceHandler(repo *repository.ResourceRepo, publisher *events.Publisher) *ResourceHandler {
	return &ResourceHandler{repo: repo, publisher: publisher}
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	resources, err := h.repo.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch resources", r))
		return
	}

	writeJSON(w, http.StatusOK, resources)
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title      string      `json:"title"`
		Type       string      `json:"type"`
		URL        *string     `json:"url"`
		TotalUnits interface{} `json:"totalUnits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "must not be empty"
	}
	if !models.ValidResourceType(req.Type) {
		fields["type"] = "must be BOOK, VIDEO, or COURSE"
	}

	var totalUnits *int
	if req.TotalUnits != nil {
		n, err := parseUnitsValue(req.TotalUnits)
		if err != nil {
			fields["totalUnits"] = err.Error()
		} else {
			totalUnits = &n
		}
	}

	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	resource := &models.Resource{
		Title:          strings.TrimSpace(req.Title),
		Type:           req.Type,
		URL:            req.URL,
		TotalUnits:     totalUnits,
		CompletedUnits: 0,
	}

	if err := h.repo.Create(r.Context(), resource); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create resource", r))
		return
	}

	h.publisher.Publish(r.Context(), events.TypeResourceCreated, resource.ID)
	writeJSON(w, http.StatusCreated, resource)
}

func (h *ResourceHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid resource ID", r))
		return
	}

	var req struct {
		CompletedUnits interface{} `json:"completedUnits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.CompletedUnits == nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"completedUnits": "is required"}, r))
		return
	}

	completedUnits, err := parseUnitsValue(req.CompletedUnits)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"completedUnits": err.Error()}, r))
		return
	}

	resource, err := h.repo.UpdateProgress(r.Context(), id, completedUnits)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			handleServiceError(w, r, &services.NotFoundError{Message: "Resource not found"})
			return
		}
		handleServiceError(w, r, &services.DependencyError{Message: "Failed to update resource progress"})
		return
	}

	h.publisher.Publish(r.Context(), events.TypeResourceUpdated, resource.ID)
	writeJSON(w, http.StatusOK, resource)
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid resource ID", r))
		return
	}

	// Sessions linked to this resource keep existing with the link
	// nullified.
	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete resource", r))
		return
	}
	if !deleted {
		handleServiceError(w, r, &services.NotFoundError{Message: "Resource not found"})
		return
	}

	h.publisher.Publish(r.Context(), events.TypeResourceDeleted, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Resource deleted successfully"})
}
