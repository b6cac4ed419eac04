package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"studyplanner-backend/internal/events"
	"studyplanner-backend/internal/models"
	"studyplanner-backend/internal/repository"
	"studyplanner-backend/internal/services"
)

const pgForeignKeyViolation = "23503"

type SessionHandler struct {
	repo      *repository.SessionRepo
	publisher *events.Publisher
}

func NewSessionHandler(repo *repository.SessionRepo, publisher *events.Publisher) *SessionHandler {
	return &SessionHandler{repo: repo, publisher: publisher}
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.repo.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch sessions", r))
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title      string  `json:"title"`
		StartTime  string  `json:"startTime"`
		EndTime    string  `json:"endTime"`
		ResourceID *string `json:"resourceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "must not be empty"
	}

	startTime, err := parseTimestamp(req.StartTime)
	if err != nil {
		fields["startTime"] = err.Error()
	}
	endTime, err := parseTimestamp(req.EndTime)
	if err != nil {
		fields["endTime"] = err.Error()
	}
	if len(fields) == 0 && !endTime.After(startTime) {
		fields["endTime"] = "must be after startTime"
	}

	var resourceID *uuid.UUID
	if req.ResourceID != nil && *req.ResourceID != "" {
		parsed, err := uuid.Parse(*req.ResourceID)
		if err != nil {
			fields["resourceId"] = "must be a valid ID"
		} else {
			resourceID = &parsed
		}
	}

	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	session := &models.StudySession{
		Title:      strings.TrimSpace(req.Title),
		StartTime:  startTime,
		EndTime:    endTime,
		ResourceID: resourceID,
	}

	if err := h.repo.Create(r.Context(), session); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"resourceId": "does not reference a known resource"}, r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create session", r))
		return
	}

	h.publisher.Publish(r.Context(), events.TypeSessionCreated, session.ID)
	writeJSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var req struct {
		Title       *string `json:"title"`
		StartTime   *string `json:"startTime"`
		EndTime     *string `json:"endTime"`
		IsCompleted *bool   `json:"isCompleted"`
		// RawMessage keeps "absent", "null" (clear the link) and a
		// value distinguishable.
		ResourceID json.RawMessage `json:"resourceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	existing, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			handleServiceError(w, r, &services.NotFoundError{Message: "Session not found"})
			return
		}
		handleServiceError(w, r, &services.DependencyError{Message: "Failed to update session"})
		return
	}

	fields := map[string]string{}
	update := repository.SessionUpdate{IsCompleted: req.IsCompleted}

	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			fields["title"] = "must not be empty"
		} else {
			update.Title = &trimmed
		}
	}

	// Validate the merged time range when either bound changes.
	startTime, endTime := existing.StartTime, existing.EndTime
	if req.StartTime != nil {
		t, err := parseTimestamp(*req.StartTime)
		if err != nil {
			fields["startTime"] = err.Error()
		} else {
			startTime = t
			update.StartTime = &t
		}
	}
	if req.EndTime != nil {
		t, err := parseTimestamp(*req.EndTime)
		if err != nil {
			fields["endTime"] = err.Error()
		} else {
			endTime = t
			update.EndTime = &t
		}
	}
	if len(fields) == 0 && (req.StartTime != nil || req.EndTime != nil) && !endTime.After(startTime) {
		fields["endTime"] = "must be after startTime"
	}

	if len(req.ResourceID) > 0 {
		update.ResourceSet = true
		if !bytes.Equal(req.ResourceID, []byte("null")) {
			var idStr string
			if err := json.Unmarshal(req.ResourceID, &idStr); err != nil {
				fields["resourceId"] = "must be a valid ID or null"
			} else if idStr == "" {
				update.ResourceID = nil
			} else if parsed, err := uuid.Parse(idStr); err != nil {
				fields["resourceId"] = "must be a valid ID or null"
			} else {
				update.ResourceID = &parsed
			}
		}
	}

	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	if _, err := h.repo.Update(r.Context(), id, update); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"resourceId": "does not reference a known resource"}, r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update session", r))
		return
	}

	updated, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update session", r))
		return
	}

	h.publisher.Publish(r.Context(), events.TypeSessionUpdated, id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *SessionHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var req struct {
		IsCompleted *bool `json:"isCompleted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsCompleted == nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"isCompleted": "is required"}, r))
		return
	}

	updated, err := h.repo.SetCompleted(r.Context(), id, *req.IsCompleted)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update session status", r))
		return
	}
	if !updated {
		handleServiceError(w, r, &services.NotFoundError{Message: "Session not found"})
		return
	}

	session, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update session status", r))
		return
	}

	h.publisher.Publish(r.Context(), events.TypeSessionUpdated, id)
	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete session", r))
		return
	}
	if !deleted {
		handleServiceError(w, r, &services.NotFoundError{Message: "Session not found"})
		return
	}

	h.publisher.Publish(r.Context(), events.TypeSessionDeleted, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted successfully"})
}
