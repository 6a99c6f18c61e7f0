// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/sankalp/cliparse"
	"github.com/danielhkuo/sankalp/middleware"
	"github.com/danielhkuo/sankalp/models"
	"github.com/danielhkuo/sankalp/ranking"
)

type EventHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	engine *ranking.Engine
}

func NewEventHandler(db *sql.DB, cfg cliparse.Config, engine *ranking.Engine) *EventHandler {
	return &EventHandler{db: db, cfg: cfg, engine: engine}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.StartsAt.IsZero() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "starts_at is required")
		return
	}

	eventID := uuid.NewString()

	_, err := h.db.Exec(`
		INSERT INTO event (id, name, description, location, starts_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, eventID, req.Name, req.Description, req.Location, req.StartsAt, time.Now())

	if err != nil {
		slog.Error("failed to insert event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	slog.Info("event created", "event_id", eventID, "name", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateEventResponse{
		EventID: eventID,
	})
}

// ToggleAttendance handles POST /events/:id/attendance
//
// Toggling flips the user's membership in the attendee set; two toggles
// by the same user restore the original state exactly. The attendee
// count is always the set's cardinality.
func (h *EventHandler) ToggleAttendance(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "event_id is required")
		return
	}

	var req models.ToggleAttendanceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM event WHERE id = $1)`, eventID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		return
	}

	now := time.Now()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var attending bool
	err = tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM event_attendee WHERE event_id = $1 AND user_id = $2)
	`, eventID, req.UserID).Scan(&attending)
	if err != nil {
		slog.Error("failed to query attendance", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if attending {
		_, err = tx.Exec(`
			DELETE FROM event_attendee WHERE event_id = $1 AND user_id = $2
		`, eventID, req.UserID)
	} else {
		_, err = tx.Exec(`
			INSERT INTO event_attendee (event_id, user_id, joined_at)
			VALUES ($1, $2, $3)
		`, eventID, req.UserID, now)
	}
	if err != nil {
		slog.Error("failed to toggle attendance", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update attendance")
		return
	}

	var attendees int
	err = tx.QueryRow(`SELECT COUNT(*) FROM event_attendee WHERE event_id = $1`, eventID).Scan(&attendees)
	if err != nil {
		slog.Error("failed to count attendees", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update attendance")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit attendance", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update attendance")
		return
	}

	slog.Info("attendance toggled", "event_id", eventID, "user", req.UserID, "attending", !attending)

	// Only the transition into attending is a qualifying action.
	if !attending {
		h.engine.Submit(ranking.Activity{ActorID: req.UserID, Kind: ranking.KindAttendance, OccurredAt: now})
	}

	middleware.JSONResponse(w, http.StatusOK, models.AttendanceResponse{
		EventID:   eventID,
		Attending: !attending,
		Attendees: attendees,
	})
}

// ListEvents handles GET /events?q=
// Returns events ordered by start time, optionally filtered by a
// search term over name and description.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var rows *sql.Rows
	var err error
	if q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		rows, err = h.db.Query(`
			SELECT id, name, description, location, starts_at, created_at
			FROM event
			WHERE LOWER(name) LIKE $1 OR LOWER(description) LIKE $2
			ORDER BY starts_at, id
		`, pattern, pattern)
	} else {
		rows, err = h.db.Query(`
			SELECT id, name, description, location, starts_at, created_at
			FROM event ORDER BY starts_at, id
		`)
	}
	if err != nil {
		slog.Error("failed to query events", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		var description, location sql.NullString
		if err := rows.Scan(&event.ID, &event.Name, &description, &location, &event.StartsAt, &event.CreatedAt); err != nil {
			slog.Error("failed to scan event", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		event.Description = description.String
		event.Location = location.String
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read events", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	for i := range events {
		err := h.db.QueryRow(`
			SELECT COUNT(*) FROM event_attendee WHERE event_id = $1
		`, events[i].ID).Scan(&events[i].Attendees)
		if err != nil {
			slog.Error("failed to count attendees", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, events)
}
