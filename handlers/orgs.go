// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/danielhkuo/sankalp/cliparse"
	"github.com/danielhkuo/sankalp/middleware"
	"github.com/danielhkuo/sankalp/models"
	"github.com/danielhkuo/sankalp/ranking"
)

type OrgHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	engine *ranking.Engine
}

func NewOrgHandler(db *sql.DB, cfg cliparse.Config, engine *ranking.Engine) *OrgHandler {
	return &OrgHandler{db: db, cfg: cfg, engine: engine}
}

// CreateOrganization handles POST /organizations
func (h *OrgHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrganizationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if strings.TrimSpace(req.Handle) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "handle is required")
		return
	}

	orgID := uuid.NewString()

	_, err := h.db.Exec(`
		INSERT INTO organization (id, name, handle, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, orgID, req.Name, req.Handle, req.ImageURL, time.Now())

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate key") {
			middleware.ErrorResponse(w, http.StatusConflict, "Handle already taken")
			return
		}
		slog.Error("failed to insert organization", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create organization")
		return
	}

	slog.Info("organization created", "org_id", orgID, "handle", req.Handle)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateOrganizationResponse{
		OrgID: orgID,
	})
}

// ToggleFollow handles POST /organizations/:id/follow
//
// Flips the user's membership in the org's follower set; the follower
// count is always the set's cardinality. Following is not a ranked
// action, so no activity is emitted.
func (h *OrgHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("id")
	if orgID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "org_id is required")
		return
	}

	var req models.ToggleFollowRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM organization WHERE id = $1)`, orgID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query organization", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Organization not found")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var following bool
	err = tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM org_follower WHERE org_id = $1 AND user_id = $2)
	`, orgID, req.UserID).Scan(&following)
	if err != nil {
		slog.Error("failed to query follow", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if following {
		_, err = tx.Exec(`
			DELETE FROM org_follower WHERE org_id = $1 AND user_id = $2
		`, orgID, req.UserID)
	} else {
		_, err = tx.Exec(`
			INSERT INTO org_follower (org_id, user_id, followed_at)
			VALUES ($1, $2, $3)
		`, orgID, req.UserID, time.Now())
	}
	if err != nil {
		slog.Error("failed to toggle follow", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update follow")
		return
	}

	var followers int
	err = tx.QueryRow(`SELECT COUNT(*) FROM org_follower WHERE org_id = $1`, orgID).Scan(&followers)
	if err != nil {
		slog.Error("failed to count followers", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update follow")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit follow", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update follow")
		return
	}

	slog.Info("follow toggled", "org_id", orgID, "user", req.UserID, "following", !following)

	middleware.JSONResponse(w, http.StatusOK, models.FollowResponse{
		OrgID:     orgID,
		Following: !following,
		Followers: followers,
	})
}

// ListOrganizations handles GET /organizations?q=
// Returns the directory ordered by name, optionally filtered by a
// search term over name and handle.
func (h *OrgHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var rows *sql.Rows
	var err error
	if q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		rows, err = h.db.Query(`
			SELECT id, name, handle, image_url, created_at
			FROM organization
			WHERE LOWER(name) LIKE $1 OR LOWER(handle) LIKE $2
			ORDER BY name, id
		`, pattern, pattern)
	} else {
		rows, err = h.db.Query(`
			SELECT id, name, handle, image_url, created_at
			FROM organization ORDER BY name, id
		`)
	}
	if err != nil {
		slog.Error("failed to query organizations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	orgs := []models.Organization{}
	for rows.Next() {
		var org models.Organization
		var imageURL sql.NullString
		if err := rows.Scan(&org.ID, &org.Name, &org.Handle, &imageURL, &org.CreatedAt); err != nil {
			slog.Error("failed to scan organization", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		org.ImageURL = imageURL.String
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read organizations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	for i := range orgs {
		err := h.db.QueryRow(`
			SELECT COUNT(*) FROM org_follower WHERE org_id = $1
		`, orgs[i].ID).Scan(&orgs[i].Followers)
		if err != nil {
			slog.Error("failed to count followers", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		orgs[i].FollowersDisplay = humanize.Comma(int64(orgs[i].Followers))
	}

	middleware.JSONResponse(w, http.StatusOK, orgs)
}
