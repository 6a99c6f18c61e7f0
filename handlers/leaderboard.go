// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/sankalp/cliparse"
	"github.com/danielhkuo/sankalp/middleware"
	"github.com/danielhkuo/sankalp/ranking"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type LeaderboardHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewLeaderboardHandler(db *sql.DB, cfg cliparse.Config) *LeaderboardHandler {
	return &LeaderboardHandler{db: db, cfg: cfg}
}

// GetLeaderboard handles GET /leaderboard?page=&page_size=
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	page := 1
	if s := r.URL.Query().Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}

	pageSize := defaultPageSize
	if s := r.URL.Query().Get("page_size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "page_size must be a positive integer")
			return
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		pageSize = n
	}

	board, err := ranking.Leaderboard(h.db, page, pageSize)
	if err != nil {
		slog.Error("failed to compute leaderboard", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, board)
}

// GetMemberRanking handles GET /members/:id/ranking
func (h *LeaderboardHandler) GetMemberRanking(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "member id is required")
		return
	}

	entry, err := ranking.MemberRanking(h.db, userID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Member has no ranking yet")
		return
	}
	if err != nil {
		slog.Error("failed to compute member ranking", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, entry)
}
