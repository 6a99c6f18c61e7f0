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

type PollHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	engine *ranking.Engine

	// now is the authoritative clock for the vote window. Caller
	// timestamps are never consulted.
	now func() time.Time
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config, engine *ranking.Engine) *PollHandler {
	return &PollHandler{db: db, cfg: cfg, engine: engine, now: time.Now}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question is required")
		return
	}
	if len(req.Options) < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least 2 options are required")
		return
	}
	for _, option := range req.Options {
		if strings.TrimSpace(option) == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "options cannot be blank")
			return
		}
	}
	if req.EndsAt.IsZero() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ends_at is required")
		return
	}

	pollID := uuid.NewString()
	now := h.now()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO poll (id, question, created_by, created_at, ends_at)
		VALUES ($1, $2, $3, $4, $5)
	`, pollID, req.Question, req.CreatedBy, now, req.EndsAt)
	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	for i, option := range req.Options {
		_, err = tx.Exec(`
			INSERT INTO poll_option (poll_id, idx, label)
			VALUES ($1, $2, $3)
		`, pollID, i, option)
		if err != nil {
			slog.Error("failed to insert option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", pollID, "options", len(req.Options))

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID: pollID,
	})
}

// Vote handles POST /polls/:id/votes
//
// A poll is closed the instant the server clock passes ends_at; closure
// is derived from time, never an explicit command. Votes are one per
// voter per poll, backed by the voter-set primary key.
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.VoterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id is required")
		return
	}

	var endsAt time.Time
	err := h.db.QueryRow(`SELECT ends_at FROM poll WHERE id = $1`, pollID).Scan(&endsAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := h.now()
	if !now.Before(endsAt) {
		middleware.ErrorResponse(w, http.StatusGone, "Poll is closed")
		return
	}

	var optionCount int
	err = h.db.QueryRow(`SELECT COUNT(*) FROM poll_option WHERE poll_id = $1`, pollID).Scan(&optionCount)
	if err != nil {
		slog.Error("failed to count options", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if req.OptionIndex < 0 || req.OptionIndex >= optionCount {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "option_index out of range")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var alreadyVoted bool
	err = tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM poll_vote WHERE poll_id = $1 AND voter_id = $2)
	`, pollID, req.VoterID).Scan(&alreadyVoted)
	if err != nil {
		slog.Error("failed to query votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if alreadyVoted {
		middleware.ErrorResponse(w, http.StatusConflict, "Voter has already voted in this poll")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO poll_vote (poll_id, voter_id, option_idx, voted_at)
		VALUES ($1, $2, $3, $4)
	`, pollID, req.VoterID, req.OptionIndex, now)
	if err != nil {
		// The primary key backs up the existence check under
		// concurrent votes from the same voter.
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate key") {
			middleware.ErrorResponse(w, http.StatusConflict, "Voter has already voted in this poll")
			return
		}
		slog.Error("failed to insert vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to vote")
		return
	}

	tally, total, err := pollTally(tx, pollID)
	if err != nil {
		slog.Error("failed to compute tally", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to vote")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to vote")
		return
	}

	slog.Info("vote recorded", "poll_id", pollID, "voter", req.VoterID, "option", req.OptionIndex)

	h.engine.Submit(ranking.Activity{ActorID: req.VoterID, Kind: ranking.KindVote, OccurredAt: now})

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		TotalVotes: total,
		Tally:      tally,
	})
}

// GetPoll handles GET /polls/:id
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	poll, err := h.loadPoll(pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to load poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`SELECT id FROM poll ORDER BY created_at DESC, id`)
	if err != nil {
		slog.Error("failed to query polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			slog.Error("failed to scan poll id", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	polls := []models.Poll{}
	for _, id := range ids {
		poll, err := h.loadPoll(id)
		if err != nil {
			slog.Error("failed to load poll", "error", err, "poll_id", id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		polls = append(polls, poll)
	}

	middleware.JSONResponse(w, http.StatusOK, polls)
}

func (h *PollHandler) loadPoll(pollID string) (models.Poll, error) {
	var poll models.Poll
	err := h.db.QueryRow(`
		SELECT id, question, created_by, created_at, ends_at FROM poll WHERE id = $1
	`, pollID).Scan(&poll.ID, &poll.Question, &poll.CreatedBy, &poll.CreatedAt, &poll.EndsAt)
	if err != nil {
		return models.Poll{}, err
	}

	poll.Closed = !h.now().Before(poll.EndsAt)

	tally, total, err := pollTally(h.db, pollID)
	if err != nil {
		return models.Poll{}, err
	}
	poll.Options = tally
	poll.TotalVotes = total

	return poll, nil
}
