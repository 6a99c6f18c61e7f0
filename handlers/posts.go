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

type PostHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	engine *ranking.Engine
}

func NewPostHandler(db *sql.DB, cfg cliparse.Config, engine *ranking.Engine) *PostHandler {
	return &PostHandler{db: db, cfg: cfg, engine: engine}
}

// CreatePost handles POST /posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePostRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.Author == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "author is required")
		return
	}
	if req.Level == "" {
		req.Level = models.LevelLocal
	}
	if !models.ValidLevel(req.Level) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "level must be local, state, or national")
		return
	}

	postID := uuid.NewString()
	now := time.Now()

	_, err := h.db.Exec(`
		INSERT INTO post (id, author, handle, content, level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, postID, req.Author, req.Handle, req.Content, req.Level, now)

	if err != nil {
		slog.Error("failed to insert post", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create post")
		return
	}

	slog.Info("post created", "post_id", postID, "author", req.Author, "level", req.Level)

	h.engine.Submit(ranking.Activity{ActorID: req.Author, Kind: ranking.KindPost, OccurredAt: now})

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePostResponse{
		PostID: postID,
	})
}

// AddReply handles POST /posts/:id/replies
//
// A reply may target the post itself or, via parent_reply_id, another
// reply in the same post's tree. The comment counter the response
// carries is counted inside the same transaction as the insert, so the
// two can never be observed apart.
func (h *PostHandler) AddReply(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	if postID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "post_id is required")
		return
	}

	var req models.AddReplyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.Author == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "author is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM post WHERE id = $1)`, postID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query post", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Post not found")
		return
	}

	if req.ParentReplyID != nil {
		var parentExists bool
		err := h.db.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM reply WHERE id = $1 AND post_id = $2)
		`, *req.ParentReplyID, postID).Scan(&parentExists)
		if err != nil {
			slog.Error("failed to query parent reply", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !parentExists {
			middleware.ErrorResponse(w, http.StatusNotFound, "Parent reply not found")
			return
		}
	}

	replyID := uuid.NewString()
	now := time.Now()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO reply (id, post_id, parent_reply_id, author, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, replyID, postID, req.ParentReplyID, req.Author, req.Content, now)

	if err != nil {
		slog.Error("failed to insert reply", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add reply")
		return
	}

	var comments int
	err = tx.QueryRow(`SELECT COUNT(*) FROM reply WHERE post_id = $1`, postID).Scan(&comments)
	if err != nil {
		slog.Error("failed to count replies", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add reply")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit reply", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add reply")
		return
	}

	slog.Info("reply added", "post_id", postID, "reply_id", replyID)

	h.engine.Submit(ranking.Activity{ActorID: req.Author, Kind: ranking.KindReply, OccurredAt: now})

	middleware.JSONResponse(w, http.StatusCreated, models.AddReplyResponse{
		ReplyID:  replyID,
		Comments: comments,
	})
}

// React handles POST /posts/:id/reactions
//
// Reactions toggle: the first call from an actor adds the reaction,
// a repeat of the same call removes it. Either way the counters in the
// response equal the reaction set sizes at commit time.
func (h *PostHandler) React(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	if postID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "post_id is required")
		return
	}

	var req models.ReactRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ActorID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "actor_id is required")
		return
	}
	if !models.ValidReaction(req.Kind) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "kind must be like or share")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM post WHERE id = $1)`, postID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query post", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Post not found")
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

	var reacted bool
	err = tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM reaction WHERE post_id = $1 AND actor_id = $2 AND kind = $3)
	`, postID, req.ActorID, req.Kind).Scan(&reacted)
	if err != nil {
		slog.Error("failed to query reaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if reacted {
		_, err = tx.Exec(`
			DELETE FROM reaction WHERE post_id = $1 AND actor_id = $2 AND kind = $3
		`, postID, req.ActorID, req.Kind)
	} else {
		_, err = tx.Exec(`
			INSERT INTO reaction (post_id, actor_id, kind, created_at)
			VALUES ($1, $2, $3, $4)
		`, postID, req.ActorID, req.Kind, now)
	}
	if err != nil {
		slog.Error("failed to toggle reaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to react")
		return
	}

	counters, err := engagementCounters(tx, postID)
	if err != nil {
		slog.Error("failed to read counters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to react")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit reaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to react")
		return
	}

	slog.Info("reaction toggled", "post_id", postID, "actor", req.ActorID, "kind", req.Kind, "reacted", !reacted)

	// Only the transition into reacting is a qualifying action.
	if !reacted {
		h.engine.Submit(ranking.Activity{ActorID: req.ActorID, Kind: ranking.KindReaction, OccurredAt: now})
	}

	middleware.JSONResponse(w, http.StatusOK, models.ReactResponse{
		Reacted:  !reacted,
		Counters: counters,
	})
}

// GetPost handles GET /posts/:id
// Returns the post with live counters and its full reply tree.
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	if postID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "post_id is required")
		return
	}

	var post models.Post
	err := h.db.QueryRow(`
		SELECT id, author, handle, content, level, created_at FROM post WHERE id = $1
	`, postID).Scan(&post.ID, &post.Author, &post.Handle, &post.Content, &post.Level, &post.CreatedAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		slog.Error("failed to query post", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	counters, err := engagementCounters(h.db, postID)
	if err != nil {
		slog.Error("failed to read counters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	post.Likes = counters.Likes
	post.Shares = counters.Shares
	post.Comments = counters.Comments
	post.Posted = humanize.Time(post.CreatedAt)

	replies, err := h.replyTree(postID)
	if err != nil {
		slog.Error("failed to build reply tree", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	post.Replies = replies

	middleware.JSONResponse(w, http.StatusOK, post)
}

// ListPosts handles GET /posts?level=
// Returns the feed, newest first, with counters but without reply trees.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	level := r.URL.Query().Get("level")
	if level != "" && !models.ValidLevel(level) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "level must be local, state, or national")
		return
	}

	var rows *sql.Rows
	var err error
	if level != "" {
		rows, err = h.db.Query(`
			SELECT id, author, handle, content, level, created_at
			FROM post WHERE level = $1 ORDER BY created_at DESC, id
		`, level)
	} else {
		rows, err = h.db.Query(`
			SELECT id, author, handle, content, level, created_at
			FROM post ORDER BY created_at DESC, id
		`)
	}
	if err != nil {
		slog.Error("failed to query posts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Author, &post.Handle, &post.Content, &post.Level, &post.CreatedAt); err != nil {
			slog.Error("failed to scan post", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		post.Posted = humanize.Time(post.CreatedAt)
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read posts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	for i := range posts {
		counters, err := engagementCounters(h.db, posts[i].ID)
		if err != nil {
			slog.Error("failed to read counters", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		posts[i].Likes = counters.Likes
		posts[i].Shares = counters.Shares
		posts[i].Comments = counters.Comments
	}

	middleware.JSONResponse(w, http.StatusOK, posts)
}

type replyNode struct {
	reply    models.Reply
	children []*replyNode
}

// replyTree loads a post's replies (a flat arena with parent pointers)
// and assembles the tree. Parents are always inserted before children,
// so a single pass in creation order links every node.
func (h *PostHandler) replyTree(postID string) ([]models.Reply, error) {
	rows, err := h.db.Query(`
		SELECT id, post_id, parent_reply_id, author, content, created_at
		FROM reply WHERE post_id = $1 ORDER BY created_at, id
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*replyNode)
	var roots []*replyNode

	for rows.Next() {
		var reply models.Reply
		if err := rows.Scan(&reply.ID, &reply.PostID, &reply.ParentReplyID, &reply.Author, &reply.Content, &reply.CreatedAt); err != nil {
			return nil, err
		}
		reply.Posted = humanize.Time(reply.CreatedAt)

		node := &replyNode{reply: reply}
		byID[reply.ID] = node

		if reply.ParentReplyID != nil {
			if parent, ok := byID[*reply.ParentReplyID]; ok {
				parent.children = append(parent.children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return flattenReplies(roots), nil
}

func flattenReplies(nodes []*replyNode) []models.Reply {
	if len(nodes) == 0 {
		return nil
	}

	replies := make([]models.Reply, 0, len(nodes))
	for _, node := range nodes {
		reply := node.reply
		reply.Replies = flattenReplies(node.children)
		replies = append(replies, reply)
	}
	return replies
}
