// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/sankalp/cliparse"
	"github.com/danielhkuo/sankalp/handlers"
	"github.com/danielhkuo/sankalp/middleware"
	"github.com/danielhkuo/sankalp/ranking"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, engine *ranking.Engine) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	postHandler := handlers.NewPostHandler(db, cfg, engine)
	pollHandler := handlers.NewPollHandler(db, cfg, engine)
	eventHandler := handlers.NewEventHandler(db, cfg, engine)
	orgHandler := handlers.NewOrgHandler(db, cfg, engine)
	leaderboardHandler := handlers.NewLeaderboardHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Posts and engagement
	mux.HandleFunc("POST /posts", middleware.WithLogging(postHandler.CreatePost))
	mux.HandleFunc("GET /posts", middleware.WithLogging(postHandler.ListPosts))
	mux.HandleFunc("GET /posts/{id}", middleware.WithLogging(postHandler.GetPost))
	mux.HandleFunc("POST /posts/{id}/replies", middleware.WithLogging(postHandler.AddReply))
	mux.HandleFunc("POST /posts/{id}/reactions", middleware.WithLogging(postHandler.React))

	// Polls
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /polls/{id}/votes", middleware.WithLogging(pollHandler.Vote))

	// Events
	mux.HandleFunc("POST /events", middleware.WithLogging(eventHandler.CreateEvent))
	mux.HandleFunc("GET /events", middleware.WithLogging(eventHandler.ListEvents))
	mux.HandleFunc("POST /events/{id}/attendance", middleware.WithLogging(eventHandler.ToggleAttendance))

	// Organizations
	mux.HandleFunc("POST /organizations", middleware.WithLogging(orgHandler.CreateOrganization))
	mux.HandleFunc("GET /organizations", middleware.WithLogging(orgHandler.ListOrganizations))
	mux.HandleFunc("POST /organizations/{id}/follow", middleware.WithLogging(orgHandler.ToggleFollow))

	// Rankings
	mux.HandleFunc("GET /leaderboard", middleware.WithLogging(leaderboardHandler.GetLeaderboard))
	mux.HandleFunc("GET /members/{id}/ranking", middleware.WithLogging(leaderboardHandler.GetMemberRanking))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sankalp API v1"))
	})

	return mux
}
