// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Sankalp API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, engine)

# Endpoints

Health:

	GET /health

Posts and engagement:

	POST /posts                 - Create post
	GET  /posts                 - List posts (?level=)
	GET  /posts/{id}            - Post with counters and reply tree
	POST /posts/{id}/replies    - Add reply (optionally nested)
	POST /posts/{id}/reactions  - Toggle like/share

Polls:

	POST /polls            - Create poll
	GET  /polls            - List polls
	GET  /polls/{id}       - Poll with tally
	POST /polls/{id}/votes - Cast vote

Events:

	POST /events                 - Create event
	GET  /events                 - List events (?q=)
	POST /events/{id}/attendance - Toggle RSVP

Organizations:

	POST /organizations             - Create organization
	GET  /organizations             - List organizations (?q=)
	POST /organizations/{id}/follow - Toggle follow

Leaderboard:

	GET /leaderboard              - Paged ranking (?page=&page_size=)
	GET /members/{id}/ranking     - One member's rank, streak, badges

# Path Parameters

Routes use Go 1.22+ enhanced routing patterns with {id} placeholders,
accessed via r.PathValue("id") in handlers.
*/
package router
