// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Sankalp API.

# Handler Types

Each handler is a struct with database, config, and ranking-engine
dependencies:

  - PostHandler: posts, threaded replies, reactions
  - PollHandler: poll lifecycle and vote tallying
  - EventHandler: events and attendance
  - OrgHandler: organizations and the follow graph
  - LeaderboardHandler: leaderboard and member ranking projections

Handlers are created via constructor functions:

	postHandler := handlers.NewPostHandler(db, cfg, engine)

# Commands

Mutations route to the owning entity and run under that entity's
transaction; derived counts are read inside the same transaction, so a
response can never show a counter out of step with its backing set.

	POST /posts                       → CreatePost
	POST /posts/{id}/replies          → AddReply
	POST /posts/{id}/reactions        → React (toggle)
	POST /polls                       → CreatePoll
	POST /polls/{id}/votes            → Vote
	POST /events                      → CreateEvent
	POST /events/{id}/attendance      → ToggleAttendance (involution)
	POST /organizations               → CreateOrganization
	POST /organizations/{id}/follow   → ToggleFollow (involution)

Successful qualifying commands emit one activity event to the ranking
engine. Following is not a ranked action and emits nothing.

# Read Projections

	GET /posts?level=                 → feed with counters
	GET /posts/{id}                   → post with reply tree
	GET /polls, /polls/{id}           → tallies, percentages, closed flag
	GET /events?q=                    → events with attendee counts
	GET /organizations?q=             → directory with follower counts
	GET /leaderboard                  → ranked page, rank derived on read
	GET /members/{id}/ranking         → one member with rank filled in

# Poll Lifecycle

A poll is Open until the server clock reaches ends_at, then Closed.
Closure is a pure function of server time; caller timestamps are never
trusted. Votes against a closed poll fail with 410, out-of-range
options with 422, duplicate voters with 409.
*/
package handlers
