// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Sankalp engagement API server.

Sankalp is a community platform; this server is its engagement and
gamification engine: posts with threaded replies and reactions, polls
with live tallies, event attendance, the organization follow graph, and
the points/streaks/badges leaderboard derived from all of it.

# Starting the Server

The server runs on SQLite by default:

	go run main.go

Or against PostgreSQL:

	DATABASE_TYPE=postgres DATABASE_URL=postgres://... go run main.go

A .env file in the working directory is loaded if present.

# Configuration

Optional settings:

  - PORT (-p): Server port (default: 3510)
  - DATABASE_URL (-d): Connection string (default: file:sankalp.db)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SCORING_CONFIG (-scoring): YAML scoring policy (default: compiled in)
  - RATE_LIMIT (-rate): Per-IP requests per minute (default: 120)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (posts, polls, events, organizations, leaderboard)
  - ranking: asynchronous activity scoring engine and leaderboard computation
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, rate limiting, JSON helpers
  - models: Request/response types
  - db: Schema creation
  - cliparse: Configuration parsing

Commands mutate exactly one entity under that entity's transaction and
then emit an activity event; the ranking engine consumes events
asynchronously, so entity state is read-after-write consistent while
the leaderboard is eventually consistent.

See package documentation for each component.
*/
package main
