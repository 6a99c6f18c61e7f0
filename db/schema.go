// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the engagement engine.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The DDL is restricted to the dialect both SQLite and PostgreSQL
// accept: no serial columns, no NOW() defaults (timestamps are always
// bound from Go), no JSON columns.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Every count the API exposes (likes, shares, comments, votes,
// attendees, followers) is a COUNT over one of the membership tables
// below. Counts are never stored as their own columns.
const schema = `
-- Posts
CREATE TABLE IF NOT EXISTS post (
    id TEXT PRIMARY KEY,
    author TEXT NOT NULL,
    handle TEXT NOT NULL,
    content TEXT NOT NULL,
    level TEXT NOT NULL CHECK (level IN ('local', 'state', 'national')),
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_post_level ON post(level);
CREATE INDEX IF NOT EXISTS idx_post_created_at ON post(created_at);

-- Replies: flat arena with parent pointers, assembled into a tree on read
CREATE TABLE IF NOT EXISTS reply (
    id TEXT PRIMARY KEY,
    post_id TEXT NOT NULL REFERENCES post(id) ON DELETE CASCADE,
    parent_reply_id TEXT REFERENCES reply(id),
    author TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reply_post_id ON reply(post_id);

-- Reactions: one row per (post, actor, kind); likes/shares are counts here
CREATE TABLE IF NOT EXISTS reaction (
    post_id TEXT NOT NULL REFERENCES post(id) ON DELETE CASCADE,
    actor_id TEXT NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('like', 'share')),
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (post_id, actor_id, kind)
);

CREATE INDEX IF NOT EXISTS idx_reaction_post_kind ON reaction(post_id, kind);

-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    created_by TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    ends_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS poll_option (
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    idx INTEGER NOT NULL,
    label TEXT NOT NULL,
    PRIMARY KEY (poll_id, idx)
);

-- The primary key makes a second vote by the same voter a constraint
-- violation, so the voter set can never hold a voter twice.
CREATE TABLE IF NOT EXISTS poll_vote (
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL,
    option_idx INTEGER NOT NULL,
    voted_at TIMESTAMP NOT NULL,
    PRIMARY KEY (poll_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_poll_vote_option ON poll_vote(poll_id, option_idx);

-- Events
CREATE TABLE IF NOT EXISTS event (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    location TEXT,
    starts_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS event_attendee (
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    joined_at TIMESTAMP NOT NULL,
    PRIMARY KEY (event_id, user_id)
);

-- Organizations
CREATE TABLE IF NOT EXISTS organization (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    handle TEXT NOT NULL UNIQUE,
    image_url TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS org_follower (
    org_id TEXT NOT NULL REFERENCES organization(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    followed_at TIMESTAMP NOT NULL,
    PRIMARY KEY (org_id, user_id)
);

-- Rankings: points and streak are ground truth, rank is derived on read.
-- last_activity_day is a calendar day in YYYY-MM-DD form.
CREATE TABLE IF NOT EXISTS user_ranking (
    user_id TEXT PRIMARY KEY,
    points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
    streak INTEGER NOT NULL DEFAULT 0,
    last_activity_day TEXT
);

CREATE INDEX IF NOT EXISTS idx_user_ranking_points ON user_ranking(points);

CREATE TABLE IF NOT EXISTS user_badge (
    user_id TEXT NOT NULL,
    badge_id TEXT NOT NULL,
    earned_at TIMESTAMP NOT NULL,
    PRIMARY KEY (user_id, badge_id)
);
`
