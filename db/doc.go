// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and
indexes.

# Tables

The schema includes:

  - post: Community posts by scope level
  - reply: Flat reply rows with parent pointers
  - reaction: Per-actor like/share membership
  - poll: Poll metadata and deadline
  - poll_option: Ordered options per poll
  - poll_vote: One vote per voter per poll
  - event: Community events
  - event_attendee: RSVP membership
  - organization: Followable organizations
  - org_follower: Follow membership
  - user_ranking: Points, streak, last activity day per member
  - user_badge: Earned badges per member

# Relationships

Engagement counters are never stored: likes, shares, comments, vote
tallies, attendee counts, and follower counts are all COUNT(*) queries
over the membership tables. Membership primary keys (reaction, poll_vote,
event_attendee, org_follower) are what make toggles idempotent and
duplicate votes impossible.

The DDL sticks to the dialect both lib/pq and modernc.org/sqlite accept,
so one schema serves both drivers.
*/
package db
