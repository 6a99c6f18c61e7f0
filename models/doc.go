// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePostRequest: author, handle, content, level
  - AddReplyRequest: author, content, optional parent_reply_id
  - ReactRequest: actor_id, kind (like or share)
  - CreatePollRequest: question, options, created_by, ends_at
  - VoteRequest: voter_id, option_index
  - CreateEventRequest: name, description, location, starts_at
  - ToggleAttendanceRequest: user_id
  - CreateOrganizationRequest: name, handle, image_url
  - ToggleFollowRequest: user_id

# Response Types

Types for JSON responses:

  - CreatePostResponse: post_id
  - AddReplyResponse: reply_id, comments
  - ReactResponse: reacted, counters
  - CreatePollResponse: poll_id
  - VoteResponse: total_votes, tally
  - CreateEventResponse: event_id
  - AttendanceResponse: event_id, attending, attendees
  - CreateOrganizationResponse: org_id
  - FollowResponse: org_id, following, followers
  - LeaderboardResponse: page, page_size, total, entries
  - ErrorResponse: error, message

# Domain Types

Internal data structures and read projections:

  - Post: post with derived engagement counters and reply tree
  - Reply: reply node with parent back-reference
  - Poll: poll with live tally and derived closed flag
  - OptionTally: per-option vote count and display percentage
  - Event: event with derived attendee count
  - Organization: organization with derived follower count
  - UserRanking: points, streak, badges, with rank derived on read

Every count in a projection is derived from a backing set; projections
are value copies that callers must not treat as live state.

# Constants

Visibility levels:

	LevelLocal    = "local"
	LevelState    = "state"
	LevelNational = "national"

Reaction kinds:

	ReactionLike  = "like"
	ReactionShare = "share"
*/
package models
