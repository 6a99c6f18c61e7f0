// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Post visibility levels
const (
	LevelLocal    = "local"
	LevelState    = "state"
	LevelNational = "national"
)

// Reaction kinds
const (
	ReactionLike  = "like"
	ReactionShare = "share"
)

// ValidLevel reports whether s is a recognized visibility level.
func ValidLevel(s string) bool {
	return s == LevelLocal || s == LevelState || s == LevelNational
}

// ValidReaction reports whether s is a recognized reaction kind.
func ValidReaction(s string) bool {
	return s == ReactionLike || s == ReactionShare
}

// Request types

type CreatePostRequest struct {
	Author  string `json:"author"`
	Handle  string `json:"handle"`
	Content string `json:"content"`
	Level   string `json:"level"`
}

type AddReplyRequest struct {
	Author        string  `json:"author"`
	Content       string  `json:"content"`
	ParentReplyID *string `json:"parent_reply_id,omitempty"`
}

type ReactRequest struct {
	ActorID string `json:"actor_id"`
	Kind    string `json:"kind"`
}

type CreatePollRequest struct {
	Question  string    `json:"question"`
	Options   []string  `json:"options"`
	CreatedBy string    `json:"created_by"`
	EndsAt    time.Time `json:"ends_at"`
}

type VoteRequest struct {
	VoterID     string `json:"voter_id"`
	OptionIndex int    `json:"option_index"`
}

type CreateEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
}

type ToggleAttendanceRequest struct {
	UserID string `json:"user_id"`
}

type CreateOrganizationRequest struct {
	Name     string `json:"name"`
	Handle   string `json:"handle"`
	ImageURL string `json:"image_url"`
}

type ToggleFollowRequest struct {
	UserID string `json:"user_id"`
}

// Response types

type CreatePostResponse struct {
	PostID string `json:"post_id"`
}

type AddReplyResponse struct {
	ReplyID  string `json:"reply_id"`
	Comments int    `json:"comments"`
}

type ReactResponse struct {
	Reacted  bool               `json:"reacted"`
	Counters EngagementCounters `json:"counters"`
}

type CreatePollResponse struct {
	PollID string `json:"poll_id"`
}

type VoteResponse struct {
	TotalVotes int           `json:"total_votes"`
	Tally      []OptionTally `json:"tally"`
}

type CreateEventResponse struct {
	EventID string `json:"event_id"`
}

type AttendanceResponse struct {
	EventID   string `json:"event_id"`
	Attending bool   `json:"attending"`
	Attendees int    `json:"attendees"`
}

type CreateOrganizationResponse struct {
	OrgID string `json:"org_id"`
}

type FollowResponse struct {
	OrgID     string `json:"org_id"`
	Following bool   `json:"following"`
	Followers int    `json:"followers"`
}

type LeaderboardResponse struct {
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int           `json:"total"`
	Entries  []UserRanking `json:"entries"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Domain types

// EngagementCounters are derived projections of the reaction and reply
// sets. They are never stored or incremented independently, which keeps
// them impossible to desynchronize from set membership.
type EngagementCounters struct {
	Likes    int `json:"likes"`
	Shares   int `json:"shares"`
	Comments int `json:"comments"`
}

type Post struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Handle    string    `json:"handle"`
	Content   string    `json:"content"`
	Level     string    `json:"level"`
	Likes     int       `json:"likes"`
	Shares    int       `json:"shares"`
	Comments  int       `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
	Posted    string    `json:"posted,omitempty"`
	Replies   []Reply   `json:"replies,omitempty"`
}

// Reply mirrors Post plus a back-reference to its parent. Replies are
// stored flat with parent pointers and assembled into a tree at read
// time, so the stored structure is append-only and cannot cycle.
type Reply struct {
	ID            string    `json:"id"`
	PostID        string    `json:"post_id"`
	ParentReplyID *string   `json:"parent_reply_id,omitempty"`
	Author        string    `json:"author"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	Posted        string    `json:"posted,omitempty"`
	Replies       []Reply   `json:"replies,omitempty"`
}

type OptionTally struct {
	Index   int     `json:"index"`
	Label   string  `json:"label"`
	Votes   int     `json:"votes"`
	Percent float64 `json:"percent"`
}

type Poll struct {
	ID         string        `json:"id"`
	Question   string        `json:"question"`
	CreatedBy  string        `json:"created_by"`
	CreatedAt  time.Time     `json:"created_at"`
	EndsAt     time.Time     `json:"ends_at"`
	Closed     bool          `json:"closed"`
	TotalVotes int           `json:"total_votes"`
	Options    []OptionTally `json:"options"`
}

type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	Attendees   int       `json:"attendees"`
	CreatedAt   time.Time `json:"created_at"`
}

type Organization struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Handle           string    `json:"handle"`
	ImageURL         string    `json:"image_url,omitempty"`
	Followers        int       `json:"followers"`
	FollowersDisplay string    `json:"followers_display,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// UserRanking is a read projection. Rank is assigned from the sorted
// leaderboard at read time, never stored, so it cannot drift from the
// actual position.
type UserRanking struct {
	UserID          string   `json:"user_id"`
	Points          int      `json:"points"`
	Rank            int      `json:"rank"`
	Streak          int      `json:"streak"`
	Badges          []string `json:"badges"`
	LastActivityDay string   `json:"last_activity_day,omitempty"`
}
