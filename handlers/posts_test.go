// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/sankalp/models"
	"github.com/danielhkuo/sankalp/ranking"
	"github.com/danielhkuo/sankalp/testutil"
)

func newTestPostHandler(t *testing.T) (*PostHandler, *sql.DB, *ranking.Engine) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { db.Close() })

	engine := ranking.NewEngine(db, ranking.DefaultPolicy(), 1)
	t.Cleanup(engine.Close)

	return NewPostHandler(db, testutil.GetTestConfig(), engine), db, engine
}

func TestCreatePost(t *testing.T) {
	handler, db, _ := newTestPostHandler(t)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name: "valid post",
			requestBody: models.CreatePostRequest{
				Author:  "ramesh",
				Handle:  "@rameshkumar",
				Content: "Just joined Sankalp!",
				Level:   models.LevelNational,
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "level defaults to local",
			requestBody: models.CreatePostRequest{
				Author:  "priya",
				Content: "Hello from the neighborhood",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "empty content",
			requestBody: models.CreatePostRequest{
				Author:  "ramesh",
				Content: "",
				Level:   models.LevelLocal,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "whitespace only content",
			requestBody: models.CreatePostRequest{
				Author:  "ramesh",
				Content: "   ",
				Level:   models.LevelLocal,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing author",
			requestBody: models.CreatePostRequest{
				Content: "anonymous thoughts",
				Level:   models.LevelLocal,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown level",
			requestBody: models.CreatePostRequest{
				Author:  "ramesh",
				Content: "hi",
				Level:   "galactic",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/posts", tt.requestBody, nil)
			w := httptest.NewRecorder()
			handler.CreatePost(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.CreatePostResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.PostID == "" {
					t.Error("Expected non-empty post_id")
				}

				var level string
				err := db.QueryRow(`SELECT level FROM post WHERE id = $1`, resp.PostID).Scan(&level)
				if err != nil {
					t.Fatalf("Failed to query post: %v", err)
				}
				if !models.ValidLevel(level) {
					t.Errorf("Stored level %q is not valid", level)
				}
			}
		})
	}
}

func TestAddReply(t *testing.T) {
	handler, db, _ := newTestPostHandler(t)

	postID := testutil.CreateTestPost(t, db, "a", models.LevelLocal)

	// Post starts with zero comments
	counters, err := engagementCounters(db, postID)
	if err != nil {
		t.Fatalf("Failed to read counters: %v", err)
	}
	if counters.Comments != 0 {
		t.Fatalf("Expected 0 comments on fresh post, got %d", counters.Comments)
	}

	// First reply
	req := testutil.MakeRequest("POST", "/posts/"+postID+"/replies", models.AddReplyRequest{
		Author:  "b",
		Content: "hello",
	}, nil)
	req.SetPathValue("id", postID)
	w := httptest.NewRecorder()
	handler.AddReply(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.AddReplyResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.ReplyID == "" {
		t.Error("Expected non-empty reply_id")
	}
	if resp.Comments != 1 {
		t.Errorf("Expected comments=1 after first reply, got %d", resp.Comments)
	}

	// Nested reply targeting the first reply
	req = testutil.MakeRequest("POST", "/posts/"+postID+"/replies", models.AddReplyRequest{
		Author:        "c",
		Content:       "nested hello",
		ParentReplyID: &resp.ReplyID,
	}, nil)
	req.SetPathValue("id", postID)
	w = httptest.NewRecorder()
	handler.AddReply(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var nested models.AddReplyResponse
	testutil.AssertJSON(t, w, &nested)
	if nested.Comments != 2 {
		t.Errorf("Expected comments=2 after nested reply, got %d", nested.Comments)
	}

	// Counter always equals the reply set size
	counters, err = engagementCounters(db, postID)
	if err != nil {
		t.Fatalf("Failed to read counters: %v", err)
	}
	if counters.Comments != 2 {
		t.Errorf("Expected derived comments=2, got %d", counters.Comments)
	}

	errorTests := []struct {
		name           string
		postID         string
		requestBody    models.AddReplyRequest
		expectedStatus int
	}{
		{
			name:           "post not found",
			postID:         "nonexistent",
			requestBody:    models.AddReplyRequest{Author: "b", Content: "hi"},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "parent reply not found",
			postID: postID,
			requestBody: models.AddReplyRequest{
				Author:        "b",
				Content:       "hi",
				ParentReplyID: strPtr("no-such-reply"),
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "empty content",
			postID:         postID,
			requestBody:    models.AddReplyRequest{Author: "b", Content: ""},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing author",
			postID:         postID,
			requestBody:    models.AddReplyRequest{Content: "hi"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/posts/"+tt.postID+"/replies", tt.requestBody, nil)
			req.SetPathValue("id", tt.postID)
			w := httptest.NewRecorder()
			handler.AddReply(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestReactToggle(t *testing.T) {
	handler, db, _ := newTestPostHandler(t)

	postID := testutil.CreateTestPost(t, db, "a", models.LevelLocal)

	like := func() models.ReactResponse {
		req := testutil.MakeRequest("POST", "/posts/"+postID+"/reactions", models.ReactRequest{
			ActorID: "u1",
			Kind:    models.ReactionLike,
		}, nil)
		req.SetPathValue("id", postID)
		w := httptest.NewRecorder()
		handler.React(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ReactResponse
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	// First reaction adds
	resp := like()
	if !resp.Reacted {
		t.Error("Expected reacted=true after first like")
	}
	if resp.Counters.Likes != 1 {
		t.Errorf("Expected likes=1, got %d", resp.Counters.Likes)
	}

	// Same actor repeating the call removes the reaction, never double-counts
	resp = like()
	if resp.Reacted {
		t.Error("Expected reacted=false after toggling off")
	}
	if resp.Counters.Likes != 0 {
		t.Errorf("Expected likes=0 after toggle off, got %d", resp.Counters.Likes)
	}

	// Share is tracked independently of like
	req := testutil.MakeRequest("POST", "/posts/"+postID+"/reactions", models.ReactRequest{
		ActorID: "u1",
		Kind:    models.ReactionShare,
	}, nil)
	req.SetPathValue("id", postID)
	w := httptest.NewRecorder()
	handler.React(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var shareResp models.ReactResponse
	testutil.AssertJSON(t, w, &shareResp)
	if shareResp.Counters.Shares != 1 || shareResp.Counters.Likes != 0 {
		t.Errorf("Expected shares=1, likes=0, got %+v", shareResp.Counters)
	}

	errorTests := []struct {
		name           string
		postID         string
		requestBody    models.ReactRequest
		expectedStatus int
	}{
		{
			name:           "post not found",
			postID:         "nonexistent",
			requestBody:    models.ReactRequest{ActorID: "u1", Kind: models.ReactionLike},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unknown kind",
			postID:         postID,
			requestBody:    models.ReactRequest{ActorID: "u1", Kind: "boost"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing actor",
			postID:         postID,
			requestBody:    models.ReactRequest{Kind: models.ReactionLike},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/posts/"+tt.postID+"/reactions", tt.requestBody, nil)
			req.SetPathValue("id", tt.postID)
			w := httptest.NewRecorder()
			handler.React(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestGetPostReplyTree(t *testing.T) {
	handler, db, _ := newTestPostHandler(t)

	postID := testutil.CreateTestPost(t, db, "a", models.LevelState)

	// a root reply with one nested child, plus a second root reply
	addReply := func(parent *string, author, content string) string {
		req := testutil.MakeRequest("POST", "/posts/"+postID+"/replies", models.AddReplyRequest{
			Author:        author,
			Content:       content,
			ParentReplyID: parent,
		}, nil)
		req.SetPathValue("id", postID)
		w := httptest.NewRecorder()
		handler.AddReply(w, req)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.AddReplyResponse
		testutil.AssertJSON(t, w, &resp)
		return resp.ReplyID
	}

	first := addReply(nil, "b", "first")
	addReply(&first, "c", "child of first")
	addReply(nil, "d", "second root")

	req := testutil.MakeRequest("GET", "/posts/"+postID, nil, nil)
	req.SetPathValue("id", postID)
	w := httptest.NewRecorder()
	handler.GetPost(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var post models.Post
	testutil.AssertJSON(t, w, &post)

	if post.Comments != 3 {
		t.Errorf("Expected comments=3, got %d", post.Comments)
	}
	if len(post.Replies) != 2 {
		t.Fatalf("Expected 2 root replies, got %d", len(post.Replies))
	}
	if post.Replies[0].ID != first {
		t.Errorf("Expected first root reply %s, got %s", first, post.Replies[0].ID)
	}
	if len(post.Replies[0].Replies) != 1 {
		t.Fatalf("Expected 1 nested reply under first root, got %d", len(post.Replies[0].Replies))
	}
	if post.Replies[0].Replies[0].Content != "child of first" {
		t.Errorf("Unexpected nested reply content %q", post.Replies[0].Replies[0].Content)
	}

	// Unknown post
	req = testutil.MakeRequest("GET", "/posts/nonexistent", nil, nil)
	req.SetPathValue("id", "nonexistent")
	w = httptest.NewRecorder()
	handler.GetPost(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestListPosts(t *testing.T) {
	handler, db, _ := newTestPostHandler(t)

	testutil.CreateTestPost(t, db, "a", models.LevelLocal)
	testutil.CreateTestPost(t, db, "b", models.LevelState)
	testutil.CreateTestPost(t, db, "c", models.LevelState)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{name: "all posts", query: "", expectedStatus: http.StatusOK, expectedCount: 3},
		{name: "state only", query: "?level=state", expectedStatus: http.StatusOK, expectedCount: 2},
		{name: "national empty", query: "?level=national", expectedStatus: http.StatusOK, expectedCount: 0},
		{name: "invalid level", query: "?level=galactic", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/posts"+tt.query, nil, nil)
			w := httptest.NewRecorder()
			handler.ListPosts(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var posts []models.Post
				testutil.AssertJSON(t, w, &posts)
				if len(posts) != tt.expectedCount {
					t.Errorf("Expected %d posts, got %d", tt.expectedCount, len(posts))
				}
			}
		})
	}
}

func strPtr(s string) *string {
	return &s
}
