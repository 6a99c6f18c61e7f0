// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/sankalp/cliparse"
	"github.com/danielhkuo/sankalp/db"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full
// schema. Each call gets its own database, so tests stay isolated.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// A unique name per test keeps the shared-cache memory DB private;
	// one connection sidesteps SQLite writer locking.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3510,
		DatabaseURL:  "file:test?mode=memory",
		DatabaseType: "sqlite",
		RatePerMin:   120,
	}
}

// CreateTestPost inserts a post and returns its ID
func CreateTestPost(t *testing.T, conn *sql.DB, author, level string) string {
	t.Helper()

	postID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO post (id, author, handle, content, level, created_at)
		VALUES ($1, $2, $3, 'Test post content', $4, $5)
	`, postID, author, "@"+author, level, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}

	return postID
}

// CreateTestPoll inserts a poll with the given options and returns its ID
func CreateTestPoll(t *testing.T, conn *sql.DB, question string, options []string, endsAt time.Time) string {
	t.Helper()

	pollID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO poll (id, question, created_by, created_at, ends_at)
		VALUES ($1, $2, 'TestUser', $3, $4)
	`, pollID, question, time.Now(), endsAt)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	for i, label := range options {
		_, err := conn.Exec(`
			INSERT INTO poll_option (poll_id, idx, label) VALUES ($1, $2, $3)
		`, pollID, i, label)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
	}

	return pollID
}

// CreateTestEvent inserts an event and returns its ID
func CreateTestEvent(t *testing.T, conn *sql.DB, name string, startsAt time.Time) string {
	t.Helper()

	eventID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO event (id, name, description, location, starts_at, created_at)
		VALUES ($1, $2, 'A test event', 'Community Hall', $3, $4)
	`, eventID, name, startsAt, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	return eventID
}

// CreateTestOrg inserts an organization and returns its ID
func CreateTestOrg(t *testing.T, conn *sql.DB, name, handle string) string {
	t.Helper()

	orgID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO organization (id, name, handle, image_url, created_at)
		VALUES ($1, $2, $3, '', $4)
	`, orgID, name, handle, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test organization: %v", err)
	}

	return orgID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
