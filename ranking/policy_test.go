// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPolicyValid(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("Default policy should validate, got: %v", err)
	}
}

func TestLoadPolicy(t *testing.T) {
	writePolicy := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "scoring.yaml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write policy file: %v", err)
		}
		return path
	}

	t.Run("valid file", func(t *testing.T) {
		path := writePolicy(t, `
points:
  post: 10
  reply: 4
  reaction: 2
  vote: 2
  attendance: 5
badges:
  - id: getting-started
    points: 20
  - id: regular
    streak: 5
`)
		policy, err := LoadPolicy(path)
		if err != nil {
			t.Fatalf("Expected policy to load, got: %v", err)
		}
		if policy.pointsFor(KindPost) != 10 {
			t.Errorf("Expected 10 points per post, got %d", policy.pointsFor(KindPost))
		}
		if len(policy.Badges) != 2 {
			t.Errorf("Expected 2 badge rules, got %d", len(policy.Badges))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writePolicy(t, "points: [not: a: map")
		if _, err := LoadPolicy(path); err == nil {
			t.Error("Expected error for malformed yaml")
		}
	})

	invalidTests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown activity kind",
			content: `
points:
  post: 5
  teleport: 9
`,
		},
		{
			name: "negative points",
			content: `
points:
  post: -5
`,
		},
		{
			name: "duplicate badge id",
			content: `
points:
  post: 5
badges:
  - id: twice
    points: 10
  - id: twice
    streak: 3
`,
		},
		{
			name: "badge without threshold",
			content: `
points:
  post: 5
badges:
  - id: unreachable
`,
		},
		{
			name: "badge without id",
			content: `
points:
  post: 5
badges:
  - points: 10
`,
		},
	}

	for _, tt := range invalidTests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePolicy(t, tt.content)
			if _, err := LoadPolicy(path); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestPointsForUnknownKind(t *testing.T) {
	policy := Policy{Points: map[string]int{string(KindPost): 5}}
	if got := policy.pointsFor(Kind("teleport")); got != 0 {
		t.Errorf("Expected 0 points for an unconfigured kind, got %d", got)
	}
}
