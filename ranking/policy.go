// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind identifies a qualifying activity.
type Kind string

const (
	KindPost       Kind = "post"
	KindReply      Kind = "reply"
	KindReaction   Kind = "reaction"
	KindVote       Kind = "vote"
	KindAttendance Kind = "attendance"
)

var recognizedKinds = map[string]bool{
	string(KindPost):       true,
	string(KindReply):      true,
	string(KindReaction):   true,
	string(KindVote):       true,
	string(KindAttendance): true,
}

// Policy is the scoring configuration: how many points each activity
// kind is worth and which badges exist. Values are policy, not
// protocol, so deployments may override them with a YAML file.
type Policy struct {
	Points map[string]int `yaml:"points"`
	Badges []BadgeRule    `yaml:"badges"`
}

// BadgeRule awards a badge once the actor's cumulative points or streak
// crosses the threshold. Exactly one of Points/Streak should be set.
type BadgeRule struct {
	ID     string `yaml:"id"`
	Points int    `yaml:"points,omitempty"`
	Streak int    `yaml:"streak,omitempty"`
}

// DefaultPolicy returns the compiled-in scoring table.
func DefaultPolicy() Policy {
	return Policy{
		Points: map[string]int{
			string(KindPost):       5,
			string(KindReply):      2,
			string(KindReaction):   1,
			string(KindVote):       1,
			string(KindAttendance): 3,
		},
		Badges: []BadgeRule{
			{ID: "first-steps", Points: 10},
			{ID: "rising-voice", Points: 100},
			{ID: "top-contributor", Points: 1000},
			{ID: "week-streak", Streak: 7},
			{ID: "month-streak", Streak: 30},
		},
	}
}

// LoadPolicy reads a YAML scoring policy from path.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read scoring policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("failed to parse scoring policy: %w", err)
	}

	if err := p.Validate(); err != nil {
		return Policy{}, err
	}

	return p, nil
}

// Validate checks that the policy only names recognized activity kinds
// and that badge rules are well-formed.
func (p Policy) Validate() error {
	for kind, points := range p.Points {
		if !recognizedKinds[kind] {
			return fmt.Errorf("unrecognized activity kind %q in scoring policy", kind)
		}
		if points < 0 {
			return fmt.Errorf("negative point value for %q", kind)
		}
	}

	seen := make(map[string]bool)
	for _, rule := range p.Badges {
		if rule.ID == "" {
			return fmt.Errorf("badge rule missing id")
		}
		if seen[rule.ID] {
			return fmt.Errorf("duplicate badge id %q", rule.ID)
		}
		seen[rule.ID] = true
		if rule.Points <= 0 && rule.Streak <= 0 {
			return fmt.Errorf("badge %q has no threshold", rule.ID)
		}
	}

	return nil
}

func (p Policy) pointsFor(kind Kind) int {
	return p.Points[string(kind)]
}
