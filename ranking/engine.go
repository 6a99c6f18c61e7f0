// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"database/sql"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"
)

// dayFormat is the calendar-day granularity used for streaks.
const dayFormat = "2006-01-02"

// Activity is one qualifying user action, emitted by a command handler
// after its own mutation has committed.
type Activity struct {
	ActorID    string
	Kind       Kind
	OccurredAt time.Time
}

type message struct {
	activity Activity
	// barrier, when non-nil, marks a sync point: the worker closes it
	// once everything queued before it has been applied.
	barrier chan struct{}
}

// Engine consumes activity events asynchronously and applies the
// scoring policy: points, streaks, and badges per actor.
//
// Events for the same actor always land on the same shard, so a given
// actor's updates are applied in submission order. Commands never wait
// on the engine; leaderboard state is eventually consistent.
type Engine struct {
	db     *sql.DB
	policy Policy

	shards []chan message
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool

	// overridable in tests
	maxAttempts int
	backoff     func(attempt int) time.Duration
}

// NewEngine starts an engine with the given number of shard workers.
func NewEngine(db *sql.DB, policy Policy, shards int) *Engine {
	if shards < 1 {
		shards = 1
	}

	e := &Engine{
		db:          db,
		policy:      policy,
		shards:      make([]chan message, shards),
		maxAttempts: 3,
		backoff: func(attempt int) time.Duration {
			return 100 * time.Millisecond << attempt
		},
	}

	for i := range e.shards {
		ch := make(chan message, 256)
		e.shards[i] = ch
		e.wg.Add(1)
		go e.worker(ch)
	}

	return e
}

// Submit queues an activity for asynchronous processing. Events
// submitted after Close are dropped with a warning.
func (e *Engine) Submit(a Activity) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		slog.Warn("activity dropped, ranking engine closed", "actor", a.ActorID, "kind", a.Kind)
		return
	}

	e.shards[e.shardFor(a.ActorID)] <- message{activity: a}
}

// Flush blocks until every activity submitted before the call has been
// applied. Used by tests and shutdown.
func (e *Engine) Flush() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	barriers := make([]chan struct{}, len(e.shards))
	for i, ch := range e.shards {
		b := make(chan struct{})
		barriers[i] = b
		ch <- message{barrier: b}
	}
	e.mu.Unlock()

	for _, b := range barriers {
		<-b
	}
}

// Close drains all queued activities and stops the workers.
func (e *Engine) Close() {
	e.Flush()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	for _, ch := range e.shards {
		close(ch)
	}
	e.mu.Unlock()

	e.wg.Wait()
}

func (e *Engine) shardFor(actorID string) int {
	h := fnv.New32a()
	h.Write([]byte(actorID))
	return int(h.Sum32() % uint32(len(e.shards)))
}

func (e *Engine) worker(ch chan message) {
	defer e.wg.Done()

	for msg := range ch {
		if msg.barrier != nil {
			close(msg.barrier)
			continue
		}
		e.applyWithRetry(msg.activity)
	}
}

// applyWithRetry retries transient storage failures with exponential
// backoff. Ranking failures are never surfaced to the command caller;
// after the final attempt the event is dropped and logged.
func (e *Engine) applyWithRetry(a Activity) {
	var err error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(e.backoff(attempt - 1))
		}

		err = e.apply(a)
		if err == nil {
			return
		}

		slog.Warn("failed to apply activity",
			"actor", a.ActorID,
			"kind", a.Kind,
			"attempt", attempt+1,
			"error", err,
		)
	}

	slog.Error("giving up on activity", "actor", a.ActorID, "kind", a.Kind, "error", err)
}

// apply updates one actor's ranking record in a single transaction:
// points, then streak against the calendar day of the event, then any
// newly crossed badges.
func (e *Engine) apply(a Activity) error {
	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	day := a.OccurredAt.UTC().Format(dayFormat)

	var points, streak int
	var lastDay sql.NullString
	err = tx.QueryRow(`
		SELECT points, streak, last_activity_day FROM user_ranking WHERE user_id = $1
	`, a.ActorID).Scan(&points, &streak, &lastDay)

	switch err {
	case sql.ErrNoRows:
		points = e.policy.pointsFor(a.Kind)
		streak = 1
		_, err = tx.Exec(`
			INSERT INTO user_ranking (user_id, points, streak, last_activity_day)
			VALUES ($1, $2, $3, $4)
		`, a.ActorID, points, streak, day)
		if err != nil {
			return fmt.Errorf("failed to insert ranking: %w", err)
		}
	case nil:
		points += e.policy.pointsFor(a.Kind)
		streak = nextStreak(streak, lastDay.String, day)
		_, err = tx.Exec(`
			UPDATE user_ranking SET points = $1, streak = $2, last_activity_day = $3
			WHERE user_id = $4
		`, points, streak, day, a.ActorID)
		if err != nil {
			return fmt.Errorf("failed to update ranking: %w", err)
		}
	default:
		return fmt.Errorf("failed to query ranking: %w", err)
	}

	// Badge awarding is idempotent: crossed thresholds insert once and
	// the primary key swallows re-awards.
	for _, rule := range e.policy.Badges {
		crossed := (rule.Points > 0 && points >= rule.Points) ||
			(rule.Streak > 0 && streak >= rule.Streak)
		if !crossed {
			continue
		}

		_, err = tx.Exec(`
			INSERT INTO user_badge (user_id, badge_id, earned_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, badge_id) DO NOTHING
		`, a.ActorID, rule.ID, a.OccurredAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to award badge %s: %w", rule.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ranking update: %w", err)
	}

	return nil
}

// nextStreak applies the calendar-day streak rule: same day leaves the
// streak unchanged, the following day extends it, anything else resets
// it to 1.
func nextStreak(streak int, lastDay, day string) int {
	if lastDay == day {
		return streak
	}

	if last, err := time.Parse(dayFormat, lastDay); err == nil {
		if last.AddDate(0, 0, 1).Format(dayFormat) == day {
			return streak + 1
		}
	}

	return 1
}
