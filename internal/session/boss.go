package session

import (
	"fmt"
	"time"

	"github.com/verte-zerg/typist/internal/scoring"
)

// Picker chooses a random prompt from a bank.
type Picker interface {
	Pick(items []string) string
}

// Boss is a timed battle over a prompt bank. Prompts issued before the
// deadline are still counted when submitted after it.
// A Boss is not safe for concurrent use.
type Boss struct {
	bank     []string
	picker   Picker
	now      func() time.Time
	duration time.Duration
	deadline time.Time
	current  string
	pending  bool
	tally    scoring.Tally
}

// NewBoss starts a battle of the given duration at now().
func NewBoss(bank []string, picker Picker, duration time.Duration, now func() time.Time) *Boss {
	if now == nil {
		now = time.Now
	}
	if duration <= 0 {
		duration = 60 * time.Second
	}
	return &Boss{
		bank:     append([]string(nil), bank...),
		picker:   picker,
		now:      now,
		duration: duration,
		deadline: now().Add(duration),
	}
}

// BossLabel is the score log mode for a battle of d.
func BossLabel(d time.Duration) string {
	return fmt.Sprintf("Boss Battle %ds", int(d.Seconds()))
}

// Label is the score log mode for the battle.
func (b *Boss) Label() string {
	return BossLabel(b.duration)
}

// Duration returns the battle length.
func (b *Boss) Duration() time.Duration {
	return b.duration
}

// Remaining returns the time left, never negative.
func (b *Boss) Remaining() time.Duration {
	left := b.deadline.Sub(b.now())
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether the deadline has passed.
func (b *Boss) Expired() bool {
	return b.Remaining() <= 0
}

// Next picks a prompt from the bank.
func (b *Boss) Next() (string, error) {
	if b.Expired() {
		return "", ErrRunFinished
	}
	if !b.pending {
		b.current = b.picker.Pick(b.bank)
		b.pending = true
	}
	return b.current, nil
}

// Submit counts typed against the current prompt.
func (b *Boss) Submit(typed string) error {
	if !b.pending {
		return ErrNoPrompt
	}
	b.tally.Add(b.current, typed)
	b.pending = false
	b.current = ""
	return nil
}

// Tally returns the running totals.
func (b *Boss) Tally() scoring.Tally {
	return b.tally
}

// Result scores the battle over its full duration.
func (b *Boss) Result() scoring.TimedResult {
	return b.tally.Result(b.duration)
}
