// Package session holds per-player activity state shared by the terminal
// and web front ends.
package session

import (
	"errors"

	"github.com/verte-zerg/typist/internal/scoring"
)

var (
	// ErrNoPrompt is returned when submitting without a current prompt.
	ErrNoPrompt = errors.New("no prompt to submit against")
	// ErrRunFinished is returned when asking for a prompt after the last round.
	ErrRunFinished = errors.New("run finished")
)

// Prompt is one round handed to the player.
type Prompt struct {
	Text  string `json:"prompt"`
	Round int    `json:"round"`
	Total int    `json:"rounds"`
}

// Run is a fixed list of prompts scored one attempt at a time.
// A Run is not safe for concurrent use.
type Run struct {
	label    string
	prompts  []string
	pos      int
	pending  bool
	attempts []scoring.Attempt
}

// NewRun returns a run over prompts recorded under label.
func NewRun(label string, prompts []string) *Run {
	return &Run{label: label, prompts: append([]string(nil), prompts...)}
}

// Label is the score log mode for the run.
func (r *Run) Label() string {
	return r.label
}

// Total returns the number of rounds.
func (r *Run) Total() int {
	return len(r.prompts)
}

// Done reports whether every round has been submitted.
func (r *Run) Done() bool {
	return r.pos >= len(r.prompts)
}

// Next returns the current prompt. Calling it again before Submit returns
// the same prompt.
func (r *Run) Next() (Prompt, error) {
	if r.Done() {
		return Prompt{}, ErrRunFinished
	}
	r.pending = true
	return Prompt{Text: r.prompts[r.pos], Round: r.pos + 1, Total: len(r.prompts)}, nil
}

// Submit scores typed against the current prompt and advances the run.
func (r *Run) Submit(typed string, seconds float64) (scoring.Attempt, error) {
	if !r.pending || r.Done() {
		return scoring.Attempt{}, ErrNoPrompt
	}
	a := scoring.Compute(r.prompts[r.pos], typed, seconds)
	r.attempts = append(r.attempts, a)
	r.pos++
	r.pending = false
	return a, nil
}

// Attempts returns the scored attempts so far.
func (r *Run) Attempts() []scoring.Attempt {
	return append([]scoring.Attempt(nil), r.attempts...)
}

// Summary averages the run's attempts.
type Summary struct {
	Label  string  `json:"mode"`
	Rounds int     `json:"rounds"`
	AvgNet float64 `json:"avg_net"`
	AvgAcc float64 `json:"avg_acc"`
}

// Summary aggregates the attempts submitted so far.
func (r *Run) Summary() (Summary, error) {
	net, acc, err := scoring.Aggregate(r.attempts)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Label: r.label, Rounds: len(r.attempts), AvgNet: net, AvgAcc: acc}, nil
}
