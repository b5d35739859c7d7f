// Package model defines shared data structures.
package model

import "time"

// Config defines per-player practice settings.
type Config struct {
	Potty        bool
	DrillRounds  int
	DrillWords   int
	SprintRounds int
	StoryRounds  int
	BossDuration time.Duration
	CapsPct      float64
	PunctPct     float64
	PunctSet     string
	// Words overrides the built-in drill pool when non-empty.
	Words []string
}

// DefaultConfig returns the built-in practice settings.
func DefaultConfig() Config {
	return Config{
		Potty:        true,
		DrillRounds:  10,
		DrillWords:   4,
		SprintRounds: 6,
		StoryRounds:  5,
		BossDuration: 60 * time.Second,
		PunctSet:     ".,;:!?",
	}
}

// ScoreRecord summarizes one completed activity.
type ScoreRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Mode        string    `json:"mode"`
	NetWPM      float64   `json:"net_wpm"`
	AccuracyPct float64   `json:"accuracy_pct"`
}

// Choice is a labelled edge offered after a passed chapter.
type Choice struct {
	Label  string `json:"label"`
	Target string `json:"target"`
}

// StoryNode is one chapter of the story graph.
type StoryNode struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	LessonKeys  string   `json:"lesson_keys"`
	SuccessText string   `json:"success_text"`
	FailureText string   `json:"failure_text"`
	Choices     []Choice `json:"choices"`
	// FailureNext is followed on failure; empty repeats the node.
	FailureNext string `json:"failure_next,omitempty"`
}

// Terminal reports whether passing the node ends the story.
func (n StoryNode) Terminal() bool {
	return len(n.Choices) == 0
}

// History result tags.
const (
	ResultSuccess = "success"
	ResultFail    = "fail"
	ResultChoice  = "choice"
)

// HistoryEntry records one chapter outcome or branch choice.
type HistoryEntry struct {
	Node   string  `json:"node"`
	AvgNet float64 `json:"avg_net,omitempty"`
	AvgAcc float64 `json:"avg_acc,omitempty"`
	Result string  `json:"result"`
	Choice string  `json:"choice,omitempty"`
}

// StoryProgress is the persisted player position in the story.
type StoryProgress struct {
	CurrentNode string         `json:"current_node"`
	History     []HistoryEntry `json:"history"`
	// PendingChoices is set between a passed chapter and the branch choice.
	PendingChoices []Choice `json:"pending_choices,omitempty"`
}

// NewStoryProgress returns fresh progress positioned at start.
func NewStoryProgress(start string) StoryProgress {
	return StoryProgress{CurrentNode: start, History: []HistoryEntry{}}
}
