package scoring

import "time"

// Tally accumulates characters across a timed battle.
type Tally struct {
	Prompts      int `json:"prompts"`
	CharsTyped   int `json:"chars_typed"`
	CorrectChars int `json:"correct_chars"`
}

// TimedResult is the outcome of a timed battle.
type TimedResult struct {
	Prompts     int     `json:"prompts"`
	GrossWPM    float64 `json:"gross_wpm"`
	AccuracyPct float64 `json:"accuracy_pct"`
	NetWPM      float64 `json:"net_wpm"`
}

// Add records one prompt.
func (t *Tally) Add(expected, typed string) {
	got := []rune(typed)
	t.Prompts++
	t.CharsTyped += len(got)
	t.CorrectChars += CorrectChars([]rune(expected), got)
}

// Result scores the tally against the full battle duration. Accuracy is
// measured against typed characters, not prompt length.
func (t Tally) Result(duration time.Duration) TimedResult {
	seconds := duration.Seconds()
	if seconds < 1 {
		seconds = 1
	}
	accuracy := 0.0
	if t.CharsTyped > 0 {
		accuracy = float64(t.CorrectChars) / float64(t.CharsTyped) * 100.0
	}
	gross := (float64(t.CharsTyped) / CharsPerWord) / (seconds / 60.0)
	return TimedResult{
		Prompts:     t.Prompts,
		GrossWPM:    gross,
		AccuracyPct: accuracy,
		NetWPM:      gross * (accuracy / 100.0),
	}
}

// Category picks the feedback category for the battle.
func (r TimedResult) Category() Category {
	return ClassifyWith(BossThresholds, r.NetWPM, r.AccuracyPct)
}
