// Package scoring turns typing attempts into speed and accuracy metrics.
package scoring

import (
	"encoding/json"
	"errors"
	"math"
)

// Epsilon replaces non-positive elapsed times.
const Epsilon = 1e-6

// CharsPerWord is the standard word length used for WPM.
const CharsPerWord = 5.0

// ErrNoAttempts is returned when aggregating an empty session.
var ErrNoAttempts = errors.New("no attempts to aggregate")

// Attempt is one completed typing attempt. Metrics are derived at construction.
type Attempt struct {
	expected    string
	typed       string
	seconds     float64
	grossWPM    float64
	accuracyPct float64
	netWPM      float64
}

// Compute scores typed against expected over the elapsed seconds.
func Compute(expected, typed string, seconds float64) Attempt {
	if seconds <= 0 {
		seconds = Epsilon
	}
	exp := []rune(expected)
	got := []rune(typed)

	total := len(exp)
	if total < 1 {
		total = 1
	}
	accuracy := float64(CorrectChars(exp, got)) / float64(total) * 100.0
	gross := (float64(len(got)) / CharsPerWord) / (seconds / 60.0)
	return Attempt{
		expected:    expected,
		typed:       typed,
		seconds:     seconds,
		grossWPM:    gross,
		accuracyPct: accuracy,
		netWPM:      gross * (accuracy / 100.0),
	}
}

// CorrectChars counts position-aligned matches.
func CorrectChars(expected, typed []rune) int {
	n := len(typed)
	if len(expected) < n {
		n = len(expected)
	}
	correct := 0
	for i := 0; i < n; i++ {
		if typed[i] == expected[i] {
			correct++
		}
	}
	return correct
}

// Expected returns the reference text.
func (a Attempt) Expected() string { return a.expected }

// Typed returns the text the player entered.
func (a Attempt) Typed() string { return a.typed }

// Seconds returns the clamped elapsed time.
func (a Attempt) Seconds() float64 { return a.seconds }

// GrossWPM returns uncorrected words per minute.
func (a Attempt) GrossWPM() float64 { return a.grossWPM }

// AccuracyPct returns the accuracy in [0, 100].
func (a Attempt) AccuracyPct() float64 { return a.accuracyPct }

// NetWPM returns gross WPM scaled by accuracy.
func (a Attempt) NetWPM() float64 { return a.netWPM }

type attemptJSON struct {
	Expected    string  `json:"expected"`
	Typed       string  `json:"typed"`
	Seconds     float64 `json:"seconds"`
	GrossWPM    float64 `json:"gross_wpm"`
	AccuracyPct float64 `json:"accuracy_pct"`
	NetWPM      float64 `json:"net_wpm"`
}

// MarshalJSON implements json.Marshaler.
func (a Attempt) MarshalJSON() ([]byte, error) {
	return json.Marshal(attemptJSON{
		Expected:    a.expected,
		Typed:       a.typed,
		Seconds:     a.seconds,
		GrossWPM:    a.grossWPM,
		AccuracyPct: a.accuracyPct,
		NetWPM:      a.netWPM,
	})
}

// Aggregate returns the mean net WPM and accuracy across attempts.
func Aggregate(attempts []Attempt) (avgNet, avgAcc float64, err error) {
	if len(attempts) == 0 {
		return 0, 0, ErrNoAttempts
	}
	var totalNet, totalAcc float64
	for _, a := range attempts {
		totalNet += a.netWPM
		totalAcc += a.accuracyPct
	}
	count := float64(len(attempts))
	return totalNet / count, totalAcc / count, nil
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
