package scoring

// Category selects the feedback message pool.
type Category string

const (
	Praise Category = "praise"
	Roast  Category = "roast"
)

// Thresholds is a pair of minimums that must both hold.
type Thresholds struct {
	NetWPM      float64
	AccuracyPct float64
}

// Met reports whether net and accuracy reach both minimums.
func (t Thresholds) Met(net, accuracy float64) bool {
	return net >= t.NetWPM && accuracy >= t.AccuracyPct
}

var (
	// AttemptThresholds decide per-attempt feedback.
	AttemptThresholds = Thresholds{NetWPM: 35, AccuracyPct: 92}
	// BossThresholds decide feedback after a timed battle.
	BossThresholds = Thresholds{NetWPM: 40, AccuracyPct: 95}
)

// Classify picks the feedback category for an attempt.
func Classify(a Attempt) Category {
	return ClassifyWith(AttemptThresholds, a.netWPM, a.accuracyPct)
}

// ClassifyWith picks the feedback category using explicit thresholds.
func ClassifyWith(t Thresholds, net, accuracy float64) Category {
	if t.Met(net, accuracy) {
		return Praise
	}
	return Roast
}
