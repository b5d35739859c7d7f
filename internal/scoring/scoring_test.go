package scoring

import (
	"errors"
	"math"
	"testing"
	"time"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeExactMatch(t *testing.T) {
	a := Compute("cat", "cat", 36)
	if !approx(a.GrossWPM(), 1.0) {
		t.Fatalf("expected gross 1.0, got %v", a.GrossWPM())
	}
	if !approx(a.AccuracyPct(), 100) {
		t.Fatalf("expected accuracy 100, got %v", a.AccuracyPct())
	}
	if !approx(a.NetWPM(), 1.0) {
		t.Fatalf("expected net 1.0, got %v", a.NetWPM())
	}
}

func TestComputeEmptyTyped(t *testing.T) {
	a := Compute("hello", "", 10)
	if a.GrossWPM() != 0 || a.AccuracyPct() != 0 || a.NetWPM() != 0 {
		t.Fatalf("expected zeros, got %+v", a)
	}
}

func TestComputeEmptyExpected(t *testing.T) {
	a := Compute("", "", 5)
	if a.AccuracyPct() != 0 || a.GrossWPM() != 0 {
		t.Fatalf("unexpected metrics: gross=%v acc=%v", a.GrossWPM(), a.AccuracyPct())
	}
	a = Compute("", "abc", 5)
	if a.AccuracyPct() != 0 {
		t.Fatalf("extra chars must never count as correct, got %v", a.AccuracyPct())
	}
	if a.GrossWPM() <= 0 {
		t.Fatalf("gross WPM counts typed chars")
	}
}

func TestComputeClampsElapsed(t *testing.T) {
	for _, secs := range []float64{0, -3} {
		a := Compute("ab", "ab", secs)
		if a.Seconds() != Epsilon {
			t.Fatalf("expected clamp to epsilon, got %v", a.Seconds())
		}
		if math.IsInf(a.GrossWPM(), 0) || math.IsNaN(a.GrossWPM()) {
			t.Fatalf("gross must be finite, got %v", a.GrossWPM())
		}
	}
}

func TestComputePositionAligned(t *testing.T) {
	cases := []struct {
		expected string
		typed    string
		want     float64
	}{
		{"abcd", "abcd", 100},
		{"abcd", "abxd", 75},
		{"abcd", "ab", 50},
		{"abcd", "abcdef", 100},
		{"abcd", "bcd", 0},
		{"héllo", "héllo", 100},
	}
	for _, tc := range cases {
		a := Compute(tc.expected, tc.typed, 10)
		if !approx(a.AccuracyPct(), tc.want) {
			t.Fatalf("%q vs %q: expected %v, got %v", tc.expected, tc.typed, tc.want, a.AccuracyPct())
		}
	}
}

func TestComputeInvariants(t *testing.T) {
	inputs := [][2]string{
		{"the quick brown fox", "the quick brown fox"},
		{"the quick brown fox", "teh quikc"},
		{"", "abc"},
		{"abc", ""},
		{"short", "much longer than expected"},
	}
	for _, in := range inputs {
		for _, secs := range []float64{0, 0.5, 12, 600} {
			a := Compute(in[0], in[1], secs)
			if a.AccuracyPct() < 0 || a.AccuracyPct() > 100 {
				t.Fatalf("accuracy out of range: %v", a.AccuracyPct())
			}
			if a.NetWPM() > a.GrossWPM() || a.NetWPM() < 0 {
				t.Fatalf("net %v must be within [0, gross %v]", a.NetWPM(), a.GrossWPM())
			}
			if !approx(a.NetWPM(), a.GrossWPM()*a.AccuracyPct()/100) {
				t.Fatalf("net must equal gross*accuracy")
			}
			if b := Compute(in[0], in[1], secs); b != a {
				t.Fatalf("compute is not deterministic")
			}
		}
	}
}

func TestClassify(t *testing.T) {
	if got := ClassifyWith(AttemptThresholds, 35, 92); got != Praise {
		t.Fatalf("expected praise at thresholds, got %s", got)
	}
	if got := ClassifyWith(AttemptThresholds, 34.9, 100); got != Roast {
		t.Fatalf("expected roast for slow attempt, got %s", got)
	}
	if got := ClassifyWith(AttemptThresholds, 80, 91.9); got != Roast {
		t.Fatalf("expected roast for sloppy attempt, got %s", got)
	}
	if got := Classify(Compute("hello", "hello", 1)); got != Praise {
		t.Fatalf("expected praise for fast exact attempt, got %s", got)
	}
}

func TestAggregate(t *testing.T) {
	fast := Compute("aaaaaaaaaa", "aaaaaaaaaa", 4) // 30 WPM, 100%
	slow := Compute("aaaaaaaaaa", "aaaaaaaabb", 6) // 20 gross, 80%
	net, acc, err := Aggregate([]Attempt{fast, slow})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if !approx(net, 23) || !approx(acc, 90) {
		t.Fatalf("unexpected averages net=%v acc=%v", net, acc)
	}
}

func TestAggregateEmpty(t *testing.T) {
	if _, _, err := Aggregate(nil); !errors.Is(err, ErrNoAttempts) {
		t.Fatalf("expected ErrNoAttempts, got %v", err)
	}
}

func TestRound(t *testing.T) {
	if got := Round(12.346, 2); !approx(got, 12.35) {
		t.Fatalf("expected 12.35, got %v", got)
	}
	if got := Round(91.26, 1); !approx(got, 91.3) {
		t.Fatalf("expected 91.3, got %v", got)
	}
}

func TestTallyResult(t *testing.T) {
	var tally Tally
	tally.Add("hello", "hello")
	tally.Add("world", "wxrld")
	res := tally.Result(60 * time.Second)
	if res.Prompts != 2 {
		t.Fatalf("expected 2 prompts, got %d", res.Prompts)
	}
	if !approx(res.GrossWPM, 2) {
		t.Fatalf("expected gross 2, got %v", res.GrossWPM)
	}
	if !approx(res.AccuracyPct, 90) {
		t.Fatalf("expected accuracy 90, got %v", res.AccuracyPct)
	}
	if res.Category() != Roast {
		t.Fatalf("expected roast")
	}
}

func TestTallyEmpty(t *testing.T) {
	var tally Tally
	res := tally.Result(60 * time.Second)
	if res.AccuracyPct != 0 || res.NetWPM != 0 || res.GrossWPM != 0 {
		t.Fatalf("expected zero result, got %+v", res)
	}
}
