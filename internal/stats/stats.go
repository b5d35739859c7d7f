// Package stats contains score log summaries and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/typist/internal/model"
)

const sparkChars = " .:-=+*#%@"

// EmptyMessage is printed when the score log has no records.
const EmptyMessage = "No scores yet. The scoreboard is dryer than a desert toilet."

const timeLayout = "2006-01-02 15:04:05"

// Summary aggregates a set of score records.
type Summary struct {
	Sessions int
	AvgNet   float64
	BestNet  float64
	AvgAcc   float64
}

// ModeStats aggregates records of one mode.
type ModeStats struct {
	Mode     string
	Sessions int
	AvgNet   float64
	BestNet  float64
	AvgAcc   float64
}

// Summarize computes totals over records.
func Summarize(records []model.ScoreRecord) Summary {
	if len(records) == 0 {
		return Summary{}
	}
	var totalNet, totalAcc float64
	best := records[0].NetWPM
	for _, r := range records {
		totalNet += r.NetWPM
		totalAcc += r.AccuracyPct
		if r.NetWPM > best {
			best = r.NetWPM
		}
	}
	count := float64(len(records))
	return Summary{
		Sessions: len(records),
		AvgNet:   totalNet / count,
		BestNet:  best,
		AvgAcc:   totalAcc / count,
	}
}

// ByMode groups records by mode, most played first.
func ByMode(records []model.ScoreRecord) []ModeStats {
	groups := map[string][]model.ScoreRecord{}
	for _, r := range records {
		groups[r.Mode] = append(groups[r.Mode], r)
	}
	out := make([]ModeStats, 0, len(groups))
	for mode, recs := range groups {
		sum := Summarize(recs)
		out = append(out, ModeStats{
			Mode:     mode,
			Sessions: sum.Sessions,
			AvgNet:   sum.AvgNet,
			BestNet:  sum.BestNet,
			AvgAcc:   sum.AvgAcc,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sessions == out[j].Sessions {
			return out[i].Mode < out[j].Mode
		}
		return out[i].Sessions > out[j].Sessions
	})
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderScores prints one row per record.
func RenderScores(w io.Writer, records []model.ScoreRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, EmptyMessage)
		return err
	}
	headers := []string{"Time", "Mode", "Net WPM", "Accuracy"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Timestamp.Local().Format(timeLayout),
			r.Mode,
			fmt.Sprintf("%.2f", r.NetWPM),
			fmt.Sprintf("%.1f%%", r.AccuracyPct),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{2: true, 3: true}))
}

// RenderSummary prints totals for records.
func RenderSummary(w io.Writer, records []model.ScoreRecord) error {
	if len(records) == 0 {
		return nil
	}
	sum := Summarize(records)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", sum.Sessions),
		fmt.Sprintf("Avg Net WPM: %.2f", sum.AvgNet),
		fmt.Sprintf("Best Net WPM: %.2f", sum.BestNet),
		fmt.Sprintf("Avg Accuracy: %.1f%%", sum.AvgAcc),
		"",
	}
	return writeLines(w, lines)
}

// RenderModes prints the per-mode breakdown.
func RenderModes(w io.Writer, records []model.ScoreRecord) error {
	modes := ByMode(records)
	if len(modes) == 0 {
		return nil
	}
	headers := []string{"Mode", "Sessions", "Avg Net", "Best Net", "Avg Acc"}
	rows := make([][]string, 0, len(modes))
	for _, m := range modes {
		rows = append(rows, []string{
			m.Mode,
			fmt.Sprintf("%d", m.Sessions),
			fmt.Sprintf("%.2f", m.AvgNet),
			fmt.Sprintf("%.2f", m.BestNet),
			fmt.Sprintf("%.1f%%", m.AvgAcc),
		})
	}
	lines := append([]string{"By Mode"}, formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true})...)
	return writeLines(w, append(lines, ""))
}

// RenderTrend prints a net WPM sparkline over the moving average, fitted to width.
func RenderTrend(w io.Writer, records []model.ScoreRecord, window, width int) error {
	if len(records) < 2 {
		return nil
	}
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.NetWPM
	}
	values = MovingAverage(values, window)
	const label = "Net WPM trend: "
	if room := width - len(label); room > 0 && len(values) > room {
		values = values[len(values)-room:]
	}
	_, err := fmt.Fprintf(w, "%s%s\n", label, Sparkline(values))
	return err
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
