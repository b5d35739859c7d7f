package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/stats"
	"github.com/verte-zerg/typist/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "typist.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	modes := []string{"Word Drills", "Boss Battle 60s", "Word Drills", "Sentence Sprints"}
	for i, mode := range modes {
		rec := model.ScoreRecord{Timestamp: base.Add(time.Duration(i) * time.Hour), Mode: mode, NetWPM: float64(20 + i), AccuracyPct: 95}
		if err := st.AppendScore(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return st
}

func keys(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestBrowserListsNewestFirst(t *testing.T) {
	m := NewModel(seededStore(t), stats.ReportConfig{Window: 3})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	rows := m.table.Rows()
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0][1] != "Sentence Sprints" {
		t.Fatalf("expected newest record first, got %q", rows[0][1])
	}
	if !strings.Contains(m.View(), "Filter: mode=any") {
		t.Fatalf("expected filter summary in header")
	}
}

func TestBrowserFilterByMode(t *testing.T) {
	m := NewModel(seededStore(t), stats.ReportConfig{Window: 3})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	keys(m, "/")
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[0].SetValue("Word Drills")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.filterMode {
		t.Fatalf("expected filter to apply, got error %q", m.filterError)
	}
	if got := len(m.table.Rows()); got != 2 {
		t.Fatalf("expected 2 drill rows, got %d", got)
	}
}

func TestBrowserRejectsBadWindow(t *testing.T) {
	m := NewModel(seededStore(t), stats.ReportConfig{Window: 3})
	keys(m, "/")
	m.filterInputs[2].SetValue("zero")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected filter error for bad window")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode || m.cfg.Window != 3 {
		t.Fatalf("expected esc to keep previous settings")
	}
}

func TestOverviewTab(t *testing.T) {
	m := NewModel(seededStore(t), stats.ReportConfig{Window: 2})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})

	view := m.View()
	for _, want := range []string{"Summary", "By Mode", "Net WPM trend"} {
		if !strings.Contains(view, want) {
			t.Fatalf("overview missing %q:\n%s", want, view)
		}
	}
}
