package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typist/internal/generator"
	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/session"
	"github.com/verte-zerg/typist/internal/story"
)

type scoreLog struct {
	records []model.ScoreRecord
}

func (s *scoreLog) AppendScore(_ context.Context, rec model.ScoreRecord) {
	s.records = append(s.records, rec)
}

type progressStore struct {
	p model.StoryProgress
}

func (s *progressStore) LoadProgress(context.Context) model.StoryProgress { return s.p }

func (s *progressStore) SaveProgress(_ context.Context, p model.StoryProgress) { s.p = p }

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

type harness struct {
	m        *Model
	scores   *scoreLog
	progress *progressStore
	clock    *testClock
}

func newHarness(t *testing.T, start Start) *harness {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.DrillRounds = 2
	cfg.StoryRounds = 1

	h := &harness{
		scores:   &scoreLog{},
		progress: &progressStore{},
		clock:    &testClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
	}
	engine := story.NewEngine(story.Default(), h.progress, generator.NewSeeded(2), cfg.StoryRounds)
	tr := session.NewTrainer(cfg, generator.NewSeeded(1), h.scores, engine)
	tr.SetClock(h.clock.Now)
	h.m = NewModel(context.Background(), tr, start, nil)
	h.m.SetClock(h.clock.Now)
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.m.Update(msg)
	return cmd
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) enter() tea.Cmd {
	return h.send(tea.KeyMsg{Type: tea.KeyEnter})
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestMenuNavigationAndPotty(t *testing.T) {
	h := newHarness(t, StartMenu)
	if cmd := h.m.Init(); cmd != nil {
		t.Fatalf("expected no startup command for the menu")
	}
	if !strings.Contains(h.m.View(), "Potty mode: on") {
		t.Fatalf("expected potty mode on in menu:\n%s", h.m.View())
	}

	h.typeText("p")
	if h.m.trainer.Config().Potty {
		t.Fatalf("expected p to toggle potty mode off")
	}

	h.send(tea.KeyMsg{Type: tea.KeyUp})
	if h.m.menu != itemQuit {
		t.Fatalf("expected menu to wrap to Quit, got %d", h.m.menu)
	}
	if !isQuit(h.enter()) {
		t.Fatalf("expected Quit item to quit")
	}
}

func TestDrillsFlowRecordsScore(t *testing.T) {
	h := newHarness(t, StartDrills)
	h.m.Init()
	if h.m.screen != screenTyping {
		t.Fatalf("expected typing screen, got %d", h.m.screen)
	}

	for round := 1; round <= 2; round++ {
		if h.m.round != round || h.m.rounds != 2 {
			t.Fatalf("expected round %d/2, got %d/%d", round, h.m.round, h.m.rounds)
		}
		h.typeText(string(h.m.prompt))
		h.clock.t = h.clock.t.Add(6 * time.Second)
		h.enter()
		if h.m.screen != screenResult {
			t.Fatalf("expected result screen after submit")
		}
		if h.m.lastAcc != 100 {
			t.Fatalf("expected 100%% accuracy, got %.1f", h.m.lastAcc)
		}
		h.enter()
	}

	if h.m.screen != screenSummary {
		t.Fatalf("expected summary screen, got %d", h.m.screen)
	}
	if len(h.scores.records) != 1 || h.scores.records[0].Mode != session.LabelDrills {
		t.Fatalf("expected one drills score, got %+v", h.scores.records)
	}
	if !isQuit(h.enter()) {
		t.Fatalf("expected single activity to quit after summary")
	}
}

func TestBackspaceAndEscape(t *testing.T) {
	h := newHarness(t, StartMenu)
	h.enter()
	if h.m.screen != screenTyping {
		t.Fatalf("expected drills to start from the menu")
	}
	h.typeText("ab")
	h.send(tea.KeyMsg{Type: tea.KeyBackspace})
	if string(h.m.typed) != "a" {
		t.Fatalf("expected backspace to drop a rune, got %q", string(h.m.typed))
	}
	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	if h.m.screen != screenMenu || h.m.run != nil {
		t.Fatalf("expected esc to abandon the run")
	}
	if len(h.scores.records) != 0 {
		t.Fatalf("expected abandoned run to record nothing")
	}
}

func TestStoryChoiceFallback(t *testing.T) {
	h := newHarness(t, StartStory)
	h.m.Init()
	if h.m.screen != screenTyping || h.m.storyNode != story.DefaultStart {
		t.Fatalf("expected the first chapter to start")
	}

	h.typeText(string(h.m.prompt))
	h.clock.t = h.clock.t.Add(time.Second)
	h.enter()
	h.enter()
	if h.m.screen != screenChoice {
		t.Fatalf("expected choice screen after passing, got %d: %v", h.m.screen, h.m.lines)
	}
	first := h.m.choices[0]

	h.typeText("teleport")
	h.enter()
	if h.m.screen != screenSummary {
		t.Fatalf("expected summary after choosing")
	}
	if !strings.HasPrefix(h.m.lines[0], "Finger slip!") {
		t.Fatalf("expected finger slip message, got %q", h.m.lines[0])
	}
	if h.progress.p.CurrentNode != first.Target {
		t.Fatalf("expected fallback to %q, got %q", first.Target, h.progress.p.CurrentNode)
	}
}

func TestStoryEndingIsPlayed(t *testing.T) {
	h := newHarness(t, StartStory)
	h.progress.p = model.NewStoryProgress("throne")
	h.m.Init()
	if h.m.screen != screenTyping || h.m.storyNode != "throne" {
		t.Fatalf("expected the ending chapter to be typed, got screen %d", h.m.screen)
	}

	h.typeText(string(h.m.prompt))
	h.clock.t = h.clock.t.Add(time.Second)
	h.enter()
	h.enter()
	if h.m.screen != screenSummary {
		t.Fatalf("expected summary after the ending, got %d", h.m.screen)
	}
	if last := h.m.lines[len(h.m.lines)-1]; !strings.HasPrefix(last, "The End") {
		t.Fatalf("expected ending message, got %q", last)
	}
	if len(h.progress.p.History) != 1 || h.progress.p.History[0].Result != model.ResultSuccess {
		t.Fatalf("expected a success history entry, got %+v", h.progress.p.History)
	}
	if len(h.scores.records) != 1 || h.scores.records[0].Mode != session.StoryLabel("throne") {
		t.Fatalf("expected the ending to be scored, got %+v", h.scores.records)
	}
}

func TestStoryMissingNodeResets(t *testing.T) {
	h := newHarness(t, StartStory)
	h.progress.p = model.StoryProgress{CurrentNode: "gone"}
	h.m.Init()

	if h.m.screen != screenSummary {
		t.Fatalf("expected summary screen, got %d", h.m.screen)
	}
	if !strings.Contains(h.m.lines[0], `"gone"`) {
		t.Fatalf("expected stale node in message, got %q", h.m.lines[0])
	}
	if h.progress.p.CurrentNode != story.DefaultStart {
		t.Fatalf("expected progress reset to start, got %q", h.progress.p.CurrentNode)
	}
}

func TestBossTimeoutFinishesBattle(t *testing.T) {
	h := newHarness(t, StartBoss)
	if cmd := h.m.Init(); cmd == nil {
		t.Fatalf("expected timer command")
	}
	if h.m.screen != screenBoss {
		t.Fatalf("expected boss screen")
	}

	h.typeText(string(h.m.prompt))
	h.enter()
	if h.m.boss.Tally().Prompts != 1 {
		t.Fatalf("expected one cleared prompt")
	}
	if !strings.Contains(h.m.renderFooter(), "Cleared 1") {
		t.Fatalf("expected footer to count cleared prompts: %s", h.m.renderFooter())
	}

	h.send(timer.TimeoutMsg{ID: h.m.timer.ID()})
	if h.m.screen != screenSummary || h.m.boss != nil {
		t.Fatalf("expected battle to finish on timeout")
	}
	if len(h.scores.records) != 1 || h.scores.records[0].Mode != "Boss Battle 60s" {
		t.Fatalf("expected one boss score, got %+v", h.scores.records)
	}
}

func TestRenderFooterFormats(t *testing.T) {
	h := newHarness(t, StartMenu)
	h.m.screen = screenTyping
	h.m.round = 2
	h.m.rounds = 10
	h.m.hasLast = true
	h.m.lastNet = 72.4
	h.m.lastAcc = 97.8

	out := h.m.renderFooter()
	for _, want := range []string{"Round 2/10", "Last 72.4 WPM", "97.8%", "Potty on"} {
		if !strings.Contains(out, want) {
			t.Fatalf("footer missing %q: %s", want, out)
		}
	}
}
