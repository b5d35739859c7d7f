// Package tui provides the Bubble Tea trainer interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/session"
	"github.com/verte-zerg/typist/internal/story"
)

type screen int

const (
	screenMenu screen = iota
	screenTyping
	screenBoss
	screenResult
	screenSummary
	screenChoice
)

// Start selects the activity the program opens with.
type Start int

// Entry points.
const (
	StartMenu Start = iota
	StartDrills
	StartSprints
	StartBoss
	StartStory
)

type activity int

const (
	activityNone activity = iota
	activityDrills
	activitySprints
	activityStory
	activityBoss
)

const (
	itemDrills = iota
	itemSprints
	itemBoss
	itemStory
	itemPotty
	itemQuit
)

var menuItems = []string{
	itemDrills:  session.LabelDrills,
	itemSprints: session.LabelSprints,
	itemBoss:    "Boss Battle",
	itemStory:   "Story Mode",
	itemPotty:   "Potty mode",
	itemQuit:    "Quit",
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	overflowStyle    = incorrectStyle.Strikethrough(true)
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	itemStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
)

// Model implements the Bubble Tea trainer UI.
type Model struct {
	ctx     context.Context
	trainer *session.Trainer
	logger  *slog.Logger
	start   Start
	now     func() time.Time

	keys keyMap
	help help.Model

	width  int
	height int

	screen   screen
	menu     int
	activity activity

	run       *session.Run
	storyNode string
	boss      *session.Boss
	timer     timer.Model

	heading   string
	round     int
	rounds    int
	prompt    []rune
	typed     []rune
	started   bool
	startedAt time.Time

	title   string
	lines   []string
	choices []model.Choice

	lastNet float64
	lastAcc float64
	hasLast bool
}

// NewModel constructs the trainer UI.
func NewModel(ctx context.Context, trainer *session.Trainer, start Start, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{
		ctx:     ctx,
		trainer: trainer,
		logger:  logger,
		start:   start,
		now:     time.Now,
		keys:    newKeyMap(),
		help:    help.New(),
	}
}

// SetClock replaces the clock used to time attempts.
func (m *Model) SetClock(now func() time.Time) {
	m.now = now
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	switch m.start {
	case StartDrills:
		return m.selectItem(itemDrills)
	case StartSprints:
		return m.selectItem(itemSprints)
	case StartBoss:
		return m.selectItem(itemBoss)
	case StartStory:
		return m.selectItem(itemStory)
	default:
		return nil
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case timer.TickMsg, timer.StartStopMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd
	case timer.TimeoutMsg:
		if m.boss != nil && msg.ID == m.timer.ID() {
			return m, m.finishBoss()
		}
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		switch m.screen {
		case screenMenu:
			return m, m.updateMenu(msg)
		case screenTyping, screenBoss:
			return m, m.updateTyping(msg)
		case screenChoice:
			return m, m.updateChoice(msg)
		case screenResult:
			return m, m.updateResult(msg)
		case screenSummary:
			return m, m.updateSummary(msg)
		}
	}
	return m, nil
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.menu = (m.menu - 1 + len(menuItems)) % len(menuItems)
	case key.Matches(msg, m.keys.Down):
		m.menu = (m.menu + 1) % len(menuItems)
	case key.Matches(msg, m.keys.Potty):
		m.togglePotty()
	case key.Matches(msg, m.keys.Select):
		return m.selectItem(m.menu)
	case msg.String() == "q":
		return tea.Quit
	}
	return nil
}

func (m *Model) selectItem(item int) tea.Cmd {
	switch item {
	case itemDrills:
		return m.beginRun(activityDrills, m.trainer.Drills(), session.LabelDrills)
	case itemSprints:
		return m.beginRun(activitySprints, m.trainer.Sprints(), session.LabelSprints)
	case itemBoss:
		return m.beginBoss()
	case itemStory:
		return m.beginStory()
	case itemPotty:
		m.togglePotty()
	case itemQuit:
		return tea.Quit
	}
	return nil
}

func (m *Model) togglePotty() {
	m.trainer.SetPotty(!m.trainer.Config().Potty)
}

// handleEdit applies text editing keys to the typed buffer. It reports
// whether the key was consumed.
func (m *Model) handleEdit(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		if len(m.typed) > 0 {
			m.typed = m.typed[:len(m.typed)-1]
		}
		return true
	case tea.KeySpace:
		m.handleRunes([]rune{' '})
		return true
	case tea.KeyRunes:
		m.handleRunes(msg.Runes)
		return true
	}
	return false
}

func (m *Model) handleRunes(runes []rune) {
	if !m.started {
		m.started = true
		m.startedAt = m.now()
	}
	m.typed = append(m.typed, runes...)
}

func (m *Model) updateTyping(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.abandon()
	case key.Matches(msg, m.keys.Select):
		if m.screen == screenBoss {
			return m.submitBoss()
		}
		return m.submitRun()
	}
	m.handleEdit(msg)
	return nil
}

func (m *Model) updateResult(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.abandon()
	case key.Matches(msg, m.keys.Select):
		if m.run.Done() {
			return m.finishRun()
		}
		return m.nextPrompt()
	}
	return nil
}

func (m *Model) updateSummary(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Select) || key.Matches(msg, m.keys.Back) {
		return m.toMenu()
	}
	return nil
}

func (m *Model) updateChoice(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.toMenu()
	case key.Matches(msg, m.keys.Select):
		return m.choose()
	}
	m.handleEdit(msg)
	return nil
}

func (m *Model) beginRun(a activity, run *session.Run, heading string) tea.Cmd {
	m.activity = a
	m.run = run
	m.heading = heading
	return m.nextPrompt()
}

func (m *Model) nextPrompt() tea.Cmd {
	p, err := m.run.Next()
	if err != nil {
		return m.fail(err)
	}
	m.round = p.Round
	m.rounds = p.Total
	m.setPrompt(p.Text)
	m.screen = screenTyping
	return nil
}

func (m *Model) setPrompt(text string) {
	m.prompt = []rune(text)
	m.typed = nil
	m.started = false
	m.startedAt = time.Time{}
}

func (m *Model) submitRun() tea.Cmd {
	seconds := 0.0
	if m.started {
		seconds = m.now().Sub(m.startedAt).Seconds()
	}
	a, err := m.run.Submit(string(m.typed), seconds)
	if err != nil {
		return m.fail(err)
	}
	m.lastNet = a.NetWPM()
	m.lastAcc = a.AccuracyPct()
	m.hasLast = true
	m.title = fmt.Sprintf("Round %d/%d", m.round, m.rounds)
	m.lines = []string{
		fmt.Sprintf("%.1f net WPM · %.1f%% accuracy", a.NetWPM(), a.AccuracyPct()),
		m.trainer.Feedback(a),
	}
	m.screen = screenResult
	return nil
}

func (m *Model) finishRun() tea.Cmd {
	run := m.run
	m.run = nil
	if m.activity != activityStory {
		sum, err := m.trainer.Finish(m.ctx, run)
		if err != nil {
			return m.fail(err)
		}
		m.showSummary(sum.Label, averageLine(sum))
		return nil
	}

	sum, out, err := m.trainer.FinishStory(m.ctx, run, m.storyNode)
	if err != nil {
		return m.fail(err)
	}
	switch out.Kind {
	case story.Passed:
		m.showChoices(out.Node.Title, out.Choices, averageLine(sum), out.Node.SuccessText)
	case story.Ended:
		m.showSummary(out.Node.Title, averageLine(sum), out.Node.SuccessText, "The End. Reset the story to play again.")
	default:
		lines := []string{averageLine(sum), out.Node.FailureText}
		if next, ok := m.trainer.Story().Graph().Node(out.Next); ok {
			lines = append(lines, "Next up: "+next.Title)
		}
		m.showSummary(out.Node.Title, lines...)
	}
	return nil
}

func averageLine(sum session.Summary) string {
	return fmt.Sprintf("Average: %.1f net WPM · %.1f%% accuracy over %d rounds", sum.AvgNet, sum.AvgAcc, sum.Rounds)
}

func (m *Model) beginStory() tea.Cmd {
	engine := m.trainer.Story()
	run, ch, err := m.trainer.StoryChapter(m.ctx)
	var missing *story.MissingNodeError
	switch {
	case errors.As(err, &missing):
		engine.Reset(m.ctx)
		m.showSummary("Story Mode",
			fmt.Sprintf("The story lost its place: chapter %q no longer exists.", missing.ID),
			"Progress has been reset to the beginning.")
		return nil
	case errors.Is(err, story.ErrChoicePending):
		progress, node, perr := engine.Progress(m.ctx)
		if perr != nil {
			return m.fail(perr)
		}
		m.showChoices(node.Title, progress.PendingChoices, "You still have a choice to make.")
		return nil
	case err != nil:
		return m.fail(err)
	}

	m.storyNode = ch.Node.ID
	return m.beginRun(activityStory, run, fmt.Sprintf("%s [%s]", ch.Node.Title, ch.Node.LessonKeys))
}

func (m *Model) showChoices(title string, choices []model.Choice, lines ...string) {
	m.title = title
	m.lines = lines
	m.choices = choices
	m.typed = nil
	m.screen = screenChoice
}

func (m *Model) choose() tea.Cmd {
	engine := m.trainer.Story()
	res, err := engine.Choose(m.ctx, string(m.typed))
	if err != nil {
		return m.fail(err)
	}
	m.choices = nil
	lines := []string{"You chose: " + res.Choice.Label}
	if res.Defaulted {
		lines = []string{"Finger slip! You stumble toward: " + res.Choice.Label}
	}
	if next, ok := engine.Graph().Node(res.Choice.Target); ok {
		lines = append(lines, "Next chapter: "+next.Title)
	}
	m.showSummary("Story Mode", lines...)
	return nil
}

func (m *Model) beginBoss() tea.Cmd {
	b := m.trainer.Boss()
	prompt, err := b.Next()
	if err != nil {
		return m.fail(err)
	}
	m.activity = activityBoss
	m.boss = b
	m.heading = b.Label()
	m.timer = timer.NewWithInterval(b.Duration(), time.Second)
	m.setPrompt(prompt)
	m.screen = screenBoss
	return m.timer.Init()
}

func (m *Model) submitBoss() tea.Cmd {
	if err := m.boss.Submit(string(m.typed)); err != nil {
		return m.fail(err)
	}
	prompt, err := m.boss.Next()
	if errors.Is(err, session.ErrRunFinished) {
		return tea.Batch(m.finishBoss(), m.timer.Stop())
	}
	if err != nil {
		return m.fail(err)
	}
	m.setPrompt(prompt)
	return nil
}

func (m *Model) finishBoss() tea.Cmd {
	b := m.boss
	m.boss = nil
	res := m.trainer.FinishBoss(m.ctx, b)
	m.lastNet = res.NetWPM
	m.lastAcc = res.AccuracyPct
	m.hasLast = true
	m.showSummary(b.Label(),
		fmt.Sprintf("Prompts cleared: %d", res.Prompts),
		fmt.Sprintf("Gross %.1f WPM · Net %.1f WPM · %.1f%% accuracy", res.GrossWPM, res.NetWPM, res.AccuracyPct),
		m.trainer.BossFeedback(res),
	)
	return nil
}

func (m *Model) showSummary(title string, lines ...string) {
	m.title = title
	m.lines = lines
	m.screen = screenSummary
}

func (m *Model) abandon() tea.Cmd {
	m.run = nil
	m.boss = nil
	return m.toMenu()
}

func (m *Model) toMenu() tea.Cmd {
	m.activity = activityNone
	m.choices = nil
	m.typed = nil
	if m.start != StartMenu {
		return tea.Quit
	}
	m.screen = screenMenu
	return nil
}

func (m *Model) fail(err error) tea.Cmd {
	m.logger.ErrorContext(m.ctx, "activity failed", "err", err)
	m.run = nil
	m.boss = nil
	m.showSummary("Something went wrong", err.Error())
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.screen {
	case screenMenu:
		content = m.renderMenu()
	case screenTyping, screenBoss:
		content = m.renderTyping()
	case screenChoice:
		content = m.renderChoice()
	default:
		content = m.renderLines()
	}
	footer := m.renderFooter()
	helpLine := m.help.View(m.keys.forScreen(m.screen))
	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{content, footer, helpLine}, "\n")
	}
	if m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	helpBar := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpLine)
	return body + "\n" + footerLine + "\n" + helpBar
}

func (m *Model) renderMenu() string {
	lines := []string{titleStyle.Render("typist"), ""}
	for i, item := range menuItems {
		if i == itemPotty {
			item = fmt.Sprintf("%s: %s", item, onOff(m.trainer.Config().Potty))
		}
		if i == m.menu {
			lines = append(lines, selectedStyle.Render("> "+item))
		} else {
			lines = append(lines, itemStyle.Render("  "+item))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderTyping() string {
	cursor := len(m.typed)
	if cursor >= len(m.prompt) {
		cursor = -1
	}
	styled := buildStyledRunes(m.prompt, m.typed, cursor)
	width := m.contentWidth()
	text := renderStyledRunes(styled)
	if width > 0 {
		text = lipgloss.NewStyle().Width(width).Render(wrapStyledRunes(styled, width))
	}
	return titleStyle.Render(m.heading) + "\n\n" + text
}

func (m *Model) renderChoice() string {
	lines := []string{titleStyle.Render(m.title), ""}
	lines = append(lines, m.wrapLines(m.lines)...)
	lines = append(lines, "")
	for i, c := range m.choices {
		lines = append(lines, itemStyle.Render(fmt.Sprintf("%d. %s", i+1, c.Label)))
	}
	lines = append(lines, "", selectedStyle.Render("> "+string(m.typed)))
	return strings.Join(lines, "\n")
}

func (m *Model) renderLines() string {
	lines := []string{titleStyle.Render(m.title), ""}
	lines = append(lines, m.wrapLines(m.lines)...)
	return strings.Join(lines, "\n")
}

func (m *Model) wrapLines(lines []string) []string {
	width := m.contentWidth()
	if width <= 0 {
		return lines
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, lipgloss.NewStyle().Width(width).Render(line))
	}
	return out
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) renderFooter() string {
	segments := []string{}
	switch m.screen {
	case screenTyping:
		segments = append(segments, fmt.Sprintf("Round %d/%d", m.round, m.rounds))
	case screenBoss:
		segments = append(segments, "Time "+m.timer.View(), fmt.Sprintf("Cleared %d", m.boss.Tally().Prompts))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.lastNet, m.lastAcc))
	}
	segments = append(segments, "Potty "+onOff(m.trainer.Config().Potty))
	return footerStyle.Render(strings.Join(segments, "  "))
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
