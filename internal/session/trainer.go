package session

import (
	"context"
	"time"

	"github.com/verte-zerg/typist/internal/content"
	"github.com/verte-zerg/typist/internal/generator"
	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/scoring"
	"github.com/verte-zerg/typist/internal/story"
)

// Score log mode labels.
const (
	LabelDrills  = "Word Drills"
	LabelSprints = "Sentence Sprints"
	storyPrefix  = "Story: "
)

// ScoreLog appends completed activity summaries. Implementations never fail.
type ScoreLog interface {
	AppendScore(ctx context.Context, rec model.ScoreRecord)
}

// Trainer builds activities for one player and records their scores.
// A Trainer is not safe for concurrent use; give each player its own.
type Trainer struct {
	cfg    model.Config
	gen    *generator.Generator
	scores ScoreLog
	story  *story.Engine
	now    func() time.Time
}

// NewTrainer wires a trainer. engine may be nil when story mode is unused.
func NewTrainer(cfg model.Config, gen *generator.Generator, scores ScoreLog, engine *story.Engine) *Trainer {
	return &Trainer{cfg: cfg, gen: gen, scores: scores, story: engine, now: time.Now}
}

// SetClock replaces the clock used for timestamps and battles.
func (t *Trainer) SetClock(now func() time.Time) {
	t.now = now
}

// Config returns the current settings.
func (t *Trainer) Config() model.Config {
	return t.cfg
}

// SetPotty toggles potty humor for subsequent activities.
func (t *Trainer) SetPotty(on bool) {
	t.cfg.Potty = on
}

// Story returns the story engine, or nil.
func (t *Trainer) Story() *story.Engine {
	return t.story
}

// Drills builds a word drill run.
func (t *Trainer) Drills() *Run {
	return t.DrillRounds(t.cfg.DrillRounds)
}

// DrillRounds builds a word drill run of the given length.
func (t *Trainer) DrillRounds(rounds int) *Run {
	pool := t.cfg.Words
	if len(pool) == 0 {
		pool = content.Words(t.cfg.Potty)
	}
	words := t.cfg.DrillWords
	if words <= 0 {
		words = 4
	}
	punct := []rune(t.cfg.PunctSet)
	prompts := make([]string, 0, rounds)
	for i := 0; i < rounds; i++ {
		prompts = append(prompts, t.gen.DrillLine(pool, words, t.cfg.CapsPct, t.cfg.PunctPct, punct))
	}
	return NewRun(LabelDrills, prompts)
}

// Sprints builds a sentence sprint run of distinct sentences.
func (t *Trainer) Sprints() *Run {
	return NewRun(LabelSprints, t.gen.Sample(content.Sentences(t.cfg.Potty), t.cfg.SprintRounds))
}

// Boss starts a timed battle now.
func (t *Trainer) Boss() *Boss {
	return t.BossFor(t.cfg.BossDuration)
}

// BossFor starts a timed battle of d.
func (t *Trainer) BossFor(d time.Duration) *Boss {
	return NewBoss(content.BossBank(t.cfg.Potty), t.gen, d, t.now)
}

// StoryChapter starts the current chapter.
func (t *Trainer) StoryChapter(ctx context.Context) (*Run, story.Chapter, error) {
	ch, err := t.story.StartChapter(ctx)
	if err != nil {
		return nil, story.Chapter{}, err
	}
	return NewRun(StoryLabel(ch.Node.ID), ch.Prompts), ch, nil
}

// StoryLabel is the score log mode for a chapter.
func StoryLabel(nodeID string) string {
	return storyPrefix + nodeID
}

// Feedback picks a comment for one attempt.
func (t *Trainer) Feedback(a scoring.Attempt) string {
	return t.gen.Comment(scoring.Classify(a))
}

// BossFeedback picks a comment for a finished battle.
func (t *Trainer) BossFeedback(r scoring.TimedResult) string {
	return t.gen.Comment(r.Category())
}

// Finish aggregates a run and records its score.
func (t *Trainer) Finish(ctx context.Context, r *Run) (Summary, error) {
	sum, err := r.Summary()
	if err != nil {
		return Summary{}, err
	}
	t.record(ctx, sum.Label, sum.AvgNet, sum.AvgAcc)
	return sum, nil
}

// FinishStory advances the story and records the chapter score. A
// rejected chapter records nothing.
func (t *Trainer) FinishStory(ctx context.Context, r *Run, nodeID string) (Summary, story.Outcome, error) {
	sum, err := r.Summary()
	if err != nil {
		return Summary{}, story.Outcome{}, err
	}
	out, err := t.story.CompleteChapter(ctx, nodeID, r.Attempts())
	if err != nil {
		return Summary{}, story.Outcome{}, err
	}
	t.record(ctx, sum.Label, sum.AvgNet, sum.AvgAcc)
	return sum, out, nil
}

// FinishBoss scores a battle and records it.
func (t *Trainer) FinishBoss(ctx context.Context, b *Boss) scoring.TimedResult {
	res := b.Result()
	t.record(ctx, b.Label(), res.NetWPM, res.AccuracyPct)
	return res
}

func (t *Trainer) record(ctx context.Context, label string, net, acc float64) {
	if t.scores == nil {
		return
	}
	t.scores.AppendScore(ctx, model.ScoreRecord{
		Timestamp:   t.now(),
		Mode:        label,
		NetWPM:      scoring.Round(net, 2),
		AccuracyPct: scoring.Round(acc, 1),
	})
}
