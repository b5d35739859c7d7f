package story

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/scoring"
)

// DefaultRounds is the number of prompts per chapter.
const DefaultRounds = 5

// PassThresholds gate chapter success on averaged attempts.
var PassThresholds = scoring.Thresholds{NetWPM: 20, AccuracyPct: 90}

var (
	// ErrMissingNode is matched by *MissingNodeError.
	ErrMissingNode = errors.New("story node missing")
	// ErrNoPendingChoice is returned when choosing without a passed chapter.
	ErrNoPendingChoice = errors.New("no pending choice")
	// ErrChoicePending is returned when starting a chapter before choosing a branch.
	ErrChoicePending = errors.New("a branch choice is pending")
	// ErrPromptOutsideLesson is returned when a generated prompt uses keys outside the lesson.
	ErrPromptOutsideLesson = errors.New("prompt uses keys outside the lesson")
	// ErrStaleChapter is returned when completing a chapter the player is no longer on.
	ErrStaleChapter = errors.New("chapter is not the current one")
)

// MissingNodeError names a node id that is not in the graph.
type MissingNodeError struct {
	ID string
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("story node %q missing", e.ID)
}

func (e *MissingNodeError) Unwrap() error {
	return ErrMissingNode
}

// ProgressStore persists story progress. Implementations never fail: a
// load with nothing saved returns the zero value.
type ProgressStore interface {
	LoadProgress(ctx context.Context) model.StoryProgress
	SaveProgress(ctx context.Context, p model.StoryProgress)
}

// PromptGenerator produces lesson prompts.
type PromptGenerator interface {
	LessonPrompts(keys string, rounds int) []string
}

// Engine drives progress through a story graph.
type Engine struct {
	graph  *Graph
	store  ProgressStore
	gen    PromptGenerator
	rounds int

	mu sync.Mutex
}

// NewEngine builds an engine. rounds <= 0 uses DefaultRounds.
func NewEngine(graph *Graph, store ProgressStore, gen PromptGenerator, rounds int) *Engine {
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	return &Engine{graph: graph, store: store, gen: gen, rounds: rounds}
}

// Graph returns the engine's graph.
func (e *Engine) Graph() *Graph {
	return e.graph
}

// Chapter is a node ready to be typed.
type Chapter struct {
	Node    model.StoryNode
	Prompts []string
}

// OutcomeKind reports what completing a chapter did.
type OutcomeKind int

const (
	Ended OutcomeKind = iota
	Passed
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Ended:
		return "ended"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of CompleteChapter.
type Outcome struct {
	Kind OutcomeKind
	Node model.StoryNode
	// AvgNet and AvgAcc are rounded to one decimal.
	AvgNet  float64
	AvgAcc  float64
	Choices []model.Choice
	// Next is the node the player moves to after a failure.
	Next string
}

// ChoiceResult is the branch picked by Choose.
type ChoiceResult struct {
	From      string
	Choice    model.Choice
	Defaulted bool
}

// Progress returns the saved progress and its current node.
func (e *Engine) Progress(ctx context.Context) (model.StoryProgress, model.StoryNode, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.load(ctx)
	node, err := e.node(p.CurrentNode)
	return p, node, err
}

// StartChapter loads the current node and generates its prompts.
func (e *Engine) StartChapter(ctx context.Context) (Chapter, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.load(ctx)
	if len(p.PendingChoices) > 0 {
		return Chapter{}, ErrChoicePending
	}
	node, err := e.node(p.CurrentNode)
	if err != nil {
		return Chapter{}, err
	}
	ch := Chapter{Node: node}
	ch.Prompts = e.gen.LessonPrompts(node.LessonKeys, e.rounds)
	for _, prompt := range ch.Prompts {
		if !fitsKeys(prompt, node.LessonKeys) {
			return Chapter{}, fmt.Errorf("%w: %q for keys %q", ErrPromptOutsideLesson, prompt, node.LessonKeys)
		}
	}
	return ch, nil
}

// CompleteChapter scores the chapter's attempts and advances progress.
// nodeID must be the current node with no choice pending. Passing a
// terminal node ends the story.
func (e *Engine) CompleteChapter(ctx context.Context, nodeID string, attempts []scoring.Attempt) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.load(ctx)
	if len(p.PendingChoices) > 0 {
		return Outcome{}, ErrChoicePending
	}
	if nodeID != p.CurrentNode {
		return Outcome{}, fmt.Errorf("%w: completing %q while on %q", ErrStaleChapter, nodeID, p.CurrentNode)
	}
	node, err := e.node(nodeID)
	if err != nil {
		return Outcome{}, err
	}

	avgNet, avgAcc, err := scoring.Aggregate(attempts)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		Node:   node,
		AvgNet: scoring.Round(avgNet, 1),
		AvgAcc: scoring.Round(avgAcc, 1),
	}
	entry := model.HistoryEntry{Node: node.ID, AvgNet: out.AvgNet, AvgAcc: out.AvgAcc}

	passed := PassThresholds.Met(avgNet, avgAcc)
	switch {
	case passed && node.Terminal():
		out.Kind = Ended
		entry.Result = model.ResultSuccess
	case passed:
		out.Kind = Passed
		out.Choices = append([]model.Choice(nil), node.Choices...)
		entry.Result = model.ResultSuccess
		p.PendingChoices = out.Choices
	default:
		out.Kind = Failed
		out.Next = node.ID
		if node.FailureNext != "" {
			out.Next = node.FailureNext
		}
		entry.Result = model.ResultFail
		p.CurrentNode = out.Next
		p.PendingChoices = nil
	}
	p.History = append(p.History, entry)
	e.store.SaveProgress(ctx, p)
	return out, nil
}

// Choose resolves sel against the pending choices: a 1-based number,
// then a label, then a target id. Anything else falls back to the
// first choice.
func (e *Engine) Choose(ctx context.Context, sel string) (ChoiceResult, error) {
	return e.choose(ctx, func(choices []model.Choice) (int, bool) {
		return ResolveChoice(choices, sel)
	})
}

// ChooseIndex picks a pending choice by 0-based index, falling back to
// the first choice when out of range.
func (e *Engine) ChooseIndex(ctx context.Context, idx int) (ChoiceResult, error) {
	return e.choose(ctx, func(choices []model.Choice) (int, bool) {
		if idx < 0 || idx >= len(choices) {
			return 0, true
		}
		return idx, false
	})
}

func (e *Engine) choose(ctx context.Context, pick func([]model.Choice) (int, bool)) (ChoiceResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.load(ctx)
	if len(p.PendingChoices) == 0 {
		return ChoiceResult{}, ErrNoPendingChoice
	}
	idx, defaulted := pick(p.PendingChoices)
	c := p.PendingChoices[idx]
	if _, ok := e.graph.Node(c.Target); !ok {
		return ChoiceResult{}, &MissingNodeError{ID: c.Target}
	}

	from := p.CurrentNode
	p.History = append(p.History, model.HistoryEntry{
		Node:   from,
		Result: model.ResultChoice,
		Choice: c.Label,
	})
	p.CurrentNode = c.Target
	p.PendingChoices = nil
	e.store.SaveProgress(ctx, p)
	return ChoiceResult{From: from, Choice: c, Defaulted: defaulted}, nil
}

// Reset moves the player back to the start with empty history.
func (e *Engine) Reset(ctx context.Context) model.StoryProgress {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := model.NewStoryProgress(e.graph.Start())
	e.store.SaveProgress(ctx, p)
	return p
}

// ResolveChoice maps a free-form selection to a choice index.
func ResolveChoice(choices []model.Choice, sel string) (int, bool) {
	if len(choices) == 0 {
		return 0, true
	}
	sel = strings.TrimSpace(sel)
	if n, err := strconv.Atoi(sel); err == nil {
		if n >= 1 && n <= len(choices) {
			return n - 1, false
		}
		return 0, true
	}
	for i, c := range choices {
		if strings.EqualFold(c.Label, sel) {
			return i, false
		}
	}
	for i, c := range choices {
		if c.Target == sel {
			return i, false
		}
	}
	return 0, true
}

func (e *Engine) load(ctx context.Context) model.StoryProgress {
	p := e.store.LoadProgress(ctx)
	if p.CurrentNode == "" {
		p.CurrentNode = e.graph.Start()
	}
	return p
}

func (e *Engine) node(id string) (model.StoryNode, error) {
	node, ok := e.graph.Node(id)
	if !ok {
		return model.StoryNode{}, &MissingNodeError{ID: id}
	}
	return node, nil
}

func fitsKeys(text, keys string) bool {
	for _, r := range text {
		if r != ' ' && !strings.ContainsRune(keys, r) {
			return false
		}
	}
	return true
}
