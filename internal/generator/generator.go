// Package generator builds typing prompts.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/verte-zerg/typist/internal/content"
	"github.com/verte-zerg/typist/internal/scoring"
)

const (
	lineWords  = 6
	minWordLen = 2
	maxWordLen = 6
	maxPattern = 2
)

var rhythmPatterns = []string{
	"asdf jkl; asdf jkl;",
	"jj kk ll ;; aa ss dd ff",
	"asdf asdf asdf jkl; jkl; jkl;",
}

// Generator produces randomized typing text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// LessonPrompts returns rounds prompts built only from keys and spaces.
// Rhythm patterns that fit the lesson come first.
func (g *Generator) LessonPrompts(keys string, rounds int) []string {
	if rounds <= 0 {
		return nil
	}
	prompts := make([]string, 0, rounds)
	for _, p := range rhythmPatterns {
		if len(prompts) >= maxPattern {
			break
		}
		if fitsKeys(p, keys) {
			prompts = append(prompts, p)
		}
	}
	for len(prompts) < rounds {
		prompts = append(prompts, g.PracticeLine(keys, lineWords))
	}
	return prompts[:rounds]
}

// PracticeLine builds nonsense words of 2-6 characters drawn from keys.
func (g *Generator) PracticeLine(keys string, words int) string {
	chars := lessonRunes(keys)
	if len(chars) == 0 || words <= 0 {
		return ""
	}
	out := make([]string, 0, words)
	for i := 0; i < words; i++ {
		n := minWordLen + g.rnd.Intn(maxWordLen-minWordLen+1)
		var b strings.Builder
		for j := 0; j < n; j++ {
			b.WriteRune(chars[g.rnd.Intn(len(chars))])
		}
		out = append(out, b.String())
	}
	return strings.Join(out, " ")
}

// DrillLine samples n distinct words and applies caps/punctuation rules.
func (g *Generator) DrillLine(words []string, n int, capsPct, punctPct float64, punctSet []rune) string {
	picked := g.Sample(words, n)
	for i, word := range picked {
		word = applyCaps(g.rnd, word, capsPct)
		picked[i] = applyPunct(g.rnd, word, punctPct, punctSet)
	}
	return strings.Join(picked, " ")
}

// Sample picks up to n distinct items in random order.
func (g *Generator) Sample(items []string, n int) []string {
	if n > len(items) {
		n = len(items)
	}
	if n <= 0 {
		return nil
	}
	idx := g.rnd.Perm(len(items))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}

// Shuffle returns a shuffled copy of items.
func (g *Generator) Shuffle(items []string) []string {
	return g.Sample(items, len(items))
}

// Pick returns a random item, or "" for an empty slice.
func (g *Generator) Pick(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[g.rnd.Intn(len(items))]
}

// Comment picks a feedback message from the category's pool.
func (g *Generator) Comment(cat scoring.Category) string {
	if cat == scoring.Praise {
		return g.Pick(content.Praise)
	}
	return g.Pick(content.Roasts)
}

func fitsKeys(text, keys string) bool {
	for _, r := range text {
		if r != ' ' && !strings.ContainsRune(keys, r) {
			return false
		}
	}
	return true
}

func lessonRunes(keys string) []rune {
	out := make([]rune, 0, len(keys))
	for _, r := range keys {
		if r != ' ' {
			out = append(out, r)
		}
	}
	return out
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 {
		return word
	}
	if rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}
