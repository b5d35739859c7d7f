package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const wrongSpace = '•'

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes colors the prompt against what was typed so far.
// Typed runes past the end of the prompt are shown as overflow.
func buildStyledRunes(prompt, typed []rune, cursorIndex int) []styledRune {
	words := findWords(prompt)
	currentWord := wordForCursor(words, cursorIndex)

	out := make([]styledRune, 0, max(len(prompt), len(typed)))
	for i, want := range prompt {
		shown := want
		style := pendingStyle
		switch {
		case i < len(typed):
			switch {
			case want == ' ' && typed[i] != ' ':
				shown = wrongSpace
				style = incorrectStyle
			case typed[i] == want:
				style = correctStyle
			default:
				style = incorrectStyle
			}
		case want != ' ' && currentWord != nil && i >= currentWord.start && i < currentWord.end:
			style = currentWordStyle
		}
		if i == cursorIndex && i >= len(typed) {
			style = style.Underline(true)
		}
		out = append(out, styledRune{
			s:       style.Render(string(shown)),
			width:   runewidth.RuneWidth(shown),
			isSpace: want == ' ',
		})
	}
	for _, extra := range typedOverflow(prompt, typed) {
		out = append(out, styledRune{
			s:       overflowStyle.Render(string(extra)),
			width:   runewidth.RuneWidth(extra),
			isSpace: extra == ' ',
		})
	}
	return out
}

func typedOverflow(prompt, typed []rune) []rune {
	if len(typed) <= len(prompt) {
		return nil
	}
	return typed[len(prompt):]
}

type wordRange struct {
	start int
	end   int
}

func findWords(runes []rune) []wordRange {
	words := []wordRange{}
	start := -1
	for i, r := range runes {
		if r == ' ' {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(runes)})
	}
	return words
}

func wordForCursor(words []wordRange, cursorIndex int) *wordRange {
	if len(words) == 0 {
		return nil
	}
	if cursorIndex < 0 {
		return &words[0]
	}
	for i, w := range words {
		if cursorIndex < w.end {
			return &words[i]
		}
	}
	return &words[len(words)-1]
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at the last space that fits width, or mid-word
// when a word is wider than a line.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpace := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			cut, rest := len(line), len(line)
			if lastSpace >= 0 {
				cut, rest = lastSpace, lastSpace+1
			}
			out.WriteString(renderStyledRunes(line[:cut]))
			out.WriteRune('\n')
			line = append([]styledRune{}, line[rest:]...)
			lineWidth = lineWidthOf(line)
			lastSpace = lastSpaceIndex(line)
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpace = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
