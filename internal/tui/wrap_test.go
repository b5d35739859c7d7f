package tui

import (
	"strings"
	"testing"
)

func TestBuildStyledRunesCursor(t *testing.T) {
	prompt := []rune("ab")
	typed := []rune("a")

	runes := buildStyledRunes(prompt, typed, len(typed))
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != cursorStyle.Render("b") {
		t.Fatalf("expected cursor style for second rune")
	}
}

func TestBuildStyledRunesKeepsPromptOnMistype(t *testing.T) {
	runes := buildStyledRunes([]rune("ab"), []rune("ax"), -1)
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style for second rune")
	}
}

func TestBuildStyledRunesWordHighlighting(t *testing.T) {
	runes := buildStyledRunes([]rune("one two"), []rune("o"), 1)
	if runes[1].s != currentWordStyle.Underline(true).Render("n") {
		t.Fatalf("expected underlined current word style at cursor")
	}
	if runes[2].s != currentWordStyle.Render("e") {
		t.Fatalf("expected current word style for untyped in current word")
	}
	if runes[4].s != pendingStyle.Render("t") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestBuildStyledRunesWrongSpaceDot(t *testing.T) {
	runes := buildStyledRunes([]rune("a b"), []rune("ax"), 2)
	if runes[1].s != incorrectStyle.Render(string(wrongSpace)) {
		t.Fatalf("expected red dot for wrong space")
	}
}

func TestBuildStyledRunesOverflow(t *testing.T) {
	runes := buildStyledRunes([]rune("ab"), []rune("abcd"), -1)
	if len(runes) != 4 {
		t.Fatalf("expected prompt plus 2 overflow runes, got %d", len(runes))
	}
	if runes[3].s != overflowStyle.Render("d") {
		t.Fatalf("expected overflow style for extra rune")
	}
}

func plainRunes(s string) []styledRune {
	out := make([]styledRune, 0, len(s))
	for _, r := range s {
		out = append(out, styledRune{s: string(r), width: 1, isSpace: r == ' '})
	}
	return out
}

func TestWrapStyledRunes(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{name: "fits", text: "poop joke", width: 20, want: "poop joke"},
		{name: "breaks at space", text: "poop joke time", width: 10, want: "poop joke\ntime"},
		{name: "splits long word", text: "toilettoilet", width: 5, want: "toile\nttoil\net"},
		{name: "no width", text: "a b", width: 0, want: "a b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := wrapStyledRunes(plainRunes(tc.text), tc.width)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			for _, line := range strings.Split(got, "\n") {
				if tc.width > 0 && len(line) > tc.width {
					t.Fatalf("line %q wider than %d", line, tc.width)
				}
			}
		})
	}
}
