package chunking

import (
	"strings"
	"testing"
)

func TestSplitKeepsShortTextWhole(t *testing.T) {
	windows := NewSplitter(100).Split("Apple Inc. reported results.")
	if len(windows) != 1 || windows[0].Offset != 0 || windows[0].Text != "Apple Inc. reported results." {
		t.Fatalf("unexpected windows: %+v", windows)
	}
	if got := NewSplitter(100).Split(""); got != nil {
		t.Fatalf("expected no windows for empty text, got %+v", got)
	}
}

func TestSplitPrefersSentenceBoundaries(t *testing.T) {
	text := "Apple Inc. grew fast. Microsoft Corp. followed closely behind."
	windows := NewSplitter(40).Split(text)
	if len(windows) < 2 {
		t.Fatalf("expected several windows, got %+v", windows)
	}
	if windows[0].Text != "Apple Inc. grew fast. " {
		t.Fatalf("expected cut after first sentence, got %q", windows[0].Text)
	}
	assertCoverage(t, text, windows)
}

func TestSplitFallsBackToWhitespaceAndHardCut(t *testing.T) {
	text := "alpha beta gamma delta epsilon"
	windows := NewSplitter(12).Split(text)
	for _, w := range windows {
		if strings.HasPrefix(w.Text, " ") {
			t.Fatalf("window must not start with the cut whitespace: %+v", windows)
		}
	}
	assertCoverage(t, text, windows)

	solid := strings.Repeat("x", 25)
	windows = NewSplitter(10).Split(solid)
	if len(windows) != 3 || windows[2].Offset != 20 {
		t.Fatalf("expected hard cuts every 10 runes, got %+v", windows)
	}
	assertCoverage(t, solid, windows)
}

func TestSplitOffsetsCountRunes(t *testing.T) {
	text := "Zürich AG hired staff. München GmbH did too."
	windows := NewSplitter(24).Split(text)
	assertCoverage(t, text, windows)
	runes := []rune(text)
	for _, w := range windows {
		if got := string(runes[w.Offset : w.Offset+len([]rune(w.Text))]); got != w.Text {
			t.Fatalf("offset %d does not point at window %q", w.Offset, w.Text)
		}
	}
}

func assertCoverage(t *testing.T, text string, windows []Window) {
	t.Helper()
	var b strings.Builder
	next := 0
	for _, w := range windows {
		if w.Offset != next {
			t.Fatalf("window offset %d, expected %d", w.Offset, next)
		}
		b.WriteString(w.Text)
		next += len([]rune(w.Text))
	}
	if b.String() != text {
		t.Fatalf("windows do not reassemble the text: %q", b.String())
	}
}
