package chunking

import "unicode"

// Window is a piece of the source text and the rune offset where it starts.
type Window struct {
	Text   string
	Offset int
}

type Splitter struct {
	MaxRunes int
}

func NewSplitter(maxRunes int) *Splitter {
	if maxRunes <= 0 {
		maxRunes = 1500
	}
	return &Splitter{MaxRunes: maxRunes}
}

// Split cuts text into consecutive windows of at most MaxRunes runes. Cuts
// prefer a sentence end, then any whitespace. Windows never overlap, so spans
// found in them stay in source order.
func (s *Splitter) Split(text string) []Window {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	out := make([]Window, 0, len(runes)/s.MaxRunes+1)
	for start := 0; start < len(runes); {
		end := start + s.MaxRunes
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.cutPoint(runes, start, end)
		}
		out = append(out, Window{Text: string(runes[start:end]), Offset: start})
		start = end
	}
	return out
}

// cutPoint returns the index where the window starting at start should end.
func (s *Splitter) cutPoint(runes []rune, start, end int) int {
	sentenceFloor := start + s.MaxRunes/2
	spaceCut := -1
	for i := end; i > start+1; i-- {
		if !unicode.IsSpace(runes[i-1]) {
			continue
		}
		if spaceCut < 0 {
			spaceCut = i
		}
		if i > sentenceFloor && isSentenceEnd(runes[i-2]) {
			return i
		}
	}
	if spaceCut > 0 {
		return spaceCut
	}
	return end
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '\n':
		return true
	}
	return false
}
