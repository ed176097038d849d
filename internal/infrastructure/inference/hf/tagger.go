package hf

import (
	"context"
	"strings"

	"github.com/kirillkom/idu-service/internal/core/domain"
	"github.com/kirillkom/idu-service/internal/infrastructure/chunking"
)

// Tagger calls a token-classification model. Long inputs are tagged window
// by window since hosted models reject inputs beyond their context size.
type Tagger struct {
	client   *Client
	model    string
	splitter *chunking.Splitter
}

func NewTagger(client *Client, model string, windowRunes int) *Tagger {
	return &Tagger{
		client:   client,
		model:    model,
		splitter: chunking.NewSplitter(windowRunes),
	}
}

type tokenClassification struct {
	EntityGroup string  `json:"entity_group"`
	Entity      string  `json:"entity"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
	Start       *int    `json:"start"`
	End         *int    `json:"end"`
}

// Tag runs token classification with span aggregation and returns the spans
// in source order. Offsets are relative to the full text.
func (t *Tagger) Tag(ctx context.Context, text string) ([]domain.EntityCandidate, error) {
	runes := []rune(text)
	var candidates []domain.EntityCandidate
	for _, window := range t.splitter.Split(text) {
		if strings.TrimSpace(window.Text) == "" {
			continue
		}
		spans, err := t.tagWindow(ctx, window.Text)
		if err != nil {
			return nil, err
		}
		windowLen := len([]rune(window.Text))
		for _, span := range spans {
			candidates = append(candidates, toCandidate(span, runes, window.Offset, windowLen))
		}
	}
	if candidates == nil {
		candidates = []domain.EntityCandidate{}
	}
	return candidates, nil
}

func (t *Tagger) tagWindow(ctx context.Context, text string) ([]tokenClassification, error) {
	var spans []tokenClassification
	err := t.client.infer(ctx, t.model, "ner", pipelineRequest{
		Inputs: text,
		Parameters: map[string]any{
			"aggregation_strategy": "simple",
		},
		Options: map[string]any{
			"wait_for_model": true,
		},
	}, &spans)
	return spans, err
}

func toCandidate(span tokenClassification, runes []rune, offset, windowLen int) domain.EntityCandidate {
	label := span.EntityGroup
	if label == "" {
		label = span.Entity
	}
	candidate := domain.EntityCandidate{
		Text:  strings.TrimSpace(span.Word),
		Label: label,
		Score: span.Score,
		Start: -1,
		End:   -1,
	}
	if span.Start != nil && span.End != nil && *span.Start >= 0 && *span.Start < *span.End && *span.End <= windowLen {
		candidate.Start = offset + *span.Start
		candidate.End = offset + *span.End
		candidate.Text = string(runes[candidate.Start:candidate.End])
	}
	return candidate
}
