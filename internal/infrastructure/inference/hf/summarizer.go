package hf

import (
	"context"
	"errors"
	"strings"
)

type Summarizer struct {
	client *Client
	model  string
}

func NewSummarizer(client *Client, model string) *Summarizer {
	return &Summarizer{client: client, model: model}
}

type generation struct {
	GeneratedText string `json:"generated_text"`
	SummaryText   string `json:"summary_text"`
}

// Summarize runs text2text generation with sampling disabled and returns the
// single best sequence.
func (s *Summarizer) Summarize(ctx context.Context, input string, maxNewTokens int) (string, error) {
	var generations []generation
	err := s.client.infer(ctx, s.model, "summarize", pipelineRequest{
		Inputs: input,
		Parameters: map[string]any{
			"max_new_tokens": maxNewTokens,
			"do_sample":      false,
		},
		Options: map[string]any{
			"wait_for_model": true,
		},
	}, &generations)
	if err != nil {
		return "", err
	}
	if len(generations) == 0 {
		return "", errors.New("hf summarize returned no generations")
	}

	text := generations[0].GeneratedText
	if text == "" {
		text = generations[0].SummaryText
	}
	return strings.TrimSpace(text), nil
}
