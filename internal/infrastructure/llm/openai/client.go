package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/kirillkom/idu-service/internal/infrastructure/resilience"
)

const systemPrompt = "You are a summarization model. Follow the instruction prefix of the user message and reply with the summary text only."

// Summarizer calls any OpenAI-compatible chat completion endpoint.
type Summarizer struct {
	client *openai.Client
	model  string
	guard  *resilience.Guard
}

func NewSummarizer(apiKey, baseURL, model string, guard *resilience.Guard) *Summarizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Summarizer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		guard:  guard,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, input string, maxNewTokens int) (string, error) {
	seed := 0
	req := openai.ChatCompletionRequest{
		Model: s.model,
		// zero is dropped by omitempty, so use the smallest positive temperature
		Temperature: math.SmallestNonzeroFloat32,
		Seed:        &seed,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
	}
	if strings.HasPrefix(s.model, "o1") || strings.HasPrefix(s.model, "o3") || strings.HasPrefix(s.model, "o4") || strings.HasPrefix(s.model, "gpt-5") {
		req.MaxCompletionTokens = maxNewTokens
	} else {
		req.MaxTokens = maxNewTokens
	}

	resp, err := resilience.Call(ctx, s.guard, "openai", "summarize", classifyError, func(callCtx context.Context) (openai.ChatCompletionResponse, error) {
		resp, err := s.client.CreateChatCompletion(callCtx, req)
		if err != nil {
			return resp, fmt.Errorf("create chat completion: %w", err)
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai summarize returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func classifyError(err error) resilience.Verdict {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return resilience.ClassifyHTTPError(&resilience.HTTPStatusError{StatusCode: apiErr.HTTPStatusCode})
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return resilience.ClassifyHTTPError(&resilience.HTTPStatusError{StatusCode: reqErr.HTTPStatusCode})
	}
	return resilience.ClassifyHTTPError(err)
}
