package ollama

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/idu-service/internal/infrastructure/resilience"
)

const backendName = "ollama"

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	guard      *resilience.Guard
}

func New(baseURL, model string, timeout time.Duration, guard *resilience.Guard) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		guard:      guard,
	}
}

// Summarizer generates summaries with a local Ollama model.
type Summarizer struct {
	client *Client
}

func NewSummarizer(client *Client) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize uses zero temperature and a fixed seed so identical input yields
// identical output, capped at maxNewTokens.
func (s *Summarizer) Summarize(ctx context.Context, input string, maxNewTokens int) (string, error) {
	reqBody := map[string]any{
		"model":  s.client.model,
		"prompt": input,
		"stream": false,
		"options": map[string]any{
			"temperature": 0,
			"top_k":       1,
			"seed":        0,
			"num_predict": maxNewTokens,
		},
	}
	text, err := s.client.generate(ctx, reqBody)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New("ollama returned an empty summary")
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	_, err := resilience.Call(ctx, c.guard, backendName, "generate", resilience.ClassifyHTTPError, func(callCtx context.Context) (struct{}, error) {
		return struct{}{}, c.postJSON(callCtx, "/api/generate", reqBody, &response, "generate")
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}
