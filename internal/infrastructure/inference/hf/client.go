package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kirillkom/idu-service/internal/infrastructure/resilience"
)

const backendName = "hf"

// Client talks to a Hugging Face inference endpoint (hosted Inference API or
// a self-hosted server speaking the same pipeline contract).
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	guard      *resilience.Guard
}

func New(baseURL, token string, timeout time.Duration, guard *resilience.Guard) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: timeout},
		guard:      guard,
	}
}

type pipelineRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
}

func (c *Client) infer(ctx context.Context, model, operation string, payload pipelineRequest, out any) error {
	_, err := resilience.Call(ctx, c.guard, backendName, operation, resilience.ClassifyHTTPError, func(callCtx context.Context) (struct{}, error) {
		return struct{}{}, c.postJSON(callCtx, modelPath(model), payload, out, operation)
	})
	return err
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s request: %w", backendName, operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return resilience.NewHTTPStatusError(backendName, operation, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func modelPath(model string) string {
	segments := strings.Split(strings.Trim(model, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "/models/" + strings.Join(segments, "/")
}
