package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nguyentantai21042004/edit-flow/internal/failure"
)

const availabilityTimeout = 10 * time.Second

type ollamaClient struct {
	baseURL string
	model   string
	timeout time.Duration
	http    *http.Client
}

// NewOllama creates a client for an Ollama server. timeout bounds each
// request; zero means no per-request deadline.
func NewOllama(baseURL, model string, timeout time.Duration, hc *http.Client) Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &ollamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		timeout: timeout,
		http:    hc,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (c *ollamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "ollama generate"

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", failure.New(failure.DependencyUnreachable, op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", classifyTransport(ctx, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransport(ctx, op, err)
	}

	if err := classifyStatus(op, resp.StatusCode, data); err != nil {
		return "", err
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", failure.New(failure.InvalidResponse, op, fmt.Errorf("decode response: %w", err))
	}
	if out.Error != "" {
		return "", failure.Newf(failure.InvalidResponse, op, "server error: %s", out.Error)
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", failure.Newf(failure.InvalidResponse, op, "empty response")
	}
	return text, nil
}

// Available checks /api/tags, the cheapest endpoint Ollama exposes.
func (c *ollamaClient) Available(ctx context.Context) error {
	const op = "ollama tags"

	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return failure.New(failure.DependencyUnreachable, op, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(ctx, op, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return failure.Newf(failure.DependencyUnreachable, op, "status %d", resp.StatusCode)
	}
	return nil
}

func classifyTransport(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return failure.New(failure.Timeout, op, err)
	}
	return failure.New(failure.DependencyUnreachable, op, err)
}

// classifyStatus treats overload and server errors as transient and other
// non-2xx responses as a bad request the service will keep rejecting.
func classifyStatus(op string, code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if code == http.StatusTooManyRequests || code >= 500 {
		return failure.Newf(failure.DependencyUnreachable, op, "status %d: %s", code, msg)
	}
	return failure.Newf(failure.InvalidResponse, op, "status %d: %s", code, msg)
}
