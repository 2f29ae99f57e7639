package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/edit-flow/internal/failure"
	"github.com/nguyentantai21042004/edit-flow/internal/logger"
	"google.golang.org/genai"
)

type geminiClient struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	model      string
	timeout    time.Duration
	logger     logger.Logger
}

// NewGemini creates a client that rotates through the supplied Gemini API
// keys when one is rate limited.
func NewGemini(apiKeys []string, model string, timeout time.Duration, log logger.Logger) Client {
	return &geminiClient{
		apiKeys: apiKeys,
		model:   model,
		timeout: timeout,
		logger:  log,
	}
}

func (g *geminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "gemini generate"

	if len(g.apiKeys) == 0 {
		return "", failure.Newf(failure.DependencyUnreachable, op, "no API keys configured")
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var lastErr error
	for range len(g.apiKeys) {
		idx, key := g.key()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			g.rotate(idx)
			continue
		}

		result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err != nil {
			if isRateLimited(err) {
				g.logger.Warn(ctx, "Gemini key %d rate limited, rotating...", idx+1)
				g.rotate(idx)
				lastErr = err
				continue
			}
			return "", classifyGemini(ctx, op, err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text strings.Builder
			for _, part := range result.Candidates[0].Content.Parts {
				if part != nil && part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			if out := strings.TrimSpace(text.String()); out != "" {
				return out, nil
			}
		}
		return "", failure.Newf(failure.InvalidResponse, op, "empty response from Gemini")
	}

	return "", failure.New(failure.DependencyUnreachable, op, fmt.Errorf("all API keys exhausted: %w", lastErr))
}

// Available only checks that a key is configured; the Gemini API has no free
// health endpoint.
func (g *geminiClient) Available(ctx context.Context) error {
	if len(g.apiKeys) == 0 {
		return failure.Newf(failure.DependencyUnreachable, "gemini", "no API keys configured")
	}
	return nil
}

func (g *geminiClient) key() (int, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.apiKeys[g.currentKey]
}

// rotate advances past idx unless another caller already has.
func (g *geminiClient) rotate(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func classifyGemini(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return failure.New(failure.Timeout, op, err)
	}
	msg := err.Error()
	for _, permanent := range []string{"INVALID_ARGUMENT", "PERMISSION_DENIED", "NOT_FOUND", "Error 400", "Error 403", "Error 404"} {
		if strings.Contains(msg, permanent) {
			return failure.New(failure.InvalidResponse, op, err)
		}
	}
	return failure.New(failure.DependencyUnreachable, op, err)
}
