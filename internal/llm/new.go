package llm

import (
	"fmt"
	"net/http"

	"github.com/nguyentantai21042004/edit-flow/internal/config"
	"github.com/nguyentantai21042004/edit-flow/internal/logger"
)

// New builds the configured provider wrapped in the bounded retry policy.
func New(cfg config.LLMConfig, log logger.Logger) (Client, error) {
	var c Client
	switch cfg.Provider {
	case config.ProviderOllama:
		c = NewOllama(cfg.URL, cfg.Model, cfg.RequestTimeout(), http.DefaultClient)
	case config.ProviderGemini:
		c = NewGemini(cfg.APIKeys, cfg.Model, cfg.RequestTimeout(), log)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}

	return WithRetry(c, Policy{
		MaxRetries: cfg.Retries(),
		Backoff:    cfg.Backoff,
		MaxBackoff: cfg.MaxBackoff,
	}, log), nil
}
