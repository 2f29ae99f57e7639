package cleaner

import (
	"fmt"

	"github.com/nguyentantai21042004/edit-flow/internal/config"
	"github.com/nguyentantai21042004/edit-flow/internal/llm"
	"github.com/nguyentantai21042004/edit-flow/internal/logger"
)

type implCleaner struct {
	client llm.Client
	mode   string
	logger logger.Logger
}

// New creates a Cleaner. mode is config.ModeSegment (one request per
// segment) or config.ModeDocument (one request for the whole transcript).
func New(client llm.Client, mode string, log logger.Logger) (Cleaner, error) {
	switch mode {
	case config.ModeSegment, config.ModeDocument:
	case "":
		mode = config.ModeSegment
	default:
		return nil, fmt.Errorf("unknown cleaning mode %q", mode)
	}
	return &implCleaner{
		client: client,
		mode:   mode,
		logger: log,
	}, nil
}
