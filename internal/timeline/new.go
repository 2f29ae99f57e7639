package timeline

import (
	"github.com/nguyentantai21042004/edit-flow/internal/logger"
	"github.com/nguyentantai21042004/edit-flow/internal/probe"
)

type implGenerator struct {
	prober probe.Prober
	logger logger.Logger
}

// New creates a Generator that reads the video format through prober.
func New(prober probe.Prober, log logger.Logger) Generator {
	return &implGenerator{
		prober: prober,
		logger: log,
	}
}
