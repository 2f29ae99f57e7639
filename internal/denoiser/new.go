package denoiser

import (
	"github.com/nguyentantai21042004/edit-flow/internal/config"
	"github.com/nguyentantai21042004/edit-flow/internal/logger"
	"github.com/nguyentantai21042004/edit-flow/pkg/executor"
)

type implDenoiser struct {
	cfg      *config.Config
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Denoiser backed by ffmpeg's arnndn filter.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Denoiser {
	return &implDenoiser{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}
