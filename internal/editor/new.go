package editor

import (
	"github.com/nguyentantai21042004/edit-flow/internal/config"
	"github.com/nguyentantai21042004/edit-flow/internal/logger"
	"github.com/nguyentantai21042004/edit-flow/pkg/executor"
)

type implEditor struct {
	cfg      *config.Config
	executor executor.Executor
	logger   logger.Logger
}

// New creates an Editor that cuts with ffmpeg stream copy and joins the
// pieces with the concat demuxer.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Editor {
	return &implEditor{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}
