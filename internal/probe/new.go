package probe

import (
	"time"

	"github.com/nguyentantai21042004/edit-flow/pkg/executor"
)

type implProber struct {
	executor executor.Executor
	binary   string
	timeout  time.Duration
}

// New creates a Prober that shells out to ffprobe.
func New(exec executor.Executor, binary string, timeout time.Duration) Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &implProber{
		executor: exec,
		binary:   binary,
		timeout:  timeout,
	}
}
