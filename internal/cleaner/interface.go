package cleaner

import (
	"context"

	"github.com/nguyentantai21042004/edit-flow/internal/transcript"
)

// Cleaner asks the language model to tidy a raw transcript.
type Cleaner interface {
	Clean(ctx context.Context, raw transcript.Transcript) (transcript.Transcript, error)
}
