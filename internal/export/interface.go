package export

import (
	"context"

	"github.com/nguyentantai21042004/edit-flow/internal/transcript"
)

// Exporter renders a finished transcript as a readable document.
type Exporter interface {
	// Export writes the document for video id and returns its path.
	Export(ctx context.Context, id string, t transcript.Transcript) (string, error)
}
