package transcriber

import "context"

// Transcriber turns an audio file into a timed transcript.
type Transcriber interface {
	// Transcribe writes transcript JSON for audioPath to outPath.
	Transcribe(ctx context.Context, audioPath, outPath string) error
}
