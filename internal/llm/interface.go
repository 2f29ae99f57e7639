// Package llm talks to the text-generation service used to clean transcripts.
package llm

import "context"

// Client sends a prompt to a language model and returns its completion.
// Errors are *failure.Failure values classified as timeout,
// dependency_unreachable or invalid_response.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Available checks that the service can be reached before work is sent to it.
	Available(ctx context.Context) error
}
