package denoiser

import "context"

// Denoiser removes background noise from a video's audio track.
type Denoiser interface {
	// Denoise writes the cleaned audio to audioOut and the source video
	// remuxed with that audio to videoOut.
	Denoise(ctx context.Context, videoPath, audioOut, videoOut string) error
}
