package probe

import "context"

// Prober reads stream metadata from a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (*Info, error)
}

// Info is the subset of ffprobe output the timeline needs.
type Info struct {
	Width    int
	Height   int
	FrameNum int
	FrameDen int
	Duration float64
}

// FrameRate returns frames per second, or 0 when unknown.
func (i *Info) FrameRate() float64 {
	if i.FrameDen == 0 {
		return 0
	}
	return float64(i.FrameNum) / float64(i.FrameDen)
}
