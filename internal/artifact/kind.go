package artifact

// Kind names one artifact a stage produces.
type Kind string

const (
	DenoisedAudio     Kind = "denoised_audio"
	DenoisedVideo     Kind = "denoised_video"
	RawTranscript     Kind = "raw_transcript"
	CleanedTranscript Kind = "cleaned_transcript"
	EditedVideo       Kind = "edited_video"
	Timeline          Kind = "timeline"
)

type layout struct {
	dir    string
	suffix string
	check  func(path string) error
}

// layouts maps each kind to its directory under the output root, its file
// name suffix after the video ID, and its validity predicate.
var layouts = map[Kind]layout{
	DenoisedAudio:     {"denoised", "_clean.wav", checkWAV},
	DenoisedVideo:     {"denoised", ".mp4", checkMP4},
	RawTranscript:     {"transcripts", "_transcript.json", checkTranscript},
	CleanedTranscript: {"edited", "_llm_cleaned.json", checkTranscript},
	EditedVideo:       {"edited_segments", "_video_clean.mp4", checkMP4},
	Timeline:          {"timelines", "_timeline.xml", checkTimeline},
}

// Kinds returns every known kind in pipeline order.
func Kinds() []Kind {
	return []Kind{DenoisedAudio, DenoisedVideo, RawTranscript, CleanedTranscript, EditedVideo, Timeline}
}
