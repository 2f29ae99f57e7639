// Package artifacttest writes minimal well-formed artifacts for tests that
// need files the artifact store accepts.
package artifacttest

import (
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"os"

	"github.com/nguyentantai21042004/edit-flow/internal/timeline"
	"github.com/nguyentantai21042004/edit-flow/internal/transcript"
)

// WAV returns a 48 kHz stereo PCM WAV holding a few silent samples.
func WAV() []byte {
	const (
		channels   = 2
		sampleRate = 48000
		bits       = 16
	)
	samples := make([]byte, 64)

	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+len(samples)))
	b.WriteString("WAVEfmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&b, binary.LittleEndian, uint32(sampleRate*channels*bits/8))
	binary.Write(&b, binary.LittleEndian, uint16(channels*bits/8))
	binary.Write(&b, binary.LittleEndian, uint16(bits))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(len(samples)))
	b.Write(samples)
	return b.Bytes()
}

// Box encodes one ISO BMFF box.
func Box(typ string, payload []byte) []byte {
	out := make([]byte, 8, 8+len(payload))
	binary.BigEndian.PutUint32(out, uint32(8+len(payload)))
	copy(out[4:], typ)
	return append(out, payload...)
}

// MP4 returns an ftyp + moov + mdat file. tag is stored in mdat so callers
// can tell fixtures apart.
func MP4(tag string) []byte {
	var b []byte
	b = append(b, Box("ftyp", []byte("isom\x00\x00\x02\x00isomiso2mp41"))...)
	b = append(b, Box("moov", Box("mvhd", make([]byte, 100)))...)
	b = append(b, Box("mdat", []byte(tag))...)
	return b
}

// Transcript returns a two-segment transcript.
func Transcript() transcript.Transcript {
	return transcript.Transcript{Segments: []transcript.Segment{
		{Start: 0.5, End: 2, Text: "first point"},
		{Start: 3, End: 4.25, Text: "second point"},
	}}
}

// Timeline returns a valid FCPXML document referencing source.
func Timeline(source string) []byte {
	doc, err := timeline.Build(timeline.Input{
		Name:          "fixture",
		Transcript:    Transcript(),
		SourceVideo:   source,
		DenoisedAudio: source + ".wav",
		EditedVideo:   source + ".edited.mp4",
	}, 1280, 720, 25, 1)
	if err != nil {
		panic(err)
	}
	data, err := xml.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return append([]byte(xml.Header), data...)
}

func WriteWAV(path string) error {
	return os.WriteFile(path, WAV(), 0644)
}

func WriteMP4(path, tag string) error {
	return os.WriteFile(path, MP4(tag), 0644)
}

func WriteTranscript(path string) error {
	return transcript.Write(path, Transcript())
}

func WriteTimeline(path, source string) error {
	return os.WriteFile(path, Timeline(source), 0644)
}
