package artifact

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nguyentantai21042004/edit-flow/internal/timeline"
	"github.com/nguyentantai21042004/edit-flow/internal/transcript"
)

const wavHeaderSize = 44

// checkWAV accepts a RIFF/WAVE file with audio beyond the header whose
// declared RIFF size fits inside the file.
func checkWAV(path string) error {
	f, size, err := open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if size <= wavHeaderSize {
		return fmt.Errorf("wav has no audio data (%d bytes)", size)
	}

	var hdr [12]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return fmt.Errorf("read wav header: %w", err)
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return errors.New("not a RIFF/WAVE file")
	}
	declared := int64(binary.LittleEndian.Uint32(hdr[4:8])) + 8
	if declared > size {
		return fmt.Errorf("wav truncated: header declares %d bytes, file has %d", declared, size)
	}
	return nil
}

// checkMP4 walks the top-level ISO BMFF boxes. They must tile the file
// exactly, start with ftyp and include a moov box.
func checkMP4(path string) error {
	f, size, err := open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var (
		offset  int64
		hdr     [16]byte
		hasMoov bool
	)
	for offset < size {
		if size-offset < 8 {
			return fmt.Errorf("mp4 truncated: %d trailing bytes at %d", size-offset, offset)
		}
		if _, err := f.ReadAt(hdr[:8], offset); err != nil {
			return fmt.Errorf("read box header at %d: %w", offset, err)
		}

		boxSize := int64(binary.BigEndian.Uint32(hdr[0:4]))
		boxType := string(hdr[4:8])
		headerLen := int64(8)

		switch boxSize {
		case 0:
			boxSize = size - offset
		case 1:
			if size-offset < 16 {
				return fmt.Errorf("mp4 truncated: large box header at %d", offset)
			}
			if _, err := f.ReadAt(hdr[8:16], offset+8); err != nil {
				return fmt.Errorf("read large box size at %d: %w", offset, err)
			}
			boxSize = int64(binary.BigEndian.Uint64(hdr[8:16]))
			headerLen = 16
		}

		if boxSize < headerLen {
			return fmt.Errorf("mp4 box %q at %d has invalid size %d", boxType, offset, boxSize)
		}
		if boxSize > size-offset {
			return fmt.Errorf("mp4 truncated: box %q at %d needs %d bytes, %d left", boxType, offset, boxSize, size-offset)
		}
		if offset == 0 && boxType != "ftyp" {
			return fmt.Errorf("mp4 starts with %q, want ftyp", boxType)
		}
		if boxType == "moov" {
			hasMoov = true
		}
		offset += boxSize
	}

	if !hasMoov {
		return errors.New("mp4 has no moov box")
	}
	return nil
}

func checkTranscript(path string) error {
	_, err := transcript.Load(path)
	return err
}

func checkTimeline(path string) error {
	return timeline.Check(path)
}

func open(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		f.Close()
		return nil, 0, errors.New("empty file")
	}
	return f, info.Size(), nil
}
