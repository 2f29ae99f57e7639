package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/nguyentantai21042004/edit-flow/internal/transcript"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

// Export writes <dir>/<id>_transcript.docx through a temp file so a crash
// never leaves a half-written document behind.
func (e *implExporter) Export(ctx context.Context, id string, t transcript.Transcript) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	outPath := filepath.Join(e.dir, id+"_transcript.docx")

	f, err := os.CreateTemp(e.dir, ".partial-*.docx")
	if err != nil {
		return "", fmt.Errorf("create temp docx: %w", err)
	}
	tmp := f.Name()
	f.Close()
	defer os.Remove(tmp)

	if err := TranscriptDocx(id, t, tmp); err != nil {
		return "", fmt.Errorf("write docx: %w", err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		return "", fmt.Errorf("publish docx: %w", err)
	}

	e.logger.Info(ctx, "Transcript document written: %s", outPath)
	return outPath, nil
}

// TranscriptDocx renders t as a titled document with one paragraph per
// segment, each prefixed by its time range. Consecutive duplicate lines,
// a common LLM artifact, are written once.
func TranscriptDocx(title string, t transcript.Transcript, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16)
	doc.AddParagraph("")

	var prev string
	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" || text == prev {
			continue
		}
		prev = text

		p := doc.AddParagraph("")
		p.AddText(fmt.Sprintf("[%s - %s] ", Timestamp(seg.Start), Timestamp(seg.End))).
			Font(fontName).Size(fontSize).Color("555555").Bold(true)
		p.AddText(text).Font(fontName).Size(fontSize).Color("000000")
	}

	return doc.SaveTo(outputPath)
}

// Timestamp formats seconds as HH:MM:SS.mmm.
func Timestamp(sec float64) string {
	ms := int64(sec*1000 + 0.5)
	h := ms / 3600000
	m := ms / 60000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
