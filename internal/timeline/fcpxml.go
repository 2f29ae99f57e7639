package timeline

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
)

// Version is the FCPXML document version written by the generator.
const Version = "1.10"

// FCPXML is the root of a Final Cut Pro XML interchange document.
type FCPXML struct {
	XMLName   xml.Name  `xml:"fcpxml"`
	Version   string    `xml:"version,attr"`
	Resources Resources `xml:"resources"`
	Library   Library   `xml:"library"`
}

type Resources struct {
	Formats []Format `xml:"format"`
	Assets  []Asset  `xml:"asset"`
}

type Format struct {
	ID            string `xml:"id,attr"`
	Name          string `xml:"name,attr,omitempty"`
	FrameDuration string `xml:"frameDuration,attr,omitempty"`
	Width         int    `xml:"width,attr,omitempty"`
	Height        int    `xml:"height,attr,omitempty"`
}

type Asset struct {
	ID       string   `xml:"id,attr"`
	Name     string   `xml:"name,attr,omitempty"`
	Start    string   `xml:"start,attr,omitempty"`
	Duration string   `xml:"duration,attr,omitempty"`
	HasVideo string   `xml:"hasVideo,attr,omitempty"`
	HasAudio string   `xml:"hasAudio,attr,omitempty"`
	Format   string   `xml:"format,attr,omitempty"`
	MediaRep MediaRep `xml:"media-rep"`
}

type MediaRep struct {
	Kind string `xml:"kind,attr"`
	Src  string `xml:"src,attr"`
}

type Library struct {
	Events []Event `xml:"event"`
}

type Event struct {
	Name     string    `xml:"name,attr"`
	Projects []Project `xml:"project"`
}

type Project struct {
	Name     string   `xml:"name,attr"`
	Sequence Sequence `xml:"sequence"`
}

type Sequence struct {
	Format   string `xml:"format,attr"`
	Duration string `xml:"duration,attr"`
	TCStart  string `xml:"tcStart,attr"`
	TCFormat string `xml:"tcFormat,attr"`
	Spine    Spine  `xml:"spine"`
}

type Spine struct {
	Clips []Clip `xml:"asset-clip"`
}

// Clip is an asset-clip. Connected clips (the denoised audio lane) nest inside
// their primary clip.
type Clip struct {
	Name      string `xml:"name,attr"`
	Ref       string `xml:"ref,attr"`
	Lane      string `xml:"lane,attr,omitempty"`
	Offset    string `xml:"offset,attr"`
	Start     string `xml:"start,attr"`
	Duration  string `xml:"duration,attr"`
	Connected []Clip `xml:"asset-clip,omitempty"`
}

// Validate checks the minimal structure an editor needs to import the
// document: a version, a format, assets, and a spine whose clips all
// reference declared assets.
func (f *FCPXML) Validate() error {
	if f.Version == "" {
		return errors.New("missing fcpxml version")
	}
	if len(f.Resources.Formats) == 0 {
		return errors.New("no format resource")
	}
	if len(f.Resources.Assets) == 0 {
		return errors.New("no asset resource")
	}

	assets := make(map[string]bool, len(f.Resources.Assets))
	for _, a := range f.Resources.Assets {
		if a.ID == "" {
			return errors.New("asset without id")
		}
		assets[a.ID] = true
	}

	clips := 0
	for _, ev := range f.Library.Events {
		for _, p := range ev.Projects {
			for _, c := range p.Sequence.Spine.Clips {
				if err := checkRefs(c, assets); err != nil {
					return err
				}
				clips++
			}
		}
	}
	if clips == 0 {
		return errors.New("spine has no clips")
	}
	return nil
}

func checkRefs(c Clip, assets map[string]bool) error {
	if !assets[c.Ref] {
		return fmt.Errorf("clip %q references unknown asset %q", c.Name, c.Ref)
	}
	for _, cc := range c.Connected {
		if err := checkRefs(cc, assets); err != nil {
			return err
		}
	}
	return nil
}

// Load parses the FCPXML document at path without validating it.
func Load(path string) (*FCPXML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}
	var doc FCPXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse timeline: %w", err)
	}
	return &doc, nil
}

// Check loads and validates the timeline at path.
func Check(path string) error {
	doc, err := Load(path)
	if err != nil {
		return err
	}
	return doc.Validate()
}
