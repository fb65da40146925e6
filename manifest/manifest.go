// Package manifest reads the XML file that lists the subtitle images of a
// .sup stream together with their timing and placement:
//
//	<pgssup defaultoffset="0,920">
//	    <subtitle starttime="00:00:54.384" endtime="00:00:56.932" image="sub00000.png" />
//	    <subtitle starttime="00:00:59.837" endtime="00:01:01.411" offset="1000,50" image="sub00001.png" />
//	    <subtitle starttime="00:01:10.734" endtime="00:01:12.638" view="forced" image="sub00002.png" />
//	</pgssup>
//
// Relative image paths are resolved against the directory of the manifest.
package manifest

import (
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/crlf"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/cockroachdb/errors"
	"github.com/ristryder/pgssup/bluraysup"
	"github.com/ristryder/pgssup/common"
	"golang.org/x/text/transform"
)

const (
	rootElementName     = "pgssup"
	subtitleElementName = "subtitle"
	forcedView          = "forced"
)

// Entry is one <subtitle> element.
type Entry struct {
	EndTime   common.TimeCode
	Forced    bool
	ImagePath string
	Index     int
	Line      int
	// Offset is nil when the element has no offset attribute.
	Offset    *common.Position
	StartTime common.TimeCode
}

type Manifest struct {
	// DefaultOffset is nil when the root element has no defaultoffset attribute.
	DefaultOffset *common.Position
	Dir           string
	Entries       []Entry
}

type subtitleElement struct {
	EndTime   string `xml:"endtime,attr"`
	Image     string `xml:"image,attr"`
	Offset    string `xml:"offset,attr,omitempty"`
	StartTime string `xml:"starttime,attr"`
	View      string `xml:"view,attr,omitempty"`
}

// Load parses the manifest at path. Images are not opened until Cue is called.
func Load(path string) (*Manifest, error) {
	file, openErr := os.Open(path)
	if openErr != nil {
		return nil, errors.Mark(errors.Wrapf(openErr, "failed to open manifest %s", path), bluraysup.ErrIOFailure)
	}
	defer file.Close()

	absolutePath, absErr := filepath.Abs(path)
	if absErr != nil {
		return nil, errors.Wrapf(absErr, "failed to resolve manifest path %s", path)
	}

	return Parse(file, filepath.Dir(absolutePath))
}

// Parse reads a manifest from r, dir is the base for relative image paths.
// Any line ending convention is accepted.
func Parse(r io.Reader, dir string) (*Manifest, error) {
	decoder := xml.NewDecoder(transform.NewReader(r, new(crlf.Normalize)))
	manifest := &Manifest{Dir: dir, Entries: []Entry{}}

	inRoot := false
	seenRoot := false

	for {
		token, tokenErr := decoder.Token()
		if tokenErr == io.EOF {
			break
		}
		if tokenErr != nil {
			return nil, errors.Mark(errors.Wrap(tokenErr, "failed to parse manifest"), bluraysup.ErrMalformedInput)
		}

		switch element := token.(type) {
		case xml.StartElement:
			line, _ := decoder.InputPos()

			switch {
			case element.Name.Local == rootElementName && !seenRoot:
				inRoot, seenRoot = true, true

				defaultOffset, offsetErr := optionalPosition(attribute(element, "defaultoffset"))
				if offsetErr != nil {
					return nil, errors.Wrapf(bluraysup.ErrMalformedInput, "line %d: %v", line, offsetErr)
				}
				manifest.DefaultOffset = defaultOffset
			case element.Name.Local == rootElementName:
				return nil, errors.Wrapf(bluraysup.ErrMalformedInput, "line %d: the %s element should be the only root", line, rootElementName)
			case element.Name.Local == subtitleElementName && inRoot:
				var subtitle subtitleElement
				if decodeErr := decoder.DecodeElement(&subtitle, &element); decodeErr != nil {
					return nil, errors.Mark(errors.Wrapf(decodeErr, "line %d", line), bluraysup.ErrMalformedInput)
				}

				entry, entryErr := newEntry(len(manifest.Entries), line, subtitle, dir)
				if entryErr != nil {
					return nil, &bluraysup.CueError{Index: len(manifest.Entries), Err: entryErr}
				}
				manifest.Entries = append(manifest.Entries, entry)
			case element.Name.Local == subtitleElementName:
				return nil, errors.Wrapf(bluraysup.ErrMalformedInput, "line %d: the %s element should be in the %s element", line, subtitleElementName, rootElementName)
			case inRoot:
				//unknown elements inside the root are skipped
				if skipErr := decoder.Skip(); skipErr != nil {
					return nil, errors.Mark(errors.Wrap(skipErr, "failed to parse manifest"), bluraysup.ErrMalformedInput)
				}
			default:
				return nil, errors.Wrapf(bluraysup.ErrMalformedInput, "line %d: the %s element should be in the root", line, rootElementName)
			}
		case xml.EndElement:
			if element.Name.Local == rootElementName {
				inRoot = false
			}
		}
	}

	if !seenRoot {
		return nil, errors.Wrapf(bluraysup.ErrMalformedInput, "manifest has no %s element", rootElementName)
	}

	return manifest, nil
}

// Cue loads the image of entry and places it. Offsets fall back to the
// manifest default offset, then to fallback.
func (m *Manifest) Cue(entry Entry, fallback common.Position) (bluraysup.Cue, error) {
	img, openErr := imgio.Open(entry.ImagePath)
	if openErr != nil {
		return bluraysup.Cue{}, &bluraysup.CueError{Index: entry.Index, Err: errors.Mark(errors.Wrapf(openErr, "failed to load image %s", entry.ImagePath), bluraysup.ErrMalformedInput)}
	}

	return bluraysup.Cue{
		EndMs:    entry.EndTime.TotalMilliseconds,
		Forced:   entry.Forced,
		Image:    img,
		Position: m.Position(entry, fallback),
		StartMs:  entry.StartTime.TotalMilliseconds,
	}, nil
}

// CueSource loads the image of an entry only when the writer asks for it.
func (m *Manifest) CueSource(fallback common.Position) bluraysup.CueSource {
	return func(index int) (bluraysup.Cue, error) {
		return m.Cue(m.Entries[index], fallback)
	}
}

func (m *Manifest) Position(entry Entry, fallback common.Position) common.Position {
	if entry.Offset != nil {
		return *entry.Offset
	}
	if m.DefaultOffset != nil {
		return *m.DefaultOffset
	}

	return fallback
}

func newEntry(index, line int, subtitle subtitleElement, dir string) (Entry, error) {
	entry := Entry{Index: index, Line: line, Forced: strings.EqualFold(strings.TrimSpace(subtitle.View), forcedView)}

	startTime, startErr := common.ParseTimeCode(subtitle.StartTime)
	if startErr != nil {
		return Entry{}, errors.Wrapf(bluraysup.ErrMalformedInput, "line %d: starttime: %v", line, startErr)
	}
	endTime, endErr := common.ParseTimeCode(subtitle.EndTime)
	if endErr != nil {
		return Entry{}, errors.Wrapf(bluraysup.ErrMalformedInput, "line %d: endtime: %v", line, endErr)
	}
	if endTime.TotalMilliseconds <= startTime.TotalMilliseconds {
		return Entry{}, errors.Wrapf(bluraysup.ErrMalformedInput, "line %d: endtime %v is not after starttime %v", line, endTime, startTime)
	}
	entry.StartTime = startTime
	entry.EndTime = endTime

	offset, offsetErr := optionalPosition(subtitle.Offset)
	if offsetErr != nil {
		return Entry{}, errors.Wrapf(bluraysup.ErrMalformedInput, "line %d: %v", line, offsetErr)
	}
	entry.Offset = offset

	imagePath := strings.TrimSpace(subtitle.Image)
	if imagePath == "" {
		return Entry{}, errors.Wrapf(bluraysup.ErrMalformedInput, "line %d: image is missing", line)
	}
	if !filepath.IsAbs(imagePath) {
		imagePath = filepath.Join(dir, imagePath)
	}
	entry.ImagePath = imagePath

	return entry, nil
}

func attribute(element xml.StartElement, name string) string {
	for _, attr := range element.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}

	return ""
}

func optionalPosition(value string) (*common.Position, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	position, parseErr := common.ParsePosition(value)
	if parseErr != nil {
		return nil, parseErr
	}

	return &position, nil
}
