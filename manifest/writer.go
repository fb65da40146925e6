package manifest

import (
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/pgssup/common"
)

type rootElement struct {
	XMLName       xml.Name          `xml:"pgssup"`
	DefaultOffset string            `xml:"defaultoffset,attr,omitempty"`
	Subtitles     []subtitleElement `xml:"subtitle"`
}

// Encode writes the manifest as XML that Parse reads back. Image paths below
// Dir are written relative to it.
func (m *Manifest) Encode(w io.Writer) error {
	root := rootElement{Subtitles: make([]subtitleElement, 0, len(m.Entries))}
	if m.DefaultOffset != nil {
		root.DefaultOffset = m.DefaultOffset.String()
	}

	for _, entry := range m.Entries {
		subtitle := subtitleElement{
			EndTime:   entry.EndTime.String(),
			Image:     m.relativeImagePath(entry.ImagePath),
			StartTime: entry.StartTime.String(),
		}
		if entry.Offset != nil {
			subtitle.Offset = entry.Offset.String()
		}
		if entry.Forced {
			subtitle.View = forcedView
		}
		root.Subtitles = append(root.Subtitles, subtitle)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.Wrap(err, "failed to write manifest")
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "    ")
	if err := encoder.Encode(root); err != nil {
		return errors.Wrap(err, "failed to encode manifest")
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return errors.Wrap(err, "failed to write manifest")
	}

	return nil
}

// AddEntry appends an entry, assigning its index.
func (m *Manifest) AddEntry(startTime, endTime common.TimeCode, imagePath string, offset common.Position, forced bool) {
	m.Entries = append(m.Entries, Entry{
		EndTime:   endTime,
		Forced:    forced,
		ImagePath: imagePath,
		Index:     len(m.Entries),
		Offset:    &offset,
		StartTime: startTime,
	})
}

func (m *Manifest) relativeImagePath(imagePath string) string {
	if m.Dir == "" {
		return imagePath
	}

	relative, relErr := filepath.Rel(m.Dir, imagePath)
	if relErr != nil || relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return imagePath
	}

	return filepath.ToSlash(relative)
}
