package codec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dhowden/tag"
)

// Tags is the descriptive metadata found in an input file.
type Tags struct {
	Format   string `json:"format,omitempty"`
	FileType string `json:"file_type,omitempty"`
	Title    string `json:"title,omitempty"`
	Artist   string `json:"artist,omitempty"`
	Album    string `json:"album,omitempty"`
	Genre    string `json:"genre,omitempty"`
	Year     int    `json:"year,omitempty"`
}

// ReadTags extracts ID3, MP4 or Vorbis style tags from raw. Files without
// tags yield an empty Tags and no error.
func ReadTags(raw []byte) (*Tags, error) {
	m, err := tag.ReadFrom(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return &Tags{}, nil
		}

		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	return &Tags{
		Format:   string(m.Format()),
		FileType: string(m.FileType()),
		Title:    m.Title(),
		Artist:   m.Artist(),
		Album:    m.Album(),
		Genre:    m.Genre(),
		Year:     m.Year(),
	}, nil
}
