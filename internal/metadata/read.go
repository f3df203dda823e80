package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// FromPath reads tag metadata from an audio file. Unreadable or non-audio
// files fail with an error wrapping ErrNotSupported.
func FromPath(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (%v)", ErrNotSupported, path, err)
	}

	// Prefer the album artist so compilations sort under one directory.
	artist := m.AlbumArtist()
	if artist == "" {
		artist = m.Artist()
	}

	disc, _ := m.Disc()
	track, _ := m.Track()

	return &Metadata{
		artist: artist,
		album:  m.Album(),
		disc:   disc,
		track:  track,
		title:  m.Title(),
		ext:    extOf(path, m),
	}, nil
}

// extOf derives the extension from the filename, falling back to the
// detected container type for extensionless files.
func extOf(path string, m tag.Metadata) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		ext = strings.ToLower(string(m.FileType()))
	}
	return ext
}
