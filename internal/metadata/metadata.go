// Package metadata extracts the tag fields used for path building from
// audio files. Artist, album, disc, track and title may be absent; the
// extension is always known.
package metadata

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrNotSupported is returned for files whose tags cannot be read.
var ErrNotSupported = errors.New("file type not supported")

// MissingTagError reports a tag that a required placeholder needs but the
// file does not carry.
type MissingTagError struct {
	Tag string
}

func (e *MissingTagError) Error() string {
	return fmt.Sprintf("tag property %s is missing", e.Tag)
}

// Metadata holds the tags of one file. The zero value of a field means
// the tag is absent. Records are built per file and discarded after use.
type Metadata struct {
	artist string
	album  string
	disc   int
	track  int
	title  string
	ext    string
}

// New builds a record from already-known values. Empty strings and zero
// numbers mark absent tags. Collaborators that do not read real files
// (and tests) use this instead of FromPath.
func New(artist, album string, disc, track int, title, ext string) *Metadata {
	return &Metadata{
		artist: artist,
		album:  album,
		disc:   disc,
		track:  track,
		title:  title,
		ext:    ext,
	}
}

// Artist returns the album artist when present, the track artist
// otherwise.
func (m *Metadata) Artist() (string, error) {
	if m.artist == "" {
		return "", &MissingTagError{Tag: "artist"}
	}
	return m.artist, nil
}

func (m *Metadata) Album() (string, error) {
	if m.album == "" {
		return "", &MissingTagError{Tag: "album"}
	}
	return m.album, nil
}

// Disc returns the disc number as decimal text.
func (m *Metadata) Disc() (string, error) {
	if m.disc == 0 {
		return "", &MissingTagError{Tag: "disc"}
	}
	return strconv.Itoa(m.disc), nil
}

// Track returns the track number as decimal text.
func (m *Metadata) Track() (string, error) {
	if m.track == 0 {
		return "", &MissingTagError{Tag: "track"}
	}
	return strconv.Itoa(m.track), nil
}

func (m *Metadata) Title() (string, error) {
	if m.title == "" {
		return "", &MissingTagError{Tag: "title"}
	}
	return m.title, nil
}

// Ext returns the file extension without the leading dot. It never fails.
func (m *Metadata) Ext() string {
	return m.ext
}
