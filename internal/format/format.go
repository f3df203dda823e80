// Package format compiles path templates like
// "{artist}/{album}/{track:2} - {title}.{ext}" and applies them to file
// metadata to produce destination paths. A template is compiled once and
// can be applied to any number of files.
package format

import (
	"errors"
	"strings"
)

// Errors reported by the compiler and the path builder.
var (
	// ErrSyntax means the template string could not be parsed.
	ErrSyntax = errors.New("failed to parse format string")

	// ErrOptionalInDir means a directory segment contained an optional
	// placeholder whose tag is missing for the current file. Optional
	// placeholders are legal in directory segments but must resolve.
	ErrOptionalInDir = errors.New("directory components in format string can't contain optionals")

	// ErrRequiredInFile means the filename segment ended up with no
	// required placeholder other than {ext}.
	ErrRequiredInFile = errors.New("file component must have at least one required placeholder (other than {ext})")
)

// TagKind identifies one of the six metadata fields a placeholder may
// reference.
type TagKind uint8

const (
	TagArtist TagKind = iota
	TagAlbum
	TagDisc
	TagTrack
	TagTitle
	TagExt
)

// Placeholder is a typed substitution point inside a template.
type Placeholder struct {
	Kind     TagKind
	Leading  uint8 // minimum digit count for disc/track, 0 = no padding
	Optional bool
}

// component is either a run of literal text or a placeholder.
type component struct {
	literal string
	ph      *Placeholder
}

// segment is one filesystem level of the compiled template: a directory
// name, or the trailing filename.
type segment struct {
	comps []component
	file  bool
}

// Format is a compiled template: zero or more directory segments followed
// by at most one filename segment. It is immutable once built and safe to
// share across goroutines.
type Format struct {
	segments []segment
	source   string
}

// Parse compiles a template string. The returned Format remembers the
// original string so it can round-trip through configuration files.
func Parse(s string) (*Format, error) {
	comps, err := parseComponents(s)
	if err != nil {
		return nil, err
	}

	var segments []segment
	var acc []component

	for _, c := range comps {
		if c.ph != nil {
			acc = append(acc, c)
			continue
		}

		// Literal text is the only place a '/' can appear. Each '/'
		// closes the current accumulator as a directory segment.
		parts := strings.Split(c.literal, "/")
		for _, part := range parts[:len(parts)-1] {
			if part != "" {
				acc = append(acc, component{literal: part})
			}
			segments = append(segments, segment{comps: acc})
			acc = nil
		}
		if last := parts[len(parts)-1]; last != "" {
			acc = append(acc, component{literal: last})
		}
	}

	if len(acc) > 0 {
		segments = append(segments, segment{comps: acc, file: true})
	}

	return &Format{segments: segments, source: s}, nil
}

// String returns the template source exactly as it was given to Parse,
// not a re-rendering of the compiled structure.
func (f *Format) String() string {
	return f.source
}
