package format

import "strings"

// Metadata is the view of a file's tags that path building needs. Each
// accessor returns an error when the underlying tag is absent, except
// Ext which is always known.
type Metadata interface {
	Artist() (string, error)
	Album() (string, error)
	Disc() (string, error)
	Track() (string, error)
	Title() (string, error)
	Ext() string
}

// exfatIllegal lists the characters rewritten to '_' in exfat-compat mode,
// beyond the path separator which is always rewritten.
const exfatIllegal = `"*:<>\?|`

// BuildPath applies the compiled template to one file's metadata and
// returns the destination path relative to the library root. It is a pure
// function: identical inputs always produce identical output.
//
// Directory segments require every placeholder to resolve; an optional
// placeholder whose tag is absent fails with ErrOptionalInDir. Filename
// segments skip absent optionals, but must keep at least one required
// placeholder other than {ext} or the build fails with ErrRequiredInFile.
func (f *Format) BuildPath(m Metadata, exfatCompat bool) (string, error) {
	var path strings.Builder

	for _, seg := range f.segments {
		if seg.file {
			required := 0
			for _, c := range seg.comps {
				if c.ph == nil {
					path.WriteString(c.literal)
					continue
				}
				if !c.ph.Optional && c.ph.Kind != TagExt {
					required++
				}
				val, ok, err := resolve(m, c.ph)
				if err != nil {
					return "", err
				}
				if ok {
					path.WriteString(sanitize(val, exfatCompat))
				}
			}
			if required < 1 {
				return "", ErrRequiredInFile
			}
			continue
		}

		for _, c := range seg.comps {
			if c.ph == nil {
				path.WriteString(c.literal)
				continue
			}
			val, ok, err := resolve(m, c.ph)
			if err != nil {
				return "", err
			}
			if !ok {
				return "", ErrOptionalInDir
			}
			path.WriteString(sanitize(val, exfatCompat))
		}
		path.WriteByte('/')
	}

	return path.String(), nil
}

// resolve looks up a placeholder's value. An absent tag under an optional
// placeholder reports ok=false instead of an error.
func resolve(m Metadata, ph *Placeholder) (val string, ok bool, err error) {
	switch ph.Kind {
	case TagArtist:
		val, err = m.Artist()
	case TagAlbum:
		val, err = m.Album()
	case TagDisc:
		val, err = m.Disc()
		val = leadingZeros(val, ph.Leading)
	case TagTrack:
		val, err = m.Track()
		val = leadingZeros(val, ph.Leading)
	case TagTitle:
		val, err = m.Title()
	case TagExt:
		return m.Ext(), true, nil
	}

	if err != nil {
		if ph.Optional {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

// leadingZeros left-pads s with '0' up to width. Width 0 or a value that
// is already long enough is returned unchanged.
func leadingZeros(s string, width uint8) string {
	if int(width) <= len(s) {
		return s
	}
	return strings.Repeat("0", int(width)-len(s)) + s
}

// sanitize rewrites characters that cannot appear in a single path
// component. '/' is always rewritten so a tag value can never introduce
// an extra directory level.
func sanitize(s string, exfatCompat bool) string {
	return strings.Map(func(r rune) rune {
		if r == '/' {
			return '_'
		}
		if exfatCompat && strings.ContainsRune(exfatIllegal, r) {
			return '_'
		}
		return r
	}, s)
}
