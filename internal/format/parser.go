package format

import (
	"strconv"
	"strings"
)

// tag identifiers accepted inside braces. "disk" is a synonym for "disc".
var tagNames = map[string]TagKind{
	"artist": TagArtist,
	"album":  TagAlbum,
	"disc":   TagDisc,
	"disk":   TagDisc,
	"track":  TagTrack,
	"title":  TagTitle,
	"ext":    TagExt,
}

// parseComponents splits a template into literal runs and placeholders.
// A literal run is a maximal stretch of text without '{'; a placeholder is
// a brace-delimited tag reference. Anything malformed fails the whole
// parse.
func parseComponents(s string) ([]component, error) {
	if s == "" {
		return nil, ErrSyntax
	}

	var comps []component
	for i := 0; i < len(s); {
		if s[i] == '{' {
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return nil, ErrSyntax
			}
			ph, err := parsePlaceholder(s[i+1 : i+end])
			if err != nil {
				return nil, err
			}
			comps = append(comps, component{ph: ph})
			i += end + 1
			continue
		}

		next := strings.IndexByte(s[i:], '{')
		if next < 0 {
			comps = append(comps, component{literal: s[i:]})
			break
		}
		comps = append(comps, component{literal: s[i : i+next]})
		i += next
	}

	return comps, nil
}

// parsePlaceholder parses the text between braces: a tag identifier,
// an optional ":<digits>" leading width (disc and track only), and an
// optional trailing '?'. {ext} admits neither.
func parsePlaceholder(body string) (*Placeholder, error) {
	name := body
	rest := ""

	if idx := strings.IndexAny(body, ":?"); idx >= 0 {
		name = body[:idx]
		rest = body[idx:]
	}

	kind, ok := tagNames[name]
	if !ok {
		return nil, ErrSyntax
	}

	ph := &Placeholder{Kind: kind}

	if kind == TagDisc || kind == TagTrack {
		if strings.HasPrefix(rest, ":") {
			digits := strings.TrimSuffix(rest[1:], "?")
			n, err := strconv.ParseUint(digits, 10, 8)
			if err != nil {
				return nil, ErrSyntax
			}
			ph.Leading = uint8(n)
			rest = rest[1+len(digits):]
		}
	}

	if rest == "?" {
		if kind == TagExt {
			return nil, ErrSyntax
		}
		ph.Optional = true
		rest = ""
	}

	if rest != "" {
		return nil, ErrSyntax
	}
	return ph, nil
}
