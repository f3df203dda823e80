package format

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseComponents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []component
	}{
		{
			name:  "literal only",
			input: "hello world",
			want:  []component{{literal: "hello world"}},
		},
		{
			name:  "simple placeholder",
			input: "{artist}",
			want:  []component{{ph: &Placeholder{Kind: TagArtist}}},
		},
		{
			name:  "disk synonym",
			input: "{disk}",
			want:  []component{{ph: &Placeholder{Kind: TagDisc}}},
		},
		{
			name:  "leading width",
			input: "{track:2}",
			want:  []component{{ph: &Placeholder{Kind: TagTrack, Leading: 2}}},
		},
		{
			name:  "optional with leading width",
			input: "{disc:2?}",
			want:  []component{{ph: &Placeholder{Kind: TagDisc, Leading: 2, Optional: true}}},
		},
		{
			name:  "full template",
			input: "{artist}/{album}/{track:2?} - {title}.{ext}",
			want: []component{
				{ph: &Placeholder{Kind: TagArtist}},
				{literal: "/"},
				{ph: &Placeholder{Kind: TagAlbum}},
				{literal: "/"},
				{ph: &Placeholder{Kind: TagTrack, Leading: 2, Optional: true}},
				{literal: " - "},
				{ph: &Placeholder{Kind: TagTitle}},
				{literal: "."},
				{ph: &Placeholder{Kind: TagExt}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseComponents(tt.input)
			if err != nil {
				t.Fatalf("parseComponents(%q) error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseComponents(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseComponentsErrors(t *testing.T) {
	inputs := []string{
		"",
		"{unknown}",
		"{artist",
		"{artist?x}",
		"{artist:2}", // width is only valid on disc/track
		"{ext?}",     // ext can't be optional
		"{ext:2}",
		"{disc:}",
		"{disc:abc}",
		"{disc:300}", // width must fit in 8 bits
		"{}",
	}

	for _, input := range inputs {
		if _, err := Parse(input); !errors.Is(err, ErrSyntax) {
			t.Errorf("Parse(%q) error = %v, want ErrSyntax", input, err)
		}
	}
}

func TestParseSegmentation(t *testing.T) {
	f, err := Parse("{artist}/{album}/{track} - {title}.{ext}")
	if err != nil {
		t.Fatal(err)
	}

	if len(f.segments) != 3 {
		t.Fatalf("segment count = %d, want 3", len(f.segments))
	}
	for i, seg := range f.segments[:2] {
		if seg.file {
			t.Errorf("segment %d marked as file, want dir", i)
		}
	}
	if !f.segments[2].file {
		t.Error("last segment not marked as file")
	}
}

func TestParseRoundTrip(t *testing.T) {
	sources := []string{
		"{artist}/{album}/{disc}.{track} - {title}.{ext}",
		"{artist}/{album?} - {title}.{ext}",
		"music/{title}.{ext}",
		"plain text",
	}

	for _, src := range sources {
		f, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", src, err)
		}
		if got := f.String(); got != src {
			t.Errorf("String() = %q, want source %q verbatim", got, src)
		}
	}
}
