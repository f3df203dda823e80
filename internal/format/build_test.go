package format

import (
	"errors"
	"testing"

	"github.com/tleroux/attune/internal/metadata"
)

func completeMeta() *metadata.Metadata {
	return metadata.New("Album Artist", "Album", 1, 1, "Title", "flac")
}

// partialMeta has no album tag.
func partialMeta() *metadata.Metadata {
	return metadata.New("Artist", "", 1, 1, "Title", "flac")
}

func TestBuildPath(t *testing.T) {
	tests := []struct {
		name   string
		format string
		meta   *metadata.Metadata
		want   string
	}{
		{
			name:   "complete metadata",
			format: "{artist}/{album}/{disc}.{track} - {title}.{ext}",
			meta:   completeMeta(),
			want:   "Album Artist/Album/1.1 - Title.flac",
		},
		{
			name:   "unreferenced tag may be missing",
			format: "{artist}/{disc}.{track} - {title}.{ext}",
			meta:   partialMeta(),
			want:   "Artist/1.1 - Title.flac",
		},
		{
			name:   "absent optional in filename contributes nothing",
			format: "{artist}/{album?} - {title}.{ext}",
			meta:   partialMeta(),
			want:   "Artist/ - Title.flac",
		},
		{
			name:   "present optional in filename resolves",
			format: "{artist}/{album?} - {title}.{ext}",
			meta:   completeMeta(),
			want:   "Album Artist/Album - Title.flac",
		},
		{
			name:   "literal-only directory segment",
			format: "music/{title}.{ext}",
			meta:   partialMeta(),
			want:   "music/Title.flac",
		},
		{
			name:   "track padded to width",
			format: "{artist}/{track:2} - {title}.{ext}",
			meta:   completeMeta(),
			want:   "Album Artist/01 - Title.flac",
		},
		{
			name:   "width zero means no padding",
			format: "{artist}/{track} - {title}.{ext}",
			meta:   completeMeta(),
			want:   "Album Artist/1 - Title.flac",
		},
		{
			name:   "value longer than width unchanged",
			format: "{artist}/{track:2} - {title}.{ext}",
			meta:   metadata.New("Artist", "", 1, 123, "Title", "flac"),
			want:   "Artist/123 - Title.flac",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.format)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.format, err)
			}
			got, err := f.BuildPath(tt.meta, false)
			if err != nil {
				t.Fatalf("BuildPath error: %v", err)
			}
			if got != tt.want {
				t.Errorf("BuildPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPathErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		meta   *metadata.Metadata
		want   error
	}{
		{
			name:   "absent optional in directory segment",
			format: "{artist}/{album?}/{title}.{ext}",
			meta:   partialMeta(),
			want:   ErrOptionalInDir,
		},
		{
			name:   "only optional placeholders in filename",
			format: "{artist}/{title?}.{ext}",
			meta:   partialMeta(),
			want:   ErrRequiredInFile,
		},
		{
			name:   "only optionals regardless of metadata",
			format: "{artist}/{title?}.{ext}",
			meta:   completeMeta(),
			want:   ErrRequiredInFile,
		},
		{
			name:   "literal text never counts as placeholder",
			format: "{artist}/foo.{ext}",
			meta:   partialMeta(),
			want:   ErrRequiredInFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.format)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.format, err)
			}
			if _, err := f.BuildPath(tt.meta, false); !errors.Is(err, tt.want) {
				t.Errorf("BuildPath error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildPathMissingTag(t *testing.T) {
	f, err := Parse("{artist}/{album}")
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.BuildPath(partialMeta(), false)
	var missing *metadata.MissingTagError
	if !errors.As(err, &missing) {
		t.Fatalf("BuildPath error = %v, want MissingTagError", err)
	}
	if missing.Tag != "album" {
		t.Errorf("missing tag = %q, want %q", missing.Tag, "album")
	}
}

func TestBuildPathSanitization(t *testing.T) {
	f, err := Parse("{artist}/{title}.{ext}")
	if err != nil {
		t.Fatal(err)
	}

	meta := metadata.New("AC/DC", "", 0, 0, "Back: In Black", "flac")

	got, err := f.BuildPath(meta, false)
	if err != nil {
		t.Fatal(err)
	}
	// The separator is always rewritten, the colon only in exfat mode.
	if got != "AC_DC/Back: In Black.flac" {
		t.Errorf("BuildPath = %q", got)
	}

	got, err = f.BuildPath(meta, true)
	if err != nil {
		t.Fatal(err)
	}
	if got != "AC_DC/Back_ In Black.flac" {
		t.Errorf("BuildPath exfat = %q", got)
	}
}

func TestBuildPathDeterministic(t *testing.T) {
	f, err := Parse("{artist}/{album}/{track:2} - {title}.{ext}")
	if err != nil {
		t.Fatal(err)
	}

	first, err := f.BuildPath(completeMeta(), true)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		got, err := f.BuildPath(completeMeta(), true)
		if err != nil {
			t.Fatal(err)
		}
		if got != first {
			t.Fatalf("BuildPath not deterministic: %q vs %q", got, first)
		}
	}
}
