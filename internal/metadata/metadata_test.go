package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAccessors(t *testing.T) {
	m := New("Album Artist", "Album", 1, 4, "Title", "flac")

	tests := []struct {
		name string
		get  func() (string, error)
		want string
	}{
		{"artist", m.Artist, "Album Artist"},
		{"album", m.Album, "Album"},
		{"disc", m.Disc, "1"},
		{"track", m.Track, "4"},
		{"title", m.Title, "Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.get()
			if err != nil {
				t.Fatalf("%s() error: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("%s() = %q, want %q", tt.name, got, tt.want)
			}
		})
	}

	if got := m.Ext(); got != "flac" {
		t.Errorf("Ext() = %q, want %q", got, "flac")
	}
}

func TestMissingTags(t *testing.T) {
	m := New("", "", 0, 0, "", "mp3")

	tests := []struct {
		tag string
		get func() (string, error)
	}{
		{"artist", m.Artist},
		{"album", m.Album},
		{"disc", m.Disc},
		{"track", m.Track},
		{"title", m.Title},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			_, err := tt.get()
			var missing *MissingTagError
			if !errors.As(err, &missing) {
				t.Fatalf("error = %v, want MissingTagError", err)
			}
			if missing.Tag != tt.tag {
				t.Errorf("missing tag = %q, want %q", missing.Tag, tt.tag)
			}
		})
	}

	// Ext never fails, even on an otherwise empty record.
	if got := m.Ext(); got != "mp3" {
		t.Errorf("Ext() = %q, want %q", got, "mp3")
	}
}

func TestFromPathUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not audio at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := FromPath(path)
	if !errors.Is(err, ErrNotSupported) {
		t.Errorf("FromPath error = %v, want ErrNotSupported", err)
	}
}
