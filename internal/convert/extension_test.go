package convert

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/tiergrid/internal/eaf"
)

func TestCheckInputExtension(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	tests := []struct {
		dir     Direction
		path    string
		wantErr bool
	}{
		{ToTextGrid, "session.eaf", false},
		{ToTextGrid, "SESSION.EAF", false},
		{ToTextGrid, "session.xml", false},
		{ToTextGrid, "session.TextGrid", true},
		{ToTextGrid, missing + ".txt", true},
		{ToEAF, "session.TextGrid", false},
		{ToEAF, "session.textgrid", false},
		{ToEAF, "session.tg", false},
		{ToEAF, "session.eaf", true},
		{ToEAF, "session", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir)+" "+filepath.Base(tt.path), func(t *testing.T) {
			err := CheckInputExtension(tt.dir, tt.path)
			if !tt.wantErr {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidExtension) {
				t.Fatalf("expected ErrInvalidExtension, got %v", err)
			}
			if errors.Is(err, ErrNotFound) {
				t.Error("extension check must not touch the filesystem")
			}
			if !strings.HasPrefix(err.Error(), string(tt.dir)+": ") {
				t.Errorf("expected direction prefix, got %q", err.Error())
			}
		})
	}
}

func TestDirectionFor(t *testing.T) {
	tests := []struct {
		path    string
		want    Direction
		wantErr bool
	}{
		{"a.eaf", ToTextGrid, false},
		{"dir/a.XML", ToTextGrid, false},
		{"a.TextGrid", ToEAF, false},
		{"a.tg", ToEAF, false},
		{"a.wav", "", true},
	}

	for _, tt := range tests {
		got, err := DirectionFor(tt.path)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidExtension) {
				t.Errorf("DirectionFor(%q): expected ErrInvalidExtension, got %v", tt.path, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("DirectionFor(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
		}
	}
}

func TestOutputPathFor(t *testing.T) {
	if got := OutputPathFor(ToTextGrid, "data/s1.eaf"); got != "data/s1.TextGrid" {
		t.Errorf("got %q", got)
	}
	if got := OutputPathFor(ToEAF, "data/s1.TextGrid"); got != "data/s1.eaf" {
		t.Errorf("got %q", got)
	}
}

func TestUniqueName(t *testing.T) {
	doc := eaf.NewDocument()
	var got []string
	for _, name := range []string{"words", "words", "words-2", "words"} {
		got = append(got, doc.AddTier(uniqueName(doc, name)).ID)
	}
	want := []string{"words", "words-2", "words-2-2", "words-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
