package fontload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/chws/internal/testfont"
)

var loadGlyphs = []testfont.Glyph{
	{Rune: 'A', Advance: 500},
	{Rune: '一', Advance: 1000},
}

func TestFromBytes(t *testing.T) {
	bin := testfont.Build(1000, loadGlyphs)
	f, err := FromBytes(bin)
	if err != nil {
		t.Fatal(err)
	}
	if f.IsColl || f.NumFonts != 1 {
		t.Errorf("standalone font reported as collection: %+v", f)
	}
}

func TestFromBytesCollection(t *testing.T) {
	bin := testfont.Build(1000, loadGlyphs)
	coll := testfont.BuildCollection(bin, bin)
	f, err := FromBytes(coll)
	if err != nil {
		t.Fatal(err)
	}
	if !f.IsColl {
		t.Error("collection not recognized")
	}
	if f.NumFonts != 2 {
		t.Errorf("expected 2 member fonts, got %d", f.NumFonts)
	}
}

func TestFromBytesRejectsGarbage(t *testing.T) {
	if _, err := FromBytes([]byte("this is not a font")); err == nil {
		t.Error("garbage accepted as font")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ttf")
	if err := os.WriteFile(path, testfont.Build(1000, loadGlyphs), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Path != path {
		t.Errorf("path not recorded: %q", f.Path)
	}
	if len(f.Binary) == 0 {
		t.Error("binary not loaded")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Error("missing file did not error")
	}
}
