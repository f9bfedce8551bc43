package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/chws/otcover"
)

func TestOutPathFunc(t *testing.T) {
	cases := []struct {
		outDir, suffix string
		inPlace        bool
		in, want       string
	}{
		{"", "-chws", false, "fonts/a.ttf", "fonts/a-chws.ttf"},
		{"out", "", false, "fonts/a.ttf", "out/a.ttf"},
		{"out", "-chws", false, "a.otc", "out/a-chws.otc"},
		{"", "", true, "fonts/a.ttf", "fonts/a.ttf"},
	}
	for _, c := range cases {
		f := outPathFunc(c.outDir, c.suffix, c.inPlace)
		if got := f(c.in); got != filepath.FromSlash(c.want) {
			t.Errorf("outPathFunc(%q, %q, %v)(%q) = %q, want %q",
				c.outDir, c.suffix, c.inPlace, c.in, got, c.want)
		}
	}
}

func TestSpacingLanguage(t *testing.T) {
	cases := []struct {
		flag string
		want otcover.Language
		ok   bool
	}{
		{"", otcover.LangDefault, true},
		{"ja", otcover.LangJapanese, true},
		{"ja-JP", otcover.LangJapanese, true},
		{"ko", otcover.LangKorean, true},
		{"zh", otcover.LangSimplifiedChinese, true},
		{"zh-Hans", otcover.LangSimplifiedChinese, true},
		{"zh-Hant", otcover.LangTraditionalChinese, true},
		{"zh-TW", otcover.LangTraditionalChinese, true},
		{"zh-HK", otcover.LangHongKongChinese, true},
		{"fr", otcover.LangDefault, false},
		{"not a tag", otcover.LangDefault, false},
	}
	for _, c := range cases {
		got, err := spacingLanguage(c.flag)
		if c.ok && err != nil {
			t.Errorf("spacingLanguage(%q) failed: %v", c.flag, err)
		}
		if !c.ok && err == nil {
			t.Errorf("spacingLanguage(%q) did not fail", c.flag)
		}
		if got != c.want {
			t.Errorf("spacingLanguage(%q) = %v, want %v", c.flag, got, c.want)
		}
	}
}

func TestExpandArgs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.ttf", "b.otc", "ignore.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	single := filepath.Join(dir, "a.ttf")
	paths, err := expandArgs([]string{dir, single})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.ttf"), filepath.Join(dir, "b.otc"), single}
	if len(paths) != len(want) {
		t.Fatalf("expandArgs returned %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("expandArgs[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}
