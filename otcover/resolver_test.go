package otcover

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/chws/internal/testfont"
	"github.com/npillmayer/chws/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// testGlyphs is the glyph inventory most resolver tests run against. Glyph
// IDs follow slice order, starting at 1.
var testGlyphs = []testfont.Glyph{
	{Rune: '「', Advance: 1000}, // 1 opening bracket
	{Rune: '」', Advance: 1000}, // 2 closing bracket
	{Rune: '、', Advance: 1000}, // 3 ideographic comma
	{Rune: '。', Advance: 1000}, // 4 ideographic full stop
	{Rune: '・', Advance: 1000}, // 5 middle dot
	{Rune: '：', Advance: 1000}, // 6 fullwidth colon
	{Rune: '一', Advance: 1000}, // 7 ideograph
	{Rune: 'A', Advance: 500},   // 8
	{Rune: 'W', Advance: 1000},  // 9 full-width Latin, must be dropped
	{Rune: 'あ', Advance: 700},  // 10 proportional kana, must be dropped
	{Rune: '｡', Advance: 500},   // 11 halfwidth full stop
}

func resolveTestFont(t *testing.T, cfg Config) *CoverageSet {
	otf, err := ot.Parse(testfont.Build(1000, testGlyphs))
	if err != nil {
		t.Fatalf("cannot parse test font: %v", err)
	}
	cs, err := Resolve(otf, cfg)
	if err != nil {
		t.Fatalf("cannot resolve coverage: %v", err)
	}
	return cs
}

func TestResolveCategories(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otcover")
	defer teardown()
	//
	cs := resolveTestFont(t, Config{})
	expect := map[ot.GlyphIndex]Category{
		1: OpeningPunct,
		2: ClosingPunct,
		3: PeriodComma,
		4: PeriodComma,
		5: MidPunct,
		6: ColonSemicolon,
		7: WideCJK,
		8: NarrowLatin,
	}
	for g, cat := range expect {
		if have := cs.CategoryOf(g); have != cat {
			t.Errorf("glyph %d: expected category %v, have %v", g, cat, have)
		}
	}
	if cat := cs.CategoryOf(9); cat != NoCategory {
		t.Errorf("full-width Latin glyph must not be covered, has %v", cat)
	}
	if cat := cs.CategoryOf(10); cat != NoCategory {
		t.Errorf("proportional kana glyph must not be covered, has %v", cat)
	}
}

func TestResolveSpacingTrio(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otcover")
	defer teardown()
	//
	cs := resolveTestFont(t, Config{}) // Japanese conventions
	if diff := cmp.Diff([]ot.GlyphIndex{2, 3, 4}, cs.Left()); diff != "" {
		t.Errorf("left class differs: %s", diff)
	}
	if diff := cmp.Diff([]ot.GlyphIndex{1}, cs.Right()); diff != "" {
		t.Errorf("right class differs: %s", diff)
	}
	if diff := cmp.Diff([]ot.GlyphIndex{6, 5}, cs.Middle()); diff != "" {
		t.Errorf("middle class differs: %s", diff)
	}
	if diff := cmp.Diff([]rune{'」', '、', '。'}, cs.LeftRunes()); diff != "" {
		t.Errorf("left runes differ: %s", diff)
	}
	if cs.IsEmpty() {
		t.Errorf("coverage must not be considered empty")
	}
}

func TestResolveLanguageConventions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otcover")
	defer teardown()
	//
	// Traditional Chinese centers period and comma
	cs := resolveTestFont(t, Config{Language: LangTraditionalChinese})
	if diff := cmp.Diff([]ot.GlyphIndex{2}, cs.Left()); diff != "" {
		t.Errorf("ZHT left class differs: %s", diff)
	}
	if diff := cmp.Diff([]ot.GlyphIndex{3, 4, 6, 5}, cs.Middle()); diff != "" {
		t.Errorf("ZHT middle class differs: %s", diff)
	}
	// Simplified Chinese left-aligns colon and semicolon
	cs = resolveTestFont(t, Config{Language: LangSimplifiedChinese})
	if diff := cmp.Diff([]ot.GlyphIndex{2, 3, 4, 6}, cs.Left()); diff != "" {
		t.Errorf("ZHS left class differs: %s", diff)
	}
	if diff := cmp.Diff([]ot.GlyphIndex{5}, cs.Middle()); diff != "" {
		t.Errorf("ZHS middle class differs: %s", diff)
	}
}

func TestTrioClassByLanguage(t *testing.T) {
	cases := []struct {
		cat    Category
		lang   Language
		expect spacingClass
	}{
		{PeriodComma, LangDefault, classLeft},
		{PeriodComma, LangTraditionalChinese, classMiddle},
		{PeriodComma, LangHongKongChinese, classMiddle},
		{ColonSemicolon, LangDefault, classMiddle},
		{ColonSemicolon, LangSimplifiedChinese, classLeft},
		{ExclamQuestion, LangDefault, classNone},
		{ExclamQuestion, LangSimplifiedChinese, classLeft},
		{OpeningQuote, LangKorean, classRight},
		{WideCJK, LangDefault, classNone},
	}
	for _, c := range cases {
		if have := trioClass(c.cat, c.lang); have != c.expect {
			t.Errorf("trioClass(%v, %q): expected %d, have %d",
				c.cat, c.lang, c.expect, have)
		}
	}
}

func TestResolveHalfWidthVariants(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otcover")
	defer teardown()
	//
	cs := resolveTestFont(t, Config{})
	v, ok := cs.HalfWidthVariant(4) // '。' has '｡' in the font
	if !ok || v != 11 {
		t.Errorf("expected halfwidth variant 11 for glyph 4, have %d (%v)", v, ok)
	}
	if _, ok := cs.HalfWidthVariant(3); ok {
		t.Errorf("glyph 3 has no halfwidth counterpart in the font")
	}
}

func TestResolveRejectsFontWithoutCMap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otcover")
	defer teardown()
	//
	if _, err := Resolve(nil, Config{}); err != ot.ErrUnsupportedFont {
		t.Errorf("expected ErrUnsupportedFont, have %v", err)
	}
}

func TestUnion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otcover")
	defer teardown()
	//
	a := resolveTestFont(t, Config{})
	otherFont, err := ot.Parse(testfont.Build(1000, []testfont.Glyph{
		{Rune: '『', Advance: 1000}, // 1
		{Rune: '』', Advance: 1000}, // 2
	}))
	if err != nil {
		t.Fatalf("cannot parse second test font: %v", err)
	}
	b, err := Resolve(otherFont, Config{})
	if err != nil {
		t.Fatalf("cannot resolve second coverage: %v", err)
	}
	u := Union(a, b)
	// glyph 1 is opening in a and b; a claims it first
	if cat := u.CategoryOf(1); cat != OpeningPunct {
		t.Errorf("expected glyph 1 to stay opening punctuation, has %v", cat)
	}
	if diff := cmp.Diff([]ot.GlyphIndex{2, 3, 4}, u.Left()); diff != "" {
		t.Errorf("union left class differs: %s", diff)
	}
	if u2 := Union(nil, a); u2 == nil || len(u2.Left()) != len(a.Left()) {
		t.Errorf("union with nil must keep the non-nil set")
	}
}

func TestVerticalOfWithoutVertFeature(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otcover")
	defer teardown()
	//
	otf, err := ot.Parse(testfont.Build(1000, testGlyphs))
	if err != nil {
		t.Fatalf("cannot parse test font: %v", err)
	}
	cs, err := Resolve(otf, Config{})
	if err != nil {
		t.Fatalf("cannot resolve coverage: %v", err)
	}
	if vcs := VerticalOf(otf, cs); vcs != nil {
		t.Errorf("font without vert feature must yield no vertical coverage")
	}
}

func TestSaveGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otcover")
	defer teardown()
	//
	cs := resolveTestFont(t, Config{})
	var sb strings.Builder
	if err := cs.SaveGlyphs(&sb); err != nil {
		t.Fatalf("cannot save glyphs: %v", err)
	}
	out := sb.String()
	for _, line := range []string{"left\t2\n", "right\t1\n", "middle\t5\n"} {
		if !strings.Contains(out, line) {
			t.Errorf("expected %q in glyph dump:\n%s", line, out)
		}
	}
}
