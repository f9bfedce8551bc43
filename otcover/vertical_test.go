package otcover_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/chws/internal/testfont"
	"github.com/npillmayer/chws/ot"
	"github.com/npillmayer/chws/otcover"
	"github.com/npillmayer/chws/otpatch"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

type gsubBuilder struct{ b []byte }

func (w *gsubBuilder) u16(vals ...uint16) {
	for _, v := range vals {
		w.b = append(w.b, byte(v>>8), byte(v))
	}
}

func (w *gsubBuilder) u32(v uint32) {
	w.b = append(w.b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// vertGSUB builds a GSUB whose vert feature substitutes glyphs 1 and 2 by
// their vertical alternates 7 and 8.
func vertGSUB() []byte {
	w := &gsubBuilder{}
	w.u32(0x00010000)
	w.u16(10, 30, 44) // script list, feature list, lookup list
	// script list: DFLT with a default LangSys referencing feature 0
	w.u16(1)
	w.u32(uint32(ot.T("DFLT")))
	w.u16(8)
	w.u16(4, 0)
	w.u16(0, 0xFFFF)
	w.u16(1, 0)
	// feature list: vert over lookup 0
	w.u16(1)
	w.u32(uint32(ot.T("vert")))
	w.u16(8)
	w.u16(0, 1, 0)
	// lookup list at 44
	w.u16(1, 4)
	w.u16(1, 0, 1, 16) // lookup at 48: single subst, subtable at 48+16=64
	w.u16(0, 0, 0, 0)  // padding up to the subtable
	w.u16(2, 10, 2)    // subtable at 64: format 2, coverage at +10
	w.u16(7, 8)        // substitutes for coverage order 1, 2
	w.u16(1, 2, 1, 2)  // coverage at 74: format 1, glyphs 1 and 2
	return w.b
}

func TestVerticalCoverage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otcover")
	defer teardown()
	//
	base := testfont.Build(1000, []testfont.Glyph{
		{Rune: '「', Advance: 1000},      // 1
		{Rune: '」', Advance: 1000},      // 2
		{Rune: '。', Advance: 1000},      // 3
		{Rune: '・', Advance: 1000},      // 4
		{Rune: '一', Advance: 1000},      // 5
		{Rune: 'A', Advance: 500},       // 6
		{Rune: '', Advance: 1000}, // 7 vertical alternate of 1
		{Rune: '', Advance: 1000}, // 8 vertical alternate of 2
	})
	otf, err := ot.Parse(base)
	if err != nil {
		t.Fatalf("cannot parse base font: %v", err)
	}
	withGSUB, err := otpatch.RebuildFont(otf, map[ot.Tag][]byte{ot.T("GSUB"): vertGSUB()})
	if err != nil {
		t.Fatalf("cannot rebuild font with GSUB: %v", err)
	}
	otf, err = ot.Parse(withGSUB)
	if err != nil {
		t.Fatalf("cannot parse rebuilt font: %v", err)
	}
	if otf.Layout.GSub == nil {
		t.Fatalf("expected the rebuilt font to carry a GSUB")
	}
	cs, err := otcover.Resolve(otf, otcover.Config{})
	if err != nil {
		t.Fatalf("cannot resolve coverage: %v", err)
	}
	vcs := otcover.VerticalOf(otf, cs)
	if vcs == nil {
		t.Fatalf("expected a vertical coverage set")
	}
	if !vcs.Vertical {
		t.Errorf("vertical coverage must be marked vertical")
	}
	// bracket glyphs are mapped through vert; the full stop has no
	// alternate and is dropped; middle dot and ideograph stay
	if diff := cmp.Diff([]ot.GlyphIndex{8}, vcs.Left()); diff != "" {
		t.Errorf("vertical left class differs: %s", diff)
	}
	if diff := cmp.Diff([]ot.GlyphIndex{7}, vcs.Right()); diff != "" {
		t.Errorf("vertical right class differs: %s", diff)
	}
	if diff := cmp.Diff([]ot.GlyphIndex{4}, vcs.Middle()); diff != "" {
		t.Errorf("vertical middle class differs: %s", diff)
	}
	if diff := cmp.Diff([]ot.GlyphIndex{5}, vcs.Glyphs(otcover.WideCJK)); diff != "" {
		t.Errorf("vertical ideograph coverage differs: %s", diff)
	}
}
