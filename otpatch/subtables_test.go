package otpatch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/chws/internal/testfont"
	"github.com/npillmayer/chws/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestSortedUnique(t *testing.T) {
	in := []ot.GlyphIndex{9, 2, 5, 2, 9}
	if diff := cmp.Diff([]ot.GlyphIndex{2, 5, 9}, sortedUnique(in)); diff != "" {
		t.Errorf("sortedUnique differs: %s", diff)
	}
	if diff := cmp.Diff([]ot.GlyphIndex{9, 2, 5, 2, 9}, in); diff != "" {
		t.Errorf("input slice must stay untouched: %s", diff)
	}
}

func TestWriteCoverageListFormat(t *testing.T) {
	// scattered glyphs: the list format is smaller
	have := writeCoverage([]ot.GlyphIndex{9, 2, 5})
	want := []byte{
		0x00, 0x01, // format 1
		0x00, 0x03,
		0x00, 0x02, 0x00, 0x05, 0x00, 0x09,
	}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Errorf("coverage differs: %s", diff)
	}
}

func TestWriteCoverageRangeFormat(t *testing.T) {
	// one consecutive run: the range format is smaller
	have := writeCoverage([]ot.GlyphIndex{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	want := []byte{
		0x00, 0x02, // format 2
		0x00, 0x01,
		0x00, 0x01, 0x00, 0x0A, 0x00, 0x00,
	}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Errorf("coverage differs: %s", diff)
	}
}

func TestWriteClassDef(t *testing.T) {
	have := writeClassDef([]classSpec{
		{glyphs: []ot.GlyphIndex{1, 2, 3}, class: 1},
		{glyphs: []ot.GlyphIndex{5, 3}, class: 2}, // glyph 3 stays class 1
	})
	want := []byte{
		0x00, 0x02, // format 2
		0x00, 0x02, // two ranges
		0x00, 0x01, 0x00, 0x03, 0x00, 0x01,
		0x00, 0x05, 0x00, 0x05, 0x00, 0x02,
	}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Errorf("class definition differs: %s", diff)
	}
}

func TestWriteSinglePos(t *testing.T) {
	have := writeSinglePos([]ot.GlyphIndex{4}, valueRecord{xAdvance: -500}, valueXAdvance)
	want := []byte{
		0x00, 0x01, // posFormat 1
		0x00, 0x08, // coverage offset
		0x00, 0x04, // valueFormat: XAdvance
		0xFE, 0x0C, // -500
		0x00, 0x01, 0x00, 0x01, 0x00, 0x04, // coverage
	}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Errorf("single positioning differs: %s", diff)
	}
}

func TestWriteSingleSubst(t *testing.T) {
	have := writeSingleSubst(map[ot.GlyphIndex]ot.GlyphIndex{3: 10, 1: 9})
	want := []byte{
		0x00, 0x02, // substFormat 2
		0x00, 0x0A, // coverage offset
		0x00, 0x02, // glyph count
		0x00, 0x09, 0x00, 0x0A, // substitutes, coverage order
		0x00, 0x01, 0x00, 0x02, 0x00, 0x01, 0x00, 0x03, // coverage
	}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Errorf("single substitution differs: %s", diff)
	}
}

func TestWriteChainContext3(t *testing.T) {
	have := writeChainContext3(chainRule{
		backtrack: [][]ot.GlyphIndex{{2}},
		input:     [][]ot.GlyphIndex{{5}},
		records:   []seqLookup{{sequenceIndex: 0, lookupIndex: 7}},
	})
	want := []byte{
		0x00, 0x03, // format 3
		0x00, 0x01, 0x00, 0x12, // one backtrack coverage, at 18
		0x00, 0x01, 0x00, 0x18, // one input coverage, at 24
		0x00, 0x00, // no lookahead
		0x00, 0x01, // one sequence lookup record
		0x00, 0x00, 0x00, 0x07,
		0x00, 0x01, 0x00, 0x01, 0x00, 0x02, // backtrack coverage
		0x00, 0x01, 0x00, 0x01, 0x00, 0x05, // input coverage
	}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Errorf("chained context differs: %s", diff)
	}
}

func TestRebuildFontChecksum(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otpatch")
	defer teardown()
	//
	bin := testfont.Build(1000, []testfont.Glyph{
		{Rune: '一', Advance: 1000},
		{Rune: 'A', Advance: 500},
	})
	otf, err := ot.Parse(bin)
	if err != nil {
		t.Fatalf("cannot parse test font: %v", err)
	}
	out, err := RebuildFont(otf, nil)
	if err != nil {
		t.Fatalf("cannot rebuild font: %v", err)
	}
	if sum := calcChecksum(out); sum != checkSumAdjustmentMagic {
		t.Errorf("whole-file checksum is %08X, expected %08X",
			sum, uint32(checkSumAdjustmentMagic))
	}
	rebuilt, err := ot.Parse(out)
	if err != nil {
		t.Fatalf("cannot parse rebuilt font: %v", err)
	}
	if diff := cmp.Diff(otf.Table(ot.T("cmap")), rebuilt.Table(ot.T("cmap"))); diff != "" {
		t.Errorf("cmap changed across rebuild: %s", diff)
	}
	if rebuilt.UnitsPerEm() != 1000 || rebuilt.NumGlyphs() != 3 {
		t.Errorf("rebuilt font metrics differ: em %d, %d glyphs",
			rebuilt.UnitsPerEm(), rebuilt.NumGlyphs())
	}
}

func TestRebuildCollection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otpatch")
	defer teardown()
	//
	a := testfont.Build(1000, []testfont.Glyph{{Rune: '一', Advance: 1000}})
	b := testfont.Build(2048, []testfont.Glyph{{Rune: 'あ', Advance: 2048}})
	fonts, err := ot.ParseCollection(testfont.BuildCollection(a, b))
	if err != nil {
		t.Fatalf("cannot parse collection: %v", err)
	}
	out, err := RebuildCollection(fonts, []map[ot.Tag][]byte{nil, nil})
	if err != nil {
		t.Fatalf("cannot rebuild collection: %v", err)
	}
	if !ot.IsCollection(out) {
		t.Fatalf("rebuilt binary is not a collection")
	}
	members, err := ot.ParseCollection(out)
	if err != nil {
		t.Fatalf("cannot parse rebuilt collection: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, have %d", len(members))
	}
	if members[0].UnitsPerEm() != 1000 || members[1].UnitsPerEm() != 2048 {
		t.Errorf("member em sizes differ: %d, %d",
			members[0].UnitsPerEm(), members[1].UnitsPerEm())
	}
	for i, m := range members {
		if diff := cmp.Diff(fonts[i].Table(ot.T("cmap")), m.Table(ot.T("cmap"))); diff != "" {
			t.Errorf("member %d cmap changed across rebuild: %s", i, diff)
		}
	}
}
