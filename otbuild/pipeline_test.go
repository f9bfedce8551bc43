package otbuild_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/npillmayer/chws/internal/testfont"
	"github.com/npillmayer/chws/ot"
	"github.com/npillmayer/chws/otbuild"
	"github.com/npillmayer/chws/otpatch"
	"github.com/npillmayer/chws/otverify"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

// modelEngine shapes with the spacing semantics the patch is expected to
// produce, computed from the rune classes directly. It stands in for the
// real shaping engine so that pipeline tests need no real font.
type modelEngine struct{}

func runeClass(r rune) string {
	switch r {
	case '「', '《', '〈':
		return "opener"
	case '」', '》', '〉', '。', '、':
		return "closer"
	case '・':
		return "middle"
	}
	if r >= 0x4E00 && r <= 0x9FFF {
		return "wide"
	}
	if r < 0x80 {
		return "latin"
	}
	return ""
}

func isSpacingPunct(r rune) bool {
	switch runeClass(r) {
	case "opener", "closer", "middle":
		return true
	}
	return false
}

func (modelEngine) Shape(fontData []byte, in otverify.Input) ([]otverify.ShapedGlyph, error) {
	otf, err := ot.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("model engine cannot parse font: %w", err)
	}
	em := int32(otf.UnitsPerEm())
	half, quarter := em/2, em/4
	out := make([]otverify.ShapedGlyph, len(in.Text))
	for i, r := range in.Text {
		gid := otf.GlyphIndex(r)
		adv := int32(otf.HMtx.Advance(gid))
		out[i] = otverify.ShapedGlyph{GID: uint32(gid), Cluster: i}
		if in.Vertical {
			out[i].YAdvance = -adv
		} else {
			out[i].XAdvance = adv
		}
	}
	halt := false
	narrow := false
	for _, f := range in.Features {
		switch f.Tag {
		case "halt", "vhal":
			halt = true
		case "chws", "vchw":
			narrow = true
		}
	}
	if !halt && !narrow {
		return out, nil
	}
	for i, r := range in.Text {
		var delta int32
		switch runeClass(r) {
		case "closer":
			if halt || (i+1 < len(in.Text) && isSpacingPunct(in.Text[i+1])) {
				delta = half
			}
		case "opener":
			if halt {
				delta = half
			} else if i > 0 {
				switch runeClass(in.Text[i-1]) {
				case "opener", "middle":
					delta = half
				}
			}
		case "wide":
			if narrow && i+1 < len(in.Text) && runeClass(in.Text[i+1]) == "latin" {
				delta = quarter
			}
		}
		if delta == 0 {
			continue
		}
		if in.Vertical {
			out[i].YAdvance += delta
		} else {
			out[i].XAdvance -= delta
		}
	}
	return out, nil
}

var pipelineGlyphs = []testfont.Glyph{
	{Rune: '「', Advance: 1000},
	{Rune: '」', Advance: 1000},
	{Rune: '《', Advance: 1000},
	{Rune: '》', Advance: 1000},
	{Rune: '。', Advance: 1000},
	{Rune: '一', Advance: 1000},
	{Rune: 'A', Advance: 500},
}

func newTestPipeline(tweak func(*otbuild.Options)) *otbuild.Pipeline {
	opts := otbuild.Options{Engine: modelEngine{}}
	if tweak != nil {
		tweak(&opts)
	}
	return otbuild.New(opts)
}

func TestPipelineAcceptsFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otbuild")
	defer teardown()
	//
	bin := testfont.Build(1000, pipelineGlyphs)
	p := newTestPipeline(nil)
	out, outcomes := p.PatchBinary("test.ttf", bin)
	require.Len(t, outcomes, 1)
	require.Equal(t, otbuild.Accepted, outcomes[0].State, "outcome: %s", outcomes[0].Summary())
	require.Equal(t, -1, outcomes[0].Index)
	require.Equal(t, []ot.Tag{ot.T("chws")}, outcomes[0].Features)
	require.NotNil(t, out)

	patched, err := ot.Parse(out)
	require.NoError(t, err)
	require.NotNil(t, patched.Layout.GPos)
	require.True(t, patched.Layout.GPos.HasFeature(ot.T("chws")))

	// a second run must leave the font alone
	out2, outcomes2 := p.PatchBinary("test.ttf", out)
	require.Nil(t, out2)
	require.Equal(t, otbuild.Skipped, outcomes2[0].State)
}

func TestPipelineHalfWidthFeatures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otbuild")
	defer teardown()
	//
	bin := testfont.Build(1000, pipelineGlyphs)
	p := newTestPipeline(func(opts *otbuild.Options) {
		opts.Patch.HalfWidthFeatures = true
	})
	out, outcomes := p.PatchBinary("test.ttf", bin)
	require.Equal(t, otbuild.Accepted, outcomes[0].State, "outcome: %s", outcomes[0].Summary())
	require.Contains(t, outcomes[0].Features, ot.T("halt"))
	require.NotNil(t, out)
}

func TestPipelineRejectsWithoutApplicableGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otbuild")
	defer teardown()
	//
	bin := testfont.Build(1000, []testfont.Glyph{{Rune: 'A', Advance: 500}})
	p := newTestPipeline(nil)
	out, outcomes := p.PatchBinary("plain.ttf", bin)
	require.Nil(t, out)
	require.Equal(t, otbuild.Rejected, outcomes[0].State)
	require.True(t, errors.Is(outcomes[0].Err, ot.ErrNoApplicableGlyphs))
	require.Contains(t, outcomes[0].Summary(), "rejected at Built")
	report := &otbuild.Report{Outcomes: outcomes}
	require.False(t, report.AllAccepted())
}

func TestPipelineCollection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otbuild")
	defer teardown()
	//
	a := testfont.Build(1000, pipelineGlyphs)
	b := testfont.Build(1000, []testfont.Glyph{
		{Rune: '」', Advance: 1000},
		{Rune: '「', Advance: 1000},
		{Rune: '一', Advance: 1000},
	})
	coll := testfont.BuildCollection(a, b)
	p := newTestPipeline(nil)
	out, outcomes := p.PatchBinary("pair.ttc", coll)
	require.Len(t, outcomes, 2)
	for i, o := range outcomes {
		require.Equal(t, otbuild.Accepted, o.State, "member %d: %s", i, o.Summary())
		require.Equal(t, i, o.Index)
	}
	require.NotNil(t, out)
	members, err := ot.ParseCollection(out)
	require.NoError(t, err)
	require.Len(t, members, 2)
	for _, m := range members {
		require.True(t, m.Layout.GPos.HasFeature(ot.T("chws")))
	}
}

func TestPipelineCollectionAllOrNothing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otbuild")
	defer teardown()
	//
	good := testfont.Build(1000, pipelineGlyphs)
	bad := testfont.Build(1000, []testfont.Glyph{{Rune: 'A', Advance: 500}})
	coll := testfont.BuildCollection(good, bad)
	p := newTestPipeline(nil)
	out, outcomes := p.PatchBinary("mixed.ttc", coll)
	require.Nil(t, out, "a collection with a rejected member must not be written")
	require.Equal(t, otbuild.Accepted, outcomes[0].State)
	require.Equal(t, otbuild.Rejected, outcomes[1].State)
}

// emptyLayoutTable is a version 1.0 GSUB/GPOS table with empty script,
// feature and lookup lists.
func emptyLayoutTable() []byte {
	return []byte{0, 1, 0, 0, 0, 10, 0, 12, 0, 14, 0, 0, 0, 0, 0, 0}
}

// partialSharingTTC assembles a two-member collection whose members share
// every table except GPOS: member two reuses member one's tables through a
// second directory, with its GPOS record pointing at a separate blob.
func partialSharingTTC(t *testing.T) []byte {
	t.Helper()
	base := testfont.Build(1000, pipelineGlyphs)
	otf, err := ot.Parse(base)
	require.NoError(t, err)
	layout := emptyLayoutTable()
	member, err := otpatch.RebuildFont(otf, map[ot.Tag][]byte{
		ot.T("GSUB"): layout,
		ot.T("GPOS"): layout,
	})
	require.NoError(t, err)

	const hdr = 20 // ttcf header with two directory offsets
	numTables := int(member[4])<<8 | int(member[5])
	dirLen := 12 + 16*numTables
	shifted := append([]byte(nil), member...)
	for i := 0; i < numTables; i++ {
		rec := 12 + 16*i
		off := binary.BigEndian.Uint32(shifted[rec+8:])
		binary.BigEndian.PutUint32(shifted[rec+8:], off+hdr)
	}
	dir2 := append([]byte(nil), shifted[:dirLen]...)
	for len(shifted)%4 != 0 {
		shifted = append(shifted, 0)
	}
	dir2Off := hdr + len(shifted)
	gposOff := dir2Off + dirLen
	for i := 0; i < numTables; i++ {
		rec := 12 + 16*i
		if ot.Tag(binary.BigEndian.Uint32(dir2[rec:])) == ot.T("GPOS") {
			binary.BigEndian.PutUint32(dir2[rec+8:], uint32(gposOff))
		}
	}

	coll := []byte{'t', 't', 'c', 'f', 0, 1, 0, 0, 0, 0, 0, 2}
	coll = binary.BigEndian.AppendUint32(coll, hdr)
	coll = binary.BigEndian.AppendUint32(coll, uint32(dir2Off))
	coll = append(coll, shifted...)
	coll = append(coll, dir2...)
	coll = append(coll, layout...)
	return coll
}

func TestPipelineRejectsPartiallySharedCollection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otbuild")
	defer teardown()
	//
	coll := partialSharingTTC(t)
	p := newTestPipeline(nil)
	out, outcomes := p.PatchBinary("partial.ttc", coll)
	require.Nil(t, out, "partially shared tables cannot be patched consistently")
	require.Len(t, outcomes, 2)
	for i, o := range outcomes {
		require.Equal(t, otbuild.Rejected, o.State, "member %d: %s", i, o.Summary())
		require.True(t, errors.Is(o.Err, ot.ErrIncompatibleFont))
	}
}

func TestPipelineDumpGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otbuild")
	defer teardown()
	//
	var dump bytes.Buffer
	bin := testfont.Build(1000, pipelineGlyphs)
	p := newTestPipeline(func(opts *otbuild.Options) {
		opts.DumpGlyphs = &dump
	})
	_, outcomes := p.PatchBinary("test.ttf", bin)
	require.Equal(t, otbuild.Accepted, outcomes[0].State)
	require.Contains(t, dump.String(), "# test.ttf")
	require.Contains(t, dump.String(), "left\t")
}

func TestOutcomeSummary(t *testing.T) {
	o := otbuild.Outcome{
		Path:     "fonts/mincho.ttc",
		Index:    1,
		State:    otbuild.Accepted,
		Features: []ot.Tag{ot.T("chws"), ot.T("vchw")},
	}
	sum := o.Summary()
	if !strings.Contains(sum, "mincho.ttc#1") || !strings.Contains(sum, "chws, vchw") {
		t.Errorf("unexpected summary: %s", sum)
	}
	skipped := otbuild.Outcome{Path: "a.ttf", Index: -1, State: otbuild.Skipped}
	if !strings.Contains(skipped.Summary(), "skipped") {
		t.Errorf("unexpected summary: %s", skipped.Summary())
	}
}
