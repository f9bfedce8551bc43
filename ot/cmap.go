package ot

// CMapTable defines the mapping of character codes to the glyph index values
// used in the font. We select a single "best" Unicode encoding subtable,
// preferring full-repertoire (format 12) over BMP-only (format 4) mappings,
// the same order of preference the sfnt reference implementations use.
type CMapTable struct {
	GlyphIndexMap CMapGlyphIndex // glyph lookup in the selected encoding subtable
	numGlyphs     int
}

// CMapGlyphIndex looks up a glyph index for a Unicode code point.
// Lookup returns 0 (".notdef") for code points not covered by the font.
type CMapGlyphIndex interface {
	Lookup(r rune) GlyphIndex
}

// platform/encoding IDs of interest, in ascending order of preference
const (
	puWindowsUCS4 = 3<<16 | 10 // platform 3, encoding 10: format 12
	puWindowsBMP  = 3<<16 | 1  // platform 3, encoding 1: format 4
	puUnicodeExt  = 0<<16 | 4  // platform 0, encoding 4
	puUnicodeBMP  = 0<<16 | 3  // platform 0, encoding 3
)

func cmapEncodingPreference(platform, encoding uint16) int {
	switch uint32(platform)<<16 | uint32(encoding) {
	case puWindowsUCS4:
		return 4
	case puUnicodeExt:
		return 3
	case puWindowsBMP:
		return 2
	case puUnicodeBMP:
		return 1
	}
	return 0
}

func parseCMap(b binarySegm) (*CMapTable, error) {
	numTables, err := b.u16(2)
	if err != nil {
		return nil, errFont(T("cmap"), "header", err)
	}
	bestScore, bestOffset := 0, -1
	for i := 0; i < int(numTables); i++ {
		rec, err := b.view(4+i*8, 8)
		if err != nil {
			return nil, errFont(T("cmap"), "encoding records", err)
		}
		platform, encoding := u16(rec[0:2]), u16(rec[2:4])
		offset := u32(rec[4:8])
		score := cmapEncodingPreference(platform, encoding)
		tracer().Debugf("cmap encoding (%d,%d) at offset %d, preference %d",
			platform, encoding, offset, score)
		if score > bestScore && int(offset) < len(b) {
			bestScore, bestOffset = score, int(offset)
		}
	}
	if bestOffset < 0 {
		return nil, errFontf(T("cmap"), "encoding records", ErrUnsupportedFont,
			"no Unicode encoding subtable found")
	}
	gim, err := makeGlyphIndex(b[bestOffset:])
	if err != nil {
		return nil, err
	}
	return &CMapTable{GlyphIndexMap: gim}, nil
}

func makeGlyphIndex(b binarySegm) (CMapGlyphIndex, error) {
	format, err := b.u16(0)
	if err != nil {
		return nil, errFont(T("cmap"), "subtable", err)
	}
	switch format {
	case 4:
		return parseCMapFormat4(b)
	case 12:
		return parseCMapFormat12(b)
	}
	return nil, errFontf(T("cmap"), "subtable", ErrUnsupportedFont,
		"cmap subtable format %d not supported", format)
}

func (t *CMapTable) limitGlyphs(numGlyphs int) {
	t.numGlyphs = numGlyphs
	switch gim := t.GlyphIndexMap.(type) {
	case *format4GlyphIndex:
		gim.numGlyphs = numGlyphs
	case *format12GlyphIndex:
		gim.numGlyphs = numGlyphs
	}
}

// --- cmap format 4 ----------------------------------------------------------

// format4GlyphIndex implements segment-mapping-to-delta lookup for BMP
// code points (cmap subtable format 4).
type format4GlyphIndex struct {
	segCount  int
	ends      []uint16
	starts    []uint16
	deltas    []uint16
	rangeOffs []uint16
	glyphIds  binarySegm // glyphIdArray region, for rangeOffset addressing
	numGlyphs int
}

func parseCMapFormat4(b binarySegm) (*format4GlyphIndex, error) {
	segCountX2, err := b.u16(6)
	if err != nil || segCountX2 == 0 || segCountX2%2 != 0 {
		return nil, errFontf(T("cmap"), "format 4", ErrUnsupportedFont, "bad segment count")
	}
	segCount := int(segCountX2 / 2)
	gi := &format4GlyphIndex{segCount: segCount}
	if gi.ends, err = b.u16Slice(14, segCount); err != nil {
		return nil, errFont(T("cmap"), "format 4 endCodes", err)
	}
	// 2 bytes reservedPad after endCodes
	startBase := 14 + segCount*2 + 2
	if gi.starts, err = b.u16Slice(startBase, segCount); err != nil {
		return nil, errFont(T("cmap"), "format 4 startCodes", err)
	}
	if gi.deltas, err = b.u16Slice(startBase+segCount*2, segCount); err != nil {
		return nil, errFont(T("cmap"), "format 4 idDeltas", err)
	}
	rangeBase := startBase + segCount*4
	if gi.rangeOffs, err = b.u16Slice(rangeBase, segCount); err != nil {
		return nil, errFont(T("cmap"), "format 4 idRangeOffsets", err)
	}
	// Lookups with a nonzero idRangeOffset address glyphIdArray relative to
	// the idRangeOffset entry itself; keep the tail of the subtable around.
	gi.glyphIds = b[rangeBase:]
	return gi, nil
}

func (gi *format4GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xFFFF {
		return 0
	}
	c := uint16(r)
	lo, hi := 0, gi.segCount-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case c > gi.ends[mid]:
			lo = mid + 1
		case mid > 0 && c <= gi.ends[mid-1]:
			hi = mid - 1
		default:
			if c < gi.starts[mid] {
				return 0
			}
			var g uint16
			if gi.rangeOffs[mid] == 0 {
				g = c + gi.deltas[mid]
			} else {
				// offset from the idRangeOffset entry for this segment
				idx := mid*2 + int(gi.rangeOffs[mid]) + 2*int(c-gi.starts[mid])
				raw, err := gi.glyphIds.u16(idx)
				if err != nil || raw == 0 {
					return 0
				}
				g = raw + gi.deltas[mid]
			}
			return gi.clamp(g)
		}
	}
	return 0
}

func (gi *format4GlyphIndex) clamp(g uint16) GlyphIndex {
	if gi.numGlyphs > 0 && int(g) >= gi.numGlyphs {
		return 0
	}
	return GlyphIndex(g)
}

// --- cmap format 12 ---------------------------------------------------------

// format12GlyphIndex implements segmented-coverage lookup for the full
// Unicode repertoire (cmap subtable format 12).
type format12GlyphIndex struct {
	groups    binarySegm // sequential map groups, 12 bytes each
	numGroups int
	numGlyphs int
}

func parseCMapFormat12(b binarySegm) (*format12GlyphIndex, error) {
	numGroups, err := b.u32(12)
	if err != nil {
		return nil, errFont(T("cmap"), "format 12", err)
	}
	groups, err := b.view(16, int(numGroups)*12)
	if err != nil {
		return nil, errFont(T("cmap"), "format 12 groups", err)
	}
	return &format12GlyphIndex{groups: groups, numGroups: int(numGroups)}, nil
}

func (gi *format12GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 {
		return 0
	}
	c := uint32(r)
	lo, hi := 0, gi.numGroups-1
	for lo <= hi {
		mid := (lo + hi) / 2
		rec := gi.groups[mid*12 : mid*12+12]
		start, end := u32(rec[0:4]), u32(rec[4:8])
		switch {
		case c < start:
			hi = mid - 1
		case c > end:
			lo = mid + 1
		default:
			g := u32(rec[8:12]) + (c - start)
			if g > 0xFFFF || (gi.numGlyphs > 0 && int(g) >= gi.numGlyphs) {
				return 0
			}
			return GlyphIndex(g)
		}
	}
	return 0
}
