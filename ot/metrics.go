package ot

// HeadTable gives global information about the font. Only the fields the
// patcher needs are interpreted.
type HeadTable struct {
	Flags            uint16
	UnitsPerEm       uint16 // values 16 … 16384 are valid
	IndexToLocFormat uint16 // needed to interpret loca table
}

// checkSumAdjustmentOffset is the byte offset of head.checkSumAdjustment
// within the head table; the font writer zeroes and recomputes it.
const checkSumAdjustmentOffset = 8

func parseHead(b binarySegm) (*HeadTable, error) {
	if len(b) < 54 {
		return nil, errFontf(T("head"), "", ErrUnsupportedFont, "head table too small")
	}
	return &HeadTable{
		Flags:            b.U16(16),
		UnitsPerEm:       b.U16(18),
		IndexToLocFormat: b.U16(50),
	}, nil
}

// MaxPTable establishes the memory requirements for this font. The 'maxp'
// table contains a count for the number of glyphs in the font.
type MaxPTable struct {
	NumGlyphs int
}

func parseMaxP(b binarySegm) (*MaxPTable, error) {
	n, err := b.u16(4)
	if err != nil {
		return nil, errFont(T("maxp"), "", err)
	}
	return &MaxPTable{NumGlyphs: int(n)}, nil
}

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	Ascender         int16
	Descender        int16
	NumberOfHMetrics int
}

func parseHHea(b binarySegm) (*HHeaTable, error) {
	if len(b) < 36 {
		return nil, errFontf(T("hhea"), "", ErrUnsupportedFont, "hhea table too small")
	}
	return &HHeaTable{
		Ascender:         int16(b.U16(4)),
		Descender:        int16(b.U16(6)),
		NumberOfHMetrics: int(b.U16(34)),
	}, nil
}

// HMtxTable contains metric information for the horizontal layout of each
// glyph in the font. Glyphs beyond NumberOfHMetrics share the advance width
// of the last long metric record.
type HMtxTable struct {
	NumberOfHMetrics int
	numGlyphs        int
	longMetrics      []HMetricRecord
}

// HMetricRecord is one long horizontal metric record from table hmtx.
type HMetricRecord struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

func parseHMtx(b binarySegm, numGlyphs, numberOfHMetrics int) (*HMtxTable, error) {
	if numberOfHMetrics < 0 || numberOfHMetrics > numGlyphs {
		return nil, errFontf(T("hmtx"), "", ErrUnsupportedFont,
			"invalid numberOfHMetrics %d (numGlyphs=%d)", numberOfHMetrics, numGlyphs)
	}
	if numberOfHMetrics*4 > len(b) {
		return nil, errFontf(T("hmtx"), "", ErrUnsupportedFont,
			"hmtx table too small: need %d bytes, have %d", numberOfHMetrics*4, len(b))
	}
	longMetrics := make([]HMetricRecord, numberOfHMetrics)
	for i := 0; i < numberOfHMetrics; i++ {
		longMetrics[i] = HMetricRecord{
			AdvanceWidth:    b.U16(i * 4),
			LeftSideBearing: int16(b.U16(i*4 + 2)),
		}
	}
	return &HMtxTable{
		NumberOfHMetrics: numberOfHMetrics,
		numGlyphs:        numGlyphs,
		longMetrics:      longMetrics,
	}, nil
}

// Advance returns the advance width of a glyph in font design units.
// Out-of-range glyph indices report 0.
func (t *HMtxTable) Advance(g GlyphIndex) uint16 {
	if t == nil || len(t.longMetrics) == 0 || int(g) >= t.numGlyphs {
		return 0
	}
	if int(g) < len(t.longMetrics) {
		return t.longMetrics[g].AdvanceWidth
	}
	return t.longMetrics[len(t.longMetrics)-1].AdvanceWidth
}
