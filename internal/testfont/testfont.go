// Package testfont assembles minimal TrueType binaries for tests: a handful
// of empty-outline glyphs with chosen advances behind a format 4 cmap. The
// result parses in this module's ot package as well as in external sfnt
// parsers and shaping engines.
package testfont

import (
	"sort"
)

// Glyph describes one glyph of the synthetic font. Glyph IDs are assigned
// in slice order, starting at 1 (0 is .notdef).
type Glyph struct {
	Rune    rune
	Advance uint16
}

type writer struct{ b []byte }

func (w *writer) u16(v uint16) { w.b = append(w.b, byte(v>>8), byte(v)) }
func (w *writer) u32(v uint32) {
	w.b = append(w.b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
func (w *writer) pad4() {
	for len(w.b)%4 != 0 {
		w.b = append(w.b, 0)
	}
}

// Build assembles a font with the given em size and glyphs.
func Build(em uint16, glyphs []Glyph) []byte {
	numGlyphs := uint16(len(glyphs) + 1)
	tables := []struct {
		tag  string
		data []byte
	}{
		{"OS/2", os2Table(em)},
		{"cmap", cmapTable(glyphs)},
		{"glyf", make([]byte, 4)},
		{"head", headTable(em)},
		{"hhea", hheaTable(em, numGlyphs)},
		{"hmtx", hmtxTable(em, glyphs)},
		{"loca", make([]byte, 2*(int(numGlyphs)+1))},
		{"maxp", maxpTable(numGlyphs)},
		{"name", nameTable()},
		{"post", postTable()},
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].tag < tables[j].tag })

	w := &writer{}
	n := len(tables)
	pow := 1
	sel := uint16(0)
	for pow*2 <= n {
		pow *= 2
		sel++
	}
	w.u32(0x00010000)
	w.u16(uint16(n))
	w.u16(uint16(pow * 16))
	w.u16(sel)
	w.u16(uint16(n*16) - uint16(pow*16))
	recPos := make([]int, n)
	for i, t := range tables {
		w.u32(tag(t.tag))
		w.u32(0) // checksum, not validated by the parsers under test
		recPos[i] = len(w.b)
		w.u32(0)
		w.u32(uint32(len(t.data)))
	}
	for i, t := range tables {
		w.pad4()
		off := uint32(len(w.b))
		w.b[recPos[i]] = byte(off >> 24)
		w.b[recPos[i]+1] = byte(off >> 16)
		w.b[recPos[i]+2] = byte(off >> 8)
		w.b[recPos[i]+3] = byte(off)
		w.b = append(w.b, t.data...)
	}
	w.pad4()
	return w.b
}

// BuildCollection wraps standalone font binaries into a TTC. Each member
// keeps its own tables; offsets are rebased to the collection file.
func BuildCollection(fonts ...[]byte) []byte {
	w := &writer{}
	w.u32(0x74746366) // 'ttcf'
	w.u32(0x00010000)
	w.u32(uint32(len(fonts)))
	dirPos := make([]int, len(fonts))
	for i := range fonts {
		dirPos[i] = len(w.b)
		w.u32(0)
	}
	for i, f := range fonts {
		w.pad4()
		base := uint32(len(w.b))
		w.b[dirPos[i]] = byte(base >> 24)
		w.b[dirPos[i]+1] = byte(base >> 16)
		w.b[dirPos[i]+2] = byte(base >> 8)
		w.b[dirPos[i]+3] = byte(base)
		member := append([]byte(nil), f...)
		numTables := int(member[4])<<8 | int(member[5])
		for t := 0; t < numTables; t++ {
			rec := 12 + t*16 + 8
			off := uint32(member[rec])<<24 | uint32(member[rec+1])<<16 |
				uint32(member[rec+2])<<8 | uint32(member[rec+3])
			off += base
			member[rec] = byte(off >> 24)
			member[rec+1] = byte(off >> 16)
			member[rec+2] = byte(off >> 8)
			member[rec+3] = byte(off)
		}
		w.b = append(w.b, member...)
	}
	w.pad4()
	return w.b
}

func tag(s string) uint32 {
	return uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3])
}

func headTable(em uint16) []byte {
	w := &writer{}
	w.u32(0x00010000) // version
	w.u32(0)          // fontRevision
	w.u32(0)          // checkSumAdjustment
	w.u32(0x5F0F3CF5) // magicNumber
	w.u16(0x0003)     // flags
	w.u16(em)
	w.u32(0) // created
	w.u32(0)
	w.u32(0) // modified
	w.u32(0)
	w.u16(0)  // xMin
	w.u16(0)  // yMin
	w.u16(em) // xMax
	w.u16(em) // yMax
	w.u16(0)  // macStyle
	w.u16(8)  // lowestRecPPEM
	w.u16(2)  // fontDirectionHint
	w.u16(0)  // indexToLocFormat: short
	w.u16(0)  // glyphDataFormat
	return w.b
}

func hheaTable(em uint16, numGlyphs uint16) []byte {
	w := &writer{}
	w.u32(0x00010000)
	w.u16(uint16(int16(em) - 200)) // ascender
	w.u16(0xFF38)                  // descender, -200
	w.u16(0)                       // lineGap
	w.u16(em)                      // advanceWidthMax
	w.u16(0)                       // minLeftSideBearing
	w.u16(0)                       // minRightSideBearing
	w.u16(em)                      // xMaxExtent
	w.u16(1)                       // caretSlopeRise
	w.u16(0)                       // caretSlopeRun
	w.u16(0)                       // caretOffset
	w.u16(0)
	w.u16(0)
	w.u16(0)
	w.u16(0)
	w.u16(0)         // metricDataFormat
	w.u16(numGlyphs) // numberOfHMetrics
	return w.b
}

func maxpTable(numGlyphs uint16) []byte {
	w := &writer{}
	w.u32(0x00010000)
	w.u16(numGlyphs)
	for i := 0; i < 13; i++ {
		w.u16(0)
	}
	return w.b
}

func hmtxTable(em uint16, glyphs []Glyph) []byte {
	w := &writer{}
	w.u16(em / 2) // .notdef
	w.u16(0)
	for _, g := range glyphs {
		w.u16(g.Advance)
		w.u16(0)
	}
	return w.b
}

func cmapTable(glyphs []Glyph) []byte {
	type seg struct {
		r   rune
		gid uint16
	}
	segs := make([]seg, 0, len(glyphs))
	for i, g := range glyphs {
		segs = append(segs, seg{r: g.Rune, gid: uint16(i + 1)})
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].r < segs[j].r })

	segCount := len(segs) + 1 // plus 0xFFFF terminator
	w := &writer{}
	w.u16(0) // cmap version
	w.u16(1) // one encoding record
	w.u16(3) // platform: Windows
	w.u16(1) // encoding: Unicode BMP
	w.u32(12)

	sub := &writer{}
	sub.u16(4)
	length := 16 + 8*segCount
	sub.u16(uint16(length))
	sub.u16(0) // language
	sub.u16(uint16(segCount * 2))
	pow := 1
	sel := uint16(0)
	for pow*2 <= segCount {
		pow *= 2
		sel++
	}
	sub.u16(uint16(pow * 2))
	sub.u16(sel)
	sub.u16(uint16(segCount*2) - uint16(pow*2))
	for _, s := range segs {
		sub.u16(uint16(s.r))
	}
	sub.u16(0xFFFF)
	sub.u16(0) // reservedPad
	for _, s := range segs {
		sub.u16(uint16(s.r))
	}
	sub.u16(0xFFFF)
	for _, s := range segs {
		sub.u16(s.gid - uint16(s.r)) // idDelta, mod 65536
	}
	sub.u16(1)
	for i := 0; i < segCount; i++ {
		sub.u16(0) // idRangeOffset
	}
	w.b = append(w.b, sub.b...)
	return w.b
}

func nameTable() []byte {
	w := &writer{}
	w.u16(0) // format
	w.u16(0) // count
	w.u16(6) // stringOffset
	return w.b
}

func postTable() []byte {
	w := &writer{}
	w.u32(0x00030000)
	for i := 0; i < 7; i++ {
		w.u32(0)
	}
	return w.b
}

func os2Table(em uint16) []byte {
	w := &writer{}
	w.u16(3)      // version
	w.u16(em / 2) // xAvgCharWidth
	w.u16(400)    // usWeightClass
	w.u16(5)      // usWidthClass
	for i := 0; i < 25; i++ {
		w.u16(0) // fsType, subscript/superscript/strikeout metrics, family class, panose, unicode ranges
	}
	w.u32(0)                       // achVendID
	w.u16(0x0040)                  // fsSelection: REGULAR
	w.u16(0x0020)                  // usFirstCharIndex
	w.u16(0xFFFD)                  // usLastCharIndex
	w.u16(uint16(int16(em) - 200)) // sTypoAscender
	w.u16(0xFF38)                  // sTypoDescender, -200
	w.u16(0)                       // sTypoLineGap
	w.u16(em)                      // usWinAscent
	w.u16(200)                     // usWinDescent
	w.u32(0)                       // ulCodePageRange1
	w.u32(0)                       // ulCodePageRange2
	w.u16(0)                       // sxHeight
	w.u16(0)                       // sCapHeight
	w.u16(0)                       // usDefaultChar
	w.u16(0x0020)                  // usBreakChar
	w.u16(1)                       // usMaxContext
	return w.b
}
