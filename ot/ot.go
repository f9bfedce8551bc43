package ot

import (
	"fmt"
)

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// Tag is defined by the OpenType spec as:
// Array of four uint8s (length = 32 bits) used to identify a table, script,
// language system, feature, or baseline.
type Tag uint32

// MakeTag creates a Tag from 4 bytes.
// If b is shorter or longer, it will be silently extended or cut as appropriate.
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	return string([]byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	})
}

// DFLT is the default script tag.
var DFLT = T("DFLT")

// Dflt is the default language-system tag.
var Dflt = T("dflt")

// Font type tags found in the first 4 bytes of a font file.
const (
	fontTypeTrueType   = 0x00010000 // TrueType outlines
	fontTypeOpenTypeC  = 0x4F54544F // 'OTTO', CFF outlines
	fontTypeAppleTT    = 0x74727565 // 'true', Apple TrueType
	fontTypeCollection = 0x74746366 // 'ttcf', font collection
)

// Font represents the internal structure of one OpenType font (one member of
// a collection, or a standalone font file).
//
// Table content is viewed in place in the font's binary data; nothing is
// copied out. All typed table fields may be nil when the corresponding table
// is absent from the font.
type Font struct {
	Header *FontHeader
	CMap   *CMapTable // character-to-glyph mapping; mandatory for patching
	Head   *HeadTable
	MaxP   *MaxPTable
	HHea   *HHeaTable
	HMtx   *HMtxTable
	Layout struct { // OpenType advanced layout tables
		GSub *LayoutTable // GSUB, may be nil
		GPos *LayoutTable // GPOS, may be nil
	}
	data   binarySegm         // the complete font file (for collections: the whole collection)
	tables map[Tag]tableRange // table directory of this font
}

// FontHeader is a directory of the top-level tables in a font. If the font
// file contains only one font, the table directory will begin at byte 0 of
// the file. If the font file is an OpenType Font Collection, the beginning
// point of the table directory for each font is indicated in the TTC header.
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// tableRange locates a top-level table within the font file.
type tableRange struct {
	offset   uint32
	length   uint32
	checksum uint32
}

// Table returns the raw bytes of the font table with the given tag, or nil if
// the font does not contain such a table. The returned slice is a view into
// the font's binary data and must be treated as read-only.
func (otf *Font) Table(tag Tag) []byte {
	t, ok := otf.tables[tag]
	if !ok {
		return nil
	}
	return otf.data[t.offset : t.offset+t.length]
}

// HasTable reports whether the font contains a table with the given tag.
func (otf *Font) HasTable(tag Tag) bool {
	_, ok := otf.tables[tag]
	return ok
}

// TableOffset returns the byte offset of a table within the font file, and
// false if the table is absent. For collection members, offsets are relative
// to the start of the collection file, so two members sharing a table report
// the same offset.
func (otf *Font) TableOffset(tag Tag) (uint32, bool) {
	t, ok := otf.tables[tag]
	if !ok {
		return 0, false
	}
	return t.offset, true
}

// TableTags returns a list of tags, one for each table contained in the font.
func (otf *Font) TableTags() []Tag {
	tags := make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	return tags
}

// UnitsPerEm returns the font's design units per em, or 1000 if the head
// table could not be interpreted.
func (otf *Font) UnitsPerEm() uint16 {
	if otf.Head == nil || otf.Head.UnitsPerEm == 0 {
		return 1000
	}
	return otf.Head.UnitsPerEm
}

// NumGlyphs returns the number of glyphs in the font.
func (otf *Font) NumGlyphs() int {
	if otf.MaxP == nil {
		return 0
	}
	return otf.MaxP.NumGlyphs
}

// GlyphIndex looks up the glyph mapped to a Unicode code point, returning 0
// (".notdef") if the code point is not covered by the font's character map.
func (otf *Font) GlyphIndex(r rune) GlyphIndex {
	if otf.CMap == nil || otf.CMap.GlyphIndexMap == nil {
		return 0
	}
	return otf.CMap.GlyphIndexMap.Lookup(r)
}

func (otf *Font) String() string {
	return fmt.Sprintf("font[type=%08x, %d tables]", otf.Header.FontType, otf.Header.TableCount)
}
