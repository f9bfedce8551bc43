package ot

import (
	"fmt"
)

// Code comments will occasionally cite passages from the OpenType
// specification version 1.9;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// Maximum reasonable counts for OpenType table structures. These limits
// prevent malformed fonts from claiming unreasonably large counts that could
// lead to excessive memory allocation.
const (
	MaxTableCount   = 512   // top-level tables; typically < 30
	MaxScriptCount  = 50    // scripts: typically < 10
	MaxFeatureCount = 500   // features: typically < 200
	MaxLookupCount  = 1000  // lookups: typically < 100
	MaxGlyphCount   = 65536 // maximum glyph index (uint16)
	MaxFontsInTTC   = 64    // member fonts of a collection
)

// Parse parses an OpenType font from a byte slice. The byte slice must not
// change after parsing for the font to be usable.
//
// Parse handles standalone font files only; use ParseCollection for
// TTC/OTC files (IsCollection sniffs which one applies).
func Parse(data []byte) (*Font, error) {
	if IsCollection(data) {
		return nil, errFontf(T("ttcf"), "", ErrUnsupportedFont,
			"file is a font collection, use ParseCollection")
	}
	return parseFontAt(data, 0)
}

// IsCollection reports whether data starts with a TTC header.
func IsCollection(data []byte) bool {
	return len(data) >= 4 && u32(data[:4]) == fontTypeCollection
}

// ParseCollection parses an OpenType font collection (TTC/OTC) and returns
// one Font per member. All members view the same underlying binary, so
// shared tables can be recognized by comparing TableOffset results.
//
// A standalone font file is accepted, too, and returned as a one-member
// collection, mirroring how TTC-aware tools treat plain fonts.
func ParseCollection(data []byte) ([]*Font, error) {
	if !IsCollection(data) {
		otf, err := parseFontAt(data, 0)
		if err != nil {
			return nil, err
		}
		return []*Font{otf}, nil
	}
	b := binarySegm(data)
	// TTC header: tag, majorVersion, minorVersion, numFonts, tableDirectoryOffsets[numFonts]
	numFonts, err := b.u32(8)
	if err != nil {
		return nil, errFont(T("ttcf"), "header", err)
	}
	if numFonts == 0 || numFonts > MaxFontsInTTC {
		return nil, errFontf(T("ttcf"), "header", ErrUnsupportedFont,
			"implausible number of fonts in collection: %d", numFonts)
	}
	tracer().Infof("%d fonts found in the collection", numFonts)
	fonts := make([]*Font, 0, numFonts)
	for i := 0; i < int(numFonts); i++ {
		dirOffset, err := b.u32(12 + i*4)
		if err != nil {
			return nil, errFont(T("ttcf"), "directory offsets", err)
		}
		otf, err := parseFontAt(data, dirOffset)
		if err != nil {
			return nil, fmt.Errorf("collection member %d: %w", i, err)
		}
		fonts = append(fonts, otf)
	}
	return fonts, nil
}

// parseFontAt parses one font whose table directory starts at dirOffset
// within data. Table record offsets are relative to the start of data, which
// makes sub-fonts of a collection and standalone fonts uniform.
func parseFontAt(data []byte, dirOffset uint32) (*Font, error) {
	b := binarySegm(data)
	fontType, err := b.u32(int(dirOffset))
	if err != nil {
		return nil, errFont(0, "font header", err)
	}
	switch fontType {
	case fontTypeTrueType, fontTypeOpenTypeC, fontTypeAppleTT:
		// supported sfnt flavors
	default:
		return nil, errFontf(0, "font header", ErrUnsupportedFont,
			"unrecognized sfnt version 0x%08x", fontType)
	}
	tableCount, err := b.u16(int(dirOffset) + 4)
	if err != nil {
		return nil, errFont(0, "font header", err)
	}
	if tableCount == 0 || tableCount > MaxTableCount {
		return nil, errFontf(0, "font header", ErrUnsupportedFont,
			"implausible table count %d", tableCount)
	}
	otf := &Font{
		Header: &FontHeader{FontType: fontType, TableCount: tableCount},
		data:   b,
		tables: make(map[Tag]tableRange, tableCount),
	}
	// Table records: tag, checksum, offset, length, 16 bytes each,
	// starting 12 bytes into the table directory.
	recBase := int(dirOffset) + 12
	for i := 0; i < int(tableCount); i++ {
		rec, err := b.view(recBase+i*16, 16)
		if err != nil {
			return nil, errFont(0, "table records", err)
		}
		tag := Tag(u32(rec[0:4]))
		tr := tableRange{
			checksum: u32(rec[4:8]),
			offset:   u32(rec[8:12]),
			length:   u32(rec[12:16]),
		}
		if int64(tr.offset)+int64(tr.length) > int64(len(b)) {
			return nil, errFontf(tag, "table records", ErrUnsupportedFont,
				"table extends beyond end of file")
		}
		otf.tables[tag] = tr
	}
	if err := parseTypedTables(otf); err != nil {
		return nil, err
	}
	return otf, nil
}

// parseTypedTables interprets the tables the patcher works with. Absence of
// cmap is not an error here; the coverage resolver reports ErrUnsupportedFont
// when it actually needs glyph lookups.
func parseTypedTables(otf *Font) error {
	var err error
	if t := otf.Table(T("head")); t != nil {
		if otf.Head, err = parseHead(t); err != nil {
			return err
		}
	}
	if t := otf.Table(T("maxp")); t != nil {
		if otf.MaxP, err = parseMaxP(t); err != nil {
			return err
		}
	}
	if t := otf.Table(T("hhea")); t != nil {
		if otf.HHea, err = parseHHea(t); err != nil {
			return err
		}
	}
	if t := otf.Table(T("hmtx")); t != nil && otf.HHea != nil && otf.MaxP != nil {
		if otf.HMtx, err = parseHMtx(t, otf.MaxP.NumGlyphs, otf.HHea.NumberOfHMetrics); err != nil {
			return err
		}
	}
	if t := otf.Table(T("cmap")); t != nil {
		if otf.CMap, err = parseCMap(t); err != nil {
			// A font without a usable cmap encoding is still inspectable;
			// keep the error deferred until glyph lookups are requested.
			tracer().Infof("font has no usable cmap encoding: %v", err)
			otf.CMap = nil
		}
	}
	numGlyphs := otf.NumGlyphs()
	if otf.CMap != nil && numGlyphs > 0 {
		otf.CMap.limitGlyphs(numGlyphs)
	}
	if t := otf.Table(T("GSUB")); t != nil {
		if otf.Layout.GSub, err = parseLayoutTable(T("GSUB"), t); err != nil {
			return err
		}
	}
	if t := otf.Table(T("GPOS")); t != nil {
		if otf.Layout.GPos, err = parseLayoutTable(T("GPOS"), t); err != nil {
			return err
		}
	}
	return nil
}
