package ot

/*
From https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2:

OpenType Layout consists of five tables: the Glyph Substitution table (GSUB),
the Glyph Positioning table (GPOS), the Baseline table (BASE),
the Justification table (JSTF), and the Glyph Definition table (GDEF).
These tables use some of the same data formats.

The patcher reads GSUB and GPOS. Scripts, features and lookups form a graph
with cross-references by index; we keep the lists as parsed records plus the
original byte ranges, so that the writer can re-serialize with appended
entries while existing entries stay byte-identical.
*/

// LayoutTable is the parsed form of a GSUB or GPOS table.
type LayoutTable struct {
	TableTag Tag // GSUB or GPOS
	Major    uint16
	Minor    uint16
	// FeatureVariationsOffset is nonzero for version 1.1 tables carrying a
	// FeatureVariations table. It survives patching, relocated to wherever
	// the original table bytes end up.
	FeatureVariationsOffset uint32
	ScriptList              []ScriptRecord
	FeatureList             []FeatureRecord
	LookupList              LookupList
	data                    binarySegm // the whole layout table
	scriptListOffset        uint16
	featureListOffset       uint16
	lookupListOffset        uint16
}

// Binary returns the raw bytes of the layout table (read-only view).
func (lt *LayoutTable) Binary() []byte {
	return lt.data
}

// LookupListOffset returns the offset of the LookupList from the start of
// the layout table.
func (lt *LayoutTable) LookupListOffset() uint16 {
	return lt.lookupListOffset
}

// ScriptRecord binds a script tag to its language systems.
type ScriptRecord struct {
	Tag            Tag
	DefaultLangSys *LangSys        // may be nil
	LangSysRecords []LangSysRecord // additional language systems, in tag order
}

// LangSysRecord binds a language-system tag to a LangSys table.
type LangSysRecord struct {
	Tag     Tag
	LangSys LangSys
}

// LangSys lists the features of one (script, language) combination by index
// into the FeatureList.
type LangSys struct {
	RequiredFeatureIndex uint16 // 0xFFFF means: no required feature
	FeatureIndices       []uint16
}

// NoRequiredFeature is the LangSys marker for "no required feature".
const NoRequiredFeature = 0xFFFF

// FeatureRecord binds a feature tag to the lookups implementing it.
type FeatureRecord struct {
	Tag              Tag
	FeatureParamsAbs uint32 // absolute offset of feature params within the layout table; 0 = none
	LookupIndices    []uint16
}

// LookupList is the list of lookup tables of a layout table. Lookup content
// is kept opaque; only lookup headers are interpreted.
type LookupList struct {
	Offsets []uint16  // offsets of lookup tables from LookupList start
	raw     binarySegm // the layout table bytes, for header access
	listOff uint16
}

// Len returns the number of lookups in the list.
func (ll LookupList) Len() int {
	return len(ll.Offsets)
}

// LookupHeader describes one lookup table's header fields.
type LookupHeader struct {
	Type            uint16
	Flag            uint16
	SubtableOffsets []uint16 // relative to the lookup table start
	lookupOff       int      // from layout table start
}

// Header returns the header of lookup i, and false if it cannot be read.
func (ll LookupList) Header(i int) (LookupHeader, bool) {
	if i < 0 || i >= len(ll.Offsets) {
		return LookupHeader{}, false
	}
	off := int(ll.listOff) + int(ll.Offsets[i])
	typ, err1 := ll.raw.u16(off)
	flag, err2 := ll.raw.u16(off + 2)
	count, err3 := ll.raw.u16(off + 4)
	if err1 != nil || err2 != nil || err3 != nil {
		return LookupHeader{}, false
	}
	subs, err := ll.raw.u16Slice(off+6, int(count))
	if err != nil {
		return LookupHeader{}, false
	}
	return LookupHeader{Type: typ, Flag: flag, SubtableOffsets: subs, lookupOff: off}, true
}

// GSUB lookup types relevant here
const (
	gsubLookupSingle    = 1
	gsubLookupExtension = 7
)

func parseLayoutTable(tag Tag, b binarySegm) (*LayoutTable, error) {
	major, err := b.u16(0)
	if err != nil {
		return nil, errFont(tag, "header", err)
	}
	minor := b.U16(2)
	lt := &LayoutTable{
		TableTag: tag,
		Major:    major,
		Minor:    minor,
		data:     b,
	}
	lt.scriptListOffset = b.U16(4)
	lt.featureListOffset = b.U16(6)
	lt.lookupListOffset = b.U16(8)
	if major == 1 && minor >= 1 {
		lt.FeatureVariationsOffset = b.U32(10)
	}
	if err := parseScriptList(lt); err != nil {
		return nil, err
	}
	if err := parseFeatureList(lt); err != nil {
		return nil, err
	}
	if err := parseLookupList(lt); err != nil {
		return nil, err
	}
	tracer().Debugf("%s: %d scripts, %d features, %d lookups", tag,
		len(lt.ScriptList), len(lt.FeatureList), lt.LookupList.Len())
	return lt, nil
}

func parseScriptList(lt *LayoutTable) error {
	base := int(lt.scriptListOffset)
	b := lt.data
	count, err := b.u16(base)
	if err != nil {
		return errFont(lt.TableTag, "ScriptList", err)
	}
	if count > MaxScriptCount {
		return errFontf(lt.TableTag, "ScriptList", ErrUnsupportedFont,
			"implausible script count %d", count)
	}
	lt.ScriptList = make([]ScriptRecord, 0, count)
	for i := 0; i < int(count); i++ {
		rec, err := b.view(base+2+i*6, 6)
		if err != nil {
			return errFont(lt.TableTag, "ScriptRecords", err)
		}
		scriptOff := base + int(u16(rec[4:6]))
		sr := ScriptRecord{Tag: Tag(u32(rec[0:4]))}
		defLSOff := b.U16(scriptOff)
		if defLSOff != 0 {
			ls, err := parseLangSys(b, scriptOff+int(defLSOff))
			if err != nil {
				return errFont(lt.TableTag, "DefaultLangSys", err)
			}
			sr.DefaultLangSys = ls
		}
		lsCount := b.U16(scriptOff + 2)
		for j := 0; j < int(lsCount); j++ {
			lsRec, err := b.view(scriptOff+4+j*6, 6)
			if err != nil {
				return errFont(lt.TableTag, "LangSysRecords", err)
			}
			ls, err := parseLangSys(b, scriptOff+int(u16(lsRec[4:6])))
			if err != nil {
				return errFont(lt.TableTag, "LangSys", err)
			}
			sr.LangSysRecords = append(sr.LangSysRecords, LangSysRecord{
				Tag:     Tag(u32(lsRec[0:4])),
				LangSys: *ls,
			})
		}
		lt.ScriptList = append(lt.ScriptList, sr)
	}
	return nil
}

func parseLangSys(b binarySegm, off int) (*LangSys, error) {
	// lookupOrderOffset (reserved), requiredFeatureIndex, featureIndexCount
	req, err := b.u16(off + 2)
	if err != nil {
		return nil, err
	}
	count, err := b.u16(off + 4)
	if err != nil {
		return nil, err
	}
	indices, err := b.u16Slice(off+6, int(count))
	if err != nil {
		return nil, err
	}
	return &LangSys{RequiredFeatureIndex: req, FeatureIndices: indices}, nil
}

func parseFeatureList(lt *LayoutTable) error {
	base := int(lt.featureListOffset)
	b := lt.data
	count, err := b.u16(base)
	if err != nil {
		return errFont(lt.TableTag, "FeatureList", err)
	}
	if count > MaxFeatureCount {
		return errFontf(lt.TableTag, "FeatureList", ErrUnsupportedFont,
			"implausible feature count %d", count)
	}
	lt.FeatureList = make([]FeatureRecord, 0, count)
	for i := 0; i < int(count); i++ {
		rec, err := b.view(base+2+i*6, 6)
		if err != nil {
			return errFont(lt.TableTag, "FeatureRecords", err)
		}
		featOff := base + int(u16(rec[4:6]))
		fr := FeatureRecord{Tag: Tag(u32(rec[0:4]))}
		paramsOff := b.U16(featOff)
		if paramsOff != 0 {
			fr.FeatureParamsAbs = uint32(featOff) + uint32(paramsOff)
		}
		lkCount := b.U16(featOff + 2)
		if fr.LookupIndices, err = b.u16Slice(featOff+4, int(lkCount)); err != nil {
			return errFont(lt.TableTag, "Feature", err)
		}
		lt.FeatureList = append(lt.FeatureList, fr)
	}
	return nil
}

func parseLookupList(lt *LayoutTable) error {
	base := int(lt.lookupListOffset)
	b := lt.data
	count, err := b.u16(base)
	if err != nil {
		return errFont(lt.TableTag, "LookupList", err)
	}
	if count > MaxLookupCount {
		return errFontf(lt.TableTag, "LookupList", ErrUnsupportedFont,
			"implausible lookup count %d", count)
	}
	offsets, err := b.u16Slice(base+2, int(count))
	if err != nil {
		return errFont(lt.TableTag, "LookupList", err)
	}
	lt.LookupList = LookupList{
		Offsets: offsets,
		raw:     b,
		listOff: uint16(base),
	}
	return nil
}

// --- Feature queries --------------------------------------------------------

// HasFeature reports whether any feature record carries the given tag and is
// referenced from at least one language system. This is the "already
// patched" check: a font whose GPOS already links a chws feature must not be
// patched again.
func (lt *LayoutTable) HasFeature(tag Tag) bool {
	if lt == nil {
		return false
	}
	referenced := lt.referencedFeatureIndices()
	for i, fr := range lt.FeatureList {
		if fr.Tag == tag && referenced[uint16(i)] {
			return true
		}
	}
	return false
}

func (lt *LayoutTable) referencedFeatureIndices() map[uint16]bool {
	referenced := make(map[uint16]bool)
	mark := func(ls *LangSys) {
		if ls == nil {
			return
		}
		if ls.RequiredFeatureIndex != NoRequiredFeature {
			referenced[ls.RequiredFeatureIndex] = true
		}
		for _, fi := range ls.FeatureIndices {
			referenced[fi] = true
		}
	}
	for _, sr := range lt.ScriptList {
		mark(sr.DefaultLangSys)
		for _, lsr := range sr.LangSysRecords {
			ls := lsr.LangSys
			mark(&ls)
		}
	}
	return referenced
}

// SingleSubstitutions collects the glyph mapping of all GSUB type-1 (single
// substitution) lookups bound to the given feature tag, across all scripts.
// This is how the coverage resolver derives vertical alternates ('vert') and
// half-width variants ('hwid') from the font's own data.
//
// Extension lookups (type 7) wrapping single substitutions are unwrapped.
// Other lookup types under the feature are ignored.
func (lt *LayoutTable) SingleSubstitutions(feature Tag) map[GlyphIndex]GlyphIndex {
	if lt == nil {
		return nil
	}
	mapping := make(map[GlyphIndex]GlyphIndex)
	seen := make(map[uint16]bool)
	for _, fr := range lt.FeatureList {
		if fr.Tag != feature {
			continue
		}
		for _, li := range fr.LookupIndices {
			if seen[li] {
				continue
			}
			seen[li] = true
			lt.collectSingleSubst(int(li), mapping)
		}
	}
	if len(mapping) == 0 {
		return nil
	}
	return mapping
}

func (lt *LayoutTable) collectSingleSubst(lookupIndex int, mapping map[GlyphIndex]GlyphIndex) {
	h, ok := lt.LookupList.Header(lookupIndex)
	if !ok {
		return
	}
	for _, subOff := range h.SubtableOffsets {
		subAbs := h.lookupOff + int(subOff)
		typ := h.Type
		if typ == gsubLookupExtension {
			// ExtensionSubst format 1: extensionLookupType, extensionOffset
			typ = lt.data.U16(subAbs + 2)
			subAbs += int(lt.data.U32(subAbs + 4))
		}
		if typ != gsubLookupSingle {
			continue
		}
		lt.collectSingleSubstSubtable(subAbs, mapping)
	}
}

func (lt *LayoutTable) collectSingleSubstSubtable(subAbs int, mapping map[GlyphIndex]GlyphIndex) {
	b := lt.data
	format := b.U16(subAbs)
	covOff := b.U16(subAbs + 2)
	covered, err := parseCoverage(b, subAbs+int(covOff))
	if err != nil {
		tracer().Infof("cannot read coverage of single substitution: %v", err)
		return
	}
	switch format {
	case 1:
		delta := int16(b.U16(subAbs + 4))
		for _, g := range covered {
			mapping[g] = GlyphIndex(uint16(int32(g) + int32(delta)))
		}
	case 2:
		count := int(b.U16(subAbs + 4))
		if count > len(covered) {
			count = len(covered)
		}
		subst, err := b.glyphs(subAbs+6, count)
		if err != nil {
			return
		}
		for i := 0; i < count; i++ {
			mapping[covered[i]] = subst[i]
		}
	}
}

// parseCoverage reads a coverage table (format 1 or 2) and returns the
// covered glyphs in coverage-index order.
func parseCoverage(b binarySegm, off int) ([]GlyphIndex, error) {
	format, err := b.u16(off)
	if err != nil {
		return nil, err
	}
	count, err := b.u16(off + 2)
	if err != nil {
		return nil, err
	}
	switch format {
	case 1:
		return b.glyphs(off+4, int(count))
	case 2:
		var glyphs []GlyphIndex
		for i := 0; i < int(count); i++ {
			rec, err := b.view(off+4+i*6, 6)
			if err != nil {
				return nil, err
			}
			start, end := u16(rec[0:2]), u16(rec[2:4])
			for g := int(start); g <= int(end); g++ {
				glyphs = append(glyphs, GlyphIndex(g))
			}
		}
		return glyphs, nil
	}
	return nil, errBufferBounds
}
