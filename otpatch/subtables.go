package otpatch

import (
	"sort"

	"github.com/npillmayer/chws/ot"
)

// Value record format bits (OpenType spec 1.9, GPOS chapter).
const (
	valueXPlacement uint16 = 0x0001
	valueYPlacement uint16 = 0x0002
	valueXAdvance   uint16 = 0x0004
	valueYAdvance   uint16 = 0x0008
)

// valueRecord holds the positioning deltas of one GPOS value record. Which
// fields get serialized is decided by the value format of the enclosing
// subtable, uniform for all records in it.
type valueRecord struct {
	xPlacement int16
	yPlacement int16
	xAdvance   int16
	yAdvance   int16
}

func (v valueRecord) write(w *binWriter, format uint16) {
	if format&valueXPlacement != 0 {
		w.i16(v.xPlacement)
	}
	if format&valueYPlacement != 0 {
		w.i16(v.yPlacement)
	}
	if format&valueXAdvance != 0 {
		w.i16(v.xAdvance)
	}
	if format&valueYAdvance != 0 {
		w.i16(v.yAdvance)
	}
}

// sortedUnique returns the glyphs sorted ascending with duplicates removed.
func sortedUnique(glyphs []ot.GlyphIndex) []ot.GlyphIndex {
	r := append([]ot.GlyphIndex(nil), glyphs...)
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
	w := 0
	for i, g := range r {
		if i > 0 && g == r[w-1] {
			continue
		}
		r[w] = g
		w++
	}
	return r[:w]
}

// writeCoverage serializes a coverage table, choosing format 1 (glyph list)
// or format 2 (ranges), whichever is smaller.
func writeCoverage(glyphs []ot.GlyphIndex) []byte {
	sorted := sortedUnique(glyphs)
	type covRange struct {
		start, end ot.GlyphIndex
		startIndex uint16
	}
	var ranges []covRange
	for i, g := range sorted {
		if n := len(ranges); n > 0 && g == ranges[n-1].end+1 {
			ranges[n-1].end = g
			continue
		}
		ranges = append(ranges, covRange{start: g, end: g, startIndex: uint16(i)})
	}
	w := &binWriter{}
	if 4+6*len(ranges) < 4+2*len(sorted) {
		w.u16(2)
		w.u16(uint16(len(ranges)))
		for _, r := range ranges {
			w.u16(uint16(r.start))
			w.u16(uint16(r.end))
			w.u16(r.startIndex)
		}
		return w.bytes()
	}
	w.u16(1)
	w.u16(uint16(len(sorted)))
	for _, g := range sorted {
		w.u16(uint16(g))
	}
	return w.bytes()
}

// classSpec assigns one glyph set to a class number. Class 0 is implicit
// (all glyphs not mentioned).
type classSpec struct {
	glyphs []ot.GlyphIndex
	class  uint16
}

// writeClassDef serializes a class definition table, format 2 (ranges).
// A glyph claimed by several specs keeps the first assignment.
func writeClassDef(specs []classSpec) []byte {
	assigned := make(map[ot.GlyphIndex]uint16)
	var order []ot.GlyphIndex
	for _, spec := range specs {
		for _, g := range spec.glyphs {
			if _, taken := assigned[g]; taken {
				continue
			}
			assigned[g] = spec.class
			order = append(order, g)
		}
	}
	order = sortedUnique(order)
	type classRange struct {
		start, end ot.GlyphIndex
		class      uint16
	}
	var ranges []classRange
	for _, g := range order {
		cls := assigned[g]
		if n := len(ranges); n > 0 && g == ranges[n-1].end+1 && cls == ranges[n-1].class {
			ranges[n-1].end = g
			continue
		}
		ranges = append(ranges, classRange{start: g, end: g, class: cls})
	}
	w := &binWriter{}
	w.u16(2)
	w.u16(uint16(len(ranges)))
	for _, r := range ranges {
		w.u16(uint16(r.start))
		w.u16(uint16(r.end))
		w.u16(r.class)
	}
	return w.bytes()
}

// writePairPosClasses serializes a PairPos format 2 subtable adjusting the
// first glyph of a pair by class. values maps (class1, class2) to the delta
// of the first glyph; the second glyph is never adjusted.
func writePairPosClasses(class1, class2 []classSpec, class1Count, class2Count uint16,
	values map[[2]uint16]valueRecord, valueFormat1 uint16) []byte {

	var covGlyphs []ot.GlyphIndex
	for _, spec := range class1 {
		covGlyphs = append(covGlyphs, spec.glyphs...)
	}
	w := &binWriter{}
	w.u16(2) // posFormat
	covMark := w.mark()
	w.u16(valueFormat1)
	w.u16(0) // valueFormat2: second glyph untouched
	cd1Mark := w.mark()
	cd2Mark := w.mark()
	w.u16(class1Count)
	w.u16(class2Count)
	for c1 := uint16(0); c1 < class1Count; c1++ {
		for c2 := uint16(0); c2 < class2Count; c2++ {
			values[[2]uint16{c1, c2}].write(w, valueFormat1)
		}
	}
	w.setU16(cd1Mark, uint16(w.len()))
	w.raw(writeClassDef(class1))
	w.setU16(cd2Mark, uint16(w.len()))
	w.raw(writeClassDef(class2))
	w.setU16(covMark, uint16(w.len()))
	w.raw(writeCoverage(covGlyphs))
	return w.bytes()
}

// writeSinglePos serializes a SinglePos format 1 subtable applying one value
// record to all covered glyphs.
func writeSinglePos(glyphs []ot.GlyphIndex, value valueRecord, valueFormat uint16) []byte {
	w := &binWriter{}
	w.u16(1) // posFormat
	covMark := w.mark()
	w.u16(valueFormat)
	value.write(w, valueFormat)
	w.setU16(covMark, uint16(w.len()))
	w.raw(writeCoverage(glyphs))
	return w.bytes()
}

// chainRule is one chained-context rule: when every input coverage matches
// in sequence, with backtrack before and lookahead after, the nested lookups
// are applied at the given input positions.
type chainRule struct {
	backtrack [][]ot.GlyphIndex // in logical order, nearest first
	input     [][]ot.GlyphIndex
	lookahead [][]ot.GlyphIndex
	records   []seqLookup
}

type seqLookup struct {
	sequenceIndex uint16
	lookupIndex   uint16
}

// writeChainContext3 serializes a chained sequence context subtable,
// format 3 (coverage-based). The same layout serves GSUB type 6 and GPOS
// type 8.
func writeChainContext3(rule chainRule) []byte {
	w := &binWriter{}
	w.u16(3) // format
	marks := make([]int, 0, len(rule.backtrack)+len(rule.input)+len(rule.lookahead))
	writeSeq := func(covs [][]ot.GlyphIndex) {
		w.u16(uint16(len(covs)))
		for range covs {
			marks = append(marks, w.mark())
		}
	}
	writeSeq(rule.backtrack)
	writeSeq(rule.input)
	writeSeq(rule.lookahead)
	w.u16(uint16(len(rule.records)))
	for _, rec := range rule.records {
		w.u16(rec.sequenceIndex)
		w.u16(rec.lookupIndex)
	}
	all := make([][]ot.GlyphIndex, 0, len(marks))
	all = append(all, rule.backtrack...)
	all = append(all, rule.input...)
	all = append(all, rule.lookahead...)
	for i, cov := range all {
		w.setU16(marks[i], uint16(w.len()))
		w.raw(writeCoverage(cov))
	}
	return w.bytes()
}

// writeSingleSubst serializes a SingleSubst format 2 subtable from an
// explicit glyph mapping.
func writeSingleSubst(mapping map[ot.GlyphIndex]ot.GlyphIndex) []byte {
	from := make([]ot.GlyphIndex, 0, len(mapping))
	for g := range mapping {
		from = append(from, g)
	}
	from = sortedUnique(from)
	w := &binWriter{}
	w.u16(2) // substFormat
	covMark := w.mark()
	w.u16(uint16(len(from)))
	for _, g := range from {
		w.u16(uint16(mapping[g]))
	}
	w.setU16(covMark, uint16(w.len()))
	w.raw(writeCoverage(from))
	return w.bytes()
}
