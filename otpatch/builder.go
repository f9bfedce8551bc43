package otpatch

import (
	"github.com/npillmayer/chws/ot"
	"github.com/npillmayer/chws/otcover"
)

// lookupData is one lookup to append: the concrete lookup type plus its
// serialized subtables. The splicer wraps it in an extension lookup.
type lookupData struct {
	lookupType uint16
	subtables  [][]byte
}

// featureAdd binds a feature tag to the final indices of appended lookups.
type featureAdd struct {
	tag     ot.Tag
	lookups []uint16
}

// GPOS lookup types
const (
	gposSingle       uint16 = 1
	gposPair         uint16 = 2
	gposChainContext uint16 = 8
	gposExtension    uint16 = 9
)

// GSUB lookup types
const (
	gsubSingle       uint16 = 1
	gsubChainContext uint16 = 6
	gsubExtension    uint16 = 7
)

// buildPositioning constructs the GPOS lookups for one coverage set, in the
// manner the chws feature registration describes: a class pair lookup
// narrowing left-class glyphs before any spacing glyph, and a chained
// context applying a shift-and-narrow to right-class glyphs after middle or
// right context. Glyphs handled by substitution are left out of the
// adjusted positions but stay visible as context.
//
// baseIndex is the lookup list index the first new lookup will receive.
// Returns ot.ErrNoApplicableGlyphs if the set yields no positioning rule.
func buildPositioning(cs *otcover.CoverageSet, baseIndex uint16, halfWidthFeature bool) ([]lookupData, []featureAdd, error) {
	em := cs.UnitsPerEm
	half := int16(em / 2)
	quarter := half / 2
	if half <= 0 {
		return nil, nil, ot.ErrIncompatibleFont
	}
	left, middle, right := cs.Left(), cs.Middle(), cs.Right()
	_, posLeft := splitByAction(cs, left)
	_, posRight := splitByAction(cs, right)
	wide := cs.Glyphs(otcover.WideCJK)
	latin := cs.Glyphs(otcover.NarrowLatin)
	if cs.Vertical {
		wide, latin = nil, nil
	}

	var leftVal, rightVal, midVal valueRecord
	var leftFmt, rightFmt, midFmt uint16
	if cs.Vertical {
		leftVal, leftFmt = valueRecord{yAdvance: -half}, valueYAdvance
		rightVal, rightFmt = valueRecord{yPlacement: half, yAdvance: -half}, valueYPlacement|valueYAdvance
		midVal, midFmt = valueRecord{yPlacement: quarter, yAdvance: -half}, valueYPlacement|valueYAdvance
	} else {
		leftVal, leftFmt = valueRecord{xAdvance: -half}, valueXAdvance
		rightVal, rightFmt = valueRecord{xPlacement: -half, xAdvance: -half}, valueXPlacement|valueXAdvance
		midVal, midFmt = valueRecord{xPlacement: -quarter, xAdvance: -half}, valueXPlacement|valueXAdvance
	}

	var lookups []lookupData
	var spacingLookups []uint16
	index := baseIndex

	// class pair: left-class glyphs narrow before any spacing glyph, wide
	// ideographs tighten by a quarter em before narrow Latin
	havePair := len(posLeft) > 0 && len(left) > 0 && len(right) > 0
	haveWidePair := len(wide) > 0 && len(latin) > 0
	if havePair || haveWidePair {
		class1 := []classSpec{}
		class2 := []classSpec{}
		values := map[[2]uint16]valueRecord{}
		if havePair {
			class1 = append(class1, classSpec{glyphs: posLeft, class: 1})
			class2 = append(class2, classSpec{glyphs: contextGlyphs(cs, left, middle, right), class: 1})
			values[[2]uint16{1, 1}] = leftVal
		}
		if haveWidePair {
			class1 = append(class1, classSpec{glyphs: wide, class: 2})
			class2 = append(class2, classSpec{glyphs: latin, class: 2})
			values[[2]uint16{2, 2}] = valueRecord{xAdvance: -quarter}
		}
		sub := writePairPosClasses(class1, class2, 3, 3, values, leftFmt)
		lookups = append(lookups, lookupData{lookupType: gposPair, subtables: [][]byte{sub}})
		spacingLookups = append(spacingLookups, index)
		index++
	}

	// shift-and-narrow for right-class glyphs, as a single adjustment
	// reached through a chained context; pair positioning cannot adjust
	// the second glyph of a pair
	if len(posRight) > 0 && len(left) > 0 && len(right) > 0 {
		single := writeSinglePos(posRight, rightVal, rightFmt)
		lookups = append(lookups, lookupData{lookupType: gposSingle, subtables: [][]byte{single}})
		singleIndex := index
		index++

		chain := writeChainContext3(chainRule{
			backtrack: [][]ot.GlyphIndex{contextGlyphs(cs, middle, right)},
			input:     [][]ot.GlyphIndex{posRight},
			records:   []seqLookup{{sequenceIndex: 0, lookupIndex: singleIndex}},
		})
		lookups = append(lookups, lookupData{lookupType: gposChainContext, subtables: [][]byte{chain}})
		spacingLookups = append(spacingLookups, index)
		index++
	}

	var features []featureAdd
	if len(spacingLookups) > 0 {
		tag := ot.T("chws")
		if cs.Vertical {
			tag = ot.T("vchw")
		}
		features = append(features, featureAdd{tag: tag, lookups: spacingLookups})
	}

	// halt/vhal narrow unconditionally, one subtable per spacing class
	if halfWidthFeature && (len(left) > 0 || len(right) > 0) {
		var subs [][]byte
		if len(left) > 0 {
			subs = append(subs, writeSinglePos(left, leftVal, leftFmt))
		}
		if len(right) > 0 {
			subs = append(subs, writeSinglePos(right, rightVal, rightFmt))
		}
		if len(middle) > 0 {
			subs = append(subs, writeSinglePos(middle, midVal, midFmt))
		}
		lookups = append(lookups, lookupData{lookupType: gposSingle, subtables: subs})
		tag := ot.T("halt")
		if cs.Vertical {
			tag = ot.T("vhal")
		}
		features = append(features, featureAdd{tag: tag, lookups: []uint16{index}})
		index++
	}

	if len(features) == 0 {
		return nil, nil, ot.ErrNoApplicableGlyphs
	}
	tracer().Debugf("built %d positioning lookups (vertical=%v)", len(lookups), cs.Vertical)
	return lookups, features, nil
}

// buildSubstitution constructs the GSUB lookups replacing fullwidth
// punctuation by the font's halfwidth variant glyphs at spacing boundaries.
// Returns nil lookups when no covered glyph has a variant.
func buildSubstitution(cs *otcover.CoverageSet, baseIndex uint16) ([]lookupData, []featureAdd) {
	left, middle, right := cs.Left(), cs.Middle(), cs.Right()
	substLeft, _ := splitByAction(cs, left)
	substRight, _ := splitByAction(cs, right)
	if len(substLeft)+len(substRight) == 0 {
		return nil, nil
	}
	mapping := make(map[ot.GlyphIndex]ot.GlyphIndex, len(substLeft)+len(substRight))
	for g, v := range substLeft {
		mapping[g] = v
	}
	for g, v := range substRight {
		mapping[g] = v
	}
	single := writeSingleSubst(mapping)
	singleIndex := baseIndex

	var rules [][]byte
	if len(substLeft) > 0 {
		rules = append(rules, writeChainContext3(chainRule{
			input:     [][]ot.GlyphIndex{keys(substLeft)},
			lookahead: [][]ot.GlyphIndex{contextGlyphs(cs, left, middle, right)},
			records:   []seqLookup{{sequenceIndex: 0, lookupIndex: singleIndex}},
		}))
	}
	if len(substRight) > 0 {
		rules = append(rules, writeChainContext3(chainRule{
			backtrack: [][]ot.GlyphIndex{contextGlyphs(cs, middle, right)},
			input:     [][]ot.GlyphIndex{keys(substRight)},
			records:   []seqLookup{{sequenceIndex: 0, lookupIndex: singleIndex}},
		}))
	}
	lookups := []lookupData{
		{lookupType: gsubSingle, subtables: [][]byte{single}},
		{lookupType: gsubChainContext, subtables: rules},
	}
	tag := ot.T("chws")
	if cs.Vertical {
		tag = ot.T("vchw")
	}
	features := []featureAdd{{tag: tag, lookups: []uint16{baseIndex + 1}}}
	tracer().Debugf("built substitution lookups for %d variant glyphs", len(mapping))
	return lookups, features
}

func keys(m map[ot.GlyphIndex]ot.GlyphIndex) []ot.GlyphIndex {
	r := make([]ot.GlyphIndex, 0, len(m))
	for g := range m {
		r = append(r, g)
	}
	return r
}
