package otpatch

import (
	"github.com/npillmayer/chws/ot"
	"github.com/npillmayer/chws/otcover"
)

// Action is what the patch does to a glyph at a spacing boundary.
type Action int

const (
	ActionNone       Action = iota
	ActionSubstitute        // replace by the font's halfwidth variant glyph
	ActionPosition          // shift/narrow by a positioning adjustment
)

func (a Action) String() string {
	switch a {
	case ActionSubstitute:
		return "substitute"
	case ActionPosition:
		return "position"
	}
	return "none"
}

// decide is the policy for one glyph taking part in a spacing boundary:
// a halfwidth variant glyph is visually exact, so substitution wins whenever
// the font provides one; positioning is the approximation fallback.
func decide(cs *otcover.CoverageSet, g ot.GlyphIndex) Action {
	if _, ok := cs.HalfWidthVariant(g); ok {
		return ActionSubstitute
	}
	return ActionPosition
}

// splitByAction partitions glyphs into the substitution-handled ones (with
// their variant mapping) and the positioning-handled rest.
func splitByAction(cs *otcover.CoverageSet, glyphs []ot.GlyphIndex) (
	subst map[ot.GlyphIndex]ot.GlyphIndex, positioned []ot.GlyphIndex) {

	subst = make(map[ot.GlyphIndex]ot.GlyphIndex)
	for _, g := range glyphs {
		switch decide(cs, g) {
		case ActionSubstitute:
			subst[g], _ = cs.HalfWidthVariant(g)
		case ActionPosition:
			positioned = append(positioned, g)
		}
	}
	return subst, positioned
}

// contextGlyphs is the glyph set a boundary rule may look at as context:
// all spacing-class glyphs plus their halfwidth variants, since a variant
// may already have been substituted in by the time positioning runs.
func contextGlyphs(cs *otcover.CoverageSet, sets ...[]ot.GlyphIndex) []ot.GlyphIndex {
	var r []ot.GlyphIndex
	for _, set := range sets {
		for _, g := range set {
			r = append(r, g)
			if v, ok := cs.HalfWidthVariant(g); ok {
				r = append(r, v)
			}
		}
	}
	return r
}
