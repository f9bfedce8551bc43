package otcover

import (
	"github.com/npillmayer/chws/ot"
)

// Resolve computes the coverage set of a font: it walks the fixed category
// table, maps each code point through the font's character map, filters by
// advance width and resolves overlaps by category priority.
//
// Code points absent from the font are skipped. Resolve fails only when the
// font exposes no usable character map, with an error matching
// ot.ErrUnsupportedFont.
func Resolve(otf *ot.Font, cfg Config) (*CoverageSet, error) {
	if otf == nil || otf.CMap == nil || otf.CMap.GlyphIndexMap == nil {
		return nil, ot.ErrUnsupportedFont
	}
	em := int(otf.UnitsPerEm())
	cs := &CoverageSet{
		glyphs:     make(map[Category][]ot.GlyphIndex),
		runes:      make(map[Category][]rune),
		byGlyph:    make(map[ot.GlyphIndex]Category),
		variants:   make(map[ot.GlyphIndex]ot.GlyphIndex),
		lang:       cfg.Language,
		UnitsPerEm: em,
	}
	for _, cat := range cfg.priority() {
		for _, rng := range categoryRanges[cat] {
			for r := rng.lo; r <= rng.hi; r++ {
				g := otf.GlyphIndex(r)
				if g == 0 {
					continue
				}
				if _, taken := cs.byGlyph[g]; taken {
					continue
				}
				if !advanceFits(otf, g, cat, em) {
					continue
				}
				cs.byGlyph[g] = cat
				cs.glyphs[cat] = append(cs.glyphs[cat], g)
				cs.runes[cat] = append(cs.runes[cat], r)
			}
		}
	}
	resolveVariants(otf, cs, em)
	tracer().Infof("resolved %v", cs)
	return cs, nil
}

// advanceFits checks that a glyph is actually rendered at the width its
// category expects. Fonts map fullwidth code points to proportional glyphs
// more often than one would hope; those must not be patched.
func advanceFits(otf *ot.Font, g ot.GlyphIndex, cat Category, em int) bool {
	if otf.HMtx == nil {
		return true
	}
	adv := int(otf.HMtx.Advance(g))
	if cat == NarrowLatin {
		return adv > 0 && adv < em
	}
	return adv == em
}

// resolveVariants finds halfwidth variant glyphs for covered fullwidth
// punctuation, from the dedicated halfwidth code points and from the font's
// own 'hwid' substitution feature. A variant qualifies only if it is
// actually narrower than the em.
func resolveVariants(otf *ot.Font, cs *CoverageSet, em int) {
	narrower := func(g ot.GlyphIndex) bool {
		return otf.HMtx == nil || int(otf.HMtx.Advance(g)) < em
	}
	for fw, hw := range halfWidthCounterparts {
		gFull := otf.GlyphIndex(fw)
		gHalf := otf.GlyphIndex(hw)
		if gFull == 0 || gHalf == 0 || gFull == gHalf {
			continue
		}
		if _, covered := cs.byGlyph[gFull]; !covered {
			continue
		}
		if narrower(gHalf) {
			cs.variants[gFull] = gHalf
		}
	}
	if otf.Layout.GSub == nil {
		return
	}
	for gFull, gHalf := range otf.Layout.GSub.SingleSubstitutions(ot.T("hwid")) {
		if _, covered := cs.byGlyph[gFull]; !covered {
			continue
		}
		if _, have := cs.variants[gFull]; have {
			continue
		}
		if gHalf != 0 && gHalf != gFull && narrower(gHalf) {
			cs.variants[gFull] = gHalf
		}
	}
}

// Union merges coverage sets into one. Collection members sharing a layout
// table must receive one united patch, built from the union of their
// coverages. The first set claiming a glyph keeps it; languages and em
// sizes of all sets must agree.
func Union(sets ...*CoverageSet) *CoverageSet {
	var u *CoverageSet
	for _, cs := range sets {
		if cs == nil {
			continue
		}
		if u == nil {
			u = &CoverageSet{
				glyphs:     make(map[Category][]ot.GlyphIndex),
				runes:      make(map[Category][]rune),
				byGlyph:    make(map[ot.GlyphIndex]Category),
				variants:   make(map[ot.GlyphIndex]ot.GlyphIndex),
				lang:       cs.lang,
				UnitsPerEm: cs.UnitsPerEm,
				Vertical:   cs.Vertical,
			}
		}
		for cat, glyphs := range cs.glyphs {
			for i, g := range glyphs {
				if _, taken := u.byGlyph[g]; taken {
					continue
				}
				u.byGlyph[g] = cat
				u.glyphs[cat] = append(u.glyphs[cat], g)
				u.runes[cat] = append(u.runes[cat], cs.runes[cat][i])
			}
		}
		for g, v := range cs.variants {
			if _, have := u.variants[g]; !have {
				u.variants[g] = v
			}
		}
	}
	return u
}

// VerticalOf derives the coverage set for vertical flow from a horizontal
// one, by mapping glyphs through the font's 'vert' substitution feature.
// Left and right class glyphs take part in vertical spacing only when the
// font has a vertical alternate for them; some fonts rotate quotes instead
// of substituting them, and those must be left alone. Centered glyphs and
// ideographs stay, substituted or not.
//
// Returns nil when the font has no 'vert' feature; such a font gets no
// vertical spacing patch.
func VerticalOf(otf *ot.Font, cs *CoverageSet) *CoverageSet {
	if otf == nil || otf.Layout.GSub == nil || cs == nil {
		return nil
	}
	vert := otf.Layout.GSub.SingleSubstitutions(ot.T("vert"))
	if len(vert) == 0 {
		return nil
	}
	vcs := &CoverageSet{
		glyphs:     make(map[Category][]ot.GlyphIndex),
		runes:      make(map[Category][]rune),
		byGlyph:    make(map[ot.GlyphIndex]Category),
		lang:       cs.lang,
		UnitsPerEm: cs.UnitsPerEm,
		Vertical:   true,
	}
	for cat, glyphs := range cs.glyphs {
		class := trioClass(cat, cs.lang)
		for i, g := range glyphs {
			vg, hasVert := vert[g]
			switch {
			case hasVert:
				// substituted alternate takes the glyph's place
			case class == classLeft || class == classRight:
				continue
			default:
				vg = g
			}
			if _, taken := vcs.byGlyph[vg]; taken {
				continue
			}
			vcs.byGlyph[vg] = cat
			vcs.glyphs[cat] = append(vcs.glyphs[cat], vg)
			vcs.runes[cat] = append(vcs.runes[cat], cs.runes[cat][i])
		}
	}
	tracer().Infof("derived vertical %v", vcs)
	return vcs
}
