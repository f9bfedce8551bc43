package otcover

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/npillmayer/chws/ot"
)

// CoverageSet maps spacing categories to the glyphs a font covers for them.
// It is built once per font by Resolve and immutable afterwards.
type CoverageSet struct {
	glyphs   map[Category][]ot.GlyphIndex
	runes    map[Category][]rune // representative code points, same order
	byGlyph  map[ot.GlyphIndex]Category
	variants map[ot.GlyphIndex]ot.GlyphIndex // fullwidth glyph → halfwidth variant
	lang     Language
	// UnitsPerEm is the font's em size the coverage was resolved against.
	UnitsPerEm int
	// Vertical marks a coverage set derived for vertical flow.
	Vertical bool
}

// Glyphs returns the glyphs of a category, in first-seen code point order.
// Callers must not modify the returned slice.
func (cs *CoverageSet) Glyphs(cat Category) []ot.GlyphIndex {
	return cs.glyphs[cat]
}

// Runes returns the code points backing a category's glyphs, in the same
// order as Glyphs. Used to construct probe strings.
func (cs *CoverageSet) Runes(cat Category) []rune {
	return cs.runes[cat]
}

// CategoryOf returns the category a glyph was assigned to.
func (cs *CoverageSet) CategoryOf(g ot.GlyphIndex) Category {
	return cs.byGlyph[g]
}

// HalfWidthVariant returns the halfwidth variant glyph of a fullwidth glyph,
// if the font covers one.
func (cs *CoverageSet) HalfWidthVariant(g ot.GlyphIndex) (ot.GlyphIndex, bool) {
	v, ok := cs.variants[g]
	return v, ok
}

// Language returns the language the coverage was resolved for.
func (cs *CoverageSet) Language() Language {
	return cs.lang
}

// Left returns the glyphs whose right half is blank. They are narrowed when
// a glyph of the Left, Middle or Right class follows.
func (cs *CoverageSet) Left() []ot.GlyphIndex {
	return cs.trio(classLeft)
}

// Right returns the glyphs whose left half is blank. They are shifted and
// narrowed when a glyph of the Left, Middle or Right class precedes.
func (cs *CoverageSet) Right() []ot.GlyphIndex {
	return cs.trio(classRight)
}

// Middle returns the centered glyphs, which take part in spacing as context
// only.
func (cs *CoverageSet) Middle() []ot.GlyphIndex {
	return cs.trio(classMiddle)
}

func (cs *CoverageSet) trio(class spacingClass) []ot.GlyphIndex {
	var r []ot.GlyphIndex
	for _, cat := range DefaultPriority {
		if trioClass(cat, cs.lang) != class {
			continue
		}
		r = append(r, cs.glyphs[cat]...)
	}
	return r
}

// LeftRunes, RightRunes and MiddleRunes return the code points backing the
// spacing trio, parallel to Left, Right and Middle.
func (cs *CoverageSet) LeftRunes() []rune   { return cs.trioRunes(classLeft) }
func (cs *CoverageSet) RightRunes() []rune  { return cs.trioRunes(classRight) }
func (cs *CoverageSet) MiddleRunes() []rune { return cs.trioRunes(classMiddle) }

func (cs *CoverageSet) trioRunes(class spacingClass) []rune {
	var r []rune
	for _, cat := range DefaultPriority {
		if trioClass(cat, cs.lang) != class {
			continue
		}
		r = append(r, cs.runes[cat]...)
	}
	return r
}

// IsEmpty reports whether no spacing-relevant punctuation was covered at
// all. Such a font cannot profit from a spacing patch.
func (cs *CoverageSet) IsEmpty() bool {
	return len(cs.Left()) == 0 && len(cs.Right()) == 0
}

func (cs *CoverageSet) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "coverage[left=%d right=%d middle=%d cjk=%d latin=%d variants=%d]",
		len(cs.Left()), len(cs.Right()), len(cs.Middle()),
		len(cs.glyphs[WideCJK]), len(cs.glyphs[NarrowLatin]), len(cs.variants))
	return sb.String()
}

// SaveGlyphs writes the resolved glyph IDs per spacing class, one per line,
// prefixed by the class name. Diagnostic output for the --glyph-out option.
func (cs *CoverageSet) SaveGlyphs(w io.Writer) error {
	classes := []struct {
		name   string
		glyphs []ot.GlyphIndex
	}{
		{"left", cs.Left()},
		{"right", cs.Right()},
		{"middle", cs.Middle()},
	}
	for _, c := range classes {
		sorted := append([]ot.GlyphIndex(nil), c.glyphs...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		for _, g := range sorted {
			if _, err := fmt.Fprintf(w, "%s\t%d\n", c.name, g); err != nil {
				return err
			}
		}
	}
	return nil
}
