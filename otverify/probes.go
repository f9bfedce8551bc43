package otverify

import (
	"fmt"

	"github.com/npillmayer/chws/otcover"
)

// GlyphExpect is the expected effect of the spacing feature on one glyph of
// a shaped probe string.
type GlyphExpect struct {
	Index int
	// AdvanceDelta is the expected advance change with the feature on,
	// in font units. Horizontal narrowing is negative; vertical advances
	// are downward-negative, so vertical narrowing is positive.
	AdvanceDelta int32
	// Substituted expects a halfwidth variant glyph instead of an exact
	// delta: the glyph ID must change and the advance must shrink.
	Substituted bool
}

// ProbeCase is one category boundary to test: a short text run, the feature
// activation context, and the expected per-glyph outcome.
type ProbeCase struct {
	Name     string
	Text     []rune
	Vertical bool
	Language string
	Features []string // spacing features to activate, e.g. "chws"
	Expect   []GlyphExpect
}

// BuildProbes derives the probe cases for a font from its resolved
// coverage. Probes cover the boundaries the patch claims to handle:
// closing×opening, closing×closing, opening×opening, the wide-ideograph×
// Latin boundary, and, when halt/vhal were built, unconditional narrowing.
// Categories the font does not cover produce no probe.
func BuildProbes(cov, vcov *otcover.CoverageSet, halfWidthFeatures bool) []ProbeCase {
	var cases []ProbeCase
	cases = append(cases, horizontalProbes(cov, halfWidthFeatures)...)
	if vcov != nil {
		cases = append(cases, verticalProbes(vcov, halfWidthFeatures)...)
	}
	return cases
}

func horizontalProbes(cov *otcover.CoverageSet, halfWidthFeatures bool) []ProbeCase {
	var cases []ProbeCase
	half := -int32(cov.UnitsPerEm / 2)
	quarter := half / 2
	left, leftRunes := cov.Left(), cov.LeftRunes()
	right, rightRunes := cov.Right(), cov.RightRunes()

	if len(left) > 0 && len(right) > 0 {
		// only the closing glyph narrows here; openers react to middle
		// and right context, not to a preceding closer
		lExp := GlyphExpect{Index: 0, AdvanceDelta: half}
		if _, subst := cov.HalfWidthVariant(left[0]); subst {
			lExp = GlyphExpect{Index: 0, Substituted: true}
		}
		cases = append(cases, ProbeCase{
			Name:     fmt.Sprintf("closing+opening %q", string([]rune{leftRunes[0], rightRunes[0]})),
			Text:     []rune{leftRunes[0], rightRunes[0]},
			Features: []string{"chws"},
			Expect:   []GlyphExpect{lExp},
		})
	}
	if len(left) > 1 {
		exp := GlyphExpect{Index: 0, AdvanceDelta: half}
		if _, subst := cov.HalfWidthVariant(left[0]); subst {
			exp = GlyphExpect{Index: 0, Substituted: true}
		}
		cases = append(cases, ProbeCase{
			Name:     fmt.Sprintf("closing+closing %q", string([]rune{leftRunes[0], leftRunes[1]})),
			Text:     []rune{leftRunes[0], leftRunes[1]},
			Features: []string{"chws"},
			Expect:   []GlyphExpect{exp},
		})
	}
	if len(right) > 1 {
		exp := GlyphExpect{Index: 1, AdvanceDelta: half}
		if _, subst := cov.HalfWidthVariant(right[1]); subst {
			exp = GlyphExpect{Index: 1, Substituted: true}
		}
		cases = append(cases, ProbeCase{
			Name:     fmt.Sprintf("opening+opening %q", string([]rune{rightRunes[0], rightRunes[1]})),
			Text:     []rune{rightRunes[0], rightRunes[1]},
			Features: []string{"chws"},
			Expect:   []GlyphExpect{exp},
		})
	}
	wide, latin := cov.Runes(otcover.WideCJK), cov.Runes(otcover.NarrowLatin)
	if len(wide) > 0 && len(latin) > 0 {
		cases = append(cases, ProbeCase{
			Name:     fmt.Sprintf("wide+latin %q", string([]rune{wide[0], latin[0]})),
			Text:     []rune{wide[0], latin[0]},
			Features: []string{"chws"},
			Expect:   []GlyphExpect{{Index: 0, AdvanceDelta: quarter}},
		})
	}
	if halfWidthFeatures && len(left) > 0 {
		cases = append(cases, ProbeCase{
			Name:     fmt.Sprintf("halt %q", string(leftRunes[0])),
			Text:     []rune{leftRunes[0]},
			Features: []string{"halt"},
			Expect:   []GlyphExpect{{Index: 0, AdvanceDelta: half}},
		})
	}
	lang := probeLanguage(cov.Language())
	for i := range cases {
		cases[i].Language = lang
	}
	return cases
}

func verticalProbes(vcov *otcover.CoverageSet, halfWidthFeatures bool) []ProbeCase {
	var cases []ProbeCase
	// vertical advances run downward-negative; narrowing raises them
	half := int32(vcov.UnitsPerEm / 2)
	left, leftRunes := vcov.Left(), vcov.LeftRunes()
	right, rightRunes := vcov.Right(), vcov.RightRunes()
	if len(left) > 0 && len(right) > 0 {
		cases = append(cases, ProbeCase{
			Name:     fmt.Sprintf("vertical closing+opening %q", string([]rune{leftRunes[0], rightRunes[0]})),
			Text:     []rune{leftRunes[0], rightRunes[0]},
			Vertical: true,
			Features: []string{"vchw"},
			Expect:   []GlyphExpect{{Index: 0, AdvanceDelta: half}},
		})
	}
	if halfWidthFeatures && len(left) > 0 {
		cases = append(cases, ProbeCase{
			Name:     fmt.Sprintf("vhal %q", string(leftRunes[0])),
			Text:     []rune{leftRunes[0]},
			Vertical: true,
			Features: []string{"vhal"},
			Expect:   []GlyphExpect{{Index: 0, AdvanceDelta: half}},
		})
	}
	lang := probeLanguage(vcov.Language())
	for i := range cases {
		cases[i].Language = lang
	}
	return cases
}

// probeLanguage maps the coverage language to a BCP-47 tag for the engine.
func probeLanguage(lang otcover.Language) string {
	switch lang {
	case otcover.LangSimplifiedChinese:
		return "zh-Hans"
	case otcover.LangTraditionalChinese:
		return "zh-Hant"
	case otcover.LangHongKongChinese:
		return "zh-HK"
	case otcover.LangKorean:
		return "ko"
	}
	return "ja"
}
