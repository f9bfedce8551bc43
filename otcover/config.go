package otcover

// Language selects the typographic tradition a font is patched for.
// Fullwidth period/comma sit at the left in Japanese, Simplified Chinese and
// Korean fonts, but centered in Traditional Chinese; colon/semicolon are
// centered in Japanese but left-aligned in Simplified Chinese. The language
// decides which spacing class those glyphs join.
type Language string

const (
	LangDefault            Language = "" // treated like Japanese
	LangJapanese           Language = "JAN"
	LangSimplifiedChinese  Language = "ZHS"
	LangTraditionalChinese Language = "ZHT"
	LangHongKongChinese    Language = "ZHH"
	LangKorean             Language = "KOR"
)

// Config parameterizes coverage resolution. The zero value is usable.
type Config struct {
	// Language disambiguates language-dependent punctuation placement.
	// Empty means Japanese conventions.
	Language Language

	// Priority resolves category overlap when several code points map to
	// the same glyph. Defaults to DefaultPriority.
	Priority []Category
}

func (cfg Config) priority() []Category {
	if len(cfg.Priority) > 0 {
		return cfg.Priority
	}
	return DefaultPriority
}

// spacingClass is the position of a glyph's blank half, which decides on
// which side the glyph can be tightened.
type spacingClass int

const (
	classNone   spacingClass = iota
	classLeft                // blank right half; narrowed before a following glyph
	classRight               // blank left half; shifted and narrowed after a preceding glyph
	classMiddle              // centered; acts as context only
)

// trioClass places a category into the left/middle/right spacing trio for
// the given language.
func trioClass(cat Category, lang Language) spacingClass {
	switch cat {
	case ClosingPunct, ClosingQuote:
		return classLeft
	case OpeningPunct, OpeningQuote:
		return classRight
	case MidPunct:
		return classMiddle
	case PeriodComma:
		if lang == LangTraditionalChinese || lang == LangHongKongChinese {
			return classMiddle
		}
		return classLeft
	case ColonSemicolon:
		if lang == LangSimplifiedChinese {
			return classLeft
		}
		return classMiddle
	case ExclamQuestion:
		if lang == LangSimplifiedChinese {
			return classLeft
		}
		return classNone
	}
	return classNone
}
