package otcover

// Category is a spacing category, assigned to glyphs via Unicode code point
// classification. A glyph belongs to at most one category.
type Category int

const (
	NoCategory Category = iota
	WideCJK             // wide ideographs and kana
	NarrowLatin         // ASCII letters and digits
	OpeningPunct        // fullwidth opening brackets
	ClosingPunct        // fullwidth closing brackets
	OpeningQuote        // curly opening quotes U+2018, U+201C
	ClosingQuote        // curly closing quotes U+2019, U+201D
	MidPunct            // katakana middle dot and friends
	PeriodComma         // fullwidth/ideographic period and comma
	ColonSemicolon      // fullwidth colon and semicolon
	ExclamQuestion      // fullwidth exclamation and question mark
)

func (c Category) String() string {
	switch c {
	case WideCJK:
		return "WideCJK"
	case NarrowLatin:
		return "NarrowLatin"
	case OpeningPunct:
		return "OpeningPunct"
	case ClosingPunct:
		return "ClosingPunct"
	case OpeningQuote:
		return "OpeningQuote"
	case ClosingQuote:
		return "ClosingQuote"
	case MidPunct:
		return "MidPunct"
	case PeriodComma:
		return "PeriodComma"
	case ColonSemicolon:
		return "ColonSemicolon"
	case ExclamQuestion:
		return "ExclamQuestion"
	}
	return "NoCategory"
}

// codepointRange is a closed range of Unicode code points.
type codepointRange struct {
	lo, hi rune
}

// categoryRanges assigns code points to categories. Process-wide immutable
// configuration; never mutated after init.
//
// The punctuation sets follow UAX #50 and the W3C CLREQ notes on punctuation
// adjustment; the bracket and quote sets are the ones fonts commonly render
// full-width.
var categoryRanges = map[Category][]codepointRange{
	WideCJK: {
		{0x3041, 0x3096}, // Hiragana
		{0x30A1, 0x30FA}, // Katakana
		{0x3400, 0x4DBF}, // CJK Unified Ideographs Extension A
		{0x4E00, 0x9FFF}, // CJK Unified Ideographs
		{0xAC00, 0xD7A3}, // Hangul Syllables
		{0xF900, 0xFA6D}, // CJK Compatibility Ideographs
	},
	NarrowLatin: {
		{'0', '9'},
		{'A', 'Z'},
		{'a', 'z'},
	},
	OpeningPunct: {
		{0x3008, 0x3008}, {0x300A, 0x300A}, {0x300C, 0x300C},
		{0x300E, 0x300E}, {0x3010, 0x3010}, {0x3014, 0x3014},
		{0x3016, 0x3016}, {0x3018, 0x3018}, {0x301A, 0x301A},
		{0x301D, 0x301D},
		{0xFF08, 0xFF08}, {0xFF3B, 0xFF3B}, {0xFF5B, 0xFF5B},
		{0xFF5F, 0xFF5F},
	},
	ClosingPunct: {
		{0x3009, 0x3009}, {0x300B, 0x300B}, {0x300D, 0x300D},
		{0x300F, 0x300F}, {0x3011, 0x3011}, {0x3015, 0x3015},
		{0x3017, 0x3017}, {0x3019, 0x3019}, {0x301B, 0x301B},
		{0x301E, 0x301F},
		{0xFF09, 0xFF09}, {0xFF3D, 0xFF3D}, {0xFF5D, 0xFF5D},
		{0xFF60, 0xFF60},
	},
	OpeningQuote: {
		{0x2018, 0x2018}, {0x201C, 0x201C},
	},
	ClosingQuote: {
		{0x2019, 0x2019}, {0x201D, 0x201D},
	},
	MidPunct: {
		{0x30FB, 0x30FB}, // katakana middle dot
	},
	PeriodComma: {
		{0x3001, 0x3002}, // ideographic comma, full stop
		{0xFF0C, 0xFF0C}, // fullwidth comma
		{0xFF0E, 0xFF0E}, // fullwidth full stop
	},
	ColonSemicolon: {
		{0xFF1A, 0xFF1B},
	},
	ExclamQuestion: {
		{0xFF01, 0xFF01},
		{0xFF1F, 0xFF1F},
	},
}

// DefaultPriority is the category order used to resolve overlaps when two
// categories claim the same glyph (fonts may map several code points to one
// glyph). Earlier categories win. Clients may override this in Config.
var DefaultPriority = []Category{
	OpeningPunct,
	ClosingPunct,
	OpeningQuote,
	ClosingQuote,
	PeriodComma,
	ColonSemicolon,
	ExclamQuestion,
	MidPunct,
	WideCJK,
	NarrowLatin,
}

// halfWidthCounterparts maps fullwidth punctuation code points to their
// halfwidth counterparts in the Halfwidth and Fullwidth Forms block. Where a
// font covers both, the spacing patch can substitute the halfwidth glyph
// instead of shifting the fullwidth one. Only the dedicated halfwidth forms
// qualify; ASCII punctuation is a different design and not a variant.
var halfWidthCounterparts = map[rune]rune{
	0x3002: 0xFF61, // 。 → ｡
	0x300C: 0xFF62, // 「 → ｢
	0x300D: 0xFF63, // 」 → ｣
	0x3001: 0xFF64, // 、 → ､
	0x30FB: 0xFF65, // ・ → ･
}
