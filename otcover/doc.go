/*
Package otcover resolves the glyph coverage of a font for East Asian
contextual spacing.

Spacing features act on glyph classes, not on code points. This package
classifies a fixed table of Unicode code points (wide ideographs, East Asian
brackets and punctuation, curly quotes, Latin letters) into spacing
categories, maps them through the font's character map, and filters the
result by advance width, so that only glyphs actually rendered full-width
take part in spacing. The outcome is a CoverageSet, immutable once computed,
which the feature builder turns into lookup tables.

Fullwidth period, comma, colon and semicolon sit at different positions
depending on typographic tradition (Japanese vs. Simplified vs. Traditional
Chinese), so their category placement depends on a language setting.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package otcover

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'chws.otcover'.
func tracer() tracing.Trace {
	return tracing.Select("chws.otcover")
}
