/*
Package ot provides access to the OpenType font tables needed for patching
East Asian contextual spacing features into a font.

Unlike a full shaping stack, this package reads just enough structure to work
with a font's character map, metrics and advanced layout tables (GSUB/GPOS):
the table directory, `cmap` glyph lookup, `head`/`maxp`/`hhea`/`hmtx` metrics,
and the script/feature/lookup lists of the layout tables. Pre-existing table
content is exposed as read-only views into the original font binary; the
sister package otpatch owns all mutation, which happens by re-serializing
tables with strictly appended entries.

Font collections (.ttc) are supported: ParseCollection returns one Font per
member, all viewing the same underlying binary, so that shared tables can be
recognized by their offsets.

# Status

Only the table versions and subtable formats that occur in fonts we patch are
interpreted. Unknown tables are carried around as opaque byte ranges and
written back verbatim.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'chws.ot'
func tracer() tracing.Trace {
	return tracing.Select("chws.ot")
}
