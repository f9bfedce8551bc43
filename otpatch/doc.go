/*
Package otpatch builds the contextual spacing patch for a font: new GPOS
(and, where halfwidth variant glyphs exist, GSUB) lookups implementing
half-width spacing at East Asian punctuation boundaries, spliced into the
font's layout tables under the feature tags chws/vchw and optionally
halt/vhal.

Splicing is strictly append-only. The original layout table is embedded
verbatim into the rebuilt one, so every pre-existing lookup keeps its index
and its exact bytes; script and feature lists are re-serialized with the new
entries appended. New lookups are wrapped in extension lookups, which keeps
their subtables reachable behind arbitrarily large original tables.

The package also rebuilds complete font binaries (single fonts and
collections) with the patched tables, recomputing table checksums and the
head checksum adjustment.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package otpatch

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'chws.otpatch'.
func tracer() tracing.Trace {
	return tracing.Select("chws.otpatch")
}
