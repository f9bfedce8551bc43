/*
Package chws adds East Asian contextual spacing features to OpenType and
TrueType fonts.

CJK fonts set punctuation full-width; good typography tightens it where
fullwidth punctuation meets more punctuation or, for wide ideographs,
narrow Latin. The OpenType features chws/vchw (contextual half widths,
horizontal and vertical) and halt/vhal (unconditional alternate half
widths) carry those rules, but most fonts ship without them. This module
derives the spacing-relevant glyph classes from a font's own coverage and
metrics, builds the missing GSUB/GPOS lookups, splices them in append-only
(existing lookups keep their indices and bytes), verifies the result by
driving a real shaping engine over probe strings, and writes the patched
binary. Font collections are handled as a unit.

The heavy lifting is in the sub-packages: ot (table access), otcover
(coverage resolver), otpatch (feature table builder and font writer),
otverify (shaping verifier) and otbuild (orchestration). This package
offers the one-call entry points.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package chws

import (
	"github.com/npillmayer/chws/otbuild"
)

// Options parameterize patching; see otbuild.Options. The zero value
// patches with chws only, under Japanese punctuation conventions, verified
// by the default shaping engine; set Patch.VerticalSpacing for vchw and
// Patch.HalfWidthFeatures for halt/vhal.
type Options = otbuild.Options

// PatchData patches a font or font collection binary. It returns the
// patched binary, or nil when nothing is to be written (already patched, or
// rejected), plus one outcome per (sub-)font. name is used in diagnostics
// only.
func PatchData(name string, data []byte, opts Options) ([]byte, []otbuild.Outcome) {
	return otbuild.New(opts).PatchBinary(name, data)
}

// PatchFiles patches a batch of font files concurrently. outPath maps each
// input path to its output location.
func PatchFiles(paths []string, outPath func(string) string, opts Options) *otbuild.Report {
	return otbuild.New(opts).ProcessFiles(paths, outPath)
}
