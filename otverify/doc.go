/*
Package otverify verifies a spacing patch by shaping.

The spacing lookups have no simple closed-form check; the ground truth is
what a shaping engine makes of them. The verifier constructs probe strings
across category boundaries, shapes them against the patched font with the
spacing features switched on and off, and accepts the patch only when every
probe shows the expected narrowing.

The shaping engine is a collaborator behind the Engine interface; the
default implementation drives the HarfBuzz port of go-text/typesetting.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package otverify

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'chws.otverify'.
func tracer() tracing.Trace {
	return tracing.Select("chws.otverify")
}
