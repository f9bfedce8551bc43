/*
Package otbuild orchestrates the patching pipeline.

Each font (and each member of a font collection) runs through a fixed state
machine: Loaded, Resolved, Built, Verified, then Accepted or Rejected. The
stages are the coverage resolver, the feature table builder and the shaping
verifier; a failure at any stage is terminal for that font and never aborts
the processing of other fonts. A collection is written only when every
member is accepted, since the container needs one consistent binary.

Fonts are independent, so a batch of files is processed by a worker pool.
Within one font the stages are strictly sequential.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package otbuild

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'chws.otbuild'.
func tracer() tracing.Trace {
	return tracing.Select("chws.otbuild")
}
