package otpatch

import (
	"errors"

	"github.com/npillmayer/chws/ot"
	"github.com/npillmayer/chws/otcover"
)

// Options parameterize patch construction.
type Options struct {
	// VerticalSpacing additionally builds the vchw feature, when the font
	// has vertical alternate glyphs.
	VerticalSpacing bool

	// HalfWidthFeatures additionally builds halt (and vhal) features for
	// unconditional half-width punctuation.
	HalfWidthFeatures bool
}

// Patch holds the rebuilt layout tables for one font, ready to be written
// into a new font binary. Pre-existing lookup and feature content stays
// byte-identical inside the rebuilt tables.
type Patch struct {
	// Tables maps table tags (GSUB, GPOS) to their rebuilt content.
	Tables map[ot.Tag][]byte

	// Features lists the feature tags the patch adds or extends.
	Features []ot.Tag

	// NewLookups counts the lookups appended across all tables.
	NewLookups int
}

// Build constructs the spacing patch for a font from its resolved coverage.
// vcov is the vertical-flow coverage set, or nil when the font has none.
//
// Returns an error matching ot.ErrNoApplicableGlyphs when no boundary rule
// can be built at all, and ot.ErrIncompatibleFont when a layout table cannot
// be rebuilt safely.
func Build(otf *ot.Font, cov *otcover.CoverageSet, vcov *otcover.CoverageSet, opts Options) (*Patch, error) {
	patch := &Patch{Tables: make(map[ot.Tag][]byte)}

	// GSUB: substitution rules for glyphs with halfwidth variants
	gsubBase := uint16(0)
	if otf.Layout.GSub != nil {
		gsubBase = uint16(otf.Layout.GSub.LookupList.Len())
	}
	gsubLookups, gsubFeats := buildSubstitution(cov, gsubBase)
	if len(gsubLookups) > 0 {
		table, err := spliceLayout(ot.T("GSUB"), otf.Layout.GSub, gsubLookups, gsubFeats, gsubExtension)
		if err != nil {
			return nil, err
		}
		patch.Tables[ot.T("GSUB")] = table
		patch.NewLookups += len(gsubLookups)
		patch.noteFeatures(gsubFeats)
	}

	// GPOS: positioning rules, horizontal and vertical
	gposBase := uint16(0)
	if otf.Layout.GPos != nil {
		gposBase = uint16(otf.Layout.GPos.LookupList.Len())
	}
	var gposLookups []lookupData
	var gposFeats []featureAdd
	hLookups, hFeats, hErr := buildPositioning(cov, gposBase, opts.HalfWidthFeatures)
	if hErr != nil && !errors.Is(hErr, ot.ErrNoApplicableGlyphs) {
		return nil, hErr
	}
	gposLookups = append(gposLookups, hLookups...)
	gposFeats = append(gposFeats, hFeats...)
	if opts.VerticalSpacing && vcov != nil {
		vLookups, vFeats, vErr := buildPositioning(vcov, gposBase+uint16(len(gposLookups)), opts.HalfWidthFeatures)
		if vErr != nil && !errors.Is(vErr, ot.ErrNoApplicableGlyphs) {
			return nil, vErr
		}
		gposLookups = append(gposLookups, vLookups...)
		gposFeats = append(gposFeats, vFeats...)
	}
	if len(gposLookups) > 0 {
		table, err := spliceLayout(ot.T("GPOS"), otf.Layout.GPos, gposLookups, gposFeats, gposExtension)
		if err != nil {
			return nil, err
		}
		patch.Tables[ot.T("GPOS")] = table
		patch.NewLookups += len(gposLookups)
		patch.noteFeatures(gposFeats)
	}

	if len(patch.Tables) == 0 {
		return nil, ot.ErrNoApplicableGlyphs
	}
	tracer().Infof("patch: %d new lookups, features %v", patch.NewLookups, patch.Features)
	return patch, nil
}

func (p *Patch) noteFeatures(adds []featureAdd) {
	for _, add := range adds {
		found := false
		for _, t := range p.Features {
			if t == add.tag {
				found = true
				break
			}
		}
		if !found {
			p.Features = append(p.Features, add.tag)
		}
	}
}
