package otbuild

import (
	"fmt"
	"io"

	"github.com/npillmayer/chws/ot"
	"github.com/npillmayer/chws/otcover"
	"github.com/npillmayer/chws/otpatch"
	"github.com/npillmayer/chws/otverify"
)

// Options parameterize a pipeline run.
type Options struct {
	Cover otcover.Config
	Patch otpatch.Options

	// Engine is the shaping collaborator for verification; nil selects the
	// go-text/typesetting default.
	Engine otverify.Engine

	// Workers bounds the number of fonts processed concurrently; zero
	// means one worker per CPU.
	Workers int

	// DumpGlyphs, when set, receives the resolved glyph classes of every
	// processed font.
	DumpGlyphs io.Writer
}

// Pipeline runs fonts through resolve, build and verify, and decides
// acceptance.
type Pipeline struct {
	opts     Options
	verifier *otverify.Verifier
}

// New creates a pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{
		opts:     opts,
		verifier: otverify.New(opts.Engine),
	}
}

// memberState carries one (sub-)font through the pipeline stages.
type memberState struct {
	font    *ot.Font
	outcome Outcome
	cov     *otcover.CoverageSet
	vcov    *otcover.CoverageSet
	patched map[ot.Tag][]byte // table replacements on success
}

// PatchBinary runs the pipeline over one font or collection binary. It
// returns the patched output binary, or nil when nothing is to be written
// (all members skipped, or any member rejected), plus one outcome per
// member. The input binary is never modified.
func (p *Pipeline) PatchBinary(path string, data []byte) ([]byte, []Outcome) {
	isColl := ot.IsCollection(data)
	fonts, err := ot.ParseCollection(data)
	if err != nil {
		return nil, []Outcome{{Path: path, Index: -1, State: Rejected, Err: err}}
	}
	members := make([]*memberState, len(fonts))
	for i, otf := range fonts {
		idx := i
		if !isColl {
			idx = -1
		}
		members[i] = &memberState{
			font:    otf,
			outcome: Outcome{Path: path, Index: idx, State: Loaded},
		}
	}
	p.resolveMembers(members)
	p.buildGroups(members)
	p.verifyMembers(members)

	outcomes := make([]Outcome, len(members))
	allOK, anyPatched := true, false
	for i, m := range members {
		outcomes[i] = m.outcome
		if m.outcome.State != Accepted && m.outcome.State != Skipped {
			allOK = false
		}
		if m.outcome.State == Accepted {
			anyPatched = true
		}
	}
	if !allOK || !anyPatched {
		return nil, outcomes
	}
	var out []byte
	if isColl {
		replaced := make([]map[ot.Tag][]byte, len(members))
		for i, m := range members {
			replaced[i] = m.patched
		}
		out, err = otpatch.RebuildCollection(fonts, replaced)
	} else {
		out, err = otpatch.RebuildFont(fonts[0], members[0].patched)
	}
	if err != nil {
		for i := range outcomes {
			outcomes[i].State = Rejected
			outcomes[i].Err = err
		}
		return nil, outcomes
	}
	return out, outcomes
}

// resolveMembers runs the coverage resolver on every member that is not
// already patched. Loaded → Resolved.
func (p *Pipeline) resolveMembers(members []*memberState) {
	for _, m := range members {
		gpos := m.font.Layout.GPos
		if gpos.HasFeature(ot.T("chws")) || gpos.HasFeature(ot.T("vchw")) {
			m.outcome.State = Skipped
			tracer().Infof("%s: already carries spacing features", m.outcome.Path)
			continue
		}
		cov, err := otcover.Resolve(m.font, p.opts.Cover)
		if err != nil {
			m.outcome.State = Rejected
			m.outcome.Err = err
			continue
		}
		m.cov = cov
		m.vcov = otcover.VerticalOf(m.font, cov)
		m.outcome.State = Resolved
		if p.opts.DumpGlyphs != nil {
			fmt.Fprintf(p.opts.DumpGlyphs, "# %s\n", m.outcome.Path)
			cov.SaveGlyphs(p.opts.DumpGlyphs)
		}
	}
}

// layoutKey identifies one member's GSUB or GPOS table by file offset;
// absent tables compare equal to each other and unequal to any present one.
type layoutKey struct {
	off     uint32
	present bool
}

func memberLayoutKeys(m *memberState) (gsub, gpos layoutKey) {
	gsub.off, gsub.present = m.font.TableOffset(ot.T("GSUB"))
	gpos.off, gpos.present = m.font.TableOffset(ot.T("GPOS"))
	return
}

// rejectPartialSharing rejects members that share one layout table with
// another member but not the other table. A united patch would overwrite
// the unshared table, separate patches would emit conflicting bytes for
// the shared one.
func rejectPartialSharing(members []*memberState) {
	partnerOf := func(pick func(*memberState) (layoutKey, layoutKey)) map[uint32]bool {
		first := make(map[uint32]layoutKey)
		conflict := make(map[uint32]bool)
		for _, m := range members {
			if m.outcome.State != Resolved {
				continue
			}
			k, other := pick(m)
			if !k.present {
				continue
			}
			if prev, seen := first[k.off]; seen {
				if prev != other {
					conflict[k.off] = true
				}
			} else {
				first[k.off] = other
			}
		}
		return conflict
	}
	gsubConflict := partnerOf(func(m *memberState) (layoutKey, layoutKey) {
		gsub, gpos := memberLayoutKeys(m)
		return gsub, gpos
	})
	gposConflict := partnerOf(func(m *memberState) (layoutKey, layoutKey) {
		gsub, gpos := memberLayoutKeys(m)
		return gpos, gsub
	})
	for _, m := range members {
		if m.outcome.State != Resolved {
			continue
		}
		gsub, gpos := memberLayoutKeys(m)
		if (gsub.present && gsubConflict[gsub.off]) || (gpos.present && gposConflict[gpos.off]) {
			m.outcome.State = Rejected
			m.outcome.Err = fmt.Errorf("%w: collection members share only part of their layout tables",
				ot.ErrIncompatibleFont)
			tracer().Infof("%s: %v", m.outcome.Path, m.outcome.Err)
		}
	}
}

// buildGroups builds the patch per shared-table group. Collection members
// sharing their GSUB/GPOS must receive one united patch, or the rebuilt
// collection could no longer share the tables. Resolved → Built.
func (p *Pipeline) buildGroups(members []*memberState) {
	rejectPartialSharing(members)
	type groupKey struct {
		gsubOff, gposOff uint32
		solo             int
	}
	groups := make(map[groupKey][]*memberState)
	var order []groupKey
	for i, m := range members {
		if m.outcome.State != Resolved {
			continue
		}
		gsubOff, hasGSUB := m.font.TableOffset(ot.T("GSUB"))
		gposOff, hasGPOS := m.font.TableOffset(ot.T("GPOS"))
		key := groupKey{gsubOff: gsubOff, gposOff: gposOff, solo: -1}
		if !hasGSUB && !hasGPOS {
			// nothing to share, so nothing forces a united patch
			key.solo = i
		}
		if len(groups[key]) == 0 {
			order = append(order, key)
		}
		groups[key] = append(groups[key], m)
	}
	for _, key := range order {
		group := groups[key]
		covs := make([]*otcover.CoverageSet, len(group))
		vcovs := make([]*otcover.CoverageSet, len(group))
		for i, m := range group {
			covs[i], vcovs[i] = m.cov, m.vcov
		}
		patch, err := otpatch.Build(group[0].font, otcover.Union(covs...), otcover.Union(vcovs...), p.opts.Patch)
		for _, m := range group {
			if err != nil {
				m.outcome.State = Rejected
				m.outcome.Err = err
				continue
			}
			m.outcome.State = Built
			m.outcome.Features = patch.Features
			m.patched = patch.Tables
		}
	}
}

// verifyMembers shapes the probe cases against each member rebuilt as a
// standalone binary. Built → Verified → Accepted or Rejected.
func (p *Pipeline) verifyMembers(members []*memberState) {
	for _, m := range members {
		if m.outcome.State != Built {
			continue
		}
		rebuilt, err := otpatch.RebuildFont(m.font, m.patched)
		if err != nil {
			m.outcome.State = Rejected
			m.outcome.Err = err
			continue
		}
		probes := otverify.BuildProbes(m.cov, m.vcov, p.opts.Patch.HalfWidthFeatures)
		result, err := p.verifier.Verify(rebuilt, probes)
		if err != nil {
			m.outcome.State = Rejected
			m.outcome.Err = err
			continue
		}
		m.outcome.State = Verified
		if result.AllPassed() {
			m.outcome.State = Accepted
		} else {
			m.outcome.State = Rejected
			m.outcome.Err = otverify.ErrVerificationFailure
			m.outcome.Failing = result.Failing()
		}
	}
}
