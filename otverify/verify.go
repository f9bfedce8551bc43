package otverify

import (
	"errors"
	"fmt"
)

// ErrVerificationFailure marks a patch whose probes did not all pass. It is
// a correctness signal, not a crash: the patched font must not be shipped.
var ErrVerificationFailure = errors.New("verification failure")

// CaseResult is the outcome of one probe case.
type CaseResult struct {
	Probe  ProbeCase
	Passed bool
	Detail string // explanation for failing cases
}

// Result aggregates the probe outcomes of one font.
type Result struct {
	Cases []CaseResult
}

// AllPassed reports whether every probe case passed.
func (r *Result) AllPassed() bool {
	for _, c := range r.Cases {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Failing returns the failing cases.
func (r *Result) Failing() []CaseResult {
	var f []CaseResult
	for _, c := range r.Cases {
		if !c.Passed {
			f = append(f, c)
		}
	}
	return f
}

// Verifier drives probe cases through a shaping engine. It is read-only
// with respect to the font.
type Verifier struct {
	engine Engine
}

// New creates a verifier. A nil engine selects the go-text/typesetting
// default.
func New(engine Engine) *Verifier {
	if engine == nil {
		engine = NewEngine()
	}
	return &Verifier{engine: engine}
}

// Verify shapes every probe case against the patched font, once with the
// spacing features activated and once without, and compares the outcomes
// against the expectations. Shaping errors abort verification; failing
// expectations are collected in the result.
func (v *Verifier) Verify(fontData []byte, cases []ProbeCase) (*Result, error) {
	result := &Result{}
	for _, probe := range cases {
		cr, err := v.runCase(fontData, probe)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", probe.Name, err)
		}
		result.Cases = append(result.Cases, cr)
	}
	tracer().Infof("verified %d probes, all passed: %v", len(result.Cases), result.AllPassed())
	return result, nil
}

func (v *Verifier) runCase(fontData []byte, probe ProbeCase) (CaseResult, error) {
	base := Input{
		Text:     probe.Text,
		Language: probe.Language,
		Vertical: probe.Vertical,
	}
	off, err := v.engine.Shape(fontData, base)
	if err != nil {
		return CaseResult{}, err
	}
	withFeatures := base
	for _, tag := range probe.Features {
		withFeatures.Features = append(withFeatures.Features, Feature{Tag: tag, Value: 1})
	}
	on, err := v.engine.Shape(fontData, withFeatures)
	if err != nil {
		return CaseResult{}, err
	}
	cr := CaseResult{Probe: probe, Passed: true}
	if len(on) != len(off) || len(on) < len(probe.Text) {
		cr.Passed = false
		cr.Detail = fmt.Sprintf("glyph count changed: %d with features, %d without", len(on), len(off))
		return cr, nil
	}
	for _, exp := range probe.Expect {
		if exp.Index >= len(on) {
			cr.Passed = false
			cr.Detail = fmt.Sprintf("no glyph at index %d", exp.Index)
			return cr, nil
		}
		if detail := checkExpect(exp, on[exp.Index], off[exp.Index], probe.Vertical); detail != "" {
			cr.Passed = false
			cr.Detail = detail
			tracer().Infof("probe %s failed: %s", probe.Name, detail)
			return cr, nil
		}
	}
	return cr, nil
}

func checkExpect(exp GlyphExpect, on, off ShapedGlyph, vertical bool) string {
	advOn, advOff := on.XAdvance, off.XAdvance
	if vertical {
		advOn, advOff = on.YAdvance, off.YAdvance
	}
	if exp.Substituted {
		if on.GID == off.GID {
			return fmt.Sprintf("glyph %d not substituted", exp.Index)
		}
		narrowed := advOn < advOff
		if vertical {
			narrowed = advOn > advOff
		}
		if !narrowed {
			return fmt.Sprintf("substituted glyph at %d not narrower: %d vs %d",
				exp.Index, advOn, advOff)
		}
		return ""
	}
	if got := advOn - advOff; got != exp.AdvanceDelta {
		return fmt.Sprintf("advance delta at %d is %d, expected %d",
			exp.Index, got, exp.AdvanceDelta)
	}
	return ""
}
