package otbuild

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/chws/ot"
	"github.com/npillmayer/chws/otverify"
)

// ErrIOFailure marks a failed read or write of a font binary. No partial
// output is ever written.
var ErrIOFailure = errors.New("i/o failure")

// State of one font's pipeline.
type State int

const (
	Loaded State = iota
	Resolved
	Built
	Verified
	Accepted
	Rejected
	// Skipped marks a font that already carries a spacing feature; it is
	// left unchanged and counts as successfully handled.
	Skipped
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "Loaded"
	case Resolved:
		return "Resolved"
	case Built:
		return "Built"
	case Verified:
		return "Verified"
	case Accepted:
		return "Accepted"
	case Rejected:
		return "Rejected"
	case Skipped:
		return "Skipped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Outcome is the terminal pipeline state of one font or sub-font.
type Outcome struct {
	Path     string
	Fontname string
	Index    int // sub-font index within a collection, -1 for standalone fonts
	State    State
	Err      error
	Failing  []otverify.CaseResult // failing probes, for rejected fonts
	Features []ot.Tag              // features added on acceptance
}

// Summary renders the single outcome line each font gets on the console.
func (o Outcome) Summary() string {
	name := o.Path
	if o.Index >= 0 {
		name = fmt.Sprintf("%s#%d", name, o.Index)
	}
	switch o.State {
	case Accepted:
		tags := make([]string, len(o.Features))
		for i, t := range o.Features {
			tags[i] = t.String()
		}
		return fmt.Sprintf("%s: accepted (%s)", name, strings.Join(tags, ", "))
	case Skipped:
		return fmt.Sprintf("%s: skipped, already has spacing features", name)
	case Rejected:
		if len(o.Failing) > 0 {
			details := make([]string, len(o.Failing))
			for i, f := range o.Failing {
				details[i] = fmt.Sprintf("%s (%s)", f.Probe.Name, f.Detail)
			}
			return fmt.Sprintf("%s: rejected, failing probes: %s", name, strings.Join(details, "; "))
		}
		return fmt.Sprintf("%s: rejected at %s: %v", name, o.failedStage(), o.Err)
	}
	return fmt.Sprintf("%s: %s", name, o.State)
}

func (o Outcome) failedStage() string {
	switch {
	case errors.Is(o.Err, ot.ErrUnsupportedFont):
		return "Resolved"
	case errors.Is(o.Err, ot.ErrIncompatibleFont), errors.Is(o.Err, ot.ErrNoApplicableGlyphs):
		return "Built"
	case errors.Is(o.Err, otverify.ErrVerificationFailure):
		return "Verified"
	}
	return "Loaded"
}

// Report aggregates the outcomes of a batch run.
type Report struct {
	Outcomes []Outcome
}

// AllAccepted reports whether every font ended Accepted or Skipped. The
// process exit code is derived from this.
func (r *Report) AllAccepted() bool {
	for _, o := range r.Outcomes {
		if o.State != Accepted && o.State != Skipped {
			return false
		}
	}
	return true
}
