// Package eval implements the requirement evaluation engine: a pure
// mapping from a profile snapshot and a requirement policy to a
// classified verdict. It performs no I/O of its own; auxiliary data
// sources are supplied as lazy lookup closures.
package eval

// Verdict is the outcome class of one evaluation.
type Verdict int

const (
	VerdictPass Verdict = iota
	VerdictTryAgain
	VerdictManual
	VerdictFail
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "PASS"
	case VerdictTryAgain:
		return "TRY_AGAIN"
	case VerdictManual:
		return "MANUAL"
	case VerdictFail:
		return "FAIL"
	}
	return "UNKNOWN"
}

// Issue is one classified requirement finding. Key is a stable short
// label, Detail the user-facing explanation.
type Issue struct {
	Key    string
	Detail string
}

// Result is the full evaluation outcome. The verdict follows the fixed
// precedence FATAL > TRY_AGAIN > MANUAL > PASS over the three lists.
type Result struct {
	Verdict  Verdict
	Fatal    []Issue
	TryAgain []Issue
	Manual   []Issue
}

// report accumulates issues while the rule list runs.
type report struct {
	fatal    []Issue
	tryAgain []Issue
	manual   []Issue
}

func (r *report) addFatal(key, detail string)    { r.fatal = append(r.fatal, Issue{key, detail}) }
func (r *report) addTryAgain(key, detail string) { r.tryAgain = append(r.tryAgain, Issue{key, detail}) }
func (r *report) addManual(key, detail string)   { r.manual = append(r.manual, Issue{key, detail}) }

// resolve applies the verdict precedence, including the downgrade of
// MANUAL to FAIL when the scope has nowhere to escalate to.
func (r *report) resolve(hasReviewQueue bool) Result {
	res := Result{Fatal: r.fatal, TryAgain: r.tryAgain, Manual: r.manual}
	switch {
	case len(r.fatal) > 0:
		res.Verdict = VerdictFail
	case len(r.tryAgain) > 0:
		res.Verdict = VerdictTryAgain
	case len(r.manual) > 0:
		if hasReviewQueue {
			res.Verdict = VerdictManual
		} else {
			res.Verdict = VerdictFail
		}
	default:
		res.Verdict = VerdictPass
	}
	return res
}

// Params carries per-scope facts the evaluator needs beyond the policy
// tree itself.
type Params struct {
	// HasReviewQueue is true when the scope has a manual-review
	// destination configured.
	HasReviewQueue bool
}
