package session

// Event is a user (or moderator-tool) action delivered to a running
// session. Deadlines are not events; each wait state owns its timer.
type Event interface {
	isEvent()
}

// NameSelected carries the candidate profile name the user picked or
// typed during name selection.
type NameSelected struct {
	Name string
}

// ProofCheckRequested is the explicit "check now" action. Checking is
// never triggered by a timer or by polling.
type ProofCheckRequested struct{}

// Canceled is the explicit user cancel. It is accepted in every wait
// state and wins over a timeout that becomes eligible in the same step.
type Canceled struct{}

// ManualConsent is the user's answer to the manual-review offer.
type ManualConsent struct {
	Accept bool
}

func (NameSelected) isEvent()        {}
func (ProofCheckRequested) isEvent() {}
func (Canceled) isEvent()            {}
func (ManualConsent) isEvent()       {}

// Outcome is a session's terminal disposition.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFail
	OutcomeCanceled
	OutcomeTimedOut
	// OutcomeEscalated means the session ended with a durably recorded
	// manual-review entry; the moderator decision happens later,
	// outside the session.
	OutcomeEscalated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "SUCCESS"
	case OutcomeFail:
		return "FAIL"
	case OutcomeCanceled:
		return "CANCELED"
	case OutcomeTimedOut:
		return "TIMED_OUT"
	case OutcomeEscalated:
		return "ESCALATED"
	}
	return "UNKNOWN"
}
