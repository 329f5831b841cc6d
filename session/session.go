// Package session implements the interactive verification protocol: a
// per-user, per-scope state machine driven by typed user events and
// wall-clock deadlines, plus the registry that guarantees at most one
// active session per key.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"verify-bot/database"
	"verify-bot/eval"
	"verify-bot/metrics"
	"verify-bot/models"
	"verify-bot/realmeye"
	"verify-bot/utils"
)

const (
	// DefaultNameTimeout bounds the name-selection wait state.
	DefaultNameTimeout = 2 * time.Minute
	// DefaultProofWindow bounds everything from the proof prompt to a
	// terminal state. Fixed at entry; retries do not extend it.
	DefaultProofWindow = 20 * time.Minute
)

// Prompter delivers a session's user-facing prompts. The handlers
// package implements it over Discord interactions; tests use a fake.
type Prompter interface {
	// PromptNameSelection offers previously verified names (possibly
	// none) plus the option to provide a new one.
	PromptNameSelection(known []string) error
	// PromptProof shows the one-time code, the scope's requirement
	// list, and any issues from the previous check attempt.
	PromptProof(code string, requirements []string, issues []eval.Issue) error
	// PromptManualConsent offers escalation to human review.
	PromptManualConsent(issues []eval.Issue) error
	// NotifyOutcome reports a terminal disposition.
	NotifyOutcome(outcome Outcome, issues []eval.Issue, detail string) error
}

// Store is the slice of the identity store a session reads and writes.
type Store interface {
	KnownNames(userID string) ([]string, error)
	GetOrCreatePolicy(scopeID string) (models.RequirementPolicy, error)
	SaveVerifiedName(userID, name string) error
	BlacklistMatch(name string) (*database.BlacklistEntry, error)
	CompletionCount(scopeID, category, subject string) (int, error)
}

// Granter applies a successful outcome. Failure is logged, never rolled
// back into the session result.
type Granter interface {
	Grant(userID, guildID, scopeID string) error
}

// Escalator records a manual-review handoff durably. Implemented by the
// review coordinator.
type Escalator interface {
	Escalate(entry *models.ManualVerificationEntry, issues []eval.Issue) error
}

// AuditLog receives moderator-facing protocol events keyed by logical
// channel role.
type AuditLog interface {
	Event(guildID, role, summary, detail string)
}

// Deps bundles a manager's collaborators.
type Deps struct {
	Profiles  realmeye.Service
	Store     Store
	Granter   Granter
	Escalator Escalator
	Audit     AuditLog
}

// Config describes one session to start.
type Config struct {
	UserID   string
	GuildID  string
	ScopeID  string
	UserName string // display name, for logs only
	// MainScope sessions run name selection and persist the verified
	// name on success.
	MainScope bool
	// Name is the pre-resolved candidate name for sub-scope sessions.
	Name string
	// HasReviewQueue is whether the scope has a review destination.
	HasReviewQueue bool
	Prompter       Prompter
}

// Manager creates sessions and routes events to them.
type Manager struct {
	registry    *Registry
	deps        Deps
	nameTimeout time.Duration
	proofWindow time.Duration
}

// NewManager creates a session manager with the default deadlines.
func NewManager(deps Deps) *Manager {
	return &Manager{
		registry:    NewRegistry(),
		deps:        deps,
		nameTimeout: DefaultNameTimeout,
		proofWindow: DefaultProofWindow,
	}
}

// Registry exposes the manager's session registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Start launches a new session. It fails with ErrSessionActive when the
// (user, scope) key is occupied; the existing session is untouched.
// Callers validate beforehand that membership is not already granted.
func (m *Manager) Start(ctx context.Context, cfg Config) (*Session, error) {
	s := &Session{
		UserID:      cfg.UserID,
		GuildID:     cfg.GuildID,
		ScopeID:     cfg.ScopeID,
		Name:        cfg.Name,
		CreatedAt:   time.Now(),
		mainScope:   cfg.MainScope,
		hasReview:   cfg.HasReviewQueue,
		prompter:    cfg.Prompter,
		deps:        m.deps,
		registry:    m.registry,
		nameTimeout: m.nameTimeout,
		proofWindow: m.proofWindow,
		events:      make(chan Event, 8),
		done:        make(chan struct{}),
	}
	if err := m.registry.acquire(s); err != nil {
		return nil, err
	}

	metrics.SessionsStarted.WithLabelValues(cfg.GuildID).Inc()
	m.deps.Audit.Event(cfg.GuildID, utils.RoleSessionStarted,
		"Verification started",
		"user "+cfg.UserName+" ("+cfg.UserID+"), scope "+cfg.ScopeID)

	go s.run(ctx)
	return s, nil
}

// Deliver routes an event to the active session for a key. It reports
// whether a session accepted the event.
func (m *Manager) Deliver(userID, scopeID string, ev Event) bool {
	s, ok := m.registry.Get(userID, scopeID)
	if !ok {
		return false
	}
	return s.deliver(ev)
}

// Session is one in-flight verification. It is in-memory only; a
// process restart loses it and the user starts over.
type Session struct {
	UserID    string
	GuildID   string
	ScopeID   string
	Name      string
	Code      string
	CreatedAt time.Time
	// Deadline is the absolute proof-window expiry, set on entry to the
	// proof state.
	Deadline time.Time

	mainScope   bool
	hasReview   bool
	prompter    Prompter
	deps        Deps
	registry    *Registry
	nameTimeout time.Duration
	proofWindow time.Duration

	events  chan Event
	done    chan struct{}
	outcome Outcome
}

// Outcome returns the terminal outcome; valid only after Done is closed.
func (s *Session) Outcome() Outcome {
	return s.outcome
}

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// deliver hands an event to the session without blocking. Events sent
// after termination (or past a full buffer) are dropped.
func (s *Session) deliver(ev Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

func (s *Session) run(ctx context.Context) {
	outcome := s.lifecycle(ctx)
	s.outcome = outcome
	close(s.done)
	s.registry.release(s)

	metrics.SessionOutcomes.WithLabelValues(s.GuildID, outcome.String()).Inc()
	role := utils.RoleFailure
	if outcome == OutcomeSuccess {
		role = utils.RoleSuccess
	}
	s.deps.Audit.Event(s.GuildID, role,
		"Verification "+strings.ToLower(outcome.String()),
		"user "+s.UserID+", scope "+s.ScopeID+", name "+orUnknown(s.Name))
}

func (s *Session) lifecycle(ctx context.Context) Outcome {
	if s.mainScope && s.Name == "" {
		outcome, ok := s.selectName()
		if !ok {
			return outcome
		}
	}
	if s.Name == "" {
		// Nothing to verify against; treated as a refused start that
		// slipped past validation.
		s.notify(OutcomeFail, nil, "No profile name to verify.")
		return OutcomeFail
	}
	return s.proofLoop(ctx)
}

// selectName runs the bounded name-selection wait state.
func (s *Session) selectName() (Outcome, bool) {
	known, err := s.deps.Store.KnownNames(s.UserID)
	if err != nil {
		logrus.Warnf("known-name lookup failed for %s: %v", s.UserID, err)
	}
	if err := s.prompter.PromptNameSelection(known); err != nil {
		logrus.Warnf("name prompt failed for %s: %v", s.UserID, err)
	}

	deadline := time.Now().Add(s.nameTimeout)
	for {
		ev, timedOut := s.wait(deadline)
		if timedOut {
			s.notify(OutcomeTimedOut, nil, "No name was chosen in time.")
			return OutcomeTimedOut, false
		}
		switch ev := ev.(type) {
		case Canceled:
			s.notify(OutcomeCanceled, nil, "")
			return OutcomeCanceled, false
		case NameSelected:
			name := strings.TrimSpace(ev.Name)
			if name == "" {
				continue
			}
			s.Name = name
			return 0, true
		}
	}
}

// proofLoop runs the proof wait state and every check that follows,
// bounded by the single fixed proof-window deadline.
func (s *Session) proofLoop(ctx context.Context) Outcome {
	s.Code = NewProofCode()
	s.Deadline = time.Now().Add(s.proofWindow)

	requirements := s.describePolicy()
	if err := s.prompter.PromptProof(s.Code, requirements, nil); err != nil {
		logrus.Warnf("proof prompt failed for %s: %v", s.UserID, err)
	}

	for {
		ev, timedOut := s.wait(s.Deadline)
		if timedOut {
			s.notify(OutcomeTimedOut, nil, "The verification window expired.")
			return OutcomeTimedOut
		}
		switch ev.(type) {
		case Canceled:
			s.notify(OutcomeCanceled, nil, "")
			return OutcomeCanceled
		case ProofCheckRequested:
			if outcome, done := s.check(ctx); done {
				return outcome
			}
		}
	}
}

// check performs one full verification attempt: fresh snapshot,
// blacklist, proof code, then the requirement evaluator. It returns
// done=false when the session should keep waiting in the proof state.
func (s *Session) check(ctx context.Context) (Outcome, bool) {
	profile, err := s.deps.Profiles.GetPlayerInfo(ctx, s.Name)
	if err != nil {
		s.reprompt([]eval.Issue{{
			Key:    "Profile Unavailable",
			Detail: "Your profile could not be fetched. Wait a moment and check again.",
		}})
		return 0, false
	}

	hit, err := s.deps.Store.BlacklistMatch(s.Name)
	if err != nil {
		logrus.Errorf("blacklist lookup failed for %s: %v", s.Name, err)
		s.reprompt([]eval.Issue{{
			Key:    "Check Failed",
			Detail: "The check could not be completed. Try again in a moment.",
		}})
		return 0, false
	}
	if hit != nil {
		s.notify(OutcomeFail, nil,
			"This profile cannot be verified here. Reference: "+hit.ModerationRef)
		s.deps.Audit.Event(s.GuildID, utils.RoleFailure,
			"Blacklisted profile",
			"user "+s.UserID+" attempted to verify as "+s.Name+" (ref "+hit.ModerationRef+")")
		return OutcomeFail, true
	}

	if !profile.HasInDescription(s.Code) {
		s.reprompt([]eval.Issue{{
			Key:    "Code Not Found",
			Detail: "The code was not found in your profile description. Add it, wait for the profile to update, and check again.",
		}})
		return 0, false
	}

	// Re-read the policy every attempt; it may change between checks.
	policy, err := s.deps.Store.GetOrCreatePolicy(s.ScopeID)
	if err != nil {
		logrus.Errorf("policy load failed for scope %s: %v", s.ScopeID, err)
		s.reprompt([]eval.Issue{{
			Key:    "Check Failed",
			Detail: "The check could not be completed. Try again in a moment.",
		}})
		return 0, false
	}

	result := eval.Evaluate(ctx, profile, policy,
		eval.Params{HasReviewQueue: s.hasReview}, s.lookups())
	metrics.EvaluatorVerdicts.WithLabelValues(result.Verdict.String()).Inc()

	switch result.Verdict {
	case eval.VerdictFail:
		issues := append(append([]eval.Issue{}, result.Fatal...), result.Manual...)
		s.notify(OutcomeFail, issues, "")
		return OutcomeFail, true

	case eval.VerdictTryAgain:
		issues := append(append([]eval.Issue{}, result.TryAgain...), result.Manual...)
		s.reprompt(issues)
		return 0, false

	case eval.VerdictManual:
		return s.manualPrompt(result.Manual)

	default: // PASS
		return s.succeed(), true
	}
}

// manualPrompt offers escalation and waits for consent within the
// remaining proof window.
func (s *Session) manualPrompt(issues []eval.Issue) (Outcome, bool) {
	if err := s.prompter.PromptManualConsent(issues); err != nil {
		logrus.Warnf("manual-consent prompt failed for %s: %v", s.UserID, err)
	}

	for {
		ev, timedOut := s.wait(s.Deadline)
		if timedOut {
			s.notify(OutcomeTimedOut, nil, "The verification window expired.")
			return OutcomeTimedOut, true
		}
		switch ev := ev.(type) {
		case Canceled:
			s.notify(OutcomeCanceled, nil, "")
			return OutcomeCanceled, true
		case ManualConsent:
			if !ev.Accept {
				// Non-punitive: the user may start a new session later.
				s.notify(OutcomeFail, issues,
					"You declined manual review. You can verify again at any time.")
				return OutcomeFail, true
			}
			return s.escalate(issues)
		}
	}
}

func (s *Session) escalate(issues []eval.Issue) (Outcome, bool) {
	entry := &models.ManualVerificationEntry{
		UserID:        s.UserID,
		GuildID:       s.GuildID,
		ScopeID:       s.ScopeID,
		CandidateName: s.Name,
	}
	err := s.deps.Escalator.Escalate(entry, issues)
	if errors.Is(err, database.ErrDuplicateEntry) {
		s.notify(OutcomeEscalated, nil,
			"You already have a pending review for this scope. A moderator will get to it.")
		return OutcomeEscalated, true
	}
	if err != nil {
		logrus.Errorf("manual escalation failed for %s/%s: %v", s.UserID, s.ScopeID, err)
		s.notify(OutcomeFail, nil,
			"Your review could not be recorded. Please try verifying again later.")
		return OutcomeFail, true
	}
	s.notify(OutcomeEscalated, nil,
		"Your profile was sent to the moderators for review. You will be notified of their decision.")
	return OutcomeEscalated, true
}

func (s *Session) succeed() Outcome {
	if err := s.deps.Granter.Grant(s.UserID, s.GuildID, s.ScopeID); err != nil {
		// Best effort: the pass stands even if the grant failed.
		logrus.Errorf("membership grant failed for %s/%s: %v", s.UserID, s.ScopeID, err)
	}
	if s.mainScope {
		if err := s.deps.Store.SaveVerifiedName(s.UserID, s.Name); err != nil {
			logrus.Errorf("verified-name save failed for %s: %v", s.UserID, err)
		}
	}
	s.notify(OutcomeSuccess, nil, "Welcome! You are now verified as "+s.Name+".")
	return OutcomeSuccess
}

// wait blocks until an event arrives or the deadline passes. A cancel
// that raced the deadline into the same processing step wins over the
// timeout; other raced events are discarded.
func (s *Session) wait(deadline time.Time) (Event, bool) {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case ev := <-s.events:
		return ev, false
	case <-timer.C:
		for {
			select {
			case ev := <-s.events:
				if _, ok := ev.(Canceled); ok {
					return ev, false
				}
			default:
				return nil, true
			}
		}
	}
}

func (s *Session) reprompt(issues []eval.Issue) {
	if err := s.prompter.PromptProof(s.Code, s.describePolicy(), issues); err != nil {
		logrus.Warnf("proof reprompt failed for %s: %v", s.UserID, err)
	}
	s.deps.Audit.Event(s.GuildID, utils.RoleStepUpdate,
		"Check did not pass yet",
		"user "+s.UserID+", scope "+s.ScopeID+", issues: "+issueKeys(issues))
}

func (s *Session) notify(outcome Outcome, issues []eval.Issue, detail string) {
	if err := s.prompter.NotifyOutcome(outcome, issues, detail); err != nil {
		logrus.Warnf("outcome notify failed for %s: %v", s.UserID, err)
	}
}

func (s *Session) describePolicy() []string {
	policy, err := s.deps.Store.GetOrCreatePolicy(s.ScopeID)
	if err != nil {
		logrus.Warnf("policy load for requirement list failed for scope %s: %v", s.ScopeID, err)
		return nil
	}
	return eval.Describe(policy)
}

func (s *Session) lookups() eval.Lookups {
	return eval.Lookups{
		Graveyard: func(ctx context.Context) (*models.GraveyardSummary, error) {
			return s.deps.Profiles.GetGraveyardSummary(ctx, s.Name)
		},
		Exaltations: func(ctx context.Context) (*models.ExaltationRecord, error) {
			return s.deps.Profiles.GetExaltations(ctx, s.Name)
		},
		LoggedCompletions: func(_ context.Context, category string) (int, error) {
			return s.deps.Store.CompletionCount(s.ScopeID, category, s.UserID)
		},
	}
}

// NewProofCode generates the one-time code the user places in their
// profile description.
func NewProofCode() string {
	return "VRF-" + strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
}

func issueKeys(issues []eval.Issue) string {
	keys := make([]string, len(issues))
	for i, issue := range issues {
		keys[i] = issue.Key
	}
	if len(keys) == 0 {
		return "none"
	}
	return strings.Join(keys, ", ")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
