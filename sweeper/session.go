// Package sweeper implements the incremental SAT-based equivalence
// sweeper: probe registry, condition stack, CNF builder, two-polarity
// equivalence engine, and logic-cone extractor, composed behind a single
// Session entry point (spec §1-§5). It is the Go translation of the
// Gia_Sweeper_t API in original_source/src/aig/gia/giaSweeper.c.
package sweeper

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/operator-framework/aigsweep/aig"
	"github.com/operator-framework/aigsweep/sat"
)

// Option configures a Session at construction time, following the
// functional-options pattern used throughout the operator-lifecycle-manager
// resolver package.
type Option func(*Session) error

// WithConflictBudget sets the default per-query conflict budget (0 means
// unbounded) used whenever a caller doesn't pass one explicitly via
// SetConflictLimit.
func WithConflictBudget(n int64) Option {
	return func(s *Session) error {
		if n < 0 {
			return &ConfigError{Option: "WithConflictBudget", Err: errNegativeBudget}
		}
		s.conflictBudget = n
		return nil
	}
}

// WithRuntimeLimit installs a wall-clock deadline on the underlying solver.
func WithRuntimeLimit(d time.Duration) Option {
	return func(s *Session) error {
		s.runtimeLimit = d
		s.solver.SetRuntimeLimit(d)
		return nil
	}
}

// WithLogger overrides the default logrus.FieldLogger used for diagnostic
// output. A nil logger is rejected rather than silently falling back, so
// misconfiguration is visible at construction time.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) error {
		if log == nil {
			return &ConfigError{Option: "WithLogger", Err: errNilLogger}
		}
		s.log = log
		return nil
	}
}

// WithMetrics registers a StatsRecorder (typically one built with
// NewMetrics) to observe every query the Session issues, in addition to
// the in-memory Stats counters always tracked.
func WithMetrics(rec StatsRecorder) Option {
	return func(s *Session) error {
		if rec == nil {
			return &ConfigError{Option: "WithMetrics", Err: errNilRecorder}
		}
		s.recorder = rec
		return nil
	}
}

// WithSolver overrides the SAT solver collaborator, normally used only by
// tests that want a solver double instead of the real gini-backed one.
func WithSolver(s sat.Solver) Option {
	return func(sess *Session) error {
		if s == nil {
			return &ConfigError{Option: "WithSolver", Err: errNilSolver}
		}
		sess.solver = s
		return nil
	}
}

// Session is the sweeper's single entry point: it owns an AIG, the
// probe/condition bookkeeping, the incremental CNF encoding and the
// equivalence engine built on top of it (spec §5).
type Session struct {
	aigMgr *aig.Manager
	solver sat.Solver
	cnf    *cnfBuilder
	probes *probeRegistry
	conds  *conditionStack
	equiv  *equivEngine

	conflictBudget int64
	runtimeLimit   time.Duration
	log            logrus.FieldLogger
	recorder       StatsRecorder

	closed bool
}

// New constructs a Session over a fresh, empty AIG. Callers build up the
// AIG through Session.AIG() before issuing any queries.
func New(opts ...Option) (*Session, error) {
	s := &Session{
		aigMgr:   aig.NewManager(),
		solver:   sat.NewGiniSolver(),
		probes:   newProbeRegistry(),
		conds:    newConditionStack(),
		log:      logrus.StandardLogger(),
		recorder: noopRecorder{},
	}

	var errs []error
	for _, opt := range opts {
		if err := opt(s); err != nil {
			errs = append(errs, err)
		}
	}
	if err := aggregateConfigErrors(errs); err != nil {
		return nil, err
	}

	s.cnf = newCnfBuilder(s.aigMgr, s.solver)
	s.equiv = newEquivEngine(s.aigMgr, s.cnf, s.recorder)
	return s, nil
}

// AIG returns the Session's underlying AIG, for callers building up the
// network before or between queries.
func (s *Session) AIG() *aig.Manager { return s.aigMgr }

// ProbeCreate registers lit as a new probe and returns its ID, even if lit
// already has a live probe (spec §4.1).
func (s *Session) ProbeCreate(lit aig.Lit) ProbeID {
	return s.probes.create(lit)
}

// ProbeFind returns lit's existing probe, bumping its refcount, or creates
// a fresh one.
func (s *Session) ProbeFind(lit aig.Lit) ProbeID {
	return s.probes.find(lit)
}

// ProbeDeref releases one reference to id, tombstoning it once the
// refcount reaches zero. Calling it on an already-dead probe panics.
func (s *Session) ProbeDeref(id ProbeID) {
	s.probes.deref(id)
}

// ProbeLit returns the literal a live probe names.
func (s *Session) ProbeLit(id ProbeID) aig.Lit {
	return s.probes.lit(id)
}

// CondPush scopes every subsequent query under the additional assumption
// that probe id's literal holds, until the matching CondPop.
func (s *Session) CondPush(id ProbeID) {
	s.conds.push(id, s.probes.lit(id))
}

// CondPop removes the innermost condition, returning its probe ID.
func (s *Session) CondPop() ProbeID {
	return s.conds.pop()
}

// CondDepth reports how many conditions are currently active.
func (s *Session) CondDepth() int {
	return s.conds.depth()
}

// WithCondition pushes id, runs fn, and pops it again even if fn panics —
// the scoped-guard idiom for condition-stack discipline spec §4.2
// recommends callers follow by hand.
func (s *Session) WithCondition(id ProbeID, fn func()) {
	s.CondPush(id)
	defer s.CondPop()
	fn()
}

// CheckEquiv decides whether the literals named by p1 and p2 are
// equivalent under the active condition stack, using the Session's default
// conflict budget. ctx is consulted two ways: an already-expired context
// short-circuits to Undecided without asking the solver, and a context
// carrying a deadline tighter than the Session's configured runtime limit
// temporarily tightens the solver's deadline for this call only (spec §5),
// since gini's Gini has no way to observe ctx mid-search otherwise.
func (s *Session) CheckEquiv(ctx context.Context, p1, p2 ProbeID) EquivResult {
	if err := ctx.Err(); err != nil {
		return EquivResult{Verdict: Undecided}
	}
	defer s.withDeadline(ctx)()
	l1, l2 := s.probes.lit(p1), s.probes.lit(p2)
	res := s.equiv.CheckEquiv(l1, l2, s.conds.currentLits(), s.conflictBudget)
	s.log.WithField("verdict", res.Verdict).Debug("sweeper: checked equivalence")
	return res
}

// CheckEquivLits is CheckEquiv for raw AIG literals, for callers that
// haven't registered a probe for one or both sides.
func (s *Session) CheckEquivLits(ctx context.Context, l1, l2 aig.Lit) EquivResult {
	if err := ctx.Err(); err != nil {
		return EquivResult{Verdict: Undecided}
	}
	defer s.withDeadline(ctx)()
	res := s.equiv.CheckEquiv(l1, l2, s.conds.currentLits(), s.conflictBudget)
	s.log.WithField("verdict", res.Verdict).Debug("sweeper: checked equivalence")
	return res
}

// CheckCondUnsat reports whether the active condition stack is jointly
// unsatisfiable.
func (s *Session) CheckCondUnsat(ctx context.Context) CondResult {
	if err := ctx.Err(); err != nil {
		return CondResult{Kind: CondUndecided}
	}
	defer s.withDeadline(ctx)()
	res := s.equiv.CheckCondUnsat(s.conds.currentLits(), s.conflictBudget)
	s.log.WithField("kind", res.Kind).Debug("sweeper: checked condition-stack satisfiability")
	return res
}

// withDeadline tightens the solver's runtime limit to ctx's deadline for a
// single solve call, when that deadline is tighter than the Session's own
// configured limit, and returns a func restoring the configured limit.
func (s *Session) withDeadline(ctx context.Context) func() {
	dl, ok := ctx.Deadline()
	if !ok {
		return func() {}
	}
	remaining := time.Until(dl)
	if s.runtimeLimit > 0 && s.runtimeLimit < remaining {
		return func() {}
	}
	s.solver.SetRuntimeLimit(remaining)
	return func() { s.solver.SetRuntimeLimit(s.runtimeLimit) }
}

// SetConflictLimit changes the default per-query conflict budget used by
// CheckEquiv/CheckCondUnsat from this point on.
func (s *Session) SetConflictLimit(n int64) {
	s.conflictBudget = n
}

// SetRuntimeLimit installs a wall-clock deadline on the underlying solver,
// clearing any previous one if d is zero.
func (s *Session) SetRuntimeLimit(d time.Duration) {
	s.runtimeLimit = d
	s.solver.SetRuntimeLimit(d)
}

// Extract rebuilds the logic cone reachable from lits as a fresh, standalone
// AIG, attaching outputNames to its primary outputs (nil leaves them
// unnamed) and duplicating whichever of src's input names survive onto the
// reachable inputs.
func (s *Session) Extract(lits []aig.Lit, outputNames []string) *aig.Manager {
	return Extract(s.aigMgr, lits, outputNames)
}

// Stats returns a snapshot of the query counters accumulated so far.
func (s *Session) Stats() Stats {
	return s.equiv.stats
}

// IsSweeping reports whether the Session is still usable: false once
// Close has been called.
func (s *Session) IsSweeping() bool {
	return !s.closed
}

// Close releases the underlying SAT solver. The Session must not be used
// afterward.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.solver.Close()
	s.closed = true
}
