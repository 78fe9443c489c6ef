package sat

import (
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// conflictUnit is the wall-clock budget attributed to a single conflict
// when approximating spec's conflict_budget on top of gini's public,
// wall-clock-bounded Try API (gini does not expose a raw conflict
// counter). See DESIGN.md, "Conflict budget vs. gini's public solve API".
const conflictUnit = 50 * time.Microsecond

// giniSolver adapts *gini.Gini to the Solver interface.
type giniSolver struct {
	g        *gini.Gini
	deadline time.Time // zero value means "no deadline"
}

// NewGiniSolver returns a Solver backed by a fresh gini instance.
func NewGiniSolver() Solver {
	return &giniSolver{g: gini.New()}
}

// NewVar allocates a fresh variable through gini's own Lit(), the same
// allocator the teacher's logic.C circuit builder uses (c.Lit()), rather
// than tracking a separate counter that could drift from the solver's own
// internal variable table.
func (s *giniSolver) NewVar() z.Var {
	return s.g.Lit().Var()
}

func (s *giniSolver) SetNumVars(n int) {
	// gini grows its variable tables lazily as literals referencing higher
	// variables are used; there is no separate preallocation call to make,
	// so this exists purely for contract parity with spec §6.
}

func (s *giniSolver) AddClause(lits ...z.Lit) bool {
	for _, m := range lits {
		s.g.Add(m)
	}
	s.g.Add(z.Lit(0))
	return true
}

func (s *giniSolver) Solve(assumptions []z.Lit, conflictBudget int64) Result {
	s.g.Assume(assumptions...)

	timeout := s.remainingDeadline()
	if conflictBudget > 0 {
		budgeted := time.Duration(conflictBudget) * conflictUnit
		if timeout <= 0 || budgeted < timeout {
			timeout = budgeted
		}
	}

	var outcome int
	if timeout > 0 {
		outcome = s.g.Try(timeout)
	} else {
		outcome = s.g.Solve()
	}
	return Result(outcome)
}

// remainingDeadline returns the time left until s.deadline, or 0 if there
// is none or it has already passed (the latter still attempts a solve:
// the caller decides whether to short-circuit on an expired context).
func (s *giniSolver) remainingDeadline() time.Duration {
	if s.deadline.IsZero() {
		return 0
	}
	d := time.Until(s.deadline)
	if d < 0 {
		d = 0
	}
	return d
}

func (s *giniSolver) VarValue(v z.Var) bool {
	return s.g.Value(v.Pos())
}

func (s *giniSolver) Compress() {
	// gini compacts its own clause/watch lists internally; exposed here
	// only so callers written against spec's sat_solver_compress contract
	// have something to call between incremental queries.
}

func (s *giniSolver) SetRuntimeLimit(d time.Duration) {
	if d <= 0 {
		s.deadline = time.Time{}
		return
	}
	s.deadline = time.Now().Add(d)
}

func (s *giniSolver) Close() {}
