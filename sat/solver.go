// Package sat defines the minimal incremental-SAT-solver contract the
// sweeper needs from its underlying solver collaborator (spec §6): vars,
// clauses, assumption-scoped solving, value extraction and resource
// limits. One implementation, backed by github.com/go-air/gini, is
// provided in gini.go.
package sat

import (
	"time"

	"github.com/go-air/gini/z"
)

// Result is the trivalent outcome of a solve call.
type Result int8

const (
	Undef Result = 0
	Sat   Result = 1
	Unsat Result = -1
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "undef"
	}
}

func (r Result) IsSat() bool   { return r == Sat }
func (r Result) IsUnsat() bool { return r == Unsat }
func (r Result) IsUndef() bool { return r == Undef }

// Solver is the collaborator contract from spec §6: "new, delete,
// set_num_vars, add_clause, solve_with_assumptions(conflict_budget),
// var_value, compress, set_runtime_limit".
type Solver interface {
	// NewVar allocates and returns a fresh SAT variable.
	NewVar() z.Var

	// SetNumVars hints the expected variable count to the solver so it can
	// preallocate; it is never required for correctness.
	SetNumVars(n int)

	// AddClause asserts lits as a clause. A false return indicates the
	// solver rejected a well-formed clause, which spec §4.3 treats as a
	// fatal programming-invariant violation, never a recoverable error.
	AddClause(lits ...z.Lit) bool

	// Solve runs the solver under assumptions, capped at conflictBudget
	// conflicts (0 = unlimited) and any previously configured runtime
	// deadline, whichever is tighter.
	Solve(assumptions []z.Lit, conflictBudget int64) Result

	// VarValue returns the model value of v from the most recent Sat
	// result. Undefined otherwise.
	VarValue(v z.Var) bool

	// Compress gives the solver a chance to compact its clause database
	// between incremental queries.
	Compress()

	// SetRuntimeLimit installs a wall-clock deadline. A zero duration
	// clears any existing deadline.
	SetRuntimeLimit(d time.Duration)

	// Close releases the solver and any resources it owns.
	Close()
}
