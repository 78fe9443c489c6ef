package sweeper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/aigsweep/aig"
	"github.com/operator-framework/aigsweep/sat"
)

func newTestEngine(t *testing.T) (*aig.Manager, *equivEngine, func()) {
	t.Helper()
	m := aig.NewManager()
	s := sat.NewGiniSolver()
	cb := newCnfBuilder(m, s)
	eng := newEquivEngine(m, cb, nil)
	return m, eng, func() { s.Close() }
}

func TestCheckEquivSameLiteralIsEquivalent(t *testing.T) {
	m, eng, done := newTestEngine(t)
	defer done()

	a := m.AppendInput()
	res := eng.CheckEquiv(a, a, nil, 0)
	assert.Equal(t, Equivalent, res.Verdict)
}

func TestCheckEquivStructurallyEqualConeIsEquivalent(t *testing.T) {
	m, eng, done := newTestEngine(t)
	defer done()

	a := m.AppendInput()
	b := m.AppendInput()
	f1 := m.HashAnd(a, b)
	f2 := m.HashAnd(b, a) // commuted, hashes to the same node

	res := eng.CheckEquiv(f1, f2, nil, 0)
	assert.Equal(t, Equivalent, res.Verdict)
}

func TestCheckEquivDifferentConesAreNotEquivalent(t *testing.T) {
	m, eng, done := newTestEngine(t)
	defer done()

	a := m.AppendInput()
	b := m.AppendInput()
	andAB := m.HashAnd(a, b)
	orAB := m.HashOr(a, b)

	res := eng.CheckEquiv(andAB, orAB, nil, 0)
	require.Equal(t, NotEquivalent, res.Verdict)
	require.Len(t, res.Cex, 2)

	vals := m.Simulate(res.Cex)
	assert.NotEqual(t, vals[andAB], vals[orAB])
}

func TestCheckEquivConstantsAreNotEquivalent(t *testing.T) {
	_, eng, done := newTestEngine(t)
	defer done()

	res := eng.CheckEquiv(aig.ConstLit0, aig.ConstLit1, nil, 0)
	assert.Equal(t, NotEquivalent, res.Verdict)
}

func TestCheckCondUnsatDetectsContradiction(t *testing.T) {
	m, eng, done := newTestEngine(t)
	defer done()

	a := m.AppendInput()
	conds := []aig.Lit{a, a.Not()}

	res := eng.CheckCondUnsat(conds, 0)
	assert.Equal(t, CondUnsat, res.Kind)
}

func TestCheckCondUnsatSatisfiableConditions(t *testing.T) {
	m, eng, done := newTestEngine(t)
	defer done()

	a := m.AppendInput()
	b := m.AppendInput()
	conds := []aig.Lit{a, b.Not()}

	res := eng.CheckCondUnsat(conds, 0)
	require.Equal(t, CondSat, res.Kind)
	require.Len(t, res.Cex, 2)
	assert.True(t, res.Cex[0])
	assert.False(t, res.Cex[1])
}

func TestCheckEquivComplementaryLiteralsAreNeverEquivalent(t *testing.T) {
	m, eng, done := newTestEngine(t)
	defer done()

	a := m.AppendInput()
	b := m.AppendInput()
	f := m.HashAnd(a, b)

	res := eng.CheckEquiv(f, f.Not(), nil, 0)
	assert.Equal(t, NotEquivalent, res.Verdict)
}

func TestCheckEquivComplementaryLiteralsIgnoreContradictoryConditions(t *testing.T) {
	m, eng, done := newTestEngine(t)
	defer done()

	a := m.AppendInput()
	b := m.AppendInput()
	f := m.HashAnd(a, b)

	// A self-contradictory condition stack makes both polarity SAT solves
	// vacuously UNSAT; the f vs f.Not() short-circuit must still fire and
	// report NotEquivalent rather than falling through to the general
	// two-polarity solve and reporting Equivalent.
	contradictory := []aig.Lit{a, a.Not()}

	res := eng.CheckEquiv(f, f.Not(), contradictory, 0)
	assert.Equal(t, NotEquivalent, res.Verdict)
}

func TestCheckEquivUnderConditionRespectsAssumption(t *testing.T) {
	m, eng, done := newTestEngine(t)
	defer done()

	a := m.AppendInput()
	b := m.AppendInput()
	// Under the assumption a, (a AND b) is equivalent to b.
	andAB := m.HashAnd(a, b)

	res := eng.CheckEquiv(andAB, b, []aig.Lit{a}, 0)
	assert.Equal(t, Equivalent, res.Verdict)

	// Without the assumption, they are not.
	res = eng.CheckEquiv(andAB, b, nil, 0)
	assert.Equal(t, NotEquivalent, res.Verdict)
}
