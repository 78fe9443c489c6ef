package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/aigsweep/aig"
	"github.com/operator-framework/aigsweep/sat"
)

// recordingSolver wraps a real solver and records every SetRuntimeLimit
// call, so tests can assert on how a context deadline gets translated
// without reaching into gini's internals.
type recordingSolver struct {
	sat.Solver
	limits []time.Duration
}

func (r *recordingSolver) SetRuntimeLimit(d time.Duration) {
	r.limits = append(r.limits, d)
	r.Solver.SetRuntimeLimit(d)
}

func TestSessionEndToEndEquivalence(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	defer s.Close()

	m := s.AIG()
	a := m.AppendInput()
	b := m.AppendInput()
	f1 := m.HashAnd(a, b)
	f2 := m.HashAnd(b, a)

	p1 := s.ProbeCreate(f1)
	p2 := s.ProbeCreate(f2)

	res := s.CheckEquiv(context.Background(), p1, p2)
	assert.Equal(t, Equivalent, res.Verdict)
	assert.True(t, s.IsSweeping())
}

func TestSessionConditionScopedEquivalence(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	defer s.Close()

	m := s.AIG()
	a := m.AppendInput()
	b := m.AppendInput()
	andAB := m.HashAnd(a, b)

	pa := s.ProbeCreate(a)
	pAndAB := s.ProbeCreate(andAB)
	pb := s.ProbeCreate(b)

	ctx := context.Background()
	s.WithCondition(pa, func() {
		res := s.CheckEquiv(ctx, pAndAB, pb)
		assert.Equal(t, Equivalent, res.Verdict)
		assert.Equal(t, 1, s.CondDepth())
	})
	assert.Equal(t, 0, s.CondDepth())

	res := s.CheckEquiv(ctx, pAndAB, pb)
	assert.Equal(t, NotEquivalent, res.Verdict)
}

func TestSessionCondUnsatPruning(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	defer s.Close()

	m := s.AIG()
	a := m.AppendInput()

	pa := s.ProbeCreate(a)
	pNotA := s.ProbeCreate(a.Not())

	s.CondPush(pa)
	s.CondPush(pNotA)
	defer func() {
		s.CondPop()
		s.CondPop()
	}()

	res := s.CheckCondUnsat(context.Background())
	assert.Equal(t, CondUnsat, res.Kind)
}

func TestSessionCheckEquivHonorsCanceledContext(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	defer s.Close()

	m := s.AIG()
	a := m.AppendInput()
	pa := s.ProbeCreate(a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := s.CheckEquiv(ctx, pa, pa)
	assert.Equal(t, Undecided, res.Verdict)
}

func TestSessionStatsAccumulate(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	defer s.Close()

	m := s.AIG()
	a := m.AppendInput()
	b := m.AppendInput()
	pa := s.ProbeCreate(a)
	pb := s.ProbeCreate(b)

	ctx := context.Background()
	s.CheckEquiv(ctx, pa, pb)
	s.CheckEquiv(ctx, pa, pa)

	stats := s.Stats()
	assert.Equal(t, uint64(2), stats.NumQueries)
}

func TestSessionExtractRoundTrips(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	defer s.Close()

	m := s.AIG()
	a := m.AppendInput()
	b := m.AppendInput()
	f := m.HashAnd(a, b)

	sub := s.Extract([]aig.Lit{f}, []string{"f"})
	require.Len(t, sub.Outputs(), 1)
	require.Len(t, sub.Inputs(), 2)
	assert.Equal(t, []string{"f"}, sub.OutputNames())
}

func TestOptionValidationAggregatesErrors(t *testing.T) {
	_, err := New(
		WithConflictBudget(-1),
		WithLogger(nil),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WithConflictBudget")
	assert.Contains(t, err.Error(), "WithLogger")
}

func TestWithLoggerOverridesDefault(t *testing.T) {
	log := logrus.New()
	s, err := New(WithLogger(log))
	require.NoError(t, err)
	defer s.Close()
	assert.Same(t, log, s.log)
}

func TestCheckEquivLogsVerdict(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	s, err := New(WithLogger(log))
	require.NoError(t, err)
	defer s.Close()

	a := s.AIG().AppendInput()
	pa := s.ProbeCreate(a)
	s.CheckEquiv(context.Background(), pa, pa)

	require.NotEmpty(t, hook.Entries)
	entry := hook.LastEntry()
	assert.Equal(t, "sweeper: checked equivalence", entry.Message)
	assert.Equal(t, Equivalent, entry.Data["verdict"])
}

func TestCloseIsIdempotent(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	s.Close()
	assert.False(t, s.IsSweeping())
	require.NotPanics(t, func() { s.Close() })
}

func TestWithRuntimeLimitIsApplied(t *testing.T) {
	rec := &recordingSolver{Solver: sat.NewGiniSolver()}
	s, err := New(WithSolver(rec), WithRuntimeLimit(50*time.Millisecond))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, []time.Duration{50 * time.Millisecond}, rec.limits)
}

func TestCheckEquivTightensDeadlineFromContext(t *testing.T) {
	rec := &recordingSolver{Solver: sat.NewGiniSolver()}
	s, err := New(WithSolver(rec), WithRuntimeLimit(time.Hour))
	require.NoError(t, err)
	defer s.Close()

	a := s.AIG().AppendInput()
	pa := s.ProbeCreate(a)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	s.CheckEquiv(ctx, pa, pa)

	// WithRuntimeLimit's own SetRuntimeLimit(time.Hour) call at construction,
	// then a tightened call for ctx's deadline, then a restore back to the
	// hour-long configured limit.
	require.Len(t, rec.limits, 3)
	assert.Equal(t, time.Hour, rec.limits[0])
	assert.Less(t, rec.limits[1], time.Hour)
	assert.Equal(t, time.Hour, rec.limits[2])
}

func TestCheckEquivLeavesConfiguredLimitAloneWithoutDeadline(t *testing.T) {
	rec := &recordingSolver{Solver: sat.NewGiniSolver()}
	s, err := New(WithSolver(rec), WithRuntimeLimit(time.Hour))
	require.NoError(t, err)
	defer s.Close()

	a := s.AIG().AppendInput()
	pa := s.ProbeCreate(a)

	s.CheckEquiv(context.Background(), pa, pa)

	assert.Equal(t, []time.Duration{time.Hour}, rec.limits)
}
