package sweeper

import (
	"github.com/go-air/gini/z"

	"github.com/operator-framework/aigsweep/aig"
	"github.com/operator-framework/aigsweep/sat"
)

// cnfBuilder lazily translates the transitive AND cone reachable from a
// query target into SAT variables and clauses, recognizing MUX and
// multi-input AND super-gate patterns along the way (spec §4.3). It is
// the Go translation of Gia_ManCnfNodeAddToSolver,
// Gia_ManAddClausesMux/Super and Gia_ManCollectSuper_rec in
// giaSweeper.c.
type cnfBuilder struct {
	aigMgr  *aig.Manager
	solver  sat.Solver
	obj2lit map[aig.NodeID]z.Lit // sparse; absent means "not yet encoded"
}

func newCnfBuilder(m *aig.Manager, s sat.Solver) *cnfBuilder {
	cb := &cnfBuilder{
		aigMgr:  m,
		solver:  s,
		obj2lit: make(map[aig.NodeID]z.Lit),
	}
	// Pre-encode constant-0 (spec §3): a fresh variable, asserted false.
	v := s.NewVar()
	cb.obj2lit[0] = v.Pos()
	mustAdd(s, v.Neg())
	return cb
}

// satLitOf returns the SAT literal corresponding to an AIG literal whose
// node has already been encoded. Panics (an invariant violation, per
// spec §7) if it hasn't.
func (cb *cnfBuilder) satLitOf(l aig.Lit) z.Lit {
	base, ok := cb.obj2lit[l.Node()]
	if !ok {
		panic("sweeper: cnf: literal referenced before ensureEncoded")
	}
	if l.IsComplement() {
		return base.Not()
	}
	return base
}

func (cb *cnfBuilder) isEncoded(id aig.NodeID) bool {
	_, ok := cb.obj2lit[id]
	return ok
}

// ensureEncoded visits the transitive AND cone of root not yet encoded and
// asserts its defining clauses. Idempotent: a node is encoded exactly
// once, ever, for the lifetime of the builder.
func (cb *cnfBuilder) ensureEncoded(root aig.NodeID) {
	if root == 0 || cb.isEncoded(root) {
		return
	}

	var frontier []aig.NodeID
	addToFrontier := func(id aig.NodeID) {
		if id == 0 || cb.isEncoded(id) {
			return
		}
		v := cb.solver.NewVar()
		if cb.aigMgr.Phase(id) {
			cb.obj2lit[id] = v.Neg()
		} else {
			cb.obj2lit[id] = v.Pos()
		}
		if cb.aigMgr.IsAnd(id) {
			frontier = append(frontier, id)
		}
	}

	addToFrontier(root)
	for i := 0; i < len(frontier); i++ {
		n := frontier[i]
		if gi, gt, ge, ok := cb.aigMgr.RecognizeMux(n); ok {
			for _, l := range [3]aig.Lit{gi, gt, ge} {
				addToFrontier(l.Node())
			}
			cb.emitMux(n, gi, gt, ge)
			continue
		}
		fanins := cb.collectSuper(n)
		for _, l := range fanins {
			addToFrontier(l.Node())
		}
		cb.emitSuper(n, fanins)
	}
}

// collectSuper gathers the maximal fan-in set of the AND super-gate
// rooted at n: it recurses through same-polarity AND children, stopping
// at complemented edges, primary inputs, MUX-shaped nodes, or nodes
// marked shared (Gia_ManCollectSuper_rec).
func (cb *cnfBuilder) collectSuper(n aig.NodeID) []aig.Lit {
	var result []aig.Lit
	seen := make(map[aig.Lit]bool)
	var visit func(l aig.Lit)
	visit = func(l aig.Lit) {
		node := l.Node()
		boundary := l.IsComplement() ||
			cb.aigMgr.IsInput(node) ||
			cb.aigMgr.IsConst(node) ||
			cb.aigMgr.IsMuxType(node) ||
			cb.aigMgr.IsShared(node)
		if boundary {
			if !seen[l] {
				seen[l] = true
				result = append(result, l)
			}
			return
		}
		visit(cb.aigMgr.Fanin0(node))
		visit(cb.aigMgr.Fanin1(node))
	}
	visit(cb.aigMgr.Fanin0(n))
	visit(cb.aigMgr.Fanin1(n))
	return result
}

// emitSuper asserts the CNF for a k-input AND super-gate: one binary
// implication per fan-in, plus a single (k+1)-clause (Gia_ManAddClausesSuper).
func (cb *cnfBuilder) emitSuper(n aig.NodeID, fanins []aig.Lit) {
	f := cb.satLitOf(aig.Lit(n) << 1)
	wide := make([]z.Lit, 0, len(fanins)+1)
	for _, fi := range fanins {
		li := cb.satLitOf(fi)
		mustAdd(cb.solver, li, f.Not())
		wide = append(wide, li.Not())
	}
	wide = append(wide, f)
	mustAdd(cb.solver, wide...)
}

// emitMux asserts the six-clause encoding of f = ITE(i, t, e)
// (Gia_ManAddClausesMux). The last two clauses are redundant under unit
// propagation but observably accelerate the solver; per spec §9 they are
// part of the contract, not an optional optimization, and are skipped
// only when t and e already encode to the same SAT literal.
func (cb *cnfBuilder) emitMux(n aig.NodeID, gi, gt, ge aig.Lit) {
	f := cb.satLitOf(aig.Lit(n) << 1)
	i := cb.satLitOf(gi)
	t := cb.satLitOf(gt)
	e := cb.satLitOf(ge)

	mustAdd(cb.solver, i.Not(), t.Not(), f)
	mustAdd(cb.solver, i.Not(), t, f.Not())
	mustAdd(cb.solver, i, e.Not(), f)
	mustAdd(cb.solver, i, e, f.Not())

	if t == e {
		return
	}
	mustAdd(cb.solver, t, e, f.Not())
	mustAdd(cb.solver, t.Not(), e.Not(), f)
}

// mustAdd asserts a clause and panics if the solver rejects it: spec §4.3
// treats a false return from add_clause as a programming-invariant
// violation, never a recoverable error.
func mustAdd(s sat.Solver, lits ...z.Lit) {
	if !s.AddClause(lits...) {
		panic("sweeper: cnf: solver rejected a well-formed clause")
	}
}
