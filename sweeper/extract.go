package sweeper

import "github.com/operator-framework/aigsweep/aig"

// Extract rebuilds, as a fresh standalone AIG, the logic cone reachable
// from lits: a Go translation of Gia_ManExtract in giaSweeper.c. The
// source Manager's per-node scratch Value field is used as working storage
// and is restored to its prior contents before Extract returns, so calling
// Extract does not disturb any other collaborator mid-sweep.
//
// Primary inputs of the source AIG that are reachable from lits are
// preserved as primary inputs of the result, in the source's input order,
// duplicating src's own input names (step 8 of §4.5) for whichever of them
// src has named. outputNames attaches caller-provided names to the result's
// primary outputs, which become lits in order (duplicate source literals
// correctly producing duplicate, but structurally shared, outputs);
// outputNames may be nil, in which case outputs are left unnamed, but if
// non-nil it must have exactly len(lits) entries.
func Extract(src *aig.Manager, lits []aig.Lit, outputNames []string) *aig.Manager {
	if outputNames != nil && len(outputNames) != len(lits) {
		panic("sweeper: extract: outputNames must match lits 1:1")
	}

	order := src.TopoOrder(lits)

	saved := make(map[aig.NodeID]aig.Lit, len(order)+len(src.Inputs()))
	restore := func() {
		for id, v := range saved {
			src.SetValue(id, v)
		}
	}
	defer restore()

	dst := aig.NewManager()

	reachable, reachableNames := reachableInputs(src, lits)
	inputRemap := make(map[aig.NodeID]aig.Lit, len(reachable))
	for _, id := range reachable {
		saved[id] = src.GetValue(id)
		nl := dst.AppendInput()
		inputRemap[id] = nl
		src.SetValue(id, nl)
	}
	if hasAnyName(reachableNames) {
		dst.SetInputNames(reachableNames)
	}

	resolve := func(l aig.Lit) aig.Lit {
		node := l.Node()
		var base aig.Lit
		if nl, ok := inputRemap[node]; ok {
			base = nl
		} else {
			base = src.GetValue(node)
		}
		if l.IsComplement() {
			return base.Not()
		}
		return base
	}

	for _, id := range order {
		if _, already := saved[id]; !already {
			saved[id] = src.GetValue(id)
		}
		a := resolve(src.Fanin0(id))
		b := resolve(src.Fanin1(id))
		nl := dst.HashAnd(a, b)
		src.SetValue(id, nl)
	}

	for _, l := range lits {
		dst.AppendOutput(resolve(l))
	}

	if outputNames != nil {
		dst.SetOutputNames(outputNames)
	}

	return dst
}

// reachableInputs returns, in src.Inputs() order, the primary inputs in the
// transitive fanin cone of lits, alongside their names duplicated from
// src.InputNames() (empty string for an input src never named).
func reachableInputs(src *aig.Manager, lits []aig.Lit) ([]aig.NodeID, []string) {
	travID := src.NewTravID()
	marked := make(map[aig.NodeID]bool)

	var visit func(n aig.NodeID)
	visit = func(n aig.NodeID) {
		if src.IsTravIDCurrent(n, travID) {
			return
		}
		src.SetTravIDCurrent(n, travID)
		if src.IsInput(n) {
			marked[n] = true
			return
		}
		if src.IsAnd(n) {
			visit(src.Fanin0(n).Node())
			visit(src.Fanin1(n).Node())
		}
	}
	for _, l := range lits {
		visit(l.Node())
	}

	srcNames := src.InputNames()
	var result []aig.NodeID
	var names []string
	for idx, id := range src.Inputs() {
		if !marked[id] {
			continue
		}
		result = append(result, id)
		if idx < len(srcNames) {
			names = append(names, srcNames[idx])
		} else {
			names = append(names, "")
		}
	}
	return result, names
}

func hasAnyName(names []string) bool {
	for _, n := range names {
		if n != "" {
			return true
		}
	}
	return false
}
