// Package aig implements the AIG (And-Inverter Graph) container that the
// sweeper's CnfBuilder and Extractor treat as an external collaborator: node
// allocation with structural hashing of 2-input ANDs, fanin/phase access,
// traversal-ID marking, topological iteration and cleanup of dangling
// nodes. It plays the role of ABC's Gia_Man_t/Gia_Obj_t pair
// (see original_source/src/aig/gia/giaSweeper.c) translated into ordinary
// Go structs and slices instead of parallel int vectors and macros.
package aig

import "fmt"

// NodeID addresses a node in a Manager's arena. Node 0 is always the
// constant node.
type NodeID uint32

// Lit is an AIG literal: (NodeID << 1) | complement bit. Lit(0) is
// constant-0, Lit(1) is constant-1.
type Lit uint32

// ConstLit0 and ConstLit1 are the two constant literals.
const (
	ConstLit0 Lit = 0
	ConstLit1 Lit = 1
)

// Regular strips the complement bit.
func (l Lit) Regular() Lit { return l &^ 1 }

// IsComplement reports whether the complement bit is set.
func (l Lit) IsComplement() bool { return l&1 != 0 }

// Not flips the complement bit.
func (l Lit) Not() Lit { return l ^ 1 }

// Node returns the node this literal refers to.
func (l Lit) Node() NodeID { return NodeID(l >> 1) }

func (l Lit) String() string {
	if l.IsComplement() {
		return fmt.Sprintf("!n%d", l.Node())
	}
	return fmt.Sprintf("n%d", l.Node())
}

type kind uint8

const (
	kindConst kind = iota
	kindInput
	kindAnd
)

type node struct {
	k              kind
	fanin0, fanin1 Lit // only meaningful for kindAnd
	phase          bool
	shared         bool
	travID         uint64
	value          Lit // scratch field used by the Extractor (ABC's pObj->Value)
}

// Manager owns the node arena, the structural-hash table for ANDs, and the
// primary input/output vectors of a single AIG. The zero value is not
// usable; construct with NewManager.
type Manager struct {
	nodes       []node
	andTable    map[[2]Lit]NodeID
	inputs      []NodeID
	outputs     []Lit
	inputNames  []string
	outputNames []string
	curTravID   uint64
}

// NewManager returns an AIG with only the constant-0 node allocated.
func NewManager() *Manager {
	m := &Manager{
		andTable: make(map[[2]Lit]NodeID),
	}
	m.nodes = append(m.nodes, node{k: kindConst})
	return m
}

// ConstLit returns the literal for constant-0.
func (m *Manager) ConstLit() Lit { return ConstLit0 }

// NumNodes returns the number of allocated nodes, including the constant.
func (m *Manager) NumNodes() int { return len(m.nodes) }

// AppendInput allocates a new primary input and returns its literal.
func (m *Manager) AppendInput() Lit {
	id := NodeID(len(m.nodes))
	m.nodes = append(m.nodes, node{k: kindInput})
	m.inputs = append(m.inputs, id)
	return Lit(id) << 1
}

// Inputs returns the primary inputs in creation order.
func (m *Manager) Inputs() []NodeID { return m.inputs }

// AppendOutput records l as a primary output.
func (m *Manager) AppendOutput(l Lit) { m.outputs = append(m.outputs, l) }

// Outputs returns the recorded primary outputs in order.
func (m *Manager) Outputs() []Lit { return m.outputs }

// SetInputNames/SetOutputNames/InputNames/OutputNames duplicate the small
// string-vector bookkeeping Gia_Man_t carries (vNamesIn/vNamesOut).
func (m *Manager) SetInputNames(names []string) {
	m.inputNames = append([]string(nil), names...)
}
func (m *Manager) SetOutputNames(names []string) {
	m.outputNames = append([]string(nil), names...)
}
func (m *Manager) InputNames() []string  { return m.inputNames }
func (m *Manager) OutputNames() []string { return m.outputNames }

// phaseOf returns the node's phase bit combined with l's complement bit:
// the value the literal takes under the all-zero primary-input pattern.
func (m *Manager) phaseOf(l Lit) bool {
	return m.nodes[l.Node()].phase != l.IsComplement()
}

// HashAnd returns the literal for a AND b, reusing an existing node when
// the pair (up to commutativity) has already been built. This is the
// "structural hashing of 2-input ANDs" the spec requires of the AIG
// collaborator.
func (m *Manager) HashAnd(a, b Lit) Lit {
	switch {
	case a == ConstLit0 || b == ConstLit0:
		return ConstLit0
	case a == ConstLit1:
		return b
	case b == ConstLit1:
		return a
	case a == b:
		return a
	case a == b.Not():
		return ConstLit0
	}
	if a > b {
		a, b = b, a
	}
	key := [2]Lit{a, b}
	if id, ok := m.andTable[key]; ok {
		return Lit(id) << 1
	}
	id := NodeID(len(m.nodes))
	m.nodes = append(m.nodes, node{
		k:      kindAnd,
		fanin0: a,
		fanin1: b,
		phase:  m.phaseOf(a) && m.phaseOf(b),
	})
	m.andTable[key] = id
	return Lit(id) << 1
}

// HashOr is a convenience built from HashAnd and De Morgan, used by
// constraint-style callers; the AIG only ever stores AND nodes.
func (m *Manager) HashOr(a, b Lit) Lit {
	return m.HashAnd(a.Not(), b.Not()).Not()
}

// IsAnd, IsInput and IsConst classify a node.
func (m *Manager) IsAnd(n NodeID) bool   { return m.nodes[n].k == kindAnd }
func (m *Manager) IsInput(n NodeID) bool { return m.nodes[n].k == kindInput }
func (m *Manager) IsConst(n NodeID) bool { return m.nodes[n].k == kindConst }

// Fanin0/Fanin1 return an AND node's child literals. Undefined on
// non-AND nodes.
func (m *Manager) Fanin0(n NodeID) Lit { return m.nodes[n].fanin0 }
func (m *Manager) Fanin1(n NodeID) Lit { return m.nodes[n].fanin1 }

// Phase returns the node's precomputed phase bit (its value under the
// all-zero input pattern).
func (m *Manager) Phase(n NodeID) bool { return m.nodes[n].phase }

// MarkShared/IsShared implement the "shared" annotation super-gate
// collection must stop at (ABC's fMark1). Clients mark a node shared when
// they want it treated as an opaque boundary for super-gate extraction,
// e.g. because it fans out to more than one place they care about.
func (m *Manager) MarkShared(n NodeID)      { m.nodes[n].shared = true }
func (m *Manager) IsShared(n NodeID) bool   { return m.nodes[n].shared }
func (m *Manager) ClearShared(n NodeID)     { m.nodes[n].shared = false }

// RecognizeMux detects the classic two-complemented-AND MUX pattern
//
//	n = AND(not(AND(c,x)), not(AND(not(c),y))) = ITE(c, not(x), not(y))
//
// and, on success, returns (i, t, e) = (c, not(x), not(y)): the literals
// for which the node's own uncomplemented literal equals ITE(i, t, e), so
// the usual MUX output not(n) equals ITE(c, x, y). This mirrors Gia_ObjIsMuxType/Gia_ObjRecognizeMux in
// giaSweeper.c, reimplemented against this package's node layout.
func (m *Manager) RecognizeMux(n NodeID) (i, t, e Lit, ok bool) {
	if !m.IsAnd(n) {
		return 0, 0, 0, false
	}
	x0, x1 := m.nodes[n].fanin0, m.nodes[n].fanin1
	if !x0.IsComplement() || !x1.IsComplement() {
		return 0, 0, 0, false
	}
	a, b := x0.Regular().Node(), x1.Regular().Node()
	if !m.IsAnd(a) || !m.IsAnd(b) {
		return 0, 0, 0, false
	}
	a0, a1 := m.nodes[a].fanin0, m.nodes[a].fanin1
	b0, b1 := m.nodes[b].fanin0, m.nodes[b].fanin1
	switch {
	case a0 == b0.Not():
		return a0, a1.Not(), b1.Not(), true
	case a0 == b1.Not():
		return a0, a1.Not(), b0.Not(), true
	case a1 == b0.Not():
		return a1, a0.Not(), b1.Not(), true
	case a1 == b1.Not():
		return a1, a0.Not(), b0.Not(), true
	}
	return 0, 0, 0, false
}

// IsMuxType reports whether RecognizeMux would succeed on n.
func (m *Manager) IsMuxType(n NodeID) bool {
	_, _, _, ok := m.RecognizeMux(n)
	return ok
}

// NewTravID allocates and returns a fresh traversal ID, the Go analogue of
// Gia_ManIncrementTravId.
func (m *Manager) NewTravID() uint64 {
	m.curTravID++
	return m.curTravID
}

// IsTravIDCurrent/SetTravIDCurrent implement the visited-marking idiom
// used throughout ABC (Gia_ObjIsTravIdCurrent/Gia_ObjSetTravIdCurrent) in
// place of a separate "visited" set: O(1), no cleanup required between
// traversals since the ID itself changes.
func (m *Manager) IsTravIDCurrent(n NodeID, id uint64) bool { return m.nodes[n].travID == id }
func (m *Manager) SetTravIDCurrent(n NodeID, id uint64)     { m.nodes[n].travID = id }

// GetValue/SetValue expose the per-node scratch field (ABC's pObj->Value)
// the Extractor uses to remember, per source node, the corresponding
// literal in the AIG under construction.
func (m *Manager) GetValue(n NodeID) Lit     { return m.nodes[n].value }
func (m *Manager) SetValue(n NodeID, l Lit)  { m.nodes[n].value = l }

// TopoOrder returns, in topological order (fanins before fanouts), the AND
// node IDs in the transitive fanin cone of roots. Primary inputs and the
// constant are not included, matching Gia_ManExtract_rec's vObjIds.
func (m *Manager) TopoOrder(roots []Lit) []NodeID {
	travID := m.NewTravID()
	var order []NodeID
	var visit func(n NodeID)
	visit = func(n NodeID) {
		if !m.IsAnd(n) {
			return
		}
		if m.IsTravIDCurrent(n, travID) {
			return
		}
		m.SetTravIDCurrent(n, travID)
		visit(m.nodes[n].fanin0.Regular().Node())
		visit(m.nodes[n].fanin1.Regular().Node())
		order = append(order, n)
	}
	for _, r := range roots {
		visit(r.Regular().Node())
	}
	return order
}

// Cleanup drops AND nodes that are not in the transitive fanin cone of any
// recorded output, compacting the node arena. Primary inputs are always
// kept, since they define the AIG's external interface. It returns true if
// any node was actually removed.
func (m *Manager) Cleanup() bool {
	reachable := m.TopoOrder(m.outputs)
	keep := make(map[NodeID]bool, len(reachable))
	for _, id := range reachable {
		keep[id] = true
	}
	if len(keep) == int(len(m.nodes)-1-len(m.inputs)) {
		return false // nothing dangling
	}

	remap := make(map[NodeID]NodeID, len(m.nodes))
	newMgr := &Manager{andTable: make(map[[2]Lit]NodeID)}
	newMgr.nodes = append(newMgr.nodes, node{k: kindConst})
	remap[0] = 0

	for _, old := range m.inputs {
		nl := newMgr.AppendInput()
		remap[old] = nl.Node()
	}

	remapLit := func(l Lit) Lit {
		return Lit(remap[l.Regular().Node()])<<1 | Lit(boolToBit(l.IsComplement()))
	}
	for _, old := range reachable {
		a := remapLit(m.nodes[old].fanin0)
		b := remapLit(m.nodes[old].fanin1)
		nl := newMgr.HashAnd(a, b)
		remap[old] = nl.Node()
	}
	for _, o := range m.outputs {
		newMgr.AppendOutput(remapLit(o))
	}
	newMgr.SetInputNames(m.inputNames)
	newMgr.SetOutputNames(m.outputNames)

	*m = *newMgr
	return true
}

func boolToBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Simulate evaluates every node of the AIG under the given primary-input
// assignment (indexed in Inputs() order) and returns the resulting value
// of both literals of every node in the AIG. It exists purely to support
// property-based tests (P7, P8) without needing an external simulator.
func (m *Manager) Simulate(assignment []bool) map[Lit]bool {
	values := make([]bool, len(m.nodes))
	for idx, id := range m.inputs {
		if idx < len(assignment) {
			values[id] = assignment[idx]
		}
	}
	eval := func(l Lit) bool { return values[l.Node()] != l.IsComplement() }
	for id := 1; id < len(m.nodes); id++ {
		n := &m.nodes[NodeID(id)]
		if n.k == kindAnd {
			values[id] = eval(n.fanin0) && eval(n.fanin1)
		}
	}
	result := make(map[Lit]bool, len(m.nodes)*2)
	for id := range m.nodes {
		result[Lit(id)<<1] = values[id]
		result[Lit(id)<<1|1] = !values[id]
	}
	return result
}
