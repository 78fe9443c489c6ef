package sweeper

import "github.com/operator-framework/aigsweep/aig"

// ProbeID is a stable, monotonically assigned handle naming an AIG
// literal of interest. IDs are never recycled (spec §9, "Open question —
// probe-ID recycling"): client code may retain stale IDs, so reusing a
// slot after its last deref would silently hand that code someone else's
// literal.
type ProbeID uint32

type probeSlot struct {
	lit      aig.Lit
	refcount uint32
}

// probeRegistry is an append-only arena of probes plus a reverse index
// from literal to probe ID, mirroring ABC's vProbes/vProbRefs/vLit2Prob
// trio of parallel vectors (giaSweeper.c) as a single slice of structs and
// a map.
type probeRegistry struct {
	slots   []probeSlot
	reverse map[aig.Lit]ProbeID
}

func newProbeRegistry() *probeRegistry {
	return &probeRegistry{reverse: make(map[aig.Lit]ProbeID)}
}

// create always allocates a new slot, even if lit already has a live
// probe; callers that want deduplication use find.
func (r *probeRegistry) create(lit aig.Lit) ProbeID {
	id := ProbeID(len(r.slots))
	r.slots = append(r.slots, probeSlot{lit: lit, refcount: 1})
	r.reverse[lit] = id
	return id
}

// find returns the existing probe for lit, bumping its refcount, or
// creates a fresh one.
func (r *probeRegistry) find(lit aig.Lit) ProbeID {
	if id, ok := r.reverse[lit]; ok {
		r.slots[id].refcount++
		return id
	}
	return r.create(lit)
}

// deref decrements id's refcount. At zero the slot becomes a tombstone:
// its reverse-map entry is cleared and its literal is zeroed, but the slot
// itself, and id, are never reused.
func (r *probeRegistry) deref(id ProbeID) {
	slot := &r.slots[id]
	if slot.refcount == 0 {
		panic("sweeper: deref of an already-dead probe")
	}
	slot.refcount--
	if slot.refcount == 0 {
		delete(r.reverse, slot.lit)
		slot.lit = 0
	}
}

func (r *probeRegistry) lit(id ProbeID) aig.Lit {
	return r.slots[id].lit
}

func (r *probeRegistry) count() int {
	return len(r.slots)
}
