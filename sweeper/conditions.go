package sweeper

import "github.com/operator-framework/aigsweep/aig"

// conditionStack is the parallel probe-ID/literal stack scoping the
// assumptions under which queries are evaluated (spec §4.2). The literal
// stack is a snapshot taken at push time, so popping a probe off the
// condition stack never needs to re-dereference it.
type conditionStack struct {
	ids  []ProbeID
	lits []aig.Lit
}

func newConditionStack() *conditionStack {
	return &conditionStack{}
}

func (c *conditionStack) push(id ProbeID, lit aig.Lit) {
	c.ids = append(c.ids, id)
	c.lits = append(c.lits, lit)
}

func (c *conditionStack) pop() ProbeID {
	n := len(c.ids) - 1
	id := c.ids[n]
	c.ids = c.ids[:n]
	c.lits = c.lits[:n]
	return id
}

func (c *conditionStack) depth() int {
	return len(c.ids)
}

// currentLits returns the current path conditions, in push order. The
// returned slice is owned by the stack and must not be retained past the
// next push/pop.
func (c *conditionStack) currentLits() []aig.Lit {
	return c.lits
}
