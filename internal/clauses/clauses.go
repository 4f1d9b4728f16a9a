// Package clauses implements the clause arena: disjunctions of literals
// represented with two watched literals plus the remaining "unwatched"
// ones, arena-allocated so that clause identifiers stay stable across
// deletions.
package clauses

import (
	"strings"

	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/internal/reflist"
)

// ID is a dense handle into an Arena.
type ID int32

type status uint8

const (
	statusLearnt    status = 0b001
	statusProtected status = 0b010
	statusDeleted   status = 0b100
)

// Clause is a disjunction of literals. Literals[0] and Literals[1] are
// the two watched literals; a deleted clause keeps its slot with the
// two-literal tautology placeholder as its Literals (see Arena.Delete).
type Clause struct {
	Literals []lits.Lit

	activity float64
	lbd      uint32
	status   status

	// prevPos resumes the unwatched-literal search from where it left
	// off last time, per the teacher's optimisation; it must stay in
	// [2, len(Literals)-1] or be reset to 2.
	prevPos int
}

func (c *Clause) IsLearnt() bool    { return c.status&statusLearnt != 0 }
func (c *Clause) IsProtected() bool { return c.status&statusProtected != 0 }
func (c *Clause) IsDeleted() bool   { return c.status&statusDeleted != 0 }
func (c *Clause) Protect()          { c.status |= statusProtected }
func (c *Clause) Unprotect()        { c.status &^= statusProtected }

func (c *Clause) Activity() float64    { return c.activity }
func (c *Clause) BumpActivity(d float64) { c.activity += d }
func (c *Clause) ScaleActivity(f float64) { c.activity *= f }

func (c *Clause) LBD() uint32     { return c.lbd }
func (c *Clause) SetLBD(lbd uint32) { c.lbd = lbd }

func (c *Clause) String() string {
	if len(c.Literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	for i, l := range c.Literals {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// tautology is the placeholder a deleted clause is overwritten with so
// that existing watch entries referring to its id stay harmless (the
// clause is permanently satisfied) and its id remains valid to look up.
var tautology = []lits.Lit{lits.TrueLit, lits.FalseLit}

// Arena owns the lifetime of every clause created through it.
type Arena struct {
	clauses reflist.Store[ID, *Clause]
}

// Get returns the clause stored at id.
func (a *Arena) Get(id ID) *Clause {
	return a.clauses.Get(id)
}

// Len returns the number of clause slots ever allocated (including
// deleted ones).
func (a *Arena) Len() int {
	return a.clauses.Len()
}

// Alloc creates a new clause directly from literals with no
// simplification (used for clauses already known to be minimal, e.g.
// freshly learnt ones). Callers are responsible for registering watches.
func (a *Arena) Alloc(literals []lits.Lit, learnt bool) ID {
	c := &Clause{
		Literals: append([]lits.Lit(nil), literals...),
		prevPos:  2,
	}
	if learnt {
		c.status |= statusLearnt
	}
	return a.clauses.Push(c)
}

// Delete overwrites the clause at id with the tautology placeholder,
// keeping id stable while freeing the original literal slice.
func (a *Arena) Delete(id ID) {
	c := a.Get(id)
	c.status |= statusDeleted
	c.Literals = tautology
}

