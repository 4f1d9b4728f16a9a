// Package intern implements expression normalisation and interning:
// compound Boolean expressions (conjunction, disjunction, negation over
// literals already produced by the domain store or a theory reasoner)
// are folded to a canonical form, hashed into a table, and bound to a
// single reusable literal the first time they are seen.
package intern

import (
	"sort"
	"strings"

	"github.com/rhartert/halite/internal/lits"
)

type kind uint8

const (
	kindLit kind = iota
	kindAnd
	kindOr
	kindNot
)

// Expr is a tagged-sum expression: a leaf literal, or an And/Or/Not
// over child expressions. Matches the project's Atom/Expr tagged-sum
// shape (spec.md section 9) restricted to the propositional fragment,
// since every bound atom (`x <= k`, `x >= k`) is already a
// lits.Lit in this model and needs no separate Atom representation.
type Expr struct {
	kind     kind
	lit      lits.Lit
	children []Expr
}

// Atom wraps a literal as a leaf expression.
func Atom(l lits.Lit) Expr {
	return Expr{kind: kindLit, lit: l}
}

// And returns the conjunction of the given expressions.
func And(es ...Expr) Expr {
	return Expr{kind: kindAnd, children: es}
}

// Or returns the disjunction of the given expressions.
func Or(es ...Expr) Expr {
	return Expr{kind: kindOr, children: es}
}

// Not returns the negation of e.
func Not(e Expr) Expr {
	return Expr{kind: kindNot, children: []Expr{e}}
}

// normalize folds Not onto leaves (De Morgan for And/Or, double
// negation elimination), flattens nested same-kind And/Or children,
// drops duplicate children, and constant-folds TrueLit/FalseLit atoms.
// The result never contains a kindNot node: every negation has already
// been pushed down to a literal.
func normalize(e Expr) Expr {
	switch e.kind {
	case kindLit:
		return e

	case kindNot:
		child := normalize(e.children[0])
		switch child.kind {
		case kindLit:
			return Atom(child.lit.Negation())
		case kindAnd:
			negated := make([]Expr, len(child.children))
			for i, c := range child.children {
				negated[i] = normalize(Not(c))
			}
			return normalize(Or(negated...))
		case kindOr:
			negated := make([]Expr, len(child.children))
			for i, c := range child.children {
				negated[i] = normalize(Not(c))
			}
			return normalize(And(negated...))
		}
		panic("intern: unreachable expr kind")

	case kindAnd, kindOr:
		return normalizeAssoc(e.kind, e.children)
	}
	panic("intern: unreachable expr kind")
}

// normalizeAssoc normalizes an And/Or's children, flattens nested nodes
// of the same kind, constant-folds TrueLit/FalseLit, dedups, and sorts
// for a canonical order.
func normalizeAssoc(k kind, children []Expr) Expr {
	var (
		absorbing = lits.FalseLit // And short-circuits on FALSE.
		neutral   = lits.TrueLit  // And drops TRUE children.
	)
	if k == kindOr {
		absorbing, neutral = lits.TrueLit, lits.FalseLit
	}

	seen := map[string]Expr{}
	var flat []Expr
	for _, c := range children {
		nc := normalize(c)
		if nc.kind == kindLit {
			if nc.lit == absorbing {
				return Atom(absorbing)
			}
			if nc.lit == neutral {
				continue
			}
		}
		if nc.kind == k {
			flat = append(flat, nc.children...)
			continue
		}
		flat = append(flat, nc)
	}

	var out []Expr
	for _, c := range flat {
		key := c.key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = c
		out = append(out, c)
	}

	switch len(out) {
	case 0:
		return Atom(neutral)
	case 1:
		return out[0]
	}

	sort.Slice(out, func(i, j int) bool { return out[i].key() < out[j].key() })
	return Expr{kind: k, children: out}
}

// key returns a canonical string uniquely identifying e's normal form,
// used both for flattening dedup and as the interning-table key.
func (e Expr) key() string {
	switch e.kind {
	case kindLit:
		return "l:" + e.lit.String()
	case kindAnd, kindOr:
		var b strings.Builder
		if e.kind == kindAnd {
			b.WriteString("&(")
		} else {
			b.WriteString("|(")
		}
		for i, c := range e.children {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(c.key())
		}
		b.WriteByte(')')
		return b.String()
	case kindNot:
		return "!(" + e.children[0].key() + ")"
	}
	panic("intern: unreachable expr kind")
}

// vars collects the distinct variables referenced anywhere in e.
func (e Expr) vars() []lits.Var {
	seen := map[lits.Var]struct{}{}
	var out []lits.Var
	var walk func(Expr)
	walk = func(x Expr) {
		switch x.kind {
		case kindLit:
			v := x.lit.Var()
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				out = append(out, v)
			}
		default:
			for _, c := range x.children {
				walk(c)
			}
		}
	}
	walk(e)
	return out
}
