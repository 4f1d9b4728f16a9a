// Package lits implements the packed literal and bound algebra described
// in the domain model: variables, signed variables, and the literals
// ("bounds") that tighten them.
package lits

import "fmt"

// Var is an opaque dense integer handle to a variable. Variables are
// owned and allocated by the domain store; this package only knows how
// to pack/unpack and compare them.
type Var int32

// ZeroVar is the reserved variable that is always present and always
// equal to 0. TrueLit and FalseLit are defined in terms of it.
const ZeroVar Var = 0

func (v Var) String() string {
	return fmt.Sprintf("v%d", int32(v))
}

// SignedVar is a (variable, sign) pair. The "upper bound" of a signed
// variable abstracts over `x <= k` (positive sign) and `-x <= k`
// (negative sign), so that all bound propagation can be expressed
// uniformly as tightening an upper bound.
//
// Packing: the variable occupies the high bits, the sign the lowest
// bit, mirroring the teacher's Literal packing (VarID()*2 + polarity).
type SignedVar uint32

// Pos returns the positive signed variable for v (abstracts `x <= k`).
func Pos(v Var) SignedVar {
	return SignedVar(uint32(v) << 1)
}

// Neg returns the negative signed variable for v (abstracts `-x <= k`).
func Neg(v Var) SignedVar {
	return SignedVar(uint32(v)<<1 | 1)
}

// Var returns the underlying variable of sv.
func (sv SignedVar) Var() Var {
	return Var(sv >> 1)
}

// IsNegative returns true if sv is the negative signed variable of its
// underlying variable.
func (sv SignedVar) IsNegative() bool {
	return sv&1 == 1
}

// Negation returns the signed variable obtained by flipping the sign,
// i.e. Pos(v).Negation() == Neg(v).
func (sv SignedVar) Negation() SignedVar {
	return sv ^ 1
}

func (sv SignedVar) String() string {
	if sv.IsNegative() {
		return fmt.Sprintf("-%s", sv.Var())
	}
	return sv.Var().String()
}

// Lit is a literal: the statement that a signed variable's upper bound
// is at most Val, i.e. `sv <= Val`. Because every relation can be
// expressed as an upper bound on some signed variable (x > k is the
// same statement as -x <= -k-1), a single field pair is enough to
// represent both `<=` and `>` bounds.
//
// Lit orders first by SignedVar, then by Val, which groups literals by
// variable then relation then value as required by the entailment
// lattice.
type Lit struct {
	SV  SignedVar
	Val int32
}

// Leq returns the literal `v <= val`.
func Leq(v Var, val int32) Lit {
	return Lit{SV: Pos(v), Val: val}
}

// Geq returns the literal `v >= val`, encoded as `-v <= -val`.
func Geq(v Var, val int32) Lit {
	return Lit{SV: Neg(v), Val: -val}
}

// Gt returns the literal `v > val`.
func Gt(v Var, val int32) Lit {
	return Geq(v, val+1)
}

// Lt returns the literal `v < val`.
func Lt(v Var, val int32) Lit {
	return Leq(v, val-1)
}

// Bound returns the literal `sv <= val` directly in terms of a signed
// variable, used by reasoners that work natively with signed variables
// (e.g. the difference-logic reasoner).
func Bound(sv SignedVar, val int32) Lit {
	return Lit{SV: sv, Val: val}
}

// TrueLit is the literal that is always true: ZeroVar is pinned to 0,
// so `-ZeroVar <= 0` always holds.
var TrueLit = Geq(ZeroVar, 0)

// FalseLit is the negation of TrueLit: always false.
var FalseLit = TrueLit.Negation()

// Negation returns the dual literal: `sv <= val` negates to
// `-sv <= -val-1` (i.e. `sv > val`).
func (l Lit) Negation() Lit {
	return Lit{SV: l.SV.Negation(), Val: -l.Val - 1}
}

// Var returns the variable referred to by l.
func (l Lit) Var() Var {
	return l.SV.Var()
}

// IsPositive returns true if l bounds the positive signed variable of
// its underlying variable (i.e. is an upper-bound literal rather than a
// lower-bound one).
func (l Lit) IsPositive() bool {
	return !l.SV.IsNegative()
}

// Entails returns true if l entails other: same signed variable, and
// l's value is at least as tight (smaller or equal).
func (l Lit) Entails(other Lit) bool {
	return l.SV == other.SV && l.Val <= other.Val
}

// Less defines the canonical total order over literals: by signed
// variable, then by value. Sorting a slice of literals with Less groups
// them by variable, then by relation, and within a (variable, relation)
// pair a literal only entails the ones immediately following it.
func Less(a, b Lit) bool {
	if a.SV != b.SV {
		return a.SV < b.SV
	}
	return a.Val < b.Val
}

func (l Lit) String() string {
	if l.SV.IsNegative() {
		return fmt.Sprintf("(%s >= %d)", l.SV.Var(), -l.Val)
	}
	return fmt.Sprintf("(%s <= %d)", l.SV.Var(), l.Val)
}

// IsTrue/IsFalse using the value domain are intentionally not provided
// here: only the domain store knows the current bounds of a variable.
// This package is restricted to the pure algebra.
