package core

import (
	"github.com/shopspring/decimal"
)

// Limit is an optional bound on the flow through a node or account. A
// limit is either bounded (carrying a non-negative magnitude) or
// unbounded. Representing the unbounded case explicitly keeps the
// arithmetic total; no infinity sentinels are ever compared.
type Limit struct {
	value   decimal.Decimal
	bounded bool
}

// Bound returns a bounded limit with magnitude v. Negative magnitudes
// are clamped to zero.
func Bound(v decimal.Decimal) Limit {
	if v.IsNegative() {
		v = decimal.Zero
	}
	return Limit{value: v, bounded: true}
}

// Unbounded returns the absent limit.
func Unbounded() Limit {
	return Limit{}
}

// Bounded reports whether the limit carries a concrete magnitude.
func (l Limit) Bounded() bool {
	return l.bounded
}

// Value returns the limit's magnitude and whether it is bounded.
func (l Limit) Value() (decimal.Decimal, bool) {
	return l.value, l.bounded
}

// Cap clips amount to the limit's magnitude. Unbounded limits pass the
// amount through unchanged.
func (l Limit) Cap(amount decimal.Decimal) decimal.Decimal {
	if l.bounded && amount.GreaterThan(l.value) {
		return l.value
	}
	return amount
}

// Floor returns the magnitude of a minimum-type limit: zero when
// unbounded, since an absent minimum requires nothing.
func (l Limit) Floor() decimal.Decimal {
	if !l.bounded {
		return decimal.Zero
	}
	return l.value
}

// Tighten combines two maximum-type limits, keeping the stricter
// (smaller) bound. Unbounded is the identity.
func (l Limit) Tighten(other Limit) Limit {
	if !l.bounded {
		return other
	}
	if !other.bounded {
		return l
	}
	if other.value.LessThan(l.value) {
		return other
	}
	return l
}

// Add sums two maximum-type limits. The sum is unbounded if either
// operand is.
func (l Limit) Add(other Limit) Limit {
	if !l.bounded || !other.bounded {
		return Unbounded()
	}
	return Bound(l.value.Add(other.value))
}

// LimitTuple carries the four optional bounds a node or account may
// declare. The zero value is all-unbounded, so callers never need to
// distinguish "no limits supplied" from "limits are infinite".
type LimitTuple struct {
	MinInflow  Limit
	MaxInflow  Limit
	MinOutflow Limit
	MaxOutflow Limit
}

// Max returns the maximum-type limit for the given direction.
func (t LimitTuple) Max(outflow bool) Limit {
	if outflow {
		return t.MaxOutflow
	}
	return t.MaxInflow
}

// Min returns the minimum-type limit for the given direction.
func (t LimitTuple) Min(outflow bool) Limit {
	if outflow {
		return t.MinOutflow
	}
	return t.MinInflow
}
