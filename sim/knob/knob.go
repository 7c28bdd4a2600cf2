// Package knob implements the "callable knob" design note (§9): a value
// that is either a fixed scalar or a generator function, sampled once per
// use through a single Sample operation. WorkFlow and UserRequest use knobs
// for process length, packet size, packet count, priority, and backoff.
package knob

// Float is a {Fixed(v), Dynamic(fn)} tagged variant over float64.
type Float struct {
	fixed   float64
	dynamic func() float64
	isFixed bool
}

// Fixed returns a Float knob that always samples to v.
func Fixed(v float64) Float { return Float{fixed: v, isFixed: true} }

// Dynamic returns a Float knob that samples by calling fn.
func Dynamic(fn func() float64) Float { return Float{dynamic: fn} }

// Sample returns the knob's current value.
func (f Float) Sample() float64 {
	if f.isFixed || f.dynamic == nil {
		return f.fixed
	}
	return f.dynamic()
}

// Int is the integer-valued counterpart of Float (packet counts).
type Int struct {
	fixed   int
	dynamic func() int
	isFixed bool
}

// FixedInt returns an Int knob that always samples to v.
func FixedInt(v int) Int { return Int{fixed: v, isFixed: true} }

// DynamicInt returns an Int knob that samples by calling fn.
func DynamicInt(fn func() int) Int { return Int{dynamic: fn} }

// Sample returns the knob's current value.
func (i Int) Sample() int {
	if i.isFixed || i.dynamic == nil {
		return i.fixed
	}
	return i.dynamic()
}
