package pegvm

// Value is one host-supplied capture payload: an argument to, or a result
// from, a match-time (ICloseRunTime) function. This package never inspects
// a Value's contents; it only moves them around in lockstep with the
// Cruntime capture records that reference them.
type Value interface{}

// ValueStack is the growable, owned container of dynamic capture values
// live for one Match call. It plays the role that a host language's own
// value stack (e.g. a Lua interpreter's stack) plays in the system this VM
// is modeled on, minus everything about the host language itself.
type ValueStack struct {
	values []Value
}

// NewValueStack returns an empty ValueStack ready for use.
func NewValueStack() *ValueStack {
	return &ValueStack{values: make([]Value, 0, 8)}
}

// Len reports how many values are currently pushed.
func (vs *ValueStack) Len() int { return len(vs.values) }

// Push appends one value to the top of the stack.
func (vs *ValueStack) Push(v Value) { vs.values = append(vs.values, v) }

// PushAll appends a whole slice of values, in order, to the top.
func (vs *ValueStack) PushAll(v []Value) { vs.values = append(vs.values, v...) }

// Tail returns a copy of the n most-recently-pushed values, oldest first.
// It does not modify the stack.
func (vs *ValueStack) Tail(n int) []Value {
	if n <= 0 {
		return nil
	}
	start := len(vs.values) - n
	out := make([]Value, n)
	copy(out, vs.values[start:])
	return out
}

// Drop removes the n most-recently-pushed values from the stack.
func (vs *ValueStack) Drop(n int) {
	if n <= 0 {
		return
	}
	vs.values = vs.values[:len(vs.values)-n]
}

// Drain removes and returns the n most-recently-pushed values, oldest
// first.
func (vs *ValueStack) Drain(n int) []Value {
	out := vs.Tail(n)
	vs.Drop(n)
	return out
}

// All returns every value currently on the stack, in push order. The
// returned slice is owned by the caller.
func (vs *ValueStack) All() []Value {
	out := make([]Value, len(vs.values))
	copy(out, vs.values)
	return out
}
