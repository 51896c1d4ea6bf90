package evmrs

import (
	"github.com/evmrs/evmrs/u256"
)

// stackCapacity is the maximum depth of the EVM operand stack.
const stackCapacity = 1024

// Stack is the EVM operand stack: at most 1024 256-bit words, with
// error-returning push/pop and a fused pop-and-reuse-top-slot primitive for
// opcodes that pop N and push 1.
type Stack struct {
	data [stackCapacity]u256.Word
	top  int // number of elements currently on the stack
}

func NewStack() *Stack {
	return &Stack{}
}

func (s *Stack) Len() int { return s.top }

func (s *Stack) Reset() {
	s.top = 0
}

// Push appends a value. Returns FailStackOverflow if the stack is full.
func (s *Stack) Push(v u256.Word) error {
	if s.top >= stackCapacity {
		return FailStackOverflow
	}
	s.data[s.top] = v
	s.top++
	return nil
}

// Pop removes and returns the top element.
func (s *Stack) Pop() (u256.Word, error) {
	if s.top == 0 {
		return u256.Zero, FailStackUnderflow
	}
	s.top--
	return s.data[s.top], nil
}

// PopN removes and returns the top N elements, ordered top-of-stack first
// (result[0] was the top).
func (s *Stack) PopN(n int) ([]u256.Word, error) {
	if s.top < n {
		return nil, FailStackUnderflow
	}
	out := make([]u256.Word, n)
	for i := 0; i < n; i++ {
		s.top--
		out[i] = s.data[s.top]
	}
	return out, nil
}

// PushLocation is a one-shot write handle into a stack slot, returned by
// PopWithLocation alongside the values already popped. It must be written
// to exactly once via Push. Grounded on the original's PushLocation<'p>,
// which lets arithmetic ops avoid a second overflow check on push after an
// N-ary pop (net size change is -(N-1), always <= capacity already held).
type PushLocation struct {
	slot *u256.Word
}

func (p PushLocation) Push(v u256.Word) {
	*p.slot = v
}

// Current reads the value still occupying the write-handle slot, i.e. the
// Nth popped operand that PopWithLocation left in place rather than
// physically removing.
func (p PushLocation) Current() u256.Word {
	return *p.slot
}

// PopWithLocation pops N-1 values and reuses the Nth (now-topmost) slot as
// a write-once handle, skipping the overflow check a separate push would
// need. Used by all binary/ternary arithmetic and comparison opcodes.
func (s *Stack) PopWithLocation(n int) (PushLocation, []u256.Word, error) {
	if s.top < n {
		return PushLocation{}, nil, FailStackUnderflow
	}
	popped := make([]u256.Word, n-1)
	for i := 0; i < n-1; i++ {
		s.top--
		popped[i] = s.data[s.top]
	}
	return PushLocation{slot: &s.data[s.top-1]}, popped, nil
}

// Peek returns the top element without removing it.
func (s *Stack) Peek() (u256.Word, error) {
	if s.top == 0 {
		return u256.Zero, FailStackUnderflow
	}
	return s.data[s.top-1], nil
}

// PeekN returns the nth element from the top, n=1 being the top itself.
func (s *Stack) PeekN(n int) (u256.Word, error) {
	if s.top < n {
		return u256.Zero, FailStackUnderflow
	}
	return s.data[s.top-n], nil
}

// Dup pushes a copy of the Nth element from the top (n=1 duplicates the
// top). n must be in [1, 16].
func (s *Stack) Dup(n int) error {
	if s.top < n {
		return FailStackUnderflow
	}
	if s.top >= stackCapacity {
		return FailStackOverflow
	}
	s.data[s.top] = s.data[s.top-n]
	s.top++
	return nil
}

// SwapWithTop exchanges the top element with the Nth element below it
// (n=1 swaps top with the one directly beneath). n must be in [1, 16].
func (s *Stack) SwapWithTop(n int) error {
	if s.top < n+1 {
		return FailStackUnderflow
	}
	topIdx := s.top - 1
	nthIdx := s.top - 1 - n
	s.data[topIdx], s.data[nthIdx] = s.data[nthIdx], s.data[topIdx]
	return nil
}

// CheckUnderflow reports FailStackUnderflow if fewer than n elements are
// present, without mutating the stack. Used by opcodes that need to
// validate before doing any memory-affecting work.
func (s *Stack) CheckUnderflow(n int) error {
	if s.top < n {
		return FailStackUnderflow
	}
	return nil
}

// Data returns the stack contents, bottom to top, for inspection by
// observers and steppable snapshots.
func (s *Stack) Data() []u256.Word {
	return append([]u256.Word(nil), s.data[:s.top]...)
}
