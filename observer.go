package evmrs

import (
	"fmt"
	"io"
)

// Observer is a pre-op/post-op instrumentation hook. Implementations must
// treat the interpreter as read-only: observing must not affect execution.
type Observer interface {
	PreOp(interp *Interpreter)
	PostOp(interp *Interpreter)
	Log(message string)
}

// NoopObserver does nothing; it is the default when no instrumentation is
// configured.
type NoopObserver struct{}

func (NoopObserver) PreOp(*Interpreter)  {}
func (NoopObserver) PostOp(*Interpreter) {}
func (NoopObserver) Log(string)          {}

// TraceObserver writes one line per executed opcode in the format
// "OPCODE, gas_left, top-of-stack".
type TraceObserver struct {
	w io.Writer
}

func NewTraceObserver(w io.Writer) *TraceObserver {
	return &TraceObserver{w: w}
}

func (t *TraceObserver) PreOp(interp *Interpreter) {
	op, ok := interp.code.Get()
	if !ok {
		return
	}
	top := "-"
	if v, err := interp.stack.Peek(); err == nil {
		top = v.String()
	}
	fmt.Fprintf(t.w, "%s, %d, %s\n", op, interp.gasLeft, top)
}

func (t *TraceObserver) PostOp(*Interpreter) {}

func (t *TraceObserver) Log(message string) {
	fmt.Fprintln(t.w, message)
}

// CountObserver tallies how many times each opcode executed, writing the
// per-opcode totals when Flush is called (e.g. at process exit).
type CountObserver struct {
	w      io.Writer
	counts map[OpCode]int64
}

func NewCountObserver(w io.Writer) *CountObserver {
	return &CountObserver{w: w, counts: make(map[OpCode]int64)}
}

func (c *CountObserver) PreOp(interp *Interpreter) {
	op, ok := interp.code.Get()
	if !ok {
		return
	}
	c.counts[op]++
}

func (c *CountObserver) PostOp(*Interpreter) {}

func (c *CountObserver) Log(message string) {
	fmt.Fprintln(c.w, message)
}

// Flush writes the accumulated per-opcode counts and a grand total.
func (c *CountObserver) Flush() {
	var total int64
	for op, n := range c.counts {
		fmt.Fprintf(c.w, "%s: %d\n", op, n)
		total += n
	}
	fmt.Fprintf(c.w, "total: %d\n", total)
}
