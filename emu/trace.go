package emu

import (
	"fmt"
	"io"
)

// Tracer writes one line per executed instruction:
//
//	$0150: 3E | A:01 F:ZnHC BC:0013 DE:00D8 HL:014D SP:FFFE PC:0150
//
// It is owned by whoever installs it; nothing in the core keeps global
// trace state.
type Tracer struct {
	w     io.Writer
	lines uint64
	err   error
}

// NewTracer creates a tracer writing to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// Hook returns the TraceFunc to install on a CPU.
func (t *Tracer) Hook() TraceFunc {
	return t.trace
}

func (t *Tracer) trace(pc uint16, opcode uint8, regs Registers) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, "$%04X: %02X | %s\n", pc, opcode, regs)
	t.lines++
}

// Lines returns the number of instructions traced.
func (t *Tracer) Lines() uint64 {
	return t.lines
}

// Err returns the first write error. Tracing stops after it.
func (t *Tracer) Err() error {
	return t.err
}

func hex16(v uint16) string {
	return fmt.Sprintf("0x%04X", v)
}
