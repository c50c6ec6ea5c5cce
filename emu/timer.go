package emu

// Timer register addresses
const (
	regDIV  = 0xFF04
	regTIMA = 0xFF05
	regTMA  = 0xFF06
	regTAC  = 0xFF07
)

// timerTaps maps TAC bits 1-0 to the divider bit whose falling edge
// increments TIMA (4096, 262144, 65536 and 16384 Hz).
var timerTaps = [4]uint{9, 3, 5, 7}

// Timer implements DIV/TIMA/TMA/TAC. The divider is a 16-bit counter
// advancing 4 per M-cycle; DIV exposes its upper byte.
type Timer struct {
	div  uint16
	tima uint8
	tma  uint8
	tac  uint8

	// TIMA overflowed on the previous tick and reads 0x00 until the
	// reload from TMA happens on the next tick.
	reloadPending bool
	// TIMA was loaded from TMA this cycle. TIMA writes are dropped and
	// TMA writes also land in TIMA until the next tick.
	reloaded bool
}

// NewTimer returns a stopped timer with a cleared divider.
func NewTimer() *Timer {
	return &Timer{}
}

// signal is the AND of the selected divider bit and the enable bit.
// TIMA increments on its falling edge.
func (t *Timer) signal() bool {
	if t.tac&0x04 == 0 {
		return false
	}
	return t.div&(1<<timerTaps[t.tac&0x03]) != 0
}

func (t *Timer) increment() {
	t.tima++
	if t.tima == 0 {
		t.reloadPending = true
	}
}

// Tick advances the timer by one M-cycle. It returns true on the cycle
// TIMA is reloaded from TMA after an overflow, which is when the timer
// interrupt is requested.
func (t *Timer) Tick() bool {
	fired := false
	t.reloaded = false
	if t.reloadPending {
		t.reloadPending = false
		t.reloaded = true
		t.tima = t.tma
		fired = true
	}

	before := t.signal()
	t.div += 4
	if before && !t.signal() {
		t.increment()
	}
	return fired
}

// Read returns the register at addr (0xFF04-0xFF07).
func (t *Timer) Read(addr uint16) uint8 {
	switch addr {
	case regDIV:
		return uint8(t.div >> 8)
	case regTIMA:
		return t.tima
	case regTMA:
		return t.tma
	case regTAC:
		return t.tac | 0xF8
	}
	return 0xFF
}

// Write stores to the register at addr. Writes to DIV and TAC can produce
// a falling edge on the timer signal and increment TIMA.
func (t *Timer) Write(addr uint16, v uint8) {
	switch addr {
	case regDIV:
		before := t.signal()
		t.div = 0
		if before {
			t.increment()
		}
	case regTIMA:
		if t.reloaded {
			return
		}
		// A write during the overflow cycle cancels the reload.
		t.reloadPending = false
		t.tima = v
	case regTMA:
		t.tma = v
		if t.reloaded {
			t.tima = v
		}
	case regTAC:
		before := t.signal()
		t.tac = v & 0x07
		if before && !t.signal() {
			t.increment()
		}
	}
}

// Divider returns the full 16-bit internal divider.
func (t *Timer) Divider() uint16 {
	return t.div
}

// ResetDivider clears the divider as STOP does.
func (t *Timer) ResetDivider() {
	t.Write(regDIV, 0)
}
