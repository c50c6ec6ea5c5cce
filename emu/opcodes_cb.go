package emu

// initCBOps fills the 0xCB-prefixed table. Bits 7-6 pick the group and
// bits 5-3 the shift kind or bit number; bits 2-0 are the operand.
func initCBOps() {
	shifts := [8]func(*CPU, uint8) uint8{
		(*CPU).rlc,
		(*CPU).rrc,
		(*CPU).rl,
		(*CPU).rr,
		(*CPU).sla,
		(*CPU).sra,
		(*CPU).swap,
		(*CPU).srl,
	}

	for op := 0; op < 256; op++ {
		o := regOperand(uint8(op))
		y := uint8(op>>3) & 0x07

		switch op >> 6 {
		case 0:
			fn := shifts[y]
			cbOps[op] = func(c *CPU) { c.writeOperand(o, fn(c, c.readOperand(o))) }
		case 1: // BIT
			cbOps[op] = func(c *CPU) { c.bit(y, c.readOperand(o)) }
		case 2: // RES
			cbOps[op] = func(c *CPU) { c.writeOperand(o, c.readOperand(o)&^(1<<y)) }
		case 3: // SET
			cbOps[op] = func(c *CPU) { c.writeOperand(o, c.readOperand(o)|1<<y) }
		}
	}
}
