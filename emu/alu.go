package emu

func (c *CPU) carryIn() uint8 {
	if c.reg.Flag(FlagC) {
		return 1
	}
	return 0
}

// add8 adds v (and the carry flag if withCarry) to A.
func (c *CPU) add8(v uint8, withCarry bool) {
	var cin uint8
	if withCarry {
		cin = c.carryIn()
	}
	a := c.reg.A
	sum := uint16(a) + uint16(v) + uint16(cin)
	res := uint8(sum)
	c.reg.setFlags(res == 0, false, (a&0x0F)+(v&0x0F)+cin > 0x0F, sum > 0xFF)
	c.reg.A = res
}

// sub8 computes A - v (minus carry if withCarry) and sets flags. The
// result is stored in A unless compare is set.
func (c *CPU) sub8(v uint8, withCarry, compare bool) {
	var cin uint8
	if withCarry {
		cin = c.carryIn()
	}
	a := c.reg.A
	res := a - v - cin
	c.reg.setFlags(res == 0, true,
		int(a&0x0F) < int(v&0x0F)+int(cin),
		int(a) < int(v)+int(cin))
	if !compare {
		c.reg.A = res
	}
}

func (c *CPU) and8(v uint8) {
	c.reg.A &= v
	c.reg.setFlags(c.reg.A == 0, false, true, false)
}

func (c *CPU) xor8(v uint8) {
	c.reg.A ^= v
	c.reg.setFlags(c.reg.A == 0, false, false, false)
}

func (c *CPU) or8(v uint8) {
	c.reg.A |= v
	c.reg.setFlags(c.reg.A == 0, false, false, false)
}

// alu applies one of the eight accumulator operations selected by bits
// 5-3 of the opcode.
func (c *CPU) alu(op uint8, v uint8) {
	switch op & 0x07 {
	case 0:
		c.add8(v, false)
	case 1:
		c.add8(v, true)
	case 2:
		c.sub8(v, false, false)
	case 3:
		c.sub8(v, true, false)
	case 4:
		c.and8(v)
	case 5:
		c.xor8(v)
	case 6:
		c.or8(v)
	case 7:
		c.sub8(v, false, true)
	}
}

// inc8 and dec8 leave the carry flag untouched.
func (c *CPU) inc8(v uint8) uint8 {
	res := v + 1
	c.reg.SetFlag(FlagZ, res == 0)
	c.reg.SetFlag(FlagN, false)
	c.reg.SetFlag(FlagH, v&0x0F == 0x0F)
	return res
}

func (c *CPU) dec8(v uint8) uint8 {
	res := v - 1
	c.reg.SetFlag(FlagZ, res == 0)
	c.reg.SetFlag(FlagN, true)
	c.reg.SetFlag(FlagH, v&0x0F == 0)
	return res
}

// addHL adds v to HL. Half carry is from bit 11, Z is preserved.
func (c *CPU) addHL(v uint16) {
	hl := c.reg.HL()
	sum := uint32(hl) + uint32(v)
	c.reg.SetFlag(FlagN, false)
	c.reg.SetFlag(FlagH, (hl&0x0FFF)+(v&0x0FFF) > 0x0FFF)
	c.reg.SetFlag(FlagC, sum > 0xFFFF)
	c.reg.SetHL(uint16(sum))
	c.tick()
}

// spOffset returns SP plus a signed immediate. H and C come from the
// unsigned addition of the low byte; Z and N are cleared.
func (c *CPU) spOffset() uint16 {
	e := c.fetch()
	sp := c.reg.SP
	c.reg.setFlags(false, false,
		(sp&0x0F)+uint16(e&0x0F) > 0x0F,
		(sp&0xFF)+uint16(e) > 0xFF)
	return sp + uint16(int16(int8(e)))
}

func (c *CPU) daa() {
	a := c.reg.A
	var adjust uint8
	carry := false
	sub := c.reg.Flag(FlagN)

	if c.reg.Flag(FlagH) || (!sub && a&0x0F > 0x09) {
		adjust |= 0x06
	}
	if c.reg.Flag(FlagC) || (!sub && a > 0x99) {
		adjust |= 0x60
		carry = true
	}
	if sub {
		a -= adjust
	} else {
		a += adjust
	}
	c.reg.A = a
	c.reg.setFlags(a == 0, sub, false, carry)
}

// shiftFlags is shared by the rotates and shifts: the bit shifted out
// goes to C and N/H are cleared.
func (c *CPU) shiftFlags(res uint8, carry bool) uint8 {
	c.reg.setFlags(res == 0, false, false, carry)
	return res
}

func (c *CPU) rlc(v uint8) uint8 {
	return c.shiftFlags(v<<1|v>>7, v&0x80 != 0)
}

func (c *CPU) rrc(v uint8) uint8 {
	return c.shiftFlags(v>>1|v<<7, v&0x01 != 0)
}

func (c *CPU) rl(v uint8) uint8 {
	return c.shiftFlags(v<<1|c.carryIn(), v&0x80 != 0)
}

func (c *CPU) rr(v uint8) uint8 {
	return c.shiftFlags(v>>1|c.carryIn()<<7, v&0x01 != 0)
}

func (c *CPU) sla(v uint8) uint8 {
	return c.shiftFlags(v<<1, v&0x80 != 0)
}

func (c *CPU) sra(v uint8) uint8 {
	return c.shiftFlags(v>>1|v&0x80, v&0x01 != 0)
}

func (c *CPU) swap(v uint8) uint8 {
	return c.shiftFlags(v<<4|v>>4, false)
}

func (c *CPU) srl(v uint8) uint8 {
	return c.shiftFlags(v>>1, v&0x01 != 0)
}

// bit tests bit n of v. C is preserved.
func (c *CPU) bit(n uint8, v uint8) {
	c.reg.SetFlag(FlagZ, v&(1<<n) == 0)
	c.reg.SetFlag(FlagN, false)
	c.reg.SetFlag(FlagH, true)
}
