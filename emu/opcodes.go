package emu

type opFunc func(c *CPU)

// Dispatch tables indexed by opcode. A nil entry has no handler and
// faults the CPU.
var (
	baseOps [256]opFunc
	cbOps   [256]opFunc
)

// illegalOpcodes do not decode to any instruction on the SM83.
var illegalOpcodes = []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

func init() {
	initLoadOps()
	initALUOps()
	init16BitOps()
	initFlowOps()
	initMiscOps()
	initCBOps()

	for _, op := range illegalOpcodes {
		baseOps[op] = opIllegal
	}
	baseOps[0xCB] = opPrefixCB
}

func opIllegal(c *CPU) {
	c.fault(ErrIllegalOpcode, false)
}

func opPrefixCB(c *CPU) {
	c.opcode = c.fetch()
	op := cbOps[c.opcode]
	if op == nil {
		c.fault(ErrUnimplementedOpcode, true)
		return
	}
	op(c)
}

// condition decodes the cc field (NZ, Z, NC, C) in bits 4-3.
func (c *CPU) condition(op uint8) bool {
	switch (op >> 3) & 0x03 {
	case 0:
		return !c.reg.Flag(FlagZ)
	case 1:
		return c.reg.Flag(FlagZ)
	case 2:
		return !c.reg.Flag(FlagC)
	default:
		return c.reg.Flag(FlagC)
	}
}

// 16-bit register pair accessors for the rr field in bits 5-4. Index 3 is
// SP for loads and arithmetic and AF for PUSH/POP.

func (c *CPU) pair(idx uint8) uint16 {
	switch idx {
	case 0:
		return c.reg.BC()
	case 1:
		return c.reg.DE()
	case 2:
		return c.reg.HL()
	default:
		return c.reg.SP
	}
}

func (c *CPU) setPair(idx uint8, v uint16) {
	switch idx {
	case 0:
		c.reg.SetBC(v)
	case 1:
		c.reg.SetDE(v)
	case 2:
		c.reg.SetHL(v)
	default:
		c.reg.SP = v
	}
}

func (c *CPU) stackPair(idx uint8) uint16 {
	if idx == 3 {
		return c.reg.AF()
	}
	return c.pair(idx)
}

func (c *CPU) setStackPair(idx uint8, v uint16) {
	if idx == 3 {
		c.reg.SetAF(v)
		return
	}
	c.setPair(idx, v)
}

func initLoadOps() {
	// LD r,r' (0x40-0x7F, 0x76 is HALT)
	for op := 0x40; op < 0x80; op++ {
		if op == 0x76 {
			continue
		}
		dst := regOperand(uint8(op) >> 3)
		src := regOperand(uint8(op))
		baseOps[op] = func(c *CPU) { c.writeOperand(dst, c.readOperand(src)) }
	}

	// LD r,n
	for r := uint8(0); r < 8; r++ {
		dst := regOperand(r)
		baseOps[0x06|r<<3] = func(c *CPU) {
			v := c.fetch()
			c.writeOperand(dst, v)
		}
	}

	// Indirect accumulator loads
	indirect := []struct {
		store, load uint8
		mem         operand
	}{
		{0x02, 0x0A, opBCInd},
		{0x12, 0x1A, opDEInd},
		{0x22, 0x2A, opHLI},
		{0x32, 0x3A, opHLD},
		{0xE0, 0xF0, opZeroPage},
		{0xE2, 0xF2, opZeroPageC},
		{0xEA, 0xFA, opAbs16},
	}
	for _, e := range indirect {
		mem := e.mem
		baseOps[e.store] = func(c *CPU) { c.writeOperand(mem, c.reg.A) }
		baseOps[e.load] = func(c *CPU) { c.reg.A = c.readOperand(mem) }
	}
}

func initALUOps() {
	// ALU A,r (0x80-0xBF) and ALU A,n (0xC6, 0xCE, ... 0xFE)
	for op := 0x80; op < 0xC0; op++ {
		kind := uint8(op) >> 3
		src := regOperand(uint8(op))
		baseOps[op] = func(c *CPU) { c.alu(kind, c.readOperand(src)) }
	}
	for k := uint8(0); k < 8; k++ {
		kind := k
		baseOps[0xC6|k<<3] = func(c *CPU) { c.alu(kind, c.fetch()) }
	}

	// INC r / DEC r
	for r := uint8(0); r < 8; r++ {
		o := regOperand(r)
		baseOps[0x04|r<<3] = func(c *CPU) { c.writeOperand(o, c.inc8(c.readOperand(o))) }
		baseOps[0x05|r<<3] = func(c *CPU) { c.writeOperand(o, c.dec8(c.readOperand(o))) }
	}

	baseOps[0x27] = func(c *CPU) { c.daa() }
	baseOps[0x2F] = func(c *CPU) { // CPL
		c.reg.A = ^c.reg.A
		c.reg.SetFlag(FlagN, true)
		c.reg.SetFlag(FlagH, true)
	}
	baseOps[0x37] = func(c *CPU) { // SCF
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, false)
		c.reg.SetFlag(FlagC, true)
	}
	baseOps[0x3F] = func(c *CPU) { // CCF
		c.reg.SetFlag(FlagN, false)
		c.reg.SetFlag(FlagH, false)
		c.reg.SetFlag(FlagC, !c.reg.Flag(FlagC))
	}

	// Accumulator rotates always clear Z.
	accRotates := map[uint8]func(*CPU, uint8) uint8{
		0x07: (*CPU).rlc,
		0x0F: (*CPU).rrc,
		0x17: (*CPU).rl,
		0x1F: (*CPU).rr,
	}
	for op, fn := range accRotates {
		rot := fn
		baseOps[op] = func(c *CPU) {
			c.reg.A = rot(c, c.reg.A)
			c.reg.SetFlag(FlagZ, false)
		}
	}
}

func init16BitOps() {
	for rr := uint8(0); rr < 4; rr++ {
		idx := rr
		baseOps[0x01|rr<<4] = func(c *CPU) { c.setPair(idx, c.fetch16()) }
		baseOps[0x03|rr<<4] = func(c *CPU) {
			c.setPair(idx, c.pair(idx)+1)
			c.tick()
		}
		baseOps[0x0B|rr<<4] = func(c *CPU) {
			c.setPair(idx, c.pair(idx)-1)
			c.tick()
		}
		baseOps[0x09|rr<<4] = func(c *CPU) { c.addHL(c.pair(idx)) }

		baseOps[0xC5|rr<<4] = func(c *CPU) { c.push16(c.stackPair(idx)) }
		baseOps[0xC1|rr<<4] = func(c *CPU) { c.setStackPair(idx, c.pop16()) }
	}

	baseOps[0x08] = func(c *CPU) { // LD (nn),SP
		addr := c.fetch16()
		c.write(addr, uint8(c.reg.SP))
		c.write(addr+1, uint8(c.reg.SP>>8))
	}
	baseOps[0xE8] = func(c *CPU) { // ADD SP,e
		c.reg.SP = c.spOffset()
		c.tick()
		c.tick()
	}
	baseOps[0xF8] = func(c *CPU) { // LD HL,SP+e
		c.reg.SetHL(c.spOffset())
		c.tick()
	}
	baseOps[0xF9] = func(c *CPU) { // LD SP,HL
		c.reg.SP = c.reg.HL()
		c.tick()
	}
}

func initFlowOps() {
	jr := func(c *CPU, taken bool) {
		e := int8(c.fetch())
		if taken {
			c.reg.PC += uint16(int16(e))
			c.tick()
		}
	}
	jp := func(c *CPU, taken bool) {
		addr := c.fetch16()
		if taken {
			c.reg.PC = addr
			c.tick()
		}
	}
	call := func(c *CPU, taken bool) {
		addr := c.fetch16()
		if taken {
			c.push16(c.reg.PC)
			c.reg.PC = addr
		}
	}
	ret := func(c *CPU) {
		c.reg.PC = c.pop16()
		c.tick()
	}

	baseOps[0x18] = func(c *CPU) { jr(c, true) }
	baseOps[0xC3] = func(c *CPU) { jp(c, true) }
	baseOps[0xCD] = func(c *CPU) { call(c, true) }
	baseOps[0xC9] = ret
	baseOps[0xD9] = func(c *CPU) { // RETI
		ret(c)
		c.ime = true
		c.imeDelay = 0
	}
	baseOps[0xE9] = func(c *CPU) { c.reg.PC = c.reg.HL() }

	for cc := uint8(0); cc < 4; cc++ {
		op := cc << 3
		baseOps[0x20|op] = func(c *CPU) { jr(c, c.condition(op)) }
		baseOps[0xC2|op] = func(c *CPU) { jp(c, c.condition(op)) }
		baseOps[0xC4|op] = func(c *CPU) { call(c, c.condition(op)) }
		baseOps[0xC0|op] = func(c *CPU) {
			c.tick()
			if c.condition(op) {
				ret(c)
			}
		}
	}

	// RST n
	for n := uint8(0); n < 8; n++ {
		vector := uint16(n) * 8
		baseOps[0xC7|n<<3] = func(c *CPU) {
			c.push16(c.reg.PC)
			c.reg.PC = vector
		}
	}
}

func initMiscOps() {
	baseOps[0x00] = func(c *CPU) {}
	baseOps[0x76] = (*CPU).halt
	baseOps[0x10] = func(c *CPU) { // STOP
		// No low-power mode; skip the padding byte and reset the divider.
		c.fetch()
		if t, ok := c.bus.(interface{ Timer() *Timer }); ok {
			t.Timer().ResetDivider()
		}
	}
	baseOps[0xF3] = func(c *CPU) { // DI
		c.ime = false
		c.imeDelay = 0
	}
	baseOps[0xFB] = func(c *CPU) { // EI
		if !c.ime && c.imeDelay == 0 {
			c.imeDelay = 2
		}
	}
}
