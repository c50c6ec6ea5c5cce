package emu

// operand names an 8-bit source or destination. The first eight values
// follow the instruction encoding of register fields (B C D E H L (HL) A).
type operand uint8

const (
	opB operand = iota
	opC
	opD
	opE
	opH
	opL
	opHLInd // (HL)
	opA

	opBCInd     // (BC)
	opDEInd     // (DE)
	opHLI       // (HL+)
	opHLD       // (HL-)
	opImm8      // n
	opAbs16     // (nn)
	opZeroPage  // (0xFF00+n)
	opZeroPageC // (0xFF00+C)
)

var operandNames = [...]string{
	"B", "C", "D", "E", "H", "L", "(HL)", "A",
	"(BC)", "(DE)", "(HL+)", "(HL-)", "n", "(nn)", "(FF00+n)", "(FF00+C)",
}

func (o operand) String() string {
	if int(o) < len(operandNames) {
		return operandNames[o]
	}
	return "?"
}

// regOperand decodes a 3-bit register field.
func regOperand(bits uint8) operand {
	return operand(bits & 0x07)
}

// address resolves a memory operand to its address, consuming any
// immediate bytes and applying HL post-increment/decrement.
func (c *CPU) address(o operand) uint16 {
	switch o {
	case opHLInd:
		return c.reg.HL()
	case opBCInd:
		return c.reg.BC()
	case opDEInd:
		return c.reg.DE()
	case opHLI:
		hl := c.reg.HL()
		c.reg.SetHL(hl + 1)
		return hl
	case opHLD:
		hl := c.reg.HL()
		c.reg.SetHL(hl - 1)
		return hl
	case opAbs16:
		return c.fetch16()
	case opZeroPage:
		return 0xFF00 | uint16(c.fetch())
	case opZeroPageC:
		return 0xFF00 | uint16(c.reg.C)
	}
	panic("emu: operand " + o.String() + " has no address")
}

func (c *CPU) readOperand(o operand) uint8 {
	switch o {
	case opB:
		return c.reg.B
	case opC:
		return c.reg.C
	case opD:
		return c.reg.D
	case opE:
		return c.reg.E
	case opH:
		return c.reg.H
	case opL:
		return c.reg.L
	case opA:
		return c.reg.A
	case opImm8:
		return c.fetch()
	}
	return c.read(c.address(o))
}

func (c *CPU) writeOperand(o operand, v uint8) {
	switch o {
	case opB:
		c.reg.B = v
	case opC:
		c.reg.C = v
	case opD:
		c.reg.D = v
	case opE:
		c.reg.E = v
	case opH:
		c.reg.H = v
	case opL:
		c.reg.L = v
	case opA:
		c.reg.A = v
	default:
		c.write(c.address(o), v)
	}
}
