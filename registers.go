package okt8

import "errors"

var ErrStackUnderflow = errors.New("stack underflow: try to pop an empty stack")
var ErrStackOverflow = errors.New("stack overflow: try to push to a full stack")

// StackSize is the maximum number of nested subroutine calls.
const StackSize = 16

// Registers is the full register file of the machine: the sixteen
// general-purpose V registers, the index register I, the program counter,
// the call stack with its pointer, and the two 60Hz countdown timers.
type Registers struct {
	// V 8-bit general-purpose registers; V[0xF] doubles as the
	// carry/borrow flag after arithmetic and shifts
	V [16]byte
	// I 16-bit register (12-bit usable)
	I uint16
	// Delay timer register
	Dt byte
	// Sound timer register
	St byte
	// Program counter
	Pc uint16
	// Stack pointer
	Sp byte
	// Stack of return addresses
	Stack [StackSize]uint16
}

func NewRegisters() *Registers {
	reg := &Registers{}
	reg.Reset()

	return reg
}

// Reset clears every register and points the Pc back at the start of the
// program area.
func (reg *Registers) Reset() {
	reg.V = [16]byte{}
	reg.I = 0
	reg.Dt = 0
	reg.St = 0
	reg.Pc = StartOfProgram
	reg.Sp = 0
	reg.Stack = [StackSize]uint16{}
}

// GetV returns the general register x. Indices come from 4-bit decode, so
// the mask only guards against a hand-constructed index; it never panics.
func (reg *Registers) GetV(x byte) byte {
	return reg.V[x&0xF]
}

func (reg *Registers) SetV(x, value byte) {
	reg.V[x&0xF] = value
}

// Index returns I masked to its usable 12 bits.
func (reg *Registers) Index() uint16 {
	return reg.I & addrMask
}

func (reg *Registers) SetIndex(value uint16) {
	reg.I = value & addrMask
}

// PushReturn saves a return address on the stack.
// Returns ErrStackOverflow, leaving the stack unchanged, when the depth is
// already at StackSize.
func (reg *Registers) PushReturn(addr uint16) error {
	if reg.Sp >= StackSize {
		return ErrStackOverflow
	}

	reg.Stack[reg.Sp] = addr
	reg.Sp++

	return nil
}

// PopReturn removes and returns the most recently pushed return address.
// Returns ErrStackUnderflow when the stack is empty.
func (reg *Registers) PopReturn() (uint16, error) {
	if reg.Sp == 0 {
		return 0, ErrStackUnderflow
	}

	reg.Sp--

	return reg.Stack[reg.Sp], nil
}

// TickTimers decrements each timer by exactly 1 when nonzero, otherwise
// holds it at 0. Called once per 60Hz frame.
func (reg *Registers) TickTimers() {
	if reg.Dt > 0 {
		reg.Dt--
	}
	if reg.St > 0 {
		reg.St--
	}
}

func (reg *Registers) IsDelayTimerActive() bool {
	return reg.Dt > 0
}

func (reg *Registers) IsSoundTimerActive() bool {
	return reg.St > 0
}
