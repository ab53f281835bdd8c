package okt8

import (
	"errors"
	"fmt"
	"strings"
)

var ErrProgramDoesNotFitIntoMemory = errors.New("the program does not fit into memory")

// StartOfProgram is the address where program bytes are loaded.
// Everything below it is reserved for the interpreter and the font sprites.
const StartOfProgram = 0x200

const MemorySize = 4096

// addrMask folds any address into the 0x000-0xFFF range.
const addrMask = 0xFFF

type Memory [MemorySize]byte

func newEmptyMemory() *Memory {
	m := Memory([MemorySize]byte{})
	return &m
}

// NewMemory creates an empty memory of 4096 bytes
func NewMemory() *Memory {
	m := newEmptyMemory()

	return m
}

// Read returns the byte at addr.
// The address is taken modulo 4096 by masking, never rejected. This matches
// the 12-bit address convention of the instruction set: out-of-range
// addresses silently wrap instead of erroring.
func (mem *Memory) Read(addr uint16) byte {
	return mem[addr&addrMask]
}

// Write stores b at addr, with the same 12-bit masking as Read.
func (mem *Memory) Write(addr uint16, b byte) {
	mem[addr&addrMask] = b
}

func (mem Memory) Clone() *Memory {
	m := NewMemory()

	copy(m[:], mem[:])

	return m
}

func (mem Memory) String() string {
	sb := strings.Builder{}

	sb.WriteString("[ ")
	for _, b := range mem[:StartOfProgram] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]\n")
	sb.WriteString("[ ")
	for _, b := range mem[StartOfProgram:] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]")

	return sb.String()
}

func (mem Memory) IsEqual(other Memory) bool {
	yes := true
	for i, b := range mem {
		if b != other[i] {
			yes = false
			break
		}
	}

	return yes
}

// LoadProgram copies the program bytes starting at StartOfProgram and places
// the font sprites in the reserved area below it.
// Returns ErrProgramDoesNotFitIntoMemory when the program exceeds the
// remaining space; memory is left untouched in that case.
func (mem *Memory) LoadProgram(program []byte) error {
	if len(program) > MemorySize-StartOfProgram {
		return ErrProgramDoesNotFitIntoMemory
	}

	loadFontInto(mem)

	copy(mem[StartOfProgram:], program)

	return nil
}

func loadFontInto(mem *Memory) {
	copy(mem[:], []byte{
		// 0
		0xF0, 0x90, 0x90, 0x90, 0xF0,
		// 1
		0x20, 0x60, 0x20, 0x20, 0x70,
		// 2
		0xF0, 0x10, 0xF0, 0x80, 0xF0,
		// 3
		0xF0, 0x10, 0xF0, 0x10, 0xF0,
		// 4
		0x90, 0x90, 0xF0, 0x10, 0x10,
		// 5
		0xF0, 0x80, 0xF0, 0x10, 0xF0,
		// 6
		0xF0, 0x80, 0xF0, 0x90, 0xF0,
		// 7
		0xF0, 0x10, 0x20, 0x40, 0x40,
		// 8
		0xF0, 0x90, 0xF0, 0x90, 0xF0,
		// 9
		0xF0, 0x90, 0xF0, 0x10, 0xF0,
		// A
		0xF0, 0x90, 0xF0, 0x90, 0x90,
		// B
		0xE0, 0x90, 0xE0, 0x90, 0xE0,
		// C
		0xF0, 0x80, 0x80, 0x80, 0xF0,
		// D
		0xE0, 0x90, 0x90, 0x90, 0xE0,
		// E
		0xF0, 0x80, 0xF0, 0x80, 0xF0,
		// F
		0xF0, 0x80, 0xF0, 0x80, 0x80})
}
