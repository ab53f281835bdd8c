package okt8

import (
	"errors"
	"fmt"
	"time"
)

var ErrCpuIsNotBooted = errors.New("the CPU has not been booted properly")
var ErrCpuIsHalted = errors.New("the CPU is halted")

type ErrOpCodeUnknown struct {
	OpCode uint16
	Pc     uint16
}

func (err ErrOpCodeUnknown) Error() string {
	return fmt.Sprintf("unknown opcode=%04X at PC=%d", err.OpCode, err.Pc)
}

// ErrOpCodeUnimplemented marks a pattern the decoder recognizes but this
// core does not execute: the display, keyboard and timer/font/BCD families
// that belong to external collaborators.
type ErrOpCodeUnimplemented struct {
	Kind   OpKind
	OpCode uint16
	Pc     uint16
}

func (err ErrOpCodeUnimplemented) Error() string {
	return fmt.Sprintf("unimplemented opcode=%04X (%s) at PC=%d", err.OpCode, err.Kind, err.Pc)
}

// MachineRoutineInterpreter interpretes SYS (0NNN) machine routines.
// Modern interpreters ignore them; hosts that care can plug one in.
type MachineRoutineInterpreter func(op Op, cpu *Cpu) error

// Chip-8 CPU: the execution engine plus the frame scheduler driving it.
type Cpu struct {
	Memory *Memory
	Reg    *Registers

	// Rand feeds the RND instruction; seeded once per session
	Rand RandomSource
	// Buzzer is signalled at every frame boundary
	Buzzer Buzzer

	// CyclesPerFrame instructions run per 60Hz tick
	CyclesPerFrame uint

	MachineRoutineInterpreter MachineRoutineInterpreter

	quirks Quirks

	cycles uint
	frames uint

	frameRate uint
	step      time.Duration

	isBooted  bool
	isPaused  bool
	isHalted  bool
	lastError error

	// Hooks that run before every frame
	beforeFrameHooks []Hook
	// Hooks that run before every cycle
	beforeCycleHooks []Hook
	// Hooks that run after every cycle
	afterCycleHooks []Hook
	// Hooks that run after every frame
	afterFrameHooks []Hook
	// Hooks that run after an error
	errorHooks []Hook
}

const (
	DefaultFrameRate      uint = 60
	MaxFrameRate          uint = 120
	MinFrameRate          uint = 1
	DefaultCyclesPerFrame uint = 30
)

func NewCpu(memory *Memory, quirks Quirks, buzzer Buzzer) *Cpu {
	if buzzer == nil {
		buzzer = NewDummyBuzzer()
	}

	return &Cpu{
		Memory: memory,
		Reg:    NewRegisters(),

		Rand:   NewCryptoRandomSource(),
		Buzzer: buzzer,

		CyclesPerFrame: DefaultCyclesPerFrame,

		MachineRoutineInterpreter: nil,

		quirks: quirks,

		frameRate: DefaultFrameRate,
		step:      time.Second / time.Duration(DefaultFrameRate),

		isBooted:  false,
		isPaused:  false,
		isHalted:  false,
		lastError: nil,

		beforeFrameHooks: make([]Hook, 0),
		beforeCycleHooks: make([]Hook, 0),
		afterCycleHooks:  make([]Hook, 0),
		afterFrameHooks:  make([]Hook, 0),
		errorHooks:       make([]Hook, 0),
	}
}

func (cpu *Cpu) Quirks() Quirks {
	return cpu.quirks
}

func (cpu *Cpu) IsRunning() bool {
	return !cpu.isPaused && !cpu.isHalted
}

func (cpu *Cpu) IsHalted() bool {
	return cpu.isHalted
}

func (cpu *Cpu) FrameRate() uint {
	return cpu.frameRate
}

func (cpu *Cpu) SetFrameRate(inHz uint) {
	cpu.frameRate = inHz
	cpu.step = time.Second / time.Duration(inHz)
}

func (cpu *Cpu) Cycles() uint {
	return cpu.cycles
}

func (cpu *Cpu) Frames() uint {
	return cpu.frames
}

// Boot initializes all the components
// If the CPU was already booted, this method is a noop
func (cpu *Cpu) Boot() error {
	if cpu.isBooted {
		return nil
	}

	if err := cpu.Buzzer.Boot(); err != nil {
		return err
	}

	cpu.isBooted = true

	return nil
}

// LoadProgram loads the program into memory and sets the PC to the
// start-of-program address
func (cpu *Cpu) LoadProgram(program []byte) error {
	cpu.Reset()
	return cpu.Memory.LoadProgram(program)
}

func (cpu *Cpu) Reset() {
	cpu.Reg.Reset()
	cpu.frames = 0
	cpu.cycles = 0
	cpu.isHalted = false
	cpu.lastError = nil
}

// Start resumes a paused CPU.
func (cpu *Cpu) Start() {
	cpu.isPaused = false
}

// Stop pauses the CPU; the state stays intact and Start resumes it.
func (cpu *Cpu) Stop() {
	cpu.isPaused = true
}

// Halt permanently stops the session after an unrecoverable failure.
// Nothing inside the core calls it; the host decides when repeated
// diagnostics warrant giving up.
func (cpu *Cpu) Halt(reason error) {
	cpu.isHalted = true
	cpu.lastError = reason
}

// Snapshot is a read-only copy of the machine state for rendering and
// debugging collaborators.
type Snapshot struct {
	V      [16]byte
	I      uint16
	Pc     uint16
	Sp     byte
	Stack  [StackSize]uint16
	Dt, St byte

	Cycles, Frames uint
	Running        bool
}

func (cpu *Cpu) Snapshot() Snapshot {
	return Snapshot{
		V:       cpu.Reg.V,
		I:       cpu.Reg.Index(),
		Pc:      cpu.Reg.Pc,
		Sp:      cpu.Reg.Sp,
		Stack:   cpu.Reg.Stack,
		Dt:      cpu.Reg.Dt,
		St:      cpu.Reg.St,
		Cycles:  cpu.cycles,
		Frames:  cpu.frames,
		Running: cpu.IsRunning(),
	}
}
