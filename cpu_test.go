package okt8_test

import (
	"errors"
	"testing"

	"github.com/ottolin/okt8"
)

func newTestCpu(quirks okt8.Quirks) *okt8.Cpu {
	cpu := okt8.NewCpu(okt8.NewMemory(), quirks, okt8.NewDummyBuzzer())
	cpu.CyclesPerFrame = 1

	return cpu
}

func runNFrames(cpu *okt8.Cpu, program []byte, n int) error {
	if err := cpu.LoadProgram(program); err != nil {
		return err
	}

	if err := cpu.Boot(); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		if err := cpu.SingleFrame(); err != nil {
			return err
		}
	}

	return nil
}

func assertVxEq(t *testing.T, msg string, cpu *okt8.Cpu, x, kk byte) {
	t.Helper()
	if cpu.Reg.V[x] != kk {
		t.Fatalf(`%s: cpu.Reg.V[%x] = %x, expected %x`, msg, x, cpu.Reg.V[x], kk)
	}
}

// TestProgramLoading loads a program that jumps behind the last address so
// the Pc runs off the end of memory
func TestProgramLoading(t *testing.T) {
	cpu := newTestCpu(okt8.DefaultQuirks())

	program := []byte{
		// move to the last address
		0x1F, 0xFE,
	}
	if err := runNFrames(cpu, program, 2); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}

	expectedPc := uint16(4096)
	if cpu.Reg.Pc != expectedPc {
		t.Fatalf(`cpu.Reg.Pc = %d, expected for %d`, cpu.Reg.Pc, expectedPc)
	}
}

// TestConstantSetInstructions
func TestConstantSetInstructions(t *testing.T) {
	cpu := newTestCpu(okt8.DefaultQuirks())

	program := []byte{
		// set v0 to 128
		0x60, 128,
		// set v1 to 16
		0x61, 16,
		// set v2 to 1
		0x62, 1,
		// add to v2 4
		0x72, 4,
	}
	if err := runNFrames(cpu, program, 4); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}

	assertVxEq(t, "LD V0", cpu, 0x0, 128)
	assertVxEq(t, "LD V1", cpu, 0x1, 16)
	assertVxEq(t, "ADD V2", cpu, 0x2, 5)
}

func TestAddByteWrapsWithoutFlag(t *testing.T) {
	cpu := newTestCpu(okt8.DefaultQuirks())

	program := []byte{
		// set vF to 1 so a flag change would be visible
		0x6F, 1,
		// set v0 to 250
		0x60, 250,
		// add 10: wraps to 4, no flag change
		0x70, 10,
	}
	if err := runNFrames(cpu, program, 3); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}

	assertVxEq(t, "ADD Vx,byte wraps", cpu, 0x0, 4)
	assertVxEq(t, "ADD Vx,byte leaves VF alone", cpu, 0xF, 1)
}

// TestSimpleSkips checks the taken and not-taken paths of SE/SNE
func TestSimpleSkips(t *testing.T) {
	cpu := newTestCpu(okt8.DefaultQuirks())

	program := []byte{
		// set v0 to 128
		0x60, 128,
		// set v1 to 16
		0x61, 16,
		// set v2 to 128
		0x62, 128,

		// if v0 == 128, do not set v3 to 1
		0x30, 128,
		0x63, 1,

		// if v0 == 16, do not set vA to 1
		0x30, 16,
		0x6A, 1,

		// if v0 != 128, do not set v4 to 1
		0x40, 128,
		0x64, 1,

		// if v0 != 16, do not set vB to 1
		0x40, 16,
		0x6B, 1,

		// if v0 == v1, do not set v5 to 1
		0x50, 0x10,
		0x65, 1,

		// if v0 == v2, do not set v6 to 1
		0x50, 0x20,
		0x66, 1,

		// if v0 != v1, do not set v7 to 1
		0x90, 0x10,
		0x67, 1,

		// if v0 != v2, do not set v8 to 1
		0x90, 0x20,
		0x68, 1,
	}
	if err := runNFrames(cpu, program, 16); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}

	assertVxEq(t, "SE Vx kk true", cpu, 0x3, 0x0)
	assertVxEq(t, "SE Vx kk false", cpu, 0xA, 0x1)
	assertVxEq(t, "SNE Vx kk true", cpu, 0xB, 0x0)
	assertVxEq(t, "SNE Vx kk false", cpu, 0x4, 0x1)
	assertVxEq(t, "SE Vx Vy false", cpu, 0x5, 0x1)
	assertVxEq(t, "SE Vx Vy true", cpu, 0x6, 0x0)
	assertVxEq(t, "SNE Vx Vy true", cpu, 0x7, 0x0)
	assertVxEq(t, "SNE Vx Vy false", cpu, 0x8, 0x1)
}

func TestAddWithCarry(t *testing.T) {
	cases := []struct {
		a, b      byte
		result    byte
		carryFlag byte
	}{
		{200, 100, 44, 1},
		{10, 20, 30, 0},
		{255, 1, 0, 1},
		{255, 255, 254, 1},
		{0, 0, 0, 0},
		{128, 127, 255, 0},
	}

	for _, c := range cases {
		cpu := newTestCpu(okt8.DefaultQuirks())

		program := []byte{
			0x60, c.a,
			0x61, c.b,
			// v0 += v1, vF = carry
			0x80, 0x14,
		}
		if err := runNFrames(cpu, program, 3); err != nil {
			t.Fatalf(`SingleFrame() returned an error %v`, err)
		}

		assertVxEq(t, "ADD Vx,Vy result", cpu, 0x0, c.result)
		assertVxEq(t, "ADD Vx,Vy carry", cpu, 0xF, c.carryFlag)
	}
}

func TestSubWithBorrow(t *testing.T) {
	cases := []struct {
		a, b       byte
		result     byte
		borrowFlag byte
	}{
		{100, 30, 70, 1},
		{30, 100, 186, 0},
		{50, 50, 0, 1},
		{0, 1, 255, 0},
	}

	for _, c := range cases {
		cpu := newTestCpu(okt8.DefaultQuirks())

		program := []byte{
			0x60, c.a,
			0x61, c.b,
			// v0 -= v1, vF = NOT borrow
			0x80, 0x15,
		}
		if err := runNFrames(cpu, program, 3); err != nil {
			t.Fatalf(`SingleFrame() returned an error %v`, err)
		}

		assertVxEq(t, "SUB Vx,Vy result", cpu, 0x0, c.result)
		assertVxEq(t, "SUB Vx,Vy flag", cpu, 0xF, c.borrowFlag)
	}
}

func TestSubnWithBorrow(t *testing.T) {
	cases := []struct {
		a, b       byte
		result     byte
		borrowFlag byte
	}{
		{30, 100, 70, 1},
		{100, 30, 186, 0},
		{50, 50, 0, 1},
	}

	for _, c := range cases {
		cpu := newTestCpu(okt8.DefaultQuirks())

		program := []byte{
			0x60, c.a,
			0x61, c.b,
			// v0 = v1 - v0, vF = NOT borrow
			0x80, 0x17,
		}
		if err := runNFrames(cpu, program, 3); err != nil {
			t.Fatalf(`SingleFrame() returned an error %v`, err)
		}

		assertVxEq(t, "SUBN Vx,Vy result", cpu, 0x0, c.result)
		assertVxEq(t, "SUBN Vx,Vy flag", cpu, 0xF, c.borrowFlag)
	}
}

func TestBitwiseInstructions(t *testing.T) {
	orCpu := newTestCpu(okt8.DefaultQuirks())
	if err := runNFrames(orCpu, []byte{0x60, 0b1100, 0x61, 0b1010, 0x80, 0x11}, 3); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}
	assertVxEq(t, "OR", orCpu, 0x0, 0b1110)

	andCpu := newTestCpu(okt8.DefaultQuirks())
	if err := runNFrames(andCpu, []byte{0x60, 0b1100, 0x61, 0b1010, 0x80, 0x12}, 3); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}
	assertVxEq(t, "AND", andCpu, 0x0, 0b1000)

	xorCpu := newTestCpu(okt8.DefaultQuirks())
	if err := runNFrames(xorCpu, []byte{0x60, 0b1100, 0x61, 0b1010, 0x80, 0x13}, 3); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}
	assertVxEq(t, "XOR", xorCpu, 0x0, 0b0110)

	ldCpu := newTestCpu(okt8.DefaultQuirks())
	if err := runNFrames(ldCpu, []byte{0x60, 0b1100, 0x61, 0b1010, 0x80, 0x10}, 3); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}
	assertVxEq(t, "LD Vx,Vy", ldCpu, 0x0, 0b1010)
}

// TestShiftQuirk pins the 0x80/0x01 vector of the shift-source quirk: with
// the quirk off the result depends only on Vx, with it on only on Vy.
func TestShiftQuirk(t *testing.T) {
	program := []byte{
		// v0 = 0x80, v1 = 0x01
		0x60, 0x80,
		0x61, 0x01,
		// v0 = source >> 1
		0x80, 0x16,
	}

	offCpu := newTestCpu(okt8.Quirks{ShiftUsesVy: false, StEqualsBuzzer: true})
	if err := runNFrames(offCpu, program, 3); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}
	assertVxEq(t, "SHR quirk off result", offCpu, 0x0, 0x40)
	assertVxEq(t, "SHR quirk off flag", offCpu, 0xF, 0x0)

	onCpu := newTestCpu(okt8.Quirks{ShiftUsesVy: true, StEqualsBuzzer: true})
	if err := runNFrames(onCpu, program, 3); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}
	assertVxEq(t, "SHR quirk on result", onCpu, 0x0, 0x00)
	assertVxEq(t, "SHR quirk on flag", onCpu, 0xF, 0x1)
}

func TestShiftLeftQuirk(t *testing.T) {
	program := []byte{
		0x60, 0x80,
		0x61, 0x01,
		// v0 = source << 1
		0x80, 0x1E,
	}

	offCpu := newTestCpu(okt8.Quirks{ShiftUsesVy: false, StEqualsBuzzer: true})
	if err := runNFrames(offCpu, program, 3); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}
	assertVxEq(t, "SHL quirk off result", offCpu, 0x0, 0x00)
	assertVxEq(t, "SHL quirk off flag", offCpu, 0xF, 0x1)

	onCpu := newTestCpu(okt8.Quirks{ShiftUsesVy: true, StEqualsBuzzer: true})
	if err := runNFrames(onCpu, program, 3); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}
	assertVxEq(t, "SHL quirk on result", onCpu, 0x0, 0x02)
	assertVxEq(t, "SHL quirk on flag", onCpu, 0xF, 0x0)
}

func TestLoadIndexAndJumpV0(t *testing.T) {
	cpu := newTestCpu(okt8.DefaultQuirks())

	program := []byte{
		// I = 0xABC
		0xAA, 0xBC,
		// v0 = 4
		0x60, 0x04,
		// jump to 0x300 + v0
		0xB3, 0x00,
	}
	if err := runNFrames(cpu, program, 3); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}

	if got := cpu.Reg.Index(); got != 0xABC {
		t.Fatalf(`cpu.Reg.Index() = %X, expected ABC`, got)
	}
	if cpu.Reg.Pc != 0x304 {
		t.Fatalf(`cpu.Reg.Pc = %X, expected 304`, cpu.Reg.Pc)
	}
}

// TestCallRet checks that RET lands on the instruction right after the CALL
func TestCallRet(t *testing.T) {
	cpu := newTestCpu(okt8.DefaultQuirks())

	program := []byte{
		// 0x200: call the subroutine at 0x208
		0x22, 0x08,
		// 0x202: v0 = 7 runs after the return
		0x60, 0x07,
		// 0x204, 0x206: padding
		0x00, 0x00,
		0x00, 0x00,
		// 0x208: v1 = 9, then return
		0x61, 0x09,
		0x00, 0xEE,
	}
	if err := runNFrames(cpu, program, 4); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}

	assertVxEq(t, "subroutine body ran", cpu, 0x1, 9)
	assertVxEq(t, "post-call instruction ran", cpu, 0x0, 7)
	if cpu.Reg.Sp != 0 {
		t.Fatalf(`cpu.Reg.Sp = %d, expected 0 after RET`, cpu.Reg.Sp)
	}
}

// TestCallOverflow calls the same address over and over: the 17th call must
// fail with a stack overflow diagnostic and leave the stack unchanged.
func TestCallOverflow(t *testing.T) {
	cpu := newTestCpu(okt8.DefaultQuirks())

	program := []byte{
		// call self forever
		0x22, 0x00,
	}
	if err := runNFrames(cpu, program, 16); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}

	if cpu.Reg.Sp != 16 {
		t.Fatalf(`cpu.Reg.Sp = %d, expected 16 after filling the stack`, cpu.Reg.Sp)
	}

	outcome, err := cpu.Tick()
	if err != nil {
		t.Fatalf(`Tick() returned an error %v`, err)
	}

	if len(outcome.Diagnostics) != 1 || !errors.Is(outcome.Diagnostics[0], okt8.ErrStackOverflow) {
		t.Fatalf(`outcome.Diagnostics = %v, expected a single ErrStackOverflow`, outcome.Diagnostics)
	}
	if cpu.Reg.Sp != 16 {
		t.Fatalf(`cpu.Reg.Sp = %d, the failed call must leave the stack unchanged`, cpu.Reg.Sp)
	}
	// the faulting instruction still consumed its fetch
	if cpu.Reg.Pc != 0x202 {
		t.Fatalf(`cpu.Reg.Pc = %X, expected 202`, cpu.Reg.Pc)
	}
}

// TestRetUnderflow returns with an empty stack: a diagnostic, not a crash.
func TestRetUnderflow(t *testing.T) {
	cpu := newTestCpu(okt8.DefaultQuirks())

	if err := cpu.LoadProgram([]byte{0x00, 0xEE}); err != nil {
		t.Fatalf(`LoadProgram() returned an error %v`, err)
	}
	if err := cpu.Boot(); err != nil {
		t.Fatalf(`Boot() returned an error %v`, err)
	}

	outcome, err := cpu.Tick()
	if err != nil {
		t.Fatalf(`Tick() returned an error %v`, err)
	}

	if len(outcome.Diagnostics) != 1 || !errors.Is(outcome.Diagnostics[0], okt8.ErrStackUnderflow) {
		t.Fatalf(`outcome.Diagnostics = %v, expected a single ErrStackUnderflow`, outcome.Diagnostics)
	}
	if cpu.Reg.Pc != 0x202 {
		t.Fatalf(`cpu.Reg.Pc = %X, expected 202: execution continues after the fault`, cpu.Reg.Pc)
	}
}

func TestUnknownOpcodeIsReportedAndTolerated(t *testing.T) {
	cpu := newTestCpu(okt8.DefaultQuirks())

	// SE Vx,Vy with a nonzero trailing nibble matches nothing
	if err := cpu.LoadProgram([]byte{0x51, 0x21, 0x60, 0x05}); err != nil {
		t.Fatalf(`LoadProgram() returned an error %v`, err)
	}
	if err := cpu.Boot(); err != nil {
		t.Fatalf(`Boot() returned an error %v`, err)
	}

	outcome, err := cpu.Tick()
	if err != nil {
		t.Fatalf(`Tick() returned an error %v`, err)
	}

	if len(outcome.Diagnostics) != 1 {
		t.Fatalf(`outcome.Diagnostics = %v, expected a single fault`, outcome.Diagnostics)
	}

	var unknown okt8.ErrOpCodeUnknown
	if !errors.As(outcome.Diagnostics[0], &unknown) {
		t.Fatalf(`diagnostic = %v, expected ErrOpCodeUnknown`, outcome.Diagnostics[0])
	}
	if unknown.OpCode != 0x5121 {
		t.Fatalf(`unknown.OpCode = %04X, expected 5121`, unknown.OpCode)
	}

	// the next instruction still runs
	if _, err := cpu.Tick(); err != nil {
		t.Fatalf(`Tick() returned an error %v`, err)
	}
	assertVxEq(t, "execution continues after an unknown opcode", cpu, 0x0, 5)
}

// TestUnimplementedFamiliesAreRouted makes sure the display, keyboard and
// timer/font/BCD patterns are recognized and reported instead of being
// misdecoded as arithmetic.
func TestUnimplementedFamiliesAreRouted(t *testing.T) {
	words := map[uint16]okt8.OpKind{
		0x00E0: okt8.OpCls,
		0xD125: okt8.OpDrw,
		0xE19E: okt8.OpSkp,
		0xE1A1: okt8.OpSknp,
		0xF107: okt8.OpLdVxDt,
		0xF10A: okt8.OpLdVxK,
		0xF115: okt8.OpLdDtVx,
		0xF118: okt8.OpLdStVx,
		0xF11E: okt8.OpAddI,
		0xF129: okt8.OpLdF,
		0xF133: okt8.OpLdB,
		0xF155: okt8.OpLdIVx,
		0xF165: okt8.OpLdVxI,
	}

	for word, kind := range words {
		cpu := newTestCpu(okt8.DefaultQuirks())

		if err := cpu.LoadProgram([]byte{byte(word >> 8), byte(word)}); err != nil {
			t.Fatalf(`LoadProgram() returned an error %v`, err)
		}
		if err := cpu.Boot(); err != nil {
			t.Fatalf(`Boot() returned an error %v`, err)
		}

		outcome, err := cpu.Tick()
		if err != nil {
			t.Fatalf(`Tick() returned an error %v`, err)
		}

		if len(outcome.Diagnostics) != 1 {
			t.Fatalf(`outcome.Diagnostics = %v for %04X, expected a single fault`, outcome.Diagnostics, word)
		}

		var unimplemented okt8.ErrOpCodeUnimplemented
		if !errors.As(outcome.Diagnostics[0], &unimplemented) {
			t.Fatalf(`diagnostic = %v for %04X, expected ErrOpCodeUnimplemented`, outcome.Diagnostics[0], word)
		}
		if unimplemented.Kind != kind {
			t.Fatalf(`unimplemented.Kind = %v for %04X, expected %v`, unimplemented.Kind, word, kind)
		}
		if cpu.Reg.Pc != 0x202 {
			t.Fatalf(`cpu.Reg.Pc = %X after %04X, expected 202`, cpu.Reg.Pc, word)
		}
	}
}

// TestRndMasked runs RND V0,0x0F many times: the result must stay in [0,15].
func TestRndMasked(t *testing.T) {
	cpu := newTestCpu(okt8.DefaultQuirks())
	cpu.Rand = okt8.NewSeededRandomSource(42)

	if err := cpu.LoadProgram([]byte{0xC0, 0x0F}); err != nil {
		t.Fatalf(`LoadProgram() returned an error %v`, err)
	}
	if err := cpu.Boot(); err != nil {
		t.Fatalf(`Boot() returned an error %v`, err)
	}

	for i := 0; i < 50; i++ {
		if err := cpu.SingleFrame(); err != nil {
			t.Fatalf(`SingleFrame() returned an error %v`, err)
		}

		if cpu.Reg.V[0]&^byte(0x0F) != 0 {
			t.Fatalf(`RND V0,0x0F produced %X, outside [0,15]`, cpu.Reg.V[0])
		}

		cpu.Reset()
	}
}

// TestTimerDecrement: delay=5 reaches 0 after 5 ticks and holds there.
func TestTimerDecrement(t *testing.T) {
	cpu := newTestCpu(okt8.DefaultQuirks())

	if err := cpu.LoadProgram([]byte{}); err != nil {
		t.Fatalf(`LoadProgram() returned an error %v`, err)
	}
	if err := cpu.Boot(); err != nil {
		t.Fatalf(`Boot() returned an error %v`, err)
	}

	cpu.Reg.Dt = 5
	for i := 0; i < 5; i++ {
		if err := cpu.SingleFrame(); err != nil {
			t.Fatalf(`SingleFrame() returned an error %v`, err)
		}
	}

	if cpu.Reg.Dt != 0 {
		t.Fatalf(`cpu.Reg.Dt = %d after 5 ticks, expected 0`, cpu.Reg.Dt)
	}

	if err := cpu.SingleFrame(); err != nil {
		t.Fatalf(`SingleFrame() returned an error %v`, err)
	}
	if cpu.Reg.Dt != 0 {
		t.Fatalf(`cpu.Reg.Dt = %d on tick 6, expected it to hold at 0`, cpu.Reg.Dt)
	}
}

// TestEndToEndScenario: LD V0,5; ADD V0,3; NOP with three cycles per frame.
func TestEndToEndScenario(t *testing.T) {
	cpu := newTestCpu(okt8.DefaultQuirks())
	cpu.CyclesPerFrame = 3

	if err := cpu.LoadProgram([]byte{0x60, 0x05, 0x70, 0x03, 0x00, 0x00}); err != nil {
		t.Fatalf(`LoadProgram() returned an error %v`, err)
	}
	if err := cpu.Boot(); err != nil {
		t.Fatalf(`Boot() returned an error %v`, err)
	}

	outcome, err := cpu.Tick()
	if err != nil {
		t.Fatalf(`Tick() returned an error %v`, err)
	}
	if outcome.InstructionsExecuted != 3 {
		t.Fatalf(`outcome.InstructionsExecuted = %d, expected 3`, outcome.InstructionsExecuted)
	}

	assertVxEq(t, "the program ran", cpu, 0x0, 8)
	if cpu.Reg.Pc != 0x206 {
		t.Fatalf(`cpu.Reg.Pc = %X after the program, expected 206`, cpu.Reg.Pc)
	}

	// a second tick walks through the zero-filled memory as NOPs without
	// touching the registers
	if _, err := cpu.Tick(); err != nil {
		t.Fatalf(`Tick() returned an error %v`, err)
	}
	assertVxEq(t, "NOPs leave the registers alone", cpu, 0x0, 8)
	if cpu.Reg.Pc != 0x20C {
		t.Fatalf(`cpu.Reg.Pc = %X after a frame of NOPs, expected 20C`, cpu.Reg.Pc)
	}
}
