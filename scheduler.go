package okt8

import "time"

// FrameOutcome is what one 60Hz tick produced.
type FrameOutcome struct {
	// InstructionsExecuted is the number of fetch-decode-execute cycles the
	// frame consumed, faulting ones included.
	InstructionsExecuted uint
	// BuzzerActive reports whether the sound timer should drive the buzzer.
	// Always false when the st-equals-buzzer quirk is off.
	BuzzerActive bool
	// Diagnostics collects the per-instruction faults of the frame: stack
	// misuse and unknown or unimplemented opcodes. None of them stops
	// execution.
	Diagnostics []error
}

// Tick runs one frame: exactly CyclesPerFrame instructions, then a single
// decrement of both timers, then the buzzer evaluation.
// The tick is a logical checkpoint; wall-clock pacing belongs to the
// caller's render loop (or to Run).
func (cpu *Cpu) Tick() (FrameOutcome, error) {
	if cpu.isHalted {
		return FrameOutcome{}, ErrCpuIsHalted
	}

	cpu.runHooks(cpu.beforeFrameHooks)

	outcome := FrameOutcome{}

	for i := uint(0); i < cpu.CyclesPerFrame; i++ {
		cpu.runHooks(cpu.beforeCycleHooks)

		if err := cpu.stepOnce(); err != nil {
			outcome.Diagnostics = append(outcome.Diagnostics, err)
			cpu.lastError = err
			cpu.runHooks(cpu.errorHooks)
		}

		cpu.cycles++
		outcome.InstructionsExecuted++

		cpu.runHooks(cpu.afterCycleHooks)
	}

	cpu.Reg.TickTimers()

	if cpu.quirks.StEqualsBuzzer {
		outcome.BuzzerActive = cpu.Reg.IsSoundTimerActive()
		if outcome.BuzzerActive {
			cpu.Buzzer.Play()
		} else {
			cpu.Buzzer.Stop()
		}
	}

	cpu.frames++

	cpu.runHooks(cpu.afterFrameHooks)

	return outcome, nil
}

// SingleFrame runs one frame bypassing the pause state.
func (cpu *Cpu) SingleFrame() error {
	if !cpu.isBooted {
		return ErrCpuIsNotBooted
	}

	_, err := cpu.Tick()
	return err
}

// RunAtFrameRate sets the frame rate and starts the loop
func (cpu *Cpu) RunAtFrameRate(inHz uint) error {
	cpu.SetFrameRate(inHz)
	return cpu.Run()
}

// Run drives the scheduler at the current frame rate until the program
// counter runs off the end of memory or the CPU halts.
// A paused CPU keeps the loop alive without consuming instructions.
func (cpu *Cpu) Run() error {
	if !cpu.isBooted {
		return ErrCpuIsNotBooted
	}

	var last time.Time

	for {
		if !cpu.isPaused {
			if _, err := cpu.Tick(); err != nil {
				return err
			}

			if cpu.Reg.Pc >= MemorySize {
				return nil
			}
		}

		// Prevent the loop from running faster than the frame rate
		time.Sleep(max(cpu.step-time.Since(last), 0))
		last = time.Now()
	}
}
