package okt8

// fetchNextOp reads the big-endian instruction word at the Pc and advances
// the Pc past it. Decoding never fails; unknown patterns carry OpUnknown.
func (cpu *Cpu) fetchNextOp() Op {
	var word uint16
	word |= uint16(cpu.Memory.Read(cpu.Reg.Pc+0)) << 8
	word |= uint16(cpu.Memory.Read(cpu.Reg.Pc+1)) << 0
	cpu.Reg.Pc += 2

	return Decode(word)
}

// stepOnce runs one atomic fetch-decode-execute cycle.
// A non-nil error is a per-instruction diagnostic: the instruction made no
// further mutation and execution continues at the already-advanced Pc.
func (cpu *Cpu) stepOnce() error {
	return cpu.execute(cpu.fetchNextOp())
}

func (cpu *Cpu) execute(op Op) error {
	reg := cpu.Reg

	switch op.Kind {
	case OpNop:
		// no state change besides the Pc advance

	case OpSys:
		// Only used on the old computers Chip-8 originally ran on;
		// ignored unless the host plugs in an interpreter.
		if cpu.MachineRoutineInterpreter != nil {
			return cpu.MachineRoutineInterpreter(op, cpu)
		}

	case OpRet:
		addr, err := reg.PopReturn()
		if err != nil {
			return err
		}
		reg.Pc = addr

	case OpJp:
		reg.Pc = op.Nnn

	case OpCall:
		// the pushed address is already past the CALL
		if err := reg.PushReturn(reg.Pc); err != nil {
			return err
		}
		reg.Pc = op.Nnn

	case OpSeByte:
		if reg.V[op.X] == op.KK {
			reg.Pc += 2
		}

	case OpSneByte:
		if reg.V[op.X] != op.KK {
			reg.Pc += 2
		}

	case OpSeReg:
		if reg.V[op.X] == reg.V[op.Y] {
			reg.Pc += 2
		}

	case OpSneReg:
		if reg.V[op.X] != reg.V[op.Y] {
			reg.Pc += 2
		}

	case OpLdByte:
		reg.V[op.X] = op.KK

	case OpAddByte:
		// 8-bit wraparound, no flag change
		reg.V[op.X] = reg.V[op.X] + op.KK

	case OpLdReg:
		reg.V[op.X] = reg.V[op.Y]

	case OpOr:
		reg.V[op.X] |= reg.V[op.Y]

	case OpAnd:
		reg.V[op.X] &= reg.V[op.Y]

	case OpXor:
		reg.V[op.X] ^= reg.V[op.Y]

	case OpAddReg:
		r := uint16(reg.V[op.X]) + uint16(reg.V[op.Y])
		reg.V[op.X] = byte(r & 0x00FF)
		reg.V[0xF] = byte(r >> 8)

	case OpSub:
		carry := reg.V[op.X] >= reg.V[op.Y]
		reg.V[op.X] = reg.V[op.X] - reg.V[op.Y]
		reg.V[0xF] = bool2byte(carry)

	case OpSubn:
		carry := reg.V[op.Y] >= reg.V[op.X]
		reg.V[op.X] = reg.V[op.Y] - reg.V[op.X]
		reg.V[0xF] = bool2byte(carry)

	case OpShr:
		src := reg.V[op.X]
		if cpu.quirks.ShiftUsesVy {
			src = reg.V[op.Y]
		}
		carry := src & 0b00000001
		reg.V[op.X] = src >> 1
		reg.V[0xF] = carry

	case OpShl:
		src := reg.V[op.X]
		if cpu.quirks.ShiftUsesVy {
			src = reg.V[op.Y]
		}
		carry := (src & 0b10000000) >> 7
		reg.V[op.X] = src << 1
		reg.V[0xF] = carry

	case OpLdI:
		reg.SetIndex(op.Nnn)

	case OpJpV0:
		reg.Pc = (op.Nnn + uint16(reg.V[0])) & addrMask

	case OpRnd:
		b, err := cpu.Rand.Next()
		if err != nil {
			return err
		}
		reg.V[op.X] = b & op.KK

	case OpCls, OpDrw, OpSkp, OpSknp,
		OpLdVxDt, OpLdVxK, OpLdDtVx, OpLdStVx,
		OpAddI, OpLdF, OpLdB, OpLdIVx, OpLdVxI:
		// Recognized but out of scope for this core: display, keyboard and
		// the timer/font/BCD family belong to external collaborators.
		// Reported and tolerated, consuming one fetch cycle as a no-op.
		return ErrOpCodeUnimplemented{
			Kind:   op.Kind,
			OpCode: op.Word,
			Pc:     reg.Pc,
		}

	default:
		return ErrOpCodeUnknown{
			OpCode: op.Word,
			Pc:     reg.Pc,
		}
	}

	return nil
}

func bool2byte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
