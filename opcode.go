package okt8

// OpKind identifies one of the 35 instruction patterns of the reference
// table. The set is closed: the execution engine switches over it
// exhaustively.
type OpKind byte

const (
	// OpUnknown is any bit pattern that matches no entry of the table.
	OpUnknown OpKind = iota
	// OpNop :: 0000
	OpNop
	// OpSys :: 0NNN, jump to a machine code routine at nnn
	OpSys
	// OpCls :: 00E0, clear the display
	OpCls
	// OpRet :: 00EE, return from a subroutine
	OpRet
	// OpJp :: 1NNN, jump to location nnn
	OpJp
	// OpCall :: 2NNN, call subroutine at nnn
	OpCall
	// OpSeByte :: 3XKK, skip next instruction if Vx = kk
	OpSeByte
	// OpSneByte :: 4XKK, skip next instruction if Vx != kk
	OpSneByte
	// OpSeReg :: 5XY0, skip next instruction if Vx = Vy
	OpSeReg
	// OpLdByte :: 6XKK, set Vx = kk
	OpLdByte
	// OpAddByte :: 7XKK, set Vx = Vx + kk
	OpAddByte
	// OpLdReg :: 8XY0, set Vx = Vy
	OpLdReg
	// OpOr :: 8XY1
	OpOr
	// OpAnd :: 8XY2
	OpAnd
	// OpXor :: 8XY3
	OpXor
	// OpAddReg :: 8XY4, set Vx = Vx + Vy, VF = carry
	OpAddReg
	// OpSub :: 8XY5, set Vx = Vx - Vy, VF = NOT borrow
	OpSub
	// OpShr :: 8XY6, shift right by one
	OpShr
	// OpSubn :: 8XY7, set Vx = Vy - Vx, VF = NOT borrow
	OpSubn
	// OpShl :: 8XYE, shift left by one
	OpShl
	// OpSneReg :: 9XY0, skip next instruction if Vx != Vy
	OpSneReg
	// OpLdI :: ANNN, set I = nnn
	OpLdI
	// OpJpV0 :: BNNN, jump to location nnn + V0
	OpJpV0
	// OpRnd :: CXKK, set Vx = random byte AND kk
	OpRnd
	// OpDrw :: DXYN, display n-byte sprite at (Vx, Vy)
	OpDrw
	// OpSkp :: EX9E, skip if key Vx is pressed
	OpSkp
	// OpSknp :: EXA1, skip if key Vx is not pressed
	OpSknp
	// OpLdVxDt :: FX07, set Vx = delay timer
	OpLdVxDt
	// OpLdVxK :: FX0A, wait for a key press
	OpLdVxK
	// OpLdDtVx :: FX15, set delay timer = Vx
	OpLdDtVx
	// OpLdStVx :: FX18, set sound timer = Vx
	OpLdStVx
	// OpAddI :: FX1E, set I = I + Vx
	OpAddI
	// OpLdF :: FX29, set I = sprite location for digit Vx
	OpLdF
	// OpLdB :: FX33, store BCD of Vx at I, I+1, I+2
	OpLdB
	// OpLdIVx :: FX55, store V0..Vx at I
	OpLdIVx
	// OpLdVxI :: FX65, read V0..Vx from I
	OpLdVxI
)

var opKindNames = map[OpKind]string{
	OpUnknown: "UNKNOWN",
	OpNop:     "NOP",
	OpSys:     "SYS",
	OpCls:     "CLS",
	OpRet:     "RET",
	OpJp:      "JP",
	OpCall:    "CALL",
	OpSeByte:  "SE Vx,byte",
	OpSneByte: "SNE Vx,byte",
	OpSeReg:   "SE Vx,Vy",
	OpLdByte:  "LD Vx,byte",
	OpAddByte: "ADD Vx,byte",
	OpLdReg:   "LD Vx,Vy",
	OpOr:      "OR",
	OpAnd:     "AND",
	OpXor:     "XOR",
	OpAddReg:  "ADD Vx,Vy",
	OpSub:     "SUB",
	OpShr:     "SHR",
	OpSubn:    "SUBN",
	OpShl:     "SHL",
	OpSneReg:  "SNE Vx,Vy",
	OpLdI:     "LD I,addr",
	OpJpV0:    "JP V0,addr",
	OpRnd:     "RND",
	OpDrw:     "DRW",
	OpSkp:     "SKP",
	OpSknp:    "SKNP",
	OpLdVxDt:  "LD Vx,DT",
	OpLdVxK:   "LD Vx,K",
	OpLdDtVx:  "LD DT,Vx",
	OpLdStVx:  "LD ST,Vx",
	OpAddI:    "ADD I,Vx",
	OpLdF:     "LD F,Vx",
	OpLdB:     "LD B,Vx",
	OpLdIVx:   "LD [I],Vx",
	OpLdVxI:   "LD Vx,[I]",
}

func (k OpKind) String() string {
	if name, ok := opKindNames[k]; ok {
		return name
	}

	return "UNKNOWN"
}

// Op is the decoded form of a 16-bit instruction word. Every nibble-derived
// field is extracted up front; the Kind says which of them are meaningful.
type Op struct {
	Kind OpKind
	// X and Y are 4-bit register indices
	X, Y byte
	// N is the trailing 4-bit literal
	N byte
	// KK is the trailing 8-bit literal
	KK byte
	// Nnn is the 12-bit address
	Nnn uint16
	// Word is the raw instruction as fetched
	Word uint16
}

// Decode interprets a big-endian 16-bit instruction word.
// Patterns outside the reference table decode to OpUnknown; the fields are
// still populated so diagnostics can print them.
func Decode(word uint16) Op {
	op := Op{
		Kind: OpUnknown,
		X:    byte((word & 0x0F00) >> 8),
		Y:    byte((word & 0x00F0) >> 4),
		N:    byte(word & 0x000F),
		KK:   byte(word & 0x00FF),
		Nnn:  word & 0x0FFF,
		Word: word,
	}

	switch word & 0xF000 {
	case 0x0000:
		switch word {
		case 0x0000:
			op.Kind = OpNop
		case 0x00E0:
			op.Kind = OpCls
		case 0x00EE:
			op.Kind = OpRet
		default:
			op.Kind = OpSys
		}

	case 0x1000:
		op.Kind = OpJp

	case 0x2000:
		op.Kind = OpCall

	case 0x3000:
		op.Kind = OpSeByte

	case 0x4000:
		op.Kind = OpSneByte

	case 0x5000:
		if op.N == 0x0 {
			op.Kind = OpSeReg
		}

	case 0x6000:
		op.Kind = OpLdByte

	case 0x7000:
		op.Kind = OpAddByte

	case 0x8000:
		switch op.N {
		case 0x0:
			op.Kind = OpLdReg
		case 0x1:
			op.Kind = OpOr
		case 0x2:
			op.Kind = OpAnd
		case 0x3:
			op.Kind = OpXor
		case 0x4:
			op.Kind = OpAddReg
		case 0x5:
			op.Kind = OpSub
		case 0x6:
			op.Kind = OpShr
		case 0x7:
			op.Kind = OpSubn
		case 0xE:
			op.Kind = OpShl
		}

	case 0x9000:
		if op.N == 0x0 {
			op.Kind = OpSneReg
		}

	case 0xA000:
		op.Kind = OpLdI

	case 0xB000:
		op.Kind = OpJpV0

	case 0xC000:
		op.Kind = OpRnd

	case 0xD000:
		op.Kind = OpDrw

	case 0xE000:
		switch op.KK {
		case 0x9E:
			op.Kind = OpSkp
		case 0xA1:
			op.Kind = OpSknp
		}

	case 0xF000:
		switch op.KK {
		case 0x07:
			op.Kind = OpLdVxDt
		case 0x0A:
			op.Kind = OpLdVxK
		case 0x15:
			op.Kind = OpLdDtVx
		case 0x18:
			op.Kind = OpLdStVx
		case 0x1E:
			op.Kind = OpAddI
		case 0x29:
			op.Kind = OpLdF
		case 0x33:
			op.Kind = OpLdB
		case 0x55:
			op.Kind = OpLdIVx
		case 0x65:
			op.Kind = OpLdVxI
		}
	}

	return op
}

// Encode rebuilds the instruction word from the operand fields, the inverse
// of Decode for every recognized kind. Unknown ops return the raw word.
func (op Op) Encode() uint16 {
	x := uint16(op.X&0xF) << 8
	y := uint16(op.Y&0xF) << 4
	kk := uint16(op.KK)
	n := uint16(op.N & 0xF)
	nnn := op.Nnn & addrMask

	switch op.Kind {
	case OpNop:
		return 0x0000
	case OpCls:
		return 0x00E0
	case OpRet:
		return 0x00EE
	case OpSys:
		return 0x0000 | nnn
	case OpJp:
		return 0x1000 | nnn
	case OpCall:
		return 0x2000 | nnn
	case OpSeByte:
		return 0x3000 | x | kk
	case OpSneByte:
		return 0x4000 | x | kk
	case OpSeReg:
		return 0x5000 | x | y
	case OpLdByte:
		return 0x6000 | x | kk
	case OpAddByte:
		return 0x7000 | x | kk
	case OpLdReg:
		return 0x8000 | x | y
	case OpOr:
		return 0x8001 | x | y
	case OpAnd:
		return 0x8002 | x | y
	case OpXor:
		return 0x8003 | x | y
	case OpAddReg:
		return 0x8004 | x | y
	case OpSub:
		return 0x8005 | x | y
	case OpShr:
		return 0x8006 | x | y
	case OpSubn:
		return 0x8007 | x | y
	case OpShl:
		return 0x800E | x | y
	case OpSneReg:
		return 0x9000 | x | y
	case OpLdI:
		return 0xA000 | nnn
	case OpJpV0:
		return 0xB000 | nnn
	case OpRnd:
		return 0xC000 | x | kk
	case OpDrw:
		return 0xD000 | x | y | n
	case OpSkp:
		return 0xE09E | x
	case OpSknp:
		return 0xE0A1 | x
	case OpLdVxDt:
		return 0xF007 | x
	case OpLdVxK:
		return 0xF00A | x
	case OpLdDtVx:
		return 0xF015 | x
	case OpLdStVx:
		return 0xF018 | x
	case OpAddI:
		return 0xF01E | x
	case OpLdF:
		return 0xF029 | x
	case OpLdB:
		return 0xF033 | x
	case OpLdIVx:
		return 0xF055 | x
	case OpLdVxI:
		return 0xF065 | x
	}

	return op.Word
}
