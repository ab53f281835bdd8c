package okt8

// Quirks are the configurable deviation points where historical Chip-8
// implementations disagreed on exact instruction behavior. They are resolved
// once before a session starts and are read-only afterwards.
type Quirks struct {
	// ShiftUsesVy makes SHR/SHL source their operand from Vy instead of Vx,
	// as the original COSMAC VIP interpreter did.
	ShiftUsesVy bool
	// StoreReadChangesI makes the bulk store/read instructions advance I by
	// x+1. Reserved: FX55/FX65 are not executed by this core.
	StoreReadChangesI bool
	// StEqualsBuzzer derives the buzzer state solely from the sound timer
	// being nonzero. When off, the core never drives the buzzer.
	StEqualsBuzzer bool
}

// DefaultQuirks matches the common modern interpreter behavior: shifts
// operate on Vx and the buzzer follows the sound timer.
func DefaultQuirks() Quirks {
	return Quirks{
		ShiftUsesVy:       false,
		StoreReadChangesI: false,
		StEqualsBuzzer:    true,
	}
}
