// Package console renders a running machine as an ANSI status panel and
// reads single-key commands from a raw-mode terminal.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/ottolin/okt8"
)

const esc = 0x1B

// Monitor draws the register file, timers, stack and a memory window around
// the program counter on every frame.
type Monitor struct {
	terminal io.Writer

	// MemoryWindow is the number of instruction words shown around the Pc
	MemoryWindow int
}

func NewMonitor() *Monitor {
	return NewMonitorWithOutput(os.Stdout)
}

func NewMonitorWithOutput(out io.Writer) *Monitor {
	return &Monitor{
		terminal:     out,
		MemoryWindow: 8,
	}
}

// Boot clears the terminal and homes the cursor.
func (mon *Monitor) Boot() error {
	_, err := mon.terminal.Write([]byte{
		// Move cursor to start
		esc, '[', '1', 'H',
		// clear the terminal
		esc, '[', '0', 'J',
	})

	return err
}

// Render draws the snapshot. The memory window needs the live memory, which
// collaborators read through the masked Read accessor only.
func (mon *Monitor) Render(snap okt8.Snapshot, mem *okt8.Memory, lastErr error) error {
	buff := make([]byte, 0, 1024)
	buff = append(buff, esc, '[', '1', 'H')

	buff = append(buff, fmt.Sprintf("PC=%04X  I=%03X  SP=%02d  DT=%03d  ST=%03d  frame=%d\n",
		snap.Pc, snap.I, snap.Sp, snap.Dt, snap.St, snap.Frames)...)

	for i := 0; i < 16; i++ {
		buff = append(buff, fmt.Sprintf("V%X=%02X ", i, snap.V[i])...)
		if i%8 == 7 {
			buff = append(buff, '\n')
		}
	}

	buff = append(buff, "stack: [ "...)
	for i := byte(0); i < snap.Sp; i++ {
		buff = append(buff, fmt.Sprintf("%03X ", snap.Stack[i])...)
	}
	buff = append(buff, ']', esc, '[', 'K', '\n')

	start := snap.Pc - uint16(mon.MemoryWindow)
	for i := 0; i < 2*mon.MemoryWindow; i += 2 {
		addr := start + uint16(i)
		word := uint16(mem.Read(addr))<<8 | uint16(mem.Read(addr+1))

		marker := "  "
		if addr == snap.Pc {
			marker = "> "
		}
		buff = append(buff, fmt.Sprintf("%s%04X: %04X  %s\n", marker, addr&0xFFF, word, okt8.Decode(word).Kind)...)
	}

	if lastErr != nil {
		buff = append(buff, fmt.Sprintf("last fault: %v", lastErr)...)
	}
	buff = append(buff, esc, '[', 'K', '\n')

	_, err := mon.terminal.Write(buff)
	return err
}
