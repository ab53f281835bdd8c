package web

import (
	"log"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ottolin/okt8"
)

type debugEvent struct {
	opCode   uint16
	snapshot okt8.Snapshot
}

// Debugger streams one binary event per executed cycle over a websocket.
type Debugger struct {
	Cpu           *okt8.Cpu
	CurrentOpCode uint16

	// SendEvery lets a client thin the stream to every n-th cycle
	SendEvery uint
	send      chan debugEvent
}

// NewDebugger creates a new debugger.
// It pauses the CPU, registers the cycle hooks and drops the frame budget
// to one instruction so a client can step through the program.
func NewDebugger(cpu *okt8.Cpu) *Debugger {
	deb := Debugger{
		Cpu:           cpu,
		CurrentOpCode: 0,
		SendEvery:     1,
		send:          make(chan debugEvent),
	}

	deb.setupWs()

	cpu.AddBeforeCycleHook(deb.beforeCycle)
	cpu.AddAfterCycleHook(deb.afterCycle)
	cpu.CyclesPerFrame = 1

	cpu.Stop()

	return &deb
}

var upgrader = websocket.Upgrader{} // use default options

func (d *Debugger) setupWs() {
	http.HandleFunc("/debugger", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Connecting to debugger")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Print("upgrade:", err)
			return
		}
		defer conn.Close()

		slog.Info("Listening for events")
		running := true
		for running {
			select {
			case ev := <-d.send:
				err = conn.WriteMessage(websocket.BinaryMessage, encodeSnapshot(ev.opCode, ev.snapshot))
				if err != nil {
					slog.Error("Error writing debugger message", slog.Any("error", err))
					running = false
				}

			case <-r.Context().Done():
				running = false
			}
		}
	})
}

func (d *Debugger) beforeCycle(cpu *okt8.Cpu) {
	snap := cpu.Snapshot()
	d.CurrentOpCode = uint16(cpu.Memory.Read(snap.Pc+0)) << 8
	d.CurrentOpCode |= uint16(cpu.Memory.Read(snap.Pc + 1))
}

func (d *Debugger) afterCycle(cpu *okt8.Cpu) {
	if cpu.Cycles()%max(d.SendEvery, 1) != 0 {
		return
	}

	select {
	case d.send <- debugEvent{opCode: d.CurrentOpCode, snapshot: cpu.Snapshot()}:
	default:
		// no client connected; never stall the scheduler
	}
}

// encodeSnapshot packs a machine snapshot into the binary wire format the
// browser frontend decodes: opcode, pc, V0..VF, I, sp, the full stack, then
// both timers.
func encodeSnapshot(opCode uint16, snap okt8.Snapshot) []byte {
	buf := make([]byte, 0, 64)

	buf = append(buf, byte(opCode>>8), byte(opCode))
	buf = append(buf, byte(snap.Pc>>8), byte(snap.Pc))
	buf = append(buf, snap.V[:]...)
	buf = append(buf, byte(snap.I>>8), byte(snap.I))
	buf = append(buf, snap.Sp)
	for _, addr := range snap.Stack {
		buf = append(buf, byte(addr>>8), byte(addr))
	}
	buf = append(buf, snap.Dt, snap.St)

	return buf
}
