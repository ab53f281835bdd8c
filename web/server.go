// Package web exposes a running machine over HTTP: control endpoints for a
// browser frontend plus websocket streams of the machine state.
package web

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ottolin/okt8"
)

type Server struct {
	cpu      *okt8.Cpu
	debugger *Debugger

	socket  *websocket.Conn
	wsMutex sync.RWMutex
}

type ServerConfig struct {
	Quirks         okt8.Quirks
	CyclesPerFrame uint
	UseDebugger    bool
}

type ServerConfigCb func(config *ServerConfig)

func NewServer(mem *okt8.Memory, configs ...ServerConfigCb) *Server {
	config := &ServerConfig{
		Quirks:         okt8.DefaultQuirks(),
		CyclesPerFrame: okt8.DefaultCyclesPerFrame,
		UseDebugger:    false,
	}
	for _, cb := range configs {
		cb(config)
	}

	s := &Server{
		cpu:     nil,
		wsMutex: sync.RWMutex{},
	}

	s.cpu = okt8.NewCpu(mem, config.Quirks, okt8.NewDummyBuzzer())
	s.cpu.CyclesPerFrame = config.CyclesPerFrame
	s.cpu.AddAfterFrameHook(s.pushState)

	if config.UseDebugger {
		s.debugger = NewDebugger(s.cpu)
	}

	return s
}

func (server *Server) FrameRate(inHz uint) {
	server.cpu.SetFrameRate(inHz)
}

// LoadProgram loads the program into memory and sets the PC to the
// start-of-program address
func (server *Server) LoadProgram(program []byte) error {
	return server.cpu.LoadProgram(program)
}

func (server *Server) Listen(port int) error {
	if err := server.cpu.Boot(); err != nil {
		slog.Error(err.Error())
		return err
	}

	go func() {
		server.cpu.Stop()
		if err := server.cpu.Run(); err != nil {
			log.Fatalln(err)
		}
	}()

	slog.Info("Listening on port", slog.Int("port", port))

	http.Handle("/", http.FileServer(http.Dir("./static")))

	http.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		writeCorsHeaders(w)

		slog.Info("Starting")
		server.cpu.Start()
	})
	http.HandleFunc("/stop", func(w http.ResponseWriter, r *http.Request) {
		writeCorsHeaders(w)

		slog.Info("Stopping")
		server.cpu.Stop()
	})
	http.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
		writeCorsHeaders(w)

		slog.Info("Stopping and resetting")
		server.cpu.Stop()
		server.cpu.Reset()
	})
	http.HandleFunc("/step", func(w http.ResponseWriter, r *http.Request) {
		writeCorsHeaders(w)

		slog.Info("Single frame")
		if err := server.cpu.SingleFrame(); err != nil {
			slog.Error("Error running a single frame", slog.Any("error", err))
		}
	})
	http.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Print("upgrade:", err)
			return
		}
		defer conn.Close()

		slog.Info("Connecting to state stream")
		server.setWs(conn)
		defer server.unsetWs()

		<-r.Context().Done()
		slog.Info("Disconnecting from state stream")
	})

	return http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
}

func writeCorsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Type")

	w.Header().Set("Cache-Control", "no-cache")
}

func (server *Server) setWs(conn *websocket.Conn) {
	server.wsMutex.Lock()
	server.socket = conn
	server.wsMutex.Unlock()
}

func (server *Server) unsetWs() {
	server.wsMutex.Lock()
	server.socket = nil
	server.wsMutex.Unlock()
}

// pushState streams the end-of-frame snapshot to the connected socket.
func (server *Server) pushState(cpu *okt8.Cpu) {
	server.wsMutex.RLock()
	defer server.wsMutex.RUnlock()

	if server.socket == nil {
		return
	}

	if err := server.socket.WriteMessage(websocket.BinaryMessage, encodeSnapshot(0, cpu.Snapshot())); err != nil {
		slog.Error("Error writing state message", slog.Any("error", err))
	}
}
