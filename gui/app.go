// Package gui is a raylib machine monitor: toolbar controls on top, live
// register and memory panels below. The machine owns no framebuffer, so the
// monitor renders the state snapshot instead of pixels.
package gui

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/ottolin/okt8"
)

const (
	ToolbarGap       = 5
	ToolbarBtnWidth  = 80
	ToolbarBtnHeight = 40
	ToolbarHeight    = 50
	ToolbarBtnOffset = ToolbarBtnWidth + ToolbarGap

	PanelMargin     = 10
	PanelLineHeight = 22

	WindowWidth  = 640
	WindowHeight = 480

	MessageBarGap    = 5
	MessageBarHeight = 30
)

var PanelTextColor = rl.RayWhite
var PanelFaultColor = rl.Gold
var PcMarkerColor = rl.Lime

var MessageBarBgColor = rl.DarkGray
var MessageBarInfoColor = rl.SkyBlue
var MessageBarErrorColor = rl.Red

type MessageType byte

const (
	MessageInfo MessageType = iota
	MessageError
)

type App struct {
	Cpu *okt8.Cpu

	// frameFactor maps the slider position to a frame rate
	frameFactor float32

	winW, winH int

	startBtn, stopBtn, stepBtn, resetBtn bool

	loadedProgramPath string

	lastMessage      string
	lastMessageColor rl.Color
}

type AppConfig struct {
	Quirks          okt8.Quirks
	CyclesPerFrame  uint
	FrameRate       uint
	UseDebuggerPace bool
}

type AppConfigCb func(config *AppConfig)

func frameFactorToHz(s float32) uint {
	return uint(s + 1)
}

func hzToFrameFactor(hz uint) float32 {
	return float32(hz) - 1
}

func NewApp(configs ...AppConfigCb) *App {
	config := &AppConfig{
		Quirks:         okt8.DefaultQuirks(),
		CyclesPerFrame: okt8.DefaultCyclesPerFrame,
		FrameRate:      okt8.DefaultFrameRate,
	}
	for _, cb := range configs {
		cb(config)
	}

	app := &App{
		Cpu:         okt8.NewCpu(okt8.NewMemory(), config.Quirks, okt8.NewDummyBuzzer()),
		frameFactor: hzToFrameFactor(config.FrameRate),
		winW:        WindowWidth,
		winH:        WindowHeight,
	}

	app.Cpu.CyclesPerFrame = config.CyclesPerFrame
	if config.UseDebuggerPace {
		app.Cpu.CyclesPerFrame = 1
	}
	app.Cpu.SetFrameRate(config.FrameRate)

	return app
}

// Run initializes the machine and the UI loop
func (app *App) Run(autostart bool) {
	go func(cpu *okt8.Cpu) {
		slog.Info("starting CPU loop on pause")
		if err := cpu.Boot(); err != nil {
			slog.Error("Error booting CPU", slog.Any("error", err))
			return
		}
		if !autostart || !app.hasProgramLoaded() {
			cpu.Stop()
		}
		if err := cpu.Run(); err != nil {
			app.showMessage(err.Error(), MessageError)
			slog.Error("Error running CPU", slog.Any("error", err))
		}
	}(app.Cpu)

	rl.InitWindow(int32(app.winW), int32(app.winH), "okt8")
	defer rl.CloseWindow()

	rl.SetTargetFPS(60)
	for !rl.WindowShouldClose() {
		rl.BeginDrawing()

		rl.ClearBackground(rl.Black)

		app.handleFileLoad()
		app.handleActions()
		app.updateFrameRate()

		app.drawMessageBar()
		app.drawPanels()
		app.drawToolbar()

		rl.EndDrawing()
	}
}

func (app *App) Load(path string) {
	program, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		return
	}

	if err = app.Cpu.LoadProgram(program); err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}

	app.loadedProgramPath = path
	slog.Info("Program loaded", slog.String("path", path))
	app.showMessage(fmt.Sprintf("Program '%s' loaded", app.loadedProgramPath), MessageInfo)
}

func (app *App) handleFileLoad() {
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		defer rl.UnloadDroppedFiles()

		slog.Info("Files were dropped", "files", strings.Join(files, ","))

		app.Load(files[0])
	}
}

func (app *App) hasProgramLoaded() bool {
	return len(app.loadedProgramPath) > 0
}

func (app *App) handleActions() {
	if app.startBtn {
		if app.hasProgramLoaded() {
			app.Cpu.Start()
			slog.Info("Starting the machine")
		} else {
			app.showMessage("There is no program loaded", MessageError)
		}
	}
	if app.stopBtn {
		app.Cpu.Stop()
		slog.Info("Stopping the machine")
	}
	if app.resetBtn {
		app.Cpu.Stop()
		app.Cpu.Reset()
		slog.Info("Resetting the program to the beginning")
	}
	if app.stepBtn {
		if err := app.Cpu.SingleFrame(); err != nil {
			app.showMessage(err.Error(), MessageError)
		}
		slog.Info("Running a single frame")
	}
}

func (app *App) updateFrameRate() {
	app.Cpu.SetFrameRate(frameFactorToHz(app.frameFactor))
}

const (
	MinFrameFactor = float32(okt8.MinFrameRate) - 1
	MaxFrameFactor = float32(okt8.MaxFrameRate) - 1
)

func (app *App) drawToolbar() {
	rl.DrawRectangle(0, 0, int32(rl.GetScreenWidth()), ToolbarHeight, rl.Gray)

	app.startBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*0, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_PLAY, "Start"),
	)
	app.stopBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*1, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_STOP, "Stop"),
	)
	app.stepBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*2, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_NEXT, "Step"),
	)
	app.resetBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*3, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_ROTATE, "Reset"),
	)

	if app.Cpu.IsRunning() {
		gui.Label(
			rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*4, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
			"Running",
		)
	} else {
		gui.Label(
			rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*4, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
			"Stopped",
		)
	}

	gui.Label(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150, 26, 50, 20),
		fmt.Sprintf("%d Hz", frameFactorToHz(app.frameFactor)),
	)

	app.frameFactor = gui.Slider(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150, ToolbarGap, 100, 20),
		"1 Hz", "120 Hz",
		app.frameFactor,
		MinFrameFactor,
		MaxFrameFactor,
	)
}

func (app *App) drawPanels() {
	snap := app.Cpu.Snapshot()

	y := int32(ToolbarHeight + PanelMargin)

	rl.DrawText(fmt.Sprintf("PC=%04X  I=%03X  SP=%02d  DT=%03d  ST=%03d  frame=%d",
		snap.Pc, snap.I, snap.Sp, snap.Dt, snap.St, snap.Frames),
		PanelMargin, y, 18, PanelTextColor)
	y += PanelLineHeight

	for row := 0; row < 2; row++ {
		line := strings.Builder{}
		for i := row * 8; i < row*8+8; i++ {
			line.WriteString(fmt.Sprintf("V%X=%02X  ", i, snap.V[i]))
		}
		rl.DrawText(line.String(), PanelMargin, y, 18, PanelTextColor)
		y += PanelLineHeight
	}

	stack := strings.Builder{}
	stack.WriteString("stack: [ ")
	for i := byte(0); i < snap.Sp; i++ {
		stack.WriteString(fmt.Sprintf("%03X ", snap.Stack[i]))
	}
	stack.WriteString("]")
	rl.DrawText(stack.String(), PanelMargin, y, 18, PanelTextColor)
	y += PanelLineHeight + PanelMargin

	// memory window around the Pc, one decoded word per line
	start := snap.Pc - 8
	for i := 0; i < 16; i += 2 {
		addr := start + uint16(i)
		word := uint16(app.Cpu.Memory.Read(addr))<<8 | uint16(app.Cpu.Memory.Read(addr+1))

		color := PanelTextColor
		if addr == snap.Pc {
			color = PcMarkerColor
		}
		rl.DrawText(fmt.Sprintf("%04X: %04X  %s", addr&0xFFF, word, okt8.Decode(word).Kind),
			PanelMargin, y, 18, color)
		y += PanelLineHeight
	}

	if err := app.Cpu.LastError(); err != nil {
		rl.DrawText(fmt.Sprintf("last fault: %v", err), PanelMargin, y, 18, PanelFaultColor)
	}
}

func (app *App) showMessage(msg string, mType MessageType) {
	app.lastMessage = msg
	switch mType {
	case MessageInfo:
		app.lastMessageColor = MessageBarInfoColor

	case MessageError:
		app.lastMessageColor = MessageBarErrorColor
	}
}

func (app *App) drawMessageBar() {
	rl.DrawRectangle(
		0,
		int32(app.winH)-MessageBarHeight,
		int32(app.winW),
		MessageBarHeight,
		MessageBarBgColor,
	)

	rl.DrawText(
		app.lastMessage,
		MessageBarGap,
		int32(app.winH)-MessageBarHeight+MessageBarGap,
		16,
		app.lastMessageColor,
	)
}
