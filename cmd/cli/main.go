package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/ottolin/okt8"
	"github.com/ottolin/okt8/config"
	"github.com/ottolin/okt8/console"
)

func main() {
	quiet := flag.Bool("quiet", false, "turn off the terminal monitor")
	rate := flag.Uint("rate", 0, "override the frame rate in Hz")
	xframes := flag.Uint("xframes", 0, "override the number of cycles that run per frame")

	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatalln("must provide the path to a rom as an argument")
	}

	cfg, err := config.Resolve()
	if err != nil {
		log.Fatalln(err)
	}

	level := cfg.Logger.SlogLevel()
	if !cfg.Logger.Enable || !*quiet {
		// the monitor owns the terminal; keep slog out of the way
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cpu := okt8.NewCpu(okt8.NewMemory(), cfg.Quirks(), okt8.NewDummyBuzzer())
	cpu.CyclesPerFrame = cfg.Emu.CyclesPerFrame
	cpu.SetFrameRate(cfg.Emu.FrameRate)
	if *xframes > 0 {
		cpu.CyclesPerFrame = *xframes
	}
	if *rate > 0 {
		cpu.SetFrameRate(*rate)
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}
	if err := cpu.LoadProgram(program); err != nil {
		log.Fatalln(err)
	}

	if !*quiet {
		mon := console.NewMonitor()
		if err := mon.Boot(); err != nil {
			log.Fatalln(err)
		}
		cpu.AddAfterFrameHook(func(cpu *okt8.Cpu) {
			mon.Render(cpu.Snapshot(), cpu.Memory, cpu.LastError())
		})
	}

	if err := cpu.Boot(); err != nil {
		log.Fatalln(err)
	}

	go func() {
		if err := cpu.Run(); err != nil {
			log.Fatalln(err)
		}
		os.Exit(0)
	}()

	keys, err := console.OpenKeys()
	if err != nil {
		log.Fatalln(err)
	}
	defer keys.Close()

	for {
		cmd, err := keys.Next()
		if err != nil {
			log.Fatalln(err)
		}

		switch cmd {
		case console.CommandTogglePause:
			if cpu.IsRunning() {
				cpu.Stop()
			} else {
				cpu.Start()
			}
		case console.CommandStep:
			if err := cpu.SingleFrame(); err != nil {
				slog.Error("single frame failed", slog.Any("error", err))
			}
		case console.CommandReset:
			cpu.Stop()
			cpu.Reset()
		case console.CommandQuit:
			keys.Close()
			os.Exit(0)
		}
	}
}
