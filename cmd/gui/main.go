package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/ottolin/okt8/config"
	"github.com/ottolin/okt8/gui"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
}

func main() {
	autostart := flag.Bool("start", false, "Starts the machine automatically if there is a program loaded (defaults = false).")
	debug := flag.Bool("debug", false, "Run one instruction per frame for stepping through a program (defaults = false).")
	rate := flag.Uint("rate", 0, "Override the frame rate in Hz.")
	xframes := flag.Uint("xframes", 0, "Override the number of cycles that run per frame.")

	flag.Parse()

	cfg, err := config.Resolve()
	if err != nil {
		log.Fatalln(err)
	}

	app := gui.NewApp(func(appConfig *gui.AppConfig) {
		appConfig.Quirks = cfg.Quirks()
		appConfig.CyclesPerFrame = cfg.Emu.CyclesPerFrame
		appConfig.FrameRate = cfg.Emu.FrameRate
		appConfig.UseDebuggerPace = *debug

		if *xframes > 0 {
			appConfig.CyclesPerFrame = *xframes
		}
		if *rate > 0 {
			appConfig.FrameRate = *rate
		}
	})

	if flag.NArg() > 0 {
		app.Load(flag.Arg(0))
	}

	app.Run(*autostart)
}
