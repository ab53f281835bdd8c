package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/ottolin/okt8"
	"github.com/ottolin/okt8/config"
	"github.com/ottolin/okt8/web"
)

func main() {
	port := flag.Int("port", 9999, "The port of the server (default = 9999)")
	rate := flag.Uint("rate", 0, "Override the frame rate in Hz")
	debugger := flag.Bool("debug", false, "Expose the per-cycle debugger stream (default = false)")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatalln("must provide the path to a rom as an argument")
	}

	cfg, err := config.Resolve()
	if err != nil {
		log.Fatalln(err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Logger.SlogLevel()})))

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}

	server := web.NewServer(okt8.NewMemory(), func(serverConfig *web.ServerConfig) {
		serverConfig.Quirks = cfg.Quirks()
		serverConfig.CyclesPerFrame = cfg.Emu.CyclesPerFrame
		serverConfig.UseDebugger = *debugger
	})

	if *rate > 0 {
		server.FrameRate(*rate)
	}
	if err := server.LoadProgram(program); err != nil {
		log.Fatalln(err)
	}
	if err := server.Listen(*port); err != nil {
		log.Fatalln(err)
	}
}
