//go:build !libretro

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	ebitenbridge "github.com/user-none/edmg/bridge/ebiten"
	"github.com/user-none/edmg/cli"
	"github.com/user-none/edmg/emu"
	"github.com/user-none/edmg/romloader"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file")
	tracePath := flag.String("trace", "", "write an instruction trace to this file (- for stderr)")
	gray := flag.Bool("gray", false, "use gray shades instead of the green LCD tint")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, or error")
	flag.Parse()

	if *romPath == "" {
		fmt.Println("Usage: go run main.go -rom <romfile> [-trace file] [-gray] [-log-level level]")
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("Invalid log level: %s", *logLevel)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	romData, name, err := romloader.LoadROM(*romPath)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	region, checksumOK := emu.DetectRegionFromROM(romData)
	if !checksumOK {
		logger.Warn("header checksum invalid", "file", name)
	}

	e, err := ebitenbridge.NewEmulator(romData, region)
	if err != nil {
		log.Fatalf("Failed to start emulator: %v", err)
	}
	e.SetLogger(logger)
	if *gray {
		e.SetOption(emu.OptionGrayPalette, "true")
	}

	if *tracePath != "" {
		closeTrace, err := installTracer(e, *tracePath, logger)
		if err != nil {
			log.Fatalf("Failed to create trace file: %v", err)
		}
		defer closeTrace()
	}

	title := e.Header().Title
	if title == "" {
		title = strings.TrimSuffix(name, ".gb")
	}

	ebiten.SetWindowSize(emu.ScreenWidth*3, emu.ScreenHeight*3)
	ebiten.SetWindowTitle(fmt.Sprintf("%s - %s", emu.Name, title))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(emu.ScreenWidth, emu.ScreenHeight, -1, -1)
	ebiten.SetTPS(e.GetTiming().FPS)

	if err := ebiten.RunGame(cli.NewRunner(e)); err != nil {
		logger.Error("emulation stopped", "err", err)
	}
}

// installTracer attaches a buffered instruction trace writing to path, or
// stderr for "-". The returned func flushes and closes the output.
func installTracer(e *ebitenbridge.Emulator, path string, logger *slog.Logger) (func(), error) {
	var out io.WriteCloser = nopCloser{os.Stderr}
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		out = f
	}

	buf := bufio.NewWriter(out)
	tracer := emu.NewTracer(buf)
	e.SetTraceHook(tracer.Hook())

	return func() {
		if err := tracer.Err(); err != nil {
			logger.Error("trace output failed", "err", err)
		}
		if err := buf.Flush(); err != nil {
			logger.Error("trace flush failed", "err", err)
		}
		out.Close()
		logger.Info("trace finished", "lines", tracer.Lines())
	}, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
