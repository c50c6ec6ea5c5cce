//go:build !libretro && !ios

package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/edmg/adapter"
	"github.com/user-none/edmg/emu"
)

func main() {
	romPath := flag.String("rom", "", "Game Boy ROM or archive to boot directly (library UI otherwise)")
	gray := flag.Bool("gray", false, "use gray shades instead of the green LCD tint")
	logLevel := flag.String("log-level", "warn", "core log level: debug, info, warn, or error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("Invalid log level: %s", *logLevel)
	}
	// Emulators built by the factory log through the default logger.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	factory := &adapter.Factory{}
	if *romPath == "" {
		if err := standalone.Run(factory); err != nil {
			log.Fatal(err)
		}
		return
	}

	options := map[string]string{}
	if *gray {
		options[emu.OptionGrayPalette] = "true"
	}
	// The DMG has a single timing, so the region is always detected.
	if err := standalone.RunDirect(factory, *romPath, "auto", options); err != nil {
		log.Fatal(err)
	}
}
