// Package main implements the gogba GBA emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gogba/internal/app"
	"gogba/internal/version"
)

func main() {
	var (
		romFile     = flag.String("rom", "", "Path to GBA ROM file")
		configFile  = flag.String("config", "", "Path to configuration file")
		nogui       = flag.Bool("nogui", false, "Run without a window (headless mode)")
		frames      = flag.Int("frames", 60, "Frames to run in headless mode")
		dumpFrame   = flag.Bool("dump", false, "Write the final headless frame as a PPM image")
		showVersion = flag.Bool("version", false, "Show version information")
		help        = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}
	if *showVersion {
		version.PrintBuildInfo()
		os.Exit(0)
	}

	// A bare positional argument is accepted as the ROM path
	if *romFile == "" && flag.NArg() > 0 {
		*romFile = flag.Arg(0)
	}

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplicationWithMode(configPath, *nogui)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("Application cleanup error: %v", err)
		}
	}()

	if *romFile == "" {
		log.Fatal("ROM file required (use -rom or a positional argument)")
	}
	if err := application.LoadROM(*romFile); err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	cart := application.GetGBA().Bus().Cartridge
	fmt.Printf("Loaded %s (%d bytes)\n", *romFile, cart.Size())
	if cart.Title() != "" {
		fmt.Printf("Cartridge title: %s\n", cart.Title())
	}
	if !cart.HeaderChecksumOK() {
		fmt.Println("Warning: cartridge header checksum mismatch")
	}

	if *nogui {
		runHeadless(application, *frames, *dumpFrame || application.GetConfig().Debug.DumpFrames)
		return
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Emulator stopped: %v", err)
	}

	fmt.Printf("Session: %d frames in %v (%.1f fps)\n",
		application.GetFrameCount(), application.GetUptime().Round(10*time.Millisecond), application.GetFPS())
}

// runHeadless advances a fixed number of frames without a display
func runHeadless(application *app.Application, frames int, dump bool) {
	fmt.Printf("Running %d frames headless...\n", frames)

	fb, err := application.RunFrames(frames)
	if err != nil {
		log.Fatalf("Emulation failed: %v", err)
	}

	fmt.Printf("Completed %d frames\n", application.GetFrameCount())

	if dump && fb != nil {
		path, err := application.DumpFrame(fb, fmt.Sprintf("frame_%06d.ppm", application.GetFrameCount()))
		if err != nil {
			log.Fatalf("Failed to dump frame: %v", err)
		}
		fmt.Printf("Wrote %s\n", path)
	}
}

func printUsage() {
	fmt.Println("gogba - Go GBA Emulator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  gogba -rom <file> [options]")
	fmt.Println("  gogba <file>")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  gogba game.gba                   # Run with the default window")
	fmt.Println("  gogba -rom game.gba -nogui       # Run 60 frames headless")
	fmt.Println("  gogba -rom game.gba -nogui -dump # ...and write the last frame as PPM")
	fmt.Println()
	fmt.Println("CONTROLS:")
	fmt.Println("  Escape - Quit")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Println("  Config file: ./config/gogba.json")
}
