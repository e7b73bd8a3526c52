// main.go - Main entry point for the Lumen86 front end

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

func boilerPlate() {
	fmt.Println("Lumen86 - a PC emulator front end")
	fmt.Println("https://github.com/lumen86/lumen86")
}

func main() {
	boilerPlate()

	var (
		useTerminal bool
		useHeadless bool
		profilePath string
		scale       int
		relayURL    string
		machineID   string
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVar(&useTerminal, "terminal", false, "Render text mode on the controlling tty instead of a window")
	flagSet.BoolVar(&useHeadless, "headless", false, "Run without any display output")
	flagSet.StringVar(&profilePath, "profile", "", "Lua machine profile to load")
	flagSet.IntVar(&scale, "scale", 1, "Integer window scale factor")
	flagSet.StringVar(&relayURL, "relay", "", "WebSocket network relay URL (overrides profile)")
	flagSet.StringVar(&machineID, "id", "", "Machine identifier for the relay (overrides profile)")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./lumen86 [-terminal|-headless] [-profile machine.lua] [-scale N] [-relay ws://...]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if useTerminal && useHeadless {
		fmt.Println("Error: -terminal and -headless are mutually exclusive")
		os.Exit(1)
	}
	if scale < 1 {
		fmt.Println("Error: -scale must be at least 1")
		os.Exit(1)
	}

	profile := defaultProfile()
	if profilePath != "" {
		p, err := LoadProfile(profilePath)
		if err != nil {
			fmt.Printf("Error loading profile: %v\n", err)
			os.Exit(1)
		}
		profile = p
	}
	if relayURL != "" {
		profile.RelayURL = relayURL
	}
	if machineID != "" {
		profile.MachineID = machineID
	}
	if scale == 1 && profile.Scale > 1 {
		scale = int(profile.Scale)
	}

	backend := VIDEO_BACKEND_EBITEN
	if useTerminal {
		backend = VIDEO_BACKEND_TERMINAL
	}
	if useHeadless {
		backend = VIDEO_BACKEND_HEADLESS
	}

	bus := NewMessageBus()

	output, err := NewVideoOutput(backend)
	if err != nil {
		fmt.Printf("Failed to initialize video: %v\n", err)
		os.Exit(1)
	}

	NewScreenAdapter(bus, output, scale)

	done := make(chan struct{})
	var closeOnce sync.Once

	// Window input only exists on backends with a host event loop.
	if ic, ok := output.(InputCapable); ok {
		keyboard := NewKeyboardAdapter(bus)
		mouse := NewMouseAdapter(bus)
		ic.SetInputHook(func() {
			keyboard.Poll()
			mouse.Poll()
		})
		ic.SetCloseHandler(func() {
			closeOnce.Do(func() { close(done) })
		})
	}

	// The speaker needs a real audio device; run without it if init fails.
	speaker, err := NewSpeaker(bus)
	if err != nil {
		fmt.Printf("Audio unavailable: %v\n", err)
	} else {
		speaker.Start()
		defer speaker.Close()
	}

	var bridge *NetBridge
	if profile.RelayURL != "" {
		bridge = NewNetBridge(bus, profile.RelayURL, profile.MachineID)
		bridge.Start()
		defer bridge.Stop()
	}

	if err := profile.Apply(bus); err != nil {
		fmt.Printf("Error applying profile: %v\n", err)
		os.Exit(1)
	}

	if err := output.Start(); err != nil {
		fmt.Printf("Failed to start video: %v\n", err)
		os.Exit(1)
	}
	defer output.Close()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-done:
	}
}
