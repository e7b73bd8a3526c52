// loader_test.go - Machine profile tests

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "machine.lua")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadProfileDecodesGlobals(t *testing.T) {
	path := writeProfile(t, `
display = { mode = "graphics", width = 800, height = 600, scale = 2 }
network = { relay = "ws://relay:8080/", id = "box-1" }
`)

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.DisplayMode != "graphics" || p.GfxWidth != 800 || p.GfxHeight != 600 {
		t.Fatalf("expected graphics 800x600, got %s %dx%d", p.DisplayMode, p.GfxWidth, p.GfxHeight)
	}
	if p.Scale != 2 {
		t.Fatalf("expected scale 2, got %v", p.Scale)
	}
	if p.RelayURL != "ws://relay:8080/" || p.MachineID != "box-1" {
		t.Fatalf("expected relay settings, got %q %q", p.RelayURL, p.MachineID)
	}
}

func TestLoadProfileDefaults(t *testing.T) {
	path := writeProfile(t, `-- empty profile`)

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.DisplayMode != "text" || p.TextCols != 80 || p.TextRows != 25 {
		t.Fatalf("expected 80x25 text defaults, got %s %dx%d", p.DisplayMode, p.TextCols, p.TextRows)
	}
	if p.MachineID != "lumen86" {
		t.Fatalf("expected default machine id, got %q", p.MachineID)
	}
}

func TestLoadProfileAllowsLuaLogic(t *testing.T) {
	path := writeProfile(t, `
local cols = 40 * 2
display = { mode = "text", cols = cols, rows = cols / 2 - 15 }
`)

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.TextCols != 80 || p.TextRows != 25 {
		t.Fatalf("expected computed 80x25, got %dx%d", p.TextCols, p.TextRows)
	}
}

func TestLoadProfileRejectsUnknownMode(t *testing.T) {
	path := writeProfile(t, `display = { mode = "holographic" }`)

	if _, err := LoadProfile(path); err == nil {
		t.Fatal("expected error for unknown display mode")
	}
}

func TestLoadProfileRejectsBrokenScript(t *testing.T) {
	path := writeProfile(t, `display = {`)

	if _, err := LoadProfile(path); err == nil {
		t.Fatal("expected error for unparsable script")
	}
}

func TestApplySendsSizingAndDisks(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "hda.img")
	if err := os.WriteFile(imgPath, []byte{0xEB, 0x3C, 0x90}, 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	p := defaultProfile()
	p.Disks = []DiskImage{{Name: "hda", Path: imgPath}}

	bus := NewMessageBus()
	var cols, rows int
	bus.Register("screen-set-size-text", func(args []any) {
		cols = argInt(args, 0)
		rows = argInt(args, 1)
	})
	var diskName string
	var diskData []byte
	bus.Register("loader-attach-disk", func(args []any) {
		diskName, _ = args[0].(string)
		diskData = argBytes(args, 1)
	})

	if err := p.Apply(bus); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cols != 80 || rows != 25 {
		t.Fatalf("expected text sizing 80x25, got %dx%d", cols, rows)
	}
	if diskName != "hda" || len(diskData) != 3 || diskData[0] != 0xEB {
		t.Fatalf("expected attached disk hda with boot bytes, got %q %v", diskName, diskData)
	}
}

func TestApplyFailsOnMissingDisk(t *testing.T) {
	p := defaultProfile()
	p.Disks = []DiskImage{{Name: "hda", Path: "/nonexistent/hda.img"}}

	if err := p.Apply(NewMessageBus()); err == nil {
		t.Fatal("expected error for missing disk image")
	}
}

func TestDiskImageRequiresSource(t *testing.T) {
	d := DiskImage{Name: "hda"}
	if _, err := d.fetch(); err == nil {
		t.Fatal("expected error when neither path nor url is set")
	}
}
