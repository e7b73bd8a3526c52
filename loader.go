// loader.go - Lua machine profile loader

/*
loader.go - Machine Profile Loader

A machine profile is a small Lua script describing how the front end should
come up: display mode and size, window scale, disk images to attach, and the
optional network relay. Lua keeps profiles readable while still allowing a
little logic (deriving paths, picking sizes by hostname and so on).

	display = { mode = "text", cols = 80, rows = 25, scale = 2 }
	network = { relay = "ws://relay.example:8080/", id = "lumen-1" }
	disks = {
	    { name = "hda", path = "images/freedos.img" },
	    { name = "cdrom", url = "http://example.org/live.iso" },
	}

Apply publishes the profile onto the bus: sizing messages for the screen
adapter and one loader-attach-disk per image, fetched from disk or HTTP.
*/

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	lua "github.com/yuin/gopher-lua"
)

type DiskImage struct {
	Name string
	Path string // local file, exclusive with URL
	URL  string
}

type MachineProfile struct {
	DisplayMode string // "text" or "graphics"
	TextCols    int
	TextRows    int
	GfxWidth    int
	GfxHeight   int
	Scale       float64
	RelayURL    string
	MachineID   string
	Disks       []DiskImage
}

func defaultProfile() *MachineProfile {
	return &MachineProfile{
		DisplayMode: "text",
		TextCols:    80,
		TextRows:    25,
		GfxWidth:    640,
		GfxHeight:   480,
		Scale:       1,
		MachineID:   "lumen86",
	}
}

// LoadProfile evaluates the Lua script at path and decodes the globals it
// sets into a MachineProfile. Missing fields keep their defaults.
func LoadProfile(path string) (*MachineProfile, error) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}

	p := defaultProfile()

	if disp, ok := L.GetGlobal("display").(*lua.LTable); ok {
		p.DisplayMode = luaString(disp, "mode", p.DisplayMode)
		p.TextCols = luaInt(disp, "cols", p.TextCols)
		p.TextRows = luaInt(disp, "rows", p.TextRows)
		p.GfxWidth = luaInt(disp, "width", p.GfxWidth)
		p.GfxHeight = luaInt(disp, "height", p.GfxHeight)
		p.Scale = luaFloat(disp, "scale", p.Scale)
	}
	if netw, ok := L.GetGlobal("network").(*lua.LTable); ok {
		p.RelayURL = luaString(netw, "relay", "")
		p.MachineID = luaString(netw, "id", p.MachineID)
	}
	if disks, ok := L.GetGlobal("disks").(*lua.LTable); ok {
		disks.ForEach(func(_, v lua.LValue) {
			entry, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			p.Disks = append(p.Disks, DiskImage{
				Name: luaString(entry, "name", ""),
				Path: luaString(entry, "path", ""),
				URL:  luaString(entry, "url", ""),
			})
		})
	}

	if p.DisplayMode != "text" && p.DisplayMode != "graphics" {
		return nil, fmt.Errorf("profile %s: unknown display mode %q", path, p.DisplayMode)
	}
	return p, nil
}

func luaString(t *lua.LTable, key, def string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return def
}

func luaInt(t *lua.LTable, key string, def int) int {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return def
}

func luaFloat(t *lua.LTable, key string, def float64) float64 {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

// Apply pushes the profile onto the bus: initial screen sizing plus one
// loader-attach-disk(name, data) per image.
func (p *MachineProfile) Apply(bus *MessageBus) error {
	if p.DisplayMode == "graphics" {
		bus.Send("screen-set-size-graphical", p.GfxWidth, p.GfxHeight)
	} else {
		bus.Send("screen-set-size-text", p.TextCols, p.TextRows)
	}

	for _, d := range p.Disks {
		data, err := d.fetch()
		if err != nil {
			return err
		}
		bus.Send("loader-attach-disk", d.Name, data)
	}
	return nil
}

func (d DiskImage) fetch() ([]byte, error) {
	if d.Path != "" {
		data, err := os.ReadFile(d.Path)
		if err != nil {
			return nil, fmt.Errorf("disk %s: %w", d.Name, err)
		}
		return data, nil
	}
	if d.URL != "" {
		resp, err := http.Get(d.URL)
		if err != nil {
			return nil, fmt.Errorf("disk %s: %w", d.Name, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("disk %s: %s fetching %s", d.Name, resp.Status, d.URL)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("disk %s: %w", d.Name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("disk %s: neither path nor url set", d.Name)
}
