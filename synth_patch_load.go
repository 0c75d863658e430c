// synth_patch_load.go - Patch loading: JSON files and Lua patch scripts

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// LoadPatchFile loads a sound configuration from disk, dispatching on
// the file extension: .json is decoded directly, .lua is executed and
// must return a patch table. Numeric sanitization still happens at
// graph-construction time, so a sloppy patch loads fine and degrades
// gracefully.
func LoadPatchFile(path string) (SoundConfig, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadPatchJSON(path)
	case ".lua":
		return LoadPatchLua(path)
	default:
		return SoundConfig{}, fmt.Errorf("patch %s: unsupported extension", path)
	}
}

func LoadPatchJSON(path string) (SoundConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SoundConfig{}, fmt.Errorf("patch %s: %w", path, err)
	}
	var cfg SoundConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SoundConfig{}, fmt.Errorf("patch %s: %w", path, err)
	}
	return cfg, nil
}

// LoadPatchLua runs a Lua script in a fresh state and converts its
// returned table into a SoundConfig. The table uses the same field names
// as the JSON format.
func LoadPatchLua(path string) (SoundConfig, error) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return SoundConfig{}, fmt.Errorf("patch %s: %w", path, err)
	}
	ret := L.Get(-1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return SoundConfig{}, fmt.Errorf("patch %s: script must return a table, got %s", path, ret.Type())
	}

	// Round-trip through JSON so the struct tags do the field mapping.
	data, err := json.Marshal(luaToGo(tbl))
	if err != nil {
		return SoundConfig{}, fmt.Errorf("patch %s: %w", path, err)
	}
	var cfg SoundConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SoundConfig{}, fmt.Errorf("patch %s: %w", path, err)
	}
	return cfg, nil
}

// luaToGo converts a Lua value to the matching Go value. Tables with a
// contiguous 1..N integer key run become slices, everything else maps.
func luaToGo(v lua.LValue) interface{} {
	switch lv := v.(type) {
	case lua.LBool:
		return bool(lv)
	case lua.LNumber:
		return float64(lv)
	case lua.LString:
		return string(lv)
	case *lua.LTable:
		n := lv.Len()
		if n > 0 {
			arr := make([]interface{}, 0, n)
			for i := 1; i <= n; i++ {
				arr = append(arr, luaToGo(lv.RawGetInt(i)))
			}
			return arr
		}
		m := make(map[string]interface{})
		lv.ForEach(func(k, val lua.LValue) {
			m[k.String()] = luaToGo(val)
		})
		return m
	default:
		return nil
	}
}
