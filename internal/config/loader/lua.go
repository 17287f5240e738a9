package loader

import (
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
)

// LuaLoader loads configuration from a Lua file that returns a table,
// the configuration surface this plugin family's users already know:
//
//	return {
//	    commentOptions = { textWidth = 72 },
//	}
type LuaLoader struct {
	fs   FileSystem
	path string
}

// NewLuaLoader creates a new Lua loader for the given path.
func NewLuaLoader(path string) *LuaLoader {
	return &LuaLoader{fs: DefaultFS(), path: path}
}

// NewLuaLoaderWithFS creates a Lua loader with a custom file system.
func NewLuaLoaderWithFS(fs FileSystem, path string) *LuaLoader {
	return &LuaLoader{fs: fs, path: path}
}

// Load reads and evaluates the configured file.
func (l *LuaLoader) Load() (map[string]any, error) {
	data, err := l.fs.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", l.path, err)
	}
	return l.eval(l.path, data)
}

func (l *LuaLoader) eval(source string, data []byte) (map[string]any, error) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(string(data)); err != nil {
		return nil, &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
	}

	ret := L.Get(-1)
	table, ok := ret.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Path:    source,
			Message: fmt.Sprintf("config must return a table, got %s", ret.Type()),
		}
	}

	cfg, ok := luaToGo(table, make(map[*lua.LTable]bool)).(map[string]any)
	if !ok {
		return nil, &ParseError{
			Path:    source,
			Message: "config table must have string keys",
		}
	}
	return cfg, nil
}

// luaToGo converts a Lua value to a Go value, tracking visited tables to
// break circular references.
func luaToGo(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return tableToGo(v, visited)
	default:
		return nil
	}
}

// tableToGo converts a Lua table to a Go slice (contiguous integer keys
// from 1) or a string-keyed map.
func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	isArray := true
	maxN, count := 0, 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		if kn, ok := k.(lua.LNumber); ok {
			n := int(kn)
			if float64(n) == float64(kn) && n > 0 {
				if n > maxN {
					maxN = n
				}
				return
			}
		}
		isArray = false
	})

	if isArray && maxN > 0 && count == maxN {
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			arr[i-1] = luaToGo(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprintf("%v", float64(kv))
		default:
			key = k.String()
		}
		m[key] = luaToGo(v, visited)
	})
	return m
}
