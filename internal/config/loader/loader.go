// Package loader reads user configuration for the wrapping engine.
//
// Configuration may be written as TOML, YAML, or a Lua file returning a
// table; the format is chosen by file extension. Environment variables
// with the COMMENTWRAP_ prefix layer on top of whatever a file provides.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is reported for config files with an extension no
// loader claims.
var ErrUnsupportedFormat = errors.New("loader: unsupported config format")

// Loader is the interface for configuration loaders.
type Loader interface {
	// Load reads configuration from the source and returns a map.
	// Returns nil, nil if the source doesn't exist (not an error).
	Load() (map[string]any, error)
}

// ReaderLoader is the interface for loaders that read from io.Reader.
type ReaderLoader interface {
	// LoadFromReader reads configuration from a reader.
	LoadFromReader(r io.Reader) (map[string]any, error)
}

// ParseError describes a malformed configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying parser error.
func (e *ParseError) Unwrap() error { return e.Err }

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) { return os.Open(name) }

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem { return OSFS{} }

// ForPath returns the loader matching the file's extension.
func ForPath(path string) (Loader, error) {
	return forPathFS(DefaultFS(), path)
}

func forPathFS(fsys FileSystem, path string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return NewTOMLLoaderWithFS(fsys, path), nil
	case ".yaml", ".yml":
		return NewYAMLLoaderWithFS(fsys, path), nil
	case ".lua":
		return NewLuaLoaderWithFS(fsys, path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads a config file, picking the loader by extension, and layers
// COMMENTWRAP_ environment variables on top.
func Load(path string) (map[string]any, error) {
	return LoadFS(DefaultFS(), path)
}

// LoadFS is Load with an injectable file system.
func LoadFS(fsys FileSystem, path string) (map[string]any, error) {
	l, err := forPathFS(fsys, path)
	if err != nil {
		return nil, err
	}

	cfg, err := l.Load()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = make(map[string]any)
	}

	env, err := NewEnvLoader(EnvPrefix).Load()
	if err != nil {
		return nil, err
	}
	for path, val := range flatten(env, "") {
		setByPath(cfg, path, val)
	}
	return cfg, nil
}

// setByPath sets a value in a nested map using a dot-separated path,
// creating intermediate maps as needed.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for i := 0; i < len(parts)-1; i++ {
		if next, ok := current[parts[i]].(map[string]any); ok {
			current = next
			continue
		}
		next := make(map[string]any)
		current[parts[i]] = next
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// flatten converts a nested map to dot-path keys.
func flatten(data map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for key, val := range data {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			for k, v := range flatten(nested, full) {
				out[k] = v
			}
		} else {
			out[full] = val
		}
	}
	return out
}
