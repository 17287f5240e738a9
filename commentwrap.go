// Package commentwrap manages line-wrapping options based on whether
// the cursor sits inside a comment.
//
// An Engine binds a host editor to the option state machine: while the
// cursor is inside a comment (or a docstring, for languages configured
// that way) the buffer's wrap options are switched to the configured
// comment set, and restored the moment the cursor leaves. Hosts publish
// lifecycle events on their bus; the engine reacts to them, debouncing
// cursor motion so rapid movement costs a single classification.
//
// Typical setup:
//
//	user, err := commentwrap.LoadConfig("~/.config/commentwrap.toml")
//	if err != nil { ... }
//	eng, err := commentwrap.New(editorHost, provider, user)
//	if err != nil { ... }
//	eng.Enable()
package commentwrap

import (
	"fmt"
	"io"
	"time"

	"github.com/themissingcow/nvim-comment-wrap/classify"
	"github.com/themissingcow/nvim-comment-wrap/host"
	"github.com/themissingcow/nvim-comment-wrap/internal/config"
	"github.com/themissingcow/nvim-comment-wrap/internal/config/loader"
	"github.com/themissingcow/nvim-comment-wrap/internal/config/watcher"
	"github.com/themissingcow/nvim-comment-wrap/internal/engine"
	"github.com/themissingcow/nvim-comment-wrap/internal/logging"
	"github.com/themissingcow/nvim-comment-wrap/syntax"
)

// watchSettle is the quiet period after a config file write before the
// engine reloads it.
const watchSettle = 250 * time.Millisecond

type options struct {
	logWriter io.Writer
	logLevel  logging.Level
	debounce  time.Duration
	matchers  *classify.Registry
}

// Option configures an Engine.
type Option func(*options)

// WithLogWriter directs engine logs to w. Logging is off by default.
func WithLogWriter(w io.Writer) Option {
	return func(o *options) { o.logWriter = w }
}

// WithLogLevel sets the minimum log level ("debug", "info", "warn",
// "error"). Only meaningful together with WithLogWriter.
func WithLogLevel(level string) Option {
	return func(o *options) { o.logLevel = logging.ParseLevel(level) }
}

// WithDebounce overrides the cursor-motion debounce window.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithMatchers supplies a matcher registry carrying custom language
// strategies alongside the built-ins.
func WithMatchers(r *classify.Registry) Option {
	return func(o *options) { o.matchers = r }
}

// Engine is the top-level handle: the option state machine plus optional
// config file watching.
type Engine struct {
	mgr   *engine.Manager
	log   *logging.Logger
	watch *watcher.Watcher
}

// New builds an Engine from a host, a syntax provider, and user
// configuration overrides (nil means defaults). The engine starts
// disabled.
func New(h host.Host, provider syntax.Provider, user map[string]any, opts ...Option) (*Engine, error) {
	o := options{debounce: engine.DefaultDebounce, logLevel: logging.LevelInfo}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.New(user)
	if err != nil {
		return nil, fmt.Errorf("commentwrap: %w", err)
	}

	log := logging.Discard
	if o.logWriter != nil {
		log = logging.New(o.logWriter, o.logLevel)
	}

	mgrOpts := []engine.Option{
		engine.WithLogger(log),
		engine.WithDebounce(o.debounce),
	}
	if o.matchers != nil {
		mgrOpts = append(mgrOpts, engine.WithMatchers(o.matchers))
	}

	return &Engine{
		mgr: engine.New(h, provider, cfg, mgrOpts...),
		log: log,
	}, nil
}

// LoadConfig reads user configuration from a TOML, YAML, or Lua file and
// layers COMMENTWRAP_* environment overrides on top. A missing file is
// not an error; the environment alone is consulted.
func LoadConfig(path string) (map[string]any, error) {
	return loader.Load(path)
}

// Enable starts managing options. Idempotent.
func (e *Engine) Enable() { e.mgr.Enable() }

// Disable stops managing options and restores every touched buffer.
// Idempotent.
func (e *Engine) Disable() { e.mgr.Disable() }

// Enabled reports whether the engine is active.
func (e *Engine) Enabled() bool { return e.mgr.Enabled() }

// CheckContext re-evaluates the buffer's cursor context immediately,
// bypassing the debounce. Hosts call this from events that warrant an
// instant response.
func (e *Engine) CheckContext(bufID string) { e.mgr.CheckContext(bufID) }

// TogglePreserveWrap flips paragraph-preserving wrap on the active
// buffer and records the preference for future comment entries.
func (e *Engine) TogglePreserveWrap() { e.mgr.TogglePreserveWrap() }

// Status returns the status-line text, empty when no comment options
// are live.
func (e *Engine) Status() string { return e.mgr.Status() }

// ReloadConfig loads the file at path and swaps the engine's
// configuration. The active buffer is re-evaluated under the new
// options.
func (e *Engine) ReloadConfig(path string) error {
	user, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("commentwrap: reload %s: %w", path, err)
	}
	cfg, err := config.New(user)
	if err != nil {
		return fmt.Errorf("commentwrap: reload %s: %w", path, err)
	}
	e.mgr.SetConfig(cfg)
	e.log.Info("config reloaded from %s", path)
	return nil
}

// WatchConfig reloads the configuration whenever the file at path
// changes. Only one watch is active at a time; watching a new path
// stops the previous one.
func (e *Engine) WatchConfig(path string) error {
	if e.watch != nil {
		if err := e.watch.Close(); err != nil {
			return err
		}
		e.watch = nil
	}
	w, err := watcher.New(path, watchSettle, func(changed string) {
		if err := e.ReloadConfig(changed); err != nil {
			e.log.Warn("%v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("commentwrap: watch %s: %w", path, err)
	}
	e.watch = w
	return nil
}

// Close disables the engine and stops any config watch.
func (e *Engine) Close() error {
	e.Disable()
	if e.watch != nil {
		err := e.watch.Close()
		e.watch = nil
		return err
	}
	return nil
}
