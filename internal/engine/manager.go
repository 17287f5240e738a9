// Package engine implements the option state machine.
//
// The manager is the only component that mutates host-visible formatting
// options. It tracks one session per buffer, snapshots the host's option
// values before the first change, and applies or restores options only on
// classification transitions, so repeated cursor motion inside one region
// costs a single classification call and nothing else.
package engine

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/themissingcow/nvim-comment-wrap/classify"
	"github.com/themissingcow/nvim-comment-wrap/event"
	"github.com/themissingcow/nvim-comment-wrap/host"
	"github.com/themissingcow/nvim-comment-wrap/internal/config"
	"github.com/themissingcow/nvim-comment-wrap/internal/debounce"
	"github.com/themissingcow/nvim-comment-wrap/internal/logging"
	"github.com/themissingcow/nvim-comment-wrap/syntax"
)

// statusMarker prefixes the status text while comment options are live.
const statusMarker = "▸"

// DefaultDebounce is the cursor-motion debounce window.
const DefaultDebounce = 100 * time.Millisecond

// keyModes are the host modes the toggle binding is installed in.
var keyModes = []string{"n"}

// session is the per-buffer state the manager tracks.
type session struct {
	// previous holds the option values captured before the first
	// comment entry; nil when the buffer is unmanaged.
	previous *host.OptionSnapshot

	// lastVerdict suppresses redundant work between transitions.
	lastVerdict classify.Verdict

	// globalApplied marks the one-shot language option application.
	globalApplied bool
}

// Manager owns the per-buffer sessions and drives option changes from
// lifecycle events.
type Manager struct {
	mu         sync.Mutex
	host       host.Host
	classifier *classify.Classifier
	cfg        *config.Config
	log        *logging.Logger

	debouncer     *debounce.Debouncer
	debounceDelay time.Duration
	pendingBuffer string

	sessions map[string]*session
	matchers *classify.Registry
	subs     []event.Subscription
	enabled  bool
	status   string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithDebounce overrides the cursor-motion debounce window.
func WithDebounce(d time.Duration) Option {
	return func(m *Manager) { m.debounceDelay = d }
}

// WithMatchers supplies a matcher registry with additional language
// strategies registered.
func WithMatchers(r *classify.Registry) Option {
	return func(m *Manager) { m.matchers = r }
}

// New creates a disabled manager. Call Enable to start managing options.
func New(h host.Host, provider syntax.Provider, cfg *config.Config, opts ...Option) *Manager {
	m := &Manager{
		host:          h,
		cfg:           cfg,
		log:           logging.Discard,
		debounceDelay: DefaultDebounce,
		sessions:      make(map[string]*session),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.classifier = classify.New(provider, m.matchers)
	m.debouncer = debounce.New(m.debounceDelay, m.checkPending)
	return m
}

// Enable starts managing options: it subscribes to host events, installs
// the toggle key binding, and evaluates the active buffer immediately.
// Enabling an already-enabled manager is a no-op.
func (m *Manager) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enabled {
		return
	}
	m.enabled = true
	m.sessions = make(map[string]*session)

	bus := m.host.Events()
	m.subs = []event.Subscription{
		bus.Subscribe(event.TopicBufferEntered, m.onBufferEntered),
		bus.Subscribe(event.TopicBufferLeft, m.onBufferLeft),
		bus.Subscribe(event.TopicBufferClosed, m.onBufferClosed),
		bus.Subscribe(event.TopicCursorMoved, m.onCursorMoved),
		bus.Subscribe(event.TopicLanguageDetected, m.onLanguageDetected),
	}

	if seq := m.cfg.Keys().TogglePreserveWrap; seq != "" {
		if err := m.host.BindKey(keyModes, seq, m.TogglePreserveWrap); err != nil {
			m.log.Warn("bind %q failed: %v", seq, err)
		}
	}

	if buf := m.host.ActiveBuffer(); buf != "" {
		m.checkLocked(buf)
	}
	m.log.Info("enabled")
}

// Disable stops managing options: pending work is cancelled, every held
// snapshot is restored, subscriptions and key bindings are removed, and
// the status text is cleared. Disabling twice is a no-op.
func (m *Manager) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	m.enabled = false
	m.debouncer.Cancel()
	m.pendingBuffer = ""

	for _, sub := range m.subs {
		sub.Unsubscribe()
	}
	m.subs = nil

	if seq := m.cfg.Keys().TogglePreserveWrap; seq != "" {
		m.host.UnbindKey(keyModes, seq)
	}

	for bufID, sess := range m.sessions {
		m.restoreLocked(bufID, sess)
	}
	m.sessions = make(map[string]*session)
	m.status = ""
	m.log.Info("disabled")
}

// SetConfig swaps in a new configuration, rebinding the toggle key if
// the sequence changed, and re-evaluates the active buffer so a changed
// option set takes effect without cursor motion.
func (m *Manager) SetConfig(cfg *config.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldSeq := m.cfg.Keys().TogglePreserveWrap
	m.cfg = cfg
	if !m.enabled {
		return
	}

	if newSeq := cfg.Keys().TogglePreserveWrap; newSeq != oldSeq {
		if oldSeq != "" {
			m.host.UnbindKey(keyModes, oldSeq)
		}
		if newSeq != "" {
			if err := m.host.BindKey(keyModes, newSeq, m.TogglePreserveWrap); err != nil {
				m.log.Warn("bind %q failed: %v", newSeq, err)
			}
		}
	}

	if buf := m.host.ActiveBuffer(); buf != "" {
		// Force the next check to transition even if the verdict is
		// unchanged, so new option values are applied.
		if sess, ok := m.sessions[buf]; ok {
			m.restoreLocked(buf, sess)
			sess.lastVerdict = classify.Unknown
		}
		m.checkLocked(buf)
	}
}

// Enabled reports whether the manager is active.
func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Status returns the text to display while comment options are live:
// the marker followed by the effective text width, with a trailing "w"
// when paragraph preservation is on. Empty otherwise.
func (m *Manager) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// CheckContext classifies the buffer's cursor position and applies or
// restores comment options on a transition. Safe to call at any time;
// does nothing while disabled.
func (m *Manager) CheckContext(bufID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	m.checkLocked(bufID)
}

// TogglePreserveWrap flips the paragraph-preserve flag on the active
// buffer's live format options and records the preference in the
// configuration so future applications carry it.
func (m *Manager) TogglePreserveWrap() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	buf := m.host.ActiveBuffer()
	if buf == "" {
		return
	}
	flags, err := m.host.FormatFlags(buf)
	if err != nil {
		m.log.Warn("toggle: read format flags for %s: %v", buf, err)
		return
	}
	on := !strings.ContainsRune(flags, config.PreserveWrapFlag)
	if on {
		flags += string(config.PreserveWrapFlag)
	} else {
		flags = strings.ReplaceAll(flags, string(config.PreserveWrapFlag), "")
	}
	if err := m.host.SetFormatFlags(buf, flags); err != nil {
		m.log.Warn("toggle: set format flags for %s: %v", buf, err)
		return
	}
	m.cfg.ToggleCommentFlag(config.PreserveWrapFlag, on)
	if m.status != "" {
		m.refreshStatusLocked(buf)
	}
	m.log.Debug("preserve-wrap %v for %s", on, buf)
}

func (m *Manager) session(bufID string) *session {
	sess, ok := m.sessions[bufID]
	if !ok {
		sess = &session{}
		m.sessions[bufID] = sess
	}
	return sess
}

// checkLocked runs one classification cycle for the buffer. Transitions
// drive all option mutation; a repeated verdict does nothing.
func (m *Manager) checkLocked(bufID string) {
	sess := m.session(bufID)

	verdict := classify.Unknown
	if cur, err := m.host.CursorPosition(bufID); err == nil {
		opts := m.cfg.Comment(m.host.Language(bufID))
		pos := syntax.Point{Row: cur.Line - 1, Column: cur.Col}
		verdict = m.classifier.Classify(bufID, opts.Matcher, pos)
	} else {
		m.log.Debug("cursor for %s: %v", bufID, err)
	}

	if verdict == sess.lastVerdict {
		return
	}
	sess.lastVerdict = verdict
	m.log.Debug("%s: %s", bufID, verdict)

	if verdict == classify.InComment {
		m.applyLocked(bufID, sess)
		return
	}
	// NotInComment and Unknown both land here: when classification
	// cannot be trusted the safe state is the user's own options.
	m.restoreLocked(bufID, sess)
}

// applyLocked snapshots the buffer's options on first entry and writes
// the configured comment options. A snapshot already held is never
// overwritten.
func (m *Manager) applyLocked(bufID string, sess *session) {
	opts := m.cfg.Comment(m.host.Language(bufID))

	if sess.previous == nil {
		snap, err := host.Snapshot(m.host, bufID)
		if err != nil {
			m.log.Warn("snapshot %s: %v", bufID, err)
			sess.lastVerdict = classify.Unknown
			return
		}
		sess.previous = snap
	}

	if opts.TextWidth > 0 {
		if err := m.host.SetTextWidth(bufID, opts.TextWidth); err != nil {
			m.log.Warn("set textwidth for %s: %v", bufID, err)
		}
	}
	if !opts.Format.IsZero() {
		if flags, err := m.host.FormatFlags(bufID); err == nil {
			if err := m.host.SetFormatFlags(bufID, opts.Format.Apply(flags)); err != nil {
				m.log.Warn("set format flags for %s: %v", bufID, err)
			}
		}
	}
	if opts.CommentContinuation != "" {
		if err := m.host.SetCommentContinuation(bufID, opts.CommentContinuation); err != nil {
			m.log.Warn("set comments for %s: %v", bufID, err)
		}
	}
	m.refreshStatusLocked(bufID)
}

// restoreLocked puts the buffer's snapshotted options back, drops the
// snapshot, and clears the status text. Holding no snapshot means the
// buffer was never touched, so nothing is written.
func (m *Manager) restoreLocked(bufID string, sess *session) {
	if sess.previous != nil {
		if err := sess.previous.Restore(m.host, bufID); err != nil {
			m.log.Warn("restore %s: %v", bufID, err)
		}
		sess.previous = nil
	}
	m.status = ""
}

func (m *Manager) refreshStatusLocked(bufID string) {
	width, err := m.host.TextWidth(bufID)
	if err != nil {
		m.status = ""
		return
	}
	flags, err := m.host.FormatFlags(bufID)
	if err != nil {
		m.status = ""
		return
	}
	s := statusMarker + strconv.Itoa(width)
	if strings.ContainsRune(flags, config.PreserveWrapFlag) {
		s += string(config.PreserveWrapFlag)
	}
	m.status = s
}

// checkPending is the debounced cursor-motion callback.
func (m *Manager) checkPending() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled || m.pendingBuffer == "" {
		return
	}
	buf := m.pendingBuffer
	m.pendingBuffer = ""
	m.checkLocked(buf)
}

func (m *Manager) onCursorMoved(payload any) {
	ev, ok := payload.(event.CursorMoved)
	if !ok {
		return
	}
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return
	}
	m.pendingBuffer = ev.BufferID
	m.mu.Unlock()
	m.debouncer.Trigger()
}

func (m *Manager) onBufferEntered(payload any) {
	ev, ok := payload.(event.BufferEntered)
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	m.checkLocked(ev.BufferID)
}

// onBufferLeft restores the departing buffer immediately rather than
// waiting for a classification; the cursor is no longer there.
func (m *Manager) onBufferLeft(payload any) {
	ev, ok := payload.(event.BufferLeft)
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	if m.pendingBuffer == ev.BufferID {
		m.debouncer.Cancel()
		m.pendingBuffer = ""
	}
	if sess, ok := m.sessions[ev.BufferID]; ok {
		m.restoreLocked(ev.BufferID, sess)
		sess.lastVerdict = classify.Unknown
	}
}

func (m *Manager) onBufferClosed(payload any) {
	ev, ok := payload.(event.BufferClosed)
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	if m.pendingBuffer == ev.BufferID {
		m.debouncer.Cancel()
		m.pendingBuffer = ""
	}
	delete(m.sessions, ev.BufferID)
}

// onLanguageDetected applies the language's global option overrides
// once per buffer. These writes are deliberate baseline changes, not
// comment-context changes, so they are never snapshotted.
func (m *Manager) onLanguageDetected(payload any) {
	ev, ok := payload.(event.LanguageDetected)
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	sess := m.session(ev.BufferID)
	if sess.globalApplied {
		return
	}
	sess.globalApplied = true

	opts := m.cfg.Global(ev.Language)
	if opts.TextWidth > 0 {
		if err := m.host.SetTextWidth(ev.BufferID, opts.TextWidth); err != nil {
			m.log.Warn("global textwidth for %s: %v", ev.BufferID, err)
		}
	}
	if !opts.Format.IsZero() {
		if flags, err := m.host.FormatFlags(ev.BufferID); err == nil {
			if err := m.host.SetFormatFlags(ev.BufferID, opts.Format.Apply(flags)); err != nil {
				m.log.Warn("global format flags for %s: %v", ev.BufferID, err)
			}
		}
	}
	if opts.CommentContinuation != "" {
		if err := m.host.SetCommentContinuation(ev.BufferID, opts.CommentContinuation); err != nil {
			m.log.Warn("global comments for %s: %v", ev.BufferID, err)
		}
	}
}
