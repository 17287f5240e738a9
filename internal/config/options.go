package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	// ErrInvalidTextWidth is reported for zero or negative text widths.
	ErrInvalidTextWidth = errors.New("config: textWidth must be positive")

	// ErrInvalidFormatBehavior is reported when formatBehavior is
	// neither a string nor an add/remove table.
	ErrInvalidFormatBehavior = errors.New("config: malformed formatBehavior")
)

// FormatBehavior describes how the host's format flags are changed while
// in a comment: either a full replacement string, or an additive pair
// applied against the current flags.
//
// A flag appearing in both Add and Remove is removed: removal always
// wins, so a user override can reliably strip a defaulted flag.
type FormatBehavior struct {
	// Replace, when non-empty, substitutes the whole flag set.
	Replace string

	// Add and Remove adjust the current flag set character by
	// character. Ignored when Replace is set.
	Add    string
	Remove string
}

// IsZero reports whether the behavior changes nothing.
func (fb FormatBehavior) IsZero() bool {
	return fb.Replace == "" && fb.Add == "" && fb.Remove == ""
}

// Apply computes the new flag string from the current one. Removal runs
// after addition, so Remove wins over Add on overlap.
func (fb FormatBehavior) Apply(current string) string {
	if fb.Replace != "" {
		return fb.Replace
	}

	out := current
	for _, f := range fb.Add {
		if !strings.ContainsRune(out, f) {
			out += string(f)
		}
	}
	for _, f := range fb.Remove {
		out = strings.ReplaceAll(out, string(f), "")
	}
	return out
}

// ToggleFlag returns a copy of the behavior with the flag forced present
// (on) or absent (off) in whichever representation is in use.
func (fb FormatBehavior) ToggleFlag(flag rune, on bool) FormatBehavior {
	s := string(flag)
	if fb.Replace != "" {
		fb.Replace = strings.ReplaceAll(fb.Replace, s, "")
		if on {
			fb.Replace += s
		}
		return fb
	}

	fb.Add = strings.ReplaceAll(fb.Add, s, "")
	fb.Remove = strings.ReplaceAll(fb.Remove, s, "")
	if on {
		fb.Add += s
	}
	return fb
}

// Options is the resolved option set applied to a buffer. Zero-valued
// fields mean "leave the host's current value alone".
type Options struct {
	// TextWidth is the column at which automatic wrapping occurs.
	TextWidth int

	// Format adjusts the host's format-behavior flags.
	Format FormatBehavior

	// CommentContinuation is passed through to the host unmodified.
	CommentContinuation string

	// Matcher names the classification strategy for the language.
	Matcher string
}

// Option tree keys.
const (
	keyTextWidth           = "textWidth"
	keyFormatBehavior      = "formatBehavior"
	keyCommentContinuation = "commentContinuationPattern"
	keyMatcher             = "matcher"
	keyLanguageOverrides   = "languageOverrides"
)

// decodeOptions builds Options from an option subtree.
func decodeOptions(m map[string]any) (Options, error) {
	var opts Options

	if v, ok := m[keyTextWidth]; ok {
		width, ok := toInt(v)
		if !ok || width <= 0 {
			return opts, fmt.Errorf("%w: %v", ErrInvalidTextWidth, v)
		}
		opts.TextWidth = width
	}

	if v, ok := m[keyFormatBehavior]; ok {
		fb, err := decodeFormatBehavior(v)
		if err != nil {
			return opts, err
		}
		opts.Format = fb
	}

	if v, ok := m[keyCommentContinuation].(string); ok {
		opts.CommentContinuation = v
	}
	if v, ok := m[keyMatcher].(string); ok {
		opts.Matcher = v
	}

	return opts, nil
}

func decodeFormatBehavior(v any) (FormatBehavior, error) {
	switch fv := v.(type) {
	case string:
		return FormatBehavior{Replace: fv}, nil
	case map[string]any:
		var fb FormatBehavior
		for key, raw := range fv {
			s, ok := raw.(string)
			if !ok {
				return fb, fmt.Errorf("%w: %s is %T", ErrInvalidFormatBehavior, key, raw)
			}
			switch key {
			case "add":
				fb.Add = s
			case "remove":
				fb.Remove = s
			default:
				return fb, fmt.Errorf("%w: unknown key %q", ErrInvalidFormatBehavior, key)
			}
		}
		return fb, nil
	default:
		return FormatBehavior{}, fmt.Errorf("%w: %T", ErrInvalidFormatBehavior, v)
	}
}

// toInt accepts the integer representations the loaders produce.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}
