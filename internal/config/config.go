// Package config resolves the engine's option configuration.
//
// Configuration is a plain nested map: built-in defaults, deep-merged
// with user overrides at setup, then resolved per buffer by layering the
// language-specific override over the relevant base set. Resolution is
// pure and has no failure mode beyond falling back to the base set.
package config

import (
	"fmt"
	"sync"
)

// Section names of the two option sets.
const (
	sectionComment = "commentOptions"
	sectionGlobal  = "globalOptions"
	sectionKeys    = "keyBindings"
)

// PreserveWrapFlag is the format flag toggled by TogglePreserveWrap:
// paragraph-preserving reflow while typing.
const PreserveWrapFlag = 'w'

// KeyBindings names the key sequences the engine installs. An empty
// sequence disables the binding.
type KeyBindings struct {
	// TogglePreserveWrap toggles the paragraph-preserving wrap flag.
	TogglePreserveWrap string
}

// Defaults returns the built-in configuration tree.
//
// The default comment options wrap at 74 columns with auto-wrap of text
// and comments ("t", "c"), comment continuation on Enter ("r"), gq
// formatting of comments ("q"), and comment-leader removal when joining
// lines ("j"). Python selects the docstring-aware matcher.
func Defaults() map[string]any {
	return map[string]any{
		sectionKeys: map[string]any{
			"toggleParagraphWrap": "",
		},
		sectionComment: map[string]any{
			keyTextWidth: 74,
			keyFormatBehavior: map[string]any{
				"add":    "tcrqj",
				"remove": "",
			},
			keyMatcher: "generic",
			keyLanguageOverrides: map[string]any{
				"python": map[string]any{
					keyMatcher: "docstring",
				},
			},
		},
		sectionGlobal: map[string]any{
			keyLanguageOverrides: map[string]any{},
		},
	}
}

// Config is the merged, validated configuration.
type Config struct {
	mu   sync.RWMutex
	data map[string]any
}

// New deep-merges user overrides onto the defaults and validates the
// result.
func New(user map[string]any) (*Config, error) {
	data := DeepMerge(nil, Defaults())
	data = DeepMerge(data, user)

	c := &Config{data: data}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// validate decodes every option set once so malformed trees fail at
// setup instead of mid-session.
func (c *Config) validate() error {
	for _, section := range []string{sectionComment, sectionGlobal} {
		base, _ := c.data[section].(map[string]any)
		if _, err := decodeOptions(base); err != nil {
			return fmt.Errorf("%s: %w", section, err)
		}
		overrides, _ := base[keyLanguageOverrides].(map[string]any)
		for lang, raw := range overrides {
			ov, ok := raw.(map[string]any)
			if !ok {
				return fmt.Errorf("%s: override for %q is %T, want table", section, lang, raw)
			}
			if _, err := decodeOptions(ov); err != nil {
				return fmt.Errorf("%s: override for %q: %w", section, lang, err)
			}
		}
	}
	return nil
}

// Comment resolves the option set applied while the cursor is in a
// comment, for the given language.
func (c *Config) Comment(lang string) Options {
	return c.resolve(sectionComment, lang)
}

// Global resolves the option set applied once when a buffer's language
// is detected. The base set carries no values of its own, so this is
// empty for languages without an override.
func (c *Config) Global(lang string) Options {
	return c.resolve(sectionGlobal, lang)
}

func (c *Config) resolve(section, lang string) Options {
	c.mu.RLock()
	defer c.mu.RUnlock()

	base, _ := c.data[section].(map[string]any)
	merged := DeepMerge(nil, base)
	delete(merged, keyLanguageOverrides)

	if lang != "" {
		if overrides, ok := base[keyLanguageOverrides].(map[string]any); ok {
			if ov, ok := overrides[lang].(map[string]any); ok {
				merged = DeepMerge(merged, ov)
			}
		}
	}

	// Validated at New; decode cannot fail here.
	opts, _ := decodeOptions(merged)
	return opts
}

// Keys returns the configured key bindings.
func (c *Config) Keys() KeyBindings {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var kb KeyBindings
	if keys, ok := c.data[sectionKeys].(map[string]any); ok {
		if seq, ok := keys["toggleParagraphWrap"].(string); ok {
			kb.TogglePreserveWrap = seq
		}
	}
	return kb
}

// ToggleCommentFlag forces the flag present or absent in the default
// comment format behavior, so the change survives later comment entries
// in the same session.
func (c *Config) ToggleCommentFlag(flag rune, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	base, ok := c.data[sectionComment].(map[string]any)
	if !ok {
		return
	}

	fb, err := decodeFormatBehavior(base[keyFormatBehavior])
	if err != nil {
		fb = FormatBehavior{}
	}
	fb = fb.ToggleFlag(flag, on)

	if fb.Replace != "" {
		base[keyFormatBehavior] = fb.Replace
		return
	}
	base[keyFormatBehavior] = map[string]any{
		"add":    fb.Add,
		"remove": fb.Remove,
	}
}
