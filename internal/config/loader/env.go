package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "COMMENTWRAP_"

// EnvLoader loads configuration overrides from environment variables.
type EnvLoader struct {
	prefix  string
	mapping map[string]string // env var -> config path
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(),
	}
}

// NewEnvLoaderWithMapping creates a loader with custom mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{prefix: prefix, mapping: mapping}
}

// defaultEnvMapping returns the default environment variable mappings.
func defaultEnvMapping() map[string]string {
	return map[string]string{
		"COMMENTWRAP_TEXT_WIDTH":    "commentOptions.textWidth",
		"COMMENTWRAP_MATCHER":       "commentOptions.matcher",
		"COMMENTWRAP_FORMAT_ADD":    "commentOptions.formatBehavior.add",
		"COMMENTWRAP_FORMAT_REMOVE": "commentOptions.formatBehavior.remove",
		"COMMENTWRAP_COMMENTS":      "commentOptions.commentContinuationPattern",
		"COMMENTWRAP_TOGGLE_KEY":    "keyBindings.toggleParagraphWrap",
	}
}

// Load reads environment variables and returns a configuration map.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for env, path := range l.mapping {
		if val, ok := os.LookupEnv(env); ok {
			setByPath(config, path, l.parseValue(path, val))
		}
	}
	return config, nil
}

// parseValue converts an environment string to a typed value. Flag and
// key paths stay strings even when they look numeric.
func (l *EnvLoader) parseValue(path, val string) any {
	if strings.Contains(path, "formatBehavior") ||
		strings.HasSuffix(path, "toggleParagraphWrap") ||
		strings.HasSuffix(path, "commentContinuationPattern") {
		return val
	}
	if n, err := strconv.Atoi(val); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return val
}
