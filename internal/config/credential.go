package config

import (
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// keyPrefix is the literal prefix every real Gemini API key carries. Values
// without it found in the legacy config are proxy endpoints (wss:// or http
// URLs) meant for the browser, never usable as a server credential.
const keyPrefix = "AIza"

// legacyKeyPattern matches the GEMINI_API_KEY assignment in config.js.
var legacyKeyPattern = regexp.MustCompile(`GEMINI_API_KEY\s*=\s*["']([^"']+)["']`)

// resolver is one credential resolution strategy. It returns the empty
// string when it has nothing to offer; the first non-empty result wins.
type resolver func() string

// ResolveAPIKey resolves the upstream API key from an ordered list of
// sources: the legacy config.js file first (only when the value looks like a
// real key), then the GEMINI_API_KEY environment variable. Returns the empty
// string when no source yields a key; callers treat that as a valid
// unconfigured state.
func ResolveAPIKey(legacyPath string) string {
	strategies := []resolver{
		func() string { return fromLegacyConfig(legacyPath) },
		func() string { return os.Getenv("GEMINI_API_KEY") },
	}

	for _, resolve := range strategies {
		if key := resolve(); key != "" {
			return key
		}
	}
	return ""
}

// fromLegacyConfig scans the legacy config file for a key assignment. A
// missing or unreadable file is a normal "not found". A matched value that
// does not carry the key prefix is skipped with a diagnostic so resolution
// falls through to the environment.
func fromLegacyConfig(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	m := legacyKeyPattern.FindSubmatch(content)
	if m == nil {
		return ""
	}

	candidate := string(m[1])
	if !strings.HasPrefix(candidate, keyPrefix) {
		slog.Warn("ignoring proxy URL in legacy config, falling back to environment",
			"path", path,
			"value_prefix", truncate(candidate, 10),
		)
		return ""
	}
	return candidate
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
