package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Env is a snapshot of environment variables. Configuration is always read
// from an Env rather than from the process so tests can inject their own.
type Env map[string]string

// FromOS captures the current process environment.
func FromOS() Env {
	env := Env{}
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			env[key] = value
		}
	}
	return env
}

// Lookup reports the value of key and whether it is set at all.
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

// Get returns the value of key trimmed of surrounding whitespace, or def
// when the key is unset or blank.
func (e Env) Get(key, def string) string {
	v := strings.TrimSpace(e[key])
	if v == "" {
		return def
	}
	return v
}

// LoadFile merges KEY=VALUE lines from path into a copy of ambient. Keys
// already present in ambient are never overwritten, and for keys repeated in
// the file the first occurrence wins. A missing file is not an error.
//
// Blank lines, lines starting with '#' and lines without '=' are skipped.
// Key and value are trimmed and one layer of matching quotes is removed
// from the value.
func LoadFile(path string, ambient Env) (Env, int, error) {
	merged := make(Env, len(ambient))
	for k, v := range ambient {
		merged[k] = v
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return merged, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open env file %s: %w", path, err)
	}
	defer f.Close()

	added := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		if _, exists := merged[key]; exists {
			continue
		}
		merged[key] = value
		added++
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return merged, added, nil
}

func parseLine(line string) (key, value string, ok bool) {
	raw := strings.TrimSpace(line)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return "", "", false
	}
	key, value, found := strings.Cut(raw, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, unquote(strings.TrimSpace(value)), true
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}
