// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value. Environment variables
// override file-based values.
//
// Supported key files: ncbi-api-key, anthropic-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Env variable names consulted before the file-based store.
const (
	KeyNCBI      = "ncbi-api-key"
	KeyAnthropic = "anthropic-api-key"
)

var envOverrides = map[string]string{
	KeyNCBI:      "NCBI_API_KEY",
	KeyAnthropic: "ANTHROPIC_API_KEY",
}

// Store holds loaded secrets keyed by file name.
type Store map[string]string

// Load reads all files in dir into a Store. A missing directory is not an
// error; Load returns an empty Store. Unreadable files produce a warning on
// stderr but do not abort.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	store := make(Store)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			store[entry.Name()] = value
		}
	}

	return store, nil
}

// Get returns the value for name, preferring the corresponding environment
// variable when set. Returns "" when the secret is absent everywhere.
func (s Store) Get(name string) string {
	if env, ok := envOverrides[name]; ok {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return s[name]
}
