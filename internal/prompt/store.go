// Package prompt resolves named prompt assets to their literal text.
package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed all:prompts
var embeddedPrompts embed.FS

// ErrNotFound is returned when no asset matches the identifier.
var ErrNotFound = errors.New("prompt not found")

// ErrAmbiguous is returned when a bare identifier matches more than one asset.
var ErrAmbiguous = errors.New("prompt identifier is ambiguous")

// promptExtensions are the suffixes tried when resolving a bare identifier.
var promptExtensions = []string{".md", ".txt"}

// Store resolves prompt identifiers against an external directory first,
// then the embedded prompt assets. Resolution never depends on the process
// working directory.
type Store struct {
	externalDir string
}

// NewStore creates a Store. externalDir may be empty, in which case only
// embedded prompts are available.
func NewStore(externalDir string) *Store {
	return &Store{externalDir: externalDir}
}

// Load returns the byte-for-byte content of the named prompt. The
// identifier may be a full filename ("summarize.md") or a bare name
// ("summarize"); a bare name must resolve to exactly one asset.
func (s *Store) Load(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("prompt identifier is empty: %w", ErrNotFound)
	}

	if s.externalDir != "" {
		text, err := loadFromFS(os.DirFS(s.externalDir), id)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}

	sub, err := fs.Sub(embeddedPrompts, "prompts")
	if err != nil {
		return "", fmt.Errorf("embedded prompts unavailable: %w", err)
	}
	return loadFromFS(sub, id)
}

// List returns the identifiers of all available prompts, sorted, with
// external assets shadowing embedded ones of the same name.
func (s *Store) List() ([]string, error) {
	seen := make(map[string]bool)

	if s.externalDir != "" {
		entries, err := os.ReadDir(s.externalDir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read prompt directory: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && isPromptFile(e.Name()) {
				seen[e.Name()] = true
			}
		}
	}

	entries, err := fs.ReadDir(embeddedPrompts, "prompts")
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() && isPromptFile(e.Name()) {
				seen[e.Name()] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func loadFromFS(fsys fs.FS, id string) (string, error) {
	candidates := []string{id}
	if path.Ext(id) == "" {
		for _, ext := range promptExtensions {
			candidates = append(candidates, id+ext)
		}
	}

	var matches []string
	for _, name := range candidates {
		if info, err := fs.Stat(fsys, name); err == nil && !info.IsDir() {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("prompt %q: %w", id, ErrNotFound)
	case 1:
		// fall through
	default:
		return "", fmt.Errorf("prompt %q matches %v: %w", id, matches, ErrAmbiguous)
	}

	data, err := fs.ReadFile(fsys, matches[0])
	if err != nil {
		return "", fmt.Errorf("failed to read prompt %q: %w", id, err)
	}
	return string(data), nil
}

func isPromptFile(name string) bool {
	for _, ext := range promptExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
