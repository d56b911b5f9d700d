package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedPrompt(t *testing.T) {
	s := NewStore("")

	text, err := s.Load("medical-advice")
	require.NoError(t, err)
	assert.Contains(t, text, "persistent cough")
}

func TestLoadByFullFilename(t *testing.T) {
	s := NewStore("")

	text, err := s.Load("summarize.md")
	require.NoError(t, err)
	assert.Contains(t, text, "three sentences")
}

func TestLoadIsIdempotent(t *testing.T) {
	s := NewStore("")

	first, err := s.Load("summarize")
	require.NoError(t, err)
	second, err := s.Load("summarize")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadNotFound(t *testing.T) {
	s := NewStore("")

	_, err := s.Load("nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadEmptyIdentifier(t *testing.T) {
	s := NewStore("")

	_, err := s.Load("  ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadExternalOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	content := "external version of the summarize prompt\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summarize.md"), []byte(content), 0o644))

	s := NewStore(dir)

	text, err := s.Load("summarize")
	require.NoError(t, err)
	assert.Equal(t, content, text)
}

func TestLoadAmbiguousBareIdentifier(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.md"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.txt"), []byte("b"), 0o644))

	s := NewStore(dir)

	_, err := s.Load("greet")
	assert.ErrorIs(t, err, ErrAmbiguous)
}

func TestLoadPreservesContentExactly(t *testing.T) {
	dir := t.TempDir()
	content := "  leading spaces\nand a trailing newline\n\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw.txt"), []byte(content), 0o644))

	s := NewStore(dir)

	text, err := s.Load("raw.txt")
	require.NoError(t, err)
	assert.Equal(t, content, text)
}

func TestListMergesExternalAndEmbedded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.md"), []byte("x"), 0o644))

	s := NewStore(dir)

	names, err := s.List()
	require.NoError(t, err)
	assert.Contains(t, names, "custom.md")
	assert.Contains(t, names, "medical-advice.md")
	assert.Contains(t, names, "summarize.md")
}

func TestListEmbeddedOnly(t *testing.T) {
	s := NewStore("")

	names, err := s.List()
	require.NoError(t, err)
	assert.NotEmpty(t, names)
}
