package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestSeedDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `[{"n": 2}, {"n": 3}]`)
	writeFile(t, dir, "a.json", `{"n": 1}`)
	writeFile(t, dir, "notes.txt", `ignored`)

	var got []string
	n, err := seedDir(dir, func(doc []byte) error {
		got = append(got, string(doc))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{`{"n": 1}`, `{"n": 2}`, `{"n": 3}`}, got)
}

func TestSeedDir_StopsOnInsertError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `[{"n": 1}, {"n": 2}]`)

	n, err := seedDir(dir, func(doc []byte) error {
		if string(doc) == `{"n": 2}` {
			return errors.New("invalid report")
		}
		return nil
	})
	assert.Equal(t, 1, n)
	assert.ErrorContains(t, err, "a.json[1]: invalid report")
}

func TestReadDocuments_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", `{not json`)

	_, err := readDocuments(filepath.Join(dir, "bad.json"))
	assert.ErrorContains(t, err, "decode")
}
