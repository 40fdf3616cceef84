package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/manualgest/internal/manuals"
	"github.com/dgallion1/manualgest/internal/pipeline"
)

func TestRenderList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Nybyg.pdf"), []byte("x"), 0o644))

	out := renderList(manuals.Default(), pipeline.Sources{Dir: dir})
	assert.Contains(t, out, "BO-VEST Nybyg")
	assert.Contains(t, out, filepath.Join(dir, "Nybyg.pdf"))
	assert.Contains(t, out, "bovest-renovering.json")
	assert.Contains(t, out, "no source")
	assert.Contains(t, out, "DS Det Sociale")
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"convert", "list"})

	for _, name := range []string{"input-dir", "output-dir", "version", "date", "pdftotext"} {
		assert.NotNil(t, convertCmd.Flags().Lookup(name), name)
	}
}
