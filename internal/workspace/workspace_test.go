package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/fieldscan/internal/workspace"
)

func TestListInputs(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "inputs")
	require.NoError(t, os.MkdirAll(filepath.Join(in, "sub"), 0o755))
	for _, name := range []string{"b.csv", "a.json", ".hidden"} {
		require.NoError(t, os.WriteFile(filepath.Join(in, name), []byte("x"), 0o644))
	}
	ws := workspace.New(in, filepath.Join(dir, "outputs"))
	got, err := ws.ListInputs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.csv"}, got)

	empty := workspace.New(filepath.Join(dir, "missing"), "")
	got, err = empty.ListInputs()
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "outputs", empty.OutputsDir)
}

func TestOutputPath(t *testing.T) {
	ws := workspace.New("in", "out")
	assert.Equal(t, filepath.Join("out", "extracted_sales.txt"), ws.OutputPath("data/sales.csv"))
	assert.Equal(t, filepath.Join("out", "extracted_archive.tar.txt"), ws.OutputPath("archive.tar.gz"))
	assert.Equal(t, filepath.Join("out", "extracted_README.txt"), ws.OutputPath("README"))
}

func TestResolveInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "inputs")
	require.NoError(t, os.MkdirAll(in, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.csv"), []byte("x"), 0o644))
	ws := workspace.New(in, "")

	got, err := ws.ResolveInput("a.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(in, "a.csv"), got)

	direct := filepath.Join(in, "a.csv")
	got, err = ws.ResolveInput(direct)
	require.NoError(t, err)
	assert.Equal(t, direct, got)

	_, err = ws.ResolveInput("nope.csv")
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "extracted_x.txt")
	require.NoError(t, workspace.WriteReport(path, []string{"a;Numeric;1", "b;String;x;y"}))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a;Numeric;1\nb;String;x;y\n", string(b))

	require.NoError(t, workspace.WriteReport(path, nil))
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, b)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are renamed away")
}
