package resolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entropic-build/filepool/pkg/plugin"
)

func TestResolve_CwdRelative(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transform.so")
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))

	got, err := Resolve("transform.so", dir)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestResolve_SearchPath(t *testing.T) {
	globalDir := t.TempDir()
	path := filepath.Join(globalDir, "shared.so")
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))

	t.Setenv(pluginSearchPathEnv, globalDir)

	got, err := Resolve("shared", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestResolve_NotFound(t *testing.T) {
	_, err := Resolve("does-not-exist", t.TempDir())
	assert.ErrorIs(t, err, errModuleNotFound)
}

type stubLoader struct {
	proc    plugin.Processor
	factory plugin.Factory
	err     error
}

func (s stubLoader) Load(resolvedPath, moduleID string) (plugin.Processor, plugin.Factory, error) {
	return s.proc, s.factory, s.err
}

func TestResolver_LoadModule_NoExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mod.so")
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))

	r := NewResolver(stubLoader{proc: nil, factory: nil, err: nil})
	_, _, err := r.LoadModule(context.Background(), "mod.so", dir)
	require.Error(t, err)
}

func TestResolver_LoadModule_NotFound(t *testing.T) {
	r := NewResolver(stubLoader{})
	_, _, err := r.LoadModule(context.Background(), "nope.so", t.TempDir())
	require.Error(t, err)
}
