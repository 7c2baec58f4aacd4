package worker

import (
	"context"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entropic-build/filepool/pkg/fsmodel"
	"github.com/entropic-build/filepool/pkg/plugin"
	"github.com/entropic-build/filepool/pkg/resolve"
)

type fakeLoader struct {
	proc plugin.Processor
}

func (f fakeLoader) Load(resolvedPath, moduleID string) (plugin.Processor, plugin.Factory, error) {
	return f.proc, nil, nil
}

func upperProcessor(ctx context.Context, file *fsmodel.File, run *fsmodel.Run) iter.Seq[plugin.Item] {
	return func(yield func(plugin.Item) bool) {
		yield(plugin.Item{File: file})
	}
}

func TestHandle_ImportAndProcessFile(t *testing.T) {
	resolver := resolve.NewResolver(fakeLoader{proc: plugin.Processor(upperProcessor)})
	h := Spawn(1, resolver, nil, nil)
	defer h.Terminate()

	require.NoError(t, h.ImportFileProcessor(1, "mod.so", "/tmp"))

	stream, err := h.ProcessFile(1, &fsmodel.File{Path: "a.txt"}, &fsmodel.Run{Cwd: "/tmp", Concurrency: 1, Full: true})
	require.NoError(t, err)

	reply, done, err := stream.Next()
	require.NoError(t, err)
	require.False(t, done)
	assert.Equal(t, "a.txt", reply.File.Path)

	_, done, err = stream.Next()
	require.NoError(t, err)
	assert.True(t, done)
}

func TestHandle_Terminate_RejectsLaterRequests(t *testing.T) {
	resolver := resolve.NewResolver(fakeLoader{})
	h := Spawn(2, resolver, nil, nil)
	h.Terminate()

	_, err := h.ProcessFile(1, &fsmodel.File{Path: "x"}, &fsmodel.Run{Cwd: "/tmp", Concurrency: 1, Full: true})
	require.Error(t, err)
}

func TestHandle_UnexpectedExit(t *testing.T) {
	exitErrs := make(chan error, 1)
	resolver := resolve.NewResolver(fakeLoader{})
	h := Spawn(3, resolver, nil, exitErrs)

	close(h.requests)

	select {
	case err := <-exitErrs:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected UnexpectedExit")
	}
}
