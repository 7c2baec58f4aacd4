package pool

import (
	"context"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entropic-build/filepool/pkg/fsmodel"
	"github.com/entropic-build/filepool/pkg/plugin"
	"github.com/entropic-build/filepool/pkg/worker"
)

type fakeLoader struct{}

func (fakeLoader) Load(resolvedPath, moduleID string) (plugin.Processor, plugin.Factory, error) {
	var proc plugin.Processor = func(ctx context.Context, file *fsmodel.File, run *fsmodel.Run) iter.Seq[plugin.Item] {
		return func(yield func(plugin.Item) bool) {
			yield(plugin.Item{File: file})
		}
	}
	return proc, nil, nil
}

func newTestPool(t *testing.T, concurrency int) *Pool {
	t.Helper()
	p, err := New(Config{
		Concurrency: concurrency,
		Run:         &fsmodel.Run{Cwd: "/tmp", Concurrency: concurrency, Full: true},
		Loader:      fakeLoader{},
	})
	require.NoError(t, err)
	t.Cleanup(p.Dispose)
	return p
}

func TestPool_RoundRobinDispatch(t *testing.T) {
	p := newTestPool(t, 3)

	var order []*worker.Handle
	for i := 0; i < 6; i++ {
		w, err := p.next()
		require.NoError(t, err)
		order = append(order, w)
	}
	for i := 0; i < 3; i++ {
		assert.Same(t, order[i], order[i+3])
	}

	uid, err := p.ImportFileProcessor("mod.so")
	require.NoError(t, err)

	stream, err := p.ProcessFile(uid, &fsmodel.File{Path: "a.txt"})
	require.NoError(t, err)
	reply, done, err := stream.Next()
	require.NoError(t, err)
	require.False(t, done)
	assert.Equal(t, "a.txt", reply.File.Path)
}

func TestPool_InvalidConfig(t *testing.T) {
	_, err := New(Config{Concurrency: 0, Run: &fsmodel.Run{Cwd: "/tmp", Concurrency: 1, Full: true}})
	require.Error(t, err)

	_, err = New(Config{Concurrency: 2, Run: nil})
	require.Error(t, err)
}

func TestPool_DisposeRejectsFurtherUse(t *testing.T) {
	p := newTestPool(t, 2)
	p.Dispose()

	assert.True(t, p.IsDisposed())
	assert.Equal(t, 0, p.Size())

	_, err := p.ImportFileProcessor("mod.so")
	require.Error(t, err)

	_, err = p.ProcessFile(1, &fsmodel.File{Path: "x"})
	require.Error(t, err)
}

func TestPool_DisposeIsIdempotent(t *testing.T) {
	p := newTestPool(t, 2)
	p.Dispose()
	p.Dispose()

	assert.True(t, p.IsDisposed())
	assert.Equal(t, 0, p.Size())
}
