package executor

import (
	"context"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entropic-build/filepool/pkg/channel"
	"github.com/entropic-build/filepool/pkg/fsmodel"
	"github.com/entropic-build/filepool/pkg/plugin"
	"github.com/entropic-build/filepool/pkg/resolve"
)

type fakeLoader struct {
	proc    plugin.Processor
	factory plugin.Factory
	err     error
}

func (f fakeLoader) Load(resolvedPath, moduleID string) (plugin.Processor, plugin.Factory, error) {
	return f.proc, f.factory, f.err
}

func echoProcessor(ctx context.Context, file *fsmodel.File, run *fsmodel.Run) iter.Seq[plugin.Item] {
	return func(yield func(plugin.Item) bool) {
		if run != nil && run.Log != nil {
			run.Log.Info("processed", map[string]any{"path": file.Path})
		}
		yield(plugin.Item{File: file})
	}
}

func TestExecutor_ImportAndProcessFile(t *testing.T) {
	resolver := resolve.NewResolver(fakeLoader{proc: plugin.Processor(echoProcessor)})
	e := New(1, resolver)

	in := make(chan channel.Request, 4)
	out := make(chan channel.Reply, 4)

	in <- channel.Request{ID: 1, Type: channel.ReqImportFileProcessor, ModuleUID: 7, ModuleID: "x.so", Cwd: "/tmp"}
	e.dispatch(context.Background(), <-in, out)
	imported := <-out
	require.Equal(t, channel.ReplyFileProcessorImported, imported.Type)

	run := &fsmodel.Run{Cwd: "/tmp", Concurrency: 1, Full: true}
	file := &fsmodel.File{Path: "a.txt"}
	in <- channel.Request{ID: 2, Type: channel.ReqProcessFile, ModuleUID: 7, File: file, Run: run}
	e.dispatch(context.Background(), <-in, out)

	// echoProcessor logs through run.Log before yielding, so the log reply
	// tagged with the request id arrives ahead of the file reply.
	logReply := <-out
	require.Equal(t, channel.ReplyLog, logReply.Type)
	assert.Equal(t, uint64(2), logReply.To)
	assert.Equal(t, "processed", logReply.Message)

	fileReply := <-out
	require.Equal(t, channel.ReplyFile, fileReply.Type)
	assert.Equal(t, "a.txt", fileReply.File.Path)

	finished := <-out
	assert.Equal(t, channel.ReplyFinished, finished.Type)
}

func TestExecutor_ProcessFile_RejectsPathlessOutput(t *testing.T) {
	pathless := func(ctx context.Context, file *fsmodel.File, run *fsmodel.Run) iter.Seq[plugin.Item] {
		return func(yield func(plugin.Item) bool) {
			yield(plugin.Item{File: &fsmodel.File{}})
		}
	}
	resolver := resolve.NewResolver(fakeLoader{proc: plugin.Processor(pathless)})
	e := New(1, resolver)

	in := make(chan channel.Request, 2)
	out := make(chan channel.Reply, 2)

	in <- channel.Request{ID: 1, Type: channel.ReqImportFileProcessor, ModuleUID: 3, ModuleID: "x.so", Cwd: "/tmp"}
	e.dispatch(context.Background(), <-in, out)
	<-out

	run := &fsmodel.Run{Cwd: "/tmp", Concurrency: 1, Full: true}
	in <- channel.Request{ID: 2, Type: channel.ReqProcessFile, ModuleUID: 3, File: &fsmodel.File{Path: "a.txt"}, Run: run}
	e.dispatch(context.Background(), <-in, out)

	reply := <-out
	require.Equal(t, channel.ReplyError, reply.Type)
	assert.Equal(t, "INVALID_FILE", reply.Error.Name)
}

func TestExecutor_ProcessFile_UnknownModule(t *testing.T) {
	resolver := resolve.NewResolver(fakeLoader{})
	e := New(1, resolver)

	out := make(chan channel.Reply, 1)
	e.dispatch(context.Background(), channel.Request{ID: 5, Type: channel.ReqProcessFile, ModuleUID: 99}, out)

	reply := <-out
	require.Equal(t, channel.ReplyError, reply.Type)
	assert.Equal(t, "MODULE_NOT_FOUND", reply.Error.Name)
}
