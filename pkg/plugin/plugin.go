// Package plugin defines the Processor contract a plugin module exports:
// a function (file, run) -> zero or more output files, or a factory
// (data) -> Processor when data is supplied at import.
package plugin

import (
	"context"
	"iter"

	"github.com/entropic-build/filepool/pkg/fsmodel"
)

// Item is one element of a Processor's output sequence. Err set mid-
// sequence models an async-iterable plugin that throws partway through;
// a Processor that fails before producing anything yields a single Item
// with Err set and no further items.
type Item struct {
	File *fsmodel.File
	Err  error
}

// Processor is the per-file transform a plugin module exports. The
// returned sequence stands in for "undefined | FileInfo |
// iterable<FileInfo> | async iterable<FileInfo>" — zero items for
// "undefined", one item for a single FileInfo, any number for the
// iterable cases. Go's range-over-func iterators (iter.Seq) model both
// the synchronous and asynchronous iterable cases uniformly: a Processor
// that does I/O between items is simply a closure that blocks before
// calling yield again.
type Processor func(ctx context.Context, file *fsmodel.File, run *fsmodel.Run) iter.Seq[Item]

// Factory is invoked with the import-time data payload and
// produces the Processor to register, allowing plugins to close over
// configuration supplied at import.
type Factory func(ctx context.Context, data any) (Processor, error)
