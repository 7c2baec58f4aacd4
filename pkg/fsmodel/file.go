// Package fsmodel defines the data model that crosses the Controller/
// Executor boundary: File, ChangedFile, and the per-build Run.
package fsmodel

import (
	"errors"
	"time"

	"github.com/entropic-build/filepool/pkg/buffer"
)

var (
	errPathRequired        = errors.New("file: path is required")
	errCwdRequired         = errors.New("run: cwd is required")
	errConcurrencyPositive = errors.New("run: concurrency must be a positive integer")
	errFullXorPartial      = errors.New("run: exactly one of full/partial must be true")
)

// ChangeKind tags a ChangedFile with what happened to it since the last
// build.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
)

// File is an addressable content unit passed to and returned from
// Processor functions. Files are immutable by convention across the
// Controller/Executor boundary: the Executor always receives a detached
// copy (see pkg/transport).
type File struct {
	Path       string
	Source     string
	CreatedAt  *time.Time
	ModifiedAt *time.Time
	Metadata   map[string]any
	Contents   *buffer.Buffer
}

// Validate enforces the one required invariant on File: a non-empty path.
func (f *File) Validate() error {
	if f == nil || f.Path == "" {
		return errPathRequired
	}
	return nil
}

// ChangedFile has the same shape as File plus a Change tag, and is always
// transported without Contents — change records carry metadata only.
type ChangedFile struct {
	Path       string
	Source     string
	CreatedAt  *time.Time
	ModifiedAt *time.Time
	Metadata   map[string]any
	Change     ChangeKind
}
