package transport

import "github.com/entropic-build/filepool/pkg/fsmodel"

// PrepareFile produces the outgoing representation of f for a channel
// send: a shallow copy sharing f's Contents buffer. If that buffer
// exclusively owns its storage (buffer.Owned), ownership moves to the
// returned File's Contents and f's own Contents is left neutered (length
// zero) — the zero-copy transfer path. Otherwise (a view into shared
// storage) Contents is deep-copied and f is left untouched, matching the
// transfer-vs-copy invariant a boundary crossing must preserve.
func PrepareFile(f *fsmodel.File) *fsmodel.File {
	if f == nil {
		return nil
	}
	out := &fsmodel.File{
		Path:       f.Path,
		Source:     f.Source,
		CreatedAt:  f.CreatedAt,
		ModifiedAt: f.ModifiedAt,
		Metadata:   CloneMetadata(f.Metadata),
	}
	if f.Contents == nil {
		return out
	}
	if f.Contents.Owned() {
		out.Contents = f.Contents.Move()
	} else {
		out.Contents = f.Contents.Clone()
	}
	return out
}

// PrepareChangedFiles clones a slice of ChangedFile for transport; change
// records never carry Contents, so there is no buffer
// ownership decision to make here.
func PrepareChangedFiles(in []fsmodel.ChangedFile) []fsmodel.ChangedFile {
	if in == nil {
		return nil
	}
	out := make([]fsmodel.ChangedFile, len(in))
	for i, cf := range in {
		out[i] = cf
		out[i].Metadata = CloneMetadata(cf.Metadata)
	}
	return out
}

// PrepareRun produces the outgoing representation of a Run: primitive
// fields copied, ChangedFiles cloned without contents, and Log omitted —
// the receiving side installs its own Logger bound to the request's
// message id (see pkg/executor).
func PrepareRun(r *fsmodel.Run) *fsmodel.Run {
	if r == nil {
		return nil
	}
	return &fsmodel.Run{
		Cwd:          r.Cwd,
		Concurrency:  r.Concurrency,
		Dev:          r.Dev,
		Debug:        r.Debug,
		Full:         r.Full,
		Partial:      r.Partial,
		ChangedFiles: PrepareChangedFiles(r.ChangedFiles),
	}
}
