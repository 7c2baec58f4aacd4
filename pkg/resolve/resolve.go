// Package resolve implements the module-loading contract of:
// resolve a moduleId against a cwd (falling back to a global search path),
// dynamically load the resolved module, and validate that it exports a
// Processor or Factory.
package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/entropic-build/filepool/pkg/plugin"
	"github.com/entropic-build/filepool/pkg/poolerr"
)

// pluginSearchPathEnv names the environment variable carrying the
// ":"-separated (os.PathListSeparator) list of directories the
// "globally-installed package" fallback step of module resolution
// searches, the nearest Go analog to Node's global node_modules
// resolution fallback.
const pluginSearchPathEnv = "FILEPOOL_PLUGIN_PATH"

// resolvedExtensions are the file extensions tried when a bare moduleId
// doesn't exist as given. ".so" is a plugin.Open-loadable shared object
// built with `go build -buildmode=plugin`.
var resolvedExtensions = []string{"", ".so"}

// Resolve locates moduleID: an absolute path used as-is, a path relative
// to cwd, or (failing both) each directory on FILEPOOL_PLUGIN_PATH.
func Resolve(moduleID, cwd string) (string, error) {
	if filepath.IsAbs(moduleID) {
		if path, ok := existingWithExt(moduleID); ok {
			return path, nil
		}
	} else if path, ok := existingWithExt(filepath.Join(cwd, moduleID)); ok {
		return path, nil
	}

	for _, dir := range searchPath() {
		if path, ok := existingWithExt(filepath.Join(dir, moduleID)); ok {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s", errModuleNotFound, moduleID)
}

var errModuleNotFound = fmt.Errorf("module not found")

func existingWithExt(base string) (string, bool) {
	for _, ext := range resolvedExtensions {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func searchPath() []string {
	raw := os.Getenv(pluginSearchPathEnv)
	if raw == "" {
		return nil
	}
	return filepath.SplitList(raw)
}

// Loader loads a resolved module file and extracts its Processor or
// Factory. NativeLoader (loader_native.go) is the production
// implementation, backed by the standard library's plugin package;
// tests substitute a Loader that resolves in-process registrations
// instead of building real .so files.
type Loader interface {
	Load(resolvedPath, moduleID string) (plugin.Processor, plugin.Factory, error)
}

// Resolver ties path resolution to a Loader and validates the loaded
// export.
type Resolver struct {
	loader Loader
}

// NewResolver builds a Resolver over loader.
func NewResolver(loader Loader) *Resolver {
	return &Resolver{loader: loader}
}

// LoadModule resolves moduleID against cwd and loads it, wrapping any
// resolution or import failure with the "Error importing module: <id>"
// prefix while preserving the original error's kind and cause.
func (r *Resolver) LoadModule(ctx context.Context, moduleID, cwd string) (plugin.Processor, plugin.Factory, error) {
	path, err := Resolve(moduleID, cwd)
	if err != nil {
		return nil, nil, poolerr.ModuleImportFailed(moduleID, err)
	}
	proc, factory, err := r.loader.Load(path, moduleID)
	if err != nil {
		return nil, nil, poolerr.ModuleImportFailed(moduleID, err)
	}
	if proc == nil && factory == nil {
		return nil, nil, poolerr.ModuleImportFailed(moduleID,
			poolerr.InvalidProcessor("the module exported neither a Processor nor a Factory symbol"))
	}
	return proc, factory, nil
}
