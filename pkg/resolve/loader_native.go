package resolve

import (
	goplugin "plugin"

	"github.com/entropic-build/filepool/pkg/plugin"
	"github.com/entropic-build/filepool/pkg/poolerr"
)

// Exported symbol names a module's .so is expected to carry. A module
// exports exactly one of the two.
const (
	processorSymbol = "Processor"
	factorySymbol   = "Factory"
)

// NativeLoader loads modules built with `go build -buildmode=plugin`
// through the standard library's plugin package. It is the production
// Loader; plugin.Open caches by path internally, so re-resolving the same
// module within a process is cheap.
type NativeLoader struct{}

// Load opens resolvedPath and looks up its Processor or Factory export.
func (NativeLoader) Load(resolvedPath, moduleID string) (plugin.Processor, plugin.Factory, error) {
	p, err := goplugin.Open(resolvedPath)
	if err != nil {
		return nil, nil, err
	}

	if sym, err := p.Lookup(processorSymbol); err == nil {
		proc, ok := sym.(plugin.Processor)
		if !ok {
			return nil, nil, poolerr.InvalidProcessor(
				"the module exported Processor with the wrong signature")
		}
		return proc, nil, nil
	}

	if sym, err := p.Lookup(factorySymbol); err == nil {
		factory, ok := sym.(plugin.Factory)
		if !ok {
			return nil, nil, poolerr.InvalidProcessor(
				"the module exported Factory with the wrong signature")
		}
		return nil, factory, nil
	}

	return nil, nil, poolerr.InvalidProcessor(
		"the module exported neither " + processorSymbol + " nor " + factorySymbol)
}
