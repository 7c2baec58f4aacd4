package boundarylog

import (
	"fmt"

	"github.com/entropic-build/filepool/pkg/common/logging"
)

// Sink adapts a *logging.Logger — the build engine's own structured
// logger — to fsmodel.Logger, so a Run's per-request log replies land in
// the same place every other component's logs do.
type Sink struct {
	*logging.Logger
}

// NewSink wraps logger as an fsmodel.Logger.
func NewSink(logger *logging.Logger) Sink {
	return Sink{Logger: logger}
}

// Log implements fsmodel.Logger's untyped entry point, used by plugins
// that log non-string values: an error routes to Error, anything else is
// stringified and routed to Info.
func (s Sink) Log(message any, data map[string]any) {
	if err, ok := message.(error); ok {
		s.Logger.Error(err.Error(), data)
		return
	}
	s.Logger.Info(fmt.Sprint(message), data)
}

// Info implements fsmodel.Logger.
func (s Sink) Info(message string, data map[string]any) {
	s.Logger.Info(message, data)
}

// Warn implements fsmodel.Logger.
func (s Sink) Warn(message string, data map[string]any) {
	s.Logger.Warn(message, data)
}

// Error implements fsmodel.Logger.
func (s Sink) Error(message string, data map[string]any) {
	s.Logger.Error(message, data)
}

// Debug implements fsmodel.Logger.
func (s Sink) Debug(message string, data map[string]any) {
	s.Logger.Debug(message, data)
}
