package transport

import (
	"errors"

	"github.com/entropic-build/filepool/pkg/poolerr"
)

// ErrorRecord is the wire shape an error takes when it crosses the
// boundary: {name, message, stack, fields}. This record (toJSON-style)
// transport strategy was chosen over a structured-clone-of-Error
// strategy because it preserves custom fields, which a generic clone of
// an error value would drop.
type ErrorRecord struct {
	Name    string
	Message string
	Stack   string
	Fields  map[string]any
}

// standardKinds mirrors the JS standard error kind names a plugin author
// might raise. Go has no exception hierarchy, so recognized kinds simply
// round-trip to a *poolerr.Error carrying that Name; unrecognized kinds
// do too — the distinction only matters for callers that branch on Name.
var standardKinds = map[string]bool{
	"EvalError":      true,
	"RangeError":     true,
	"ReferenceError": true,
	"SyntaxError":    true,
	"TypeError":      true,
	"URIError":       true,
}

// ToRecord converts err into its wire ErrorRecord. A *poolerr.Error's
// Code, Stack, and Fields survive; a plain error becomes a record with
// Name "Error" and no fields.
func ToRecord(err error) ErrorRecord {
	if err == nil {
		return ErrorRecord{}
	}
	var pe *poolerr.Error
	if errors.As(err, &pe) {
		name := pe.Name
		if name == "" {
			name = string(pe.Code)
		}
		return ErrorRecord{
			Name:    name,
			Message: pe.Error(),
			Stack:   pe.Stack,
			Fields:  pe.Fields,
		}
	}
	return ErrorRecord{Name: "Error", Message: err.Error()}
}

// FromRecord reconstructs an error from rec. If rec.Name matches one of
// the recognized standard kinds, or carries a poolerr.Code, the
// reconstructed error preserves that identity; otherwise a generic
// *poolerr.Error carrying the same fields is returned. Stack is preserved
// verbatim in both cases.
func FromRecord(rec ErrorRecord) error {
	code := poolerr.Code(rec.Name)
	if !standardKinds[rec.Name] {
		switch code {
		case poolerr.CodePoolDisposed, poolerr.CodeInvalidConfig, poolerr.CodeModuleNotFound,
			poolerr.CodeModuleImportFailed, poolerr.CodeInvalidProcessor, poolerr.CodeInvalidFile,
			poolerr.CodePluginError, poolerr.CodeUnexpectedExit, poolerr.CodeTerminating,
			poolerr.CodeProtocolError:
			// Recognized filepool code; fall through to reconstruction below.
		default:
			code = poolerr.CodePluginError
		}
	} else {
		code = poolerr.CodePluginError
	}
	return &poolerr.Error{
		Code:    code,
		Name:    rec.Name,
		Message: rec.Message,
		Stack:   rec.Stack,
		Fields:  rec.Fields,
	}
}
