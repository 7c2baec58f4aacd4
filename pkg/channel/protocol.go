// Package channel implements the Message Channel: a reliable, ordered,
// duplex carrier of structured requests and replies between the
// Controller and one Executor goroutine, with request/reply correlation,
// streamed multi-part replies, and reject-on-terminate semantics.
//
// A platform thread's message port becomes, here, a pair of Go channels
// (one per direction) multiplexing every in-flight
// request for one worker. Go's channel send-blocks-until-received
// semantics subsume the "pre-register the next reply's waiter before
// yielding" concern: a per-id subscriber channel is created once, at
// send time, and stays valid for the whole exchange, so a reply arriving
// while the consumer is between Next() calls simply waits in the
// (buffered) channel instead of being dropped.
package channel

import (
	"github.com/entropic-build/filepool/pkg/fsmodel"
	"github.com/entropic-build/filepool/pkg/transport"
)

// RequestType identifies a Message Channel request kind.
type RequestType string

const (
	ReqImportFileProcessor RequestType = "importFileProcessor"
	ReqImportModule        RequestType = "importModule"
	ReqProcessFile         RequestType = "processFile"
)

// Request is a message sent from the Controller to an Executor.
type Request struct {
	ID        uint64
	Type      RequestType
	ModuleUID int
	ModuleID  string
	Cwd       string
	Data      any
	File      *fsmodel.File
	Run       *fsmodel.Run
}

// ReplyType identifies a Message Channel reply kind.
type ReplyType string

const (
	ReplyFileProcessorImported ReplyType = "fileProcessorImported"
	ReplyFinished              ReplyType = "finished"
	ReplyFile                  ReplyType = "file"
	ReplyLog                   ReplyType = "log"
	ReplyError                 ReplyType = "error"
)

// LogLevel is the severity tag on a "log" reply.
type LogLevel string

const (
	LevelInfo    LogLevel = "info"
	LevelWarning LogLevel = "warning"
	LevelError   LogLevel = "error"
	LevelDebug   LogLevel = "debug"
)

// Reply is a message sent from an Executor back to the Controller,
// always correlated to a Request via To.
type Reply struct {
	To    uint64
	Type  ReplyType
	Name  string
	File  *fsmodel.File
	Level LogLevel
	// Message carries the log reply's message: a string for the named
	// severities, or whatever value was passed to Logger.Log (an error
	// value included, carried as is).
	Message any
	Data    map[string]any
	Error   transport.ErrorRecord
}
