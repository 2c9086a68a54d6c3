package utils

import (
	"io"
	"sync"
)

// flusher is satisfied by bufio.Writer and similar buffered sinks.
type flusher interface {
	Flush() error
}

// FlushingWriter serializes console writes and flushes buffered sinks after each one,
// so git progress lines reach the terminal before a confirmation prompt.
type FlushingWriter struct {
	mutex  sync.Mutex
	target io.Writer
	sink   flusher
}

// NewFlushingWriter wraps target once; nil stays nil.
func NewFlushingWriter(target io.Writer) io.Writer {
	switch typed := target.(type) {
	case nil:
		return nil
	case *FlushingWriter:
		return typed
	}
	sink, _ := target.(flusher)
	return &FlushingWriter{target: target, sink: sink}
}

// Write forwards data and flushes the sink when it buffers.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	if writer == nil || writer.target == nil {
		return 0, nil
	}
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	written, writeError := writer.target.Write(data)
	if writeError != nil || writer.sink == nil {
		return written, writeError
	}
	return written, writer.sink.Flush()
}
