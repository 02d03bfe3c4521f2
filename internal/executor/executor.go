// Package executor delegates rendered workflow instructions to the
// external agent that performs the actual work.
//
// The pipeline treats execution as opaque: it forwards output chunks as
// they arrive and cares only about stream completion. Terminal failures
// travel through Stream.Err after the chunk channel closes; they never
// block post-processing.
package executor

import "context"

// Chunk is one increment of executor output. Its content is opaque to
// the pipeline.
type Chunk struct {
	Text string
}

// Stream delivers executor output incrementally. Chunks is closed when
// the stream completes, success or failure; Err is valid only after
// Chunks has closed.
type Stream struct {
	chunks chan Chunk
	err    error
}

func newStream(buf int) *Stream {
	return &Stream{chunks: make(chan Chunk, buf)}
}

// Chunks returns the output channel. Consumers must drain it to
// completion before inspecting Err.
func (s *Stream) Chunks() <-chan Chunk {
	return s.chunks
}

// Err reports how the stream terminated.
func (s *Stream) Err() error {
	return s.err
}

// emit publishes one chunk. It blocks when the consumer lags.
func (s *Stream) emit(c Chunk) {
	s.chunks <- c
}

// finish records the terminal error and closes the stream. The error
// write happens before the close, so consumers that drained Chunks see
// it without further synchronization.
func (s *Stream) finish(err error) {
	s.err = err
	close(s.chunks)
}

// Executor runs rendered instructions against the project and streams
// back output.
type Executor interface {
	Execute(ctx context.Context, instructions string, allowlist []string) (*Stream, error)
}
