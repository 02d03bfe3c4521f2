package executor

import "context"

// Scripted is a playback executor for tests and dry runs. It emits its
// configured chunks, then terminates with Err. The optional Hook runs
// before any chunk is emitted, which lets tests mutate the project tree
// while execution is notionally in flight.
type Scripted struct {
	Chunks []string
	Err    error
	Hook   func()

	// Captured from the last Execute call.
	Instructions string
	Allowlist    []string
}

// Execute plays back the script.
func (s *Scripted) Execute(ctx context.Context, instructions string, allowlist []string) (*Stream, error) {
	s.Instructions = instructions
	s.Allowlist = allowlist

	stream := newStream(len(s.Chunks))
	go func() {
		if s.Hook != nil {
			s.Hook()
		}
		for _, text := range s.Chunks {
			select {
			case <-ctx.Done():
				stream.finish(ctx.Err())
				return
			default:
			}
			stream.emit(Chunk{Text: text})
		}
		stream.finish(s.Err)
	}()
	return stream, nil
}
