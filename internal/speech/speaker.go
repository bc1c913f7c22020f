// Package speech renders announcement text through a text-to-speech engine.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrUnavailable means no speech engine or voice is configured. Callers are
// expected to log and skip the announcement rather than fail.
var ErrUnavailable = errors.New("speech unavailable")

// PlaybackError reports a failure after an utterance already started.
type PlaybackError struct {
	Text string
	Err  error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback of %q failed: %v", e.Text, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// Voice holds synthesis parameters passed through to the engine unmodified.
type Voice struct {
	Name   string
	Rate   int // words per minute
	Pitch  int
	Volume int
}

// Utterance is one piece of text to speak with the desired voice.
type Utterance struct {
	Text  string
	Voice Voice
}

// Speaker renders utterances. Implementations keep at most one utterance
// active: starting a new one preempts whatever is still playing.
type Speaker interface {
	Speak(ctx context.Context, u Utterance) error
}

// WriterSpeaker prints utterances instead of playing audio. Used by the CLI
// and anywhere a speech engine is not wanted.
type WriterSpeaker struct {
	W io.Writer
}

func (s WriterSpeaker) Speak(_ context.Context, u Utterance) error {
	_, err := fmt.Fprintln(s.W, u.Text)
	return err
}

// Multi fans an utterance out to several speakers. Every speaker is
// attempted; an ErrUnavailable from one channel does not silence the others.
// The first non-nil error is returned.
type Multi []Speaker

func (m Multi) Speak(ctx context.Context, u Utterance) error {
	var first error
	for _, s := range m {
		if err := s.Speak(ctx, u); err != nil && first == nil {
			first = err
		}
	}
	return first
}
