package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// DefaultBinary is the espeak-compatible engine used when none is configured.
const DefaultBinary = "espeak"

// CommandSpeaker shells out to an espeak-compatible binary per utterance.
// A new utterance cancels whatever is still playing, so the single audio
// channel carries at most one voice at a time.
type CommandSpeaker struct {
	binary string

	mu      sync.Mutex
	gen     uint64
	current context.CancelFunc
}

func NewCommandSpeaker(binary string) *CommandSpeaker {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &CommandSpeaker{binary: binary}
}

func (s *CommandSpeaker) Speak(ctx context.Context, u Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return nil
	}

	path, err := exec.LookPath(s.binary)
	if err != nil {
		return fmt.Errorf("%w: %q not found in PATH", ErrUnavailable, s.binary)
	}

	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.current != nil {
		s.current()
	}
	s.gen++
	gen := s.gen
	s.current = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		if s.gen == gen {
			s.current = nil
		}
		s.mu.Unlock()
	}()

	cmd := exec.CommandContext(runCtx, path, buildArgs(u)...)
	if err := cmd.Run(); err != nil {
		if runCtx.Err() != nil {
			// Preempted by a newer utterance or shutdown, not a failure.
			return nil
		}
		return &PlaybackError{Text: u.Text, Err: err}
	}
	return nil
}

// buildArgs maps Voice parameters onto espeak flags. Zero values are omitted
// so the engine's own defaults apply.
func buildArgs(u Utterance) []string {
	var args []string
	if u.Voice.Name != "" {
		args = append(args, "-v", u.Voice.Name)
	}
	if u.Voice.Rate > 0 {
		args = append(args, "-s", strconv.Itoa(u.Voice.Rate))
	}
	if u.Voice.Pitch > 0 {
		args = append(args, "-p", strconv.Itoa(u.Voice.Pitch))
	}
	if u.Voice.Volume > 0 {
		args = append(args, "-a", strconv.Itoa(u.Voice.Volume))
	}
	return append(args, u.Text)
}
