package speech

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestBuildArgs(t *testing.T) {
	u := Utterance{
		Text:  "hello",
		Voice: Voice{Name: "en-gb", Rate: 160, Pitch: 50, Volume: 100},
	}

	got := buildArgs(u)
	want := []string{"-v", "en-gb", "-s", "160", "-p", "50", "-a", "100", "hello"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("buildArgs = %v, want %v", got, want)
	}
}

func TestBuildArgsOmitsZeroValues(t *testing.T) {
	got := buildArgs(Utterance{Text: "hello"})
	want := []string{"hello"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("buildArgs = %v, want %v", got, want)
	}
}

func TestCommandSpeakerUnavailable(t *testing.T) {
	s := NewCommandSpeaker("taskvoice-no-such-tts-binary")

	err := s.Speak(context.Background(), Utterance{Text: "hello"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Speak error = %v, want ErrUnavailable", err)
	}
}

func TestCommandSpeakerSkipsEmptyText(t *testing.T) {
	s := NewCommandSpeaker("taskvoice-no-such-tts-binary")

	if err := s.Speak(context.Background(), Utterance{Text: "   "}); err != nil {
		t.Fatalf("Speak with empty text: %v", err)
	}
}

func TestWriterSpeaker(t *testing.T) {
	var buf bytes.Buffer
	s := WriterSpeaker{W: &buf}

	if err := s.Speak(context.Background(), Utterance{Text: "good morning"}); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if got := buf.String(); got != "good morning\n" {
		t.Fatalf("output = %q", got)
	}
}

type fakeSpeaker struct {
	spoken []string
	err    error
}

func (f *fakeSpeaker) Speak(_ context.Context, u Utterance) error {
	f.spoken = append(f.spoken, u.Text)
	return f.err
}

func TestMultiSpeaksAllChannels(t *testing.T) {
	broken := &fakeSpeaker{err: ErrUnavailable}
	working := &fakeSpeaker{}
	m := Multi{broken, working}

	err := m.Speak(context.Background(), Utterance{Text: "hello"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Multi error = %v, want first error", err)
	}
	if len(working.spoken) != 1 || working.spoken[0] != "hello" {
		t.Fatalf("second speaker not reached: %v", working.spoken)
	}
}
