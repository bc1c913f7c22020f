package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taskvoice/internal/announce"
	"taskvoice/internal/speech"
)

func announceCmd() *cobra.Command {
	var speak bool

	cmd := &cobra.Command{
		Use:   "announce <morning|evening>",
		Short: "Print (or speak) one announcement batch immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()

			tasks, err := a.taskRepo.ListOpen(context.Background())
			if err != nil {
				return err
			}

			now := time.Now()
			var plan []announce.Announcement
			switch args[0] {
			case "morning":
				plan = announce.MorningPlan(tasks, now)
			case "evening":
				plan = announce.EveningPlan(tasks, now)
			default:
				return fmt.Errorf("unknown batch %q, expected morning or evening", args[0])
			}

			return playPlan(a, plan, speak)
		},
	}

	cmd.Flags().BoolVar(&speak, "speak", false, "Play through the speech engine instead of printing")
	return cmd
}

func playPlan(a *app, plan []announce.Announcement, speak bool) error {
	var speaker speech.Speaker = speech.WriterSpeaker{W: os.Stdout}
	if speak {
		speaker = speech.NewCommandSpeaker(a.cfg.SpeechBinary)
	}

	voice := voiceFromConfig(a)
	offset := time.Duration(0)
	for _, ann := range plan {
		offset += ann.Delay
		if speak {
			time.Sleep(ann.Delay)
		} else {
			fmt.Printf("+%-5s ", offset.Truncate(100*time.Millisecond))
		}
		if err := speaker.Speak(context.Background(), speech.Utterance{Text: ann.Text, Voice: voice}); err != nil {
			return err
		}
	}
	return nil
}
