package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"taskvoice/internal/announce"
	"taskvoice/internal/notify"
	"taskvoice/internal/server"
	"taskvoice/internal/speech"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the announcement scheduler",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()

			speaker, notifier := buildChannels(a)

			scheduler := announce.NewScheduler(announce.Config{
				Enabled:        a.cfg.Announce.Enabled,
				MorningEnabled: a.cfg.Announce.Morning,
				EveningEnabled: a.cfg.Announce.Evening,
				Voice:          voiceFromConfig(a),
			}, a.taskRepo, speaker, notifier)

			if err := scheduler.Start(); err != nil {
				return err
			}
			defer scheduler.Stop()

			srv := server.New(a.cfg.ListenAddr, a.tasks, a.transfers, scheduler)
			if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Println("Shutdown complete.")
			return nil
		},
	}
}

// buildChannels assembles the speech output: the local TTS engine, plus a
// Telegram mirror when a token is configured.
func buildChannels(a *app) (speech.Speaker, announce.Notifier) {
	channels := speech.Multi{speech.NewCommandSpeaker(a.cfg.SpeechBinary)}

	var notifier announce.Notifier
	if a.cfg.TelegramToken != "" {
		tg, err := notify.New(a.cfg.TelegramToken, a.cfg.TelegramChatID)
		if err != nil {
			log.Printf("[warn] telegram disabled: %v", err)
		} else {
			channels = append(channels, tg)
			notifier = tg
		}
	}
	return channels, notifier
}

func voiceFromConfig(a *app) speech.Voice {
	return speech.Voice{
		Name:   a.cfg.Announce.VoiceName,
		Rate:   a.cfg.Announce.VoiceRate,
		Pitch:  a.cfg.Announce.VoicePitch,
		Volume: a.cfg.Announce.VoiceVolume,
	}
}
