// Package notify mirrors announcements and notices to Telegram.
package notify

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskvoice/internal/speech"
)

// Telegram delivers announcement text to a single configured chat. Delivery
// is best effort: a failed send is logged and never stops the scheduler.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func New(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] telegram notifier authorized on account %s", api.Self.UserName)
	return &Telegram{api: api, chatID: chatID}, nil
}

// Notify implements announce.Notifier: user-visible notices such as playback
// failures.
func (t *Telegram) Notify(text string) {
	if err := t.send(text); err != nil {
		log.Printf("[warn] telegram notify: %v", err)
	}
}

// Speak implements speech.Speaker so the Telegram chat can run as a second
// announcement channel alongside the audio one.
func (t *Telegram) Speak(_ context.Context, u speech.Utterance) error {
	if err := t.send(u.Text); err != nil {
		return &speech.PlaybackError{Text: u.Text, Err: err}
	}
	return nil
}

func (t *Telegram) send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
