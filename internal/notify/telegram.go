// Package notify tells the admin about chat questions that need a human answer.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/theMessiMagic/if-fashion/internal/models"
)

// DefaultSendTimeout bounds a single notification.
const DefaultSendTimeout = 10 * time.Second

// Telegram sends a message to one chat for every new ticket.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64

	// Timeout bounds each send. Zero means DefaultSendTimeout.
	Timeout time.Duration
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	return NewTelegramWithClient(token, tgbotapi.APIEndpoint, chatID, &http.Client{Timeout: DefaultSendTimeout})
}

// NewTelegramWithClient uses endpoint (a format string with the token and
// method placeholders, like tgbotapi.APIEndpoint) and client for API calls.
func NewTelegramWithClient(token, endpoint string, chatID int64, client *http.Client) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram token and chat id are required")
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) TicketOpened(ctx context.Context, ticket models.ChatTicket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("New chat question (ticket %s):\n\n%s\n\nAnswer it from the admin dashboard.", ticket.ID, ticket.Question))

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Send takes no context, so it runs on its own and is abandoned when ctx ends.
	done := make(chan error, 1)
	go func() {
		_, err := t.bot.Send(msg)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send telegram message: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send telegram message: %w", ctx.Err())
	}
}
