// Package chat answers visitor questions with a text generator and hands
// anything it cannot answer to the admin as a ticket.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/theMessiMagic/if-fashion/internal/models"
)

// MaxHistory is the number of turns kept per conversation.
const MaxHistory = 6

// FallbackReply is shown to the visitor when a question goes to the admin.
const FallbackReply = "Our admin will reply shortly."

var ErrEmptyMessage = errors.New("message is empty")

// SystemPrompt describes the business to the generator.
const SystemPrompt = `You are the official AI assistant for I.F Fashion, an embroidery and saree design business in India.

Business details:
- Services: Embroidery work, saree embroidery, custom designs
- Customers can upload designs through the website
- Order processing time: 3-5 business days
- Customers receive a Track ID after submission
- Customers can track order status using Track ID
- Admin reviews requests and marks them as Pending, Approved, or Rejected
- Be polite, helpful, and business-focused
- If you don't know something, say admin will assist

RULES:
- Reply in the SAME language as the user
- Keep answers short and clear
- Do NOT make up prices
- Encourage customers to upload designs or contact admin`

// Generator produces the assistant's next turn. The last entry of turns is
// the visitor's message.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, turns []models.ChatTurn) (string, error)
}

type TicketQueue interface {
	OpenTicket(ctx context.Context, question string) (models.ChatTicket, error)
}

type Notifier interface {
	TicketOpened(ctx context.Context, ticket models.ChatTicket) error
}

type Assistant struct {
	Generator Generator // nil sends every question to the admin
	Tickets   TicketQueue
	Notifier  Notifier // optional
	Timeout   time.Duration
}

// Reply is the outcome of one visitor message.
type Reply struct {
	Text     string
	Admin    bool   // true when the question became a ticket
	TicketID string // set when Admin is true
	History  []models.ChatTurn
}

// Respond appends message to history, asks the generator and falls back to a
// ticket when the generator fails, times out or says nothing. Only a failure
// to store the ticket is returned as an error.
func (a *Assistant) Respond(ctx context.Context, history []models.ChatTurn, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}

	turns := make([]models.ChatTurn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = truncate(append(turns, models.ChatTurn{Role: models.RoleUser, Text: message}))

	text, err := a.generate(ctx, turns)
	if err != nil {
		slog.Warn("Chat generator failed, opening ticket", "error", err)
		return a.escalate(ctx, turns, message)
	}

	turns = truncate(append(turns, models.ChatTurn{Role: models.RoleAssistant, Text: text}))
	return Reply{Text: text, History: turns}, nil
}

func (a *Assistant) generate(ctx context.Context, turns []models.ChatTurn) (string, error) {
	if a.Generator == nil {
		return "", errors.New("no generator configured")
	}
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	text, err := a.Generator.Generate(ctx, SystemPrompt, turns)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("empty reply")
	}
	return text, nil
}

func (a *Assistant) escalate(ctx context.Context, turns []models.ChatTurn, question string) (Reply, error) {
	ticket, err := a.Tickets.OpenTicket(ctx, question)
	if err != nil {
		return Reply{}, fmt.Errorf("open ticket: %w", err)
	}
	slog.Info("Chat ticket opened", "ticket_id", ticket.ID)

	if a.Notifier != nil {
		if err := a.Notifier.TicketOpened(ctx, ticket); err != nil {
			slog.Warn("Failed to notify admin of ticket", "ticket_id", ticket.ID, "error", err)
		}
	}
	return Reply{Text: FallbackReply, Admin: true, TicketID: ticket.ID, History: turns}, nil
}

func truncate(turns []models.ChatTurn) []models.ChatTurn {
	if len(turns) > MaxHistory {
		turns = turns[len(turns)-MaxHistory:]
	}
	return turns
}
