package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/theMessiMagic/if-fashion/internal/models"
)

type chatDoc struct {
	Pending  []models.ChatTicket `json:"pending"`
	Answered []models.ChatTicket `json:"answered"`
}

func (d *chatDoc) has(id string) bool {
	for _, t := range d.Pending {
		if t.ID == id {
			return true
		}
	}
	for _, t := range d.Answered {
		if t.ID == id {
			return true
		}
	}
	return false
}

func newTicketID() string {
	return uuid.New().String()[:8]
}

// OpenTicket queues a question for a human answer.
func (s *Store) OpenTicket(ctx context.Context, question string) (models.ChatTicket, error) {
	ticket := models.ChatTicket{Question: question, CreatedAt: s.now().UTC()}
	err := update(ctx, s, ChatCollection, func(doc *chatDoc) error {
		ticket.ID = newTicketID()
		for doc.has(ticket.ID) {
			ticket.ID = newTicketID()
		}
		doc.Pending = append(doc.Pending, ticket)
		return nil
	})
	if err != nil {
		return models.ChatTicket{}, err
	}
	return ticket, nil
}

func (s *Store) ListPendingTickets(ctx context.Context) ([]models.ChatTicket, error) {
	doc, err := view[chatDoc](ctx, s, ChatCollection)
	if err != nil {
		return nil, err
	}
	return doc.Pending, nil
}

func (s *Store) ListAnsweredTickets(ctx context.Context) ([]models.ChatTicket, error) {
	doc, err := view[chatDoc](ctx, s, ChatCollection)
	if err != nil {
		return nil, err
	}
	return doc.Answered, nil
}

// AnswerTicket moves a pending ticket to the answered set. A ticket is
// answered at most once; anything not pending returns ErrNotFound.
func (s *Store) AnswerTicket(ctx context.Context, id, reply string) (models.ChatTicket, error) {
	var answered models.ChatTicket
	err := update(ctx, s, ChatCollection, func(doc *chatDoc) error {
		for i, t := range doc.Pending {
			if t.ID != id {
				continue
			}
			now := s.now().UTC()
			t.Reply = &reply
			t.AnsweredAt = &now
			doc.Answered = append(doc.Answered, t)
			doc.Pending = append(doc.Pending[:i], doc.Pending[i+1:]...)
			answered = t
			return nil
		}
		return ErrNotFound
	})
	return answered, err
}

// TicketReply returns the admin reply for an answered ticket, or nil while it
// is still pending or unknown.
func (s *Store) TicketReply(ctx context.Context, id string) (*string, error) {
	doc, err := view[chatDoc](ctx, s, ChatCollection)
	if err != nil {
		return nil, err
	}
	for _, t := range doc.Answered {
		if t.ID == id {
			return t.Reply, nil
		}
	}
	return nil, nil
}
