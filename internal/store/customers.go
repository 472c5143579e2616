package store

import (
	"context"

	"github.com/theMessiMagic/if-fashion/internal/models"
)

type customersDoc struct {
	Submissions []models.CustomerSubmission `json:"submissions"`
	Sequence    int                         `json:"sequence,omitempty"`
}

func (d *customersDoc) index(trackID string) int {
	for i, sub := range d.Submissions {
		if sub.TrackID == trackID {
			return i
		}
	}
	return -1
}

// CreateCustomerSubmission assigns a tracking ID and pending status to sub and
// appends it. The stored record is returned.
func (s *Store) CreateCustomerSubmission(ctx context.Context, sub models.CustomerSubmission) (models.CustomerSubmission, error) {
	now := s.now()
	err := update(ctx, s, CustomersCollection, func(doc *customersDoc) error {
		ids := make([]string, len(doc.Submissions))
		for i, existing := range doc.Submissions {
			ids[i] = existing.TrackID
		}
		doc.Sequence = nextSequence(doc.Sequence, len(doc.Submissions), ids)

		sub.TrackID = formatTrackID(CustomerPrefix, now, doc.Sequence)
		sub.Status = models.StatusPending
		if sub.SubmittedAt == "" {
			sub.SubmittedAt = now.Format(models.TimeLayout)
		}
		doc.Submissions = append(doc.Submissions, sub)
		return nil
	})
	if err != nil {
		return models.CustomerSubmission{}, err
	}
	return sub, nil
}

func (s *Store) ListCustomerSubmissions(ctx context.Context) ([]models.CustomerSubmission, error) {
	doc, err := view[customersDoc](ctx, s, CustomersCollection)
	if err != nil {
		return nil, err
	}
	return doc.Submissions, nil
}

func (s *Store) FindCustomerSubmission(ctx context.Context, trackID string) (*models.CustomerSubmission, error) {
	doc, err := view[customersDoc](ctx, s, CustomersCollection)
	if err != nil {
		return nil, err
	}
	i := doc.index(trackID)
	if i < 0 {
		return nil, ErrNotFound
	}
	sub := doc.Submissions[i]
	return &sub, nil
}

// SetCustomerStatus changes the status of one submission. Unknown IDs and
// statuses leave the collection untouched.
func (s *Store) SetCustomerStatus(ctx context.Context, trackID, status string) error {
	if !models.ValidStatus(status) {
		return ErrInvalidStatus
	}
	return update(ctx, s, CustomersCollection, func(doc *customersDoc) error {
		i := doc.index(trackID)
		if i < 0 {
			return ErrNotFound
		}
		doc.Submissions[i].Status = models.Status(status)
		return nil
	})
}

// DeleteCustomerSubmission removes a submission and returns it so the caller
// can remove the uploaded image.
func (s *Store) DeleteCustomerSubmission(ctx context.Context, trackID string) (models.CustomerSubmission, error) {
	var removed models.CustomerSubmission
	err := update(ctx, s, CustomersCollection, func(doc *customersDoc) error {
		i := doc.index(trackID)
		if i < 0 {
			return ErrNotFound
		}
		removed = doc.Submissions[i]
		doc.Submissions = append(doc.Submissions[:i], doc.Submissions[i+1:]...)
		return nil
	})
	return removed, err
}
