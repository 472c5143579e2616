package store

import (
	"context"

	"github.com/theMessiMagic/if-fashion/internal/models"
)

type employeesDoc struct {
	Requests []models.EmployeeApplication `json:"requests"`
	Sequence int                          `json:"sequence,omitempty"`
}

func (d *employeesDoc) index(trackID string) int {
	for i, app := range d.Requests {
		if app.TrackID == trackID {
			return i
		}
	}
	return -1
}

func (s *Store) CreateEmployeeApplication(ctx context.Context, app models.EmployeeApplication) (models.EmployeeApplication, error) {
	now := s.now()
	err := update(ctx, s, EmployeesCollection, func(doc *employeesDoc) error {
		ids := make([]string, len(doc.Requests))
		for i, existing := range doc.Requests {
			ids[i] = existing.TrackID
		}
		doc.Sequence = nextSequence(doc.Sequence, len(doc.Requests), ids)

		app.TrackID = formatTrackID(EmployeePrefix, now, doc.Sequence)
		app.Status = models.StatusPending
		if app.SalaryModel == "" {
			app.SalaryModel = models.DefaultSalaryModel
		}
		if app.SubmittedAt == "" {
			app.SubmittedAt = now.Format(models.TimeLayout)
		}
		doc.Requests = append(doc.Requests, app)
		return nil
	})
	if err != nil {
		return models.EmployeeApplication{}, err
	}
	return app, nil
}

func (s *Store) ListEmployeeApplications(ctx context.Context) ([]models.EmployeeApplication, error) {
	doc, err := view[employeesDoc](ctx, s, EmployeesCollection)
	if err != nil {
		return nil, err
	}
	return doc.Requests, nil
}

func (s *Store) FindEmployeeApplication(ctx context.Context, trackID string) (*models.EmployeeApplication, error) {
	doc, err := view[employeesDoc](ctx, s, EmployeesCollection)
	if err != nil {
		return nil, err
	}
	i := doc.index(trackID)
	if i < 0 {
		return nil, ErrNotFound
	}
	app := doc.Requests[i]
	return &app, nil
}

func (s *Store) SetEmployeeStatus(ctx context.Context, trackID, status string) error {
	if !models.ValidStatus(status) {
		return ErrInvalidStatus
	}
	return update(ctx, s, EmployeesCollection, func(doc *employeesDoc) error {
		i := doc.index(trackID)
		if i < 0 {
			return ErrNotFound
		}
		doc.Requests[i].Status = models.Status(status)
		return nil
	})
}

// AnnotateEmployee overwrites the admin-only fields of an application.
func (s *Store) AnnotateEmployee(ctx context.Context, trackID, salaryModel, adminNote string) error {
	return update(ctx, s, EmployeesCollection, func(doc *employeesDoc) error {
		i := doc.index(trackID)
		if i < 0 {
			return ErrNotFound
		}
		doc.Requests[i].SalaryModel = salaryModel
		doc.Requests[i].AdminNote = adminNote
		return nil
	})
}
