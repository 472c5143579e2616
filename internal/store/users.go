package store

import (
	"context"

	"github.com/theMessiMagic/if-fashion/internal/models"
)

type adminsDoc struct {
	Admins []models.Admin `json:"admins"`
}

func (s *Store) AdminExists(ctx context.Context) (bool, error) {
	doc, err := view[adminsDoc](ctx, s, AdminsCollection)
	if err != nil {
		return false, err
	}
	return len(doc.Admins) > 0, nil
}

// GetAdmin returns the admin with the given username, or nil when there is none.
func (s *Store) GetAdmin(ctx context.Context, username string) (*models.Admin, error) {
	doc, err := view[adminsDoc](ctx, s, AdminsCollection)
	if err != nil {
		return nil, err
	}
	for _, a := range doc.Admins {
		if a.Username == username {
			admin := a
			return &admin, nil
		}
	}
	return nil, nil
}

// CreateAdmin stores the one and only admin. It fails with ErrAdminExists
// once any admin has been created.
func (s *Store) CreateAdmin(ctx context.Context, username, hashedPassword string) error {
	return update(ctx, s, AdminsCollection, func(doc *adminsDoc) error {
		if len(doc.Admins) > 0 {
			return ErrAdminExists
		}
		doc.Admins = append(doc.Admins, models.Admin{Username: username, Password: hashedPassword})
		return nil
	})
}
