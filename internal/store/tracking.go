package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theMessiMagic/if-fashion/internal/models"
)

const (
	CustomerPrefix = "IF"
	EmployeePrefix = "EMP"
)

func formatTrackID(prefix string, now time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, now.Format("060102"), seq)
}

// nextSequence picks the number after the largest one ever handed out. Older
// documents carry no counter, so existing IDs and the record count also count.
func nextSequence(counter, records int, ids []string) int {
	highest := max(counter, records)
	for _, id := range ids {
		if n := trackSuffix(id); n > highest {
			highest = n
		}
	}
	return highest + 1
}

func trackSuffix(id string) int {
	i := strings.LastIndexByte(id, '-')
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return 0
	}
	return n
}

// TrackResult is what a public track lookup finds.
type TrackResult struct {
	Kind     string // "customer" or "employee"
	Customer *models.CustomerSubmission
	Employee *models.EmployeeApplication
}

// Track looks a tracking ID up in customer submissions first, then employee
// applications. It returns ErrNotFound when neither has it.
func (s *Store) Track(ctx context.Context, trackID string) (*TrackResult, error) {
	trackID = strings.TrimSpace(trackID)
	if trackID == "" {
		return nil, ErrNotFound
	}

	sub, err := s.FindCustomerSubmission(ctx, trackID)
	if err == nil {
		return &TrackResult{Kind: "customer", Customer: sub}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	app, err := s.FindEmployeeApplication(ctx, trackID)
	if err != nil {
		return nil, err
	}
	return &TrackResult{Kind: "employee", Employee: app}, nil
}
