package store

import (
	"context"
)

// DashboardStats counts records per status (keyed by status name) and the
// size of both ticket queues.
type DashboardStats struct {
	TotalCustomers    int
	TotalEmployees    int
	CustomersByStatus map[string]int
	EmployeesByStatus map[string]int
	PendingTickets    int
	AnsweredTickets   int
}

func (s *Store) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		CustomersByStatus: make(map[string]int),
		EmployeesByStatus: make(map[string]int),
	}

	customers, err := s.ListCustomerSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalCustomers = len(customers)
	for _, c := range customers {
		stats.CustomersByStatus[string(c.Status)]++
	}

	employees, err := s.ListEmployeeApplications(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalEmployees = len(employees)
	for _, e := range employees {
		stats.EmployeesByStatus[string(e.Status)]++
	}

	chat, err := view[chatDoc](ctx, s, ChatCollection)
	if err != nil {
		return nil, err
	}
	stats.PendingTickets = len(chat.Pending)
	stats.AnsweredTickets = len(chat.Answered)

	return stats, nil
}
