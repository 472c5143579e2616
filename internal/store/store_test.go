package store

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theMessiMagic/if-fashion/internal/models"
)

var fixedNow = time.Date(2025, 3, 7, 14, 30, 0, 0, time.UTC)

func newTestStores(t *testing.T) map[string]*Store {
	t.Helper()
	ctx := context.Background()

	fileBackend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	sqliteBackend, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	stores := map[string]*Store{
		"file":   NewStore(fileBackend),
		"sqlite": NewStore(sqliteBackend),
	}
	for _, s := range stores {
		s.now = func() time.Time { return fixedNow }
		require.NoError(t, s.Init(ctx))
		t.Cleanup(func() { _ = s.Close() })
	}
	return stores
}

func TestInitCreatesEmptyCollections(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	s := NewStore(backend)
	require.NoError(t, s.Init(context.Background()))

	for _, name := range collections {
		_, err := os.Stat(filepath.Join(dir, name+".json"))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "chat_messages.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"pending": [], "answered": []}`, string(data))
}

func TestInitKeepsExistingDocuments(t *testing.T) {
	dir := t.TempDir()
	legacy := `{"submissions": [{"track_id": "IF-240101-0007", "name": "Asha", "status": "approved"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "customer_submissions.json"), []byte(legacy), 0o644))

	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	s := NewStore(backend)
	s.now = func() time.Time { return fixedNow }
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	subs, err := s.ListCustomerSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, models.StatusApproved, subs[0].Status)

	// The counter continues after the highest legacy suffix.
	sub, err := s.CreateCustomerSubmission(ctx, models.CustomerSubmission{Name: "Meena"})
	require.NoError(t, err)
	assert.Equal(t, "IF-250307-0008", sub.TrackID)
}

func TestMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "admin_users.json"), []byte("{not json"), 0o644))
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	s := NewStore(backend)

	_, err = s.AdminExists(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin_users")
}

func TestCustomerSubmissionLifecycle(t *testing.T) {
	trackPattern := regexp.MustCompile(`^IF-\d{6}-\d{4}$`)

	for name, s := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first, err := s.CreateCustomerSubmission(ctx, models.CustomerSubmission{Name: "Asha", Phone: "98450", Image: "Asha_rose.png"})
			require.NoError(t, err)
			assert.Regexp(t, trackPattern, first.TrackID)
			assert.Equal(t, "IF-250307-0001", first.TrackID)
			assert.Equal(t, models.StatusPending, first.Status)
			assert.Equal(t, "2025-03-07 14:30", first.SubmittedAt)

			second, err := s.CreateCustomerSubmission(ctx, models.CustomerSubmission{Name: "Meena"})
			require.NoError(t, err)
			assert.Equal(t, "IF-250307-0002", second.TrackID)

			found, err := s.Track(ctx, first.TrackID)
			require.NoError(t, err)
			assert.Equal(t, "customer", found.Kind)
			assert.Equal(t, "Asha", found.Customer.Name)

			require.NoError(t, s.SetCustomerStatus(ctx, first.TrackID, "approved"))
			got, err := s.FindCustomerSubmission(ctx, first.TrackID)
			require.NoError(t, err)
			assert.Equal(t, models.StatusApproved, got.Status)

			removed, err := s.DeleteCustomerSubmission(ctx, first.TrackID)
			require.NoError(t, err)
			assert.Equal(t, "Asha_rose.png", removed.Image)

			_, err = s.Track(ctx, first.TrackID)
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleted numbers are never handed out again.
			third, err := s.CreateCustomerSubmission(ctx, models.CustomerSubmission{Name: "Lata"})
			require.NoError(t, err)
			assert.Equal(t, "IF-250307-0003", third.TrackID)
		})
	}
}

func TestStatusUpdateRejectsUnknownIDsWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	s := NewStore(backend)
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	sub, err := s.CreateCustomerSubmission(ctx, models.CustomerSubmission{Name: "Asha"})
	require.NoError(t, err)
	app, err := s.CreateEmployeeApplication(ctx, models.EmployeeApplication{Name: "Ravi"})
	require.NoError(t, err)

	customersBefore, err := os.ReadFile(backend.Path(CustomersCollection))
	require.NoError(t, err)
	employeesBefore, err := os.ReadFile(backend.Path(EmployeesCollection))
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetCustomerStatus(ctx, "IF-000000-9999", "approved"), ErrNotFound)
	assert.ErrorIs(t, s.SetCustomerStatus(ctx, sub.TrackID, "shipped"), ErrInvalidStatus)
	assert.ErrorIs(t, s.SetEmployeeStatus(ctx, "EMP-000000-9999", "rejected"), ErrNotFound)
	assert.ErrorIs(t, s.SetEmployeeStatus(ctx, app.TrackID, "hired"), ErrInvalidStatus)
	assert.ErrorIs(t, s.AnnotateEmployee(ctx, "EMP-000000-9999", "monthly", "call"), ErrNotFound)
	_, err = s.DeleteCustomerSubmission(ctx, "IF-000000-9999")
	assert.ErrorIs(t, err, ErrNotFound)

	customersAfter, err := os.ReadFile(backend.Path(CustomersCollection))
	require.NoError(t, err)
	employeesAfter, err := os.ReadFile(backend.Path(EmployeesCollection))
	require.NoError(t, err)
	assert.Equal(t, customersBefore, customersAfter)
	assert.Equal(t, employeesBefore, employeesAfter)
}

func TestNoOpUpdateKeepsLegacyFile(t *testing.T) {
	dir := t.TempDir()
	legacy := `{"submissions": [{"track_id": "IF-240101-0007", "name": "Asha", "status": "approved"}]}`
	path := filepath.Join(dir, "customer_submissions.json")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	s := NewStore(backend)
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	require.NoError(t, s.SetCustomerStatus(ctx, "IF-240101-0007", "approved"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacy, string(data))

	require.NoError(t, s.SetCustomerStatus(ctx, "IF-240101-0007", "rejected"))
	found, err := s.FindCustomerSubmission(ctx, "IF-240101-0007")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, found.Status)
}

func TestEmployeeApplications(t *testing.T) {
	for name, s := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			app, err := s.CreateEmployeeApplication(ctx, models.EmployeeApplication{
				Name: "Ravi", Phone: "99001", NationalID: "1234 5678 9012", WorkType: "hand embroidery",
			})
			require.NoError(t, err)
			assert.Equal(t, "EMP-250307-0001", app.TrackID)
			assert.Equal(t, models.DefaultSalaryModel, app.SalaryModel)
			assert.Equal(t, models.StatusPending, app.Status)

			require.NoError(t, s.SetEmployeeStatus(ctx, app.TrackID, "rejected"))
			require.NoError(t, s.AnnotateEmployee(ctx, app.TrackID, "per piece", "strong portfolio"))

			found, err := s.Track(ctx, app.TrackID)
			require.NoError(t, err)
			assert.Equal(t, "employee", found.Kind)
			assert.Equal(t, models.StatusRejected, found.Employee.Status)
			assert.Equal(t, "per piece", found.Employee.SalaryModel)
			assert.Equal(t, "strong portfolio", found.Employee.AdminNote)
		})
	}
}

func TestAdminCreatedOnce(t *testing.T) {
	for name, s := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			exists, err := s.AdminExists(ctx)
			require.NoError(t, err)
			assert.False(t, exists)

			require.NoError(t, s.CreateAdmin(ctx, "owner", "hash-1"))
			assert.ErrorIs(t, s.CreateAdmin(ctx, "intruder", "hash-2"), ErrAdminExists)

			admin, err := s.GetAdmin(ctx, "owner")
			require.NoError(t, err)
			require.NotNil(t, admin)
			assert.Equal(t, "hash-1", admin.Password)

			missing, err := s.GetAdmin(ctx, "intruder")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})
	}
}

func TestTicketMovesToAnsweredOnce(t *testing.T) {
	for name, s := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ticket, err := s.OpenTicket(ctx, "Do you ship to Dubai?")
			require.NoError(t, err)
			assert.Len(t, ticket.ID, 8)
			assert.Nil(t, ticket.Reply)

			reply, err := s.TicketReply(ctx, ticket.ID)
			require.NoError(t, err)
			assert.Nil(t, reply)

			answered, err := s.AnswerTicket(ctx, ticket.ID, "Yes, within 10 days.")
			require.NoError(t, err)
			require.NotNil(t, answered.Reply)
			assert.Equal(t, "Yes, within 10 days.", *answered.Reply)

			_, err = s.AnswerTicket(ctx, ticket.ID, "second answer")
			assert.ErrorIs(t, err, ErrNotFound)

			reply, err = s.TicketReply(ctx, ticket.ID)
			require.NoError(t, err)
			require.NotNil(t, reply)
			assert.Equal(t, "Yes, within 10 days.", *reply)

			pending, err := s.ListPendingTickets(ctx)
			require.NoError(t, err)
			assert.Empty(t, pending)
			done, err := s.ListAnsweredTickets(ctx)
			require.NoError(t, err)
			assert.Len(t, done, 1)

			_, err = s.AnswerTicket(ctx, "../../etc", "x")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestDashboardStats(t *testing.T) {
	for name, s := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a, err := s.CreateCustomerSubmission(ctx, models.CustomerSubmission{Name: "A"})
			require.NoError(t, err)
			_, err = s.CreateCustomerSubmission(ctx, models.CustomerSubmission{Name: "B"})
			require.NoError(t, err)
			require.NoError(t, s.SetCustomerStatus(ctx, a.TrackID, "approved"))
			_, err = s.CreateEmployeeApplication(ctx, models.EmployeeApplication{Name: "C"})
			require.NoError(t, err)
			_, err = s.OpenTicket(ctx, "hello?")
			require.NoError(t, err)

			stats, err := s.GetDashboardStats(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, stats.TotalCustomers)
			assert.Equal(t, 1, stats.CustomersByStatus["approved"])
			assert.Equal(t, 1, stats.CustomersByStatus["pending"])
			assert.Equal(t, 1, stats.TotalEmployees)
			assert.Equal(t, 1, stats.PendingTickets)
			assert.Equal(t, 0, stats.AnsweredTickets)
		})
	}
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "twice.db")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Write(ctx, "settings", []byte(`{"ok":true}`)))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	var applied int
	require.NoError(t, second.DB.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)

	data, err := second.Read(ctx, "settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))

	_, err = second.Read(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRebind(t *testing.T) {
	assert.Equal(t, "SELECT body::text FROM documents WHERE name = $1", postgresDialect.rebind(postgresDialect.selectDocument))
	assert.Equal(t, "a = ?", sqliteDialect.rebind("a = ?"))
}

func TestNextSequence(t *testing.T) {
	assert.Equal(t, 1, nextSequence(0, 0, nil))
	assert.Equal(t, 4, nextSequence(0, 3, []string{"IF-1", "bad", "IF-240101-0002"}))
	assert.Equal(t, 13, nextSequence(12, 1, []string{"IF-240101-0005"}))
	assert.Equal(t, 21, nextSequence(0, 1, []string{"EMP-240101-0020"}))
}
