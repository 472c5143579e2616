package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/theMessiMagic/if-fashion/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAdminExists   = errors.New("admin already exists")
	ErrInvalidStatus = errors.New("invalid status")
)

// Collection names. Each one is a single JSON document in the backend.
const (
	AdminsCollection    = "admin_users"
	CustomersCollection = "customer_submissions"
	EmployeesCollection = "employee_requests"
	ChatCollection      = "chat_messages"
)

var collections = []string{AdminsCollection, CustomersCollection, EmployeesCollection, ChatCollection}

// Backend persists whole collection documents. Read returns ErrNotFound
// when the collection has never been written.
type Backend interface {
	Read(ctx context.Context, collection string) ([]byte, error)
	Write(ctx context.Context, collection string, data []byte) error
	Close() error
}

// Store owns every collection. Each operation re-reads the document, mutates
// it in memory and rewrites it while holding that collection's lock.
type Store struct {
	backend Backend
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Open builds a Store for the named driver: "file" (location is a directory),
// "sqlite" (location is a database path) or "postgres" (location is a DSN).
func Open(ctx context.Context, driver, location string) (*Store, error) {
	var (
		backend Backend
		err     error
	)
	switch driver {
	case "", "file":
		backend, err = NewFileBackend(location)
	case "sqlite":
		backend, err = OpenSQLite(ctx, location)
	case "postgres":
		backend, err = OpenPostgres(ctx, location)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	return NewStore(backend), nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// Init writes an empty document for every collection that does not exist yet.
// It runs once at startup, before the server accepts requests.
func (s *Store) Init(ctx context.Context) error {
	for _, name := range collections {
		_, err := s.backend.Read(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("check %s: %w", name, err)
		}
		data, err := json.MarshalIndent(emptyDocument(name), "", "  ")
		if err != nil {
			return err
		}
		if err := s.backend.Write(ctx, name, data); err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		slog.Info("Created empty collection", "collection", name)
	}
	return nil
}

func emptyDocument(name string) any {
	switch name {
	case AdminsCollection:
		return adminsDoc{Admins: []models.Admin{}}
	case CustomersCollection:
		return customersDoc{Submissions: []models.CustomerSubmission{}}
	case EmployeesCollection:
		return employeesDoc{Requests: []models.EmployeeApplication{}}
	case ChatCollection:
		return chatDoc{Pending: []models.ChatTicket{}, Answered: []models.ChatTicket{}}
	}
	return map[string]any{}
}

func (s *Store) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

func load[T any](ctx context.Context, s *Store, name string) (T, error) {
	var doc T
	data, err := s.backend.Read(ctx, name)
	if err != nil {
		return doc, fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode %s: %w", name, err)
	}
	return doc, nil
}

// view loads a collection document under its lock.
func view[T any](ctx context.Context, s *Store, name string) (T, error) {
	l := s.lock(name)
	l.Lock()
	defer l.Unlock()
	return load[T](ctx, s, name)
}

// update runs fn against the current document and saves the result. When fn
// returns an error or leaves the document unchanged nothing is written.
func update[T any](ctx context.Context, s *Store, name string, fn func(*T) error) error {
	l := s.lock(name)
	l.Lock()
	defer l.Unlock()

	doc, err := load[T](ctx, s, name)
	if err != nil {
		return err
	}
	before, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := fn(&doc); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if bytes.Equal(before, data) {
		return nil
	}
	if err := s.backend.Write(ctx, name, data); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}
