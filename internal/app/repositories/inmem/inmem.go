// Package inmem holds mutex-guarded in-memory stores with the same contracts
// as the Postgres repositories. They back service and controller tests.
package inmem

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yigit/uniportal/internal/app/models"
)

// Store holds every table. Each typed view below shares its lock.
type Store struct {
	mu     sync.Mutex
	nextID int64

	users         map[int64]*models.User
	tokens        map[string]*models.RefreshToken
	students      map[string]*models.Student
	programs      map[int64]*models.Program
	payments      []*models.Payment
	resets        map[int64]*models.PasswordReset
	notifications map[int64]*models.Notification
	audit         []*models.AuditLog
	registrations []*models.UnitRegistration
	assignments   map[int64]*models.UnitAssignment

	failAccounts error
}

// New returns an empty store
func New() *Store {
	return &Store{
		users:         map[int64]*models.User{},
		tokens:        map[string]*models.RefreshToken{},
		students:      map[string]*models.Student{},
		programs:      map[int64]*models.Program{},
		resets:        map[int64]*models.PasswordReset{},
		notifications: map[int64]*models.Notification{},
		assignments:   map[int64]*models.UnitAssignment{},
	}
}

// FailAccountCreation makes every later student account insert fail with err
func (s *Store) FailAccountCreation(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAccounts = err
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Users returns the user table view
func (s *Store) Users() *UserStore { return &UserStore{s} }

// Tokens returns the refresh token table view
func (s *Store) Tokens() *TokenStore { return &TokenStore{s} }

// Students returns the student table view
func (s *Store) Students() *StudentStore { return &StudentStore{s} }

// Programs returns the program table view
func (s *Store) Programs() *ProgramStore { return &ProgramStore{s} }

// Payments returns the payment table view
func (s *Store) Payments() *PaymentStore { return &PaymentStore{s} }

// PasswordResets returns the password reset table view
func (s *Store) PasswordResets() *PasswordResetStore { return &PasswordResetStore{s} }

// Notifications returns the notification table view
func (s *Store) Notifications() *NotificationStore { return &NotificationStore{s} }

// Audit returns the audit log view
func (s *Store) Audit() *AuditStore { return &AuditStore{s} }

// Units returns the unit registration and assignment view
func (s *Store) Units() *UnitStore { return &UnitStore{s} }

func page[T any](items []T, offset, limit uint64) []T {
	if offset >= uint64(len(items)) {
		return []T{}
	}
	end := offset + limit
	if end > uint64(len(items)) {
		end = uint64(len(items))
	}
	return items[offset:end]
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func visible(n *models.Notification, r models.Recipient, now time.Time) bool {
	return n.RecipientID == r.ID && n.RecipientType == r.Type && (n.ExpiresAt == nil || n.ExpiresAt.After(now))
}
