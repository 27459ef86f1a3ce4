package access

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	// KeyRole is the store key holding the active role.
	KeyRole = "appRole"
	// KeyDepartment is the store key holding the department scope.
	KeyDepartment = "appDept"
)

// Store persists the two key/value pairs of a RoleContext.
// Get returns "" and no error for a missing key.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// DepartmentsFunc returns the department names in display order.
// It is used to give a responsable without scope a default department.
type DepartmentsFunc func() ([]string, error)

// ChangeListener is called with the new subject after every role or scope change.
type ChangeListener func(Subject)

type listenerEntry struct {
	id uint64
	fn ChangeListener
}

// RoleContext is the single source of truth for who is acting in a session.
type RoleContext struct {
	mu          sync.RWMutex
	store       Store
	departments DepartmentsFunc
	subject     Subject
	listeners   []listenerEntry
	nextID      uint64
}

// NewRoleContext loads the persisted role and scope from store.
// A missing role falls back to DefaultRole; a persisted role that is not
// known is logged and replaced by DefaultRole as well.
// departments may be nil.
func NewRoleContext(store Store, departments DepartmentsFunc) (*RoleContext, error) {
	if store == nil {
		return nil, ErrStoreNil
	}

	rawRole, err := store.Get(KeyRole)
	if err != nil {
		return nil, fmt.Errorf("failed to load role: %w", err)
	}

	scope, err := store.Get(KeyDepartment)
	if err != nil {
		return nil, fmt.Errorf("failed to load department scope: %w", err)
	}

	role := DefaultRole

	if rawRole != "" {
		if role, err = ParseRole(rawRole); err != nil {
			log.Warn().Err(err).Msg("ignoring persisted role")

			role = DefaultRole
		}
	}

	return &RoleContext{
		store:       store,
		departments: departments,
		subject:     NewSubject(role, scope),
	}, nil
}

// Current returns the active subject.
func (rc *RoleContext) Current() Subject {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	return rc.subject
}

// SetRole switches the active role and persists it.
//
// A role other than responsable clears the scope. A responsable without a
// scope gets the first department returned by the department source, if any.
// Listeners are notified once after the change was persisted.
func (rc *RoleContext) SetRole(role Role) error {
	rc.mu.RLock()
	scope := rc.subject.Scope
	rc.mu.RUnlock()

	return rc.Set(role, scope)
}

// Set switches role and scope in one step. The scope is dropped for roles
// other than responsable; an empty responsable scope gets the first department.
// When persisting fails the previous subject is written back and kept.
func (rc *RoleContext) Set(role Role, scope string) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	rc.mu.Lock()

	switch {
	case !role.Scoped():
		scope = ""
	case scope == "":
		scope = rc.firstDepartment()
	}

	previous := rc.subject

	if err := rc.persist(role, scope); err != nil {
		if errRestore := rc.persist(previous.Role, previous.Scope); errRestore != nil {
			log.Error().Err(errRestore).Msg("failed to restore previous role context")
		}

		rc.mu.Unlock()

		return err
	}

	rc.subject = Subject{Role: role, Scope: scope}
	next := rc.subject
	rc.mu.Unlock()

	rc.notify(next)

	return nil
}

// SetDepartmentScope sets the department scope; "" clears it.
// A non-empty scope is only accepted while the role is responsable.
func (rc *RoleContext) SetDepartmentScope(scope string) error {
	rc.mu.Lock()

	if scope != "" && !rc.subject.Role.Scoped() {
		rc.mu.Unlock()
		return fmt.Errorf("%w: active role is %s", ErrScopeRequiresResponsable, rc.subject.Role)
	}

	if err := rc.persistScope(scope); err != nil {
		rc.mu.Unlock()
		return err
	}

	rc.subject.Scope = scope
	next := rc.subject
	rc.mu.Unlock()

	rc.notify(next)

	return nil
}

// RegisterChangeListener subscribes fn to role and scope changes.
// Listeners run synchronously in registration order. The returned func removes fn.
func (rc *RoleContext) RegisterChangeListener(fn ChangeListener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	rc.mu.Lock()
	rc.nextID++
	id := rc.nextID
	rc.listeners = append(rc.listeners, listenerEntry{id: id, fn: fn})
	rc.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			rc.mu.Lock()
			defer rc.mu.Unlock()

			for i, entry := range rc.listeners {
				if entry.id == id {
					rc.listeners = append(rc.listeners[:i:i], rc.listeners[i+1:]...)
					break
				}
			}
		})
	}
}

// firstDepartment must be called with rc.mu held.
func (rc *RoleContext) firstDepartment() string {
	if rc.departments == nil {
		return ""
	}

	names, err := rc.departments()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load departments for default scope")
		return ""
	}

	if len(names) == 0 {
		return ""
	}

	return names[0]
}

func (rc *RoleContext) persist(role Role, scope string) error {
	if err := rc.store.Set(KeyRole, string(role)); err != nil {
		return fmt.Errorf("failed to persist role: %w", err)
	}

	return rc.persistScope(scope)
}

func (rc *RoleContext) persistScope(scope string) error {
	if scope == "" {
		if err := rc.store.Delete(KeyDepartment); err != nil {
			return fmt.Errorf("failed to clear department scope: %w", err)
		}

		return nil
	}

	if err := rc.store.Set(KeyDepartment, scope); err != nil {
		return fmt.Errorf("failed to persist department scope: %w", err)
	}

	return nil
}

func (rc *RoleContext) notify(subject Subject) {
	rc.mu.RLock()
	listeners := make([]listenerEntry, len(rc.listeners))
	copy(listeners, rc.listeners)
	rc.mu.RUnlock()

	for _, entry := range listeners {
		callListener(entry.fn, subject)
	}
}

func callListener(fn ChangeListener, subject Subject) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("role", string(subject.Role)).
				Str("department", subject.Scope).
				Msg("role change listener failed")
		}
	}()

	fn(subject)
}

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get implements Store.
func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data[key], nil
}

// Set implements Store.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value

	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}
