package session

import (
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

// testStorage is a minimal in-memory implementation of fiber.Storage for tests.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ fiber.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}

	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

func initStore() *testStorage {
	storage := &testStorage{data: make(map[string][]byte)}
	Init(storage)

	return storage
}

func TestDataWriteRead(t *testing.T) {
	initStore()

	id, err := GenerateSessionID()
	require.NoError(t, err)
	assert.Len(t, id, 64)

	in := Data{User: models.User{ID: 7, Username: "admin", Role: access.RoleAdmin, Password: "hash"}}
	require.NoError(t, in.Write(id, time.Minute))

	var out Data
	require.NoError(t, out.Read(id))
	assert.Equal(t, uint64(7), out.User.ID)
	assert.Equal(t, access.RoleAdmin, out.User.Role)
	assert.Empty(t, out.User.Password, "password hash must not be stored in the session")

	require.ErrorIs(t, new(Data).Read("unknown"), ErrSessionNotFound)
	require.ErrorIs(t, new(Data).Read(""), ErrSessionNotFound)
}

func TestRoleStoreBacksRoleContext(t *testing.T) {
	storage := initStore()

	store := NewRoleStore("abc", time.Minute)

	rc, err := access.NewRoleContext(store, func() ([]string, error) { return []string{"DLB"}, nil })
	require.NoError(t, err)
	assert.Equal(t, access.DefaultRole, rc.Current().Role)

	require.NoError(t, rc.SetRole(access.RoleResponsable))
	assert.Equal(t, []byte("responsable"), storage.data["abc:"+access.KeyRole])
	assert.Equal(t, []byte("DLB"), storage.data["abc:"+access.KeyDepartment])

	reopened, err := access.NewRoleContext(NewRoleStore("abc", time.Minute), nil)
	require.NoError(t, err)
	assert.Equal(t, access.Subject{Role: access.RoleResponsable, Scope: "DLB"}, reopened.Current())

	// other sessions are independent
	other, err := access.NewRoleContext(NewRoleStore("def", time.Minute), nil)
	require.NoError(t, err)
	assert.Equal(t, access.DefaultRole, other.Current().Role)
}

func TestDelete(t *testing.T) {
	storage := initStore()

	require.NoError(t, (&Data{User: models.User{ID: 1}}).Write("abc", time.Minute))

	store := NewRoleStore("abc", time.Minute)
	require.NoError(t, store.Set(access.KeyRole, "admin"))

	require.NoError(t, Delete("abc"))
	assert.Empty(t, storage.data)
}
