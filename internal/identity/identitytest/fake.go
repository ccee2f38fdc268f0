// Package identitytest provides an in-memory identity provider for tests.
package identitytest

import (
	"context"
	"sync"

	"commercetools-gateway/internal/domain"
	"commercetools-gateway/internal/identity"
)

// Fake is an in-memory identity.Client. Tokens map directly to uids.
type Fake struct {
	mu       sync.Mutex
	tokens   map[string]string
	users    map[string]domain.IdentityRecord
	failures map[string]error
	// Deleted and Updated record mutating calls in order.
	Deleted []string
	Updated []identity.UserUpdate
}

var _ identity.Client = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		tokens:   make(map[string]string),
		users:    make(map[string]domain.IdentityRecord),
		failures: make(map[string]error),
	}
}

// AddUser stores rec and makes token verify to its uid. An empty token skips that.
func (f *Fake) AddUser(token string, rec domain.IdentityRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[rec.UID] = rec
	if token != "" {
		f.tokens[token] = rec.UID
	}
}

// FailOn makes the named method return err.
func (f *Fake) FailOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = err
}

// User returns the stored record for uid.
func (f *Fake) User(uid string) (domain.IdentityRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.users[uid]
	return rec, ok
}

func (f *Fake) VerifyToken(_ context.Context, idToken string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures["VerifyToken"]; err != nil {
		return "", err
	}
	uid, ok := f.tokens[idToken]
	if !ok {
		return "", domain.E("verifyToken", domain.ErrUnauthenticated, nil)
	}
	return uid, nil
}

func (f *Fake) GetUser(_ context.Context, uid string) (*domain.IdentityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures["GetUser"]; err != nil {
		return nil, err
	}
	rec, ok := f.users[uid]
	if !ok {
		return nil, domain.E("getUser", domain.ErrNotFound, nil)
	}
	return &rec, nil
}

// GetUserByEmail matches the record email, like the real provider.
func (f *Fake) GetUserByEmail(_ context.Context, email string) (*domain.IdentityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures["GetUserByEmail"]; err != nil {
		return nil, err
	}
	for _, rec := range f.users {
		if rec.Email == email {
			return &rec, nil
		}
	}
	return nil, domain.E("getUserByEmail", domain.ErrNotFound, nil)
}

func (f *Fake) GetUserByPhone(_ context.Context, phone string) (*domain.IdentityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures["GetUserByPhone"]; err != nil {
		return nil, err
	}
	for _, rec := range f.users {
		if rec.Phone == phone {
			return &rec, nil
		}
	}
	return nil, domain.E("getUserByPhone", domain.ErrNotFound, nil)
}

func (f *Fake) UpdateUser(_ context.Context, uid string, update identity.UserUpdate) (*domain.IdentityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures["UpdateUser"]; err != nil {
		return nil, err
	}
	rec, ok := f.users[uid]
	if !ok {
		return nil, domain.E("updateUser", domain.ErrNotFound, nil)
	}
	if update.Email != "" {
		rec.Email = update.Email
	}
	f.users[uid] = rec
	f.Updated = append(f.Updated, update)
	return &rec, nil
}

func (f *Fake) DeleteUser(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures["DeleteUser"]; err != nil {
		return err
	}
	if _, ok := f.users[uid]; !ok {
		return domain.E("deleteUser", domain.ErrNotFound, nil)
	}
	delete(f.users, uid)
	f.Deleted = append(f.Deleted, uid)
	return nil
}
