// Package memory is an in-process user store with the same contract as the
// postgres repo, including the uniqueness constraint. Used by tests and
// local runs without a database.
package memory

import (
	"context"
	"sync"

	"notes_service/internal/models"
	"notes_service/internal/storage"
)

type Repo struct {
	mu     sync.Mutex
	users  map[string]models.User // keyed by username
	nextID int64
}

func New() *Repo {
	return &Repo{users: map[string]models.User{}}
}

func (r *Repo) UserByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

func (r *Repo) UserByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (r *Repo) BeginUserCreate(_ context.Context, user models.User) (storage.UserCreate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(user.Username, user.Email) {
		return nil, storage.ErrUserExists
	}

	r.nextID++
	user.ID = r.nextID

	return &userCreate{repo: r, user: user}, nil
}

func (r *Repo) UpdateRecentTokenIssued(_ context.Context, userID, issuedAt int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, u := range r.users {
		if u.ID == userID {
			u.RecentTokenIssuedTime = issuedAt
			r.users[name] = u
			return nil
		}
	}

	return storage.ErrUserNotFound
}

// SeedUser inserts a user directly, bypassing the two-phase create.
func (r *Repo) SeedUser(user models.User) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	user.ID = r.nextID
	r.users[user.Username] = user

	return user
}

func (r *Repo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.users)
}

func (r *Repo) taken(username, email string) bool {
	if _, ok := r.users[username]; ok {
		return true
	}
	for _, u := range r.users {
		if u.Email == email {
			return true
		}
	}

	return false
}

type userCreate struct {
	repo *Repo
	user models.User
	done bool
}

func (c *userCreate) UserID() int64 {
	return c.user.ID
}

func (c *userCreate) Commit(context.Context) error {
	c.repo.mu.Lock()
	defer c.repo.mu.Unlock()

	if c.done {
		return nil
	}
	c.done = true

	// Re-check: another create may have won between begin and commit.
	if c.repo.taken(c.user.Username, c.user.Email) {
		return storage.ErrUserExists
	}

	c.repo.users[c.user.Username] = c.user

	return nil
}

func (c *userCreate) Rollback(context.Context) error {
	c.done = true

	return nil
}
