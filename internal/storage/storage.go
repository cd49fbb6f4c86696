package storage

import (
	"context"
	"errors"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// UserCreate is a staged user insert: the id is assigned but the record is
// not durable until Commit. Provisioning of external resources happens in
// between.
type UserCreate interface {
	UserID() int64
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
