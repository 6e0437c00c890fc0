// Package model defines the records metabo-ui persists and the store
// contracts every database backend implements.
package model

import (
	"context"
	"errors"

	"github.com/metabo-ui/metabo-ui/database/query"
)

// ErrNotFound is returned by stores when no record matches.
var ErrNotFound = errors.New("record not found")

// UserStore is the credential collection keyed by user id (= email).
type UserStore interface {
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByEmail returns the first record whose email matches exactly.
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	// Upsert inserts or replaces the whole record by id.
	Upsert(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}

// MetaboliteStore is the metabolites collection.
type MetaboliteStore interface {
	Search(ctx context.Context, q *query.Query) ([]MetaboliteSummary, error)
	GetByID(ctx context.Context, id string) (*Metabolite, error)
	// Upsert is used by the offline import only.
	Upsert(ctx context.Context, m *Metabolite) error
}

// Store is an opened database with its collections.
type Store interface {
	Users() UserStore
	Metabolites() MetaboliteStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
