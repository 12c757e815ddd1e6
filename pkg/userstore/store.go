// Package userstore holds the user records owned by one partition.
package userstore

import (
	"github.com/zhangyunhao116/skipmap"

	"userdir/pkg/types"
)

// Store is a concurrent in-memory user store, keyed by user ID.
type Store struct {
	users *skipmap.FuncMap[string, types.User]
}

func New() *Store {
	return &Store{
		users: skipmap.NewFunc[string, types.User](func(a, b string) bool {
			return a < b
		}),
	}
}

// Add stores the record and returns its identifier. An existing record with
// the same ID is replaced.
func (s *Store) Add(u types.User) string {
	s.users.Store(u.ID, u)
	return u.ID
}

func (s *Store) Get(id string) (types.User, bool) {
	return s.users.Load(id)
}

// Update replaces an existing record. Reports false when no record with the
// ID exists.
//
// The existence check and the store are two skipmap operations, so a Delete
// racing between them can be overwritten while Update still reports true.
// Callers that mutate the same ID concurrently must serialize externally.
func (s *Store) Update(u types.User) bool {
	if _, ok := s.users.Load(u.ID); !ok {
		return false
	}
	s.users.Store(u.ID, u)
	return true
}

// Delete reports false when no record with the ID exists.
func (s *Store) Delete(id string) bool {
	return s.users.Delete(id)
}

// List returns every record in the store, ordered by ID.
func (s *Store) List() []types.User {
	out := make([]types.User, 0, s.users.Len())
	s.users.Range(func(_ string, u types.User) bool {
		out = append(out, u)
		return true
	})
	return out
}

func (s *Store) Len() int {
	return s.users.Len()
}
