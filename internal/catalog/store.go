package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
)

var (
	// ErrDuplicateResource is returned when a type/id pair is added twice
	ErrDuplicateResource = errors.New("duplicate resource")

	// ErrMissingID is returned when a stored resource has no id
	ErrMissingID = errors.New("resource has no id")
)

// Store is an in-memory, insertion-ordered set of catalog resources
type Store struct {
	mu     sync.RWMutex
	byType map[string][]jsonapi.Resource
	index  map[jsonapi.ResourceIdentifier]jsonapi.Resource
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		byType: make(map[string][]jsonapi.Resource),
		index:  make(map[jsonapi.ResourceIdentifier]jsonapi.Resource),
	}
}

// Add stores r under its type and id
func (s *Store) Add(r jsonapi.Resource) error {
	key := jsonapi.Identifier(r)
	if key.ID == "" {
		return fmt.Errorf("%w: %s", ErrMissingID, key.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[key]; exists {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateResource, key.Type, key.ID)
	}
	s.index[key] = r
	s.byType[key.Type] = append(s.byType[key.Type], r)
	return nil
}

// Get returns the resource of the given type and id
func (s *Store) Get(typ, id string) (jsonapi.Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.index[jsonapi.ResourceIdentifier{ID: id, Type: typ}]
	return r, ok
}

// List returns all resources of a type in insertion order
func (s *Store) List(typ string) []jsonapi.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.byType[typ]
	out := make([]jsonapi.Resource, len(items))
	copy(out, items)
	return out
}

// Types returns the stored type names, sorted
func (s *Store) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]string, 0, len(s.byType))
	for t := range s.byType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Count returns the number of stored resources
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}
