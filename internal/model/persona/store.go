package persona

// Store exposes persona retrieval for services and HTTP handlers.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
	Default() Persona
}

// MemoryStore implements Store with a fixed in-memory slice.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

// List returns the preset persona list.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Persona{}, false
}

// Default returns the preset used when no persona was chosen. Falls back to
// the first entry when the seed list does not carry the default ID.
func (s *MemoryStore) Default() Persona {
	if p, ok := s.FindByID(DefaultID); ok {
		return p
	}
	if len(s.items) > 0 {
		return s.items[0]
	}
	return Persona{}
}
