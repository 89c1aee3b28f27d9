package badger

// NewMemoryStore creates an in-memory store for testing.
// Caller must Close the store when done.
func NewMemoryStore(dimensions int, opts ...StoreOption) (*Store, error) {
	backend, err := OpenBackend("")
	if err != nil {
		return nil, err
	}
	s, err := NewStore(backend, dimensions, opts...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return s, nil
}
