package agents

// Spawner issues actor IDs in creation order.
type Spawner struct {
	nextID ActorID
}

// NewSpawner creates a spawner whose first ID is 1.
func NewSpawner() *Spawner {
	return &Spawner{nextID: 1}
}

// Next returns a fresh ID.
func (s *Spawner) Next() ActorID {
	id := s.nextID
	s.nextID++
	return id
}
