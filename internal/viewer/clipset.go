package viewer

// ClipSet is the insertion-ordered set of item ids marked by long-press
type ClipSet struct {
	order   []int64
	members map[int64]struct{}
}

// NewClipSet returns an empty clip set
func NewClipSet() *ClipSet {
	return &ClipSet{members: make(map[int64]struct{})}
}

// Toggle flips membership of id and reports whether it is now a member
func (s *ClipSet) Toggle(id int64) bool {
	if _, ok := s.members[id]; ok {
		delete(s.members, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return false
	}

	s.members[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Contains reports whether id is clipped
func (s *ClipSet) Contains(id int64) bool {
	_, ok := s.members[id]
	return ok
}

// IDs returns the clipped ids in the order they were added
func (s *ClipSet) IDs() []int64 {
	out := make([]int64, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of clipped items
func (s *ClipSet) Len() int {
	return len(s.order)
}
