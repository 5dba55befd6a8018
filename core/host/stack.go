package host

// Stack holds the mounted pages, top last.
type Stack struct {
	items []*Mount
}

func (s *Stack) Push(m *Mount) {
	if m == nil {
		return
	}
	s.items = append(s.items, m)
}

func (s *Stack) Pop() *Mount {
	if len(s.items) == 0 {
		return nil
	}
	last := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	return last
}

func (s Stack) Top() *Mount {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

func (s Stack) Len() int {
	return len(s.items)
}

// Routes lists the routes from bottom to top.
func (s Stack) Routes() []string {
	out := make([]string, 0, len(s.items))
	for _, m := range s.items {
		out = append(out, m.Route())
	}
	return out
}
