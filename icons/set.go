package icons

// Icon is one recognized icon file.
type Icon struct {
	// Name is the identifier: the file name with the extension removed.
	// Directory segments are never part of it.
	Name string

	// Path is the slash-separated path of the file relative to the icons
	// directory, e.g. "nav/home.svg".
	Path string
}

// Set is an ordered collection of icons with unique names.
// Order is the order in which names were first added.
type Set struct {
	icons []Icon
	index map[string]int
}

// NewSet creates a Set from icons, keeping the first icon for each name.
func NewSet(icons ...Icon) *Set {
	s := &Set{index: make(map[string]int, len(icons))}
	for _, icon := range icons {
		s.add(icon)
	}
	return s
}

// add appends icon unless its name is taken; reports whether it was added.
func (s *Set) add(icon Icon) bool {
	if _, exists := s.index[icon.Name]; exists {
		return false
	}
	s.index[icon.Name] = len(s.icons)
	s.icons = append(s.icons, icon)
	return true
}

// replace swaps the icon stored under icon.Name, keeping its position.
func (s *Set) replace(icon Icon) {
	if i, exists := s.index[icon.Name]; exists {
		s.icons[i] = icon
	}
}

// Get returns the icon with the given name
func (s *Set) Get(name string) (Icon, bool) {
	if s == nil {
		return Icon{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Icon{}, false
	}
	return s.icons[i], true
}

// Contains reports whether name is in the set
func (s *Set) Contains(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Len returns the number of icons
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.icons)
}

// Icons returns a copy of the icons in order
func (s *Set) Icons() []Icon {
	if s == nil {
		return nil
	}
	out := make([]Icon, len(s.icons))
	copy(out, s.icons)
	return out
}

// Names returns the identifiers in order
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.icons))
	for i, icon := range s.icons {
		names[i] = icon.Name
	}
	return names
}
