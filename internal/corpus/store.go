package corpus

// RootListing is one occurrence of a root publication in the source data.
// The same root may be listed more than once.
type RootListing struct {
	ID        string
	CitingIDs []string
}

// Store is the in-memory publication table of one run. It is built once and
// only read afterwards.
type Store struct {
	byID    map[string]Publication
	order   []string
	roots   []RootListing
	maxYear int
}

// NewStore validates the records and indexes them by identifier. When an
// identifier repeats, the first record's attributes are kept, but every root
// record is kept as a separate RootListing.
func NewStore(records []Publication) (*Store, error) {
	s := &Store{
		byID: make(map[string]Publication, len(records)),
	}
	for _, rec := range records {
		if err := Validate(rec); err != nil {
			return nil, err
		}
		if _, ok := s.byID[rec.ID]; !ok {
			s.byID[rec.ID] = rec.clone()
			s.order = append(s.order, rec.ID)
			if rec.Year > s.maxYear {
				s.maxYear = rec.Year
			}
		}
		if rec.IsRoot() {
			s.roots = append(s.roots, RootListing{
				ID:        rec.ID,
				CitingIDs: append([]string(nil), rec.CitingIDs...),
			})
		}
	}
	return s, nil
}

// Len returns the number of distinct publications.
func (s *Store) Len() int {
	return len(s.order)
}

// Get returns the publication with the given identifier.
func (s *Store) Get(id string) (Publication, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// Lookup is Get with a MissingPublicationError for absent identifiers.
func (s *Store) Lookup(id, context string) (Publication, error) {
	p, ok := s.byID[id]
	if !ok {
		return Publication{}, NewMissingPublicationError(id, context)
	}
	return p, nil
}

// IDs returns the identifiers in first-seen order.
func (s *Store) IDs() []string {
	return append([]string(nil), s.order...)
}

// All returns the publications in first-seen order.
func (s *Store) All() []Publication {
	out := make([]Publication, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Roots returns every root listing in source order, duplicates included.
func (s *Store) Roots() []RootListing {
	return s.roots
}

// MaxYear returns the latest publication year across the whole store,
// or 0 when no year is known.
func (s *Store) MaxYear() int {
	return s.maxYear
}
