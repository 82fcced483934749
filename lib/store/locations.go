package store

import (
	"github.com/essildoor/tengu-travels/lib/model"
)

// LocationStore holds all locations.
type LocationStore struct {
	tbl    *table[model.Location]
	visits *VisitStore
}

func NewLocationStore() *LocationStore {
	return &LocationStore{tbl: newTable[model.Location](10_000)}
}

// AttachVisits wires the visit store used for denormalized copy propagation.
// Must be called once during startup, before the store serves traffic.
func (s *LocationStore) AttachVisits(v *VisitStore) {
	s.visits = v
}

// Get returns a copy of the location with the given id.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *LocationStore) Get(id int32) (model.Location, bool) {
	return s.tbl.get(id)
}

// Has reports whether a location with the given id exists.
func (s *LocationStore) Has(id int32) bool {
	return s.tbl.has(id)
}

// Len returns the number of stored locations.
func (s *LocationStore) Len() int {
	return s.tbl.size()
}

// Create inserts a new location built from the patch. All fields must be
// present.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *LocationStore) Create(p *model.LocationPatch) Status {
	if st := validateLocation(p, true); st != StatusOK {
		return st
	}
	return s.tbl.createWith(*p.ID, func() (*model.Location, Status) {
		return &model.Location{
			ID:       *p.ID,
			Place:    *p.Place,
			Country:  *p.Country,
			City:     *p.City,
			Distance: *p.Distance,
		}, StatusOK
	})
}

// Update applies the fields present in the patch to the stored location
// and synchronously rewrites the denormalized location copies on every
// visit referencing it, under the visit store's write lock taken while
// the location write lock is still held (fixed lock order).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *LocationStore) Update(id int32, p *model.LocationPatch) Status {
	if st := validateLocation(p, false); st != StatusOK {
		return st
	}
	return s.tbl.updateWith(id, func(loc *model.Location) Status {
		if p.Place != nil {
			loc.Place = *p.Place
		}
		if p.Country != nil {
			loc.Country = *p.Country
		}
		if p.City != nil {
			loc.City = *p.City
		}
		if p.Distance != nil {
			loc.Distance = *p.Distance
		}
		if s.visits != nil {
			s.visits.refreshLocationCopies(loc)
		}
		return StatusOK
	})
}

// BulkLoad inserts a batch of locations under a single write lock.
// Used by the archive loader only.
func (s *LocationStore) BulkLoad(locations []model.Location) int {
	s.tbl.mu.Lock()
	defer s.tbl.mu.Unlock()
	for i := range locations {
		loc := locations[i]
		s.tbl.items[loc.ID] = &loc
	}
	return len(locations)
}

// Resolve returns copies of the locations with the given ids, omitting
// missing ones.
func (s *LocationStore) Resolve(ids map[int32]struct{}) map[int32]model.Location {
	s.tbl.mu.RLock()
	defer s.tbl.mu.RUnlock()
	res := make(map[int32]model.Location, len(ids))
	for id := range ids {
		if loc, ok := s.tbl.items[id]; ok {
			res[id] = *loc
		}
	}
	return res
}
