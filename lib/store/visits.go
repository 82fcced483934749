package store

import (
	"github.com/essildoor/tengu-travels/lib/model"
)

// VisitStore holds all visits plus two auxiliary indexes mapping a user id
// or location id to the visits referencing it. The indexes are mutated only
// under the primary table's write lock, so readers of the store always see
// the primary map and both indexes in a consistent state.
type VisitStore struct {
	tbl        *table[model.Visit]
	byUser     map[int32][]*model.Visit
	byLocation map[int32][]*model.Visit

	users     *UserStore
	locations *LocationStore
}

func NewVisitStore(users *UserStore, locations *LocationStore) *VisitStore {
	return &VisitStore{
		tbl:        newTable[model.Visit](100_000),
		byUser:     make(map[int32][]*model.Visit, 1000),
		byLocation: make(map[int32][]*model.Visit, 1000),
		users:      users,
		locations:  locations,
	}
}

// Get returns a copy of the visit with the given id.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *VisitStore) Get(id int32) (model.Visit, bool) {
	return s.tbl.get(id)
}

// Has reports whether a visit with the given id exists.
func (s *VisitStore) Has(id int32) bool {
	return s.tbl.has(id)
}

// Len returns the number of stored visits.
func (s *VisitStore) Len() int {
	return s.tbl.size()
}

// Create inserts a new visit built from the patch. Both referenced entities
// must exist; their current field values are copied onto the visit as
// denormalized snapshots. The user and location read locks are taken before
// the visit write lock, in the fixed lock order, and held until the insert
// finished so the references cannot disappear or mutate mid-check.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *VisitStore) Create(p *model.VisitPatch) Status {
	if st := validateVisit(p, true); st != StatusOK {
		return st
	}

	s.users.tbl.mu.RLock()
	defer s.users.tbl.mu.RUnlock()
	s.locations.tbl.mu.RLock()
	defer s.locations.tbl.mu.RUnlock()

	u, ok := s.users.tbl.items[*p.UserID]
	if !ok {
		return StatusBadInput
	}
	loc, ok := s.locations.tbl.items[*p.LocationID]
	if !ok {
		return StatusBadInput
	}

	return s.tbl.createWith(*p.ID, func() (*model.Visit, Status) {
		v := &model.Visit{
			ID:         *p.ID,
			LocationID: *p.LocationID,
			UserID:     *p.UserID,
			VisitedAt:  *p.VisitedAt,
			Mark:       *p.Mark,
		}
		copyUserFields(v, u)
		copyLocationFields(v, loc)
		s.indexLocked(v)
		return v, StatusOK
	})
}

// Update applies the fields present in the patch. When the patch changes
// location or user, the new reference is validated, the visit moves to the
// new index bucket, and the denormalized snapshot fields are refreshed from
// the new entity, all within the same write-locked scope as the primary
// update. Lock order is the same as for Create.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *VisitStore) Update(id int32, p *model.VisitPatch) Status {
	if st := validateVisit(p, false); st != StatusOK {
		return st
	}

	s.users.tbl.mu.RLock()
	defer s.users.tbl.mu.RUnlock()
	s.locations.tbl.mu.RLock()
	defer s.locations.tbl.mu.RUnlock()

	return s.tbl.updateWith(id, func(v *model.Visit) Status {
		// resolve new references before mutating anything, so a missing
		// reference rejects the whole patch
		var newUser *model.User
		var newLocation *model.Location
		if p.UserID != nil {
			u, ok := s.users.tbl.items[*p.UserID]
			if !ok {
				return StatusBadInput
			}
			newUser = u
		}
		if p.LocationID != nil {
			loc, ok := s.locations.tbl.items[*p.LocationID]
			if !ok {
				return StatusBadInput
			}
			newLocation = loc
		}

		if newUser != nil {
			if v.UserID != newUser.ID {
				removeFromBucket(s.byUser, v.UserID, v)
				s.byUser[newUser.ID] = append(s.byUser[newUser.ID], v)
				v.UserID = newUser.ID
			}
			copyUserFields(v, newUser)
		}
		if newLocation != nil {
			if v.LocationID != newLocation.ID {
				removeFromBucket(s.byLocation, v.LocationID, v)
				s.byLocation[newLocation.ID] = append(s.byLocation[newLocation.ID], v)
				v.LocationID = newLocation.ID
			}
			copyLocationFields(v, newLocation)
		}
		if p.VisitedAt != nil {
			v.VisitedAt = *p.VisitedAt
		}
		if p.Mark != nil {
			v.Mark = *p.Mark
		}
		return StatusOK
	})
}

// BulkLoad inserts a batch of already enriched visits under a single write
// lock, indexing as it goes. Used by the archive loader only, after the
// user/location phase has completed.
func (s *VisitStore) BulkLoad(visits []model.Visit) int {
	s.tbl.mu.Lock()
	defer s.tbl.mu.Unlock()
	for i := range visits {
		v := visits[i]
		s.tbl.items[v.ID] = &v
		s.indexLocked(&v)
	}
	return len(visits)
}

// --------------------------------------------------------------------------
// Index queries
// --------------------------------------------------------------------------

// ByUser returns a snapshot of the visits referencing the given user.
// The result is a copy: callers may iterate it without holding any lock.
// A user with no visits yields an empty, non-nil slice.
func (s *VisitStore) ByUser(userID int32) []model.Visit {
	s.tbl.mu.RLock()
	defer s.tbl.mu.RUnlock()
	return snapshotBucket(s.byUser[userID])
}

// ByLocation returns a snapshot of the visits referencing the given
// location, with the same copy semantics as ByUser.
func (s *VisitStore) ByLocation(locationID int32) []model.Visit {
	s.tbl.mu.RLock()
	defer s.tbl.mu.RUnlock()
	return snapshotBucket(s.byLocation[locationID])
}

func snapshotBucket(bucket []*model.Visit) []model.Visit {
	res := make([]model.Visit, len(bucket))
	for i, v := range bucket {
		res[i] = *v
	}
	return res
}

// --------------------------------------------------------------------------
// Denormalized copy propagation (called by sibling stores)
// --------------------------------------------------------------------------

// refreshUserCopies rewrites the user snapshot fields on every visit in the
// user's bucket. The caller holds the user store's write lock; taking the
// visit write lock here follows the fixed lock order.
func (s *VisitStore) refreshUserCopies(u *model.User) {
	s.tbl.mu.Lock()
	defer s.tbl.mu.Unlock()
	for _, v := range s.byUser[u.ID] {
		copyUserFields(v, u)
	}
}

// refreshLocationCopies is the location-side counterpart of
// refreshUserCopies, called under the location store's write lock.
func (s *VisitStore) refreshLocationCopies(loc *model.Location) {
	s.tbl.mu.Lock()
	defer s.tbl.mu.Unlock()
	for _, v := range s.byLocation[loc.ID] {
		copyLocationFields(v, loc)
	}
}

// --------------------------------------------------------------------------
// Helpers (all require the visit write lock)
// --------------------------------------------------------------------------

func (s *VisitStore) indexLocked(v *model.Visit) {
	s.byUser[v.UserID] = append(s.byUser[v.UserID], v)
	s.byLocation[v.LocationID] = append(s.byLocation[v.LocationID], v)
}

func removeFromBucket(index map[int32][]*model.Visit, key int32, v *model.Visit) {
	bucket := index[key]
	for i, cur := range bucket {
		if cur == v {
			bucket[i] = bucket[len(bucket)-1]
			bucket[len(bucket)-1] = nil
			index[key] = bucket[:len(bucket)-1]
			return
		}
	}
}

func copyUserFields(v *model.Visit, u *model.User) {
	v.UserAge = u.Age
	v.UserGender = u.Gender
}

func copyLocationFields(v *model.Visit, loc *model.Location) {
	v.LocationCountry = loc.Country
	v.LocationDistance = loc.Distance
	v.LocationPlace = loc.Place
}
