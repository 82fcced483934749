package store

import (
	"time"

	"github.com/lni/dragonboat/v4/logger"

	"github.com/essildoor/tengu-travels/lib/model"
)

var log = logger.GetLogger("store")

// defaultReferenceTime is the fallback "now" used for age derivation when
// the import archive carries no timestamp.
const defaultReferenceTime = 1502881955

// UserStore holds all users. Ages are derived from the reference time fixed
// at load time, not from the wall clock, so that repeated queries over the
// same corpus stay stable.
type UserStore struct {
	tbl    *table[model.User]
	visits *VisitStore
	now    time.Time
}

func NewUserStore() *UserStore {
	return &UserStore{
		tbl: newTable[model.User](100_000),
		now: time.Unix(defaultReferenceTime, 0).UTC(),
	}
}

// AttachVisits wires the visit store used for denormalized copy propagation.
// Must be called once during startup, before the store serves traffic.
func (s *UserStore) AttachVisits(v *VisitStore) {
	s.visits = v
}

// SetReferenceTime fixes the point in time ages are computed against.
// Must be called before any user is loaded or created.
func (s *UserStore) SetReferenceTime(now time.Time) {
	s.now = now.UTC()
	log.Infof("user age reference time set to %s", s.now)
}

// ReferenceTime returns the point in time ages are computed against.
func (s *UserStore) ReferenceTime() time.Time {
	return s.now
}

// Get returns a copy of the user with the given id.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *UserStore) Get(id int32) (model.User, bool) {
	return s.tbl.get(id)
}

// Has reports whether a user with the given id exists.
func (s *UserStore) Has(id int32) bool {
	return s.tbl.has(id)
}

// Len returns the number of stored users.
func (s *UserStore) Len() int {
	return s.tbl.size()
}

// Create inserts a new user built from the patch. All fields must be
// present. Returns StatusConflict when the id is already taken and
// StatusBadInput when validation fails.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *UserStore) Create(p *model.UserPatch) Status {
	if st := validateUser(p, true); st != StatusOK {
		return st
	}
	return s.tbl.createWith(*p.ID, func() (*model.User, Status) {
		u := &model.User{
			ID:        *p.ID,
			Email:     *p.Email,
			FirstName: *p.FirstName,
			LastName:  *p.LastName,
			Gender:    *p.Gender,
			BirthDate: *p.BirthDate,
		}
		u.Age = model.AgeAt(u.BirthDate, s.now)
		return u, StatusOK
	})
}

// Update applies the fields present in the patch to the stored user.
// Before it returns, the denormalized user copies on every visit
// referencing this user are rewritten under the visit store's write lock,
// taken while the user write lock is still held (fixed lock order).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *UserStore) Update(id int32, p *model.UserPatch) Status {
	if st := validateUser(p, false); st != StatusOK {
		return st
	}
	return s.tbl.updateWith(id, func(u *model.User) Status {
		if p.Email != nil {
			u.Email = *p.Email
		}
		if p.FirstName != nil {
			u.FirstName = *p.FirstName
		}
		if p.LastName != nil {
			u.LastName = *p.LastName
		}
		if p.Gender != nil {
			u.Gender = *p.Gender
		}
		if p.BirthDate != nil {
			u.BirthDate = *p.BirthDate
			u.Age = model.AgeAt(u.BirthDate, s.now)
		}
		if s.visits != nil {
			s.visits.refreshUserCopies(u)
		}
		return StatusOK
	})
}

// BulkLoad inserts a batch of users under a single write lock, deriving
// ages as it goes. Used by the archive loader only; records are not
// validated, matching the trust the loader places in the corpus.
func (s *UserStore) BulkLoad(users []model.User) int {
	s.tbl.mu.Lock()
	defer s.tbl.mu.Unlock()
	for i := range users {
		u := users[i]
		u.Age = model.AgeAt(u.BirthDate, s.now)
		s.tbl.items[u.ID] = &u
	}
	return len(users)
}

// Resolve returns copies of the users with the given ids, omitting
// missing ones. Used by the loader to enrich visit batches after the
// user/location phase has completed.
func (s *UserStore) Resolve(ids map[int32]struct{}) map[int32]model.User {
	s.tbl.mu.RLock()
	defer s.tbl.mu.RUnlock()
	res := make(map[int32]model.User, len(ids))
	for id := range ids {
		if u, ok := s.tbl.items[id]; ok {
			res[id] = *u
		}
	}
	return res
}
