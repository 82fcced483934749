package store

import (
	"fmt"
	"testing"

	"github.com/essildoor/tengu-travels/lib/model"
)

// --------------------------------------------------------------------------
// Test helpers
// --------------------------------------------------------------------------

func i32(v int32) *int32   { return &v }
func i64(v int64) *int64   { return &v }
func str(s string) *string { return &s }

// newTestStores wires the three stores the same way the serve command does.
func newTestStores() (*UserStore, *LocationStore, *VisitStore) {
	users := NewUserStore()
	locations := NewLocationStore()
	visits := NewVisitStore(users, locations)
	users.AttachVisits(visits)
	locations.AttachVisits(visits)
	return users, locations, visits
}

// userPatch returns a complete create patch for a user with the given id.
func userPatch(id int32) *model.UserPatch {
	return &model.UserPatch{
		ID:        i32(id),
		Email:     str(fmt.Sprintf("user%d@example.com", id)),
		FirstName: str("Anna"),
		LastName:  str("Meier"),
		Gender:    str(model.GenderFemale),
		BirthDate: i64(631152000), // 1990-01-01
	}
}

// locationPatch returns a complete create patch for a location.
func locationPatch(id int32) *model.LocationPatch {
	return &model.LocationPatch{
		ID:       i32(id),
		Place:    str(fmt.Sprintf("Place %d", id)),
		Country:  str("Austria"),
		City:     str("Vienna"),
		Distance: i32(10),
	}
}

// visitPatch returns a complete create patch for a visit.
func visitPatch(id, locationID, userID int32, visitedAt int64, mark int32) *model.VisitPatch {
	return &model.VisitPatch{
		ID:         i32(id),
		LocationID: i32(locationID),
		UserID:     i32(userID),
		VisitedAt:  i64(visitedAt),
		Mark:       i32(mark),
	}
}

func mustCreateUser(t *testing.T, users *UserStore, id int32) {
	t.Helper()
	if st := users.Create(userPatch(id)); st != StatusOK {
		t.Fatalf("create user %d: expected StatusOK, got %v", id, st)
	}
}

func mustCreateLocation(t *testing.T, locations *LocationStore, id int32) {
	t.Helper()
	if st := locations.Create(locationPatch(id)); st != StatusOK {
		t.Fatalf("create location %d: expected StatusOK, got %v", id, st)
	}
}

func mustCreateVisit(t *testing.T, visits *VisitStore, id, locationID, userID int32, visitedAt int64, mark int32) {
	t.Helper()
	if st := visits.Create(visitPatch(id, locationID, userID, visitedAt, mark)); st != StatusOK {
		t.Fatalf("create visit %d: expected StatusOK, got %v", id, st)
	}
}
