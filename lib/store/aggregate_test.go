package store

import (
	"testing"
	"time"

	"github.com/essildoor/tengu-travels/lib/model"
)

// buildAggregateFixture creates two users (a 27 year old woman and a 37 year
// old man), two locations and a handful of visits to query against.
func buildAggregateFixture(t *testing.T) (*UserStore, *LocationStore, *VisitStore) {
	t.Helper()
	users, locations, visits := newTestStores()
	users.SetReferenceTime(time.Date(2017, 8, 16, 10, 32, 35, 0, time.UTC))

	mustCreateUser(t, users, 1) // f, born 1990-01-01
	if st := users.Create(&model.UserPatch{
		ID: i32(2), Email: str("karl@example.com"), FirstName: str("Karl"), LastName: str("Huber"),
		Gender: str(model.GenderMale), BirthDate: i64(time.Date(1980, 6, 1, 0, 0, 0, 0, time.UTC).Unix()),
	}); st != StatusOK {
		t.Fatalf("create user 2: %v", st)
	}

	mustCreateLocation(t, locations, 10) // Austria, distance 10
	if st := locations.Create(&model.LocationPatch{
		ID: i32(11), Place: str("Museum"), Country: str("Italy"), City: str("Rome"), Distance: i32(99),
	}); st != StatusOK {
		t.Fatalf("create location 11: %v", st)
	}

	mustCreateVisit(t, visits, 100, 10, 1, 1000000000, 3) // 2001-09-09
	mustCreateVisit(t, visits, 101, 10, 2, 1100000000, 4) // 2004-11-09
	mustCreateVisit(t, visits, 102, 11, 1, 1200000000, 5) // 2008-01-10

	return users, locations, visits
}

// TestAverageMarkPlain tests the unfiltered average
func TestAverageMarkPlain(t *testing.T) {
	_, _, visits := buildAggregateFixture(t)

	avg, st := visits.AverageMark(10, AvgFilter{})
	if st != StatusOK {
		t.Fatalf("expected StatusOK, got %v", st)
	}
	if avg != 3.5 {
		t.Errorf("expected average 3.5, got %v", avg)
	}
}

// TestAverageMarkRounding tests that a repeating fraction rounds half-up to
// five decimal places instead of truncating
func TestAverageMarkRounding(t *testing.T) {
	users, locations, visits := newTestStores()
	mustCreateUser(t, users, 1)
	mustCreateLocation(t, locations, 10)
	mustCreateVisit(t, visits, 100, 10, 1, 1000000000, 1)
	mustCreateVisit(t, visits, 101, 10, 1, 1100000000, 1)
	mustCreateVisit(t, visits, 102, 10, 1, 1200000000, 0)

	avg, st := visits.AverageMark(10, AvgFilter{})
	if st != StatusOK {
		t.Fatalf("expected StatusOK, got %v", st)
	}
	if avg != 0.66667 {
		t.Errorf("expected 2/3 to round to 0.66667, got %v", avg)
	}
}

// TestAverageMarkNoVisits tests that an unvisited location averages to zero
func TestAverageMarkNoVisits(t *testing.T) {
	users, locations, visits := newTestStores()
	mustCreateUser(t, users, 1)
	mustCreateLocation(t, locations, 10)

	avg, st := visits.AverageMark(10, AvgFilter{})
	if st != StatusOK {
		t.Fatalf("expected StatusOK, got %v", st)
	}
	if avg != 0 {
		t.Errorf("expected average 0, got %v", avg)
	}
}

// TestAverageMarkMissingLocation tests the not-found contract
func TestAverageMarkMissingLocation(t *testing.T) {
	_, _, visits := buildAggregateFixture(t)

	if _, st := visits.AverageMark(999, AvgFilter{}); st != StatusNotFound {
		t.Errorf("expected StatusNotFound, got %v", st)
	}
}

// TestAverageMarkFilters tests each filter dimension on its own
func TestAverageMarkFilters(t *testing.T) {
	_, _, visits := buildAggregateFixture(t)

	tests := []struct {
		name string
		f    AvgFilter
		want float64
	}{
		{"fromDate keeps later visit", AvgFilter{FromDate: i64(1050000000)}, 4},
		{"fromDate inclusive", AvgFilter{FromDate: i64(1000000000)}, 3.5},
		{"toDate keeps earlier visit", AvgFilter{ToDate: i64(1050000000)}, 3},
		{"toDate inclusive", AvgFilter{ToDate: i64(1100000000)}, 3.5},
		{"fromAge excludes the 27 year old", AvgFilter{FromAge: i32(30)}, 4},
		{"toAge excludes the 37 year old", AvgFilter{ToAge: i32(30)}, 3},
		{"gender m", AvgFilter{Gender: str(model.GenderMale)}, 4},
		{"gender f", AvgFilter{Gender: str(model.GenderFemale)}, 3},
		{"nothing matches", AvgFilter{FromAge: i32(90)}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			avg, st := visits.AverageMark(10, tc.f)
			if st != StatusOK {
				t.Fatalf("expected StatusOK, got %v", st)
			}
			if avg != tc.want {
				t.Errorf("expected %v, got %v", tc.want, avg)
			}
		})
	}
}

// TestAverageMarkSeesUserUpdate tests that changing a user's gender moves
// their marks between gender-filtered averages
func TestAverageMarkSeesUserUpdate(t *testing.T) {
	users, _, visits := buildAggregateFixture(t)

	if st := users.Update(1, &model.UserPatch{Gender: str(model.GenderMale)}); st != StatusOK {
		t.Fatalf("expected StatusOK, got %v", st)
	}

	avg, st := visits.AverageMark(10, AvgFilter{Gender: str(model.GenderMale)})
	if st != StatusOK {
		t.Fatalf("expected StatusOK, got %v", st)
	}
	if avg != 3.5 {
		t.Errorf("expected both visits to count as male now, got %v", avg)
	}

	avg, _ = visits.AverageMark(10, AvgFilter{Gender: str(model.GenderFemale)})
	if avg != 0 {
		t.Errorf("expected no female visits left, got %v", avg)
	}
}

// TestVisitsForUserSorted tests ordering and shape of the reduced visits
func TestVisitsForUserSorted(t *testing.T) {
	_, _, visits := buildAggregateFixture(t)

	got, st := visits.VisitsForUser(1, VisitFilter{})
	if st != StatusOK {
		t.Fatalf("expected StatusOK, got %v", st)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 visits, got %d", len(got))
	}
	if got[0].VisitedAt > got[1].VisitedAt {
		t.Error("visits must be sorted by visited_at ascending")
	}
	if got[0].Place != "Place 10" || got[1].Place != "Museum" {
		t.Errorf("unexpected places: %q, %q", got[0].Place, got[1].Place)
	}
	if got[0].Mark != 3 || got[1].Mark != 5 {
		t.Errorf("unexpected marks: %d, %d", got[0].Mark, got[1].Mark)
	}
}

// TestVisitsForUserFilters tests the country, distance and date filters
func TestVisitsForUserFilters(t *testing.T) {
	_, _, visits := buildAggregateFixture(t)

	tests := []struct {
		name string
		f    VisitFilter
		want int
	}{
		{"country", VisitFilter{Country: str("Italy")}, 1},
		{"country without visits", VisitFilter{Country: str("France")}, 0},
		{"toDistance excludes equal distance", VisitFilter{ToDistance: i32(10)}, 0},
		{"toDistance keeps closer location", VisitFilter{ToDistance: i32(11)}, 1},
		{"date window", VisitFilter{FromDate: i64(1000000000), ToDate: i64(1200000000)}, 2},
		{"date window excludes early visit", VisitFilter{FromDate: i64(1000000001)}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, st := visits.VisitsForUser(1, tc.f)
			if st != StatusOK {
				t.Fatalf("expected StatusOK, got %v", st)
			}
			if len(got) != tc.want {
				t.Errorf("expected %d visits, got %d", tc.want, len(got))
			}
		})
	}
}

// TestVisitsForUserMissingUser tests the not-found contract
func TestVisitsForUserMissingUser(t *testing.T) {
	_, _, visits := buildAggregateFixture(t)

	if _, st := visits.VisitsForUser(999, VisitFilter{}); st != StatusNotFound {
		t.Errorf("expected StatusNotFound, got %v", st)
	}
}

// TestVisitsForUserNoMatches tests that no matches is a valid empty result
func TestVisitsForUserNoMatches(t *testing.T) {
	_, _, visits := buildAggregateFixture(t)

	got, st := visits.VisitsForUser(2, VisitFilter{Country: str("Italy")})
	if st != StatusOK {
		t.Fatalf("expected StatusOK, got %v", st)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %v", got)
	}
}

// TestRoundTo tests the half away from zero rounding mode
func TestRoundTo(t *testing.T) {
	tests := []struct {
		num       float64
		precision int
		want      float64
	}{
		{2.0 / 3.0, 5, 0.66667},
		{1.0 / 3.0, 5, 0.33333},
		{0.125, 2, 0.13},
		{-0.125, 2, -0.13},
		{3.5, 5, 3.5},
		{0, 5, 0},
	}

	for _, tc := range tests {
		if got := roundTo(tc.num, tc.precision); got != tc.want {
			t.Errorf("roundTo(%v, %d) = %v, want %v", tc.num, tc.precision, got, tc.want)
		}
	}
}
