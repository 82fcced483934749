package store

import (
	"math"
	"sort"

	"github.com/essildoor/tengu-travels/lib/model"
)

// markPrecision is the number of decimal places average marks are rounded
// to. Clients compare the result bit for bit, so the rounding mode
// (half-up) is part of the contract, not cosmetics.
const markPrecision = 5

// VisitFilter narrows a visits-for-user query. All date bounds are
// inclusive; ToDistance is an exclusive upper bound on the location
// distance. Nil fields are inactive.
type VisitFilter struct {
	FromDate   *int64
	ToDate     *int64
	Country    *string
	ToDistance *int32
}

// AvgFilter narrows an average-mark query. Date and age bounds are
// inclusive on both ends. Nil fields are inactive.
type AvgFilter struct {
	FromDate *int64
	ToDate   *int64
	FromAge  *int32
	ToAge    *int32
	Gender   *string
}

// VisitsForUser returns the user's visits matching the filter, sorted by
// visit time ascending, in the reduced mark/visited_at/place shape.
// A missing user yields StatusNotFound; a user without matching visits
// yields an empty result with StatusOK.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *VisitStore) VisitsForUser(userID int32, f VisitFilter) ([]model.UserVisit, Status) {
	if !s.users.Has(userID) {
		return nil, StatusNotFound
	}

	visits := s.ByUser(userID)
	res := make([]model.UserVisit, 0, len(visits))
	for i := range visits {
		v := &visits[i]
		if f.FromDate != nil && v.VisitedAt < *f.FromDate {
			continue
		}
		if f.ToDate != nil && v.VisitedAt > *f.ToDate {
			continue
		}
		if f.Country != nil && v.LocationCountry != *f.Country {
			continue
		}
		if f.ToDistance != nil && v.LocationDistance >= *f.ToDistance {
			continue
		}
		res = append(res, model.UserVisit{
			Mark:      v.Mark,
			VisitedAt: v.VisitedAt,
			Place:     v.LocationPlace,
		})
	}

	sort.Slice(res, func(i, j int) bool { return res[i].VisitedAt < res[j].VisitedAt })
	return res, StatusOK
}

// AverageMark computes the filtered average mark over the location's visit
// set in a single pass over the index snapshot, short-circuiting on the
// first failing predicate. A location with no matching visits averages to
// 0, which is a valid result, not an error. The result is rounded half-up
// to markPrecision decimal places.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *VisitStore) AverageMark(locationID int32, f AvgFilter) (float64, Status) {
	if !s.locations.Has(locationID) {
		return 0, StatusNotFound
	}

	visits := s.ByLocation(locationID)
	var sum, count int64
	for i := range visits {
		v := &visits[i]
		if f.FromDate != nil && v.VisitedAt < *f.FromDate {
			continue
		}
		if f.ToDate != nil && v.VisitedAt > *f.ToDate {
			continue
		}
		if f.FromAge != nil && v.UserAge < *f.FromAge {
			continue
		}
		if f.ToAge != nil && v.UserAge > *f.ToAge {
			continue
		}
		if f.Gender != nil && v.UserGender != *f.Gender {
			continue
		}
		sum += int64(v.Mark)
		count++
	}

	if count == 0 {
		return 0, StatusOK
	}
	return roundTo(float64(sum)/float64(count), markPrecision), StatusOK
}

// roundTo rounds num to the given number of decimal places, half away
// from zero.
func roundTo(num float64, precision int) float64 {
	output := math.Pow(10, float64(precision))
	return math.Trunc(num*output+math.Copysign(0.5, num)) / output
}
