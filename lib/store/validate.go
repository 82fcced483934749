package store

import (
	"time"

	"github.com/essildoor/tengu-travels/lib/model"
)

// Field bounds for the three entity kinds. Date bounds are the historical
// range the import corpus is generated from.
const (
	maxEmailLen   = 100
	maxNameLen    = 50
	maxCountryLen = 50
	maxCityLen    = 50

	minMark = 0
	maxMark = 5
)

var (
	birthDateMin = time.Date(1930, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	birthDateMax = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	visitedAtMin = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	visitedAtMax = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
)

// The validators below are pure: they inspect the patch only, never the
// stores. A create requires every field to be present; an update validates
// only the fields the patch carries and rejects an id in the body since
// ids are immutable.

func validateUser(p *model.UserPatch, isCreate bool) Status {
	if p == nil {
		return StatusBadInput
	}
	if isCreate {
		if p.ID == nil || p.Email == nil || p.FirstName == nil || p.LastName == nil ||
			p.Gender == nil || p.BirthDate == nil {
			return StatusBadInput
		}
	} else if p.ID != nil {
		return StatusBadInput
	}
	if p.Email != nil && len(*p.Email) > maxEmailLen {
		return StatusBadInput
	}
	if p.FirstName != nil && len(*p.FirstName) > maxNameLen {
		return StatusBadInput
	}
	if p.LastName != nil && len(*p.LastName) > maxNameLen {
		return StatusBadInput
	}
	if p.Gender != nil && !model.ValidGender(*p.Gender) {
		return StatusBadInput
	}
	if p.BirthDate != nil && (*p.BirthDate < birthDateMin || *p.BirthDate > birthDateMax) {
		return StatusBadInput
	}
	return StatusOK
}

func validateLocation(p *model.LocationPatch, isCreate bool) Status {
	if p == nil {
		return StatusBadInput
	}
	if isCreate {
		if p.ID == nil || p.Place == nil || p.Country == nil || p.City == nil || p.Distance == nil {
			return StatusBadInput
		}
	} else if p.ID != nil {
		return StatusBadInput
	}
	if p.Country != nil && len(*p.Country) > maxCountryLen {
		return StatusBadInput
	}
	if p.City != nil && len(*p.City) > maxCityLen {
		return StatusBadInput
	}
	return StatusOK
}

func validateVisit(p *model.VisitPatch, isCreate bool) Status {
	if p == nil {
		return StatusBadInput
	}
	if isCreate {
		if p.ID == nil || p.LocationID == nil || p.UserID == nil ||
			p.VisitedAt == nil || p.Mark == nil {
			return StatusBadInput
		}
	} else if p.ID != nil {
		return StatusBadInput
	}
	if p.VisitedAt != nil && (*p.VisitedAt < visitedAtMin || *p.VisitedAt > visitedAtMax) {
		return StatusBadInput
	}
	if p.Mark != nil && (*p.Mark < minMark || *p.Mark > maxMark) {
		return StatusBadInput
	}
	return StatusOK
}
