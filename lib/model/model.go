package model

import "time"

// --------------------------------------------------------------------------
// Gender
// --------------------------------------------------------------------------

const (
	GenderMale   = "m"
	GenderFemale = "f"
)

// ValidGender reports whether s is one of the two accepted gender values.
func ValidGender(s string) bool {
	return s == GenderMale || s == GenderFemale
}

// --------------------------------------------------------------------------
// Entities
// --------------------------------------------------------------------------

// User is a registered traveller. The id is immutable after creation,
// Age is derived from BirthDate relative to the reference time fixed at
// load time and is not part of the wire format.
type User struct {
	ID        int32  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	BirthDate int64  `json:"birth_date"`

	Age int32 `json:"-"`
}

// Location is a place a user can visit.
type Location struct {
	ID       int32  `json:"id"`
	Place    string `json:"place"`
	Country  string `json:"country"`
	City     string `json:"city"`
	Distance int32  `json:"distance"`
}

// Visit links a user to a location at a point in time with a mark.
//
// The fields below the wire block are denormalized snapshots of the
// referenced user and location, refreshed by the store on every update
// of the referenced entity.
type Visit struct {
	ID         int32 `json:"id"`
	LocationID int32 `json:"location"`
	UserID     int32 `json:"user"`
	VisitedAt  int64 `json:"visited_at"`
	Mark       int32 `json:"mark"`

	UserAge          int32  `json:"-"`
	UserGender       string `json:"-"`
	LocationCountry  string `json:"-"`
	LocationDistance int32  `json:"-"`
	LocationPlace    string `json:"-"`
}

// UserVisit is the reduced visit representation returned by the
// visits-for-user query.
type UserVisit struct {
	Mark      int32  `json:"mark"`
	VisitedAt int64  `json:"visited_at"`
	Place     string `json:"place"`
}

// --------------------------------------------------------------------------
// Bulk import batches
// --------------------------------------------------------------------------

// Users is a user batch as found in the import archive.
type Users struct {
	Users []User `json:"users"`
}

// Locations is a location batch as found in the import archive.
type Locations struct {
	Locations []Location `json:"locations"`
}

// Visits is a visit batch as found in the import archive.
type Visits struct {
	Visits []Visit `json:"visits"`
}

// --------------------------------------------------------------------------
// Patches (partial updates)
// --------------------------------------------------------------------------

// UserPatch carries the fields present in a user create or update request.
// A nil field was absent from the request. Fields that were present but
// null are rejected at parse time and never reach a patch.
type UserPatch struct {
	ID        *int32
	Email     *string
	FirstName *string
	LastName  *string
	Gender    *string
	BirthDate *int64
}

// LocationPatch carries the fields present in a location create or update
// request.
type LocationPatch struct {
	ID       *int32
	Place    *string
	Country  *string
	City     *string
	Distance *int32
}

// VisitPatch carries the fields present in a visit create or update request.
type VisitPatch struct {
	ID         *int32
	LocationID *int32
	UserID     *int32
	VisitedAt  *int64
	Mark       *int32
}

// --------------------------------------------------------------------------
// Derived values
// --------------------------------------------------------------------------

// AgeAt returns the number of full years between the birth date (epoch
// seconds) and now, both taken as UTC dates.
func AgeAt(birthDate int64, now time.Time) int32 {
	bd := time.Unix(birthDate, 0).UTC()
	now = now.UTC()

	years := int32(now.Year() - bd.Year())
	if now.Month() < bd.Month() || (now.Month() == bd.Month() && now.Day() < bd.Day()) {
		years--
	}
	return years
}
