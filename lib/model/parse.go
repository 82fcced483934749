package model

import (
	"fmt"

	"github.com/buger/jsonparser"
)

// Patch parsing is done field by field so that a field which is present but
// null can be told apart from an absent one: null rejects the whole request,
// absence leaves the stored value untouched.

func ParseUserPatch(body []byte) (*UserPatch, error) {
	p := &UserPatch{}
	err := jsonparser.ObjectEach(body, func(key, value []byte, dt jsonparser.ValueType, _ int) error {
		if dt == jsonparser.Null {
			return fmt.Errorf("field %q is null", key)
		}
		switch string(key) {
		case "id":
			return parseInt32(value, dt, &p.ID)
		case "email":
			return parseString(value, dt, &p.Email)
		case "first_name":
			return parseString(value, dt, &p.FirstName)
		case "last_name":
			return parseString(value, dt, &p.LastName)
		case "gender":
			return parseString(value, dt, &p.Gender)
		case "birth_date":
			return parseInt64(value, dt, &p.BirthDate)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func ParseLocationPatch(body []byte) (*LocationPatch, error) {
	p := &LocationPatch{}
	err := jsonparser.ObjectEach(body, func(key, value []byte, dt jsonparser.ValueType, _ int) error {
		if dt == jsonparser.Null {
			return fmt.Errorf("field %q is null", key)
		}
		switch string(key) {
		case "id":
			return parseInt32(value, dt, &p.ID)
		case "place":
			return parseString(value, dt, &p.Place)
		case "country":
			return parseString(value, dt, &p.Country)
		case "city":
			return parseString(value, dt, &p.City)
		case "distance":
			return parseInt32(value, dt, &p.Distance)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func ParseVisitPatch(body []byte) (*VisitPatch, error) {
	p := &VisitPatch{}
	err := jsonparser.ObjectEach(body, func(key, value []byte, dt jsonparser.ValueType, _ int) error {
		if dt == jsonparser.Null {
			return fmt.Errorf("field %q is null", key)
		}
		switch string(key) {
		case "id":
			return parseInt32(value, dt, &p.ID)
		case "location":
			return parseInt32(value, dt, &p.LocationID)
		case "user":
			return parseInt32(value, dt, &p.UserID)
		case "visited_at":
			return parseInt64(value, dt, &p.VisitedAt)
		case "mark":
			return parseInt32(value, dt, &p.Mark)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// --------------------------------------------------------------------------
// Field helpers
// --------------------------------------------------------------------------

func parseString(value []byte, dt jsonparser.ValueType, dst **string) error {
	if dt != jsonparser.String {
		return fmt.Errorf("expected string, got %s", dt)
	}
	s, err := jsonparser.ParseString(value)
	if err != nil {
		return err
	}
	*dst = &s
	return nil
}

func parseInt64(value []byte, dt jsonparser.ValueType, dst **int64) error {
	if dt != jsonparser.Number {
		return fmt.Errorf("expected number, got %s", dt)
	}
	n, err := jsonparser.ParseInt(value)
	if err != nil {
		return err
	}
	*dst = &n
	return nil
}

func parseInt32(value []byte, dt jsonparser.ValueType, dst **int32) error {
	if dt != jsonparser.Number {
		return fmt.Errorf("expected number, got %s", dt)
	}
	n, err := jsonparser.ParseInt(value)
	if err != nil {
		return err
	}
	n32 := int32(n)
	if int64(n32) != n {
		return fmt.Errorf("value %d overflows int32", n)
	}
	*dst = &n32
	return nil
}
