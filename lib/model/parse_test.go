package model

import (
	"testing"
)

// TestParseUserPatchFull tests parsing a request with every field present
func TestParseUserPatchFull(t *testing.T) {
	body := []byte(`{"id":1,"email":"a@b.c","first_name":"Anna","last_name":"Meier","gender":"f","birth_date":-631152000}`)

	p, err := ParseUserPatch(body)
	if err != nil {
		t.Fatalf("ParseUserPatch returned error: %v", err)
	}

	if p.ID == nil || *p.ID != 1 {
		t.Errorf("expected id 1, got %v", p.ID)
	}
	if p.Email == nil || *p.Email != "a@b.c" {
		t.Errorf("expected email a@b.c, got %v", p.Email)
	}
	if p.Gender == nil || *p.Gender != "f" {
		t.Errorf("expected gender f, got %v", p.Gender)
	}
	if p.BirthDate == nil || *p.BirthDate != -631152000 {
		t.Errorf("expected birth_date -631152000, got %v", p.BirthDate)
	}
}

// TestParseUserPatchPartial tests that absent fields stay nil
func TestParseUserPatchPartial(t *testing.T) {
	p, err := ParseUserPatch([]byte(`{"first_name":"Otto"}`))
	if err != nil {
		t.Fatalf("ParseUserPatch returned error: %v", err)
	}

	if p.FirstName == nil || *p.FirstName != "Otto" {
		t.Errorf("expected first_name Otto, got %v", p.FirstName)
	}
	if p.ID != nil || p.Email != nil || p.LastName != nil || p.Gender != nil || p.BirthDate != nil {
		t.Errorf("absent fields should be nil, got %+v", p)
	}
}

// TestParseNullField tests that an explicit null rejects the whole request
func TestParseNullField(t *testing.T) {
	if _, err := ParseUserPatch([]byte(`{"email":null}`)); err == nil {
		t.Error("null email should be rejected")
	}
	if _, err := ParseLocationPatch([]byte(`{"distance":null}`)); err == nil {
		t.Error("null distance should be rejected")
	}
	if _, err := ParseVisitPatch([]byte(`{"mark":null}`)); err == nil {
		t.Error("null mark should be rejected")
	}
}

// TestParseWrongType tests type mismatches between JSON value and field
func TestParseWrongType(t *testing.T) {
	if _, err := ParseUserPatch([]byte(`{"birth_date":"1990-01-01"}`)); err == nil {
		t.Error("string birth_date should be rejected")
	}
	if _, err := ParseUserPatch([]byte(`{"email":42}`)); err == nil {
		t.Error("numeric email should be rejected")
	}
	if _, err := ParseVisitPatch([]byte(`{"user":"7"}`)); err == nil {
		t.Error("string user id should be rejected")
	}
}

// TestParseInt32Overflow tests that values outside int32 are rejected
func TestParseInt32Overflow(t *testing.T) {
	if _, err := ParseVisitPatch([]byte(`{"mark":4294967296}`)); err == nil {
		t.Error("mark outside int32 should be rejected")
	}
}

// TestParseMalformedBody tests that broken JSON is rejected
func TestParseMalformedBody(t *testing.T) {
	for _, body := range []string{``, `{`, `[1,2]`, `{"id":}`} {
		if _, err := ParseUserPatch([]byte(body)); err == nil {
			t.Errorf("body %q should be rejected", body)
		}
	}
}

// TestParseVisitPatchWireNames tests the wire names of the reference fields
func TestParseVisitPatchWireNames(t *testing.T) {
	p, err := ParseVisitPatch([]byte(`{"id":3,"location":15,"user":8,"visited_at":1049447314,"mark":4}`))
	if err != nil {
		t.Fatalf("ParseVisitPatch returned error: %v", err)
	}

	if p.LocationID == nil || *p.LocationID != 15 {
		t.Errorf("expected location 15, got %v", p.LocationID)
	}
	if p.UserID == nil || *p.UserID != 8 {
		t.Errorf("expected user 8, got %v", p.UserID)
	}
	if p.VisitedAt == nil || *p.VisitedAt != 1049447314 {
		t.Errorf("expected visited_at 1049447314, got %v", p.VisitedAt)
	}
}
