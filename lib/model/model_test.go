package model

import (
	"testing"
	"time"
)

// TestValidGender tests the accepted gender values
func TestValidGender(t *testing.T) {
	if !ValidGender(GenderMale) {
		t.Error("\"m\" should be a valid gender")
	}
	if !ValidGender(GenderFemale) {
		t.Error("\"f\" should be a valid gender")
	}
	for _, s := range []string{"", "x", "male", "M", "F"} {
		if ValidGender(s) {
			t.Errorf("%q should not be a valid gender", s)
		}
	}
}

// TestAgeAt tests the full-year age derivation against a fixed instant
func TestAgeAt(t *testing.T) {
	now := time.Date(2017, 8, 16, 10, 32, 35, 0, time.UTC)

	tests := []struct {
		name  string
		birth time.Time
		want  int32
	}{
		{"birthday already passed this year", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 27},
		{"birthday still ahead this year", time.Date(1990, 12, 31, 0, 0, 0, 0, time.UTC), 26},
		{"birthday today", time.Date(1990, 8, 16, 0, 0, 0, 0, time.UTC), 27},
		{"birthday tomorrow", time.Date(1990, 8, 17, 0, 0, 0, 0, time.UTC), 26},
		{"birthday yesterday", time.Date(1990, 8, 15, 0, 0, 0, 0, time.UTC), 27},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AgeAt(tc.birth.Unix(), now)
			if got != tc.want {
				t.Errorf("AgeAt(%s) = %d, want %d", tc.birth, got, tc.want)
			}
		})
	}
}
