package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func validLocation() Location {
	return Location{Address: "1234 Main St", City: "Portland", State: "OR", Zipcode: 97201}
}

func TestNewPersonAcceptsBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		pname string
		id    uint32
	}{
		{"zero id", "A", 0},
		{"max id", "Member Max", MaxPersonID},
		{"max name", strings.Repeat("n", MaxNameLength), 42},
		{"multibyte name", strings.Repeat("é", MaxNameLength), 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPerson(tc.pname, tc.id, validLocation(), "x@example.com")
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if !p.IsActive {
				t.Fatalf("new person should be active")
			}
			if p.ID != tc.id || p.Name != tc.pname || p.Location != validLocation() {
				t.Fatalf("unexpected person %+v", p)
			}
		})
	}
}

func TestNewPersonRejectsEachBound(t *testing.T) {
	cases := []struct {
		name  string
		field string
		build func() (Person, error)
	}{
		{"id", "id", func() (Person, error) {
			return NewPerson("A", MaxPersonID+1, validLocation(), "a@b")
		}},
		{"name", "name", func() (Person, error) {
			return NewPerson(strings.Repeat("n", MaxNameLength+1), 1, validLocation(), "a@b")
		}},
		{"email", "email", func() (Person, error) {
			return NewPerson("A", 1, validLocation(), "nobody.example.com")
		}},
		{"state", "state", func() (Person, error) {
			loc := validLocation()
			loc.State = "ORE"
			return NewPerson("A", 1, loc, "a@b")
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := tc.build()
			if err == nil {
				t.Fatalf("expected rejection, got %+v", p)
			}
			if p != (Person{}) {
				t.Fatalf("rejected construction leaked a value: %+v", p)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, verr.Field)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation match")
			}
		})
	}
}

func TestNewLocation(t *testing.T) {
	if _, err := NewLocation(strings.Repeat("a", MaxAddressLength), strings.Repeat("c", MaxCityLength), "WA", MaxZipcode); err != nil {
		t.Fatalf("boundary location rejected: %v", err)
	}
	cases := []struct {
		field   string
		address string
		city    string
		state   string
		zip     uint32
	}{
		{"address", strings.Repeat("a", MaxAddressLength+1), "c", "WA", 1},
		{"city", "a", strings.Repeat("c", MaxCityLength+1), "WA", 1},
		{"state", "a", "c", "W", 1},
		{"state", "a", "c", "", 1},
		{"zipcode", "a", "c", "WA", MaxZipcode + 1},
	}
	for _, tc := range cases {
		_, err := NewLocation(tc.address, tc.city, tc.state, tc.zip)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != tc.field {
			t.Fatalf("expected %s rejection, got %v", tc.field, err)
		}
	}
}

func TestNewConsultationServiceDatePattern(t *testing.T) {
	cases := []struct {
		date string
		ok   bool
	}{
		{"01-13-2025", true},
		{"12-31-1999", true},
		{"13-01-2025", false},
		{"00-10-2025", false},
		{"01-00-2025", false},
		{"01-32-2025", false},
		{"1-013-2025", false},
		{"2025-01-13", false},
		{"01/13/2025", false},
	}
	for _, tc := range cases {
		_, err := NewConsultation("01-13-2025 10:00:00", tc.date, 1, 1, 1, "")
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected rejection %v", tc.date, err)
		}
		if !tc.ok {
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != "service_date" {
				t.Fatalf("%s: expected service_date rejection, got %v", tc.date, err)
			}
		}
	}
}

func TestNewConsultationCheckOrder(t *testing.T) {
	cases := []struct {
		name       string
		capturedAt string
		date       string
		provider   uint32
		member     uint32
		code       uint32
		comments   string
		field      string
	}{
		{"captured first", "short", "bad", MaxPersonID + 1, 0, 0, "", "current_date_time"},
		{"date length", "01-13-2025 10:00:00", "1-1-2025", 0, 0, 0, "", "service_date"},
		{"provider before member", "01-13-2025 10:00:00", "01-13-2025", MaxPersonID + 1, MaxPersonID + 1, 0, "", "provider_id"},
		{"member", "01-13-2025 10:00:00", "01-13-2025", 0, MaxPersonID + 1, MaxServiceCode + 1, "", "member_id"},
		{"service code", "01-13-2025 10:00:00", "01-13-2025", 0, 0, MaxServiceCode + 1, "", "service_code"},
		{"comments at limit", "01-13-2025 10:00:00", "01-13-2025", 0, 0, 0, strings.Repeat("c", MaxCommentLength), "comments"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConsultation(tc.capturedAt, tc.date, tc.provider, tc.member, tc.code, tc.comments)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, verr.Field)
			}
		})
	}
	c, err := NewConsultation("01-13-2025 10:00:00", "01-13-2025", 61, 1, 123456, strings.Repeat("c", MaxCommentLength-1))
	if err != nil {
		t.Fatalf("99 character comment rejected: %v", err)
	}
	if c.ProviderID != 61 || c.MemberID != 1 || c.ServiceCode != 123456 {
		t.Fatalf("unexpected consultation %+v", c)
	}
}

func TestNewServiceEntry(t *testing.T) {
	if _, err := NewServiceEntry(MaxServiceCode, "Therapy", 0); err != nil {
		t.Fatalf("valid service rejected: %v", err)
	}
	_, err := NewServiceEntry(1, "", 10)
	if !errors.Is(err, ErrEmptyInput) || !errors.Is(err, ErrValidation) {
		t.Fatalf("empty name should match ErrEmptyInput and ErrValidation: %v", err)
	}
	for _, fee := range []float64{-0.01, math.NaN(), math.Inf(1)} {
		if _, err := NewServiceEntry(1, "x", fee); err == nil {
			t.Fatalf("fee %v accepted", fee)
		}
	}
	if _, err := NewServiceEntry(MaxServiceCode+1, "x", 1); err == nil {
		t.Fatalf("oversized service id accepted")
	}
}

func TestParseServiceDate(t *testing.T) {
	got, err := ParseServiceDate("12-31-2024", time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	// Chronological order survives a year boundary where string order does not.
	next, _ := ParseServiceDate("01-02-2025", time.UTC)
	if !next.After(got) {
		t.Fatalf("expected 01-02-2025 after 12-31-2024")
	}
	if _, err := ParseServiceDate("2024-12-31", time.UTC); err == nil {
		t.Fatalf("expected ISO date to be rejected")
	}
	if FormatServiceDate(want) != "12-31-2024" {
		t.Fatalf("unexpected format %s", FormatServiceDate(want))
	}
	if s := FormatCapturedAt(want.Add(13*time.Hour + 5*time.Minute + 9*time.Second)); s != "12-31-2024 13:05:09" || len(s) != CapturedAtLength {
		t.Fatalf("unexpected captured format %s", s)
	}
}

func TestStoreErrorMatching(t *testing.T) {
	err := NotFound("remove", EntityMember, 555000111)
	if !IsNotFound(err) {
		t.Fatalf("expected not found")
	}
	if errors.Is(err, ErrConstraint) {
		t.Fatalf("not-found should not match constraint")
	}
	cause := errors.New("UNIQUE constraint failed")
	wrapped := &StoreError{Op: "add", Entity: EntityMember, ID: 1, Kind: ErrConstraint, Err: cause}
	if !errors.Is(wrapped, ErrConstraint) || !errors.Is(wrapped, cause) {
		t.Fatalf("store error should match kind and cause")
	}
	if !strings.Contains(wrapped.Error(), "UNIQUE") {
		t.Fatalf("message should carry the cause: %s", wrapped.Error())
	}
}
