package testutil

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chocan/pkg/domain"
)

// Fixture data shared by store and report tests.
var (
	FixtureLocation = domain.Location{Address: "1234 Main St", City: "Portland", State: "OR", Zipcode: 97201}
)

// Person builds a person without running the constructors so tests can feed
// stores values the validation layer would reject.
func Person(id uint32, name string) domain.Person {
	return domain.Person{ID: id, Name: name, Location: FixtureLocation, Email: strings.ToLower(strings.ReplaceAll(name, " ", "")) + "@example.com", IsActive: true}
}

// RunRecordStoreContract exercises the behaviour every domain.RecordStore must
// share. open returns a fresh, empty store; the contract closes it.
func RunRecordStoreContract(t *testing.T, open func(t *testing.T) domain.RecordStore) {
	t.Helper()
	ctx := context.Background()

	fresh := func(t *testing.T) domain.RecordStore {
		t.Helper()
		s := open(t)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	t.Run("person round trip", func(t *testing.T) {
		s := fresh(t)
		m := Person(1, "Member One")
		m.Name = strings.Repeat("é", domain.MaxNameLength)
		if err := s.AddMember(ctx, m); err != nil {
			t.Fatalf("add member: %v", err)
		}
		got, err := s.GetMember(ctx, 1)
		if err != nil {
			t.Fatalf("get member: %v", err)
		}
		if got != m {
			t.Fatalf("member mismatch:\nwant %+v\ngot  %+v", m, got)
		}
		p := Person(1, "Provider One")
		if err := s.AddProvider(ctx, p); err != nil {
			t.Fatalf("same id as provider should be allowed: %v", err)
		}
		gotP, err := s.GetProvider(ctx, 1)
		if err != nil || gotP != p {
			t.Fatalf("provider mismatch: %+v %v", gotP, err)
		}
		zero := Person(0, "Zero")
		if err := s.AddMember(ctx, zero); err != nil {
			t.Fatalf("id 0 rejected: %v", err)
		}
	})

	t.Run("stored active regardless of input flag", func(t *testing.T) {
		s := fresh(t)
		m := Person(5, "Inactive Input")
		m.IsActive = false
		if err := s.AddMember(ctx, m); err != nil {
			t.Fatalf("add: %v", err)
		}
		ok, err := s.IsValidMemberID(ctx, 5)
		if err != nil || !ok {
			t.Fatalf("expected active member, got %v %v", ok, err)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		s := fresh(t)
		first := Person(2, "First")
		if err := s.AddMember(ctx, first); err != nil {
			t.Fatalf("add: %v", err)
		}
		err := s.AddMember(ctx, Person(2, "Second"))
		if !errors.Is(err, domain.ErrConstraint) {
			t.Fatalf("expected constraint error, got %v", err)
		}
		got, err := s.GetMember(ctx, 2)
		if err != nil || got.Name != "First" {
			t.Fatalf("failed insert leaked state: %+v %v", got, err)
		}
	})

	t.Run("field constraints at the boundary", func(t *testing.T) {
		s := fresh(t)
		bad := []domain.Person{
			func() domain.Person { p := Person(10, "x"); p.Name = strings.Repeat("n", domain.MaxNameLength+1); return p }(),
			func() domain.Person { p := Person(11, "x"); p.Location.State = "ORE"; return p }(),
			func() domain.Person { p := Person(12, "x"); p.Location.City = strings.Repeat("c", domain.MaxCityLength+1); return p }(),
			func() domain.Person { p := Person(13, "x"); p.Email = "nobody"; return p }(),
			func() domain.Person { p := Person(14, "x"); p.Location.Zipcode = domain.MaxZipcode + 1; return p }(),
			Person(domain.MaxPersonID+1, "x"),
		}
		for _, p := range bad {
			if err := s.AddProvider(ctx, p); !errors.Is(err, domain.ErrConstraint) {
				t.Fatalf("expected constraint error for %+v, got %v", p, err)
			}
		}
		badConsultations := []domain.Consultation{
			{CapturedAt: "01-13-2025 10:00:00", ServiceDate: "13-01-2025", ProviderID: 1, MemberID: 1, ServiceCode: 1},
			{CapturedAt: "01-13-2025 10:00:00", ServiceDate: "01-13-2025", ProviderID: 1, MemberID: 1, ServiceCode: 1, Comments: strings.Repeat("c", domain.MaxCommentLength)},
			{CapturedAt: "01-13-2025", ServiceDate: "01-13-2025", ProviderID: 1, MemberID: 1, ServiceCode: 1},
			{CapturedAt: "01-13-2025 10:00:00", ServiceDate: "01-13-2025", ProviderID: 1, MemberID: 1, ServiceCode: domain.MaxServiceCode + 1},
		}
		for _, c := range badConsultations {
			if err := s.AddConsultation(ctx, c); !errors.Is(err, domain.ErrConstraint) {
				t.Fatalf("expected constraint error for %+v, got %v", c, err)
			}
		}
		list, err := s.ListConsultations(ctx)
		if err != nil || len(list) != 0 {
			t.Fatalf("rejected consultations were stored: %v %v", list, err)
		}
	})

	t.Run("remove", func(t *testing.T) {
		s := fresh(t)
		if err := s.RemoveMember(ctx, 555000111); !domain.IsNotFound(err) {
			t.Fatalf("expected not found removing absent member, got %v", err)
		}
		if err := s.RemoveProvider(ctx, 555000111); !domain.IsNotFound(err) {
			t.Fatalf("expected not found removing absent provider, got %v", err)
		}
		if err := s.AddMember(ctx, Person(3, "Removable")); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := s.RemoveMember(ctx, 3); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if _, err := s.GetMember(ctx, 3); !domain.IsNotFound(err) {
			t.Fatalf("expected not found after removal, got %v", err)
		}
		if ok, err := s.IsValidMemberID(ctx, 3); err != nil || ok {
			t.Fatalf("removed member still valid: %v %v", ok, err)
		}
	})

	t.Run("suspend and reinstate", func(t *testing.T) {
		s := fresh(t)
		if err := s.AddProvider(ctx, Person(61, "Provider")); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := s.SetProviderActive(ctx, 61, false); err != nil {
			t.Fatalf("suspend: %v", err)
		}
		if ok, _ := s.IsValidProviderID(ctx, 61); ok {
			t.Fatalf("suspended provider still valid")
		}
		got, err := s.GetProvider(ctx, 61)
		if err != nil || got.IsActive {
			t.Fatalf("expected stored inactive flag: %+v %v", got, err)
		}
		if err := s.SetProviderActive(ctx, 61, true); err != nil {
			t.Fatalf("reinstate: %v", err)
		}
		if ok, _ := s.IsValidProviderID(ctx, 61); !ok {
			t.Fatalf("reinstated provider not valid")
		}
		if err := s.SetMemberActive(ctx, 999, true); !domain.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
		if ok, err := s.IsValidMemberID(ctx, 999); err != nil || ok {
			t.Fatalf("absent member reported valid: %v %v", ok, err)
		}
	})

	t.Run("service directory", func(t *testing.T) {
		s := fresh(t)
		if err := s.AddService(ctx, 1, "", 10); !errors.Is(err, domain.ErrEmptyInput) {
			t.Fatalf("expected empty input, got %v", err)
		}
		if ok, _ := s.IsValidServiceID(ctx, 1); ok {
			t.Fatalf("empty-name service was stored")
		}
		if err := s.AddService(ctx, 123456, "ServiceName123456", 99.99); err != nil {
			t.Fatalf("add service: %v", err)
		}
		if err := s.AddService(ctx, 123456, "Other", 1); !errors.Is(err, domain.ErrConstraint) {
			t.Fatalf("expected duplicate constraint, got %v", err)
		}
		if err := s.AddService(ctx, 7, "Negative", -1); !errors.Is(err, domain.ErrConstraint) {
			t.Fatalf("expected fee constraint, got %v", err)
		}
		name, err := s.GetServiceName(ctx, 123456)
		if err != nil || name != "ServiceName123456" {
			t.Fatalf("service name: %q %v", name, err)
		}
		fee, err := s.GetServiceFee(ctx, 123456)
		if err != nil || fee != 99.99 {
			t.Fatalf("service fee: %v %v", fee, err)
		}
		if _, err := s.GetServiceName(ctx, 42); !domain.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
		if ok, err := s.IsValidServiceID(ctx, 123456); err != nil || !ok {
			t.Fatalf("expected valid service: %v %v", ok, err)
		}
		for _, e := range []domain.ServiceEntry{{ID: 3, Name: "Alpha", Fee: 1}, {ID: 2, Name: "Alpha", Fee: 2}, {ID: 1, Name: "Zeta", Fee: 3}, {ID: 4, Name: "alpha", Fee: 4}} {
			if err := s.AddService(ctx, e.ID, e.Name, e.Fee); err != nil {
				t.Fatalf("add %v: %v", e, err)
			}
		}
		list, err := s.ListServices(ctx)
		if err != nil {
			t.Fatalf("list services: %v", err)
		}
		// Bytewise: upper case sorts before lower case.
		want := []uint32{2, 3, 123456, 1, 4}
		if len(list) != len(want) {
			t.Fatalf("expected %d services, got %d", len(want), len(list))
		}
		for i, id := range want {
			if list[i].ID != id {
				t.Fatalf("position %d: want id %d, got %+v", i, id, list)
			}
		}
	})

	t.Run("consultations append in order", func(t *testing.T) {
		s := fresh(t)
		in := []domain.Consultation{
			{CapturedAt: "01-20-2025 09:00:00", ServiceDate: "01-19-2025", ProviderID: 61, MemberID: 1, ServiceCode: 123456, Comments: "first"},
			{CapturedAt: "01-20-2025 09:05:00", ServiceDate: "01-02-2025", ProviderID: 62, MemberID: 2, ServiceCode: 123456},
			{CapturedAt: "01-20-2025 09:10:00", ServiceDate: "01-19-2025", ProviderID: 404, MemberID: 404, ServiceCode: 0, Comments: strings.Repeat("c", domain.MaxCommentLength-1)},
		}
		for _, c := range in {
			if err := s.AddConsultation(ctx, c); err != nil {
				t.Fatalf("add consultation: %v", err)
			}
		}
		got, err := s.ListConsultations(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != len(in) {
			t.Fatalf("expected %d consultations, got %d", len(in), len(got))
		}
		for i := range in {
			if got[i] != in[i] {
				t.Fatalf("record %d mismatch:\nwant %+v\ngot  %+v", i, in[i], got[i])
			}
		}
	})
}
