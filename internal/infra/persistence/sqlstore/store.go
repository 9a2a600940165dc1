// Package sqlstore implements domain.RecordStore over database/sql. The
// sqlite and postgres backends share it and differ only in their Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"chocan/pkg/domain"
)

var _ domain.RecordStore = (*Store)(nil)

// Dialect captures the driver-specific pieces of the store.
type Dialect struct {
	Name string
	// Rebind rewrites '?' placeholders for drivers that need another form.
	Rebind func(query string) string
	// IsConstraint reports whether a driver error is a constraint violation.
	IsConstraint func(err error) bool
	// NameCollation is appended to the directory sort so every backend
	// orders names bytewise, e.g. ` COLLATE "C"`.
	NameCollation string
}

// DollarRebind rewrites '?' placeholders as $1, $2, ...
func DollarRebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Store is a database/sql backed record store.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an already migrated database.
func New(db *sql.DB, dialect Dialect) *Store {
	if dialect.Rebind == nil {
		dialect.Rebind = func(q string) string { return q }
	}
	if dialect.IsConstraint == nil {
		dialect.IsConstraint = func(error) bool { return false }
	}
	return &Store{db: db, dialect: dialect}
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) q(query string) string { return s.dialect.Rebind(query) }

func (s *Store) fail(op string, entity domain.EntityType, id uint32, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(op, entity, id)
	}
	kind := domain.ErrStorage
	if s.dialect.IsConstraint(err) {
		kind = domain.ErrConstraint
	}
	return &domain.StoreError{Op: op, Entity: entity, ID: id, Kind: kind, Err: err}
}

type personTable struct {
	name   string
	entity domain.EntityType
}

var (
	membersTable   = personTable{name: "members", entity: domain.EntityMember}
	providersTable = personTable{name: "providers", entity: domain.EntityProvider}
)

func (s *Store) addPerson(ctx context.Context, t personTable, p domain.Person) error {
	query := fmt.Sprintf(`INSERT INTO %s (id, name, address, city, state, zipcode, email, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, t.name)
	_, err := s.db.ExecContext(ctx, s.q(query),
		int64(p.ID), p.Name, p.Location.Address, p.Location.City, p.Location.State,
		int64(p.Location.Zipcode), p.Email, true)
	if err != nil {
		return s.fail("add", t.entity, p.ID, err)
	}
	return nil
}

func (s *Store) removePerson(ctx context.Context, t personTable, id uint32) error {
	res, err := s.db.ExecContext(ctx, s.q(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t.name)), int64(id))
	return s.expectRow(res, err, "remove", t.entity, id)
}

func (s *Store) setActive(ctx context.Context, t personTable, id uint32, active bool) error {
	res, err := s.db.ExecContext(ctx, s.q(fmt.Sprintf(`UPDATE %s SET is_active = ? WHERE id = ?`, t.name)), active, int64(id))
	return s.expectRow(res, err, "set active", t.entity, id)
}

func (s *Store) expectRow(res sql.Result, err error, op string, entity domain.EntityType, id uint32) error {
	if err != nil {
		return s.fail(op, entity, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.fail(op, entity, id, err)
	}
	if n == 0 {
		return domain.NotFound(op, entity, id)
	}
	return nil
}

func (s *Store) getPerson(ctx context.Context, t personTable, id uint32) (domain.Person, error) {
	query := fmt.Sprintf(`SELECT id, name, address, city, state, zipcode, email, is_active FROM %s WHERE id = ?`, t.name)
	var p domain.Person
	err := s.db.QueryRowContext(ctx, s.q(query), int64(id)).Scan(
		&p.ID, &p.Name, &p.Location.Address, &p.Location.City, &p.Location.State,
		&p.Location.Zipcode, &p.Email, &p.IsActive)
	if err != nil {
		return domain.Person{}, s.fail("get", t.entity, id, err)
	}
	return p, nil
}

func (s *Store) isActive(ctx context.Context, t personTable, id uint32) (bool, error) {
	var active bool
	err := s.db.QueryRowContext(ctx, s.q(fmt.Sprintf(`SELECT is_active FROM %s WHERE id = ?`, t.name)), int64(id)).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, s.fail("validate", t.entity, id, err)
	}
	return active, nil
}

// AddMember inserts p into the member collection as active.
func (s *Store) AddMember(ctx context.Context, p domain.Person) error {
	return s.addPerson(ctx, membersTable, p)
}

// RemoveMember deletes a member; an absent id is a not-found error.
func (s *Store) RemoveMember(ctx context.Context, id uint32) error {
	return s.removePerson(ctx, membersTable, id)
}

// SetMemberActive suspends or reinstates a member.
func (s *Store) SetMemberActive(ctx context.Context, id uint32, active bool) error {
	return s.setActive(ctx, membersTable, id, active)
}

// GetMember loads a member by id.
func (s *Store) GetMember(ctx context.Context, id uint32) (domain.Person, error) {
	return s.getPerson(ctx, membersTable, id)
}

// IsValidMemberID reports whether the member exists and is active.
func (s *Store) IsValidMemberID(ctx context.Context, id uint32) (bool, error) {
	return s.isActive(ctx, membersTable, id)
}

// AddProvider inserts p into the provider collection as active.
func (s *Store) AddProvider(ctx context.Context, p domain.Person) error {
	return s.addPerson(ctx, providersTable, p)
}

// RemoveProvider deletes a provider; an absent id is a not-found error.
func (s *Store) RemoveProvider(ctx context.Context, id uint32) error {
	return s.removePerson(ctx, providersTable, id)
}

// SetProviderActive suspends or reinstates a provider.
func (s *Store) SetProviderActive(ctx context.Context, id uint32, active bool) error {
	return s.setActive(ctx, providersTable, id, active)
}

// GetProvider loads a provider by id.
func (s *Store) GetProvider(ctx context.Context, id uint32) (domain.Person, error) {
	return s.getPerson(ctx, providersTable, id)
}

// IsValidProviderID reports whether the provider exists and is active.
func (s *Store) IsValidProviderID(ctx context.Context, id uint32) (bool, error) {
	return s.isActive(ctx, providersTable, id)
}

// AddService inserts a directory entry. An empty name is rejected before the
// database is touched.
func (s *Store) AddService(ctx context.Context, id uint32, name string, fee float64) error {
	if name == "" {
		return &domain.StoreError{Op: "add", Entity: domain.EntityService, ID: id, Kind: domain.ErrEmptyInput}
	}
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO provider_directory (service_id, name, fee) VALUES (?, ?, ?)`),
		int64(id), name, fee)
	if err != nil {
		return s.fail("add", domain.EntityService, id, err)
	}
	return nil
}

// IsValidServiceID reports whether the service code exists.
func (s *Store) IsValidServiceID(ctx context.Context, id uint32) (bool, error) {
	if _, err := s.GetService(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetService loads a directory entry by id.
func (s *Store) GetService(ctx context.Context, id uint32) (domain.ServiceEntry, error) {
	var e domain.ServiceEntry
	err := s.db.QueryRowContext(ctx, s.q(`SELECT service_id, name, fee FROM provider_directory WHERE service_id = ?`), int64(id)).
		Scan(&e.ID, &e.Name, &e.Fee)
	if err != nil {
		return domain.ServiceEntry{}, s.fail("get", domain.EntityService, id, err)
	}
	return e, nil
}

// GetServiceName returns the display name of a service.
func (s *Store) GetServiceName(ctx context.Context, id uint32) (string, error) {
	e, err := s.GetService(ctx, id)
	return e.Name, err
}

// GetServiceFee returns the fee of a service.
func (s *Store) GetServiceFee(ctx context.Context, id uint32) (float64, error) {
	e, err := s.GetService(ctx, id)
	return e.Fee, err
}

// ListServices returns the directory ordered bytewise by name, then id.
func (s *Store) ListServices(ctx context.Context) ([]domain.ServiceEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT service_id, name, fee FROM provider_directory ORDER BY name`+s.dialect.NameCollation+`, service_id`)
	if err != nil {
		return nil, s.fail("list", domain.EntityService, 0, err)
	}
	defer func() { _ = rows.Close() }()
	var out []domain.ServiceEntry
	for rows.Next() {
		var e domain.ServiceEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Fee); err != nil {
			return nil, s.fail("list", domain.EntityService, 0, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list", domain.EntityService, 0, err)
	}
	return out, nil
}

// AddConsultation appends a consultation record.
func (s *Store) AddConsultation(ctx context.Context, c domain.Consultation) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO consultations
		(current_date_time, service_date, provider_id, member_id, service_code, comments)
		VALUES (?, ?, ?, ?, ?, ?)`),
		c.CapturedAt, c.ServiceDate, int64(c.ProviderID), int64(c.MemberID), int64(c.ServiceCode), c.Comments)
	if err != nil {
		return s.fail("add", domain.EntityConsultation, c.MemberID, err)
	}
	return nil
}

// ListConsultations returns every record in insertion order.
func (s *Store) ListConsultations(ctx context.Context) ([]domain.Consultation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT current_date_time, service_date, provider_id, member_id, service_code, comments
		FROM consultations ORDER BY seq`)
	if err != nil {
		return nil, s.fail("list", domain.EntityConsultation, 0, err)
	}
	defer func() { _ = rows.Close() }()
	var out []domain.Consultation
	for rows.Next() {
		var c domain.Consultation
		if err := rows.Scan(&c.CapturedAt, &c.ServiceDate, &c.ProviderID, &c.MemberID, &c.ServiceCode, &c.Comments); err != nil {
			return nil, s.fail("list", domain.EntityConsultation, 0, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list", domain.EntityConsultation, 0, err)
	}
	return out, nil
}
