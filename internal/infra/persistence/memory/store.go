// Package memory provides an in-memory record store used for tests and
// ephemeral environments. It has no schema, so every write re-runs the
// validation layer and reports failures as constraint violations.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"chocan/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.RecordStore = (*Store)(nil)

var (
	errClosed    = errors.New("store closed")
	errDuplicate = errors.New("duplicate id")
)

type memoryState struct {
	members       map[uint32]domain.Person
	providers     map[uint32]domain.Person
	services      map[uint32]domain.ServiceEntry
	consultations []domain.Consultation
}

func newMemoryState() memoryState {
	return memoryState{
		members:   make(map[uint32]domain.Person),
		providers: make(map[uint32]domain.Person),
		services:  make(map[uint32]domain.ServiceEntry),
	}
}

// Store is a mutex-guarded in-memory record store.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	closed bool
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{state: newMemoryState()}
}

func constraint(op string, entity domain.EntityType, id uint32, err error) error {
	return &domain.StoreError{Op: op, Entity: entity, ID: id, Kind: domain.ErrConstraint, Err: err}
}

func (s *Store) ready(op string, entity domain.EntityType, id uint32) error {
	if s.closed {
		return &domain.StoreError{Op: op, Entity: entity, ID: id, Kind: domain.ErrStorage, Err: errClosed}
	}
	return nil
}

func (s *Store) collection(entity domain.EntityType) map[uint32]domain.Person {
	if entity == domain.EntityProvider {
		return s.state.providers
	}
	return s.state.members
}

func (s *Store) addPerson(entity domain.EntityType, p domain.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready("add", entity, p.ID); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return constraint("add", entity, p.ID, err)
	}
	people := s.collection(entity)
	if _, exists := people[p.ID]; exists {
		return constraint("add", entity, p.ID, errDuplicate)
	}
	p.IsActive = true
	people[p.ID] = p
	return nil
}

func (s *Store) removePerson(entity domain.EntityType, id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready("remove", entity, id); err != nil {
		return err
	}
	people := s.collection(entity)
	if _, ok := people[id]; !ok {
		return domain.NotFound("remove", entity, id)
	}
	delete(people, id)
	return nil
}

func (s *Store) setActive(entity domain.EntityType, id uint32, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready("set active", entity, id); err != nil {
		return err
	}
	people := s.collection(entity)
	p, ok := people[id]
	if !ok {
		return domain.NotFound("set active", entity, id)
	}
	p.IsActive = active
	people[id] = p
	return nil
}

func (s *Store) getPerson(entity domain.EntityType, id uint32) (domain.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready("get", entity, id); err != nil {
		return domain.Person{}, err
	}
	p, ok := s.collection(entity)[id]
	if !ok {
		return domain.Person{}, domain.NotFound("get", entity, id)
	}
	return p, nil
}

func (s *Store) isActive(entity domain.EntityType, id uint32) (bool, error) {
	p, err := s.getPerson(entity, id)
	if domain.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.IsActive, nil
}

// AddMember stores p as an active member.
func (s *Store) AddMember(_ context.Context, p domain.Person) error {
	return s.addPerson(domain.EntityMember, p)
}

// RemoveMember deletes a member.
func (s *Store) RemoveMember(_ context.Context, id uint32) error {
	return s.removePerson(domain.EntityMember, id)
}

// SetMemberActive suspends or reinstates a member.
func (s *Store) SetMemberActive(_ context.Context, id uint32, active bool) error {
	return s.setActive(domain.EntityMember, id, active)
}

// GetMember returns a member by id.
func (s *Store) GetMember(_ context.Context, id uint32) (domain.Person, error) {
	return s.getPerson(domain.EntityMember, id)
}

// IsValidMemberID reports whether the member exists and is active.
func (s *Store) IsValidMemberID(_ context.Context, id uint32) (bool, error) {
	return s.isActive(domain.EntityMember, id)
}

// AddProvider stores p as an active provider.
func (s *Store) AddProvider(_ context.Context, p domain.Person) error {
	return s.addPerson(domain.EntityProvider, p)
}

// RemoveProvider deletes a provider.
func (s *Store) RemoveProvider(_ context.Context, id uint32) error {
	return s.removePerson(domain.EntityProvider, id)
}

// SetProviderActive suspends or reinstates a provider.
func (s *Store) SetProviderActive(_ context.Context, id uint32, active bool) error {
	return s.setActive(domain.EntityProvider, id, active)
}

// GetProvider returns a provider by id.
func (s *Store) GetProvider(_ context.Context, id uint32) (domain.Person, error) {
	return s.getPerson(domain.EntityProvider, id)
}

// IsValidProviderID reports whether the provider exists and is active.
func (s *Store) IsValidProviderID(_ context.Context, id uint32) (bool, error) {
	return s.isActive(domain.EntityProvider, id)
}

// AddService stores a directory entry.
func (s *Store) AddService(_ context.Context, id uint32, name string, fee float64) error {
	if name == "" {
		return &domain.StoreError{Op: "add", Entity: domain.EntityService, ID: id, Kind: domain.ErrEmptyInput}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready("add", domain.EntityService, id); err != nil {
		return err
	}
	entry, err := domain.NewServiceEntry(id, name, fee)
	if err != nil {
		return constraint("add", domain.EntityService, id, err)
	}
	if _, exists := s.state.services[id]; exists {
		return constraint("add", domain.EntityService, id, errDuplicate)
	}
	s.state.services[id] = entry
	return nil
}

// IsValidServiceID reports whether the service code exists.
func (s *Store) IsValidServiceID(ctx context.Context, id uint32) (bool, error) {
	_, err := s.GetService(ctx, id)
	if domain.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// GetService returns a directory entry by id.
func (s *Store) GetService(_ context.Context, id uint32) (domain.ServiceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready("get", domain.EntityService, id); err != nil {
		return domain.ServiceEntry{}, err
	}
	e, ok := s.state.services[id]
	if !ok {
		return domain.ServiceEntry{}, domain.NotFound("get", domain.EntityService, id)
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

// ListServices returns the directory ordered by name then id.
func (s *Store) ListServices(_ context.Context) ([]domain.ServiceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready("list", domain.EntityService, 0); err != nil {
		return nil, err
	}
	out := make([]domain.ServiceEntry, 0, len(s.state.services))
	for _, e := range s.state.services {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// AddConsultation appends a consultation record.
func (s *Store) AddConsultation(_ context.Context, c domain.Consultation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready("add", domain.EntityConsultation, c.MemberID); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return constraint("add", domain.EntityConsultation, c.MemberID, err)
	}
	s.state.consultations = append(s.state.consultations, c)
	return nil
}

// ListConsultations returns a copy of every record in insertion order.
func (s *Store) ListConsultations(_ context.Context) ([]domain.Consultation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready("list", domain.EntityConsultation, 0); err != nil {
		return nil, err
	}
	out := make([]domain.Consultation, len(s.state.consultations))
	copy(out, s.state.consultations)
	return out, nil
}

// Close marks the store closed; later calls fail with a storage error.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
