package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chocan/internal/infra/persistence/memory"
	"chocan/pkg/domain"
)

// Gating failures returned by RecordConsultation.
var (
	ErrMemberIneligible   = errors.New("member is not active")
	ErrProviderIneligible = errors.New("provider is not active")
	ErrUnknownService     = errors.New("unknown service code")
)

// Service is the entry point for record maintenance. It wraps a RecordStore
// with tracing, metrics, audit and logging, and owns the consultation gate.
type Service struct {
	store domain.RecordStore
	opts  serviceOptions
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.RecordStore, opts ...ServiceOption) *Service {
	o := defaultServiceOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Service{store: store, opts: o}
}

// NewInMemoryService creates a service over a fresh in-memory store.
func NewInMemoryService(opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.RecordStore { return s.store }

// Close releases the store.
func (s *Service) Close() error { return s.store.Close() }

func (s *Service) run(ctx context.Context, op string, entity domain.EntityType, id uint32, mutating bool, fn func(context.Context) error) error {
	ctx, span := s.opts.tracer.Start(ctx, op)
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	span.End(err)
	s.opts.metrics.Observe(ctx, op, err == nil, elapsed)
	if mutating {
		entry := AuditEntry{
			Operation: op,
			Entity:    entity,
			EntityID:  id,
			Status:    AuditStatusSuccess,
			Duration:  elapsed,
			Timestamp: s.opts.clock.Now(),
		}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
		}
		s.opts.audit.Record(ctx, entry)
	}
	if err != nil {
		s.opts.logger.Error("chocan operation failed", "operation", op, "entity", string(entity), "id", id, "error", err)
		return err
	}
	s.opts.logger.Debug("chocan operation completed", "operation", op, "entity", string(entity), "id", id, "duration", elapsed)
	return nil
}

// AddMember stores a new, active member.
func (s *Service) AddMember(ctx context.Context, p domain.Person) error {
	return s.run(ctx, "add_member", domain.EntityMember, p.ID, true, func(ctx context.Context) error {
		return s.store.AddMember(ctx, p)
	})
}

// RemoveMember deletes a member.
func (s *Service) RemoveMember(ctx context.Context, id uint32) error {
	return s.run(ctx, "remove_member", domain.EntityMember, id, true, func(ctx context.Context) error {
		return s.store.RemoveMember(ctx, id)
	})
}

// SuspendMember marks a member inactive.
func (s *Service) SuspendMember(ctx context.Context, id uint32) error {
	return s.run(ctx, "suspend_member", domain.EntityMember, id, true, func(ctx context.Context) error {
		return s.store.SetMemberActive(ctx, id, false)
	})
}

// ReinstateMember marks a member active again.
func (s *Service) ReinstateMember(ctx context.Context, id uint32) error {
	return s.run(ctx, "reinstate_member", domain.EntityMember, id, true, func(ctx context.Context) error {
		return s.store.SetMemberActive(ctx, id, true)
	})
}

// ValidateMember reports whether id is an active member.
func (s *Service) ValidateMember(ctx context.Context, id uint32) (bool, error) {
	var ok bool
	err := s.run(ctx, "validate_member", domain.EntityMember, id, false, func(ctx context.Context) error {
		var err error
		ok, err = s.store.IsValidMemberID(ctx, id)
		return err
	})
	return ok, err
}

// GetMember loads a member.
func (s *Service) GetMember(ctx context.Context, id uint32) (domain.Person, error) {
	var p domain.Person
	err := s.run(ctx, "get_member", domain.EntityMember, id, false, func(ctx context.Context) error {
		var err error
		p, err = s.store.GetMember(ctx, id)
		return err
	})
	return p, err
}

// AddProvider stores a new, active provider.
func (s *Service) AddProvider(ctx context.Context, p domain.Person) error {
	return s.run(ctx, "add_provider", domain.EntityProvider, p.ID, true, func(ctx context.Context) error {
		return s.store.AddProvider(ctx, p)
	})
}

// RemoveProvider deletes a provider.
func (s *Service) RemoveProvider(ctx context.Context, id uint32) error {
	return s.run(ctx, "remove_provider", domain.EntityProvider, id, true, func(ctx context.Context) error {
		return s.store.RemoveProvider(ctx, id)
	})
}

// SuspendProvider marks a provider inactive.
func (s *Service) SuspendProvider(ctx context.Context, id uint32) error {
	return s.run(ctx, "suspend_provider", domain.EntityProvider, id, true, func(ctx context.Context) error {
		return s.store.SetProviderActive(ctx, id, false)
	})
}

// ReinstateProvider marks a provider active again.
func (s *Service) ReinstateProvider(ctx context.Context, id uint32) error {
	return s.run(ctx, "reinstate_provider", domain.EntityProvider, id, true, func(ctx context.Context) error {
		return s.store.SetProviderActive(ctx, id, true)
	})
}

// ValidateProvider reports whether id is an active provider.
func (s *Service) ValidateProvider(ctx context.Context, id uint32) (bool, error) {
	var ok bool
	err := s.run(ctx, "validate_provider", domain.EntityProvider, id, false, func(ctx context.Context) error {
		var err error
		ok, err = s.store.IsValidProviderID(ctx, id)
		return err
	})
	return ok, err
}

// GetProvider loads a provider.
func (s *Service) GetProvider(ctx context.Context, id uint32) (domain.Person, error) {
	var p domain.Person
	err := s.run(ctx, "get_provider", domain.EntityProvider, id, false, func(ctx context.Context) error {
		var err error
		p, err = s.store.GetProvider(ctx, id)
		return err
	})
	return p, err
}

// AddService adds a service directory entry.
func (s *Service) AddService(ctx context.Context, id uint32, name string, fee float64) error {
	return s.run(ctx, "add_service", domain.EntityService, id, true, func(ctx context.Context) error {
		return s.store.AddService(ctx, id, name, fee)
	})
}

// GetService loads a service directory entry.
func (s *Service) GetService(ctx context.Context, id uint32) (domain.ServiceEntry, error) {
	var e domain.ServiceEntry
	err := s.run(ctx, "get_service", domain.EntityService, id, false, func(ctx context.Context) error {
		var err error
		e, err = s.store.GetService(ctx, id)
		return err
	})
	return e, err
}

// ListServices returns the directory ordered by name.
func (s *Service) ListServices(ctx context.Context) ([]domain.ServiceEntry, error) {
	var out []domain.ServiceEntry
	err := s.run(ctx, "list_services", domain.EntityService, 0, false, func(ctx context.Context) error {
		var err error
		out, err = s.store.ListServices(ctx)
		return err
	})
	return out, err
}

// ListConsultations returns the consultation log in insertion order.
func (s *Service) ListConsultations(ctx context.Context) ([]domain.Consultation, error) {
	var out []domain.Consultation
	err := s.run(ctx, "list_consultations", domain.EntityConsultation, 0, false, func(ctx context.Context) error {
		var err error
		out, err = s.store.ListConsultations(ctx)
		return err
	})
	return out, err
}

// ConsultationRequest is the caller-supplied part of a consultation; the
// capture time is stamped by the service clock.
type ConsultationRequest struct {
	ServiceDate string
	ProviderID  uint32
	MemberID    uint32
	ServiceCode uint32
	Comments    string
}

// RecordConsultation gates a consultation on an active provider, an active
// member and a known service code, stamps the capture time, validates the
// record and appends it.
func (s *Service) RecordConsultation(ctx context.Context, req ConsultationRequest) (domain.Consultation, error) {
	var recorded domain.Consultation
	err := s.run(ctx, "record_consultation", domain.EntityConsultation, req.MemberID, true, func(ctx context.Context) error {
		ok, err := s.store.IsValidProviderID(ctx, req.ProviderID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d", ErrProviderIneligible, req.ProviderID)
		}
		if ok, err = s.store.IsValidMemberID(ctx, req.MemberID); err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d", ErrMemberIneligible, req.MemberID)
		}
		if ok, err = s.store.IsValidServiceID(ctx, req.ServiceCode); err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownService, req.ServiceCode)
		}
		c, err := domain.NewConsultation(
			domain.FormatCapturedAt(s.opts.clock.Now()),
			req.ServiceDate, req.ProviderID, req.MemberID, req.ServiceCode, req.Comments)
		if err != nil {
			return err
		}
		if err := s.store.AddConsultation(ctx, c); err != nil {
			return err
		}
		recorded = c
		return nil
	})
	return recorded, err
}
