package domain

import "context"

// MemberRegistry covers the member collection.
type MemberRegistry interface {
	AddMember(ctx context.Context, p Person) error
	RemoveMember(ctx context.Context, id uint32) error
	SetMemberActive(ctx context.Context, id uint32, active bool) error
	GetMember(ctx context.Context, id uint32) (Person, error)
	IsValidMemberID(ctx context.Context, id uint32) (bool, error)
}

// ProviderRegistry covers the provider collection. Providers and members are
// separate namespaces.
type ProviderRegistry interface {
	AddProvider(ctx context.Context, p Person) error
	RemoveProvider(ctx context.Context, id uint32) error
	SetProviderActive(ctx context.Context, id uint32, active bool) error
	GetProvider(ctx context.Context, id uint32) (Person, error)
	IsValidProviderID(ctx context.Context, id uint32) (bool, error)
}

// ServiceDirectory covers the service catalog. Entries are add-only.
type ServiceDirectory interface {
	AddService(ctx context.Context, id uint32, name string, fee float64) error
	IsValidServiceID(ctx context.Context, id uint32) (bool, error)
	GetService(ctx context.Context, id uint32) (ServiceEntry, error)
	GetServiceName(ctx context.Context, id uint32) (string, error)
	GetServiceFee(ctx context.Context, id uint32) (float64, error)
	// ListServices returns the directory ordered by name, ties broken by id.
	ListServices(ctx context.Context) ([]ServiceEntry, error)
}

// ConsultationLog is the append-only consultation collection.
type ConsultationLog interface {
	AddConsultation(ctx context.Context, c Consultation) error
	// ListConsultations returns every record in insertion order.
	ListConsultations(ctx context.Context) ([]Consultation, error)
}

// RecordStore is the durable, constraint-checked store for the four ChocAn
// collections. Implementations enforce field constraints themselves so that
// bypassing the constructors cannot corrupt stored data. Errors are
// *StoreError values classified as ErrStorage, ErrConstraint, ErrNotFound or
// ErrEmptyInput.
type RecordStore interface {
	MemberRegistry
	ProviderRegistry
	ServiceDirectory
	ConsultationLog
	Close() error
}

// ReportSource is the read-only view the report engine needs.
type ReportSource interface {
	GetMember(ctx context.Context, id uint32) (Person, error)
	GetProvider(ctx context.Context, id uint32) (Person, error)
	GetService(ctx context.Context, id uint32) (ServiceEntry, error)
	ListConsultations(ctx context.Context) ([]Consultation, error)
	ListServices(ctx context.Context) ([]ServiceEntry, error)
}
