// Package domain defines the ChocAn record types, the validation rules that
// guard their construction, and the persistence contract implemented by the
// storage backends.
package domain

// EntityType identifies the kind of record a store operation touched.
type EntityType string

// Supported entity type identifiers used in errors and persistence buckets.
const (
	// EntityMember identifies a plan member record.
	EntityMember EntityType = "member"
	// EntityProvider identifies a service provider record.
	EntityProvider EntityType = "provider"
	// EntityService identifies a service directory entry.
	EntityService EntityType = "service"
	// EntityConsultation identifies a consultation record.
	EntityConsultation EntityType = "consultation"
	// EntityLocation identifies the location embedded in a person.
	EntityLocation EntityType = "location"
)

// Field and identifier bounds shared by validation and the storage schema.
const (
	MaxNameLength    = 25
	MaxPersonID      = 999_999_999 // 9 digits
	MaxAddressLength = 25
	MaxCityLength    = 14
	StateLength      = 2
	MaxZipcode       = 99_999 // 5 digits

	CapturedAtLength  = 19 // MM-DD-YYYY HH:MM:SS
	ServiceDateLength = 10 // MM-DD-YYYY
	MaxServiceCode    = 999_999 // 6 digits
	// MaxCommentLength is exclusive: comments must be strictly shorter.
	MaxCommentLength = 100
)

// Location is the postal address embedded in a Person.
type Location struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode uint32 `json:"zipcode"`
}

// Person is a member or a provider. The role is decided by the collection the
// record is stored in; the same ID may exist in both.
type Person struct {
	ID       uint32   `json:"id"`
	Name     string   `json:"name"`
	Location Location `json:"location"`
	Email    string   `json:"email"`
	IsActive bool     `json:"is_active"`
}

// ServiceEntry is one row of the provider (service) directory.
type ServiceEntry struct {
	ID   uint32  `json:"service_id"`
	Name string  `json:"name"`
	Fee  float64 `json:"fee"`
}

// Consultation is one billable service event. Records are append-only.
type Consultation struct {
	// CapturedAt is the moment the record was entered, MM-DD-YYYY HH:MM:SS.
	CapturedAt  string `json:"current_date_time"`
	ServiceDate string `json:"service_date"`
	ProviderID  uint32 `json:"provider_id"`
	MemberID    uint32 `json:"member_id"`
	ServiceCode uint32 `json:"service_code"`
	Comments    string `json:"comments"`
}
