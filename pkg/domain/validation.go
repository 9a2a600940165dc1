package domain

import (
	"math"
	"strings"
	"unicode/utf8"
)

func charCount(s string) int { return utf8.RuneCountInString(s) }

// NewLocation validates and builds a Location.
func NewLocation(address, city, state string, zipcode uint32) (Location, error) {
	if charCount(address) > MaxAddressLength {
		return Location{}, &ValidationError{Entity: EntityLocation, Field: "address", Limit: "at most 25 characters", Value: address}
	}
	if charCount(city) > MaxCityLength {
		return Location{}, &ValidationError{Entity: EntityLocation, Field: "city", Limit: "at most 14 characters", Value: city}
	}
	if charCount(state) != StateLength {
		return Location{}, &ValidationError{Entity: EntityLocation, Field: "state", Limit: "exactly 2 characters", Value: state}
	}
	if zipcode > MaxZipcode {
		return Location{}, &ValidationError{Entity: EntityLocation, Field: "zipcode", Limit: "at most 99999", Value: zipcode}
	}
	return Location{Address: address, City: city, State: state, Zipcode: zipcode}, nil
}

// NewPerson validates and builds an active Person. The same constructor serves
// members and providers; id 0 is accepted.
func NewPerson(name string, id uint32, location Location, email string) (Person, error) {
	if id > MaxPersonID {
		return Person{}, &ValidationError{Entity: "person", Field: "id", Limit: "at most 999999999", Value: id}
	}
	if charCount(name) > MaxNameLength {
		return Person{}, &ValidationError{Entity: "person", Field: "name", Limit: "at most 25 characters", Value: name}
	}
	if !strings.Contains(email, "@") {
		return Person{}, &ValidationError{Entity: "person", Field: "email", Limit: "an address containing '@'", Value: email}
	}
	if _, err := NewLocation(location.Address, location.City, location.State, location.Zipcode); err != nil {
		return Person{}, err
	}
	return Person{ID: id, Name: name, Location: location, Email: email, IsActive: true}, nil
}

// NewServiceEntry validates and builds a service directory entry.
func NewServiceEntry(id uint32, name string, fee float64) (ServiceEntry, error) {
	if id > MaxServiceCode {
		return ServiceEntry{}, &ValidationError{Entity: EntityService, Field: "service_id", Limit: "at most 999999", Value: id}
	}
	if name == "" {
		return ServiceEntry{}, &ValidationError{Entity: EntityService, Field: "name", Limit: "non-empty", Value: name, Kind: ErrEmptyInput}
	}
	if fee < 0 || math.IsNaN(fee) || math.IsInf(fee, 0) {
		return ServiceEntry{}, &ValidationError{Entity: EntityService, Field: "fee", Limit: "a finite non-negative amount", Value: fee}
	}
	return ServiceEntry{ID: id, Name: name, Fee: fee}, nil
}

// NewConsultation validates and builds a Consultation. Checks run in a fixed
// order and the first failure is reported.
func NewConsultation(capturedAt, serviceDate string, providerID, memberID, serviceCode uint32, comments string) (Consultation, error) {
	if charCount(capturedAt) != CapturedAtLength {
		return Consultation{}, &ValidationError{Entity: EntityConsultation, Field: "current_date_time", Limit: "exactly 19 characters", Value: capturedAt}
	}
	if charCount(serviceDate) != ServiceDateLength {
		return Consultation{}, &ValidationError{Entity: EntityConsultation, Field: "service_date", Limit: "exactly 10 characters", Value: serviceDate}
	}
	if !serviceDatePattern.MatchString(serviceDate) {
		return Consultation{}, &ValidationError{Entity: EntityConsultation, Field: "service_date", Limit: "in MM-DD-YYYY format", Value: serviceDate}
	}
	if providerID > MaxPersonID {
		return Consultation{}, &ValidationError{Entity: EntityConsultation, Field: "provider_id", Limit: "at most 999999999", Value: providerID}
	}
	if memberID > MaxPersonID {
		return Consultation{}, &ValidationError{Entity: EntityConsultation, Field: "member_id", Limit: "at most 999999999", Value: memberID}
	}
	if serviceCode > MaxServiceCode {
		return Consultation{}, &ValidationError{Entity: EntityConsultation, Field: "service_code", Limit: "at most 999999", Value: serviceCode}
	}
	if charCount(comments) >= MaxCommentLength {
		return Consultation{}, &ValidationError{Entity: EntityConsultation, Field: "comments", Limit: "fewer than 100 characters", Value: comments}
	}
	return Consultation{
		CapturedAt:  capturedAt,
		ServiceDate: serviceDate,
		ProviderID:  providerID,
		MemberID:    memberID,
		ServiceCode: serviceCode,
		Comments:    comments,
	}, nil
}

// Validate re-runs the person rules against an existing value. Backends
// without schema constraints call it at write time.
func (p Person) Validate() error {
	_, err := NewPerson(p.Name, p.ID, p.Location, p.Email)
	return err
}

// Validate re-runs the consultation rules against an existing value.
func (c Consultation) Validate() error {
	_, err := NewConsultation(c.CapturedAt, c.ServiceDate, c.ProviderID, c.MemberID, c.ServiceCode, c.Comments)
	return err
}

// Validate re-runs the directory entry rules against an existing value.
func (s ServiceEntry) Validate() error {
	_, err := NewServiceEntry(s.ID, s.Name, s.Fee)
	return err
}
