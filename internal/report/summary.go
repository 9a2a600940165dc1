package report

import (
	"fmt"
	"strings"

	"chocan/pkg/domain"
)

// Policy decides what a run does when a consultation references a member,
// provider or service that cannot be loaded.
type Policy int

const (
	// FailFast aborts the run on the first failed lookup. Nothing is delivered.
	FailFast Policy = iota
	// SkipAndLog logs the failed record, leaves it out and carries on.
	SkipAndLog
)

func (p Policy) String() string {
	switch p {
	case FailFast:
		return "fail_fast"
	case SkipAndLog:
		return "skip_and_log"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy accepts fail_fast or skip_and_log (case and dash insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "", "fail_fast":
		return FailFast, nil
	case "skip_and_log":
		return SkipAndLog, nil
	default:
		return FailFast, fmt.Errorf("unknown missing-reference policy %q", s)
	}
}

// Delivered identifies a document the sink accepted.
type Delivered struct {
	To          string
	RecipientID uint32
	Subject     string
}

// Skipped is a consultation left out under SkipAndLog.
type Skipped struct {
	Consultation domain.Consultation
	Err          error
}

// Summary describes one report run.
type Summary struct {
	Category Category
	// Scanned counts consultations (or directory entries) read from the store.
	Scanned int
	// Stale counts consultations dropped by the recency window.
	Stale     int
	Skipped   []Skipped
	Delivered []Delivered
	Failed    []*DeliveryError
}

// Documents is the number of documents handed to the sink.
func (s Summary) Documents() int { return len(s.Delivered) + len(s.Failed) }

// DeliveryError records a document the sink rejected.
type DeliveryError struct {
	Category    Category
	To          string
	RecipientID uint32
	Err         error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s report to %s (id %d): %v", e.Category, e.To, e.RecipientID, e.Err)
}

// Is matches domain.ErrDelivery.
func (e *DeliveryError) Is(target error) bool { return target == domain.ErrDelivery }

func (e *DeliveryError) Unwrap() error { return e.Err }
