package submission

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// TimestampLayout is the ISO-8601 layout used for submitted_at.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// ID schemes accepted by NewIDGenerator.
const (
	SchemeUUID      = "uuid"
	SchemeNanoID    = "nanoid"
	SchemeTimestamp = "timestamp"
)

// IDGenerator produces the id stamped onto a submission accepted at t.
type IDGenerator interface {
	NewID(t time.Time) (string, error)
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func(t time.Time) (string, error)

func (f IDGeneratorFunc) NewID(t time.Time) (string, error) { return f(t) }

// NewIDGenerator returns the generator for scheme.
func NewIDGenerator(scheme string) (IDGenerator, error) {
	switch scheme {
	case SchemeUUID, "":
		return IDGeneratorFunc(uuidID), nil
	case SchemeNanoID:
		return IDGeneratorFunc(nanoID), nil
	case SchemeTimestamp:
		return IDGeneratorFunc(func(t time.Time) (string, error) { return TimestampID(t), nil }), nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q", scheme)
	}
}

// uuidID returns a UUIDv7, which is time ordered and does not collide
// within a microsecond.
func uuidID(time.Time) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}

func nanoID(time.Time) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return id, nil
}

// TimestampID formats t as YYYYMMDDhhmmss followed by six microsecond
// digits. Two submissions accepted within the same microsecond share an id.
func TimestampID(t time.Time) string {
	return t.Format("20060102150405") + fmt.Sprintf("%06d", t.Nanosecond()/int(time.Microsecond))
}

// ReservedPolicy decides what happens when a client sends id or submitted_at.
type ReservedPolicy string

const (
	// OverwriteReserved silently replaces client values with server values.
	OverwriteReserved ReservedPolicy = "overwrite"
	// RejectReserved fails the submission with a *ReservedFieldError.
	RejectReserved ReservedPolicy = "reject"
)

// ParseReservedPolicy validates a policy name; empty means overwrite.
func ParseReservedPolicy(s string) (ReservedPolicy, error) {
	switch ReservedPolicy(s) {
	case OverwriteReserved, "":
		return OverwriteReserved, nil
	case RejectReserved:
		return RejectReserved, nil
	default:
		return "", fmt.Errorf("unknown reserved field policy %q", s)
	}
}

// Stamper assigns id and submitted_at from a single clock reading.
type Stamper struct {
	ids    IDGenerator
	policy ReservedPolicy
	now    func() time.Time
}

// NewStamper builds a Stamper using the wall clock.
func NewStamper(ids IDGenerator, policy ReservedPolicy) *Stamper {
	return &Stamper{ids: ids, policy: policy, now: time.Now}
}

// WithClock returns a copy of s reading time from now.
func (s *Stamper) WithClock(now func() time.Time) *Stamper {
	c := *s
	c.now = now
	return &c
}

// Stamp sets the server-assigned fields on sub in place.
func (s *Stamper) Stamp(sub Submission) error {
	if s.policy == RejectReserved {
		for _, f := range ReservedFields {
			if _, ok := sub[f]; ok {
				return &ReservedFieldError{Field: f}
			}
		}
	}

	t := s.now()
	id, err := s.ids.NewID(t)
	if err != nil {
		return err
	}
	sub[FieldSubmittedAt] = t.Format(TimestampLayout)
	sub[FieldID] = id
	return nil
}
