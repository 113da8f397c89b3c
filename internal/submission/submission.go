// Package submission defines the lead-capture record and the rules for
// turning a raw request body into a stamped, storable submission.
package submission

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// Server-assigned and well-known field names.
const (
	FieldID          = "id"
	FieldSubmittedAt = "submitted_at"
	FieldName        = "name"
)

// UnknownSubmitter is used in logs when a submission carries no name.
const UnknownSubmitter = "Unknown"

// ReservedFields are the keys the server always assigns itself.
var ReservedFields = []string{FieldSubmittedAt, FieldID}

var (
	// ErrInvalidJSON is returned when a body is not a single valid JSON value.
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrNotObject is returned when a body is valid JSON but not an object.
	ErrNotObject = errors.New("submission is not a JSON object")
	// ErrReservedField matches any *ReservedFieldError.
	ErrReservedField = errors.New("reserved field")
)

// ReservedFieldError reports a client attempt to set a server-assigned field.
type ReservedFieldError struct {
	Field string
}

func (e *ReservedFieldError) Error() string {
	return fmt.Sprintf("reserved field %q set by client", e.Field)
}

func (e *ReservedFieldError) Is(target error) bool {
	return target == ErrReservedField
}

// Submission is one enquiry: arbitrary client fields plus the stamped
// id and submitted_at.
type Submission map[string]any

// Name returns the submitter name for logging, or UnknownSubmitter.
func (s Submission) Name() string {
	v, ok := s[FieldName]
	if !ok || v == nil {
		return UnknownSubmitter
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// ID returns the stamped id, or "" before stamping.
func (s Submission) ID() string {
	id, _ := s[FieldID].(string)
	return id
}

// Decode parses a request body into a Submission. The body must be valid
// UTF-8 holding exactly one JSON object; numbers are kept as json.Number so
// they round-trip byte for byte.
func Decode(body []byte) (Submission, error) {
	if !utf8.Valid(body) {
		return nil, fmt.Errorf("%w: body is not valid UTF-8", ErrInvalidJSON)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JSON value", ErrInvalidJSON)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotObject, kindOf(v))
	}
	return Submission(obj), nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
