package domain

import (
	"encoding"
	"fmt"
)

// Status is the learning stage of a card.
type Status int

const (
	StatusNew        Status = iota + 1 // Never reviewed.
	StatusLearning                     // Passing through the initial learning steps.
	StatusReview                       // Graduated into the long-term review cycle.
	StatusRelearning                   // Lapsed out of review, relearning.
)

var (
	statusNames  = [...]string{StatusNew: "new", StatusLearning: "learning", StatusReview: "review", StatusRelearning: "relearning"}
	statusByName = map[string]Status{
		"new":        StatusNew,
		"learning":   StatusLearning,
		"review":     StatusReview,
		"relearning": StatusRelearning,
	}
)

var (
	_ fmt.Stringer             = Status(0)
	_ encoding.TextMarshaler   = Status(0)
	_ encoding.TextUnmarshaler = (*Status)(nil)
)

// IsValid reports whether s is one of the four card statuses.
func (s Status) IsValid() bool {
	return s >= StatusNew && s <= StatusRelearning
}

// String returns the lowercase status name. For invalid values it returns
// "Status(n)".
func (s Status) String() string {
	if s.IsValid() {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid card status: %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	v, ok := statusByName[string(text)]
	if !ok {
		return fmt.Errorf("invalid card status: %q", text)
	}
	*s = v
	return nil
}
