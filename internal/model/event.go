package model

import (
	"encoding/json"
	"errors"
)

// ErrMalformedEvent is returned when an event delivery body cannot be decoded.
var ErrMalformedEvent = errors.New("malformed event payload")

// EventKind enumerates the account-lifecycle event variants. The wire string
// is mapped to a kind exactly once, at decode time; everything downstream
// switches over the typed kind.
type EventKind int

const (
	// EventUnknown marks event types this service does not handle. The
	// gateway acknowledges them with success so the provider stops
	// redelivering.
	EventUnknown EventKind = iota
	EventUserCreated
	EventUserUpdated
	EventUserDeleted
)

// String returns the wire name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventUserCreated:
		return "created"
	case EventUserUpdated:
		return "updated"
	case EventUserDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ParseEventKind maps a wire type tag to an EventKind.
func ParseEventKind(s string) EventKind {
	switch s {
	case "created":
		return EventUserCreated
	case "updated":
		return EventUserUpdated
	case "deleted":
		return EventUserDeleted
	default:
		return EventUnknown
	}
}

// EmailEntry is one address in the profile's address list.
type EmailEntry struct {
	EmailAddress string `json:"email_address"`
}

// IdentityProfile carries the profile fields of one event delivery.
// Pointer fields distinguish "absent from the event" from "set to empty",
// which drives the field-level merge on update.
type IdentityProfile struct {
	ID             string       `json:"id"`
	EmailAddresses []EmailEntry `json:"email_addresses"`
	Username       *string      `json:"username"`
	FirstName      *string      `json:"first_name"`
	LastName       *string      `json:"last_name"`
	ImageURL       *string      `json:"image_url"`
}

// PrimaryEmail returns the first address in the event's address list.
func (p *IdentityProfile) PrimaryEmail() (string, bool) {
	if len(p.EmailAddresses) == 0 {
		return "", false
	}
	return p.EmailAddresses[0].EmailAddress, true
}

// IdentityEvent is a decoded event delivery.
type IdentityEvent struct {
	Kind EventKind
	Data IdentityProfile
}

// identityEnvelope is the wire shape of a delivery: {type, data}.
type identityEnvelope struct {
	Type string          `json:"type"`
	Data IdentityProfile `json:"data"`
}

// DecodeIdentityEvent parses a raw delivery body into a typed event.
// Unrecognized type tags are not an error; they decode to EventUnknown.
func DecodeIdentityEvent(body []byte) (*IdentityEvent, error) {
	var env identityEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, ErrMalformedEvent
	}

	return &IdentityEvent{
		Kind: ParseEventKind(env.Type),
		Data: env.Data,
	}, nil
}
