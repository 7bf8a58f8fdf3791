package identity

import (
	"regexp"

	"github.com/google/uuid"

	"github.com/flori92/floservice-messaging/internal/fault"
)

// syntheticPattern matches the short-lived test identifiers used in demo
// environments, e.g. "tg-2". Low cardinality on purpose.
var syntheticPattern = regexp.MustCompile(`^tg-[0-9]{1,4}$`)

// Validator checks participant identifiers at the service boundary. Two shapes
// are accepted: a durable opaque identifier (UUID) and, when AllowSynthetic is
// set, a synthetic test identifier. Everything else is rejected before it can
// reach storage.
type Validator struct {
	AllowSynthetic bool
}

// Validate returns a fault.Validation error for any identifier that is neither
// a durable id nor an accepted synthetic one.
func (v Validator) Validate(id string) error {
	if id == "" {
		return fault.Validation("empty identifier")
	}
	if _, err := uuid.Parse(id); err == nil {
		return nil
	}
	if v.AllowSynthetic && syntheticPattern.MatchString(id) {
		return nil
	}
	return fault.Validation("malformed identifier")
}

// ValidatePair validates sender and recipient and checks they differ.
func (v Validator) ValidatePair(senderID, recipientID string) error {
	if err := v.Validate(senderID); err != nil {
		return err
	}
	if err := v.Validate(recipientID); err != nil {
		return err
	}
	if senderID == recipientID {
		return fault.Validation("sender and recipient are the same user")
	}
	return nil
}

// IsSynthetic reports whether id matches the test identifier pattern.
func IsSynthetic(id string) bool {
	return syntheticPattern.MatchString(id)
}
