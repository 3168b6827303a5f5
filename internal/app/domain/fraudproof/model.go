// Package fraudproof defines the dispute record opened against a pending
// outbound transfer.
package fraudproof

import (
	"encoding/json"
	"fmt"
)

// Status represents the lifecycle status of a fraud proof.
type Status int32

const (
	// StatusSubmitted indicates the proof is awaiting adjudication.
	StatusSubmitted Status = iota

	// StatusResolved indicates the proof has been adjudicated.
	StatusResolved
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusSubmitted:
		return "submitted"
	case StatusResolved:
		return "resolved"
	default:
		return fmt.Sprintf("status(%d)", s)
	}
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus converts a string to Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "submitted":
		return StatusSubmitted, nil
	case "resolved":
		return StatusResolved, nil
	default:
		return StatusSubmitted, fmt.Errorf("unknown fraud proof status %q", s)
	}
}

// FraudProof is one dispute against a transfer. Proof ids share the same
// monotonic nonce as transfer ids.
type FraudProof struct {
	ID          uint64
	Challenger  string
	TransferID  uint64
	Evidence    string
	SubmittedAt uint64
	Status      Status
}
