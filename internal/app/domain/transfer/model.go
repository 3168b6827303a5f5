// Package transfer defines the outbound transfer record and its status
// state machine. A transfer is created by a lock and only ever advances
// forward; terminal statuses are never left.
package transfer

import (
	"encoding/json"
	"fmt"
)

// Status represents the lifecycle status of an outbound transfer.
type Status int32

const (
	// StatusPending indicates the transfer is inside its challenge window.
	StatusPending Status = iota

	// StatusExecuted indicates the transfer finalized unchallenged or was
	// confirmed by challenge resolution.
	StatusExecuted

	// StatusChallenged indicates a fraud proof is open against the transfer.
	StatusChallenged

	// StatusReversed indicates a fraud proof was upheld and the transfer
	// refunded to the sender.
	StatusReversed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusExecuted:
		return "executed"
	case StatusChallenged:
		return "challenged"
	case StatusReversed:
		return "reversed"
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
	case "pending":
		return StatusPending, nil
	case "executed":
		return StatusExecuted, nil
	case "challenged":
		return StatusChallenged, nil
	case "reversed":
		return StatusReversed, nil
	default:
		return StatusPending, fmt.Errorf("unknown transfer status %q", s)
	}
}

// IsTerminal returns true if this status can never change again.
func (s Status) IsTerminal() bool {
	return s == StatusExecuted || s == StatusReversed
}

// ValidTransitions defines allowed status transitions.
var ValidTransitions = map[Status][]Status{
	StatusPending:    {StatusExecuted, StatusChallenged},
	StatusChallenged: {StatusExecuted, StatusReversed},
}

// CanTransition returns true if the transition from -> to is valid.
func CanTransition(from, to Status) bool {
	for _, s := range ValidTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionError represents an invalid status transition.
type TransitionError struct {
	From Status
	To   Status
}

// Error implements error.
func (e TransitionError) Error() string {
	return fmt.Sprintf("invalid transfer transition: %s -> %s", e.From, e.To)
}

// Transfer is one outbound lock record. Amount is net of fee; Amount+Fee is
// the value originally moved into custody.
type Transfer struct {
	ID           uint64
	Sender       string
	Recipient    string
	Amount       uint64
	Fee          uint64
	TargetChain  string
	CreatedAt    uint64
	Status       Status
	ChallengeEnd uint64
}

// Gross returns the originally locked value.
func (t *Transfer) Gross() uint64 {
	return t.Amount + t.Fee
}

// Transition advances the status, rejecting anything outside the state
// machine.
func (t *Transfer) Transition(to Status) error {
	if !CanTransition(t.Status, to) {
		return TransitionError{From: t.Status, To: to}
	}
	t.Status = to
	return nil
}
