// Package bridge defines the global bridge state aggregate: the scalar
// counters, flags, and accounts that every operation reads and updates
// under one critical section.
package bridge

// State is the single global aggregate. It is owned by the bridge service
// and persisted as one row; there is no ambient copy anywhere else.
type State struct {
	Owner              string
	Treasury           string
	ValidatorThreshold uint64
	TotalValidators    uint64
	ChallengePeriod    uint64
	MinLockAmount      uint64
	BridgeFeeBPS       uint64
	TotalLocked        uint64
	TotalBridged       uint64
	Paused             bool
	Nonce              uint64
}

// NextID allocates the next transfer or fraud proof id. Transfer and proof
// ids share one monotonic sequence.
func (s *State) NextID() uint64 {
	id := s.Nonce
	s.Nonce++
	return id
}

// Stats is the read-only aggregate counter snapshot returned by queries.
type Stats struct {
	TotalLocked        uint64 `json:"total_locked"`
	TotalBridged       uint64 `json:"total_bridged"`
	TotalValidators    uint64 `json:"total_validators"`
	ValidatorThreshold uint64 `json:"validator_threshold"`
	ChallengePeriod    uint64 `json:"challenge_period"`
	MinLockAmount      uint64 `json:"min_lock_amount"`
	BridgeFeeBPS       uint64 `json:"bridge_fee_bps"`
	Paused             bool   `json:"paused"`
}
