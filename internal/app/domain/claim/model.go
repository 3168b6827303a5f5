// Package claim defines the inbound claim record. The external transaction
// id is the idempotency key: a claim is written exactly once and never
// mutated afterwards.
package claim

// Claim records a release of pooled funds against an attested source-chain
// event. Signatures holds the raw attestor list as submitted, duplicates
// included.
type Claim struct {
	ExternalTxID string
	Recipient    string
	Amount       uint64
	SourceChain  string
	Claimed      bool
	Signatures   []string
	ExecutedAt   uint64
}
