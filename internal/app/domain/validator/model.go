// Package validator defines the attestor registry record. Removal is a
// soft delete: the record stays with active=false so validation history
// survives.
package validator

// Validator is one registered attestor account.
type Validator struct {
	Account        string
	Active         bool
	AddedAt        uint64
	TotalValidated uint64
	SlashCount     uint64
}
