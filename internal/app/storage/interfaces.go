package storage

import (
	"context"
	"errors"

	"github.com/R3E-Network/bridge_layer/internal/app/domain/bridge"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/chain"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/claim"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/fraudproof"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/transfer"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/validator"
)

// ErrNotFound is wrapped by every store when a keyed record is missing.
var ErrNotFound = errors.New("not found")

// TransferStore persists outbound transfer records.
type TransferStore interface {
	CreateTransfer(ctx context.Context, t transfer.Transfer) (transfer.Transfer, error)
	UpdateTransfer(ctx context.Context, t transfer.Transfer) (transfer.Transfer, error)
	GetTransfer(ctx context.Context, id uint64) (transfer.Transfer, error)
	ListTransfersByStatus(ctx context.Context, status transfer.Status) ([]transfer.Transfer, error)
	ListTransfersBySender(ctx context.Context, sender string) ([]transfer.Transfer, error)
}

// ClaimStore persists inbound claim records keyed by external transaction id.
type ClaimStore interface {
	CreateClaim(ctx context.Context, c claim.Claim) (claim.Claim, error)
	GetClaim(ctx context.Context, externalTxID string) (claim.Claim, error)
	ListClaims(ctx context.Context) ([]claim.Claim, error)
}

// ValidatorStore persists attestor registry records.
type ValidatorStore interface {
	CreateValidator(ctx context.Context, v validator.Validator) (validator.Validator, error)
	UpdateValidator(ctx context.Context, v validator.Validator) (validator.Validator, error)
	GetValidator(ctx context.Context, account string) (validator.Validator, error)
	ListValidators(ctx context.Context) ([]validator.Validator, error)
}

// FraudProofStore persists dispute records.
type FraudProofStore interface {
	CreateFraudProof(ctx context.Context, p fraudproof.FraudProof) (fraudproof.FraudProof, error)
	UpdateFraudProof(ctx context.Context, p fraudproof.FraudProof) (fraudproof.FraudProof, error)
	GetFraudProof(ctx context.Context, id uint64) (fraudproof.FraudProof, error)
	ListFraudProofsByTransfer(ctx context.Context, transferID uint64) ([]fraudproof.FraudProof, error)
}

// ChainStore persists per-chain configuration. UpsertChain preserves an
// existing record's running volume; SetChainVolume is the accounting path.
type ChainStore interface {
	UpsertChain(ctx context.Context, cfg chain.Config) (chain.Config, error)
	GetChain(ctx context.Context, chainID string) (chain.Config, error)
	ListChains(ctx context.Context) ([]chain.Config, error)
	SetChainVolume(ctx context.Context, chainID string, volume uint64) error
}

// DepositStore persists the emergency-recovery deposit ledger.
type DepositStore interface {
	GetDeposit(ctx context.Context, account string) (uint64, error)
	SetDeposit(ctx context.Context, account string, amount uint64) error
	ListDeposits(ctx context.Context) (map[string]uint64, error)
}

// StateStore persists the global bridge state aggregate.
type StateStore interface {
	GetState(ctx context.Context) (bridge.State, error)
	SaveState(ctx context.Context, st bridge.State) error
}

// BridgeStore is the full persistence surface the bridge service needs.
type BridgeStore interface {
	TransferStore
	ClaimStore
	ValidatorStore
	FraudProofStore
	ChainStore
	DepositStore
	StateStore
}
