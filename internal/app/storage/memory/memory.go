package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/R3E-Network/bridge_layer/internal/app/domain/bridge"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/chain"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/claim"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/fraudproof"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/transfer"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/validator"
	"github.com/R3E-Network/bridge_layer/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu          sync.RWMutex
	transfers   map[uint64]transfer.Transfer
	claims      map[string]claim.Claim
	validators  map[string]validator.Validator
	fraudProofs map[uint64]fraudproof.FraudProof
	chains      map[string]chain.Config
	deposits    map[string]uint64
	state       bridge.State
	hasState    bool
}

var _ storage.BridgeStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		transfers:   make(map[uint64]transfer.Transfer),
		claims:      make(map[string]claim.Claim),
		validators:  make(map[string]validator.Validator),
		fraudProofs: make(map[uint64]fraudproof.FraudProof),
		chains:      make(map[string]chain.Config),
		deposits:    make(map[string]uint64),
	}
}

// TransferStore implementation ------------------------------------------------

func (s *Store) CreateTransfer(_ context.Context, t transfer.Transfer) (transfer.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transfers[t.ID]; exists {
		return transfer.Transfer{}, fmt.Errorf("transfer %d already exists", t.ID)
	}
	s.transfers[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransfer(_ context.Context, t transfer.Transfer) (transfer.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transfers[t.ID]; !ok {
		return transfer.Transfer{}, fmt.Errorf("transfer %d: %w", t.ID, storage.ErrNotFound)
	}
	s.transfers[t.ID] = t
	return t, nil
}

func (s *Store) GetTransfer(_ context.Context, id uint64) (transfer.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transfers[id]
	if !ok {
		return transfer.Transfer{}, fmt.Errorf("transfer %d: %w", id, storage.ErrNotFound)
	}
	return t, nil
}

func (s *Store) ListTransfersByStatus(_ context.Context, status transfer.Status) ([]transfer.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]transfer.Transfer, 0)
	for _, t := range s.transfers {
		if t.Status == status {
			result = append(result, t)
		}
	}
	return result, nil
}

func (s *Store) ListTransfersBySender(_ context.Context, sender string) ([]transfer.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]transfer.Transfer, 0)
	for _, t := range s.transfers {
		if t.Sender == sender {
			result = append(result, t)
		}
	}
	return result, nil
}

// ClaimStore implementation ---------------------------------------------------

func (s *Store) CreateClaim(_ context.Context, c claim.Claim) (claim.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.claims[c.ExternalTxID]; exists {
		return claim.Claim{}, fmt.Errorf("claim %s already exists", c.ExternalTxID)
	}
	c.Signatures = append([]string(nil), c.Signatures...)
	s.claims[c.ExternalTxID] = c
	return cloneClaim(c), nil
}

func (s *Store) GetClaim(_ context.Context, externalTxID string) (claim.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.claims[externalTxID]
	if !ok {
		return claim.Claim{}, fmt.Errorf("claim %s: %w", externalTxID, storage.ErrNotFound)
	}
	return cloneClaim(c), nil
}

func (s *Store) ListClaims(_ context.Context) ([]claim.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]claim.Claim, 0, len(s.claims))
	for _, c := range s.claims {
		result = append(result, cloneClaim(c))
	}
	return result, nil
}

// ValidatorStore implementation -----------------------------------------------

func (s *Store) CreateValidator(_ context.Context, v validator.Validator) (validator.Validator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.validators[v.Account]; exists {
		return validator.Validator{}, fmt.Errorf("validator %s already exists", v.Account)
	}
	s.validators[v.Account] = v
	return v, nil
}

func (s *Store) UpdateValidator(_ context.Context, v validator.Validator) (validator.Validator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.validators[v.Account]; !ok {
		return validator.Validator{}, fmt.Errorf("validator %s: %w", v.Account, storage.ErrNotFound)
	}
	s.validators[v.Account] = v
	return v, nil
}

func (s *Store) GetValidator(_ context.Context, account string) (validator.Validator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.validators[account]
	if !ok {
		return validator.Validator{}, fmt.Errorf("validator %s: %w", account, storage.ErrNotFound)
	}
	return v, nil
}

func (s *Store) ListValidators(_ context.Context) ([]validator.Validator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]validator.Validator, 0, len(s.validators))
	for _, v := range s.validators {
		result = append(result, v)
	}
	return result, nil
}

// FraudProofStore implementation ----------------------------------------------

func (s *Store) CreateFraudProof(_ context.Context, p fraudproof.FraudProof) (fraudproof.FraudProof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.fraudProofs[p.ID]; exists {
		return fraudproof.FraudProof{}, fmt.Errorf("fraud proof %d already exists", p.ID)
	}
	s.fraudProofs[p.ID] = p
	return p, nil
}

func (s *Store) UpdateFraudProof(_ context.Context, p fraudproof.FraudProof) (fraudproof.FraudProof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fraudProofs[p.ID]; !ok {
		return fraudproof.FraudProof{}, fmt.Errorf("fraud proof %d: %w", p.ID, storage.ErrNotFound)
	}
	s.fraudProofs[p.ID] = p
	return p, nil
}

func (s *Store) GetFraudProof(_ context.Context, id uint64) (fraudproof.FraudProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.fraudProofs[id]
	if !ok {
		return fraudproof.FraudProof{}, fmt.Errorf("fraud proof %d: %w", id, storage.ErrNotFound)
	}
	return p, nil
}

func (s *Store) ListFraudProofsByTransfer(_ context.Context, transferID uint64) ([]fraudproof.FraudProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]fraudproof.FraudProof, 0)
	for _, p := range s.fraudProofs {
		if p.TransferID == transferID {
			result = append(result, p)
		}
	}
	return result, nil
}

// ChainStore implementation ---------------------------------------------------

func (s *Store) UpsertChain(_ context.Context, cfg chain.Config) (chain.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.chains[cfg.ChainID]; ok {
		cfg.TotalVolume = existing.TotalVolume
	}
	s.chains[cfg.ChainID] = cfg
	return cfg, nil
}

func (s *Store) GetChain(_ context.Context, chainID string) (chain.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.chains[chainID]
	if !ok {
		return chain.Config{}, fmt.Errorf("chain %s: %w", chainID, storage.ErrNotFound)
	}
	return cfg, nil
}

func (s *Store) ListChains(_ context.Context) ([]chain.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]chain.Config, 0, len(s.chains))
	for _, cfg := range s.chains {
		result = append(result, cfg)
	}
	return result, nil
}

// SetChainVolume overwrites a chain record including its volume. It exists for
// the accounting path, which must not go through the volume-preserving upsert.
func (s *Store) SetChainVolume(_ context.Context, chainID string, volume uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.chains[chainID]
	if !ok {
		return fmt.Errorf("chain %s: %w", chainID, storage.ErrNotFound)
	}
	cfg.TotalVolume = volume
	s.chains[chainID] = cfg
	return nil
}

// DepositStore implementation -------------------------------------------------

func (s *Store) GetDeposit(_ context.Context, account string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.deposits[account], nil
}

func (s *Store) SetDeposit(_ context.Context, account string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount == 0 {
		delete(s.deposits, account)
		return nil
	}
	s.deposits[account] = amount
	return nil
}

func (s *Store) ListDeposits(_ context.Context) (map[string]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]uint64, len(s.deposits))
	for k, v := range s.deposits {
		result[k] = v
	}
	return result, nil
}

// StateStore implementation ---------------------------------------------------

func (s *Store) GetState(_ context.Context) (bridge.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasState {
		return bridge.State{}, fmt.Errorf("bridge state: %w", storage.ErrNotFound)
	}
	return s.state, nil
}

func (s *Store) SaveState(_ context.Context, st bridge.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = st
	s.hasState = true
	return nil
}

// Helpers --------------------------------------------------------------------

func cloneClaim(c claim.Claim) claim.Claim {
	c.Signatures = append([]string(nil), c.Signatures...)
	return c
}
