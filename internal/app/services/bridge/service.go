// Package bridge implements the ledger and consensus core: outbound locks
// behind a challenge window, quorum-gated inbound claims, fraud-proof
// adjudication, and pooled-custody accounting.
package bridge

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/R3E-Network/bridge_layer/internal/app/domain/bridge"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/chain"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/claim"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/fraudproof"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/transfer"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/validator"
	"github.com/R3E-Network/bridge_layer/internal/app/heights"
	"github.com/R3E-Network/bridge_layer/internal/app/ledger"
	"github.com/R3E-Network/bridge_layer/internal/app/metrics"
	"github.com/R3E-Network/bridge_layer/internal/app/services/validators"
	"github.com/R3E-Network/bridge_layer/internal/app/storage"
	apperr "github.com/R3E-Network/bridge_layer/internal/errors"
	"github.com/R3E-Network/bridge_layer/pkg/logger"
)

// Config seeds the bridge state on first start. Once a persisted state
// exists it takes precedence.
type Config struct {
	Owner              string
	Treasury           string
	Custody            string
	ValidatorThreshold uint64
	ChallengePeriod    uint64
	MinLockAmount      uint64
	BridgeFeeBPS       uint64
}

// LockResult is returned by a successful lock.
type LockResult struct {
	TransferID uint64 `json:"transfer_id"`
	NetAmount  uint64 `json:"net_amount"`
	Fee        uint64 `json:"fee"`
}

// Service owns all bridge state. Every public operation runs under one
// exclusive critical section; a failed precondition or a failed asset
// transfer leaves all state untouched.
type Service struct {
	mu         sync.Mutex
	state      domain.State
	store      storage.BridgeStore
	assets     ledger.Ledger
	validators *validators.Service
	clock      heights.Source
	custody    string
	log        *logger.Logger
}

// New creates the bridge service, loading persisted state or seeding it
// from cfg on first start.
func New(ctx context.Context, store storage.BridgeStore, assets ledger.Ledger, vals *validators.Service, clock heights.Source, cfg Config, log *logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.NewDefault("bridge")
	}

	st, err := store.GetState(ctx)
	if apperr.Is(err, storage.ErrNotFound) {
		st = domain.State{
			Owner:              cfg.Owner,
			Treasury:           cfg.Treasury,
			ValidatorThreshold: cfg.ValidatorThreshold,
			ChallengePeriod:    cfg.ChallengePeriod,
			MinLockAmount:      cfg.MinLockAmount,
			BridgeFeeBPS:       cfg.BridgeFeeBPS,
		}
		if err := store.SaveState(ctx, st); err != nil {
			return nil, fmt.Errorf("seed bridge state: %w", err)
		}
		log.WithField("owner", st.Owner).Info("bridge state initialized")
	} else if err != nil {
		return nil, fmt.Errorf("load bridge state: %w", err)
	}

	return &Service{
		state:      st,
		store:      store,
		assets:     assets,
		validators: vals,
		clock:      clock,
		custody:    cfg.Custody,
		log:        log,
	}, nil
}

// Lock records an outbound transfer, moving the gross amount into pooled
// custody and remitting the fee to the treasury.
func (s *Service) Lock(ctx context.Context, caller string, amount uint64, recipient, targetChain string) (LockResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Paused {
		return LockResult{}, apperr.Paused("bridge is paused")
	}
	if amount < s.state.MinLockAmount {
		return LockResult{}, apperr.InvalidAmount(fmt.Sprintf("amount %d below minimum %d", amount, s.state.MinLockAmount))
	}

	cfg, err := s.store.GetChain(ctx, targetChain)
	if apperr.Is(err, storage.ErrNotFound) {
		return LockResult{}, apperr.InvalidChain(fmt.Sprintf("unknown chain %s", targetChain))
	}
	if err != nil {
		return LockResult{}, fmt.Errorf("load chain: %w", err)
	}

	fee := feeFor(amount, s.state.BridgeFeeBPS, cfg.FeeMultiplier)
	if fee > amount {
		return LockResult{}, apperr.InvalidAmount(fmt.Sprintf("fee %d exceeds amount %d", fee, amount))
	}

	if err := s.assets.Transfer(ctx, caller, s.custody, amount); err != nil {
		if apperr.Is(err, ledger.ErrInsufficientFunds) {
			return LockResult{}, apperr.InvalidAmount("insufficient balance").WithCause(err)
		}
		return LockResult{}, fmt.Errorf("lock funds: %w", err)
	}

	now := s.clock.Current()
	id := s.state.NextID()
	t := transfer.Transfer{
		ID:           id,
		Sender:       caller,
		Recipient:    recipient,
		Amount:       amount - fee,
		Fee:          fee,
		TargetChain:  targetChain,
		CreatedAt:    now,
		Status:       transfer.StatusPending,
		ChallengeEnd: now + s.state.ChallengePeriod,
	}
	if _, err := s.store.CreateTransfer(ctx, t); err != nil {
		return LockResult{}, fmt.Errorf("store transfer: %w", err)
	}

	deposit, err := s.store.GetDeposit(ctx, caller)
	if err != nil {
		return LockResult{}, fmt.Errorf("load deposit: %w", err)
	}
	if err := s.store.SetDeposit(ctx, caller, deposit+amount); err != nil {
		return LockResult{}, fmt.Errorf("update deposit: %w", err)
	}
	if err := s.store.SetChainVolume(ctx, targetChain, cfg.TotalVolume+amount); err != nil {
		return LockResult{}, fmt.Errorf("update chain volume: %w", err)
	}

	s.state.TotalLocked += amount
	if err := s.saveState(ctx); err != nil {
		return LockResult{}, err
	}

	if fee > 0 {
		if err := s.assets.Transfer(ctx, s.custody, s.state.Treasury, fee); err != nil {
			return LockResult{}, fmt.Errorf("remit fee: %w", err)
		}
	}

	s.log.WithField("transfer_id", id).WithField("sender", caller).
		WithField("amount", amount).WithField("fee", fee).
		WithField("chain", targetChain).Info("transfer locked")
	return LockResult{TransferID: id, NetAmount: amount - fee, Fee: fee}, nil
}

// Claim releases pooled funds to a recipient once a quorum of validators
// has attested to the source-chain event. The external transaction id is
// the idempotency key.
func (s *Service) Claim(ctx context.Context, externalTxID, recipient string, amount uint64, sourceChain string, signatures []string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Paused {
		return 0, apperr.Paused("bridge is paused")
	}
	if _, err := s.store.GetClaim(ctx, externalTxID); err == nil {
		return 0, apperr.AlreadyClaimed(fmt.Sprintf("external tx %s already claimed", externalTxID))
	} else if !apperr.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("load claim: %w", err)
	}

	if err := s.validators.VerifyQuorum(ctx, signatures, s.state.ValidatorThreshold); err != nil {
		return 0, err
	}

	if err := s.assets.Transfer(ctx, s.custody, recipient, amount); err != nil {
		if apperr.Is(err, ledger.ErrInsufficientFunds) {
			return 0, apperr.InvalidAmount("pooled custody cannot cover claim").WithCause(err)
		}
		return 0, fmt.Errorf("release funds: %w", err)
	}

	c := claim.Claim{
		ExternalTxID: externalTxID,
		Recipient:    recipient,
		Amount:       amount,
		SourceChain:  sourceChain,
		Claimed:      true,
		Signatures:   signatures,
		ExecutedAt:   s.clock.Current(),
	}
	if _, err := s.store.CreateClaim(ctx, c); err != nil {
		return 0, fmt.Errorf("store claim: %w", err)
	}

	for _, attestor := range signatures {
		if err := s.validators.RecordValidation(ctx, attestor); err != nil {
			return 0, fmt.Errorf("record validation: %w", err)
		}
	}

	s.state.TotalBridged += amount
	s.state.TotalLocked = saturatingSub(s.state.TotalLocked, amount)
	if err := s.saveState(ctx); err != nil {
		return 0, err
	}

	s.log.WithField("external_tx_id", externalTxID).WithField("recipient", recipient).
		WithField("amount", amount).Info("claim released")
	return amount, nil
}

// Execute finalizes a pending transfer once its challenge window has
// closed.
func (s *Service) Execute(ctx context.Context, transferID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.getTransferLocked(ctx, transferID)
	if err != nil {
		return err
	}
	if t.Status != transfer.StatusPending {
		return apperr.AlreadyProcessed(fmt.Sprintf("transfer %d is %s", transferID, t.Status))
	}
	if s.clock.Current() <= t.ChallengeEnd {
		return apperr.ChallengePeriodActive(fmt.Sprintf("challenge window open until height %d", t.ChallengeEnd))
	}

	return s.finalizeLocked(ctx, t)
}

// SubmitFraudProof contests a pending transfer inside its challenge window.
func (s *Service) SubmitFraudProof(ctx context.Context, caller string, transferID uint64, evidence string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.getTransferLocked(ctx, transferID)
	if err != nil {
		return 0, err
	}
	if t.Status != transfer.StatusPending {
		return 0, apperr.AlreadyProcessed(fmt.Sprintf("transfer %d is %s", transferID, t.Status))
	}
	now := s.clock.Current()
	if now > t.ChallengeEnd {
		return 0, apperr.TransferExpired(fmt.Sprintf("challenge window closed at height %d", t.ChallengeEnd))
	}

	id := s.state.NextID()
	p := fraudproof.FraudProof{
		ID:          id,
		Challenger:  caller,
		TransferID:  transferID,
		Evidence:    evidence,
		SubmittedAt: now,
		Status:      fraudproof.StatusSubmitted,
	}
	if _, err := s.store.CreateFraudProof(ctx, p); err != nil {
		return 0, fmt.Errorf("store fraud proof: %w", err)
	}

	if err := t.Transition(transfer.StatusChallenged); err != nil {
		return 0, err
	}
	if _, err := s.store.UpdateTransfer(ctx, t); err != nil {
		return 0, fmt.Errorf("update transfer: %w", err)
	}
	if err := s.saveState(ctx); err != nil {
		return 0, err
	}

	s.log.WithField("proof_id", id).WithField("transfer_id", transferID).
		WithField("challenger", caller).Warn("fraud proof submitted")
	return id, nil
}

// ResolveFraudProof adjudicates an open fraud proof. A valid proof reverses
// the transfer: the sender is refunded the net amount and the challenger is
// rewarded half the fee. An invalid proof finalizes the transfer the same
// way Execute does, regardless of the challenge window; the adjudicator
// decision supersedes the timer.
func (s *Service) ResolveFraudProof(ctx context.Context, caller string, proofID uint64, isValid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.state.Owner {
		return apperr.Unauthorized("only the owner may resolve fraud proofs")
	}

	p, err := s.store.GetFraudProof(ctx, proofID)
	if apperr.Is(err, storage.ErrNotFound) {
		return apperr.InvalidProof(fmt.Sprintf("unknown fraud proof %d", proofID))
	}
	if err != nil {
		return fmt.Errorf("load fraud proof: %w", err)
	}
	if p.Status != fraudproof.StatusSubmitted {
		return apperr.InvalidProof(fmt.Sprintf("fraud proof %d already resolved", proofID))
	}

	t, err := s.getTransferLocked(ctx, p.TransferID)
	if err != nil {
		return err
	}
	if t.Status != transfer.StatusChallenged {
		return apperr.AlreadyProcessed(fmt.Sprintf("transfer %d is %s", t.ID, t.Status))
	}

	if isValid {
		if err := s.reverseLocked(ctx, t, p); err != nil {
			return err
		}
	} else {
		if err := s.finalizeLocked(ctx, t); err != nil {
			return err
		}
	}

	p.Status = fraudproof.StatusResolved
	if _, err := s.store.UpdateFraudProof(ctx, p); err != nil {
		return fmt.Errorf("update fraud proof: %w", err)
	}

	s.log.WithField("proof_id", proofID).WithField("transfer_id", t.ID).
		WithField("valid", isValid).Info("fraud proof resolved")
	return nil
}

// EmergencyWithdraw pays out the caller's full deposit tally while the
// bridge is paused, bypassing per-transfer status entirely.
func (s *Service) EmergencyWithdraw(ctx context.Context, caller string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Paused {
		return 0, apperr.Paused("emergency withdrawal requires a paused bridge")
	}

	tally, err := s.store.GetDeposit(ctx, caller)
	if err != nil {
		return 0, fmt.Errorf("load deposit: %w", err)
	}
	if tally == 0 {
		return 0, apperr.InvalidAmount("no deposit balance")
	}

	if err := s.assets.Transfer(ctx, s.custody, caller, tally); err != nil {
		if apperr.Is(err, ledger.ErrInsufficientFunds) {
			return 0, apperr.InvalidAmount("pooled custody cannot cover withdrawal").WithCause(err)
		}
		return 0, fmt.Errorf("pay withdrawal: %w", err)
	}

	if err := s.store.SetDeposit(ctx, caller, 0); err != nil {
		return 0, fmt.Errorf("clear deposit: %w", err)
	}
	s.state.TotalLocked = saturatingSub(s.state.TotalLocked, tally)
	if err := s.saveState(ctx); err != nil {
		return 0, err
	}

	s.log.WithField("account", caller).WithField("amount", tally).Warn("emergency withdrawal")
	return tally, nil
}

// Administration ------------------------------------------------------------

// AddValidator registers a new attestor. Owner only.
func (s *Service) AddValidator(ctx context.Context, caller, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOwnerLocked(caller); err != nil {
		return err
	}
	if err := s.validators.Add(ctx, account, s.clock.Current()); err != nil {
		return err
	}
	s.state.TotalValidators++
	return s.saveState(ctx)
}

// RemoveValidator deactivates an attestor. Owner only.
func (s *Service) RemoveValidator(ctx context.Context, caller, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOwnerLocked(caller); err != nil {
		return err
	}
	if err := s.validators.Remove(ctx, account); err != nil {
		return err
	}
	s.state.TotalValidators = saturatingSub(s.state.TotalValidators, 1)
	return s.saveState(ctx)
}

// SetChainConfig creates or updates a chain entry, preserving its running
// volume. Owner only.
func (s *Service) SetChainConfig(ctx context.Context, caller, chainID string, enabled bool, feeMultiplier uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOwnerLocked(caller); err != nil {
		return err
	}
	_, err := s.store.UpsertChain(ctx, chain.Config{ChainID: chainID, Enabled: enabled, FeeMultiplier: feeMultiplier})
	if err != nil {
		return fmt.Errorf("upsert chain: %w", err)
	}
	return nil
}

// SetThreshold updates the quorum threshold. Owner only.
func (s *Service) SetThreshold(ctx context.Context, caller string, threshold uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOwnerLocked(caller); err != nil {
		return 0, err
	}
	if threshold > s.state.TotalValidators {
		return 0, apperr.ThresholdTooHigh(fmt.Sprintf("threshold %d exceeds %d validators", threshold, s.state.TotalValidators))
	}
	s.state.ValidatorThreshold = threshold
	if err := s.saveState(ctx); err != nil {
		return 0, err
	}
	return threshold, nil
}

// SetPaused flips the circuit breaker. Owner only.
func (s *Service) SetPaused(ctx context.Context, caller string, paused bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOwnerLocked(caller); err != nil {
		return false, err
	}
	s.state.Paused = paused
	if err := s.saveState(ctx); err != nil {
		return false, err
	}
	s.log.WithField("paused", paused).Warn("pause flag changed")
	return paused, nil
}

// Queries --------------------------------------------------------------------

// GetTransfer returns one transfer record.
func (s *Service) GetTransfer(ctx context.Context, id uint64) (transfer.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getTransferLocked(ctx, id)
}

// GetClaim returns one claim record by external transaction id.
func (s *Service) GetClaim(ctx context.Context, externalTxID string) (claim.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.GetClaim(ctx, externalTxID)
	if apperr.Is(err, storage.ErrNotFound) {
		return claim.Claim{}, apperr.NotFound(fmt.Sprintf("claim %s not found", externalTxID))
	}
	return c, err
}

// GetFraudProof returns one fraud proof record.
func (s *Service) GetFraudProof(ctx context.Context, id uint64) (fraudproof.FraudProof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.GetFraudProof(ctx, id)
	if apperr.Is(err, storage.ErrNotFound) {
		return fraudproof.FraudProof{}, apperr.NotFound(fmt.Sprintf("fraud proof %d not found", id))
	}
	return p, err
}

// ListTransfersBySender returns every transfer recorded for a sender.
func (s *Service) ListTransfersBySender(ctx context.Context, sender string) ([]transfer.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ListTransfersBySender(ctx, sender)
}

// IsValidator reports whether an account is an active validator.
func (s *Service) IsValidator(ctx context.Context, account string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validators.IsActive(ctx, account)
}

// ListValidators returns the full validator registry, inactive entries
// included.
func (s *Service) ListValidators(ctx context.Context) ([]validator.Validator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validators.List(ctx)
}

// Stats returns the aggregate counter snapshot.
func (s *Service) Stats(_ context.Context) domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.Stats{
		TotalLocked:        s.state.TotalLocked,
		TotalBridged:       s.state.TotalBridged,
		TotalValidators:    s.state.TotalValidators,
		ValidatorThreshold: s.state.ValidatorThreshold,
		ChallengePeriod:    s.state.ChallengePeriod,
		MinLockAmount:      s.state.MinLockAmount,
		BridgeFeeBPS:       s.state.BridgeFeeBPS,
		Paused:             s.state.Paused,
	}
}

// CalculateFee computes the lock fee for an amount on a chain. Unknown
// chains yield zero.
func (s *Service) CalculateFee(ctx context.Context, amount uint64, chainID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.store.GetChain(ctx, chainID)
	if err != nil {
		return 0
	}
	return feeFor(amount, s.state.BridgeFeeBPS, cfg.FeeMultiplier)
}

// Internals ------------------------------------------------------------------

func (s *Service) requireOwnerLocked(caller string) error {
	if caller != s.state.Owner {
		return apperr.Unauthorized("caller is not the bridge owner")
	}
	return nil
}

func (s *Service) getTransferLocked(ctx context.Context, id uint64) (transfer.Transfer, error) {
	t, err := s.store.GetTransfer(ctx, id)
	if apperr.Is(err, storage.ErrNotFound) {
		return transfer.Transfer{}, apperr.NotFound(fmt.Sprintf("transfer %d not found", id))
	}
	if err != nil {
		return transfer.Transfer{}, fmt.Errorf("load transfer: %w", err)
	}
	return t, nil
}

// finalizeLocked marks a transfer executed and settles the sender's deposit
// tally. Shared by Execute and invalid-proof resolution.
func (s *Service) finalizeLocked(ctx context.Context, t transfer.Transfer) error {
	if err := t.Transition(transfer.StatusExecuted); err != nil {
		return err
	}
	if _, err := s.store.UpdateTransfer(ctx, t); err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}

	deposit, err := s.store.GetDeposit(ctx, t.Sender)
	if err != nil {
		return fmt.Errorf("load deposit: %w", err)
	}
	if err := s.store.SetDeposit(ctx, t.Sender, saturatingSub(deposit, t.Gross())); err != nil {
		return fmt.Errorf("update deposit: %w", err)
	}

	s.log.WithField("transfer_id", t.ID).Info("transfer executed")
	return nil
}

// reverseLocked refunds a challenged transfer and rewards the challenger
// from the treasury.
func (s *Service) reverseLocked(ctx context.Context, t transfer.Transfer, p fraudproof.FraudProof) error {
	reward := t.Fee / 2

	custodyBal, err := s.assets.BalanceOf(ctx, s.custody)
	if err != nil {
		return fmt.Errorf("custody balance: %w", err)
	}
	if custodyBal < t.Amount {
		return apperr.InvalidAmount("pooled custody cannot cover refund")
	}
	if reward > 0 {
		treasuryBal, err := s.assets.BalanceOf(ctx, s.state.Treasury)
		if err != nil {
			return fmt.Errorf("treasury balance: %w", err)
		}
		if treasuryBal < reward {
			return apperr.InvalidAmount("treasury cannot cover challenger reward")
		}
	}

	if err := t.Transition(transfer.StatusReversed); err != nil {
		return err
	}
	if _, err := s.store.UpdateTransfer(ctx, t); err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}

	if err := s.assets.Transfer(ctx, s.custody, t.Sender, t.Amount); err != nil {
		return fmt.Errorf("refund sender: %w", err)
	}
	if reward > 0 {
		if err := s.assets.Transfer(ctx, s.state.Treasury, p.Challenger, reward); err != nil {
			return fmt.Errorf("pay challenger: %w", err)
		}
	}

	s.log.WithField("transfer_id", t.ID).WithField("refund", t.Amount).
		WithField("reward", reward).Info("transfer reversed")
	return nil
}

func (s *Service) saveState(ctx context.Context) error {
	if err := s.store.SaveState(ctx, s.state); err != nil {
		return fmt.Errorf("save bridge state: %w", err)
	}
	metrics.RecordTotals(s.state.TotalLocked, s.state.TotalBridged)
	return nil
}

// feeFor computes the lock fee: basis points of the amount, scaled by the
// chain multiplier, truncating at each step.
func feeFor(amount, feeBPS, multiplier uint64) uint64 {
	fee := amount * feeBPS / 10000
	return fee * multiplier / 100
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
