package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/R3E-Network/bridge_layer/internal/app/domain/bridge"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/chain"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/claim"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/fraudproof"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/transfer"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/validator"
	"github.com/R3E-Network/bridge_layer/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL. Amounts and
// heights are stored as BIGINT; values never exceed the signed range in
// practice.
type Store struct {
	db *sql.DB
}

var _ storage.BridgeStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- TransferStore ----------------------------------------------------------

func (s *Store) CreateTransfer(ctx context.Context, t transfer.Transfer) (transfer.Transfer, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bridge_transfers (id, sender, recipient, amount, fee, target_chain, created_at, status, challenge_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, int64(t.ID), t.Sender, t.Recipient, int64(t.Amount), int64(t.Fee), t.TargetChain, int64(t.CreatedAt), t.Status.String(), int64(t.ChallengeEnd))
	if err != nil {
		return transfer.Transfer{}, err
	}
	return t, nil
}

func (s *Store) UpdateTransfer(ctx context.Context, t transfer.Transfer) (transfer.Transfer, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bridge_transfers
		SET status = $2
		WHERE id = $1
	`, int64(t.ID), t.Status.String())
	if err != nil {
		return transfer.Transfer{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return transfer.Transfer{}, fmt.Errorf("transfer %d: %w", t.ID, storage.ErrNotFound)
	}
	return t, nil
}

func (s *Store) GetTransfer(ctx context.Context, id uint64) (transfer.Transfer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sender, recipient, amount, fee, target_chain, created_at, status, challenge_end
		FROM bridge_transfers
		WHERE id = $1
	`, int64(id))

	t, err := scanTransfer(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return transfer.Transfer{}, fmt.Errorf("transfer %d: %w", id, storage.ErrNotFound)
	}
	return t, err
}

func (s *Store) ListTransfersByStatus(ctx context.Context, status transfer.Status) ([]transfer.Transfer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender, recipient, amount, fee, target_chain, created_at, status, challenge_end
		FROM bridge_transfers
		WHERE status = $1
		ORDER BY id
	`, status.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []transfer.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *Store) ListTransfersBySender(ctx context.Context, sender string) ([]transfer.Transfer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender, recipient, amount, fee, target_chain, created_at, status, challenge_end
		FROM bridge_transfers
		WHERE sender = $1
		ORDER BY id
	`, sender)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []transfer.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func scanTransfer(scan func(...any) error) (transfer.Transfer, error) {
	var (
		t                                  transfer.Transfer
		id, amount, fee, createdAt, chlEnd int64
		status                             string
	)
	if err := scan(&id, &t.Sender, &t.Recipient, &amount, &fee, &t.TargetChain, &createdAt, &status, &chlEnd); err != nil {
		return transfer.Transfer{}, err
	}
	parsed, err := transfer.ParseStatus(status)
	if err != nil {
		return transfer.Transfer{}, err
	}
	t.ID = uint64(id)
	t.Amount = uint64(amount)
	t.Fee = uint64(fee)
	t.CreatedAt = uint64(createdAt)
	t.Status = parsed
	t.ChallengeEnd = uint64(chlEnd)
	return t, nil
}

// --- ClaimStore -------------------------------------------------------------

func (s *Store) CreateClaim(ctx context.Context, c claim.Claim) (claim.Claim, error) {
	sigsJSON, err := json.Marshal(c.Signatures)
	if err != nil {
		return claim.Claim{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bridge_claims (external_tx_id, recipient, amount, source_chain, claimed, signatures, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ExternalTxID, c.Recipient, int64(c.Amount), c.SourceChain, c.Claimed, sigsJSON, int64(c.ExecutedAt))
	if err != nil {
		return claim.Claim{}, err
	}
	return c, nil
}

func (s *Store) GetClaim(ctx context.Context, externalTxID string) (claim.Claim, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT external_tx_id, recipient, amount, source_chain, claimed, signatures, executed_at
		FROM bridge_claims
		WHERE external_tx_id = $1
	`, externalTxID)

	c, err := scanClaim(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return claim.Claim{}, fmt.Errorf("claim %s: %w", externalTxID, storage.ErrNotFound)
	}
	return c, err
}

func (s *Store) ListClaims(ctx context.Context) ([]claim.Claim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT external_tx_id, recipient, amount, source_chain, claimed, signatures, executed_at
		FROM bridge_claims
		ORDER BY executed_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []claim.Claim
	for rows.Next() {
		c, err := scanClaim(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func scanClaim(scan func(...any) error) (claim.Claim, error) {
	var (
		c                  claim.Claim
		amount, executedAt int64
		sigsRaw            []byte
	)
	if err := scan(&c.ExternalTxID, &c.Recipient, &amount, &c.SourceChain, &c.Claimed, &sigsRaw, &executedAt); err != nil {
		return claim.Claim{}, err
	}
	if len(sigsRaw) > 0 {
		if err := json.Unmarshal(sigsRaw, &c.Signatures); err != nil {
			return claim.Claim{}, err
		}
	}
	c.Amount = uint64(amount)
	c.ExecutedAt = uint64(executedAt)
	return c, nil
}

// --- ValidatorStore ---------------------------------------------------------

func (s *Store) CreateValidator(ctx context.Context, v validator.Validator) (validator.Validator, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bridge_validators (account, active, added_at, total_validated, slash_count)
		VALUES ($1, $2, $3, $4, $5)
	`, v.Account, v.Active, int64(v.AddedAt), int64(v.TotalValidated), int64(v.SlashCount))
	if err != nil {
		return validator.Validator{}, err
	}
	return v, nil
}

func (s *Store) UpdateValidator(ctx context.Context, v validator.Validator) (validator.Validator, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bridge_validators
		SET active = $2, total_validated = $3, slash_count = $4
		WHERE account = $1
	`, v.Account, v.Active, int64(v.TotalValidated), int64(v.SlashCount))
	if err != nil {
		return validator.Validator{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return validator.Validator{}, fmt.Errorf("validator %s: %w", v.Account, storage.ErrNotFound)
	}
	return v, nil
}

func (s *Store) GetValidator(ctx context.Context, account string) (validator.Validator, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT account, active, added_at, total_validated, slash_count
		FROM bridge_validators
		WHERE account = $1
	`, account)

	var (
		v                                 validator.Validator
		addedAt, totalValidated, slashCnt int64
	)
	err := row.Scan(&v.Account, &v.Active, &addedAt, &totalValidated, &slashCnt)
	if errors.Is(err, sql.ErrNoRows) {
		return validator.Validator{}, fmt.Errorf("validator %s: %w", account, storage.ErrNotFound)
	}
	if err != nil {
		return validator.Validator{}, err
	}
	v.AddedAt = uint64(addedAt)
	v.TotalValidated = uint64(totalValidated)
	v.SlashCount = uint64(slashCnt)
	return v, nil
}

func (s *Store) ListValidators(ctx context.Context) ([]validator.Validator, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account, active, added_at, total_validated, slash_count
		FROM bridge_validators
		ORDER BY added_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []validator.Validator
	for rows.Next() {
		var (
			v                                 validator.Validator
			addedAt, totalValidated, slashCnt int64
		)
		if err := rows.Scan(&v.Account, &v.Active, &addedAt, &totalValidated, &slashCnt); err != nil {
			return nil, err
		}
		v.AddedAt = uint64(addedAt)
		v.TotalValidated = uint64(totalValidated)
		v.SlashCount = uint64(slashCnt)
		result = append(result, v)
	}
	return result, rows.Err()
}

// --- FraudProofStore --------------------------------------------------------

func (s *Store) CreateFraudProof(ctx context.Context, p fraudproof.FraudProof) (fraudproof.FraudProof, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bridge_fraud_proofs (id, challenger, transfer_id, evidence, submitted_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, int64(p.ID), p.Challenger, int64(p.TransferID), p.Evidence, int64(p.SubmittedAt), p.Status.String())
	if err != nil {
		return fraudproof.FraudProof{}, err
	}
	return p, nil
}

func (s *Store) UpdateFraudProof(ctx context.Context, p fraudproof.FraudProof) (fraudproof.FraudProof, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bridge_fraud_proofs
		SET status = $2
		WHERE id = $1
	`, int64(p.ID), p.Status.String())
	if err != nil {
		return fraudproof.FraudProof{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fraudproof.FraudProof{}, fmt.Errorf("fraud proof %d: %w", p.ID, storage.ErrNotFound)
	}
	return p, nil
}

func (s *Store) GetFraudProof(ctx context.Context, id uint64) (fraudproof.FraudProof, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, challenger, transfer_id, evidence, submitted_at, status
		FROM bridge_fraud_proofs
		WHERE id = $1
	`, int64(id))

	p, err := scanFraudProof(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return fraudproof.FraudProof{}, fmt.Errorf("fraud proof %d: %w", id, storage.ErrNotFound)
	}
	return p, err
}

func (s *Store) ListFraudProofsByTransfer(ctx context.Context, transferID uint64) ([]fraudproof.FraudProof, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, challenger, transfer_id, evidence, submitted_at, status
		FROM bridge_fraud_proofs
		WHERE transfer_id = $1
		ORDER BY id
	`, int64(transferID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []fraudproof.FraudProof
	for rows.Next() {
		p, err := scanFraudProof(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func scanFraudProof(scan func(...any) error) (fraudproof.FraudProof, error) {
	var (
		p                           fraudproof.FraudProof
		id, transferID, submittedAt int64
		status                      string
	)
	if err := scan(&id, &p.Challenger, &transferID, &p.Evidence, &submittedAt, &status); err != nil {
		return fraudproof.FraudProof{}, err
	}
	parsed, err := fraudproof.ParseStatus(status)
	if err != nil {
		return fraudproof.FraudProof{}, err
	}
	p.ID = uint64(id)
	p.TransferID = uint64(transferID)
	p.SubmittedAt = uint64(submittedAt)
	p.Status = parsed
	return p, nil
}

// --- ChainStore -------------------------------------------------------------

func (s *Store) UpsertChain(ctx context.Context, cfg chain.Config) (chain.Config, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO bridge_chains (chain_id, enabled, fee_multiplier, total_volume)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chain_id) DO UPDATE
		SET enabled = EXCLUDED.enabled, fee_multiplier = EXCLUDED.fee_multiplier
		RETURNING total_volume
	`, cfg.ChainID, cfg.Enabled, int64(cfg.FeeMultiplier), int64(cfg.TotalVolume))

	var volume int64
	if err := row.Scan(&volume); err != nil {
		return chain.Config{}, err
	}
	cfg.TotalVolume = uint64(volume)
	return cfg, nil
}

func (s *Store) GetChain(ctx context.Context, chainID string) (chain.Config, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT chain_id, enabled, fee_multiplier, total_volume
		FROM bridge_chains
		WHERE chain_id = $1
	`, chainID)

	var (
		cfg                chain.Config
		multiplier, volume int64
	)
	err := row.Scan(&cfg.ChainID, &cfg.Enabled, &multiplier, &volume)
	if errors.Is(err, sql.ErrNoRows) {
		return chain.Config{}, fmt.Errorf("chain %s: %w", chainID, storage.ErrNotFound)
	}
	if err != nil {
		return chain.Config{}, err
	}
	cfg.FeeMultiplier = uint64(multiplier)
	cfg.TotalVolume = uint64(volume)
	return cfg, nil
}

func (s *Store) ListChains(ctx context.Context) ([]chain.Config, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chain_id, enabled, fee_multiplier, total_volume
		FROM bridge_chains
		ORDER BY chain_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []chain.Config
	for rows.Next() {
		var (
			cfg                chain.Config
			multiplier, volume int64
		)
		if err := rows.Scan(&cfg.ChainID, &cfg.Enabled, &multiplier, &volume); err != nil {
			return nil, err
		}
		cfg.FeeMultiplier = uint64(multiplier)
		cfg.TotalVolume = uint64(volume)
		result = append(result, cfg)
	}
	return result, rows.Err()
}

func (s *Store) SetChainVolume(ctx context.Context, chainID string, volume uint64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bridge_chains
		SET total_volume = $2
		WHERE chain_id = $1
	`, chainID, int64(volume))
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("chain %s: %w", chainID, storage.ErrNotFound)
	}
	return nil
}

// --- DepositStore -----------------------------------------------------------

func (s *Store) GetDeposit(ctx context.Context, account string) (uint64, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT balance FROM bridge_deposits WHERE account = $1
	`, account)

	var balance int64
	err := row.Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return uint64(balance), nil
}

func (s *Store) SetDeposit(ctx context.Context, account string, amount uint64) error {
	if amount == 0 {
		_, err := s.db.ExecContext(ctx, `
			DELETE FROM bridge_deposits WHERE account = $1
		`, account)
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bridge_deposits (account, balance)
		VALUES ($1, $2)
		ON CONFLICT (account) DO UPDATE SET balance = EXCLUDED.balance
	`, account, int64(amount))
	return err
}

func (s *Store) ListDeposits(ctx context.Context) (map[string]uint64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account, balance FROM bridge_deposits
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]uint64)
	for rows.Next() {
		var (
			account string
			balance int64
		)
		if err := rows.Scan(&account, &balance); err != nil {
			return nil, err
		}
		result[account] = uint64(balance)
	}
	return result, rows.Err()
}

// --- StateStore -------------------------------------------------------------

func (s *Store) GetState(ctx context.Context) (bridge.State, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT owner, treasury, validator_threshold, total_validators, challenge_period,
		       min_lock_amount, bridge_fee_bps, total_locked, total_bridged, paused, nonce
		FROM bridge_state
		WHERE id = 1
	`)

	var (
		st                                          bridge.State
		threshold, totalValidators, period, minLock int64
		feeBPS, totalLocked, totalBridged, nonce    int64
	)
	err := row.Scan(&st.Owner, &st.Treasury, &threshold, &totalValidators, &period,
		&minLock, &feeBPS, &totalLocked, &totalBridged, &st.Paused, &nonce)
	if errors.Is(err, sql.ErrNoRows) {
		return bridge.State{}, fmt.Errorf("bridge state: %w", storage.ErrNotFound)
	}
	if err != nil {
		return bridge.State{}, err
	}
	st.ValidatorThreshold = uint64(threshold)
	st.TotalValidators = uint64(totalValidators)
	st.ChallengePeriod = uint64(period)
	st.MinLockAmount = uint64(minLock)
	st.BridgeFeeBPS = uint64(feeBPS)
	st.TotalLocked = uint64(totalLocked)
	st.TotalBridged = uint64(totalBridged)
	st.Nonce = uint64(nonce)
	return st, nil
}

func (s *Store) SaveState(ctx context.Context, st bridge.State) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bridge_state (id, owner, treasury, validator_threshold, total_validators, challenge_period,
		                          min_lock_amount, bridge_fee_bps, total_locked, total_bridged, paused, nonce)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET owner = EXCLUDED.owner, treasury = EXCLUDED.treasury,
		    validator_threshold = EXCLUDED.validator_threshold, total_validators = EXCLUDED.total_validators,
		    challenge_period = EXCLUDED.challenge_period, min_lock_amount = EXCLUDED.min_lock_amount,
		    bridge_fee_bps = EXCLUDED.bridge_fee_bps, total_locked = EXCLUDED.total_locked,
		    total_bridged = EXCLUDED.total_bridged, paused = EXCLUDED.paused, nonce = EXCLUDED.nonce
	`, st.Owner, st.Treasury, int64(st.ValidatorThreshold), int64(st.TotalValidators), int64(st.ChallengePeriod),
		int64(st.MinLockAmount), int64(st.BridgeFeeBPS), int64(st.TotalLocked), int64(st.TotalBridged), st.Paused, int64(st.Nonce))
	return err
}
