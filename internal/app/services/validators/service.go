// Package validators implements the attestor registry and the signature
// quorum verifier gating inbound claims.
package validators

import (
	"context"
	"fmt"

	"github.com/R3E-Network/bridge_layer/internal/app/domain/validator"
	"github.com/R3E-Network/bridge_layer/internal/app/storage"
	apperr "github.com/R3E-Network/bridge_layer/internal/errors"
	"github.com/R3E-Network/bridge_layer/pkg/logger"
)

// MaxSignatures bounds the attestor list accepted with a claim.
const MaxSignatures = 10

// Service manages validator records. Mutating calls are expected to arrive
// already serialized by the owning bridge service.
type Service struct {
	store storage.ValidatorStore
	log   *logger.Logger
}

// New creates the validator service.
func New(store storage.ValidatorStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("validators")
	}
	return &Service{store: store, log: log}
}

// Add registers an account as an active validator. Re-adding a deactivated
// account reactivates it with fresh counters.
func (s *Service) Add(ctx context.Context, account string, height uint64) error {
	existing, err := s.store.GetValidator(ctx, account)
	switch {
	case err == nil:
		if existing.Active {
			return apperr.AlreadyValidator(fmt.Sprintf("validator %s already active", account))
		}
		existing.Active = true
		existing.AddedAt = height
		existing.TotalValidated = 0
		existing.SlashCount = 0
		if _, err := s.store.UpdateValidator(ctx, existing); err != nil {
			return fmt.Errorf("reactivate validator: %w", err)
		}
	case apperr.Is(err, storage.ErrNotFound):
		v := validator.Validator{Account: account, Active: true, AddedAt: height}
		if _, err := s.store.CreateValidator(ctx, v); err != nil {
			return fmt.Errorf("create validator: %w", err)
		}
	default:
		return fmt.Errorf("load validator: %w", err)
	}

	s.log.WithField("account", account).Info("validator added")
	return nil
}

// Remove deactivates a validator, preserving its history.
func (s *Service) Remove(ctx context.Context, account string) error {
	existing, err := s.store.GetValidator(ctx, account)
	if apperr.Is(err, storage.ErrNotFound) {
		return apperr.UnknownValidator(fmt.Sprintf("validator %s not registered", account))
	}
	if err != nil {
		return fmt.Errorf("load validator: %w", err)
	}
	if !existing.Active {
		return apperr.UnknownValidator(fmt.Sprintf("validator %s not active", account))
	}

	existing.Active = false
	if _, err := s.store.UpdateValidator(ctx, existing); err != nil {
		return fmt.Errorf("deactivate validator: %w", err)
	}

	s.log.WithField("account", account).Info("validator removed")
	return nil
}

// IsActive reports whether the account is a registered, active validator.
func (s *Service) IsActive(ctx context.Context, account string) (bool, error) {
	v, err := s.store.GetValidator(ctx, account)
	if apperr.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load validator: %w", err)
	}
	return v.Active, nil
}

// RecordValidation increments the attestor's counter after a successful
// claim. Unknown accounts are ignored; the raw signature list may carry
// entries removed since the claim was built.
func (s *Service) RecordValidation(ctx context.Context, account string) error {
	v, err := s.store.GetValidator(ctx, account)
	if apperr.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load validator: %w", err)
	}

	v.TotalValidated++
	if _, err := s.store.UpdateValidator(ctx, v); err != nil {
		return fmt.Errorf("record validation: %w", err)
	}
	return nil
}

// VerifyQuorum checks an attestor list against the threshold. The order is
// fixed: deduplicate preserving first occurrence, capped at MaxSignatures;
// gate on the unique count; then check every entry of the raw list is an
// active validator. Duplicates of a valid validator pass the per-entry check
// but cannot reach quorum past the unique-count gate.
func (s *Service) VerifyQuorum(ctx context.Context, signatures []string, threshold uint64) error {
	seen := make(map[string]struct{}, len(signatures))
	unique := make([]string, 0, len(signatures))
	for _, account := range signatures {
		if len(unique) == MaxSignatures {
			break
		}
		if _, dup := seen[account]; dup {
			continue
		}
		seen[account] = struct{}{}
		unique = append(unique, account)
	}

	if uint64(len(unique)) < threshold {
		return apperr.InsufficientSignatures(fmt.Sprintf("%d unique signatures, need %d", len(unique), threshold))
	}

	for _, account := range signatures {
		active, err := s.IsActive(ctx, account)
		if err != nil {
			return err
		}
		if !active {
			return apperr.InvalidValidator(fmt.Sprintf("%s is not an active validator", account))
		}
	}
	return nil
}

// List returns all validator records, active and deactivated.
func (s *Service) List(ctx context.Context) ([]validator.Validator, error) {
	return s.store.ListValidators(ctx)
}
