package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/R3E-Network/bridge_layer/internal/app/domain/bridge"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/chain"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/claim"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/transfer"
	"github.com/R3E-Network/bridge_layer/internal/app/domain/validator"
	"github.com/R3E-Network/bridge_layer/internal/app/storage"
)

func TestTransferLifecycle(t *testing.T) {
	ctx := context.Background()
	store := New()

	created, err := store.CreateTransfer(ctx, transfer.Transfer{ID: 1, Sender: "alice", Amount: 900, Fee: 100, Status: transfer.StatusPending})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateTransfer(ctx, created); err == nil {
		t.Fatalf("duplicate id should fail")
	}

	created.Status = transfer.StatusExecuted
	if _, err := store.UpdateTransfer(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := store.GetTransfer(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != transfer.StatusExecuted {
		t.Fatalf("status = %s", got.Status)
	}

	_, err = store.GetTransfer(ctx, 99)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTransfersByStatus(t *testing.T) {
	ctx := context.Background()
	store := New()
	for i, st := range []transfer.Status{transfer.StatusPending, transfer.StatusExecuted, transfer.StatusPending} {
		if _, err := store.CreateTransfer(ctx, transfer.Transfer{ID: uint64(i), Status: st}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	pending, err := store.ListTransfersByStatus(ctx, transfer.StatusPending)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending", len(pending))
	}
}

func TestListTransfersBySender(t *testing.T) {
	ctx := context.Background()
	store := New()
	for i, sender := range []string{"alice", "bob", "alice"} {
		if _, err := store.CreateTransfer(ctx, transfer.Transfer{ID: uint64(i), Sender: sender}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	mine, err := store.ListTransfersBySender(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("got %d transfers for alice", len(mine))
	}
}

func TestClaimSignaturesAreCopied(t *testing.T) {
	ctx := context.Background()
	store := New()

	sigs := []string{"v1", "v2"}
	if _, err := store.CreateClaim(ctx, claim.Claim{ExternalTxID: "tx-1", Claimed: true, Signatures: sigs}); err != nil {
		t.Fatalf("create: %v", err)
	}
	sigs[0] = "mutated"

	got, err := store.GetClaim(ctx, "tx-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Signatures[0] != "v1" {
		t.Fatalf("stored signatures aliased caller slice")
	}
}

func TestUpsertChainPreservesVolume(t *testing.T) {
	ctx := context.Background()
	store := New()

	if _, err := store.UpsertChain(ctx, chain.Config{ChainID: "neo", Enabled: true, FeeMultiplier: 100}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.SetChainVolume(ctx, "neo", 5000); err != nil {
		t.Fatalf("set volume: %v", err)
	}
	updated, err := store.UpsertChain(ctx, chain.Config{ChainID: "neo", Enabled: false, FeeMultiplier: 50})
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if updated.TotalVolume != 5000 {
		t.Fatalf("volume = %d, want 5000", updated.TotalVolume)
	}
	if updated.Enabled || updated.FeeMultiplier != 50 {
		t.Fatalf("config not updated: %+v", updated)
	}
}

func TestDepositsAndState(t *testing.T) {
	ctx := context.Background()
	store := New()

	if _, err := store.GetState(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unset state, got %v", err)
	}
	if err := store.SaveState(ctx, bridge.State{Owner: "owner", Nonce: 7}); err != nil {
		t.Fatalf("save state: %v", err)
	}
	st, err := store.GetState(ctx)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if st.Nonce != 7 {
		t.Fatalf("nonce = %d", st.Nonce)
	}

	if err := store.SetDeposit(ctx, "alice", 1000); err != nil {
		t.Fatalf("set deposit: %v", err)
	}
	bal, err := store.GetDeposit(ctx, "alice")
	if err != nil || bal != 1000 {
		t.Fatalf("deposit = %d, err %v", bal, err)
	}
	if err := store.SetDeposit(ctx, "alice", 0); err != nil {
		t.Fatalf("clear deposit: %v", err)
	}
	deposits, err := store.ListDeposits(ctx)
	if err != nil {
		t.Fatalf("list deposits: %v", err)
	}
	if len(deposits) != 0 {
		t.Fatalf("cleared deposit still listed: %v", deposits)
	}
}

func TestValidatorSoftDelete(t *testing.T) {
	ctx := context.Background()
	store := New()

	v, err := store.CreateValidator(ctx, validator.Validator{Account: "v1", Active: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	v.Active = false
	v.TotalValidated = 3
	if _, err := store.UpdateValidator(ctx, v); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := store.GetValidator(ctx, "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Active || got.TotalValidated != 3 {
		t.Fatalf("history lost: %+v", got)
	}
}
