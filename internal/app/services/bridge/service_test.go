package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/R3E-Network/bridge_layer/internal/app/domain/transfer"
	"github.com/R3E-Network/bridge_layer/internal/app/heights"
	"github.com/R3E-Network/bridge_layer/internal/app/ledger"
	"github.com/R3E-Network/bridge_layer/internal/app/services/validators"
	"github.com/R3E-Network/bridge_layer/internal/app/storage/memory"
	apperr "github.com/R3E-Network/bridge_layer/internal/errors"
)

const (
	owner    = "owner"
	treasury = "treasury"
	custody  = "custody"
)

type fixture struct {
	svc    *Service
	assets *ledger.InMemory
	clock  *heights.Manual
	store  *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	assets := ledger.NewInMemory()
	clock := heights.NewManual(100)
	vals := validators.New(store, nil)

	svc, err := New(ctx, store, assets, vals, clock, Config{
		Owner:              owner,
		Treasury:           treasury,
		Custody:            custody,
		ValidatorThreshold: 2,
		ChallengePeriod:    10,
		MinLockAmount:      100,
		BridgeFeeBPS:       30,
	}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.SetChainConfig(ctx, owner, "neo", true, 100); err != nil {
		t.Fatalf("set chain: %v", err)
	}
	for _, v := range []string{"A", "B"} {
		if err := svc.AddValidator(ctx, owner, v); err != nil {
			t.Fatalf("add validator %s: %v", v, err)
		}
	}
	if err := assets.Credit(ctx, "alice", 10_000_000); err != nil {
		t.Fatalf("fund alice: %v", err)
	}

	return &fixture{svc: svc, assets: assets, clock: clock, store: store}
}

func (f *fixture) lock(t *testing.T, amount uint64) LockResult {
	t.Helper()
	res, err := f.svc.Lock(context.Background(), "alice", amount, "NXExternalAddr", "neo")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	return res
}

func balance(t *testing.T, l *ledger.InMemory, account string) uint64 {
	t.Helper()
	bal, err := l.BalanceOf(context.Background(), account)
	if err != nil {
		t.Fatalf("balance of %s: %v", account, err)
	}
	return bal
}

func TestLockCreatesPendingTransfer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res := f.lock(t, 1_000_000)
	if res.Fee != 3000 || res.NetAmount != 997_000 {
		t.Fatalf("fee/net = %d/%d", res.Fee, res.NetAmount)
	}

	got, err := f.svc.GetTransfer(ctx, res.TransferID)
	if err != nil {
		t.Fatalf("get transfer: %v", err)
	}
	if got.Status != transfer.StatusPending {
		t.Fatalf("status = %s", got.Status)
	}
	if got.ChallengeEnd != 110 {
		t.Fatalf("challenge_end = %d, want 110", got.ChallengeEnd)
	}
	if got.Gross() != 1_000_000 {
		t.Fatalf("amount+fee = %d", got.Gross())
	}

	stats := f.svc.Stats(ctx)
	if stats.TotalLocked != 1_000_000 {
		t.Fatalf("total_locked = %d", stats.TotalLocked)
	}

	// The gross amount sits in custody minus the remitted fee.
	if bal := balance(t, f.assets, custody); bal != 997_000 {
		t.Fatalf("custody = %d", bal)
	}
	if bal := balance(t, f.assets, treasury); bal != 3000 {
		t.Fatalf("treasury = %d", bal)
	}

	tally, err := f.store.GetDeposit(ctx, "alice")
	if err != nil || tally != 1_000_000 {
		t.Fatalf("deposit tally = %d, err %v", tally, err)
	}

	cfg, err := f.store.GetChain(ctx, "neo")
	if err != nil || cfg.TotalVolume != 1_000_000 {
		t.Fatalf("chain volume = %d, err %v", cfg.TotalVolume, err)
	}
}

func TestLockBelowMinimumFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Lock(ctx, "alice", 99, "NXExternalAddr", "neo")
	if !errors.Is(err, apperr.InvalidAmount("")) {
		t.Fatalf("expected InvalidAmount, got %v", err)
	}
	if stats := f.svc.Stats(ctx); stats.TotalLocked != 0 {
		t.Fatalf("failed lock mutated totals: %d", stats.TotalLocked)
	}
	if bal := balance(t, f.assets, "alice"); bal != 10_000_000 {
		t.Fatalf("failed lock moved funds: %d", bal)
	}
}

func TestLockUnknownChainFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Lock(ctx, "alice", 1000, "addr", "ghostchain")
	if !errors.Is(err, apperr.InvalidChain("")) {
		t.Fatalf("expected InvalidChain, got %v", err)
	}
}

func TestLockDisabledChainStillLocks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.svc.SetChainConfig(ctx, owner, "neo", false, 100); err != nil {
		t.Fatalf("disable chain: %v", err)
	}
	if _, err := f.svc.Lock(ctx, "alice", 1000, "addr", "neo"); err != nil {
		t.Fatalf("lock on disabled chain: %v", err)
	}
}

func TestLockInsufficientBalanceRecordsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Lock(ctx, "broke", 1000, "addr", "neo")
	if !errors.Is(err, apperr.InvalidAmount("")) {
		t.Fatalf("expected InvalidAmount, got %v", err)
	}
	if _, err := f.svc.GetTransfer(ctx, 0); !errors.Is(err, apperr.NotFound("")) {
		t.Fatalf("transfer was recorded despite failed funding: %v", err)
	}
}

func TestLockWhilePaused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.SetPaused(ctx, owner, true); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := f.svc.Lock(ctx, "alice", 1000, "addr", "neo"); !errors.Is(err, apperr.Paused("")) {
		t.Fatalf("expected Paused, got %v", err)
	}
}

func TestCalculateFee(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if fee := f.svc.CalculateFee(ctx, 1_000_000, "neo"); fee != 3000 {
		t.Fatalf("fee = %d, want 3000", fee)
	}
	if err := f.svc.SetChainConfig(ctx, owner, "eth", true, 50); err != nil {
		t.Fatalf("set chain: %v", err)
	}
	if fee := f.svc.CalculateFee(ctx, 1_000_000, "eth"); fee != 1500 {
		t.Fatalf("fee = %d, want 1500", fee)
	}
	if fee := f.svc.CalculateFee(ctx, 1_000_000, "ghostchain"); fee != 0 {
		t.Fatalf("fee for unknown chain = %d", fee)
	}
}

func TestClaimReleasesFunds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.lock(t, 1_000_000)

	released, err := f.svc.Claim(ctx, "ext-1", "bob", 500_000, "neo", []string{"A", "A", "B"})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if released != 500_000 {
		t.Fatalf("released = %d", released)
	}
	if bal := balance(t, f.assets, "bob"); bal != 500_000 {
		t.Fatalf("bob = %d", bal)
	}

	c, err := f.svc.GetClaim(ctx, "ext-1")
	if err != nil {
		t.Fatalf("get claim: %v", err)
	}
	if !c.Claimed || len(c.Signatures) != 3 {
		t.Fatalf("claim record: %+v", c)
	}

	stats := f.svc.Stats(ctx)
	if stats.TotalBridged != 500_000 || stats.TotalLocked != 500_000 {
		t.Fatalf("totals: bridged %d, locked %d", stats.TotalBridged, stats.TotalLocked)
	}

	// Every raw attestor entry gets a validation credit, duplicates included.
	vals, err := f.store.ListValidators(ctx)
	if err != nil {
		t.Fatalf("list validators: %v", err)
	}
	counts := map[string]uint64{}
	for _, v := range vals {
		counts[v.Account] = v.TotalValidated
	}
	if counts["A"] != 2 || counts["B"] != 1 {
		t.Fatalf("validation counts: %v", counts)
	}
}

func TestClaimIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.lock(t, 1_000_000)

	if _, err := f.svc.Claim(ctx, "ext-1", "bob", 100_000, "neo", []string{"A", "B"}); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	statsBefore := f.svc.Stats(ctx)
	bobBefore := balance(t, f.assets, "bob")

	_, err := f.svc.Claim(ctx, "ext-1", "bob", 100_000, "neo", []string{"A", "B"})
	if !errors.Is(err, apperr.AlreadyClaimed("")) {
		t.Fatalf("expected AlreadyClaimed, got %v", err)
	}
	if f.svc.Stats(ctx) != statsBefore {
		t.Fatalf("second claim mutated state")
	}
	if balance(t, f.assets, "bob") != bobBefore {
		t.Fatalf("second claim moved funds")
	}
}

func TestClaimQuorumFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.lock(t, 1_000_000)

	_, err := f.svc.Claim(ctx, "ext-1", "bob", 1000, "neo", []string{"A", "A"})
	if !errors.Is(err, apperr.InsufficientSignatures("")) {
		t.Fatalf("expected InsufficientSignatures, got %v", err)
	}
	_, err = f.svc.Claim(ctx, "ext-1", "bob", 1000, "neo", []string{"A", "B", "X"})
	if !errors.Is(err, apperr.InvalidValidator("")) {
		t.Fatalf("expected InvalidValidator, got %v", err)
	}
	// Both failures left the idempotency key unused.
	if _, err := f.svc.Claim(ctx, "ext-1", "bob", 1000, "neo", []string{"A", "B"}); err != nil {
		t.Fatalf("claim after failed attempts: %v", err)
	}
}

func TestClaimWhilePaused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.SetPaused(ctx, owner, true); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := f.svc.Claim(ctx, "ext-1", "bob", 1000, "neo", []string{"A", "B"}); !errors.Is(err, apperr.Paused("")) {
		t.Fatalf("expected Paused, got %v", err)
	}
}

func TestExecuteRespectsChallengeWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.lock(t, 1_000_000)

	if err := f.svc.Execute(ctx, res.TransferID); !errors.Is(err, apperr.ChallengePeriodActive("")) {
		t.Fatalf("expected ChallengePeriodActive, got %v", err)
	}
	// The window is inclusive of its last height.
	f.clock.Set(110)
	if err := f.svc.Execute(ctx, res.TransferID); !errors.Is(err, apperr.ChallengePeriodActive("")) {
		t.Fatalf("at challenge_end: expected ChallengePeriodActive, got %v", err)
	}

	f.clock.Set(111)
	if err := f.svc.Execute(ctx, res.TransferID); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got, err := f.svc.GetTransfer(ctx, res.TransferID)
	if err != nil || got.Status != transfer.StatusExecuted {
		t.Fatalf("status = %s, err %v", got.Status, err)
	}
	tally, _ := f.store.GetDeposit(ctx, "alice")
	if tally != 0 {
		t.Fatalf("deposit tally = %d after execute", tally)
	}

	if err := f.svc.Execute(ctx, res.TransferID); !errors.Is(err, apperr.AlreadyProcessed("")) {
		t.Fatalf("second execute: expected AlreadyProcessed, got %v", err)
	}
}

func TestExecuteUnknownTransfer(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.Execute(context.Background(), 404); !errors.Is(err, apperr.NotFound("")) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestSubmitFraudProofWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.lock(t, 1_000_000)

	f.clock.Set(111)
	_, err := f.svc.SubmitFraudProof(ctx, "carol", res.TransferID, "inclusion mismatch")
	if !errors.Is(err, apperr.TransferExpired("")) {
		t.Fatalf("expected TransferExpired, got %v", err)
	}
}

func TestSubmitFraudProofMarksChallenged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.lock(t, 1_000_000)

	proofID, err := f.svc.SubmitFraudProof(ctx, "carol", res.TransferID, "inclusion mismatch")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if proofID == res.TransferID {
		t.Fatalf("proof id %d collides with transfer id", proofID)
	}

	got, err := f.svc.GetTransfer(ctx, res.TransferID)
	if err != nil || got.Status != transfer.StatusChallenged {
		t.Fatalf("status = %s, err %v", got.Status, err)
	}

	// A challenged transfer rejects further proofs and plain execution.
	if _, err := f.svc.SubmitFraudProof(ctx, "dave", res.TransferID, "again"); !errors.Is(err, apperr.AlreadyProcessed("")) {
		t.Fatalf("second submit: expected AlreadyProcessed, got %v", err)
	}
	f.clock.Set(200)
	if err := f.svc.Execute(ctx, res.TransferID); !errors.Is(err, apperr.AlreadyProcessed("")) {
		t.Fatalf("execute challenged: expected AlreadyProcessed, got %v", err)
	}
}

func TestResolveFraudProofValid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.lock(t, 1_000_000)
	proofID, err := f.svc.SubmitFraudProof(ctx, "carol", res.TransferID, "inclusion mismatch")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	aliceBefore := balance(t, f.assets, "alice")
	if err := f.svc.ResolveFraudProof(ctx, owner, proofID, true); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if bal := balance(t, f.assets, "alice"); bal != aliceBefore+997_000 {
		t.Fatalf("refund: alice = %d, want %d", bal, aliceBefore+997_000)
	}
	if bal := balance(t, f.assets, "carol"); bal != 1500 {
		t.Fatalf("challenger reward = %d, want 1500", bal)
	}

	got, err := f.svc.GetTransfer(ctx, res.TransferID)
	if err != nil || got.Status != transfer.StatusReversed {
		t.Fatalf("status = %s, err %v", got.Status, err)
	}

	// A resolved proof cannot be resolved again.
	if err := f.svc.ResolveFraudProof(ctx, owner, proofID, true); !errors.Is(err, apperr.InvalidProof("")) {
		t.Fatalf("second resolve: expected InvalidProof, got %v", err)
	}
	// A reversed transfer rejects new proofs.
	if _, err := f.svc.SubmitFraudProof(ctx, "dave", res.TransferID, "again"); !errors.Is(err, apperr.AlreadyProcessed("")) {
		t.Fatalf("submit vs reversed: expected AlreadyProcessed, got %v", err)
	}
}

func TestResolveFraudProofInvalidFinalizesEarly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.lock(t, 1_000_000)
	proofID, err := f.svc.SubmitFraudProof(ctx, "carol", res.TransferID, "bogus")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// The window is still open; the adjudicator decision overrides it.
	if err := f.svc.ResolveFraudProof(ctx, owner, proofID, false); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, err := f.svc.GetTransfer(ctx, res.TransferID)
	if err != nil || got.Status != transfer.StatusExecuted {
		t.Fatalf("status = %s, err %v", got.Status, err)
	}
	tally, _ := f.store.GetDeposit(ctx, "alice")
	if tally != 0 {
		t.Fatalf("deposit tally = %d", tally)
	}
	if bal := balance(t, f.assets, "carol"); bal != 0 {
		t.Fatalf("challenger paid on invalid proof: %d", bal)
	}
}

func TestResolveFraudProofAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.lock(t, 1_000_000)
	proofID, err := f.svc.SubmitFraudProof(ctx, "carol", res.TransferID, "x")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := f.svc.ResolveFraudProof(ctx, "mallory", proofID, true); !errors.Is(err, apperr.Unauthorized("")) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	if err := f.svc.ResolveFraudProof(ctx, owner, 404, true); !errors.Is(err, apperr.InvalidProof("")) {
		t.Fatalf("unknown proof: expected InvalidProof, got %v", err)
	}
}

func TestEmergencyWithdraw(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.lock(t, 1_000_000)

	if _, err := f.svc.EmergencyWithdraw(ctx, "alice"); !errors.Is(err, apperr.Paused("")) {
		t.Fatalf("unpaused: expected failure, got %v", err)
	}

	if _, err := f.svc.SetPaused(ctx, owner, true); err != nil {
		t.Fatalf("pause: %v", err)
	}
	// Custody holds only the net amount; top it up so the gross tally can
	// be paid out in this scenario.
	if err := f.assets.Credit(ctx, custody, 3000); err != nil {
		t.Fatalf("credit: %v", err)
	}

	aliceBefore := balance(t, f.assets, "alice")
	withdrawn, err := f.svc.EmergencyWithdraw(ctx, "alice")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if withdrawn != 1_000_000 {
		t.Fatalf("withdrawn = %d", withdrawn)
	}
	if bal := balance(t, f.assets, "alice"); bal != aliceBefore+1_000_000 {
		t.Fatalf("alice = %d", bal)
	}
	if stats := f.svc.Stats(ctx); stats.TotalLocked != 0 {
		t.Fatalf("total_locked = %d", stats.TotalLocked)
	}

	if _, err := f.svc.EmergencyWithdraw(ctx, "alice"); !errors.Is(err, apperr.InvalidAmount("")) {
		t.Fatalf("empty tally: expected InvalidAmount, got %v", err)
	}
}

func TestAdminRequiresOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	statsBefore := f.svc.Stats(ctx)

	if err := f.svc.AddValidator(ctx, "mallory", "C"); !errors.Is(err, apperr.Unauthorized("")) {
		t.Fatalf("add validator: %v", err)
	}
	if err := f.svc.RemoveValidator(ctx, "mallory", "A"); !errors.Is(err, apperr.Unauthorized("")) {
		t.Fatalf("remove validator: %v", err)
	}
	if err := f.svc.SetChainConfig(ctx, "mallory", "eth", true, 100); !errors.Is(err, apperr.Unauthorized("")) {
		t.Fatalf("set chain: %v", err)
	}
	if _, err := f.svc.SetThreshold(ctx, "mallory", 1); !errors.Is(err, apperr.Unauthorized("")) {
		t.Fatalf("set threshold: %v", err)
	}
	if _, err := f.svc.SetPaused(ctx, "mallory", true); !errors.Is(err, apperr.Unauthorized("")) {
		t.Fatalf("set paused: %v", err)
	}

	if f.svc.Stats(ctx) != statsBefore {
		t.Fatalf("unauthorized admin op mutated state")
	}
}

func TestSetThreshold(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.SetThreshold(ctx, owner, 3); !errors.Is(err, apperr.ThresholdTooHigh("")) {
		t.Fatalf("expected ThresholdTooHigh, got %v", err)
	}
	got, err := f.svc.SetThreshold(ctx, owner, 1)
	if err != nil || got != 1 {
		t.Fatalf("set threshold: %d, %v", got, err)
	}
	// The lowered threshold takes effect immediately.
	f.lock(t, 1_000_000)
	if _, err := f.svc.Claim(ctx, "ext-1", "bob", 1000, "neo", []string{"A"}); err != nil {
		t.Fatalf("claim with threshold 1: %v", err)
	}
}

func TestValidatorRegistryCounters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.svc.AddValidator(ctx, owner, "A"); !errors.Is(err, apperr.AlreadyValidator("")) {
		t.Fatalf("duplicate add: %v", err)
	}
	if err := f.svc.RemoveValidator(ctx, owner, "ghost"); !errors.Is(err, apperr.UnknownValidator("")) {
		t.Fatalf("remove unknown: %v", err)
	}

	if err := f.svc.RemoveValidator(ctx, owner, "B"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if stats := f.svc.Stats(ctx); stats.TotalValidators != 1 {
		t.Fatalf("total_validators = %d", stats.TotalValidators)
	}
	ok, err := f.svc.IsValidator(ctx, "B")
	if err != nil || ok {
		t.Fatalf("removed validator still active")
	}
}

func TestExecuteMatured(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.lock(t, 1_000_000)
	f.clock.Set(105)
	second := f.lock(t, 1_000_000)

	f.clock.Set(111)
	executed, err := f.svc.ExecuteMatured(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if executed != 1 {
		t.Fatalf("executed = %d, want 1", executed)
	}

	got, _ := f.svc.GetTransfer(ctx, first.TransferID)
	if got.Status != transfer.StatusExecuted {
		t.Fatalf("first = %s", got.Status)
	}
	got, _ = f.svc.GetTransfer(ctx, second.TransferID)
	if got.Status != transfer.StatusPending {
		t.Fatalf("second = %s", got.Status)
	}
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.lock(t, 1_000_000)

	vals := validators.New(f.store, nil)
	revived, err := New(ctx, f.store, f.assets, vals, f.clock, Config{Custody: custody}, nil)
	if err != nil {
		t.Fatalf("revive: %v", err)
	}

	stats := revived.Stats(ctx)
	if stats.TotalLocked != 1_000_000 || stats.MinLockAmount != 100 {
		t.Fatalf("state not restored: %+v", stats)
	}
	got, err := revived.GetTransfer(ctx, res.TransferID)
	if err != nil || got.Status != transfer.StatusPending {
		t.Fatalf("transfer not restored: %v", err)
	}
	// The nonce resumes past existing ids.
	next := f.lock(t, 1000)
	if next.TransferID <= res.TransferID {
		t.Fatalf("nonce regressed: %d after %d", next.TransferID, res.TransferID)
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.lock(t, 1_000_000)
	f.lock(t, 10_000)

	mine, err := f.svc.ListTransfersBySender(ctx, "alice")
	if err != nil {
		t.Fatalf("list by sender: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("got %d transfers for alice", len(mine))
	}
	none, err := f.svc.ListTransfersBySender(ctx, "nobody")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty list, got %d err %v", len(none), err)
	}

	proofID, err := f.svc.SubmitFraudProof(ctx, "carol", first.TransferID, "evidence")
	if err != nil {
		t.Fatalf("submit proof: %v", err)
	}
	p, err := f.svc.GetFraudProof(ctx, proofID)
	if err != nil {
		t.Fatalf("get proof: %v", err)
	}
	if p.Challenger != "carol" || p.TransferID != first.TransferID {
		t.Fatalf("unexpected proof: %+v", p)
	}
	if _, err := f.svc.GetFraudProof(ctx, 9999); !apperr.Is(err, apperr.NotFound("")) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	vals, err := f.svc.ListValidators(ctx)
	if err != nil {
		t.Fatalf("list validators: %v", err)
	}
	if len(vals) != 2 {
		t.Fatalf("got %d validators", len(vals))
	}
}
