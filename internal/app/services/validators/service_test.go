package validators

import (
	"context"
	"errors"
	"testing"

	"github.com/R3E-Network/bridge_layer/internal/app/storage/memory"
	apperr "github.com/R3E-Network/bridge_layer/internal/errors"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return New(memory.New(), nil)
}

func TestAddAndRemove(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	if err := svc.Add(ctx, "v1", 100); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Add(ctx, "v1", 101); !errors.Is(err, apperr.AlreadyValidator("")) {
		t.Fatalf("expected AlreadyValidator, got %v", err)
	}

	active, err := svc.IsActive(ctx, "v1")
	if err != nil || !active {
		t.Fatalf("active = %v, err %v", active, err)
	}

	if err := svc.Remove(ctx, "v1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	active, err = svc.IsActive(ctx, "v1")
	if err != nil || active {
		t.Fatalf("removed validator still active")
	}
	if err := svc.Remove(ctx, "v1"); !errors.Is(err, apperr.UnknownValidator("")) {
		t.Fatalf("expected UnknownValidator, got %v", err)
	}
	if err := svc.Remove(ctx, "ghost"); !errors.Is(err, apperr.UnknownValidator("")) {
		t.Fatalf("expected UnknownValidator for unregistered account, got %v", err)
	}
}

func TestReAddResetsCounters(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	if err := svc.Add(ctx, "v1", 100); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.RecordValidation(ctx, "v1"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.Remove(ctx, "v1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.Add(ctx, "v1", 200); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	vals, err := svc.List(ctx)
	if err != nil || len(vals) != 1 {
		t.Fatalf("list: %v (%d records)", err, len(vals))
	}
	if vals[0].TotalValidated != 0 || vals[0].AddedAt != 200 {
		t.Fatalf("counters not reset: %+v", vals[0])
	}
}

func TestRecordValidationIgnoresUnknown(t *testing.T) {
	svc := newService(t)
	if err := svc.RecordValidation(context.Background(), "nobody"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifyQuorumOrder(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	for _, v := range []string{"A", "B"} {
		if err := svc.Add(ctx, v, 1); err != nil {
			t.Fatalf("add %s: %v", v, err)
		}
	}

	// Duplicates of a valid validator count once toward quorum but still
	// pass the per-entry check.
	if err := svc.VerifyQuorum(ctx, []string{"A", "A", "B"}, 2); err != nil {
		t.Fatalf("[A,A,B] threshold 2: %v", err)
	}
	if err := svc.VerifyQuorum(ctx, []string{"A", "A"}, 2); !errors.Is(err, apperr.InsufficientSignatures("")) {
		t.Fatalf("[A,A] threshold 2: expected InsufficientSignatures, got %v", err)
	}

	// The unique-count gate runs before per-entry validity: an unknown
	// account that leaves the unique count short reports the count failure.
	if err := svc.VerifyQuorum(ctx, []string{"X"}, 2); !errors.Is(err, apperr.InsufficientSignatures("")) {
		t.Fatalf("[X] threshold 2: expected InsufficientSignatures, got %v", err)
	}
	// With quorum met on the unique count, an invalid raw entry fails.
	if err := svc.VerifyQuorum(ctx, []string{"A", "B", "X"}, 2); !errors.Is(err, apperr.InvalidValidator("")) {
		t.Fatalf("[A,B,X] threshold 2: expected InvalidValidator, got %v", err)
	}

	// Deactivated validators fail the per-entry check.
	if err := svc.Remove(ctx, "B"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.VerifyQuorum(ctx, []string{"A", "B"}, 1); !errors.Is(err, apperr.InvalidValidator("")) {
		t.Fatalf("deactivated attestor: expected InvalidValidator, got %v", err)
	}
}

func TestVerifyQuorumCapsUniques(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	sigs := make([]string, 0, 12)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		if err := svc.Add(ctx, name, 1); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
		sigs = append(sigs, name)
	}

	// Twelve distinct signers dedup to at most ten uniques.
	if err := svc.VerifyQuorum(ctx, sigs, 11); !errors.Is(err, apperr.InsufficientSignatures("")) {
		t.Fatalf("expected cap at %d uniques, got %v", MaxSignatures, err)
	}
	if err := svc.VerifyQuorum(ctx, sigs, 10); err != nil {
		t.Fatalf("threshold 10 should pass: %v", err)
	}
}
