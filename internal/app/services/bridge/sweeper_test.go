package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/R3E-Network/bridge_layer/internal/app/domain/transfer"
)

func TestSweeperFinalizesMaturedTransfers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.lock(t, 1_000_000)
	f.clock.Set(200)

	sweeper := NewSweeper(f.svc, 5*time.Millisecond, nil)
	if err := sweeper.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() {
		if err := sweeper.Stop(ctx); err != nil {
			t.Fatalf("stop: %v", err)
		}
	}()

	deadline := time.After(2 * time.Second)
	for {
		got, err := f.svc.GetTransfer(ctx, res.TransferID)
		if err != nil {
			t.Fatalf("get transfer: %v", err)
		}
		if got.Status == transfer.StatusExecuted {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("transfer still %s after deadline", got.Status)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSweeperStartIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sweeper := NewSweeper(f.svc, time.Hour, nil)
	if err := sweeper.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sweeper.Start(ctx); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if err := sweeper.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := sweeper.Stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
