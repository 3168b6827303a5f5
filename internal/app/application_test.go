package app

import (
	"context"
	"testing"

	"github.com/R3E-Network/bridge_layer/internal/app/heights"
	"github.com/R3E-Network/bridge_layer/internal/app/ledger"
	"github.com/R3E-Network/bridge_layer/internal/config"
)

func TestApplicationLifecycle(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Bridge.ValidatorThreshold = 1

	assets := ledger.NewInMemory()
	if err := assets.Credit(ctx, "alice", 1_000_000); err != nil {
		t.Fatalf("credit: %v", err)
	}

	application, err := New(ctx, cfg, Deps{Assets: assets, Clock: heights.NewManual(1)}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	if err := application.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer application.Stop(ctx)

	if err := application.Bridge.AddValidator(ctx, cfg.Bridge.Owner, "val-a"); err != nil {
		t.Fatalf("add validator: %v", err)
	}
	if err := application.Bridge.SetChainConfig(ctx, cfg.Bridge.Owner, "neo", true, 100); err != nil {
		t.Fatalf("set chain: %v", err)
	}

	res, err := application.Bridge.Lock(ctx, "alice", 10_000, "bob-on-neo", "neo")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if res.NetAmount+res.Fee != 10_000 {
		t.Fatalf("net+fee = %d", res.NetAmount+res.Fee)
	}

	stats := application.Bridge.Stats(ctx)
	if stats.TotalLocked != 10_000 {
		t.Fatalf("total_locked = %d", stats.TotalLocked)
	}
}

func TestApplicationDefaults(t *testing.T) {
	application, err := New(context.Background(), nil, Deps{}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	if application.Bridge == nil || application.Validators == nil {
		t.Fatal("services not wired")
	}
}
