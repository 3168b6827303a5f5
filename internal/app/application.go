package app

import (
	"context"

	"github.com/R3E-Network/bridge_layer/internal/app/heights"
	"github.com/R3E-Network/bridge_layer/internal/app/ledger"
	bridgesvc "github.com/R3E-Network/bridge_layer/internal/app/services/bridge"
	"github.com/R3E-Network/bridge_layer/internal/app/services/validators"
	"github.com/R3E-Network/bridge_layer/internal/app/storage"
	"github.com/R3E-Network/bridge_layer/internal/app/storage/memory"
	"github.com/R3E-Network/bridge_layer/internal/app/system"
	"github.com/R3E-Network/bridge_layer/internal/config"
	"github.com/R3E-Network/bridge_layer/pkg/logger"
)

// Deps encapsulates injectable dependencies. Nil fields default to the
// in-memory implementations.
type Deps struct {
	Store  storage.BridgeStore
	Assets ledger.Ledger
	Clock  heights.Source
}

// Application ties the bridge services together and manages their
// lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Bridge     *bridgesvc.Service
	Validators *validators.Service
}

// New builds a fully initialised application from the configuration.
func New(ctx context.Context, cfg *config.Config, deps Deps, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if deps.Store == nil {
		deps.Store = memory.New()
	}
	if deps.Assets == nil {
		deps.Assets = ledger.NewInMemory()
	}
	if deps.Clock == nil {
		deps.Clock = heights.NewTicking(cfg.Bridge.BlockInterval)
	}

	valService := validators.New(deps.Store, log)
	bridgeService, err := bridgesvc.New(ctx, deps.Store, deps.Assets, valService, deps.Clock, bridgesvc.Config{
		Owner:              cfg.Bridge.Owner,
		Treasury:           cfg.Bridge.Treasury,
		Custody:            cfg.Bridge.Custody,
		ValidatorThreshold: cfg.Bridge.ValidatorThreshold,
		ChallengePeriod:    cfg.Bridge.ChallengePeriod,
		MinLockAmount:      cfg.Bridge.MinLockAmount,
		BridgeFeeBPS:       cfg.Bridge.BridgeFeeBPS,
	}, log)
	if err != nil {
		return nil, err
	}

	manager := system.NewManager(log)
	manager.Register(bridgesvc.NewSweeper(bridgeService, cfg.Bridge.SweepInterval, log))

	return &Application{
		manager:    manager,
		log:        log,
		Bridge:     bridgeService,
		Validators: valService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before
// Start.
func (a *Application) Attach(svc system.Service) {
	a.manager.Register(svc)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services in reverse order.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
