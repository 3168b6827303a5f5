package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/R3E-Network/bridge_layer/internal/app/domain/transfer"
	"github.com/R3E-Network/bridge_layer/internal/app/metrics"
	"github.com/R3E-Network/bridge_layer/internal/app/system"
	"github.com/R3E-Network/bridge_layer/pkg/logger"
)

// ExecuteMatured finalizes every pending transfer whose challenge window
// has closed, returning how many were executed. Transfers that fail to
// finalize are logged and skipped so one bad record cannot stall the rest.
func (s *Service) ExecuteMatured(ctx context.Context) (int, error) {
	s.mu.Lock()
	pending, err := s.store.ListTransfersByStatus(ctx, transfer.StatusPending)
	if err != nil {
		s.mu.Unlock()
		return 0, err
	}
	now := s.clock.Current()
	executed := 0
	for _, t := range pending {
		if now <= t.ChallengeEnd {
			continue
		}
		if err := s.finalizeLocked(ctx, t); err != nil {
			s.log.WithError(err).WithField("transfer_id", t.ID).Warn("sweep finalize failed")
			continue
		}
		executed++
	}
	s.mu.Unlock()
	return executed, nil
}

// Sweeper periodically executes matured pending transfers so they finalize
// without anyone calling Execute by hand.
type Sweeper struct {
	service  *Service
	interval time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

var _ system.Service = (*Sweeper)(nil)

// NewSweeper creates a sweeper polling at the given interval.
func NewSweeper(service *Service, interval time.Duration, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.NewDefault("bridge-sweeper")
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Sweeper{service: service, interval: interval, log: log}
}

func (p *Sweeper) Name() string { return "bridge-sweeper" }

func (p *Sweeper) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				p.tick(runCtx)
			}
		}
	}()

	p.log.Info("transfer sweeper started")
	return nil
}

func (p *Sweeper) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

func (p *Sweeper) tick(ctx context.Context) {
	executed, err := p.service.ExecuteMatured(ctx)
	if err != nil {
		p.log.WithError(err).Warn("sweep failed")
		return
	}
	metrics.RecordSweep(executed)
	if executed > 0 {
		p.log.Infof("sweep executed %d matured transfers", executed)
	}
}
