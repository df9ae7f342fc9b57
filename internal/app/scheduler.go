package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Freeeeeet/campus_events/internal/model"
	"go.uber.org/zap"
)

// ProposalSweeper отклоняет предложения, время начала которых уже прошло
type ProposalSweeper interface {
	ExpireProposals(ctx context.Context) ([]model.Event, error)
}

// StoreFlusher повторяет записи, не дошедшие до хранилища
type StoreFlusher interface {
	Flush(ctx context.Context) (int, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	sweeper  ProposalSweeper
	flusher  StoreFlusher
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	done     chan struct{}
}

type SchedulerOption func(*Scheduler)

// WithFlusher добавляет повтор неудавшихся записей на каждом тике
func WithFlusher(flusher StoreFlusher) SchedulerOption {
	return func(s *Scheduler) { s.flusher = flusher }
}

// NewScheduler создаёт новый планировщик
func NewScheduler(sweeper ProposalSweeper, interval time.Duration, logger *zap.Logger, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start запускает фоновые задачи. Повторный вызов ничего не делает.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))

	go s.runSweepTask(ctx)
}

// Stop останавливает фоновые задачи и дожидается их завершения.
// Если планировщик не запускался, возвращается сразу.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	if !s.started.Load() {
		return
	}
	<-s.done
}

// runSweepTask периодически отклоняет просроченные предложения
func (s *Scheduler) runSweepTask(ctx context.Context) {
	defer close(s.done)

	// Первый запуск сразу при старте
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Proposal sweep task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Proposal sweep task cancelled")
			return
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	s.flush(ctx)

	expired, err := s.sweeper.ExpireProposals(ctx)
	if err != nil {
		s.logger.Error("Failed to expire proposals", zap.Error(err))
		return
	}

	if len(expired) > 0 {
		s.logger.Info("Expired proposals rejected", zap.Int("count", len(expired)))
	}
}

func (s *Scheduler) flush(ctx context.Context) {
	if s.flusher == nil {
		return
	}

	flushed, err := s.flusher.Flush(ctx)
	if err != nil {
		s.logger.Error("❌ Failed to flush pending writes", zap.Int("flushed", flushed), zap.Error(err))
		return
	}
	if flushed > 0 {
		s.logger.Info("💾 Pending writes flushed", zap.Int("count", flushed))
	}
}
