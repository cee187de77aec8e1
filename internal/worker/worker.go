package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cesargomez89/cratedigger/internal/app"
	"github.com/cesargomez89/cratedigger/internal/constants"
	"github.com/cesargomez89/cratedigger/internal/domain"
	"github.com/cesargomez89/cratedigger/internal/logger"
)

type LabelSource interface {
	ListCrawlableLabels(limit int) ([]*domain.Label, error)
}

type Stepper interface {
	AdvanceLabel(ctx context.Context, ownerID, labelID string) (*app.StepResult, error)
}

// Worker polls for crawlable labels and advances one of them per tick. A
// tick that fires while a step is still running is skipped.
type Worker struct {
	Repo     LabelSource
	Crawler  Stepper
	Logger   *logger.Logger
	Interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	busy     atomic.Bool
}

func NewWorker(repo LabelSource, crawler Stepper, interval time.Duration, log *logger.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	if log == nil {
		log = logger.Default()
	}
	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}
	return &Worker{
		Repo:     repo,
		Crawler:  crawler,
		Logger:   log.WithComponent("worker"),
		Interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (w *Worker) Start() {
	w.Logger.Info("Starting worker", "interval", w.Interval)
	w.wg.Add(1)
	go w.poll()
}

// Stop cancels the poll loop and waits for the step in flight.
func (w *Worker) Stop() {
	w.Logger.Info("Stopping worker")
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) poll() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.Tick(w.ctx)
		}
	}
}

// Tick runs at most one step. It reports whether a step was attempted.
func (w *Worker) Tick(ctx context.Context) (ran bool) {
	if !w.busy.CompareAndSwap(false, true) {
		return false
	}
	defer w.busy.Store(false)

	labels, err := w.Repo.ListCrawlableLabels(1)
	if err != nil {
		w.Logger.Error("Failed to list crawlable labels", "error", err)
		return false
	}
	if len(labels) == 0 {
		return false
	}
	label := labels[0]
	log := w.Logger.WithLabel(label.OwnerID, label.ID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic while advancing label", "panic", fmt.Sprint(r))
		}
	}()

	res, err := w.Crawler.AdvanceLabel(ctx, label.OwnerID, label.ID)
	if err != nil {
		log.Error("Step aborted", "error", err)
		return true
	}
	log.Debug("Step finished", "done", res.Done, "outcome", res.Outcome, "message", res.Message)
	return true
}
