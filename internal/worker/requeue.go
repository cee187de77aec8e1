package worker

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cesargomez89/cratedigger/internal/logger"
)

type Requeuer interface {
	RequeueErrored(cooldown time.Duration, now time.Time) (int, error)
}

// RequeueJob periodically resets labels stuck in the error state.
type RequeueJob struct {
	labels   Requeuer
	cooldown time.Duration
	cron     *cron.Cron
	logger   *logger.Logger
	now      func() time.Time
}

func NewRequeueJob(labels Requeuer, schedule string, cooldown time.Duration, log *logger.Logger) (*RequeueJob, error) {
	if log == nil {
		log = logger.Default()
	}
	j := &RequeueJob{
		labels:   labels,
		cooldown: cooldown,
		cron:     cron.New(),
		logger:   log.WithComponent("requeue"),
		now:      func() time.Time { return time.Now().UTC() },
	}
	if _, err := j.cron.AddFunc(schedule, j.run); err != nil {
		return nil, fmt.Errorf("invalid requeue schedule %q: %w", schedule, err)
	}
	return j, nil
}

func (j *RequeueJob) Start() {
	j.logger.Info("Starting requeue job", "cooldown", j.cooldown)
	j.cron.Start()
}

// Stop waits for a running requeue pass to finish.
func (j *RequeueJob) Stop() {
	<-j.cron.Stop().Done()
}

func (j *RequeueJob) run() {
	n, err := j.labels.RequeueErrored(j.cooldown, j.now())
	if err != nil {
		j.logger.Error("Requeue pass failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.Info("Requeued errored labels", "count", n)
	}
}
