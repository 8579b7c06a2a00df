package pull

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/docnotion/internal/logfields"
)

// Scheduler repeats pulls on a fixed interval. A pull still running when the
// next one is due pushes that run back instead of overlapping it.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

func NewScheduler(logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler(gocron.WithLogger(gocronLogger{logger}))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// Every schedules run to start immediately and then once per interval. It
// returns the job id.
func (s *Scheduler) Every(ctx context.Context, interval time.Duration, run func(context.Context) error) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() error { return run(ctx) }),
		gocron.WithName("pull"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithEventListeners(
			gocron.BeforeJobRuns(func(jobID uuid.UUID, jobName string) {
				s.logger.Info("Scheduled pull starting", slog.String("job", jobName), slog.String("job_id", jobID.String()))
			}),
			gocron.AfterJobRunsWithError(func(jobID uuid.UUID, jobName string, err error) {
				s.logger.Error("Scheduled pull failed", slog.String("job", jobName), slog.String("job_id", jobID.String()), logfields.Error(err))
			}),
		),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic pull job: %w", err)
	}
	return job.ID().String(), nil
}

func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop waits for a running pull to finish and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// gocronLogger adapts slog to the gocron.Logger interface.
type gocronLogger struct{ l *slog.Logger }

func (g gocronLogger) Debug(msg string, args ...any) { g.l.Debug(msg, args...) }
func (g gocronLogger) Info(msg string, args ...any)  { g.l.Debug(msg, args...) }
func (g gocronLogger) Warn(msg string, args ...any)  { g.l.Warn(msg, args...) }
func (g gocronLogger) Error(msg string, args ...any) { g.l.Error(msg, args...) }
