package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/shrinktrack/internal/config"
	"github.com/mamadbah2/shrinktrack/internal/domain/models"
	"github.com/mamadbah2/shrinktrack/internal/service/shrink"
	"github.com/mamadbah2/shrinktrack/pkg/clients/webhook"
)

// Scheduler runs the daily shrink summary job.
type Scheduler struct {
	cron     *cron.Cron
	svc      *shrink.Service
	notifier webhook.Client
	cfg      config.SummaryConfig
	logger   *zap.Logger
}

// NewScheduler creates a scheduler instance. A nil notifier keeps the
// summary log-only.
func NewScheduler(cfg config.SummaryConfig, svc *shrink.Service, notifier webhook.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour,
	// dom, month, dow), evaluated in the service's range timezone.
	c := cron.New(cron.WithLocation(svc.Location()))

	return &Scheduler{
		cron:     c,
		svc:      svc,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the summary job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runDailySummary)
	if err != nil {
		s.logger.Error("failed to schedule daily summary", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	day := time.Now().In(s.svc.Location()).AddDate(0, 0, -1).Format("2006-01-02")
	summary, err := s.Summarize(ctx, day)
	if err != nil {
		s.logger.Error("failed to build daily summary", zap.Error(err))
		return
	}

	s.logger.Info("daily shrink summary",
		zap.String("date", summary.Date),
		zap.Int("records", summary.TotalRecords),
		zap.Float64("value", summary.TotalValue))

	if s.notifier == nil {
		return
	}

	if err := s.notifier.PostSummary(ctx, summary); err != nil {
		s.logger.Error("failed to deliver daily summary", zap.Error(err))
	} else {
		s.logger.Info("daily summary delivered")
	}
}

// Summarize aggregates one day's shrink per list.
func (s *Scheduler) Summarize(ctx context.Context, day string) (models.DailySummary, error) {
	rng, err := s.svc.ParseRange(day, day)
	if err != nil {
		return models.DailySummary{}, err
	}

	lists, err := s.svc.QueryAll(ctx, rng)
	if err != nil {
		return models.DailySummary{}, err
	}

	summary := models.DailySummary{Date: day}
	for _, lr := range lists {
		if len(lr.Records) == 0 {
			continue
		}

		ls := models.ListSummary{List: lr.List, Records: len(lr.Records)}
		for _, rec := range lr.Records {
			ls.Quantity += rec.Quantity
			if rec.Price != nil {
				ls.Value += rec.Quantity * *rec.Price
			}
		}
		summary.Lists = append(summary.Lists, ls)
		summary.TotalRecords += ls.Records
		summary.TotalValue += ls.Value
	}

	return summary, nil
}
