package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

// DigestBuilder produces the daily stock digest.
type DigestBuilder interface {
	DailyDigest(ctx context.Context) (models.DailyReport, string)
}

// Notifier delivers a digest. A nil Notifier means the digest is only archived.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	reporting DigestBuilder
	notifier  Notifier
	recipient string
	logger    *zap.Logger
}

// NewScheduler creates a scheduler running in loc with the standard
// five-field cron parser.
func NewScheduler(schedule string, loc *time.Location, reporting DigestBuilder, notifier Notifier, recipient string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		schedule:  schedule,
		reporting: reporting,
		notifier:  notifier,
		recipient: recipient,
		logger:    logger,
	}
}

// Start registers the daily digest and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.sendDailyDigest); err != nil {
		return fmt.Errorf("schedule daily digest %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendDailyDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	s.RunDailyDigest(ctx)
}

// RunDailyDigest builds the digest and sends it to the configured recipient.
func (s *Scheduler) RunDailyDigest(ctx context.Context) {
	s.logger.Info("generating daily digest")
	report, text := s.reporting.DailyDigest(ctx)

	if s.notifier == nil || s.recipient == "" {
		s.logger.Info("daily digest built, no recipient configured", zap.Int("items", report.TotalItems))
		return
	}

	req := models.OutboundMessageRequest{
		To:      s.recipient,
		Message: text,
	}

	if err := s.notifier.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send daily digest", zap.Error(err))
	} else {
		s.logger.Info("daily digest sent successfully", zap.Int("items", report.TotalItems))
	}
}
