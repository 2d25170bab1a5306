package worker

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Coconut044/SmartTicketSystem/internal/config"
	"github.com/Coconut044/SmartTicketSystem/internal/service"
)

// EscalationWorker runs the overdue-ticket sweep on a cron schedule.
type EscalationWorker struct {
	escalations *service.EscalationService
	cfg         config.EscalationConfig
	logger      *zap.Logger
	cron        *cron.Cron
}

// NewEscalationWorker creates the worker; it does nothing until Start.
func NewEscalationWorker(escalations *service.EscalationService, cfg config.EscalationConfig, logger *zap.Logger) *EscalationWorker {
	return &EscalationWorker{
		escalations: escalations,
		cfg:         cfg,
		logger:      logger,
	}
}

// Start schedules the sweep. Disabled workers start as a no-op so callers
// can Stop unconditionally.
func (w *EscalationWorker) Start(ctx context.Context) error {
	if !w.cfg.Enabled {
		w.logger.Info("escalation sweep disabled")
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	w.cron = cron.New(cron.WithParser(parser))
	_, err := w.cron.AddFunc(w.cfg.CronSpec, func() {
		w.runSweep(ctx)
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	w.logger.Info("escalation sweep scheduled", zap.String("cron", w.cfg.CronSpec))
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (w *EscalationWorker) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
}

// RunOnce triggers a single sweep outside the schedule.
func (w *EscalationWorker) RunOnce(ctx context.Context) (int, error) {
	escalated, err := w.escalations.SweepOverdue(ctx)
	if err != nil {
		return 0, err
	}
	return len(escalated), nil
}

func (w *EscalationWorker) runSweep(ctx context.Context) {
	escalated, err := w.escalations.SweepOverdue(ctx)
	if err != nil {
		w.logger.Error("escalation sweep failed", zap.Error(err))
		return
	}
	if len(escalated) > 0 {
		w.logger.Info("escalation sweep complete", zap.Int("escalated", len(escalated)))
	}
}
