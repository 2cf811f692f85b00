package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/plastimar/rolltrack/internal/config"
	"github.com/plastimar/rolltrack/internal/repository/sheets"
	"github.com/plastimar/rolltrack/internal/service/waste"
	"github.com/plastimar/rolltrack/pkg/clients/alerting"
)

const reportDateLayout = "2006-01-02"

// Scheduler manages scheduled tasks: the daily waste report, its spreadsheet
// export and threshold alerting.
type Scheduler struct {
	cron     *cron.Cron
	wasteSvc *waste.Service
	exporter sheets.Exporter
	alerts   alerting.Client
	cfg      config.Config
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. Exporter and alerts may be
// nil when their integrations are not configured.
func NewScheduler(cfg config.Config, wasteSvc *waste.Service, exporter sheets.Exporter, alerts alerting.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:     cron.New(),
		wasteSvc: wasteSvc,
		exporter: exporter,
		alerts:   alerts,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the daily report job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.publishDailyReport); err != nil {
		s.logger.Error("failed to schedule daily waste report", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) publishDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Report on the previous calendar day, so the day being reported is
	// complete.
	day := time.Now().UTC().AddDate(0, 0, -1)
	report, err := s.wasteSvc.GenerateDailyReport(ctx, day)
	if err != nil {
		s.logger.Error("failed to generate daily waste report", zap.Error(err))
		return
	}

	if s.exporter != nil {
		for _, section := range report.Sections {
			row := []interface{}{
				report.Date.Format(reportDateLayout),
				section.Key,
				section.TotalInputKg,
				section.TotalOutputKg,
				section.TotalWasteKg,
				meanPctCell(section.MeanWastePct),
				section.RecordCount,
			}
			if err := s.exporter.AppendSummaryRow(ctx, row); err != nil {
				s.logger.Error("failed to export waste summary row",
					zap.String("section", section.Key), zap.Error(err))
			}
		}
	}

	if s.alerts != nil && report.MeanWastePct != nil && *report.MeanWastePct >= s.cfg.Alerts.WastePctThreshold {
		alert := alerting.WasteAlert{
			Date:         report.Date.Format(reportDateLayout),
			TotalWasteKg: report.TotalWasteKg,
			WastePct:     *report.MeanWastePct,
			ThresholdPct: s.cfg.Alerts.WastePctThreshold,
			Message: fmt.Sprintf("Waste on %s reached %.2f%% across %d rolls (threshold %.2f%%).",
				report.Date.Format(reportDateLayout), *report.MeanWastePct, report.RollCount, s.cfg.Alerts.WastePctThreshold),
		}
		if err := s.alerts.SendWasteAlert(ctx, alert); err != nil {
			s.logger.Error("failed to send waste alert", zap.Error(err))
		} else {
			s.logger.Info("waste alert sent", zap.Float64("waste_pct", *report.MeanWastePct))
		}
	}
}

func meanPctCell(pct *float64) interface{} {
	if pct == nil {
		return ""
	}
	return *pct
}
