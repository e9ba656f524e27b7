package cron

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/ssmdetailing/ssm-backend/internal/engagement"
	"github.com/ssmdetailing/ssm-backend/pkg/bigquery"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

type dailyTotalsSource interface {
	DailyTotals(ctx context.Context, day time.Time) ([]engagement.DailyTotal, error)
}

type engagementWarehouse interface {
	ExportEngagement(ctx context.Context, rows []bigquery.EngagementRow) error
}

type ReelEngagementExportJobParams struct {
	Logger     *logger.Logger
	Engagement dailyTotalsSource
	Warehouse  engagementWarehouse
}

// NewReelEngagementExportJob streams yesterday's per-reel totals to BigQuery.
func NewReelEngagementExportJob(params ReelEngagementExportJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Engagement == nil {
		return nil, fmt.Errorf("engagement service required")
	}
	if params.Warehouse == nil {
		return nil, fmt.Errorf("bigquery client required")
	}
	return &reelEngagementExportJob{
		logg:      params.Logger,
		source:    params.Engagement,
		warehouse: params.Warehouse,
		now:       time.Now,
	}, nil
}

type reelEngagementExportJob struct {
	logg      *logger.Logger
	source    dailyTotalsSource
	warehouse engagementWarehouse
	now       func() time.Time

	lastExported civil.Date
}

func (j *reelEngagementExportJob) Name() string { return "reel-engagement-export" }

// Run exports the previous UTC day. Cycles run more than once a day, so the
// export skips a day it has already shipped.
func (j *reelEngagementExportJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	date := civil.DateOf(day)
	if j.lastExported == date {
		return nil
	}

	totals, err := j.source.DailyTotals(ctx, day)
	if err != nil {
		return fmt.Errorf("load daily totals: %w", err)
	}
	rows := make([]bigquery.EngagementRow, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, bigquery.EngagementRow{
			Day:        date,
			ReelID:     t.ReelID.String(),
			Likes:      int64(t.Likes),
			Comments:   int64(t.Comments),
			ExportedAt: now,
		})
	}
	if err := j.warehouse.ExportEngagement(ctx, rows); err != nil {
		return fmt.Errorf("export engagement: %w", err)
	}
	j.lastExported = date

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"day":  date.String(),
		"rows": len(rows),
	})
	j.logg.Info(logCtx, "reel engagement exported")
	return nil
}
