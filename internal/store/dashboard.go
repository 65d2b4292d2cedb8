package store

import (
	"context"
	"database/sql"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/opis/internal/model"
)

// DashboardStats are the headline counts shown on the dashboard.
type DashboardStats struct {
	TotalAssets     int                       `json:"total_assets"`
	ByStatus        map[model.AssetStatus]int `json:"by_status"`
	InactiveAssets  int                       `json:"inactive_assets"`
	RetiredAssets   int                       `json:"retired_assets"`
	Campaigns       int                       `json:"campaigns"`
	ActiveCampaigns int                       `json:"active_campaigns"`
	Users           int                       `json:"users"`
}

// Dashboard gathers the dashboard counts concurrently.
func Dashboard(ctx context.Context, db *sql.DB, inactiveDays int, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := CountAssets(ctx, db)
		stats.TotalAssets = n
		return err
	})
	g.Go(func() error {
		counts, err := StatusCounts(ctx, db, nil)
		stats.ByStatus = counts
		return err
	})
	g.Go(func() error {
		n, err := CountInactiveAssets(ctx, db, inactiveDays, now)
		stats.InactiveAssets = n
		return err
	})
	g.Go(func() error {
		total, active, err := CountCampaigns(ctx, db)
		stats.Campaigns, stats.ActiveCampaigns = total, active
		return err
	})
	g.Go(func() error {
		n, err := CountUsers(ctx, db)
		stats.Users = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	stats.RetiredAssets = stats.ByStatus[model.StatusRetired]
	return stats, nil
}
