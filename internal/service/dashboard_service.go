package service

import (
	"context"
	"time"

	"aesthetica/internal/clock"
	"aesthetica/internal/repository"
)

const maxAnalyticsDays = 365

type DashboardService struct {
	repo  *repository.AdminRepository
	clock clock.Clock
}

func NewDashboardService(repo *repository.AdminRepository, clk clock.Clock) *DashboardService {
	if clk == nil {
		clk = clock.System()
	}
	return &DashboardService{repo: repo, clock: clk}
}

func (s *DashboardService) Dashboard(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.repo.GetDashboardStats(ctx, s.clock.Now())
	if err != nil {
		return nil, storeErr("dashboard stats", err)
	}
	return stats, nil
}

// Analytics holds one point per day, oldest first, including days with no activity.
type Analytics struct {
	Days         int                          `json:"days"`
	Appointments []repository.TimeSeriesPoint `json:"appointments"`
	Referrals    []repository.TimeSeriesPoint `json:"referrals"`
	Redemptions  []repository.TimeSeriesPoint `json:"redemptions"`
}

func (s *DashboardService) Analytics(ctx context.Context, days int) (*Analytics, error) {
	if days < 1 {
		days = 30
	}
	if days > maxAnalyticsDays {
		days = maxAnalyticsDays
	}
	today := s.clock.Now().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	appts, err := s.repo.AppointmentsByDay(ctx, since)
	if err != nil {
		return nil, storeErr("appointments by day", err)
	}
	refs, err := s.repo.ReferralsByDay(ctx, since)
	if err != nil {
		return nil, storeErr("referrals by day", err)
	}
	reds, err := s.repo.RedemptionsByDay(ctx, since)
	if err != nil {
		return nil, storeErr("redemptions by day", err)
	}
	return &Analytics{
		Days:         days,
		Appointments: fillDays(appts, since, days),
		Referrals:    fillDays(refs, since, days),
		Redemptions:  fillDays(reds, since, days),
	}, nil
}

// fillDays normalizes driver date formats to YYYY-MM-DD and inserts zero days.
func fillDays(points []repository.TimeSeriesPoint, since time.Time, days int) []repository.TimeSeriesPoint {
	byDate := make(map[string]int64, len(points))
	for _, p := range points {
		d := p.Date
		if len(d) > 10 {
			d = d[:10]
		}
		byDate[d] += p.Count
	}
	out := make([]repository.TimeSeriesPoint, 0, days)
	for i := 0; i < days; i++ {
		d := since.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, repository.TimeSeriesPoint{Date: d, Count: byDate[d]})
	}
	return out
}
