package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/expo-leads/internal/entity"
)

const recentVisitorsLimit = 5

type GetDashboardUseCase struct {
	Repo   entity.DashboardRepositoryInterface
	Logger *zap.Logger

	// Now defines "today"; the zone of the returned time is used. It has to be
	// the zone the repository buckets LeadsPerDay in.
	Now func() time.Time
}

// NewGetDashboardUseCase reads the clock in loc, UTC when nil.
func NewGetDashboardUseCase(repo entity.DashboardRepositoryInterface, loc *time.Location, logger *zap.Logger) *GetDashboardUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &GetDashboardUseCase{
		Repo:   repo,
		Logger: logger,
		Now:    func() time.Time { return time.Now().In(loc) },
	}
}

func (uc *GetDashboardUseCase) Execute(ctx context.Context) (*entity.DashboardSnapshot, error) {
	start, end := dayBounds(uc.Now())

	total, err := uc.Repo.CountLeads(ctx)
	if err != nil {
		return nil, uc.fail("count leads", err)
	}

	today, err := uc.Repo.CountLeadsBetween(ctx, start, end)
	if err != nil {
		return nil, uc.fail("count today's leads", err)
	}

	interests, err := uc.Repo.CountInterests(ctx)
	if err != nil {
		return nil, uc.fail("count product interests", err)
	}

	recent, err := uc.Repo.RecentLeads(ctx, recentVisitorsLimit)
	if err != nil {
		return nil, uc.fail("load recent leads", err)
	}

	perDay, err := uc.Repo.LeadsPerDay(ctx)
	if err != nil {
		return nil, uc.fail("load leads per day", err)
	}

	top, err := uc.Repo.TopProducts(ctx)
	if err != nil {
		return nil, uc.fail("load top products", err)
	}

	return &entity.DashboardSnapshot{
		TotalVisitors:         total,
		TodayVisitors:         today,
		TotalProductInterests: interests,
		RecentVisitors:        nonNil(recent),
		Analytics: entity.DashboardAnalytics{
			VisitorsPerDay: nonNil(perDay),
			TopProducts:    nonNil(top),
		},
	}, nil
}

func (uc *GetDashboardUseCase) fail(step string, err error) error {
	uc.Logger.Error("dashboard query failed", zap.String("step", step), zap.Error(err))
	return databaseError("failed to "+step, err)
}

// dayBounds returns [00:00, next 00:00) of t's calendar day in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
