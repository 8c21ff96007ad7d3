package entity

import (
	"context"
	"time"
)

type RecentVisitor struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// DateCount is one point of the per-day series. Date is formatted YYYY-MM-DD.
type DateCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type NameCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type DashboardAnalytics struct {
	VisitorsPerDay []DateCount `json:"visitorsPerDay"`
	TopProducts    []NameCount `json:"topProducts"`
}

// DashboardSnapshot is computed on request and never stored.
type DashboardSnapshot struct {
	TotalVisitors         int64              `json:"totalVisitors"`
	TodayVisitors         int64              `json:"todayVisitors"`
	TotalProductInterests int64              `json:"totalProductInterests"`
	RecentVisitors        []RecentVisitor    `json:"recentVisitors"`
	Analytics             DashboardAnalytics `json:"analytics"`
}

type DashboardRepositoryInterface interface {
	CountLeads(ctx context.Context) (int64, error)
	CountLeadsBetween(ctx context.Context, start, end time.Time) (int64, error)
	CountInterests(ctx context.Context) (int64, error)
	RecentLeads(ctx context.Context, limit int) ([]RecentVisitor, error)
	LeadsPerDay(ctx context.Context) ([]DateCount, error)
	TopProducts(ctx context.Context) ([]NameCount, error)
}
