package admin

import (
	"context"
	"fmt"
	"time"

	"fixoo-backend/internal/models"
	"fixoo-backend/internal/modules/order"
	"fixoo-backend/internal/modules/user"
)

// ServiceInterface defines the operational/statistics surface.
type ServiceInterface interface {
	Overview(ctx context.Context) (*models.StatsOverview, error)
	ByDate(ctx context.Context, day time.Time) (*models.DateStats, error)
	ByRange(ctx context.Context, start, end time.Time) (*models.RangeStats, error)
	ChartSeries(ctx context.Context, days int) ([]models.ChartPoint, error)
	ListOrders(ctx context.Context, f models.OrderFilter) ([]*models.Order, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// Service computes statistics from point-in-time snapshots of the order
// collection. Aggregation happens here, not in SQL, so every storage driver
// produces identical numbers; linear scans are fine at this scale.
type Service struct {
	orderRepo order.RepositoryInterface
	userRepo  user.RepositoryInterface

	// Now is the clock; tests override it to pin "today".
	Now func() time.Time
}

// NewService creates a new admin service.
func NewService(orderRepo order.RepositoryInterface, userRepo user.RepositoryInterface) *Service {
	return &Service{orderRepo: orderRepo, userRepo: userRepo, Now: time.Now}
}

const dateLayout = "2006-01-02"

func sameDay(t time.Time, day time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func countByStatus(orders []*models.Order) models.StatusCounts {
	var c models.StatusCounts
	for _, o := range orders {
		switch o.Status {
		case models.StatusPending:
			c.Pending++
		case models.StatusAccepted:
			c.Accepted++
		case models.StatusInProgress:
			c.InProgress++
		case models.StatusCompleted:
			c.Completed++
		case models.StatusCancelled:
			c.Cancelled++
		}
	}
	return c
}

// Overview returns whole-collection counts plus today's activity.
func (s *Service) Overview(ctx context.Context) (*models.StatsOverview, error) {
	orders, err := s.orderRepo.List(ctx, models.OrderFilter{})
	if err != nil {
		return nil, fmt.Errorf("admin.Overview: %w", err)
	}

	today := s.Now()
	overview := &models.StatsOverview{
		Total:    len(orders),
		ByStatus: countByStatus(orders),
	}
	for _, o := range orders {
		if sameDay(o.CreatedAt, today) {
			overview.CreatedToday++
		}
		if o.AcceptedAt != nil && sameDay(*o.AcceptedAt, today) {
			overview.AcceptedToday++
		}
		if o.CompletedAt != nil && sameDay(*o.CompletedAt, today) {
			overview.CompletedToday++
		}
	}
	return overview, nil
}

func dateStats(orders []*models.Order, day time.Time) models.DateStats {
	st := models.DateStats{Date: day.Format(dateLayout)}
	var createdThatDay []*models.Order
	for _, o := range orders {
		if sameDay(o.CreatedAt, day) {
			createdThatDay = append(createdThatDay, o)
			st.Created++
		}
		if o.AcceptedAt != nil && sameDay(*o.AcceptedAt, day) {
			st.Accepted++
		}
		if o.CompletedAt != nil && sameDay(*o.CompletedAt, day) {
			st.Completed++
		}
	}
	st.Total = len(createdThatDay)
	st.ByStatus = countByStatus(createdThatDay)
	return st
}

// ByDate returns the breakdown for a single calendar day.
func (s *Service) ByDate(ctx context.Context, day time.Time) (*models.DateStats, error) {
	orders, err := s.orderRepo.List(ctx, models.OrderFilter{})
	if err != nil {
		return nil, fmt.Errorf("admin.ByDate: %w", err)
	}
	st := dateStats(orders, day)
	return &st, nil
}

// ByRange returns a per-day breakdown across the inclusive date range plus a
// range-wide summary.
func (s *Service) ByRange(ctx context.Context, start, end time.Time) (*models.RangeStats, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date before start date", models.ErrValidation)
	}
	if end.Sub(start) > 366*24*time.Hour {
		return nil, fmt.Errorf("%w: date range exceeds one year", models.ErrValidation)
	}

	orders, err := s.orderRepo.List(ctx, models.OrderFilter{})
	if err != nil {
		return nil, fmt.Errorf("admin.ByRange: %w", err)
	}

	result := &models.RangeStats{
		Start: start.Format(dateLayout),
		End:   end.Format(dateLayout),
	}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		st := dateStats(orders, day)
		result.Days = append(result.Days, st)
		result.Summary.Created += st.Created
		result.Summary.Accepted += st.Accepted
		result.Summary.Completed += st.Completed
	}
	return result, nil
}

// ChartSeries emits one point per trailing calendar day, ending today.
// Always exactly `days` points; days without orders carry zero counts.
func (s *Service) ChartSeries(ctx context.Context, days int) ([]models.ChartPoint, error) {
	if days < 1 || days > 365 {
		return nil, fmt.Errorf("%w: days must be between 1 and 365", models.ErrValidation)
	}

	orders, err := s.orderRepo.List(ctx, models.OrderFilter{})
	if err != nil {
		return nil, fmt.Errorf("admin.ChartSeries: %w", err)
	}

	today := s.Now()
	points := make([]models.ChartPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		p := models.ChartPoint{Date: day.Format(dateLayout)}
		for _, o := range orders {
			if sameDay(o.CreatedAt, day) {
				p.TotalOrders++
				if o.Status == models.StatusPending {
					p.Pending++
				}
			}
			if o.CompletedAt != nil && sameDay(*o.CompletedAt, day) {
				p.Completed++
			}
		}
		points = append(points, p)
	}
	return points, nil
}

// ListOrders lists the whole collection with arbitrary filters, admin only.
func (s *Service) ListOrders(ctx context.Context, f models.OrderFilter) ([]*models.Order, error) {
	orders, err := s.orderRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("admin.ListOrders: %w", err)
	}
	return orders, nil
}

// ListUsers lists every registered account.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin.ListUsers: %w", err)
	}
	return users, nil
}
