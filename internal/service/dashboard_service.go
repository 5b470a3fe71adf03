package service

import (
	"context"
	"time"

	"shopcart/internal/model"
	"shopcart/internal/session"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Revenue chart modes and reporting periods.
const (
	ModeDay   = "day"
	ModeWeek  = "week"
	ModeMonth = "month"

	PeriodDay   = "day"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// dashboardService implements DashboardService.
type dashboardService struct {
	api    DashboardAPI
	logger zerolog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(api DashboardAPI, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		api:    api,
		logger: logger.With().Str("service", "dashboard").Logger(),
	}
}

func (s *dashboardService) Revenue(ctx context.Context, sess *session.Session, mode string) (*model.RevenueChart, error) {
	if mode == "" {
		mode = ModeMonth
	}
	if mode != ModeDay && mode != ModeWeek && mode != ModeMonth {
		return nil, model.ErrInvalidPeriod
	}

	report, err := s.api.Revenue(ctx, sess.Token, mode)
	if err != nil {
		return nil, err
	}
	return GroupRevenue(report, mode), nil
}

func (s *dashboardService) CategorySales(ctx context.Context, sess *session.Session, period string) (*model.CategorySalesView, error) {
	period, err := reportingPeriod(period)
	if err != nil {
		return nil, err
	}

	report, err := s.api.CategorySales(ctx, sess.Token, period)
	if err != nil {
		return nil, err
	}
	return categorySalesView(period, report), nil
}

// Overview fetches the order count, category sales and revenue chart in
// parallel.
func (s *dashboardService) Overview(ctx context.Context, sess *session.Session, period, chartMode string) (*model.DashboardOverview, error) {
	period, err := reportingPeriod(period)
	if err != nil {
		return nil, err
	}

	overview := &model.DashboardOverview{Period: period}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		query := model.OrderQuery{Page: 1, Limit: 1, Period: period}
		if err := query.Normalise(); err != nil {
			return err
		}
		page, err := s.api.ListAdminOrders(gctx, sess.Token, query)
		if err != nil {
			return err
		}
		overview.OrderCount = page.Meta.Total
		return nil
	})
	g.Go(func() error {
		view, err := s.CategorySales(gctx, sess, period)
		if err != nil {
			return err
		}
		overview.CategorySales = *view
		return nil
	})
	g.Go(func() error {
		chart, err := s.Revenue(gctx, sess, chartMode)
		if err != nil {
			return err
		}
		overview.Revenue = *chart
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn().Err(err).Str("period", period).Msg("failed to build dashboard overview")
		return nil, err
	}
	return overview, nil
}

// GroupRevenue sums the backend breakdown per chart key, keeping the order
// in which keys first appear. Daily points are keyed by calendar date;
// weekly and monthly periods arrive pre-keyed.
func GroupRevenue(report *model.RevenueReport, mode string) *model.RevenueChart {
	chart := &model.RevenueChart{
		Mode:          mode,
		Points:        []model.RevenuePoint{},
		TotalRevenue:  decimal.Zero,
		TotalQuantity: report.Revenue.Summary.TotalQuantity,
	}

	index := make(map[string]int)
	for _, row := range report.Revenue.Breakdown {
		key := row.Period
		if mode == ModeDay {
			key = dayKey(row.Period)
		}
		amount := decimal.NewFromFloat(row.Revenue)

		if i, ok := index[key]; ok {
			chart.Points[i].Revenue = chart.Points[i].Revenue.Add(amount)
		} else {
			index[key] = len(chart.Points)
			chart.Points = append(chart.Points, model.RevenuePoint{Period: key, Revenue: amount})
		}
		chart.TotalRevenue = chart.TotalRevenue.Add(amount)
	}
	return chart
}

// dayKey formats a timestamp or date as YYYY-MM-DD in UTC. Unparseable
// periods are used as given.
func dayKey(period string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, period); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return period
}

func categorySalesView(period string, report *model.CategorySalesReport) *model.CategorySalesView {
	view := &model.CategorySalesView{
		Period:     period,
		Categories: report.Data,
		TotalSales: decimal.Zero,
	}
	if view.Categories == nil {
		view.Categories = []model.CategorySale{}
	}
	for _, c := range view.Categories {
		view.TotalSales = view.TotalSales.Add(decimal.NewFromFloat(c.Sales))
	}
	return view
}

func reportingPeriod(period string) (string, error) {
	switch period {
	case "":
		return PeriodMonth, nil
	case PeriodDay, PeriodMonth, PeriodYear:
		return period, nil
	}
	return "", model.ErrInvalidPeriod
}
