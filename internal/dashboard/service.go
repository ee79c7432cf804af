package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-komisi/internal/cache"
	"github.com/noah-isme/backend-komisi/internal/db"
	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
	"github.com/noah-isme/backend-komisi/internal/obs"
)

const dateLayout = "2006-01-02"

// Querier defines the aggregate queries behind the dashboard.
type Querier interface {
	GetCommissionSummary(ctx context.Context, arg dbgen.GetCommissionSummaryParams) (dbgen.GetCommissionSummaryRow, error)
	ListMonthlyCommission(ctx context.Context, arg dbgen.ListMonthlyCommissionParams) ([]dbgen.ListMonthlyCommissionRow, error)
	ListProductCommissionTotals(ctx context.Context, arg dbgen.ListProductCommissionTotalsParams) ([]dbgen.ListProductCommissionTotalsRow, error)
}

// Filter selects invoices by issue date (both ends inclusive) and optionally seller.
type Filter struct {
	From   time.Time
	To     time.Time
	Seller string
}

// ProductTotal aggregates the commission earned through one special product.
type ProductTotal struct {
	Name            string  `json:"name"`
	InvoiceCount    int64   `json:"invoiceCount"`
	TotalAmount     float64 `json:"totalAmount"`
	TotalCommission float64 `json:"totalCommission"`
}

// MonthTotal is one point of the monthly series.
type MonthTotal struct {
	Month           string  `json:"month"`
	InvoiceCount    int64   `json:"invoiceCount"`
	TotalInvoiced   float64 `json:"totalInvoiced"`
	TotalCommission float64 `json:"totalCommission"`
}

// Summary is the dashboard read model. Cancelled invoices count only toward CancelledCommission.
type Summary struct {
	From                string         `json:"from"`
	To                  string         `json:"to"`
	Seller              string         `json:"seller,omitempty"`
	InvoiceCount        int64          `json:"invoiceCount"`
	TotalInvoiced       float64        `json:"totalInvoiced"`
	TotalCommission     float64        `json:"totalCommission"`
	PaidCommission      float64        `json:"paidCommission"`
	PendingCommission   float64        `json:"pendingCommission"`
	CancelledCommission float64        `json:"cancelledCommission"`
	RestCommission      float64        `json:"restCommission"`
	Products            []ProductTotal `json:"products"`
	Monthly             []MonthTotal   `json:"monthly"`
	GeneratedAt         time.Time      `json:"generatedAt"`
}

// Service provides cached access to dashboard aggregates.
type Service struct {
	Q            Querier
	Cache        *cache.JSON
	Logger       zerolog.Logger
	DefaultRange int
	Now          func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// DefaultFilter covers the last days days up to and including today.
func (s *Service) DefaultFilter(days int) Filter {
	if days <= 0 {
		days = s.DefaultRange
	}
	if days <= 0 {
		days = 30
	}
	y, m, d := s.now().Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Filter{From: to.AddDate(0, 0, -(days - 1)), To: to}
}

// Summary returns the aggregates for f, served from cache when the current version has them.
func (s *Service) Summary(ctx context.Context, f Filter) (Summary, error) {
	if s == nil || s.Q == nil {
		return Summary{}, errors.New("dashboard service not configured")
	}
	key, err := s.key(ctx, f)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("dashboard version read failed")
	}
	out, res, err := cache.Fetch(ctx, s.Cache, key, func(ctx context.Context) (Summary, error) {
		return s.compute(ctx, f)
	})
	if res.CacheErr != nil {
		s.Logger.Warn().Err(res.CacheErr).Str("key", key).Msg("dashboard cache unavailable")
	}
	if err != nil {
		return Summary{}, err
	}
	obs.ObserveDashboardCache(res.Hit)
	return out, nil
}

// Warm recomputes f and stores it under the current version.
func (s *Service) Warm(ctx context.Context, f Filter) error {
	key, err := s.key(ctx, f)
	if err != nil {
		return err
	}
	out, err := s.compute(ctx, f)
	if err != nil {
		return err
	}
	return s.Cache.Set(ctx, key, out)
}

// Invalidate orphans every cached summary by bumping the version.
func (s *Service) Invalidate(ctx context.Context) error {
	_, err := s.Cache.Bump(ctx, cache.KeyDashboardVersion)
	return err
}

func (s *Service) key(ctx context.Context, f Filter) (string, error) {
	version, err := s.Cache.Version(ctx, cache.KeyDashboardVersion)
	if err != nil {
		return "", err
	}
	return cache.KeyDashboardSummary(version, f.From.Format(dateLayout), f.To.Format(dateLayout), f.Seller), nil
}

func (s *Service) compute(ctx context.Context, f Filter) (Summary, error) {
	from, to, seller := db.Date(f.From), db.Date(f.To), db.Text(f.Seller)
	totals, err := s.Q.GetCommissionSummary(ctx, dbgen.GetCommissionSummaryParams{FromDate: from, ToDate: to, Seller: seller})
	if err != nil {
		return Summary{}, err
	}
	products, err := s.Q.ListProductCommissionTotals(ctx, dbgen.ListProductCommissionTotalsParams{FromDate: from, ToDate: to, Seller: seller})
	if err != nil {
		return Summary{}, err
	}
	months, err := s.Q.ListMonthlyCommission(ctx, dbgen.ListMonthlyCommissionParams{FromDate: from, ToDate: to, Seller: seller})
	if err != nil {
		return Summary{}, err
	}
	out := Summary{
		From:                f.From.Format(dateLayout),
		To:                  f.To.Format(dateLayout),
		Seller:              f.Seller,
		InvoiceCount:        totals.InvoiceCount,
		TotalInvoiced:       totals.TotalInvoiced,
		TotalCommission:     totals.TotalCommission,
		PaidCommission:      totals.PaidCommission,
		PendingCommission:   totals.PendingCommission,
		CancelledCommission: totals.CancelledCommission,
		RestCommission:      totals.RestCommission,
		Products:            make([]ProductTotal, 0, len(products)),
		Monthly:             make([]MonthTotal, 0, len(months)),
		GeneratedAt:         s.now().UTC(),
	}
	for _, p := range products {
		out.Products = append(out.Products, ProductTotal{
			Name:            p.ProductName,
			InvoiceCount:    p.InvoiceCount,
			TotalAmount:     p.TotalAmount,
			TotalCommission: p.TotalCommission,
		})
	}
	for _, m := range months {
		out.Monthly = append(out.Monthly, MonthTotal{
			Month:           m.Month.Time.Format("2006-01"),
			InvoiceCount:    m.InvoiceCount,
			TotalInvoiced:   m.TotalInvoiced,
			TotalCommission: m.TotalCommission,
		})
	}
	return out, nil
}
