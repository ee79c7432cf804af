package invoice

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
	"github.com/noah-isme/backend-komisi/internal/repo"
)

// Queries lists the generated queries the invoice service runs.
type Queries interface {
	GetProductsByIDs(ctx context.Context, ids []pgtype.UUID) ([]dbgen.Product, error)
	CreateInvoice(ctx context.Context, arg dbgen.CreateInvoiceParams) (dbgen.Invoice, error)
	UpdateInvoice(ctx context.Context, arg dbgen.UpdateInvoiceParams) (dbgen.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, arg dbgen.UpdateInvoiceStatusParams) (dbgen.Invoice, error)
	GetInvoice(ctx context.Context, id pgtype.UUID) (dbgen.Invoice, error)
	GetInvoiceForUpdate(ctx context.Context, id pgtype.UUID) (dbgen.Invoice, error)
	DeleteInvoice(ctx context.Context, id pgtype.UUID) (int64, error)
	ListInvoices(ctx context.Context, arg dbgen.ListInvoicesParams) ([]dbgen.Invoice, error)
	CountInvoices(ctx context.Context, arg dbgen.CountInvoicesParams) (int64, error)
	InsertInvoiceProduct(ctx context.Context, arg dbgen.InsertInvoiceProductParams) (dbgen.InvoiceProduct, error)
	DeleteInvoiceProducts(ctx context.Context, invoiceID pgtype.UUID) error
	ListInvoiceProducts(ctx context.Context, invoiceID pgtype.UUID) ([]dbgen.InvoiceProduct, error)
	ListInvoiceProductsByInvoiceIDs(ctx context.Context, ids []pgtype.UUID) ([]dbgen.InvoiceProduct, error)
}

// Store adds transactions on top of Queries.
type Store interface {
	Queries
	InTx(ctx context.Context, fn func(Queries) error) error
}

// Locker serialises work on one invoice across processes.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// RestSource provides the default rest percentage for new invoices.
type RestSource interface {
	RestPercentage(ctx context.Context) (float64, error)
}

// PgStore runs invoice queries on Postgres.
type PgStore struct {
	*repo.Store
}

// InTx implements Store.
func (s PgStore) InTx(ctx context.Context, fn func(Queries) error) error {
	return s.Store.InTx(ctx, func(q *dbgen.Queries) error {
		return fn(q)
	})
}
