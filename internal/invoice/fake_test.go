package invoice

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
)

type memStore struct {
	mu       sync.Mutex
	products map[[16]byte]dbgen.Product
	invoices map[[16]byte]dbgen.Invoice
	lines    map[[16]byte][]dbgen.InvoiceProduct
	txCount  int
}

func newMemStore() *memStore {
	return &memStore{
		products: map[[16]byte]dbgen.Product{},
		invoices: map[[16]byte]dbgen.Invoice{},
		lines:    map[[16]byte][]dbgen.InvoiceProduct{},
	}
}

func (m *memStore) addProduct(name string, pct float64, active bool) string {
	id := uuid.New()
	m.products[id] = dbgen.Product{ID: pgtype.UUID{Bytes: id, Valid: true}, Name: name, Percentage: pct, Active: active}
	return id.String()
}

func (m *memStore) InTx(ctx context.Context, fn func(Queries) error) error {
	m.mu.Lock()
	m.txCount++
	invoices := make(map[[16]byte]dbgen.Invoice, len(m.invoices))
	for k, v := range m.invoices {
		invoices[k] = v
	}
	lines := make(map[[16]byte][]dbgen.InvoiceProduct, len(m.lines))
	for k, v := range m.lines {
		lines[k] = append([]dbgen.InvoiceProduct(nil), v...)
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.invoices, m.lines = invoices, lines
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) GetProductsByIDs(_ context.Context, ids []pgtype.UUID) ([]dbgen.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []dbgen.Product
	for _, id := range ids {
		if p, ok := m.products[id.Bytes]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) CreateInvoice(_ context.Context, arg dbgen.CreateInvoiceParams) (dbgen.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invoices {
		if inv.Number == arg.Number {
			return dbgen.Invoice{}, &pgconn.PgError{Code: "23505"}
		}
	}
	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}
	id := uuid.New()
	inv := dbgen.Invoice{
		ID:              pgtype.UUID{Bytes: id, Valid: true},
		Number:          arg.Number,
		CustomerName:    arg.CustomerName,
		Seller:          arg.Seller,
		IssuedOn:        arg.IssuedOn,
		TotalAmount:     arg.TotalAmount,
		RestPercentage:  arg.RestPercentage,
		SpecialTotal:    arg.SpecialTotal,
		RestAmount:      arg.RestAmount,
		RestCommission:  arg.RestCommission,
		TotalCommission: arg.TotalCommission,
		Status:          StatusPending,
		Notes:           arg.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.invoices[id] = inv
	return inv, nil
}

func (m *memStore) UpdateInvoice(_ context.Context, arg dbgen.UpdateInvoiceParams) (dbgen.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[arg.ID.Bytes]
	if !ok {
		return dbgen.Invoice{}, pgx.ErrNoRows
	}
	inv.Number, inv.CustomerName, inv.Seller, inv.IssuedOn = arg.Number, arg.CustomerName, arg.Seller, arg.IssuedOn
	inv.TotalAmount, inv.RestPercentage = arg.TotalAmount, arg.RestPercentage
	inv.SpecialTotal, inv.RestAmount, inv.RestCommission, inv.TotalCommission = arg.SpecialTotal, arg.RestAmount, arg.RestCommission, arg.TotalCommission
	inv.Notes = arg.Notes
	m.invoices[arg.ID.Bytes] = inv
	return inv, nil
}

func (m *memStore) UpdateInvoiceStatus(_ context.Context, arg dbgen.UpdateInvoiceStatusParams) (dbgen.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[arg.ID.Bytes]
	if !ok {
		return dbgen.Invoice{}, pgx.ErrNoRows
	}
	inv.Status, inv.PaidAt = arg.Status, arg.PaidAt
	m.invoices[arg.ID.Bytes] = inv
	return inv, nil
}

func (m *memStore) GetInvoice(_ context.Context, id pgtype.UUID) (dbgen.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id.Bytes]
	if !ok {
		return dbgen.Invoice{}, pgx.ErrNoRows
	}
	return inv, nil
}

func (m *memStore) GetInvoiceForUpdate(ctx context.Context, id pgtype.UUID) (dbgen.Invoice, error) {
	return m.GetInvoice(ctx, id)
}

func (m *memStore) DeleteInvoice(_ context.Context, id pgtype.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invoices[id.Bytes]; !ok {
		return 0, nil
	}
	delete(m.invoices, id.Bytes)
	delete(m.lines, id.Bytes)
	return 1, nil
}

func (m *memStore) matching(status, seller pgtype.Text, from, to pgtype.Date) []dbgen.Invoice {
	var out []dbgen.Invoice
	for _, inv := range m.invoices {
		if status.Valid && inv.Status != status.String {
			continue
		}
		if seller.Valid && inv.Seller != seller.String {
			continue
		}
		if from.Valid && inv.IssuedOn.Time.Before(from.Time) {
			continue
		}
		if to.Valid && inv.IssuedOn.Time.After(to.Time) {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out
}

func (m *memStore) ListInvoices(_ context.Context, arg dbgen.ListInvoicesParams) ([]dbgen.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.matching(arg.Status, arg.Seller, arg.FromDate, arg.ToDate)
	start := int(arg.RowOffset)
	if start > len(all) {
		start = len(all)
	}
	end := start + int(arg.RowLimit)
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (m *memStore) CountInvoices(_ context.Context, arg dbgen.CountInvoicesParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(arg.Status, arg.Seller, arg.FromDate, arg.ToDate))), nil
}

func (m *memStore) InsertInvoiceProduct(_ context.Context, arg dbgen.InsertInvoiceProductParams) (dbgen.InvoiceProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := dbgen.InvoiceProduct{
		ID:          pgtype.UUID{Bytes: uuid.New(), Valid: true},
		InvoiceID:   arg.InvoiceID,
		ProductID:   arg.ProductID,
		ProductName: arg.ProductName,
		Percentage:  arg.Percentage,
		Amount:      arg.Amount,
		Commission:  arg.Commission,
		Position:    arg.Position,
	}
	m.lines[arg.InvoiceID.Bytes] = append(m.lines[arg.InvoiceID.Bytes], item)
	return item, nil
}

func (m *memStore) DeleteInvoiceProducts(_ context.Context, invoiceID pgtype.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lines, invoiceID.Bytes)
	return nil
}

func (m *memStore) ListInvoiceProducts(_ context.Context, invoiceID pgtype.UUID) ([]dbgen.InvoiceProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]dbgen.InvoiceProduct(nil), m.lines[invoiceID.Bytes]...), nil
}

func (m *memStore) ListInvoiceProductsByInvoiceIDs(_ context.Context, ids []pgtype.UUID) ([]dbgen.InvoiceProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []dbgen.InvoiceProduct
	for _, id := range ids {
		out = append(out, m.lines[id.Bytes]...)
	}
	return out, nil
}

type fixedRest float64

func (f fixedRest) RestPercentage(context.Context) (float64, error) { return float64(f), nil }

type topicLog struct {
	mu     sync.Mutex
	topics []string
}

func (t *topicLog) Emit(_ context.Context, topic string, _ pgtype.UUID, _ any) (dbgen.DomainEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.topics = append(t.topics, topic)
	return dbgen.DomainEvent{Topic: topic}, nil
}
