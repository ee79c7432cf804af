package product_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
)

type fakeStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]dbgen.Product
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[uuid.UUID]dbgen.Product{}}
}

func (f *fakeStore) nameTaken(name string, except uuid.UUID) bool {
	for id, p := range f.rows {
		if id != except && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (f *fakeStore) ListProducts(_ context.Context, onlyActive bool) ([]dbgen.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]dbgen.Product, 0, len(f.rows))
	for _, p := range f.rows {
		if onlyActive && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (f *fakeStore) GetProduct(_ context.Context, id pgtype.UUID) (dbgen.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id.Bytes]
	if !ok {
		return dbgen.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeStore) CreateProduct(_ context.Context, arg dbgen.CreateProductParams) (dbgen.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nameTaken(arg.Name, uuid.Nil) {
		return dbgen.Product{}, &pgconn.PgError{Code: "23505"}
	}
	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}
	id := uuid.New()
	p := dbgen.Product{
		ID:         pgtype.UUID{Bytes: id, Valid: true},
		Name:       arg.Name,
		Percentage: arg.Percentage,
		Active:     arg.Active,
		SortOrder:  arg.SortOrder,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.rows[id] = p
	return p, nil
}

func (f *fakeStore) UpdateProduct(_ context.Context, arg dbgen.UpdateProductParams) (dbgen.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[arg.ID.Bytes]
	if !ok {
		return dbgen.Product{}, pgx.ErrNoRows
	}
	if f.nameTaken(arg.Name, arg.ID.Bytes) {
		return dbgen.Product{}, &pgconn.PgError{Code: "23505"}
	}
	p.Name, p.Percentage, p.Active, p.SortOrder = arg.Name, arg.Percentage, arg.Active, arg.SortOrder
	p.UpdatedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	f.rows[arg.ID.Bytes] = p
	return p, nil
}

func (f *fakeStore) DeleteProduct(_ context.Context, id pgtype.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id.Bytes]; !ok {
		return 0, nil
	}
	delete(f.rows, id.Bytes)
	return 1, nil
}

type recordingPublisher struct {
	topics []string
}

func (r *recordingPublisher) Emit(_ context.Context, topic string, _ pgtype.UUID, _ any) (dbgen.DomainEvent, error) {
	r.topics = append(r.topics, topic)
	return dbgen.DomainEvent{Topic: topic}, nil
}
