package product

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-komisi/internal/common"
	"github.com/noah-isme/backend-komisi/internal/db"
	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
	"github.com/noah-isme/backend-komisi/internal/events"
)

// Store captures the queries used by the product service.
type Store interface {
	ListProducts(ctx context.Context, onlyActive bool) ([]dbgen.Product, error)
	GetProduct(ctx context.Context, id pgtype.UUID) (dbgen.Product, error)
	CreateProduct(ctx context.Context, arg dbgen.CreateProductParams) (dbgen.Product, error)
	UpdateProduct(ctx context.Context, arg dbgen.UpdateProductParams) (dbgen.Product, error)
	DeleteProduct(ctx context.Context, id pgtype.UUID) (int64, error)
}

var (
	ErrNotFound  = common.NotFound("PRODUCT_NOT_FOUND", "product not found")
	ErrNameTaken = common.Conflict("PRODUCT_NAME_TAKEN", "a product with this name already exists")
	ErrInvalidID = common.BadRequest("INVALID_ID", "product id is invalid")
)

// Product is the API view of a special product.
type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Percentage float64   `json:"percentage"`
	Active     bool      `json:"active"`
	SortOrder  int32     `json:"sortOrder"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Input is the create/update payload.
type Input struct {
	Name       string  `json:"name" validate:"required,max=120"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
	Active     *bool   `json:"active"`
	SortOrder  int32   `json:"sortOrder" validate:"gte=0"`
}

// Service manages the catalogue of special products.
type Service struct {
	Q      Store
	Events events.Publisher
	Logger zerolog.Logger
}

// List returns products ordered by sort order then name.
func (s *Service) List(ctx context.Context, onlyActive bool) ([]Product, error) {
	rows, err := s.Q.ListProducts(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

// Get loads one product.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	pid, err := db.ParseUUID(id)
	if err != nil {
		return Product{}, ErrInvalidID
	}
	row, err := s.Q.GetProduct(ctx, pid)
	if err != nil {
		if db.IsNotFound(err) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return FromModel(row), nil
}

// Create inserts a new product. Names are unique case-insensitively.
func (s *Service) Create(ctx context.Context, in Input) (Product, error) {
	in = normalize(in)
	if err := common.Validate(in); err != nil {
		return Product{}, err
	}
	row, err := s.Q.CreateProduct(ctx, dbgen.CreateProductParams{
		Name:       in.Name,
		Percentage: in.Percentage,
		Active:     active(in),
		SortOrder:  in.SortOrder,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Product{}, ErrNameTaken
		}
		return Product{}, err
	}
	s.publish(ctx, row, "created")
	return FromModel(row), nil
}

// Update replaces the editable fields of a product. Existing invoices keep their snapshots.
func (s *Service) Update(ctx context.Context, id string, in Input) (Product, error) {
	pid, err := db.ParseUUID(id)
	if err != nil {
		return Product{}, ErrInvalidID
	}
	in = normalize(in)
	if err := common.Validate(in); err != nil {
		return Product{}, err
	}
	row, err := s.Q.UpdateProduct(ctx, dbgen.UpdateProductParams{
		ID:         pid,
		Name:       in.Name,
		Percentage: in.Percentage,
		Active:     active(in),
		SortOrder:  in.SortOrder,
	})
	if err != nil {
		switch {
		case db.IsNotFound(err):
			return Product{}, ErrNotFound
		case db.IsUniqueViolation(err):
			return Product{}, ErrNameTaken
		}
		return Product{}, err
	}
	s.publish(ctx, row, "updated")
	return FromModel(row), nil
}

// Delete removes a product. Invoice lines keep their name and percentage snapshot.
func (s *Service) Delete(ctx context.Context, id string) error {
	pid, err := db.ParseUUID(id)
	if err != nil {
		return ErrInvalidID
	}
	n, err := s.Q.DeleteProduct(ctx, pid)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	events.Publish(ctx, s.Events, s.Logger, events.TopicProductChanged, pid, map[string]any{"id": id, "change": "deleted"})
	return nil
}

func (s *Service) publish(ctx context.Context, row dbgen.Product, change string) {
	events.Publish(ctx, s.Events, s.Logger, events.TopicProductChanged, row.ID, map[string]any{
		"id":         db.UUIDString(row.ID),
		"name":       row.Name,
		"percentage": row.Percentage,
		"change":     change,
	})
}

// FromModel converts a row into the API view.
func FromModel(p dbgen.Product) Product {
	return Product{
		ID:         db.UUIDString(p.ID),
		Name:       p.Name,
		Percentage: p.Percentage,
		Active:     p.Active,
		SortOrder:  p.SortOrder,
		CreatedAt:  p.CreatedAt.Time,
		UpdatedAt:  p.UpdatedAt.Time,
	}
}

func normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	return in
}

func active(in Input) bool {
	if in.Active == nil {
		return true
	}
	return *in.Active
}

