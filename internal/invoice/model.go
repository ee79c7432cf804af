package invoice

import (
	"time"

	"github.com/noah-isme/backend-komisi/internal/commission"
	"github.com/noah-isme/backend-komisi/internal/common"
	"github.com/noah-isme/backend-komisi/internal/db"
	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
)

// Invoice statuses.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

const dateLayout = "2006-01-02"

var (
	ErrNotFound       = common.NotFound("INVOICE_NOT_FOUND", "invoice not found")
	ErrInvalidID      = common.BadRequest("INVALID_ID", "invoice id is invalid")
	ErrNumberTaken    = common.Conflict("INVOICE_NUMBER_TAKEN", "an invoice with this number already exists")
	ErrNotEditable    = common.Conflict("INVOICE_NOT_EDITABLE", "only pending invoices can be edited")
	ErrPaidFinal      = common.Conflict("INVOICE_PAID_FINAL", "paid invoices cannot change status")
	ErrPaidUndeleted  = common.Conflict("INVOICE_PAID", "paid invoices cannot be deleted")
	ErrBusy           = common.Conflict("INVOICE_BUSY", "invoice is being modified, retry shortly")
	ErrInvalidStatus  = common.BadRequest("INVALID_STATUS", "status must be pending, paid or cancelled")
	ErrInvalidFilter  = common.BadRequest("INVALID_FILTER", "invalid list filter")
)

// LineInput assigns part of the invoice total to a special product.
type LineInput struct {
	ProductID string  `json:"productId" validate:"required,uuid"`
	Amount    float64 `json:"amount" validate:"gte=0"`
}

// PreviewInput is the live form state sent for recomputation.
type PreviewInput struct {
	TotalAmount    float64     `json:"totalAmount" validate:"gte=0"`
	RestPercentage *float64    `json:"restPercentage" validate:"omitempty,gte=0,lte=100"`
	Products       []LineInput `json:"products" validate:"dive"`
}

// Input is the create/update payload.
type Input struct {
	Number         string      `json:"number" validate:"required,max=64"`
	CustomerName   string      `json:"customerName" validate:"required,max=200"`
	Seller         string      `json:"seller" validate:"max=120"`
	IssuedOn       string      `json:"issuedOn" validate:"omitempty,datetime=2006-01-02"`
	TotalAmount    float64     `json:"totalAmount" validate:"gte=0"`
	RestPercentage *float64    `json:"restPercentage" validate:"omitempty,gte=0,lte=100"`
	Products       []LineInput `json:"products" validate:"dive"`
	Notes          *string     `json:"notes" validate:"omitempty,max=2000"`
}

// StatusInput is the PATCH /status payload.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

// Filter narrows invoice listings.
type Filter struct {
	Status string
	Seller string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// Calculation is the allocator output for a form, with the product ids it was resolved from.
type Calculation struct {
	ProductIDs    []string          `json:"productIds"`
	Result        commission.Result `json:"result"`
	Display       commission.Result `json:"display"`
	OverAllocated bool              `json:"overAllocated"`
}

// Line is one persisted breakdown entry. ProductID is empty once the product has been deleted.
type Line struct {
	ProductID  string  `json:"productId,omitempty"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
	Commission float64 `json:"commission"`
}

// Invoice is the API view of a stored invoice.
type Invoice struct {
	ID              string     `json:"id"`
	Number          string     `json:"number"`
	CustomerName    string     `json:"customerName"`
	Seller          string     `json:"seller"`
	IssuedOn        string     `json:"issuedOn"`
	TotalAmount     float64    `json:"totalAmount"`
	RestPercentage  float64    `json:"restPercentage"`
	Lines           []Line     `json:"lines"`
	SpecialTotal    float64    `json:"specialTotal"`
	RestAmount      float64    `json:"restAmount"`
	RestCommission  float64    `json:"restCommission"`
	TotalCommission float64    `json:"totalCommission"`
	OverAllocated   bool       `json:"overAllocated"`
	Status          string     `json:"status"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ValidStatus reports whether s is a known status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

func fromModel(row dbgen.Invoice, items []dbgen.InvoiceProduct) Invoice {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{
			ProductID:  db.UUIDString(it.ProductID),
			Name:       it.ProductName,
			Percentage: it.Percentage,
			Amount:     it.Amount,
			Commission: it.Commission,
		})
	}
	out := Invoice{
		ID:              db.UUIDString(row.ID),
		Number:          row.Number,
		CustomerName:    row.CustomerName,
		Seller:          row.Seller,
		TotalAmount:     row.TotalAmount,
		RestPercentage:  row.RestPercentage,
		Lines:           lines,
		SpecialTotal:    row.SpecialTotal,
		RestAmount:      row.RestAmount,
		RestCommission:  row.RestCommission,
		TotalCommission: row.TotalCommission,
		OverAllocated:   row.SpecialTotal > row.TotalAmount,
		Status:          row.Status,
		PaidAt:          db.TimePtr(row.PaidAt),
		Notes:           db.StringPtr(row.Notes),
		CreatedAt:       row.CreatedAt.Time,
		UpdatedAt:       row.UpdatedAt.Time,
	}
	if row.IssuedOn.Valid {
		out.IssuedOn = row.IssuedOn.Time.Format(dateLayout)
	}
	return out
}
