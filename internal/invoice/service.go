package invoice

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-komisi/internal/commission"
	"github.com/noah-isme/backend-komisi/internal/common"
	"github.com/noah-isme/backend-komisi/internal/db"
	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
	"github.com/noah-isme/backend-komisi/internal/events"
	"github.com/noah-isme/backend-komisi/internal/lock"
	"github.com/noah-isme/backend-komisi/internal/obs"
)

// Service computes and persists invoice commissions.
type Service struct {
	Store    Store
	Settings RestSource
	Locker   Locker
	LockTTL  time.Duration
	Events   events.Publisher
	Logger   zerolog.Logger
	Now      func() time.Time
}

// resolved is a validated form ready for allocation.
type resolved struct {
	total     float64
	rest      float64
	ids       []pgtype.UUID
	amounts   []commission.ProductAmount
	result    commission.Result
	overAlloc bool
}

// Preview recomputes the breakdown for a form without persisting anything.
func (s *Service) Preview(ctx context.Context, in PreviewInput) (Calculation, error) {
	if err := common.Validate(in); err != nil {
		return Calculation{}, err
	}
	r, err := s.resolve(ctx, s.Store, in.TotalAmount, in.RestPercentage, in.Products, nil)
	if err != nil {
		return Calculation{}, err
	}
	ids := make([]string, len(r.ids))
	for i, id := range r.ids {
		ids[i] = db.UUIDString(id)
	}
	return Calculation{
		ProductIDs:    ids,
		Result:        r.result,
		Display:       commission.Display(r.result),
		OverAllocated: r.overAlloc,
	}, nil
}

// Create validates the form, computes the breakdown and stores the invoice with its lines.
func (s *Service) Create(ctx context.Context, in Input) (Invoice, error) {
	in = normalize(in)
	if err := common.Validate(in); err != nil {
		return Invoice{}, err
	}
	issued, err := s.issuedOn(in.IssuedOn)
	if err != nil {
		return Invoice{}, err
	}
	var out Invoice
	err = s.Store.InTx(ctx, func(q Queries) error {
		r, err := s.resolve(ctx, q, in.TotalAmount, in.RestPercentage, in.Products, nil)
		if err != nil {
			return err
		}
		row, err := q.CreateInvoice(ctx, dbgen.CreateInvoiceParams{
			Number:          in.Number,
			CustomerName:    in.CustomerName,
			Seller:          in.Seller,
			IssuedOn:        db.Date(issued),
			TotalAmount:     r.total,
			RestPercentage:  r.rest,
			SpecialTotal:    r.result.SpecialTotal,
			RestAmount:      r.result.RestAmount,
			RestCommission:  r.result.RestCommission,
			TotalCommission: r.result.TotalCommission,
			Notes:           db.TextPtr(in.Notes),
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrNumberTaken
			}
			return err
		}
		items, err := insertLines(ctx, q, row.ID, r)
		if err != nil {
			return err
		}
		out = fromModel(row, items)
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	obs.ObserveCommissionAmount(out.TotalCommission)
	s.publish(ctx, events.TopicInvoiceCreated, out)
	return out, nil
}

// Update replaces the form of a pending invoice and recomputes it from scratch.
// Without an explicit rest percentage the invoice keeps its stored snapshot.
func (s *Service) Update(ctx context.Context, id string, in Input) (Invoice, error) {
	pid, err := db.ParseUUID(id)
	if err != nil {
		return Invoice{}, ErrInvalidID
	}
	in = normalize(in)
	if err := common.Validate(in); err != nil {
		return Invoice{}, err
	}
	issued, err := s.issuedOn(in.IssuedOn)
	if err != nil {
		return Invoice{}, err
	}
	var out Invoice
	err = s.withInvoiceLock(ctx, id, func(ctx context.Context) error {
		return s.Store.InTx(ctx, func(q Queries) error {
			cur, err := q.GetInvoiceForUpdate(ctx, pid)
			if err != nil {
				if db.IsNotFound(err) {
					return ErrNotFound
				}
				return err
			}
			if cur.Status != StatusPending {
				return ErrNotEditable
			}
			existing, err := q.ListInvoiceProducts(ctx, pid)
			if err != nil {
				return err
			}
			keep := make(map[[16]byte]bool, len(existing))
			for _, it := range existing {
				if it.ProductID.Valid {
					keep[it.ProductID.Bytes] = true
				}
			}
			rest := in.RestPercentage
			if rest == nil {
				snapshot := cur.RestPercentage
				rest = &snapshot
			}
			r, err := s.resolve(ctx, q, in.TotalAmount, rest, in.Products, keep)
			if err != nil {
				return err
			}
			row, err := q.UpdateInvoice(ctx, dbgen.UpdateInvoiceParams{
				ID:              pid,
				Number:          in.Number,
				CustomerName:    in.CustomerName,
				Seller:          in.Seller,
				IssuedOn:        db.Date(issued),
				TotalAmount:     r.total,
				RestPercentage:  r.rest,
				SpecialTotal:    r.result.SpecialTotal,
				RestAmount:      r.result.RestAmount,
				RestCommission:  r.result.RestCommission,
				TotalCommission: r.result.TotalCommission,
				Notes:           db.TextPtr(in.Notes),
			})
			if err != nil {
				if db.IsUniqueViolation(err) {
					return ErrNumberTaken
				}
				return err
			}
			if err := q.DeleteInvoiceProducts(ctx, pid); err != nil {
				return err
			}
			items, err := insertLines(ctx, q, pid, r)
			if err != nil {
				return err
			}
			out = fromModel(row, items)
			return nil
		})
	})
	if err != nil {
		return Invoice{}, err
	}
	s.publish(ctx, events.TopicInvoiceUpdated, out)
	return out, nil
}

// Get loads an invoice with its lines.
func (s *Service) Get(ctx context.Context, id string) (Invoice, error) {
	pid, err := db.ParseUUID(id)
	if err != nil {
		return Invoice{}, ErrInvalidID
	}
	row, err := s.Store.GetInvoice(ctx, pid)
	if err != nil {
		if db.IsNotFound(err) {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, err
	}
	items, err := s.Store.ListInvoiceProducts(ctx, pid)
	if err != nil {
		return Invoice{}, err
	}
	return fromModel(row, items), nil
}

// List returns one page of invoices, newest first, and the total matching count.
func (s *Service) List(ctx context.Context, f Filter) ([]Invoice, int64, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, 0, ErrInvalidStatus
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return nil, 0, ErrInvalidFilter.WithDetails(map[string]string{"to": "must not be before from"})
	}
	status := db.Text(f.Status)
	seller := db.Text(f.Seller)
	from, to := db.Date(f.From), db.Date(f.To)
	rows, err := s.Store.ListInvoices(ctx, dbgen.ListInvoicesParams{
		Status:    status,
		Seller:    seller,
		FromDate:  from,
		ToDate:    to,
		RowLimit:  int32(f.Limit),
		RowOffset: int32(f.Offset),
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.CountInvoices(ctx, dbgen.CountInvoicesParams{Status: status, Seller: seller, FromDate: from, ToDate: to})
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return []Invoice{}, total, nil
	}
	ids := make([]pgtype.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	items, err := s.Store.ListInvoiceProductsByInvoiceIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	byInvoice := make(map[[16]byte][]dbgen.InvoiceProduct, len(rows))
	for _, it := range items {
		byInvoice[it.InvoiceID.Bytes] = append(byInvoice[it.InvoiceID.Bytes], it)
	}
	out := make([]Invoice, len(rows))
	for i, row := range rows {
		out[i] = fromModel(row, byInvoice[row.ID.Bytes])
	}
	return out, total, nil
}

// Delete removes an invoice that has not been paid.
func (s *Service) Delete(ctx context.Context, id string) error {
	pid, err := db.ParseUUID(id)
	if err != nil {
		return ErrInvalidID
	}
	var number string
	err = s.withInvoiceLock(ctx, id, func(ctx context.Context) error {
		return s.Store.InTx(ctx, func(q Queries) error {
			cur, err := q.GetInvoiceForUpdate(ctx, pid)
			if err != nil {
				if db.IsNotFound(err) {
					return ErrNotFound
				}
				return err
			}
			if cur.Status == StatusPaid {
				return ErrPaidUndeleted
			}
			number = cur.Number
			_, err = q.DeleteInvoice(ctx, pid)
			return err
		})
	})
	if err != nil {
		return err
	}
	events.Publish(ctx, s.Events, s.Logger, events.TopicInvoiceDeleted, pid, map[string]any{"id": id, "number": number})
	return nil
}

// ChangeStatus moves an invoice between pending, paid and cancelled. Paid is final.
// Setting the current status again is a no-op.
func (s *Service) ChangeStatus(ctx context.Context, id string, status string) (Invoice, error) {
	pid, err := db.ParseUUID(id)
	if err != nil {
		return Invoice{}, ErrInvalidID
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if !ValidStatus(status) {
		return Invoice{}, ErrInvalidStatus
	}
	var (
		out  Invoice
		from string
	)
	err = s.withInvoiceLock(ctx, id, func(ctx context.Context) error {
		return s.Store.InTx(ctx, func(q Queries) error {
			cur, err := q.GetInvoiceForUpdate(ctx, pid)
			if err != nil {
				if db.IsNotFound(err) {
					return ErrNotFound
				}
				return err
			}
			from = cur.Status
			row := cur
			if from != status {
				if from == StatusPaid {
					return ErrPaidFinal
				}
				var paidAt pgtype.Timestamptz
				if status == StatusPaid {
					paidAt = db.Timestamptz(s.now())
				}
				row, err = q.UpdateInvoiceStatus(ctx, dbgen.UpdateInvoiceStatusParams{ID: pid, Status: status, PaidAt: paidAt})
				if err != nil {
					return err
				}
			}
			items, err := q.ListInvoiceProducts(ctx, pid)
			if err != nil {
				return err
			}
			out = fromModel(row, items)
			return nil
		})
	})
	if err != nil {
		return Invoice{}, err
	}
	if from == status {
		return out, nil
	}
	obs.ObserveInvoiceTransition(from, status)
	s.Logger.Info().Str("invoice_id", id).Str("from", from).Str("to", status).Msg("invoice status changed")
	s.publish(ctx, statusTopic(status), out)
	return out, nil
}

func (s *Service) resolve(ctx context.Context, q Queries, total float64, restOverride *float64, lines []LineInput, allowInactive map[[16]byte]bool) (resolved, error) {
	rest, err := s.restPercentage(ctx, restOverride)
	if err != nil {
		return resolved{}, err
	}
	ids := make([]pgtype.UUID, 0, len(lines))
	seen := make(map[[16]byte]bool, len(lines))
	var dup []string
	for _, l := range lines {
		id, err := db.ParseUUID(l.ProductID)
		if err != nil {
			return resolved{}, validation("INVALID_PRODUCT", "product id is invalid", []string{l.ProductID})
		}
		if seen[id.Bytes] {
			dup = append(dup, l.ProductID)
			continue
		}
		seen[id.Bytes] = true
		ids = append(ids, id)
	}
	if len(dup) > 0 {
		return resolved{}, validation("DUPLICATE_PRODUCT", "a product may appear only once per invoice", dup)
	}
	byID := map[[16]byte]dbgen.Product{}
	if len(ids) > 0 {
		rows, err := q.GetProductsByIDs(ctx, ids)
		if err != nil {
			return resolved{}, err
		}
		for _, p := range rows {
			byID[p.ID.Bytes] = p
		}
	}
	var unknown, inactive []string
	amounts := make([]commission.ProductAmount, 0, len(ids))
	for i, id := range ids {
		p, ok := byID[id.Bytes]
		switch {
		case !ok:
			unknown = append(unknown, lines[i].ProductID)
			continue
		case !p.Active && !allowInactive[id.Bytes]:
			inactive = append(inactive, lines[i].ProductID)
			continue
		}
		amounts = append(amounts, commission.ProductAmount{Name: p.Name, Amount: lines[i].Amount, Percentage: p.Percentage})
	}
	if len(unknown) > 0 {
		return resolved{}, validation("UNKNOWN_PRODUCT", "product does not exist", unknown)
	}
	if len(inactive) > 0 {
		return resolved{}, validation("PRODUCT_INACTIVE", "product is not active", inactive)
	}

	result := commission.Allocate(total, amounts, rest)
	over := result.OverAllocated(total)
	obs.ObserveCommission(over)
	if over {
		s.Logger.Warn().
			Float64("total", total).
			Float64("special_total", result.SpecialTotal).
			Msg("special products exceed invoice total, rest clamped to zero")
	}
	return resolved{total: total, rest: rest, ids: ids, amounts: amounts, result: result, overAlloc: over}, nil
}

func (s *Service) restPercentage(ctx context.Context, override *float64) (float64, error) {
	if override != nil {
		return *override, nil
	}
	if s.Settings == nil {
		return 0, errors.New("invoice: settings not configured")
	}
	return s.Settings.RestPercentage(ctx)
}

func (s *Service) withInvoiceLock(ctx context.Context, id string, fn func(context.Context) error) error {
	if s.Locker == nil {
		return fn(ctx)
	}
	err := s.Locker.WithLock(ctx, lock.Key("invoice", id), s.LockTTL, fn)
	if errors.Is(err, lock.ErrBusy) {
		return ErrBusy
	}
	return err
}

func (s *Service) issuedOn(v string) (time.Time, error) {
	if v == "" {
		y, m, d := s.now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, validation("INVALID_DATE", "issuedOn must be YYYY-MM-DD", []string{v})
	}
	return t, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) publish(ctx context.Context, topic string, inv Invoice) {
	id, err := db.ParseUUID(inv.ID)
	if err != nil {
		return
	}
	events.Publish(ctx, s.Events, s.Logger, topic, id, map[string]any{
		"id":              inv.ID,
		"number":          inv.Number,
		"status":          inv.Status,
		"seller":          inv.Seller,
		"totalCommission": inv.TotalCommission,
	})
}

func insertLines(ctx context.Context, q Queries, invoiceID pgtype.UUID, r resolved) ([]dbgen.InvoiceProduct, error) {
	items := make([]dbgen.InvoiceProduct, 0, len(r.result.Breakdown))
	for i, line := range r.result.Breakdown {
		item, err := q.InsertInvoiceProduct(ctx, dbgen.InsertInvoiceProductParams{
			InvoiceID:   invoiceID,
			ProductID:   r.ids[i],
			ProductName: line.Name,
			Percentage:  line.Percentage,
			Amount:      line.Amount,
			Commission:  line.Commission,
			Position:    int32(i),
		})
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func statusTopic(status string) string {
	switch status {
	case StatusPaid:
		return events.TopicInvoicePaid
	case StatusCancelled:
		return events.TopicInvoiceCancelled
	default:
		return events.TopicInvoiceReopened
	}
}

func normalize(in Input) Input {
	in.Number = strings.TrimSpace(in.Number)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.Seller = strings.TrimSpace(in.Seller)
	in.IssuedOn = strings.TrimSpace(in.IssuedOn)
	return in
}

func validation(code, message string, ids []string) *common.AppError {
	return common.NewAppError(code, message, http.StatusUnprocessableEntity, nil).WithDetails(map[string]any{"productIds": ids})
}
