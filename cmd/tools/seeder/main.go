package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-komisi/internal/commission"
	"github.com/noah-isme/backend-komisi/internal/obs"
)

type seedProduct struct {
	Name       string
	Percentage float64
	SortOrder  int
}

var products = []seedProduct{
	{Name: "Asuransi Jiwa", Percentage: 10, SortOrder: 1},
	{Name: "Asuransi Kendaraan", Percentage: 7.5, SortOrder: 2},
	{Name: "Garansi Tambahan", Percentage: 15, SortOrder: 3},
	{Name: "Paket Servis", Percentage: 5, SortOrder: 4},
}

type seedInvoice struct {
	Number   string
	Customer string
	Seller   string
	Total    float64
	Status   string
	Lines    map[string]float64
}

var invoices = []seedInvoice{
	{Number: "INV-SEED-0001", Customer: "PT Sinar Jaya", Seller: "Rina", Total: 25_000_000, Status: "paid",
		Lines: map[string]float64{"Asuransi Jiwa": 4_000_000, "Paket Servis": 1_500_000}},
	{Number: "INV-SEED-0002", Customer: "CV Maju Bersama", Seller: "Budi", Total: 12_750_000, Status: "pending",
		Lines: map[string]float64{"Garansi Tambahan": 2_250_000}},
	{Number: "INV-SEED-0003", Customer: "Toko Abadi", Seller: "Rina", Total: 8_000_000, Status: "cancelled",
		Lines: map[string]float64{}},
}

func main() {
	_ = godotenv.Load()
	logger := obs.NewLogger("console", "info").With().Str("component", "seeder").Logger()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	rest := 25.0
	if v, err := strconv.ParseFloat(os.Getenv("COMMISSION_DEFAULT_REST_PERCENT"), 64); err == nil {
		rest = v
	}
	if err := seedSettings(ctx, db, rest); err != nil {
		logger.Fatal().Err(err).Msg("seed settings")
	}
	ids, err := seedProducts(ctx, db, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed products")
	}
	if os.Getenv("SEED_SAMPLE_INVOICES") != "" {
		if err := seedInvoices(ctx, db, ids, rest, logger); err != nil {
			logger.Fatal().Err(err).Msg("seed invoices")
		}
	}
	logger.Info().Msg("seeding completed")
}

func seedSettings(ctx context.Context, db *sql.DB, rest float64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO commission_settings (id, rest_percentage) VALUES (1, $1)
		ON CONFLICT (id) DO NOTHING`, rest)
	return err
}

func seedProducts(ctx context.Context, db *sql.DB, logger zerolog.Logger) (map[string]string, error) {
	ids := make(map[string]string, len(products))
	for _, p := range products {
		var id string
		err := db.QueryRowContext(ctx, `SELECT id FROM products WHERE lower(name) = lower($1)`, p.Name).Scan(&id)
		if err == sql.ErrNoRows {
			err = db.QueryRowContext(ctx, `
				INSERT INTO products (name, percentage, sort_order) VALUES ($1, $2, $3)
				RETURNING id`, p.Name, p.Percentage, p.SortOrder).Scan(&id)
			if err == nil {
				logger.Info().Str("product", p.Name).Msg("product created")
			}
		}
		if err != nil {
			return nil, fmt.Errorf("product %q: %w", p.Name, err)
		}
		ids[p.Name] = id
	}
	return ids, nil
}

func seedInvoices(ctx context.Context, db *sql.DB, ids map[string]string, rest float64, logger zerolog.Logger) error {
	pct := make(map[string]float64, len(products))
	for _, p := range products {
		pct[p.Name] = p.Percentage
	}
	for _, inv := range invoices {
		var exists bool
		if err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE number = $1)`, inv.Number).Scan(&exists); err != nil {
			return err
		}
		if exists {
			continue
		}
		active := make([]commission.ProductAmount, 0, len(inv.Lines))
		for _, p := range products {
			if amount, ok := inv.Lines[p.Name]; ok {
				active = append(active, commission.ProductAmount{Name: p.Name, Amount: amount, Percentage: pct[p.Name]})
			}
		}
		res := commission.Allocate(inv.Total, active, rest)
		if err := insertInvoice(ctx, db, inv, res, ids); err != nil {
			return fmt.Errorf("invoice %s: %w", inv.Number, err)
		}
		logger.Info().Str("number", inv.Number).Str("commission", commission.Format(res.TotalCommission)).Msg("invoice created")
	}
	return nil
}

func insertInvoice(ctx context.Context, db *sql.DB, inv seedInvoice, res commission.Result, ids map[string]string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var paidAt any
	if inv.Status == "paid" {
		paidAt = time.Now().UTC()
	}
	var invoiceID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO invoices (number, customer_name, seller, issued_on, total_amount, rest_percentage,
			special_total, rest_amount, rest_commission, total_commission, status, paid_at)
		VALUES ($1, $2, $3, CURRENT_DATE, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		inv.Number, inv.Customer, inv.Seller, inv.Total, res.RestPercentage,
		res.SpecialTotal, res.RestAmount, res.RestCommission, res.TotalCommission, inv.Status, paidAt,
	).Scan(&invoiceID)
	if err != nil {
		return err
	}
	for i, line := range res.Breakdown {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO invoice_products (invoice_id, product_id, product_name, percentage, amount, commission, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			invoiceID, ids[line.Name], line.Name, line.Percentage, line.Amount, line.Commission, i,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}
