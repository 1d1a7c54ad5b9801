// Package main provides a CLI tool for seeding the database with a demo
// company: a small chart of accounts and the standard number series.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"ledgercore/internal/core/id"
	"ledgercore/internal/domain/coa"
	"ledgercore/internal/domain/journal"
	"ledgercore/internal/domain/series"
	"ledgercore/internal/infrastructure/storage/postgres"
	"ledgercore/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := postgres.RunMigrations(dbURL, envOr("MIGRATIONS_PATH", "migrations")); err != nil {
		log.Fatalw("failed to run migrations", "error", err)
	}

	txManager := postgres.NewTxManager(pool)
	companyID := id.New()
	if raw := os.Getenv("COMPANY_ID"); raw != "" {
		companyID, err = id.Parse(raw)
		if err != nil {
			log.Fatalw("invalid COMPANY_ID", "error", err)
		}
	}

	err = txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := seedAccounts(ctx, txManager, companyID); err != nil {
			return err
		}
		return seedSeries(ctx, txManager, companyID)
	})
	if err != nil {
		log.Fatalw("seeding failed", "error", err)
	}

	log.Infow("seeding complete", "company_id", companyID.String())
}

func seedAccounts(ctx context.Context, txManager *postgres.TxManager, companyID id.ID) error {
	repo := postgres.NewAccountRepo(txManager)

	type accountSeed struct {
		code    string
		name    string
		accType coa.AccountType
		group   string
		manual  bool
	}

	seeds := []accountSeed{
		{"1000", "Cash", coa.TypeAsset, "current_assets", true},
		{"1010", "Bank", coa.TypeAsset, "current_assets", true},
		{"1200", "Accounts Receivable", coa.TypeAsset, "current_assets", false},
		{"1400", "Inventory", coa.TypeAsset, "current_assets", false},
		{"2000", "Accounts Payable", coa.TypeLiability, "current_liabilities", false},
		{"2100", "VAT Payable", coa.TypeLiability, "current_liabilities", false},
		{"2200", "Payroll Payable", coa.TypeLiability, "current_liabilities", false},
		{"3000", "Share Capital", coa.TypeEquity, "equity", true},
		{"4000", "Sales Revenue", coa.TypeRevenue, "operating_revenue", false},
		{"5000", "Cost of Goods Sold", coa.TypeExpense, "operating_expenses", false},
		{"5100", "Salary Expense", coa.TypeExpense, "operating_expenses", false},
		{"5900", "Inventory Gain/Loss", coa.TypeExpense, "operating_expenses", false},
	}

	for _, s := range seeds {
		account := coa.NewAccount(companyID, s.code, s.name, s.accType)
		account.Group = s.group
		account.AllowManualEntry = s.manual
		if err := repo.Create(ctx, account); err != nil {
			return fmt.Errorf("seed account %s: %w", s.code, err)
		}
	}

	return nil
}

func seedSeries(ctx context.Context, txManager *postgres.TxManager, companyID id.ID) error {
	repo := postgres.NewSeriesRepo(txManager)

	type seriesSeed struct {
		docType string
		prefix  string
	}

	seeds := []seriesSeed{
		{journal.DocTypeJournal, "JRNL"},
		{journal.SourceInvoice, "INV"},
		{journal.SourceBill, "BILL"},
		{journal.SourcePayment, "PAY"},
		{journal.SourcePayroll, "PR"},
		{journal.SourceStockAdjustment, "ADJ"},
	}

	now := time.Now().UTC()
	for _, seed := range seeds {
		s := series.NewSeries(companyID, seed.docType, seed.prefix)
		s.LastResetPeriod = s.ResetRule.PeriodMarker(now)
		if err := repo.Create(ctx, s); err != nil {
			return fmt.Errorf("seed series %s: %w", seed.docType, err)
		}
	}

	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
