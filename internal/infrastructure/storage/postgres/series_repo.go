package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/domain/series"
)

const seriesTable = "number_series"

var seriesColumns = []string{
	"id", "company_id", "document_type", "prefix", "separator",
	"number_length", "year_format", "reset_rule", "scope",
	"starting_number", "current_value", "last_reset_period",
	"is_active", "version", "created_at", "updated_at",
}

// Compile-time check that SeriesRepo implements series.Repository.
var _ series.Repository = (*SeriesRepo)(nil)

// SeriesRepo implements series.Repository.
type SeriesRepo struct {
	txManager *TxManager
}

// NewSeriesRepo creates a new number series repository.
func NewSeriesRepo(txManager *TxManager) *SeriesRepo {
	return &SeriesRepo{txManager: txManager}
}

func (r *SeriesRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// nextOrdinalSQL advances the counter in a single statement. Concurrent
// callers serialize on the row lock the UPDATE takes, so no two requests
// ever see the same ordinal. The reset comparison happens inside the same
// statement: when the stored period marker differs from the one computed
// for the reference date, the counter restarts from starting_number.
//
// RETURNING reads the post-update row, so current_value - 1 is the ordinal
// that was just issued in both the normal and the reset branch.
const nextOrdinalSQL = `
	UPDATE number_series SET
		current_value = CASE
			WHEN reset_rule <> 'never'
			     AND last_reset_period IS DISTINCT FROM
			         (CASE reset_rule WHEN 'yearly' THEN $3 ELSE $4 END)
			THEN starting_number + 1
			ELSE current_value + 1
		END,
		last_reset_period = CASE reset_rule
			WHEN 'yearly'  THEN $3
			WHEN 'monthly' THEN $4
			ELSE last_reset_period
		END,
		updated_at = now()
	WHERE company_id = $1 AND document_type = $2 AND is_active
	RETURNING current_value - 1 AS ordinal, prefix, separator, number_length, year_format
`

// NextOrdinal advances the counter for (company, documentType) and returns
// the issued ordinal with the formatting attributes read from the same row.
func (r *SeriesRepo) NextOrdinal(ctx context.Context, companyID id.ID, documentType string, referenceDate time.Time) (*series.Issued, error) {
	yearlyMarker := series.ResetYearly.PeriodMarker(referenceDate)
	monthlyMarker := series.ResetMonthly.PeriodMarker(referenceDate)

	var issued series.Issued
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, nextOrdinalSQL, companyID, documentType, yearlyMarker, monthlyMarker).Scan(
		&issued.Ordinal, &issued.Prefix, &issued.Separator,
		&issued.NumberLength, &issued.YearFormat,
	)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewSeriesNotFound(companyID, documentType)
		}
		return nil, fmt.Errorf("advance series %s: %w", documentType, err)
	}

	return &issued, nil
}

// Create inserts a new series.
func (r *SeriesRepo) Create(ctx context.Context, s *series.Series) error {
	q := r.builder().
		Insert(seriesTable).
		Columns(seriesColumns...).
		Values(
			s.ID, s.CompanyID, s.DocumentType, s.Prefix, s.Separator,
			s.NumberLength, s.YearFormat, s.ResetRule, s.Scope,
			s.StartingNumber, s.CurrentValue, s.LastResetPeriod,
			s.IsActive, s.Version, s.CreatedAt, s.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert series: %w", err)
	}
	return nil
}

// GetByDocumentType retrieves the active series for a document type.
func (r *SeriesRepo) GetByDocumentType(ctx context.Context, companyID id.ID, documentType string) (*series.Series, error) {
	q := r.builder().
		Select(seriesColumns...).
		From(seriesTable).
		Where(squirrel.Eq{"company_id": companyID, "document_type": documentType}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s series.Series
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewSeriesNotFound(companyID, documentType)
		}
		return nil, fmt.Errorf("get series: %w", err)
	}

	return &s, nil
}

// List retrieves all series for a company.
func (r *SeriesRepo) List(ctx context.Context, companyID id.ID) ([]*series.Series, error) {
	q := r.builder().
		Select(seriesColumns...).
		From(seriesTable).
		Where(squirrel.Eq{"company_id": companyID}).
		OrderBy("document_type")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []*series.Series
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	return out, nil
}

// Update modifies series attributes with optimistic locking. The counter
// itself is only ever moved by NextOrdinal and SetNextValue.
func (r *SeriesRepo) Update(ctx context.Context, s *series.Series) error {
	q := r.builder().
		Update(seriesTable).
		Set("prefix", s.Prefix).
		Set("separator", s.Separator).
		Set("number_length", s.NumberLength).
		Set("year_format", s.YearFormat).
		Set("reset_rule", s.ResetRule).
		Set("scope", s.Scope).
		Set("is_active", s.IsActive).
		Set("version", s.Version+1).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": s.ID, "version": s.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update series: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("series", s.ID.String())
	}

	s.Version++
	return nil
}

// SetNextValue overrides the counter so the next issued ordinal is value.
// Intended for migrations and onboarding only.
func (r *SeriesRepo) SetNextValue(ctx context.Context, companyID id.ID, documentType string, value int64) error {
	sql := `
		UPDATE number_series
		SET current_value = $3, updated_at = now()
		WHERE company_id = $1 AND document_type = $2
	`
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, companyID, documentType, value)
	if err != nil {
		return fmt.Errorf("set next value: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewSeriesNotFound(companyID, documentType)
	}
	return nil
}
