package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/domain/journal"
)

const (
	journalsTable     = "journal_entries"
	journalLinesTable = "journal_lines"
)

var journalColumns = []string{
	"id", "company_id", "journal_number", "journal_date", "description",
	"source_type", "source_id", "source_number",
	"total_debit", "total_credit", "status",
	"is_reversal", "reversal_of_id",
	"created_at", "created_by",
}

var journalLineColumns = []string{
	"id", "journal_id", "line_number", "account_id", "debit", "credit",
	"description", "cost_center", "project",
}

// Compile-time check that JournalRepo implements journal.Repository.
var _ journal.Repository = (*JournalRepo)(nil)

// JournalRepo implements journal.Repository. Journal entries are immutable
// once written: the repo exposes inserts and reads only.
type JournalRepo struct {
	txManager *TxManager
}

// NewJournalRepo creates a new journal repository.
func NewJournalRepo(txManager *TxManager) *JournalRepo {
	return &JournalRepo{txManager: txManager}
}

func (r *JournalRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// InsertEntry persists the journal header.
func (r *JournalRepo) InsertEntry(ctx context.Context, entry *journal.Entry) error {
	q := r.builder().
		Insert(journalsTable).
		Columns(journalColumns...).
		Values(
			entry.ID, entry.CompanyID, entry.Number, entry.Date, entry.Description,
			entry.SourceType, entry.SourceID, entry.SourceNumber,
			entry.TotalDebit, entry.TotalCredit, entry.Status,
			entry.IsReversal, entry.ReversalOfID,
			entry.CreatedAt, entry.CreatedBy,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// InsertLines persists all lines of a journal in one statement.
func (r *JournalRepo) InsertLines(ctx context.Context, journalID id.ID, lines []journal.Line) error {
	if len(lines) == 0 {
		return nil
	}

	q := r.builder().
		Insert(journalLinesTable).
		Columns(journalLineColumns...)

	for _, line := range lines {
		q = q.Values(
			line.ID, journalID, line.LineNumber, line.AccountID,
			line.Debit, line.Credit,
			line.Description, line.CostCenter, line.Project,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert journal lines: %w", err)
	}
	return nil
}

// GetByID loads the journal header without lines.
func (r *JournalRepo) GetByID(ctx context.Context, companyID, journalID id.ID) (*journal.Entry, error) {
	q := r.builder().
		Select(journalColumns...).
		From(journalsTable).
		Where(squirrel.Eq{"company_id": companyID, "id": journalID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e journal.Entry
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("journal entry", journalID.String())
		}
		return nil, fmt.Errorf("get journal entry: %w", err)
	}

	return &e, nil
}

// GetWithLines loads the header and its lines ordered by line_number.
func (r *JournalRepo) GetWithLines(ctx context.Context, companyID, journalID id.ID) (*journal.Entry, error) {
	entry, err := r.GetByID(ctx, companyID, journalID)
	if err != nil {
		return nil, err
	}

	q := r.builder().
		Select(journalLineColumns...).
		From(journalLinesTable).
		Where(squirrel.Eq{"journal_id": journalID}).
		OrderBy("line_number")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []journal.Line
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get journal lines: %w", err)
	}

	entry.Lines = lines
	return entry, nil
}

// List retrieves journal headers with filtering, newest first.
func (r *JournalRepo) List(ctx context.Context, companyID id.ID, filter journal.ListFilter) ([]*journal.Entry, error) {
	q := r.builder().
		Select(journalColumns...).
		From(journalsTable).
		Where(squirrel.Eq{"company_id": companyID}).
		OrderBy("journal_date DESC", "created_at DESC")

	if filter.SourceType != "" {
		q = q.Where(squirrel.Eq{"source_type": filter.SourceType})
	}
	if filter.SourceID != nil {
		q = q.Where(squirrel.Eq{"source_id": *filter.SourceID})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"journal_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"journal_date": *filter.ToDate})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []*journal.Entry
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	return out, nil
}
