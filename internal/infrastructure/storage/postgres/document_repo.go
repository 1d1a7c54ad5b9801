package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/domain/docflow"
)

const documentsTable = "documents"

var documentColumns = []string{
	"id", "company_id", "doc_type", "number", "state", "journal_id", "version",
}

// Compile-time check that DocumentRepo implements docflow.DocumentStore.
var _ docflow.DocumentStore = (*DocumentRepo)(nil)

// DocumentRepo implements docflow.DocumentStore.
type DocumentRepo struct {
	txManager *TxManager
}

// NewDocumentRepo creates a new document repository.
func NewDocumentRepo(txManager *TxManager) *DocumentRepo {
	return &DocumentRepo{txManager: txManager}
}

func (r *DocumentRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new document row.
func (r *DocumentRepo) Create(ctx context.Context, doc *docflow.Document) error {
	q := r.builder().
		Insert(documentsTable).
		Columns(documentColumns...).
		Values(doc.ID, doc.CompanyID, doc.DocType, doc.Number, doc.State, doc.JournalID, doc.Version)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID retrieves a document by ID.
func (r *DocumentRepo) GetByID(ctx context.Context, companyID, docID id.ID) (*docflow.Document, error) {
	q := r.builder().
		Select(documentColumns...).
		From(documentsTable).
		Where(squirrel.Eq{"company_id": companyID, "id": docID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d docflow.Document
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("document", docID.String())
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &d, nil
}

// UpdateState writes the new state with optimistic locking on Version.
func (r *DocumentRepo) UpdateState(ctx context.Context, doc *docflow.Document, newState docflow.State) error {
	q := r.builder().
		Update(documentsTable).
		Set("state", newState).
		Set("version", doc.Version+1).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{
			"id":         doc.ID,
			"company_id": doc.CompanyID,
			"version":    doc.Version,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update document state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("document", doc.ID.String())
	}

	doc.State = newState
	doc.Version++
	return nil
}

// LinkJournal records the journal entry a document's completion produced.
func (r *DocumentRepo) LinkJournal(ctx context.Context, companyID, docID, journalID id.ID) error {
	sql := `
		UPDATE documents
		SET journal_id = $3, updated_at = now()
		WHERE company_id = $1 AND id = $2
	`
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, companyID, docID, journalID)
	if err != nil {
		return fmt.Errorf("link journal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("document", docID.String())
	}
	return nil
}
