package journal

import (
	"context"
	"fmt"
	"time"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/appctx"
	"ledgercore/internal/core/id"
	"ledgercore/internal/core/tx"
	"ledgercore/internal/core/types"
	"ledgercore/internal/domain/audit"
	"ledgercore/internal/domain/series"
	"ledgercore/pkg/logger"
)

// NumberAllocator issues journal numbers. The allocation must execute on the
// ambient transaction so a rolled-back posting consumes no number.
type NumberAllocator interface {
	Allocate(ctx context.Context, companyID id.ID, documentType string, referenceDate time.Time) (series.Allocation, error)
}

// BalanceWriter applies a line's net effect to an account balance as a
// server-side atomic addition.
type BalanceWriter interface {
	ApplyBalanceDelta(ctx context.Context, companyID, accountID id.ID, delta types.Money) error
}

// LineInput is one proposed ledger line in a posting request.
type LineInput struct {
	AccountID   id.ID       `json:"accountId"`
	Debit       types.Money `json:"debit"`
	Credit      types.Money `json:"credit"`
	Description string      `json:"description,omitempty"`
	CostCenter  string      `json:"costCenter,omitempty"`
	Project     string      `json:"project,omitempty"`
}

// PostingRequest carries one business event into the general ledger.
type PostingRequest struct {
	CompanyID    id.ID
	SourceType   string
	SourceID     id.ID
	SourceNumber string
	Date         time.Time
	Description  string
	Lines        []LineInput

	// BranchID scopes the posting when the company runs branch series.
	BranchID *id.ID

	// Manual marks free-form entries subject to the allow-manual-entry check.
	Manual bool

	// reversal linkage is set only by the Reverser in this package.
	isReversal bool
	reversalOf *id.ID
}

// PostingReceipt reports a successful posting.
type PostingReceipt struct {
	JournalID     id.ID       `json:"journalId"`
	JournalNumber string      `json:"journalNumber"`
	TotalDebit    types.Money `json:"totalDebit"`
	TotalCredit   types.Money `json:"totalCredit"`

	// NumberFallback is true when the journal series was missing and a
	// degraded timestamp number was issued.
	NumberFallback bool `json:"numberFallback,omitempty"`
}

// Engine is the single choke point through which every document workflow
// reaches the general ledger. One Post call is one atomic unit: validation,
// number allocation, header+lines persistence, balance updates and the
// audit record commit or roll back together.
type Engine struct {
	journals  Repository
	balances  BalanceWriter
	allocator NumberAllocator
	validator *Validator
	audit     audit.Sink
	txManager tx.Manager
	now       func() time.Time
}

// NewEngine creates a GL posting engine.
func NewEngine(
	journals Repository,
	balances BalanceWriter,
	allocator NumberAllocator,
	validator *Validator,
	auditSink audit.Sink,
	txManager tx.Manager,
) *Engine {
	return &Engine{
		journals:  journals,
		balances:  balances,
		allocator: allocator,
		validator: validator,
		audit:     auditSink,
		txManager: txManager,
		now:       time.Now,
	}
}

// WithNow overrides the clock (tests).
func (e *Engine) WithNow(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// Post validates, numbers and persists a journal entry, then applies its
// line effects to account balances. Nothing is visible on failure.
func (e *Engine) Post(ctx context.Context, req PostingRequest) (PostingReceipt, error) {
	if err := e.checkRequest(req); err != nil {
		return PostingReceipt{}, err
	}

	lines := buildLines(req.Lines)
	totalDebit, totalCredit := Totals(lines)

	var receipt PostingReceipt
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := e.validator.Validate(ctx, req.CompanyID, lines, req.Manual); err != nil {
			return err
		}

		alloc, err := e.allocator.Allocate(ctx, req.CompanyID, DocTypeJournal, req.Date)
		if err != nil {
			return fmt.Errorf("allocate journal number: %w", err)
		}

		entry := &Entry{
			ID:           id.New(),
			CompanyID:    req.CompanyID,
			Number:       alloc.Number,
			Date:         req.Date,
			Description:  req.Description,
			SourceType:   req.SourceType,
			SourceID:     req.SourceID,
			SourceNumber: req.SourceNumber,
			TotalDebit:   totalDebit,
			TotalCredit:  totalCredit,
			Status:       StatusPosted,
			IsReversal:   req.isReversal,
			ReversalOfID: req.reversalOf,
			CreatedAt:    e.now().UTC(),
			CreatedBy:    appctx.GetUserID(ctx),
		}

		if err := e.journals.InsertEntry(ctx, entry); err != nil {
			return fmt.Errorf("insert journal entry: %w", err)
		}

		for i := range lines {
			lines[i].JournalID = entry.ID
		}
		if err := e.journals.InsertLines(ctx, entry.ID, lines); err != nil {
			return fmt.Errorf("insert journal lines: %w", err)
		}

		for _, line := range lines {
			delta := line.Net()
			if delta.IsZero() {
				continue
			}
			if err := e.balances.ApplyBalanceDelta(ctx, req.CompanyID, line.AccountID, delta); err != nil {
				return fmt.Errorf("apply balance to account %s: %w", line.AccountID, err)
			}
		}

		entityType := audit.EntityJournalPosting
		action := audit.ActionPost
		if req.isReversal {
			entityType = audit.EntityJournalReversal
			action = audit.ActionReverse
		}
		entry.Lines = lines
		if err := e.audit.Record(ctx, audit.Entry{
			EntityType: entityType,
			EntityID:   entry.ID,
			Action:     action,
			Payload:    entry,
		}); err != nil {
			return fmt.Errorf("audit posting: %w", err)
		}

		receipt = PostingReceipt{
			JournalID:      entry.ID,
			JournalNumber:  entry.Number,
			TotalDebit:     totalDebit,
			TotalCredit:    totalCredit,
			NumberFallback: alloc.Fallback,
		}
		return nil
	})
	if err != nil {
		return PostingReceipt{}, err
	}

	logger.Info(ctx, "journal posted",
		"journal_id", receipt.JournalID,
		"journal_number", receipt.JournalNumber,
		"source_type", req.SourceType,
		"total_debit", receipt.TotalDebit,
		"reversal", req.isReversal,
	)

	return receipt, nil
}

// GetByID loads a journal entry with its lines.
func (e *Engine) GetByID(ctx context.Context, companyID, journalID id.ID) (*Entry, error) {
	return e.journals.GetWithLines(ctx, companyID, journalID)
}

// List retrieves journal entries with filtering, newest first.
func (e *Engine) List(ctx context.Context, companyID id.ID, filter ListFilter) ([]*Entry, error) {
	return e.journals.List(ctx, companyID, filter)
}

func (e *Engine) checkRequest(req PostingRequest) error {
	if id.IsNil(req.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}
	if req.SourceType == "" {
		return apperror.NewValidation("source type is required").
			WithDetail("field", "sourceType")
	}
	if req.Date.IsZero() {
		return apperror.NewValidation("posting date is required").
			WithDetail("field", "postingDate")
	}
	if len(req.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	return nil
}

// buildLines converts inputs to lines, assigning 1-based line numbers in
// caller-supplied order.
func buildLines(inputs []LineInput) []Line {
	lines := make([]Line, 0, len(inputs))
	for i, in := range inputs {
		lines = append(lines, Line{
			ID:          id.New(),
			LineNumber:  i + 1,
			AccountID:   in.AccountID,
			Debit:       in.Debit,
			Credit:      in.Credit,
			Description: in.Description,
			CostCenter:  in.CostCenter,
			Project:     in.Project,
		})
	}
	return lines
}
