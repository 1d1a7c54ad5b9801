package docflow

import (
	"context"
	"fmt"
	"time"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/core/tx"
	"ledgercore/internal/domain/journal"
	"ledgercore/pkg/logger"
)

// Document is the lifecycle view of a business document: its current state
// and the journal entry its completion produced, if any.
type Document struct {
	ID        id.ID  `db:"id" json:"id"`
	CompanyID id.ID  `db:"company_id" json:"companyId"`
	DocType   string `db:"doc_type" json:"docType"`
	Number    string `db:"number" json:"number"`
	State     State  `db:"state" json:"state"`
	JournalID *id.ID `db:"journal_id" json:"journalId,omitempty"`
	Version   int    `db:"version" json:"version"`
}

// NewDocument creates a document in the draft state.
func NewDocument(companyID id.ID, docType, number string) *Document {
	return &Document{
		ID:        id.New(),
		CompanyID: companyID,
		DocType:   docType,
		Number:    number,
		State:     StateDraft,
		Version:   1,
	}
}

// DocumentStore persists document lifecycle rows.
type DocumentStore interface {
	GetByID(ctx context.Context, companyID, docID id.ID) (*Document, error)

	// UpdateState writes the new state with optimistic locking on Version.
	UpdateState(ctx context.Context, doc *Document, newState State) error
}

// ReversalPort is the slice of the reversal engine the workflow needs.
type ReversalPort interface {
	Reverse(ctx context.Context, companyID, journalID id.ID, reversalDate time.Time, reason string) (journal.PostingReceipt, error)
}

// TransitionResult reports an applied transition.
type TransitionResult struct {
	DocumentID id.ID  `json:"documentId"`
	From       State  `json:"from"`
	To         State  `json:"to"`
	Effect     Effect `json:"effect"`

	// ReversalJournalID is set when the transition reversed a posting.
	ReversalJournalID     *id.ID `json:"reversalJournalId,omitempty"`
	ReversalJournalNumber string `json:"reversalJournalNumber,omitempty"`
}

// Workflow applies lifecycle transitions to documents. The state write and
// any triggered reversal commit as one transaction: a document never shows
// cancelled while its journal entry still stands.
type Workflow struct {
	docs      DocumentStore
	reverser  ReversalPort
	txManager tx.Manager
	now       func() time.Time
}

// NewWorkflow creates a document workflow service.
func NewWorkflow(docs DocumentStore, reverser ReversalPort, txManager tx.Manager) *Workflow {
	return &Workflow{
		docs:      docs,
		reverser:  reverser,
		txManager: txManager,
		now:       time.Now,
	}
}

// WithNow overrides the clock (tests).
func (w *Workflow) WithNow(now func() time.Time) {
	if now != nil {
		w.now = now
	}
}

// ApplyTransition moves a document to target if the transition table allows
// it for role, persisting the new state and reversing the linked journal
// entry when the rule demands it.
func (w *Workflow) ApplyTransition(ctx context.Context, companyID, docID id.ID, target State, role Role, reason string) (TransitionResult, error) {
	doc, err := w.docs.GetByID(ctx, companyID, docID)
	if err != nil {
		return TransitionResult{}, err
	}

	effect, err := Transition(doc.State, target, role, reason)
	if err != nil {
		return TransitionResult{}, err
	}

	result := TransitionResult{
		DocumentID: doc.ID,
		From:       doc.State,
		To:         target,
		Effect:     effect,
	}

	err = w.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if effect.RequiresReversal {
			if doc.JournalID == nil {
				return apperror.NewValidation("document has no journal entry to reverse").
					WithDetail("document_id", doc.ID)
			}
			receipt, err := w.reverser.Reverse(ctx, companyID, *doc.JournalID, w.now().UTC(), reason)
			if err != nil {
				return fmt.Errorf("reverse journal %s: %w", *doc.JournalID, err)
			}
			result.ReversalJournalID = &receipt.JournalID
			result.ReversalJournalNumber = receipt.JournalNumber
		}

		if err := w.docs.UpdateState(ctx, doc, target); err != nil {
			return fmt.Errorf("update document state: %w", err)
		}
		return nil
	})
	if err != nil {
		return TransitionResult{}, err
	}

	logger.Info(ctx, "document transitioned",
		"document_id", doc.ID,
		"from", result.From,
		"to", result.To,
		"role", role,
		"reversal", effect.RequiresReversal,
	)

	return result, nil
}
