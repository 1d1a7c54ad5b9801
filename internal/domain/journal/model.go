// Package journal provides the general-ledger core: journal entries,
// posting validation, the GL posting engine and auditable reversal.
package journal

import (
	"time"

	"ledgercore/internal/core/id"
	"ledgercore/internal/core/types"
)

// Status of a journal entry. Entries are immutable after posting; a
// reversal is a new entry, never a mutation of the original.
type Status string

const (
	StatusPosted Status = "posted"
)

// Source document types that feed the posting engine.
const (
	SourceInvoice         = "invoice"
	SourceBill            = "bill"
	SourcePayment         = "payment"
	SourcePayroll         = "payroll"
	SourceStockAdjustment = "stock_adjustment"
	SourceManual          = "manual"
	SourceReversal        = "reversal"
)

// DocTypeJournal is the number-series key used for journal numbers.
const DocTypeJournal = "journal"

// Entry is a balanced set of debit/credit lines representing one
// accounting event.
type Entry struct {
	ID        id.ID  `db:"id" json:"id"`
	CompanyID id.ID  `db:"company_id" json:"companyId"`
	Number    string `db:"journal_number" json:"journalNumber"`

	Date        time.Time `db:"journal_date" json:"journalDate"`
	Description string    `db:"description" json:"description,omitempty"`

	// Back-link to the originating business document
	SourceType   string `db:"source_type" json:"sourceType"`
	SourceID     id.ID  `db:"source_id" json:"sourceId"`
	SourceNumber string `db:"source_number" json:"sourceNumber,omitempty"`

	TotalDebit  types.Money `db:"total_debit" json:"totalDebit"`
	TotalCredit types.Money `db:"total_credit" json:"totalCredit"`

	Status Status `db:"status" json:"status"`

	// IsReversal marks an entry created by the reversal engine;
	// ReversalOfID links back to the entry it undoes.
	IsReversal   bool   `db:"is_reversal" json:"isReversal"`
	ReversalOfID *id.ID `db:"reversal_of_id" json:"reversalOfId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`

	Lines []Line `db:"-" json:"lines"`
}

// Line belongs to exactly one journal entry. LineNumber is 1-based and
// authoritative for ordering; exactly one of debit/credit is non-zero in
// well-formed input, though zero-value placeholder lines are representable.
type Line struct {
	ID         id.ID `db:"id" json:"id"`
	JournalID  id.ID `db:"journal_id" json:"journalId"`
	LineNumber int   `db:"line_number" json:"lineNumber"`

	AccountID id.ID       `db:"account_id" json:"accountId"`
	Debit     types.Money `db:"debit" json:"debit"`
	Credit    types.Money `db:"credit" json:"credit"`

	Description string `db:"description" json:"description,omitempty"`
	CostCenter  string `db:"cost_center" json:"costCenter,omitempty"`
	Project     string `db:"project" json:"project,omitempty"`
}

// Net returns the line's signed effect on its account (debit - credit).
func (l Line) Net() types.Money {
	return l.Debit.Sub(l.Credit)
}

// Totals sums debit and credit over a line set.
func Totals(lines []Line) (debit, credit types.Money) {
	debit, credit = types.ZeroMoney(), types.ZeroMoney()
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}
