package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"ledgercore/internal/core/id"
	"ledgercore/internal/domain/journal"
)

// JournalLineRequest is one proposed ledger line.
type JournalLineRequest struct {
	AccountID   string          `json:"accountId" binding:"required,uuid"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	CostCenter  string          `json:"costCenter"`
	Project     string          `json:"project"`
}

// PostJournalRequest is a manual posting request.
type PostJournalRequest struct {
	SourceType   string               `json:"sourceType"`
	SourceID     string               `json:"sourceId" binding:"omitempty,uuid"`
	SourceNumber string               `json:"sourceNumber"`
	Date         time.Time            `json:"date"`
	Description  string               `json:"description"`
	Lines        []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// ToPostingRequest converts the DTO into a domain posting request.
// Requests arriving through this endpoint are manual entries by definition.
func (r *PostJournalRequest) ToPostingRequest(companyID id.ID) (journal.PostingRequest, error) {
	sourceType := r.SourceType
	if sourceType == "" {
		sourceType = journal.SourceManual
	}

	sourceID := id.New()
	if r.SourceID != "" {
		parsed, err := id.Parse(r.SourceID)
		if err != nil {
			return journal.PostingRequest{}, err
		}
		sourceID = parsed
	}

	lines := make([]journal.LineInput, 0, len(r.Lines))
	for _, l := range r.Lines {
		accountID, err := id.Parse(l.AccountID)
		if err != nil {
			return journal.PostingRequest{}, err
		}
		lines = append(lines, journal.LineInput{
			AccountID:   accountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
			CostCenter:  l.CostCenter,
			Project:     l.Project,
		})
	}

	return journal.PostingRequest{
		CompanyID:    companyID,
		SourceType:   sourceType,
		SourceID:     sourceID,
		SourceNumber: r.SourceNumber,
		Date:         r.Date,
		Description:  r.Description,
		Lines:        lines,
		Manual:       sourceType == journal.SourceManual,
	}, nil
}

// ReverseJournalRequest asks for a correcting entry.
type ReverseJournalRequest struct {
	ReversalDate time.Time `json:"reversalDate"`
	Reason       string    `json:"reason"`
}

// JournalListRequest filters journal listings.
type JournalListRequest struct {
	PaginationRequest
	SourceType string `form:"sourceType"`
	From       string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}
