package journal

import (
	"context"
	"fmt"
	"time"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
)

// Reverser undoes posted journal entries by swap-and-repost: it mirrors the
// original lines (debit and credit exchanged) into a brand-new entry linked
// via ReversalOfID. The original is never touched, which keeps the full
// history auditable.
type Reverser struct {
	journals Repository
	engine   *Engine
}

// NewReverser creates a reversal engine on top of the posting engine.
func NewReverser(journals Repository, engine *Engine) *Reverser {
	return &Reverser{
		journals: journals,
		engine:   engine,
	}
}

// Reverse creates and posts the mirror entry for originalJournalID.
// Reversing an entry that is itself a reversal is rejected: un-reversing is
// done by posting the source document again, not by stacking reversals.
func (r *Reverser) Reverse(ctx context.Context, companyID, originalJournalID id.ID, reversalDate time.Time, reason string) (PostingReceipt, error) {
	original, err := r.journals.GetWithLines(ctx, companyID, originalJournalID)
	if err != nil {
		return PostingReceipt{}, fmt.Errorf("load journal %s: %w", originalJournalID, err)
	}

	if original.IsReversal {
		return PostingReceipt{}, apperror.NewAlreadyReversed(originalJournalID)
	}

	if reversalDate.IsZero() {
		reversalDate = original.Date
	}

	req := PostingRequest{
		CompanyID:    original.CompanyID,
		SourceType:   SourceReversal,
		SourceID:     original.ID,
		SourceNumber: original.Number,
		Date:         reversalDate,
		Description:  reversalDescription(original.Number, reason),
		Lines:        mirrorLines(original.Lines),
		isReversal:   true,
		reversalOf:   &original.ID,
	}

	return r.engine.Post(ctx, req)
}

// mirrorLines swaps debit and credit on each line, preserving order.
// Balances net to the pre-posting state by construction.
func mirrorLines(lines []Line) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineInput{
			AccountID:   line.AccountID,
			Debit:       line.Credit,
			Credit:      line.Debit,
			Description: line.Description,
			CostCenter:  line.CostCenter,
			Project:     line.Project,
		})
	}
	return out
}

func reversalDescription(number, reason string) string {
	if reason == "" {
		return fmt.Sprintf("Reversal of %s", number)
	}
	return fmt.Sprintf("Reversal of %s: %s", number, reason)
}
