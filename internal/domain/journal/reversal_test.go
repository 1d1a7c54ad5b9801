package journal

import (
	"context"
	"testing"
	"time"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/core/types"
	"ledgercore/internal/domain/audit"
)

func TestReverser_MirrorsLinesAndRestoresBalances(t *testing.T) {
	f := newEngineFixture()
	reverser := NewReverser(f.repo, f.engine)
	ctx := context.Background()

	original, err := f.engine.Post(ctx, f.saleRequest())
	if err != nil {
		t.Fatalf("seed posting failed: %v", err)
	}

	reversalDate := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	receipt, err := reverser.Reverse(ctx, f.companyID, original.JournalID, reversalDate, "customer refund")
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}

	if receipt.JournalID == original.JournalID {
		t.Fatal("reversal reused the original journal id")
	}
	if !receipt.TotalDebit.Equal(original.TotalDebit) || !receipt.TotalCredit.Equal(original.TotalCredit) {
		t.Errorf("reversal totals %s/%s differ from original %s/%s",
			receipt.TotalDebit, receipt.TotalCredit, original.TotalDebit, original.TotalCredit)
	}

	entry, err := f.repo.GetWithLines(ctx, f.companyID, receipt.JournalID)
	if err != nil {
		t.Fatalf("reversal entry not found: %v", err)
	}
	if !entry.IsReversal {
		t.Error("reversal entry not flagged")
	}
	if entry.ReversalOfID == nil || *entry.ReversalOfID != original.JournalID {
		t.Error("reversal entry not linked to the original")
	}
	if entry.SourceType != SourceReversal {
		t.Errorf("source type = %q, want %q", entry.SourceType, SourceReversal)
	}
	if !entry.Date.Equal(reversalDate) {
		t.Errorf("reversal date = %s, want %s", entry.Date, reversalDate)
	}
	if entry.Description != "Reversal of JRNL-2025-00001: customer refund" {
		t.Errorf("description = %q", entry.Description)
	}

	originalEntry, err := f.repo.GetWithLines(ctx, f.companyID, original.JournalID)
	if err != nil {
		t.Fatalf("original entry not found: %v", err)
	}
	if len(entry.Lines) != len(originalEntry.Lines) {
		t.Fatalf("reversal has %d lines, original %d", len(entry.Lines), len(originalEntry.Lines))
	}
	for i, line := range entry.Lines {
		orig := originalEntry.Lines[i]
		if !line.Debit.Equal(orig.Credit) || !line.Credit.Equal(orig.Debit) {
			t.Errorf("line %d not mirrored: %s/%s vs original %s/%s",
				i+1, line.Debit, line.Credit, orig.Debit, orig.Credit)
		}
		if line.AccountID != orig.AccountID {
			t.Errorf("line %d changed account", i+1)
		}
	}

	// Original posting plus its mirror must net every account to zero.
	for accountID, delta := range f.balances.deltas {
		if !delta.Equal(types.ZeroMoney()) {
			t.Errorf("account %s left with residual balance %s", accountID, delta)
		}
	}
}

func TestReverser_RejectsReversingAReversal(t *testing.T) {
	f := newEngineFixture()
	reverser := NewReverser(f.repo, f.engine)
	ctx := context.Background()

	original, err := f.engine.Post(ctx, f.saleRequest())
	if err != nil {
		t.Fatalf("seed posting failed: %v", err)
	}
	first, err := reverser.Reverse(ctx, f.companyID, original.JournalID, time.Time{}, "")
	if err != nil {
		t.Fatalf("first reversal failed: %v", err)
	}

	_, err = reverser.Reverse(ctx, f.companyID, first.JournalID, time.Time{}, "")
	if !apperror.HasCode(err, apperror.CodeAlreadyReversed) {
		t.Fatalf("err = %v, want ALREADY_REVERSED", err)
	}
}

func TestReverser_ZeroDateDefaultsToOriginalDate(t *testing.T) {
	f := newEngineFixture()
	reverser := NewReverser(f.repo, f.engine)
	ctx := context.Background()

	req := f.saleRequest()
	original, err := f.engine.Post(ctx, req)
	if err != nil {
		t.Fatalf("seed posting failed: %v", err)
	}

	receipt, err := reverser.Reverse(ctx, f.companyID, original.JournalID, time.Time{}, "")
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}

	entry, err := f.repo.GetByID(ctx, f.companyID, receipt.JournalID)
	if err != nil {
		t.Fatalf("reversal entry not found: %v", err)
	}
	if !entry.Date.Equal(req.Date) {
		t.Errorf("reversal date = %s, want original %s", entry.Date, req.Date)
	}
	if entry.Description != "Reversal of JRNL-2025-00001" {
		t.Errorf("description = %q", entry.Description)
	}
}

func TestReverser_AuditsAsReversal(t *testing.T) {
	f := newEngineFixture()
	reverser := NewReverser(f.repo, f.engine)
	ctx := context.Background()

	original, err := f.engine.Post(ctx, f.saleRequest())
	if err != nil {
		t.Fatalf("seed posting failed: %v", err)
	}
	if _, err := reverser.Reverse(ctx, f.companyID, original.JournalID, time.Time{}, "dup"); err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}

	if len(f.sink.entries) != 2 {
		t.Fatalf("recorded %d audit entries, want 2", len(f.sink.entries))
	}
	rec := f.sink.entries[1]
	if rec.EntityType != audit.EntityJournalReversal || rec.Action != audit.ActionReverse {
		t.Errorf("audit record = %s/%s, want journal_reversal/reverse", rec.EntityType, rec.Action)
	}
}

func TestReverser_UnknownJournalFails(t *testing.T) {
	f := newEngineFixture()
	reverser := NewReverser(f.repo, f.engine)

	_, err := reverser.Reverse(context.Background(), f.companyID, id.New(), time.Time{}, "")
	if err == nil {
		t.Fatal("Reverse succeeded for a missing journal")
	}
	if !apperror.IsNotFound(err) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}
