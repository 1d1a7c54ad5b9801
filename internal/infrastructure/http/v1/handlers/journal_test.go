package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/core/types"
	"ledgercore/internal/domain/audit"
	"ledgercore/internal/domain/coa"
	"ledgercore/internal/domain/journal"
	"ledgercore/internal/domain/series"
	"ledgercore/internal/infrastructure/http/v1/middleware"
)

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeJournalRepo struct {
	entries map[id.ID]*journal.Entry
}

func (r *fakeJournalRepo) InsertEntry(_ context.Context, entry *journal.Entry) error {
	r.entries[entry.ID] = entry
	return nil
}

func (r *fakeJournalRepo) InsertLines(_ context.Context, _ id.ID, _ []journal.Line) error {
	return nil
}

func (r *fakeJournalRepo) GetByID(_ context.Context, _, journalID id.ID) (*journal.Entry, error) {
	entry, ok := r.entries[journalID]
	if !ok {
		return nil, apperror.NewNotFound("journal entry", journalID)
	}
	return entry, nil
}

func (r *fakeJournalRepo) GetWithLines(ctx context.Context, companyID, journalID id.ID) (*journal.Entry, error) {
	return r.GetByID(ctx, companyID, journalID)
}

func (r *fakeJournalRepo) List(_ context.Context, _ id.ID, _ journal.ListFilter) ([]*journal.Entry, error) {
	return nil, nil
}

type fakeBalances struct{}

func (fakeBalances) ApplyBalanceDelta(_ context.Context, _, _ id.ID, _ types.Money) error {
	return nil
}

type fakeAllocator struct{ n int64 }

func (a *fakeAllocator) Allocate(_ context.Context, _ id.ID, _ string, _ time.Time) (series.Allocation, error) {
	a.n++
	return series.Allocation{Number: fmt.Sprintf("JRNL-2025-%05d", a.n), Ordinal: a.n}, nil
}

type fakeAccounts struct {
	accounts map[id.ID]*coa.Account
}

func (f *fakeAccounts) GetAccount(_ context.Context, _, accountID id.ID) (*coa.Account, error) {
	account, ok := f.accounts[accountID]
	if !ok {
		return nil, apperror.NewNotFound("account", accountID)
	}
	return account, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, id.ID, id.ID, id.ID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	companyID, cashID, revenueID := id.New(), id.New(), id.New()
	accounts := &fakeAccounts{accounts: map[id.ID]*coa.Account{
		cashID:    {ID: cashID, CompanyID: companyID, Code: "1000", IsActive: true, AllowManualEntry: true},
		revenueID: {ID: revenueID, CompanyID: companyID, Code: "4000", IsActive: true, AllowManualEntry: true},
	}}

	engine := journal.NewEngine(
		&fakeJournalRepo{entries: make(map[id.ID]*journal.Entry)},
		fakeBalances{},
		&fakeAllocator{},
		journal.NewValidator(accounts),
		audit.NopSink{},
		passthroughTxManager{},
	)
	handler := NewJournalHandler(engine, nil)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.POST("/companies/:companyId/journals", handler.Post)
	return router, companyID, cashID, revenueID
}

func postJournal(t *testing.T, router *gin.Engine, companyID id.ID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/companies/"+companyID.String()+"/journals", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJournalHandler_Post(t *testing.T) {
	router, companyID, cashID, revenueID := newTestRouter(t)

	body := fmt.Sprintf(`{
		"date": "2025-03-15T00:00:00Z",
		"description": "Manual adjustment",
		"lines": [
			{"accountId": %q, "debit": "100.00"},
			{"accountId": %q, "credit": "100.00"}
		]
	}`, cashID, revenueID)

	rec := postJournal(t, router, companyID, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var receipt journal.PostingReceipt
	if err := json.Unmarshal(rec.Body.Bytes(), &receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	if receipt.JournalNumber != "JRNL-2025-00001" {
		t.Errorf("journal number = %q", receipt.JournalNumber)
	}
}

func TestJournalHandler_Post_UnbalancedEnvelope(t *testing.T) {
	router, companyID, cashID, revenueID := newTestRouter(t)

	body := fmt.Sprintf(`{
		"date": "2025-03-15T00:00:00Z",
		"lines": [
			{"accountId": %q, "debit": "100.00"},
			{"accountId": %q, "credit": "90.00"}
		]
	}`, cashID, revenueID)

	rec := postJournal(t, router, companyID, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Code != apperror.CodeUnbalanced {
		t.Errorf("code = %q, want UNBALANCED", envelope.Code)
	}
	if envelope.Details["total_debit"] != "100" || envelope.Details["total_credit"] != "90" {
		t.Errorf("details = %v", envelope.Details)
	}
}

func TestJournalHandler_Post_RejectsSingleLine(t *testing.T) {
	router, companyID, cashID, _ := newTestRouter(t)

	body := fmt.Sprintf(`{
		"date": "2025-03-15T00:00:00Z",
		"lines": [{"accountId": %q, "debit": "100.00"}]
	}`, cashID)

	rec := postJournal(t, router, companyID, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestJournalHandler_Post_InvalidCompanyID(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/companies/not-a-uuid/journals", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
