package journal

import (
	"context"
	"testing"
	"time"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/core/types"
)

func TestAccountMapping_Validate(t *testing.T) {
	mapping := AccountMapping{
		RoleCash:         id.New(),
		RoleSalesRevenue: id.New(),
	}

	if err := mapping.Validate(RoleCash, RoleSalesRevenue); err != nil {
		t.Fatalf("Validate failed for fully mapped roles: %v", err)
	}

	err := mapping.Validate(RoleCash, RoleVATPayable)
	if !apperror.HasCode(err, apperror.CodeValidation) {
		t.Fatalf("err = %v, want VALIDATION_ERROR for unmapped role", err)
	}

	mapping[RoleVATPayable] = id.Nil()
	if err := mapping.Validate(RoleVATPayable); err == nil {
		t.Fatal("Validate accepted a nil account id")
	}
}

func TestRequestBuilder_BuildsPostingRequest(t *testing.T) {
	companyID := id.New()
	sourceID := id.New()
	mapping := AccountMapping{
		RoleAccountsReceivable: id.New(),
		RoleSalesRevenue:       id.New(),
		RoleVATPayable:         id.New(),
	}
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	req, err := NewRequestBuilder(companyID, mapping, SourceInvoice, sourceID).
		OnDate(date).
		WithSourceNumber("INV-2025-00007").
		Describe("Invoice INV-2025-00007").
		Debit(RoleAccountsReceivable, types.MustMoney("120.00"), "receivable").
		Credit(RoleSalesRevenue, types.MustMoney("100.00"), "net sale").
		Credit(RoleVATPayable, types.MustMoney("20.00"), "output VAT").
		Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if req.CompanyID != companyID || req.SourceID != sourceID {
		t.Error("request lost company or source identity")
	}
	if req.SourceType != SourceInvoice || req.SourceNumber != "INV-2025-00007" {
		t.Errorf("source = %s %s", req.SourceType, req.SourceNumber)
	}
	if !req.Date.Equal(date) {
		t.Errorf("date = %s, want %s", req.Date, date)
	}
	if len(req.Lines) != 3 {
		t.Fatalf("built %d lines, want 3", len(req.Lines))
	}
	if req.Lines[0].AccountID != mapping[RoleAccountsReceivable] || !req.Lines[0].Debit.Equal(types.MustMoney("120.00")) {
		t.Error("debit line not resolved through the mapping")
	}
	if !req.Lines[1].Debit.Equal(types.ZeroMoney()) || !req.Lines[1].Credit.Equal(types.MustMoney("100.00")) {
		t.Error("credit line carries a debit side")
	}
}

func TestRequestBuilder_SurfacesFirstUnresolvedRole(t *testing.T) {
	mapping := AccountMapping{RoleCash: id.New()}

	_, err := NewRequestBuilder(id.New(), mapping, SourcePayment, id.New()).
		Debit(RoleCash, types.MustMoney("10.00"), "").
		Credit(RoleAccountsPayable, types.MustMoney("10.00"), "").
		Debit(RoleInventory, types.MustMoney("1.00"), "").
		Build(context.Background())
	if !apperror.HasCode(err, apperror.CodeValidation) {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
	if appErr, ok := apperror.AsAppError(err); ok {
		if role, _ := appErr.Details["role"].(string); role != string(RoleAccountsPayable) {
			t.Errorf("failed role = %q, want accounts_payable", role)
		}
	}
}

func TestRequestBuilder_RejectsEmptyRequest(t *testing.T) {
	_, err := NewRequestBuilder(id.New(), AccountMapping{}, SourceManual, id.Nil()).
		Build(context.Background())
	if !apperror.HasCode(err, apperror.CodeValidation) {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
}
