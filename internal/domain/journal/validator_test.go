package journal

import (
	"context"
	"testing"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/core/types"
	"ledgercore/internal/domain/coa"
)

func validatorFixture() (*Validator, id.ID, map[string]id.ID) {
	companyID := id.New()
	ids := map[string]id.ID{
		"cash":     id.New(),
		"revenue":  id.New(),
		"system":   id.New(),
		"inactive": id.New(),
	}
	accounts := &stubAccounts{accounts: map[id.ID]*coa.Account{
		ids["cash"]:     {ID: ids["cash"], CompanyID: companyID, Code: "1000", IsActive: true, AllowManualEntry: true},
		ids["revenue"]:  {ID: ids["revenue"], CompanyID: companyID, Code: "4000", IsActive: true, AllowManualEntry: true},
		ids["system"]:   {ID: ids["system"], CompanyID: companyID, Code: "2100", IsActive: true, AllowManualEntry: false},
		ids["inactive"]: {ID: ids["inactive"], CompanyID: companyID, Code: "9999", IsActive: false, AllowManualEntry: true},
	}}
	return NewValidator(accounts), companyID, ids
}

func balancedPair(debitAccount, creditAccount id.ID, amount string) []Line {
	return []Line{
		{AccountID: debitAccount, Debit: types.MustMoney(amount), Credit: types.ZeroMoney()},
		{AccountID: creditAccount, Debit: types.ZeroMoney(), Credit: types.MustMoney(amount)},
	}
}

func TestValidator_AcceptsBalancedLines(t *testing.T) {
	v, companyID, ids := validatorFixture()

	lines := balancedPair(ids["cash"], ids["revenue"], "250.00")
	if err := v.Validate(context.Background(), companyID, lines, false); err != nil {
		t.Fatalf("Validate rejected a balanced posting: %v", err)
	}
}

func TestValidator_LineShapeChecks(t *testing.T) {
	v, companyID, ids := validatorFixture()
	ctx := context.Background()

	tests := []struct {
		name  string
		lines []Line
	}{
		{"empty line set", nil},
		{"negative debit", []Line{
			{AccountID: ids["cash"], Debit: types.MustMoney("-10.00")},
			{AccountID: ids["revenue"], Credit: types.MustMoney("-10.00")},
		}},
		{"both sides on one line", []Line{
			{AccountID: ids["cash"], Debit: types.MustMoney("10.00"), Credit: types.MustMoney("10.00")},
		}},
		{"nil account", []Line{
			{AccountID: id.Nil(), Debit: types.MustMoney("10.00")},
			{AccountID: ids["revenue"], Credit: types.MustMoney("10.00")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(ctx, companyID, tt.lines, false)
			if !apperror.HasCode(err, apperror.CodeValidation) {
				t.Errorf("err = %v, want VALIDATION_ERROR", err)
			}
		})
	}
}

func TestValidator_BalanceTolerance(t *testing.T) {
	v, companyID, ids := validatorFixture()
	ctx := context.Background()

	lines := []Line{
		{AccountID: ids["cash"], Debit: types.MustMoney("100.00")},
		{AccountID: ids["revenue"], Credit: types.MustMoney("100.01")},
	}
	if err := v.Validate(ctx, companyID, lines, false); err != nil {
		t.Errorf("0.01 difference rejected: %v", err)
	}

	lines[1].Credit = types.MustMoney("100.02")
	err := v.Validate(ctx, companyID, lines, false)
	if !apperror.HasCode(err, apperror.CodeUnbalanced) {
		t.Errorf("err = %v, want UNBALANCED", err)
	}
}

func TestValidator_UnknownAndInactiveAccounts(t *testing.T) {
	v, companyID, ids := validatorFixture()
	ctx := context.Background()

	err := v.Validate(ctx, companyID, balancedPair(id.New(), ids["revenue"], "10.00"), false)
	if !apperror.HasCode(err, apperror.CodeUnknownAccount) {
		t.Errorf("unknown account: err = %v, want UNKNOWN_ACCOUNT", err)
	}

	err = v.Validate(ctx, companyID, balancedPair(ids["inactive"], ids["revenue"], "10.00"), false)
	if !apperror.HasCode(err, apperror.CodeUnknownAccount) {
		t.Errorf("inactive account: err = %v, want UNKNOWN_ACCOUNT", err)
	}
}

func TestValidator_ManualEntryGate(t *testing.T) {
	v, companyID, ids := validatorFixture()
	ctx := context.Background()

	lines := balancedPair(ids["cash"], ids["system"], "10.00")

	// System-generated postings may use any active account.
	if err := v.Validate(ctx, companyID, lines, false); err != nil {
		t.Fatalf("system posting rejected: %v", err)
	}

	err := v.Validate(ctx, companyID, lines, true)
	if !apperror.HasCode(err, apperror.CodeManualEntryForbidden) {
		t.Fatalf("err = %v, want MANUAL_ENTRY_FORBIDDEN", err)
	}
}
