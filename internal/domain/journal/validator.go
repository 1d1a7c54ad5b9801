package journal

import (
	"context"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/core/types"
	"ledgercore/internal/domain/coa"
)

// Validator checks a proposed line set against the balance rule and the
// chart of accounts. It is side-effect free and safe to call speculatively:
// account lookups go through the injected read contract only.
type Validator struct {
	accounts coa.Getter
}

// NewValidator creates a posting validator.
func NewValidator(accounts coa.Getter) *Validator {
	return &Validator{accounts: accounts}
}

// Validate runs all posting checks in order:
//  1. line set is non-empty and every line is well-formed
//  2. total debit equals total credit within the balance tolerance
//  3. every account exists and is active in the company's chart
//  4. manual postings only reference accounts that allow manual entry
func (v *Validator) Validate(ctx context.Context, companyID id.ID, lines []Line, manual bool) error {
	if len(lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return apperror.NewValidation("line amounts must be non-negative").
				WithDetail("line", i+1)
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return apperror.NewValidation("line cannot carry both debit and credit").
				WithDetail("line", i+1)
		}
		if id.IsNil(line.AccountID) {
			return apperror.NewValidation("line account is required").
				WithDetail("line", i+1)
		}
	}

	totalDebit, totalCredit := Totals(lines)
	if !types.WithinTolerance(totalDebit, totalCredit) {
		return apperror.NewUnbalanced(totalDebit.String(), totalCredit.String())
	}

	// Lines often repeat accounts; resolve each once.
	seen := make(map[id.ID]*coa.Account, len(lines))
	for _, line := range lines {
		account, ok := seen[line.AccountID]
		if !ok {
			var err error
			account, err = v.accounts.GetAccount(ctx, companyID, line.AccountID)
			if err != nil {
				if apperror.IsNotFound(err) {
					return apperror.NewUnknownAccount(line.AccountID)
				}
				return err
			}
			seen[line.AccountID] = account
		}
		if account == nil || !account.IsActive {
			return apperror.NewUnknownAccount(line.AccountID)
		}
		if manual && !account.AllowManualEntry {
			return apperror.NewManualEntryForbidden(account.Code)
		}
	}

	return nil
}
