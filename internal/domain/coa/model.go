// Package coa provides the chart of accounts (план счетов) for a company.
// Accounts form a tree; running balances are maintained exclusively by the
// GL posting path.
package coa

import (
	"context"
	"time"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/core/types"
)

// AccountType classifies an account within the chart.
type AccountType string

const (
	TypeAsset     AccountType = "asset"
	TypeLiability AccountType = "liability"
	TypeEquity    AccountType = "equity"
	TypeRevenue   AccountType = "revenue"
	TypeExpense   AccountType = "expense"
)

// Valid reports whether the account type is one of the closed set.
func (t AccountType) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeRevenue, TypeExpense:
		return true
	}
	return false
}

// Account is a chart-of-accounts entry.
// CurrentBalance equals the sum of (debit - credit) over all posted lines
// referencing the account; nothing outside the posting path writes it.
type Account struct {
	ID        id.ID  `db:"id" json:"id"`
	CompanyID id.ID  `db:"company_id" json:"companyId"`
	Code      string `db:"code" json:"code"`
	Name      string `db:"name" json:"name"`

	Type  AccountType `db:"account_type" json:"accountType"`
	Group string      `db:"account_group" json:"accountGroup,omitempty"`

	// ParentID forms the account tree (nil for root accounts)
	ParentID *id.ID `db:"parent_id" json:"parentId,omitempty"`

	// CurrentBalance is the signed running total (debit - credit)
	CurrentBalance types.Money `db:"current_balance" json:"currentBalance"`

	// AllowManualEntry permits free-form journal entries against this account
	AllowManualEntry bool `db:"allow_manual_entry" json:"allowManualEntry"`

	IsActive bool `db:"is_active" json:"isActive"`

	// Version for optimistic locking (incremented on each update)
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewAccount creates an account with generated ID and defaults.
func NewAccount(companyID id.ID, code, name string, accType AccountType) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:               id.New(),
		CompanyID:        companyID,
		Code:             code,
		Name:             name,
		Type:             accType,
		CurrentBalance:   types.ZeroMoney(),
		AllowManualEntry: true,
		IsActive:         true,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Validate checks account invariants.
func (a *Account) Validate(ctx context.Context) error {
	if id.IsNil(a.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}
	if a.Code == "" {
		return apperror.NewValidation("account code is required").
			WithDetail("field", "code")
	}
	if a.Name == "" {
		return apperror.NewValidation("account name is required").
			WithDetail("field", "name")
	}
	if !a.Type.Valid() {
		return apperror.NewValidation("unknown account type").
			WithDetail("field", "accountType").
			WithDetail("value", string(a.Type))
	}
	return nil
}

// Touch updates the UpdatedAt timestamp.
func (a *Account) Touch() {
	a.UpdatedAt = time.Now().UTC()
}
