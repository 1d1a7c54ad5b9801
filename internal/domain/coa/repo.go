package coa

import (
	"context"

	"ledgercore/internal/core/id"
	"ledgercore/internal/core/types"
)

// ListFilter narrows account listings.
type ListFilter struct {
	Types      []AccountType
	Group      string
	ActiveOnly bool
	ParentID   *id.ID
	Limit      int
	Offset     int
}

// Repository defines persistence operations for the chart of accounts.
type Repository interface {
	Create(ctx context.Context, account *Account) error

	// Update modifies an account with optimistic locking on Version.
	// Must never touch current_balance.
	Update(ctx context.Context, account *Account) error

	GetByID(ctx context.Context, companyID, accountID id.ID) (*Account, error)
	GetByCode(ctx context.Context, companyID id.ID, code string) (*Account, error)
	List(ctx context.Context, companyID id.ID, filter ListFilter) ([]*Account, error)

	// ApplyBalanceDelta atomically adds delta to the account's running
	// balance server-side. Only the GL posting engine may call it.
	ApplyBalanceDelta(ctx context.Context, companyID, accountID id.ID, delta types.Money) error
}

// Getter is the read contract consumed by the posting validator.
type Getter interface {
	GetAccount(ctx context.Context, companyID, accountID id.ID) (*Account, error)
}
