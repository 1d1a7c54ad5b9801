package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/core/types"
	"ledgercore/internal/domain/coa"
)

const accountsTable = "accounts"

var accountColumns = []string{
	"id", "company_id", "code", "name", "account_type", "account_group",
	"parent_id", "current_balance", "allow_manual_entry", "is_active",
	"version", "created_at", "updated_at",
}

// Compile-time check that AccountRepo implements coa.Repository.
var _ coa.Repository = (*AccountRepo)(nil)

// AccountRepo implements coa.Repository.
type AccountRepo struct {
	txManager *TxManager
}

// NewAccountRepo creates a new chart of accounts repository.
func NewAccountRepo(txManager *TxManager) *AccountRepo {
	return &AccountRepo{txManager: txManager}
}

func (r *AccountRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new account.
func (r *AccountRepo) Create(ctx context.Context, account *coa.Account) error {
	q := r.builder().
		Insert(accountsTable).
		Columns(accountColumns...).
		Values(
			account.ID, account.CompanyID, account.Code, account.Name,
			account.Type, account.Group, account.ParentID,
			account.CurrentBalance, account.AllowManualEntry, account.IsActive,
			account.Version, account.CreatedAt, account.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// Update modifies an account with optimistic locking. current_balance is
// deliberately absent from the SET list: only ApplyBalanceDelta moves it.
func (r *AccountRepo) Update(ctx context.Context, account *coa.Account) error {
	q := r.builder().
		Update(accountsTable).
		Set("code", account.Code).
		Set("name", account.Name).
		Set("account_type", account.Type).
		Set("account_group", account.Group).
		Set("parent_id", account.ParentID).
		Set("allow_manual_entry", account.AllowManualEntry).
		Set("is_active", account.IsActive).
		Set("version", account.Version+1).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{
			"id":         account.ID,
			"company_id": account.CompanyID,
			"version":    account.Version,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("account", account.ID.String())
	}

	account.Version++
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepo) GetByID(ctx context.Context, companyID, accountID id.ID) (*coa.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"company_id": companyID, "id": accountID}, accountID.String())
}

// GetByCode retrieves an account by its code.
func (r *AccountRepo) GetByCode(ctx context.Context, companyID id.ID, code string) (*coa.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"company_id": companyID, "code": code}, code)
}

func (r *AccountRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*coa.Account, error) {
	q := r.builder().
		Select(accountColumns...).
		From(accountsTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var a coa.Account
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("account", key)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &a, nil
}

// List retrieves accounts with filtering, ordered by code.
func (r *AccountRepo) List(ctx context.Context, companyID id.ID, filter coa.ListFilter) ([]*coa.Account, error) {
	q := r.builder().
		Select(accountColumns...).
		From(accountsTable).
		Where(squirrel.Eq{"company_id": companyID}).
		OrderBy("code")

	if len(filter.Types) > 0 {
		q = q.Where(squirrel.Eq{"account_type": filter.Types})
	}
	if filter.Group != "" {
		q = q.Where(squirrel.Eq{"account_group": filter.Group})
	}
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	if filter.ParentID != nil {
		q = q.Where(squirrel.Eq{"parent_id": *filter.ParentID})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []*coa.Account
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

// ApplyBalanceDelta adds delta to the account's running balance. The
// addition happens in SQL against the stored value, never as a
// read-modify-write round trip, so concurrent postings within row-lock
// serialization can not lose updates.
func (r *AccountRepo) ApplyBalanceDelta(ctx context.Context, companyID, accountID id.ID, delta types.Money) error {
	sql := `
		UPDATE accounts
		SET current_balance = current_balance + $3, updated_at = now()
		WHERE company_id = $1 AND id = $2
	`
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, companyID, accountID, delta)
	if err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("account", accountID.String())
	}
	return nil
}
