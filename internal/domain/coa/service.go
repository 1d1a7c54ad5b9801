package coa

import (
	"context"
	"fmt"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/core/tx"
	"ledgercore/pkg/logger"
)

// Service provides business operations for the chart of accounts.
// Balance mutation is deliberately absent here: balances move only through
// the GL posting engine.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new chart of accounts service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Ensure the service satisfies the validator's read contract.
var _ Getter = (*Service)(nil)

// Create creates a new account.
func (s *Service) Create(ctx context.Context, account *Account) error {
	if err := account.Validate(ctx); err != nil {
		return err
	}

	if account.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, account.CompanyID, *account.ParentID)
		if err != nil {
			return err
		}
		if parent.Type != account.Type {
			return apperror.NewValidation("parent account type mismatch").
				WithDetail("parent_type", string(parent.Type)).
				WithDetail("account_type", string(account.Type))
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, account); err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "account created",
		"id", account.ID,
		"code", account.Code,
		"type", account.Type)

	return nil
}

// Update modifies account attributes. The running balance is not updatable.
func (s *Service) Update(ctx context.Context, account *Account) error {
	if err := account.Validate(ctx); err != nil {
		return err
	}
	account.Touch()

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, account); err != nil {
			return fmt.Errorf("update account: %w", err)
		}
		return nil
	})
}

// Deactivate marks an account inactive; postings against it will be rejected.
func (s *Service) Deactivate(ctx context.Context, companyID, accountID id.ID) error {
	account, err := s.repo.GetByID(ctx, companyID, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return nil
	}
	account.IsActive = false
	account.Touch()
	return s.repo.Update(ctx, account)
}

// GetByID retrieves an account.
func (s *Service) GetByID(ctx context.Context, companyID, accountID id.ID) (*Account, error) {
	return s.repo.GetByID(ctx, companyID, accountID)
}

// GetByCode retrieves an account by its code.
func (s *Service) GetByCode(ctx context.Context, companyID id.ID, code string) (*Account, error) {
	return s.repo.GetByCode(ctx, companyID, code)
}

// List retrieves accounts with filtering.
func (s *Service) List(ctx context.Context, companyID id.ID, filter ListFilter) ([]*Account, error) {
	return s.repo.List(ctx, companyID, filter)
}

// GetAccount implements Getter for the posting validator.
func (s *Service) GetAccount(ctx context.Context, companyID, accountID id.ID) (*Account, error) {
	return s.repo.GetByID(ctx, companyID, accountID)
}

// TreeNode is an account with its children, for hierarchy views.
type TreeNode struct {
	*Account
	Children []*TreeNode `json:"children,omitempty"`
}

// Tree assembles the account hierarchy for a company.
func (s *Service) Tree(ctx context.Context, companyID id.ID) ([]*TreeNode, error) {
	accounts, err := s.repo.List(ctx, companyID, ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	nodes := make(map[id.ID]*TreeNode, len(accounts))
	for _, a := range accounts {
		nodes[a.ID] = &TreeNode{Account: a}
	}

	var roots []*TreeNode
	for _, a := range accounts {
		node := nodes[a.ID]
		if a.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*a.ParentID]
		if !ok {
			// orphan: parent deactivated or filtered out
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots, nil
}
